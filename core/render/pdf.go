package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/normalize"
	"github.com/jung-kurt/gofpdf"
)

// PDFConverter renders a document as a paginated PDF using gofpdf.
// Layout: title page, metadata page, table of contents with internal links,
// then one page (or more) per chapter, each with an outline bookmark.
// Images are not rendered.
type PDFConverter struct{}

// NewPDFConverter creates a PDFConverter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// pdfWriter bundles the document being built with its text translator.
// Core fonts are cp1252, so every string goes through tr.
type pdfWriter struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	fontSize float64
}

// Convert renders doc. Chapter bodies are normalized with the default
// normalizer options, which is what the line renderer expects.
func (c *PDFConverter) Convert(doc *core.Document, opts core.Options) ([]byte, error) {
	pageSize := opts.PDF.PageSize
	if pageSize == "" {
		pageSize = "Letter"
	}
	fontSize := opts.PDF.FontSize
	if fontSize <= 0 {
		fontSize = 12
	}

	pdf := gofpdf.New("P", "mm", pageSize, "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), fontSize: fontSize}

	title := doc.Metadata.Title
	if title == "" {
		title = UntitledBook
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(doc.Metadata.Creator, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	w.titlePage(title, doc.Metadata.Creator)
	if opts.IncludeMetadata {
		w.metadataPage(doc.Metadata)
	}

	links := make(map[string]int, len(doc.Chapters))
	for _, ch := range doc.Chapters {
		if _, ok := links[ch.ID]; !ok {
			links[ch.ID] = pdf.AddLink()
		}
	}
	if opts.IncludeTOC && len(doc.TOC) > 0 {
		w.tocPage(doc.TOC, links)
	}

	norm := normalize.New(core.DefaultNormalizeOptions())
	for _, ch := range doc.Chapters {
		body, err := norm.Normalize(ch.Content)
		if err != nil {
			return nil, conversionError(core.OutputPDF, fmt.Errorf("chapter %s: %w", ch.ID, err))
		}
		w.chapterPage(ch, body, links[ch.ID])
	}

	if err := pdf.Error(); err != nil {
		return nil, conversionError(core.OutputPDF, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, conversionError(core.OutputPDF, fmt.Errorf("writing PDF: %w", err))
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (c *PDFConverter) Extension() string {
	return core.OutputPDF.Extension()
}

func (w *pdfWriter) titlePage(title, creator string) {
	w.pdf.AddPage()
	w.pdf.SetY(80)
	w.pdf.SetFont("Helvetica", "B", w.fontSize*2)
	w.pdf.MultiCell(0, w.fontSize, w.tr(title), "", "C", false)
	if creator != "" {
		w.pdf.Ln(6)
		w.pdf.SetFont("Helvetica", "I", w.fontSize+2)
		w.pdf.MultiCell(0, w.fontSize*0.6, w.tr("by "+creator), "", "C", false)
	}
}

func (w *pdfWriter) metadataPage(meta core.Metadata) {
	w.pdf.AddPage()
	w.heading("Metadata", 1)
	for _, f := range meta.Fields() {
		if f.Value == "" {
			continue
		}
		w.pdf.SetFont("Helvetica", "B", w.fontSize)
		w.pdf.CellFormat(35, w.fontSize*0.5, w.tr(f.Key+":"), "", 0, "L", false, 0, "")
		w.pdf.SetFont("Helvetica", "", w.fontSize)
		w.pdf.MultiCell(0, w.fontSize*0.5, w.tr(f.Value), "", "L", false)
	}
}

func (w *pdfWriter) tocPage(toc []core.TOCEntry, links map[string]int) {
	w.pdf.AddPage()
	w.heading("Table of Contents", 1)
	w.pdf.SetFont("Helvetica", "", w.fontSize)
	for i, e := range toc {
		indent := float64(max(e.Level-1, 0)) * 6
		w.pdf.SetX(w.leftMargin() + indent)
		label := w.tr(fmt.Sprintf("%d. %s", i+1, e.Title))
		if link, ok := links[e.ID]; ok {
			w.pdf.SetTextColor(30, 60, 160)
			w.pdf.CellFormat(0, w.fontSize*0.6, label, "", 1, "L", false, link, "")
			w.pdf.SetTextColor(0, 0, 0)
			continue
		}
		w.pdf.CellFormat(0, w.fontSize*0.6, label, "", 1, "L", false, 0, "")
	}
}

func (w *pdfWriter) chapterPage(ch core.Chapter, body string, link int) {
	w.pdf.AddPage()
	if link != 0 {
		w.pdf.SetLink(link, 0, -1)
	}
	w.pdf.Bookmark(w.tr(ch.Title), 0, -1)
	w.heading(ch.Title, 1)
	if body == "" {
		w.pdf.SetFont("Helvetica", "I", w.fontSize)
		w.pdf.MultiCell(0, w.fontSize*0.5, "(No content available)", "", "L", false)
		return
	}
	w.markdown(body)
}

func (w *pdfWriter) leftMargin() float64 {
	left, _, _, _ := w.pdf.GetMargins()
	return left
}

var (
	orderedItemRe = regexp.MustCompile(`^\d+\.\s`)
	italicRe      = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	inlineLinkRe  = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
)

// markdown renders normalized chapter Markdown line by line: headings,
// fenced code, bullet and numbered lists, and paragraphs.
func (w *pdfWriter) markdown(md string) {
	inCode := false
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			w.pdf.Ln(2)
			continue
		}
		if inCode {
			w.pdf.SetFont("Courier", "", w.fontSize-2)
			w.pdf.SetFillColor(245, 245, 245)
			w.pdf.MultiCell(0, w.fontSize*0.4, w.tr(line), "", "L", true)
			continue
		}

		switch {
		case trimmed == "":
			w.pdf.Ln(w.fontSize * 0.25)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			w.heading(cleanInlineMarkdown(strings.TrimLeft(trimmed, "# ")), level+1)
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "+ "):
			w.pdf.SetFont("Helvetica", "", w.fontSize)
			w.pdf.MultiCell(0, w.fontSize*0.5, w.tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case orderedItemRe.MatchString(trimmed):
			w.pdf.SetFont("Helvetica", "", w.fontSize)
			w.pdf.MultiCell(0, w.fontSize*0.5, w.tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		case strings.HasPrefix(trimmed, ">"):
			w.pdf.SetFont("Helvetica", "I", w.fontSize)
			w.pdf.MultiCell(0, w.fontSize*0.5, w.tr(cleanInlineMarkdown(strings.TrimLeft(trimmed, "> "))), "", "L", false)
		default:
			w.pdf.SetFont("Helvetica", "", w.fontSize)
			w.pdf.MultiCell(0, w.fontSize*0.5, w.tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}
}

// heading writes text at a size derived from level (1 is largest).
func (w *pdfWriter) heading(text string, level int) {
	sizes := map[int]float64{1: 1.5, 2: 1.25, 3: 1.1, 4: 1, 5: 0.95, 6: 0.9}
	scale, ok := sizes[level]
	if !ok {
		scale = 0.9
	}
	size := w.fontSize * scale
	w.pdf.Ln(4)
	w.pdf.SetFont("Helvetica", "B", size)
	w.pdf.MultiCell(0, size*0.5, w.tr(text), "", "L", false)
	w.pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	// Italic markers only at word edges, so "don't*" style text survives.
	text = italicRe.ReplaceAllString(text, " $1 ")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = inlineLinkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
