package process

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/chunk"
)

// PDFDegradedWarning is set when text came from the content-stream fallback.
const PDFDegradedWarning = "PDF text was extracted with the fallback backend; layout and some characters may be lost."

var errNoText = errors.New("no text content found")

// pdfInfo holds the fields read from the document info dictionary.
type pdfInfo struct {
	Title    string
	Author   string
	Producer string
}

// pdfText is what a backend hands back: one string per page, in page order.
type pdfText struct {
	Info     pdfInfo
	Pages    []string
	Degraded bool
}

func (t *pdfText) empty() bool {
	for _, p := range t.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// pdfBackend extracts page text from a PDF file. report is called after
// each page with the number of pages done and the total.
type pdfBackend interface {
	Name() string
	Extract(path string, report func(done, total int)) (*pdfText, error)
}

// PDFProcessor reads PDF files through an ordered chain of backends.
// The first backend that yields text wins; pages are then grouped into
// synthetic chapters.
type PDFProcessor struct {
	cfg      Config
	backends []pdfBackend
	chunker  *chunk.Chunker
}

// NewPDF creates a PDFProcessor using tabula, then pdfcpu as fallback.
func NewPDF(cfg Config) *PDFProcessor {
	cfg = cfg.withDefaults()
	return &PDFProcessor{
		cfg:      cfg,
		backends: []pdfBackend{newTabulaBackend(cfg.Logger), newPDFCPUBackend(cfg.Logger)},
		chunker:  chunk.New(chunk.MaxChapters),
	}
}

// Process extracts page text and builds the document.
func (p *PDFProcessor) Process(ctx context.Context, path string) (*core.Document, error) {
	p.cfg.Progress.Report(10, "Loading PDF file...")
	if err := ctx.Err(); err != nil {
		return nil, processingError(core.InputPDF, path, err)
	}

	p.cfg.Progress.Report(30, "Parsing PDF...")
	text, err := p.extract(path)
	if err != nil {
		return nil, processingError(core.InputPDF, path, err)
	}

	doc := &core.Document{
		Metadata: pdfMetadata(path, text.Info),
		TOC:      []core.TOCEntry{},
		Chapters: []core.Chapter{},
	}
	if text.Degraded {
		doc.Warning = PDFDegradedWarning
	}

	for i, r := range p.chunker.Pages(len(text.Pages)) {
		ch := core.Chapter{
			ID:      fmt.Sprintf("chapter%d", i+1),
			Title:   fmt.Sprintf("Chapter %d (Pages %d-%d)", i+1, r.FirstPage(), r.LastPage()),
			Content: pagesHTML(text.Pages, r),
		}
		doc.Chapters = append(doc.Chapters, ch)
		doc.TOC = append(doc.TOC, core.TOCEntry{ID: ch.ID, Title: ch.Title, Order: i + 1})
	}

	p.cfg.Progress.Report(100, "Completed processing PDF.")
	return doc, nil
}

// extract runs the backend chain. A backend that opens the file but finds
// no text is remembered so its page count survives if every backend is empty.
func (p *PDFProcessor) extract(path string) (*pdfText, error) {
	var (
		errs  []error
		blank *pdfText
	)
	for _, b := range p.backends {
		report := func(done, total int) {
			p.cfg.Progress.Report(30+60*done/total, fmt.Sprintf("Processing page %d/%d...", done, total))
		}
		text, err := b.Extract(path, report)
		if err != nil {
			p.cfg.Logger.Debug("pdf backend failed", "backend", b.Name(), "file", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		if text.empty() {
			p.cfg.Logger.Debug("pdf backend found no text", "backend", b.Name(), "file", path)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), errNoText))
			if blank == nil {
				blank = text
			}
			continue
		}
		p.cfg.Logger.Debug("pdf backend succeeded", "backend", b.Name(), "file", path, "pages", len(text.Pages))
		return text, nil
	}
	if blank != nil {
		return blank, nil
	}
	return nil, errors.Join(errs...)
}

func pdfMetadata(path string, info pdfInfo) core.Metadata {
	name := baseName(path)
	return core.Metadata{
		Title:      firstNonEmpty(info.Title, name),
		Creator:    firstNonEmpty(info.Author, "Unknown"),
		Publisher:  firstNonEmpty(info.Producer, "Unknown"),
		Language:   "en",
		Identifier: "pdf:" + name,
	}
}

// pagesHTML wraps the pages of r as escaped paragraphs.
func pagesHTML(pages []string, r chunk.Range) string {
	var b strings.Builder
	b.WriteString(`<div class="chapter">`)
	for i := r.Start; i < r.End; i++ {
		fmt.Fprintf(&b, `<div class="page" id="page%d">`, i+1)
		for _, para := range paragraphs(pages[i]) {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(para))
			b.WriteString("</p>")
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}

// paragraphs splits page text on blank lines and joins wrapped lines.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		p := strings.Join(strings.Fields(block), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
