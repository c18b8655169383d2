package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/chunk"
	"github.com/jung-kurt/gofpdf"
)

type fakeBackend struct {
	name  string
	text  *pdfText
	err   error
	calls int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Extract(_ string, report func(done, total int)) (*pdfText, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	for i := range b.text.Pages {
		report(i+1, len(b.text.Pages))
	}
	return b.text, nil
}

func newTestPDFProcessor(backends ...pdfBackend) *PDFProcessor {
	p := NewPDF(Config{})
	p.backends = backends
	return p
}

func pagesOf(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("text of page %d", i+1)
	}
	return pages
}

func TestPDFBackendChain(t *testing.T) {
	tests := []struct {
		name        string
		first       *fakeBackend
		second      *fakeBackend
		wantWarning string
		wantSecond  int
	}{
		{
			name:       "first backend wins",
			first:      &fakeBackend{name: "direct", text: &pdfText{Pages: pagesOf(3)}},
			second:     &fakeBackend{name: "fallback", text: &pdfText{Pages: pagesOf(3), Degraded: true}},
			wantSecond: 0,
		},
		{
			name:        "falls back on open failure",
			first:       &fakeBackend{name: "direct", err: errors.New("broken xref")},
			second:      &fakeBackend{name: "fallback", text: &pdfText{Pages: pagesOf(3), Degraded: true}},
			wantWarning: PDFDegradedWarning,
			wantSecond:  1,
		},
		{
			name:        "falls back when no text",
			first:       &fakeBackend{name: "direct", text: &pdfText{Pages: []string{"", " ", ""}}},
			second:      &fakeBackend{name: "fallback", text: &pdfText{Pages: pagesOf(3), Degraded: true}},
			wantWarning: PDFDegradedWarning,
			wantSecond:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newTestPDFProcessor(tt.first, tt.second).Process(context.Background(), "/books/report.pdf")
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if doc.Warning != tt.wantWarning {
				t.Errorf("warning = %q, want %q", doc.Warning, tt.wantWarning)
			}
			if tt.second.calls != tt.wantSecond {
				t.Errorf("fallback called %d times, want %d", tt.second.calls, tt.wantSecond)
			}
			if len(doc.Chapters) != 3 {
				t.Errorf("got %d chapters, want 3", len(doc.Chapters))
			}
		})
	}
}

func TestPDFAllBackendsFail(t *testing.T) {
	p := newTestPDFProcessor(
		&fakeBackend{name: "direct", err: errors.New("bad header")},
		&fakeBackend{name: "fallback", err: errors.New("bad trailer")},
	)
	_, err := p.Process(context.Background(), "broken.pdf")
	if !errors.Is(err, core.ErrProcessing) {
		t.Fatalf("err = %v, want ErrProcessing", err)
	}
	for _, want := range []string{"direct: bad header", "fallback: bad trailer"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestPDFBlankDocumentKeepsPages(t *testing.T) {
	p := newTestPDFProcessor(
		&fakeBackend{name: "direct", text: &pdfText{Pages: []string{"", ""}}},
		&fakeBackend{name: "fallback", err: errors.New("unsupported filter")},
	)
	doc, err := p.Process(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(doc.Chapters) != 2 {
		t.Errorf("got %d chapters, want 2", len(doc.Chapters))
	}
}

func TestPDFMetadata(t *testing.T) {
	tests := []struct {
		name string
		info pdfInfo
		want core.Metadata
	}{
		{
			name: "info dictionary",
			info: pdfInfo{Title: "Annual Report", Author: "Finance", Producer: "Writer"},
			want: core.Metadata{Title: "Annual Report", Creator: "Finance", Publisher: "Writer", Language: "en", Identifier: "pdf:report"},
		},
		{
			name: "filename fallback",
			want: core.Metadata{Title: "report", Creator: "Unknown", Publisher: "Unknown", Language: "en", Identifier: "pdf:report"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pdfMetadata("/tmp/report.pdf", tt.info); got != tt.want {
				t.Errorf("pdfMetadata = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPDFChaptersFromPages(t *testing.T) {
	p := newTestPDFProcessor(&fakeBackend{name: "direct", text: &pdfText{Pages: pagesOf(25)}})
	doc, err := p.Process(context.Background(), "long.pdf")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(doc.Chapters) != 10 {
		t.Fatalf("got %d chapters, want 10", len(doc.Chapters))
	}
	if got, want := doc.Chapters[0].Title, "Chapter 1 (Pages 1-2)"; got != want {
		t.Errorf("first title = %q, want %q", got, want)
	}
	last := doc.Chapters[9]
	if got, want := last.Title, "Chapter 10 (Pages 19-25)"; got != want {
		t.Errorf("last title = %q, want %q", got, want)
	}
	if !strings.Contains(last.Content, `id="page25"`) || strings.Contains(last.Content, `id="page18"`) {
		t.Errorf("last chapter holds the wrong pages: %s", last.Content)
	}
	if len(doc.TOC) != 10 || doc.TOC[9].ID != "chapter10" || doc.TOC[9].Order != 10 {
		t.Errorf("toc does not mirror chapters: %+v", doc.TOC)
	}
}

func TestPagesHTMLEscapesText(t *testing.T) {
	pages := []string{"Tom & Jerry <3\n\nsecond\nparagraph"}
	got := pagesHTML(pages, chunk.Range{Start: 0, End: 1})
	want := `<div class="chapter"><div class="page" id="page1"><p>Tom &amp; Jerry &lt;3</p><p>second paragraph</p></div></div>`
	if got != want {
		t.Errorf("pagesHTML =\n%s\nwant\n%s", got, want)
	}
}

func TestStreamText(t *testing.T) {
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(Hello) Tj\n0 -14 Td\n[(Wor) -20 (ld)] TJ\nT*\n(\\101  \\(open\\)) Tj\nET\n"
	got := streamText([]byte(stream))
	want := "Hello\nWorld\nA (open)"
	if got != want {
		t.Errorf("streamText = %q, want %q", got, want)
	}
}

func writeTestPDF(t *testing.T, pages int) string {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sample Report", false)
	pdf.SetAuthor("Test Author", false)
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.MultiCell(0, 6, fmt.Sprintf("Alpha paragraph on page %d.", i), "", "L", false)
	}
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing pdf: %v", err)
	}
	return path
}

func TestPDFProcessGeneratedFile(t *testing.T) {
	progress := &recordedProgress{}
	doc, err := NewPDF(Config{Progress: progress}).Process(context.Background(), writeTestPDF(t, 12))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if doc.Metadata.Title != "Sample Report" {
		t.Errorf("title = %q, want Sample Report", doc.Metadata.Title)
	}
	if doc.Metadata.Identifier != "pdf:sample" {
		t.Errorf("identifier = %q, want pdf:sample", doc.Metadata.Identifier)
	}
	if len(doc.Chapters) != 10 {
		t.Fatalf("got %d chapters, want 10", len(doc.Chapters))
	}
	if got, want := doc.Chapters[9].Title, "Chapter 10 (Pages 10-12)"; got != want {
		t.Errorf("last title = %q, want %q", got, want)
	}

	var all strings.Builder
	for _, ch := range doc.Chapters {
		all.WriteString(ch.Content)
	}
	if !strings.Contains(all.String(), "Alpha") {
		t.Errorf("extracted text missing page content: %s", all.String())
	}
	if last := progress.percent[len(progress.percent)-1]; last != 100 {
		t.Errorf("last progress = %d, want 100", last)
	}
}

func TestPDFProcessMissingFile(t *testing.T) {
	_, err := NewPDF(Config{}).Process(context.Background(), filepath.Join(t.TempDir(), "none.pdf"))
	var pe *core.ProcessingError
	if !errors.As(err, &pe) || pe.Format != core.InputPDF {
		t.Fatalf("err = %v, want *ProcessingError for PDF", err)
	}
}

func TestMOBIProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Novel.mobi")
	if err := os.WriteFile(path, []byte("BOOKMOBI"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewMOBI(Config{}).Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := core.Metadata{Title: "Novel", Creator: "Unknown", Publisher: "Unknown", Language: "en", Identifier: "mobi:Novel.mobi"}
	if doc.Metadata != want {
		t.Errorf("metadata = %+v, want %+v", doc.Metadata, want)
	}
	if doc.Warning != MOBIWarning {
		t.Errorf("warning = %q", doc.Warning)
	}
	if len(doc.Chapters) != 1 || doc.Chapters[0].ID != "chapter1" || doc.Chapters[0].Title != "Limited MOBI Support" {
		t.Fatalf("chapters = %+v", doc.Chapters)
	}
	if !strings.Contains(doc.Chapters[0].Content, "Filename: Novel") {
		t.Errorf("notice does not name the file: %s", doc.Chapters[0].Content)
	}
	if len(doc.TOC) != 1 || doc.TOC[0].ID != "chapter1" {
		t.Errorf("toc = %+v", doc.TOC)
	}
}

func TestMOBIProcessUnreadable(t *testing.T) {
	_, err := NewMOBI(Config{}).Process(context.Background(), filepath.Join(t.TempDir(), "gone.mobi"))
	if !errors.Is(err, core.ErrProcessing) {
		t.Errorf("err = %v, want ErrProcessing", err)
	}
}

func TestFor(t *testing.T) {
	for _, f := range core.InputFormats {
		p, err := For(f, Config{})
		if err != nil || p == nil {
			t.Errorf("For(%s) = %v, %v", f, p, err)
		}
	}
	if _, err := For(core.InputFormat(0), Config{}); !errors.Is(err, core.ErrUnsupportedInputFormat) {
		t.Errorf("For(0) err = %v, want ErrUnsupportedInputFormat", err)
	}
}
