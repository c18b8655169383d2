package process

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gaurav-prasanna/bookpipe/core"
)

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Ada Writer</dc:creator>
    <dc:creator>Bo Editor</dc:creator>
    <dc:publisher>Acme Press</dc:publisher>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:isbn:0000000000</dc:identifier>
  </metadata>
  <manifest>
    <item id="ch1" href="chapter01.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter02.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch3" href="chapter03.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch4" href="missing.xhtml" media-type="application/xhtml+xml"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
    <itemref idref="ch3"/>
    <itemref idref="ch4"/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="chapter01.xhtml"/>
      <navPoint id="np1a" playOrder="2">
        <navLabel><text>Section A</text></navLabel>
        <content src="chapter01.xhtml#a"/>
      </navPoint>
    </navPoint>
    <navPoint id="np2" playOrder="3">
      <navLabel><text>Chapter Two</text></navLabel>
      <content src="chapter02.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

const testChapter1 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>One</title></head>
<body>
<h1>Chapter One</h1>
<p>Hello, <em>world</em>!</p>
<h2 id="a">Section A</h2>
<p>More text.</p>
</body>
</html>`

const testChapter2 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Two</title></head>
<body>
<p>Goodbye, world!</p>
</body>
</html>`

const testChapter3 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Three</title></head>
<body>
<h2>Untracked Heading</h2>
<p>No TOC entry for this one.</p>
</body>
</html>`

// writeTestEPUB writes a small EPUB 2 archive with four spine items, the
// last of which has no file in the archive.
func writeTestEPUB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	files := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainer},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/toc.ncx", testNCX},
		{"OEBPS/chapter01.xhtml", testChapter1},
		{"OEBPS/chapter02.xhtml", testChapter2},
		{"OEBPS/chapter03.xhtml", testChapter3},
	}
	for _, file := range files {
		w, err := zw.Create(file.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", file.name, err)
		}
		if _, err := w.Write([]byte(file.body)); err != nil {
			t.Fatalf("zip write %s: %v", file.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

type recordedProgress struct {
	mu      sync.Mutex
	percent []int
}

func (r *recordedProgress) Report(percent int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = append(r.percent, percent)
}

func TestEPUBProcess(t *testing.T) {
	path := writeTestEPUB(t)
	progress := &recordedProgress{}

	doc, err := NewEPUB(Config{Progress: progress, Workers: 2}).Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantMeta := core.Metadata{
		Title:      "Test Book",
		Creator:    "Ada Writer, Bo Editor",
		Publisher:  "Acme Press",
		Language:   "en",
		Identifier: "urn:isbn:0000000000",
	}
	if doc.Metadata != wantMeta {
		t.Errorf("metadata = %+v, want %+v", doc.Metadata, wantMeta)
	}

	if len(doc.Chapters) != 4 {
		t.Fatalf("got %d chapters, want 4", len(doc.Chapters))
	}
	wantTitles := []string{"Chapter One", "Chapter Two", "Untracked Heading", "Chapter 4"}
	for i, ch := range doc.Chapters {
		if ch.Title != wantTitles[i] {
			t.Errorf("chapters[%d].Title = %q, want %q", i, ch.Title, wantTitles[i])
		}
	}
	if !strings.Contains(doc.Chapters[0].Content, "Hello") {
		t.Errorf("chapter 1 content = %q, want it to contain Hello", doc.Chapters[0].Content)
	}
	if doc.Chapters[0].Error != "" {
		t.Errorf("chapter 1 error = %q, want none", doc.Chapters[0].Error)
	}
}

func TestEPUBProcessMissingChapterFile(t *testing.T) {
	doc, err := NewEPUB(Config{}).Process(context.Background(), writeTestEPUB(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	broken := doc.Chapters[3]
	if broken.Error == "" {
		t.Error("missing chapter file should set Error")
	}
	if broken.Content != "" {
		t.Errorf("missing chapter content = %q, want empty", broken.Content)
	}
	if broken.ID != "ch4" {
		t.Errorf("missing chapter id = %q, want ch4", broken.ID)
	}
	for i := 0; i < 3; i++ {
		if doc.Chapters[i].Content == "" {
			t.Errorf("chapters[%d] lost its content next to a broken sibling", i)
		}
	}
}

func TestEPUBProcessTOC(t *testing.T) {
	doc, err := NewEPUB(Config{}).Process(context.Background(), writeTestEPUB(t))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := []core.TOCEntry{
		{ID: "ch1", Title: "Chapter One", Level: 1, Order: 1},
		{ID: "ch1", Title: "Section A", Level: 2, Order: 2},
		{ID: "ch2", Title: "Chapter Two", Level: 1, Order: 3},
	}
	if len(doc.TOC) != len(want) {
		t.Fatalf("got %d toc entries, want %d: %+v", len(doc.TOC), len(want), doc.TOC)
	}
	for i, e := range doc.TOC {
		e.Href = ""
		if e != want[i] {
			t.Errorf("toc[%d] = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestEPUBProcessProgress(t *testing.T) {
	progress := &recordedProgress{}
	if _, err := NewEPUB(Config{Progress: progress, Workers: 3}).Process(context.Background(), writeTestEPUB(t)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := progress.percent
	if len(got) < 3 || got[0] != 10 || got[1] != 20 {
		t.Fatalf("progress = %v, want to start with 10, 20", got)
	}
	if got[len(got)-1] != 100 {
		t.Errorf("last progress = %d, want 100", got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("progress went backwards: %v", got)
			break
		}
	}
}

func TestEPUBProcessErrors(t *testing.T) {
	notZip := filepath.Join(t.TempDir(), "bad.epub")
	if err := os.WriteFile(notZip, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.epub")},
		{"not an archive", notZip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEPUB(Config{}).Process(context.Background(), tt.path)
			if !errors.Is(err, core.ErrProcessing) {
				t.Fatalf("err = %v, want ErrProcessing", err)
			}
			var pe *core.ProcessingError
			if !errors.As(err, &pe) || pe.Format != core.InputEPUB {
				t.Errorf("err = %#v, want *ProcessingError for EPUB", err)
			}
		})
	}
}

func TestEPUBProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEPUB(Config{}).Process(ctx, writeTestEPUB(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestUniqueChapterIDs(t *testing.T) {
	tests := []struct {
		in, want []string
	}{
		{[]string{"a", "b", "a", "a"}, []string{"a", "b", "a-2", "a-3"}},
		{[]string{"a", "a", "a-2"}, []string{"a", "a-3", "a-2"}},
		{[]string{"a-2", "a", "a", "a"}, []string{"a-2", "a", "a-3", "a-4"}},
	}
	for _, tt := range tests {
		chapters := make([]core.Chapter, len(tt.in))
		for i, id := range tt.in {
			chapters[i].ID = id
		}
		got := uniqueChapterIDs(chapters)
		seen := map[string]bool{}
		for i, ch := range got {
			if ch.ID != tt.want[i] {
				t.Errorf("%v: ids[%d] = %q, want %q", tt.in, i, ch.ID, tt.want[i])
			}
			if seen[ch.ID] {
				t.Errorf("%v: duplicate id %q", tt.in, ch.ID)
			}
			seen[ch.ID] = true
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Text/Chapter 01.xhtml": "text-chapter-01-xhtml",
		"--Hello--":             "hello",
		"":                      "",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
