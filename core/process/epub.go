package process

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/extract"
	"github.com/simp-lee/epub"
	"golang.org/x/sync/errgroup"
)

// EPUBProcessor reads EPUB archives. Chapter bodies are extracted
// concurrently, one task per spine item, and stored by spine index.
type EPUBProcessor struct {
	cfg       Config
	extractor *extract.HTMLExtractor
}

// NewEPUB creates an EPUBProcessor.
func NewEPUB(cfg Config) *EPUBProcessor {
	return &EPUBProcessor{cfg: cfg.withDefaults(), extractor: extract.New()}
}

// Process opens the archive at path and builds the document.
// A chapter that cannot be read is kept with an Error instead of failing the book.
func (p *EPUBProcessor) Process(ctx context.Context, path string) (*core.Document, error) {
	book, err := epub.Open(path)
	if err != nil {
		return nil, processingError(core.InputEPUB, path, fmt.Errorf("opening archive: %w", err))
	}
	defer book.Close()

	for _, w := range book.Warnings() {
		p.cfg.Logger.Debug("epub warning", "file", path, "warning", w)
	}

	p.cfg.Progress.Report(10, "Reading metadata...")
	meta := epubMetadata(book.Metadata())

	if err := ctx.Err(); err != nil {
		return nil, processingError(core.InputEPUB, path, err)
	}

	p.cfg.Progress.Report(20, "Processing chapters...")
	spine := book.Chapters()
	chapters := p.extractChapters(spine)
	toc := epubTOC(book.TOC(), spine)

	p.cfg.Progress.Report(100, "Completed processing EPUB.")
	p.cfg.Logger.Debug("epub processed", "file", path, "chapters", len(chapters), "toc", len(toc))

	return &core.Document{
		Metadata: meta,
		TOC:      toc,
		Chapters: chapters,
	}, nil
}

// extractChapters fans out one task per spine item and joins them.
// Results keep spine order regardless of completion order.
func (p *EPUBProcessor) extractChapters(spine []epub.Chapter) []core.Chapter {
	total := len(spine)
	results := make([]core.Chapter, total)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		done int
	)
	g.SetLimit(p.cfg.Workers)

	for i, ch := range spine {
		g.Go(func() error {
			results[i] = p.extractChapter(i, ch)

			mu.Lock()
			done++
			p.cfg.Progress.Report(20+70*done/total, fmt.Sprintf("Processing chapter %d/%d...", done, total))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // tasks record failures on their chapter and never return errors

	return uniqueChapterIDs(results)
}

// extractChapter reads one spine item. Failures, including panics raised by
// the archive reader, are recorded on the returned chapter.
func (p *EPUBProcessor) extractChapter(index int, ch epub.Chapter) (out core.Chapter) {
	id := ch.ID
	if id == "" {
		id = fmt.Sprintf("chapter%d", index+1)
	}
	fallbackTitle := fmt.Sprintf("Chapter %d", index+1)

	defer func() {
		if r := recover(); r != nil {
			out = core.Chapter{ID: id, Title: fallbackTitle, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	body, err := ch.BodyHTML()
	if err != nil {
		p.cfg.Logger.Warn("chapter extraction failed", "chapter", id, "href", ch.Href, "error", err)
		return core.Chapter{ID: id, Title: fallbackTitle, Error: err.Error()}
	}

	title := strings.TrimSpace(ch.Title)
	if title == "" {
		title = p.extractor.FirstHeading(body)
	}
	if title == "" {
		title = fallbackTitle
	}
	return core.Chapter{ID: id, Title: title, Content: body}
}

// uniqueChapterIDs suffixes repeated ids ("ch1", "ch1-2", ...). A suffix
// already used by another chapter is skipped.
func uniqueChapterIDs(chapters []core.Chapter) []core.Chapter {
	taken := make(map[string]bool, len(chapters))
	for _, ch := range chapters {
		taken[ch.ID] = true
	}
	seen := make(map[string]bool, len(chapters))
	next := make(map[string]int, len(chapters))
	for i := range chapters {
		id := chapters[i].ID
		if !seen[id] {
			seen[id] = true
			continue
		}
		n := max(next[id], 2)
		for taken[fmt.Sprintf("%s-%d", id, n)] {
			n++
		}
		suffixed := fmt.Sprintf("%s-%d", id, n)
		next[id] = n + 1
		taken[suffixed] = true
		seen[suffixed] = true
		chapters[i].ID = suffixed
	}
	return chapters
}

func epubMetadata(m epub.Metadata) core.Metadata {
	var authors []string
	for _, a := range m.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	meta := core.Metadata{
		Creator:   strings.Join(authors, ", "),
		Publisher: strings.TrimSpace(m.Publisher),
	}
	if len(m.Titles) > 0 {
		meta.Title = strings.TrimSpace(m.Titles[0])
	}
	if len(m.Language) > 0 {
		meta.Language = strings.TrimSpace(m.Language[0])
	}
	if len(m.Identifiers) > 0 {
		meta.Identifier = strings.TrimSpace(m.Identifiers[0].Value)
	}
	return meta
}

// epubTOC flattens the navigation tree depth-first. Entries pointing at a
// spine item take that item's id so they line up with chapter ids.
func epubTOC(items []epub.TOCItem, spine []epub.Chapter) []core.TOCEntry {
	toc := []core.TOCEntry{}
	var walk func(items []epub.TOCItem, level int)
	walk = func(items []epub.TOCItem, level int) {
		for _, it := range items {
			toc = append(toc, core.TOCEntry{
				ID:    tocEntryID(it, spine),
				Title: strings.TrimSpace(it.Title),
				Href:  it.Href,
				Level: level,
				Order: len(toc) + 1,
			})
			walk(it.Children, level+1)
		}
	}
	walk(items, 1)
	return toc
}

func tocEntryID(it epub.TOCItem, spine []epub.Chapter) string {
	if it.SpineIndex >= 0 && it.SpineIndex < len(spine) && spine[it.SpineIndex].ID != "" {
		return spine[it.SpineIndex].ID
	}
	return slug(it.Href)
}
