package process

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/tabula"
	pdfcore "github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/reader"
)

// tabulaBackend extracts text in reading order from the page objects.
type tabulaBackend struct {
	logger *slog.Logger
}

func newTabulaBackend(logger *slog.Logger) *tabulaBackend {
	return &tabulaBackend{logger: logger}
}

func (b *tabulaBackend) Name() string { return "tabula" }

func (b *tabulaBackend) Extract(path string, report func(done, total int)) (*pdfText, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer r.Close()

	n, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("reading page tree: %w", err)
	}

	out := &pdfText{Pages: make([]string, n)}
	if info, err := r.GetInfo(); err != nil {
		b.logger.Debug("pdf info unavailable", "file", path, "error", err)
	} else {
		out.Info = tabulaInfo(info)
	}

	for i := range n {
		text, err := b.page(r, i+1)
		if err != nil {
			b.logger.Warn("pdf page extraction failed", "file", path, "page", i+1, "error", err)
		}
		out.Pages[i] = text
		report(i+1, n)
	}
	return out, nil
}

// page extracts one 1-based page. Panics from malformed content streams
// are turned into errors so the remaining pages are still read.
func (b *tabulaBackend) page(r *reader.Reader, pageNr int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("panic: %v", rec)
		}
	}()

	text, warnings, err := tabula.FromReader(r).Pages(pageNr).Text()
	if len(warnings) > 0 {
		b.logger.Debug("pdf page warnings", "page", pageNr, "warnings", len(warnings))
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func tabulaInfo(info pdfcore.Dict) pdfInfo {
	get := func(key string) string {
		if s, ok := info.GetString(key); ok {
			return string(s)
		}
		return ""
	}
	return pdfInfo{
		Title:    get("Title"),
		Author:   get("Author"),
		Producer: get("Producer"),
	}
}
