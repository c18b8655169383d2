package process

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// MOBIWarning is set on every document produced by MOBIProcessor.
const MOBIWarning = "MOBI format has limited support. For better results, convert to EPUB first."

const mobiNotice = `<h1>Limited MOBI Support</h1>
<p>This tool has limited support for direct MOBI parsing.</p>
<p>For better results, consider:</p>
<ul>
<li>Converting your MOBI file to EPUB first using Calibre or similar tools</li>
<li>Using the EPUB version with this tool</li>
</ul>
<p>Filename: %s</p>`

// MOBIProcessor produces a placeholder document for MOBI files.
// The container is read to confirm it is accessible but not parsed.
type MOBIProcessor struct {
	cfg Config
}

// NewMOBI creates a MOBIProcessor.
func NewMOBI(cfg Config) *MOBIProcessor {
	return &MOBIProcessor{cfg: cfg.withDefaults()}
}

// Process fails only when the file cannot be read.
func (p *MOBIProcessor) Process(ctx context.Context, path string) (*core.Document, error) {
	p.cfg.Progress.Report(10, "Reading MOBI file...")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, processingError(core.InputMOBI, path, fmt.Errorf("reading file: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, processingError(core.InputMOBI, path, err)
	}
	p.cfg.Logger.Debug("mobi read", "file", path, "bytes", len(data))

	name := baseName(path)
	p.cfg.Progress.Report(50, "Extracting content (limited support)...")

	chapter := core.Chapter{
		ID:      "chapter1",
		Title:   "Limited MOBI Support",
		Content: fmt.Sprintf(mobiNotice, html.EscapeString(name)),
	}

	p.cfg.Progress.Report(100, "Completed processing MOBI file (limited support).")
	return &core.Document{
		Metadata: core.Metadata{
			Title:      name,
			Creator:    "Unknown",
			Publisher:  "Unknown",
			Language:   "en",
			Identifier: "mobi:" + filepath.Base(path),
		},
		TOC:      []core.TOCEntry{{ID: chapter.ID, Title: chapter.Title, Order: 1}},
		Chapters: []core.Chapter{chapter},
		Warning:  MOBIWarning,
	}, nil
}
