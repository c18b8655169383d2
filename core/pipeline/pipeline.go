// Package pipeline wires fetch, process, render and output into a single
// conversion call. Convert never panics and never returns a bare error:
// every outcome is reported through Result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/fetch"
	"github.com/gaurav-prasanna/bookpipe/core/output"
	"github.com/gaurav-prasanna/bookpipe/core/process"
	"github.com/gaurav-prasanna/bookpipe/core/render"
)

// Config holds the collaborators shared by every conversion.
type Config struct {
	Logger    *slog.Logger
	Progress  core.Progress
	OutputDir string // default output directory; empty means ./converted
	Workers   int    // EPUB chapter extraction concurrency; <= 0 means GOMAXPROCS
}

// Request describes one conversion.
type Request struct {
	Input        string
	OutputFormat string // json, markdown/md, text/txt, pdf
	OutputPath   string // optional file or directory
	CleanOutput  bool   // empty the default output directory before writing
	Options      *core.Options
}

// Result is the outcome of a conversion.
type Result struct {
	Success      bool   `json:"success"`
	InputFile    string `json:"inputFile,omitempty"`
	OutputFile   string `json:"outputFile,omitempty"`
	OutputFormat string `json:"outputFormat,omitempty"`
	Warning      string `json:"warning,omitempty"`
	Error        string `json:"error,omitempty"`

	// Err is the underlying error for errors.Is / errors.As checks.
	Err error `json:"-"`
}

// Pipeline converts e-book files.
type Pipeline struct {
	cfg     Config
	fetcher *fetch.FileFetcher
	writer  *output.Writer
	clean   func() error
}

// New creates a Pipeline. Nil collaborators in cfg become no-ops.
func New(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Progress == nil {
		cfg.Progress = core.NopProgress
	}
	w := output.New(cfg.OutputDir, cfg.Logger)
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetch.New(),
		writer:  w,
		clean:   w.Clean,
	}
}

// Writer returns the output writer, for callers that clean the default
// directory once before a batch.
func (p *Pipeline) Writer() *output.Writer {
	return p.writer
}

// Convert runs one conversion: validate the input and output format,
// process, convert, resolve the output path and write the file.
func (p *Pipeline) Convert(ctx context.Context, req Request) (res Result) {
	logger := p.cfg.Logger.With("input", req.Input)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", "panic", r)
			res = failure(req, fmt.Errorf("internal error: %v", r))
		}
	}()

	in, err := p.fetcher.Fetch(ctx, req.Input)
	if err != nil {
		return failure(req, err)
	}

	format, err := core.ParseOutputFormat(req.OutputFormat)
	if err != nil {
		return failure(req, err)
	}

	opts := core.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	if err := opts.Validate(); err != nil {
		return failure(req, err)
	}

	if in.Format == core.InputMOBI {
		logger.Warn("MOBI support is limited; for best results convert to EPUB first")
	}

	proc, err := process.For(in.Format, process.Config{
		Progress: p.cfg.Progress,
		Logger:   p.cfg.Logger,
		Workers:  p.cfg.Workers,
	})
	if err != nil {
		return failure(req, err)
	}
	conv, err := render.For(format)
	if err != nil {
		return failure(req, err)
	}

	logger.Info("processing", "file", filepath.Base(in.Path), "format", in.Format)
	doc, err := proc.Process(ctx, in.Path)
	if err != nil {
		return failure(req, err)
	}
	if n := failedChapters(doc); n > 0 {
		logger.Warn("some chapters could not be extracted", "failed", n, "total", len(doc.Chapters))
	}

	logger.Info("converting", "to", format)
	data, err := conv.Convert(doc, opts)
	if err != nil {
		return failure(req, err)
	}

	warning := doc.Warning
	path := p.writer.Resolve(in.Path, req.OutputPath, conv.Extension())
	if req.OutputPath == "" && req.CleanOutput {
		if err := p.clean(); err != nil {
			logger.Warn("output directory not fully cleaned", "error", err)
			warning = joinWarnings(warning, CleanWarning(err))
		}
	}
	if err := p.writer.Write(path, data); err != nil {
		return failure(req, err)
	}

	return Result{
		Success:      true,
		InputFile:    req.Input,
		OutputFile:   path,
		OutputFormat: format.String(),
		Warning:      warning,
	}
}

// CleanWarning describes a failed clean of the default output directory.
func CleanWarning(err error) string {
	return "Output directory not fully cleaned: " + err.Error()
}

func joinWarnings(warnings ...string) string {
	var out []string
	for _, w := range warnings {
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

func failure(req Request, err error) Result {
	return Result{
		InputFile:    req.Input,
		OutputFormat: req.OutputFormat,
		Error:        message(req, err),
		Err:          err,
	}
}

// message renders err for display. Validation failures use fixed wording
// so callers can match on "not found" and "Unsupported".
func message(req Request, err error) string {
	switch {
	case errors.Is(err, core.ErrInputNotFound):
		return "Input file not found: " + req.Input
	case errors.Is(err, core.ErrUnsupportedInputFormat):
		return "Unsupported input format: " + filepath.Ext(req.Input)
	case errors.Is(err, core.ErrUnsupportedOutputFormat):
		return "Unsupported output format: " + req.OutputFormat
	default:
		return err.Error()
	}
}

func failedChapters(doc *core.Document) int {
	n := 0
	for _, ch := range doc.Chapters {
		if ch.Error != "" {
			n++
		}
	}
	return n
}
