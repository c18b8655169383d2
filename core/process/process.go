// Package process implements one core.Processor per input format.
// Processors are independent of each other and share no state; each call
// to Process builds a fresh core.Document.
package process

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// Config carries the collaborators shared by all processors.
type Config struct {
	// Progress receives observational updates; nil means no-op.
	Progress core.Progress
	// Logger receives diagnostics; nil means discard.
	Logger *slog.Logger
	// Workers bounds concurrent chapter extraction; <= 0 means GOMAXPROCS.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Progress == nil {
		c.Progress = core.NopProgress
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// For returns the processor for format.
func For(format core.InputFormat, cfg Config) (core.Processor, error) {
	switch format {
	case core.InputEPUB:
		return NewEPUB(cfg), nil
	case core.InputMOBI:
		return NewMOBI(cfg), nil
	case core.InputPDF:
		return NewPDF(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedInputFormat, format)
	}
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// slug turns s into a lowercase identifier made of letters, digits and dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func processingError(format core.InputFormat, path string, err error) error {
	return &core.ProcessingError{Format: format, Path: path, Err: err}
}
