// Package fetch locates input files on the local filesystem and identifies
// their format before a processor opens them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// Input describes a validated input file.
type Input struct {
	Path   string
	Format core.InputFormat
	Size   int64
}

// FileFetcher checks that inputs exist and carry a supported extension.
type FileFetcher struct{}

// New creates a FileFetcher.
func New() *FileFetcher {
	return &FileFetcher{}
}

// Fetch stats path and maps its extension to an input format. A missing
// path or a directory wraps core.ErrInputNotFound; an unknown extension
// wraps core.ErrUnsupportedInputFormat.
func (f *FileFetcher) Fetch(ctx context.Context, path string) (*Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("checking input %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", core.ErrInputNotFound, path)
	}

	format, err := core.ParseInputFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return &Input{Path: path, Format: format, Size: info.Size()}, nil
}
