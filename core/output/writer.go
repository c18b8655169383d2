// Package output handles output file naming and writing for bookpipe.
// Without an explicit path, files go to the default directory (./converted)
// and are named after the input file (book.epub → converted/book.md).
package output

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the output directory used when no path is given.
const DefaultDir = "converted"

// Writer resolves output paths and writes converted files to disk.
type Writer struct {
	DefaultDir string
	logger     *slog.Logger
}

// New creates a Writer using defaultDir for outputs without an explicit
// path. If defaultDir is empty, it defaults to ./converted.
func New(defaultDir string, logger *slog.Logger) *Writer {
	if defaultDir == "" {
		defaultDir = DefaultDir
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{DefaultDir: defaultDir, logger: logger}
}

// Resolve returns the path to write for input in the format with extension ext.
//
//   - explicit empty: DefaultDir/<input base><ext>
//   - explicit is an existing directory or ends with a separator:
//     explicit/<input base><ext>
//   - explicit has no extension: explicit + ext
//   - otherwise explicit unchanged
func (w *Writer) Resolve(input, explicit, ext string) string {
	name := baseName(input) + ext
	switch {
	case explicit == "":
		return filepath.Join(w.DefaultDir, name)
	case strings.HasSuffix(explicit, string(filepath.Separator)) || strings.HasSuffix(explicit, "/") || isDir(explicit):
		return filepath.Join(explicit, name)
	case filepath.Ext(explicit) == "":
		return explicit + ext
	default:
		return explicit
	}
}

// Clean deletes the regular files directly inside DefaultDir. A missing
// directory is not an error. Every file is attempted; failures are joined.
func (w *Writer) Clean() error {
	entries, err := os.ReadDir(w.DefaultDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading output directory: %w", err)
	}

	var errs []error
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(w.DefaultDir, e.Name())
		if err := os.Remove(path); err != nil {
			w.logger.Warn("could not delete file", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			continue
		}
		removed++
	}
	w.logger.Info("cleaned output directory", "dir", w.DefaultDir, "removed", removed)
	return errors.Join(errs...)
}

// Write creates the parent directory of path if needed and writes data.
func (w *Writer) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	w.logger.Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
