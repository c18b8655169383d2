// Package crawl expands command-line arguments into the list of e-book
// files to convert. Directories are scanned breadth-first; files are kept in
// a stable order and each file is returned once.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Options controls directory scanning.
type Options struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// MaxFiles stops discovery after this many files; <= 0 means no limit.
	MaxFiles int
	Logger   *slog.Logger
}

// Discover returns the files named by args. Explicit file arguments are
// kept as given, even with an unsupported extension or a missing path, so
// the caller can report them. Directory arguments contribute the supported,
// non-hidden files they contain, sorted by name.
func Discover(ctx context.Context, args []string, opts Options) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files := NewQueue()
	dirs := NewQueue()
	full := func() bool { return opts.MaxFiles > 0 && files.Visited() >= opts.MaxFiles }

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files.Add(arg)
			continue
		}
		dirs.Add(arg)
	}

	for dirs.HasNext() && !full() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := dirs.Next()

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if IsHidden(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			isDir, err := resolveDir(path, e)
			if err != nil {
				logger.Warn("skipping unreadable entry", "path", path, "error", err)
				continue
			}
			switch {
			case isDir && opts.Recursive:
				dirs.Add(path)
			case !isDir && IsSupported(path) && !full():
				if files.Add(path) {
					logger.Debug("discovered file", "path", path)
				}
			}
		}
	}

	return files.All(), nil
}

// resolveDir reports whether the entry is a directory, following symlinks.
func resolveDir(path string, e os.DirEntry) (bool, error) {
	if e.Type()&os.ModeSymlink == 0 {
		return e.IsDir(), nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("dangling symlink: %w", err)
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
