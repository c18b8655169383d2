// Package crawl — file filtering rules.
// Provides helpers to filter and normalize paths during discovery.
package crawl

import (
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// IsSupported reports whether path has an input extension bookpipe can read.
func IsSupported(path string) bool {
	_, err := core.InputFormatOf(path)
	return err == nil
}

// IsHidden reports whether a file or directory name starts with a dot.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// NormalizePath returns an absolute, cleaned form of path for deduplication.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
