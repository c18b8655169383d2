package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// JSONConverter serializes the whole document.
type JSONConverter struct{}

// NewJSONConverter creates a JSONConverter.
func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

// Convert applies opts.Filter, then encodes the result. Output is indented
// with two spaces when opts.Pretty is set. HTML characters in chapter
// content are written as-is.
func (c *JSONConverter) Convert(doc *core.Document, opts core.Options) ([]byte, error) {
	out := *doc
	if opts.Filter != nil {
		out = opts.Filter(cloneDocument(doc))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return nil, conversionError(core.OutputJSON, fmt.Errorf("marshaling JSON: %w", err))
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Extension returns the file extension for JSON output.
func (c *JSONConverter) Extension() string {
	return core.OutputJSON.Extension()
}

// cloneDocument copies the slices so a filter cannot reach the original.
func cloneDocument(doc *core.Document) core.Document {
	out := *doc
	out.TOC = slices.Clone(doc.TOC)
	out.Chapters = slices.Clone(doc.Chapters)
	return out
}
