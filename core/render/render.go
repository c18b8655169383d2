// Package render provides one core.Converter per output format.
// Converters never mutate the document they are given. Each builds its
// output as an ordered list of segments joined once at the end.
package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
)

// For returns the converter for format.
func For(format core.OutputFormat) (core.Converter, error) {
	switch format {
	case core.OutputJSON:
		return NewJSONConverter(), nil
	case core.OutputMarkdown:
		return NewMarkdownConverter(), nil
	case core.OutputText:
		return NewTextConverter(), nil
	case core.OutputPDF:
		return NewPDFConverter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedOutputFormat, format)
	}
}

// segments accumulates rendered output in order.
type segments []string

func (s *segments) add(parts ...string) {
	*s = append(*s, parts...)
}

func (s *segments) addf(format string, args ...any) {
	*s = append(*s, fmt.Sprintf(format, args...))
}

func (s segments) String() string {
	return strings.Join(s, "")
}

// headingMarker returns the ATX marker for logical level, shifted by the
// configured base heading level and clamped to 1..6.
func headingMarker(base, level int) string {
	if base < 1 {
		base = 1
	}
	return strings.Repeat("#", min(6, max(1, base+level-1)))
}

func conversionError(format core.OutputFormat, err error) error {
	return &core.ConversionError{Format: format, Err: err}
}
