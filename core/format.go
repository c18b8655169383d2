package core

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// InputFormat enumerates the supported e-book formats.
type InputFormat int

const (
	InputEPUB InputFormat = iota + 1
	InputMOBI
	InputPDF
)

// InputFormats lists every supported input format in display order.
var InputFormats = []InputFormat{InputEPUB, InputMOBI, InputPDF}

func (f InputFormat) String() string {
	switch f {
	case InputEPUB:
		return "EPUB"
	case InputMOBI:
		return "MOBI"
	case InputPDF:
		return "PDF"
	default:
		return "unknown"
	}
}

// Extension returns the canonical file extension, including the dot.
func (f InputFormat) Extension() string {
	switch f {
	case InputEPUB:
		return ".epub"
	case InputMOBI:
		return ".mobi"
	case InputPDF:
		return ".pdf"
	default:
		return ""
	}
}

// ParseInputFormat maps a file extension (with or without the dot, any case)
// to an InputFormat.
func ParseInputFormat(ext string) (InputFormat, error) {
	e := strings.ToLower(ext)
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	for _, f := range InputFormats {
		if f.Extension() == e {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedInputFormat, ext)
}

// InputFormatOf returns the format of path based on its extension.
func InputFormatOf(path string) (InputFormat, error) {
	return ParseInputFormat(filepath.Ext(path))
}

// OutputFormat enumerates the supported output encodings.
type OutputFormat int

const (
	OutputJSON OutputFormat = iota + 1
	OutputMarkdown
	OutputText
	OutputPDF
)

// OutputFormats lists every supported output format in display order.
var OutputFormats = []OutputFormat{OutputJSON, OutputMarkdown, OutputText, OutputPDF}

func (f OutputFormat) String() string {
	switch f {
	case OutputJSON:
		return "json"
	case OutputMarkdown:
		return "markdown"
	case OutputText:
		return "text"
	case OutputPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Extension returns the canonical file extension, including the dot.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputJSON:
		return ".json"
	case OutputMarkdown:
		return ".md"
	case OutputText:
		return ".txt"
	case OutputPDF:
		return ".pdf"
	default:
		return ""
	}
}

// Aliases returns every accepted name for f.
func (f OutputFormat) Aliases() []string {
	switch f {
	case OutputJSON:
		return []string{"json"}
	case OutputMarkdown:
		return []string{"markdown", "md"}
	case OutputText:
		return []string{"text", "txt"}
	case OutputPDF:
		return []string{"pdf"}
	default:
		return nil
	}
}

// ParseOutputFormat maps a format name (case-insensitive) to an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range OutputFormats {
		if slices.Contains(f.Aliases(), n) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedOutputFormat, name)
}
