// Package core defines the document model and pipeline interfaces for bookpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// Metadata holds the recognized bibliographic fields of a book.
// Every field is optional; empty values are omitted when rendering.
type Metadata struct {
	Title      string `json:"title,omitempty"`
	Creator    string `json:"creator,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	Language   string `json:"language,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// MetadataField is a single key/value pair of Metadata.
type MetadataField struct {
	Key   string
	Value string
}

// Fields returns the metadata in canonical key order, including empty values.
func (m Metadata) Fields() []MetadataField {
	return []MetadataField{
		{Key: "title", Value: m.Title},
		{Key: "creator", Value: m.Creator},
		{Key: "publisher", Value: m.Publisher},
		{Key: "language", Value: m.Language},
		{Key: "identifier", Value: m.Identifier},
	}
}

// TOCEntry is one table-of-contents entry. ID normally matches a chapter ID,
// but dangling references are allowed.
type TOCEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Href  string `json:"href,omitempty"`
	Level int    `json:"level,omitempty"`
	Order int    `json:"order,omitempty"`
}

// Chapter is an ordered, independently addressable content unit.
// Content is an HTML fragment. Error is set when extraction of this chapter
// failed; the rest of the document is still usable.
type Chapter struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Document is the canonical representation of a processed e-book.
// It is produced by exactly one Processor and must not be mutated afterwards.
type Document struct {
	Metadata Metadata   `json:"metadata"`
	TOC      []TOCEntry `json:"toc"`
	Chapters []Chapter  `json:"chapters"`
	Warning  string     `json:"warning,omitempty"`
}

// Processor turns an input file into a Document.
type Processor interface {
	Process(ctx context.Context, path string) (*Document, error)
}

// Normalizer converts an HTML fragment into Markdown (the canonical richtext form).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Converter renders a Document into a final output format.
type Converter interface {
	Convert(doc *Document, opts Options) ([]byte, error)
	// Extension returns the file extension for this converter (e.g. ".md", ".json").
	Extension() string
}

// Progress receives observational progress updates (percent in 0..100).
type Progress interface {
	Report(percent int, message string)
}

// ProgressFunc adapts a function to the Progress interface.
type ProgressFunc func(percent int, message string)

// Report calls f(percent, message).
func (f ProgressFunc) Report(percent int, message string) {
	f(percent, message)
}

// NopProgress discards all updates.
var NopProgress Progress = ProgressFunc(func(int, string) {})
