package render

import (
	"fmt"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/normalize"
)

// UntitledBook is the heading used when a document has no title.
const UntitledBook = "Untitled Book"

// MarkdownConverter renders a document as a single Markdown file.
type MarkdownConverter struct{}

// NewMarkdownConverter creates a MarkdownConverter.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert renders the title, optional CSS, metadata and TOC sections, then
// every chapter with its body normalized from HTML.
func (c *MarkdownConverter) Convert(doc *core.Document, opts core.Options) ([]byte, error) {
	norm := normalize.New(opts.Normalize)
	h1 := headingMarker(opts.HeadingLevel, 1)
	h2 := headingMarker(opts.HeadingLevel, 2)

	title := doc.Metadata.Title
	if title == "" {
		title = UntitledBook
	}

	var out segments
	out.addf("%s %s\n\n", h1, title)

	if opts.CustomCSS != "" {
		out.add("<style>\n", opts.CustomCSS, "\n</style>\n\n")
	}

	if opts.IncludeMetadata {
		out.addf("%s Metadata\n\n", h2)
		for _, f := range doc.Metadata.Fields() {
			if f.Value != "" {
				out.addf("- **%s**: %s\n", f.Key, f.Value)
			}
		}
		out.add("\n")
	}

	if opts.IncludeTOC && len(doc.TOC) > 0 {
		out.addf("%s Table of Contents\n\n", h2)
		for i, e := range doc.TOC {
			out.addf("%d. [%s](#%s)\n", i+1, e.Title, e.ID)
		}
		out.add("\n")
	}

	for _, ch := range doc.Chapters {
		out.addf("%s %s\n\n", h2, ch.Title)
		body, err := norm.Normalize(ch.Content)
		if err != nil {
			return nil, conversionError(core.OutputMarkdown, fmt.Errorf("chapter %s: %w", ch.ID, err))
		}
		if body == "" {
			body = "(No content available)"
		}
		out.add(body, "\n\n")
	}

	return []byte(out.String()), nil
}

// Extension returns the file extension for Markdown output.
func (c *MarkdownConverter) Extension() string {
	return core.OutputMarkdown.Extension()
}
