// Package normalize implements the Normalizer interface.
// It converts chapter HTML into Markdown, which serves as the
// canonical richtext format for the Markdown, text and PDF converters.
package normalize

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/extract"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
// Malformed HTML degrades to plain text instead of failing.
type MarkdownNormalizer struct {
	opts      core.NormalizeOptions
	extractor *extract.HTMLExtractor
	conv      *converter.Converter
}

// New creates a MarkdownNormalizer. Empty option fields take their defaults.
func New(opts core.NormalizeOptions) *MarkdownNormalizer {
	opts = opts.WithDefaults()
	return &MarkdownNormalizer{
		opts:      opts,
		extractor: extract.New(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(commonmarkOptions(opts)...),
				table.NewTablePlugin(),
			),
		),
	}
}

// Options returns the effective options.
func (n *MarkdownNormalizer) Options() core.NormalizeOptions {
	return n.opts
}

// Normalize converts an HTML fragment into Markdown.
// The returned error is always nil; it is kept to satisfy core.Normalizer.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	body, err := n.extractor.Extract(html)
	if err != nil {
		return n.extractor.Text(html), nil
	}

	markdown, err := n.conv.ConvertString(body)
	if err != nil {
		return n.extractor.Text(body), nil
	}
	return strings.TrimSpace(markdown), nil
}

func commonmarkOptions(opts core.NormalizeOptions) []commonmark.OptionFunc {
	style := commonmark.HeadingStyleATX
	if strings.EqualFold(opts.HeadingStyle, core.HeadingStyleSetext) {
		style = commonmark.HeadingStyleSetext
	}
	return []commonmark.OptionFunc{
		commonmark.WithHeadingStyle(style),
		commonmark.WithCodeBlockFence(opts.CodeBlockFence),
		commonmark.WithEmDelimiter(opts.EmDelimiter),
		commonmark.WithStrongDelimiter(opts.StrongDelimiter),
		commonmark.WithBulletListMarker(opts.BulletMarker),
		commonmark.WithHorizontalRule(opts.HorizontalRule),
	}
}
