package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/normalize"
)

// substitution is one step of the Markdown stripping cascade.
type substitution struct {
	re   *regexp.Regexp
	repl string
}

var (
	fenceLine  = regexp.MustCompile("(?m)^[ \\t]*(```|~~~).*$")
	inlineCode = regexp.MustCompile("`([^`\\n]+)`")

	// codeSpan matches a closed fenced block or an inline code span.
	codeSpan    = regexp.MustCompile("(?ms)^[ \\t]*(?:```|~~~)[^\\n]*\\n.*?^[ \\t]*(?:```|~~~)[ \\t]*$|`[^`\\n]+`")
	placeholder = regexp.MustCompile("\\x00(\\d+)\\x00")
)

// stripCascade removes Markdown syntax from normalized chapter text.
// Order matters: rules run before emphasis so "* * *" is not read as
// italics, and bold runs before italic so "**x**" is not taken as two
// single delimiters. Emphasis needs non-space text inside both delimiters,
// so "2 * 3 * 4" is left alone. Headings may follow a blockquote or list
// marker, which are removed later.
var stripCascade = []substitution{
	{regexp.MustCompile(`(?m)^([ \t>]*(?:[-*+]|\d+[.)])?[ \t]*)#{1,6}[ \t]+`), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*([*_-])([ \t]*([*_-])){2,}[ \t]*$`), ""},
	{regexp.MustCompile(`\*\*([^*\s](?:.*?[^*\s])?)\*\*`), "$1"},
	{regexp.MustCompile(`(^|\W)__([^_\s](?:.*?[^_\s])?)__(\W|$)`), "$1$2$3"},
	{regexp.MustCompile(`\*([^*\s](?:[^*\n]*?[^*\s])?)\*`), "$1"},
	{regexp.MustCompile(`(^|\W)_([^_\s](?:[^_\n]*?[^_\s])?)_(\W|$)`), "$1$2$3"},
	{regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`), "$1"},
	{fenceLine, ""},
	{inlineCode, "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`), ""},
	{regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+\\-.!>|~])"), "$1"},
}

// blankRuns collapses three or more newlines into one blank line. It runs
// last, after code is restored.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// StripMarkdown turns Markdown into plain text using the substitution cascade.
// Code spans and fenced blocks are set aside first and come back with only
// their delimiters removed. Unbalanced emphasis is left as written.
func StripMarkdown(md string) string {
	var code []string
	md = codeSpan.ReplaceAllStringFunc(md, func(c string) string {
		code = append(code, c)
		return fmt.Sprintf("\x00%d\x00", len(code)-1)
	})

	for _, s := range stripCascade {
		md = s.re.ReplaceAllString(md, s.repl)
	}

	md = placeholder.ReplaceAllStringFunc(md, func(p string) string {
		i, err := strconv.Atoi(placeholder.FindStringSubmatch(p)[1])
		if err != nil || i >= len(code) {
			return p
		}
		c := fenceLine.ReplaceAllString(code[i], "")
		return inlineCode.ReplaceAllString(c, "$1")
	})
	return blankRuns.ReplaceAllString(md, "\n\n")
}

// TextConverter renders a document as plain text.
type TextConverter struct{}

// NewTextConverter creates a TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

// Convert writes the title, an optional METADATA block, then the stripped
// body of every chapter. Chapter titles are not repeated; they normally open
// the chapter body already. Normalizer options are ignored so the cascade
// always sees the default delimiters.
func (c *TextConverter) Convert(doc *core.Document, opts core.Options) ([]byte, error) {
	norm := normalize.New(core.DefaultNormalizeOptions())

	var out segments
	if doc.Metadata.Title != "" {
		out.add(doc.Metadata.Title, "\n\n")
	}

	if opts.IncludeMetadata {
		out.add("METADATA\n", "---------\n")
		for _, f := range doc.Metadata.Fields() {
			if f.Value != "" {
				out.addf("%s: %s\n", f.Key, f.Value)
			}
		}
		out.add("\n")
	}

	for _, ch := range doc.Chapters {
		if ch.Content == "" {
			continue
		}
		md, err := norm.Normalize(ch.Content)
		if err != nil {
			return nil, conversionError(core.OutputText, fmt.Errorf("chapter %s: %w", ch.ID, err))
		}
		if text := strings.TrimSpace(StripMarkdown(md)); text != "" {
			out.add(text, "\n\n")
		}
	}

	return []byte(strings.TrimSpace(out.String())), nil
}

// Extension returns the file extension for plain text output.
func (c *TextConverter) Extension() string {
	return core.OutputText.Extension()
}
