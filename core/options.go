package core

import (
	"fmt"
	"slices"
	"strings"
)

// Heading styles understood by the normalizer.
const (
	HeadingStyleATX    = "atx"
	HeadingStyleSetext = "setext"
)

// NormalizeOptions tunes the HTML to Markdown translation.
// Zero values select the defaults listed in DefaultNormalizeOptions.
type NormalizeOptions struct {
	HeadingStyle    string `yaml:"headingStyle" json:"headingStyle,omitempty"`
	CodeBlockFence  string `yaml:"codeBlockFence" json:"codeBlockFence,omitempty"`
	EmDelimiter     string `yaml:"emDelimiter" json:"emDelimiter,omitempty"`
	StrongDelimiter string `yaml:"strongDelimiter" json:"strongDelimiter,omitempty"`
	BulletMarker    string `yaml:"bulletMarker" json:"bulletMarker,omitempty"`
	HorizontalRule  string `yaml:"horizontalRule" json:"horizontalRule,omitempty"`
}

// DefaultNormalizeOptions returns ATX headings, fenced code, "*" emphasis,
// "**" strong emphasis and "-" bullets.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		HeadingStyle:    HeadingStyleATX,
		CodeBlockFence:  "```",
		EmDelimiter:     "*",
		StrongDelimiter: "**",
		BulletMarker:    "-",
		HorizontalRule:  "* * *",
	}
}

// WithDefaults fills every empty field from DefaultNormalizeOptions.
func (o NormalizeOptions) WithDefaults() NormalizeOptions {
	d := DefaultNormalizeOptions()
	if o.HeadingStyle == "" {
		o.HeadingStyle = d.HeadingStyle
	}
	if o.CodeBlockFence == "" {
		o.CodeBlockFence = d.CodeBlockFence
	}
	if o.EmDelimiter == "" {
		o.EmDelimiter = d.EmDelimiter
	}
	if o.StrongDelimiter == "" {
		o.StrongDelimiter = d.StrongDelimiter
	}
	if o.BulletMarker == "" {
		o.BulletMarker = d.BulletMarker
	}
	if o.HorizontalRule == "" {
		o.HorizontalRule = d.HorizontalRule
	}
	return o
}

// Validate reports the first unsupported value.
func (o NormalizeOptions) Validate() error {
	o = o.WithDefaults()
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"heading style", strings.ToLower(o.HeadingStyle), []string{HeadingStyleATX, HeadingStyleSetext}},
		{"code block fence", o.CodeBlockFence, []string{"```", "~~~"}},
		{"emphasis delimiter", o.EmDelimiter, []string{"*", "_"}},
		{"strong delimiter", o.StrongDelimiter, []string{"**", "__"}},
		{"bullet marker", o.BulletMarker, []string{"-", "+", "*"}},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("%w: %s %q (allowed: %s)", ErrInvalidOptions, c.name, c.value, strings.Join(c.allowed, ", "))
		}
	}
	if !validRule(o.HorizontalRule) {
		return fmt.Errorf("%w: horizontal rule %q", ErrInvalidOptions, o.HorizontalRule)
	}
	return nil
}

// validRule reports whether s is at least three of the same "*", "-" or "_",
// optionally separated by spaces.
func validRule(s string) bool {
	r := strings.ReplaceAll(s, " ", "")
	if len(r) < 3 || !strings.ContainsAny(r[:1], "*-_") {
		return false
	}
	return strings.Count(r, r[:1]) == len(r)
}

// PDFOptions configures the paginated PDF output.
type PDFOptions struct {
	PageSize string  `yaml:"pageSize" json:"pageSize,omitempty"` // "Letter", "A4", ...
	FontSize float64 `yaml:"fontSize" json:"fontSize,omitempty"`
}

// Options configures a single conversion.
type Options struct {
	IncludeMetadata bool
	IncludeTOC      bool
	HeadingLevel    int // 1..6
	CustomCSS       string
	Pretty          bool // JSON only

	// Filter is applied to the document before JSON serialization.
	Filter func(Document) Document

	Normalize NormalizeOptions
	PDF       PDFOptions
}

// DefaultOptions returns the options used when the caller specifies nothing.
func DefaultOptions() Options {
	return Options{
		IncludeMetadata: true,
		IncludeTOC:      true,
		HeadingLevel:    1,
		Pretty:          true,
		Normalize:       DefaultNormalizeOptions(),
		PDF:             PDFOptions{PageSize: "Letter", FontSize: 12},
	}
}

// Validate checks value ranges. A zero HeadingLevel is accepted and means 1.
func (o Options) Validate() error {
	if o.HeadingLevel < 0 || o.HeadingLevel > 6 {
		return fmt.Errorf("%w: heading level must be between 1 and 6, got %d", ErrInvalidOptions, o.HeadingLevel)
	}
	if o.PDF.FontSize < 0 {
		return fmt.Errorf("%w: font size must be positive, got %g", ErrInvalidOptions, o.PDF.FontSize)
	}
	return o.Normalize.Validate()
}
