// Package chunk groups PDF pages into synthetic chapters.
// PDFs carry no chapter boundaries, so pages are split into at most
// MaxChapters contiguous, roughly equal groups.
package chunk

// MaxChapters is the default upper bound on synthesized chapters.
const MaxChapters = 10

// Range is a contiguous run of pages: [Start, End) with 0-based indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of pages in the range.
func (r Range) Len() int { return r.End - r.Start }

// FirstPage and LastPage return 1-based inclusive page numbers for display.
func (r Range) FirstPage() int { return r.Start + 1 }
func (r Range) LastPage() int  { return r.End }

// Chunker splits page counts into ranges.
type Chunker struct {
	MaxChapters int
}

// New creates a Chunker producing at most maxChapters ranges.
// Defaults to MaxChapters if maxChapters <= 0.
func New(maxChapters int) *Chunker {
	if maxChapters <= 0 {
		maxChapters = MaxChapters
	}
	return &Chunker{MaxChapters: maxChapters}
}

// Pages splits numPages pages into groups of floor(numPages/MaxChapters)
// pages (at least one). The last group absorbs the remainder, so no more
// than MaxChapters groups are returned.
func (c *Chunker) Pages(numPages int) []Range {
	if numPages <= 0 {
		return nil
	}

	size := numPages / c.MaxChapters
	if size < 1 {
		size = 1
	}
	count := numPages / size
	if count > c.MaxChapters {
		count = c.MaxChapters
	}

	ranges := make([]Range, 0, count)
	for i := 0; i < count; i++ {
		r := Range{Start: i * size, End: (i + 1) * size}
		if i == count-1 {
			r.End = numPages
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// Pages is a shortcut for New(maxChapters).Pages(numPages).
func Pages(numPages, maxChapters int) []Range {
	return New(maxChapters).Pages(numPages)
}
