package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const barWidth = 30

// progressBar draws a single-line bar on w, redrawn in place with "\r".
// It implements core.Progress and is safe for concurrent use.
type progressBar struct {
	mu   sync.Mutex
	w    io.Writer
	last int
	open bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w, last: -1}
}

// Report redraws the bar. Updates that do not move the bar forward are
// dropped, except for a new message at the same percentage.
func (p *progressBar) Report(percent int, message string) {
	percent = max(0, min(100, percent))

	p.mu.Lock()
	defer p.mu.Unlock()
	if percent < p.last {
		return
	}
	p.last = percent
	p.open = true

	filled := percent * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(p.w, "\r\033[K%s %3d%% %s", bar, percent, message)
}

// Done ends the bar line and resets the bar for the next file.
func (p *progressBar) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		fmt.Fprintln(p.w)
	}
	p.open = false
	p.last = -1
}
