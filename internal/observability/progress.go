package observability

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar renders a single-line progress bar, redrawn in place.
type ProgressBar struct {
	out io.Writer
	bar progress.Model
}

// NewProgressBar creates a ProgressBar writing to out.
func NewProgressBar(out io.Writer) *ProgressBar {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &ProgressBar{out: out, bar: bar}
}

// Update redraws the bar for processed of total items.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (b *ProgressBar) Update(processed, total int, label string) {
	pct := 0.0
	if total > 0 {
		pct = float64(processed) / float64(total)
	}
	fmt.Fprintf(b.out, "\r%s %d/%d %s\033[K", b.bar.ViewAs(pct), processed, total, label)
}

// Done ends the progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (b *ProgressBar) Done() {
	fmt.Fprintln(b.out)
}
