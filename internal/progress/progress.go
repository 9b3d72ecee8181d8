// Package progress draws a single-line progress bar for long telegram logs.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	barWidth = 40

	// renderInterval throttles redraws; the final state always renders.
	renderInterval = 100 * time.Millisecond
)

// Bar is a carriage-return progress bar. It is not safe for concurrent use.
type Bar struct {
	out        io.Writer
	label      string
	total      int
	current    int
	started    time.Time
	lastRender time.Time
	finished   bool
	now        func() time.Time
}

// New creates a bar drawn on out (usually stderr so it never mixes with
// data on stdout). Nothing is drawn until Start.
func New(out io.Writer, label string) *Bar {
	return &Bar{
		out:   out,
		label: label,
		now:   time.Now,
	}
}

// Start resets the bar to count up to total.
func (b *Bar) Start(total int) {
	b.total = total
	b.current = 0
	b.finished = false
	b.started = b.now()
	b.lastRender = time.Time{}
}

// Increment advances the bar by one telegram.
func (b *Bar) Increment() {
	if b.finished {
		return
	}
	b.current++
	b.render(false)
}

// Current returns the number of increments so far.
func (b *Bar) Current() int {
	return b.current
}

// Finish draws the final state and ends the line. Later calls are no-ops.
func (b *Bar) Finish() {
	if b.finished {
		return
	}
	b.render(true)
	fmt.Fprint(b.out, "\n")
	b.finished = true
}

func (b *Bar) render(force bool) {
	now := b.now()
	if !force && b.current < b.total && now.Sub(b.lastRender) < renderInterval {
		return
	}
	b.lastRender = now
	fmt.Fprint(b.out, b.line(now.Sub(b.started)))
}

// line formats the bar, e.g. "\rsplitting [=====>----] 50/100 (50.0%) 1.2s".
func (b *Bar) line(elapsed time.Duration) string {
	var percent float64
	if b.total > 0 {
		percent = float64(b.current) / float64(b.total) * 100
	}
	filled := int(float64(barWidth) * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	var sb strings.Builder
	sb.WriteString("\r")
	if b.label != "" {
		sb.WriteString(b.label)
		sb.WriteString(" ")
	}
	sb.WriteString("[")
	sb.WriteString(strings.Repeat("=", filled))
	if filled < barWidth {
		sb.WriteString(">")
		sb.WriteString(strings.Repeat("-", barWidth-filled-1))
	}
	fmt.Fprintf(&sb, "] %d/%d (%.1f%%) %s", b.current, b.total, percent, formatDuration(elapsed))
	return sb.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
