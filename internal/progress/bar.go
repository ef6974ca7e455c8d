package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	barWidth    = 30
	labelWidth  = 40
	redrawEvery = 500 * time.Millisecond
)

// Bar renders acquisition progress on a single terminal line.
type Bar struct {
	out       io.Writer
	total     int
	current   int
	label     string
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a progress bar on stdout.
func New(total int) *Bar {
	return NewWithWriter(total, os.Stdout)
}

// NewWithWriter creates a progress bar that renders to out.
func NewWithWriter(total int, out io.Writer) *Bar {
	now := time.Now()
	return &Bar{
		out:       out,
		total:     total,
		startTime: now,
		lastPrint: now,
	}
}

// Describe sets the label of the item currently being worked on.
func (b *Bar) Describe(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.label = label
	b.render()
	b.lastPrint = time.Now()
}

// Increment increases the progress counter
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++

	now := time.Now()
	if now.Sub(b.lastPrint) > redrawEvery || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

// Current returns the number of completed items.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Finish marks the progress as complete
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}
	b.current = b.total
	b.label = ""
	b.render()
	fmt.Fprintln(b.out)
	b.done = true
}

func (b *Bar) render() {
	if b.done || b.total <= 0 {
		return
	}

	current := min(b.current, b.total)
	percentage := float64(current) / float64(b.total) * 100
	elapsed := time.Since(b.startTime)

	var eta time.Duration
	if current > 0 {
		eta = elapsed / time.Duration(current) * time.Duration(b.total-current)
	}

	filled := barWidth * current / b.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.out, "\r[%s] %d/%d (%.1f%%) - Elapsed: %s - ETA: %s %s",
		bar,
		current,
		b.total,
		percentage,
		formatDuration(elapsed),
		formatDuration(eta),
		fitLabel(b.label),
	)
}

// fitLabel pads or cuts label so a shorter one overwrites a longer one.
func fitLabel(label string) string {
	r := []rune(label)
	if len(r) > labelWidth {
		return string(r[:labelWidth-1]) + "…"
	}
	return label + strings.Repeat(" ", labelWidth-len(r))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
