package progress

import (
	"fmt"
	"sync"
	"time"
)

// Bar renders a single-line terminal progress bar driven by integer
// percentages, the granularity the pipeline reports at.
type Bar struct {
	mu        sync.Mutex
	percent   int
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a new progress bar at 0%.
func New() *Bar {
	return &Bar{
		startTime: time.Now(),
		lastPrint: time.Now(),
	}
}

// SetPercent moves the bar to p. Values are clamped to 0-100 and the
// bar never moves backwards.
func (b *Bar) SetPercent(p int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if p <= b.percent {
		return
	}
	b.percent = p

	// Update display every 500ms or when complete
	now := time.Now()
	if now.Sub(b.lastPrint) > 500*time.Millisecond || b.percent >= 100 {
		b.render()
		b.lastPrint = now
	}
}

// Finish completes the bar and releases the terminal line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.percent = 100
		b.render()
		fmt.Println()
		b.done = true
	}
}

// render displays the progress bar
func (b *Bar) render() {
	if b.done {
		return
	}

	elapsed := time.Since(b.startTime)

	// Estimate time remaining from the pace so far.
	var eta time.Duration
	if b.percent > 0 {
		eta = elapsed / time.Duration(b.percent) * time.Duration(100-b.percent)
	}

	barWidth := 40
	filled := barWidth * b.percent / 100

	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}

	fmt.Printf("\r[%s] %d%% - Elapsed: %s - ETA: %s   ",
		bar,
		b.percent,
		formatDuration(elapsed),
		formatDuration(eta),
	)
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
