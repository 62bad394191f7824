// Package reporter speaks the current time when the snooze button is pressed
// while no alarm is sounding.
package reporter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/output"
)

// DefaultDebounce is the minimum spacing between two announcements.
const DefaultDebounce = 10 * time.Second

// Reporter announces the time.
type Reporter struct {
	// sink speaks the announcement.
	sink output.Sink
	// debounce is the minimum spacing between announcements.
	debounce time.Duration
	// last is when the previous announcement was made.
	last time.Time
	// mu protects last.
	mu sync.Mutex
}

// New creates a reporter. A non-positive debounce uses DefaultDebounce.
func New(sink output.Sink, debounce time.Duration) *Reporter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Reporter{
		sink:     sink,
		debounce: debounce,
	}
}

// Report speaks now as a wall-clock time. It reports false when the press
// was swallowed by the debounce window.
func (r *Reporter) Report(ctx context.Context, now time.Time) (bool, error) {
	r.mu.Lock()
	if !r.last.IsZero() && now.Sub(r.last) < r.debounce {
		r.mu.Unlock()

		return false, nil
	}

	r.last = now
	r.mu.Unlock()

	text := "It is " + now.Format("3:04 PM")
	logger.DebugKV(ctx, "Reporting time", "text", text)

	if err := r.sink.Speak(ctx, text); err != nil {
		return true, fmt.Errorf("speak time: %w", err)
	}

	return true, nil
}
