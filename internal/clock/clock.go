// Package clock abstracts wall-clock time so schedulers can run on
// synthetic time in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time and timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// System is the real wall clock.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse.
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Fake is a manually driven clock. After advances the fake time by d and
// fires immediately, so loops that wait on it run without real delays.
type Fake struct {
	// now is the current synthetic time.
	now time.Time
	// mu protects now.
	mu sync.Mutex
}

// NewFake creates a fake clock set to now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the synthetic time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

// After advances the clock by d and returns an already fired channel.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.Advance(d)

	ch := make(chan time.Time, 1)
	ch <- f.Now()

	return ch
}
