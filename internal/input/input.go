// Package input turns debounced button presses into a bounded event queue
// that the trigger engine drains synchronously.
package input

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/sleep-alarm/internal/clock"
)

// Kind identifies a button.
type Kind int

const (
	// Snooze postpones a firing alarm; while idle it asks for the time.
	Snooze Kind = iota
	// Deactivate stops a firing alarm.
	Deactivate
	// SetCycleAlignedNow toggles a sleep-cycle-aligned alarm for the coming wake-up.
	SetCycleAlignedNow
)

// String returns the button name used by the remote panel.
func (k Kind) String() string {
	switch k {
	case Snooze:
		return "snooze"
	case Deactivate:
		return "deactivate"
	case SetCycleAlignedNow:
		return "sleep-now"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a button name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "snooze":
		return Snooze, nil
	case "deactivate", "off":
		return Deactivate, nil
	case "sleep-now", "set-cycle-aligned-now":
		return SetCycleAlignedNow, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownButton, s)
	}
}

// Event is one accepted button press.
type Event struct {
	// Kind is the pressed button.
	Kind Kind
	// At is when the press was accepted.
	At time.Time
}

const (
	// DefaultCapacity bounds the number of undrained events.
	DefaultCapacity = 8
	// DefaultDebounce is the minimum spacing between presses of one button.
	DefaultDebounce = 2 * time.Second
)

var (
	// ErrQueueFull is returned when the engine has not drained pending events.
	ErrQueueFull = errors.New("input queue is full")
	// ErrUnknownButton is returned for unrecognised button names.
	ErrUnknownButton = errors.New("unknown button")
)

// Queue is a bounded, debounced channel of button events.
type Queue struct {
	// events holds accepted, undrained presses.
	events chan Event
	// clock stamps accepted presses.
	clock clock.Clock
	// debounce is the minimum spacing between two presses of one button.
	debounce time.Duration
	// last is when each button was last accepted.
	last map[Kind]time.Time
	// mu protects last and serializes pushes.
	mu sync.Mutex
}

// Option configures a Queue.
type Option func(*Queue)

// WithDebounce overrides the per-button debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.debounce = d
		}
	}
}

// WithCapacity overrides the queue bound.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.events = make(chan Event, n)
		}
	}
}

// NewQueue creates a queue stamping events with c.
func NewQueue(c clock.Clock, opts ...Option) *Queue {
	q := &Queue{
		events:   make(chan Event, DefaultCapacity),
		clock:    c,
		debounce: DefaultDebounce,
		last:     make(map[Kind]time.Time, 3),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Push records a press. It returns false without error when the press is a
// bounce of an earlier one, and never blocks.
func (q *Queue) Push(kind Kind) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()

	if last, ok := q.last[kind]; ok && now.Sub(last) < q.debounce {
		return false, nil
	}

	select {
	case q.events <- Event{Kind: kind, At: now}:
		q.last[kind] = now

		return true, nil
	default:
		return false, ErrQueueFull
	}
}

// Events exposes the receive side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.events
}

// Drain removes and returns every pending event.
func (q *Queue) Drain() []Event {
	var drained []Event

	for {
		select {
		case ev := <-q.events:
			drained = append(drained, ev)
		default:
			return drained
		}
	}
}
