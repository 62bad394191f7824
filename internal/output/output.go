// Package output defines the sink the alarm drives: alarm playback, speech,
// short chirps and volume. Recorder is an in-memory sink for tests.
package output

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
)

// Sink plays alarms and feedback.
type Sink interface {
	StartAlarm(ctx context.Context, content alarm.Content) error
	StopAlarm(ctx context.Context) error
	Speak(ctx context.Context, text string) error
	Chirp(ctx context.Context, d time.Duration) error
	SetVolume(ctx context.Context, percent int) error
}

// Call is one recorded sink invocation.
type Call struct {
	// Method is the invoked method name.
	Method string
	// Content is set for StartAlarm.
	Content alarm.Content
	// Text is set for Speak.
	Text string
	// Duration is set for Chirp.
	Duration time.Duration
	// Percent is set for SetVolume.
	Percent int
}

// Recorder is a Sink that remembers every call.
type Recorder struct {
	// calls lists invocations in order.
	calls []Call
	// playing reports whether an alarm is started and not stopped.
	playing bool
	// mu protects the fields above.
	mu sync.Mutex
}

// StartAlarm records the content and marks the alarm as playing.
func (r *Recorder) StartAlarm(_ context.Context, content alarm.Content) error {
	r.record(Call{Method: "StartAlarm", Content: content})

	r.mu.Lock()
	r.playing = true
	r.mu.Unlock()

	return nil
}

// StopAlarm records the call and marks the alarm as silent.
func (r *Recorder) StopAlarm(context.Context) error {
	r.record(Call{Method: "StopAlarm"})

	r.mu.Lock()
	r.playing = false
	r.mu.Unlock()

	return nil
}

// Speak records the text.
func (r *Recorder) Speak(_ context.Context, text string) error {
	r.record(Call{Method: "Speak", Text: text})

	return nil
}

// Chirp records the duration.
func (r *Recorder) Chirp(_ context.Context, d time.Duration) error {
	r.record(Call{Method: "Chirp", Duration: d})

	return nil
}

// SetVolume records the volume.
func (r *Recorder) SetVolume(_ context.Context, percent int) error {
	r.record(Call{Method: "SetVolume", Percent: percent})

	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Call(nil), r.calls...)
}

// Methods returns the recorded method names in order.
func (r *Recorder) Methods() []string {
	calls := r.Calls()
	methods := make([]string, 0, len(calls))

	for _, c := range calls {
		methods = append(methods, c.Method)
	}

	return methods
}

// Playing reports whether an alarm is currently started.
func (r *Recorder) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.playing
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, c)
}
