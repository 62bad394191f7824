// Package engine is the trigger engine: it evaluates the schedule at the
// top of every check interval, fires due alarms and runs the firing state
// until the alarm is snoozed, deactivated or times out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/oshokin/sleep-alarm/internal/clock"
	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/metrics"
	"github.com/oshokin/sleep-alarm/internal/output"
	"github.com/oshokin/sleep-alarm/internal/service/aligner"
)

// Engine states.
const (
	StateIdle   = "idle"
	StateFiring = "firing"
)

// Engine events. Every event but eventFire leaves the firing state.
const (
	eventFire       = "fire"
	eventSnooze     = "snooze"
	eventDeactivate = "deactivate"
	eventTimeout    = "timeout"
	eventAbort      = "abort"
)

const (
	// DefaultCheckInterval is the spacing of schedule evaluations.
	DefaultCheckInterval = time.Minute
	// DefaultPollInterval is how often the firing state checks for input.
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultTolerance is how far from its minute an alarm still counts as due.
	DefaultTolerance = 2 * time.Second
)

// ErrMissingDependency is returned by New when a required collaborator is nil.
var ErrMissingDependency = errors.New("missing engine dependency")

// Store is the part of the schedule store the engine needs.
type Store interface {
	Day(ctx context.Context, day alarm.Day) (alarm.DaySchedule, error)
	Global(ctx context.Context) (alarm.GlobalSettings, error)
	SetEnabled(ctx context.Context, day alarm.Day, enabled bool) error
	SetWakeTime(ctx context.Context, day alarm.Day, tod alarm.TimeOfDay) error
	SetAlignedTime(ctx context.Context, day alarm.Day, tod *alarm.TimeOfDay) error
}

// Aligner handles sleep-now presses while idle.
type Aligner interface {
	Toggle(ctx context.Context, now time.Time) (aligner.Result, error)
}

// Reporter handles snooze presses while idle.
type Reporter interface {
	Report(ctx context.Context, now time.Time) (bool, error)
}

// Dependencies are the collaborators of the engine. Reporter may be nil.
type Dependencies struct {
	Store    Store
	Sink     output.Sink
	Queue    *input.Queue
	Clock    clock.Clock
	Aligner  Aligner
	Reporter Reporter
}

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	CheckInterval time.Duration
	PollInterval  time.Duration
	Tolerance     time.Duration
}

// Episode describes the alarm currently firing.
type Episode struct {
	// ID identifies the firing in logs and status replies.
	ID string
	// Day is the schedule day that fired.
	Day alarm.Day
	// Source is the alarm of that day that fired.
	Source Source
	// Content is what is being played.
	Content alarm.Content
	// Target is the scheduled instant of the alarm.
	Target time.Time
	// StartedAt is when the firing began.
	StartedAt time.Time
}

// Status is a snapshot of the engine.
type Status struct {
	// State is StateIdle or StateFiring.
	State string
	// Episode is set while firing.
	Episode *Episode
}

// Engine drives the alarm.
type Engine struct {
	// deps are the collaborators.
	deps Dependencies
	// opts are the effective tunables.
	opts Options
	// machine tracks idle and firing.
	machine *fsm.FSM
	// overrides keeps, per day, the wake setting a snooze replaced.
	overrides map[alarm.Day]snoozeOverride
	// spent keeps, per day, the instant of a fired aligned alarm whose field
	// waits for the normal alarm of that date to pass.
	spent map[alarm.Day]time.Time
	// lastFired is the target instant of the latest firing.
	lastFired time.Time
	// episode is the alarm being fired, nil while idle.
	episode *Episode
	// mu protects episode.
	mu sync.RWMutex
}

// New creates an idle engine.
func New(deps Dependencies, opts Options) (*Engine, error) {
	switch {
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: store", ErrMissingDependency)
	case deps.Sink == nil:
		return nil, fmt.Errorf("%w: sink", ErrMissingDependency)
	case deps.Queue == nil:
		return nil, fmt.Errorf("%w: input queue", ErrMissingDependency)
	case deps.Clock == nil:
		return nil, fmt.Errorf("%w: clock", ErrMissingDependency)
	case deps.Aligner == nil:
		return nil, fmt.Errorf("%w: aligner", ErrMissingDependency)
	}

	if opts.CheckInterval <= 0 || opts.CheckInterval > time.Minute {
		opts.CheckInterval = DefaultCheckInterval
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	e := &Engine{
		deps:      deps,
		opts:      opts,
		overrides: make(map[alarm.Day]snoozeOverride),
		spent:     make(map[alarm.Day]time.Time),
	}

	e.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventFire, Src: []string{StateIdle}, Dst: StateFiring},
			{Name: eventSnooze, Src: []string{StateFiring}, Dst: StateIdle},
			{Name: eventDeactivate, Src: []string{StateFiring}, Dst: StateIdle},
			{Name: eventTimeout, Src: []string{StateFiring}, Dst: StateIdle},
			{Name: eventAbort, Src: []string{StateFiring}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, ev *fsm.Event) {
				logger.DebugKV(ctx, "Engine state changed", "event", ev.Event, "from", ev.Src, "to", ev.Dst)
			},
			"after_event": func(_ context.Context, ev *fsm.Event) {
				if ev.Event != eventFire {
					metrics.AlarmStopped(ev.Event)

					return
				}

				if len(ev.Args) > 0 {
					if source, ok := ev.Args[0].(string); ok {
						metrics.AlarmFired(source)
					}
				}
			},
		},
	)

	return e, nil
}

// Status returns a snapshot of the engine. It is safe for concurrent use.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := Status{State: e.machine.Current()}

	if e.episode != nil {
		episode := *e.episode
		status.Episode = &episode
	}

	return status
}

// Run evaluates the schedule at every check interval boundary until ctx is
// canceled, handling idle button presses in between.
func (e *Engine) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "engine")

	logger.InfoKV(ctx, "Trigger engine started", "check_interval", e.opts.CheckInterval.String())

	for {
		boundary := e.deps.Clock.After(e.untilNextTick(e.deps.Clock.Now()))

	wait:
		for {
			select {
			case <-ctx.Done():
				logger.Info(ctx, "Trigger engine stopped")

				return nil
			case ev := <-e.deps.Queue.Events():
				e.handleIdle(ctx, ev)
			case <-boundary:
				break wait
			}
		}

		if err := e.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			metrics.TickFailed()
			logger.ErrorKV(ctx, "Trigger evaluation failed", "error", err)
		}
	}
}

// untilNextTick returns the wait until the next check interval boundary,
// counted from the start of the minute.
func (e *Engine) untilNextTick(now time.Time) time.Duration {
	sinceMinute := time.Duration(now.Second())*time.Second + time.Duration(now.Nanosecond())

	return e.opts.CheckInterval - sinceMinute%e.opts.CheckInterval
}

// Tick performs one evaluation: it handles buffered presses, settles fired
// aligned alarms, reconciles the current day and fires the due alarm, if
// any. A firing blocks until the alarm stops.
func (e *Engine) Tick(ctx context.Context) error {
	for _, ev := range e.deps.Queue.Drain() {
		e.handleIdle(ctx, ev)
	}

	now := e.deps.Clock.Now()
	day := alarm.DayOf(now)

	e.settleSpent(ctx, now)

	ds, err := e.deps.Store.Day(ctx, day)
	if err != nil {
		return fmt.Errorf("read %s schedule: %w", day, err)
	}

	var pending *snoozeOverride
	if o, ok := e.overrides[day]; ok {
		pending = &o
	}

	decision := decide(&ds, now, e.opts.Tolerance, pending)
	if decision.Branch != BranchIdle {
		logger.DebugKV(ctx, "Trigger evaluated", "day", day, "branch", string(decision.Branch))
	}

	// A failed write must not cost the due alarm its firing.
	reconcileErr := e.reconcile(ctx, day, &decision)
	if reconcileErr != nil {
		logger.ErrorKV(ctx, "Unable to reconcile schedule", "day", day, "branch", string(decision.Branch), "error", reconcileErr)
	}

	if !decision.Fire {
		return reconcileErr
	}

	if decision.Target.Equal(e.lastFired) {
		logger.DebugKV(ctx, "Alarm already fired", "target", decision.Target)

		return reconcileErr
	}

	if decision.Source == SourceAligned && !decision.ClearAligned {
		e.spent[day] = decision.Target
	}

	return errors.Join(reconcileErr, e.fire(ctx, &ds, &decision, now))
}

// reconcile writes the schedule changes a decision asks for.
func (e *Engine) reconcile(ctx context.Context, day alarm.Day, decision *Decision) error {
	if decision.ClearAligned {
		if err := e.deps.Store.SetAlignedTime(ctx, day, nil); err != nil {
			return fmt.Errorf("clear cycle-aligned alarm: %w", err)
		}

		logger.InfoKV(ctx, "Cycle-aligned alarm cleared", "day", day, "branch", string(decision.Branch))
	}

	if decision.EnableNormal {
		if err := e.deps.Store.SetEnabled(ctx, day, true); err != nil {
			return fmt.Errorf("re-enable normal alarm: %w", err)
		}
	}

	return nil
}

// settleSpent consumes fired aligned alarms once the normal alarm of their
// date can no longer take over, whatever day it is now. Failed writes are
// retried on the next tick.
func (e *Engine) settleSpent(ctx context.Context, now time.Time) {
	for day, firedAt := range e.spent {
		if _, snoozed := e.overrides[day]; snoozed {
			continue
		}

		ds, err := e.deps.Store.Day(ctx, day)
		if err != nil {
			logger.WarnKV(ctx, "Unable to settle aligned alarm", "day", day, "error", err)

			continue
		}

		normalAt := ds.WakeTime.On(firedAt)
		if normalAt.After(firedAt) && normalAt.After(now.Add(-e.opts.Tolerance)) {
			continue
		}

		if ds.HasAligned() && ds.AlignedTime.On(firedAt).Equal(firedAt) {
			if err = e.deps.Store.SetAlignedTime(ctx, day, nil); err != nil {
				logger.WarnKV(ctx, "Unable to clear fired aligned alarm", "day", day, "error", err)

				continue
			}

			logger.InfoKV(ctx, "Cycle-aligned alarm cleared", "day", day, "fired_at", firedAt)
		}

		if !ds.Enabled {
			if err = e.deps.Store.SetEnabled(ctx, day, true); err != nil {
				logger.WarnKV(ctx, "Unable to re-enable normal alarm", "day", day, "error", err)

				continue
			}
		}

		delete(e.spent, day)
	}
}

// handleIdle routes a press received while no alarm is firing.
func (e *Engine) handleIdle(ctx context.Context, ev input.Event) {
	switch ev.Kind {
	case input.SetCycleAlignedNow:
		if _, err := e.deps.Aligner.Toggle(ctx, ev.At); err != nil {
			logger.WarnKV(ctx, "Sleep-now press failed", "error", err)
		}
	case input.Snooze:
		if e.deps.Reporter == nil {
			return
		}

		if _, err := e.deps.Reporter.Report(ctx, ev.At); err != nil {
			logger.WarnKV(ctx, "Time report failed", "error", err)
		}
	case input.Deactivate:
		logger.DebugKV(ctx, "Ignoring deactivate while idle")
	}
}

func (e *Engine) setEpisode(episode *Episode) {
	e.mu.Lock()
	e.episode = episode
	e.mu.Unlock()
}
