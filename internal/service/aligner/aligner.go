// Package aligner implements the sleep-now button: it toggles a one-shot
// alarm aligned to 90-minute sleep cycles for the coming wake-up.
package aligner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/sleep-alarm/internal/clock"
	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/domain/sleepcycle"
	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/metrics"
	"github.com/oshokin/sleep-alarm/internal/output"
)

// Store is the part of the schedule store the aligner needs.
type Store interface {
	Day(ctx context.Context, day alarm.Day) (alarm.DaySchedule, error)
	SetEnabled(ctx context.Context, day alarm.Day, enabled bool) error
	SetAlignedTime(ctx context.Context, day alarm.Day, tod *alarm.TimeOfDay) error
}

// Result describes what a toggle did.
type Result int

const (
	// ResultIgnored means the press arrived inside the debounce window.
	ResultIgnored Result = iota
	// ResultDisabled means an existing cycle-aligned alarm was removed.
	ResultDisabled
	// ResultSet means a new cycle-aligned alarm was stored.
	ResultSet
	// ResultFailed means no feasible wake-up exists; the schedule is unchanged.
	ResultFailed
)

// String returns the metric label of the result.
func (r Result) String() string {
	switch r {
	case ResultIgnored:
		return "ignored"
	case ResultDisabled:
		return "disabled"
	case ResultSet:
		return "set"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

const (
	// DefaultDebounce is the minimum spacing between two accepted toggles.
	DefaultDebounce = 10 * time.Second

	// disableBeep is the chirp confirming a removed alarm.
	disableBeep = 300 * time.Millisecond
	// hourChirp is one chirp of the "hours until wake-up" countdown.
	hourChirp = 10 * time.Millisecond
	// hourChirpSpacing separates countdown chirps.
	hourChirpSpacing = 250 * time.Millisecond
	// errorBeep signals a failed toggle in beep mode.
	errorBeep = time.Second
)

// Options tunes the aligner.
type Options struct {
	// EarliestSetTomorrowHour is the hour from which presses target tomorrow.
	EarliestSetTomorrowHour int
	// Feedback is config.FeedbackSpeech or config.FeedbackBeep.
	Feedback string
	// Debounce is the minimum spacing between accepted toggles.
	Debounce time.Duration
}

// Aligner toggles cycle-aligned alarms.
type Aligner struct {
	// store persists the schedule.
	store Store
	// sink gives spoken or beeped confirmation.
	sink output.Sink
	// clock spaces countdown chirps.
	clock clock.Clock
	// opts holds the tunables.
	opts Options
	// lastToggle is when the previous press was accepted.
	lastToggle time.Time
}

// New creates an aligner.
func New(store Store, sink output.Sink, c clock.Clock, opts Options) *Aligner {
	if opts.EarliestSetTomorrowHour <= 0 {
		opts.EarliestSetTomorrowHour = config.DefaultEarliestSetTomorrowHour
	}

	if opts.Feedback == "" {
		opts.Feedback = config.FeedbackSpeech
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	return &Aligner{
		store: store,
		sink:  sink,
		clock: c,
		opts:  opts,
	}
}

// Toggle handles one sleep-now press at now. A press on a day that already
// has a cycle-aligned alarm removes it; otherwise a new one is computed.
// Errors wrapping sleepcycle.ErrPastWakeup leave the schedule unchanged.
func (a *Aligner) Toggle(ctx context.Context, now time.Time) (Result, error) {
	ctx = logger.WithName(ctx, "aligner")

	if !a.lastToggle.IsZero() && now.Sub(a.lastToggle) < a.opts.Debounce {
		logger.DebugKV(ctx, "Ignoring repeated sleep-now press", "since_last", now.Sub(a.lastToggle).String())

		return ResultIgnored, nil
	}

	a.lastToggle = now

	result, err := a.toggle(ctx, now)
	metrics.AlignerToggled(result.String())

	return result, err
}

func (a *Aligner) toggle(ctx context.Context, now time.Time) (Result, error) {
	target, err := a.targetDay(ctx, now)
	if err != nil {
		return ResultFailed, err
	}

	targetSchedule, err := a.store.Day(ctx, target)
	if err != nil {
		return ResultFailed, fmt.Errorf("read %s schedule: %w", target, err)
	}

	if targetSchedule.HasAligned() {
		return a.disable(ctx, target, *targetSchedule.AlignedTime)
	}

	wake, err := a.computeWake(ctx, now, target, &targetSchedule)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to set cycle-aligned alarm", "day", target, "error", err)
		a.signalError(ctx)

		return ResultFailed, err
	}

	wakeDay := alarm.DayOf(wake)
	wakeTime := alarm.TimeOfDayOf(wake)

	// An explicit sleep duration can land the alarm on another day than
	// target; a press toggles that day's alarm too.
	if wakeDay != target {
		var wakeSchedule alarm.DaySchedule

		if wakeSchedule, err = a.store.Day(ctx, wakeDay); err != nil {
			return ResultFailed, fmt.Errorf("read %s schedule: %w", wakeDay, err)
		}

		if wakeSchedule.HasAligned() {
			return a.disable(ctx, wakeDay, *wakeSchedule.AlignedTime)
		}
	}

	if err = a.store.SetEnabled(ctx, wakeDay, false); err != nil {
		return ResultFailed, fmt.Errorf("disable normal alarm: %w", err)
	}

	if err = a.store.SetAlignedTime(ctx, wakeDay, &wakeTime); err != nil {
		return ResultFailed, fmt.Errorf("store cycle-aligned alarm: %w", err)
	}

	logger.InfoKV(ctx, "Cycle-aligned alarm set",
		"day", wakeDay,
		"wake_time", wakeTime.String(),
		"sleep_for", wake.Sub(now).Round(time.Minute).String())

	a.confirmSet(ctx, now, wake)

	return ResultSet, nil
}

// targetDay picks today while today's alarm is still ahead or before the
// switch-over hour, and tomorrow otherwise.
func (a *Aligner) targetDay(ctx context.Context, now time.Time) (alarm.Day, error) {
	today := alarm.DayOf(now)

	todaySchedule, err := a.store.Day(ctx, today)
	if err != nil {
		return today, fmt.Errorf("read %s schedule: %w", today, err)
	}

	todayWake := todaySchedule.WakeTime.On(now)
	if (!todaySchedule.WakeTime.IsMidnight() && now.Before(todayWake)) || now.Hour() < a.opts.EarliestSetTomorrowHour {
		return today, nil
	}

	return today.Next(), nil
}

// computeWake uses the settings of the evening before target: an explicit
// sleep duration wins, otherwise the target's wake time is cycle-aligned.
func (a *Aligner) computeWake(ctx context.Context, now time.Time, target alarm.Day, targetSchedule *alarm.DaySchedule) (time.Time, error) {
	evening, err := a.store.Day(ctx, target.Prev())
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s schedule: %w", target.Prev(), err)
	}

	if evening.DesiredSleep != 0 {
		return now.Add(evening.TimeToSleep + evening.DesiredSleep), nil
	}

	desired := alarm.NextOccurrence(now, target, targetSchedule.WakeTime)

	return sleepcycle.NearestAlignedWake(desired, evening.TimeToSleep, targetSchedule.MaxOversleep, now)
}

// disable removes the cycle-aligned alarm and restores the normal one.
func (a *Aligner) disable(ctx context.Context, day alarm.Day, was alarm.TimeOfDay) (Result, error) {
	if err := a.store.SetAlignedTime(ctx, day, nil); err != nil {
		return ResultFailed, fmt.Errorf("clear cycle-aligned alarm: %w", err)
	}

	if err := a.store.SetEnabled(ctx, day, true); err != nil {
		return ResultFailed, fmt.Errorf("re-enable normal alarm: %w", err)
	}

	logger.InfoKV(ctx, "Cycle-aligned alarm disabled", "day", day, "was", was.String())

	if a.opts.Feedback == config.FeedbackSpeech {
		a.speak(ctx, "Disabled alarm")
	} else {
		a.chirp(ctx, disableBeep)
	}

	return ResultDisabled, nil
}

func (a *Aligner) confirmSet(ctx context.Context, now, wake time.Time) {
	until := wake.Sub(now)
	hours := int(until / time.Hour)
	minutes := int(until/time.Minute) % 60

	if a.opts.Feedback == config.FeedbackSpeech {
		a.speak(ctx, fmt.Sprintf("Set at %s. %d hours, %d minutes", wake.Format("3:04 PM"), hours, minutes))

		return
	}

	for i := range hours {
		if i > 0 {
			<-a.clock.After(hourChirpSpacing)
		}

		a.chirp(ctx, hourChirp)
	}
}

func (a *Aligner) signalError(ctx context.Context) {
	if a.opts.Feedback == config.FeedbackSpeech {
		a.speak(ctx, "error")

		return
	}

	a.chirp(ctx, errorBeep)
}

func (a *Aligner) speak(ctx context.Context, text string) {
	if err := a.sink.Speak(ctx, text); err != nil {
		logger.WarnKV(ctx, "Speech failed", "text", text, "error", err)
	}
}

func (a *Aligner) chirp(ctx context.Context, d time.Duration) {
	if err := a.sink.Chirp(ctx, d); err != nil {
		logger.WarnKV(ctx, "Chirp failed", "error", err)
	}
}

// IsPastWakeup reports whether err means the wake-up was infeasible.
func IsPastWakeup(err error) bool {
	return errors.Is(err, sleepcycle.ErrPastWakeup)
}
