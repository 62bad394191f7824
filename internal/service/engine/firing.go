package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/logger"
)

// fire plays the alarm of ds and blocks until it stops.
func (e *Engine) fire(ctx context.Context, ds *alarm.DaySchedule, decision *Decision, now time.Time) error {
	global, err := e.deps.Store.Global(ctx)
	if err != nil {
		return fmt.Errorf("read global settings: %w", err)
	}

	episode := &Episode{
		ID:        uuid.NewString(),
		Day:       ds.Day,
		Source:    decision.Source,
		Content:   ds.Content,
		Target:    decision.Target,
		StartedAt: now,
	}

	ctx = logger.WithKV(ctx, "episode", episode.ID)

	if err = e.machine.Event(ctx, eventFire, episode.Source.String()); err != nil {
		return fmt.Errorf("enter firing state: %w", err)
	}

	e.lastFired = decision.Target
	e.setEpisode(episode)

	logger.InfoKV(ctx, "Alarm firing",
		"day", episode.Day,
		"source", episode.Source.String(),
		"branch", string(decision.Branch),
		"content", episode.Content.String())

	if err = e.deps.Sink.SetVolume(ctx, global.VolumePercent); err != nil {
		logger.WarnKV(ctx, "Unable to set volume", "percent", global.VolumePercent, "error", err)
	}

	if err = e.deps.Sink.StartAlarm(ctx, episode.Content); err != nil {
		logger.ErrorKV(ctx, "Unable to start alarm output", "error", err)
	}

	reason := e.await(ctx, episode, global.ActivationTimeout)

	// Stopping must complete even when the daemon is shutting down.
	stopCtx := context.WithoutCancel(ctx)

	if err = e.deps.Sink.StopAlarm(stopCtx); err != nil {
		logger.ErrorKV(ctx, "Unable to stop alarm output", "error", err)
	}

	var stopErr error

	switch reason {
	case eventSnooze:
		stopErr = e.snooze(stopCtx, episode, global.Snooze)
	case eventDeactivate:
		stopErr = e.restoreOverrides(stopCtx)
	case eventTimeout:
		clear(e.overrides)
	}

	e.setEpisode(nil)

	logger.InfoKV(ctx, "Alarm stopped", "reason", reason, "after", e.deps.Clock.Now().Sub(episode.StartedAt).String())

	return errors.Join(stopErr, e.machine.Event(stopCtx, reason))
}

// await waits for the press or timeout that ends the firing and returns the
// matching engine event.
func (e *Engine) await(ctx context.Context, episode *Episode, timeout time.Duration) string {
	for {
		if e.deps.Clock.Now().Sub(episode.StartedAt) >= timeout {
			return eventTimeout
		}

		select {
		case <-ctx.Done():
			return eventAbort
		case ev := <-e.deps.Queue.Events():
			if ev.At.Before(episode.StartedAt) {
				logger.DebugKV(ctx, "Dropping stale press", "button", ev.Kind.String(), "at", ev.At)

				continue
			}

			switch ev.Kind {
			case input.Snooze:
				return eventSnooze
			case input.Deactivate:
				return eventDeactivate
			case input.SetCycleAlignedNow:
				logger.DebugKV(ctx, "Ignoring sleep-now while firing")
			}
		case <-e.deps.Clock.After(e.opts.PollInterval):
		}
	}
}

// snooze moves the wake time of the day the snoozed alarm lands on, keeping
// the first replaced setting of that day for restoration.
func (e *Engine) snooze(ctx context.Context, episode *Episode, snooze time.Duration) error {
	at := episode.StartedAt.Add(snooze)

	// Wake times have minute precision; the refire must land on a later
	// minute than the one that just fired or the duplicate guard drops it.
	if next := episode.Target.Truncate(time.Minute).Add(time.Minute); at.Before(next) {
		at = next
	}

	day := alarm.DayOf(at)

	ds, err := e.deps.Store.Day(ctx, day)
	if err != nil {
		return fmt.Errorf("read %s schedule: %w", day, err)
	}

	if _, ok := e.overrides[day]; !ok {
		e.overrides[day] = snoozeOverride{wake: ds.WakeTime, enabled: ds.Enabled}
	}

	wake := alarm.TimeOfDayOf(at)

	if err = e.deps.Store.SetWakeTime(ctx, day, wake); err != nil {
		return fmt.Errorf("store snoozed wake time: %w", err)
	}

	if !ds.Enabled {
		if err = e.deps.Store.SetEnabled(ctx, day, true); err != nil {
			return fmt.Errorf("enable snoozed alarm: %w", err)
		}
	}

	logger.InfoKV(ctx, "Alarm snoozed", "day", day, "wake_time", wake.String())

	return nil
}

// restoreOverrides puts back every wake setting replaced by snoozes.
func (e *Engine) restoreOverrides(ctx context.Context) error {
	var errs []error

	for day, o := range e.overrides {
		if err := e.deps.Store.SetWakeTime(ctx, day, o.wake); err != nil {
			errs = append(errs, fmt.Errorf("restore %s wake time: %w", day, err))

			continue
		}

		if err := e.deps.Store.SetEnabled(ctx, day, o.enabled); err != nil {
			errs = append(errs, fmt.Errorf("restore %s enabled flag: %w", day, err))

			continue
		}

		logger.InfoKV(ctx, "Wake time restored", "day", day, "wake_time", o.wake.String(), "enabled", o.enabled)
		delete(e.overrides, day)
	}

	return errors.Join(errs...)
}
