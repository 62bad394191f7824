package engine

import (
	"context"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/clock"
	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/output"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/aligner"
)

// TestRun_FiresOnMinuteBoundary drives the real loop on the bubble clock.
func TestRun_FiresOnMinuteBoundary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := schedule.Open(ctx, filepath.Join(dir, "schedule.yaml"))
		require.NoError(t, err)

		now := time.Now()
		wakeAt := now.Truncate(time.Minute).Add(2 * time.Minute)
		day := alarm.DayOf(wakeAt)

		require.NoError(t, store.SetWakeTime(ctx, day, alarm.TimeOfDayOf(wakeAt)))
		require.NoError(t, store.SetEnabled(ctx, day, true))

		var (
			sink  = &output.Recorder{}
			queue = input.NewQueue(clock.System{})
		)

		e, err := New(Dependencies{
			Store:   store,
			Sink:    sink,
			Queue:   queue,
			Clock:   clock.System{},
			Aligner: aligner.New(store, sink, clock.System{}, aligner.Options{Feedback: config.FeedbackSpeech}),
		}, Options{})
		require.NoError(t, err)

		stopped := make(chan error, 1)

		go func() {
			stopped <- e.Run(ctx)
		}()

		time.Sleep(wakeAt.Sub(now) - time.Second)
		synctest.Wait()
		require.Equal(t, StateIdle, e.Status().State)

		time.Sleep(time.Second)
		synctest.Wait()
		require.Equal(t, StateFiring, e.Status().State)
		require.True(t, sink.Playing())

		_, err = queue.Push(input.Deactivate)
		require.NoError(t, err)

		time.Sleep(DefaultPollInterval)
		synctest.Wait()
		require.Equal(t, StateIdle, e.Status().State)
		require.False(t, sink.Playing())

		cancel()
		require.NoError(t, <-stopped)
	})
}

// TestRun_RecoversFromFailedRead keeps ticking after a tick that could not
// read the schedule.
func TestRun_RecoversFromFailedRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := schedule.Open(ctx, filepath.Join(dir, "schedule.yaml"))
		require.NoError(t, err)

		now := time.Now()
		wakeAt := now.Truncate(time.Minute).Add(2 * time.Minute)
		day := alarm.DayOf(wakeAt)

		require.NoError(t, store.SetWakeTime(ctx, day, alarm.TimeOfDayOf(wakeAt)))
		require.NoError(t, store.SetEnabled(ctx, day, true))

		faulty := &testStore{Store: store}
		faulty.failDays.Store(1)

		var (
			sink  = &output.Recorder{}
			queue = input.NewQueue(clock.System{})
		)

		e, err := New(Dependencies{
			Store:   faulty,
			Sink:    sink,
			Queue:   queue,
			Clock:   clock.System{},
			Aligner: aligner.New(store, sink, clock.System{}, aligner.Options{Feedback: config.FeedbackSpeech}),
		}, Options{})
		require.NoError(t, err)

		stopped := make(chan error, 1)

		go func() {
			stopped <- e.Run(ctx)
		}()

		time.Sleep(wakeAt.Sub(now) - time.Second)
		synctest.Wait()
		require.Zero(t, faulty.failDays.Load())
		require.Equal(t, StateIdle, e.Status().State)

		time.Sleep(time.Second)
		synctest.Wait()
		require.Equal(t, StateFiring, e.Status().State)
		require.True(t, sink.Playing())

		_, err = queue.Push(input.Deactivate)
		require.NoError(t, err)

		time.Sleep(DefaultPollInterval)
		synctest.Wait()
		require.Equal(t, StateIdle, e.Status().State)

		cancel()
		require.NoError(t, <-stopped)
	})
}
