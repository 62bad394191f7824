package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/clock"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/engine"
)

type staticStatus struct {
	status engine.Status
}

func (s staticStatus) Status() engine.Status {
	return s.status
}

func newTestService(t *testing.T) (*service, *input.Queue, *clock.Fake) {
	t.Helper()

	store, err := schedule.Open(context.Background(), filepath.Join(t.TempDir(), "schedule.yaml"))
	require.NoError(t, err)

	fake := clock.NewFake(time.Date(2026, time.October, 19, 6, 0, 0, 0, time.Local))
	queue := input.NewQueue(fake, input.WithDebounce(0), input.WithCapacity(1))

	return newService(queue, staticStatus{status: engine.Status{State: engine.StateIdle}}, store, fake), queue, fake
}

func TestService_Press(t *testing.T) {
	t.Parallel()

	svc, queue, _ := newTestService(t)
	actor := &domain.Actor{Hostname: "laptop", Username: "sam"}

	accepted, err := svc.Press(context.Background(), input.Snooze, actor)
	require.NoError(t, err)
	require.True(t, accepted)

	_, err = svc.Press(context.Background(), input.Deactivate, nil)
	require.ErrorIs(t, err, input.ErrQueueFull)

	events := queue.Drain()
	require.Len(t, events, 1)
	require.Equal(t, input.Snooze, events[0].Kind)
}

func TestService_SetField(t *testing.T) {
	t.Parallel()

	svc, _, fake := newTestService(t)
	ctx := context.Background()
	monday := domain.Monday

	require.NoError(t, svc.SetField(ctx, &monday, schedule.FieldWakeTime, "07:15", nil))
	require.NoError(t, svc.SetField(ctx, nil, schedule.FieldEnabled, "on", nil))
	require.ErrorIs(t, svc.SetField(ctx, &monday, schedule.FieldWakeTime, "25:00", nil), domain.ErrInvalidFieldValue)

	sched, err := svc.Schedule(ctx)
	require.NoError(t, err)
	require.Equal(t, "07:15", sched.Days[domain.Monday].WakeTime.String())

	for _, ds := range sched.Days {
		require.True(t, ds.Enabled)
	}

	require.Equal(t, engine.StateIdle, svc.Status(ctx).State)
	require.Equal(t, fake.Now(), svc.Now())
}
