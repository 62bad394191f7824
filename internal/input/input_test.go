package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/clock"
)

// TestQueue_Debounce collapses rapid presses of one button only.
func TestQueue_Debounce(t *testing.T) {
	t.Parallel()

	c := clock.NewFake(time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC))
	q := NewQueue(c)

	ok, err := q.Push(Snooze)
	require.NoError(t, err)
	require.True(t, ok)

	c.Advance(500 * time.Millisecond)

	ok, err = q.Push(Snooze)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = q.Push(Deactivate)
	require.NoError(t, err)
	require.True(t, ok)

	c.Advance(2 * time.Second)

	ok, err = q.Push(Snooze)
	require.NoError(t, err)
	require.True(t, ok)

	drained := q.Drain()
	require.Len(t, drained, 3)
	require.Equal(t, Snooze, drained[0].Kind)
	require.Equal(t, Deactivate, drained[1].Kind)
	require.Equal(t, c.Now(), drained[2].At)
	require.Empty(t, q.Drain())
}

// TestQueue_Full never blocks the producer.
func TestQueue_Full(t *testing.T) {
	t.Parallel()

	c := clock.NewFake(time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC))
	q := NewQueue(c, WithCapacity(1), WithDebounce(0))

	_, err := q.Push(Snooze)
	require.NoError(t, err)

	_, err = q.Push(Deactivate)
	require.ErrorIs(t, err, ErrQueueFull)

	ev := <-q.Events()
	require.Equal(t, Snooze, ev.Kind)
}

// TestParseKind accepts the panel names.
func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{Snooze, Deactivate, SetCycleAlignedNow} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	_, err := ParseKind("panic")
	require.ErrorIs(t, err, ErrUnknownButton)
}
