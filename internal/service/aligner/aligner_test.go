package aligner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/clock"
	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/domain/sleepcycle"
	"github.com/oshokin/sleep-alarm/internal/output"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
)

// sundayNight is 2026-10-18 23:00, a Sunday.
var sundayNight = time.Date(2026, time.October, 18, 23, 0, 0, 0, time.Local)

type fixture struct {
	store    *schedule.Store
	sink     *output.Recorder
	clock    *clock.Fake
	aligner  *Aligner
	ctx      context.Context
	feedback string
}

func newFixture(t *testing.T, now time.Time, feedback string) *fixture {
	t.Helper()

	ctx := context.Background()

	store, err := schedule.Open(ctx, filepath.Join(t.TempDir(), "schedule.yaml"))
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		sink:     &output.Recorder{},
		clock:    clock.NewFake(now),
		ctx:      ctx,
		feedback: feedback,
	}

	f.aligner = New(store, f.sink, f.clock, Options{Feedback: feedback})

	return f
}

func (f *fixture) setWake(t *testing.T, day alarm.Day, hour, minute int, enabled bool) {
	t.Helper()

	require.NoError(t, f.store.SetWakeTime(f.ctx, day, alarm.TimeOfDay{Hour: hour, Minute: minute}))
	require.NoError(t, f.store.SetEnabled(f.ctx, day, enabled))
}

func (f *fixture) day(t *testing.T, day alarm.Day) alarm.DaySchedule {
	t.Helper()

	ds, err := f.store.Day(f.ctx, day)
	require.NoError(t, err)

	return ds
}

// TestToggle_SetsAlignedAlarm rounds the 07:00 wake-up down to 06:44 after
// five full cycles.
func TestToggle_SetsAlignedAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sundayNight, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)

	result, err := f.aligner.Toggle(f.ctx, sundayNight)
	require.NoError(t, err)
	require.Equal(t, ResultSet, result)

	monday := f.day(t, alarm.Monday)
	require.False(t, monday.Enabled)
	require.NotNil(t, monday.AlignedTime)
	require.Equal(t, alarm.TimeOfDay{Hour: 6, Minute: 44}, *monday.AlignedTime)

	calls := f.sink.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Set at 6:44 AM. 7 hours, 44 minutes", calls[0].Text)
}

// TestToggle_SecondPressDisables removes the aligned alarm and re-enables
// the normal one.
func TestToggle_SecondPressDisables(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sundayNight, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)

	_, err := f.aligner.Toggle(f.ctx, sundayNight)
	require.NoError(t, err)

	result, err := f.aligner.Toggle(f.ctx, sundayNight.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, ResultDisabled, result)

	monday := f.day(t, alarm.Monday)
	require.True(t, monday.Enabled)
	require.Nil(t, monday.AlignedTime)
	require.Equal(t, "Disabled alarm", f.sink.Calls()[1].Text)
}

// TestToggle_Debounce ignores a press right after an accepted one.
func TestToggle_Debounce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sundayNight, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)

	_, err := f.aligner.Toggle(f.ctx, sundayNight)
	require.NoError(t, err)

	result, err := f.aligner.Toggle(f.ctx, sundayNight.Add(5*time.Second))
	require.NoError(t, err)
	require.Equal(t, ResultIgnored, result)
	require.Len(t, f.sink.Calls(), 1)
	require.NotNil(t, f.day(t, alarm.Monday).AlignedTime)
}

// TestToggle_DesiredSleep uses the explicit duration of the evening before.
func TestToggle_DesiredSleep(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sundayNight, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)

	sunday := alarm.Sunday
	require.NoError(t, f.store.SetField(f.ctx, &sunday, schedule.FieldDesiredSleep, "28800"))

	result, err := f.aligner.Toggle(f.ctx, sundayNight)
	require.NoError(t, err)
	require.Equal(t, ResultSet, result)
	require.Equal(t, alarm.TimeOfDay{Hour: 7, Minute: 14}, *f.day(t, alarm.Monday).AlignedTime)
}

// TestToggle_DesiredSleepIntoNextDay toggles the alarm a sleep duration
// placed on the day after the targeted one.
func TestToggle_DesiredSleepIntoNextDay(t *testing.T) {
	t.Parallel()

	now := sundayNight.Add(50 * time.Minute)

	f := newFixture(t, now, config.FeedbackSpeech)
	f.setWake(t, alarm.Sunday, 23, 55, true)
	f.setWake(t, alarm.Monday, 7, 0, true)

	saturday := alarm.Saturday
	require.NoError(t, f.store.SetField(f.ctx, &saturday, schedule.FieldDesiredSleep, "28800"))

	result, err := f.aligner.Toggle(f.ctx, now)
	require.NoError(t, err)
	require.Equal(t, ResultSet, result)

	monday := f.day(t, alarm.Monday)
	require.False(t, monday.Enabled)
	require.NotNil(t, monday.AlignedTime)
	require.Equal(t, alarm.TimeOfDay{Hour: 8, Minute: 4}, *monday.AlignedTime)

	result, err = f.aligner.Toggle(f.ctx, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, ResultDisabled, result)

	monday = f.day(t, alarm.Monday)
	require.True(t, monday.Enabled)
	require.Nil(t, monday.AlignedTime)

	sunday := f.day(t, alarm.Sunday)
	require.True(t, sunday.Enabled)
	require.Nil(t, sunday.AlignedTime)
}

// TestToggle_PastWakeup leaves the schedule untouched and says so.
func TestToggle_PastWakeup(t *testing.T) {
	t.Parallel()

	mondayMorning := time.Date(2026, time.October, 19, 6, 50, 0, 0, time.Local)

	f := newFixture(t, mondayMorning, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)

	result, err := f.aligner.Toggle(f.ctx, mondayMorning)
	require.ErrorIs(t, err, sleepcycle.ErrPastWakeup)
	require.True(t, IsPastWakeup(err))
	require.Equal(t, ResultFailed, result)

	monday := f.day(t, alarm.Monday)
	require.True(t, monday.Enabled)
	require.Nil(t, monday.AlignedTime)
	require.Equal(t, []string{"Speak"}, f.sink.Methods())
	require.Equal(t, "error", f.sink.Calls()[0].Text)
}

// TestToggle_TargetsTomorrowAfterCutoff picks Tuesday on a Monday morning
// once Monday's alarm has passed.
func TestToggle_TargetsTomorrowAfterCutoff(t *testing.T) {
	t.Parallel()

	mondayLate := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.Local)

	f := newFixture(t, mondayLate, config.FeedbackSpeech)
	f.setWake(t, alarm.Monday, 7, 0, true)
	f.setWake(t, alarm.Tuesday, 7, 0, true)

	result, err := f.aligner.Toggle(f.ctx, mondayLate)
	require.NoError(t, err)
	require.Equal(t, ResultSet, result)

	require.Nil(t, f.day(t, alarm.Monday).AlignedTime)
	require.True(t, f.day(t, alarm.Monday).Enabled)

	tuesday := f.day(t, alarm.Tuesday)
	require.False(t, tuesday.Enabled)
	require.Equal(t, alarm.TimeOfDay{Hour: 6, Minute: 14}, *tuesday.AlignedTime)
}

// TestToggle_BeepFeedback chirps once per whole hour of sleep.
func TestToggle_BeepFeedback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sundayNight, config.FeedbackBeep)
	f.setWake(t, alarm.Monday, 7, 0, true)

	_, err := f.aligner.Toggle(f.ctx, sundayNight)
	require.NoError(t, err)

	calls := f.sink.Calls()
	require.Len(t, calls, 7)

	for _, c := range calls {
		require.Equal(t, "Chirp", c.Method)
		require.Equal(t, hourChirp, c.Duration)
	}

	require.Equal(t, sundayNight.Add(6*hourChirpSpacing), f.clock.Now())

	f.sink.Reset()

	result, err := f.aligner.Toggle(f.ctx, sundayNight.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, ResultDisabled, result)
	require.Equal(t, []output.Call{{Method: "Chirp", Duration: disableBeep}}, f.sink.Calls())
}
