package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
)

func monday(hour, minute, second int) time.Time {
	return time.Date(2026, time.October, 19, hour, minute, second, 0, time.Local)
}

func tuesday(hour, minute, second int) time.Time {
	return time.Date(2026, time.October, 20, hour, minute, second, 0, time.Local)
}

func daySchedule(wake alarm.TimeOfDay, enabled bool, aligned *alarm.TimeOfDay) alarm.DaySchedule {
	return alarm.DaySchedule{
		Day:         alarm.Monday,
		Enabled:     enabled,
		WakeTime:    wake,
		AlignedTime: aligned,
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	var (
		six          = alarm.TimeOfDay{Hour: 6}
		seven        = alarm.TimeOfDay{Hour: 7}
		sixForty     = alarm.TimeOfDay{Hour: 6, Minute: 40}
		sixThirty    = &alarm.TimeOfDay{Hour: 6, Minute: 30}
		beforeSnooze = &snoozeOverride{wake: seven, enabled: false}
	)

	tests := []struct {
		name     string
		schedule alarm.DaySchedule
		now      time.Time
		pending  *snoozeOverride
		want     Decision
	}{
		{
			name:     "normal due",
			schedule: daySchedule(seven, true, nil),
			now:      monday(7, 0, 1),
			want:     Decision{Branch: BranchNormal, Fire: true, Source: SourceNormal, Target: monday(7, 0, 0)},
		},
		{
			name:     "normal disabled",
			schedule: daySchedule(seven, false, nil),
			now:      monday(7, 0, 0),
			want:     Decision{Branch: BranchIdle},
		},
		{
			name:     "outside tolerance",
			schedule: daySchedule(seven, true, nil),
			now:      monday(7, 0, 3),
			want:     Decision{Branch: BranchIdle},
		},
		{
			name:     "aligned before enabled normal",
			schedule: daySchedule(seven, true, sixThirty),
			now:      monday(6, 30, 0),
			want:     Decision{Branch: BranchAlignedFirst, Fire: true, Source: SourceAligned, Target: monday(6, 30, 0)},
		},
		{
			name:     "aligned with normal disabled",
			schedule: daySchedule(seven, false, sixThirty),
			now:      monday(6, 29, 59),
			want:     Decision{Branch: BranchAlignedOnly, Fire: true, Source: SourceAligned, Target: monday(6, 30, 0)},
		},
		{
			name:     "aligned after disabled normal is consumed at firing",
			schedule: daySchedule(six, false, sixThirty),
			now:      monday(6, 30, 0),
			want: Decision{
				Branch:       BranchAlignedOnly,
				Fire:         true,
				Source:       SourceAligned,
				Target:       monday(6, 30, 0),
				ClearAligned: true,
				EnableNormal: true,
			},
		},
		{
			name:     "aligned after enabled normal is consumed at firing",
			schedule: daySchedule(six, true, sixThirty),
			now:      monday(6, 30, 1),
			want: Decision{
				Branch:       BranchAlignedOnly,
				Fire:         true,
				Source:       SourceAligned,
				Target:       monday(6, 30, 0),
				ClearAligned: true,
			},
		},
		{
			name:     "normal overtakes aligned",
			schedule: daySchedule(seven, true, sixThirty),
			now:      monday(7, 0, 0),
			want: Decision{
				Branch:       BranchNormalOvertakes,
				Fire:         true,
				Source:       SourceNormal,
				Target:       monday(7, 0, 0),
				ClearAligned: true,
			},
		},
		{
			name:     "snoozed aligned alarm refires as normal",
			schedule: daySchedule(sixForty, true, sixThirty),
			now:      monday(6, 40, 0),
			pending:  beforeSnooze,
			want:     Decision{Branch: BranchSnoozedNormal, Fire: true, Source: SourceNormal, Target: monday(6, 40, 0)},
		},
		{
			name:     "aligned between firings",
			schedule: daySchedule(seven, true, sixThirty),
			now:      monday(6, 31, 0),
			want:     Decision{Branch: BranchIdle},
		},
		{
			name:     "aligned consumed, disabled normal still ahead",
			schedule: daySchedule(seven, false, sixThirty),
			now:      monday(6, 45, 0),
			want:     Decision{Branch: BranchIdle},
		},
		{
			name:     "stale aligned is cleared",
			schedule: daySchedule(seven, false, sixThirty),
			now:      monday(7, 1, 0),
			want:     Decision{Branch: BranchStaleAligned, ClearAligned: true, EnableNormal: true},
		},
		{
			name:     "no reconciliation while a snooze is pending",
			schedule: daySchedule(sixForty, true, sixThirty),
			now:      monday(7, 5, 0),
			pending:  beforeSnooze,
			want:     Decision{Branch: BranchIdle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := decide(&tt.schedule, tt.now, DefaultTolerance, tt.pending)
			require.Equal(t, tt.want.Branch, got.Branch)
			require.Equal(t, tt.want.Fire, got.Fire)
			require.Equal(t, tt.want.Source, got.Source)
			require.True(t, tt.want.Target.Equal(got.Target), "target %s, got %s", tt.want.Target, got.Target)
			require.Equal(t, tt.want.ClearAligned, got.ClearAligned)
			require.Equal(t, tt.want.EnableNormal, got.EnableNormal)
		})
	}
}

func TestSourceString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "normal", SourceNormal.String())
	require.Equal(t, "aligned", SourceAligned.String())
}
