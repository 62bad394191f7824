package engine

import (
	"time"

	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
)

// Source tells which alarm of a day fired.
type Source int

const (
	// SourceNormal is the day's regular wake time.
	SourceNormal Source = iota
	// SourceAligned is the day's cycle-aligned wake time.
	SourceAligned
)

// String returns the log and metric label of the source.
func (s Source) String() string {
	if s == SourceAligned {
		return "aligned"
	}

	return "normal"
}

// Branch names the precedence rule a tick followed.
type Branch string

// Precedence rules, in evaluation order.
const (
	BranchIdle            Branch = "idle"
	BranchNormal          Branch = "normal"
	BranchNormalOvertakes Branch = "normal-overtakes-aligned"
	BranchAlignedFirst    Branch = "aligned-before-normal"
	BranchAlignedOnly     Branch = "aligned-only"
	BranchSnoozedNormal   Branch = "snoozed-normal"
	BranchStaleAligned    Branch = "stale-aligned"
)

// Decision is the outcome of evaluating one day at one instant.
type Decision struct {
	// Branch is the rule that produced the decision.
	Branch Branch
	// Fire reports whether an alarm must start.
	Fire bool
	// Source is the alarm that fires.
	Source Source
	// Target is the scheduled instant of the firing alarm.
	Target time.Time
	// ClearAligned asks to drop the day's cycle-aligned time.
	ClearAligned bool
	// EnableNormal asks to switch the day's normal alarm back on.
	EnableNormal bool
}

// snoozeOverride is the wake setting a snooze replaced on some day.
type snoozeOverride struct {
	// wake is the replaced wake time.
	wake alarm.TimeOfDay
	// enabled is the replaced enabled flag.
	enabled bool
}

// decide applies the trigger precedence to ds at now. pending is the
// pre-snooze setting of the day, when a snooze rewrote its wake time.
func decide(ds *alarm.DaySchedule, now time.Time, tolerance time.Duration, pending *snoozeOverride) Decision {
	normalAt := ds.WakeTime.On(now)
	normalDue := ds.Enabled && near(now, normalAt, tolerance)

	if !ds.HasAligned() {
		if normalDue {
			return Decision{Branch: BranchNormal, Fire: true, Source: SourceNormal, Target: normalAt}
		}

		return Decision{Branch: BranchIdle}
	}

	if normalDue && pending == nil {
		return Decision{
			Branch:       BranchNormalOvertakes,
			Fire:         true,
			Source:       SourceNormal,
			Target:       normalAt,
			ClearAligned: true,
		}
	}

	alignedAt := ds.AlignedTime.On(now)

	effectiveAt, effectiveEnabled := normalAt, ds.Enabled
	if pending != nil {
		effectiveAt, effectiveEnabled = pending.wake.On(now), pending.enabled
	}

	if near(now, alignedAt, tolerance) {
		normalAhead := effectiveAt.After(alignedAt)
		if effectiveEnabled && normalAhead {
			return Decision{Branch: BranchAlignedFirst, Fire: true, Source: SourceAligned, Target: alignedAt}
		}

		// Nothing later today refers to the aligned time any more, so it is
		// consumed now. A disabled normal alarm still ahead keeps it as the
		// marker for re-enabling once that time has passed.
		return Decision{
			Branch:       BranchAlignedOnly,
			Fire:         true,
			Source:       SourceAligned,
			Target:       alignedAt,
			ClearAligned: !normalAhead,
			EnableNormal: !normalAhead && pending == nil && !ds.Enabled,
		}
	}

	if normalDue {
		return Decision{Branch: BranchSnoozedNormal, Fire: true, Source: SourceNormal, Target: normalAt}
	}

	// The aligned alarm has been consumed and the normal one cannot take it
	// over any more today.
	if pending == nil && alignedAt.Before(now.Add(-tolerance)) && !normalAt.After(now.Add(-tolerance)) {
		return Decision{Branch: BranchStaleAligned, ClearAligned: true, EnableNormal: true}
	}

	return Decision{Branch: BranchIdle}
}

// near reports whether now lies within tolerance of at.
func near(now, at time.Time, tolerance time.Duration) bool {
	d := now.Sub(at)

	return d >= -tolerance && d <= tolerance
}
