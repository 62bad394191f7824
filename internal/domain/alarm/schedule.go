package alarm

import "time"

// DaySchedule is the persisted configuration of one day of the week.
type DaySchedule struct {
	// Day identifies the schedule.
	Day Day
	// Enabled turns the normal daily alarm on.
	Enabled bool
	// WakeTime is the normal alarm time.
	WakeTime TimeOfDay
	// AlignedTime is the one-shot sleep-cycle-aligned alarm, nil when unset.
	AlignedTime *TimeOfDay
	// MaxOversleep is how far past the desired wake time a cycle-aligned
	// alarm may be rounded up.
	MaxOversleep time.Duration
	// TimeToSleep is the expected delay between going to bed and falling asleep.
	TimeToSleep time.Duration
	// DesiredSleep is an explicit sleep duration; zero derives the wake time
	// from sleep-cycle math instead.
	DesiredSleep time.Duration
	// Content is what the alarm plays on this day.
	Content Content
}

// HasAligned reports whether a cycle-aligned alarm is set.
func (s *DaySchedule) HasAligned() bool {
	return s.AlignedTime != nil
}

// GlobalSettings are the settings shared by every day.
type GlobalSettings struct {
	// Snooze is how long a snooze postpones the alarm.
	Snooze time.Duration
	// ActivationTimeout stops an alarm nobody reacted to.
	ActivationTimeout time.Duration
	// VolumePercent is the alarm output volume in range 0..100.
	VolumePercent int
	// ProviderEmail is the streaming account user for pandora content.
	ProviderEmail string
	// ProviderPassword is the streaming account password for pandora content.
	ProviderPassword string
}

// Schedule is a full snapshot of the persisted configuration.
type Schedule struct {
	// Global holds the settings shared by every day.
	Global GlobalSettings
	// Days holds one schedule per day, indexed by Day.
	Days [DaysPerWeek]DaySchedule
}
