package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	// Hour is in range 0..23.
	Hour int
	// Minute is in range 0..59.
	Minute int
}

// NewTimeOfDay validates hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: time %02d:%02d", ErrInvalidFieldValue, hour, minute)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: time %q", ErrInvalidFieldValue, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: hour %q", ErrInvalidFieldValue, parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: minute %q", ErrInvalidFieldValue, parts[1])
	}

	return NewTimeOfDay(hour, minute)
}

// TimeOfDayOf truncates t to its hour and minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// On returns the instant at this time of day on the date of t, in t's location.
func (tod TimeOfDay) On(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, tod.Hour, tod.Minute, 0, 0, t.Location())
}

// IsMidnight reports whether tod is 00:00, the value of a never-set alarm.
func (tod TimeOfDay) IsMidnight() bool {
	return tod.Hour == 0 && tod.Minute == 0
}

// String renders the time as "HH:MM".
func (tod TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", tod.Hour, tod.Minute)
}

// NextOccurrence returns tod on the first date, starting from now's date,
// that falls on day. The result may lie earlier than now when day is today.
func NextOccurrence(now time.Time, day Day, tod TimeOfDay) time.Time {
	offset := (int(day) - int(DayOf(now)) + DaysPerWeek) % DaysPerWeek

	return tod.On(now.AddDate(0, 0, offset))
}
