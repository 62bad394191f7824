package alarm

import (
	"fmt"
	"strings"
	"time"
)

// Day is a day of the week, Monday first.
type Day int

// Days of the week in schedule order.
const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of distinct Day values.
const DaysPerWeek = 7

//nolint:gochecknoglobals // Lookup tables for the closed Day set.
var (
	dayShortNames = [DaysPerWeek]string{"mon", "tues", "wed", "thurs", "fri", "sat", "sun"}
	dayFullNames  = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

// AllDays returns every day in schedule order.
func AllDays() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// ParseDay converts a short or full day name into a Day.
func ParseDay(s string) (Day, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for i := range DaysPerWeek {
		if name == dayShortNames[i] || name == strings.ToLower(dayFullNames[i]) {
			return Day(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidFieldValue, s)
}

// DayOf returns the Day of the provided instant in its own location.
func DayOf(t time.Time) Day {
	// time.Weekday starts on Sunday.
	return Day((int(t.Weekday()) + DaysPerWeek - 1) % DaysPerWeek)
}

// Valid reports whether d is one of the seven days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the short name used in configuration files.
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}

	return dayShortNames[d]
}

// FullName returns the English name of the day.
func (d Day) FullName() string {
	if !d.Valid() {
		return d.String()
	}

	return dayFullNames[d]
}

// Next returns the following day, wrapping Sunday to Monday.
func (d Day) Next() Day {
	return (d + 1) % DaysPerWeek
}

// Prev returns the preceding day, wrapping Monday to Sunday.
func (d Day) Prev() Day {
	return (d + DaysPerWeek - 1) % DaysPerWeek
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: day %d", ErrInvalidFieldValue, int(d))
	}

	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
