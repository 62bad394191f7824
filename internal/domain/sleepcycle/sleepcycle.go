// Package sleepcycle computes wake-up times aligned to 90-minute sleep cycles.
package sleepcycle

import (
	"errors"
	"fmt"
	"time"
)

// CycleLength is the length of one sleep cycle.
const CycleLength = 90 * time.Minute

// ErrPastWakeup is returned when the desired wake-up lies before the moment
// the sleeper is expected to fall asleep.
var ErrPastWakeup = errors.New("desired wake-up is before sleep start")

// NearestAlignedWake returns the wake-up instant closest to desiredWakeup that
// ends a whole number of sleep cycles after sleep start (now plus
// sleepLatency). It rounds up to the next cycle boundary only when the
// oversleep stays strictly below maxOversleep; otherwise it rounds down.
func NearestAlignedWake(desiredWakeup time.Time, sleepLatency, maxOversleep time.Duration, now time.Time) (time.Time, error) {
	sleepStart := now.Add(sleepLatency)

	toWakeup := desiredWakeup.Sub(sleepStart)
	if toWakeup < 0 {
		return time.Time{}, fmt.Errorf("%w: wake-up %s, sleep start %s",
			ErrPastWakeup, desiredWakeup.Format(time.Kitchen), sleepStart.Format(time.Kitchen))
	}

	remainder := toWakeup % CycleLength
	if remainder == 0 {
		return sleepStart.Add(toWakeup), nil
	}

	if CycleLength-remainder < maxOversleep {
		return sleepStart.Add(toWakeup + CycleLength - remainder), nil
	}

	return sleepStart.Add(toWakeup - remainder), nil
}
