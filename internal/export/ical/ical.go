// Package ical exports the alarm schedule as an iCalendar feed so the
// week's alarms show up in an ordinary calendar application.
package ical

import (
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
)

const (
	// ProductID identifies the exporter in the calendar header.
	ProductID = "-//oshokin//sleep-alarm//EN"
	// floatingLayout renders a local time without a zone.
	floatingLayout = "20060102T150405"
	// uidDomain is the right-hand side of every event UID.
	uidDomain = "sleep-alarm"
)

//nolint:gochecknoglobals // RFC 5545 weekday codes indexed by Day.
var weekdayCodes = [domain.DaysPerWeek]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Build converts the schedule into a calendar. Enabled days become weekly
// recurring events, set aligned alarms become single events on their next
// occurrence.
func Build(sched *domain.Schedule, now time.Time) *goical.Calendar {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, ProductID)

	stamp := now.UTC()

	for i := range sched.Days {
		ds := &sched.Days[i]

		if ds.Enabled {
			start := domain.NextOccurrence(now, ds.Day, ds.WakeTime)
			event := newEvent(fmt.Sprintf("%s.normal@%s", ds.Day, uidDomain), "Wake up", start, stamp, &ds.Content)

			rule := goical.NewProp(goical.PropRecurrenceRule)
			rule.Value = "FREQ=WEEKLY;BYDAY=" + weekdayCodes[ds.Day]
			event.Props.Set(rule)

			cal.Children = append(cal.Children, event.Component)
		}

		if ds.HasAligned() {
			start := nextAligned(now, ds)
			event := newEvent(fmt.Sprintf("%s.aligned@%s", ds.Day, uidDomain), "Wake up (sleep cycle)", start, stamp, &ds.Content)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	return cal
}

// Write encodes the schedule as iCalendar into w.
func Write(w io.Writer, sched *domain.Schedule, now time.Time) error {
	if err := goical.NewEncoder(w).Encode(Build(sched, now)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	return nil
}

// nextAligned returns the aligned alarm instant that has not passed yet.
func nextAligned(now time.Time, ds *domain.DaySchedule) time.Time {
	start := domain.NextOccurrence(now, ds.Day, *ds.AlignedTime)
	if start.Before(now) {
		start = start.AddDate(0, 0, domain.DaysPerWeek)
	}

	return start
}

func newEvent(uid, summary string, start, stamp time.Time, content *domain.Content) *goical.Event {
	event := goical.NewEvent()
	event.Props.SetText(goical.PropUID, uid)
	event.Props.SetDateTime(goical.PropDateTimeStamp, stamp)
	event.Props.SetText(goical.PropSummary, summary)
	event.Props.SetText(goical.PropDescription, describe(content))

	// Wall-clock alarms follow whatever zone the device is in.
	dtstart := goical.NewProp(goical.PropDateTimeStart)
	dtstart.Value = start.Format(floatingLayout)
	event.Props.Set(dtstart)

	alarm := goical.NewComponent(goical.CompAlarm)
	alarm.Props.SetText(goical.PropAction, "DISPLAY")
	alarm.Props.SetText(goical.PropDescription, summary)

	trigger := goical.NewProp(goical.PropTrigger)
	trigger.Value = "PT0S"
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)

	return event
}

func describe(content *domain.Content) string {
	if content.Subtype == "" {
		return "Plays " + content.Kind.String()
	}

	return fmt.Sprintf("Plays %s %s", content.Kind, content.Subtype)
}
