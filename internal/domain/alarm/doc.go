// Package alarm contains the core domain types of the alarm clock.
//
// Day and AlarmKind are closed sets: values are only produced by the parse
// helpers or the exported constants, so invalid names are rejected when
// configuration is read rather than when it is compared. DaySchedule and
// GlobalSettings mirror the persisted schedule, and Actor identifies who
// pressed a remote button.
package alarm
