package daemon

import (
	"context"
	"io"
	"time"

	"github.com/oshokin/sleep-alarm/internal/export/ical"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
)

// ExportCalendar writes the persisted schedule to w as iCalendar.
func ExportCalendar(ctx context.Context, opts *Options, w io.Writer) error {
	settings, err := LoadSettings(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	scheduleFile := settings.ScheduleFile
	if opts.ScheduleFile != "" {
		scheduleFile = opts.ScheduleFile
	}

	store, err := schedule.Open(ctx, scheduleFile)
	if err != nil {
		return err
	}

	sched, err := store.Schedule(ctx)
	if err != nil {
		return err
	}

	return ical.Write(w, &sched, time.Now())
}
