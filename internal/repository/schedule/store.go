package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/logger"
)

// ErrConfigUnavailable is returned when the schedule file cannot be read or
// regenerated.
var ErrConfigUnavailable = errors.New("schedule unavailable")

// backupSuffix is appended to the schedule path for the startup backup.
const backupSuffix = "~"

// corruptSuffix is appended to a schedule file that failed to parse.
const corruptSuffix = ".corrupt"

// minSnoozeSeconds keeps a snooze from landing on the minute that just fired.
const minSnoozeSeconds = 60

// Store is the durable alarm schedule. Reads pick up external edits of the
// file; writes go through the store and are flushed before returning.
type Store struct {
	// path is the filesystem location of the YAML schedule.
	path string
	// current is the last loaded or written schedule.
	current domain.Schedule
	// modTime and size identify the file version behind current.
	modTime time.Time
	size    int64
	// mu serializes reads and read-modify-write cycles.
	mu sync.Mutex
}

// Open loads the schedule at path. A missing or corrupt file is replaced by
// the default schedule; only a failure to write that replacement is an error.
func Open(ctx context.Context, path string) (*Store, error) {
	s := &Store{
		path: filepath.Clean(path),
	}

	contents, err := os.ReadFile(s.path)
	if err == nil {
		var loaded domain.Schedule

		loaded, err = decode(contents)
		if err == nil {
			s.current = loaded
			s.rememberVersion()

			if err := os.WriteFile(s.path+backupSuffix, contents, 0o600); err != nil {
				logger.WarnKV(ctx, "Unable to back up schedule", "path", s.path, "error", err)
			}

			return s, nil
		}

		logger.ErrorKV(ctx, "Schedule is corrupt, regenerating defaults", "path", s.path, "error", err)

		if err := os.Rename(s.path, s.path+corruptSuffix); err != nil {
			logger.WarnKV(ctx, "Unable to keep corrupt schedule", "path", s.path, "error", err)
		}
	} else {
		logger.InfoKV(ctx, "Schedule not found, generating defaults", "path", s.path, "reason", err)
	}

	defaults := Defaults()
	if err := s.persist(&defaults); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}

	return s, nil
}

// Path returns the schedule file location.
func (s *Store) Path() string {
	return s.path
}

// Schedule returns a snapshot of the whole schedule.
func (s *Store) Schedule(_ context.Context) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return domain.Schedule{}, err
	}

	return cloneSchedule(&s.current), nil
}

// Day returns the schedule of one day.
func (s *Store) Day(ctx context.Context, day domain.Day) (domain.DaySchedule, error) {
	if !day.Valid() {
		return domain.DaySchedule{}, fmt.Errorf("%w: day %d", domain.ErrInvalidFieldValue, int(day))
	}

	snapshot, err := s.Schedule(ctx)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	return snapshot.Days[day], nil
}

// Global returns the global settings.
func (s *Store) Global(ctx context.Context) (domain.GlobalSettings, error) {
	snapshot, err := s.Schedule(ctx)
	if err != nil {
		return domain.GlobalSettings{}, err
	}

	return snapshot.Global, nil
}

// SetEnabled turns the normal alarm of day on or off.
func (s *Store) SetEnabled(_ context.Context, day domain.Day, enabled bool) error {
	return s.update(func(sched *domain.Schedule) error {
		if !day.Valid() {
			return fmt.Errorf("%w: day %d", domain.ErrInvalidFieldValue, int(day))
		}

		sched.Days[day].Enabled = enabled

		return nil
	})
}

// SetWakeTime changes the normal alarm time of day.
func (s *Store) SetWakeTime(_ context.Context, day domain.Day, tod domain.TimeOfDay) error {
	return s.update(func(sched *domain.Schedule) error {
		if !day.Valid() {
			return fmt.Errorf("%w: day %d", domain.ErrInvalidFieldValue, int(day))
		}

		checked, err := domain.NewTimeOfDay(tod.Hour, tod.Minute)
		if err != nil {
			return err
		}

		sched.Days[day].WakeTime = checked

		return nil
	})
}

// SetAlignedTime sets the cycle-aligned alarm of day, or clears it when tod is nil.
func (s *Store) SetAlignedTime(_ context.Context, day domain.Day, tod *domain.TimeOfDay) error {
	return s.update(func(sched *domain.Schedule) error {
		if !day.Valid() {
			return fmt.Errorf("%w: day %d", domain.ErrInvalidFieldValue, int(day))
		}

		if tod == nil {
			sched.Days[day].AlignedTime = nil

			return nil
		}

		checked, err := domain.NewTimeOfDay(tod.Hour, tod.Minute)
		if err != nil {
			return err
		}

		sched.Days[day].AlignedTime = &checked

		return nil
	})
}

// Field names accepted by SetField.
const (
	FieldEnabled           = "enabled"
	FieldWakeTime          = "wake_time"
	FieldAlignedTime       = "aligned_time"
	FieldMaxOversleep      = "max_oversleep_seconds"
	FieldTimeToSleep       = "time_to_sleep_seconds"
	FieldDesiredSleep      = "desired_sleep_seconds"
	FieldContentKind       = "content_kind"
	FieldContentSubtype    = "content_subtype"
	FieldSnooze            = "snooze_seconds"
	FieldActivationTimeout = "activation_timeout_seconds"
	FieldVolume            = "volume_percent"
	FieldProviderEmail     = "provider_email"
	FieldProviderPassword  = "provider_password"
)

// IsGlobalField reports whether field is a global setting.
func IsGlobalField(field string) bool {
	switch field {
	case FieldSnooze, FieldActivationTimeout, FieldVolume, FieldProviderEmail, FieldProviderPassword:
		return true
	default:
		return false
	}
}

// SetField parses value and assigns it to one named field. Daily fields apply
// to day, or to every day when day is nil. Global fields ignore day.
// An unknown field or malformed value leaves the schedule untouched and
// returns an error wrapping domain.ErrInvalidFieldValue.
func (s *Store) SetField(_ context.Context, day *domain.Day, field, value string) error {
	return s.update(func(sched *domain.Schedule) error {
		if IsGlobalField(field) {
			return setGlobalField(&sched.Global, field, value)
		}

		days := domain.AllDays()
		if day != nil {
			if !day.Valid() {
				return fmt.Errorf("%w: day %d", domain.ErrInvalidFieldValue, int(*day))
			}

			days = []domain.Day{*day}
		}

		for _, d := range days {
			if err := setDailyField(&sched.Days[d], field, value); err != nil {
				return err
			}
		}

		return nil
	})
}

// update applies mutate to a copy of the schedule and persists the result.
func (s *Store) update(mutate func(*domain.Schedule) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}

	next := cloneSchedule(&s.current)
	if err := mutate(&next); err != nil {
		return err
	}

	return s.persist(&next)
}

// persist writes sched durably and makes it current. Callers hold mu or own s exclusively.
func (s *Store) persist(sched *domain.Schedule) error {
	data, err := encode(sched)
	if err != nil {
		return err
	}

	if err = writeFileDurable(s.path, data); err != nil {
		return err
	}

	s.current = cloneSchedule(sched)
	s.rememberVersion()

	return nil
}

// refresh reloads the file when it changed behind the store's back.
func (s *Store) refresh() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}

	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}

	contents, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}

	loaded, err := decode(contents)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}

	s.current = loaded
	s.modTime = info.ModTime()
	s.size = info.Size()

	return nil
}

// rememberVersion records the file version matching current.
func (s *Store) rememberVersion() {
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
		s.size = info.Size()
	}
}

// setGlobalField assigns one parsed global setting.
func setGlobalField(g *domain.GlobalSettings, field, value string) error {
	switch field {
	case FieldSnooze:
		d, err := parseSeconds(value, minSnoozeSeconds)
		if err != nil {
			return err
		}

		g.Snooze = d
	case FieldActivationTimeout:
		d, err := parseSeconds(value, 1)
		if err != nil {
			return err
		}

		g.ActivationTimeout = d
	case FieldVolume:
		n, err := parseInt(value, 0, 100)
		if err != nil {
			return err
		}

		g.VolumePercent = n
	case FieldProviderEmail:
		g.ProviderEmail = strings.TrimSpace(value)
	case FieldProviderPassword:
		g.ProviderPassword = value
	}

	return nil
}

// setDailyField assigns one parsed daily setting.
//
//nolint:cyclop // A flat switch over the field names.
func setDailyField(ds *domain.DaySchedule, field, value string) error {
	switch field {
	case FieldEnabled:
		enabled, err := parseSwitch(value)
		if err != nil {
			return err
		}

		ds.Enabled = enabled
	case FieldWakeTime:
		tod, err := domain.ParseTimeOfDay(value)
		if err != nil {
			return err
		}

		ds.WakeTime = tod
	case FieldAlignedTime:
		if isClearValue(value) {
			ds.AlignedTime = nil

			return nil
		}

		tod, err := domain.ParseTimeOfDay(value)
		if err != nil {
			return err
		}

		ds.AlignedTime = &tod
	case FieldMaxOversleep, FieldTimeToSleep, FieldDesiredSleep:
		d, err := parseSeconds(value, 0)
		if err != nil {
			return err
		}

		switch field {
		case FieldMaxOversleep:
			ds.MaxOversleep = d
		case FieldTimeToSleep:
			ds.TimeToSleep = d
		default:
			ds.DesiredSleep = d
		}
	case FieldContentKind:
		kind, err := domain.ParseAlarmKind(value)
		if err != nil {
			return err
		}

		ds.Content.Kind = kind
	case FieldContentSubtype:
		ds.Content.Subtype = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidFieldValue, field)
	}

	return nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: switch %q", domain.ErrInvalidFieldValue, value)
	}
}

func isClearValue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "off", "none", "unset":
		return true
	default:
		return false
	}
}

func parseSeconds(value string, minimum int) (time.Duration, error) {
	n, err := parseInt(value, minimum, -1)
	if err != nil {
		return 0, err
	}

	return seconds(n), nil
}

// parseInt parses value and checks it against minimum and, when non-negative, maximum.
func parseInt(value string, minimum, maximum int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", domain.ErrInvalidFieldValue, value)
	}

	if n < minimum || (maximum >= 0 && n > maximum) {
		return 0, fmt.Errorf("%w: %d out of range", domain.ErrInvalidFieldValue, n)
	}

	return n, nil
}

// cloneSchedule deep-copies the aligned time pointers.
func cloneSchedule(src *domain.Schedule) domain.Schedule {
	dst := *src

	for i := range dst.Days {
		if src.Days[i].AlignedTime != nil {
			tod := *src.Days[i].AlignedTime
			dst.Days[i].AlignedTime = &tod
		}
	}

	return dst
}
