package schedule

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/sleep-alarm/internal/config"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
)

// unsetAligned marks a cleared cycle-aligned time in the file.
const unsetAligned = -1

// fileDay is the on-disk form of one day.
type fileDay struct {
	Enabled             bool   `yaml:"enabled"`
	WakeHour            int    `yaml:"wake_hour"`
	WakeMinute          int    `yaml:"wake_minute"`
	AlignedHour         int    `yaml:"aligned_hour"`
	AlignedMinute       int    `yaml:"aligned_minute"`
	MaxOversleepSeconds int    `yaml:"max_oversleep_seconds"`
	TimeToSleepSeconds  int    `yaml:"time_to_sleep_seconds"`
	DesiredSleepSeconds int    `yaml:"desired_sleep_seconds"`
	ContentKind         string `yaml:"content_kind"`
	ContentSubtype      string `yaml:"content_subtype"`
}

// fileSchedule is the on-disk form of the whole schedule.
type fileSchedule struct {
	SnoozeSeconds            int                `yaml:"snooze_seconds"`
	ActivationTimeoutSeconds int                `yaml:"activation_timeout_seconds"`
	VolumePercent            int                `yaml:"volume_percent"`
	ProviderEmail            string             `yaml:"provider_email"`
	ProviderPassword         string             `yaml:"provider_password"`
	Days                     map[string]fileDay `yaml:"days"`
}

var (
	// errMissingDay is returned when a day block is absent from the file.
	errMissingDay = errors.New("missing day")
	// errNegativeDuration is returned for negative second counts.
	errNegativeDuration = errors.New("negative duration")
)

// Defaults returns the schedule generated for a fresh device.
func Defaults() domain.Schedule {
	var s domain.Schedule

	s.Global = domain.GlobalSettings{
		Snooze:            10 * time.Minute,
		ActivationTimeout: 15 * time.Minute,
		VolumePercent:     100,
	}

	for _, day := range domain.AllDays() {
		s.Days[day] = domain.DaySchedule{
			Day:          day,
			MaxOversleep: 15 * time.Minute,
			TimeToSleep:  14 * time.Minute,
			Content:      domain.Content{Kind: domain.KindSound},
		}
	}

	return s
}

// decode parses and validates the YAML schedule.
func decode(data []byte) (domain.Schedule, error) {
	var raw fileSchedule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Schedule{}, fmt.Errorf("unmarshal schedule: %w", err)
	}

	return fromFile(&raw)
}

// encode renders the schedule as YAML.
func encode(s *domain.Schedule) ([]byte, error) {
	data, err := yaml.Marshal(toFile(s))
	if err != nil {
		return nil, fmt.Errorf("marshal schedule: %w", err)
	}

	return data, nil
}

// fromFile converts the on-disk form into domain types.
func fromFile(raw *fileSchedule) (domain.Schedule, error) {
	var s domain.Schedule

	if raw.SnoozeSeconds < 0 || raw.ActivationTimeoutSeconds < 0 {
		return s, errNegativeDuration
	}

	if raw.VolumePercent < 0 || raw.VolumePercent > 100 {
		return s, fmt.Errorf("%w: volume %d", domain.ErrInvalidFieldValue, raw.VolumePercent)
	}

	s.Global = domain.GlobalSettings{
		Snooze:            seconds(raw.SnoozeSeconds),
		ActivationTimeout: seconds(raw.ActivationTimeoutSeconds),
		VolumePercent:     raw.VolumePercent,
		ProviderEmail:     raw.ProviderEmail,
		ProviderPassword:  raw.ProviderPassword,
	}

	for _, day := range domain.AllDays() {
		fd, ok := raw.Days[day.String()]
		if !ok {
			return s, fmt.Errorf("%w: %s", errMissingDay, day)
		}

		ds, err := dayFromFile(day, &fd)
		if err != nil {
			return s, fmt.Errorf("day %s: %w", day, err)
		}

		s.Days[day] = ds
	}

	return s, nil
}

// dayFromFile converts and validates one day.
func dayFromFile(day domain.Day, fd *fileDay) (domain.DaySchedule, error) {
	wake, err := domain.NewTimeOfDay(fd.WakeHour, fd.WakeMinute)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	var aligned *domain.TimeOfDay

	if fd.AlignedHour >= 0 && fd.AlignedMinute >= 0 {
		tod, err := domain.NewTimeOfDay(fd.AlignedHour, fd.AlignedMinute)
		if err != nil {
			return domain.DaySchedule{}, err
		}

		aligned = &tod
	}

	if fd.MaxOversleepSeconds < 0 || fd.TimeToSleepSeconds < 0 || fd.DesiredSleepSeconds < 0 {
		return domain.DaySchedule{}, errNegativeDuration
	}

	kind, err := domain.ParseAlarmKind(fd.ContentKind)
	if err != nil {
		return domain.DaySchedule{}, err
	}

	return domain.DaySchedule{
		Day:          day,
		Enabled:      fd.Enabled,
		WakeTime:     wake,
		AlignedTime:  aligned,
		MaxOversleep: seconds(fd.MaxOversleepSeconds),
		TimeToSleep:  seconds(fd.TimeToSleepSeconds),
		DesiredSleep: seconds(fd.DesiredSleepSeconds),
		Content:      domain.Content{Kind: kind, Subtype: fd.ContentSubtype},
	}, nil
}

// toFile converts domain types into the on-disk form.
func toFile(s *domain.Schedule) *fileSchedule {
	raw := &fileSchedule{
		SnoozeSeconds:            int(s.Global.Snooze / time.Second),
		ActivationTimeoutSeconds: int(s.Global.ActivationTimeout / time.Second),
		VolumePercent:            s.Global.VolumePercent,
		ProviderEmail:            s.Global.ProviderEmail,
		ProviderPassword:         s.Global.ProviderPassword,
		Days:                     make(map[string]fileDay, domain.DaysPerWeek),
	}

	for _, day := range domain.AllDays() {
		ds := &s.Days[day]

		fd := fileDay{
			Enabled:             ds.Enabled,
			WakeHour:            ds.WakeTime.Hour,
			WakeMinute:          ds.WakeTime.Minute,
			AlignedHour:         unsetAligned,
			AlignedMinute:       unsetAligned,
			MaxOversleepSeconds: int(ds.MaxOversleep / time.Second),
			TimeToSleepSeconds:  int(ds.TimeToSleep / time.Second),
			DesiredSleepSeconds: int(ds.DesiredSleep / time.Second),
			ContentKind:         ds.Content.Kind.String(),
			ContentSubtype:      ds.Content.Subtype,
		}

		if ds.AlignedTime != nil {
			fd.AlignedHour = ds.AlignedTime.Hour
			fd.AlignedMinute = ds.AlignedTime.Minute
		}

		raw.Days[day.String()] = fd
	}

	return raw
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// writeFileDurable replaces path with data through a synced temporary file.
func writeFileDurable(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	// Cleanup is a no-op once the rename succeeded.
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temporary file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync temporary file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod temporary file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace schedule file: %w", err)
	}

	// Persist the rename itself; not every platform can sync a directory.
	if d, err := os.Open(filepath.Clean(dir)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}
