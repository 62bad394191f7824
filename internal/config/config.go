package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the alarm daemon and the panel client.
type Config struct {
	// ServerAddress is the gRPC address of the control panel API.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress is the listen address of the Prometheus endpoint; empty disables it.
	MetricsAddress string `yaml:"metrics_addr"`
	// ScheduleFile is the path to the YAML alarm schedule.
	ScheduleFile string `yaml:"schedule_file"`
	// Timeout is the duration for panel RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// CheckInterval is the spacing of trigger evaluations, aligned to the minute.
	CheckInterval time.Duration `yaml:"check_interval"`
	// PollInterval is how often button input is polled while an alarm fires.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Debounce is the minimum spacing between two presses of one button.
	Debounce time.Duration `yaml:"debounce"`
	// EarliestSetTomorrowHour is the hour from which the sleep-now button
	// targets tomorrow's alarm instead of today's.
	EarliestSetTomorrowHour int `yaml:"earliest_set_tomorrow_hour"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Audio configures the speaker output.
	Audio Audio `yaml:"audio"`
}

// Audio configures sound, speech and streaming playback.
type Audio struct {
	// SoundsDirectory holds the WAV files selectable as alarm content.
	SoundsDirectory string `yaml:"sounds_dir"`
	// SpeechVoice is the espeak voice name.
	SpeechVoice string `yaml:"speech_voice"`
	// SpeechSpeed is the espeak words-per-minute rate.
	SpeechSpeed int `yaml:"speech_speed"`
	// SpeechVolume is the mixer volume used while speaking.
	SpeechVolume int `yaml:"speech_volume"`
	// Feedback selects how button confirmations are given: speech or beep.
	Feedback string `yaml:"feedback"`
	// PianobarFIFO is the control FIFO of the pianobar player.
	PianobarFIFO string `yaml:"pianobar_fifo"`
	// MixerControl is the amixer control id for the output volume.
	MixerControl string `yaml:"mixer_control"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "sleep-alarm-settings.yaml"

	// DefaultScheduleFilename is the default filename for the alarm schedule.
	DefaultScheduleFilename = "sleep-alarm-schedule.yaml"

	// DefaultServerAddress is where the panel API listens by default.
	DefaultServerAddress = "127.0.0.1:50551"

	// DefaultTimeout is the default duration for panel RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultCheckInterval is the default spacing of trigger evaluations.
	DefaultCheckInterval = time.Minute

	// DefaultPollInterval is the default input poll interval while firing.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultDebounce is the default per-button debounce.
	DefaultDebounce = 2 * time.Second

	// DefaultEarliestSetTomorrowHour is the default switch-over hour of the sleep-now button.
	DefaultEarliestSetTomorrowHour = 8

	// FeedbackSpeech confirms button actions with spoken text.
	FeedbackSpeech = "speech"

	// FeedbackBeep confirms button actions with chirps.
	FeedbackBeep = "beep"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// maxCheckInterval keeps evaluations at least once per minute.
	maxCheckInterval = time.Minute
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadCheckInterval is returned for evaluation intervals above one minute.
	errBadCheckInterval = errors.New("check interval must not exceed one minute")
	// errBadFeedback is returned for an unknown feedback mode.
	errBadFeedback = errors.New("feedback must be speech or beep")
	// errBadHour is returned for an out of range switch-over hour.
	errBadHour = errors.New("earliest set tomorrow hour must be in range 0..23")
	// errBadVolume is returned for an out of range speech volume.
	errBadVolume = errors.New("speech volume must be in range 0..100")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults for an empty config.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
//
//nolint:cyclop // One flat block per field reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.ScheduleFile == "" {
		settings.ScheduleFile = DefaultScheduleFilename
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.CheckInterval <= 0 {
		settings.CheckInterval = DefaultCheckInterval
	}

	if settings.CheckInterval > maxCheckInterval {
		return errBadCheckInterval
	}

	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.Debounce <= 0 {
		settings.Debounce = DefaultDebounce
	}

	if settings.EarliestSetTomorrowHour == 0 {
		settings.EarliestSetTomorrowHour = DefaultEarliestSetTomorrowHour
	}

	if settings.EarliestSetTomorrowHour < 0 || settings.EarliestSetTomorrowHour > 23 {
		return errBadHour
	}

	return validateAudio(&settings.Audio)
}

// validateAudio fills audio defaults and checks ranges.
func validateAudio(audio *Audio) error {
	if audio.SoundsDirectory == "" {
		audio.SoundsDirectory = "sounds"
	}

	if audio.SpeechVoice == "" {
		audio.SpeechVoice = "en+m3"
	}

	if audio.SpeechSpeed <= 0 {
		audio.SpeechSpeed = 150
	}

	if audio.SpeechVolume == 0 {
		audio.SpeechVolume = 80
	}

	if audio.SpeechVolume < 0 || audio.SpeechVolume > 100 {
		return errBadVolume
	}

	switch audio.Feedback {
	case "":
		audio.Feedback = FeedbackSpeech
	case FeedbackSpeech, FeedbackBeep:
	default:
		return fmt.Errorf("%w: %q", errBadFeedback, audio.Feedback)
	}

	if audio.MixerControl == "" {
		audio.MixerControl = "numid=1"
	}

	return nil
}
