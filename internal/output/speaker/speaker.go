// Package speaker is the hardware output.Sink: WAV alarms and tones are
// played through oto, speech is rendered by espeak, the mixer volume is set
// with amixer and streaming alarms are handed to pianobar.
package speaker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/logger"
	"github.com/oshokin/sleep-alarm/internal/output"
	"github.com/oshokin/sleep-alarm/internal/output/pcm"
)

const (
	soundExtension = ".wav"

	// chirpFrequency is the pitch of feedback chirps.
	chirpFrequency = 1760
)

var (
	// ErrNoSounds is returned when the sounds directory has no WAV file.
	ErrNoSounds = errors.New("no alarm sounds available")
	// ErrBadSoundName is returned for a subtype that is not a plain file name.
	ErrBadSoundName = errors.New("invalid sound name")
	// ErrUnknownContent is returned for an alarm kind the speaker cannot play.
	ErrUnknownContent = errors.New("unknown alarm content")
)

// GlobalSource supplies the streaming provider credentials.
type GlobalSource interface {
	Global(ctx context.Context) (alarm.GlobalSettings, error)
}

// Speaker plays alarms and feedback on the local audio device.
type Speaker struct {
	// cfg is the audio configuration.
	cfg config.Audio
	// globals supplies streaming credentials.
	globals GlobalSource
	// gain is the software volume applied to oto players.
	gain float64
	// current is the looping alarm sound, if any.
	current *loop
	// stream is the running pianobar process, if any.
	stream *stream
	// mu protects the fields above and serializes playback.
	mu sync.Mutex
}

var _ output.Sink = (*Speaker)(nil)

// New creates a speaker. The audio device is opened on first playback.
func New(cfg config.Audio, globals GlobalSource) *Speaker {
	return &Speaker{
		cfg:     cfg,
		globals: globals,
		gain:    1,
	}
}

// StartAlarm starts looping content until StopAlarm.
func (s *Speaker) StartAlarm(ctx context.Context, content alarm.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(ctx)

	switch content.Kind {
	case alarm.KindSound:
		samples, err := s.loadSound(content.Subtype)
		if err != nil {
			return err
		}

		device, err := openDevice()
		if err != nil {
			return err
		}

		s.current = startLoop(device, samples, s.gain)

		logger.DebugKV(ctx, "Alarm sound started", "sound", content.Subtype)

		return nil
	case alarm.KindPandora:
		settings, err := s.globals.Global(ctx)
		if err != nil {
			return fmt.Errorf("read streaming credentials: %w", err)
		}

		s.stream, err = startStream(ctx, s.cfg.PianobarFIFO, settings.ProviderEmail, settings.ProviderPassword, content.Subtype)

		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownContent, content)
	}
}

// StopAlarm silences the alarm. Stopping a silent speaker is a no-op.
func (s *Speaker) StopAlarm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(ctx)

	return nil
}

func (s *Speaker) stopLocked(ctx context.Context) {
	if s.current != nil {
		s.current.halt()
		s.current = nil
	}

	if s.stream != nil {
		if err := s.stream.kill(); err != nil {
			logger.WarnKV(ctx, "Unable to stop pianobar", "error", err)
		}

		s.stream = nil
	}
}

// Speak renders text with espeak at the speech volume and plays it.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if err := setMixer(ctx, s.cfg.MixerControl, s.cfg.SpeechVolume); err != nil {
		logger.WarnKV(ctx, "Unable to set speech volume", "error", err)
	}

	wav, err := synthesize(ctx, text, s.cfg.SpeechVoice, s.cfg.SpeechSpeed)
	if err != nil {
		return err
	}

	format, samples, err := pcm.ParseWAV(wav)
	if err != nil {
		return fmt.Errorf("decode speech: %w", err)
	}

	samples, err = pcm.Normalize(format, samples)
	if err != nil {
		return fmt.Errorf("convert speech: %w", err)
	}

	return s.playOnce(ctx, samples)
}

// Chirp plays a short tone of length d.
func (s *Speaker) Chirp(ctx context.Context, d time.Duration) error {
	return s.playOnce(ctx, pcm.Tone(chirpFrequency, d))
}

// SetVolume sets the output level in percent on the mixer and on players.
func (s *Speaker) SetVolume(ctx context.Context, percent int) error {
	s.mu.Lock()
	s.gain = float64(percent) / 100
	s.mu.Unlock()

	return setMixer(ctx, s.cfg.MixerControl, percent)
}

func (s *Speaker) playOnce(ctx context.Context, samples []byte) error {
	device, err := openDevice()
	if err != nil {
		return err
	}

	s.mu.Lock()
	gain := s.gain
	s.mu.Unlock()

	return play(ctx, device, samples, gain)
}

// loadSound reads the named sound, or the first sound of the directory
// when name is empty, in output format.
func (s *Speaker) loadSound(name string) ([]byte, error) {
	if name == "" {
		sounds, err := Sounds(s.cfg.SoundsDirectory)
		if err != nil {
			return nil, err
		}

		if len(sounds) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoSounds, s.cfg.SoundsDirectory)
		}

		name = sounds[0]
	}

	if filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrBadSoundName, name)
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.SoundsDirectory, name+soundExtension))
	if err != nil {
		return nil, fmt.Errorf("read sound %q: %w", name, err)
	}

	format, samples, err := pcm.ParseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decode sound %q: %w", name, err)
	}

	return pcm.Normalize(format, samples)
}

// Sounds lists the sound names, without extension, available in dir.
func Sounds(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list sounds: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != soundExtension {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), soundExtension))
	}

	slices.Sort(names)

	return names, nil
}
