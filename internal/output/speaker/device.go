package speaker

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/oshokin/sleep-alarm/internal/output/pcm"
)

// pollInterval is how often a playing player is checked for completion.
const pollInterval = 10 * time.Millisecond

// oto allows a single context per process.
//
//nolint:gochecknoglobals // Shared audio device.
var (
	device     *oto.Context
	deviceErr  error
	deviceOnce sync.Once
)

// openDevice opens the audio device once, in output format.
func openDevice() (*oto.Context, error) {
	deviceOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   pcm.SampleRate,
			ChannelCount: pcm.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		c, ready, err := oto.NewContext(options)
		if err != nil {
			deviceErr = fmt.Errorf("open audio device: %w", err)

			return
		}

		<-ready

		device = c
	})

	return device, deviceErr
}

// play plays samples once and waits for the end or for ctx.
func play(ctx context.Context, c *oto.Context, samples []byte, gain float64) error {
	player := c.NewPlayer(bytes.NewReader(samples))
	player.SetVolume(gain)
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()

			return closePlayer(player, ctx.Err())
		case <-ticker.C:
		}
	}

	return closePlayer(player, player.Err())
}

func closePlayer(player *oto.Player, err error) error {
	if closeErr := player.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close player: %w", closeErr)
	}

	return err
}

// loop repeats a sound until halted.
type loop struct {
	// stop is closed to request the end of playback.
	stop chan struct{}
	// done is closed once the loop goroutine returned.
	done chan struct{}
}

func startLoop(c *oto.Context, samples []byte, gain float64) *loop {
	l := &loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go l.run(c, samples, gain)

	return l
}

func (l *loop) run(c *oto.Context, samples []byte, gain float64) {
	defer close(l.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		player := c.NewPlayer(bytes.NewReader(samples))
		player.SetVolume(gain)
		player.Play()

		for player.IsPlaying() {
			select {
			case <-l.stop:
				player.Pause()
				_ = player.Close()

				return
			case <-ticker.C:
			}
		}

		_ = player.Close()

		select {
		case <-l.stop:
			return
		default:
		}
	}
}

// halt stops the loop and waits for it.
func (l *loop) halt() {
	close(l.stop)
	<-l.done
}
