package speaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/oshokin/sleep-alarm/internal/logger"
)

var (
	// ErrStreamingDisabled is returned when no pianobar FIFO is configured.
	ErrStreamingDisabled = errors.New("streaming alarms are not configured")
	// ErrNoCredentials is returned when the streaming account is not set.
	ErrNoCredentials = errors.New("streaming account is not set")
)

// setMixer sets the amixer control to percent.
func setMixer(ctx context.Context, control string, percent int) error {
	cmd := exec.CommandContext(ctx, "amixer", "cset", control, strconv.Itoa(percent)+"%")
	cmd.Stdout = io.Discard

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("amixer cset %s: %w", control, err)
	}

	return nil
}

// synthesize renders text to a WAV stream with espeak.
func synthesize(ctx context.Context, text, voice string, speed int) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "espeak", "--stdout", "-s", strconv.Itoa(speed), "-v", voice, text)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("espeak: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return out, nil
}

// stream is a running pianobar process.
type stream struct {
	// cmd is the pianobar process.
	cmd *exec.Cmd
}

// startStream launches pianobar and logs in to station through its FIFO.
func startStream(ctx context.Context, fifo, email, password, station string) (*stream, error) {
	if fifo == "" {
		return nil, ErrStreamingDisabled
	}

	if email == "" || password == "" {
		return nil, ErrNoCredentials
	}

	// A saved state would make pianobar resume its last station.
	state := filepath.Join(filepath.Dir(fifo), "state")
	if err := os.Remove(state); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove pianobar state", "path", state, "error", err)
	}

	cmd := exec.Command("pianobar") //nolint:noctx // Outlives the request; stopped by kill.
	cmd.Stdout = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pianobar: %w", err)
	}

	// Opening the FIFO blocks until pianobar reads it.
	go func() {
		f, err := os.OpenFile(fifo, os.O_WRONLY, 0)
		if err != nil {
			logger.ErrorKV(ctx, "Unable to open pianobar FIFO", "path", fifo, "error", err)

			return
		}
		defer f.Close()

		if _, err = fmt.Fprintf(f, "%s\n%s\n%s\n", email, password, station); err != nil {
			logger.ErrorKV(ctx, "Unable to log in to pianobar", "error", err)
		}
	}()

	logger.DebugKV(ctx, "Pianobar started", "station", station, "pid", cmd.Process.Pid)

	return &stream{cmd: cmd}, nil
}

// kill stops pianobar and reaps it.
func (s *stream) kill() error {
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill pianobar: %w", err)
	}

	_ = s.cmd.Wait()

	return nil
}
