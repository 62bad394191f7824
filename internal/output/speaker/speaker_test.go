package speaker

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sleep-alarm/internal/config"
	"github.com/oshokin/sleep-alarm/internal/output/pcm"
)

// stereoWAV builds a 44.1 kHz stereo WAV holding frames silent frames.
func stereoWAV(frames int) []byte {
	size := frames * 4

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(36+size))
	out = append(out, "WAVEfmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, 2)
	out = binary.LittleEndian.AppendUint32(out, pcm.SampleRate)
	out = binary.LittleEndian.AppendUint32(out, pcm.SampleRate*4)
	out = binary.LittleEndian.AppendUint16(out, 4)
	out = binary.LittleEndian.AppendUint16(out, 16)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(size))

	return append(out, make([]byte, size)...)
}

func soundsDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rooster.wav"), stereoWAV(10), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "birds.wav"), stereoWAV(20), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loud.WAV"), stereoWAV(5), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.wav"), 0o700))

	return dir
}

func TestSounds(t *testing.T) {
	t.Parallel()

	names, err := Sounds(soundsDir(t))
	require.NoError(t, err)
	require.Equal(t, []string{"birds", "rooster"}, names)

	_, err = Sounds(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestLoadSound(t *testing.T) {
	t.Parallel()

	s := New(config.Audio{SoundsDirectory: soundsDir(t)}, nil)

	samples, err := s.loadSound("rooster")
	require.NoError(t, err)
	require.Len(t, samples, 10*4)

	samples, err = s.loadSound("")
	require.NoError(t, err)
	require.Len(t, samples, 20*4)

	_, err = s.loadSound("../rooster")
	require.ErrorIs(t, err, ErrBadSoundName)

	_, err = s.loadSound("absent")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSound_NoSounds(t *testing.T) {
	t.Parallel()

	s := New(config.Audio{SoundsDirectory: t.TempDir()}, nil)

	_, err := s.loadSound("")
	require.ErrorIs(t, err, ErrNoSounds)
}
