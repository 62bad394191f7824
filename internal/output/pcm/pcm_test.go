package pcm

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeWAV(f Format, samples []byte, declaredSize uint32) []byte {
	out := []byte("RIFF\x00\x00\x00\x00WAVE")

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, formatPCM)
	out = binary.LittleEndian.AppendUint16(out, uint16(f.Channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(f.SampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(f.SampleRate*f.Channels*f.BitDepth/8))
	out = binary.LittleEndian.AppendUint16(out, uint16(f.Channels*f.BitDepth/8))
	out = binary.LittleEndian.AppendUint16(out, uint16(f.BitDepth))

	out = append(out, "LIST"...)
	out = binary.LittleEndian.AppendUint32(out, 3)
	out = append(out, 'a', 'b', 'c', 0)

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, declaredSize)

	return append(out, samples...)
}

func monoSamples(values ...int16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, uint16(v))
	}

	return out
}

func TestParseWAV(t *testing.T) {
	t.Parallel()

	mono := Format{SampleRate: 22050, Channels: 1, BitDepth: 16}
	samples := monoSamples(0, 1000, -1000, 32767)

	format, data, err := ParseWAV(makeWAV(mono, samples, uint32(len(samples))))
	require.NoError(t, err)
	require.Equal(t, mono, format)
	require.Equal(t, samples, data)
}

// TestParseWAV_StreamedSize accepts the oversized data length written by
// encoders that stream to a pipe.
func TestParseWAV_StreamedSize(t *testing.T) {
	t.Parallel()

	mono := Format{SampleRate: 22050, Channels: 1, BitDepth: 16}
	samples := append(monoSamples(1, 2, 3), 0x7f)

	_, data, err := ParseWAV(makeWAV(mono, samples, 0xFFFFFFFF))
	require.NoError(t, err)
	require.Equal(t, monoSamples(1, 2, 3), data)
}

func TestParseWAV_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := ParseWAV([]byte("not a wav file at all"))
	require.ErrorIs(t, err, ErrNotWAV)

	_, _, err = ParseWAV(makeWAV(Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, []byte{1, 2}, 2))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = ParseWAV([]byte("RIFF\x00\x00\x00\x00WAVE"))
	require.ErrorIs(t, err, ErrMissingData)
}

func TestNormalize_MonoUpsampled(t *testing.T) {
	t.Parallel()

	mono := Format{SampleRate: SampleRate / 2, Channels: 1, BitDepth: 16}

	out, err := Normalize(mono, monoSamples(0, 1000, 2000))
	require.NoError(t, err)
	require.Len(t, out, 6*frameSize)

	frame := func(i int) (int16, int16) {
		at := i * frameSize

		return int16(binary.LittleEndian.Uint16(out[at:])), int16(binary.LittleEndian.Uint16(out[at+2:]))
	}

	l, r := frame(1)
	require.Equal(t, int16(500), l)
	require.Equal(t, l, r)

	l, _ = frame(2)
	require.Equal(t, int16(1000), l)

	l, _ = frame(5)
	require.Equal(t, int16(2000), l)
}

func TestNormalize_PassThrough(t *testing.T) {
	t.Parallel()

	stereo := monoSamples(10, -10, 20, -20)

	out, err := Normalize(Output(), stereo)
	require.NoError(t, err)
	require.Equal(t, stereo, out)
}

func TestTone(t *testing.T) {
	t.Parallel()

	tone := Tone(880, 10*time.Millisecond)
	require.Len(t, tone, 441*frameSize)
	require.Equal(t, 10*time.Millisecond, Duration(tone))
	require.Equal(t, []byte{0, 0, 0, 0}, tone[:frameSize])
	require.Nil(t, Tone(880, 0))
}
