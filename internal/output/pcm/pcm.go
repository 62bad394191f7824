// Package pcm decodes WAV files and prepares signed 16-bit little-endian
// stereo PCM for the speaker: channel and rate conversion and tone synthesis.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// SampleRate is the rate of the output stream.
	SampleRate = 44100
	// Channels is the channel count of the output stream.
	Channels = 2
	// BitDepth is the sample width of the output stream.
	BitDepth = 16

	bytesPerSample = BitDepth / 8
	frameSize      = Channels * bytesPerSample

	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtChunkMinSize = 16
	formatPCM       = 1

	// toneAmplitude keeps synthesized tones clear of clipping.
	toneAmplitude = 0.6
	// fadeFrames ramps tone edges to avoid clicks.
	fadeFrames = 256
)

var (
	// ErrNotWAV is returned for data without a RIFF/WAVE header.
	ErrNotWAV = errors.New("not a WAV stream")
	// ErrUnsupportedFormat is returned for anything but 16-bit PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
	// ErrMissingData is returned when no fmt or data chunk is found.
	ErrMissingData = errors.New("WAV stream has no audio data")
)

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Output is the format the speaker plays.
func Output() Format {
	return Format{SampleRate: SampleRate, Channels: Channels, BitDepth: BitDepth}
}

// ParseWAV returns the format and the raw samples of a WAV stream. A data
// chunk whose declared size runs past the end is truncated, which is what
// streaming encoders such as espeak produce.
func ParseWAV(data []byte) (Format, []byte, error) {
	if len(data) < riffHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Format{}, nil, ErrNotWAV
	}

	var (
		format  Format
		haveFmt bool
		offset  = riffHeaderSize
	)

	for offset+chunkHeaderSize <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + chunkHeaderSize

		switch id {
		case "fmt ":
			if size < fmtChunkMinSize || body+fmtChunkMinSize > len(data) {
				return Format{}, nil, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}

			if tag := binary.LittleEndian.Uint16(data[body:]); tag != formatPCM {
				return Format{}, nil, fmt.Errorf("%w: encoding %d", ErrUnsupportedFormat, tag)
			}

			format = Format{
				Channels:   int(binary.LittleEndian.Uint16(data[body+2:])),
				SampleRate: int(binary.LittleEndian.Uint32(data[body+4:])),
				BitDepth:   int(binary.LittleEndian.Uint16(data[body+14:])),
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Format{}, nil, ErrMissingData
			}

			if err := format.validate(); err != nil {
				return Format{}, nil, err
			}

			end := body + size
			if size < 0 || end > len(data) {
				end = len(data)
			}

			samples := data[body:end]

			return format, samples[:len(samples)-len(samples)%format.frameSize()], nil
		}

		// Chunks are padded to an even size.
		offset = body + size + size%2
	}

	return Format{}, nil, ErrMissingData
}

func (f Format) validate() error {
	if f.BitDepth != BitDepth {
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, f.BitDepth)
	}

	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}

	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, f.SampleRate)
	}

	return nil
}

func (f Format) frameSize() int {
	return f.Channels * bytesPerSample
}

// Normalize converts 16-bit samples in format f to the output format,
// duplicating mono channels and resampling linearly.
func Normalize(f Format, samples []byte) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	frames := len(samples) / f.frameSize()
	if frames == 0 {
		return nil, nil
	}

	left := make([]float64, frames)
	right := make([]float64, frames)

	for i := range frames {
		at := i * f.frameSize()
		left[i] = float64(int16(binary.LittleEndian.Uint16(samples[at:])))

		if f.Channels == 2 {
			right[i] = float64(int16(binary.LittleEndian.Uint16(samples[at+bytesPerSample:])))
		} else {
			right[i] = left[i]
		}
	}

	outFrames := frames
	if f.SampleRate != SampleRate {
		outFrames = int(int64(frames) * SampleRate / int64(f.SampleRate))
	}

	out := make([]byte, outFrames*frameSize)
	step := float64(f.SampleRate) / SampleRate

	for i := range outFrames {
		pos := float64(i) * step
		putFrame(out[i*frameSize:], interpolate(left, pos), interpolate(right, pos))
	}

	return out, nil
}

// Tone synthesizes a sine tone of the given frequency and duration.
func Tone(frequency float64, d time.Duration) []byte {
	frames := int(d.Seconds() * SampleRate)
	if frames <= 0 {
		return nil
	}

	out := make([]byte, frames*frameSize)
	fade := min(fadeFrames, frames/2)

	for i := range frames {
		gain := toneAmplitude

		switch {
		case fade > 0 && i < fade:
			gain *= float64(i) / float64(fade)
		case fade > 0 && i >= frames-fade:
			gain *= float64(frames-1-i) / float64(fade)
		}

		v := gain * math.MaxInt16 * math.Sin(2*math.Pi*frequency*float64(i)/SampleRate)
		putFrame(out[i*frameSize:], v, v)
	}

	return out
}

// Duration returns the play time of output-format samples.
func Duration(samples []byte) time.Duration {
	return time.Duration(len(samples)/frameSize) * time.Second / SampleRate
}

func interpolate(values []float64, pos float64) float64 {
	i := int(pos)
	if i >= len(values)-1 {
		return values[len(values)-1]
	}

	frac := pos - float64(i)

	return values[i]*(1-frac) + values[i+1]*frac
}

func putFrame(dst []byte, left, right float64) {
	binary.LittleEndian.PutUint16(dst, uint16(clamp(left)))
	binary.LittleEndian.PutUint16(dst[bytesPerSample:], uint16(clamp(right)))
}

func clamp(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}
