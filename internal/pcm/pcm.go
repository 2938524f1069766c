// Package pcm defines the sample formats exchanged between decoders, the
// streaming engine and the output device.
package pcm

import "fmt"

// BytesPerSample is the width of one sample on one channel.
const BytesPerSample = 2

// Format identifies the layout of interleaved signed 16-bit
// little-endian PCM.
type Format int

const (
	// Mono16 is single-channel 16-bit PCM.
	Mono16 Format = iota
	// Stereo16 is two-channel interleaved 16-bit PCM.
	Stereo16
)

// FormatFor maps a channel count onto a Format.
func FormatFor(channels int) (Format, error) {
	switch channels {
	case 1:
		return Mono16, nil
	case 2:
		return Stereo16, nil
	default:
		return 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

// Channels returns the number of interleaved channels.
func (f Format) Channels() int {
	if f == Stereo16 {
		return 2
	}
	return 1
}

// FrameSize returns the byte width of one frame, one sample per channel.
func (f Format) FrameSize() int {
	return f.Channels() * BytesPerSample
}

func (f Format) String() string {
	switch f {
	case Mono16:
		return "mono"
	case Stereo16:
		return "stereo"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Sample extracts the i-th little-endian sample from raw PCM bytes.
func Sample(p []byte, i int) int16 {
	return int16(p[i*2]) | int16(p[i*2+1])<<8
}

// PutSample stores s as the i-th little-endian sample in p.
func PutSample(p []byte, i int, s int16) {
	p[i*2] = byte(s)
	p[i*2+1] = byte(s >> 8)
}

// Float normalizes a signed 16-bit sample into [-1, 1).
func Float(s int16) float64 {
	return float64(s) / 32768.0
}
