package decode

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Decoder adapts go-mp3 to the Decoder surface. go-mp3 emits 16-bit
// little-endian stereo regardless of the source layout, so no
// conversion is needed here.
type mp3Decoder struct {
	dec *mp3.Decoder
}

// NewMP3 validates and wraps an MP3 stream.
func NewMP3(r io.ReadSeeker) (Decoder, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}
	if d.SampleRate() <= 0 {
		return nil, fmt.Errorf("open mp3: invalid sample rate %d", d.SampleRate())
	}
	return &mp3Decoder{dec: d}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }

func (d *mp3Decoder) Channels() int { return 2 }

// Frames derives the total from go-mp3's decoded byte length, four
// bytes per stereo frame.
func (d *mp3Decoder) Frames() int64 { return d.dec.Length() / 4 }

func (d *mp3Decoder) Close() error { return nil }
