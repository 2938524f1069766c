package decode

import (
	"fmt"
	"io"
	"math"

	"github.com/beatfunk/thump/internal/pcm"
)

// ToneConfig shapes a synthetic stream.
type ToneConfig struct {
	SampleRate int
	Channels   int
	Frames     int64

	// Carrier is the sine frequency in Hz. Zero renders silence.
	Carrier float64

	// BeatRate adds click accents this many times per second. Zero
	// disables them.
	BeatRate float64

	// Level is the carrier amplitude in [0, 1].
	Level float64
}

// Tone is a deterministic synthetic Decoder: a sine carrier with
// optional periodic click accents. Two tones built from the same config
// emit identical bytes, which makes it the reference source for engine
// tests and benchmarks.
type Tone struct {
	cfg ToneConfig
	pos int64
}

// NewTone builds a synthetic stream from cfg.
func NewTone(cfg ToneConfig) (*Tone, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("tone: invalid sample rate %d", cfg.SampleRate)
	}
	if _, err := pcm.FormatFor(cfg.Channels); err != nil {
		return nil, fmt.Errorf("tone: %w", err)
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("tone: negative frame count %d", cfg.Frames)
	}
	if cfg.Level < 0 || cfg.Level > 1 {
		return nil, fmt.Errorf("tone: level %v out of [0,1]", cfg.Level)
	}
	return &Tone{cfg: cfg}, nil
}

func (t *Tone) Read(p []byte) (int, error) {
	if t.pos >= t.cfg.Frames {
		return 0, io.EOF
	}
	frameSize := t.cfg.Channels * pcm.BytesPerSample
	want := int64(len(p) / frameSize)
	if want == 0 {
		return 0, io.ErrShortBuffer
	}
	if left := t.cfg.Frames - t.pos; want > left {
		want = left
	}

	rate := float64(t.cfg.SampleRate)
	for i := int64(0); i < want; i++ {
		at := float64(t.pos+i) / rate
		s := t.cfg.Level * math.Sin(2*math.Pi*t.cfg.Carrier*at)
		if t.cfg.BeatRate > 0 && math.Mod(at*t.cfg.BeatRate, 1) < 0.02 {
			s += 0.9
		}
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		for c := 0; c < t.cfg.Channels; c++ {
			pcm.PutSample(p, int(i)*t.cfg.Channels+c, v)
		}
	}

	t.pos += want
	return int(want) * frameSize, nil
}

func (t *Tone) SampleRate() int { return t.cfg.SampleRate }

func (t *Tone) Channels() int { return t.cfg.Channels }

func (t *Tone) Frames() int64 { return t.cfg.Frames }

func (t *Tone) Close() error { return nil }
