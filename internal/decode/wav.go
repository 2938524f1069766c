package decode

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/beatfunk/thump/internal/pcm"
)

// wavChunkSamples is how many source samples each PCMBuffer call pulls.
const wavChunkSamples = 8192

// wavDecoder streams PCM out of a RIFF/WAVE container, converting
// whatever bit depth the file carries down to 16-bit.
type wavDecoder struct {
	dec    *wav.Decoder
	chunk  *audio.IntBuffer
	rem    []byte
	buf    []byte
	rate   int
	ch     int
	bits   int
	frames int64
	eof    bool
}

// NewWAV validates and wraps a WAV stream.
func NewWAV(r io.ReadSeeker) (Decoder, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("open wav: not a valid wav file")
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}

	ch := int(d.NumChans)
	if _, err := pcm.FormatFor(ch); err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	bits := int(d.BitDepth)
	switch bits {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("open wav: unsupported bit depth %d", bits)
	}
	rate := int(d.SampleRate)
	if rate <= 0 {
		return nil, fmt.Errorf("open wav: invalid sample rate %d", rate)
	}

	w := &wavDecoder{
		dec: d,
		chunk: &audio.IntBuffer{
			Data:   make([]int, wavChunkSamples),
			Format: &audio.Format{NumChannels: ch, SampleRate: rate},
		},
		rate: rate,
		ch:   ch,
		bits: bits,
	}
	if dur, err := d.Duration(); err == nil {
		w.frames = int64(math.Round(dur.Seconds() * float64(rate)))
	}
	return w, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.rem) == 0 {
		if d.eof {
			return 0, io.EOF
		}
		n, err := d.dec.PCMBuffer(d.chunk)
		if err != nil {
			return 0, fmt.Errorf("wav read: %w", err)
		}
		if n == 0 {
			d.eof = true
			return 0, io.EOF
		}
		d.rem = d.convert(d.chunk.Data[:n])
	}
	n := copy(p, d.rem)
	d.rem = d.rem[n:]
	return n, nil
}

// convert rescales source samples to 16-bit. WAV stores 8-bit audio
// unsigned, everything wider two's complement.
func (d *wavDecoder) convert(data []int) []byte {
	if cap(d.buf) < len(data)*pcm.BytesPerSample {
		d.buf = make([]byte, len(data)*pcm.BytesPerSample)
	}
	out := d.buf[:len(data)*pcm.BytesPerSample]
	for i, s := range data {
		var v int16
		switch {
		case d.bits == 16:
			v = int16(s)
		case d.bits > 16:
			v = int16(s >> (d.bits - 16))
		default:
			v = int16((s - 128) << 8)
		}
		pcm.PutSample(out, i, v)
	}
	return out
}

func (d *wavDecoder) SampleRate() int { return d.rate }

func (d *wavDecoder) Channels() int { return d.ch }

func (d *wavDecoder) Frames() int64 { return d.frames }

func (d *wavDecoder) Close() error { return nil }
