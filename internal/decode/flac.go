package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/beatfunk/thump/internal/pcm"
)

// flacDecoder re-interleaves mewkiz/flac's per-channel frames into
// 16-bit PCM, rescaling from the stream's bit depth.
type flacDecoder struct {
	stream *flac.Stream
	rem    []byte
	buf    []byte
	rate   int
	ch     int
	frames int64
	eof    bool
}

// NewFLAC validates and wraps a FLAC stream.
func NewFLAC(r io.ReadSeeker) (Decoder, error) {
	s, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("open flac: %w", err)
	}
	ch := int(s.Info.NChannels)
	if _, err := pcm.FormatFor(ch); err != nil {
		return nil, fmt.Errorf("open flac: %w", err)
	}
	rate := int(s.Info.SampleRate)
	if rate <= 0 {
		return nil, fmt.Errorf("open flac: invalid sample rate %d", rate)
	}
	return &flacDecoder{
		stream: s,
		rate:   rate,
		ch:     ch,
		frames: int64(s.Info.NSamples),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.rem) == 0 {
		if d.eof {
			return 0, io.EOF
		}
		fr, err := d.stream.ParseNext()
		if err == io.EOF {
			d.eof = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("flac read: %w", err)
		}
		converted, err := d.interleave(fr)
		if err != nil {
			return 0, err
		}
		d.rem = converted
	}
	n := copy(p, d.rem)
	d.rem = d.rem[n:]
	return n, nil
}

func (d *flacDecoder) interleave(fr *frame.Frame) ([]byte, error) {
	if len(fr.Subframes) < d.ch {
		return nil, fmt.Errorf("flac read: frame has %d channels, stream declared %d",
			len(fr.Subframes), d.ch)
	}
	samples := len(fr.Subframes[0].Samples)
	shift := int(fr.BitsPerSample) - 16

	need := samples * d.ch * pcm.BytesPerSample
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	out := d.buf[:need]

	for i := 0; i < samples; i++ {
		for c := 0; c < d.ch; c++ {
			s := int(fr.Subframes[c].Samples[i])
			var v int16
			switch {
			case shift > 0:
				v = int16(s >> shift)
			case shift < 0:
				v = int16(s << -shift)
			default:
				v = int16(s)
			}
			pcm.PutSample(out, i*d.ch+c, v)
		}
	}
	return out, nil
}

func (d *flacDecoder) SampleRate() int { return d.rate }

func (d *flacDecoder) Channels() int { return d.ch }

func (d *flacDecoder) Frames() int64 { return d.frames }

func (d *flacDecoder) Close() error { return nil }
