package device

import (
	"fmt"
	"sync"

	oto "github.com/hajimehoshi/oto/v2"

	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/pcm"
)

// The operating system audio context cannot be torn down and reopened
// reliably on every platform, so one context serves the whole process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(config.DeviceSampleRate, config.DeviceChannels, pcm.BytesPerSample)
		if err != nil {
			otoErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Oto plays through the system's default audio device. The player pulls
// from the mixer on oto's own goroutine and keeps running across
// underruns, so a starved queue produces silence rather than a stopped
// source.
type Oto struct {
	player oto.Player
	mix    *mixer
	closed bool
}

// NewOto opens an output on the shared audio context.
func NewOto() (*Oto, error) {
	ctx, err := sharedContext()
	if err != nil {
		return nil, err
	}
	m := newMixer(config.DeviceSampleRate)
	return &Oto{player: ctx.NewPlayer(m), mix: m}, nil
}

func (o *Oto) Submit(data []byte, f pcm.Format, rate int) error {
	if o.closed {
		return ErrClosed
	}
	return o.mix.submit(data, f, rate)
}

func (o *Oto) Queued() int { return o.mix.queued() }

func (o *Oto) Processed() int { return o.mix.processed() }

func (o *Oto) Unqueue(n int) error {
	if o.closed {
		return ErrClosed
	}
	return o.mix.unqueue(n)
}

func (o *Oto) Play() error {
	if o.closed {
		return ErrClosed
	}
	o.player.Play()
	return o.player.Err()
}

func (o *Oto) Pause() error {
	if o.closed {
		return ErrClosed
	}
	o.player.Pause()
	return o.player.Err()
}

// Stop halts playback and drops queued audio, both the mixer's chunks
// and whatever the player pulled ahead into its own buffer.
func (o *Oto) Stop() error {
	if o.closed {
		return ErrClosed
	}
	o.player.Pause()
	o.player.Reset()
	o.mix.flush()
	return o.player.Err()
}

func (o *Oto) Playing() bool {
	return !o.closed && o.player.IsPlaying()
}

func (o *Oto) SetPitch(p float64) error {
	if o.closed {
		return ErrClosed
	}
	return o.mix.setPitch(p)
}

func (o *Oto) Pitch() float64 { return o.mix.getPitch() }

// SetGain scales samples in the mixer rather than through the player's
// volume, which is clamped to [0, 1] and cannot express boost.
func (o *Oto) SetGain(g float64) error {
	if o.closed {
		return ErrClosed
	}
	return o.mix.setGain(g)
}

func (o *Oto) Gain() float64 { return o.mix.getGain() }

// SampleOffset estimates source frames actually audible: frames pulled
// by the player minus the pulled-but-unplayed tail sitting in its
// buffer.
func (o *Oto) SampleOffset() int64 {
	pulled := o.mix.sampleOffset()
	unplayed := int64(o.player.UnplayedBufferSize()) / int64(config.DeviceChannels*pcm.BytesPerSample)
	adj := int64(float64(unplayed) * o.mix.step())
	if off := pulled - adj; off > 0 {
		return off
	}
	return 0
}

func (o *Oto) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	err := o.player.Close()
	o.mix.close()
	if err != nil {
		return fmt.Errorf("close player: %w", err)
	}
	return nil
}
