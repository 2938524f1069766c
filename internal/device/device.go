// Package device abstracts the audio output the streaming engine queues
// PCM into.
package device

import (
	"errors"
	"fmt"

	"github.com/beatfunk/thump/internal/pcm"
)

// ErrClosed is returned by operations on a closed output.
var ErrClosed = errors.New("device: output closed")

func errBadPitch(p float64) error { return fmt.Errorf("device: pitch %v out of range", p) }

func errBadGain(g float64) error { return fmt.Errorf("device: gain %v out of range", g) }

func errPending(n, done int) error {
	return fmt.Errorf("device: cannot unqueue %d buffers, only %d processed", n, done)
}

// Output is a queued streaming playback device. Buffers submitted with
// Submit play in order. Processed reports how many finished, and
// finished buffers must be retired with Unqueue before their slots
// count as free again.
type Output interface {
	// Submit copies data, tagged with its layout and rate, onto the
	// playback queue.
	Submit(data []byte, f pcm.Format, rate int) error

	// Queued reports submitted buffers not yet retired.
	Queued() int

	// Processed reports how many queued buffers finished playing.
	Processed() int

	// Unqueue retires the n oldest processed buffers.
	Unqueue(n int) error

	Play() error
	Pause() error

	// Stop halts playback, discards everything queued and rewinds the
	// sample offset to zero.
	Stop() error

	Playing() bool

	// SetPitch scales the playback rate. Must be positive.
	SetPitch(p float64) error
	Pitch() float64

	// SetGain scales output amplitude. Must be non-negative; values
	// above one clip.
	SetGain(g float64) error
	Gain() float64

	// SampleOffset reports source frames consumed since the last Stop.
	SampleOffset() int64

	Close() error
}
