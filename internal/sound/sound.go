// Package sound streams decoded audio through a pool of fixed-size
// buffers into an output device, feeding every audible sample to a
// beat tracker exactly once and in playback order.
//
// A Sound is owned by a single goroutine. The caller drives it by
// invoking Update on a short interval; each tick retires buffers the
// device has finished, refills them from the decoder, and advances
// the beat analysis to match the device's play position.
package sound

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/beatfunk/thump/internal/beat"
	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/decode"
	"github.com/beatfunk/thump/internal/device"
	"github.com/beatfunk/thump/internal/pcm"
)

// Opener constructs a decoder for the source. Reset rewinds the source
// and calls it again, so it must be reusable.
type Opener func(src io.ReadSeeker) (decode.Decoder, error)

// Options control buffering and initial playback parameters. The zero
// value is not valid; start from DefaultOptions.
type Options struct {
	// BufferCount is the number of pooled buffers, at least 2 so one
	// can refill while another plays.
	BufferCount int

	// BufferSize is the byte size of each buffer. It must be a
	// positive multiple of 4 so stereo frames never straddle buffers.
	BufferSize int

	// Pitch is the initial playback rate multiplier.
	Pitch float64

	// Volume is the initial gain.
	Volume float64
}

// DefaultOptions returns the standard buffering configuration.
func DefaultOptions() Options {
	return Options{
		BufferCount: config.BufferCount,
		BufferSize:  config.BufferSize,
		Pitch:       1,
		Volume:      1,
	}
}

// queuedBuf is a pooled buffer currently held by the device queue.
// data keeps its full capacity; frames counts the valid leading
// frames. analyzed tracks how many of those the tracker has consumed,
// guaranteeing each frame is fed exactly once.
type queuedBuf struct {
	data     []byte
	frames   int
	analyzed int
	format   pcm.Format
	rate     int
}

// Sound streams one decoded source to one output device.
//
// Sound is not safe for concurrent use.
type Sound struct {
	src   io.ReadSeeker
	open  Opener
	dec   decode.Decoder
	out   device.Output
	track *beat.Tracker

	format pcm.Format
	rate   int

	free   [][]byte
	queued []*queuedBuf

	playing bool
	eof     bool

	// analyzedFrames counts frames fed to the tracker since the last
	// Reset. maxPlayed pins the device offset so estimate jitter can
	// never move analysis backwards.
	analyzedFrames int64
	maxPlayed      int64

	tap    func([]float64)
	tapBuf []float64
}

// New opens the source through the opener and prepares the buffer
// pool. The device adopts the pitch and volume from opts. Call
// Initialize to prime the queue before playing.
func New(src io.ReadSeeker, open Opener, out device.Output, opts Options) (*Sound, error) {
	if opts.BufferCount < 2 {
		return nil, fmt.Errorf("buffer count %d is too small, need at least 2", opts.BufferCount)
	}
	if opts.BufferSize <= 0 || opts.BufferSize%4 != 0 {
		return nil, fmt.Errorf("buffer size %d must be a positive multiple of 4", opts.BufferSize)
	}
	if opts.Pitch <= 0 {
		return nil, fmt.Errorf("pitch %v must be positive", opts.Pitch)
	}
	if opts.Volume < 0 {
		return nil, fmt.Errorf("volume %v must not be negative", opts.Volume)
	}

	dec, err := open(src)
	if err != nil {
		return nil, fmt.Errorf("opening decoder: %w", err)
	}
	format, err := pcm.FormatFor(dec.Channels())
	if err != nil {
		return nil, err
	}

	if err := out.SetPitch(opts.Pitch); err != nil {
		return nil, err
	}
	if err := out.SetGain(opts.Volume); err != nil {
		return nil, err
	}

	s := &Sound{
		src:    src,
		open:   open,
		dec:    dec,
		out:    out,
		track:  beat.New(dec.SampleRate()),
		format: format,
		rate:   dec.SampleRate(),
		free:   make([][]byte, 0, opts.BufferCount),
	}
	for i := 0; i < opts.BufferCount; i++ {
		s.free = append(s.free, make([]byte, opts.BufferSize))
	}
	return s, nil
}

// Initialize fills the pool from the decoder and queues everything on
// the device. It does not start playback.
func (s *Sound) Initialize() error {
	for len(s.free) > 0 && !s.eof {
		if err := s.fillAndQueue(); err != nil {
			return err
		}
	}
	return nil
}

// Update runs one maintenance tick: analysis catches up to the play
// position, finished buffers return to the pool, free buffers refill
// from the decoder, and starved playback restarts. Call it more often
// than a buffer takes to play.
func (s *Sound) Update() error {
	s.analyzeAudible()

	done := s.out.Processed()
	for i := 0; i < done; i++ {
		s.flushHead()
		if err := s.out.Unqueue(1); err != nil {
			return fmt.Errorf("retiring played buffer: %w", err)
		}
		head := s.queued[0]
		s.queued = s.queued[1:]
		s.free = append(s.free, head.data)
	}

	for len(s.free) > 0 && !s.eof {
		if err := s.fillAndQueue(); err != nil {
			return err
		}
	}

	// The device stops itself when the queue runs dry. If audio has
	// arrived since, kick it back into motion.
	if s.playing && !s.out.Playing() && s.out.Queued() > 0 {
		slog.Debug("restarting starved playback", "queued", s.out.Queued())
		if err := s.out.Play(); err != nil {
			return fmt.Errorf("restarting playback: %w", err)
		}
	}
	return nil
}

// fillAndQueue takes one free buffer, fills it from the decoder and
// hands it to the device. A buffer that receives no complete frame
// goes straight back to the pool.
func (s *Sound) fillAndQueue() error {
	buf := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]

	filled := 0
	for filled < len(buf) {
		n, err := s.dec.Read(buf[filled:])
		filled += n
		if err == io.EOF || (err == nil && n == 0) {
			s.eof = true
			slog.Debug("decoder reached end of stream")
			break
		}
		if err != nil {
			s.free = append(s.free, buf)
			return fmt.Errorf("decoding audio: %w", err)
		}
	}

	if err := s.resyncFormat(); err != nil {
		s.free = append(s.free, buf)
		return err
	}

	frames := filled / s.format.FrameSize()
	if frames == 0 {
		s.free = append(s.free, buf)
		return nil
	}

	qb := &queuedBuf{
		data:   buf,
		frames: frames,
		format: s.format,
		rate:   s.rate,
	}
	if err := s.out.Submit(buf[:frames*s.format.FrameSize()], s.format, s.rate); err != nil {
		s.free = append(s.free, buf)
		return fmt.Errorf("queueing buffer: %w", err)
	}
	s.queued = append(s.queued, qb)
	return nil
}

// resyncFormat re-reads the decoder's format and rate so freshly
// filled buffers carry the stream's current shape.
func (s *Sound) resyncFormat() error {
	format, err := pcm.FormatFor(s.dec.Channels())
	if err != nil {
		return err
	}
	rate := s.dec.SampleRate()
	if format == s.format && rate == s.rate {
		return nil
	}
	slog.Debug("stream format changed", "channels", format.Channels(), "rate", rate)
	s.format = format
	s.rate = rate
	s.track.SetSampleRate(rate)
	return nil
}

// analyzeAudible feeds the tracker every frame the device has played
// since the last tick, walking the queue in order.
func (s *Sound) analyzeAudible() {
	remaining := s.played() - s.analyzedFrames
	for _, qb := range s.queued {
		if remaining <= 0 {
			break
		}
		avail := qb.frames - qb.analyzed
		if avail <= 0 {
			continue
		}
		n := avail
		if int64(n) > remaining {
			n = int(remaining)
		}
		s.feed(qb, n)
		remaining -= int64(n)
	}
}

// flushHead analyzes whatever remains of the head buffer. The device
// has finished playing it, but the play position estimate may trail
// the buffer boundary; analysis must still cover every frame before
// the buffer is recycled.
func (s *Sound) flushHead() {
	if len(s.queued) == 0 {
		return
	}
	head := s.queued[0]
	if rem := head.frames - head.analyzed; rem > 0 {
		s.feed(head, rem)
	}
}

func (s *Sound) feed(qb *queuedBuf, frames int) {
	start := qb.analyzed * qb.format.FrameSize()
	end := (qb.analyzed + frames) * qb.format.FrameSize()
	span := qb.data[start:end]

	s.track.ProcessPCM(span)
	if s.tap != nil {
		s.emitTap(span, qb.format)
	}

	qb.analyzed += frames
	s.analyzedFrames += int64(frames)
}

// emitTap converts the span to channel-averaged mono floats and hands
// it to the tap. The scratch buffer is reused across calls, so the tap
// must not retain the slice.
func (s *Sound) emitTap(span []byte, f pcm.Format) {
	ch := f.Channels()
	frames := len(span) / f.FrameSize()
	if cap(s.tapBuf) < frames {
		s.tapBuf = make([]float64, frames)
	}
	mono := s.tapBuf[:frames]
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < ch; c++ {
			sum += pcm.Float(pcm.Sample(span, i*ch+c))
		}
		mono[i] = sum / float64(ch)
	}
	s.tap(mono)
}

// played returns the device play position in frames, pinned so it
// never moves backwards.
func (s *Sound) played() int64 {
	if off := s.out.SampleOffset(); off > s.maxPlayed {
		s.maxPlayed = off
	}
	return s.maxPlayed
}

// OnSamples registers a tap that receives the mono projection of every
// analyzed span. It runs on the goroutine that calls Update.
func (s *Sound) OnSamples(fn func([]float64)) {
	s.tap = fn
}

// SetPlaying starts or pauses the device. Setting the current state is
// a no-op and never touches the device.
func (s *Sound) SetPlaying(playing bool) error {
	if playing == s.playing {
		return nil
	}
	if playing {
		if err := s.out.Play(); err != nil {
			return fmt.Errorf("starting playback: %w", err)
		}
	} else {
		if err := s.out.Pause(); err != nil {
			return fmt.Errorf("pausing playback: %w", err)
		}
	}
	s.playing = playing
	return nil
}

// Play starts playback.
func (s *Sound) Play() error { return s.SetPlaying(true) }

// Pause halts playback, keeping the queue and position.
func (s *Sound) Pause() error { return s.SetPlaying(false) }

// Playing reports the requested playback state.
func (s *Sound) Playing() bool { return s.playing }

// Reset rewinds the stream to the beginning: playback stops, queued
// audio is discarded, the decoder reopens and the beat tracker starts
// fresh. The pool is re-primed, ready for Play.
func (s *Sound) Reset() error {
	if err := s.out.Stop(); err != nil {
		return fmt.Errorf("stopping playback: %w", err)
	}
	s.playing = false

	if _, err := s.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding source: %w", err)
	}
	if err := s.dec.Close(); err != nil {
		return fmt.Errorf("closing decoder: %w", err)
	}
	dec, err := s.open(s.src)
	if err != nil {
		return fmt.Errorf("reopening decoder: %w", err)
	}
	format, err := pcm.FormatFor(dec.Channels())
	if err != nil {
		return err
	}
	s.dec = dec
	s.format = format
	s.rate = dec.SampleRate()

	for _, qb := range s.queued {
		s.free = append(s.free, qb.data)
	}
	s.queued = nil
	s.eof = false
	s.analyzedFrames = 0
	s.maxPlayed = 0

	s.track.Reset()
	s.track.SetSampleRate(s.rate)

	return s.Initialize()
}

// SetPitch changes the playback rate multiplier on the device.
func (s *Sound) SetPitch(pitch float64) error { return s.out.SetPitch(pitch) }

// Pitch returns the current playback rate multiplier.
func (s *Sound) Pitch() float64 { return s.out.Pitch() }

// SetVolume changes the gain on the device.
func (s *Sound) SetVolume(volume float64) error { return s.out.SetGain(volume) }

// Volume returns the current gain.
func (s *Sound) Volume() float64 { return s.out.Gain() }

// BeatPhase returns the beat phase at the frame currently leaving the
// speaker. Analysis runs ahead of the audible position, so the
// tracker's raw phase is projected back by the lead.
func (s *Sound) BeatPhase() float64 {
	return s.track.PhaseAt(s.analyzedFrames - s.played())
}

// BPM returns the tracked tempo in beats per minute.
func (s *Sound) BPM() float64 { return s.track.BPM() }

// BeatVolume returns the tracker's beat strength envelope.
func (s *Sound) BeatVolume() float64 { return s.track.Volume() }

// Position returns how much audio has been played.
func (s *Sound) Position() time.Duration {
	if s.rate <= 0 {
		return 0
	}
	return time.Duration(float64(s.played()) / float64(s.rate) * float64(time.Second))
}

// Duration returns the total stream length, or zero when the decoder
// cannot tell.
func (s *Sound) Duration() time.Duration {
	if s.rate <= 0 {
		return 0
	}
	return time.Duration(float64(s.dec.Frames()) / float64(s.rate) * float64(time.Second))
}

// SampleRate returns the stream's sample rate in Hz.
func (s *Sound) SampleRate() int { return s.rate }

// Format returns the stream's PCM format.
func (s *Sound) Format() pcm.Format { return s.format }

// Drained reports whether the decoder is exhausted and every queued
// buffer has been retired.
func (s *Sound) Drained() bool {
	return s.eof && len(s.queued) == 0
}

// Close releases the device and the decoder.
func (s *Sound) Close() error {
	err := s.out.Close()
	if derr := s.dec.Close(); derr != nil && err == nil {
		err = derr
	}
	return err
}
