package device

import (
	"sync"

	"github.com/beatfunk/thump/internal/pcm"
)

type simChunk struct {
	frames int
	left   int
}

// Sim is a manually advanced Output for tests and benchmarks. It mimics
// a streaming source: Advance drains the queue the way wall time would,
// and starving it drops the device to stopped until somebody calls Play
// again. Play invocations are counted so tests can assert an idle
// reconcile touches nothing, and Submit failures can be armed to reach
// engine error paths.
type Sim struct {
	mu        sync.Mutex
	chunks    []simChunk
	playing   bool
	pitch     float64
	gain      float64
	played    int64
	playCalls int
	submitErr error
	closed    bool
}

// NewSim returns a simulated output.
func NewSim() *Sim {
	return &Sim{pitch: 1, gain: 1}
}

func (s *Sim) Submit(data []byte, f pcm.Format, rate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.submitErr; err != nil {
		s.submitErr = nil
		return err
	}
	frames := len(data) / f.FrameSize()
	s.chunks = append(s.chunks, simChunk{frames: frames, left: frames})
	return nil
}

func (s *Sim) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

func (s *Sim) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chunks {
		if c.left > 0 {
			break
		}
		n++
	}
	return n
}

func (s *Sim) Unqueue(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	done := 0
	for _, c := range s.chunks {
		if c.left > 0 {
			break
		}
		done++
	}
	if n < 0 || n > done {
		return errPending(n, done)
	}
	s.chunks = s.chunks[n:]
	return nil
}

func (s *Sim) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.playCalls++
	s.playing = true
	return nil
}

func (s *Sim) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.playing = false
	return nil
}

func (s *Sim) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.playing = false
	s.chunks = nil
	s.played = 0
	return nil
}

func (s *Sim) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Sim) SetPitch(p float64) error {
	if p <= 0 {
		return errBadPitch(p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitch = p
	return nil
}

func (s *Sim) Pitch() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch
}

func (s *Sim) SetGain(g float64) error {
	if g < 0 {
		return errBadGain(g)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = g
	return nil
}

func (s *Sim) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

func (s *Sim) SampleOffset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.playing = false
	s.chunks = nil
	return nil
}

// Advance consumes up to frames source frames from the queue, the way
// a real device drains it over time. Consuming past the end of the
// queue is starvation: playback stops and stays stopped.
func (s *Sim) Advance(frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || s.closed {
		return
	}
	for frames > 0 {
		cur := -1
		for i := range s.chunks {
			if s.chunks[i].left > 0 {
				cur = i
				break
			}
		}
		if cur < 0 {
			s.playing = false
			return
		}
		n := s.chunks[cur].left
		if n > frames {
			n = frames
		}
		s.chunks[cur].left -= n
		s.played += int64(n)
		frames -= n
	}
}

// PlayCalls reports how many times Play has been invoked.
func (s *Sim) PlayCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCalls
}

// FailNextSubmit arms the next Submit call to fail with err instead of
// queueing anything.
func (s *Sim) FailNextSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitErr = err
}
