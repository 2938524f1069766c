package device

import (
	"sync"

	"github.com/beatfunk/thump/internal/pcm"
)

// mixerChunk is one submitted buffer, tagged with the layout it was
// decoded in.
type mixerChunk struct {
	data   []byte
	format pcm.Format
	rate   int
	frames int
}

// mixer holds submitted PCM in order and hands it to the playback
// callback as interleaved stereo at a fixed output rate, resampling
// with linear interpolation and applying pitch and gain on the way.
// Chunks it finishes stay at the head of the queue until retired, so
// the producer can count them.
//
// Read is called from the audio backend's own goroutine; everything
// else from the engine. One mutex covers both sides, and Read never
// blocks on missing data: an empty queue plays silence.
type mixer struct {
	mu       sync.Mutex
	chunks   []mixerChunk
	read     int     // chunks before this index are fully consumed
	cursor   float64 // fractional frame position within chunks[read]
	base     int64   // frames of fully consumed chunks since the last flush
	pitch    float64
	gain     float64
	outRate  int
	lastRate int
	closed   bool
}

func newMixer(outRate int) *mixer {
	return &mixer{
		pitch:    1,
		gain:     1,
		outRate:  outRate,
		lastRate: outRate,
	}
}

func (m *mixer) submit(data []byte, f pcm.Format, rate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	owned := append([]byte(nil), data...)
	m.chunks = append(m.chunks, mixerChunk{
		data:   owned,
		format: f,
		rate:   rate,
		frames: len(owned) / f.FrameSize(),
	})
	m.lastRate = rate
	return nil
}

// Read renders output frames into p. It always fills the whole slice,
// substituting silence when the queue runs dry, so the player never
// sees an end of stream.
func (m *mixer) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	const outFrameSize = 2 * pcm.BytesPerSample
	frames := len(p) / outFrameSize
	for i := 0; i < frames; i++ {
		var left, right int16
		if !m.closed && m.read < len(m.chunks) {
			c := &m.chunks[m.read]
			left, right = m.sampleAt(c)
			m.cursor += m.pitch * float64(c.rate) / float64(m.outRate)
			for m.read < len(m.chunks) && m.cursor >= float64(m.chunks[m.read].frames) {
				m.cursor -= float64(m.chunks[m.read].frames)
				m.base += int64(m.chunks[m.read].frames)
				m.read++
			}
		}
		pcm.PutSample(p, i*2, left)
		pcm.PutSample(p, i*2+1, right)
	}
	for i := frames * outFrameSize; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// sampleAt interpolates the current chunk at the cursor and applies
// gain. Mono chunks feed both output channels.
func (m *mixer) sampleAt(c *mixerChunk) (left, right int16) {
	i0 := int(m.cursor)
	i1 := i0 + 1
	if i1 >= c.frames {
		i1 = c.frames - 1
	}
	frac := m.cursor - float64(i0)

	ch := c.format.Channels()
	for out := 0; out < 2; out++ {
		in := out
		if in >= ch {
			in = ch - 1
		}
		s0 := float64(pcm.Sample(c.data, i0*ch+in))
		s1 := float64(pcm.Sample(c.data, i1*ch+in))
		v := ((1-frac)*s0 + frac*s1) * m.gain
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		if out == 0 {
			left = int16(v)
		} else {
			right = int16(v)
		}
	}
	return left, right
}

func (m *mixer) queued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

func (m *mixer) processed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read
}

func (m *mixer) unqueue(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if n < 0 || n > m.read {
		return errPending(n, m.read)
	}
	m.chunks = m.chunks[n:]
	m.read -= n
	return nil
}

func (m *mixer) flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.read = 0
	m.cursor = 0
	m.base = 0
}

func (m *mixer) sampleOffset() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.read < len(m.chunks) {
		return m.base + int64(m.cursor)
	}
	return m.base
}

func (m *mixer) setPitch(p float64) error {
	if p <= 0 {
		return errBadPitch(p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pitch = p
	return nil
}

func (m *mixer) getPitch() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pitch
}

func (m *mixer) setGain(g float64) error {
	if g < 0 {
		return errBadGain(g)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain = g
	return nil
}

func (m *mixer) getGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain
}

// step reports source frames consumed per output frame at the current
// pitch, used to convert the backend's unplayed byte count into source
// frames.
func (m *mixer) step() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	rate := m.lastRate
	if m.read < len(m.chunks) {
		rate = m.chunks[m.read].rate
	}
	return m.pitch * float64(rate) / float64(m.outRate)
}

func (m *mixer) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.chunks = nil
	m.read = 0
}
