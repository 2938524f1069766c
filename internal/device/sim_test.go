package device

import (
	"errors"
	"testing"

	"github.com/beatfunk/thump/internal/pcm"
)

// submitFrames queues a silent mono chunk of the given length.
func submitFrames(t *testing.T, s *Sim, frames int) {
	t.Helper()
	if err := s.Submit(make([]byte, frames*2), pcm.Mono16, 48000); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
}

// TestSim_QueueLifecycle verifies the submit/advance/retire cycle the
// engine drives every update tick.
func TestSim_QueueLifecycle(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 100)
	submitFrames(t, s, 100)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}

	s.Advance(150)
	if got := s.Processed(); got != 1 {
		t.Errorf("Processed() = %d, want 1", got)
	}
	if got := s.Queued(); got != 2 {
		t.Errorf("Queued() = %d, want 2 before retirement", got)
	}
	if got := s.SampleOffset(); got != 150 {
		t.Errorf("SampleOffset() = %d, want 150", got)
	}
	if !s.Playing() {
		t.Error("Playing() = false with audio still queued")
	}

	// Draining the queue exactly is not starvation.
	s.Advance(50)
	if got := s.Processed(); got != 2 {
		t.Errorf("Processed() = %d, want 2", got)
	}
	if !s.Playing() {
		t.Error("Playing() = false after consuming exactly the queued audio")
	}

	if err := s.Unqueue(2); err != nil {
		t.Fatalf("Unqueue(2) returned error: %v", err)
	}
	if got := s.Queued(); got != 0 {
		t.Errorf("Queued() = %d after retirement, want 0", got)
	}
	if got := s.SampleOffset(); got != 200 {
		t.Errorf("SampleOffset() = %d, retirement must not rewind it", got)
	}
}

// TestSim_StarvationStops verifies playback halts when advance outruns
// the queue, and that Play restarts it.
func TestSim_StarvationStops(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 100)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}

	s.Advance(101)
	if s.Playing() {
		t.Error("Playing() = true after starvation")
	}
	if got := s.SampleOffset(); got != 100 {
		t.Errorf("SampleOffset() = %d, want 100 (only queued audio plays)", got)
	}

	// A stopped device must not consume.
	submitFrames(t, s, 100)
	s.Advance(10)
	if got := s.SampleOffset(); got != 100 {
		t.Errorf("SampleOffset() = %d while stopped, want 100", got)
	}

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	s.Advance(10)
	if got := s.SampleOffset(); got != 110 {
		t.Errorf("SampleOffset() = %d after restart, want 110", got)
	}
	if got := s.PlayCalls(); got != 2 {
		t.Errorf("PlayCalls() = %d, want 2", got)
	}
}

// TestSim_PauseHoldsPosition verifies pause keeps the queue and the
// play position intact.
func TestSim_PauseHoldsPosition(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 100)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	s.Advance(30)

	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	s.Advance(40)
	if got := s.SampleOffset(); got != 30 {
		t.Errorf("SampleOffset() = %d while paused, want 30", got)
	}
	if got := s.Queued(); got != 1 {
		t.Errorf("Queued() = %d while paused, want 1", got)
	}

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	s.Advance(40)
	if got := s.SampleOffset(); got != 70 {
		t.Errorf("SampleOffset() = %d after resume, want 70", got)
	}
}

// TestSim_StopClearsState verifies Stop discards queued audio and
// rewinds the position, unlike Pause.
func TestSim_StopClearsState(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 100)
	submitFrames(t, s, 100)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	s.Advance(50)

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if s.Playing() {
		t.Error("Playing() = true after Stop")
	}
	if got := s.Queued(); got != 0 {
		t.Errorf("Queued() = %d after Stop, want 0", got)
	}
	if got := s.SampleOffset(); got != 0 {
		t.Errorf("SampleOffset() = %d after Stop, want 0", got)
	}
}

// TestSim_UnqueuePendingChunkFails verifies a partially played chunk
// cannot be retired.
func TestSim_UnqueuePendingChunkFails(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 100)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	s.Advance(10)

	if err := s.Unqueue(1); err == nil {
		t.Error("Unqueue(1) should fail while the chunk is still playing")
	}
}

// TestSim_ArmedSubmitFailure verifies an armed failure fires exactly
// once, queues nothing and leaves later submits working.
func TestSim_ArmedSubmitFailure(t *testing.T) {
	s := NewSim()
	submitFrames(t, s, 50)

	boom := errors.New("boom")
	s.FailNextSubmit(boom)
	if err := s.Submit(make([]byte, 100), pcm.Mono16, 48000); !errors.Is(err, boom) {
		t.Fatalf("Submit() = %v, want the armed failure", err)
	}
	if got := s.Queued(); got != 1 {
		t.Errorf("Queued() = %d after the failed submit, want 1", got)
	}

	submitFrames(t, s, 50)
	if got := s.Queued(); got != 2 {
		t.Errorf("Queued() = %d, want 2 once the failure disarms", got)
	}
}

// TestSim_ValidationAndClose verifies parameter bounds and the closed
// state.
func TestSim_ValidationAndClose(t *testing.T) {
	s := NewSim()
	if err := s.SetPitch(0); err == nil {
		t.Error("SetPitch(0) should fail")
	}
	if err := s.SetPitch(-1); err == nil {
		t.Error("SetPitch(-1) should fail")
	}
	if err := s.SetGain(-0.1); err == nil {
		t.Error("SetGain(-0.1) should fail")
	}
	if err := s.SetPitch(1.5); err != nil {
		t.Errorf("SetPitch(1.5) returned error: %v", err)
	}
	if got := s.Pitch(); got != 1.5 {
		t.Errorf("Pitch() = %v, want 1.5", got)
	}
	// Gain zero is valid: it mutes without stopping.
	if err := s.SetGain(0); err != nil {
		t.Errorf("SetGain(0) returned error: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(make([]byte, 4), pcm.Mono16, 48000); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
	if err := s.Play(); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close = %v, want ErrClosed", err)
	}
}
