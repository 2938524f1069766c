// Package beat implements a phase-locked loop that follows the dominant
// beat of a PCM stream one sample at a time.
package beat

import (
	"math"

	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/pcm"
)

// Tracker follows the beat of an audio stream. Feed it every decoded
// sample in playback order and read the phase, frequency and volume
// estimates between batches.
//
// The envelope follower treats interleaved stereo as a flat sample
// sequence, so its smoothing constants and the oscillator step apply
// per channel sample, not per frame. Projection back to a playback
// position goes through PhaseAt, which works in frames.
type Tracker struct {
	sampleRate int

	peakMax    float64
	peakMin    float64
	peakVolume float64

	beatPhase     float64
	beatFrequency float64
	beatVolume    float64
}

// New returns a tracker for the given sample rate. A zero rate leaves
// the tracker dormant until SetSampleRate is called.
func New(sampleRate int) *Tracker {
	t := &Tracker{sampleRate: sampleRate}
	t.Reset()
	return t
}

// Reset restores the initial estimates, keeping the sample rate.
func (t *Tracker) Reset() {
	t.peakMax = 0
	t.peakMin = 0
	t.peakVolume = 0
	t.beatPhase = 0
	t.beatFrequency = config.InitialBeatFrequency
	t.beatVolume = 0
}

// SampleRate returns the rate the smoothing constants are derived from.
func (t *Tracker) SampleRate() int { return t.sampleRate }

// SetSampleRate adjusts the smoothing horizon when the stream format
// changes mid-flight.
func (t *Tracker) SetSampleRate(rate int) { t.sampleRate = rate }

// ProcessSample advances the estimates by one sample.
func (t *Tracker) ProcessSample(raw int16) {
	if t.sampleRate <= 0 {
		return
	}
	rate := float64(t.sampleRate)
	s := float64(raw) / 32768.0

	peakSmoothing := 1.0 / rate
	beatSmoothing := 0.1 / rate

	peakMax := math.Max(s, t.peakMax-peakSmoothing)
	peakMin := math.Min(s, t.peakMin+peakSmoothing)
	peakVolume := peakMax - peakMin

	if diff := peakVolume - t.peakVolume; diff > 0 {
		// Rising envelope. Pull the oscillator toward the onset,
		// harder the closer the phase already is to a beat and the
		// louder the rise relative to the running beat volume.
		offset := math.Mod(t.beatPhase+0.5, 1) - 0.5
		correction := (1 - 4*offset*offset) * diff / (t.beatVolume + 0.01)
		t.beatPhase = wrap01(t.beatPhase - offset*correction)
		t.beatFrequency /= math.Pow(1+offset, correction*0.05)
	} else {
		t.beatPhase = wrap01(t.beatPhase + t.beatFrequency/rate)
	}

	t.beatVolume = math.Max(peakVolume*0.5, t.beatVolume-beatSmoothing)
	t.peakMax = peakMax
	t.peakMin = peakMin
	t.peakVolume = peakVolume
}

// ProcessPCM feeds every sample of interleaved 16-bit PCM through the
// loop in byte order.
func (t *Tracker) ProcessPCM(p []byte) {
	n := len(p) / pcm.BytesPerSample
	for i := 0; i < n; i++ {
		t.ProcessSample(pcm.Sample(p, i))
	}
}

// Phase returns the oscillator phase in [0, 1) at the analysis front.
func (t *Tracker) Phase() float64 { return t.beatPhase }

// Frequency returns the beat frequency estimate in beats per second.
func (t *Tracker) Frequency() float64 { return t.beatFrequency }

// BPM returns the frequency estimate in beats per minute.
func (t *Tracker) BPM() float64 { return t.beatFrequency * 60 }

// Volume returns the smoothed beat envelope level.
func (t *Tracker) Volume() float64 { return t.beatVolume }

// PeakVolume returns the instantaneous envelope span.
func (t *Tracker) PeakVolume() float64 { return t.peakVolume }

// PhaseAt projects the phase back to a position leadFrames frames
// behind the analysis front, where a frame is one sample per channel.
// This is the phase audible at the device while analysis runs ahead of
// playback. Returns 0 while the tracker is dormant.
func (t *Tracker) PhaseAt(leadFrames int64) float64 {
	if t.sampleRate <= 0 {
		return 0
	}
	lead := float64(leadFrames) / float64(t.sampleRate)
	return wrap01(t.beatPhase - lead*t.beatFrequency)
}

// wrap01 maps x into [0, 1). math.Mod keeps the sign of x, so negative
// intermediates need the extra turn.
func wrap01(x float64) float64 {
	m := math.Mod(x, 1)
	if m < 0 {
		m++
	}
	return m
}
