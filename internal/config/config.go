// Package config centralizes tuning constants and the optional runtime
// configuration file.
package config

import "time"

// Streaming pool geometry.
const (
	// BufferCount is the number of PCM buffers cycled through the
	// output device.
	BufferCount = 4

	// BufferSize is the byte length of each pool buffer.
	BufferSize = 65536

	// UpdateInterval is the cadence of the streaming engine tick.
	UpdateInterval = 5 * time.Millisecond
)

// Beat tracking.
const (
	// InitialBeatFrequency seeds the tracker at 120 BPM, expressed in
	// beats per second.
	InitialBeatFrequency = 2.0
)

// Output device.
const (
	// DeviceSampleRate is the fixed rate of the shared output context.
	DeviceSampleRate = 48000

	// DeviceChannels is the channel count of the shared output context.
	DeviceChannels = 2
)

// Spectrum analysis.
const (
	// FFTSize is the sliding analysis window length in samples. Must be
	// a power of two.
	FFTSize = 2048

	// SpectrumBars is the number of rendered frequency bins.
	SpectrumBars = 48

	// SpectrumBaseScale normalizes FFT magnitudes before log scaling.
	SpectrumBaseScale = 0.002

	// SpectrumSensitivity is the default user-tunable spectrum gain.
	SpectrumSensitivity = 1.0
)

// Offline scanning.
const (
	// ScanChunkSize is the byte length of each scan read.
	ScanChunkSize = 32768

	// ScanProgressEvery throttles scan progress callbacks to one per
	// this many chunks.
	ScanProgressEvery = 16
)

// Terminal UI.
const (
	// StatusInterval is how often the engine publishes snapshots to the
	// display, roughly 30 frames per second.
	StatusInterval = 33 * time.Millisecond
)
