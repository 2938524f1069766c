// bench-beat is a standalone benchmark for the beat tracker and the
// spectrum pipeline. Designed to be called by hyperfine for statistical
// analysis.
//
// Usage:
//
//	bench-beat [--seconds N] [--rate HZ] [--stereo] [--bpm N] [--impl tracker|spectrum|both]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/beatfunk/thump/internal/beat"
	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/decode"
	"github.com/beatfunk/thump/internal/pcm"
	"github.com/beatfunk/thump/internal/spectrum"
)

func main() {
	seconds := flag.Int("seconds", 600, "seconds of synthetic audio to process")
	rate := flag.Int("rate", 44100, "sample rate in Hz")
	stereo := flag.Bool("stereo", false, "render a stereo stream")
	bpm := flag.Float64("bpm", 120, "click tempo of the synthetic stream")
	impl := flag.String("impl", "tracker", "pipeline: tracker, spectrum or both")
	flag.Parse()

	channels := 1
	if *stereo {
		channels = 2
	}

	// Render one second of audio up front and loop it, so synthesis
	// cost stays out of the measured pipeline as much as possible.
	blockFrames := int64(*rate)
	tone, err := decode.NewTone(decode.ToneConfig{
		SampleRate: *rate,
		Channels:   channels,
		Frames:     blockFrames,
		Carrier:    220,
		BeatRate:   *bpm / 60,
		Level:      0.6,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "building tone: %v\n", err)
		os.Exit(1)
	}

	block := make([]byte, blockFrames*int64(channels)*pcm.BytesPerSample)
	filled := 0
	for filled < len(block) {
		n, err := tone.Read(block[filled:])
		filled += n
		if err != nil {
			break
		}
	}
	block = block[:filled]

	switch *impl {
	case "tracker":
		runTracker(block, *rate, *seconds)
	case "spectrum":
		runSpectrum(block, channels, *seconds)
	case "both":
		runTracker(block, *rate, *seconds)
		runSpectrum(block, channels, *seconds)
	default:
		fmt.Fprintf(os.Stderr, "Unknown pipeline: %s (use 'tracker', 'spectrum' or 'both')\n", *impl)
		os.Exit(1)
	}
}

func runTracker(block []byte, rate, iters int) {
	tracker := beat.New(rate)
	for i := 0; i < iters; i++ {
		tracker.ProcessPCM(block)
	}
	// The readout keeps the loop honest and shows the lock
	fmt.Printf("tracker: %.1f BPM after %ds\n", tracker.BPM(), iters)
}

func runSpectrum(block []byte, channels, iters int) {
	analyzer, err := spectrum.NewAnalyzer(config.FFTSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating analyzer: %v\n", err)
		os.Exit(1)
	}

	// Project to mono once, outside the measured loop
	frames := len(block) / (channels * pcm.BytesPerSample)
	mono := make([]float64, frames)
	for i := range mono {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += pcm.Float(pcm.Sample(block, i*channels+c))
		}
		mono[i] = sum / float64(channels)
	}

	// Feed in display-tick sized chunks the way the player does
	chunk := len(mono) / 30
	if chunk < 1 {
		chunk = 1
	}
	bars := make([]float64, config.SpectrumBars)
	renders := 0
	for i := 0; i < iters; i++ {
		for off := 0; off < len(mono); off += chunk {
			end := off + chunk
			if end > len(mono) {
				end = len(mono)
			}
			analyzer.Push(mono[off:end])
			if analyzer.Render(1.0, bars) {
				renders++
			}
		}
	}
	fmt.Printf("spectrum: %d renders\n", renders)
}
