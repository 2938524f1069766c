// Package spectrum turns analyzed audio into frequency bars for the
// live display. Samples accumulate in a sliding window; each render
// applies a Hanning window, runs an FFT and folds the magnitudes into
// a fixed number of bars arranged low-frequency-out from the center.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/argusdusty/gofft"

	"github.com/beatfunk/thump/internal/config"
)

// ApplyHanning returns a windowed copy of samples. The input is left
// untouched so the sliding window can keep accumulating.
func ApplyHanning(samples []float64) []float64 {
	if len(samples) < 2 {
		return append([]float64(nil), samples...)
	}
	windowed := make([]float64, len(samples))
	n := float64(len(samples) - 1)
	for i, s := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/n))
		windowed[i] = s * w
	}
	return windowed
}

// BinFFT folds FFT coefficients into len(dst) bars. Only the lower
// three quarters of the usable half-spectrum contribute, since the top
// end of a typical music signal is noise that flattens the display.
// Bar values are gated below a small threshold and log-compressed into
// [0, 1].
func BinFFT(coeffs []complex128, sensitivity, baseScale float64, dst []float64) {
	half := len(coeffs) / 2
	maxBin := half * 3 / 4
	if len(dst) == 0 || maxBin == 0 {
		return
	}
	binsPerBar := maxBin / len(dst)
	if binsPerBar < 1 {
		binsPerBar = 1
	}

	for bar := range dst {
		start := bar * binsPerBar
		if start >= maxBin {
			dst[bar] = 0
			continue
		}
		end := start + binsPerBar
		if end > maxBin {
			end = maxBin
		}
		sum := 0.0
		for i := start; i < end; i++ {
			sum += cmplx.Abs(coeffs[i])
		}
		scaled := sum / float64(end-start) * baseScale * sensitivity
		if scaled < 0.01 {
			dst[bar] = 0
			continue
		}
		v := math.Log10(1 + scaled*9)
		if v > 1 {
			v = 1
		}
		dst[bar] = v
	}
}

// RearrangeFrequenciesCenterOut mirrors the lower half of the bars
// outward so the bass sits in the middle of the display and the
// treble falls away toward both edges.
func RearrangeFrequenciesCenterOut(bars []float64) []float64 {
	out := make([]float64, len(bars))
	half := len(bars) / 2
	for i := 0; i < half; i++ {
		out[half-1-i] = bars[i]
		out[half+i] = bars[i]
	}
	if len(bars)%2 == 1 {
		out[len(bars)-1] = bars[half]
	}
	return out
}

// Analyzer accumulates mono samples into a sliding FFT window.
//
// Analyzer is not safe for concurrent use; Push and Render belong on
// the goroutine that drives the sound engine.
type Analyzer struct {
	size    int
	samples []float64
}

// NewAnalyzer builds an analyzer over a window of size samples, which
// must be a power of two.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft window size %d must be a power of two", size)
	}
	if err := gofft.Prepare(size); err != nil {
		return nil, fmt.Errorf("preparing fft: %w", err)
	}
	return &Analyzer{
		size:    size,
		samples: make([]float64, 0, size),
	}, nil
}

// Push appends mono samples, sliding the window forward once it is
// full. The input slice is not retained.
func (a *Analyzer) Push(mono []float64) {
	a.samples = append(a.samples, mono...)
	if over := len(a.samples) - a.size; over > 0 {
		a.samples = append(a.samples[:0], a.samples[over:]...)
	}
}

// Reset discards accumulated samples, used when the stream rewinds.
func (a *Analyzer) Reset() {
	a.samples = a.samples[:0]
}

// Render computes the current bars into dst and reports whether the
// window held enough samples to do so. Until the first full window
// arrives dst is left untouched.
func (a *Analyzer) Render(sensitivity float64, dst []float64) bool {
	if len(a.samples) < a.size {
		return false
	}
	coeffs := gofft.Float64ToComplex128Array(ApplyHanning(a.samples))
	if err := gofft.FFT(coeffs); err != nil {
		return false
	}
	bars := make([]float64, len(dst))
	BinFFT(coeffs, sensitivity, config.SpectrumBaseScale, bars)
	copy(dst, RearrangeFrequenciesCenterOut(bars))
	return true
}
