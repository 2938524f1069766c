package beat

import (
	"fmt"
	"io"
	"time"

	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/pcm"
)

// Source is the decoded stream surface Analyze consumes.
type Source interface {
	Read(p []byte) (int, error)
	SampleRate() int
	Channels() int
}

// Profile summarizes a full-stream scan.
type Profile struct {
	SampleRate int
	Channels   int
	Frames     int64
	Duration   time.Duration

	// BPM is the frequency estimate at the end of the stream, MeanBPM
	// its average across the scan.
	BPM     float64
	MeanBPM float64

	// Beats counts oscillator wraparounds, an estimate of completed
	// beat cycles.
	Beats int

	// MaxLevel and MeanLevel describe the envelope span seen while
	// scanning.
	MaxLevel  float64
	MeanLevel float64
}

// Progress reports scan advancement.
type Progress struct {
	Frames   int64
	Duration time.Duration
	BPM      float64
	Level    float64
}

// ProgressFunc receives throttled progress updates during Analyze.
type ProgressFunc func(Progress)

// Analyze runs the tracker over the whole stream at full speed and
// returns a Profile. The progress callback may be nil.
func Analyze(src Source, progress ProgressFunc) (*Profile, error) {
	rate := src.SampleRate()
	channels := src.Channels()
	format, err := pcm.FormatFor(channels)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("scan: invalid sample rate %d", rate)
	}

	t := New(rate)
	buf := make([]byte, config.ScanChunkSize)

	var (
		frames     int64
		beats      int
		chunks     int
		bpmSum     float64
		levelSum   float64
		maxLevel   float64
		reachedEOF bool
	)

	for !reachedEOF {
		// Fill the chunk completely unless the stream ends first.
		filled := 0
		for filled < len(buf) {
			n, err := src.Read(buf[filled:])
			filled += n
			if err == io.EOF {
				reachedEOF = true
				break
			}
			if err != nil {
				return nil, fmt.Errorf("scan read: %w", err)
			}
			if n == 0 {
				reachedEOF = true
				break
			}
		}
		filled -= filled % format.FrameSize()
		if filled == 0 {
			continue
		}

		samples := filled / pcm.BytesPerSample
		for i := 0; i < samples; i++ {
			prev := t.Phase()
			t.ProcessSample(pcm.Sample(buf, i))
			if t.Phase() < prev-0.5 {
				beats++
			}
			if pv := t.PeakVolume(); pv > maxLevel {
				maxLevel = pv
			}
		}

		frames += int64(samples / channels)
		chunks++
		bpmSum += t.BPM()
		levelSum += t.PeakVolume()

		if progress != nil && chunks%config.ScanProgressEvery == 0 {
			progress(Progress{
				Frames:   frames,
				Duration: framesToDuration(frames, rate),
				BPM:      t.BPM(),
				Level:    t.PeakVolume(),
			})
		}
	}

	p := &Profile{
		SampleRate: rate,
		Channels:   channels,
		Frames:     frames,
		Duration:   framesToDuration(frames, rate),
		BPM:        t.BPM(),
		Beats:      beats,
		MaxLevel:   maxLevel,
	}
	if chunks > 0 {
		p.MeanBPM = bpmSum / float64(chunks)
		p.MeanLevel = levelSum / float64(chunks)
	}
	return p, nil
}

func framesToDuration(frames int64, rate int) time.Duration {
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}
