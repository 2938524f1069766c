package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var barBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderBars draws bar heights as unicode blocks, sampling to fit
// width and normalizing against the loudest bar so quiet passages
// still move.
func renderBars(bars []float64, width int, color lipgloss.Color) string {
	if len(bars) == 0 || width <= 0 {
		return ""
	}

	stride := len(bars) / width
	if stride == 0 {
		stride = 1
	}

	maxHeight := 0.0
	for _, h := range bars {
		if h > maxHeight {
			maxHeight = h
		}
	}
	if maxHeight == 0 {
		maxHeight = 1.0
	}

	var result strings.Builder
	drawn := 0
	for i := 0; i < len(bars) && drawn < width; i += stride {
		normalized := bars[i] / maxHeight
		blockIdx := int(normalized * float64(len(barBlocks)-1))
		if blockIdx >= len(barBlocks) {
			blockIdx = len(barBlocks) - 1
		}
		result.WriteRune(barBlocks[blockIdx])
		drawn++
	}

	return lipgloss.NewStyle().Foreground(color).Render(result.String())
}

// renderPulse draws the beat indicator. The glyph flashes at the top
// of each beat and fades as the phase climbs toward the next one, so
// a locked tracker reads as a steady blink.
func renderPulse(phase, level float64, color lipgloss.Color) string {
	intensity := 1 - phase
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}
	// A silent stream has no beat worth flashing.
	if level < 0.01 {
		intensity = 0
	}

	style := lipgloss.NewStyle().Foreground(color)
	switch {
	case intensity > 0.8:
		return style.Bold(true).Render("⬤")
	case intensity > 0.4:
		return style.Render("●")
	case intensity > 0.1:
		return style.Faint(true).Render("●")
	default:
		return style.Faint(true).Render("·")
	}
}
