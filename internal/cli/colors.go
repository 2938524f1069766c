package cli

import "github.com/charmbracelet/lipgloss"

// Neon colour palette 🥁
// Shared neon theme colours for consistent branding across CLI and TUI
var (
	// Core neon colours (bright to dark)
	NeonPink   = lipgloss.Color("#FF2D78") // Hot pink, the beat pulse
	NeonCyan   = lipgloss.Color("#00E5FF") // Electric cyan, the spectrum
	NeonViolet = lipgloss.Color("#9D4EDD") // Violet accent
	DeepIndigo = lipgloss.Color("#1B1B3A") // Night background

	// Accent colours
	CoolGray = lipgloss.Color("#8A8FA3") // Muted slate for subtle text
)
