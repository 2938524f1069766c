package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beatfunk/thump/internal/cli"
)

// playerModel implements the Bubbletea model for live playback
type playerModel struct {
	file     string
	pulse    lipgloss.Color
	spectrum lipgloss.Color
	cmds     chan<- Command

	status StatusMsg
	err    error
	done   bool
	width  int
	height int
}

// NewPlayerModel creates the live playback UI model. Key presses reach
// the engine through cmds; a full channel drops the keystroke instead
// of stalling the render loop.
func NewPlayerModel(file string, pulse, spectrum lipgloss.Color, cmds chan<- Command) tea.Model {
	return &playerModel{
		file:     file,
		pulse:    pulse,
		spectrum: spectrum,
		cmds:     cmds,
	}
}

// Init initializes the model
func (m *playerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StatusMsg:
		m.status = msg
		return m, nil

	case DoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.send(CmdToggle)
		case "r":
			m.send(CmdReset)
		case "right":
			m.send(CmdPitchUp)
		case "left":
			m.send(CmdPitchDown)
		case "up":
			m.send(CmdVolumeUp)
		case "down":
			m.send(CmdVolumeDown)
		}
	}

	return m, nil
}

func (m *playerModel) send(c Command) {
	select {
	case m.cmds <- c:
	default:
	}
}

// View renders the UI
func (m *playerModel) View() string {
	if m.err != nil {
		return ""
	}

	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.NeonPink).
		Render("Thump 🥁")
	s.WriteString(title)
	s.WriteString("  ")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(filepath.Base(m.file)))
	s.WriteString("\n\n")

	// Beat pulse and tempo
	s.WriteString("  ")
	s.WriteString(renderPulse(m.status.Phase, m.status.BeatLevel, m.pulse))
	s.WriteString("  ")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%6.1f BPM", m.status.BPM)))
	s.WriteString("\n\n")

	// Live spectrum
	if len(m.status.Spectrum) > 0 {
		s.WriteString("  ")
		s.WriteString(renderBars(m.status.Spectrum, min(m.width-8, 64), m.spectrum))
		s.WriteString("\n\n")
	}

	// Transport line, fixed-width fields to prevent shimmer
	icon := "▶"
	if !m.status.Playing {
		icon = "⏸"
	}
	if m.done {
		icon = "✓"
	}
	s.WriteString("  ")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(icon))
	s.WriteString(fmt.Sprintf("  %s / %s",
		cli.FormatDuration(m.status.Position),
		cli.FormatDuration(m.status.Duration)))
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("   pitch %4.2fx   vol %3.0f%%", m.status.Pitch, m.status.Volume*100)))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		"space play/pause │ r restart │ ←/→ pitch │ ↑/↓ volume │ q quit"))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.NeonPink).
		Padding(1, 2).
		Render(s.String()) + "\n"
}
