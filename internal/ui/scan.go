package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beatfunk/thump/internal/cli"
)

// ScanModel implements the Bubbletea model for scan-only analysis
type ScanModel struct {
	file    string
	total   int64
	bar     progress.Model
	last    ScanProgressMsg
	err     error
	done    bool
	aborted bool
	width   int
}

// NewScanModel creates the scan progress UI. A totalFrames of zero
// means the stream length is unknown and only counters render.
func NewScanModel(file string, totalFrames int64) *ScanModel {
	bar := progress.New(
		progress.WithGradient(string(cli.NeonPink), string(cli.NeonCyan)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	return &ScanModel{file: file, total: totalFrames, bar: bar}
}

// Init initializes the model
func (m *ScanModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ScanProgressMsg:
		m.last = msg
		return m, nil

	case ScanCompleteMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// Aborted reports whether the user quit before the scan finished.
func (m *ScanModel) Aborted() bool {
	return m.aborted
}

// View renders the UI
func (m *ScanModel) View() string {
	// The summary box prints after the program exits.
	if m.err != nil || m.done {
		return ""
	}

	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.NeonPink).
		Render("Thump 🥁")
	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render("Scanning " + filepath.Base(m.file)))
	s.WriteString("\n\n")

	if m.total > 0 {
		ratio := float64(m.last.Frames) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
		s.WriteString(m.bar.ViewAs(ratio))
		s.WriteString("\n\n")
	}

	s.WriteString(lipgloss.NewStyle().Faint(true).Render("Analyzed:"))
	s.WriteString(fmt.Sprintf("  %s  │  %s",
		cli.FormatDuration(m.last.Duration),
		cli.FormatBPM(m.last.BPM)))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.NeonCyan).
		Padding(1, 2).
		Render(s.String()) + "\n"
}
