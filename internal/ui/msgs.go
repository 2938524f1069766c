package ui

import (
	"time"

	"github.com/beatfunk/thump/internal/beat"
)

// StatusMsg is one snapshot of the playback engine, sent to the player
// view on a fixed cadence.
type StatusMsg struct {
	Phase     float64
	BPM       float64
	BeatLevel float64
	Position  time.Duration
	Duration  time.Duration
	Pitch     float64
	Volume    float64
	Playing   bool
	Spectrum  []float64
}

// ErrorMsg reports a fatal engine error; the UI shuts down.
type ErrorMsg struct {
	Err error
}

// DoneMsg signals the stream has fully played out.
type DoneMsg struct{}

// Command is a control request sent from the player view to the
// engine.
type Command int

const (
	// CmdToggle flips between playing and paused.
	CmdToggle Command = iota
	// CmdReset rewinds the stream to the start and plays.
	CmdReset
	// CmdPitchUp and CmdPitchDown nudge the playback rate.
	CmdPitchUp
	CmdPitchDown
	// CmdVolumeUp and CmdVolumeDown nudge the gain.
	CmdVolumeUp
	CmdVolumeDown
)

// ScanProgressMsg relays analysis progress while scanning a file.
type ScanProgressMsg beat.Progress

// ScanCompleteMsg carries the finished beat profile.
type ScanCompleteMsg struct {
	Profile beat.Profile
}
