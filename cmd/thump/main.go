package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beatfunk/thump/internal/beat"
	"github.com/beatfunk/thump/internal/cli"
	"github.com/beatfunk/thump/internal/config"
	"github.com/beatfunk/thump/internal/decode"
	"github.com/beatfunk/thump/internal/device"
	"github.com/beatfunk/thump/internal/logging"
	"github.com/beatfunk/thump/internal/sound"
	"github.com/beatfunk/thump/internal/spectrum"
	"github.com/beatfunk/thump/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input       string        `arg:"" name:"input" help:"Audio file to play (.wav, .mp3 or .flac)" optional:"" type:"existingfile"`
	Scan        bool          `short:"s" help:"Analyze the beat profile and exit without playing"`
	Pitch       float64       `help:"Playback rate multiplier" default:"1.0"`
	Volume      float64       `help:"Playback gain" default:"1.0"`
	Buffers     int           `help:"Number of streaming buffers" default:"4"`
	BufferSize  int           `name:"buffer-size" help:"Bytes per streaming buffer" default:"65536"`
	Interval    time.Duration `help:"Engine update tick interval (default 5ms)"`
	Sensitivity float64       `help:"Spectrum sensitivity" default:"1.0"`
	Config      string        `help:"Path to a thump config file" type:"existingfile"`
	LogLevel    string        `name:"log-level" help:"Log level: none, debug, info, warn or error" default:"none"`
	LogFile     string        `name:"log-file" help:"Write JSON logs to this file"`
	Version     bool          `short:"v" help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("thump"),
		kong.Description("Play your .wav, .mp3 or .flac in the terminal with a beat-locked pulse and live spectrum bars."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate required arguments when not showing version
	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		os.Exit(1)
	}

	// Validate playback parameters before any device work
	if CLI.Pitch <= 0 {
		cli.PrintError(fmt.Sprintf("invalid pitch value: %v (must be positive)", CLI.Pitch))
		os.Exit(1)
	}
	if CLI.Volume < 0 {
		cli.PrintError(fmt.Sprintf("invalid volume value: %v (must not be negative)", CLI.Volume))
		os.Exit(1)
	}
	if CLI.Buffers < 2 {
		cli.PrintError(fmt.Sprintf("invalid buffers value: %d (need at least 2)", CLI.Buffers))
		os.Exit(1)
	}
	if CLI.BufferSize <= 0 || CLI.BufferSize%4 != 0 {
		cli.PrintError(fmt.Sprintf("invalid buffer-size value: %d (must be a positive multiple of 4)", CLI.BufferSize))
		os.Exit(1)
	}
	if CLI.Interval < 0 {
		cli.PrintError(fmt.Sprintf("invalid interval value: %v (must be positive)", CLI.Interval))
		os.Exit(1)
	}

	logFile, err := logging.Configure(CLI.LogLevel, CLI.LogFile)
	if err != nil {
		cli.PrintError(fmt.Sprintf("configuring logging: %v", err))
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	runtime, err := config.Load(CLI.Config)
	if err != nil {
		cli.PrintError(fmt.Sprintf("loading config: %v", err))
		os.Exit(1)
	}

	// The flag wins over the config file when it moved off its default
	sensitivity := runtime.GetSensitivity()
	if CLI.Sensitivity != 1.0 {
		sensitivity = CLI.Sensitivity
	}

	if CLI.Scan {
		runScan(CLI.Input)
		return
	}
	runPlay(CLI.Input, runtime, sensitivity)
}

// runScan analyzes the whole file at full speed and prints the beat
// profile.
func runScan(path string) {
	f, err := os.Open(path)
	if err != nil {
		cli.PrintError(fmt.Sprintf("opening %s: %v", path, err))
		os.Exit(1)
	}
	defer f.Close()

	dec, err := decode.New(f, filepath.Ext(path))
	if err != nil {
		cli.PrintError(fmt.Sprintf("opening decoder: %v", err))
		os.Exit(1)
	}
	defer dec.Close()

	model := ui.NewScanModel(path, dec.Frames())
	p := tea.NewProgram(model)

	// Run the scan in a goroutine and send progress updates
	var profile *beat.Profile
	var scanErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		profile, scanErr = beat.Analyze(dec, func(prog beat.Progress) {
			p.Send(ui.ScanProgressMsg(prog))
		})
		if scanErr != nil {
			p.Send(ui.ErrorMsg{Err: scanErr})
			return
		}
		p.Send(ui.ScanCompleteMsg{Profile: *profile})
	}()

	// Run the Bubbletea UI
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("running UI: %v", err))
		os.Exit(1)
	}

	// The scan holds the decoder until it returns; join before reading
	// its results or letting the deferred closes run.
	<-done

	if scanErr != nil {
		cli.PrintError(fmt.Sprintf("scanning audio: %v", scanErr))
		os.Exit(1)
	}
	if model.Aborted() {
		// The user backed out before the scan finished
		return
	}

	channels := "mono"
	if profile.Channels == 2 {
		channels = "stereo"
	}
	cli.PrintScanSummary(
		cli.FormatDuration(profile.Duration),
		fmt.Sprintf("%.1f kHz %s", float64(profile.SampleRate)/1000, channels),
		fmt.Sprintf("%s (mean %s)", cli.FormatBPM(profile.BPM), cli.FormatBPM(profile.MeanBPM)),
		fmt.Sprintf("%d", profile.Beats),
		fmt.Sprintf("peak %.2f, mean %.2f", profile.MaxLevel, profile.MeanLevel),
	)
}

// runPlay streams the file to the audio device with the live UI.
func runPlay(path string, runtime *config.RuntimeConfig, sensitivity float64) {
	f, err := os.Open(path)
	if err != nil {
		cli.PrintError(fmt.Sprintf("opening %s: %v", path, err))
		os.Exit(1)
	}
	defer f.Close()

	out, err := device.NewOto()
	if err != nil {
		cli.PrintError(fmt.Sprintf("opening audio device: %v", err))
		os.Exit(1)
	}

	ext := filepath.Ext(path)
	open := func(src io.ReadSeeker) (decode.Decoder, error) {
		return decode.New(src, ext)
	}

	opts := sound.DefaultOptions()
	opts.BufferCount = CLI.Buffers
	opts.BufferSize = CLI.BufferSize
	opts.Pitch = CLI.Pitch
	opts.Volume = CLI.Volume

	snd, err := sound.New(f, open, out, opts)
	if err != nil {
		out.Close()
		cli.PrintError(fmt.Sprintf("opening %s: %v", filepath.Base(path), err))
		os.Exit(1)
	}
	defer snd.Close()

	analyzer, err := spectrum.NewAnalyzer(config.FFTSize)
	if err != nil {
		cli.PrintError(fmt.Sprintf("creating spectrum analyzer: %v", err))
		os.Exit(1)
	}
	snd.OnSamples(analyzer.Push)

	if err := snd.Initialize(); err != nil {
		cli.PrintError(fmt.Sprintf("priming playback: %v", err))
		os.Exit(1)
	}
	if err := snd.Play(); err != nil {
		cli.PrintError(fmt.Sprintf("starting playback: %v", err))
		os.Exit(1)
	}

	pr, pg, pb := runtime.GetPulseColor()
	sr, sg, sb := runtime.GetSpectrumColor()
	pulse := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", pr, pg, pb))
	spectrumColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", sr, sg, sb))

	cmds := make(chan ui.Command, 16)
	model := ui.NewPlayerModel(path, pulse, spectrumColor, cmds)
	p := tea.NewProgram(model)

	interval := config.UpdateInterval
	if CLI.Interval > 0 {
		interval = CLI.Interval
	}

	// The engine goroutine owns the sound from here on
	quit := make(chan struct{})
	done := make(chan struct{})
	var engineErr error

	go func() {
		defer close(done)
		engineErr = runEngine(p, snd, analyzer, cmds, quit, interval, sensitivity)
	}()

	_, uiErr := p.Run()
	close(quit)
	<-done

	if uiErr != nil {
		cli.PrintError(fmt.Sprintf("running UI: %v", uiErr))
		os.Exit(1)
	}
	if engineErr != nil {
		cli.PrintError(fmt.Sprintf("playback failed: %v", engineErr))
		os.Exit(1)
	}
}

// runEngine drives the sound on a fixed cadence and is the only
// goroutine that touches it: update ticks, status snapshots for the UI
// and control commands all run here.
func runEngine(p *tea.Program, snd *sound.Sound, analyzer *spectrum.Analyzer, cmds <-chan ui.Command, quit <-chan struct{}, interval time.Duration, sensitivity float64) error {
	update := time.NewTicker(interval)
	defer update.Stop()
	status := time.NewTicker(config.StatusInterval)
	defer status.Stop()

	bars := make([]float64, config.SpectrumBars)

	for {
		select {
		case <-quit:
			return nil

		case <-update.C:
			if err := snd.Update(); err != nil {
				p.Send(ui.ErrorMsg{Err: err})
				return err
			}
			if snd.Drained() {
				p.Send(ui.DoneMsg{})
				return nil
			}

		case <-status.C:
			analyzer.Render(sensitivity, bars)
			p.Send(buildStatus(snd, bars))

		case cmd := <-cmds:
			if err := applyCommand(snd, analyzer, cmd); err != nil {
				p.Send(ui.ErrorMsg{Err: err})
				return err
			}
		}
	}
}

func buildStatus(snd *sound.Sound, bars []float64) ui.StatusMsg {
	// The UI keeps the slice across frames, so hand it a copy
	spectrumCopy := make([]float64, len(bars))
	copy(spectrumCopy, bars)
	return ui.StatusMsg{
		Phase:     snd.BeatPhase(),
		BPM:       snd.BPM(),
		BeatLevel: snd.BeatVolume(),
		Position:  snd.Position(),
		Duration:  snd.Duration(),
		Pitch:     snd.Pitch(),
		Volume:    snd.Volume(),
		Playing:   snd.Playing(),
		Spectrum:  spectrumCopy,
	}
}

func applyCommand(snd *sound.Sound, analyzer *spectrum.Analyzer, cmd ui.Command) error {
	switch cmd {
	case ui.CmdToggle:
		return snd.SetPlaying(!snd.Playing())
	case ui.CmdReset:
		analyzer.Reset()
		if err := snd.Reset(); err != nil {
			return err
		}
		return snd.Play()
	case ui.CmdPitchUp:
		return snd.SetPitch(clamp(snd.Pitch()+0.05, 0.25, 4))
	case ui.CmdPitchDown:
		return snd.SetPitch(clamp(snd.Pitch()-0.05, 0.25, 4))
	case ui.CmdVolumeUp:
		return snd.SetVolume(clamp(snd.Volume()+0.1, 0, 2))
	case ui.CmdVolumeDown:
		return snd.SetVolume(clamp(snd.Volume()-0.1, 0, 2))
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
