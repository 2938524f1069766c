// Package logging wires the process-wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Configure installs the default logger at the given level. Level
// "none" (or empty) discards everything, which is the right choice
// while the terminal UI owns the screen. When file is non-empty,
// records are written there as JSON and the returned handle stays open
// until the caller closes it.
func Configure(level, file string) (*os.File, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	}

	opts := &slog.HandlerOptions{Level: *lvl}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(f, opts)))
		return f, nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	return nil, nil
}

func parseLevel(level string) (*slog.Level, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "none":
		return nil, nil
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return &lvl, nil
}
