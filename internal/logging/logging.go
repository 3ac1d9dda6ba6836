// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the default logger on stderr. Verbose enables debug
// records; jsonOutput switches from text to JSON lines.
func Init(verbose, jsonOutput bool) {
	slog.SetDefault(New(os.Stderr, verbose, jsonOutput))
}

// New returns a logger writing to w.
func New(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
