// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/gh-makedispatch/internal/ui"
)

// Options controls logger verbosity.
type Options struct {
	// Verbosity is the number of -v flags: 0 info, 1 debug, 2+ debug with source.
	Verbosity int
	// Quiet limits output to warnings and errors.
	Quiet bool
}

// Level returns the minimum level for the options.
func (o Options) Level() slog.Level {
	switch {
	case o.Quiet:
		return slog.LevelWarn
	case o.Verbosity >= 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Setup installs a logger writing to w as the slog default and returns it.
// Level labels are colored only when w is a terminal.
func Setup(w io.Writer, opts Options) *slog.Logger {
	h := NewHandler(w, ui.NewStyles(lipgloss.NewRenderer(w)), opts.Level(), opts.Verbosity >= 2)
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
