package ui

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Colors used throughout the CLI output.
var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	AccentColor    = lipgloss.Color("#F25D94")
	MutedColor     = lipgloss.Color("#626262")
	WarnColor      = lipgloss.Color("#FFB86C")
	ErrorColor     = lipgloss.Color("#FF5555")
)

// Styles renders text for one output stream. Build it with NewStyles so
// colors are only emitted when the stream supports them.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Success  lipgloss.Style

	Debug lipgloss.Style
	Info  lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
}

// NewStyles creates styles bound to a renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Foreground(PrimaryColor),
		Subtitle: r.NewStyle().Bold(true).Foreground(SecondaryColor),
		Selected: r.NewStyle().Bold(true).Foreground(AccentColor),
		Normal:   r.NewStyle(),
		Muted:    r.NewStyle().Foreground(MutedColor),
		Help:     r.NewStyle().Italic(true).Foreground(MutedColor),
		Success:  r.NewStyle().Foreground(SecondaryColor),

		Debug: r.NewStyle().Foreground(MutedColor),
		Info:  r.NewStyle().Foreground(SecondaryColor),
		Warn:  r.NewStyle().Bold(true).Foreground(WarnColor),
		Error: r.NewStyle().Bold(true).Foreground(ErrorColor),
	}
}

// Level returns the style for a log level.
func (s Styles) Level(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return s.Error
	case level >= slog.LevelWarn:
		return s.Warn
	case level >= slog.LevelInfo:
		return s.Info
	default:
		return s.Debug
	}
}
