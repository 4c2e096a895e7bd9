package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI palette so output stays readable on any terminal theme.
const (
	colorGreen  = "2"
	colorYellow = "3"
	colorRed    = "1"
	colorOrange = "208"
	colorCyan   = "6"
	colorBlue   = "4"
	colorViolet = "5"
	colorMuted  = "8"
)

// Colors is the palette used by packerci output.
type Colors struct {
	Green  lipgloss.TerminalColor
	Yellow lipgloss.TerminalColor
	Red    lipgloss.TerminalColor
	Orange lipgloss.TerminalColor
	Cyan   lipgloss.TerminalColor
	Blue   lipgloss.TerminalColor
	Violet lipgloss.TerminalColor
	Muted  lipgloss.TerminalColor
}

// Theme holds pre-configured styles for help, errors and command output.
type Theme struct {
	Colors Colors

	Title   lipgloss.Style
	Section lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Italic  lipgloss.Style
	Muted   lipgloss.Style
	Code    lipgloss.Style
}

// DefaultTheme is the theme every command renders with.
var DefaultTheme = newTheme()

func newTheme() *Theme {
	c := Colors{
		Green:  lipgloss.Color(colorGreen),
		Yellow: lipgloss.Color(colorYellow),
		Red:    lipgloss.Color(colorRed),
		Orange: lipgloss.Color(colorOrange),
		Cyan:   lipgloss.Color(colorCyan),
		Blue:   lipgloss.Color(colorBlue),
		Violet: lipgloss.Color(colorViolet),
		Muted:  lipgloss.Color(colorMuted),
	}
	return &Theme{
		Colors:  c,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(c.Orange),
		Section: lipgloss.NewStyle().Italic(true).Foreground(c.Orange),
		Success: lipgloss.NewStyle().Foreground(c.Green),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(c.Red),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow),
		Bold:    lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Muted:   lipgloss.NewStyle().Foreground(c.Muted),
		Code:    lipgloss.NewStyle().Foreground(c.Cyan),
	}
}
