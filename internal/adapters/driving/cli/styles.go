package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Colours for text output. lipgloss drops them when stdout is not a
// terminal.
var (
	colourPrimary   = lipgloss.Color("#7C3AED")
	colourSecondary = lipgloss.Color("#06B6D4")
	colourMuted     = lipgloss.Color("#6C7086")
	colourSuccess   = lipgloss.Color("#A6E3A1")
	colourError     = lipgloss.Color("#F38BA8")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	subtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colourSecondary)
	mutedStyle    = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle  = lipgloss.NewStyle().Foreground(colourSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colourError)
	keyStyle      = lipgloss.NewStyle().Bold(true).Width(14)
)

// heading renders a title followed by an underline of the same width.
func heading(title string) string {
	underline := make([]byte, lipgloss.Width(title))
	for i := range underline {
		underline[i] = '='
	}
	return titleStyle.Render(title) + "\n" + mutedStyle.Render(string(underline))
}

// field renders a "Key: value" line.
func field(key, value string) string {
	return "  " + keyStyle.Render(key+":") + " " + value
}

// ErrorText renders an error message for the terminal.
func ErrorText(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}
