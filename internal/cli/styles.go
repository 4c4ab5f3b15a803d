package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Shared styles for terminal output
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280"))
)

const (
	successSymbol = "✔"
	failSymbol    = "✖"
	infoSymbol    = "ℹ"
)

// Title renders a heading line.
func Title(s string) string {
	return titleStyle.Render(s)
}

// ErrorLine renders an error for the final message of a failed run.
func ErrorLine(err error) string {
	return errorStyle.Render(failSymbol+" Error: ") + err.Error()
}
