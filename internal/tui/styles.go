package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	colorAccent  = lipgloss.Color("#0EA5E9")
	colorInput   = lipgloss.Color("#A3E635")
	colorError   = lipgloss.Color("#F43F5E")
	colorDim     = lipgloss.Color("#94A3B8")
	colorText    = lipgloss.Color("#F1F5F9")
	colorBarBack = lipgloss.Color("#1E293B")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	// transcript
	echoStyle   = lipgloss.NewStyle().Foreground(colorInput).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError).PaddingLeft(2)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorBarBack).
			Foreground(colorText).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			MarginTop(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(colorDim)
	activeTabStyle = tabStyle.Foreground(colorAccent).Bold(true).Underline(true)
)

// renderError renders a localized error message
func renderError(msg string) string {
	return errorStyle.Render("! " + msg)
}

func renderHint(hint string) string {
	return hintStyle.Render(hint)
}
