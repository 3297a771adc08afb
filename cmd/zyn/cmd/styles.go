package cmd

import "github.com/charmbracelet/lipgloss"

const (
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorAccent  = lipgloss.Color("#3B82F6")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	accentStyle  = lipgloss.NewStyle().Foreground(colorAccent)

	nameStyle = lipgloss.NewStyle().Width(20)
)

// paint renders s with style unless color is disabled. Width and other
// layout properties still apply without color.
func paint(style lipgloss.Style, s string) string {
	if settings.NoColor {
		return style.UnsetForeground().UnsetBold().Render(s)
	}
	return style.Render(s)
}

const (
	markOK   = "✓"
	markFail = "✗"
	markSkip = "-"
)
