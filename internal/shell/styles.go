package shell

import "github.com/charmbracelet/lipgloss"

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// StatusText renders a status message in the success or failure color.
func StatusText(text string, ok bool) string {
	if text == "" {
		return ""
	}
	if ok {
		return okStyle.Render(text)
	}
	return errStyle.Render(text)
}
