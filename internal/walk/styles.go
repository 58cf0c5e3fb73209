package walk

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	muted  = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	good   = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}

	questionText = lipgloss.NewStyle().Bold(true)
	optionText   = lipgloss.NewStyle()
	selectedText = lipgloss.NewStyle().Bold(true).Foreground(good)
	cursorText   = lipgloss.NewStyle().Foreground(accent)
	mutedText    = lipgloss.NewStyle().Foreground(muted)
	connectorInk = lipgloss.NewStyle().Foreground(accent)
	sparkInk     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "208", Dark: "214"})
	titleText    = lipgloss.NewStyle().Bold(true).Foreground(accent)
)

// stepBorder returns the box style for a step. The focused step gets an
// accent border; steps of an ended walk are dimmed behind the result panel.
// Every variant has the same border thickness so box sizes never depend on
// focus or dimming.
func stepBorder(focused, dimmed bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch {
	case dimmed:
		return s.BorderForeground(muted).Faint(true)
	case focused:
		return s.BorderForeground(accent)
	default:
		return s.BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
	}
}

// panelBorder is the result panel frame.
func panelBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(good).
		Padding(0, 2)
}
