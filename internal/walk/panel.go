package walk

import (
	"strings"
)

// renderPanel draws the result panel: the selected option names followed by
// the resolved article.
func (m Model) renderPanel() string {
	width := m.boxWidth()
	inner := max(width-2, 1)
	text := max(inner-4, 1) // Panel padding.

	var b strings.Builder
	b.WriteString(titleText.Render("Your selection:"))
	for _, name := range m.history.Names() {
		b.WriteString("\n  • " + name)
	}
	b.WriteString("\n\n")
	b.WriteString(titleText.Render(m.article.Title))
	if body := m.md.Render(m.article, text); body != "" {
		b.WriteString("\n" + body)
	}
	b.WriteString("\n\n" + mutedText.Render("r to start over · ↑/↓ to revise an answer"))

	return panelBorder().Width(inner).Render(b.String())
}
