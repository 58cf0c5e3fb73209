package walk

import tea "github.com/charmbracelet/bubbletea"

// handleResize discards everything measured at the old size. Connectors are
// cleared at once and redrawn from scratch by the next complete layout pass,
// since their old endpoints no longer match any box.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.layoutViewport()

	m.conns.Reset()
	m.engine.Invalidate()
	m.boxes.clear()
	m.fullRedraw = true
	if m.ended() {
		m.panel = m.renderPanel()
	}
	m.log.Debug("resized", "width", msg.Width, "height", msg.Height, "box_width", m.boxWidth())
	return m.beginCycle()
}
