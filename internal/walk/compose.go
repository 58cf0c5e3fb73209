package walk

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/smileynet/branchwalk/internal/connector"
)

const sgrReset = "\x1b[m"

// grid is a growable block of styled terminal lines onto which boxes and
// connector cells are painted by column.
type grid struct {
	lines []string
}

func (g *grid) grow(rows int) {
	for len(g.lines) < rows {
		g.lines = append(g.lines, "")
	}
}

// paint places a multi-line block with its top-left corner at (x, y).
func (g *grid) paint(x, y int, block string) {
	if y < 0 {
		return
	}
	rows := strings.Split(block, "\n")
	g.grow(y + len(rows))
	for i, row := range rows {
		g.lines[y+i] = overlay(g.lines[y+i], x, row)
	}
}

// cells paints single-width runes in style.
func (g *grid) cells(cells []connector.Cell, paint func(string) string) {
	for _, c := range cells {
		if c.X < 0 || c.Y < 0 || connector.Width(c.R) != 1 {
			continue
		}
		g.grow(c.Y + 1)
		g.lines[c.Y] = overlay(g.lines[c.Y], c.X, paint(string(c.R)))
	}
}

func (g *grid) String() string {
	return strings.Join(g.lines, "\n")
}

// overlay writes s over line starting at display column col, keeping the
// styled text on either side intact. Short lines are padded with spaces.
func overlay(line string, col int, s string) string {
	w := ansi.StringWidth(line)
	if w <= col {
		return line + strings.Repeat(" ", col-w) + s
	}
	left := ansi.Truncate(line, col, "")
	if strings.Contains(left, "\x1b") {
		// Close any style cut open at the seam.
		left += sgrReset
	}
	end := col + ansi.StringWidth(s)
	right := ""
	if end < w {
		right = ansi.TruncateLeft(line, end, "")
	}
	return left + s + right
}
