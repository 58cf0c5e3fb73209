package connector

import (
	"sort"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/smileynet/branchwalk/internal/layout"
)

// DefaultDuration is how long a fresh connector takes to reach its end.
const DefaultDuration = 600 * time.Millisecond

// Glyphs used to paint connector paths.
const (
	glyphVertical   = '│'
	glyphHorizontal = '─'
	arrowDown       = '▼'
	arrowRight      = '▶'
	arrowLeft       = '◀'
)

// Cell is one painted character on the surface.
type Cell struct {
	X, Y int
	R    rune
}

type line struct {
	path  []layout.Point
	start time.Time
}

// Canvas is a Surface that animates connectors on a character grid. Each
// connector is a path of cells grown from its start over the canvas duration.
type Canvas struct {
	lines    map[int]*line
	duration time.Duration
	now      func() time.Time
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithDuration sets the extension animation duration. Zero draws connectors
// at full length immediately.
func WithDuration(d time.Duration) CanvasOption {
	return func(c *Canvas) {
		if d >= 0 {
			c.duration = d
		}
	}
}

// WithClock sets the time source used to start animations.
func WithClock(now func() time.Time) CanvasOption {
	return func(c *Canvas) {
		c.now = now
	}
}

// NewCanvas creates an empty Canvas.
func NewCanvas(opts ...CanvasOption) *Canvas {
	c := &Canvas{
		lines:    make(map[int]*line),
		duration: DefaultDuration,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Draw implements Surface.
func (c *Canvas) Draw(index int, seg Segment) {
	c.lines[index] = &line{path: route(seg), start: c.now()}
}

// Retarget implements Surface. An index with no connector is drawn fresh.
func (c *Canvas) Retarget(index int, seg Segment) {
	l, ok := c.lines[index]
	if !ok {
		c.Draw(index, seg)
		return
	}
	l.path = route(seg)
}

// Remove implements Surface.
func (c *Canvas) Remove(index int) {
	delete(c.lines, index)
}

// Clear implements Surface.
func (c *Canvas) Clear() {
	c.lines = make(map[int]*line)
}

// Len returns the number of connectors on the canvas.
func (c *Canvas) Len() int {
	return len(c.lines)
}

// Animating reports whether any connector is still extending at now.
func (c *Canvas) Animating(now time.Time) bool {
	for _, l := range c.lines {
		if c.progress(l, now) < 1 {
			return true
		}
	}
	return false
}

func (c *Canvas) progress(l *line, now time.Time) float64 {
	if c.duration <= 0 {
		return 1
	}
	t := float64(now.Sub(l.start)) / float64(c.duration)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return easeCubicInOut(t)
}

// Cells paints every connector as it appears at now, ordered by index. The
// tip of each connector is an arrowhead pointing along the path; a connector
// that has just started is its arrowhead alone, anchored at the start point.
func (c *Canvas) Cells(now time.Time) []Cell {
	indices := make([]int, 0, len(c.lines))
	for i := range c.lines {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var cells []Cell
	for _, i := range indices {
		l := c.lines[i]
		if len(l.path) == 0 {
			continue
		}
		visible := int(c.progress(l, now)*float64(len(l.path)) + 0.999)
		if visible < 1 {
			visible = 1
		}
		if visible > len(l.path) {
			visible = len(l.path)
		}
		for j := 0; j < visible; j++ {
			r := bodyGlyph(l.path, j)
			if j == visible-1 {
				r = arrowGlyph(l.path, j)
			}
			cells = append(cells, Cell{X: l.path[j].X, Y: l.path[j].Y, R: r})
		}
	}
	return cells
}

// route lays out the cells of a segment: straight down when the endpoints
// share a column, otherwise down to the middle row, across, and down again.
// Segments whose end is above their start (overlapping boxes) have no path.
func route(seg Segment) []layout.Point {
	from, to := seg.From, seg.To
	if to.Y < from.Y {
		return nil
	}
	var path []layout.Point
	if from.X == to.X {
		for y := from.Y; y <= to.Y; y++ {
			path = append(path, layout.Point{X: from.X, Y: y})
		}
		return path
	}

	mid := from.Y + (to.Y-from.Y)/2
	for y := from.Y; y < mid; y++ {
		path = append(path, layout.Point{X: from.X, Y: y})
	}
	step := 1
	if to.X < from.X {
		step = -1
	}
	for x := from.X; x != to.X; x += step {
		path = append(path, layout.Point{X: x, Y: mid})
	}
	for y := mid; y <= to.Y; y++ {
		path = append(path, layout.Point{X: to.X, Y: y})
	}
	return path
}

type direction int

const (
	dirDown direction = iota
	dirRight
	dirLeft
)

// heading returns the direction of travel into cell j, or out of it for the
// first cell.
func heading(path []layout.Point, j int) direction {
	var a, b layout.Point
	switch {
	case j > 0:
		a, b = path[j-1], path[j]
	case len(path) > 1:
		a, b = path[0], path[1]
	default:
		return dirDown
	}
	switch {
	case b.X > a.X:
		return dirRight
	case b.X < a.X:
		return dirLeft
	default:
		return dirDown
	}
}

func arrowGlyph(path []layout.Point, j int) rune {
	switch heading(path, j) {
	case dirRight:
		return arrowRight
	case dirLeft:
		return arrowLeft
	default:
		return arrowDown
	}
}

func bodyGlyph(path []layout.Point, j int) rune {
	in := heading(path, j)
	if j+1 >= len(path) {
		return straight(in)
	}
	out := heading(path, j+1)
	switch {
	case in == out:
		return straight(in)
	case in == dirDown && out == dirRight:
		return '╰'
	case in == dirDown && out == dirLeft:
		return '╯'
	case in == dirRight && out == dirDown:
		return '╮'
	case in == dirLeft && out == dirDown:
		return '╭'
	}
	return straight(in)
}

func straight(d direction) rune {
	if d == dirDown {
		return glyphVertical
	}
	return glyphHorizontal
}

// narrow measures ambiguous-width runes as one column regardless of locale,
// matching how lipgloss and x/ansi measure the lines cells are painted onto.
var narrow = &runewidth.Condition{EastAsianWidth: false}

// Width returns the number of terminal columns a painted cell occupies.
// Every connector glyph is a single column wide; wider runes would corrupt
// the row they are overlaid onto.
func Width(r rune) int {
	return narrow.RuneWidth(r)
}

func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	p := 2*t - 2
	return 0.5*p*p*p + 1
}
