package walk

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/branchwalk/internal/history"
	"github.com/smileynet/branchwalk/internal/layout"
)

// stepView carries the presentation-only state of one step box.
type stepView struct {
	index   int
	width   int
	cursor  int // Option under the cursor, or -1 when the step is not focused.
	focused bool
	dimmed  bool
}

// renderStep draws a step box. Focus and dimming change colours and markers
// only, never the box's size, so a box measured without them is the size it
// is displayed at.
func renderStep(step history.Step, v stepView) string {
	var b strings.Builder
	b.WriteString(questionText.Render(fmt.Sprintf("%d. %s", v.index+1, step.Node.Question.Label)))
	for i, opt := range step.Node.Options {
		b.WriteString("\n")

		pointer := " "
		if v.focused && i == v.cursor {
			pointer = cursorText.Render("›")
		}
		mark := "○"
		style := optionText
		switch {
		case i == step.Selected:
			mark = "●"
			style = selectedText
		case step.Answered():
			style = mutedText
		}
		b.WriteString(pointer + " " + style.Render(fmt.Sprintf("%s %d) %s", mark, i+1, opt.Label)))
	}

	inner := v.width - 2
	if inner < 1 {
		inner = 1
	}
	return stepBorder(v.focused, v.dimmed).Width(inner).Render(b.String())
}

// boxSize is a step box's measured extent.
type boxSize struct {
	width, height int
}

// boxCache holds the sizes reported by the last render pass and answers
// layout and connector measurement queries. A step is measurable once its
// size has been rendered; its Y is the engine's current offset for it.
type boxCache struct {
	sizes  map[int]boxSize
	x      int
	engine *layout.Engine
}

func newBoxCache(x int, engine *layout.Engine) *boxCache {
	return &boxCache{sizes: make(map[int]boxSize), x: x, engine: engine}
}

// Measure implements layout.Measurer.
func (c *boxCache) Measure(step int) (layout.Box, bool) {
	s, ok := c.sizes[step]
	if !ok || s.height <= 0 {
		return layout.Box{}, false
	}
	top, _ := c.engine.Top(step)
	return layout.Box{X: c.x, Y: top, Width: s.width, Height: s.height}, true
}

// height returns the last rendered height of step.
func (c *boxCache) height(step int) (int, bool) {
	s, ok := c.sizes[step]
	return s.height, ok
}

// store replaces the cached sizes with a render pass's results.
func (c *boxCache) store(sizes []boxSize) {
	c.sizes = make(map[int]boxSize, len(sizes))
	for i, s := range sizes {
		c.sizes[i] = s
	}
}

// truncate forgets steps n and above.
func (c *boxCache) truncate(n int) {
	for i := range c.sizes {
		if i >= n {
			delete(c.sizes, i)
		}
	}
}

func (c *boxCache) clear() {
	c.sizes = make(map[int]boxSize)
}

// measureSteps renders every step at width the way the view will and
// reports their sizes.
func measureSteps(steps []history.Step, width int) []boxSize {
	sizes := make([]boxSize, len(steps))
	for i, s := range steps {
		box := renderStep(s, stepView{index: i, width: width, cursor: -1})
		sizes[i] = boxSize{width: lipgloss.Width(box), height: lipgloss.Height(box)}
	}
	return sizes
}
