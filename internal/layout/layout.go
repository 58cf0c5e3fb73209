// Package layout positions walk steps vertically on the drawing surface.
//
// A step's top depends on the rendered height of the step above it, which is
// only known once that step has been drawn. Offsets are therefore computed in
// two phases: the caller schedules a pass after rendering, and the pass stops
// at the first step whose predecessor has not been measured yet. The next pass
// picks up from there.
package layout

// DefaultGap is the number of rows left between consecutive steps.
const DefaultGap = 3

// Point is a cell position on the drawing surface.
type Point struct {
	X, Y int
}

// Box is the on-surface bounding box of a rendered step.
type Box struct {
	X, Y          int
	Width, Height int
}

// Bottom returns the first row below the box.
func (b Box) Bottom() int {
	return b.Y + b.Height
}

// BottomCenter returns the cell just below the middle of the box.
func (b Box) BottomCenter() Point {
	return Point{X: b.X + b.Width/2, Y: b.Bottom()}
}

// TopCenter returns the cell just above the middle of the box.
func (b Box) TopCenter() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y - 1}
}

// Measurer reports the current bounding box of a step. ok is false while the
// step has not produced a measurable size.
type Measurer interface {
	Measure(step int) (box Box, ok bool)
}

// ComputeOffsets returns top[i] for steps 0..n-1, where top[0] is 0 and
// top[i] = top[i-1] + height(i-1) + gap. Computation stops at the first step
// whose predecessor has no usable height; in that case the returned slice is
// shorter than n and complete is false.
func ComputeOffsets(n, gap int, m Measurer) (tops []int, complete bool) {
	if n <= 0 {
		return nil, true
	}
	tops = make([]int, 1, n)
	for i := 1; i < n; i++ {
		prev, ok := m.Measure(i - 1)
		if !ok || prev.Height <= 0 {
			return tops, false
		}
		tops = append(tops, tops[i-1]+prev.Height+gap)
	}
	return tops, true
}
