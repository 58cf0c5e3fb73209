package walk

import "math"

// scroller eases the viewport offset toward a target, covering a fixed
// fraction of the remaining distance each frame.
type scroller struct {
	offset int
	target int
	step   float64
}

func newScroller(step float64) scroller {
	if step <= 0 || step > 1 {
		step = 1
	}
	return scroller{step: step}
}

// aim sets a new target. The offset is left where it is and catches up
// over subsequent frames.
func (s *scroller) aim(target int) {
	if target < 0 {
		target = 0
	}
	s.target = target
}

// jump moves both offset and target, for scrolling driven by the user.
func (s *scroller) jump(offset int) {
	if offset < 0 {
		offset = 0
	}
	s.offset = offset
	s.target = offset
}

// clamp keeps offset and target within [0, limit], the furthest the
// viewport can scroll over its current content.
func (s *scroller) clamp(limit int) {
	limit = max(limit, 0)
	s.offset = min(s.offset, limit)
	s.target = min(s.target, limit)
}

// moving reports whether the offset has yet to reach the target.
func (s scroller) moving() bool {
	return s.offset != s.target
}

// advance moves one frame toward the target, at least one row.
func (s *scroller) advance() {
	d := s.target - s.offset
	if d == 0 {
		return
	}
	mv := int(math.Ceil(math.Abs(float64(d)) * s.step))
	if d < 0 {
		mv = -mv
	}
	s.offset += mv
}

// scrollTarget is where the viewport should rest: the top when the walk has
// ended and the result panel is showing, otherwise the bottom of content.
func scrollTarget(ended bool, contentLines, viewHeight int) int {
	if ended {
		return 0
	}
	return max(0, contentLines-viewHeight)
}
