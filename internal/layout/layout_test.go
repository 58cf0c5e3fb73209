package layout

import (
	"reflect"
	"testing"
)

// heights is a Measurer backed by per-step heights; a missing or zero entry
// means the step has not rendered yet.
type heights map[int]int

func (h heights) Measure(step int) (Box, bool) {
	v, ok := h[step]
	if !ok {
		return Box{}, false
	}
	return Box{Width: 40, Height: v}, true
}

func TestComputeOffsets(t *testing.T) {
	tests := []struct {
		name         string
		n, gap       int
		m            heights
		wantTops     []int
		wantComplete bool
	}{
		{name: "empty", n: 0, gap: 3, m: heights{}, wantTops: nil, wantComplete: true},
		{name: "root only", n: 1, gap: 3, m: heights{}, wantTops: []int{0}, wantComplete: true},
		{
			name: "all measured", n: 3, gap: 2,
			m:        heights{0: 5, 1: 7, 2: 4},
			wantTops: []int{0, 7, 16}, wantComplete: true,
		},
		{
			name: "stops at unmeasured predecessor", n: 4, gap: 1,
			m:        heights{0: 5},
			wantTops: []int{0, 6}, wantComplete: false,
		},
		{
			name: "zero height is not measured", n: 3, gap: 1,
			m:        heights{0: 5, 1: 0},
			wantTops: []int{0, 6}, wantComplete: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tops, complete := ComputeOffsets(tt.n, tt.gap, tt.m)
			if !reflect.DeepEqual(tops, tt.wantTops) {
				t.Errorf("tops = %v, want %v", tops, tt.wantTops)
			}
			if complete != tt.wantComplete {
				t.Errorf("complete = %v, want %v", complete, tt.wantComplete)
			}
		})
	}
}

func TestComputeOffsets_GapLowerBound(t *testing.T) {
	m := heights{0: 1, 1: 9, 2: 3, 3: 12, 4: 2}
	const gap = 3
	tops, _ := ComputeOffsets(5, gap, m)

	if tops[0] != 0 {
		t.Errorf("top[0] = %d, want 0", tops[0])
	}
	for i := 1; i < len(tops); i++ {
		if d := tops[i] - tops[i-1]; d < gap {
			t.Errorf("top[%d]-top[%d] = %d, want >= %d", i, i-1, d, gap)
		}
	}
}

func TestBoxAnchors(t *testing.T) {
	b := Box{X: 4, Y: 10, Width: 20, Height: 6}
	if got, want := b.BottomCenter(), (Point{X: 14, Y: 16}); got != want {
		t.Errorf("BottomCenter() = %v, want %v", got, want)
	}
	if got, want := b.TopCenter(), (Point{X: 14, Y: 9}); got != want {
		t.Errorf("TopCenter() = %v, want %v", got, want)
	}
}
