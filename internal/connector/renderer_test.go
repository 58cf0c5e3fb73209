package connector

import (
	"reflect"
	"testing"

	"github.com/smileynet/branchwalk/internal/layout"
)

// fakeSurface records every call and the current set of visual elements.
type fakeSurface struct {
	draws     []int
	retargets []int
	removes   []int
	clears    int
	visible   map[int]Segment
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{visible: make(map[int]Segment)}
}

func (f *fakeSurface) Draw(i int, seg Segment) {
	f.draws = append(f.draws, i)
	f.visible[i] = seg
}

func (f *fakeSurface) Retarget(i int, seg Segment) {
	f.retargets = append(f.retargets, i)
	f.visible[i] = seg
}

func (f *fakeSurface) Remove(i int) {
	f.removes = append(f.removes, i)
	delete(f.visible, i)
}

func (f *fakeSurface) Clear() {
	f.clears++
	f.visible = make(map[int]Segment)
}

func (f *fakeSurface) resetCalls() {
	f.draws, f.retargets, f.removes, f.clears = nil, nil, nil, 0
}

// stack lays out n boxes of height h, gap rows apart, with some boxes
// optionally unmeasured.
type stack struct {
	h, gap  int
	missing map[int]bool
}

func (s stack) Measure(i int) (layout.Box, bool) {
	if s.missing[i] {
		return layout.Box{}, false
	}
	return layout.Box{X: 2, Y: i * (s.h + s.gap), Width: 30, Height: s.h}, true
}

func TestReconcile_DrawsEachPairOnce(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	m := stack{h: 5, gap: 3}

	p := r.Reconcile(3, m)

	if !reflect.DeepEqual(p.Drawn, []int{0, 1}) {
		t.Errorf("Drawn = %v, want [0 1]", p.Drawn)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
	want := Segment{From: layout.Point{X: 17, Y: 5}, To: layout.Point{X: 17, Y: 7}}
	if got := surf.visible[0]; got != want {
		t.Errorf("segment 0 = %+v, want %+v", got, want)
	}
}

func TestReconcile_OnlyNewestRedrawn(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	m := stack{h: 5, gap: 3}
	r.Reconcile(4, m)
	surf.resetCalls()

	p := r.Reconcile(4, m)

	if len(p.Drawn) != 0 {
		t.Errorf("Drawn = %v, want none", p.Drawn)
	}
	if !reflect.DeepEqual(p.Retargeted, []int{2}) {
		t.Errorf("Retargeted = %v, want [2]", p.Retargeted)
	}
	if len(surf.draws) != 0 {
		t.Errorf("surface draws = %v, want none", surf.draws)
	}
}

func TestReconcile_SkipsUnmeasured(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)

	p := r.Reconcile(3, stack{h: 4, gap: 1, missing: map[int]bool{2: true}})

	if !reflect.DeepEqual(p.Drawn, []int{0}) || !reflect.DeepEqual(p.Skipped, []int{1}) {
		t.Fatalf("pass = %+v, want drawn [0] skipped [1]", p)
	}
	if r.Drawn(1) {
		t.Error("skipped connector must not be marked drawn")
	}

	// When: the box renders, the next pass draws it fresh.
	p = r.Reconcile(3, stack{h: 4, gap: 1})
	if !reflect.DeepEqual(p.Drawn, []int{1}) {
		t.Errorf("Drawn = %v, want [1]", p.Drawn)
	}
}

func TestInvalidate_RemovesFromIndex(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	m := stack{h: 3, gap: 2}
	r.Reconcile(4, m)

	r.Invalidate(1)

	if r.Count() != 1 || !r.Drawn(0) || r.Drawn(1) || r.Drawn(2) {
		t.Errorf("after Invalidate(1): count %d, drawn0 %v drawn1 %v drawn2 %v",
			r.Count(), r.Drawn(0), r.Drawn(1), r.Drawn(2))
	}
	if len(surf.visible) != 1 {
		t.Errorf("visible connectors = %d, want 1", len(surf.visible))
	}
}

func TestTruncation_LeavesPrefixDrawn(t *testing.T) {
	// Given: 5 steps fully connected.
	surf := newFakeSurface()
	r := NewRenderer(surf)
	m := stack{h: 3, gap: 2}
	r.Reconcile(5, m)

	// When: history is truncated to 3 steps by selecting at step 2.
	r.Invalidate(2)
	r.Reconcile(3, m)

	// Then: connectors 0..1 exist and nothing else.
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
	for i := 0; i < 2; i++ {
		if !r.Drawn(i) {
			t.Errorf("connector %d should be drawn", i)
		}
	}
	if _, ok := surf.visible[2]; ok {
		t.Error("connector 2 should not be visible")
	}
}

func TestReconcile_DropsStaleBeyondLength(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	m := stack{h: 3, gap: 2}
	r.Reconcile(4, m)

	r.Reconcile(2, m)

	if r.Count() != 1 || len(surf.visible) != 1 {
		t.Errorf("Count() = %d, visible = %d, want 1 and 1", r.Count(), len(surf.visible))
	}
}

func TestRedraw_ResizeDrawsEverythingFresh(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	r.Reconcile(4, stack{h: 3, gap: 2})
	surf.resetCalls()

	p := r.Redraw(4, stack{h: 6, gap: 2})

	if surf.clears != 1 {
		t.Errorf("clears = %d, want 1", surf.clears)
	}
	if len(surf.draws) != 3 || !reflect.DeepEqual(p.Drawn, []int{0, 1, 2}) {
		t.Errorf("draws = %v, pass = %+v, want exactly 3 fresh draws", surf.draws, p)
	}
	if len(p.Retargeted) != 0 {
		t.Errorf("Retargeted = %v, want none", p.Retargeted)
	}
}

func TestReset(t *testing.T) {
	surf := newFakeSurface()
	r := NewRenderer(surf)
	r.Reconcile(3, stack{h: 3, gap: 2})

	r.Reset()

	if r.Count() != 0 || len(surf.visible) != 0 {
		t.Errorf("Count() = %d, visible = %d, want 0", r.Count(), len(surf.visible))
	}
}

func TestReconcile_SingleStepHasNoConnectors(t *testing.T) {
	r := NewRenderer(newFakeSurface())
	p := r.Reconcile(1, stack{h: 3, gap: 2})
	if len(p.Drawn)+len(p.Retargeted)+len(p.Skipped) != 0 || r.Count() != 0 {
		t.Errorf("pass = %+v, count = %d", p, r.Count())
	}
}

func TestRenderer_WithCanvas(t *testing.T) {
	canvas := NewCanvas(WithDuration(0))
	r := NewRenderer(canvas)

	r.Reconcile(3, stack{h: 2, gap: 3})

	if canvas.Len() != 2 {
		t.Errorf("canvas.Len() = %d, want 2", canvas.Len())
	}
	r.Invalidate(0)
	if canvas.Len() != 0 {
		t.Errorf("canvas.Len() = %d, want 0", canvas.Len())
	}
}
