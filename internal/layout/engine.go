package layout

import "log/slog"

// Pass is the outcome of one Recompute call.
type Pass struct {
	Tops     []int // Offsets for every step that has one, resolved or not.
	Resolved int   // Steps whose offset was computed from measurements this pass.
	Complete bool  // Every step was resolved.
	Changed  bool  // At least one offset differs from the previous pass.
}

// Engine owns the position cache for the steps of a walk. Offsets it cannot
// resolve keep their previous (possibly provisional) value until a later
// pass can measure their predecessor.
type Engine struct {
	gap         int
	tops        []int
	provisional map[int]bool
	log         *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for deferred passes.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates an Engine that separates steps by gap rows.
// A negative gap is treated as zero.
func NewEngine(gap int, opts ...EngineOption) *Engine {
	if gap < 0 {
		gap = 0
	}
	e := &Engine{
		gap:         gap,
		provisional: make(map[int]bool),
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recompute resolves offsets for n steps from the measurer.
func (e *Engine) Recompute(n int, m Measurer) Pass {
	tops, complete := ComputeOffsets(n, e.gap, m)

	changed := false
	if len(e.tops) > n {
		e.truncate(n)
		changed = true
	}
	for i, top := range tops {
		if i < len(e.tops) {
			if e.tops[i] != top {
				e.tops[i] = top
				changed = true
			}
		} else {
			e.tops = append(e.tops, top)
			changed = true
		}
		delete(e.provisional, i)
	}

	if !complete {
		e.log.Debug("layout deferred", "steps", n, "resolved", len(tops))
	}
	return Pass{
		Tops:     e.Tops(),
		Resolved: len(tops),
		Complete: complete,
		Changed:  changed,
	}
}

// Place assigns a provisional offset to step i, derived from the parent's
// size before the mutation that appended step i. It avoids a visible jump
// while the new step waits for its first authoritative pass. Place is a
// no-op when the parent has no offset yet.
func (e *Engine) Place(i, parentHeight int) {
	if i <= 0 || i-1 >= len(e.tops) || parentHeight <= 0 {
		return
	}
	top := e.tops[i-1] + parentHeight + e.gap
	e.truncate(i)
	e.tops = append(e.tops, top)
	e.provisional[i] = true
}

// Truncate drops offsets for steps n and above.
func (e *Engine) Truncate(n int) {
	e.truncate(n)
}

func (e *Engine) truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(e.tops) {
		return
	}
	for i := n; i < len(e.tops); i++ {
		delete(e.provisional, i)
	}
	e.tops = e.tops[:n]
}

// Invalidate forgets every offset except the root's, which is always zero.
// Used when the surface is resized and previous offsets mean nothing.
func (e *Engine) Invalidate() {
	e.truncate(0)
	e.tops = append(e.tops, 0)
}

// Top returns the offset of step i.
func (e *Engine) Top(i int) (int, bool) {
	if i < 0 || i >= len(e.tops) {
		return 0, false
	}
	return e.tops[i], true
}

// Tops returns a copy of all known offsets.
func (e *Engine) Tops() []int {
	return append([]int(nil), e.tops...)
}

// Provisional reports whether step i's offset is a pre-render estimate.
func (e *Engine) Provisional(i int) bool {
	return e.provisional[i]
}
