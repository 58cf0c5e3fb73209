// Package connector draws the directional links between consecutive walk
// steps and tracks which of them are already on screen, so that a layout pass
// only animates what is new.
package connector

import (
	"log/slog"

	"github.com/smileynet/branchwalk/internal/layout"
)

// Segment runs from the bottom-center of one step to the top-center of the
// next, in surface coordinates.
type Segment struct {
	From, To layout.Point
}

// Between returns the segment connecting box a to box b.
func Between(a, b layout.Box) Segment {
	return Segment{From: a.BottomCenter(), To: b.TopCenter()}
}

// Surface is where connectors are drawn. Drawing an index that already has a
// visual element replaces it.
type Surface interface {
	// Draw starts a fresh connector at index: zero length at seg.From,
	// extending to seg.To over the surface's animation duration.
	Draw(index int, seg Segment)
	// Retarget moves the endpoints of the connector at index without
	// restarting its animation.
	Retarget(index int, seg Segment)
	Remove(index int)
	Clear()
}

// Pass reports what one reconciliation did.
type Pass struct {
	Drawn      []int // Fresh draws issued.
	Retargeted []int // Already-drawn connectors re-issued with new endpoints.
	Skipped    []int // Endpoints not measurable yet; retried next pass.
}

// Renderer owns the connector state table. It is driven from a single
// goroutine (the Bubble Tea update loop) and is not safe for concurrent use.
type Renderer struct {
	surface Surface
	drawn   map[int]bool
	log     *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// NewRenderer creates a Renderer drawing onto surface.
func NewRenderer(surface Surface, opts ...Option) *Renderer {
	r := &Renderer{
		surface: surface,
		drawn:   make(map[int]bool),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile ensures a connector exists for every adjacent pair among n steps.
// Connectors already drawn are left alone except the newest one (n-2), whose
// lower endpoint may still move while the last step settles.
func (r *Renderer) Reconcile(n int, m layout.Measurer) Pass {
	r.dropFrom(n - 1)

	var p Pass
	newest := n - 2
	for i := 0; i <= newest; i++ {
		if r.drawn[i] && i != newest {
			continue
		}
		a, okA := m.Measure(i)
		b, okB := m.Measure(i + 1)
		if !okA || !okB {
			p.Skipped = append(p.Skipped, i)
			continue
		}
		seg := Between(a, b)
		if r.drawn[i] {
			r.surface.Retarget(i, seg)
			p.Retargeted = append(p.Retargeted, i)
			continue
		}
		r.surface.Draw(i, seg)
		r.drawn[i] = true
		p.Drawn = append(p.Drawn, i)
	}

	if len(p.Skipped) > 0 {
		r.log.Debug("connectors deferred", "skipped", p.Skipped)
	}
	return p
}

// Invalidate removes connectors at index from and above, making them
// eligible for a fresh draw if those indices become valid again.
func (r *Renderer) Invalidate(from int) {
	r.dropFrom(from)
}

func (r *Renderer) dropFrom(from int) {
	if from < 0 {
		from = 0
	}
	for i := range r.drawn {
		if i >= from {
			r.surface.Remove(i)
			delete(r.drawn, i)
		}
	}
}

// Redraw clears every connector and draws all of them from scratch. Used
// after a resize, when previous endpoints are meaningless.
func (r *Renderer) Redraw(n int, m layout.Measurer) Pass {
	r.Reset()
	return r.Reconcile(n, m)
}

// Reset clears all connectors and their state.
func (r *Renderer) Reset() {
	r.surface.Clear()
	r.drawn = make(map[int]bool)
}

// Drawn reports whether connector i has been drawn.
func (r *Renderer) Drawn(i int) bool {
	return r.drawn[i]
}

// Count returns the number of drawn connectors.
func (r *Renderer) Count() int {
	return len(r.drawn)
}
