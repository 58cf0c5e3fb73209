package walk

import (
	"math/rand/v2"
	"time"

	"github.com/smileynet/branchwalk/internal/connector"
)

const (
	burstLife      = 1200 * time.Millisecond
	burstParticles = 28
	burstGravity   = 14.0 // rows per second squared
)

var sparkGlyphs = []rune{'*', '+', '·', '✦', '•', '°'}

type particle struct {
	vx, vy float64 // cells per second
	glyph  rune
}

// burst is a short particle shower thrown up from the top of the result
// panel when a walk ends.
type burst struct {
	start     time.Time
	originX   int
	originY   int
	particles []particle
}

// newBurst seeds a burst centred on column originX, row originY.
func newBurst(start time.Time, originX, originY int, seed uint64) *burst {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := &burst{start: start, originX: originX, originY: originY}
	for range burstParticles {
		g := sparkGlyphs[rng.IntN(len(sparkGlyphs))]
		if connector.Width(g) != 1 {
			g = '*'
		}
		b.particles = append(b.particles, particle{
			vx:    (rng.Float64()*2 - 1) * 24,
			vy:    -rng.Float64()*8 - 2,
			glyph: g,
		})
	}
	return b
}

// active reports whether the burst is still visible at now.
func (b *burst) active(now time.Time) bool {
	return b != nil && now.Sub(b.start) < burstLife
}

// cells returns the particle positions at now, clipped to a width by
// height area.
func (b *burst) cells(now time.Time, width, height int) []connector.Cell {
	if !b.active(now) {
		return nil
	}
	t := now.Sub(b.start).Seconds()
	var out []connector.Cell
	for _, p := range b.particles {
		x := b.originX + int(p.vx*t)
		y := b.originY + int(p.vy*t+0.5*burstGravity*t*t)
		if x < 0 || y < 0 || x >= width || y >= height {
			continue
		}
		out = append(out, connector.Cell{X: x, Y: y, R: p.glyph})
	}
	return out
}
