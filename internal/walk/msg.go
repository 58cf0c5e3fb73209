package walk

import (
	"github.com/smileynet/branchwalk/internal/result"
	"github.com/smileynet/branchwalk/internal/tree"
)

// renderedMsg carries step box sizes from a render pass. gen ties the pass
// to the mutation that requested it; passes from older generations are
// dropped.
type renderedMsg struct {
	gen   int
	width int
	sizes []boxSize
}

// layoutMsg fires after the settle delay to run a layout pass.
type layoutMsg struct {
	gen int
}

// frameMsg advances animations by one frame.
type frameMsg struct{}

// reloadMsg replaces the tree and articles after the content files changed.
type reloadMsg struct {
	root    *tree.Node
	catalog *result.Catalog
}
