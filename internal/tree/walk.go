package tree

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes  int // Question nodes.
	Leaves int // Options without a continuation.
	Depth  int // Questions on the longest root-to-leaf path.
}

// Measure walks the tree and returns its Stats.
func Measure(root *Node) Stats {
	var s Stats
	measure(root, 1, &s)
	return s
}

func measure(n *Node, depth int, s *Stats) {
	if n == nil {
		return
	}
	s.Nodes++
	if depth > s.Depth {
		s.Depth = depth
	}
	for _, opt := range n.Options {
		if opt.Leaf() {
			s.Leaves++
			continue
		}
		measure(opt.Next, depth+1, s)
	}
}

// Paths returns the option names along every root-to-leaf path, in
// depth-first option order. Empty names are omitted, matching what a walk
// reports when it ends on that leaf.
func Paths(root *Node) [][]string {
	var out [][]string
	collectPaths(root, nil, &out)
	return out
}

func collectPaths(n *Node, prefix []string, out *[][]string) {
	if n == nil {
		return
	}
	for _, opt := range n.Options {
		names := prefix
		if opt.Name != "" {
			names = append(append([]string(nil), prefix...), opt.Name)
		}
		if opt.Leaf() {
			*out = append(*out, append([]string(nil), names...))
			continue
		}
		collectPaths(opt.Next, names, out)
	}
}
