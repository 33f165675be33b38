package gbdt

// Node is a tree node: exactly one of Leaf or Split. The interface is sealed
// so a node can never carry both leaf and split fields at once.
type Node interface {
	node()
}

// Leaf is a terminal node holding the output value for every sample that
// reaches it.
type Leaf struct {
	Value       float64
	SampleCount int
}

// Split is a branching node. Rows with feature value <= Threshold descend
// into Left, all others into Right. Both children are always present.
type Split struct {
	Feature   int
	Threshold float64
	Gain      float64
	Left      Node
	Right     Node
}

func (*Leaf) node()  {}
func (*Split) node() {}

// countLeaves walks the subtree counting terminal nodes.
func countLeaves(n Node) int {
	switch v := n.(type) {
	case *Leaf:
		return 1
	case *Split:
		return countLeaves(v.Left) + countLeaves(v.Right)
	default:
		return 0
	}
}

// maxNodeDepth reports the depth of the deepest leaf, with a bare leaf at 0.
func maxNodeDepth(n Node) int {
	s, ok := n.(*Split)
	if !ok {
		return 0
	}
	left := maxNodeDepth(s.Left)
	right := maxNodeDepth(s.Right)
	if right > left {
		left = right
	}
	return left + 1
}
