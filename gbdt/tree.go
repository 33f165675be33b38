package gbdt

import "math"

// DecisionTree is a single tree in the ensemble. LearningRate is the
// adaptive rate that was in effect at the boosting iteration that built it;
// Weight is an additional multiplier, 1.0 unless a caller reweights trees.
type DecisionTree struct {
	Root         Node
	LearningRate float64
	Weight       float64
}

// Raw evaluates the tree for one feature row without any learning-rate or
// weight scaling. A missing feature (index beyond the row, or NaN) makes the
// whole tree contribute zero, guarding against malformed inputs.
func (t *DecisionTree) Raw(features []float64) float64 {
	node := t.Root
	for {
		switch n := node.(type) {
		case *Leaf:
			return n.Value
		case *Split:
			if n.Feature < 0 || n.Feature >= len(features) {
				return 0
			}
			v := features[n.Feature]
			if math.IsNaN(v) {
				return 0
			}
			if v <= n.Threshold {
				node = n.Left
			} else {
				node = n.Right
			}
		default:
			return 0
		}
	}
}

// Predict evaluates the tree with its learning-rate and weight scaling
// applied. This is the tree's contribution to the ensemble sum.
func (t *DecisionTree) Predict(features []float64) float64 {
	return t.LearningRate * t.Weight * t.Raw(features)
}

// NumLeaves returns the number of terminal nodes.
func (t *DecisionTree) NumLeaves() int {
	return countLeaves(t.Root)
}

// Depth returns the depth of the deepest leaf; a single-leaf tree has depth 0.
func (t *DecisionTree) Depth() int {
	return maxNodeDepth(t.Root)
}

// Ensemble is the ordered, append-only sequence of boosted trees. Order is
// the boosting iteration order.
type Ensemble []DecisionTree
