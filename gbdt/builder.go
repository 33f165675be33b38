package gbdt

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TreeBuilder grows a single tree greedily from per-sample gradients.
type TreeBuilder struct {
	finder   *SplitFinder
	maxDepth int
}

func newTreeBuilder(cfg TrainingConfig) *TreeBuilder {
	return &TreeBuilder{
		finder:   newSplitFinder(cfg),
		maxDepth: cfg.MaxDepth,
	}
}

// Build grows a tree over the sampled rows using the sampled feature subset.
// The returned tree carries the learning rate applied at this iteration.
func (b *TreeBuilder) Build(X *mat.Dense, grads, hess []float64, rows, features []int, learningRate float64) DecisionTree {
	root := b.buildNode(X, grads, hess, rows, features, 0)
	return DecisionTree{
		Root:         root,
		LearningRate: learningRate,
		Weight:       1.0,
	}
}

func (b *TreeBuilder) buildNode(X *mat.Dense, grads, hess []float64, rows, features []int, depth int) Node {
	if depth >= b.maxDepth || len(rows) < b.finder.minDataInLeaf {
		return b.makeLeaf(grads, hess, rows)
	}

	// Numerically degenerate aggregates terminate recursion with a leaf.
	g, h := 0.0, 0.0
	for _, r := range rows {
		g += grads[r]
		h += hess[r]
	}
	if math.Abs(g) < degenerateEpsilon || h < degenerateEpsilon {
		return &Leaf{Value: b.finder.leafValue(g, h), SampleCount: len(rows)}
	}

	candidate := b.finder.FindBestSplit(X, grads, hess, rows, features)
	if candidate == nil {
		return b.makeLeaf(grads, hess, rows)
	}

	return &Split{
		Feature:   candidate.Feature,
		Threshold: candidate.Threshold,
		Gain:      candidate.Gain,
		Left:      b.buildNode(X, grads, hess, candidate.LeftRows, features, depth+1),
		Right:     b.buildNode(X, grads, hess, candidate.RightRows, features, depth+1),
	}
}

func (b *TreeBuilder) makeLeaf(grads, hess []float64, rows []int) Node {
	g, h := 0.0, 0.0
	for _, r := range rows {
		g += grads[r]
		h += hess[r]
	}
	return &Leaf{
		Value:       b.finder.leafValue(g, h),
		SampleCount: len(rows),
	}
}
