package gbdt

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// degenerateEpsilon guards leaf statistics that are too small to trust.
// Aggregates below this threshold produce no split and a zero leaf value.
const degenerateEpsilon = 1e-6

// SplitCandidate describes the best split found for a node, if any.
type SplitCandidate struct {
	Feature   int
	Threshold float64
	Gain      float64
	LeftRows  []int
	RightRows []int
}

// SplitFinder performs exact greedy split search over sorted feature values.
type SplitFinder struct {
	lambdaL1      float64
	lambdaL2      float64
	minDataInLeaf int
}

func newSplitFinder(cfg TrainingConfig) *SplitFinder {
	return &SplitFinder{
		lambdaL1:      cfg.LambdaL1,
		lambdaL2:      cfg.LambdaL2,
		minDataInLeaf: cfg.MinDataInLeaf,
	}
}

// nodeScore is the regularized quality of a node with aggregated gradient g
// and hessian h. Degenerate aggregates score zero.
func (f *SplitFinder) nodeScore(g, h float64) float64 {
	if math.Abs(g) < degenerateEpsilon || h < degenerateEpsilon {
		return 0.0
	}
	return g * g / (h + f.lambdaL2)
}

// leafValue is the optimal output weight for a node with the given aggregates.
func (f *SplitFinder) leafValue(g, h float64) float64 {
	if math.Abs(g) < degenerateEpsilon || h < degenerateEpsilon {
		return 0.0
	}
	return -g / (h + f.lambdaL2)
}

// splitGain scores a candidate partition against the unsplit parent.
func (f *SplitFinder) splitGain(gLeft, hLeft, gRight, hRight float64) float64 {
	total := f.nodeScore(gLeft+gRight, hLeft+hRight)
	return (f.nodeScore(gLeft, hLeft)+f.nodeScore(gRight, hRight)-total)/2.0 - f.lambdaL1
}

type featureSplit struct {
	found     bool
	threshold float64
	gain      float64
}

// FindBestSplit scans the given features over the node's rows and returns the
// best positive-gain split, or nil when no feature admits one. Features are
// scanned concurrently; ties resolve to the lowest feature index and, within
// a feature, to the first threshold in ascending value order.
func (f *SplitFinder) FindBestSplit(X *mat.Dense, grads, hess []float64, rows, features []int) *SplitCandidate {
	if len(rows) < 2*f.minDataInLeaf {
		return nil
	}

	results := make([]featureSplit, len(features))

	var wg sync.WaitGroup
	for fi, feature := range features {
		wg.Add(1)
		go func(fi, feature int) {
			defer wg.Done()
			results[fi] = f.scanFeature(X, grads, hess, rows, feature)
		}(fi, feature)
	}
	wg.Wait()

	best := -1
	for fi := range results {
		if !results[fi].found {
			continue
		}
		if best < 0 || results[fi].gain > results[best].gain {
			best = fi
		}
	}
	if best < 0 {
		return nil
	}

	feature := features[best]
	threshold := results[best].threshold
	// NaN rows were excluded from the scan's aggregates, so they are
	// excluded from the partition as well.
	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		v := X.At(r, feature)
		if math.IsNaN(v) {
			continue
		}
		if v <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	return &SplitCandidate{
		Feature:   feature,
		Threshold: threshold,
		Gain:      results[best].gain,
		LeftRows:  left,
		RightRows: right,
	}
}

// scanFeature sorts the node's rows by one feature's value and sweeps every
// boundary between distinct values, accumulating prefix gradient sums.
func (f *SplitFinder) scanFeature(X *mat.Dense, grads, hess []float64, rows []int, feature int) featureSplit {
	type rowValue struct {
		value float64
		grad  float64
		hess  float64
	}

	sorted := make([]rowValue, 0, len(rows))
	for _, r := range rows {
		v := X.At(r, feature)
		if math.IsNaN(v) {
			continue
		}
		sorted = append(sorted, rowValue{value: v, grad: grads[r], hess: hess[r]})
	}
	if len(sorted) < 2*f.minDataInLeaf {
		return featureSplit{}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })

	gTotal, hTotal := 0.0, 0.0
	for i := range sorted {
		gTotal += sorted[i].grad
		hTotal += sorted[i].hess
	}

	best := featureSplit{}
	gLeft, hLeft := 0.0, 0.0
	for i := 0; i < len(sorted)-1; i++ {
		gLeft += sorted[i].grad
		hLeft += sorted[i].hess

		// Candidate thresholds sit at midpoints between distinct values.
		if sorted[i].value == sorted[i+1].value {
			continue
		}

		leftCount := i + 1
		rightCount := len(sorted) - leftCount
		if leftCount < f.minDataInLeaf || rightCount < f.minDataInLeaf {
			continue
		}

		gain := f.splitGain(gLeft, hLeft, gTotal-gLeft, hTotal-hLeft)
		if gain <= 0 {
			continue
		}
		if !best.found || gain > best.gain {
			best = featureSplit{
				found:     true,
				threshold: (sorted[i].value + sorted[i+1].value) / 2.0,
				gain:      gain,
			}
		}
	}
	return best
}
