package gbdt

import (
	"math/rand"
	"sort"
)

// Sampler handles row bagging and feature subsampling for tree building.
// It owns the injected random source so repeated training runs with the same
// seed visit identical row and feature subsets.
type Sampler struct {
	rng             *rand.Rand
	featureFraction float64
	baggingFraction float64
	baggingFreq     int
}

func newSampler(cfg TrainingConfig, rng *rand.Rand) *Sampler {
	return &Sampler{
		rng:             rng,
		featureFraction: cfg.FeatureFraction,
		baggingFraction: cfg.BaggingFraction,
		baggingFreq:     cfg.BaggingFreq,
	}
}

// SampleRows returns the row indices to use for the tree built at the given
// iteration. Bagging activates only when the bagging fraction is below 1.0
// and the iteration lands on the bagging frequency; every other iteration
// uses all rows.
func (s *Sampler) SampleRows(numRows, iteration int) []int {
	if s.baggingFraction >= 1.0 || s.baggingFreq <= 0 || iteration%s.baggingFreq != 0 {
		return allIndices(numRows)
	}

	numSample := int(float64(numRows) * s.baggingFraction)
	if numSample < 1 {
		numSample = 1
	}

	perm := s.rng.Perm(numRows)
	rows := make([]int, numSample)
	copy(rows, perm[:numSample])
	return rows
}

// SampleFeatures selects the feature indices visible to one tree's split
// search, without replacement. Leaf evaluation is unaffected. The returned
// indices are sorted so the split scan order is stable for a given draw.
func (s *Sampler) SampleFeatures(numFeatures int) []int {
	if s.featureFraction >= 1.0 {
		return allIndices(numFeatures)
	}

	numSample := int(float64(numFeatures) * s.featureFraction)
	if numSample < 1 {
		numSample = 1
	}

	perm := s.rng.Perm(numFeatures)
	features := make([]int, numSample)
	copy(features, perm[:numSample])
	sort.Ints(features)
	return features
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
