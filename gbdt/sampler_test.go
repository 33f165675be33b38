package gbdt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRowsFullFraction(t *testing.T) {
	cfg := DefaultConfig()
	s := newSampler(cfg, rand.New(rand.NewSource(1)))

	rows := s.SampleRows(10, 0)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rows)
}

func TestSampleRowsBagging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaggingFraction = 0.5
	cfg.BaggingFreq = 1
	s := newSampler(cfg, rand.New(rand.NewSource(42)))

	rows := s.SampleRows(10, 0)
	require.Len(t, rows, 5)

	seen := make(map[int]bool)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r, 0)
		assert.Less(t, r, 10)
		assert.False(t, seen[r], "row %d sampled twice", r)
		seen[r] = true
	}
}

func TestSampleRowsBaggingFreqZeroDisablesBagging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaggingFraction = 0.5
	cfg.BaggingFreq = 0
	s := newSampler(cfg, rand.New(rand.NewSource(42)))

	rows := s.SampleRows(10, 0)
	assert.Len(t, rows, 10)
}

func TestSampleRowsBaggingFreqSkipsIterations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaggingFraction = 0.5
	cfg.BaggingFreq = 3
	s := newSampler(cfg, rand.New(rand.NewSource(42)))

	assert.Len(t, s.SampleRows(10, 0), 5)
	assert.Len(t, s.SampleRows(10, 1), 10)
	assert.Len(t, s.SampleRows(10, 2), 10)
	assert.Len(t, s.SampleRows(10, 3), 5)
}

func TestSampleRowsAtLeastOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaggingFraction = 0.01
	cfg.BaggingFreq = 1
	s := newSampler(cfg, rand.New(rand.NewSource(1)))

	rows := s.SampleRows(3, 0)
	assert.Len(t, rows, 1)
}

func TestSampleFeaturesSubset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeatureFraction = 0.5
	s := newSampler(cfg, rand.New(rand.NewSource(7)))

	features := s.SampleFeatures(8)
	require.Len(t, features, 4)
	assert.True(t, sortedAscending(features))
	for _, f := range features {
		assert.GreaterOrEqual(t, f, 0)
		assert.Less(t, f, 8)
	}
}

func TestSampleFeaturesFullFraction(t *testing.T) {
	cfg := DefaultConfig()
	s := newSampler(cfg, rand.New(rand.NewSource(7)))

	features := s.SampleFeatures(5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, features)
}

func TestSamplerDeterministicWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaggingFraction = 0.5
	cfg.FeatureFraction = 0.5

	a := newSampler(cfg, rand.New(rand.NewSource(99)))
	b := newSampler(cfg, rand.New(rand.NewSource(99)))

	assert.Equal(t, a.SampleRows(20, 0), b.SampleRows(20, 0))
	assert.Equal(t, a.SampleFeatures(10), b.SampleFeatures(10))
}

func sortedAscending(xs []int) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1] > xs[i] {
			return false
		}
	}
	return true
}
