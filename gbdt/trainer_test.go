package gbdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/pulsemetrics/pulseml/pkg/errors"
)

func regressionConfig() TrainingConfig {
	cfg := DefaultConfig()
	cfg.MinDataInLeaf = 1
	cfg.Seed = 42
	return cfg
}

func TestFitSingleStumpRegression(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	cfg := regressionConfig()
	cfg.NumTrees = 1
	cfg.LearningRate = 1.0
	cfg.MaxDepth = 1

	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))
	assert.True(t, engine.IsFitted())
	require.Len(t, engine.Trees(), 1)

	// A depth-1 tree splits halfway between 2 and 3 and averages each side.
	root, ok := engine.Trees()[0].Root.(*Split)
	require.True(t, ok)
	assert.Equal(t, 2.5, root.Threshold)

	pred, err := engine.Predict(mat.NewDense(4, 1, []float64{1, 2.2, 2.5, 4}))
	require.NoError(t, err)

	assert.InDelta(t, 1.5, pred.AtVec(0), 1e-12)
	assert.InDelta(t, 1.5, pred.AtVec(1), 1e-12)
	assert.InDelta(t, 1.5, pred.AtVec(2), 1e-12)
	assert.InDelta(t, 3.5, pred.AtVec(3), 1e-12)
	for i := 0; i < pred.Len(); i++ {
		assert.GreaterOrEqual(t, pred.AtVec(i), 1.0)
		assert.LessOrEqual(t, pred.AtVec(i), 4.0)
	}
}

func TestFitReducesTrainingLoss(t *testing.T) {
	n := 64
	data := make([]float64, n*2)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i*2] = float64(i)
		data[i*2+1] = float64((i * 13) % 7)
		target[i] = 3.0*float64(i) + data[i*2+1]
	}
	X := mat.NewDense(n, 2, data)
	y := mat.NewVecDense(n, target)

	cfg := regressionConfig()
	cfg.NumTrees = 30
	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))

	history := engine.Metrics().History
	require.Len(t, history, 30)
	assert.Less(t, history[len(history)-1].TrainLoss, history[0].TrainLoss)

	score, err := engine.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9)
}

func TestEarlyStoppingOnPlateau(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{5, 5, 5, 5})

	cfg := regressionConfig()
	cfg.NumTrees = 50
	cfg.LearningRate = 1.0
	cfg.MaxDepth = 1
	cfg.EarlyStoppingRounds = 2

	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.FitWithValidation(X, y, &ValidationData{X: X, Y: y}))

	// The first tree fits the constant target exactly; validation loss
	// cannot improve afterwards.
	m := engine.Metrics()
	assert.True(t, m.StoppedEarly)
	assert.Equal(t, 0, m.BestIteration)
	assert.Equal(t, 3, m.NumTrees)
	assert.Less(t, m.NumTrees, cfg.NumTrees)

	pred, err := engine.Predict(X)
	require.NoError(t, err)
	for i := 0; i < pred.Len(); i++ {
		assert.InDelta(t, 5.0, pred.AtVec(i), 1e-12)
	}
}

func TestNoValidationUsesAllTrees(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	cfg := regressionConfig()
	cfg.NumTrees = 5

	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))

	m := engine.Metrics()
	assert.False(t, m.StoppedEarly)
	assert.Equal(t, 4, m.BestIteration)
	assert.Equal(t, 5, m.NumTrees)
}

func TestBinaryClassification(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	cfg := regressionConfig()
	cfg.Objective = ObjectiveBinary
	cfg.NumTrees = 20
	cfg.LearningRate = 0.5
	cfg.MaxDepth = 2

	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))

	pred, err := engine.Predict(X)
	require.NoError(t, err)
	for i := 0; i < pred.Len(); i++ {
		p := pred.AtVec(i)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	acc, err := engine.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestFitValidation(t *testing.T) {
	engine, err := New(regressionConfig())
	require.NoError(t, err)

	err = engine.Fit(nil, nil)
	assert.Error(t, err)

	err = engine.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	var dimErr *pkgerrors.DimensionError
	assert.True(t, pkgerrors.As(err, &dimErr))
}

func TestPredictBeforeFit(t *testing.T) {
	engine, err := New(regressionConfig())
	require.NoError(t, err)

	_, err = engine.Predict(mat.NewDense(1, 1, []float64{1}))
	var nfErr *pkgerrors.NotFittedError
	assert.True(t, pkgerrors.As(err, &nfErr))
}

func TestPredictDimensionMismatch(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	engine, err := New(regressionConfig())
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))

	_, err = engine.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dimErr *pkgerrors.DimensionError
	assert.True(t, pkgerrors.As(err, &dimErr))
}

func TestTrainingIsDeterministicWithSeed(t *testing.T) {
	n := 40
	data := make([]float64, n*2)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i*2] = float64(i % 11)
		data[i*2+1] = float64(i % 5)
		target[i] = data[i*2]*2 - data[i*2+1]
	}
	X := mat.NewDense(n, 2, data)
	y := mat.NewVecDense(n, target)

	cfg := regressionConfig()
	cfg.NumTrees = 10
	cfg.BaggingFraction = 0.8
	cfg.FeatureFraction = 0.5
	cfg.Seed = 7

	run := func() *mat.VecDense {
		engine, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, engine.Fit(X, y))
		pred, err := engine.Predict(X)
		require.NoError(t, err)
		return pred
	}

	first := run()
	second := run()
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.AtVec(i), second.AtVec(i))
	}
}

type sliceSource struct {
	X     *mat.Dense
	y     *mat.VecDense
	names []string
}

func (s *sliceSource) Samples() (*mat.Dense, *mat.VecDense, error) { return s.X, s.y, nil }
func (s *sliceSource) FeatureNames() []string                      { return s.names }

func TestFitFromSampleSource(t *testing.T) {
	src := &sliceSource{
		X:     mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
		y:     mat.NewVecDense(4, []float64{1, 2, 3, 4}),
		names: []string{"watch_minutes"},
	}

	cfg := regressionConfig()
	cfg.NumTrees = 3
	engine, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.FitFrom(src, nil))

	assert.True(t, engine.IsFitted())
	assert.Equal(t, []string{"watch_minutes"}, engine.FeatureNames())
}

func TestFeatureNamesDefault(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	engine, err := New(regressionConfig())
	require.NoError(t, err)
	require.NoError(t, engine.Fit(X, y))

	assert.Equal(t, []string{"feature_0", "feature_1"}, engine.FeatureNames())

	engine.SetFeatureNames([]string{"age", "income"})
	assert.Equal(t, []string{"age", "income"}, engine.FeatureNames())
}
