package gbdt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredLossObjective(t *testing.T) {
	obj := &SquaredLossObjective{}

	assert.Equal(t, -2.0, obj.Gradient(1.0, 3.0))
	assert.Equal(t, 2.0, obj.Gradient(3.0, 1.0))
	assert.Equal(t, 1.0, obj.Hessian(0.0, 0.0))
	assert.InDelta(t, 2.0, obj.Loss(1.0, 3.0), 1e-12)
	assert.Equal(t, "regression", obj.Name())
}

func TestBinaryLogisticObjective(t *testing.T) {
	obj := &BinaryLogisticObjective{}

	// Raw score 0 is probability 0.5.
	assert.InDelta(t, -0.5, obj.Gradient(0.0, 1.0), 1e-12)
	assert.InDelta(t, 0.5, obj.Gradient(0.0, 0.0), 1e-12)
	assert.InDelta(t, 0.25, obj.Hessian(0.0, 1.0), 1e-12)
	assert.InDelta(t, math.Log(2), obj.Loss(0.0, 1.0), 1e-12)
	assert.Equal(t, "binary", obj.Name())
}

func TestBinaryHessianStaysPositive(t *testing.T) {
	obj := &BinaryLogisticObjective{}
	for _, raw := range []float64{-100, -50, 0, 50, 100} {
		assert.Greater(t, obj.Hessian(raw, 1.0), 0.0, "raw=%v", raw)
	}
}

func TestNewObjective(t *testing.T) {
	cfg := DefaultConfig()

	obj, err := newObjective(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SquaredLossObjective{}, obj)

	cfg.Objective = ObjectiveBinary
	obj, err = newObjective(cfg)
	require.NoError(t, err)
	assert.IsType(t, &BinaryLogisticObjective{}, obj)

	cfg.Objective = ObjectiveMulticlass
	cfg.NumClasses = 3
	obj, err = newObjective(cfg)
	require.NoError(t, err)
	assert.Equal(t, "multiclass", obj.Name())
	// Multiclass shares the regression gradient.
	assert.Equal(t, -2.0, obj.Gradient(1.0, 3.0))

	cfg.Objective = "unknown"
	_, err = newObjective(cfg)
	assert.Error(t, err)
}

func TestComputeGradients(t *testing.T) {
	obj := &SquaredLossObjective{}
	predictions := []float64{0, 0, 0}
	targets := []float64{1, 2, 3}
	grads := make([]float64, 3)
	hess := make([]float64, 3)

	computeGradients(obj, predictions, targets, grads, hess)
	assert.Equal(t, []float64{-1, -2, -3}, grads)
	assert.Equal(t, []float64{1, 1, 1}, hess)
}

func TestMeanLoss(t *testing.T) {
	obj := &SquaredLossObjective{}
	assert.InDelta(t, 0.25, meanLoss(obj, []float64{0, 0}, []float64{1, 0}), 1e-12)
	assert.Equal(t, 0.0, meanLoss(obj, nil, nil))
}
