package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBinaryLogLoss(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{1, 0})
	yPred := mat.NewVecDense(2, []float64{0.5, 0.5})

	loss, err := BinaryLogLoss(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), loss, 1e-12)
}

func TestBinaryLogLossClampsExtremes(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{1, 0})
	yPred := mat.NewVecDense(2, []float64{0, 1})

	loss, err := BinaryLogLoss(yTrue, yPred)
	require.NoError(t, err)
	assert.False(t, math.IsInf(loss, 0))
	assert.Greater(t, loss, 0.0)
}

func TestAccuracy(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})

	acc, err := Accuracy(yTrue, mat.NewVecDense(4, []float64{0.1, 0.4, 0.6, 0.9}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	acc, err = Accuracy(yTrue, mat.NewVecDense(4, []float64{0.9, 0.4, 0.6, 0.1}))
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)
}

func TestAccuracyErrors(t *testing.T) {
	_, err := Accuracy(mat.NewVecDense(1, []float64{1}), mat.NewVecDense(2, []float64{1, 0}))
	assert.Error(t, err)
}
