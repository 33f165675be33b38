package gbdt

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// Predict returns the model output for each row of X. Regression and
// multiclass outputs are raw ensemble sums; binary outputs are
// probabilities in [0, 1]. Only trees up to and including the best
// iteration contribute, so an early-stopped model predicts with its best
// prefix.
func (e *Engine) Predict(X *mat.Dense) (*mat.VecDense, error) {
	raw, err := e.PredictRaw(X)
	if err != nil {
		return nil, err
	}
	if e.config.Objective == ObjectiveBinary {
		for i := 0; i < raw.Len(); i++ {
			raw.SetVec(i, sigmoid(raw.AtVec(i)))
		}
	}
	return raw, nil
}

// PredictRaw returns the unscaled ensemble sum for each row of X, before
// any link function.
func (e *Engine) PredictRaw(X *mat.Dense) (*mat.VecDense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("Engine", "Predict")
	}
	if X == nil {
		return nil, errors.NewValidationError("X", "input must not be nil", nil)
	}
	numRows, numFeatures := X.Dims()
	if numFeatures != e.numFeatures {
		return nil, errors.NewDimensionError("Predict", e.numFeatures, numFeatures, 1)
	}

	limit := e.predictionTreeCount()
	out := mat.NewVecDense(numRows, nil)
	rowBuf := make([]float64, numFeatures)
	for i := 0; i < numRows; i++ {
		mat.Row(rowBuf, i, X)
		sum := 0.0
		for t := 0; t < limit; t++ {
			sum += e.trees[t].Predict(rowBuf)
		}
		out.SetVec(i, sum)
	}
	return out, nil
}

// predictionTreeCount is the number of leading trees that participate in
// prediction: everything through the best iteration.
func (e *Engine) predictionTreeCount() int {
	limit := e.metrics.BestIteration + 1
	if limit > len(e.trees) || limit <= 0 {
		limit = len(e.trees)
	}
	return limit
}
