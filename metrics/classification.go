package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// logLossEpsilon clamps probabilities away from 0 and 1 so the loss stays finite.
const logLossEpsilon = 1e-15

// BinaryLogLoss calculates the binary cross-entropy loss.
//
// yTrue holds ground-truth labels in {0, 1}; yPred holds predicted
// probabilities in [0, 1].
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := yPred.AtVec(i)
		if p < logLossEpsilon {
			p = logLossEpsilon
		}
		if p > 1-logLossEpsilon {
			p = 1 - logLossEpsilon
		}
		t := yTrue.AtVec(i)
		sum += -(t*math.Log(p) + (1-t)*math.Log(1-p))
	}
	return sum / float64(n), nil
}

// Accuracy calculates the fraction of correct binary predictions.
// Predicted probabilities are thresholded at 0.5.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		label := 0.0
		if yPred.AtVec(i) >= 0.5 {
			label = 1.0
		}
		if label == yTrue.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
