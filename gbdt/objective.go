package gbdt

import (
	"math"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// ObjectiveFunction supplies the per-sample gradient, hessian and loss for a
// training objective. Predictions are raw scores; the binary objective applies
// the sigmoid internally.
type ObjectiveFunction interface {
	// Gradient returns the first derivative of the loss with respect to the
	// raw prediction.
	Gradient(prediction, target float64) float64

	// Hessian returns the second derivative of the loss with respect to the
	// raw prediction.
	Hessian(prediction, target float64) float64

	// Loss returns the loss for a single sample.
	Loss(prediction, target float64) float64

	// Name returns the objective identifier used in configs and snapshots.
	Name() string
}

func newObjective(cfg TrainingConfig) (ObjectiveFunction, error) {
	switch cfg.Objective {
	case ObjectiveRegression:
		return &SquaredLossObjective{}, nil
	case ObjectiveBinary:
		return &BinaryLogisticObjective{}, nil
	case ObjectiveMulticlass:
		// Multiclass reuses the squared-loss gradient on raw class labels.
		// NumClasses is carried through to the snapshot as metadata only.
		return &SquaredLossObjective{name: string(ObjectiveMulticlass)}, nil
	default:
		return nil, errors.NewValidationError("objective", "unknown objective", string(cfg.Objective))
	}
}

// SquaredLossObjective implements L2 (mean squared error) loss.
type SquaredLossObjective struct {
	name string
}

func (o *SquaredLossObjective) Gradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *SquaredLossObjective) Hessian(prediction, target float64) float64 {
	return 1.0
}

func (o *SquaredLossObjective) Loss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

func (o *SquaredLossObjective) Name() string {
	if o.name != "" {
		return o.name
	}
	return string(ObjectiveRegression)
}

// BinaryLogisticObjective implements binary log loss. Targets are 0 or 1,
// predictions are raw scores mapped through the sigmoid.
type BinaryLogisticObjective struct{}

func (o *BinaryLogisticObjective) Gradient(prediction, target float64) float64 {
	return sigmoid(prediction) - target
}

func (o *BinaryLogisticObjective) Hessian(prediction, target float64) float64 {
	p := sigmoid(prediction)
	h := p * (1.0 - p)
	if h < 1e-16 {
		h = 1e-16
	}
	return h
}

func (o *BinaryLogisticObjective) Loss(prediction, target float64) float64 {
	p := sigmoid(prediction)
	p = clampProbability(p)
	return -(target*math.Log(p) + (1.0-target)*math.Log(1.0-p))
}

func (o *BinaryLogisticObjective) Name() string {
	return string(ObjectiveBinary)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clampProbability(p float64) float64 {
	const eps = 1e-15
	if p < eps {
		return eps
	}
	if p > 1.0-eps {
		return 1.0 - eps
	}
	return p
}

// computeGradients fills grads and hess with the per-sample derivatives at the
// current raw predictions. All slices share the same length.
func computeGradients(obj ObjectiveFunction, predictions, targets, grads, hess []float64) {
	for i := range targets {
		grads[i] = obj.Gradient(predictions[i], targets[i])
		hess[i] = obj.Hessian(predictions[i], targets[i])
	}
}

// meanLoss returns the average loss over the given rows.
func meanLoss(obj ObjectiveFunction, predictions, targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	sum := 0.0
	for i := range targets {
		sum += obj.Loss(predictions[i], targets[i])
	}
	return sum / float64(len(targets))
}
