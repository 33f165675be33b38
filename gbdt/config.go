package gbdt

import (
	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// Objective identifies the loss family being optimized.
type Objective string

const (
	// ObjectiveRegression optimizes squared error.
	ObjectiveRegression Objective = "regression"
	// ObjectiveBinary optimizes logistic loss; predictions are probabilities.
	ObjectiveBinary Objective = "binary"
	// ObjectiveMulticlass reuses the regression gradient per output slot.
	// This is a documented simplification, not softmax cross-entropy.
	ObjectiveMulticlass Objective = "multiclass"
)

// TrainingConfig contains all training hyperparameters. It is supplied once
// at construction time and never mutated by the engine.
type TrainingConfig struct {
	Objective Objective `json:"objective"`

	// Boosting
	NumTrees     int     `json:"num_trees"`
	LearningRate float64 `json:"learning_rate"`

	// Tree shape
	MaxDepth      int `json:"max_depth"`
	MinDataInLeaf int `json:"min_data_in_leaf"`

	// Sampling
	FeatureFraction float64 `json:"feature_fraction"`
	BaggingFraction float64 `json:"bagging_fraction"`
	BaggingFreq     int     `json:"bagging_freq"`

	// Regularization
	LambdaL1 float64 `json:"lambda_l1"`
	LambdaL2 float64 `json:"lambda_l2"`

	// Convergence
	EarlyStoppingRounds int `json:"early_stopping_rounds"`

	// Multiclass bookkeeping. Carried through snapshots for registry
	// metadata; the simplified objective trains a single output.
	NumClasses int `json:"num_class,omitempty"`

	// Seed for row bagging, feature subsampling, and hyperparameter
	// sampling. Zero means system entropy.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the production defaults used by the engagement
// trainers.
func DefaultConfig() TrainingConfig {
	return TrainingConfig{
		Objective:           ObjectiveRegression,
		NumTrees:            100,
		LearningRate:        0.1,
		MaxDepth:            6,
		MinDataInLeaf:       20,
		FeatureFraction:     1.0,
		BaggingFraction:     1.0,
		BaggingFreq:         1,
		LambdaL1:            0.0,
		LambdaL2:            0.0,
		EarlyStoppingRounds: 0,
	}
}

// Validate checks the configuration for values the engine cannot train with.
func (c TrainingConfig) Validate() error {
	switch c.Objective {
	case ObjectiveRegression, ObjectiveBinary, ObjectiveMulticlass:
	default:
		return errors.NewValidationError("objective", "unknown objective", string(c.Objective))
	}
	if c.NumTrees <= 0 {
		return errors.NewValidationError("num_trees", "must be positive", c.NumTrees)
	}
	if c.LearningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", c.LearningRate)
	}
	if c.MaxDepth <= 0 {
		return errors.NewValidationError("max_depth", "must be positive", c.MaxDepth)
	}
	if c.MinDataInLeaf < 1 {
		return errors.NewValidationError("min_data_in_leaf", "must be at least 1", c.MinDataInLeaf)
	}
	if c.FeatureFraction <= 0 || c.FeatureFraction > 1 {
		return errors.NewValidationError("feature_fraction", "must be in (0, 1]", c.FeatureFraction)
	}
	if c.BaggingFraction <= 0 || c.BaggingFraction > 1 {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", c.BaggingFraction)
	}
	if c.LambdaL1 < 0 {
		return errors.NewValidationError("lambda_l1", "must be non-negative", c.LambdaL1)
	}
	if c.LambdaL2 < 0 {
		return errors.NewValidationError("lambda_l2", "must be non-negative", c.LambdaL2)
	}
	if c.EarlyStoppingRounds < 0 {
		return errors.NewValidationError("early_stopping_rounds", "must be non-negative", c.EarlyStoppingRounds)
	}
	if c.Objective == ObjectiveMulticlass && c.NumClasses < 2 {
		return errors.NewValidationError("num_class", "multiclass requires at least 2 classes", c.NumClasses)
	}
	return nil
}
