package gbdt

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/pulsemetrics/pulseml/core/model"
	"github.com/pulsemetrics/pulseml/metrics"
	"github.com/pulsemetrics/pulseml/pkg/errors"
	"github.com/pulsemetrics/pulseml/pkg/log"
)

// trainingState tracks the engine lifecycle. Transitions are strictly
// forward within one Fit call; Restore moves an idle engine straight to
// trained.
type trainingState int

const (
	stateIdle trainingState = iota
	stateTraining
	stateTrained
)

// lrDecayBase and lrDecayScale control the adaptive learning-rate schedule
// applied at each boosting iteration.
const (
	lrDecayBase  = 0.99
	lrDecayScale = 100.0
)

// ValidationData carries the held-out set used for early stopping.
type ValidationData struct {
	X *mat.Dense
	Y *mat.VecDense
}

// ConvergenceRecord is one iteration's entry in the training history.
type ConvergenceRecord struct {
	Iteration      int     `json:"iteration"`
	LearningRate   float64 `json:"learning_rate"`
	TrainLoss      float64 `json:"train_loss"`
	ValidationLoss float64 `json:"validation_loss,omitempty"`
}

// Metrics summarizes a completed training run.
type Metrics struct {
	History            []ConvergenceRecord `json:"history"`
	BestIteration      int                 `json:"best_iteration"`
	BestValidationLoss float64             `json:"best_validation_loss,omitempty"`
	StoppedEarly       bool                `json:"stopped_early"`
	NumTrees           int                 `json:"num_trees"`
	FeatureImportances map[string]float64  `json:"feature_importances,omitempty"`
	TrainDuration      time.Duration       `json:"train_duration_ns"`
}

// Engine trains and serves a gradient-boosted tree ensemble. It is not safe
// for concurrent use while Fit is running; a trained engine may serve
// Predict from multiple goroutines.
type Engine struct {
	model.BaseEstimator

	config    TrainingConfig
	objective ObjectiveFunction
	rng       *rand.Rand

	trees        Ensemble
	featureNames []string
	numFeatures  int
	metrics      Metrics
	state        trainingState
}

// New builds an engine from the given configuration. The configuration is
// validated eagerly so a misconfigured engine fails at construction, not
// mid-training.
func New(config TrainingConfig) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	obj, err := newObjective(config)
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		config:    config,
		objective: obj,
		rng:       rand.New(rand.NewSource(seed)),
		state:     stateIdle,
	}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() TrainingConfig {
	return e.config
}

// Trees returns the trained ensemble. The slice must be treated as
// read-only.
func (e *Engine) Trees() Ensemble {
	return e.trees
}

// Metrics returns the training summary of the last Fit call.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// SetFeatureNames attaches human-readable names used by feature importance
// reports and snapshots. Names may be set before or after training.
func (e *Engine) SetFeatureNames(names []string) {
	e.featureNames = names
}

// FeatureNames returns the configured names, generating "feature_i"
// placeholders when none were set and the feature count is known.
func (e *Engine) FeatureNames() []string {
	if len(e.featureNames) > 0 {
		return e.featureNames
	}
	names := make([]string, e.numFeatures)
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	return names
}

// Fit trains the ensemble on X and y without a validation set. Early
// stopping is inactive; all configured trees are built.
func (e *Engine) Fit(X *mat.Dense, y *mat.VecDense) error {
	return e.FitWithValidation(X, y, nil)
}

// FitWithValidation trains the ensemble, evaluating val after each
// iteration when it is non-nil. With early stopping configured, training
// halts once the validation loss has not strictly improved for the
// configured number of rounds; trees built after the best iteration are
// kept but ignored by Predict.
func (e *Engine) FitWithValidation(X *mat.Dense, y *mat.VecDense, val *ValidationData) (err error) {
	// Deferred in this order so the panic conversion runs before the state
	// rollback inspects err.
	defer func() {
		if err != nil && e.state == stateTraining {
			e.state = stateIdle
		}
	}()
	defer errors.Recover(&err, "gbdt.FitWithValidation")

	logger := log.GetLoggerWithName("gbdt.trainer")

	if e.state == stateTraining {
		return errors.NewValueError("Fit", "training already in progress")
	}
	if X == nil || y == nil {
		return errors.NewValidationError("X", "training data must not be nil", nil)
	}
	numRows, numFeatures := X.Dims()
	if numRows == 0 || numFeatures == 0 {
		return errors.NewValidationError("X", "training data must not be empty", fmt.Sprintf("%dx%d", numRows, numFeatures))
	}
	if y.Len() != numRows {
		return errors.NewDimensionError("Fit", numRows, y.Len(), 0)
	}
	if val != nil {
		if val.X == nil || val.Y == nil {
			return errors.NewValidationError("validation", "validation data must not be nil", nil)
		}
		valRows, valCols := val.X.Dims()
		if valCols != numFeatures {
			return errors.NewDimensionError("Fit", numFeatures, valCols, 1)
		}
		if val.Y.Len() != valRows {
			return errors.NewDimensionError("Fit", valRows, val.Y.Len(), 0)
		}
	}

	e.state = stateTraining
	e.Reset()
	e.trees = e.trees[:0]
	e.numFeatures = numFeatures
	e.metrics = Metrics{}
	start := time.Now()

	targets := vecToSlice(y)
	predictions := make([]float64, numRows)
	grads := make([]float64, numRows)
	hess := make([]float64, numRows)

	var valTargets, valPredictions []float64
	var valRowCount int
	if val != nil {
		valRowCount, _ = val.X.Dims()
		valTargets = vecToSlice(val.Y)
		valPredictions = make([]float64, valRowCount)
	}

	sampler := newSampler(e.config, e.rng)
	builder := newTreeBuilder(e.config)

	bestValLoss := math.Inf(1)
	bestIteration := 0
	roundsWithoutImprovement := 0
	stoppedEarly := false
	rowBuf := make([]float64, numFeatures)

	for iter := 0; iter < e.config.NumTrees; iter++ {
		lr := e.config.LearningRate * math.Pow(lrDecayBase, float64(iter)/lrDecayScale)

		computeGradients(e.objective, predictions, targets, grads, hess)

		sampledRows := sampler.SampleRows(numRows, iter)
		sampledFeatures := sampler.SampleFeatures(numFeatures)

		tree := builder.Build(X, grads, hess, sampledRows, sampledFeatures, lr)
		e.trees = append(e.trees, tree)

		for i := 0; i < numRows; i++ {
			mat.Row(rowBuf, i, X)
			predictions[i] += tree.Predict(rowBuf)
		}

		record := ConvergenceRecord{
			Iteration:    iter,
			LearningRate: lr,
			TrainLoss:    meanLoss(e.objective, predictions, targets),
		}

		if val != nil {
			for i := 0; i < valRowCount; i++ {
				mat.Row(rowBuf, i, val.X)
				valPredictions[i] += tree.Predict(rowBuf)
			}
			valLoss := meanLoss(e.objective, valPredictions, valTargets)
			record.ValidationLoss = valLoss

			if valLoss < bestValLoss {
				bestValLoss = valLoss
				bestIteration = iter
				roundsWithoutImprovement = 0
			} else {
				roundsWithoutImprovement++
			}
		}

		e.metrics.History = append(e.metrics.History, record)

		if val != nil && e.config.EarlyStoppingRounds > 0 &&
			roundsWithoutImprovement >= e.config.EarlyStoppingRounds {
			stoppedEarly = true
			logger.Info("early stopping",
				"iteration", iter,
				"best_iteration", bestIteration,
				"best_validation_loss", bestValLoss)
			break
		}

		if (iter+1)%10 == 0 {
			logger.Debug("training progress",
				"iteration", iter,
				"train_loss", record.TrainLoss,
				"validation_loss", record.ValidationLoss)
		}
	}

	if val == nil {
		bestIteration = len(e.trees) - 1
		bestValLoss = 0
	} else if e.config.EarlyStoppingRounds > 0 && !stoppedEarly {
		errors.Warn(errors.NewConvergenceWarning("gbdt", e.config.NumTrees,
			"early stopping did not trigger within the iteration budget"))
	}

	e.metrics.BestIteration = bestIteration
	e.metrics.BestValidationLoss = bestValLoss
	e.metrics.StoppedEarly = stoppedEarly
	e.metrics.NumTrees = len(e.trees)
	e.metrics.TrainDuration = time.Since(start)

	e.state = stateTrained
	e.SetFitted()
	e.metrics.FeatureImportances = e.NamedFeatureImportances()

	logger.Info("training complete",
		"objective", e.objective.Name(),
		"trees", len(e.trees),
		"best_iteration", bestIteration,
		"duration", e.metrics.TrainDuration)
	return nil
}

// Score returns the default evaluation of the model on X and y: R² for
// regression and multiclass, accuracy for binary classification.
func (e *Engine) Score(X *mat.Dense, y *mat.VecDense) (float64, error) {
	pred, err := e.Predict(X)
	if err != nil {
		return 0, err
	}
	if e.config.Objective == ObjectiveBinary {
		return metrics.Accuracy(y, pred)
	}
	return metrics.R2Score(y, pred)
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
