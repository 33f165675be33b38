package gbdt

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/pulsemetrics/pulseml/pkg/log"
)

// Range is a closed interval of float64 hyperparameter values.
type Range struct {
	Min float64
	Max float64
}

func (r *Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntRange is a closed interval of integer hyperparameter values.
type IntRange struct {
	Min int
	Max int
}

func (r *IntRange) sample(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// SearchSpace declares which hyperparameters random search may vary and
// over which ranges. Nil fields keep the base configuration's value.
type SearchSpace struct {
	NumTrees        *IntRange
	LearningRate    *Range
	MaxDepth        *IntRange
	MinDataInLeaf   *IntRange
	FeatureFraction *Range
	BaggingFraction *Range
	LambdaL1        *Range
	LambdaL2        *Range
}

func (s SearchSpace) sample(base TrainingConfig, rng *rand.Rand) TrainingConfig {
	cfg := base
	if s.NumTrees != nil {
		cfg.NumTrees = s.NumTrees.sample(rng)
	}
	if s.LearningRate != nil {
		cfg.LearningRate = s.LearningRate.sample(rng)
	}
	if s.MaxDepth != nil {
		cfg.MaxDepth = s.MaxDepth.sample(rng)
	}
	if s.MinDataInLeaf != nil {
		cfg.MinDataInLeaf = s.MinDataInLeaf.sample(rng)
	}
	if s.FeatureFraction != nil {
		cfg.FeatureFraction = s.FeatureFraction.sample(rng)
	}
	if s.BaggingFraction != nil {
		cfg.BaggingFraction = s.BaggingFraction.sample(rng)
	}
	if s.LambdaL1 != nil {
		cfg.LambdaL1 = s.LambdaL1.sample(rng)
	}
	if s.LambdaL2 != nil {
		cfg.LambdaL2 = s.LambdaL2.sample(rng)
	}
	return cfg
}

// RandomSearch samples trial configurations from the space, trains each one
// and returns the configuration with the lowest loss. With validation data
// the criterion is the best validation loss; without it, the final training
// loss. Trials that fail to train are logged and skipped. If every trial
// fails, or trials is not positive, the base configuration is returned
// unchanged.
func RandomSearch(base TrainingConfig, space SearchSpace, trials int, X *mat.Dense, y *mat.VecDense, val *ValidationData) TrainingConfig {
	logger := log.GetLoggerWithName("gbdt.search")

	seed := base.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	bestLoss := math.Inf(1)
	bestConfig := base
	found := false

	for trial := 0; trial < trials; trial++ {
		cfg := space.sample(base, rng)

		engine, err := New(cfg)
		if err != nil {
			logger.Warn("trial skipped", "trial", trial, log.ErrAttr(err))
			continue
		}
		if err := engine.FitWithValidation(X, y, val); err != nil {
			logger.Warn("trial failed", "trial", trial, log.ErrAttr(err))
			continue
		}

		loss := trialLoss(engine, val != nil)
		logger.Debug("trial complete", "trial", trial, "loss", loss)

		if loss < bestLoss {
			bestLoss = loss
			bestConfig = cfg
			found = true
		}
	}

	if !found {
		logger.Warn("no trial succeeded, returning base configuration", "trials", trials)
		return base
	}

	logger.Info("search complete", "trials", trials, "best_loss", bestLoss)
	return bestConfig
}

func trialLoss(engine *Engine, hasValidation bool) float64 {
	m := engine.Metrics()
	if hasValidation {
		return m.BestValidationLoss
	}
	if len(m.History) == 0 {
		return math.Inf(1)
	}
	return m.History[len(m.History)-1].TrainLoss
}
