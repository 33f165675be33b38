// Package gbdt implements gradient-boosted decision tree training and
// inference for the pulseml engagement models.
//
// The engine supports squared-error regression, binary classification via
// logistic loss, and a simplified multiclass objective that reuses the
// regression gradient rather than softmax cross-entropy. Training covers
// regularized exact split search, row and
// feature subsampling, an adaptive learning-rate schedule, early stopping
// against a validation set, gain-based feature importances, randomized
// hyperparameter search, and full snapshot/restore of trained state.
//
// A minimal session:
//
//	cfg := gbdt.DefaultConfig()
//	cfg.Objective = gbdt.ObjectiveRegression
//	eng, err := gbdt.New(cfg)
//	if err != nil { ... }
//	if err := eng.Fit(X, y); err != nil { ... }
//	pred, err := eng.Predict(X)
//
// All operations are synchronous and single-goroutine from the caller's
// point of view; the only internal parallelism is the read-only per-feature
// split scan, which preserves the sequential tie-breaking order.
package gbdt
