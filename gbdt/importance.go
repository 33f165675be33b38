package gbdt

import "fmt"

// FeatureImportances returns gain-based importance for every feature,
// accumulated over the full ensemble and normalized to sum to 1.0. If no
// split contributed any gain the result is all zeros. The returned slice is
// indexed by feature.
func (e *Engine) FeatureImportances() []float64 {
	importances := make([]float64, e.numFeatures)
	for t := range e.trees {
		accumulateGain(e.trees[t].Root, importances)
	}

	total := 0.0
	for _, v := range importances {
		total += v
	}
	if total <= 0 {
		return importances
	}
	for i := range importances {
		importances[i] /= total
	}
	return importances
}

// NamedFeatureImportances pairs each importance with its feature name.
// Features beyond the configured name list fall back to "feature_i".
func (e *Engine) NamedFeatureImportances() map[string]float64 {
	names := e.FeatureNames()
	importances := e.FeatureImportances()
	out := make(map[string]float64, len(importances))
	for i, v := range importances {
		name := fmt.Sprintf("feature_%d", i)
		if i < len(names) {
			name = names[i]
		}
		out[name] = v
	}
	return out
}

func accumulateGain(n Node, importances []float64) {
	split, ok := n.(*Split)
	if !ok {
		return
	}
	if split.Feature >= 0 && split.Feature < len(importances) {
		importances[split.Feature] += split.Gain
	}
	accumulateGain(split.Left, importances)
	accumulateGain(split.Right, importances)
}
