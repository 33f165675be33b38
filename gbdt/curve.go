package gbdt

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// PlotLearningCurve renders the per-iteration loss history to an image file
// (format inferred from the extension, e.g. ".png"). The validation curve is
// included when the model was trained with validation data.
func (e *Engine) PlotLearningCurve(filename string) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError("Engine", "PlotLearningCurve")
	}
	history := e.metrics.History
	if len(history) == 0 {
		return errors.NewValueError("PlotLearningCurve", "no training history to plot")
	}

	p := plot.New()
	p.Title.Text = "Learning Curve"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Loss"

	trainPoints := make(plotter.XYs, len(history))
	hasValidation := false
	for i, rec := range history {
		trainPoints[i].X = float64(rec.Iteration)
		trainPoints[i].Y = rec.TrainLoss
		if rec.ValidationLoss != 0 {
			hasValidation = true
		}
	}

	trainLine, err := plotter.NewLine(trainPoints)
	if err != nil {
		return errors.NewModelError("PlotLearningCurve", "train curve", err)
	}
	trainLine.Width = vg.Points(2)
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	if hasValidation {
		valPoints := make(plotter.XYs, len(history))
		for i, rec := range history {
			valPoints[i].X = float64(rec.Iteration)
			valPoints[i].Y = rec.ValidationLoss
		}
		valLine, err := plotter.NewLine(valPoints)
		if err != nil {
			return errors.NewModelError("PlotLearningCurve", "validation curve", err)
		}
		valLine.Width = vg.Points(2)
		valLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(valLine)
		p.Legend.Add("validation", valLine)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return errors.NewModelError("PlotLearningCurve", "save plot", err)
	}
	return nil
}
