package report

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/heartml/heartml/model_selection"
	"github.com/heartml/heartml/pkg/errors"
	"github.com/heartml/heartml/validation"
)

// correlationGrid adapts a correlation report to the plotter grid interface.
// Row 0 of the matrix is drawn at the top of the heatmap.
type correlationGrid struct {
	report *validation.Report
}

func (g correlationGrid) Dims() (int, int) {
	n := len(g.report.FeatureNames)
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	n := len(g.report.FeatureNames)
	return g.report.Matrix.At(n-1-r, c)
}

func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }

// SaveCorrelationHeatmap renders the pairwise feature correlation matrix as a
// heatmap image.
func SaveCorrelationHeatmap(report *validation.Report, path string) error {
	grid := correlationGrid{report: report}
	heatmap := plotter.NewHeatMap(grid, moreland.SmoothBlueRed().Palette(255))
	heatmap.Min = -1
	heatmap.Max = 1

	p := plot.New()
	p.Title.Text = "Feature correlation"
	p.Add(heatmap)

	n := len(report.FeatureNames)
	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, name := range report.FeatureNames {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
		yTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = -0.9

	if err := p.Save(8*vg.Inch, 7*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// SaveCVCurve renders the mean train and validation scores of a grid search
// as a line chart over the hyperparameter axis. logX switches the parameter
// axis to a log scale, used for the regularization grid.
func SaveCVCurve(result *model_selection.GridSearchResult, path string, logX bool) error {
	trainPts := make(plotter.XYs, len(result.Scores))
	validationPts := make(plotter.XYs, len(result.Scores))
	for i, score := range result.Scores {
		trainPts[i] = plotter.XY{X: score.Param, Y: score.MeanTrainScore}
		validationPts[i] = plotter.XY{X: score.Param, Y: score.MeanValidationScore}
	}

	trainLine, err := plotter.NewLine(trainPts)
	if err != nil {
		return errors.Wrap(err, "report: train score line")
	}
	trainLine.LineStyle.Width = vg.Points(1.5)
	trainLine.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}

	validationLine, err := plotter.NewLine(validationPts)
	if err != nil {
		return errors.Wrap(err, "report: validation score line")
	}
	validationLine.LineStyle.Width = vg.Points(1.5)
	validationLine.Color = color.RGBA{R: 220, G: 90, B: 60, A: 255}

	p := plot.New()
	p.Title.Text = result.Candidate + " cross-validation accuracy"
	p.X.Label.Text = "hyperparameter"
	p.Y.Label.Text = "mean accuracy"
	if logX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	p.Add(trainLine, validationLine)
	p.Legend.Add("train", trainLine)
	p.Legend.Add("validation", validationLine)
	p.Legend.Top = false

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}
