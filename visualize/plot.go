// Package visualize renders the actual-vs-predicted comparison plots of a
// regression run as PNG files.
package visualize

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/tripml/pkg/errors"
)

// ActualVsPredicted draws a scatter of predictions against ground truth with
// the identity line as reference and saves it as a PNG at path.
func ActualVsPredicted(yTrue, yPred *mat.VecDense, path string) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError("visualize.ActualVsPredicted", "empty vector")
	}
	if yPred.Len() != n {
		return errors.NewDimensionError("visualize.ActualVsPredicted", n, yPred.Len(), 0)
	}

	pts := make(plotter.XYs, n)
	lo, hi := yTrue.AtVec(0), yTrue.AtVec(0)
	for i := 0; i < n; i++ {
		actual := yTrue.AtVec(i)
		pts[i].X = actual
		pts[i].Y = yPred.AtVec(i)

		if actual < lo {
			lo = actual
		}
		if actual > hi {
			hi = actual
		}
	}

	p := plot.New()
	p.Title.Text = "Actual vs Predicted"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "visualize.ActualVsPredicted: scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{B: 180, A: 255}

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "visualize.ActualVsPredicted: identity line")
	}
	identity.LineStyle.Color = color.RGBA{R: 200, A: 255}

	p.Add(scatter, identity)
	p.Legend.Add("y = x", identity)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "visualize.ActualVsPredicted: save %s", path)
	}
	return nil
}

// Residuals draws the residuals (actual - predicted) against the predicted
// values and saves it as a PNG at path.
func Residuals(yTrue, yPred *mat.VecDense, path string) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError("visualize.Residuals", "empty vector")
	}
	if yPred.Len() != n {
		return errors.NewDimensionError("visualize.Residuals", n, yPred.Len(), 0)
	}

	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = yPred.AtVec(i)
		pts[i].Y = yTrue.AtVec(i) - yPred.AtVec(i)
	}

	p := plot.New()
	p.Title.Text = "Residuals"
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "residual"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "visualize.Residuals: scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{B: 180, A: 255}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.LineStyle.Color = color.RGBA{R: 200, A: 255}

	p.Add(scatter, zero)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "visualize.Residuals: save %s", path)
	}
	return nil
}
