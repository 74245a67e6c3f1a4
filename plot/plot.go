// Package plot renders fitted-model figures with gonum/plot: scatter
// plus fitted curve with confidence bands, and named error curves.
package plot

import (
	"image/color"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/statlearn/pkg/errors"
)

// Series is a named (x, y) line for CurvePlot.
type Series struct {
	Name string
	X, Y []float64
}

var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
}

// FitPlot draws training points as a scatter, the fitted curve as a
// solid line, and optional lower/upper band boundaries as dashed lines.
// The band slices may be nil to skip the band.
func FitPlot(title, xLabel, yLabel string, dataX, dataY []float64, fit Series, lower, upper []float64) (*gplot.Plot, error) {
	if len(dataX) != len(dataY) {
		return nil, errors.NewDimensionError("plot.FitPlot", len(dataX), len(dataY), 0)
	}
	if len(fit.X) != len(fit.Y) {
		return nil, errors.NewDimensionError("plot.FitPlot", len(fit.X), len(fit.Y), 0)
	}

	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(dataX))
	for i := range dataX {
		pts[i] = plotter.XY{X: dataX[i], Y: dataY[i]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "plot.FitPlot: scatter")
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.Color = color.RGBA{R: 120, G: 120, B: 120, A: 160}
	p.Add(s)

	line, err := newLine(fit.X, fit.Y, palette[0], false)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	if fit.Name != "" {
		p.Legend.Add(fit.Name, line)
	}

	if lower != nil && upper != nil {
		if len(lower) != len(fit.X) || len(upper) != len(fit.X) {
			return nil, errors.NewDimensionError("plot.FitPlot", len(fit.X), len(lower), 0)
		}
		lo, err := newLine(fit.X, lower, palette[3], true)
		if err != nil {
			return nil, err
		}
		hi, err := newLine(fit.X, upper, palette[3], true)
		if err != nil {
			return nil, err
		}
		p.Add(lo, hi)
	}

	return p, nil
}

// CurvePlot draws one or more named line series with a legend. It is
// used for error-versus-hyperparameter curves and staged boosting error.
func CurvePlot(title, xLabel, yLabel string, series ...Series) (*gplot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.NewValueError("plot.CurvePlot", "no series")
	}

	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return nil, errors.NewDimensionError("plot.CurvePlot", len(s.X), len(s.Y), 0)
		}
		line, err := newLine(s.X, s.Y, palette[i%len(palette)], false)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	return p, nil
}

// SavePNG writes the plot to path at 6x4 inches.
func SavePNG(p *gplot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "plot.SavePNG: %s", path)
	}
	return nil
}

func newLine(x, y []float64, c color.RGBA, dashed bool) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "plot: line")
	}
	line.Color = c
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	return line, nil
}
