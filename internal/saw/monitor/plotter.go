package monitor

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/polymer.report/internal/saw"
	"github.com/banshee-data/polymer.report/internal/saw/scaling"
)

// SaveScalingPlot writes a PNG of the log-log scaling curve with the fitted
// line, for offline runs where the chart endpoints are not available.
func SaveScalingPlot(curve *scaling.Curve, filename string) error {
	pts := make(plotter.XYs, 0, len(curve.Points))
	fit := make(plotter.XYs, 0, len(curve.Points))
	for _, p := range curve.Points {
		if p.BothNorm <= 0 {
			continue
		}
		x := math.Log10(float64(p.N))
		pts = append(pts, plotter.XY{X: x, Y: math.Log10(p.BothNorm)})
		fit = append(fit, plotter.XY{X: x, Y: curve.Intercept + curve.Slope*x})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no positive displacement estimates to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("SAW displacement scaling (nu=%.3f)", curve.Nu)
	p.X.Label.Text = "log10 N"
	p.Y.Label.Text = "log10 <R^2>"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scaling scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("measured", scatter)

	line, err := plotter.NewLine(fit)
	if err != nil {
		return fmt.Errorf("fit line: %w", err)
	}
	line.Color = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("fit slope %.3f", curve.Slope), line)

	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("save scaling plot: %w", err)
	}
	return nil
}

// SaveSuccessPlot writes a PNG of completion rate against walk length.
func SaveSuccessPlot(curve *scaling.Curve, filename string) error {
	pts := make(plotter.XYs, 0, len(curve.Points))
	for _, pt := range curve.Points {
		pts = append(pts, plotter.XY{X: float64(pt.N), Y: pt.SuccessRate})
	}

	p := plot.New()
	p.Title.Text = "Walk completion rate"
	p.X.Label.Text = "N"
	p.Y.Label.Text = "success %"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("success line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("save success plot: %w", err)
	}
	return nil
}

// SaveTrajectoryPlot writes a PNG of one walk's path, centred on the start
// cell.
func SaveTrajectoryPlot(snap saw.Snapshot, filename string) error {
	if len(snap.Path) == 0 {
		return fmt.Errorf("snapshot has no path to plot")
	}

	center := snap.Size / 2
	pts := make(plotter.XYs, 0, len(snap.Path))
	for _, pos := range snap.Path {
		pts = append(pts, plotter.XY{
			X: float64(pos.Col - center),
			Y: float64(center - pos.Row),
		})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("SAW trajectory (%d steps)", snap.Steps)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("trajectory line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	start, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return fmt.Errorf("start marker: %w", err)
	}
	start.GlyphStyle.Radius = vg.Points(3)
	start.GlyphStyle.Color = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	p.Add(start)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, filename); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}
