package scaling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/polymer.report/internal/monitoring"
	"github.com/banshee-data/polymer.report/internal/saw"
	"github.com/banshee-data/polymer.report/internal/saw/ensemble"
)

// Point is one ensemble's worth of statistics at a single walk length.
type Point struct {
	N           int     `json:"n"`
	SuccessRate float64 `json:"success_rate"`
	SuccessNorm float64 `json:"success_norm"`
	FailNorm    float64 `json:"fail_norm"`
	BothNorm    float64 `json:"both_norm"`
}

// Curve is the result of a full scaling sweep: the per-N statistics and the
// ordinary-least-squares fit of log10(both-norm) against log10(N).
//
// The fitted slope of log<R^2> vs log N estimates 2*nu, so Nu is Slope/2;
// for 2D self-avoiding walks Nu should land near 0.75.
type Curve struct {
	Points    []Point `json:"points"`
	Trials    int     `json:"trials"`
	Seed      int64   `json:"seed"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Nu        float64 `json:"nu"`
}

// Sweep runs a weighted-method ensemble for every walk length in ns and
// fits the scaling law across the results. gridMargin sizes each lattice as
// margin*N + 3; non-positive selects the default. The seed is offset per
// length so each ensemble draws an independent stream while the whole sweep
// stays reproducible.
func Sweep(ns []int, gridMargin, trials int, seed int64, workers int) (*Curve, error) {
	if len(ns) == 0 {
		return nil, fmt.Errorf("scaling sweep needs at least one walk length")
	}

	c := &Curve{
		Points: make([]Point, 0, len(ns)),
		Trials: trials,
		Seed:   seed,
	}

	for i, n := range ns {
		// Offset the seed per length so per-trial streams never overlap
		// between ensembles (ensemble derives trial seeds as seed+index).
		res, err := ensemble.Run(n, saw.GridSize(gridMargin, n), trials, saw.Weighted, seed+int64(i)*1_000_000, workers)
		if err != nil {
			return nil, fmt.Errorf("sweeping N=%d: %w", n, err)
		}
		c.Points = append(c.Points, Point{
			N:           n,
			SuccessRate: res.Stats.SuccessRate,
			SuccessNorm: res.Stats.SuccessNorm,
			FailNorm:    res.Stats.FailNorm,
			BothNorm:    res.Stats.BothNorm,
		})
		monitoring.Logf("scaling: N=%d success=%.1f%% both=%.3f", n, res.Stats.SuccessRate, res.Stats.BothNorm)
	}

	c.Intercept, c.Slope = fitLogLog(c.Points)
	c.Nu = c.Slope / 2
	return c, nil
}

// fitLogLog fits log10(both-norm) against log10(N) by ordinary least
// squares, skipping points whose estimator is not positive (a fully trapped
// batch contributes nothing to the fit).
func fitLogLog(points []Point) (intercept, slope float64) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.BothNorm <= 0 {
			continue
		}
		xs = append(xs, math.Log10(float64(p.N)))
		ys = append(ys, math.Log10(p.BothNorm))
	}
	if len(xs) < 2 {
		return 0, 0
	}
	return stat.LinearRegression(xs, ys, nil, false)
}
