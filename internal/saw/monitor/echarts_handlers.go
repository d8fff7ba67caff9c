package monitor

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/polymer.report/internal/httputil"
)

// handleScalingChart runs a sweep and renders the log-log scaling curve
// with its fitted line as an HTML chart. This is a debugging endpoint to
// eyeball the fit without any external tooling.
// Query params: range (optional, default from config), trials, seed.
func (ws *WebServer) handleScalingChart(w http.ResponseWriter, r *http.Request) {
	curve, _, ok := ws.runSweepFromQuery(w, r)
	if !ok {
		return
	}

	data := make([]opts.ScatterData, 0, len(curve.Points))
	fit := make([]opts.LineData, 0, len(curve.Points))
	for _, p := range curve.Points {
		if p.BothNorm <= 0 {
			continue
		}
		x := math.Log10(float64(p.N))
		data = append(data, opts.ScatterData{Value: []interface{}{x, math.Log10(p.BothNorm)}})
		fit = append(fit, opts.LineData{Value: []interface{}{x, curve.Intercept + curve.Slope*x}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "SAW Scaling", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "SAW displacement scaling",
			Subtitle: fmt.Sprintf("slope=%.3f nu=%.3f trials=%d", curve.Slope, curve.Nu, curve.Trials),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "log10 N", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "log10 <R^2>", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("measured", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	line := charts.NewLine()
	line.AddSeries("fit", fit)
	scatter.Overlap(line)

	ws.renderChart(w, scatter)
}

// handleSuccessChart renders success rate against walk length for a sweep.
// Query params: range, trials, seed.
func (ws *WebServer) handleSuccessChart(w http.ResponseWriter, r *http.Request) {
	curve, _, ok := ws.runSweepFromQuery(w, r)
	if !ok {
		return
	}

	xs := make([]string, 0, len(curve.Points))
	ys := make([]opts.LineData, 0, len(curve.Points))
	for _, p := range curve.Points {
		xs = append(xs, fmt.Sprintf("%d", p.N))
		ys = append(ys, opts.LineData{Value: p.SuccessRate})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "SAW Success Rate", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Walk completion rate",
			Subtitle: fmt.Sprintf("weighted method, trials=%d", curve.Trials),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "N"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "success %"}),
	)
	line.SetXAxis(xs).AddSeries("success rate", ys)

	ws.renderChart(w, line)
}

// handleTrajectoryChart renders a single walk's path as a scatter coloured
// by visit order. Query params: n (required), method, seed.
func (ws *WebServer) handleTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	snap, rec, ok := ws.runTrajectoryFromQuery(w, r)
	if !ok {
		return
	}

	center := snap.Size / 2
	data := make([]opts.ScatterData, 0, len(snap.Path))
	maxAbs := 1.0
	for i, p := range snap.Path {
		x := float64(p.Col - center)
		y := float64(center - p.Row)
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, i}})
	}
	pad := maxAbs * 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "SAW Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Walk trajectory",
			Subtitle: fmt.Sprintf("steps=%d success=%v weight=%.3g", snap.Steps, rec.Success, rec.Weight),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(snap.Path)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("path", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	ws.renderChart(w, scatter)
}

// chartRenderer is satisfied by every go-echarts chart type.
type chartRenderer interface {
	Render(w io.Writer) error
}

// renderChart writes a chart as a standalone HTML page.
func (ws *WebServer) renderChart(w http.ResponseWriter, c chartRenderer) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
