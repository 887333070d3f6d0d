package writer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/insightdelivered/bet-history-analyzer/internal/models"
	"github.com/insightdelivered/bet-history-analyzer/internal/stats"
)

var (
	profitLine = drawing.ColorFromHex("2e7d32")
	profitDot  = drawing.ColorFromHex("f9a825")
	chartText  = drawing.ColorFromHex("333333")
)

// RenderProfitChart draws cumulative profit over time as a PNG. Points with
// an unparsed date are left off the axis. A placeholder image is returned
// when fewer than two distinct dates remain.
func RenderProfitChart(timeline models.ProfitTimeline) (png []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chart rendering crashed: %v", r)
		}
	}()

	var xs []time.Time
	var ys []float64
	for i, d := range timeline.Dates {
		if i >= len(timeline.Profits) {
			break
		}
		t, perr := time.Parse(stats.TimelineDateLayout, d)
		if perr != nil {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, timeline.Profits[i])
	}

	if len(xs) < 2 || xs[0].Equal(xs[len(xs)-1]) {
		return renderNoDataPlaceholder("Not enough dated bets to chart")
	}

	yAxis := chart.YAxis{
		Name:  "Cumulative profit",
		Style: chart.Style{FontColor: chartText},
	}
	if lo, hi := minMax(ys); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Date placed",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: chartText},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Profit",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: profitLine,
					StrokeWidth: 2,
					DotWidth:    3,
					DotColor:    profitDot,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render profit chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:  chart.YAxis{Style: chart.Style{Hidden: true}},
		// go-chart refuses to render without a series.
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   chart.Style{Hidden: true},
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render placeholder chart: %w", err)
	}
	return buf.Bytes(), nil
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
