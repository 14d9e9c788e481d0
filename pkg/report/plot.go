package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth       = "1200px"
	chartHeight      = "500px"
	topTokensLimit   = 30
	xAxisRotate      = 45
	minSymbolSize    = 6
	symbolSizePerSec = 40
	msPerSecond      = 1000
)

// RenderPlot writes an HTML page with dwell-time, fixation timeline and
// gaze position charts.
func RenderPlot(w io.Writer, r *Report) error {
	page := components.NewPage()
	page.PageTitle = "codegaze: " + r.Recording

	page.AddCharts(
		dwellChart(r),
		timelineChart(r),
		gazeChart(r),
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func globalOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	}
}

// dwellChart ranks tokens by summed dwell time.
func dwellChart(r *Report) *charts.Bar {
	type kv struct {
		k string
		v int64
	}

	items := make([]kv, 0, len(r.Summary.TokenDwellTimes))
	for k, v := range r.Summary.TokenDwellTimes {
		items = append(items, kv{k, v})
	}

	slices.SortFunc(items, func(a, b kv) int {
		if c := cmp.Compare(b.v, a.v); c != 0 {
			return c
		}

		return cmp.Compare(a.k, b.k)
	})

	if len(items) > topTokensLimit {
		items = items[:topTokensLimit]
	}

	labels := make([]string, len(items))
	data := make([]opts.BarData, len(items))

	for i, it := range items {
		labels[i] = quote(it.k)
		data[i] = opts.BarData{Value: it.v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOpts("Dwell time by token", "Merged I-VT fixations, ms"),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)...)
	bar.SetXAxis(labels).AddSeries("Dwell", data)

	return bar
}

// timelineChart plots token fixation durations against their start time.
func timelineChart(r *Report) *charts.Bar {
	labels := make([]string, len(r.TokenFixations))
	data := make([]opts.BarData, len(r.TokenFixations))

	for i, rec := range r.TokenFixations {
		labels[i] = strconv.FormatInt(rec.StartTime, 10)
		data[i] = opts.BarData{Name: quote(rec.Value), Value: rec.DurationMS}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOpts("Token fixation timeline", "Duration per fixation by start time"),
		charts.WithXAxisOpts(opts.XAxis{Name: "start ms"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)...)
	bar.SetXAxis(labels).AddSeries("Fixations", data)

	return bar
}

// gazeChart scatters I-VT centroids, sized by duration.
func gazeChart(r *Report) *charts.Scatter {
	data := make([]opts.ScatterData, len(r.IVTFixations))

	for i, f := range r.IVTFixations {
		data[i] = opts.ScatterData{
			Value:      []any{f.CentroidX, f.CentroidY, tokenValues(f.ASTTokens)},
			SymbolSize: minSymbolSize + int(f.DurationMS*symbolSizePerSec/msPerSecond),
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(globalOpts("Fixation positions", "I-VT centroids, symbol size by duration"),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "value"}),
	)...)
	scatter.AddSeries("Fixations", data)

	return scatter
}
