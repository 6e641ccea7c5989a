package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoResults = errors.New("no results to plot")

const axisLayout = "2006-01-02"

// lineValues converts a series to chart points leaving gaps for NaN values
func lineValues(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func axisLabels(t []time.Time) []string {
	labels := make([]string, len(t))
	for i, ts := range t {
		labels[i] = ts.Format(axisLayout)
	}
	return labels
}

func newLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    title,
				Subtitle: subtitle,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
	)
	return line
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. Every
// series in y must have the same length as the time slice. NaN values are drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := newLine(title, "")
	line.SetXAxis(axisLabels(t))
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line.AddSeries(series, lineValues(y[i]))
	}
	return line
}

// placeAt spreads a prediction over the full plot timeline starting at offset
func placeAt(n, offset int, vals []float64) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	for i, v := range vals {
		if offset+i < n {
			res[offset+i] = v
		}
	}
	return res
}

// LineForecast charts the observed series against every variant's test prediction and
// forecast. Each variant title carries its validation RMSE.
func LineForecast(res *Results) *charts.Line {
	nTrain, nTest := res.Train.Len(), res.Test.Len()
	observed := make([]float64, 0, nTrain+nTest)
	t := make([]time.Time, 0, nTrain+nTest)
	if res.Train != nil {
		observed = append(observed, res.Train.Y...)
		t = append(t, res.Train.T...)
	}
	if res.Test != nil {
		observed = append(observed, res.Test.Y...)
		t = append(t, res.Test.T...)
	}

	var horizon int
	for _, v := range res.Variants {
		if v.Forecast != nil {
			horizon = max(horizon, v.Forecast.Len())
		}
	}
	for _, v := range res.Variants {
		if v.Forecast != nil && v.Forecast.Len() == horizon {
			t = append(t, v.Forecast.T...)
			break
		}
	}
	n := len(t)

	subtitle := res.Locale.String()
	line := newLine(fmt.Sprintf("%s forecast", res.Feature), subtitle)
	line.SetXAxis(axisLabels(t)).
		AddSeries("observed", lineValues(placeAt(n, 0, observed)))

	for _, v := range res.Variants {
		if v.Err != nil {
			continue
		}
		name := fmt.Sprintf("%s (RMSE %.3f)", v.Name, v.RMSE)
		if v.TestPrediction != nil {
			line.AddSeries(name, lineValues(placeAt(n, nTrain, v.TestPrediction.Forecast)))
		}
		if v.Forecast != nil {
			offset := nTrain + nTest
			line.AddSeries(v.Name+" forecast", lineValues(placeAt(n, offset, v.Forecast.Forecast))).
				AddSeries(v.Name+" upper", lineValues(placeAt(n, offset, v.Forecast.Upper))).
				AddSeries(v.Name+" lower", lineValues(placeAt(n, offset, v.Forecast.Lower)))
		}
	}
	return line
}

// PlotForecast renders the forecast results as an html page
func PlotForecast(w io.Writer, res *Results) error {
	if res == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	page.AddCharts(LineForecast(res))
	return page.Render(w)
}

// PlotTrends renders one decomposition chart per successfully decomposed feature
func PlotTrends(w io.Writer, trends *Trends) error {
	if trends == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	for _, ft := range trends.Features {
		if ft.Decomposition == nil {
			continue
		}
		d := ft.Decomposition
		page.AddCharts(
			LineTSeries(
				fmt.Sprintf("%s %s decomposition", trends.Locale, ft.Feature),
				[]string{"observed", "trend", "seasonal", "residual"},
				d.T,
				[][]float64{d.Observed, d.Trend, d.Seasonal, d.Residual},
			),
		)
	}
	return page.Render(w)
}

// PlotData renders the observed series of every described feature, one chart per feature
func PlotData(w io.Writer, desc *Description) error {
	if desc == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	for _, fs := range desc.Features {
		if fs.Data == nil {
			continue
		}
		line := newLine(fs.Feature, desc.Locale.String())
		line.SetXAxis(axisLabels(fs.Data.T)).AddSeries(fs.Feature, lineValues(fs.Data.Y))
		page.AddCharts(line)
	}
	return page.Render(w)
}

// histogram bins the sorted values into equal width bins, choosing the bin count with
// Sturges' rule. The labels are the lower edge of each bin.
func histogram(sorted []float64) ([]string, []float64) {
	if len(sorted) == 0 {
		return nil, nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	bins := 1
	if hi > lo {
		bins = min(50, int(math.Ceil(math.Log2(float64(len(sorted)))))+1)
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.4g", dividers[i])
	}
	return labels, counts
}

// BarHistogram charts the distribution of one feature
func BarHistogram(title, subtitle string, y []float64) *charts.Bar {
	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	slices.Sort(sorted)
	labels, counts := histogram(sorted)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(labels).AddSeries(title, data)
	return bar
}

// PlotHistograms renders the distribution of every described feature, one chart per feature
func PlotHistograms(w io.Writer, desc *Description) error {
	if desc == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	for _, fs := range desc.Features {
		if fs.Data == nil {
			continue
		}
		page.AddCharts(BarHistogram(fs.Feature+" distribution", desc.Locale.String(), fs.Data.Y))
	}
	return page.Render(w)
}
