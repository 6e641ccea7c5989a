package forecaster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"text/tabwriter"

	"github.com/gamyers/solar-697/timedataset"
	"gonum.org/v1/gonum/stat"
)

var ErrNoObservations = errors.New("feature has no observations")

// FeatureStats are the descriptive statistics of one feature. Quantiles are linearly
// interpolated on the empirical distribution. Err is set when the feature could not be
// fetched or has no observations.
type FeatureStats struct {
	Feature string  `json:"feature"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"25%"`
	Median  float64 `json:"50%"`
	Q75     float64 `json:"75%"`
	Max     float64 `json:"max"`

	Data  *timedataset.TimeDataset `json:"-"`
	Err   error                    `json:"-"`
	Error string                   `json:"error,omitempty"`
}

// Description holds the statistics of every feature of a location
type Description struct {
	Locale   Locale         `json:"locale"`
	Features []FeatureStats `json:"features"`
}

// describeValues computes the statistics of y ignoring NaN values
func describeValues(y []float64) (FeatureStats, error) {
	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return FeatureStats{}, ErrNoObservations
	}
	slices.Sort(sorted)

	res := FeatureStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
	}
	res.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		res.Std = stat.StdDev(sorted, nil)
	}
	return res, nil
}

// Describe computes the descriptive statistics of every feature of a location. Features that
// cannot be fetched are reported in their own entry rather than failing the whole description.
func (f *Forecaster) Describe(ctx context.Context, zipcode string) (*Description, error) {
	features, err := f.Features(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	res := &Description{
		Locale:   f.locale(ctx, zipcode),
		Features: make([]FeatureStats, 0, len(features)),
	}
	for _, feature := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		td, err := f.store.Series(ctx, zipcode, feature)
		var fs FeatureStats
		if err == nil {
			td = td.DropNan()
			fs, err = describeValues(td.Y)
		}
		fs.Feature = feature
		if err != nil {
			slog.Warn("unable to describe feature", "zipcode", zipcode, "feature", feature, "error", err)
			fs.Err = err
			fs.Error = err.Error()
		} else {
			fs.Data = td
		}
		res.Features = append(res.Features, fs)
	}
	return res, nil
}

// TablePrint writes the statistics as a table with one feature per row
func (d *Description) TablePrint(w io.Writer) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s\n", d.Locale)
	fmt.Fprintf(tbl, "feature\tcount\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\t\n")
	for _, fs := range d.Features {
		if fs.Err != nil {
			fmt.Fprintf(tbl, "%s\t%s\t\n", fs.Feature, fs.Error)
			continue
		}
		fmt.Fprintf(tbl, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			fs.Feature, fs.Count, fs.Mean, fs.Std, fs.Min, fs.Q25, fs.Median, fs.Q75, fs.Max)
	}
	return tbl.Flush()
}
