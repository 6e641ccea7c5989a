package forecaster

import (
	"fmt"
	"io"

	"github.com/gamyers/solar-697/forecast"
	"github.com/gamyers/solar-697/stats"
	"github.com/gamyers/solar-697/timedataset"
)

// Prediction is a forecast with its confidence interval
type Prediction = forecast.Prediction

// Results of one forecast request. Variants are listed in the order the forecaster runs them.
type Results struct {
	Locale   Locale                   `json:"locale"`
	Feature  string                   `json:"feature"`
	Train    *timedataset.TimeDataset `json:"train"`
	Test     *timedataset.TimeDataset `json:"test"`
	Variants []VariantResult          `json:"variants"`
}

// VariantResult is the outcome of one forecast variant. If Err is set the variant failed
// and only the fields computed before the failure are populated.
type VariantResult struct {
	Name           string            `json:"name"`
	Summary        *forecast.Summary `json:"summary,omitempty"`
	TestPrediction *Prediction       `json:"test_prediction,omitempty"`
	Forecast       *Prediction       `json:"forecast,omitempty"`
	RMSE           float64           `json:"rmse"`
	Err            error             `json:"-"`
	Error          string            `json:"error,omitempty"`
}

func (v *VariantResult) fail(err error) {
	v.Err = err
	v.Error = err.Error()
}

// Variant returns the result of the named variant
func (r *Results) Variant(name string) (VariantResult, bool) {
	if r == nil {
		return VariantResult{}, false
	}
	for _, v := range r.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantResult{}, false
}

// Best returns the successful variant with the lowest validation RMSE
func (r *Results) Best() (VariantResult, bool) {
	var (
		best  VariantResult
		found bool
	)
	if r == nil {
		return best, false
	}
	for _, v := range r.Variants {
		if v.Err != nil {
			continue
		}
		if !found || v.RMSE < best.RMSE {
			best = v
			found = true
		}
	}
	return best, found
}

func (r *Results) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n", r.Locale, r.Feature); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Train: %d points, Test: %d points\n", r.Train.Len(), r.Test.Len()); err != nil {
		return err
	}
	for _, v := range r.Variants {
		if v.Err != nil {
			if _, err := fmt.Fprintf(w, "%s: failed, %v\n", v.Name, v.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s RMSE: %.3f\n", v.Name, v.RMSE); err != nil {
			return err
		}
		if v.Summary == nil {
			continue
		}
		if err := v.Summary.TablePrint(w, "", "  "); err != nil {
			return err
		}
	}
	return nil
}

// Trends holds the decomposition of every feature of a location
type Trends struct {
	Locale   Locale         `json:"locale"`
	Period   int            `json:"period"`
	Features []FeatureTrend `json:"features"`
}

// FeatureTrend is the decomposition of one feature. Err is set when the feature could not
// be fetched or decomposed.
type FeatureTrend struct {
	Feature       string               `json:"feature"`
	Decomposition *stats.Decomposition `json:"decomposition,omitempty"`
	Err           error                `json:"-"`
	Error         string               `json:"error,omitempty"`
}
