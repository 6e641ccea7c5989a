package forecaster

import (
	"errors"
	"fmt"

	"github.com/gamyers/solar-697/forecast/options"
)

var ErrInvalidPeriods = errors.New("test and forecast periods must be positive")

// Options configures a Forecaster. It is built once at process start and shared read only
// by every request.
type Options struct {
	// TestPeriods is the number of trailing observations held out to validate each variant
	TestPeriods int `json:"test_periods" yaml:"test_periods"`

	// ForecastPeriods is the number of points forecast past the end of all known data
	ForecastPeriods int `json:"forecast_periods" yaml:"forecast_periods"`

	// Parallel fits the variants concurrently
	Parallel bool `json:"parallel" yaml:"parallel"`

	// DropColumns lists store columns that are never offered as forecastable features
	DropColumns []string `json:"drop_columns" yaml:"drop_columns"`

	// TrendPeriod is the decomposition period used by Trends
	TrendPeriod int `json:"trend_period" yaml:"trend_period"`

	Forecast *options.Options `json:"forecast" yaml:"forecast"`
}

// NewDefaultOptions validates and forecasts five years of monthly data
func NewDefaultOptions() *Options {
	return &Options{
		TestPeriods:     60,
		ForecastPeriods: 60,
		Parallel:        true,
		DropColumns: []string{
			"id", "location_id", "zipcode", "date_time",
			"year", "month", "day", "hour",
		},
		TrendPeriod: 12,
		Forecast:    options.NewDefaultOptions(),
	}
}

// Validate returns the default options if o is nil and otherwise checks the configured values
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.TestPeriods <= 0 || o.ForecastPeriods <= 0 {
		return nil, fmt.Errorf("got %d test and %d forecast periods, %w", o.TestPeriods, o.ForecastPeriods, ErrInvalidPeriods)
	}
	if o.TrendPeriod <= 0 {
		o.TrendPeriod = NewDefaultOptions().TrendPeriod
	}
	fopt, err := o.Forecast.Validate()
	if err != nil {
		return nil, err
	}
	o.Forecast = fopt
	return o, nil
}

// dropped reports whether the column is excluded from the feature list
func (o *Options) dropped(column string) bool {
	for _, c := range o.DropColumns {
		if c == column {
			return true
		}
	}
	return false
}
