// Package forecast implements the two competing seasonal forecast variants. FourierARIMA
// regresses out a Fourier series and models the residual with a non seasonal ARIMA while
// SeasonalARIMA searches a native seasonal ARIMA on the raw series.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/timedataset"
)

var (
	ErrInsufficientData      = fmt.Errorf("insufficient data to fit forecast, %w", arima.ErrInsufficientData)
	ErrFit                   = errors.New("unable to fit forecast")
	ErrUninitializedForecast = errors.New("uninitialized forecast")
	ErrUntrainedForecast     = errors.New("forecast has not been trained")
	ErrNonContiguousUpdate   = errors.New("update observations must follow the last known observation")
	ErrInvalidHorizon        = errors.New("forecast horizon must be positive")
)

// Model is a forecast variant. A Model is fit once on a training series, can then be
// extended with new observations and predicts past the last observation it has seen.
type Model interface {
	Name() string
	Fit(ctx context.Context, td *timedataset.TimeDataset) error
	Predict(h int) (*Prediction, error)
	Update(td *timedataset.TimeDataset) error
	Summary() (Summary, error)
}

// Prediction holds point forecasts with their confidence interval bounds
type Prediction struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Lower    []float64   `json:"lower"`
	Upper    []float64   `json:"upper"`
}

// Len returns the number of forecast points
func (p *Prediction) Len() int {
	if p == nil {
		return 0
	}
	return len(p.T)
}

// Dataset returns the point forecasts as a time dataset
func (p *Prediction) Dataset() (*timedataset.TimeDataset, error) {
	if p == nil {
		return nil, timedataset.ErrNoTrainingData
	}
	return timedataset.NewUnivariateDataset(p.T, p.Forecast)
}

// timeline tracks the observations a model has seen so future timestamps and Fourier
// positions can be generated
type timeline struct {
	freq  timedataset.Frequency
	start time.Time
	end   time.Time
	n     int
}

func newTimeline(td *timedataset.TimeDataset) (timeline, error) {
	freq, err := timedataset.TimeSlice(td.T).InferFrequency()
	if err != nil {
		return timeline{}, fmt.Errorf("unable to infer series frequency, %w", err)
	}
	return timeline{
		freq:  freq,
		start: td.T[0],
		end:   td.T[len(td.T)-1],
		n:     len(td.T),
	}, nil
}

// check verifies that td starts after the last seen observation
func (tl timeline) check(td *timedataset.TimeDataset) error {
	if td.Len() == 0 {
		return nil
	}
	if !td.T[0].After(tl.end) {
		return fmt.Errorf("update starts at %s but last observation is %s, %w",
			td.T[0].Format(time.RFC3339), tl.end.Format(time.RFC3339), ErrNonContiguousUpdate)
	}
	return nil
}

func (tl *timeline) extend(td *timedataset.TimeDataset) {
	if td.Len() == 0 {
		return
	}
	tl.end = td.T[len(td.T)-1]
	tl.n += len(td.T)
}

func (tl timeline) future(h int) []time.Time {
	return tl.freq.Range(tl.end, h)
}

// validateHorizon checks the requested number of forecast points
func validateHorizon(h int) error {
	if h <= 0 {
		return fmt.Errorf("got horizon of %d, %w", h, ErrInvalidHorizon)
	}
	return nil
}

// fitError wraps a search failure so it matches both ErrFit and the underlying cause
func fitError(name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s search interrupted, %w", name, err)
	}
	return fmt.Errorf("%s: %w, %w", name, ErrFit, err)
}
