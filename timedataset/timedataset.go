package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrInvalidHorizon     = errors.New("horizon must be positive and smaller than the series length")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length and the time points must be strictly increasing.
type TimeDataset struct {
	T []time.Time `json:"time"`
	Y []float64   `json:"values"`
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
// The input slices are copied.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// Len returns the number of observations. A nil dataset has no observations.
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

// Copy returns a deep copy of the dataset
func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.Y))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// Slice returns a copy of the observations in the half open index range [start, end).
func (td *TimeDataset) Slice(start, end int) *TimeDataset {
	if td == nil {
		return nil
	}
	start = max(start, 0)
	end = min(end, td.Len())
	if start > end {
		start = end
	}
	tSeries := make([]time.Time, end-start)
	ySeries := make([]float64, end-start)
	copy(tSeries, td.T[start:end])
	copy(ySeries, td.Y[start:end])
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// DropNan returns a copy of the dataset without the points whose value is NaN.
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	for i, v := range td.Y {
		if math.IsNaN(v) {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, v)
	}
	return res
}

// Split partitions a series into a training prefix and a test suffix where the test
// suffix holds the last h observations. Both halves keep their original timestamps.
type Split struct {
	Train *TimeDataset `json:"train"`
	Test  *TimeDataset `json:"test"`
}

// Split returns the train/test partition with the final h observations held out for testing.
// The horizon must satisfy 0 < h < n.
func (td *TimeDataset) Split(h int) (*Split, error) {
	n := td.Len()
	if h <= 0 || h >= n {
		return nil, fmt.Errorf("horizon of %d for a series of length %d, %w", h, n, ErrInvalidHorizon)
	}
	return &Split{
		Train: td.Slice(0, n-h),
		Test:  td.Slice(n-h, n),
	}, nil
}
