// Package stats contains the descriptive statistics used to explore and difference a series
// before fitting: classical decomposition, autocorrelation and stationarity tests.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidPeriod    = errors.New("period must be at least 2")
)

// DropNaN returns a copy of the input without any NaN values
func DropNaN(y []float64) []float64 {
	valid := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}

// Variance computes the unbiased sample variance ignoring NaN values. Zero is returned when
// less than two valid values exist.
func Variance(y []float64) float64 {
	valid := DropNaN(y)
	if len(valid) < 2 {
		return 0
	}
	return stat.Variance(valid, nil)
}

// ACF computes the sample autocorrelation for lags 0 through nlags. The autocovariance
// uses the biased estimator normalized by the series length.
func ACF(y []float64, nlags int) []float64 {
	n := len(y)
	if n == 0 {
		return nil
	}
	if nlags < 0 || nlags >= n {
		nlags = n - 1
	}
	mean := stat.Mean(y, nil)
	centered := make([]float64, n)
	copy(centered, y)
	floats.AddConst(-mean, centered)

	c0 := floats.Dot(centered, centered) / float64(n)
	acf := make([]float64, nlags+1)
	acf[0] = 1.0
	if c0 == 0 {
		return acf
	}
	for lag := 1; lag <= nlags; lag++ {
		ck := floats.Dot(centered[lag:], centered[:n-lag]) / float64(n)
		acf[lag] = ck / c0
	}
	return acf
}

// Diff applies lagged differencing y[t] - y[t-lag] the given number of times.
func Diff(y []float64, lag, times int) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	for d := 0; d < times; d++ {
		if len(out) <= lag {
			return []float64{}
		}
		next := make([]float64, len(out)-lag)
		for i := lag; i < len(out); i++ {
			next[i-lag] = out[i] - out[i-lag]
		}
		out = next
	}
	return out
}
