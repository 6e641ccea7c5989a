package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/gamyers/solar-697/timedataset"
	"github.com/goccy/go-json"
)

// Decomposition holds the additive components of a series such that
// Observed = Trend + Seasonal + Residual wherever the trend is defined. The trend and
// residual are NaN on the edges where the centered moving average is undefined.
type Decomposition struct {
	T        []time.Time `json:"time"`
	Observed []float64   `json:"observed"`
	Trend    []float64   `json:"trend"`
	Seasonal []float64   `json:"seasonal"`
	Residual []float64   `json:"residual"`
	Period   int         `json:"period"`
}

// decompositionJSON is the wire form of a Decomposition where undefined points are null
type decompositionJSON struct {
	T        []time.Time `json:"time"`
	Observed []*float64  `json:"observed"`
	Trend    []*float64  `json:"trend"`
	Seasonal []*float64  `json:"seasonal"`
	Residual []*float64  `json:"residual"`
	Period   int         `json:"period"`
}

func toNullable(vals []float64) []*float64 {
	if vals == nil {
		return nil
	}
	res := make([]*float64, len(vals))
	for i := range vals {
		if !math.IsNaN(vals[i]) {
			res[i] = &vals[i]
		}
	}
	return res
}

func fromNullable(vals []*float64) []float64 {
	if vals == nil {
		return nil
	}
	res := make([]float64, len(vals))
	for i, v := range vals {
		res[i] = math.NaN()
		if v != nil {
			res[i] = *v
		}
	}
	return res
}

// MarshalJSON encodes NaN components as null
func (d Decomposition) MarshalJSON() ([]byte, error) {
	return json.Marshal(decompositionJSON{
		T:        d.T,
		Observed: toNullable(d.Observed),
		Trend:    toNullable(d.Trend),
		Seasonal: toNullable(d.Seasonal),
		Residual: toNullable(d.Residual),
		Period:   d.Period,
	})
}

// UnmarshalJSON decodes null components back to NaN
func (d *Decomposition) UnmarshalJSON(data []byte) error {
	var raw decompositionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Decomposition{
		T:        raw.T,
		Observed: fromNullable(raw.Observed),
		Trend:    fromNullable(raw.Trend),
		Seasonal: fromNullable(raw.Seasonal),
		Residual: fromNullable(raw.Residual),
		Period:   raw.Period,
	}
	return nil
}

// Decompose runs a classical additive seasonal decomposition of the dataset. At least two
// full periods of observations are required.
func Decompose(td *timedataset.TimeDataset, period int) (*Decomposition, error) {
	if td == nil {
		return nil, fmt.Errorf("no dataset to decompose, %w", ErrInsufficientData)
	}
	d, err := DecomposeValues(td.Y, period)
	if err != nil {
		return nil, err
	}
	d.T = make([]time.Time, len(td.T))
	copy(d.T, td.T)
	return d, nil
}

// DecomposeValues decomposes a plain slice of values, see Decompose.
func DecomposeValues(y []float64, period int) (*Decomposition, error) {
	if period < 2 {
		return nil, fmt.Errorf("got period of %d, %w", period, ErrInvalidPeriod)
	}
	n := len(y)
	if n < 2*period {
		return nil, fmt.Errorf("need %d observations for a period of %d but got %d, %w", 2*period, period, n, ErrInsufficientData)
	}

	observed := make([]float64, n)
	copy(observed, y)

	trend := movingAverageTrend(observed, period)

	// average the detrended value at each phase of the cycle
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) || math.IsNaN(observed[i]) {
			continue
		}
		pattern[i%period] += observed[i] - trend[i]
		counts[i%period]++
	}
	var patternMean float64
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
		patternMean += pattern[i]
	}
	patternMean /= float64(period)
	for i := range pattern {
		pattern[i] -= patternMean
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
			continue
		}
		residual[i] = observed[i] - trend[i] - seasonal[i]
	}

	return &Decomposition{
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}, nil
}

// movingAverageTrend computes a centered moving average over one period. Even periods use
// a 2xperiod moving average with half weights on both ends so the window stays centered.
func movingAverageTrend(y []float64, period int) []float64 {
	n := len(y)
	trend := make([]float64, n)
	half := period / 2

	for i := 0; i < n; i++ {
		if i < half || i >= n-half {
			trend[i] = math.NaN()
			continue
		}
		var sum float64
		if period%2 == 0 {
			sum = 0.5*y[i-half] + 0.5*y[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += y[j]
			}
		} else {
			for j := i - half; j <= i+half; j++ {
				sum += y[j]
			}
		}
		trend[i] = sum / float64(period)
	}
	return trend
}
