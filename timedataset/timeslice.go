package timedataset

import (
	"errors"
	"math"
	"strconv"
	"time"
)

var ErrCannotInferFreq = errors.New("cannot infer frequency from time slice")

// TimeSlice is an ordered slice of observation times
type TimeSlice []time.Time

// StartTime returns the first time or the zero time if the slice is empty
func (t TimeSlice) StartTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[0]
}

// EndTime returns the last time or the zero time if the slice is empty
func (t TimeSlice) EndTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common time delta between consecutive points. Ties are
// broken by the smallest delta.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// Frequency describes the spacing between consecutive observations. Calendar months
// are tracked separately from fixed durations since they vary in length.
type Frequency struct {
	Months   int           `json:"months,omitempty"`
	Interval time.Duration `json:"interval,omitempty"`
}

// IsZero reports whether the frequency is unset
func (f Frequency) IsZero() bool {
	return f.Months == 0 && f.Interval == 0
}

// Add returns the time point n steps after t
func (f Frequency) Add(t time.Time, n int) time.Time {
	if f.Months > 0 {
		return t.AddDate(0, f.Months*n, 0)
	}
	return t.Add(time.Duration(n) * f.Interval)
}

func (f Frequency) String() string {
	if f.Months == 1 {
		return "monthly"
	}
	if f.Months > 0 {
		return strconv.Itoa(f.Months) + " months"
	}
	return f.Interval.String()
}

// InferFrequency returns a calendar monthly frequency if every consecutive pair of points
// is exactly one month apart and otherwise falls back to the most common time delta.
func (t TimeSlice) InferFrequency() (Frequency, error) {
	if len(t) < 2 {
		return Frequency{}, ErrCannotInferFreq
	}
	monthly := true
	for i := 1; i < len(t); i++ {
		if !t[i-1].AddDate(0, 1, 0).Equal(t[i]) {
			monthly = false
			break
		}
	}
	if monthly {
		return Frequency{Months: 1}, nil
	}

	delta, err := t.EstimateFreq()
	if err != nil {
		return Frequency{}, err
	}
	return Frequency{Interval: delta}, nil
}

// Next generates n time points following the end of the slice at the inferred frequency.
func (t TimeSlice) Next(n int) ([]time.Time, error) {
	freq, err := t.InferFrequency()
	if err != nil {
		return nil, err
	}
	return freq.Range(t.EndTime(), n), nil
}

// Range generates n time points after start, excluding start.
func (f Frequency) Range(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	res := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		res = append(res, f.Add(start, i))
	}
	return res
}
