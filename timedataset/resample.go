package timedataset

import (
	"math"
	"time"
)

// ResampleMonthly aggregates the dataset into calendar months by averaging all non NaN
// values within each month. Each output point is stamped at midnight on the first day of
// its month in the location of the input time points. Months without any valid value are
// omitted.
func (td *TimeDataset) ResampleMonthly() *TimeDataset {
	if td == nil {
		return nil
	}

	res := &TimeDataset{
		T: make([]time.Time, 0),
		Y: make([]float64, 0),
	}

	var (
		bucket time.Time
		sum    float64
		cnt    int
	)
	flush := func() {
		if cnt == 0 {
			return
		}
		res.T = append(res.T, bucket)
		res.Y = append(res.Y, sum/float64(cnt))
	}

	for i, t := range td.T {
		monthStart := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		if i == 0 || !monthStart.Equal(bucket) {
			flush()
			bucket = monthStart
			sum = 0
			cnt = 0
		}
		if math.IsNaN(td.Y[i]) {
			continue
		}
		sum += td.Y[i]
		cnt++
	}
	flush()
	return res
}
