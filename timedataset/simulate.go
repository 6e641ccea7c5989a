package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT generates n time points spaced by interval ending one interval before nowFunc
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

// GenerateMonthlyT generates n time points at the start of consecutive calendar months
func GenerateMonthlyT(n int, start time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, i, 0))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLinearY generates a straight line starting at intercept and growing by slope per point
func GenerateLinearY(n int, intercept, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, intercept+slope*float64(i))
	}
	return Series(y)
}

// GenerateSeasonalY generates a sine wave over the observation index repeating every period points
func GenerateSeasonalY(n int, amp float64, period int, order, phase float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		val := amp * math.Sin(2.0*math.Pi*order*float64(i)/float64(period)+phase)
		y = append(y, val)
	}
	return Series(y)
}

// GenerateNoise generates gaussian noise with a standard deviation of scale. The noise is seeded
// so results are reproducible.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateAR1 generates an autoregressive series of order one driven by seeded gaussian noise
func GenerateAR1(n int, phi, scale float64, seed uint64) Series {
	noise := GenerateNoise(n, scale, seed)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = noise[i]
		if i > 0 {
			y[i] += phi * y[i-1]
		}
	}
	return Series(y)
}
