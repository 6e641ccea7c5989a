package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// KPSS level stationarity critical values by significance level
var kpssCritical = []struct {
	stat   float64
	pvalue float64
}{
	{0.347, 0.10},
	{0.463, 0.05},
	{0.574, 0.025},
	{0.739, 0.01},
}

// KPSSResult is the outcome of a KPSS test where the null hypothesis is level stationarity.
type KPSSResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
}

// Stationary reports whether the null of stationarity is not rejected at alpha
func (k *KPSSResult) Stationary(alpha float64) bool {
	if k == nil {
		return false
	}
	return k.PValue >= alpha
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test for level stationarity. When nlags is
// not positive the Schwert rule 12*(n/100)^(1/4) is used for the Newey-West bandwidth. The
// p-value is interpolated from the tabulated critical values and clamped to [0.01, 0.10].
func KPSS(y []float64, nlags int) (*KPSSResult, error) {
	n := len(y)
	if n < 10 {
		return nil, fmt.Errorf("kpss needs at least 10 observations but got %d, %w", n, ErrInsufficientData)
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	nlags = min(nlags, n-1)

	mean := stat.Mean(y, nil)
	resid := make([]float64, n)
	for i, v := range y {
		resid[i] = v - mean
	}

	var eta, partial float64
	for _, r := range resid {
		partial += r
		eta += partial * partial
	}

	// Newey-West long run variance with Bartlett weights
	var s2 float64
	for _, r := range resid {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		var cov float64
		for i := l; i < n; i++ {
			cov += resid[i] * resid[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}

	// a constant series is trivially stationary
	if s2 <= 0 {
		return &KPSSResult{Statistic: 0, PValue: kpssCritical[0].pvalue, Lags: nlags}, nil
	}

	statistic := eta / (float64(n) * float64(n) * s2)
	return &KPSSResult{
		Statistic: statistic,
		PValue:    kpssPValue(statistic),
		Lags:      nlags,
	}, nil
}

func kpssPValue(statistic float64) float64 {
	first := kpssCritical[0]
	last := kpssCritical[len(kpssCritical)-1]
	if statistic <= first.stat {
		return first.pvalue
	}
	if statistic >= last.stat {
		return last.pvalue
	}
	for i := 1; i < len(kpssCritical); i++ {
		lo, hi := kpssCritical[i-1], kpssCritical[i]
		if statistic <= hi.stat {
			frac := (statistic - lo.stat) / (hi.stat - lo.stat)
			return lo.pvalue + frac*(hi.pvalue-lo.pvalue)
		}
	}
	return last.pvalue
}
