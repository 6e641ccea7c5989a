package arima

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast holds point forecasts along with the confidence interval bounds
type Forecast struct {
	Mean   []float64 `json:"mean"`
	Lower  []float64 `json:"lower"`
	Upper  []float64 `json:"upper"`
	StdErr []float64 `json:"std_err"`
}

// Predict forecasts h steps past the end of the series with a two sided (1-alpha) confidence
// interval. Intervals only account for innovation variance.
func (m *Model) Predict(h int, alpha float64) (*Forecast, error) {
	if m == nil || !m.fitted {
		return nil, ErrNotFitted
	}
	if h <= 0 {
		return nil, fmt.Errorf("got horizon of %d, %w", h, ErrInvalidHorizon)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("got alpha of %.3f, %w", alpha, ErrInvalidAlpha)
	}

	// forecast the differenced series with future innovations at zero
	n := len(m.w)
	w := make([]float64, n+h)
	copy(w, m.w)
	e := make([]float64, n+h)
	copy(e, m.resid)
	for t := n; t < n+h; t++ {
		v := m.mean
		for i, a := range m.arPoly {
			if t-i-1 < 0 {
				break
			}
			v -= a * (w[t-i-1] - m.mean)
		}
		for j, b := range m.maPoly {
			if t-j-1 < 0 {
				break
			}
			v += b * e[t-j-1]
		}
		w[t] = v
	}

	mean := m.integrate(w[n:])

	diffPoly := differencing(m.order.D, m.order.Seasonal.D, m.order.Seasonal.Period)
	psi := psiWeights(mul(m.arPoly, diffPoly), m.maPoly, h)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)

	res := &Forecast{
		Mean:   mean,
		Lower:  make([]float64, h),
		Upper:  make([]float64, h),
		StdErr: make([]float64, h),
	}
	var cum float64
	for k := 0; k < h; k++ {
		cum += psi[k] * psi[k]
		se := math.Sqrt(m.sigma2 * cum)
		res.StdErr[k] = se
		res.Lower[k] = mean[k] - z*se
		res.Upper[k] = mean[k] + z*se
	}
	return res, nil
}

// integrate undoes the differencing for forecasts of the differenced series using the
// observed history as the starting values.
func (m *Model) integrate(wFuture []float64) []float64 {
	delta := differencing(m.order.D, m.order.Seasonal.D, m.order.Seasonal.Period)
	n := len(m.y)
	y := make([]float64, n+len(wFuture))
	copy(y, m.y)
	for k, wv := range wFuture {
		t := n + k
		v := wv
		for i, c := range delta {
			v -= c * y[t-i-1]
		}
		y[t] = v
	}
	return y[n:]
}

// Update appends new observations to the series, refreshes the residuals with the current
// coefficients and then refines the coefficients with a short warm started optimization of
// max(5, len(y)/10) iterations. The order is never changed. If the refinement fails the
// coefficients are kept as they were.
func (m *Model) Update(y []float64) error {
	if m == nil || !m.fitted {
		return ErrNotFitted
	}
	if len(y) == 0 {
		return nil
	}

	prev := *m
	full := append(slices.Clone(m.y), y...)
	if err := m.setData(full); err != nil {
		*m = prev
		return fmt.Errorf("unable to extend series, %w", err)
	}
	if err := m.filter(prev.coef); err != nil {
		*m = prev
		return fmt.Errorf("unable to filter new observations, %w", err)
	}

	iterations := max(5, len(y)/10)
	coef, err := m.optimize(m.coef, iterations)
	if err != nil {
		// keep the filtered state with the previous coefficients
		return nil
	}
	before := m.objective(m.coef)
	if m.objective(coef) < before {
		current := slices.Clone(m.coef)
		if err := m.filter(coef); err != nil {
			_ = m.filter(current)
		}
	}
	return nil
}
