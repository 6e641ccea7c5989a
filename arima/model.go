package arima

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gamyers/solar-697/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var (
	ErrInvalidOrder     = errors.New("invalid model order")
	ErrInsufficientData = errors.New("insufficient data to fit model")
	ErrInvalidData      = errors.New("series contains non finite values")
	ErrFit              = errors.New("unable to fit model")
	ErrNotFitted        = errors.New("model has not been fit")
	ErrInvalidHorizon   = errors.New("forecast horizon must be positive")
	ErrInvalidAlpha     = errors.New("alpha must be between 0 and 1")
)

// penalty returned by the objective for parameters outside the stationary and invertible region
const penalty = 1e300

// Options configures the optimizer used to fit a model
type Options struct {
	// MaxIterations caps the Nelder-Mead iterations for each start
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Restarts is the number of starting points tried before giving up on a fit
	Restarts int `json:"restarts" yaml:"restarts"`

	// IncludeMean fits a constant when the total number of differences is below two. With one
	// difference the constant acts as a drift.
	IncludeMean bool `json:"include_mean" yaml:"include_mean"`

	// Condition is the number of leading observations of the series the likelihood is
	// conditioned on. It is raised to the order's Burn when smaller. Models fit on the same
	// series with the same Condition are scored on the same observations, so their information
	// criteria can be compared.
	Condition int `json:"condition" yaml:"condition"`
}

// NewDefaultOptions returns the default fitting options
func NewDefaultOptions() *Options {
	return &Options{
		MaxIterations: 1000,
		Restarts:      3,
		IncludeMean:   true,
	}
}

// Params holds the estimated coefficients of a fit model
type Params struct {
	AR    []float64 `json:"ar"`
	MA    []float64 `json:"ma"`
	SAR   []float64 `json:"sar"`
	SMA   []float64 `json:"sma"`
	Mean  float64   `json:"mean"`
	Sigma float64   `json:"sigma2"`
}

// Model is a seasonal ARIMA model fit by conditional sum of squares. A Model is not safe for
// concurrent use.
type Model struct {
	order Order
	opt   *Options

	y       []float64 // observed series on the original scale
	w       []float64 // differenced series
	resid   []float64 // one step residuals aligned with w
	hasMean bool
	mean    float64
	start   int // first index of w scored by the likelihood

	coef   []float64 // ar, ma, sar, sma packed
	arPoly lagPoly
	maPoly lagPoly

	sigma2 float64
	loglik float64
	nobs   int
	fitted bool
}

// New creates an unfit model of the given order. If no options are provided a default is used.
func New(order Order, opt *Options) (*Model, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if opt.MaxIterations <= 0 {
		opt.MaxIterations = NewDefaultOptions().MaxIterations
	}
	if opt.Restarts <= 0 {
		opt.Restarts = 1
	}
	return &Model{order: order, opt: opt}, nil
}

// Order returns the model order
func (m *Model) Order() Order {
	return m.order
}

// Fit estimates the model coefficients on the series y. The optimizer is restarted from
// different initial values up to the configured number of restarts before ErrFit is returned.
func (m *Model) Fit(y []float64) error {
	if m == nil {
		return ErrNotFitted
	}
	if err := m.setData(y); err != nil {
		return err
	}

	var lastErr error
	for attempt, x0 := range m.startingPoints() {
		if attempt >= m.opt.Restarts {
			break
		}
		coef, err := m.optimize(x0, m.opt.MaxIterations)
		if err != nil {
			lastErr = err
			continue
		}
		if err := m.filter(coef); err != nil {
			lastErr = err
			continue
		}
		m.fitted = true
		return nil
	}
	m.fitted = false
	if lastErr == nil {
		lastErr = errors.New("no starting points")
	}
	return fmt.Errorf("%s after %d attempts, %v, %w", m.order, m.opt.Restarts, lastErr, ErrFit)
}

// setData validates and differences the input series
func (m *Model) setData(y []float64) error {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at %d, %w", i, ErrInvalidData)
		}
	}
	w := stats.Diff(y, 1, m.order.D)
	if m.order.Seasonal.D > 0 {
		w = stats.Diff(w, m.order.Seasonal.Period, m.order.Seasonal.D)
	}

	k := m.numParams()
	start := max(m.order.arLag(), m.opt.Condition-(len(y)-len(w)))
	neff := len(w) - start
	if neff <= k || neff < 3 {
		return fmt.Errorf("%s needs more than %d usable observations after differencing but got %d, %w",
			m.order, max(k, 2), max(neff, 0), ErrInsufficientData)
	}

	m.y = slices.Clone(y)
	m.w = w
	m.start = start
	m.hasMean = m.opt.IncludeMean && m.order.Differences() < 2
	m.mean = 0
	if m.hasMean {
		m.mean = floats.Sum(w) / float64(len(w))
	}
	return nil
}

// numParams counts the estimated parameters including the innovation variance
func (m *Model) numParams() int {
	k := m.order.NumCoefficients() + 1
	if m.opt.IncludeMean && m.order.Differences() < 2 {
		k++
	}
	return k
}

// split unpacks the coefficient vector into its nonseasonal and seasonal factors
func (m *Model) split(coef []float64) (ar, ma, sar, sma []float64) {
	o := m.order
	ar = coef[:o.P]
	ma = coef[o.P : o.P+o.Q]
	sar = coef[o.P+o.Q : o.P+o.Q+o.Seasonal.P]
	sma = coef[o.P+o.Q+o.Seasonal.P:]
	return ar, ma, sar, sma
}

// polys expands the coefficient vector into the full autoregressive and moving average lag
// polynomials, reporting false if any factor is non stationary or non invertible.
func (m *Model) polys(coef []float64) (lagPoly, lagPoly, bool) {
	ar, ma, sar, sma := m.split(coef)
	if !stationary(ar) || !stationary(sar) || !invertible(ma) || !invertible(sma) {
		return nil, nil, false
	}
	period := m.order.period()
	arPoly := mul(expand(ar, 1, -1), expand(sar, period, -1))
	maPoly := mul(expand(ma, 1, 1), expand(sma, period, 1))
	return arPoly, maPoly, true
}

// residuals runs the conditional recursion over w. Residuals before the largest
// autoregressive lag are conditioned to zero.
func residuals(w []float64, mean float64, arPoly, maPoly lagPoly, start int) []float64 {
	e := make([]float64, len(w))
	for t := start; t < len(w); t++ {
		v := w[t] - mean
		for i, a := range arPoly {
			v += a * (w[t-i-1] - mean)
		}
		for j, b := range maPoly {
			if t-j-1 < start {
				break
			}
			v -= b * e[t-j-1]
		}
		e[t] = v
	}
	return e
}

// sse sums the squared residuals from the scoring start. The recursion itself runs from the
// largest autoregressive lag so moving average terms are warm by then.
func (m *Model) sse(coef []float64) (float64, []float64, lagPoly, lagPoly, bool) {
	arPoly, maPoly, ok := m.polys(coef)
	if !ok {
		return math.Inf(1), nil, nil, nil, false
	}
	e := residuals(m.w, m.mean, arPoly, maPoly, m.order.arLag())
	var sse float64
	for _, v := range e[m.start:] {
		sse += v * v
	}
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return math.Inf(1), nil, nil, nil, false
	}
	return sse, e, arPoly, maPoly, true
}

// objective is the concentrated negative log likelihood up to constants
func (m *Model) objective(coef []float64) float64 {
	sse, _, _, _, ok := m.sse(coef)
	if !ok {
		return penalty
	}
	neff := float64(len(m.w) - m.start)
	if sse <= 0 {
		return math.Log(math.SmallestNonzeroFloat64)
	}
	return math.Log(sse / neff)
}

// optimize minimizes the objective from x0 with Nelder-Mead
func (m *Model) optimize(x0 []float64, iterations int) ([]float64, error) {
	if len(x0) == 0 {
		return []float64{}, nil
	}
	if m.objective(x0) >= penalty {
		return nil, errors.New("starting point is outside the stationary region")
	}

	problem := optimize.Problem{Func: m.objective}
	settings := &optimize.Settings{MajorIterations: iterations}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return nil, fmt.Errorf("optimizer returned no result, %w", err)
	}
	if math.IsNaN(result.F) || result.F >= penalty {
		return nil, fmt.Errorf("optimizer finished with status %s outside the valid region", result.Status)
	}
	return slices.Clone(result.X), nil
}

// filter fixes the coefficients and refreshes residuals and likelihood based statistics
func (m *Model) filter(coef []float64) error {
	sse, e, arPoly, maPoly, ok := m.sse(coef)
	if !ok {
		return errors.New("coefficients are not stationary or invertible")
	}
	neff := len(m.w) - m.start
	m.coef = slices.Clone(coef)
	m.arPoly = arPoly
	m.maPoly = maPoly
	m.resid = e
	m.nobs = neff
	m.sigma2 = sse / float64(neff)
	if m.sigma2 <= 0 {
		m.sigma2 = math.SmallestNonzeroFloat64
	}
	m.loglik = -0.5 * float64(neff) * (math.Log(2*math.Pi*m.sigma2) + 1)
	return nil
}

// startingPoints yields initial coefficient vectors: Yule-Walker estimates for the
// nonseasonal autoregressive part, all zeros, then a small positive value everywhere.
func (m *Model) startingPoints() [][]float64 {
	n := m.order.NumCoefficients()
	zeros := make([]float64, n)

	yw := make([]float64, n)
	copy(yw, yuleWalker(m.w, m.order.P))

	small := make([]float64, n)
	for i := range small {
		small[i] = 0.1
	}
	return [][]float64{yw, zeros, small}
}

// yuleWalker estimates AR(p) coefficients from the sample autocorrelation with the
// Levinson-Durbin recursion. Zeros are returned if the estimate is not stationary.
func yuleWalker(w []float64, p int) []float64 {
	phi := make([]float64, p)
	if p == 0 || len(w) <= p {
		return phi
	}
	r := stats.ACF(w, p)

	prev := make([]float64, p)
	v := 1.0
	for k := 1; k <= p; k++ {
		acc := r[k]
		for j := 1; j < k; j++ {
			acc -= prev[j-1] * r[k-j]
		}
		if v == 0 {
			return make([]float64, p)
		}
		kappa := acc / v
		phi[k-1] = kappa
		for j := 1; j < k; j++ {
			phi[j-1] = prev[j-1] - kappa*prev[k-j-1]
		}
		v *= 1 - kappa*kappa
		copy(prev, phi)
	}
	if !stationary(phi) {
		return make([]float64, p)
	}
	return phi
}

// Params returns a copy of the estimated coefficients
func (m *Model) Params() (Params, error) {
	if m == nil || !m.fitted {
		return Params{}, ErrNotFitted
	}
	ar, ma, sar, sma := m.split(m.coef)
	return Params{
		AR:    slices.Clone(ar),
		MA:    slices.Clone(ma),
		SAR:   slices.Clone(sar),
		SMA:   slices.Clone(sma),
		Mean:  m.mean,
		Sigma: m.sigma2,
	}, nil
}

// NObs returns the number of observations contributing to the likelihood
func (m *Model) NObs() int {
	return m.nobs
}

// LogLikelihood returns the gaussian log likelihood at the fit coefficients
func (m *Model) LogLikelihood() float64 {
	return m.loglik
}

// AIC returns the Akaike information criterion
func (m *Model) AIC() float64 {
	if m == nil || !m.fitted {
		return math.Inf(1)
	}
	return -2*m.loglik + 2*float64(m.numParams())
}

// AICc returns the small sample corrected Akaike information criterion
func (m *Model) AICc() float64 {
	k := float64(m.numParams())
	n := float64(m.nobs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return m.AIC() + 2*k*(k+1)/(n-k-1)
}

// BIC returns the Bayesian information criterion
func (m *Model) BIC() float64 {
	if m == nil || !m.fitted {
		return math.Inf(1)
	}
	return -2*m.loglik + float64(m.numParams())*math.Log(float64(m.nobs))
}

// Residuals returns the one step residuals of the differenced series
func (m *Model) Residuals() []float64 {
	return slices.Clone(m.resid)
}

// Fitted returns the in sample one step predictions on the original scale. Points used to
// difference the series or condition the recursion are NaN.
func (m *Model) Fitted() []float64 {
	if m == nil || !m.fitted {
		return nil
	}
	offset := len(m.y) - len(m.w)
	start := m.order.arLag()
	res := make([]float64, len(m.y))
	for i := range res {
		j := i - offset
		if j < start {
			res[i] = math.NaN()
			continue
		}
		res[i] = m.y[i] - m.resid[j]
	}
	return res
}
