package selection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/stats"
)

// AutoDifference lets the stepwise search estimate a differencing order from the data
const AutoDifference = -1

// StepwiseOptions bounds a stepwise order search
type StepwiseOptions struct {
	Seasonal bool `json:"seasonal" yaml:"seasonal"`
	Period   int  `json:"period" yaml:"period"`

	StartP  int `json:"start_p" yaml:"start_p"`
	StartQ  int `json:"start_q" yaml:"start_q"`
	StartSP int `json:"start_seasonal_p" yaml:"start_seasonal_p"`
	StartSQ int `json:"start_seasonal_q" yaml:"start_seasonal_q"`

	MaxP  int `json:"max_p" yaml:"max_p"`
	MaxQ  int `json:"max_q" yaml:"max_q"`
	MaxSP int `json:"max_seasonal_p" yaml:"max_seasonal_p"`
	MaxSQ int `json:"max_seasonal_q" yaml:"max_seasonal_q"`

	// D and SD fix the differencing orders. AutoDifference estimates them with a KPSS test
	// and the seasonal strength respectively, bounded by MaxD and MaxSD.
	D     int `json:"d" yaml:"d"`
	SD    int `json:"seasonal_d" yaml:"seasonal_d"`
	MaxD  int `json:"max_d" yaml:"max_d"`
	MaxSD int `json:"max_seasonal_d" yaml:"max_seasonal_d"`

	// MaxOrder caps p+q+P+Q of any candidate
	MaxOrder int `json:"max_order" yaml:"max_order"`

	// MaxModels caps the number of candidates fit
	MaxModels int `json:"max_models" yaml:"max_models"`

	// Alpha is the significance level of the KPSS test
	Alpha float64 `json:"alpha" yaml:"alpha"`

	Model *arima.Options `json:"model" yaml:"model"`

	OnFit FitHook `json:"-" yaml:"-"`
}

// NewDefaultStepwiseOptions returns a seasonal stepwise search with monthly data bounds
func NewDefaultStepwiseOptions() *StepwiseOptions {
	return &StepwiseOptions{
		Seasonal:  true,
		Period:    12,
		StartP:    2,
		StartQ:    2,
		StartSP:   1,
		StartSQ:   1,
		MaxP:      5,
		MaxQ:      5,
		MaxSP:     2,
		MaxSQ:     2,
		D:         AutoDifference,
		SD:        AutoDifference,
		MaxD:      2,
		MaxSD:     1,
		MaxOrder:  5,
		MaxModels: 100,
		Alpha:     0.05,
		Model:     arima.NewDefaultOptions(),
	}
}

// Differences returns the regular and seasonal differencing orders the search will use on y
func (o *StepwiseOptions) Differences(y []float64) (int, int) {
	sd := 0
	if o.Seasonal && o.Period > 1 {
		sd = o.SD
		if sd < 0 {
			sd = stats.NSDiffs(y, o.Period, o.MaxSD)
		}
	}

	d := o.D
	if d < 0 {
		seasDiffed := y
		if sd > 0 {
			seasDiffed = stats.Diff(y, o.Period, sd)
		}
		d = stats.NDiffs(seasDiffed, o.MaxD, o.Alpha)
	}
	return d, sd
}

type stepwiseSearch struct {
	opt       *StepwiseOptions
	y         []float64
	d, sd     int
	condition int
	seen   map[arima.Order]struct{}
	fits   []FitResult
	period int
}

func (s *stepwiseSearch) order(p, q, sp, sq int) arima.Order {
	if !s.opt.Seasonal {
		return arima.NewOrder(p, s.d, q)
	}
	return arima.NewSeasonalOrder(p, s.d, q, sp, s.sd, sq, s.period)
}

func (s *stepwiseSearch) inBounds(o arima.Order) bool {
	if o.P < 0 || o.Q < 0 || o.Seasonal.P < 0 || o.Seasonal.Q < 0 {
		return false
	}
	if o.P > s.opt.MaxP || o.Q > s.opt.MaxQ || o.Seasonal.P > s.opt.MaxSP || o.Seasonal.Q > s.opt.MaxSQ {
		return false
	}
	if o.Burn() > s.condition {
		return false
	}
	return s.opt.MaxOrder <= 0 || o.NumCoefficients() <= s.opt.MaxOrder
}

func (s *stepwiseSearch) exhausted() bool {
	return s.opt.MaxModels > 0 && len(s.seen) >= s.opt.MaxModels
}

// try fits the order if it is in bounds and has not been tried before
func (s *stepwiseSearch) try(o arima.Order) (FitResult, bool) {
	if !s.inBounds(o) || s.exhausted() {
		return FitResult{}, false
	}
	if _, exists := s.seen[o]; exists {
		return FitResult{}, false
	}
	s.seen[o] = struct{}{}

	res, err := fitCandidate(o, s.y, s.opt.Model, s.condition, s.opt.OnFit)
	if err != nil {
		return FitResult{}, false
	}
	s.fits = append(s.fits, res)
	return res, true
}

// neighbours lists the orders one step away from o
func (s *stepwiseSearch) neighbours(o arima.Order) []arima.Order {
	p, q, sp, sq := o.P, o.Q, o.Seasonal.P, o.Seasonal.Q
	var res []arima.Order
	if s.opt.Seasonal {
		res = append(res,
			s.order(p, q, sp-1, sq),
			s.order(p, q, sp+1, sq),
			s.order(p, q, sp, sq-1),
			s.order(p, q, sp, sq+1),
			s.order(p, q, sp-1, sq-1),
			s.order(p, q, sp+1, sq+1),
			s.order(p, q, sp-1, sq+1),
			s.order(p, q, sp+1, sq-1),
		)
	}
	res = append(res,
		s.order(p-1, q, sp, sq),
		s.order(p+1, q, sp, sq),
		s.order(p, q-1, sp, sq),
		s.order(p, q+1, sp, sq),
		s.order(p-1, q-1, sp, sq),
		s.order(p+1, q+1, sp, sq),
		s.order(p-1, q+1, sp, sq),
		s.order(p+1, q-1, sp, sq),
	)
	return res
}

// Stepwise runs a bounded hill climbing search over ARIMA orders. After the differencing orders
// are fixed, a set of seed models is fit and the search repeatedly moves to the first neighbour
// of the current best model that lowers the AIC. Every candidate is conditioned on the burn of
// the largest order within the bounds, capped at half the series, so all AICs are computed
// over the same observations. The search stops when no neighbour improves,
// when MaxModels candidates were tried or when the context is done. All successful fits are
// returned ranked ascending by AIC, so the first result is the selected model.
func Stepwise(ctx context.Context, y []float64, opt *StepwiseOptions) ([]FitResult, error) {
	if opt == nil {
		opt = NewDefaultStepwiseOptions()
	}

	s := &stepwiseSearch{
		opt:  opt,
		y:    y,
		seen: make(map[arima.Order]struct{}),
		fits: []FitResult{},
	}
	if opt.Seasonal {
		if opt.Period < 2 {
			return nil, fmt.Errorf("seasonal search with period %d, %w", opt.Period, arima.ErrInvalidOrder)
		}
		s.period = opt.Period
	}
	s.d, s.sd = opt.Differences(y)
	s.condition = conditioning(len(y), s.order(0, 0, 0, 0).Burn(), s.order(opt.MaxP, opt.MaxQ, opt.MaxSP, opt.MaxSQ).Burn())
	slog.Debug("stepwise differencing", "d", s.d, "seasonal_d", s.sd, "seasonal", opt.Seasonal, "condition", s.condition)

	startP := min(opt.StartP, opt.MaxP)
	startQ := min(opt.StartQ, opt.MaxQ)
	startSP := min(opt.StartSP, opt.MaxSP)
	startSQ := min(opt.StartSQ, opt.MaxSQ)

	seeds := []arima.Order{
		s.order(startP, startQ, startSP, startSQ),
		s.order(0, 0, 0, 0),
		s.order(1, 0, 1, 0),
		s.order(0, 1, 0, 1),
	}

	var (
		best  FitResult
		found bool
	)
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return s.finish(fmt.Errorf("stepwise search stopped while fitting seeds, %w", err))
		}
		res, ok := s.try(seed)
		if ok && (!found || res.AIC < best.AIC) {
			best = res
			found = true
		}
	}
	if !found {
		return s.finish(nil)
	}

	for improved := true; improved && !s.exhausted(); {
		improved = false
		for _, cand := range s.neighbours(best.Order) {
			if err := ctx.Err(); err != nil {
				return s.finish(fmt.Errorf("stepwise search stopped after %d candidates, %w", len(s.seen), err))
			}
			res, ok := s.try(cand)
			if ok && res.AIC < best.AIC {
				slog.Debug("stepwise improvement", "from", best.Order.String(), "to", res.Order.String(), "aic", res.AIC)
				best = res
				improved = true
				break
			}
		}
	}
	return s.finish(nil)
}

func (s *stepwiseSearch) finish(err error) ([]FitResult, error) {
	rank(s.fits)
	if err != nil {
		return s.fits, err
	}
	if len(s.fits) == 0 {
		return s.fits, fmt.Errorf("none of %d candidates succeeded, %w", len(s.seen), ErrNoViableModel)
	}
	return s.fits, nil
}
