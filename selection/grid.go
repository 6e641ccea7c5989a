package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gamyers/solar-697/arima"
)

var ErrNoViableModel = errors.New("no candidate model could be fit")

// FitResult is a successfully fit candidate
type FitResult struct {
	Order arima.Order  `json:"order"`
	AIC   float64      `json:"aic"`
	Model *arima.Model `json:"-"`
}

// FitHook is called after every candidate fit attempt with the fit error, if any
type FitHook func(order arima.Order, err error)

// GridOptions configures an exhaustive grid search
type GridOptions struct {
	// MaxCandidates caps the number of candidates fit. Zero means no cap.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	Model *arima.Options `json:"model" yaml:"model"`

	OnFit FitHook `json:"-" yaml:"-"`
}

// NewDefaultGridOptions returns an uncapped grid search using default model options
func NewDefaultGridOptions() *GridOptions {
	return &GridOptions{
		Model: arima.NewDefaultOptions(),
	}
}

// conditioning returns the number of leading observations every candidate of a search is
// conditioned on. It covers the largest burn among the candidates while keeping at least half of
// the n observations for scoring, but never drops below the smallest burn.
func conditioning(n, smallest, largest int) int {
	return max(smallest, min(largest, n/2))
}

// fitCandidate fits a single order on y conditioned on the first condition observations. A fresh
// copy of the model options is used for each candidate so candidates never share state.
func fitCandidate(order arima.Order, y []float64, modelOpt *arima.Options, condition int, hook FitHook) (FitResult, error) {
	opt := arima.NewDefaultOptions()
	if modelOpt != nil {
		*opt = *modelOpt
	}
	opt.Condition = max(opt.Condition, condition)
	m, err := arima.New(order, opt)
	if err == nil {
		err = m.Fit(y)
	}
	if hook != nil {
		hook(order, err)
	}
	if err != nil {
		slog.Debug("dropping candidate", "order", order.String(), "err", err)
		return FitResult{}, err
	}
	return FitResult{Order: order, AIC: m.AIC(), Model: m}, nil
}

// rank sorts results ascending by AIC keeping generation order for ties
func rank(results []FitResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AIC < results[j].AIC
	})
}

// GridSearch fits every candidate order on y and returns the successful fits ranked ascending
// by AIC. Every candidate is scored on the same observations: the likelihood is conditioned on
// the largest burn among the candidates, capped at half the series, and candidates that need
// more than that are dropped. Candidates that fail to fit are logged and dropped. If nothing could be fit an
// empty slice is returned with ErrNoViableModel. If the context is cancelled the fits
// completed so far are returned ranked along with the context error.
func GridSearch(ctx context.Context, y []float64, orders []arima.Order, opt *GridOptions) ([]FitResult, error) {
	if opt == nil {
		opt = NewDefaultGridOptions()
	}

	if opt.MaxCandidates > 0 && len(orders) > opt.MaxCandidates {
		slog.Debug("candidate cap reached", "max_candidates", opt.MaxCandidates, "skipped", len(orders)-opt.MaxCandidates)
		orders = orders[:opt.MaxCandidates]
	}
	condition := 0
	if len(orders) > 0 {
		smallest, largest := orders[0].Burn(), orders[0].Burn()
		for _, o := range orders[1:] {
			smallest = min(smallest, o.Burn())
			largest = max(largest, o.Burn())
		}
		condition = conditioning(len(y), smallest, largest)
	}

	results := make([]FitResult, 0, len(orders))
	for i, order := range orders {
		if err := ctx.Err(); err != nil {
			rank(results)
			return results, fmt.Errorf("grid search stopped after %d of %d candidates, %w", i, len(orders), err)
		}
		if order.Burn() > condition {
			slog.Debug("dropping candidate", "order", order.String(), "burn", order.Burn(), "condition", condition)
			continue
		}

		res, err := fitCandidate(order, y, opt.Model, condition, opt.OnFit)
		if err != nil {
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return results, fmt.Errorf("none of %d candidates succeeded, %w", len(orders), ErrNoViableModel)
	}
	rank(results)
	return results, nil
}
