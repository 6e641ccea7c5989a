// Package forecaster orchestrates the forecast variants for a location and feature. A
// request splits the stored series into a training prefix and a test suffix, fits every
// variant on the prefix, validates it against the suffix with RMSE and finally extends
// each variant with the test data to forecast past the end of all known data.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/forecast"
	"github.com/gamyers/solar-697/forecast/options"
	"github.com/gamyers/solar-697/stats"
	"github.com/gamyers/solar-697/timedataset"
	"golang.org/x/sync/errgroup"
)

var ErrNoVariants = errors.New("no forecast variants configured")

// VariantFactory creates an untrained forecast variant from the forecast options. Every
// request creates fresh variants so no fitted state is shared between requests.
type VariantFactory func(opt *options.Options) (forecast.Model, error)

// FourierVariant creates the Fourier regression variant
func FourierVariant(opt *options.Options) (forecast.Model, error) {
	return forecast.NewFourierARIMA(opt)
}

// SeasonalVariant creates the native seasonal ARIMA variant
func SeasonalVariant(opt *options.Options) (forecast.Model, error) {
	return forecast.NewSeasonalARIMA(opt)
}

// Request selects the series to forecast. Zero periods fall back to the forecaster options.
type Request struct {
	Zipcode         string `json:"zipcode"`
	Feature         string `json:"feature"`
	TestPeriods     int    `json:"test_periods"`
	ForecastPeriods int    `json:"forecast_periods"`
}

// Forecaster runs forecast requests against a series store
type Forecaster struct {
	opt      *Options
	store    SeriesStore
	cache    *SplitCache
	metrics  *Metrics
	variants []VariantFactory
}

// New creates a Forecaster reading from store. If no options are provided a default is used.
func New(store SeriesStore, opt *Options) (*Forecaster, error) {
	if store == nil {
		return nil, ErrNoSeriesStore
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forecaster options, %w", err)
	}
	return &Forecaster{
		opt:      opt,
		store:    store,
		variants: []VariantFactory{FourierVariant, SeasonalVariant},
	}, nil
}

// WithSplitCache memoizes train/test splits in cache
func (f *Forecaster) WithSplitCache(cache *SplitCache) *Forecaster {
	f.cache = cache
	return f
}

// WithMetrics records candidate fits and variant outcomes in m
func (f *Forecaster) WithMetrics(m *Metrics) *Forecaster {
	f.metrics = m
	return f
}

// WithVariants replaces the forecast variants run for every request
func (f *Forecaster) WithVariants(variants ...VariantFactory) *Forecaster {
	f.variants = variants
	return f
}

// Options returns the forecaster options
func (f *Forecaster) Options() *Options {
	return f.opt
}

// Forecast runs every variant on the requested series. Failures fetching or splitting the
// series abort the request while a failing variant is reported in its VariantResult.
func (f *Forecaster) Forecast(ctx context.Context, req Request) (*Results, error) {
	if len(f.variants) == 0 {
		return nil, ErrNoVariants
	}
	testPeriods := req.TestPeriods
	if testPeriods == 0 {
		testPeriods = f.opt.TestPeriods
	}
	forecastPeriods := req.ForecastPeriods
	if forecastPeriods == 0 {
		forecastPeriods = f.opt.ForecastPeriods
	}
	if forecastPeriods < 0 {
		return nil, fmt.Errorf("got %d forecast periods, %w, %w", forecastPeriods, ErrInvalidPeriods, forecast.ErrInvalidHorizon)
	}

	td, err := f.store.Series(ctx, req.Zipcode, req.Feature)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s series for %s, %w", req.Feature, req.Zipcode, err)
	}
	td = td.DropNan()

	split, err := f.cache.Split(req.Zipcode, req.Feature, td, testPeriods)
	if err != nil {
		return nil, fmt.Errorf("unable to split %d points with %d test periods, %w", td.Len(), testPeriods, err)
	}

	res := &Results{
		Locale:   f.locale(ctx, req.Zipcode),
		Feature:  req.Feature,
		Train:    split.Train,
		Test:     split.Test,
		Variants: make([]VariantResult, len(f.variants)),
	}

	if !f.opt.Parallel {
		for i := range f.variants {
			res.Variants[i] = f.runVariant(ctx, f.variants[i], split, forecastPeriods)
		}
		return res, nil
	}

	// a failed variant is a partial result kept in its own slot, so the goroutines never
	// return an error and one variant failing does not cancel the others through gctx
	g, gctx := errgroup.WithContext(ctx)
	for i := range f.variants {
		g.Go(func() error {
			res.Variants[i] = f.runVariant(gctx, f.variants[i], split, forecastPeriods)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("unable to run variants, %w", err)
	}
	return res, nil
}

// locale looks up the location labels, falling back to the bare zipcode
func (f *Forecaster) locale(ctx context.Context, zipcode string) Locale {
	locale, err := f.store.Locale(ctx, zipcode)
	if err != nil {
		slog.Warn("unable to fetch locale", "zipcode", zipcode, "error", err)
		return Locale{Zipcode: zipcode}
	}
	return locale
}

// variantOptions returns a private copy of the forecast options wired to the metrics
func (f *Forecaster) variantOptions() *options.Options {
	opt := *f.opt.Forecast
	if f.metrics != nil {
		opt.Fourier.Search.OnFit = func(_ arima.Order, err error) { f.metrics.observeCandidate(err) }
		opt.Seasonal.Search.OnFit = opt.Fourier.Search.OnFit
	}
	return &opt
}

// runVariant fits, validates and extends a single variant on its own copy of the split
func (f *Forecaster) runVariant(ctx context.Context, factory VariantFactory, split *timedataset.Split, h int) VariantResult {
	var res VariantResult
	model, err := factory(f.variantOptions())
	if err != nil {
		res.Name = "unknown"
		res.fail(fmt.Errorf("unable to create variant, %w", err))
		return res
	}
	res.Name = model.Name()
	train, test := split.Train.Copy(), split.Test.Copy()

	start := time.Now()
	err = model.Fit(ctx, train)
	f.metrics.observeFit(res.Name, time.Since(start))
	if err != nil {
		slog.Warn("variant fit failed", "variant", res.Name, "error", err)
		f.metrics.observeVariant(res.Name, outcomeFitError)
		res.fail(err)
		return res
	}

	if err := f.validate(model, test, &res); err != nil {
		slog.Warn("variant validation failed", "variant", res.Name, "error", err)
		f.metrics.observeVariant(res.Name, outcomeScoreError)
		res.fail(err)
		return res
	}

	if err := model.Update(test); err != nil {
		slog.Warn("variant update failed", "variant", res.Name, "error", err)
		f.metrics.observeVariant(res.Name, outcomeUpdateError)
		res.fail(fmt.Errorf("unable to extend with test data, %w", err))
		return res
	}
	if h > 0 {
		fc, err := model.Predict(h)
		if err != nil {
			f.metrics.observeVariant(res.Name, outcomeFailed)
			res.fail(fmt.Errorf("unable to forecast %d periods, %w", h, err))
			return res
		}
		res.Forecast = fc
	}

	if summary, err := model.Summary(); err == nil {
		res.Summary = &summary
	}
	slog.Info("variant complete", "variant", res.Name, "rmse", res.RMSE, "order", summaryOrder(res.Summary))
	f.metrics.observeVariant(res.Name, outcomeOK)
	return res
}

// validate predicts the test span, aligns it to the test index and scores it
func (f *Forecaster) validate(model forecast.Model, test *timedataset.TimeDataset, res *VariantResult) error {
	pred, err := model.Predict(test.Len())
	if err != nil {
		return fmt.Errorf("unable to predict test periods, %w", err)
	}
	pred.T = make([]time.Time, test.Len())
	copy(pred.T, test.T)
	res.TestPrediction = pred

	rmse, err := forecast.RMSE(pred.Forecast, test.Y)
	if err != nil {
		return fmt.Errorf("unable to score test periods, %w", err)
	}
	res.RMSE = rmse
	return nil
}

func summaryOrder(s *forecast.Summary) string {
	if s == nil {
		return ""
	}
	return s.Order.String()
}

// Features lists the forecastable features of a location excluding the configured drop
// columns
func (f *Forecaster) Features(ctx context.Context, zipcode string) ([]string, error) {
	names, err := f.store.FeatureNames(ctx, zipcode)
	if err != nil {
		return nil, fmt.Errorf("unable to list features for %s, %w", zipcode, err)
	}
	features := make([]string, 0, len(names))
	for _, name := range names {
		if f.opt.dropped(name) {
			continue
		}
		features = append(features, name)
	}
	return features, nil
}

// Trends decomposes every feature of a location with the given period. A period of zero
// uses the configured trend period. Features that cannot be decomposed are reported with
// their error.
func (f *Forecaster) Trends(ctx context.Context, zipcode string, period int) (*Trends, error) {
	if period == 0 {
		period = f.opt.TrendPeriod
	}
	features, err := f.Features(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	res := &Trends{
		Locale:   f.locale(ctx, zipcode),
		Period:   period,
		Features: make([]FeatureTrend, 0, len(features)),
	}
	for _, feature := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trend := FeatureTrend{Feature: feature}
		td, err := f.store.Series(ctx, zipcode, feature)
		if err == nil {
			trend.Decomposition, err = stats.Decompose(td.DropNan(), period)
		}
		if err != nil {
			slog.Warn("unable to decompose feature", "zipcode", zipcode, "feature", feature, "error", err)
			trend.Err = err
			trend.Error = err.Error()
		}
		res.Features = append(res.Features, trend)
	}
	return res, nil
}
