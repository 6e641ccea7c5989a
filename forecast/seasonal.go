package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/forecast/options"
	"github.com/gamyers/solar-697/selection"
	"github.com/gamyers/solar-697/timedataset"
)

const SeasonalARIMAName = "seasonal_arima"

// SeasonalARIMA searches a seasonal ARIMA directly on the series, letting seasonal
// differencing and seasonal lag terms capture the annual cycle.
type SeasonalARIMA struct {
	opt   options.SeasonalOptions
	alpha float64

	model    *arima.Model
	fits     int
	tl       timeline
	trainEnd time.Time
	scores   *Scores
}

// NewSeasonalARIMA creates an untrained seasonal variant. If opt is nil the defaults are used.
func NewSeasonalARIMA(opt *options.Options) (*SeasonalARIMA, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &SeasonalARIMA{
		opt:   opt.Seasonal,
		alpha: opt.Alpha(),
	}, nil
}

func (s *SeasonalARIMA) Name() string {
	return SeasonalARIMAName
}

// Fit searches and fits the seasonal model. At least two seasonal periods of data are
// required.
func (s *SeasonalARIMA) Fit(ctx context.Context, td *timedataset.TimeDataset) error {
	if s == nil {
		return ErrUninitializedForecast
	}
	if td.Len() < 2*s.opt.Period {
		return fmt.Errorf("%s needs at least %d observations but got %d, %w",
			s.Name(), 2*s.opt.Period, td.Len(), ErrInsufficientData)
	}
	tl, err := newTimeline(td)
	if err != nil {
		return err
	}

	results, err := selection.Stepwise(ctx, td.Y, s.opt.Search.Stepwise(true, s.opt.Period))
	if err != nil {
		return fitError(s.Name(), err)
	}
	best := results[0]
	slog.Debug("selected seasonal model", "variant", s.Name(), "order", best.Order.String(), "aic", best.AIC, "candidates", len(results))

	s.model = best.Model
	s.fits = len(results)
	s.tl = tl
	s.trainEnd = tl.end
	if scores, err := NewScores(best.Model.Fitted(), td.Y); err == nil {
		s.scores = scores
	}
	return nil
}

// Predict forecasts h points past the last observation
func (s *SeasonalARIMA) Predict(h int) (*Prediction, error) {
	if s == nil {
		return nil, ErrUninitializedForecast
	}
	if s.model == nil {
		return nil, ErrUntrainedForecast
	}
	if err := validateHorizon(h); err != nil {
		return nil, err
	}

	fc, err := s.model.Predict(h, s.alpha)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast seasonal model, %w", err)
	}
	return &Prediction{
		T:        s.tl.future(h),
		Forecast: fc.Mean,
		Lower:    fc.Lower,
		Upper:    fc.Upper,
	}, nil
}

// Update appends td to the model state without a new order search
func (s *SeasonalARIMA) Update(td *timedataset.TimeDataset) error {
	if s == nil {
		return ErrUninitializedForecast
	}
	if s.model == nil {
		return ErrUntrainedForecast
	}
	if td.Len() == 0 {
		return nil
	}
	if err := s.tl.check(td); err != nil {
		return err
	}
	if err := s.model.Update(td.Y); err != nil {
		return fmt.Errorf("unable to update seasonal model, %w", err)
	}
	s.tl.extend(td)
	return nil
}

// Summary describes the fit model
func (s *SeasonalARIMA) Summary() (Summary, error) {
	if s == nil {
		return Summary{}, ErrUninitializedForecast
	}
	if s.model == nil {
		return Summary{}, ErrUntrainedForecast
	}
	sum, err := newSummary(s.Name(), s.tl, s.trainEnd, s.model, s.fits)
	if err != nil {
		return Summary{}, err
	}
	sum.Scores = s.scores
	return sum, nil
}
