package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/feature"
	"github.com/gamyers/solar-697/forecast/options"
	"github.com/gamyers/solar-697/linearmodel"
	mat_ "github.com/gamyers/solar-697/mat"
	"github.com/gamyers/solar-697/selection"
	"github.com/gamyers/solar-697/timedataset"
)

const FourierARIMAName = "fourier_arima"

// FourierARIMA regresses the series on an intercept and Fourier terms of the observation
// index and models the regression residual with a non seasonal ARIMA picked by a stepwise
// search. Prediction intervals only reflect the ARIMA forecast error.
type FourierARIMA struct {
	opt   options.FourierOptions
	alpha float64

	reg      *linearmodel.OLSRegression
	labels   *feature.Labels
	model    *arima.Model
	fits     int
	tl       timeline
	trainEnd time.Time
	scores   *Scores
}

// NewFourierARIMA creates an untrained Fourier variant. If opt is nil the defaults are used.
func NewFourierARIMA(opt *options.Options) (*FourierARIMA, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &FourierARIMA{
		opt:   opt.Fourier,
		alpha: opt.Alpha(),
	}, nil
}

func (f *FourierARIMA) Name() string {
	return FourierARIMAName
}

// features generates the Fourier terms for n positions starting at the given index
func (f *FourierARIMA) features(start, n int) feature.Set {
	return feature.Fourier(f.opt.Name, feature.Index(start, n), float64(f.opt.Period), f.opt.Orders)
}

func (f *FourierARIMA) regression(start, n int) ([]float64, error) {
	x, err := f.features(start, n).Matrix(false)
	if err != nil {
		return nil, err
	}
	return f.reg.Predict(x)
}

// Fit trains the regression and searches the residual ARIMA. At least two seasonal periods
// of data are required.
func (f *FourierARIMA) Fit(ctx context.Context, td *timedataset.TimeDataset) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	if td.Len() < 2*f.opt.Period {
		return fmt.Errorf("%s needs at least %d observations but got %d, %w",
			f.Name(), 2*f.opt.Period, td.Len(), ErrInsufficientData)
	}
	tl, err := newTimeline(td)
	if err != nil {
		return err
	}

	n := td.Len()
	set := f.features(0, n)
	x, err := set.Matrix(false)
	if err != nil {
		return fmt.Errorf("unable to build fourier design matrix, %w", err)
	}
	reg := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err := reg.Fit(x, mat_.ColVector(td.Y)); err != nil {
		return fmt.Errorf("%s: unable to fit fourier regression, %w, %w", f.Name(), ErrFit, err)
	}
	fit, err := reg.Predict(x)
	if err != nil {
		return fmt.Errorf("%s: unable to evaluate fourier regression, %w, %w", f.Name(), ErrFit, err)
	}
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = td.Y[i] - fit[i]
	}

	results, err := selection.Stepwise(ctx, resid, f.opt.Search.Stepwise(false, f.opt.Period))
	if err != nil {
		return fitError(f.Name(), err)
	}
	best := results[0]
	slog.Debug("selected residual model", "variant", f.Name(), "order", best.Order.String(), "aic", best.AIC, "candidates", len(results))

	f.reg = reg
	f.labels = set.Labels()
	f.model = best.Model
	f.fits = len(results)
	f.tl = tl
	f.trainEnd = tl.end

	in := make([]float64, n)
	for i, v := range best.Model.Fitted() {
		in[i] = fit[i] + v
	}
	if scores, err := NewScores(in, td.Y); err == nil {
		f.scores = scores
	}
	return nil
}

// Predict forecasts h points past the last observation
func (f *FourierARIMA) Predict(h int) (*Prediction, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if f.model == nil {
		return nil, ErrUntrainedForecast
	}
	if err := validateHorizon(h); err != nil {
		return nil, err
	}

	reg, err := f.regression(f.tl.n, h)
	if err != nil {
		return nil, fmt.Errorf("unable to project fourier terms, %w", err)
	}
	fc, err := f.model.Predict(h, f.alpha)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast residual model, %w", err)
	}

	res := &Prediction{
		T:        f.tl.future(h),
		Forecast: make([]float64, h),
		Lower:    make([]float64, h),
		Upper:    make([]float64, h),
	}
	for i := 0; i < h; i++ {
		res.Forecast[i] = reg[i] + fc.Mean[i]
		res.Lower[i] = reg[i] + fc.Lower[i]
		res.Upper[i] = reg[i] + fc.Upper[i]
	}
	return res, nil
}

// Update extends the observation index with td. The new observations become residuals under
// the fixed regression coefficients and refresh the ARIMA state without a new order search.
func (f *FourierARIMA) Update(td *timedataset.TimeDataset) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	if f.model == nil {
		return ErrUntrainedForecast
	}
	if td.Len() == 0 {
		return nil
	}
	if err := f.tl.check(td); err != nil {
		return err
	}

	reg, err := f.regression(f.tl.n, td.Len())
	if err != nil {
		return fmt.Errorf("unable to project fourier terms, %w", err)
	}
	resid := make([]float64, td.Len())
	for i := range resid {
		resid[i] = td.Y[i] - reg[i]
	}
	if err := f.model.Update(resid); err != nil {
		return fmt.Errorf("unable to update residual model, %w", err)
	}
	f.tl.extend(td)
	return nil
}

// Summary describes the fit model
func (f *FourierARIMA) Summary() (Summary, error) {
	if f == nil {
		return Summary{}, ErrUninitializedForecast
	}
	if f.model == nil {
		return Summary{}, ErrUntrainedForecast
	}
	s, err := newSummary(f.Name(), f.tl, f.trainEnd, f.model, f.fits)
	if err != nil {
		return Summary{}, err
	}
	s.Weights = newWeights(f.labels, f.reg.Intercept(), f.reg.Coef())
	s.Scores = f.scores
	return s, nil
}
