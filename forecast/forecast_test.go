package forecast

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/forecast/options"
	"github.com/gamyers/solar-697/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monthlyStart = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

func irradianceSeries(t *testing.T, n int) *timedataset.TimeDataset {
	y := timedataset.GenerateLinearY(n, 150, 0.2).
		Add(timedataset.GenerateSeasonalY(n, 15, 12, 1, 0)).
		Add(timedataset.GenerateNoise(n, 1, 11))
	td, err := timedataset.NewUnivariateDataset(timedataset.GenerateMonthlyT(n, monthlyStart), y)
	require.NoError(t, err)
	return td
}

func testOptions() *options.Options {
	opt := options.NewDefaultOptions()
	opt.Fourier.Search.MaxModels = 30
	opt.Seasonal.Search.MaxModels = 30
	return opt
}

func newModels(t *testing.T, opt *options.Options) map[string]Model {
	fourier, err := NewFourierARIMA(opt)
	require.NoError(t, err)
	seasonal, err := NewSeasonalARIMA(opt)
	require.NoError(t, err)
	return map[string]Model{
		FourierARIMAName:  fourier,
		SeasonalARIMAName: seasonal,
	}
}

func TestModelFitPredict(t *testing.T) {
	split, err := irradianceSeries(t, 120).Split(12)
	require.NoError(t, err)

	for name, model := range newModels(t, testOptions()) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, model.Name())
			require.NoError(t, model.Fit(context.Background(), split.Train))

			pred, err := model.Predict(split.Test.Len())
			require.NoError(t, err)
			require.Equal(t, 12, pred.Len())
			require.Len(t, pred.Forecast, 12)
			require.Len(t, pred.Lower, 12)
			require.Len(t, pred.Upper, 12)
			assert.Equal(t, split.Test.T, pred.T)
			for i := range pred.Forecast {
				assert.LessOrEqual(t, pred.Lower[i], pred.Forecast[i])
				assert.GreaterOrEqual(t, pred.Upper[i], pred.Forecast[i])
			}

			rmse, err := RMSE(pred.Forecast, split.Test.Y)
			require.NoError(t, err)
			assert.Less(t, rmse, 6.0, "forecast should track the seasonal cycle")

			summary, err := model.Summary()
			require.NoError(t, err)
			assert.Equal(t, name, summary.Name)
			assert.Equal(t, 108, summary.Observations)
			assert.Equal(t, split.Train.T[107], summary.TrainEndTime)
			assert.Positive(t, summary.Candidates)
			require.NotNil(t, summary.Scores)

			var buf bytes.Buffer
			require.NoError(t, summary.TablePrint(&buf, "", "  "))
			assert.Contains(t, buf.String(), summary.Order.String())

			_, err = json.Marshal(summary)
			assert.NoError(t, err)
		})
	}
}

func TestModelUpdate(t *testing.T) {
	split, err := irradianceSeries(t, 120).Split(12)
	require.NoError(t, err)

	for name, model := range newModels(t, testOptions()) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, model.Fit(context.Background(), split.Train))
			before, err := model.Summary()
			require.NoError(t, err)

			require.NoError(t, model.Update(split.Test))
			require.NoError(t, model.Update(nil))

			pred, err := model.Predict(6)
			require.NoError(t, err)
			require.Equal(t, 6, pred.Len())
			assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), pred.T[0])
			assert.Equal(t, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), pred.T[5])

			after, err := model.Summary()
			require.NoError(t, err)
			assert.Equal(t, before.Order, after.Order, "update never changes the order")
			assert.Equal(t, 120, after.Observations)
			assert.Equal(t, before.TrainEndTime, after.TrainEndTime)
			assert.Equal(t, split.Test.T[11], after.LastTime)

			err = model.Update(split.Test)
			assert.ErrorIs(t, err, ErrNonContiguousUpdate)
		})
	}
}

func TestModelErrors(t *testing.T) {
	short := irradianceSeries(t, 20)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	for name, model := range newModels(t, nil) {
		t.Run(name, func(t *testing.T) {
			_, err := model.Predict(3)
			assert.ErrorIs(t, err, ErrUntrainedForecast)
			assert.ErrorIs(t, model.Update(short), ErrUntrainedForecast)
			_, err = model.Summary()
			assert.ErrorIs(t, err, ErrUntrainedForecast)

			err = model.Fit(context.Background(), short)
			assert.ErrorIs(t, err, ErrInsufficientData)
			assert.ErrorIs(t, err, arima.ErrInsufficientData)
			assert.ErrorIs(t, model.Fit(context.Background(), nil), ErrInsufficientData)

			err = model.Fit(cancelled, irradianceSeries(t, 48))
			assert.ErrorIs(t, err, context.Canceled)

			require.NoError(t, model.Fit(context.Background(), irradianceSeries(t, 48)))
			_, err = model.Predict(0)
			assert.ErrorIs(t, err, ErrInvalidHorizon)
		})
	}
}

func TestNilModels(t *testing.T) {
	var fourier *FourierARIMA
	var seasonal *SeasonalARIMA
	for name, model := range map[string]Model{"fourier": fourier, "seasonal": seasonal} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, model.Fit(context.Background(), nil), ErrUninitializedForecast)
			_, err := model.Predict(1)
			assert.ErrorIs(t, err, ErrUninitializedForecast)
			assert.ErrorIs(t, model.Update(nil), ErrUninitializedForecast)
			_, err = model.Summary()
			assert.ErrorIs(t, err, ErrUninitializedForecast)
		})
	}
}

func TestNewModelInvalidOptions(t *testing.T) {
	opt := options.NewDefaultOptions()
	opt.ConfidenceLevel = 0

	_, err := NewFourierARIMA(opt)
	assert.ErrorIs(t, err, options.ErrInvalidConfidenceLevel)
	_, err = NewSeasonalARIMA(opt)
	assert.ErrorIs(t, err, options.ErrInvalidConfidenceLevel)
}

func TestFourierWeights(t *testing.T) {
	train := irradianceSeries(t, 96)
	model, err := NewFourierARIMA(testOptions())
	require.NoError(t, err)
	require.NoError(t, model.Fit(context.Background(), train))

	summary, err := model.Summary()
	require.NoError(t, err)
	require.NotNil(t, summary.Weights)
	require.Len(t, summary.Weights.Coef, 4)

	labels, err := summary.Weights.FeatureLabels()
	require.NoError(t, err)
	require.Len(t, labels, 4)
	assert.Equal(t, "seas_annual_01_cos", labels[0].String())

	// the first harmonic carries the generated sine wave
	var sin1 float64
	for _, fw := range summary.Weights.Coef {
		if fw.Labels["order"] == "1" && fw.Labels["fourier_component"] == "sin" {
			sin1 = fw.Value
		}
	}
	assert.InDelta(t, 15, sin1, 2)
	assert.Len(t, summary.Weights.Coefficients(), 4)

	_, err = (&FeatureWeight{Type: 9}).ToFeature()
	assert.ErrorIs(t, err, ErrUnknownFeatureType)
}
