package selection

import (
	"context"
	"testing"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeValues(t *testing.T) {
	testData := map[string]struct {
		r        Range
		expected []int
	}{
		"empty":  {r: NewRange(2, 1), expected: nil},
		"fixed":  {r: Fixed(3), expected: []int{3}},
		"spread": {r: NewRange(0, 3), expected: []int{0, 1, 2, 3}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.r.Values())
			assert.Equal(t, len(td.expected), td.r.Len())
		})
	}
}

func TestGenerateOrders(t *testing.T) {
	orders := GenerateOrders(NewOrderRanges(NewRange(0, 2), NewRange(0, 1), NewRange(0, 2)))
	require.Len(t, orders, 18)
	assert.Equal(t, arima.NewOrder(0, 0, 0), orders[0])
	assert.Equal(t, arima.NewOrder(0, 0, 1), orders[1])
	assert.Equal(t, arima.NewOrder(0, 1, 0), orders[3])
	assert.Equal(t, arima.NewOrder(2, 1, 2), orders[17])

	seen := make(map[arima.Order]struct{})
	for _, o := range orders {
		seen[o] = struct{}{}
	}
	assert.Len(t, seen, 18)

	seasonal := GenerateOrders(OrderRanges{
		P: Fixed(1), D: Fixed(0), Q: Fixed(1),
		SP: NewRange(0, 1), SD: Fixed(1), SQ: NewRange(0, 1),
		Period: 12,
	})
	require.Len(t, seasonal, 4)
	assert.Equal(t, arima.NewSeasonalOrder(1, 0, 1, 0, 1, 0, 12), seasonal[0])
	assert.Equal(t, arima.NewSeasonalOrder(1, 0, 1, 1, 1, 1, 12), seasonal[3])

	assert.Empty(t, GenerateOrders(NewOrderRanges(NewRange(1, 0), Fixed(0), Fixed(0))))
}

func TestRankStable(t *testing.T) {
	results := []FitResult{
		{Order: arima.NewOrder(0, 0, 0), AIC: 1},
		{Order: arima.NewOrder(1, 0, 0), AIC: 0},
		{Order: arima.NewOrder(2, 0, 0), AIC: 1},
		{Order: arima.NewOrder(3, 0, 0), AIC: -1},
	}
	rank(results)
	assert.Equal(t, []arima.Order{
		arima.NewOrder(3, 0, 0),
		arima.NewOrder(1, 0, 0),
		arima.NewOrder(0, 0, 0),
		arima.NewOrder(2, 0, 0),
	}, []arima.Order{results[0].Order, results[1].Order, results[2].Order, results[3].Order})
}

func ar1Series() []float64 {
	return timedataset.GenerateAR1(200, 0.7, 1.0, 5).Add(timedataset.GenerateConstY(200, 20))
}

func TestGridSearch(t *testing.T) {
	y := ar1Series()
	orders := GenerateOrders(NewOrderRanges(NewRange(0, 2), Fixed(0), NewRange(0, 1)))

	var attempts int
	opt := NewDefaultGridOptions()
	opt.OnFit = func(arima.Order, error) { attempts++ }

	results, err := GridSearch(context.Background(), y, orders, opt)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, len(orders), attempts)
	assert.LessOrEqual(t, len(results), len(orders))

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].AIC, results[i].AIC)
	}
	for _, res := range results {
		require.NotNil(t, res.Model)
		assert.Equal(t, res.Order, res.Model.Order())
		assert.InDelta(t, res.Model.AIC(), res.AIC, 1e-12)
	}
	assert.NotEqual(t, arima.NewOrder(0, 0, 0), results[0].Order)
}

func TestGridSearchFailures(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	testData := map[string]struct {
		ctx    context.Context
		y      []float64
		orders []arima.Order
		opt    *GridOptions
		maxLen int
		err    error
	}{
		"empty search space": {
			ctx:    context.Background(),
			y:      ar1Series(),
			orders: GenerateOrders(NewOrderRanges(NewRange(2, 1), Fixed(0), Fixed(0))),
			err:    ErrNoViableModel,
		},
		"every candidate fails": {
			ctx:    context.Background(),
			y:      []float64{1, 2, 3, 4, 5},
			orders: GenerateOrders(NewOrderRanges(NewRange(2, 3), Fixed(1), NewRange(2, 3))),
			err:    ErrNoViableModel,
		},
		"cancelled": {
			ctx:    cancelled,
			y:      ar1Series(),
			orders: GenerateOrders(NewOrderRanges(NewRange(0, 1), Fixed(0), Fixed(0))),
			err:    context.Canceled,
		},
		"capped": {
			ctx:    context.Background(),
			y:      ar1Series(),
			orders: GenerateOrders(NewOrderRanges(NewRange(0, 2), Fixed(0), NewRange(0, 2))),
			opt:    &GridOptions{MaxCandidates: 2},
			maxLen: 2,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			results, err := GridSearch(td.ctx, td.y, td.orders, td.opt)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				assert.NotNil(t, results)
				assert.Empty(t, results)
				return
			}
			require.NoError(t, err)
			assert.LessOrEqual(t, len(results), td.maxLen)
		})
	}
}

func TestStepwiseNonSeasonal(t *testing.T) {
	y := ar1Series()

	opt := NewDefaultStepwiseOptions()
	opt.Seasonal = false
	opt.D = 0
	opt.StartP, opt.StartQ = 1, 1
	opt.MaxP, opt.MaxQ = 3, 4

	results, err := Stepwise(context.Background(), y, opt)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	seen := make(map[arima.Order]struct{})
	var ar1 *FitResult
	for i, res := range results {
		if i > 0 {
			assert.LessOrEqual(t, results[i-1].AIC, res.AIC)
		}
		assert.True(t, res.Order.Seasonal.IsZero(), "seasonal terms in %s", res.Order)
		assert.Equal(t, 0, res.Order.D)
		assert.LessOrEqual(t, res.Order.P, 3)
		assert.LessOrEqual(t, res.Order.Q, 4)

		_, exists := seen[res.Order]
		assert.False(t, exists, "%s fit twice", res.Order)
		seen[res.Order] = struct{}{}

		if res.Order == arima.NewOrder(1, 0, 0) {
			ar1 = &results[i]
		}
	}
	require.NotNil(t, ar1, "seed model was not fit")
	assert.LessOrEqual(t, results[0].AIC, ar1.AIC)
}

func TestStepwiseSeasonal(t *testing.T) {
	y := timedataset.GenerateLinearY(120, 50, 0.2).
		Add(timedataset.GenerateSeasonalY(120, 15, 12, 1, 0)).
		Add(timedataset.GenerateNoise(120, 1, 9))

	opt := NewDefaultStepwiseOptions()
	opt.D = 0
	opt.StartP, opt.StartQ = 1, 1
	opt.MaxP, opt.MaxQ = 2, 2
	opt.MaxSP, opt.MaxSQ = 1, 1
	opt.MaxModels = 12

	d, sd := opt.Differences(y)
	assert.Equal(t, 0, d)
	assert.Equal(t, 1, sd)

	results, err := Stepwise(context.Background(), y, opt)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 12)
	for _, res := range results {
		assert.Equal(t, 12, res.Order.Seasonal.Period)
		assert.Equal(t, 1, res.Order.Seasonal.D)
		assert.LessOrEqual(t, res.Order.Seasonal.P, 1)
		assert.LessOrEqual(t, res.Order.Seasonal.Q, 1)
	}
}

func TestStepwiseFailures(t *testing.T) {
	opt := NewDefaultStepwiseOptions()
	opt.Period = 1
	_, err := Stepwise(context.Background(), ar1Series(), opt)
	assert.ErrorIs(t, err, arima.ErrInvalidOrder)

	opt = NewDefaultStepwiseOptions()
	opt.Seasonal = false
	opt.D = 1
	results, err := Stepwise(context.Background(), []float64{1, 2, 3}, opt)
	assert.ErrorIs(t, err, ErrNoViableModel)
	assert.Empty(t, results)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Stepwise(cancelled, ar1Series(), nil)
	assert.ErrorIs(t, err, context.Canceled)

	opt = NewDefaultStepwiseOptions()
	opt.Seasonal = false
	opt.D = 0
	opt.MaxModels = 1
	results, err = Stepwise(context.Background(), ar1Series(), opt)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func whiteNoise() []float64 {
	return timedataset.GenerateConstY(108, 200).Add(timedataset.GenerateNoise(108, 50, 10))
}

func TestGridSearchSharedSample(t *testing.T) {
	testData := map[string]struct {
		ranges OrderRanges
		nobs   int
	}{
		"seasonal autoregressive": {
			ranges: OrderRanges{P: NewRange(0, 2), D: Fixed(0), Q: Fixed(0), SP: NewRange(0, 2), SD: Fixed(0), SQ: Fixed(0), Period: 12},
			nobs:   108 - 26,
		},
		"mixed differencing": {
			ranges: NewOrderRanges(NewRange(0, 2), NewRange(0, 1), Fixed(0)),
			nobs:   108 - 3,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			orders := GenerateOrders(td.ranges)
			results, err := GridSearch(context.Background(), whiteNoise(), orders, nil)
			require.NoError(t, err)
			require.Len(t, results, len(orders))

			for _, res := range results {
				assert.Equal(t, td.nobs, res.Model.NObs(), "%s", res.Order)
			}
			best := results[0].Order
			assert.Zero(t, best.NumCoefficients(), "selected %s", best)
			assert.Zero(t, best.Differences(), "selected %s", best)
		})
	}
}

func TestStepwiseWhiteNoise(t *testing.T) {
	opt := NewDefaultStepwiseOptions()
	opt.D, opt.SD = 0, 0

	results, err := Stepwise(context.Background(), whiteNoise(), opt)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0].Order
	assert.Equal(t, "ARIMA(0,0,0)", best.String())
	for _, res := range results {
		assert.Equal(t, results[0].Model.NObs(), res.Model.NObs(), "%s", res.Order)
	}
}

func TestStepwiseSeasonalSine(t *testing.T) {
	y := timedataset.GenerateConstY(108, 200).
		Add(timedataset.GenerateSeasonalY(108, 100, 12, 1, 0)).
		Add(timedataset.GenerateNoise(108, 20, 16))

	opt := NewDefaultStepwiseOptions()
	opt.D, opt.SD = 0, 1

	results, err := Stepwise(context.Background(), y, opt)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0].Order
	assert.Less(t, best.Seasonal.P, 2, "selected %s", best)
	assert.Equal(t, 1, best.Seasonal.D)
	for _, res := range results {
		// the bounds allow (5,0,0)(2,1,0)[12] which burns 41 observations
		assert.Equal(t, 108-41, res.Model.NObs(), "%s", res.Order)
	}
}
