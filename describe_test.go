package forecaster

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/gamyers/solar-697/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeValues(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		expected FeatureStats
		err      error
	}{
		"ascending": {
			y:        []float64{8, 1, 7, 2, 6, 3, 5, 4},
			expected: FeatureStats{Count: 8, Mean: 4.5, Std: math.Sqrt(6), Min: 1, Q25: 2, Median: 4, Q75: 6, Max: 8},
		},
		"nan ignored": {
			y:        []float64{math.NaN(), 3, 3, math.NaN(), 3, 3},
			expected: FeatureStats{Count: 4, Mean: 3, Min: 3, Q25: 3, Median: 3, Q75: 3, Max: 3},
		},
		"single value": {
			y:        []float64{-2},
			expected: FeatureStats{Count: 1, Mean: -2, Min: -2, Q25: -2, Median: -2, Q75: -2, Max: -2},
		},
		"all nan": {
			y:   []float64{math.NaN(), math.NaN()},
			err: ErrNoObservations,
		},
		"empty": {
			err: ErrNoObservations,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := describeValues(td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected.Count, res.Count)
			assert.InDelta(t, td.expected.Mean, res.Mean, 1e-9)
			assert.InDelta(t, td.expected.Std, res.Std, 1e-9)
			assert.InDeltaSlice(t,
				[]float64{td.expected.Min, td.expected.Q25, td.expected.Median, td.expected.Q75, td.expected.Max},
				[]float64{res.Min, res.Q25, res.Median, res.Q75, res.Max},
				1e-9,
			)
		})
	}
}

func TestDescribe(t *testing.T) {
	s := newTestStore(t)
	gappy := monthlySeries(t, 24, 10, 2, 21)
	for i := 0; i < 24; i += 4 {
		gappy.Y[i] = math.NaN()
	}
	empty, err := timedataset.NewUnivariateDataset(
		timedataset.GenerateMonthlyT(3, monthlyStart),
		[]float64{math.NaN(), math.NaN(), math.NaN()},
	)
	require.NoError(t, err)
	s.series[testZipcode]["Gappy"] = gappy
	s.series[testZipcode]["Empty"] = empty

	f, err := New(s, testOptions())
	require.NoError(t, err)

	desc, err := f.Describe(context.Background(), testZipcode)
	require.NoError(t, err)
	assert.Equal(t, "CA", desc.Locale.State)

	byFeature := make(map[string]FeatureStats)
	for _, fs := range desc.Features {
		byFeature[fs.Feature] = fs
	}
	assert.Len(t, byFeature, 5)
	assert.NotContains(t, byFeature, "zipcode")
	assert.NotContains(t, byFeature, "location_id")

	ghi := byFeature["GHI"]
	require.NoError(t, ghi.Err)
	assert.Equal(t, 132, ghi.Count)
	assert.Less(t, ghi.Min, ghi.Q25)
	assert.Less(t, ghi.Q25, ghi.Median)
	assert.Less(t, ghi.Median, ghi.Q75)
	assert.Less(t, ghi.Q75, ghi.Max)
	assert.InDelta(t, 150+0.2*131/2, ghi.Mean, 2)
	require.NotNil(t, ghi.Data)
	assert.Equal(t, 132, ghi.Data.Len())

	gap := byFeature["Gappy"]
	require.NoError(t, gap.Err)
	assert.Equal(t, 18, gap.Count)
	assert.Equal(t, 18, gap.Data.Len())

	missing := byFeature["Empty"]
	assert.ErrorIs(t, missing.Err, ErrNoObservations)
	assert.NotEmpty(t, missing.Error)
	assert.Nil(t, missing.Data)

	var buf bytes.Buffer
	require.NoError(t, desc.TablePrint(&buf))
	out := buf.String()
	assert.Contains(t, out, "San Diego, San Diego, CA 92101")
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, ErrNoObservations.Error())

	_, err = f.Describe(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrUnknownLocation)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Describe(cancelled, testZipcode)
	assert.ErrorIs(t, err, context.Canceled)
}
