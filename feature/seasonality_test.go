package feature

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonalityString(t *testing.T) {
	feat := NewSeasonality("annual", FourierCompCos, 2)
	assert.Equal(t, "seas_annual_02_cos", feat.String())
	assert.Equal(t, "seasonality", feat.Type().String())
}

func TestSeasonalityGet(t *testing.T) {
	feat := NewSeasonality("annual", FourierCompCos, 2)

	testData := map[string]struct {
		label     string
		expVal    string
		expExists bool
	}{
		"unknown": {
			label: "unknown",
		},
		"capitalized": {
			label:     "NAME",
			expVal:    "annual",
			expExists: true,
		},
		"fourier component": {
			label:     "fourier_component",
			expVal:    "cos",
			expExists: true,
		},
		"order": {
			label:     "order",
			expVal:    "2",
			expExists: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			val, exists := feat.Get(td.label)
			assert.Equal(t, td.expExists, exists, "exists")
			assert.Equal(t, td.expVal, val, "value")
		})
	}
}

func TestSeasonalityUnmarshalJSON(t *testing.T) {
	feat := NewSeasonality("annual", FourierCompSin, 3)
	out, err := json.Marshal(feat.Decode())
	require.NoError(t, err)

	var nextFeat Seasonality
	require.NoError(t, json.Unmarshal(out, &nextFeat))
	assert.Equal(t, feat, &nextFeat)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"annual","order":"x"}`), &nextFeat))
}

func TestFourier(t *testing.T) {
	testData := map[string]struct {
		period   float64
		orders   int
		expected []string
	}{
		"monthly two orders": {
			period:   12,
			orders:   2,
			expected: []string{"seas_annual_01_cos", "seas_annual_01_sin", "seas_annual_02_cos", "seas_annual_02_sin"},
		},
		"nyquist order drops sin": {
			period:   4,
			orders:   2,
			expected: []string{"seas_annual_01_cos", "seas_annual_01_sin", "seas_annual_02_cos"},
		},
		"no orders": {
			period: 12,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			set := Fourier("annual", Index(0, 24), td.period, td.orders)
			var labels []string
			for _, f := range set.Labels().Labels() {
				labels = append(labels, f.String())
			}
			assert.Equal(t, td.expected, labels)
		})
	}

	set := Fourier("annual", Index(3, 2), 12, 1)
	cos := set[NewSeasonality("annual", FourierCompCos, 1).String()].Data
	sin := set[NewSeasonality("annual", FourierCompSin, 1).String()].Data
	assert.InDeltaSlice(t, []float64{0, math.Cos(2 * math.Pi * 4 / 12)}, cos, 1e-12)
	assert.InDeltaSlice(t, []float64{1, math.Sin(2 * math.Pi * 4 / 12)}, sin, 1e-12)
}

func TestIndex(t *testing.T) {
	assert.Equal(t, []float64{5, 6, 7}, Index(5, 3))
	assert.Empty(t, Index(0, 0))
}
