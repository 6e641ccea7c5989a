package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSE(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  float64
		err       error
	}{
		"identical": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
			expected:  0,
		},
		"constant offset": {
			predicted: []float64{2, 3, 4},
			actual:    []float64{1, 2, 3},
			expected:  1,
		},
		"mixed": {
			predicted: []float64{0, 0},
			actual:    []float64{3, 4},
			expected:  math.Sqrt(12.5),
		},
		"nan skipped": {
			predicted: []float64{math.NaN(), 2},
			actual:    []float64{5, 4},
			expected:  2,
		},
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
		"empty": {
			err: ErrNoValidPoints,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rmse, err := RMSE(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rmse, 0.0)
			assert.InDelta(t, td.expected, rmse, 1e-12)
		})
	}
}

func TestNewScores(t *testing.T) {
	actual := []float64{1, 2, 4, 8}
	predicted := []float64{1, 2, 4, 8}

	scores, err := NewScores(predicted, actual)
	require.NoError(t, err)
	assert.Equal(t, &Scores{R2: 1}, scores)

	predicted = []float64{2, 2, 4, 8}
	scores, err = NewScores(predicted, actual)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, scores.MSE, 1e-12)
	assert.InDelta(t, 0.5, scores.RMSE, 1e-12)
	assert.InDelta(t, 0.25, scores.MAPE, 1e-12)
	assert.Less(t, scores.R2, 1.0)

	_, err = NewScores([]float64{1}, actual)
	assert.ErrorIs(t, err, ErrResLenMismatch)
}
