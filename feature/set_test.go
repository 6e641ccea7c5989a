package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSetLabels(t *testing.T) {
	set := make(Set)
	set.Add(NewSeasonality("annual", FourierCompSin, 1), []float64{1, 2})
	set.Add(NewSeasonality("annual", FourierCompCos, 1), []float64{3, 4})
	set.Add(NewSeasonality("annual", FourierCompCos, 1), []float64{5, 6})

	labels := set.Labels()
	require.Equal(t, 2, labels.Len())
	assert.Equal(t, "seas_annual_01_cos", labels.Labels()[0].String())

	idx, exists := labels.Index(NewSeasonality("annual", FourierCompSin, 1))
	assert.True(t, exists)
	assert.Equal(t, 1, idx)

	idx, exists = labels.Index(NewSeasonality("annual", FourierCompSin, 2))
	assert.False(t, exists)
	assert.Equal(t, -1, idx)

	var nilSet Set
	assert.Nil(t, nilSet.Labels())
	assert.Equal(t, 0, nilSet.Labels().Len())
}

func TestSetMatrix(t *testing.T) {
	set := make(Set)
	set.Add(NewSeasonality("annual", FourierCompSin, 1), []float64{1, 2, 3})
	set.Add(NewSeasonality("annual", FourierCompCos, 1), []float64{4, 5, 6})

	testData := map[string]struct {
		set       Set
		intercept bool
		expected  *mat.Dense
		err       error
	}{
		"no intercept": {
			set:      set,
			expected: mat.NewDense(3, 2, []float64{4, 1, 5, 2, 6, 3}),
		},
		"intercept": {
			set:       set,
			intercept: true,
			expected:  mat.NewDense(3, 3, []float64{1, 4, 1, 1, 5, 2, 1, 6, 3}),
		},
		"empty": {
			set: make(Set),
			err: mat.ErrZeroLength,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			mx, err := td.set.Matrix(td.intercept)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, mat.Equal(td.expected, mx))
		})
	}
}
