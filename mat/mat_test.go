package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDenseFromArray(t *testing.T) {
	testData := map[string]struct {
		err error
		x   [][]float64
		m   int
		n   int
	}{
		"nil input": {
			err: mat.ErrZeroLength,
		},
		"empty row": {
			err: mat.ErrZeroLength,
			x:   [][]float64{{}},
		},
		"single element": {
			x: [][]float64{{1}},
			m: 1, n: 1,
		},
		"one row multiple cols": {
			x: [][]float64{{1, 2, 3}},
			m: 1, n: 3,
		},
		"multiple rows and cols": {
			x: [][]float64{{1, 2, 3}, {4, 5, 6}},
			m: 2, n: 3,
		},
		"inconsistent cols": {
			err: ErrColMismatch,
			x:   [][]float64{{1, 2, 3}, {4, 5}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			mx, err := NewDenseFromArray(td.x)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)

			m, n := mx.Dims()
			assert.Equal(t, td.m, m, "m")
			assert.Equal(t, td.n, n, "n")
			for ri, row := range td.x {
				assert.Equal(t, row, mat.Row(nil, ri, mx), "row %d", ri)
			}
		})
	}
}

func TestColVector(t *testing.T) {
	assert.Nil(t, ColVector(nil))

	v := ColVector([]float64{1, 2, 3})
	m, n := v.Dims()
	assert.Equal(t, 3, m)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2.0, v.At(1, 0))
}
