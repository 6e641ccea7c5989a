// Package mat holds small helpers for building gonum matrices.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrColMismatch = errors.New("column size mismatch")

// NewDenseFromArray builds a dense matrix from row slices. Every row must have the same
// length. Empty input returns mat.ErrZeroLength.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, mat.ErrZeroLength
	}
	n := len(x[0])
	data := make([]float64, 0, len(x)*n)
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns but expected %d, %w", i, len(row), n, ErrColMismatch)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(x), n, data), nil
}

// ColVector wraps y as an n by 1 matrix without copying
func ColVector(y []float64) *mat.Dense {
	if len(y) == 0 {
		return nil
	}
	return mat.NewDense(len(y), 1, y)
}
