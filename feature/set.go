package feature

import (
	"sort"

	mat_ "github.com/gamyers/solar-697/mat"
	"gonum.org/v1/gonum/mat"
)

// Set maps the string representation of a feature to its data
type Set map[string]Data

// Add stores the feature values, replacing any values previously stored for it
func (s Set) Add(f Feature, data []float64) {
	s[f.String()] = Data{F: f, Data: data}
}

// Len returns the number of observations of the set
func (s Set) Len() int {
	for _, d := range s {
		return len(d.Data)
	}
	return 0
}

// Labels returns all features in the set sorted by their string representation
func (s Set) Labels() *Labels {
	if s == nil {
		return nil
	}

	labels := make([]Feature, 0, len(s))
	for _, d := range s {
		labels = append(labels, d.F)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].String() < labels[j].String()
	})
	return NewLabels(labels)
}

// Matrix returns the set as an m by n design matrix with one row per observation and
// the columns in label order. A leading column of ones is added if intercept is set.
func (s Set) Matrix(intercept bool) (*mat.Dense, error) {
	labels := s.Labels()
	m := s.Len()
	if labels.Len() == 0 || m == 0 {
		return nil, mat.ErrZeroLength
	}

	offset := 0
	if intercept {
		offset = 1
	}
	rows := make([][]float64, m)
	for i := range rows {
		row := make([]float64, labels.Len()+offset)
		if intercept {
			row[0] = 1.0
		}
		rows[i] = row
	}
	for j, f := range labels.Labels() {
		for i, v := range s[f.String()].Data {
			if i < m {
				rows[i][j+offset] = v
			}
		}
	}
	return mat_.NewDenseFromArray(rows)
}
