// Package feature labels the exogenous regressors used by the Fourier forecast and builds
// design matrices from them.
package feature

import "fmt"

type FeatureType int

const (
	FeatureTypeSeasonality FeatureType = iota
)

func (f FeatureType) String() string {
	switch f {
	case FeatureTypeSeasonality:
		return "seasonality"
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// Feature is a labelled regressor
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// Data pairs a feature with its values, one per observation
type Data struct {
	F    Feature
	Data []float64
}
