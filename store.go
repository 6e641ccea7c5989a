package forecaster

import (
	"context"
	"errors"

	"github.com/gamyers/solar-697/timedataset"
)

var (
	ErrNoSeriesStore   = errors.New("no series store provided")
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownFeature  = errors.New("unknown feature")
)

// Locale labels a postal code location
type Locale struct {
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
	County  string `json:"county"`
	State   string `json:"state"`
}

// String returns "city, county, state zipcode" skipping empty labels
func (l Locale) String() string {
	out := ""
	for _, part := range []string{l.City, l.County, l.State} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	if out == "" {
		return l.Zipcode
	}
	return out + " " + l.Zipcode
}

// SeriesStore provides the observed series of each location. Implementations return
// ErrUnknownLocation or ErrUnknownFeature, possibly wrapped, for missing data.
type SeriesStore interface {
	Series(ctx context.Context, zipcode, feature string) (*timedataset.TimeDataset, error)
	FeatureNames(ctx context.Context, zipcode string) ([]string, error)
	Locale(ctx context.Context, zipcode string) (Locale, error)
}
