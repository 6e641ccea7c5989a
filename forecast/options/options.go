// Package options configures the forecast variants.
package options

import (
	"errors"
	"fmt"
	"io"

	"github.com/gamyers/solar-697/forecast/util"
)

var (
	ErrInvalidConfidenceLevel = errors.New("confidence level must be between 0 and 1")
	ErrInvalidPeriod          = errors.New("seasonal period must be at least 2")
	ErrInvalidFourierOrders   = errors.New("fourier orders must be between 1 and half the period")
)

// Options configures both forecast variants
type Options struct {
	// ConfidenceLevel is the coverage of the prediction intervals
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`

	Fourier  FourierOptions  `json:"fourier" yaml:"fourier"`
	Seasonal SeasonalOptions `json:"seasonal" yaml:"seasonal"`
}

// NewDefaultOptions returns 95% intervals with monthly seasonality for both variants
func NewDefaultOptions() *Options {
	return &Options{
		ConfidenceLevel: 0.95,
		Fourier:         NewDefaultFourierOptions(),
		Seasonal:        NewDefaultSeasonalOptions(),
	}
}

// Validate returns the default options if o is nil and otherwise checks the configured values
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.ConfidenceLevel <= 0 || o.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("got %.3f, %w", o.ConfidenceLevel, ErrInvalidConfidenceLevel)
	}
	if err := o.Fourier.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fourier options, %w", err)
	}
	if err := o.Seasonal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seasonal options, %w", err)
	}
	return o, nil
}

// Alpha returns the two sided significance level of the prediction intervals
func (o *Options) Alpha() float64 {
	if o == nil {
		return 1 - NewDefaultOptions().ConfidenceLevel
	}
	return 1 - o.ConfidenceLevel
}

func (o Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sConfidence Level: %.2f\n", prefix, util.IndentExpand(indent, indentGrowth), o.ConfidenceLevel); err != nil {
		return err
	}
	if err := o.Fourier.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.Seasonal.TablePrint(w, prefix, indent, indentGrowth)
}
