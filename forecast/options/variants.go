package options

import (
	"fmt"
	"io"

	"github.com/gamyers/solar-697/forecast/util"
)

// FourierOptions configures the Fourier regression variant. Orders sin and cos pairs at
// Period observations are regressed out before a non seasonal ARIMA is searched on the
// residual.
type FourierOptions struct {
	Name   string        `json:"name" yaml:"name"`
	Period int           `json:"period" yaml:"period"`
	Orders int           `json:"orders" yaml:"orders"`
	Search SearchOptions `json:"search" yaml:"search"`
}

// NewDefaultFourierOptions returns two annual harmonics for monthly data
func NewDefaultFourierOptions() FourierOptions {
	search := newDefaultSearchOptions()
	search.MaxQ = 4
	return FourierOptions{
		Name:   "annual",
		Period: 12,
		Orders: 2,
		Search: search,
	}
}

func (f FourierOptions) Validate() error {
	if f.Period < 2 {
		return fmt.Errorf("got period %d, %w", f.Period, ErrInvalidPeriod)
	}
	if f.Orders < 1 || 2*f.Orders > f.Period {
		return fmt.Errorf("got %d orders for period %d, %w", f.Orders, f.Period, ErrInvalidFourierOrders)
	}
	return nil
}

func (f FourierOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sFourier: %s period %d with %d orders\n",
		prefix, util.IndentExpand(indent, indentGrowth), f.Name, f.Period, f.Orders); err != nil {
		return err
	}
	return f.Search.tablePrint(w, prefix, indent, indentGrowth+1, false)
}

// SeasonalOptions configures the native seasonal ARIMA variant
type SeasonalOptions struct {
	Period int           `json:"period" yaml:"period"`
	Search SearchOptions `json:"search" yaml:"search"`
}

// NewDefaultSeasonalOptions returns a monthly seasonal search
func NewDefaultSeasonalOptions() SeasonalOptions {
	return SeasonalOptions{
		Period: 12,
		Search: newDefaultSearchOptions(),
	}
}

func (s SeasonalOptions) Validate() error {
	if s.Period < 2 {
		return fmt.Errorf("got period %d, %w", s.Period, ErrInvalidPeriod)
	}
	return nil
}

func (s SeasonalOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sSeasonal: period %d\n", prefix, util.IndentExpand(indent, indentGrowth), s.Period); err != nil {
		return err
	}
	return s.Search.tablePrint(w, prefix, indent, indentGrowth+1, true)
}
