// Package arima fits seasonal ARIMA(p,d,q)(P,D,Q)[s] models by conditional sum of squares
// and produces multi step forecasts with confidence intervals.
package arima

import (
	"fmt"
	"strconv"
	"strings"
)

// SeasonalOrder is the seasonal part (P,D,Q)[Period] of a model order
type SeasonalOrder struct {
	P      int `json:"P" yaml:"P"`
	D      int `json:"D" yaml:"D"`
	Q      int `json:"Q" yaml:"Q"`
	Period int `json:"period" yaml:"period"`
}

// IsZero reports whether the seasonal part has no terms
func (s SeasonalOrder) IsZero() bool {
	return s.P == 0 && s.D == 0 && s.Q == 0
}

// Order is a full ARIMA(p,d,q)(P,D,Q)[s] model order
type Order struct {
	P        int           `json:"p" yaml:"p"`
	D        int           `json:"d" yaml:"d"`
	Q        int           `json:"q" yaml:"q"`
	Seasonal SeasonalOrder `json:"seasonal" yaml:"seasonal"`
}

// NewOrder is a shorthand for a non seasonal order
func NewOrder(p, d, q int) Order {
	return Order{P: p, D: d, Q: q}
}

// NewSeasonalOrder is a shorthand for a seasonal order
func NewSeasonalOrder(p, d, q, sp, sd, sq, period int) Order {
	return Order{
		P: p, D: d, Q: q,
		Seasonal: SeasonalOrder{P: sp, D: sd, Q: sq, Period: period},
	}
}

func (o Order) String() string {
	var sb strings.Builder
	sb.WriteString("ARIMA(")
	sb.WriteString(strconv.Itoa(o.P))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(o.D))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(o.Q))
	sb.WriteByte(')')
	if !o.Seasonal.IsZero() {
		fmt.Fprintf(&sb, "(%d,%d,%d)[%d]", o.Seasonal.P, o.Seasonal.D, o.Seasonal.Q, o.Seasonal.Period)
	}
	return sb.String()
}

// Validate checks that all orders are non negative and that seasonal terms have a usable period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.Seasonal.P < 0 || o.Seasonal.D < 0 || o.Seasonal.Q < 0 {
		return fmt.Errorf("%s has a negative order, %w", o, ErrInvalidOrder)
	}
	if !o.Seasonal.IsZero() && o.Seasonal.Period < 2 {
		return fmt.Errorf("%s has seasonal terms with period %d, %w", o, o.Seasonal.Period, ErrInvalidOrder)
	}
	return nil
}

// NumCoefficients returns the number of autoregressive and moving average coefficients to estimate
func (o Order) NumCoefficients() int {
	return o.P + o.Q + o.Seasonal.P + o.Seasonal.Q
}

// Differences returns the total number of regular and seasonal differences
func (o Order) Differences() int {
	return o.D + o.Seasonal.D
}

// period returns the seasonal period, or 0 if there are no seasonal terms
func (o Order) period() int {
	if o.Seasonal.IsZero() {
		return 0
	}
	return o.Seasonal.Period
}

// Burn returns the number of leading observations an order consumes through differencing and
// conditioning of the autoregressive recursion
func (o Order) Burn() int {
	return o.D + o.Seasonal.D*o.Seasonal.Period + o.arLag()
}

// arLag is the largest lag of the expanded autoregressive polynomial
func (o Order) arLag() int {
	return o.P + o.Seasonal.P*o.period()
}

// maLag is the largest lag of the expanded moving average polynomial
func (o Order) maLag() int {
	return o.Q + o.Seasonal.Q*o.period()
}
