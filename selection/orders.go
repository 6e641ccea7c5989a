// Package selection searches over ARIMA orders and ranks the fit candidates by AIC.
package selection

import (
	"github.com/gamyers/solar-697/arima"
)

// Range is an inclusive range of integer orders. A range whose End is below its Start
// is empty.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// NewRange returns the inclusive range [start, end]
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// Fixed returns a range holding a single value
func Fixed(v int) Range {
	return Range{Start: v, End: v}
}

// Values returns every value of the range in ascending order
func (r Range) Values() []int {
	if r.End < r.Start {
		return nil
	}
	vals := make([]int, 0, r.End-r.Start+1)
	for v := r.Start; v <= r.End; v++ {
		vals = append(vals, v)
	}
	return vals
}

// Len returns the number of values in the range
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// OrderRanges describes the search space of a grid search. The seasonal ranges default to
// zero values which generate no seasonal terms.
type OrderRanges struct {
	P  Range `json:"p" yaml:"p"`
	D  Range `json:"d" yaml:"d"`
	Q  Range `json:"q" yaml:"q"`
	SP Range `json:"seasonal_p" yaml:"seasonal_p"`
	SD Range `json:"seasonal_d" yaml:"seasonal_d"`
	SQ Range `json:"seasonal_q" yaml:"seasonal_q"`

	Period int `json:"period" yaml:"period"`
}

// NewOrderRanges returns a non seasonal search space
func NewOrderRanges(p, d, q Range) OrderRanges {
	return OrderRanges{
		P: p, D: d, Q: q,
		SP: Fixed(0), SD: Fixed(0), SQ: Fixed(0),
	}
}

// Count returns the number of orders generated by the ranges
func (r OrderRanges) Count() int {
	return r.P.Len() * r.D.Len() * r.Q.Len() * r.SP.Len() * r.SD.Len() * r.SQ.Len()
}

// GenerateOrders returns the cartesian product of the ranges in lexicographic
// (p, d, q, P, D, Q) order. The seasonal period is copied onto every candidate.
func GenerateOrders(r OrderRanges) []arima.Order {
	orders := make([]arima.Order, 0, r.Count())
	for _, p := range r.P.Values() {
		for _, d := range r.D.Values() {
			for _, q := range r.Q.Values() {
				for _, sp := range r.SP.Values() {
					for _, sd := range r.SD.Values() {
						for _, sq := range r.SQ.Values() {
							orders = append(orders, arima.NewSeasonalOrder(p, d, q, sp, sd, sq, r.Period))
						}
					}
				}
			}
		}
	}
	return orders
}
