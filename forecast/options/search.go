package options

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/forecast/util"
	"github.com/gamyers/solar-697/selection"
)

// SearchOptions bounds the stepwise order search run by a forecast variant. Seasonal bounds
// are ignored by the Fourier variant.
type SearchOptions struct {
	StartP  int `json:"start_p" yaml:"start_p"`
	StartQ  int `json:"start_q" yaml:"start_q"`
	StartSP int `json:"start_seasonal_p" yaml:"start_seasonal_p"`
	StartSQ int `json:"start_seasonal_q" yaml:"start_seasonal_q"`

	MaxP  int `json:"max_p" yaml:"max_p"`
	MaxQ  int `json:"max_q" yaml:"max_q"`
	MaxSP int `json:"max_seasonal_p" yaml:"max_seasonal_p"`
	MaxSQ int `json:"max_seasonal_q" yaml:"max_seasonal_q"`

	// D and SD fix the differencing orders, selection.AutoDifference estimates them
	D     int `json:"d" yaml:"d"`
	SD    int `json:"seasonal_d" yaml:"seasonal_d"`
	MaxD  int `json:"max_d" yaml:"max_d"`
	MaxSD int `json:"max_seasonal_d" yaml:"max_seasonal_d"`

	MaxOrder  int     `json:"max_order" yaml:"max_order"`
	MaxModels int     `json:"max_models" yaml:"max_models"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`

	Model arima.Options `json:"model" yaml:"model"`

	// OnFit observes every candidate fit attempt
	OnFit selection.FitHook `json:"-" yaml:"-"`
}

func newDefaultSearchOptions() SearchOptions {
	return SearchOptions{
		StartP:    1,
		StartQ:    1,
		StartSP:   1,
		StartSQ:   1,
		MaxP:      3,
		MaxQ:      3,
		MaxSP:     2,
		MaxSQ:     2,
		D:         selection.AutoDifference,
		SD:        selection.AutoDifference,
		MaxD:      2,
		MaxSD:     1,
		MaxOrder:  5,
		MaxModels: 100,
		Alpha:     0.05,
		Model:     *arima.NewDefaultOptions(),
	}
}

// Stepwise converts the bounds into stepwise search options
func (s SearchOptions) Stepwise(seasonal bool, period int) *selection.StepwiseOptions {
	model := s.Model
	return &selection.StepwiseOptions{
		Seasonal:  seasonal,
		Period:    period,
		StartP:    s.StartP,
		StartQ:    s.StartQ,
		StartSP:   s.StartSP,
		StartSQ:   s.StartSQ,
		MaxP:      s.MaxP,
		MaxQ:      s.MaxQ,
		MaxSP:     s.MaxSP,
		MaxSQ:     s.MaxSQ,
		D:         s.D,
		SD:        s.SD,
		MaxD:      s.MaxD,
		MaxSD:     s.MaxSD,
		MaxOrder:  s.MaxOrder,
		MaxModels: s.MaxModels,
		Alpha:     s.Alpha,
		Model:     &model,
		OnFit:     s.OnFit,
	}
}

type termBounds struct {
	term       string
	start, end int
}

func (s SearchOptions) tablePrint(w io.Writer, prefix, indent string, indentGrowth int, seasonal bool) error {
	bounds := []termBounds{
		{"p", s.StartP, s.MaxP},
		{"q", s.StartQ, s.MaxQ},
	}
	if seasonal {
		bounds = append(bounds, termBounds{"P", s.StartSP, s.MaxSP}, termBounds{"Q", s.StartSQ, s.MaxSQ})
	}

	pad := util.IndentExpand(indent, indentGrowth)
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sTerm\tStart\tMax\t\n", prefix, pad); err != nil {
		return err
	}
	for _, b := range bounds {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%d\t%d\t\n", prefix, pad, b.term, b.start, b.end); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
