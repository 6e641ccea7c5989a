package forecast

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gamyers/solar-697/arima"
	"github.com/gamyers/solar-697/feature"
	"github.com/gamyers/solar-697/forecast/util"
	"github.com/goccy/go-json"
)

var ErrUnknownFeatureType = errors.New("unknown feature type")

// Summary is a serializeable description of a fit forecast variant storing the selected
// order, information criteria, coefficients and in sample scores
type Summary struct {
	Name           string       `json:"name"`
	TrainStartTime time.Time    `json:"train_start_time"`
	TrainEndTime   time.Time    `json:"train_end_time"`
	LastTime       time.Time    `json:"last_time"`
	Observations   int          `json:"observations"`
	Order          arima.Order  `json:"order"`
	AIC            float64      `json:"aic"`
	AICc           float64      `json:"aicc"`
	BIC            float64      `json:"bic"`
	Candidates     int          `json:"candidates"`
	Params         arima.Params `json:"params"`
	Weights        *Weights     `json:"weights,omitempty"`
	Scores         *Scores      `json:"scores,omitempty"`
}

func newSummary(name string, tl timeline, trainEnd time.Time, m *arima.Model, candidates int) (Summary, error) {
	params, err := m.Params()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Name:           name,
		TrainStartTime: tl.start,
		TrainEndTime:   trainEnd,
		LastTime:       tl.end,
		Observations:   tl.n,
		Order:          m.Order(),
		AIC:            m.AIC(),
		AICc:           m.AICc(),
		BIC:            m.BIC(),
		Candidates:     candidates,
		Params:         params,
	}, nil
}

func (s Summary) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%s%s:\n", prefix, util.IndentExpand(indent, 0), s.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sTraining: %s to %s\n", prefix, util.IndentExpand(indent, 1),
		s.TrainStartTime.Format(time.DateOnly), s.TrainEndTime.Format(time.DateOnly)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d    Last: %s\n", prefix, util.IndentExpand(indent, 1),
		s.Observations, s.LastTime.Format(time.DateOnly)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sModel: %s selected from %d candidates\n", prefix, util.IndentExpand(indent, 1),
		s.Order, s.Candidates); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sAIC: %.3f    AICc: %.3f    BIC: %.3f\n", prefix, util.IndentExpand(indent, 1),
		s.AIC, s.AICc, s.BIC); err != nil {
		return err
	}
	if err := s.tablePrintParams(w, prefix, indent, 1); err != nil {
		return err
	}

	if s.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, 1)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sRMSE: %.3f    MAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, util.IndentExpand(indent, 2),
			s.Scores.RMSE,
			s.Scores.MAPE,
			s.Scores.MSE,
			s.Scores.R2,
		); err != nil {
			return err
		}
	}

	if s.Weights == nil {
		return nil
	}
	return s.Weights.tablePrint(w, prefix, indent, 1)
}

func (s Summary) tablePrintParams(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sParameters:\n", prefix, util.IndentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	rows := []struct {
		name string
		vals []float64
	}{
		{"ar", s.Params.AR},
		{"ma", s.Params.MA},
		{"sar", s.Params.SAR},
		{"sma", s.Params.SMA},
		{"mean", []float64{s.Params.Mean}},
		{"sigma2", []float64{s.Params.Sigma}},
	}
	for _, r := range rows {
		if len(r.vals) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n", prefix, util.IndentExpand(indent, indentGrowth+1),
			r.name, util.FormatFloats(r.vals, 4)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Weights stores the regression coefficients of the Fourier stage
type Weights struct {
	Intercept float64         `json:"intercept"`
	Coef      []FeatureWeight `json:"coefficients"`
}

func newWeights(labels *feature.Labels, intercept float64, coef []float64) *Weights {
	w := &Weights{
		Intercept: intercept,
		Coef:      make([]FeatureWeight, 0, len(coef)),
	}
	for i, f := range labels.Labels() {
		w.Coef = append(w.Coef, NewFeatureWeight(f, coef[i]))
	}
	return w
}

// FeatureLabels returns all of the feature labels in the same order as the coefficients
func (w *Weights) FeatureLabels() ([]feature.Feature, error) {
	labels := make([]feature.Feature, 0, len(w.Coef))
	for _, fw := range w.Coef {
		feat, err := fw.ToFeature()
		if err != nil {
			return nil, err
		}
		labels = append(labels, feat)
	}
	return labels, nil
}

// Coefficients returns a slice copy of the coefficients ignoring the intercept.
func (w *Weights) Coefficients() []float64 {
	coef := make([]float64, 0, len(w.Coef))
	for _, fw := range w.Coef {
		coef = append(coef, fw.Value)
	}
	return coef
}

func (w Weights) tablePrint(wr io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(wr, "%s%sWeights:\n", prefix, util.IndentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(wr, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sType\tLabels\tValue\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%s%sintercept\t\t%.3f\t\n", prefix, util.IndentExpand(indent, indentGrowth+1), w.Intercept); err != nil {
		return err
	}
	for _, fw := range w.Coef {
		labelOut, err := json.Marshal(fw.Labels)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%.3f\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			fw.Type, string(labelOut), fw.Value); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// FeatureWeight represents a feature described with a type, its labels and the coefficient
type FeatureWeight struct {
	Labels map[string]string   `json:"labels"`
	Type   feature.FeatureType `json:"type"`
	Value  float64             `json:"value"`
}

func NewFeatureWeight(f feature.Feature, val float64) FeatureWeight {
	return FeatureWeight{
		Labels: f.Decode(),
		Type:   f.Type(),
		Value:  val,
	}
}

// ToFeature transforms the Type and Labels into a feature
func (fw *FeatureWeight) ToFeature() (feature.Feature, error) {
	if fw == nil {
		return nil, ErrUnknownFeatureType
	}

	bytes, err := json.Marshal(fw.Labels)
	if err != nil {
		return nil, err
	}

	var feat feature.Feature
	switch fw.Type {
	case feature.FeatureTypeSeasonality:
		feat = new(feature.Seasonality)
	default:
		return nil, fmt.Errorf("got type %d, %w", fw.Type, ErrUnknownFeatureType)
	}
	if err := json.Unmarshal(bytes, feat); err != nil {
		return nil, err
	}
	return feat, nil
}
