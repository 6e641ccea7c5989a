package forecaster

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeFailed      = "failed"
	outcomeFitError    = "fit_error"
	outcomeScoreError  = "validation_error"
	outcomeUpdateError = "update_error"
)

// Metrics counts candidate fits and variant outcomes. A nil *Metrics records nothing.
type Metrics struct {
	CandidateFits  *prometheus.CounterVec
	VariantResults *prometheus.CounterVec
	FitDuration    *prometheus.HistogramVec
}

// NewMetrics creates the forecaster metrics and registers them on reg. If reg is nil the
// metrics are created without being registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CandidateFits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarcast_candidate_fits_total",
				Help: "Number of ARIMA candidate fits attempted by order searches",
			},
			[]string{"outcome"},
		),
		VariantResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solarcast_variant_results_total",
				Help: "Number of forecast variant runs by variant and outcome",
			},
			[]string{"variant", "outcome"},
		),
		FitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solarcast_variant_fit_seconds",
				Help:    "Time spent fitting a forecast variant including its order search",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"variant"},
		),
	}
}

func (m *Metrics) observeCandidate(err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
	}
	m.CandidateFits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeVariant(variant, outcome string) {
	if m == nil {
		return
	}
	m.VariantResults.WithLabelValues(variant, outcome).Inc()
}

func (m *Metrics) observeFit(variant string, dur time.Duration) {
	if m == nil {
		return
	}
	m.FitDuration.WithLabelValues(variant).Observe(dur.Seconds())
}
