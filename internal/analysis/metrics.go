package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the analysis pipeline
type Metrics struct {
	Analyses             *prometheus.CounterVec
	SourceFailures       *prometheus.CounterVec
	Generations          *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	LastTrendProbability prometheus.Gauge
}

// NewMetrics creates the collectors and registers them when reg is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viraledge_analyses_total",
				Help: "Analysis requests, by platform and outcome.",
			},
			[]string{"platform", "outcome"},
		),
		SourceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viraledge_source_failures_total",
				Help: "Failed collaborator calls, by source.",
			},
			[]string{"source"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viraledge_generation_total",
				Help: "AI summaries returned, by provenance.",
			},
			[]string{"provenance"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viraledge_analysis_duration_seconds",
				Help:    "End-to-end analysis duration in seconds.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
		LastTrendProbability: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "viraledge_trend_probability_last",
				Help: "Trend probability of the most recent completed analysis.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Analyses,
			m.SourceFailures,
			m.Generations,
			m.AnalysisDuration,
			m.LastTrendProbability,
		)
	}
	return m
}

func (m *Metrics) observeAnalysis(platform, outcome string, elapsed time.Duration) {
	m.Analyses.WithLabelValues(platform, outcome).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
}
