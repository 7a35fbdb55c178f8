// Package metrics holds the Prometheus collectors of the analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Analysis modes.
const (
	ModeStandalone = "standalone"
	ModeCombined   = "combined"
)

// Metrics bundles Prometheus collectors for page analyses and comparisons.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry             *prometheus.Registry
	AnalysesTotal        *prometheus.CounterVec
	AnalysisDuration     *prometheus.HistogramVec
	FetchFailuresTotal   *prometheus.CounterVec
	MeasureFailuresTotal prometheus.Counter
	ComparisonsTotal     *prometheus.CounterVec
	ComparedURLs         prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	analyses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cro_analyses_total",
			Help: "Total single URL analyses by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cro_analysis_duration_seconds",
			Help:    "Wall time of a single URL analysis, fetch and measurement included.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 45, 60},
		},
		[]string{"mode"},
	)
	fetchFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cro_fetch_failures_total",
			Help: "Page content fetch failures by kind.",
		},
		[]string{"kind"},
	)
	measureFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cro_measure_failures_total",
			Help: "Performance measurements that failed and were degraded.",
		},
	)
	comparisons := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cro_comparisons_total",
			Help: "Comparison requests by outcome.",
		},
		[]string{"outcome"},
	)
	compared := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cro_compared_urls",
			Help:    "Number of URLs submitted per comparison.",
			Buckets: prometheus.LinearBuckets(2, 1, 9),
		},
	)

	registry.MustRegister(analyses, duration, fetchFailures, measureFailures, comparisons, compared)

	return &Metrics{
		Registry:             registry,
		AnalysesTotal:        analyses,
		AnalysisDuration:     duration,
		FetchFailuresTotal:   fetchFailures,
		MeasureFailuresTotal: measureFailures,
		ComparisonsTotal:     comparisons,
		ComparedURLs:         compared,
	}
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(mode, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// IncFetchFailure increments the fetch failure counter for a kind label.
func (m *Metrics) IncFetchFailure(kind string) {
	if m == nil {
		return
	}
	m.FetchFailuresTotal.WithLabelValues(kind).Inc()
}

// IncMeasureFailure increments the degraded measurement counter.
func (m *Metrics) IncMeasureFailure() {
	if m == nil {
		return
	}
	m.MeasureFailuresTotal.Inc()
}

// ObserveComparison records a comparison request and its URL count.
func (m *Metrics) ObserveComparison(outcome string, urls int) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.WithLabelValues(outcome).Inc()
	m.ComparedURLs.Observe(float64(urls))
}
