// Package metrics defines the case-tracker Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every case-tracker metric.
const Namespace = "case_tracker"

// Snapshot load sources and results.
const (
	SourceMemory   = "memory"
	SourceCache    = "cache"
	SourceDatabase = "database"
	ResultOK       = "ok"
	ResultError    = "error"
)

// Metrics holds the service collectors.
type Metrics struct {
	reports        *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	snapshotLoads  *prometheus.CounterVec
	snapshotCases  prometheus.Gauge
	casesCreated   prometheus.Counter
	rateLimited    prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reports_total",
			Help:      "Reports computed, by report name",
		}, []string{"report"}),
		reportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "report_duration_seconds",
			Help:      "Time to compute a report over the current snapshot",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"report"}),
		snapshotLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads by source (memory, cache, database) and result",
		}, []string{"source", "result"}),
		snapshotCases: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "snapshot_cases",
			Help:      "Cases in the current snapshot",
		}),
		casesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cases_created_total",
			Help:      "Cases accepted through case entry",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the case entry rate limiter",
		}),
	}
}

// ObserveReport records one computed report.
func (m *Metrics) ObserveReport(report string, took time.Duration) {
	m.reports.WithLabelValues(report).Inc()
	m.reportDuration.WithLabelValues(report).Observe(took.Seconds())
}

// SnapshotLoaded records where a snapshot came from and whether it worked.
func (m *Metrics) SnapshotLoaded(source, result string) {
	m.snapshotLoads.WithLabelValues(source, result).Inc()
}

// SetSnapshotCases sets the snapshot size gauge.
func (m *Metrics) SetSnapshotCases(n int) {
	m.snapshotCases.Set(float64(n))
}

// CaseCreated counts an accepted case.
func (m *Metrics) CaseCreated() {
	m.casesCreated.Inc()
}

// RateLimited counts a throttled request.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
