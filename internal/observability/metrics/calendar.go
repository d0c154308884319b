// calendar.go: metrics for calendar projection requests
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CalendarMetrics contains Prometheus metrics for phase projection. All
// record methods are nil-safe.
type CalendarMetrics struct {
	ProjectionTotal    prometheus.Counter
	ProjectedDays      *prometheus.CounterVec
	ProjectionDuration prometheus.Histogram
	UnknownDays        prometheus.Counter
}

// NewCalendarMetrics creates and registers the calendar metric collectors.
func NewCalendarMetrics(registry *prometheus.Registry) (*CalendarMetrics, error) {
	m := &CalendarMetrics{
		ProjectionTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cyclesync_projections_total",
				Help: "Total calendar projection requests.",
			},
		),
		ProjectedDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyclesync_projection_days_total",
				Help: "Projected days partitioned by the tier that resolved them.",
			},
			[]string{"mode"},
		),
		ProjectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cyclesync_projection_duration_seconds",
				Help:    "Time taken to project a date range.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
		UnknownDays: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cyclesync_projection_unknown_days_total",
				Help: "Total projected days that resolved to the unknown phase.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.ProjectionTotal, m.ProjectedDays, m.ProjectionDuration, m.UnknownDays} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register calendar metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveProjection records one projection request. Day counts are keyed by
// the resolution tier, so a range mixing recorded and heuristic days is
// counted under both.
func (m *CalendarMetrics) ObserveProjection(duration time.Duration, dayModes map[string]int, unknownDays int) {
	if m == nil {
		return
	}
	m.ProjectionTotal.Inc()
	m.ProjectionDuration.Observe(duration.Seconds())
	for mode, days := range dayModes {
		if days > 0 {
			m.ProjectedDays.WithLabelValues(mode).Add(float64(days))
		}
	}
	if unknownDays > 0 {
		m.UnknownDays.Add(float64(unknownDays))
	}
}
