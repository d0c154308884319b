// Package observability provides metrics and monitoring capabilities for
// the cyclesync engine.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyclesync/cyclesync-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Forecast *metrics.ForecastMetrics
	Calendar *metrics.CalendarMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any collector fails to register.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	forecastMetrics, err := metrics.NewForecastMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast metrics: %w", err)
	}

	calendarMetrics, err := metrics.NewCalendarMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Forecast: forecastMetrics,
		Calendar: calendarMetrics,
	}, nil
}

// Handler returns an http.Handler exposing the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
