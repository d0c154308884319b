// Package metrics provides custom Prometheus metrics for the cyclesync
// engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ForecastMetrics contains all Prometheus metrics related to model
// resolution, training, and prediction. All record methods are nil-safe so
// components can run without metrics wired.
type ForecastMetrics struct {
	ResolveTotal     *prometheus.CounterVec
	CommitTotal      prometheus.Counter
	ArtifactCorrupt  prometheus.Counter
	TrainingRuns     *prometheus.CounterVec
	TrainingDuration prometheus.Histogram
	PredictionTotal  *prometheus.CounterVec
}

// NewForecastMetrics creates and registers the forecast metric collectors.
func NewForecastMetrics(registry *prometheus.Registry) (*ForecastMetrics, error) {
	m := &ForecastMetrics{
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyclesync_model_resolve_total",
				Help: "Total model resolutions partitioned by provenance.",
			},
			[]string{"provenance"},
		),
		CommitTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cyclesync_model_commit_total",
				Help: "Total model artifact commits.",
			},
		),
		ArtifactCorrupt: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cyclesync_model_artifact_corrupt_total",
				Help: "Total corrupt or unreadable per-user artifacts encountered.",
			},
		),
		TrainingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyclesync_training_runs_total",
				Help: "Total retraining runs partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		TrainingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cyclesync_training_duration_seconds",
				Help:    "Time taken by one retraining run.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		PredictionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyclesync_predictions_total",
				Help: "Total prediction requests partitioned by outcome.",
			},
			[]string{"outcome"},
		),
	}

	collectors := []prometheus.Collector{
		m.ResolveTotal, m.CommitTotal, m.ArtifactCorrupt,
		m.TrainingRuns, m.TrainingDuration, m.PredictionTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register forecast metrics: %w", err)
		}
	}
	return m, nil
}

// IncResolve records one model resolution.
func (m *ForecastMetrics) IncResolve(personalized bool) {
	if m == nil {
		return
	}
	provenance := "baseline"
	if personalized {
		provenance = "personalized"
	}
	m.ResolveTotal.WithLabelValues(provenance).Inc()
}

// IncCommit records one artifact commit.
func (m *ForecastMetrics) IncCommit() {
	if m == nil {
		return
	}
	m.CommitTotal.Inc()
}

// IncArtifactCorrupt records one corrupt-artifact fallback.
func (m *ForecastMetrics) IncArtifactCorrupt() {
	if m == nil {
		return
	}
	m.ArtifactCorrupt.Inc()
}

// ObserveTraining records the outcome and duration of one retraining run.
func (m *ForecastMetrics) ObserveTraining(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TrainingRuns.WithLabelValues(outcome).Inc()
	m.TrainingDuration.Observe(duration.Seconds())
}

// IncPrediction records one prediction request outcome.
func (m *ForecastMetrics) IncPrediction(outcome string) {
	if m == nil {
		return
	}
	m.PredictionTotal.WithLabelValues(outcome).Inc()
}
