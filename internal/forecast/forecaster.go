// forecaster.go: next cycle start prediction from recent length history
package forecast

import (
	"fmt"
	"time"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/errors"
	"github.com/cyclesync/cyclesync-go/internal/observability/metrics"
)

// Forecaster produces a predicted next start date and confidence from a
// user's recent cycle-length history. It has no side effects: persisting
// the returned prediction is the caller's responsibility.
type Forecaster struct {
	registry *Registry
	nSteps   int
	metrics  *metrics.ForecastMetrics
}

// NewForecaster creates a forecaster reading models from the registry.
func NewForecaster(registry *Registry, settings *conf.Settings, m *metrics.ForecastMetrics) *Forecaster {
	return &Forecaster{
		registry: registry,
		nSteps:   settings.Forecast.NSteps,
		metrics:  m,
	}
}

// Predict forecasts the next cycle start from the ordered length history and
// the last recorded start date. It returns (nil, nil) when the history is
// shorter than the model window, which is a normal "no prediction yet"
// outcome. Inference failures surface as ErrPredictionUnavailable, never as
// a raw model error.
func (f *Forecaster) Predict(userID string, lengths []int, lastStart time.Time) (*cycle.Prediction, error) {
	if len(lengths) < f.nSteps {
		f.metrics.IncPrediction("insufficient_history")
		return nil, nil
	}

	resolved, err := f.registry.Resolve(userID)
	if err != nil {
		f.metrics.IncPrediction("unavailable")
		return nil, errors.New(fmt.Errorf("%w: %w", errors.ErrPredictionUnavailable, err)).
			Component("forecast").
			Category(errors.CategoryInference).
			Context("user_id", userID).
			Build()
	}

	window := make([]float64, f.nSteps)
	for i := 0; i < f.nSteps; i++ {
		window[i] = float64(lengths[len(lengths)-f.nSteps+i])
	}

	predictedLength, err := resolved.Model.PredictLength(window)
	if err != nil || predictedLength < 1 {
		if err == nil {
			err = errors.Newf("predicted length %g is not a usable day count", predictedLength).Build()
		}
		f.metrics.IncPrediction("unavailable")
		return nil, errors.New(fmt.Errorf("%w: %w", errors.ErrPredictionUnavailable, err)).
			Component("forecast").
			Category(errors.CategoryInference).
			Context("user_id", userID).
			Context("personalized", resolved.Personalized).
			Build()
	}

	// Truncate toward zero: a predicted 29.7-day cycle lands 29 days after
	// the last start. The same whole-day arithmetic is used by the phase
	// projector, so the two never disagree on a date.
	days := int(predictedLength)

	prediction := &cycle.Prediction{
		UserID:         userID,
		PredictionDate: cycle.Midnight(time.Now()),
		PredictedStart: cycle.Midnight(lastStart).AddDate(0, 0, days),
		Confidence:     resolved.Model.Confidence(),
	}
	f.metrics.IncPrediction("success")
	return prediction, nil
}
