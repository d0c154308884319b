package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync-go/internal/errors"
)

func newTestForecaster(t *testing.T) (*Forecaster, *Registry) {
	t.Helper()
	settings := testSettings(t)
	registry, err := NewRegistry(settings, nil)
	require.NoError(t, err)
	return NewForecaster(registry, settings, nil), registry
}

func TestPredictInsufficientHistory(t *testing.T) {
	t.Parallel()

	forecaster, _ := newTestForecaster(t)

	prediction, err := forecaster.Predict("u1", []int{28, 30}, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err, "insufficient history is a normal outcome, not an error")
	assert.Nil(t, prediction)
}

func TestPredictTruncatesTowardZero(t *testing.T) {
	t.Parallel()

	forecaster, registry := newTestForecaster(t)

	// A constant model predicting 29.7 days regardless of the window.
	m := &Model{Owner: "u1", NSteps: 3, Weights: []float64{0, 0, 0}, Bias: 29.7}
	require.NoError(t, registry.Commit("u1", m))

	lastStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	prediction, err := forecaster.Predict("u1", []int{28, 30, 29}, lastStart)
	require.NoError(t, err)
	require.NotNil(t, prediction)

	// 29.7 truncates to 29 whole days.
	assert.Equal(t, time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC), prediction.PredictedStart)
}

func TestPredictUsesBaselineWithoutPersonalModel(t *testing.T) {
	t.Parallel()

	forecaster, _ := newTestForecaster(t)

	lastStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	prediction, err := forecaster.Predict("nobody", []int{27, 29, 31}, lastStart)
	require.NoError(t, err)
	require.NotNil(t, prediction)

	// The seeded baseline is a moving average: (27+29+31)/3 = 29.
	assert.Equal(t, lastStart.AddDate(0, 0, 29), prediction.PredictedStart)
	assert.Nil(t, prediction.Confidence, "untrained baseline has no confidence signal")
}

func TestPredictUsesMostRecentWindow(t *testing.T) {
	t.Parallel()

	forecaster, _ := newTestForecaster(t)

	lastStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Only the last three lengths feed the window: (30+30+30)/3 = 30.
	prediction, err := forecaster.Predict("nobody", []int{90, 10, 30, 30, 30}, lastStart)
	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.Equal(t, lastStart.AddDate(0, 0, 30), prediction.PredictedStart)
}

func TestPredictUnusableModelSurfacesPredictionUnavailable(t *testing.T) {
	t.Parallel()

	forecaster, registry := newTestForecaster(t)

	// Structurally valid model whose output is never a usable day count.
	m := &Model{Owner: "u1", NSteps: 3, Weights: []float64{0, 0, 0}, Bias: 0.2}
	require.NoError(t, registry.Commit("u1", m))

	prediction, err := forecaster.Predict("u1", []int{28, 30, 29}, time.Now())
	assert.Nil(t, prediction)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPredictionUnavailable))
}

func TestPredictConfidencePassthrough(t *testing.T) {
	t.Parallel()

	forecaster, registry := newTestForecaster(t)

	m := NewBaseline("u1", 3)
	m.TrainedAt = time.Now()
	m.TrainedOn = 9
	m.Loss = 4.0
	require.NoError(t, registry.Commit("u1", m))

	prediction, err := forecaster.Predict("u1", []int{28, 30, 29}, time.Now())
	require.NoError(t, err)
	require.NotNil(t, prediction)
	require.NotNil(t, prediction.Confidence)
	assert.InDelta(t, 1.0/3.0, *prediction.Confidence, 1e-9)
}
