// Package forecast implements the adaptive cycle-forecasting engine: the
// sequence model, the per-user model registry with its shared baseline, the
// bounded trainer, and the forecaster that turns a length history into a
// predicted next start date.
package forecast

import (
	"encoding/json"
	"math"
	"time"

	"github.com/cyclesync/cyclesync-go/internal/errors"
)

// GlobalOwner is the reserved artifact owner for the shared baseline model.
const GlobalOwner = "global"

// Model is a linear autoregressor over the last NSteps cycle lengths. The
// untrained baseline starts as a moving average (uniform weights, zero
// bias), so predictions are sensible before any personal training happens.
type Model struct {
	Owner     string    `json:"owner"`      // user ID or GlobalOwner
	NSteps    int       `json:"n_steps"`    // training window size
	Weights   []float64 `json:"weights"`    // one weight per window position
	Bias      float64   `json:"bias"`       // intercept term
	TrainedAt time.Time `json:"trained_at"` // zero for a never-trained baseline
	TrainedOn int       `json:"trained_on"` // length of the sequence last trained on
	Loss      float64   `json:"loss"`       // final training MSE
}

// NewBaseline returns an untrained moving-average model for the given owner.
func NewBaseline(owner string, nSteps int) *Model {
	weights := make([]float64, nSteps)
	for i := range weights {
		weights[i] = 1.0 / float64(nSteps)
	}
	return &Model{
		Owner:   owner,
		NSteps:  nSteps,
		Weights: weights,
	}
}

// Validate checks the model for structural soundness. A model failing
// validation is treated as a corrupt artifact by the registry.
func (m *Model) Validate() error {
	if m.NSteps < 1 {
		return errors.Newf("model has invalid window size %d", m.NSteps).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	if len(m.Weights) != m.NSteps {
		return errors.Newf("model has %d weights for window size %d", len(m.Weights), m.NSteps).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.Newf("model weight %d is not finite", i).
				Component("forecast").
				Category(errors.CategoryModelLoad).
				Build()
		}
	}
	if math.IsNaN(m.Bias) || math.IsInf(m.Bias, 0) {
		return errors.Newf("model bias is not finite").
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	return nil
}

// PredictLength runs inference over one window of recent cycle lengths and
// returns the predicted next length as a real value.
func (m *Model) PredictLength(window []float64) (float64, error) {
	if len(window) != m.NSteps {
		return 0, errors.Newf("window has %d values, model expects %d", len(window), m.NSteps).
			Component("forecast").
			Category(errors.CategoryInference).
			ModelContext(m.Owner, m.TrainedOn).
			Build()
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}

	predicted := m.Bias
	for i, w := range m.Weights {
		predicted += w * window[i]
	}
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
		return 0, errors.Newf("model produced a non-finite prediction").
			Component("forecast").
			Category(errors.CategoryInference).
			ModelContext(m.Owner, m.TrainedOn).
			Build()
	}
	return predicted, nil
}

// Confidence maps the model's training loss to a (0, 1] confidence value.
// A never-trained model exposes no confidence signal and returns nil.
func (m *Model) Confidence() *float64 {
	if m.TrainedAt.IsZero() || m.TrainedOn == 0 {
		return nil
	}
	c := 1.0 / (1.0 + math.Sqrt(m.Loss))
	return &c
}

// Clone returns a deep copy, used so training never mutates a model another
// goroutine may be reading.
func (m *Model) Clone() *Model {
	weights := make([]float64, len(m.Weights))
	copy(weights, m.Weights)
	clone := *m
	clone.Weights = weights
	return &clone
}

// Marshal encodes the model as its artifact representation.
func (m *Model) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.New(err).
			Component("forecast").
			Category(errors.CategoryModelCommit).
			ModelContext(m.Owner, m.TrainedOn).
			Build()
	}
	return data, nil
}

// UnmarshalModel decodes and validates an artifact blob.
func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(err).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
