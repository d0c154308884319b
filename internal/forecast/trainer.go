// trainer.go: bounded retraining of per-user sequence models
package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/observability/metrics"
)

// Trainer decides whether enough history justifies retraining and drives a
// bounded training run against the model obtained from the registry.
// Concurrent retrains for the same user are serialized; different users run
// independently.
type Trainer struct {
	registry *Registry
	nSteps   int
	epochs   int
	lr       float64
	metrics  *metrics.ForecastMetrics

	locksMu   sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewTrainer creates a trainer bound to the given registry.
func NewTrainer(registry *Registry, settings *conf.Settings, m *metrics.ForecastMetrics) *Trainer {
	return &Trainer{
		registry:  registry,
		nSteps:    settings.Forecast.NSteps,
		epochs:    settings.Forecast.Epochs,
		lr:        settings.Forecast.LearningRate,
		metrics:   m,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// window pairs one input slice of consecutive cycle lengths with the length
// that followed it.
type window struct {
	input  []float64
	target float64
}

// buildWindows constructs the supervised training windows from an ordered
// cycle-length sequence: history[i:i+nSteps] predicts history[i+nSteps].
func buildWindows(history []int, nSteps int) []window {
	if len(history) <= nSteps {
		return nil
	}
	windows := make([]window, 0, len(history)-nSteps)
	for i := 0; i+nSteps < len(history); i++ {
		input := make([]float64, nSteps)
		for j := 0; j < nSteps; j++ {
			input[j] = float64(history[i+j])
		}
		windows = append(windows, window{input: input, target: float64(history[i+nSteps])})
	}
	return windows
}

// MaybeRetrain retrains the user's model when the history carries at least
// nSteps+1 observations, committing the updated artifact on success. It
// reports whether a new artifact was committed. Training failures are
// absorbed: they are logged, the previous artifact stays untouched, and the
// inference path never sees them. A cancelled context likewise means no
// commit.
func (t *Trainer) MaybeRetrain(ctx context.Context, userID string, history []int) bool {
	windows := buildWindows(history, t.nSteps)
	if len(windows) == 0 {
		// Not enough observations yet; a normal no-op, not a failure.
		return false
	}

	lock := t.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	runID := uuid.New().String()
	start := time.Now()
	logger := getLogger().With("user_id", userID, "run_id", runID)

	resolved, err := t.registry.Resolve(userID)
	if err != nil {
		logger.Error("retrain aborted, could not resolve starting model", "error", err)
		t.metrics.ObserveTraining("resolve_failed", time.Since(start))
		return false
	}

	// Training always starts from the resolved prior state, personalized or
	// baseline, never from scratch. An artifact trained under a different
	// window size cannot seed this run; its weights do not line up with the
	// windows built above, so restart from a fresh baseline instead.
	model := resolved.Model.Clone()
	model.Owner = userID
	fromBaseline := !resolved.Personalized
	if model.NSteps != t.nSteps {
		logger.Warn("stored model window size differs from configuration, restarting from baseline",
			"stored_steps", model.NSteps, "configured_steps", t.nSteps)
		model = NewBaseline(userID, t.nSteps)
		fromBaseline = true
	}

	loss, err := t.train(ctx, model, windows)
	if err != nil {
		logger.Warn("retrain run did not complete, keeping previous artifact", "error", err)
		t.metrics.ObserveTraining("cancelled", time.Since(start))
		return false
	}

	model.TrainedAt = time.Now()
	model.TrainedOn = len(history)
	model.Loss = loss

	if err := t.registry.Commit(userID, model); err != nil {
		logger.Error("retrain commit failed, keeping previous artifact", "error", err)
		t.metrics.ObserveTraining("commit_failed", time.Since(start))
		return false
	}

	logger.Info("retrained user model",
		"windows", len(windows),
		"epochs", t.epochs,
		"loss", loss,
		"started_from_baseline", fromBaseline,
		"duration_ms", time.Since(start).Milliseconds())
	t.metrics.ObserveTraining("success", time.Since(start))
	return true
}

// train runs the bounded optimization loop: full-batch MSE gradient descent
// with Adam for a fixed number of epochs. Deterministic for identical
// windows and starting state.
func (t *Trainer) train(ctx context.Context, model *Model, windows []window) (float64, error) {
	nParams := model.NSteps + 1 // weights plus bias
	params := make([]float64, nParams)
	copy(params, model.Weights)
	params[model.NSteps] = model.Bias

	opt := newAdam(t.lr, nParams)
	grads := make([]float64, nParams)

	var loss float64
	for epoch := 0; epoch < t.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		for i := range grads {
			grads[i] = 0
		}
		loss = 0

		for _, w := range windows {
			predicted := params[model.NSteps]
			for j := 0; j < model.NSteps; j++ {
				predicted += params[j] * w.input[j]
			}
			residual := predicted - w.target
			loss += residual * residual

			scale := 2.0 * residual / float64(len(windows))
			for j := 0; j < model.NSteps; j++ {
				grads[j] += scale * w.input[j]
			}
			grads[model.NSteps] += scale
		}
		loss /= float64(len(windows))

		opt.update(params, grads)
	}

	copy(model.Weights, params[:model.NSteps])
	model.Bias = params[model.NSteps]
	return loss, nil
}

// lockFor returns the per-user retrain lock, creating it on first use.
func (t *Trainer) lockFor(userID string) *sync.Mutex {
	t.locksMu.Lock()
	defer t.locksMu.Unlock()
	lock, ok := t.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.userLocks[userID] = lock
	}
	return lock
}
