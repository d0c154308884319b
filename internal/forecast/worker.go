// worker.go: background retrain worker fed by new-cycle events and a
// periodic sweep
package forecast

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
)

// sweepConcurrency bounds how many users a periodic sweep retrains at once.
const sweepConcurrency = 4

// triggerBuffer is the capacity of the new-cycle trigger channel. A full
// buffer drops the trigger; the periodic sweep picks the user up later.
const triggerBuffer = 64

// HistoryRepo is the read-only slice of the datastore the worker needs.
type HistoryRepo interface {
	GetUserIDs() ([]string, error)
	GetCycleRecords(userID string) ([]cycle.Record, error)
}

// Worker runs retraining out of the request path. New-cycle events arrive
// through Trigger; a ticker sweeps all users on the configured interval.
type Worker struct {
	trainer  *Trainer
	repo     HistoryRepo
	interval time.Duration
	triggers chan string
}

// NewWorker creates a retrain worker. A zero retrain interval disables the
// periodic sweep, leaving only event-driven retrains.
func NewWorker(trainer *Trainer, repo HistoryRepo, settings *conf.Settings) *Worker {
	return &Worker{
		trainer:  trainer,
		repo:     repo,
		interval: time.Duration(settings.Forecast.RetrainInterval) * time.Minute,
		triggers: make(chan string, triggerBuffer),
	}
}

// Trigger requests a retrain for one user without blocking the caller. The
// request is dropped if the worker is saturated.
func (w *Worker) Trigger(userID string) {
	select {
	case w.triggers <- userID:
	default:
		getLogger().Warn("retrain trigger dropped, worker saturated", "user_id", userID)
	}
}

// Run consumes triggers and runs periodic sweeps until the context is
// cancelled.
func (w *Worker) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case userID := <-w.triggers:
			w.retrainOne(ctx, userID)
		case <-tick:
			if err := w.sweep(ctx); err != nil {
				getLogger().Error("retrain sweep failed", "error", err)
			}
		}
	}
}

// retrainOne loads one user's history and hands it to the trainer.
func (w *Worker) retrainOne(ctx context.Context, userID string) {
	records, err := w.repo.GetCycleRecords(userID)
	if err != nil {
		getLogger().Error("could not load cycle history for retrain", "user_id", userID, "error", err)
		return
	}
	w.trainer.MaybeRetrain(ctx, userID, cycle.Lengths(records))
}

// sweep retrains every known user, a few at a time. Same-user serialization
// is the trainer's job; the sweep only bounds overall parallelism.
func (w *Worker) sweep(ctx context.Context) error {
	userIDs, err := w.repo.GetUserIDs()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			w.retrainOne(gctx, userID)
			return nil
		})
	}
	return g.Wait()
}
