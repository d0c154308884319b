// registry.go: model artifact store with atomic replace and baseline fallback
package forecast

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/errors"
	"github.com/cyclesync/cyclesync-go/internal/observability/metrics"
)

const (
	// resolveCacheTTL bounds how stale a cached resolution may be; commits
	// refresh the cache immediately, so this only matters for artifacts
	// replaced out-of-band.
	resolveCacheTTL = 5 * time.Minute

	resolveCacheCleanup = 10 * time.Minute
)

// Resolved is the tagged result of a registry lookup: the model to use and
// whether it is the user's own or the shared baseline. Callers branch on
// Personalized only for logging and metrics, never for correctness.
type Resolved struct {
	Model        *Model
	Personalized bool
}

// Registry stores, loads, and atomically replaces forecasting models keyed
// by user identity. The shared baseline always exists once NewRegistry
// succeeds, so Resolve never fails with "not found" at request time.
type Registry struct {
	dir     string
	nSteps  int
	cache   *cache.Cache
	mu      sync.Mutex // serializes artifact writes
	metrics *metrics.ForecastMetrics
}

// NewRegistry opens the artifact directory and seeds the shared baseline if
// it does not exist yet. A missing or unreadable baseline that cannot be
// re-seeded is a fatal startup error.
func NewRegistry(settings *conf.Settings, m *metrics.ForecastMetrics) (*Registry, error) {
	dir := conf.GetBasePath(settings.Forecast.ModelPath)

	r := &Registry{
		dir:     dir,
		nSteps:  settings.Forecast.NSteps,
		cache:   cache.New(resolveCacheTTL, resolveCacheCleanup),
		metrics: m,
	}

	if err := r.seedBaseline(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the artifact directory the registry operates on.
func (r *Registry) Dir() string {
	return r.dir
}

// seedBaseline writes an untrained baseline artifact unless a valid one is
// already present.
func (r *Registry) seedBaseline() error {
	if m, err := r.loadArtifact(GlobalOwner); err == nil && m != nil {
		return nil
	}

	baseline := NewBaseline(GlobalOwner, r.nSteps)
	if err := r.writeArtifact(GlobalOwner, baseline); err != nil {
		return errors.New(fmt.Errorf("seeding baseline model: %w", err)).
			Component("forecast").
			Category(errors.CategoryModelCommit).
			Context("model_path", r.dir).
			Build()
	}
	getLogger().Info("seeded baseline forecast model", "path", r.artifactPath(GlobalOwner), "n_steps", r.nSteps)
	return nil
}

// Resolve returns the user's trained model if present and structurally
// valid, otherwise the shared baseline. A corrupt per-user artifact is a
// data-integrity warning, not a caller-visible error.
func (r *Registry) Resolve(userID string) (Resolved, error) {
	if cached, found := r.cache.Get(cacheKey(userID)); found {
		return cached.(Resolved), nil
	}

	model, err := r.loadArtifact(userID)
	if err != nil {
		getLogger().Warn("user model artifact unreadable, falling back to baseline",
			"user_id", userID, "error", err)
		r.metrics.IncArtifactCorrupt()
		model = nil
	}

	resolved := Resolved{Model: model, Personalized: model != nil}
	if model == nil {
		baseline, err := r.loadArtifact(GlobalOwner)
		if err != nil || baseline == nil {
			// The baseline is seeded at startup; failure here means the
			// artifact store itself has degraded.
			return Resolved{}, errors.New(fmt.Errorf("baseline model unavailable: %w", err)).
				Component("forecast").
				Category(errors.CategoryModelLoad).
				Context("model_path", r.dir).
				Build()
		}
		resolved.Model = baseline
	}

	r.cache.Set(cacheKey(userID), resolved, cache.DefaultExpiration)
	r.metrics.IncResolve(resolved.Personalized)
	return resolved, nil
}

// Commit atomically replaces the user's stored artifact. Concurrent Resolve
// calls observe either the previous or the new artifact, never a partial
// write.
func (r *Registry) Commit(userID string, model *Model) error {
	if err := model.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeArtifact(userID, model); err != nil {
		return errors.New(fmt.Errorf("committing model for %s: %w", userID, err)).
			Component("forecast").
			Category(errors.CategoryModelCommit).
			ModelContext(model.Owner, model.TrainedOn).
			Build()
	}

	r.cache.Set(cacheKey(userID), Resolved{Model: model, Personalized: userID != GlobalOwner}, cache.DefaultExpiration)
	r.metrics.IncCommit()
	return nil
}

// loadArtifact reads and validates one artifact. A missing artifact returns
// (nil, nil); a corrupt one returns an error.
func (r *Registry) loadArtifact(owner string) (*Model, error) {
	data, err := os.ReadFile(r.artifactPath(owner))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return UnmarshalModel(data)
}

// writeArtifact writes the artifact to a temporary file in the same
// directory and renames it over the destination, so readers never observe a
// half-written blob.
func (r *Registry) writeArtifact(owner string, model *Model) error {
	data, err := model.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "artifact-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, r.artifactPath(owner)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// artifactPath maps an owner to its artifact file. Owner IDs arrive from
// request input, so the filename carries a hex encoding of the ID rather
// than the raw value; path separators and dot segments never reach the
// filesystem.
func (r *Registry) artifactPath(owner string) string {
	if owner == GlobalOwner {
		return filepath.Join(r.dir, "global.json")
	}
	return filepath.Join(r.dir, fmt.Sprintf("user_%s.json", hex.EncodeToString([]byte(owner))))
}

func cacheKey(userID string) string {
	return "model:" + userID
}
