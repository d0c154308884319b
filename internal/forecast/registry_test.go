package forecast

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync-go/internal/conf"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	s := &conf.Settings{}
	s.Forecast.NSteps = 3
	s.Forecast.Epochs = 50
	s.Forecast.LearningRate = 0.01
	s.Forecast.ModelPath = t.TempDir()
	return s
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testSettings(t), nil)
	require.NoError(t, err)
	return r
}

func TestNewRegistrySeedsBaseline(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	_, err := os.Stat(filepath.Join(r.Dir(), "global.json"))
	require.NoError(t, err, "baseline artifact should exist after startup")

	resolved, err := r.Resolve("nobody")
	require.NoError(t, err)
	assert.False(t, resolved.Personalized)
	assert.Equal(t, GlobalOwner, resolved.Model.Owner)
}

func TestResolveReturnsPersonalizedAfterCommit(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	m := NewBaseline("u1", 3)
	m.TrainedAt = time.Now()
	m.TrainedOn = 6
	require.NoError(t, r.Commit("u1", m))

	resolved, err := r.Resolve("u1")
	require.NoError(t, err)
	assert.True(t, resolved.Personalized)
	assert.Equal(t, "u1", resolved.Model.Owner)
	assert.Equal(t, 6, resolved.Model.TrainedOn)
}

func TestResolveFallsBackOnCorruptArtifact(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	// A truncated artifact must behave exactly like an absent one.
	require.NoError(t, os.WriteFile(r.artifactPath("u2"), []byte(`{"owner":"u2","n_st`), 0o644))

	resolved, err := r.Resolve("u2")
	require.NoError(t, err, "corrupt artifacts are absorbed, not surfaced")
	assert.False(t, resolved.Personalized)
	assert.Equal(t, GlobalOwner, resolved.Model.Owner)
}

func TestCommitRejectsInvalidModel(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	bad := &Model{Owner: "u1", NSteps: 3, Weights: []float64{0.5}}
	assert.Error(t, r.Commit("u1", bad))

	// The invalid commit must not have produced an artifact.
	_, err := os.Stat(r.artifactPath("u1"))
	assert.True(t, os.IsNotExist(err))
}

// TestCommitHostileOwnerStaysInModelDir exercises owner IDs that try to
// escape the artifact directory through the filename.
func TestCommitHostileOwnerStaysInModelDir(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	hostile := "../../outside/victim"

	m := NewBaseline(hostile, 3)
	m.TrainedAt = time.Now()
	m.TrainedOn = 6
	require.NoError(t, r.Commit(hostile, m))

	path := r.artifactPath(hostile)
	assert.Equal(t, r.Dir(), filepath.Dir(path), "artifact must stay inside the model directory")
	_, err := os.Stat(path)
	require.NoError(t, err)

	resolved, err := r.Resolve(hostile)
	require.NoError(t, err)
	assert.True(t, resolved.Personalized)
	assert.Equal(t, hostile, resolved.Model.Owner)
}

// TestConcurrentCommitResolve verifies no reader ever observes a partial
// artifact while writers replace it.
func TestConcurrentCommitResolve(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m := NewBaseline("u1", 3)
			m.TrainedAt = time.Now()
			m.TrainedOn = i + 1
			if err := r.Commit("u1", m); err != nil {
				t.Errorf("commit %d failed: %v", i, err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			resolved, err := r.Resolve("u1")
			if err != nil {
				t.Errorf("resolve %d failed: %v", i, err)
				return
			}
			if err := resolved.Model.Validate(); err != nil {
				t.Errorf("resolve %d returned invalid model: %v", i, err)
				return
			}
		}
	}()

	wg.Wait()
}

// TestConcurrentResolveBypassCache hammers the artifact file directly while
// commits replace it, so every read hits disk rather than the cache.
func TestConcurrentResolveBypassCache(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	path := r.artifactPath("u3")
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			m := NewBaseline("u3", 3)
			m.TrainedOn = i + 1
			if err := r.Commit("u3", m); err != nil {
				t.Errorf("commit failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		require.NotEmpty(t, data, "observed a zero-length artifact")
		_, err = UnmarshalModel(data)
		require.NoError(t, err, "observed a partially written artifact")
	}
	close(stop)
	wg.Wait()
}
