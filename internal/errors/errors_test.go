package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("model artifact truncated")
	err := New(base).
		Component("forecast").
		Category(CategoryModelLoad).
		Context("user_id", "u42").
		Build()

	assert.Equal(t, "model artifact truncated", err.Error())
	assert.Equal(t, "forecast", err.GetComponent())
	assert.Equal(t, string(CategoryModelLoad), err.GetCategory())
	assert.Equal(t, "u42", err.GetContext()["user_id"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure: %d", 7).Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.NotEmpty(t, err.GetComponent())
}

func TestUnwrapChain(t *testing.T) {
	t.Parallel()

	err := New(fmt.Errorf("reading artifact: %w", ErrPredictionUnavailable)).
		Category(CategoryInference).
		Build()

	assert.True(t, Is(err, ErrPredictionUnavailable))

	var enhanced *EnhancedError
	require.True(t, As(err, &enhanced))
	assert.Equal(t, CategoryInference, enhanced.Category)
}

func TestIsMatchesByCategory(t *testing.T) {
	t.Parallel()

	a := Newf("first").Category(CategoryTraining).Build()
	b := Newf("second").Category(CategoryTraining).Build()
	c := Newf("third").Category(CategoryDatabase).Build()

	assert.True(t, Is(a, b), "same category should match")
	assert.False(t, Is(a, c), "different category should not match")
}

func TestContextCopyIsIsolated(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"

	assert.Equal(t, "v", err.GetContext()["k"])
}

func TestSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, Is(ErrInsufficientHistory, ErrPredictionUnavailable))
	assert.False(t, Is(ErrPredictionUnavailable, ErrInsufficientHistory))
}
