// Package errors provides centralized error handling for the cyclesync
// engine: enhanced errors with component and category metadata, a fluent
// builder, and drop-in replacements for the standard library helpers.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorCategory groups errors for logging and metrics.
type ErrorCategory string

const (
	CategoryModelLoad        ErrorCategory = "model-loading"
	CategoryModelCommit      ErrorCategory = "model-commit"
	CategoryTraining         ErrorCategory = "training"
	CategoryInference        ErrorCategory = "inference"
	CategoryDatabase         ErrorCategory = "database"
	CategoryValidation       ErrorCategory = "validation"
	CategoryConfiguration    ErrorCategory = "configuration"
	CategoryFileIO           ErrorCategory = "file-io"
	CategoryHTTP             ErrorCategory = "http-request"
	CategoryInsufficientData ErrorCategory = "insufficient-data"
	CategoryNotFound         ErrorCategory = "not-found"
	CategoryGeneric          ErrorCategory = "generic"
)

// Sentinel errors for the outcomes the engine surfaces to callers. Anything
// else stays internal: model-load failures fall back to the baseline, and
// training failures leave the previous artifact in place.
var (
	// ErrInsufficientHistory marks the normal "no prediction yet" outcome
	// when a user has fewer observations than the model's window size.
	ErrInsufficientHistory = stderrors.New("insufficient cycle history")

	// ErrPredictionUnavailable marks an inference-time failure of the
	// resolved model. Callers degrade to "no prediction available".
	ErrPredictionUnavailable = stderrors.New("prediction unavailable")
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component, category, and context data.
type EnhancedError struct {
	Err       error
	component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time
	mu        sync.RWMutex
}

// Error implements the error interface.
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface.
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches other enhanced errors by category, and otherwise defers to the
// wrapped error chain.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

// GetComponent returns the component name, detecting it from the call site
// lazily if it was never set.
func (ee *EnhancedError) GetComponent() string {
	ee.mu.RLock()
	if ee.component != "" {
		component := ee.component
		ee.mu.RUnlock()
		return component
	}
	ee.mu.RUnlock()

	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.component == "" {
		ee.component = ComponentUnknown
	}
	return ee.component
}

// GetCategory returns the error category as a string.
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetContext returns a copy of the error context.
func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	if ee.Context == nil {
		return nil
	}
	contextCopy := make(map[string]any, len(ee.Context))
	maps.Copy(contextCopy, ee.Context)
	return contextCopy
}

// ErrorBuilder provides a fluent interface for creating enhanced errors.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new builder wrapping a formatted error.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name (detected from the call stack if unset).
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category.
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key/value pair to the error context.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// ModelContext adds model-artifact context to the error.
func (eb *ErrorBuilder) ModelContext(owner string, trainedOn int) *ErrorBuilder {
	if owner != "" {
		eb = eb.Context("model_owner", owner)
	}
	if trainedOn > 0 {
		eb = eb.Context("trained_on", trainedOn)
	}
	return eb
}

// Timing adds operation timing context to the error.
func (eb *ErrorBuilder) Timing(operation string, duration time.Duration) *ErrorBuilder {
	eb = eb.Context("operation", operation)
	eb = eb.Context("duration_ms", duration.Milliseconds())
	return eb
}

// Build creates the EnhancedError.
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = detectComponent()
	}
	category := eb.category
	if category == "" {
		category = CategoryGeneric
	}
	return &EnhancedError{
		Err:       eb.err,
		component: component,
		Category:  category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
}

// Component registry for call-stack based component detection.
var (
	componentRegistry = make(map[string]string)
	registryMutex     sync.RWMutex
)

// RegisterComponent registers a package path pattern with a component name.
func RegisterComponent(packagePattern, componentName string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	componentRegistry[packagePattern] = componentName
}

func init() {
	RegisterComponent("forecast", "forecast")
	RegisterComponent("calendar", "calendar")
	RegisterComponent("cycle", "cycle")
	RegisterComponent("datastore", "datastore")
	RegisterComponent("conf", "configuration")
	RegisterComponent("api", "api")
}

// detectComponent walks the call stack for the first registered component.
func detectComponent() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == len(pcs) {
		pcs = make([]uintptr, 32)
		n = runtime.Callers(2, pcs)
	}

	for i := 0; i < n; i++ {
		fn := runtime.FuncForPC(pcs[i])
		if fn == nil {
			continue
		}
		funcName := fn.Name()
		if strings.Contains(funcName, "internal/errors") {
			continue
		}
		if component := lookupComponent(funcName); component != ComponentUnknown {
			return component
		}
	}
	return ComponentUnknown
}

// lookupComponent searches the registry for a matching component.
func lookupComponent(funcName string) string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	for pattern, component := range componentRegistry {
		if strings.Contains(funcName, pattern) {
			return component
		}
	}
	return ComponentUnknown
}

// --- Standard library compatibility ---

// NewStd creates a plain standard library error without enhancement.
func NewStd(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error wrapping the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
