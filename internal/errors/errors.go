// Package errors classifies failures so the HTTP layer can map them to status
// codes and telemetry can decide what is worth reporting.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// ErrorCategory is the failure kind. Handlers switch on it, never on message text.
type ErrorCategory string

// CategorizedError lets foreign errors declare a category that Build inherits.
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryDatabase      ErrorCategory = "database"
	CategoryInvariant     ErrorCategory = "invariant"
	CategoryForbidden     ErrorCategory = "forbidden"
	CategoryNetwork       ErrorCategory = "network"
	CategoryHTTP          ErrorCategory = "http-request"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryIntegration   ErrorCategory = "integration" // Third-party integrations
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryGeneric       ErrorCategory = "generic"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

const ComponentUnknown = "unknown"

// EnhancedError is a categorized error. Error() returns the wrapped message
// unchanged, so callers may show it to clients.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Priority  string
	Context   map[string]any
	Timestamp time.Time

	mu       sync.RWMutex
	reported bool
}

func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches another EnhancedError by category, anything else through the wrapped error.
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return Is(ee.Err, target)
}

func (ee *EnhancedError) ErrorCategory() ErrorCategory {
	return ee.Category
}

// GetContext returns a copy; the caller may mutate it freely.
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

func (ee *EnhancedError) MarkReported() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	ee.reported = true
}

// IsReported guards against sending the same error twice.
func (ee *EnhancedError) IsReported() bool {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	return ee.reported
}

// ErrorBuilder assembles an EnhancedError:
//
//	errors.New(err).Component("datastore").Category(errors.CategoryDatabase).Build()
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	priority  string
	context   map[string]any
}

func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Priority overrides the reported priority. Unknown values fall back to medium.
func (eb *ErrorBuilder) Priority(priority string) *ErrorBuilder {
	if priority != "" && !knownPriorities[priority] {
		priority = PriorityMedium
	}
	eb.priority = priority
	return eb
}

var knownPriorities = map[string]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
}

// Context attaches one key/value; repeated keys overwrite.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build finalizes the error. A missing category is inherited from a wrapped
// CategorizedError, and installed reporters see the error here.
func (eb *ErrorBuilder) Build() *EnhancedError {
	category := eb.category
	if category == "" {
		category = detectCategory(eb.err)
	}
	component := eb.component
	if component == "" {
		component = ComponentUnknown
	}

	ee := &EnhancedError{
		Err:       eb.err,
		Component: component,
		Category:  category,
		Priority:  eb.priority,
		Context:   eb.context,
		Timestamp: time.Now(),
	}

	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}

	return ee
}

// detectCategory inherits the category of a wrapped categorized error
func detectCategory(err error) ErrorCategory {
	var catErr CategorizedError
	if err != nil && stderrors.As(err, &catErr) {
		return catErr.ErrorCategory()
	}
	return CategoryGeneric
}

// hasActiveReporting short-circuits telemetry work when no reporter is installed
var hasActiveReporting atomic.Bool

// ValidationError creates a validation error
func ValidationError(message string) *EnhancedError {
	return New(NewStd(message)).
		Category(CategoryValidation).
		Build()
}

// NotFoundError creates a not-found error for a resource identifier
func NotFoundError(resource, identifier string) *EnhancedError {
	return Newf("%s not found", resource).
		Category(CategoryNotFound).
		Context("resource", resource).
		Context("identifier", identifier).
		Build()
}

// InvariantError creates an invariant violation. These indicate deployment bugs.
func InvariantError(message string) *EnhancedError {
	return New(NewStd(message)).
		Category(CategoryInvariant).
		Priority(PriorityCritical).
		Build()
}

// Passthroughs so callers import one errors package.

func NewStd(text string) error      { return stderrors.New(text) }
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Unwrap(err error) error        { return stderrors.Unwrap(err) }
func Join(errs ...error) error      { return stderrors.Join(errs...) }

// IsCategory reports whether err's chain holds an EnhancedError of category.
func IsCategory(err error, category ErrorCategory) bool {
	return KindOf(err) == category
}

func IsNotFound(err error) bool   { return IsCategory(err, CategoryNotFound) }
func IsValidation(err error) bool { return IsCategory(err, CategoryValidation) }
func IsStorage(err error) bool    { return IsCategory(err, CategoryDatabase) }
func IsInvariant(err error) bool  { return IsCategory(err, CategoryInvariant) }
func IsForbidden(err error) bool  { return IsCategory(err, CategoryForbidden) }

// KindOf returns the category of the outermost EnhancedError in err's chain,
// or CategoryGeneric when err carries none. Storage layers map this onto
// response codes, so a nil err is generic too.
func KindOf(err error) ErrorCategory {
	var ee *EnhancedError
	if err == nil || !As(err, &ee) {
		return CategoryGeneric
	}
	return ee.Category
}
