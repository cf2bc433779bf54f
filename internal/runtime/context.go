// Package runtime contains process metadata separate from user configuration.
package runtime

import (
	"github.com/google/uuid"
)

// Context carries build and instance metadata injected at startup. None of it
// comes from config.yaml.
type Context struct {
	// Version is the release tag set with -ldflags at build time.
	Version string

	// BuildDate is the time when the binary was built.
	BuildDate string

	// InstanceID identifies this process in logs and telemetry releases.
	InstanceID string
}

// New returns a Context with a fresh instance id. Empty values become "dev"
// and "unknown".
func New(version, buildDate string) *Context {
	if version == "" {
		version = "dev"
	}
	if buildDate == "" {
		buildDate = "unknown"
	}
	return &Context{
		Version:    version,
		BuildDate:  buildDate,
		InstanceID: uuid.NewString(),
	}
}

// Release is the telemetry release name.
func (c *Context) Release() string {
	return "zoneheat@" + c.Version
}

// UserAgent is sent on outbound classifier requests.
func (c *Context) UserAgent() string {
	return "zoneheat/" + c.Version
}

// ValidationResult holds preflight outcomes separately from configuration.
type ValidationResult struct {
	// Warnings are configuration issues that don't prevent startup
	Warnings []string

	// Errors are critical issues that should prevent startup
	Errors []string

	// Valid indicates if the configuration passed validation
	Valid bool
}

// AddWarning adds a warning to the validation result
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// AddError adds an error to the validation result
func (r *ValidationResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Valid = false
}

// HasIssues returns true if there are any warnings or errors
func (r *ValidationResult) HasIssues() bool {
	return len(r.Warnings) > 0 || len(r.Errors) > 0
}

// NewValidationResult creates a new validation result with Valid set to true
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid: true,
	}
}
