// Package auth decides who may curate exhibits. Write operations receive a
// Capability value; only the transport edge turns credentials into one.
package auth

import (
	"context"

	"github.com/zoneheat/zoneheat/internal/errors"
)

// ErrForbidden is the sentinel behind every missing-capability error.
var ErrForbidden = errors.NewStd("curation capability required")

// Capability is an authorization grant passed into write operations.
// The zero value grants nothing.
type Capability struct {
	curate  bool
	subject string
}

// Curator grants exhibit curation. subject names the holder for logs.
func Curator(subject string) Capability {
	return Capability{curate: true, subject: subject}
}

// None grants nothing.
func None() Capability { return Capability{} }

// CanCurate reports whether exhibits may be changed.
func (c Capability) CanCurate() bool { return c.curate }

// Subject returns the holder name, or "anonymous".
func (c Capability) Subject() string {
	if c.subject == "" {
		return "anonymous"
	}
	return c.subject
}

// RequireCurator returns a forbidden error unless c can curate.
func RequireCurator(c Capability, operation string) error {
	if c.CanCurate() {
		return nil
	}
	return errors.New(ErrForbidden).
		Component("auth").
		Category(errors.CategoryForbidden).
		Context("operation", operation).
		Build()
}

type ctxKey struct{}

// WithCapability stores c in ctx.
func WithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the capability stored in ctx, or None.
func FromContext(ctx context.Context) Capability {
	if c, ok := ctx.Value(ctxKey{}).(Capability); ok {
		return c
	}
	return None()
}
