package vector

import (
	"blop/diag"
	"blop/internal/engine"
	"blop/policy"
)

// Option configures a vector at construction.
type Option = engine.Option

// Outcome sentinels, for errors.Is.
var (
	ErrEmpty    = policy.ErrEmpty
	ErrIndex    = policy.ErrIndexOutOfRange
	ErrCapacity = policy.ErrCapacity
	ErrClosed   = policy.ErrClosed
)

// WithBridge sends diagnostics to b instead of diag.Stderr().
func WithBridge(b diag.Bridge) Option { return engine.WithBridge(b) }

// WithName labels the vector in diagnostics.
func WithName(name string) Option { return engine.WithName(name) }

// WithSentinel sets the value popped from an empty vector under
// policy.PopSentinel.
func WithSentinel[T any](v T) Option { return engine.WithSentinel(v) }

// WithTracker registers the vector with a leak tracker until Close.
func WithTracker(t engine.Tracker) Option { return engine.WithTracker(t) }

// WithCapacity sets the initial capacity. Shrinking never goes below it.
func WithCapacity(n int) Option { return engine.WithCapacity(n) }

// WithMaxCapacity makes growth past n fail with ErrCapacity.
func WithMaxCapacity(n int) Option { return engine.WithMaxCapacity(n) }
