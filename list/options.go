package list

import (
	"blop/diag"
	"blop/internal/engine"
	"blop/policy"
)

// Option configures a list at construction.
type Option = engine.Option

// Outcome sentinels, for errors.Is.
var (
	ErrEmpty       = policy.ErrEmpty
	ErrIndex       = policy.ErrIndexOutOfRange
	ErrForeignNode = policy.ErrForeignNode
	ErrClosed      = policy.ErrClosed
	ErrCapacity    = policy.ErrCapacity
)

// WithBridge sends diagnostics to b instead of diag.Stderr().
func WithBridge(b diag.Bridge) Option { return engine.WithBridge(b) }

// WithName labels the list in diagnostics.
func WithName(name string) Option { return engine.WithName(name) }

// WithSentinel sets the value popped from an empty list under
// policy.PopSentinel. The zero value is used otherwise.
func WithSentinel[T any](v T) Option { return engine.WithSentinel(v) }

// WithTracker registers the list with a leak tracker until Close.
func WithTracker(t engine.Tracker) Option { return engine.WithTracker(t) }

// WithCapacity presizes the node arena.
func WithCapacity(n int) Option { return engine.WithCapacity(n) }

// WithMaxNodes bounds the node arena. Inserting past it is ErrCapacity.
func WithMaxNodes(n int) Option { return engine.WithMaxCapacity(n) }
