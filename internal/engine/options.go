package engine

import (
	"blop/diag"
)

// Ticket is returned by a Tracker and released when the container closes.
type Ticket interface {
	Release()
}

// Tracker records live containers.
type Tracker interface {
	Track(kind, name, site string) Ticket
}

// Settings are the per-container construction values.
type Settings struct {
	Bridge      diag.Bridge
	Name        string
	Sentinel    any
	HasSentinel bool
	Tracker     Tracker
	Capacity    int
	MaxCapacity int // 0 means unbounded
	Site        string
}

// Option adjusts Settings.
type Option func(*Settings)

// WithBridge routes diagnostics to b instead of diag.Stderr().
func WithBridge(b diag.Bridge) Option {
	return func(s *Settings) { s.Bridge = b }
}

// WithName labels the container in diagnostics and tracker reports.
func WithName(name string) Option {
	return func(s *Settings) { s.Name = name }
}

// WithSentinel sets the value returned by empty pops under policy.PopSentinel.
// Its type must be the container's element type.
func WithSentinel[T any](v T) Option {
	return func(s *Settings) {
		s.Sentinel = v
		s.HasSentinel = true
	}
}

// WithTracker registers the container with t until it is closed.
func WithTracker(t Tracker) Option {
	return func(s *Settings) { s.Tracker = t }
}

// WithCapacity sets the initial vector capacity. Lists use it to presize
// their node arena.
func WithCapacity(n int) Option {
	return func(s *Settings) { s.Capacity = n }
}

// WithMaxCapacity bounds vector growth and the list node arena.
func WithMaxCapacity(n int) Option {
	return func(s *Settings) { s.MaxCapacity = n }
}

// WithSite overrides the use site recorded by the tracker. Wrappers around
// the constructors pass their own caller.
func WithSite(site string) Option {
	return func(s *Settings) { s.Site = site }
}

// Apply folds opts over defaults.
func Apply(defaults []Option, opts []Option) Settings {
	var s Settings
	for _, o := range defaults {
		o(&s)
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}
