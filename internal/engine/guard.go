// Package engine holds what the list and vector engines share: construction
// settings and the Guard that turns policy violations into outcomes.
package engine

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"

	"blop/diag"
	"blop/policy"
)

// Kind distinguishes the two engines in codes and reports.
type Kind uint8

const (
	KindList Kind = iota
	KindVector
)

func (k Kind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "list"
}

type kindCodes struct {
	emptyPop, index, closed, foreign diag.Code
}

var codes = [...]kindCodes{
	KindList:   {diag.ListEmptyPop, diag.ListIndexOutOfRange, diag.ListClosed, diag.ListForeignNode},
	KindVector: {diag.VecEmptyPop, diag.VecIndexOutOfRange, diag.VecClosed, diag.CodeNone},
}

// Guard applies a policy.Config to one container.
type Guard[T any] struct {
	Config   policy.Config
	Bridge   diag.Bridge
	Name     string
	Sentinel T
	kind     Kind
	ticket   Ticket
	closed   bool
}

// NewGuard validates cfg and settings. site is the constructor's call site,
// used when s carries none.
func NewGuard[T any](kind Kind, cfg policy.Config, s Settings, site string) (*Guard[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Guard[T]{Config: cfg, Bridge: s.Bridge, Name: s.Name, kind: kind}
	if g.Bridge == nil {
		g.Bridge = diag.Stderr()
	}
	if g.Name == "" {
		g.Name = kind.String()
	}
	if s.HasSentinel {
		v, ok := s.Sentinel.(T)
		if !ok {
			return nil, errors.Wrapf(policy.ErrSentinelType, "%s: sentinel is %T, want %T", g.Name, s.Sentinel, g.Sentinel)
		}
		g.Sentinel = v
	}
	if s.Capacity < 0 || s.MaxCapacity < 0 || (s.MaxCapacity > 0 && s.Capacity > s.MaxCapacity) {
		return nil, errors.Wrapf(policy.ErrCapacity, "%s: initial capacity %d, max %d",
			g.Name, redact.Safe(s.Capacity), redact.Safe(s.MaxCapacity))
	}
	if s.Tracker != nil {
		if s.Site != "" {
			site = s.Site
		}
		g.ticket = s.Tracker.Track(kind.String(), g.Name, site)
	}
	return g, nil
}

// Checked reports whether violations are detected at all.
func (g *Guard[T]) Checked() bool { return g.Config.Checked() }

// EmptyPop produces the outcome of popping an empty container.
func (g *Guard[T]) EmptyPop(op string) (T, error) {
	switch g.Config.EmptyPop {
	case policy.PopSentinel:
		g.Bridge.Log(diag.LevelWarning, fmt.Sprintf("%s: %s on empty %s, returning sentinel", g.Name, op, g.kind))
		return g.Sentinel, nil
	case policy.PopAbort:
		diag.Fatalf(g.Bridge, codes[g.kind].emptyPop, "%s: %s on empty %s", g.Name, op, g.kind)
	}
	var zero T
	return zero, errors.Wrapf(policy.ErrEmpty, "%s: %s", g.Name, op)
}

// OutOfRange reports index i outside [0, n).
func (g *Guard[T]) OutOfRange(op string, i, n int) error {
	return g.violation(codes[g.kind].index, policy.ErrIndexOutOfRange,
		"%s: %s index %d out of range [0, %d)", g.Name, op, redact.Safe(i), redact.Safe(n))
}

// Foreign reports a handle that is zero, stale or owned by another list.
func (g *Guard[T]) Foreign(op string) error {
	return g.violation(codes[g.kind].foreign, policy.ErrForeignNode, "%s: %s with a foreign handle", g.Name, op)
}

// Capacity reports a growth failure. It is an error under every policy.
func (g *Guard[T]) Capacity(cause error, format string, args ...any) error {
	err := errors.Wrapf(policy.ErrCapacity, "%s: "+format, append([]any{g.Name}, args...)...)
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	g.Bridge.Log(diag.LevelError, err.Error())
	return err
}

// Closed returns the outcome for use after Close, or nil when the container
// is open or unchecked.
func (g *Guard[T]) Closed(op string) error {
	if !g.closed || !g.Checked() {
		return nil
	}
	return g.violation(codes[g.kind].closed, policy.ErrClosed, "%s: %s after close", g.Name, op)
}

func (g *Guard[T]) violation(code diag.Code, sentinel error, format string, args ...any) error {
	err := errors.Newf(format, args...)
	if g.Config.Bounds == policy.BoundsCheckedAbort {
		diag.Fatal(g.Bridge, code, err.Error())
	}
	return errors.Mark(err, sentinel)
}

// Debugf logs engine internals such as growth.
func (g *Guard[T]) Debugf(format string, args ...any) {
	g.Bridge.Log(diag.LevelDebug, g.Name+": "+fmt.Sprintf(format, args...))
}

// Warnf logs a non-fatal policy event.
func (g *Guard[T]) Warnf(format string, args ...any) {
	g.Bridge.Log(diag.LevelWarning, g.Name+": "+fmt.Sprintf(format, args...))
}

// Close marks the container closed and releases its tracker ticket. It
// reports false if it was already closed.
func (g *Guard[T]) Close() bool {
	if g.closed {
		return false
	}
	g.closed = true
	if g.ticket != nil {
		g.ticket.Release()
		g.ticket = nil
	}
	return true
}

// IsClosed reports whether Close was called.
func (g *Guard[T]) IsClosed() bool { return g.closed }

// Site returns "dir/file.go:line" of the caller skip frames up.
func Site(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)), line)
}
