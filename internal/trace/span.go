package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span tracks a begin/end pair.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin emits a begin event and returns the span. When the tracer would drop
// the scope, the returned span is inert.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// Start begins a span under the tracer and parent found in ctx, and returns
// a context carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, ParentFrom(ctx))
	if s.id == 0 {
		return ctx, s
	}
	return WithSpan(ctx, s), s
}

// End emits the end event and returns the elapsed time.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	dur := time.Since(s.started)
	extra := s.extra
	if extra == nil {
		extra = make(map[string]string, 1)
	}
	extra["dur"] = dur.Round(time.Microsecond).String()
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
	return dur
}

// WithExtra attaches a key/value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
