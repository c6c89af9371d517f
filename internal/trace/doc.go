// Package trace records timestamped events for the blop CLI and for
// diagnostics bridges that keep a history of container activity.
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: writes every event as it arrives
//   - RingTracer: keeps the last N events, dumped when a container aborts
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Scopes order events from coarse to fine: ScopeCommand (a CLI command),
// ScopePhase (manifest load, render, write), ScopeUnit (one generated file or
// one container) and ScopeOp (a single container operation). A Level decides
// which scopes are emitted:
//
//	LevelOff    nothing
//	LevelError  nothing streamed; rings still dump on abort
//	LevelPhase  command and phase boundaries
//	LevelDetail adds units
//	LevelDebug  everything
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "render", 0)
//	defer span.End("")
package trace
