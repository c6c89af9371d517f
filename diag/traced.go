package diag

import (
	"fmt"
	"io"

	"blop/internal/trace"
)

// Traced mirrors every message into a trace ring and writes the ring to dump
// before aborting through next.
type Traced struct {
	next   Bridge
	ring   *trace.RingTracer
	dump   io.Writer
	format trace.Format
}

func NewTraced(next Bridge, ring *trace.RingTracer, dump io.Writer) *Traced {
	return &Traced{next: next, ring: ring, dump: dump, format: trace.FormatText}
}

func (t *Traced) Log(level Level, msg string) {
	ev := trace.Point(trace.ScopeOp, level.String(), msg)
	t.ring.Emit(&ev)
	t.next.Log(level, msg)
}

func (t *Traced) Abort(code Code, msg string) {
	ev := trace.Point(trace.ScopeOp, code.String(), msg)
	t.ring.Emit(&ev)
	if t.dump != nil {
		fmt.Fprintf(t.dump, "--- last %d events before %s ---\n", t.ring.Len(), code)
		// the abort below matters more than a failed dump
		_ = t.ring.Dump(t.dump, t.format)
	}
	Fatal(t.next, code, msg)
}
