package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each event to w as it is emitted.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	seq    uint64
	level  Level
	format Format
	err    error
}

// NewStreamTracer creates a tracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

// Emit writes ev. The first write error is kept and reported by Flush;
// later events are dropped.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.seq++
	ev.Seq = t.seq
	_, t.err = t.w.Write(FormatEvent(ev, t.format))
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if f, ok := t.w.(interface{ Sync() error }); ok {
		// stderr cannot be synced on some platforms
		_ = f.Sync()
	}
	return nil
}

// Close flushes and closes w when it is a closer other than a std stream.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
