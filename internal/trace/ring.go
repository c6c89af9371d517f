package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in a fixed circular buffer.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int
	count  int
	seq    uint64
	level  Level
}

// NewRingTracer creates a ring holding up to size events.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{events: make([]Event, size), level: level}
}

// Emit stores a copy of ev. LevelError rings keep everything, since they are
// only read when something has already gone wrong.
func (t *RingTracer) Emit(ev *Event) {
	if t.level == LevelOff || (t.level != LevelError && !t.level.ShouldEmit(ev.Scope)) {
		return
	}
	t.mu.Lock()
	t.seq++
	stored := *ev
	stored.Seq = t.seq
	t.events[t.next] = stored
	t.next = (t.next + 1) % len(t.events)
	if t.count < len(t.events) {
		t.count++
	}
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.count)
	start := (t.next - t.count + len(t.events)) % len(t.events)
	for i := range t.count {
		out = append(out, t.events[(start+i)%len(t.events)])
	}
	return out
}

// Len returns the number of stored events.
func (t *RingTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
