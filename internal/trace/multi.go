package trace

import "github.com/cockroachdb/errors"

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit hands each tracer its own copy, since tracers may stamp Seq.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var err error
	for _, tr := range t.tracers {
		err = errors.CombineErrors(err, tr.Flush())
	}
	return err
}

func (t *MultiTracer) Close() error {
	var err error
	for _, tr := range t.tracers {
		err = errors.CombineErrors(err, tr.Close())
	}
	return err
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
