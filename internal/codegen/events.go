package codegen

import "time"

// Stage is a step of generating one output.
type Stage string

const (
	StageLoad   Stage = "load"
	StageRender Stage = "render"
	StageFormat Stage = "format"
	StageWrite  Stage = "write"
)

// Status is the progress state within a stage.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusWorking   Status = "working"
	StatusDone      Status = "done"
	StatusUnchanged Status = "unchanged"
	StatusError     Status = "error"
)

// Terminal reports whether no further events follow for the output.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusUnchanged || s == StatusError
}

// Event reports progress for one output file, or for the whole run when
// File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events. OnEvent may be called from several
// goroutines.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
