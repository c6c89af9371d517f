package diag

import "time"

// Recorder is a Bridge that stores every diagnostic in a Bag. Abort records
// a LevelFatal entry and panics with *Aborted; see Catch.
type Recorder struct {
	bag *Bag
	min Level
}

// NewRecorder records everything at min or above.
func NewRecorder(min Level) *Recorder {
	return &Recorder{bag: NewBag(0), min: min}
}

func (r *Recorder) Log(level Level, msg string) {
	if level < r.min {
		return
	}
	r.bag.Add(Diagnostic{Level: level, Message: msg, Time: time.Now()})
}

func (r *Recorder) Abort(code Code, msg string) {
	r.bag.Add(Diagnostic{Level: LevelFatal, Code: code, Message: msg, Time: time.Now()})
	panic(&Aborted{Code: code, Message: msg})
}

// Bag exposes the underlying collection.
func (r *Recorder) Bag() *Bag { return r.bag }

// Messages returns the recorded messages at exactly level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, d := range r.bag.Items() {
		if d.Level == level {
			out = append(out, d.Message)
		}
	}
	return out
}
