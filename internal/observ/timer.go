// Package observ measures the phases of a blop command for --timings.
package observ

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Phase is one measured step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases in the order they began. It is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8), now: time.Now} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes the phase at idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// Measure runs fn as a phase named name.
func (t *Timer) Measure(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	note := ""
	if err != nil {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// PhaseReport is one row of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

// WriteSummary prints an aligned table of phases and their total.
func (t *Timer) WriteSummary(w io.Writer) error {
	r := t.Report()
	width := len("total")
	for _, p := range r.Phases {
		width = max(width, runewidth.StringWidth(p.Name))
	}
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %s %8.2f ms", runewidth.FillRight(p.Name, width), p.DurationMS)
		if p.Note != "" {
			line += "  (" + p.Note + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %s %8.2f ms\n", runewidth.FillRight("total", width), r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
