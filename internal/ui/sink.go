package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/mattn/go-runewidth"

	"blop/internal/codegen"
)

// ChannelSink forwards events to Ch.
type ChannelSink struct {
	Ch chan<- codegen.Event
}

func (s ChannelSink) OnEvent(ev codegen.Event) { s.Ch <- ev }

// LineSink prints one line per finished output, for non-interactive runs.
type LineSink struct {
	mu  sync.Mutex
	out io.Writer
	dir string
}

// NewLineSink prints to out with file names relative to dir.
func NewLineSink(out io.Writer, dir string) *LineSink {
	return &LineSink{out: out, dir: dir}
}

func (s *LineSink) OnEvent(ev codegen.Event) {
	if ev.File == "" || !ev.Status.Terminal() {
		return
	}
	name := ev.File
	if rel, err := filepath.Rel(s.dir, ev.File); err == nil {
		name = rel
	}
	status := runewidth.FillLeft(string(ev.Status), 9)
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Err != nil {
		fmt.Fprintf(s.out, "%s %s: %v\n", styleStatus(string(ev.Status)).Render(status), name, ev.Err)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", styleStatus(string(ev.Status)).Render(status), name)
}
