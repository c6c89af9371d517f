package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette builds the level colors of one Writer. color.Color is mutable, so
// Writers do not share them.
func palette() map[Level]*color.Color {
	p := map[Level]*color.Color{
		LevelDebug:   color.New(color.FgHiBlack),
		LevelInfo:    color.New(color.FgCyan),
		LevelSuccess: color.New(color.FgGreen, color.Bold),
		LevelWarning: color.New(color.FgYellow, color.Bold),
		LevelError:   color.New(color.FgRed, color.Bold),
		LevelFatal:   color.New(color.FgHiWhite, color.BgRed, color.Bold),
	}
	for _, c := range p {
		c.EnableColor()
	}
	return p
}

// Writer is the default Bridge: one line per message on an io.Writer.
//
//	[blop] WARNING: ints: pop on empty list, returning sentinel
//	[blop] FATAL BLP1003: ints: index 7 out of range [0, 3)
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	min    Level
	prefix string
	color  bool
	colors map[Level]*color.Color // nil when color is off
	stamp  bool
	exit   func(int)
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithMinLevel drops messages below min.
func WithMinLevel(min Level) WriterOption { return func(w *Writer) { w.min = min } }

// WithColor forces level tags to be colored or not.
func WithColor(on bool) WriterOption { return func(w *Writer) { w.color = on } }

// WithPrefix replaces the "[blop]" prefix. Empty drops it.
func WithPrefix(p string) WriterOption { return func(w *Writer) { w.prefix = p } }

// WithTimestamps prefixes lines with the wall clock time.
func WithTimestamps() WriterOption { return func(w *Writer) { w.stamp = true } }

// WithExitFunc replaces os.Exit for Abort.
func WithExitFunc(fn func(int)) WriterOption { return func(w *Writer) { w.exit = fn } }

// NewWriter builds a Writer. Color defaults to the global fatih/color switch.
func NewWriter(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		out:    out,
		min:    LevelInfo,
		prefix: "[blop]",
		color:  !color.NoColor,
		exit:   os.Exit,
	}
	for _, o := range opts {
		o(w)
	}
	if w.color {
		w.colors = palette()
	}
	return w
}

func (w *Writer) Log(level Level, msg string) {
	if level < w.min {
		return
	}
	w.write(level, CodeNone, msg)
}

// Abort writes the message and calls the exit function with ExitStatus. If
// that returns, Abort panics with *Aborted.
func (w *Writer) Abort(code Code, msg string) {
	w.write(LevelFatal, code, msg)
	w.exit(ExitStatus)
	panic(&Aborted{Code: code, Message: msg})
}

func (w *Writer) write(level Level, code Code, msg string) {
	tag := level.String()
	if code != CodeNone {
		tag += " " + code.String()
	}
	if c, ok := w.colors[level]; ok {
		tag = c.Sprint(tag)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stamp {
		fmt.Fprint(w.out, time.Now().Format("15:04:05.000 "))
	}
	if w.prefix != "" {
		fmt.Fprint(w.out, w.prefix, " ")
	}
	fmt.Fprintf(w.out, "%s: %s\n", tag, msg)
}

var (
	stderrOnce sync.Once
	stderr     *Writer
)

// Stderr returns the shared Writer on os.Stderr used by containers that
// were given no bridge.
func Stderr() *Writer {
	stderrOnce.Do(func() { stderr = NewWriter(os.Stderr) })
	return stderr
}
