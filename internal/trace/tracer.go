package trace

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Tracer is the sink for trace events. Implementations are goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Mode determines where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write immediately
	ModeRing                   // keep the tail in memory
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, errors.Newf("invalid trace mode: %q (expected: stream|ring|both)", s)
	}
}

// DefaultRingSize is used when Config.RingSize is not positive.
const DefaultRingSize = 1024

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" for stderr
	RingSize   int
}

// New builds a Tracer from cfg. The returned ring is non-nil whenever the
// mode keeps one, so callers can dump it later.
func New(cfg Config) (Tracer, *RingTracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	if cfg.Format == FormatAuto {
		cfg.Format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			cfg.Format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeRing:
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return ring, ring, nil
	case ModeStream, ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, cfg.Format)
		if cfg.Mode == ModeStream {
			return stream, nil, nil
		}
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return NewMultiTracer(cfg.Level, stream, ring), ring, nil
	default:
		return nil, nil, errors.Newf("unknown trace mode %d", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, errors.Wrap(err, "open trace output")
	}
	return f, nil
}
