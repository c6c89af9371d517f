package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command
	ScopePhase                    // load / render / write
	ScopeUnit                     // one generated file or one container
	ScopeOp                       // one container operation
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopePhase:
		return "phase"
	case ScopeUnit:
		return "unit"
	case ScopeOp:
		return "op"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string
	Detail   string
	Extra    map[string]string
}

// Point builds an instant event.
func Point(scope Scope, name, detail string) Event {
	return Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, Detail: detail}
}
