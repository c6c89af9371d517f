package diag

import (
	"fmt"
	"time"
)

// Diagnostic is one message passed through a bridge.
type Diagnostic struct {
	Level   Level
	Code    Code // CodeNone for plain log lines
	Message string
	Time    time.Time
}

func (d Diagnostic) String() string {
	if d.Code != CodeNone {
		return fmt.Sprintf("%s %s: %s", d.Level, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}
