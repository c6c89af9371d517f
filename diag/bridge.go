package diag

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ExitStatus is the process exit code used by bridges that terminate.
const ExitStatus = 2

// Bridge receives diagnostics from containers.
//
// Abort must not return. Bridges that cannot end the process panic with an
// *Aborted instead; Fatal enforces this for bridges that return anyway.
type Bridge interface {
	Log(level Level, msg string)
	Abort(code Code, msg string)
}

// ErrAbortReturned is the panic value used when a Bridge.Abort returns.
var ErrAbortReturned = errors.New("diagnostics bridge returned from Abort")

// Fatal aborts through b and never returns.
func Fatal(b Bridge, code Code, msg string) {
	b.Abort(code, msg)
	panic(errors.WithDetailf(ErrAbortReturned, "%s: %s", code, msg))
}

// Fatalf formats msg and calls Fatal.
func Fatalf(b Bridge, code Code, format string, args ...any) {
	Fatal(b, code, fmt.Sprintf(format, args...))
}

// Logf formats msg and logs it through b.
func Logf(b Bridge, level Level, format string, args ...any) {
	b.Log(level, fmt.Sprintf(format, args...))
}

// Aborted is the panic value of bridges that turn aborts into panics.
type Aborted struct {
	Code    Code
	Message string
}

func (a *Aborted) Error() string {
	return fmt.Sprintf("aborted with %s: %s", a.Code, a.Message)
}

// Catch runs fn and returns the *Aborted it panicked with, or nil if fn
// returned normally. Other panics propagate.
func Catch(fn func()) (ab *Aborted) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(*Aborted)
			if !ok {
				panic(r)
			}
			ab = a
		}
	}()
	fn()
	return nil
}

type nopBridge struct{}

func (nopBridge) Log(Level, string) {}

func (nopBridge) Abort(code Code, msg string) {
	panic(&Aborted{Code: code, Message: msg})
}

// Nop drops log lines. Its Abort still panics with *Aborted.
var Nop Bridge = nopBridge{}
