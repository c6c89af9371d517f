package vector

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/policy"
)

type shrinking struct{ policy.Defaults }

func (shrinking) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
func (shrinking) EmptyPop() policy.EmptyPop { return policy.PopError }
func (shrinking) Shrink() bool              { return true }

type halfAgain struct{ policy.Defaults }

func (halfAgain) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
func (halfAgain) EmptyPop() policy.EmptyPop { return policy.PopError }
func (halfAgain) GrowthFactor() float64     { return 1.5 }

func newOps(t *testing.T, name string, opts ...Option) Ops[int] {
	var (
		v   Ops[int]
		err error
	)
	switch name {
	case "checked":
		v, err = New[int, policy.Checked](opts...)
	case "strict":
		v, err = New[int, policy.Strict](opts...)
	case "lenient":
		v, err = New[int, policy.Lenient](opts...)
	case "shrinking":
		v, err = New[int, shrinking](opts...)
	case "half-again":
		v, err = New[int, halfAgain](opts...)
	default:
		t.Fatalf("unknown policy %q", name)
	}
	require.NoError(t, err)
	return v
}

func show(v Ops[int]) string {
	return fmt.Sprintf("%v len=%d cap=%d", v.Slice(), v.Len(), v.Cap())
}

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var (
			v   Ops[int]
			rec *diag.Recorder
		)
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			if d.Cmd == "new" {
				var pol string
				d.ScanArgs(t, "policy", &pol)
				rec = diag.NewRecorder(diag.LevelDebug)
				opts := []Option{WithBridge(rec)}
				var n int
				if d.MaybeScanArgs(t, "cap", &n) {
					opts = append(opts, WithCapacity(n))
				}
				if d.MaybeScanArgs(t, "max", &n) {
					opts = append(opts, WithMaxCapacity(n))
				}
				if d.MaybeScanArgs(t, "sentinel", &n) {
					opts = append(opts, WithSentinel(n))
				}
				v = newOps(t, pol, opts...)
				return v.Config().String()
			}
			rec.Bag().Reset()
			var out string
			ab := diag.Catch(func() { out = run(t, d, v) })
			var sb strings.Builder
			for _, it := range rec.Bag().Items() {
				switch it.Level {
				case diag.LevelFatal:
				case diag.LevelError:
					fmt.Fprintf(&sb, "error log: %s\n", it.Message)
				default:
					fmt.Fprintf(&sb, "%s: %s\n", strings.ToLower(it.Level.String()), it.Message)
				}
			}
			if ab != nil {
				fmt.Fprintf(&sb, "abort %s: %s\n", ab.Code, ab.Message)
			} else {
				sb.WriteString(out)
				sb.WriteByte('\n')
			}
			require.NoError(t, v.Check())
			return sb.String()
		})
	})
}

func result[T any](x T, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprint(x)
}

func run(t *testing.T, d *datadriven.TestData, v Ops[int]) string {
	after := func(err error) string {
		if err != nil {
			return "error: " + err.Error()
		}
		return show(v)
	}
	intArg := func(key string) int {
		var n int
		d.ScanArgs(t, key, &n)
		return n
	}
	switch d.Cmd {
	case "push":
		for _, a := range d.CmdArgs {
			x, err := strconv.Atoi(a.Key)
			require.NoError(t, err)
			if err := v.PushBack(x); err != nil {
				return result(0, err)
			}
		}
		return show(v)
	case "pop":
		return result(v.PopBack())
	case "insert":
		return after(v.InsertAt(intArg("i"), intArg("v")))
	case "remove":
		return result(v.RemoveAt(intArg("i")))
	case "get":
		return result(v.Get(intArg("i")))
	case "set":
		return after(v.Set(intArg("i"), intArg("v")))
	case "reserve":
		return after(v.Reserve(intArg("n")))
	case "resize":
		return after(v.Resize(intArg("n"), intArg("fill")))
	case "copy":
		var vals []int
		d.ScanArgs(t, "vals", &vals)
		return after(v.CopyIn(intArg("i"), vals))
	case "clear":
		v.Clear()
		return show(v)
	case "show":
		return show(v)
	case "close":
		return result("ok", v.Close())
	default:
		t.Fatalf("unknown command %q", d.Cmd)
		return ""
	}
}
