package list

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

func newOps(t *testing.T, name string, opts ...Option) Ops[string] {
	var (
		l   Ops[string]
		err error
	)
	switch name {
	case "checked":
		l, err = New[string, policy.Checked](opts...)
	case "strict":
		l, err = New[string, policy.Strict](opts...)
	case "lenient":
		l, err = New[string, policy.Lenient](opts...)
	case "forward":
		l, err = New[string, policy.Forward](opts...)
	default:
		t.Fatalf("unknown policy %q", name)
	}
	require.NoError(t, err)
	return l
}

func contents(l Ops[string]) string {
	var vals []string
	for v := range l.Values() {
		vals = append(vals, v)
	}
	return "[" + strings.Join(vals, " ") + "]"
}

func find(l Ops[string], v string) Handle {
	h, _ := l.Find(func(s string) bool { return s == v })
	return h
}

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var (
			l   Ops[string]
			rec *diag.Recorder
		)
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			if d.Cmd == "new" {
				var pol string
				d.ScanArgs(t, "policy", &pol)
				rec = diag.NewRecorder(diag.LevelInfo)
				opts := []Option{WithBridge(rec)}
				if d.HasArg("sentinel") {
					var s string
					d.ScanArgs(t, "sentinel", &s)
					opts = append(opts, WithSentinel(s))
				}
				if d.HasArg("max") {
					var n int
					d.ScanArgs(t, "max", &n)
					opts = append(opts, WithMaxNodes(n))
				}
				l = newOps(t, pol, opts...)
				return l.Config().String()
			}
			rec.Bag().Reset()
			var out string
			ab := diag.Catch(func() { out = run(t, d, l) })
			var sb strings.Builder
			for _, w := range rec.Messages(diag.LevelWarning) {
				fmt.Fprintf(&sb, "warning: %s\n", w)
			}
			for _, w := range rec.Messages(diag.LevelError) {
				fmt.Fprintf(&sb, "error log: %s\n", w)
			}
			if ab != nil {
				fmt.Fprintf(&sb, "abort %s: %s\n", ab.Code, ab.Message)
			} else {
				sb.WriteString(out)
				sb.WriteByte('\n')
			}
			require.NoError(t, l.Check())
			return sb.String()
		})
	})
}

func result(v string, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return v
}

func run(t *testing.T, d *datadriven.TestData, l Ops[string]) string {
	arg := func(key string) string {
		var s string
		d.ScanArgs(t, key, &s)
		return s
	}
	switch d.Cmd {
	case "push-back", "push-front":
		for _, a := range d.CmdArgs {
			var err error
			if d.Cmd == "push-back" {
				_, err = l.PushBack(a.Key)
			} else {
				_, err = l.PushFront(a.Key)
			}
			if err != nil {
				return "error: " + err.Error()
			}
		}
		return contents(l)
	case "pop-front":
		return result(l.PopFront())
	case "pop-back":
		return result(l.PopBack())
	case "remove":
		return result(l.Remove(find(l, arg("v"))))
	case "remove-twice":
		h := find(l, arg("v"))
		if _, err := l.Remove(h); err != nil {
			return result("", err)
		}
		return result(l.Remove(h))
	case "insert-after", "insert-before":
		h := find(l, arg("at"))
		var err error
		if d.Cmd == "insert-after" {
			_, err = l.InsertAfter(h, arg("v"))
		} else {
			_, err = l.InsertBefore(h, arg("v"))
		}
		return result(contents(l), err)
	case "at":
		i, err := strconv.Atoi(arg("i"))
		require.NoError(t, err)
		return result(l.At(i))
	case "forward":
		return contents(l)
	case "backward":
		var vals []string
		for _, v := range l.Backward() {
			vals = append(vals, v)
		}
		return "[" + strings.Join(vals, " ") + "]"
	case "ends":
		f, _ := l.Front()
		b, _ := l.Back()
		fv, _ := l.Get(f)
		bv, _ := l.Get(b)
		return fmt.Sprintf("front=%s back=%s len=%d", fv, bv, l.Len())
	case "clear":
		l.Clear()
		return contents(l)
	case "close":
		return result("ok", l.Close())
	default:
		t.Fatalf("unknown command %q", d.Cmd)
		return ""
	}
}
