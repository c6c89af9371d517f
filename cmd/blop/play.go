package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"blop/diag"
	"blop/list"
	"blop/policy"
	"blop/pool"
	"blop/vector"
)

var playCmd = &cobra.Command{
	Use:   "play [ops...]",
	Short: "Run container operations under a policy and print each outcome",
	Long: `Play builds one container of ints and applies ops in order, printing the
outcome of each. Ops take the form name[:arg[=value]], for example push:3,
insert:1=9, pop or show.

list ops:   push[-back]:v push-front:v pop[-back] pop-front at:i set:i=v
            insert:i=v remove:i find:v reverse clear show close
vector ops: push:v pop insert:i=v remove:i get:i set:i=v reserve:n
            resize:n[=fill] clear show close`,
	Example: "  blop play --policy strict push:1 pop pop\n  blop play --kind vector --policy checked --cap 2 push:1 push:2 push:3 get:5",
	RunE:    runPlay,
}

func init() {
	playCmd.Flags().String("policy", "checked", "container policy (checked|strict|lenient|forward)")
	playCmd.Flags().String("kind", "list", "container kind (list|vector)")
	playCmd.Flags().Int("sentinel", 0, "value returned by sentinel pops")
	playCmd.Flags().Int("cap", 0, "initial vector capacity")
	playCmd.Flags().Int("max", 0, "maximum vector capacity or list nodes (0 = unbounded)")
	playCmd.Flags().Bool("keep-going", false, "report aborts and continue instead of exiting")
	playCmd.Flags().Bool("leak", false, "skip the final close and report live containers")
}

var (
	opStyle    = lipgloss.NewStyle().Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	abortStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

type playOp struct {
	text string
	name string
	args []int
}

func parseOp(s string) (playOp, error) {
	op := playOp{text: s}
	name, arg, found := strings.Cut(s, ":")
	op.name = strings.ToLower(name)
	if !found {
		return op, nil
	}
	for _, part := range strings.Split(arg, "=") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return op, errors.Newf("op %q: %q is not an integer", s, part)
		}
		op.args = append(op.args, n)
	}
	return op, nil
}

func (o playOp) arg(i int) (int, error) {
	if i >= len(o.args) {
		return 0, errors.Newf("op %q needs %d argument(s)", o.text, i+1)
	}
	return o.args[i], nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	policyName, _ := flags.GetString("policy")
	kind, _ := flags.GetString("kind")
	capacity, _ := flags.GetInt("cap")
	maxCap, _ := flags.GetInt("max")
	keepGoing, _ := flags.GetBool("keep-going")
	leak, _ := flags.GetBool("leak")

	ops := make([]playOp, 0, len(args))
	for _, a := range args {
		op, err := parseOp(a)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	bridge := sess.bridge
	if keepGoing {
		// Aborts land in the recorder, which panics *Aborted for diag.Catch.
		bridge = diag.NewMulti(diag.NewRecorder(diag.LevelFatal), sess.bridge)
	}
	tracker := pool.New("play", pool.WithBridge(sess.bridge))
	common := []list.Option{
		list.WithBridge(bridge),
		list.WithTracker(tracker),
		list.WithName("play"),
	}
	if flags.Changed("sentinel") {
		s, _ := flags.GetInt("sentinel")
		common = append(common, list.WithSentinel(s))
	}

	out := cmd.OutOrStdout()
	var (
		apply   func(playOp) (string, error)
		closeFn func() error
	)
	switch kind {
	case "list":
		l, err := newPlayList(policyName, append(common, list.WithMaxNodes(maxCap)))
		if err != nil {
			return err
		}
		apply = func(op playOp) (string, error) { return applyListOp(l, op) }
		closeFn = l.Close
	case "vector":
		opts := append(common, vector.WithCapacity(capacity), vector.WithMaxCapacity(maxCap))
		v, err := newPlayVector(policyName, opts)
		if err != nil {
			return err
		}
		apply = func(op playOp) (string, error) { return applyVectorOp(v, op) }
		closeFn = v.Close
	default:
		return errors.Newf("invalid --kind %q (expected list|vector)", kind)
	}

	width := 0
	for _, op := range ops {
		width = max(width, len(op.text))
	}
	closed := false
	for _, op := range ops {
		var (
			res string
			err error
		)
		ab := diag.Catch(func() { res, err = unguarded(apply, op) })
		printOutcome(out, op.text, width, res, err, ab)
		if op.name == "close" && ab == nil && err == nil {
			closed = true
		}
	}

	if leak {
		return tracker.Report(out)
	}
	if !closed {
		if err := closeFn(); err != nil {
			return err
		}
	}
	return tracker.Close()
}

// unguarded turns runtime panics from unchecked policies into errors. Aborts
// pass through to diag.Catch.
func unguarded(apply func(playOp) (string, error), op playOp) (res string, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(*diag.Aborted); ok {
			panic(r)
		}
		err = errors.Newf("unchecked access: %v", r)
	}()
	return apply(op)
}

func printOutcome(out io.Writer, op string, width int, res string, err error, ab *diag.Aborted) {
	label := opStyle.Render(fmt.Sprintf("%-*s", width, op))
	switch {
	case ab != nil:
		fmt.Fprintf(out, "%s  %s\n", label, abortStyle.Render(fmt.Sprintf("abort %s: %s", ab.Code, ab.Message)))
	case err != nil:
		fmt.Fprintf(out, "%s  %s\n", label, errStyle.Render("error: "+err.Error()))
	case res == "":
		fmt.Fprintf(out, "%s  %s\n", label, okStyle.Render("ok"))
	default:
		fmt.Fprintf(out, "%s  %s\n", label, valueStyle.Render(res))
	}
}

func newPlayList(name string, opts []list.Option) (list.Ops[int], error) {
	switch strings.ToLower(name) {
	case "checked":
		return list.New[int, policy.Checked](opts...)
	case "strict":
		return list.New[int, policy.Strict](opts...)
	case "lenient":
		return list.New[int, policy.Lenient](opts...)
	case "forward":
		return list.New[int, policy.Forward](opts...)
	}
	return nil, errors.Newf("invalid --policy %q (expected checked|strict|lenient|forward)", name)
}

func newPlayVector(name string, opts []vector.Option) (vector.Ops[int], error) {
	switch strings.ToLower(name) {
	case "checked", "forward":
		return vector.New[int, policy.Checked](opts...)
	case "strict":
		return vector.New[int, policy.Strict](opts...)
	case "lenient":
		return vector.New[int, policy.Lenient](opts...)
	}
	return nil, errors.Newf("invalid --policy %q (expected checked|strict|lenient|forward)", name)
}

// nth walks to the handle at position i, or the zero handle past the end.
func nth(l list.Ops[int], i int) list.Handle {
	if i < 0 {
		return list.Handle{}
	}
	h, ok := l.Front()
	for ; ok && i > 0; i-- {
		h, ok = l.Next(h)
	}
	if !ok {
		return list.Handle{}
	}
	return h
}

func applyListOp(l list.Ops[int], op playOp) (string, error) {
	switch op.name {
	case "push", "push-back", "push-front":
		v, err := op.arg(0)
		if err != nil {
			return "", err
		}
		var h list.Handle
		if op.name == "push-front" {
			h, err = l.PushFront(v)
		} else {
			h, err = l.PushBack(v)
		}
		if err != nil {
			return "", err
		}
		return h.String(), nil
	case "pop", "pop-back", "pop-front":
		var (
			v   int
			err error
		)
		if op.name == "pop-front" {
			v, err = l.PopFront()
		} else {
			v, err = l.PopBack()
		}
		return strconv.Itoa(v), err
	case "at", "get":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		v, err := l.At(i)
		return strconv.Itoa(v), err
	case "set":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		v, err := op.arg(1)
		if err != nil {
			return "", err
		}
		return "", l.Set(nth(l, i), v)
	case "insert":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		v, err := op.arg(1)
		if err != nil {
			return "", err
		}
		var h list.Handle
		if i == l.Len() {
			h, err = l.PushBack(v)
		} else {
			h, err = l.InsertBefore(nth(l, i), v)
		}
		if err != nil {
			return "", err
		}
		return h.String(), nil
	case "remove":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		v, err := l.Remove(nth(l, i))
		return strconv.Itoa(v), err
	case "find":
		v, err := op.arg(0)
		if err != nil {
			return "", err
		}
		h, ok := l.Find(func(x int) bool { return x == v })
		if !ok {
			return "not found", nil
		}
		return h.String(), nil
	case "reverse":
		var vals []int
		for _, v := range l.Backward() {
			vals = append(vals, v)
		}
		return fmt.Sprint(vals), nil
	case "clear":
		l.Clear()
		return "", nil
	case "show":
		return fmt.Sprintf("%v len=%d", slices.Collect(l.Values()), l.Len()), nil
	case "close":
		return "", l.Close()
	}
	return "", errors.Newf("unknown list op %q", op.name)
}

func applyVectorOp(v vector.Ops[int], op playOp) (string, error) {
	switch op.name {
	case "push", "push-back":
		x, err := op.arg(0)
		if err != nil {
			return "", err
		}
		return "", v.PushBack(x)
	case "pop", "pop-back":
		x, err := v.PopBack()
		return strconv.Itoa(x), err
	case "get", "at":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		x, err := v.Get(i)
		return strconv.Itoa(x), err
	case "set", "insert":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		x, err := op.arg(1)
		if err != nil {
			return "", err
		}
		if op.name == "set" {
			return "", v.Set(i, x)
		}
		return "", v.InsertAt(i, x)
	case "remove":
		i, err := op.arg(0)
		if err != nil {
			return "", err
		}
		x, err := v.RemoveAt(i)
		return strconv.Itoa(x), err
	case "reserve":
		n, err := op.arg(0)
		if err != nil {
			return "", err
		}
		return "", v.Reserve(n)
	case "resize":
		n, err := op.arg(0)
		if err != nil {
			return "", err
		}
		fill := 0
		if len(op.args) > 1 {
			fill = op.args[1]
		}
		return "", v.Resize(n, fill)
	case "clear":
		v.Clear()
		return "", nil
	case "show":
		return fmt.Sprintf("%v len=%d cap=%d", v.Slice(), v.Len(), v.Cap()), nil
	case "close":
		return "", v.Close()
	}
	return "", errors.Newf("unknown vector op %q", op.name)
}
