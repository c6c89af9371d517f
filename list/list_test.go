package list

import (
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/internal/engine"
	"blop/policy"
)

func TestRemoveHeadLeavesSingleNode(t *testing.T) {
	l, err := New[string, policy.Checked](WithBridge(diag.NewRecorder(diag.LevelDebug)))
	require.NoError(t, err)
	a := mustPush(t, l.PushBack, "A")
	b := mustPush(t, l.PushBack, "B")

	v, err := l.Remove(a)
	require.NoError(t, err)
	require.Equal(t, "A", v)
	require.Equal(t, 1, l.Len())

	front, ok := l.Front()
	require.True(t, ok)
	back, ok := l.Back()
	require.True(t, ok)
	require.Equal(t, b, front)
	require.Equal(t, b, back)
	require.Equal(t, []string{"B"}, slices.Collect(l.Values()))
	require.NoError(t, l.Check())
}

func TestHandlesAreOwned(t *testing.T) {
	rec := diag.NewRecorder(diag.LevelDebug)
	l1, err := New[int, policy.Checked](WithBridge(rec), WithName("l1"))
	require.NoError(t, err)
	l2, err := New[int, policy.Checked](WithBridge(rec), WithName("l2"))
	require.NoError(t, err)

	h := mustPush(t, l1.PushBack, 1)
	l2.PushBack(1)

	_, err = l2.Remove(h)
	require.True(t, errors.Is(err, ErrForeignNode))
	require.Equal(t, 1, l2.Len())

	_, err = l1.Remove(h)
	require.NoError(t, err)
	// the slot is reused, but the old handle stays stale
	h2 := mustPush(t, l1.PushBack, 2)
	require.NotEqual(t, h, h2)
	_, err = l1.Get(h)
	require.True(t, errors.Is(err, ErrForeignNode))
	v, err := l1.Get(h2)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, err = l1.InsertAfter(Handle{}, 3)
	require.True(t, errors.Is(err, ErrForeignNode))
}

func TestStrictForeignHandleAborts(t *testing.T) {
	rec := diag.NewRecorder(diag.LevelDebug)
	l1, _ := New[int, policy.Strict](WithBridge(rec))
	l2, _ := New[int, policy.Strict](WithBridge(rec))
	h := mustPush(t, l1.PushBack, 1)
	ab := diag.Catch(func() { _ = l2.Set(h, 5) })
	require.NotNil(t, ab)
	require.Equal(t, diag.ListForeignNode, ab.Code)
	v, err := l1.Get(h)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestDoublyReversal(t *testing.T) {
	l, _ := New[int, policy.Checked]()
	for i := range 10 {
		l.PushBack(i)
	}
	var fwd, bwd []int
	for _, v := range l.All() {
		fwd = append(fwd, v)
	}
	for _, v := range l.Backward() {
		bwd = append(bwd, v)
	}
	slices.Reverse(bwd)
	require.Equal(t, fwd, bwd)
}

func TestWalkWithHandles(t *testing.T) {
	for _, mk := range []func() Ops[int]{
		func() Ops[int] { l, _ := New[int, policy.Checked](); return l },
		func() Ops[int] { l, _ := New[int, policy.Forward](); return l },
	} {
		l := mk()
		for i := range 5 {
			l.PushBack(i)
		}
		var got []int
		for h, ok := l.Front(); ok; h, ok = l.Next(h) {
			v, err := l.Get(h)
			require.NoError(t, err)
			got = append(got, v)
		}
		require.Equal(t, []int{0, 1, 2, 3, 4}, got)

		got = got[:0]
		for h, ok := l.Back(); ok; h, ok = l.Prev(h) {
			v, _ := l.Get(h)
			got = append(got, v)
		}
		require.Equal(t, []int{4, 3, 2, 1, 0}, got, l.Config().Key())
	}
}

func TestFindStopsEarly(t *testing.T) {
	l, _ := New[int, policy.Checked]()
	for i := range 100 {
		l.PushBack(i)
	}
	calls := 0
	h, ok := l.Find(func(v int) bool { calls++; return v == 3 })
	require.True(t, ok)
	require.Equal(t, 4, calls)
	v, _ := l.Get(h)
	require.Equal(t, 3, v)

	_, ok = l.Find(func(int) bool { return false })
	require.False(t, ok)
}

func TestRemoveDuringIteration(t *testing.T) {
	l, _ := New[int, policy.Checked]()
	for i := range 10 {
		l.PushBack(i)
	}
	for h, v := range l.All() {
		if v%2 == 0 {
			_, err := l.Remove(h)
			require.NoError(t, err)
		}
	}
	require.Equal(t, []int{1, 3, 5, 7, 9}, slices.Collect(l.Values()))
	require.NoError(t, l.Check())
}

func TestSplice(t *testing.T) {
	a, _ := New[string, policy.Checked]()
	b, _ := New[string, policy.Checked]()
	a.PushBack("a")
	h := mustPush(t, b.PushBack, "b")
	b.PushBack("c")

	require.NoError(t, a.Splice(b))
	require.Equal(t, []string{"a", "b", "c"}, slices.Collect(a.Values()))
	require.Zero(t, b.Len())
	_, err := b.Get(h)
	require.True(t, errors.Is(err, ErrForeignNode))
	require.Error(t, a.Splice(a))
	require.NoError(t, a.Check())
	require.NoError(t, b.Check())
}

func TestInvalidPolicy(t *testing.T) {
	_, err := New[int, growthOne]()
	require.True(t, errors.Is(err, policy.ErrInvalidPolicy))
	_, err = New[int, policy.Lenient](WithSentinel("x"))
	require.True(t, errors.Is(err, policy.ErrSentinelType))
}

type growthOne struct{ policy.Defaults }

func mustPush[T any](t *testing.T, push func(T) (Handle, error), v T) Handle {
	t.Helper()
	h, err := push(v)
	require.NoError(t, err)
	return h
}

func TestPushAfterClose(t *testing.T) {
	rec := diag.NewRecorder(diag.LevelDebug)
	l, err := New[int, policy.Checked](WithBridge(rec), WithName("ints"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	h, err := l.PushBack(7)
	require.True(t, errors.Is(err, ErrClosed))
	require.ErrorContains(t, err, "ints: pushBack after close")
	require.True(t, h.IsZero())
	_, err = l.PushFront(7)
	require.True(t, errors.Is(err, ErrClosed))
	require.Zero(t, l.Len())

	s, _ := New[int, policy.Strict](WithBridge(rec))
	require.NoError(t, s.Close())
	ab := diag.Catch(func() { _, _ = s.PushBack(1) })
	require.NotNil(t, ab)
	require.Equal(t, diag.ListClosed, ab.Code)
}

func TestArenaFull(t *testing.T) {
	for _, mk := range []func() Ops[int]{
		func() Ops[int] { l, _ := New[int, policy.Checked](WithMaxNodes(2), WithBridge(diag.Nop)); return l },
		func() Ops[int] { l, _ := New[int, policy.Strict](WithMaxNodes(2), WithBridge(diag.Nop)); return l },
		func() Ops[int] { l, _ := New[int, policy.Lenient](WithMaxNodes(2), WithBridge(diag.Nop)); return l },
	} {
		l := mk()
		h := mustPush(t, l.PushBack, 1)
		mustPush(t, l.PushBack, 2)

		// a full arena is an error outcome under every policy, never an abort
		var err error
		ab := diag.Catch(func() { _, err = l.PushFront(0) })
		require.Nil(t, ab)
		require.True(t, errors.Is(err, ErrCapacity), l.Config().Key())
		_, err = l.InsertAfter(h, 9)
		require.True(t, errors.Is(err, ErrCapacity))
		require.Equal(t, []int{1, 2}, slices.Collect(l.Values()))
		require.NoError(t, l.Check())

		// a freed slot is reused
		_, err = l.Remove(h)
		require.NoError(t, err)
		mustPush(t, l.PushBack, 3)
		require.Equal(t, []int{2, 3}, slices.Collect(l.Values()))
	}
}

func TestSpliceRespectsMaxNodes(t *testing.T) {
	a, _ := New[int, policy.Checked](WithMaxNodes(3), WithBridge(diag.Nop))
	b, _ := New[int, policy.Checked]()
	mustPush(t, a.PushBack, 1)
	mustPush(t, a.PushBack, 2)
	mustPush(t, b.PushBack, 3)
	mustPush(t, b.PushBack, 4)

	err := a.Splice(b)
	require.True(t, errors.Is(err, ErrCapacity))
	require.Equal(t, []int{1, 2}, slices.Collect(a.Values()))
	require.Equal(t, []int{3, 4}, slices.Collect(b.Values()))
}

func (growthOne) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
func (growthOne) EmptyPop() policy.EmptyPop { return policy.PopError }
func (growthOne) GrowthFactor() float64     { return 1 }

type fakeTicket struct{ live *int }

func (f fakeTicket) Release() { *f.live-- }

type fakeTracker struct {
	live  int
	sites []string
}

func (f *fakeTracker) Track(kind, name, site string) engine.Ticket {
	f.live++
	f.sites = append(f.sites, site)
	return fakeTicket{&f.live}
}

func TestTrackerRegistration(t *testing.T) {
	tr := &fakeTracker{}
	l, err := New[int, policy.Checked](WithTracker(tr))
	require.NoError(t, err)
	require.Equal(t, 1, tr.live)
	require.Regexp(t, `^list/list_test\.go:\d+$`, tr.sites[0])
	require.NoError(t, l.Close())
	require.Zero(t, tr.live)
}
