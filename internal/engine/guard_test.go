package engine

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/policy"
)

type ticket struct{ released *int }

func (t ticket) Release() { *t.released++ }

type tracker struct {
	sites    []string
	released int
}

func (t *tracker) Track(kind, name, site string) Ticket {
	t.sites = append(t.sites, kind+" "+name+" "+site)
	return ticket{&t.released}
}

func TestNewGuardSettings(t *testing.T) {
	tr := &tracker{}
	s := Apply([]Option{WithName("base")}, []Option{WithName("ints"), WithSentinel(-1), WithTracker(tr), WithSite("main.go:7")})
	g, err := NewGuard[int](KindList, policy.Of[policy.Lenient](), s, Site(0))
	require.NoError(t, err)
	require.Equal(t, "ints", g.Name)
	require.Equal(t, -1, g.Sentinel)
	require.Equal(t, []string{"list ints main.go:7"}, tr.sites)

	require.True(t, g.Close())
	require.False(t, g.Close())
	require.Equal(t, 1, tr.released)

	_, err = NewGuard[int](KindList, policy.Of[policy.Lenient](), Apply(nil, []Option{WithSentinel("x")}), "")
	require.True(t, errors.Is(err, policy.ErrSentinelType))

	_, err = NewGuard[int](KindVector, policy.Of[policy.Lenient](), Apply(nil, []Option{WithCapacity(8), WithMaxCapacity(4)}), "")
	require.True(t, errors.Is(err, policy.ErrCapacity))
}

func TestGuardOutcomes(t *testing.T) {
	rec := diag.NewRecorder(diag.LevelDebug)
	s := Settings{Bridge: rec, Name: "v"}

	checked, err := NewGuard[int](KindVector, policy.Of[policy.Checked](), s, "")
	require.NoError(t, err)
	_, err = checked.EmptyPop("pop")
	require.True(t, errors.Is(err, policy.ErrEmpty))
	err = checked.OutOfRange("get", 5, 2)
	require.True(t, errors.Is(err, policy.ErrIndexOutOfRange))
	require.Contains(t, err.Error(), "index 5 out of range [0, 2)")
	require.NoError(t, checked.Closed("get"))
	checked.Close()
	require.True(t, errors.Is(checked.Closed("get"), policy.ErrClosed))

	strict, err := NewGuard[int](KindVector, policy.Of[policy.Strict](), s, "")
	require.NoError(t, err)
	ab := diag.Catch(func() { _, _ = strict.EmptyPop("pop") })
	require.Equal(t, diag.VecEmptyPop, ab.Code)
	ab = diag.Catch(func() { _ = strict.OutOfRange("set", 3, 3) })
	require.Equal(t, diag.VecIndexOutOfRange, ab.Code)

	lenient, err := NewGuard[int](KindList, policy.Of[policy.Lenient](), s, "")
	require.NoError(t, err)
	v, err := lenient.EmptyPop("popFront")
	require.NoError(t, err)
	require.Zero(t, v)
	require.Equal(t, []string{"v: popFront on empty list, returning sentinel"}, rec.Messages(diag.LevelWarning))
	lenient.Close()
	require.NoError(t, lenient.Closed("pushBack"))
}

func TestSite(t *testing.T) {
	require.Regexp(t, `^engine/guard_test\.go:\d+$`, Site(0))
}
