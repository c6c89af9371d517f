package gen

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/internal/engine"
	"blop/list"
	"blop/policy"
	"blop/vector"
)

type point struct{ X, Y int }

type alsoChecked struct{ policy.Defaults }

func (alsoChecked) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
func (alsoChecked) EmptyPop() policy.EmptyPop { return policy.PopError }

type zeroGrowth struct{ policy.Defaults }

func (zeroGrowth) Bounds() policy.Bounds     { return policy.BoundsDisabled }
func (zeroGrowth) EmptyPop() policy.EmptyPop { return policy.PopSentinel }
func (zeroGrowth) GrowthFactor() float64     { return 0 }

func TestInstantiateIsIdempotent(t *testing.T) {
	r := NewRegistry()
	var sites []string
	for range 3 {
		k, err := In[int, policy.Checked](r)
		require.NoError(t, err)
		sites = append(sites, k.Key().String())
	}
	_, err := In[int, policy.Checked](r)
	require.NoError(t, err)
	_, err = In[int, alsoChecked](r)
	require.NoError(t, err)

	require.Equal(t, 1, r.Len())
	e, ok := r.Lookup(Key{Elem: "int", Policy: "checked-result/error/doubly/2"})
	require.True(t, ok)
	// the loop is one use site, the two later calls add two more
	require.Len(t, e.UseSites, 3)
	require.Equal(t, []string{"blop/policy.Checked", "blop/gen.alsoChecked"}, e.Policies)
	require.Regexp(t, `^gen/gen_test\.go:\d+$`, e.UseSites[0].Site)
}

func TestDistinctElementTypesAreSeparate(t *testing.T) {
	r := NewRegistry()
	ints, err := In[int, policy.Checked](r)
	require.NoError(t, err)
	points, err := In[point, policy.Checked](r)
	require.NoError(t, err)

	require.Equal(t, 2, r.Len())
	entries := r.Entries()
	require.Equal(t, "blop/gen.point", entries[0].Key.Elem)
	require.Equal(t, "int", entries[1].Key.Elem)

	li, err := ints.NewList()
	require.NoError(t, err)
	lp, err := points.NewList()
	require.NoError(t, err)
	li.PushBack(1)
	lp.PushBack(point{1, 2})
	lp.PushBack(point{3, 4})
	require.Equal(t, 1, li.Len())
	require.Equal(t, 2, lp.Len())

	// two containers from one kit share nothing either
	a, _ := ints.NewVector()
	b, _ := ints.NewVector()
	require.NoError(t, a.PushBack(1))
	require.Zero(t, b.Len())
}

func TestKitDefaults(t *testing.T) {
	rec := diag.NewRecorder(diag.LevelDebug)
	k, err := In[string, policy.Lenient](NewRegistry(), list.WithBridge(rec), list.WithSentinel("<empty>"))
	require.NoError(t, err)

	l, err := k.NewList(list.WithName("names"))
	require.NoError(t, err)
	v, err := l.PopFront()
	require.NoError(t, err)
	require.Equal(t, "<empty>", v)
	require.Equal(t, []string{"names: popFront on empty list, returning sentinel"}, rec.Messages(diag.LevelWarning))

	vec, err := k.NewVector(vector.WithSentinel("none"))
	require.NoError(t, err)
	x, err := vec.PopBack()
	require.NoError(t, err)
	require.Equal(t, "none", x)
}

func TestInstantiateRejects(t *testing.T) {
	r := NewRegistry()
	_, err := In[int, zeroGrowth](r)
	require.True(t, errors.Is(err, policy.ErrInvalidPolicy))
	_, err = In[int, policy.Checked](r, list.WithSentinel("x"))
	require.True(t, errors.Is(err, policy.ErrSentinelType))
	require.Zero(t, r.Len())
}

type siteTracker struct{ sites []string }

type nopTicket struct{}

func (nopTicket) Release() {}

func (s *siteTracker) Track(_, _, site string) engine.Ticket {
	s.sites = append(s.sites, site)
	return nopTicket{}
}

func TestKitRecordsCallerSite(t *testing.T) {
	tr := &siteTracker{}
	k, err := In[int, policy.Checked](NewRegistry(), list.WithTracker(tr))
	require.NoError(t, err)
	_, err = k.NewList()
	require.NoError(t, err)
	_, err = k.NewVector()
	require.NoError(t, err)
	require.Len(t, tr.sites, 2)
	for _, s := range tr.sites {
		require.Regexp(t, `^gen/gen_test\.go:\d+$`, s)
	}
}

func TestConcurrentInstantiation(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = In[int, policy.Strict](r)
			} else {
				_, err = In[string, policy.Strict](r)
			}
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 2, r.Len())
	for _, e := range r.Entries() {
		require.Len(t, e.UseSites, 1)
	}
}
