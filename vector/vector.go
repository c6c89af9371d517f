// Package vector implements a growable array whose bounds checking, empty
// pop behaviour and growth factor are fixed by a policy type parameter.
//
//	v, _ := vector.New[int, policy.Checked](vector.WithCapacity(2))
//	v.PushBack(1)
//	v.PushBack(2)
//	v.PushBack(3)   // grows 2 -> 4
//
// Growth multiplies the capacity by the policy's GrowthFactor, rounding up
// and adding at least one slot. A failed growth returns ErrCapacity and
// leaves the vector as it was. Vectors are not safe for concurrent use.
package vector

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"

	"blop/internal/engine"
	"blop/policy"
)

// Vector is a contiguous sequence of T governed by policy P.
type Vector[T any, P policy.Policy] struct {
	guard   *engine.Guard[T]
	data    []T // len is the vector length, cap its capacity
	initial int
	max     int
}

// New creates an empty vector with the configured initial capacity.
func New[T any, P policy.Policy](opts ...Option) (*Vector[T, P], error) {
	s := engine.Apply(nil, opts)
	g, err := engine.NewGuard[T](engine.KindVector, policy.Of[P](), s, engine.Site(1))
	if err != nil {
		return nil, err
	}
	v := &Vector[T, P]{guard: g, initial: s.Capacity, max: s.MaxCapacity}
	if s.Capacity > 0 {
		if v.data, err = allocate[T](0, s.Capacity); err != nil {
			return nil, g.Capacity(err, "initial capacity %d", s.Capacity)
		}
	}
	return v, nil
}

func (v *Vector[T, P]) Len() int              { return len(v.data) }
func (v *Vector[T, P]) Cap() int              { return cap(v.data) }
func (v *Vector[T, P]) Name() string          { return v.guard.Name }
func (v *Vector[T, P]) Config() policy.Config { return v.guard.Config }

// realloc moves the elements into a buffer of capacity c.
func (v *Vector[T, P]) realloc(c int) error {
	buf, err := allocate[T](len(v.data), c)
	if err != nil {
		return v.guard.Capacity(err, "cannot allocate capacity %d", c)
	}
	copy(buf, v.data)
	v.data = buf
	return nil
}

// ensure makes room for need elements, growing by the policy factor.
func (v *Vector[T, P]) ensure(need int) error {
	cur := cap(v.data)
	if need <= cur {
		return nil
	}
	c := cur
	for c < need {
		next, err := nextCap(c, v.guard.Config.GrowthFactor)
		if err != nil {
			return v.guard.Capacity(err, "growing past %d", c)
		}
		c = next
	}
	if v.max > 0 && c > v.max {
		if need > v.max {
			return v.guard.Capacity(nil, "need %d exceeds max capacity %d", need, v.max)
		}
		c = v.max
	}
	if err := v.realloc(c); err != nil {
		return err
	}
	v.guard.Debugf("grow %d -> %d", cur, c)
	return nil
}

func (v *Vector[T, P]) maybeShrink() {
	if !v.guard.Config.Shrink {
		return
	}
	cur := cap(v.data)
	c := shrinkCap(cur, len(v.data), v.initial, v.guard.Config.GrowthFactor)
	if c == cur {
		return
	}
	// a failed shrink keeps the larger buffer
	if v.realloc(c) == nil {
		v.guard.Debugf("shrink %d -> %d", cur, c)
	}
}

func (v *Vector[T, P]) index(op string, i, n int) error {
	if v.guard.Checked() && (i < 0 || i >= n) {
		return v.guard.OutOfRange(op, i, n)
	}
	return nil
}

// PushBack appends x, growing when full.
func (v *Vector[T, P]) PushBack(x T) error {
	if err := v.guard.Closed("pushBack"); err != nil {
		return err
	}
	if err := v.ensure(len(v.data) + 1); err != nil {
		return err
	}
	v.data = append(v.data, x)
	return nil
}

// PopBack removes and returns the last element. An empty vector follows the
// policy's EmptyPop and is left unchanged.
func (v *Vector[T, P]) PopBack() (T, error) {
	var zero T
	if err := v.guard.Closed("popBack"); err != nil {
		return zero, err
	}
	n := len(v.data)
	if n == 0 {
		return v.guard.EmptyPop("popBack")
	}
	x := v.data[n-1]
	v.data[n-1] = zero
	v.data = v.data[:n-1]
	v.maybeShrink()
	return x, nil
}

// InsertAt inserts x at i in [0, Len()], shifting the tail right.
func (v *Vector[T, P]) InsertAt(i int, x T) error {
	if err := v.guard.Closed("insertAt"); err != nil {
		return err
	}
	if err := v.index("insertAt", i, len(v.data)+1); err != nil {
		return err
	}
	if err := v.ensure(len(v.data) + 1); err != nil {
		return err
	}
	v.data = slices.Insert(v.data, i, x)
	return nil
}

// RemoveAt removes and returns the element at i, shifting the tail left.
func (v *Vector[T, P]) RemoveAt(i int) (T, error) {
	var zero T
	if err := v.guard.Closed("removeAt"); err != nil {
		return zero, err
	}
	if err := v.index("removeAt", i, len(v.data)); err != nil {
		return zero, err
	}
	x := v.data[i]
	v.data = slices.Delete(v.data, i, i+1)
	v.maybeShrink()
	return x, nil
}

// Get returns the element at i.
func (v *Vector[T, P]) Get(i int) (T, error) {
	var zero T
	if err := v.guard.Closed("get"); err != nil {
		return zero, err
	}
	if err := v.index("get", i, len(v.data)); err != nil {
		return zero, err
	}
	return v.data[i], nil
}

// Set replaces the element at i.
func (v *Vector[T, P]) Set(i int, x T) error {
	if err := v.guard.Closed("set"); err != nil {
		return err
	}
	if err := v.index("set", i, len(v.data)); err != nil {
		return err
	}
	v.data[i] = x
	return nil
}

// Reserve makes the capacity at least n without changing the length.
func (v *Vector[T, P]) Reserve(n int) error {
	if err := v.guard.Closed("reserve"); err != nil {
		return err
	}
	if n <= cap(v.data) {
		return nil
	}
	if v.max > 0 && n > v.max {
		return v.guard.Capacity(nil, "reserve %d exceeds max capacity %d", n, v.max)
	}
	cur := cap(v.data)
	if err := v.realloc(n); err != nil {
		return err
	}
	v.guard.Debugf("reserve %d -> %d", cur, n)
	return nil
}

// Resize sets the length to n, filling new slots with fill.
func (v *Vector[T, P]) Resize(n int, fill T) error {
	if err := v.guard.Closed("resize"); err != nil {
		return err
	}
	if n < 0 {
		return errors.Mark(errors.Newf("%s: resize to %d", v.guard.Name, n), policy.ErrIndexOutOfRange)
	}
	old := len(v.data)
	if n <= old {
		clear(v.data[n:])
		v.data = v.data[:n]
		v.maybeShrink()
		return nil
	}
	if err := v.ensure(n); err != nil {
		return err
	}
	v.data = v.data[:n]
	for i := old; i < n; i++ {
		v.data[i] = fill
	}
	return nil
}

// CopyIn writes src starting at i in [0, Len()], extending the vector when
// src runs past the end.
func (v *Vector[T, P]) CopyIn(i int, src []T) error {
	if err := v.guard.Closed("copyIn"); err != nil {
		return err
	}
	if err := v.index("copyIn", i, len(v.data)+1); err != nil {
		return err
	}
	end := i + len(src)
	if end > len(v.data) {
		if err := v.ensure(end); err != nil {
			return err
		}
		v.data = v.data[:end]
	}
	copy(v.data[i:], src)
	return nil
}

// Clear drops every element and keeps the buffer.
func (v *Vector[T, P]) Clear() {
	clear(v.data)
	v.data = v.data[:0]
	v.maybeShrink()
}

// All yields indexes and elements in order.
func (v *Vector[T, P]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < len(v.data); i++ {
			if !yield(i, v.data[i]) {
				return
			}
		}
	}
}

// Values yields elements in order.
func (v *Vector[T, P]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(v.data); i++ {
			if !yield(v.data[i]) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements.
func (v *Vector[T, P]) Slice() []T { return slices.Clone(v.data) }

// Close releases the buffer and the tracker registration.
func (v *Vector[T, P]) Close() error {
	if !v.guard.Close() {
		return v.guard.Closed("close")
	}
	v.data = nil
	return nil
}

// Check verifies the capacity invariants.
func (v *Vector[T, P]) Check() error {
	if v.max > 0 && cap(v.data) > v.max {
		return errors.AssertionFailedf("%s: capacity %d above max %d", v.guard.Name, cap(v.data), v.max)
	}
	if !v.guard.IsClosed() && cap(v.data) < v.initial {
		return errors.AssertionFailedf("%s: capacity %d below initial %d", v.guard.Name, cap(v.data), v.initial)
	}
	return nil
}
