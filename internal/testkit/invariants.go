// Package testkit holds helpers shared by container tests.
package testkit

import (
	"slices"

	"github.com/cockroachdb/errors"

	"blop/list"
	"blop/policy"
	"blop/vector"
)

// CheckList verifies that l holds exactly want, front to back, through every
// read path: forward and backward iteration, At and the handle walk.
func CheckList[T comparable](l list.Ops[T], want []T) error {
	if err := l.Check(); err != nil {
		return err
	}
	if l.Len() != len(want) {
		return errors.Newf("%s: length %d, want %d", l.Name(), l.Len(), len(want))
	}
	if got := slices.Collect(l.Values()); !slices.Equal(got, want) {
		return errors.Newf("%s: forward %v, want %v", l.Name(), got, want)
	}
	if l.Config().Linkage == policy.Doubly {
		var back []T
		for _, v := range l.Backward() {
			back = append(back, v)
		}
		slices.Reverse(back)
		if !slices.Equal(back, want) {
			return errors.Newf("%s: backward %v, want reversed %v", l.Name(), back, want)
		}
	}
	i := 0
	for h, ok := l.Front(); ok; h, ok = l.Next(h) {
		v, err := l.Get(h)
		if err != nil {
			return errors.Wrapf(err, "%s: handle %d", l.Name(), i)
		}
		if i >= len(want) || v != want[i] {
			return errors.Newf("%s: handle walk diverges at %d", l.Name(), i)
		}
		i++
	}
	for i, w := range want {
		v, err := l.At(i)
		if err != nil {
			return errors.Wrapf(err, "%s: At(%d)", l.Name(), i)
		}
		if v != w {
			return errors.Newf("%s: At(%d) = %v, want %v", l.Name(), i, v, w)
		}
	}
	return nil
}

// CheckVector verifies that v holds exactly want.
func CheckVector[T comparable](v vector.Ops[T], want []T) error {
	if err := v.Check(); err != nil {
		return err
	}
	if v.Len() != len(want) || v.Cap() < v.Len() {
		return errors.Newf("%s: len %d cap %d, want len %d", v.Name(), v.Len(), v.Cap(), len(want))
	}
	if got := v.Slice(); !slices.Equal(got, want) {
		return errors.Newf("%s: contents %v, want %v", v.Name(), got, want)
	}
	for i, w := range want {
		x, err := v.Get(i)
		if err != nil {
			return errors.Wrapf(err, "%s: Get(%d)", v.Name(), i)
		}
		if x != w {
			return errors.Newf("%s: Get(%d) = %v, want %v", v.Name(), i, x, w)
		}
	}
	return nil
}
