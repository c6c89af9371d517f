package testkit

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	"github.com/gammazero/deque"

	"blop/list"
	"blop/policy"
	"blop/vector"
)

func contents(ref *deque.Deque[int]) []int {
	out := make([]int, ref.Len())
	for i := range out {
		out[i] = ref.At(i)
	}
	return out
}

// popCheck compares a pop result against the reference. Lists and vectors
// under PopError must report ErrEmpty on an empty container.
func popCheck(name string, cfg policy.Config, refEmpty bool, want, got int, err error) error {
	if refEmpty {
		if cfg.EmptyPop == policy.PopError && !errors.Is(err, policy.ErrEmpty) {
			return errors.Newf("%s: pop on empty returned %v", name, err)
		}
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "%s: pop", name)
	}
	if got != want {
		return errors.Newf("%s: popped %d, want %d", name, got, want)
	}
	return nil
}

// ReplayList applies steps random operations to l and to a reference deque,
// checking the full contents after every step. l must start empty and use a
// policy that does not abort on an empty pop.
func ReplayList(l list.Ops[int], rng *rand.Rand, steps int) error {
	var ref deque.Deque[int]
	cfg := l.Config()
	for step := range steps {
		empty := ref.Len() == 0
		switch op := rng.IntN(8); op {
		case 0, 1, 2:
			var err error
			if op == 2 {
				_, err = l.PushFront(step)
				ref.PushFront(step)
			} else {
				_, err = l.PushBack(step)
				ref.PushBack(step)
			}
			if err != nil {
				return errors.Wrapf(err, "step %d: push", step)
			}
		case 3:
			var want int
			if !empty {
				want = ref.PopFront()
			}
			got, err := l.PopFront()
			if err := popCheck(l.Name(), cfg, empty, want, got, err); err != nil {
				return errors.Wrapf(err, "step %d", step)
			}
		case 4:
			var want int
			if !empty {
				want = ref.PopBack()
			}
			got, err := l.PopBack()
			if err := popCheck(l.Name(), cfg, empty, want, got, err); err != nil {
				return errors.Wrapf(err, "step %d", step)
			}
		case 5, 6:
			if empty {
				continue
			}
			i := rng.IntN(ref.Len())
			h := nth(l, i)
			var err error
			if op == 5 {
				_, err = l.InsertAfter(h, step)
				ref.Insert(i+1, step)
			} else {
				_, err = l.InsertBefore(h, step)
				ref.Insert(i, step)
			}
			if err != nil {
				return errors.Wrapf(err, "step %d: insert", step)
			}
		case 7:
			if empty {
				continue
			}
			i := rng.IntN(ref.Len())
			got, err := l.Remove(nth(l, i))
			if err != nil {
				return errors.Wrapf(err, "step %d: remove", step)
			}
			if want := ref.Remove(i); got != want {
				return errors.Newf("step %d: removed %d, want %d", step, got, want)
			}
		}
		if err := CheckList[int](l, contents(&ref)); err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
	}
	return nil
}

func nth(l list.Ops[int], i int) list.Handle {
	h, _ := l.Front()
	for ; i > 0; i-- {
		h, _ = l.Next(h)
	}
	return h
}

// ReplayVector is ReplayList for vectors, covering the positional operations.
func ReplayVector(v vector.Ops[int], rng *rand.Rand, steps int) error {
	var ref deque.Deque[int]
	cfg := v.Config()
	for step := range steps {
		empty := ref.Len() == 0
		var err error
		switch op := rng.IntN(7); op {
		case 0, 1:
			err = v.PushBack(step)
			ref.PushBack(step)
		case 2:
			var want int
			if !empty {
				want = ref.PopBack()
			}
			got, perr := v.PopBack()
			err = popCheck(v.Name(), cfg, empty, want, got, perr)
		case 3:
			i := rng.IntN(ref.Len() + 1)
			err = v.InsertAt(i, step)
			ref.Insert(i, step)
		case 4:
			if empty {
				continue
			}
			i := rng.IntN(ref.Len())
			var got int
			if got, err = v.RemoveAt(i); err == nil {
				if want := ref.Remove(i); got != want {
					err = errors.Newf("removed %d, want %d", got, want)
				}
			}
		case 5:
			if empty {
				continue
			}
			i := rng.IntN(ref.Len())
			err = v.Set(i, -step)
			ref.Set(i, -step)
		case 6:
			err = v.Reserve(ref.Len() + rng.IntN(4))
		}
		if err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
		if err := CheckVector[int](v, contents(&ref)); err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
	}
	return nil
}
