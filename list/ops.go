package list

import (
	"iter"

	"blop/policy"
)

// Ops is the method set shared by every *List[T, P] with element type T. It
// lets callers hold lists of different policies behind one type.
type Ops[T any] interface {
	Len() int
	Name() string
	Config() policy.Config
	PushFront(v T) (Handle, error)
	PushBack(v T) (Handle, error)
	PopFront() (T, error)
	PopBack() (T, error)
	InsertAfter(h Handle, v T) (Handle, error)
	InsertBefore(h Handle, v T) (Handle, error)
	Remove(h Handle) (T, error)
	Get(h Handle) (T, error)
	Set(h Handle, v T) error
	At(i int) (T, error)
	Front() (Handle, bool)
	Back() (Handle, bool)
	Next(h Handle) (Handle, bool)
	Prev(h Handle) (Handle, bool)
	Find(pred func(T) bool) (Handle, bool)
	All() iter.Seq2[Handle, T]
	Backward() iter.Seq2[Handle, T]
	Values() iter.Seq[T]
	Clear()
	Close() error
	Check() error
}

var (
	_ Ops[int] = (*List[int, policy.Checked])(nil)
	_ Ops[int] = (*List[int, policy.Forward])(nil)
)
