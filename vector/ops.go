package vector

import (
	"iter"

	"blop/policy"
)

// Ops is the method set shared by every *Vector[T, P] with element type T.
type Ops[T any] interface {
	Len() int
	Cap() int
	Name() string
	Config() policy.Config
	PushBack(x T) error
	PopBack() (T, error)
	InsertAt(i int, x T) error
	RemoveAt(i int) (T, error)
	Get(i int) (T, error)
	Set(i int, x T) error
	Reserve(n int) error
	Resize(n int, fill T) error
	CopyIn(i int, src []T) error
	Clear()
	All() iter.Seq2[int, T]
	Values() iter.Seq[T]
	Slice() []T
	Close() error
	Check() error
}

var _ Ops[int] = (*Vector[int, policy.Checked])(nil)
