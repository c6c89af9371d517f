// Package list implements a linked list whose behaviour is fixed by a policy
// type parameter.
//
// Nodes live in an arena owned by the list and are addressed by Handle
// values. A handle names its list and carries a generation number, so a
// handle from another list, or one whose node was removed, is detected under
// any checked bounds policy.
//
//	l, _ := list.New[string, policy.Checked]()
//	a, _ := l.PushBack("a")
//	l.PushBack("b")
//	l.Remove(a)
//	for _, v := range l.All() { ... } // "b"
//
// Lists are not safe for concurrent use.
package list

import (
	"fmt"
	"iter"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"blop/internal/engine"
	"blop/policy"
)

const none int32 = -1

// owner gives every list a unique address. It is not zero-size, since
// pointers to distinct zero-size values may compare equal.
type owner struct{ _ byte }

// Handle refers to one node of one list. The zero Handle refers to nothing.
type Handle struct {
	owner *owner
	index int32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.owner == nil }

func (h Handle) String() string {
	if h.IsZero() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

type node[T any] struct {
	value T
	next  int32
	prev  int32 // maintained for Doubly only
	gen   uint32
	live  bool
}

// List is a linked list of T governed by policy P.
type List[T any, P policy.Policy] struct {
	guard  *engine.Guard[T]
	id     *owner
	doubly bool
	nodes  []node[T]
	free   int32
	head   int32
	tail   int32
	n      int
	max    int // 0 means limited only by int32 indices
}

// New creates an empty list. It fails only when P reports invalid values or
// an option does not fit T.
func New[T any, P policy.Policy](opts ...Option) (*List[T, P], error) {
	s := engine.Apply(nil, opts)
	g, err := engine.NewGuard[T](engine.KindList, policy.Of[P](), s, engine.Site(1))
	if err != nil {
		return nil, err
	}
	l := &List[T, P]{
		guard:  g,
		id:     &owner{},
		doubly: g.Config.Linkage == policy.Doubly,
		free:   none,
		head:   none,
		tail:   none,
		max:    s.MaxCapacity,
	}
	if s.Capacity > 0 {
		l.nodes = make([]node[T], 0, s.Capacity)
	}
	return l, nil
}

// Len returns the number of values.
func (l *List[T, P]) Len() int { return l.n }

// Config returns the policy values the list runs under.
func (l *List[T, P]) Config() policy.Config { return l.guard.Config }

// Name returns the diagnostics label.
func (l *List[T, P]) Name() string { return l.guard.Name }

// alloc takes a free node for v, growing the arena when none is left. A full
// arena is ErrCapacity under every policy and leaves the list unchanged.
func (l *List[T, P]) alloc(op string, v T) (int32, error) {
	if l.free != none {
		i := l.free
		nd := &l.nodes[i]
		l.free = nd.next
		nd.value, nd.next, nd.prev, nd.live = v, none, none, true
		return i, nil
	}
	if l.max > 0 && len(l.nodes) >= l.max {
		return none, l.guard.Capacity(nil, "%s: node arena full at max %d", op, l.max)
	}
	i, err := safecast.Conv[int32](len(l.nodes))
	if err != nil {
		return none, l.guard.Capacity(err, "%s: node arena holds %d nodes", op, len(l.nodes))
	}
	before := cap(l.nodes)
	l.nodes = append(l.nodes, node[T]{value: v, next: none, prev: none, live: true})
	if cap(l.nodes) != before && before > 0 {
		l.guard.Debugf("node arena grew %d -> %d", before, cap(l.nodes))
	}
	return i, nil
}

func (l *List[T, P]) release(i int32) T {
	nd := &l.nodes[i]
	v := nd.value
	var zero T
	nd.value = zero
	nd.live = false
	nd.gen++
	nd.prev = none
	nd.next = l.free
	l.free = i
	l.n--
	return v
}

func (l *List[T, P]) handle(i int32) Handle {
	return Handle{owner: l.id, index: i, gen: l.nodes[i].gen}
}

// resolve maps h to an arena index. Unchecked policies trust the handle.
func (l *List[T, P]) resolve(op string, h Handle) (int32, error) {
	if !l.guard.Checked() {
		return h.index, nil
	}
	if h.owner != l.id || h.index < 0 || int(h.index) >= len(l.nodes) {
		return none, l.guard.Foreign(op)
	}
	nd := &l.nodes[h.index]
	if !nd.live || nd.gen != h.gen {
		return none, l.guard.Foreign(op)
	}
	return h.index, nil
}

// pred returns the node before i, walking from the head on singly lists.
func (l *List[T, P]) pred(i int32) int32 {
	if l.doubly {
		return l.nodes[i].prev
	}
	p := none
	for c := l.head; c != none && c != i; c = l.nodes[c].next {
		p = c
	}
	return p
}

// linkAfter places the detached node i after p, or at the head when p is none.
func (l *List[T, P]) linkAfter(p, i int32) {
	var next int32
	if p == none {
		next = l.head
		l.head = i
	} else {
		next = l.nodes[p].next
		l.nodes[p].next = i
	}
	l.nodes[i].next = next
	if l.doubly {
		l.nodes[i].prev = p
	}
	if next == none {
		l.tail = i
	} else if l.doubly {
		l.nodes[next].prev = i
	}
	l.n++
}

// unlink detaches i, whose predecessor is p.
func (l *List[T, P]) unlink(p, i int32) {
	next := l.nodes[i].next
	if p == none {
		l.head = next
	} else {
		l.nodes[p].next = next
	}
	if next == none {
		l.tail = p
	} else if l.doubly {
		l.nodes[next].prev = p
	}
}

// PushFront inserts v at the head.
func (l *List[T, P]) PushFront(v T) (Handle, error) {
	if err := l.guard.Closed("pushFront"); err != nil {
		return Handle{}, err
	}
	i, err := l.alloc("pushFront", v)
	if err != nil {
		return Handle{}, err
	}
	l.linkAfter(none, i)
	return l.handle(i), nil
}

// PushBack inserts v at the tail.
func (l *List[T, P]) PushBack(v T) (Handle, error) {
	if err := l.guard.Closed("pushBack"); err != nil {
		return Handle{}, err
	}
	i, err := l.alloc("pushBack", v)
	if err != nil {
		return Handle{}, err
	}
	l.linkAfter(l.tail, i)
	return l.handle(i), nil
}

// PopFront removes and returns the head value. An empty list follows the
// policy's EmptyPop and is left unchanged.
func (l *List[T, P]) PopFront() (T, error) {
	if err := l.guard.Closed("popFront"); err != nil {
		var zero T
		return zero, err
	}
	if l.n == 0 {
		return l.guard.EmptyPop("popFront")
	}
	i := l.head
	l.unlink(none, i)
	return l.release(i), nil
}

// PopBack removes and returns the tail value. O(n) on singly lists.
func (l *List[T, P]) PopBack() (T, error) {
	if err := l.guard.Closed("popBack"); err != nil {
		var zero T
		return zero, err
	}
	if l.n == 0 {
		return l.guard.EmptyPop("popBack")
	}
	i := l.tail
	l.unlink(l.pred(i), i)
	return l.release(i), nil
}

// InsertAfter inserts v after the node h refers to.
func (l *List[T, P]) InsertAfter(h Handle, v T) (Handle, error) {
	if err := l.guard.Closed("insertAfter"); err != nil {
		return Handle{}, err
	}
	at, err := l.resolve("insertAfter", h)
	if err != nil {
		return Handle{}, err
	}
	i, err := l.alloc("insertAfter", v)
	if err != nil {
		return Handle{}, err
	}
	l.linkAfter(at, i)
	return l.handle(i), nil
}

// InsertBefore inserts v before the node h refers to. O(n) on singly lists.
func (l *List[T, P]) InsertBefore(h Handle, v T) (Handle, error) {
	if err := l.guard.Closed("insertBefore"); err != nil {
		return Handle{}, err
	}
	at, err := l.resolve("insertBefore", h)
	if err != nil {
		return Handle{}, err
	}
	p := l.pred(at)
	i, err := l.alloc("insertBefore", v)
	if err != nil {
		return Handle{}, err
	}
	l.linkAfter(p, i)
	return l.handle(i), nil
}

// Remove unlinks the node h refers to and returns its value. h and every
// copy of it become stale. O(n) on singly lists.
func (l *List[T, P]) Remove(h Handle) (T, error) {
	var zero T
	if err := l.guard.Closed("remove"); err != nil {
		return zero, err
	}
	i, err := l.resolve("remove", h)
	if err != nil {
		return zero, err
	}
	l.unlink(l.pred(i), i)
	return l.release(i), nil
}

// Get returns the value h refers to.
func (l *List[T, P]) Get(h Handle) (T, error) {
	var zero T
	if err := l.guard.Closed("get"); err != nil {
		return zero, err
	}
	i, err := l.resolve("get", h)
	if err != nil {
		return zero, err
	}
	return l.nodes[i].value, nil
}

// Set replaces the value h refers to.
func (l *List[T, P]) Set(h Handle, v T) error {
	if err := l.guard.Closed("set"); err != nil {
		return err
	}
	i, err := l.resolve("set", h)
	if err != nil {
		return err
	}
	l.nodes[i].value = v
	return nil
}

// At returns the i-th value, walking from the nearer end on doubly lists.
func (l *List[T, P]) At(i int) (T, error) {
	var zero T
	if err := l.guard.Closed("at"); err != nil {
		return zero, err
	}
	if l.guard.Checked() && (i < 0 || i >= l.n) {
		return zero, l.guard.OutOfRange("at", i, l.n)
	}
	if l.doubly && i >= l.n/2 {
		c := l.tail
		for k := l.n - 1; k > i; k-- {
			c = l.nodes[c].prev
		}
		return l.nodes[c].value, nil
	}
	c := l.head
	for range i {
		c = l.nodes[c].next
	}
	return l.nodes[c].value, nil
}

// Front returns a handle to the head node.
func (l *List[T, P]) Front() (Handle, bool) {
	if l.head == none {
		return Handle{}, false
	}
	return l.handle(l.head), true
}

// Back returns a handle to the tail node.
func (l *List[T, P]) Back() (Handle, bool) {
	if l.tail == none {
		return Handle{}, false
	}
	return l.handle(l.tail), true
}

// Next returns the node after h. A foreign handle aborts under
// BoundsCheckedAbort and yields false otherwise.
func (l *List[T, P]) Next(h Handle) (Handle, bool) {
	i, err := l.resolve("next", h)
	if err != nil || l.nodes[i].next == none {
		return Handle{}, false
	}
	return l.handle(l.nodes[i].next), true
}

// Prev returns the node before h. O(n) on singly lists.
func (l *List[T, P]) Prev(h Handle) (Handle, bool) {
	i, err := l.resolve("prev", h)
	if err != nil {
		return Handle{}, false
	}
	p := l.pred(i)
	if p == none {
		return Handle{}, false
	}
	return l.handle(p), true
}

// Find returns the first node, head to tail, whose value satisfies pred.
func (l *List[T, P]) Find(pred func(T) bool) (Handle, bool) {
	for c := l.head; c != none; c = l.nodes[c].next {
		if pred(l.nodes[c].value) {
			return l.handle(c), true
		}
	}
	return Handle{}, false
}

// All yields handles and values from head to tail. The current node may be
// removed during iteration.
func (l *List[T, P]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for c := l.head; c != none; {
			next := l.nodes[c].next
			if !yield(l.handle(c), l.nodes[c].value) {
				return
			}
			c = next
		}
	}
}

// Backward yields handles and values from tail to head. Singly lists log a
// warning and yield nothing.
func (l *List[T, P]) Backward() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		if !l.doubly {
			l.guard.Warnf("backward iteration of a singly linked list yields nothing")
			return
		}
		for c := l.tail; c != none; {
			prev := l.nodes[c].prev
			if !yield(l.handle(c), l.nodes[c].value) {
				return
			}
			c = prev
		}
	}
}

// Values yields values from head to tail.
func (l *List[T, P]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clear removes every value. Outstanding handles become stale; the arena is
// kept for reuse.
func (l *List[T, P]) Clear() {
	for c := l.head; c != none; {
		next := l.nodes[c].next
		l.release(c)
		c = next
	}
	l.head, l.tail = none, none
}

// Splice moves every value of other to the tail of l, in order. other ends
// empty and its handles become stale.
func (l *List[T, P]) Splice(other *List[T, P]) error {
	if other == l {
		return errors.Newf("%s: splice into itself", l.guard.Name)
	}
	if err := l.guard.Closed("splice"); err != nil {
		return err
	}
	if err := other.guard.Closed("splice"); err != nil {
		return err
	}
	need := l.n + other.n
	if l.max > 0 && need > l.max {
		return l.guard.Capacity(nil, "splice: %d nodes exceed max %d", need, l.max)
	}
	if _, err := safecast.Conv[int32](need); err != nil {
		return l.guard.Capacity(err, "splice: %d nodes", need)
	}
	for c := other.head; c != none; c = other.nodes[c].next {
		i, err := l.alloc("splice", other.nodes[c].value)
		if err != nil {
			return err
		}
		l.linkAfter(l.tail, i)
	}
	other.Clear()
	return nil
}

// Close releases the arena and the tracker registration. Closing twice
// reports ErrClosed under checked policies.
func (l *List[T, P]) Close() error {
	if !l.guard.Close() {
		return l.guard.Closed("close")
	}
	l.nodes = nil
	l.free, l.head, l.tail, l.n = none, none, none, 0
	return nil
}

// Check verifies the link structure. It is meant for tests and the play
// command.
func (l *List[T, P]) Check() error {
	count := 0
	prev := none
	for c := l.head; c != none; c = l.nodes[c].next {
		if count > len(l.nodes) {
			return errors.AssertionFailedf("%s: cycle after %d nodes", l.guard.Name, count)
		}
		nd := &l.nodes[c]
		if !nd.live {
			return errors.AssertionFailedf("%s: released node %d is linked", l.guard.Name, c)
		}
		if l.doubly && nd.prev != prev {
			return errors.AssertionFailedf("%s: node %d prev is %d, want %d", l.guard.Name, c, nd.prev, prev)
		}
		prev = c
		count++
	}
	if prev != l.tail {
		return errors.AssertionFailedf("%s: tail is %d, last node is %d", l.guard.Name, l.tail, prev)
	}
	if count != l.n {
		return errors.AssertionFailedf("%s: %d linked nodes, length %d", l.guard.Name, count, l.n)
	}
	free := 0
	for c := l.free; c != none; c = l.nodes[c].next {
		if free > len(l.nodes) {
			return errors.AssertionFailedf("%s: cycle in free list", l.guard.Name)
		}
		free++
	}
	if count+free != len(l.nodes) {
		return errors.AssertionFailedf("%s: %d linked + %d free != %d slots", l.guard.Name, count, free, len(l.nodes))
	}
	return nil
}
