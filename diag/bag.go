package diag

import (
	"slices"
	"sync"
)

// Bag collects diagnostics. A limit of zero or less means unbounded.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d and reports whether it fit under the limit.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// HasErrors reports whether anything at LevelError or above was collected.
func (b *Bag) HasErrors() bool {
	return b.Count(LevelError) > 0
}

// Count returns the number of diagnostics at min or above.
func (b *Bag) Count(min Level) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if b.items[i].Level >= min {
			n++
		}
	}
	return n
}

// Merge appends other's items, raising the limit to fit them.
func (b *Bag) Merge(other *Bag) {
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items)+len(items) > b.max {
		b.max = len(b.items) + len(items)
	}
	b.items = append(b.items, items...)
}

// Sort orders by level (most severe first), then code. Ties keep arrival order.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if x.Level != y.Level {
			return int(y.Level) - int(x.Level)
		}
		return int(x.Code) - int(y.Code)
	})
}

// Dedup drops repeats of the same level, code and message.
func (b *Bag) Dedup() {
	type key struct {
		level Level
		code  Code
		msg   string
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[key]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Level, d.Code, d.Message}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}

// Reset drops everything collected so far.
func (b *Bag) Reset() {
	b.mu.Lock()
	b.items = b.items[:0]
	b.mu.Unlock()
}
