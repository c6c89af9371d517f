// Package gen binds policies to element types.
//
// Go generics already monomorphize List[T, P] and Vector[T, P]; what this
// package adds is the bookkeeping around it. Instantiate validates the
// policy's values, records the (element type, policy) pair in a Registry
// together with the call site, and returns a Kit that builds containers of
// that pair with shared construction defaults.
//
//	ints, err := gen.Instantiate[int, policy.Checked](list.WithName("ints"))
//	l, err := ints.NewList()
//	v, err := ints.NewVector(vector.WithCapacity(16))
//
// Recording the same pair again is idempotent: one entry, with the new use
// site appended if it was not seen before.
package gen

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
)

// Key identifies an instantiation.
type Key struct {
	Elem   string // element type, package-qualified
	Policy string // policy.Config.Key()
}

func (k Key) String() string { return k.Elem + "@" + k.Policy }

func (k Key) compare(o Key) int {
	if c := cmp.Compare(k.Elem, o.Elem); c != 0 {
		return c
	}
	return cmp.Compare(k.Policy, o.Policy)
}

// UseSite records where an instantiation was requested.
type UseSite struct {
	Site string // file:line, or manifest:table[index]
	Note string
}

// Entry is everything recorded for one key.
type Entry struct {
	Key      Key
	Policies []string // policy type names that produced the key
	UseSites []UseSite
}

// Registry records instantiations. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*Entry)}
}

// Default is the registry used by Instantiate.
var Default = NewRegistry()

// Record registers key and reports whether it was new.
func (r *Registry) Record(key Key, policyName string, site UseSite) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[Key]*Entry)
	}
	e, ok := r.entries[key]
	if !ok {
		e = &Entry{Key: key}
		r.entries[key] = e
	}
	if policyName != "" && !slices.Contains(e.Policies, policyName) {
		e.Policies = append(e.Policies, policyName)
	}
	if site != (UseSite{}) && !slices.Contains(e.UseSites, site) {
		e.UseSites = append(e.UseSites, site)
	}
	return !ok
}

// Lookup returns a copy of the entry for key.
func (r *Registry) Lookup(key Key) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Len returns the number of distinct keys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns copies of all entries sorted by key.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.clone())
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b Entry) int { return a.Key.compare(b.Key) })
	return out
}

func (e *Entry) clone() Entry {
	return Entry{Key: e.Key, Policies: slices.Clone(e.Policies), UseSites: slices.Clone(e.UseSites)}
}

// TypeName returns the package-qualified name of T.
func TypeName[T any]() string {
	return typeName(reflect.TypeFor[T]())
}

func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
