// Package registry provides a thread-safe table of values indexed by name.
//
// The expression engine keeps its builtin functions, its compiled regular
// expressions and its parsed expressions in registries. Reads are far more
// frequent than writes, so entries are guarded by a sync.RWMutex.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrEmptyName is returned when registering an entry without a name.
var ErrEmptyName = errors.New("registry: name is required")

// ErrDuplicate is returned by Add when the name is already taken.
var ErrDuplicate = errors.New("registry: name already registered")

// Registry maps names to values.
// The zero value is not usable; create one with New or NewBounded.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	limit   int
}

// New creates an empty, unbounded registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{
		entries: make(map[string]V),
	}
}

// NewBounded creates a registry that stops storing new entries once it
// holds limit entries. Lookups and replacements keep working when full.
// A limit <= 0 means unbounded.
func NewBounded[V any](limit int) *Registry[V] {
	r := New[V]()
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// Register adds or replaces the value stored under name.
// Bounded registries that are full silently skip new names.
func (r *Registry[V]) Register(name string, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeLocked(name, value)
}

// Add stores value under name, failing if the name is empty or taken.
func (r *Registry[V]) Add(name string, value V) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.storeLocked(name, value)
	return nil
}

// RegisterMany adds or replaces all entries.
func (r *Registry[V]) RegisterMany(entries map[string]V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, v := range entries {
		r.storeLocked(name, v)
	}
}

// storeLocked writes an entry honoring the bound. Caller holds mu.
func (r *Registry[V]) storeLocked(name string, value V) {
	if _, exists := r.entries[name]; !exists && r.limit > 0 && len(r.entries) >= r.limit {
		return
	}
	r.entries[name] = value
}

// Get returns the value for name and whether it exists.
func (r *Registry[V]) Get(name string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Has returns true if name is registered.
func (r *Registry[V]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Delete removes name from the registry.
func (r *Registry[V]) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Names returns all registered names in ascending order.
func (r *Registry[V]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for every entry in name order until fn returns false.
//
// Range iterates over a snapshot, so fn may call Register or Delete
// without affecting the current iteration.
func (r *Registry[V]) Range(fn func(name string, value V) bool) {
	r.mu.RLock()
	snapshot := make(map[string]V, len(r.entries))
	for name, v := range r.entries {
		snapshot[name] = v
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !fn(name, snapshot[name]) {
			return
		}
	}
}

// Clone returns an independent copy with the same bound.
func (r *Registry[V]) Clone() *Registry[V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry[V]{
		entries: make(map[string]V, len(r.entries)),
		limit:   r.limit,
	}
	for name, v := range r.entries {
		c.entries[name] = v
	}
	return c
}

// GetOrCreate returns the value for name, building it with factory when
// absent. The factory runs without the lock held, so concurrent misses on
// one name may each run it; the first value stored wins and is returned
// to every caller.
func (r *Registry[V]) GetOrCreate(name string, factory func() V) V {
	v, _ := r.GetOrCreateErr(name, func() (V, error) {
		return factory(), nil
	})
	return v
}

// GetOrCreateErr is GetOrCreate for factories that can fail.
// Failed results are returned to the caller and never stored.
func (r *Registry[V]) GetOrCreateErr(name string, factory func() (V, error)) (V, error) {
	r.mu.RLock()
	v, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := factory()
	if err != nil {
		return v, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have stored the name while factory ran.
	if existing, ok := r.entries[name]; ok {
		return existing, nil
	}
	r.storeLocked(name, v)
	return v, nil
}
