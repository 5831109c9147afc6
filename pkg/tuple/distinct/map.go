package distinct

import (
	"slices"

	"rowexec/pkg/primitives"
)

type entry[V any] struct {
	key   Key
	value V
}

// Map is an unordered key to value map. Iteration follows insertion order.
// Values are held behind pointers so callers can update them in place.
type Map[V any] struct {
	buckets map[primitives.HashCode][]int
	entries []*entry[V]
}

// NewMap creates an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{buckets: make(map[primitives.HashCode][]int)}
}

func (m *Map[V]) find(k Key) int {
	for _, idx := range m.buckets[k.Hash()] {
		if m.entries[idx].key.Equal(k) {
			return idx
		}
	}
	return -1
}

// Get returns a pointer to the value stored under k.
func (m *Map[V]) Get(k Key) (*V, bool) {
	idx := m.find(k)
	if idx < 0 {
		return nil, false
	}
	return &m.entries[idx].value, true
}

// GetOrInsert returns the value under k, inserting init() first when absent.
// The bool reports whether the entry was created.
func (m *Map[V]) GetOrInsert(k Key, init func() V) (*V, bool) {
	if idx := m.find(k); idx >= 0 {
		return &m.entries[idx].value, false
	}
	e := &entry[V]{key: k, value: init()}
	m.buckets[k.Hash()] = append(m.buckets[k.Hash()], len(m.entries))
	m.entries = append(m.entries, e)
	return &e.value, true
}

// Len returns the number of entries.
func (m *Map[V]) Len() int { return len(m.entries) }

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map[V]) Range(fn func(k Key, v *V) bool) {
	for _, e := range m.entries {
		if !fn(e.key, &e.value) {
			return
		}
	}
}

// Clear empties the map.
func (m *Map[V]) Clear() {
	clear(m.buckets)
	m.entries = nil
}

// SortedMap keeps its entries ordered by Key.Less. It is used where callers
// need a deterministic iteration order.
type SortedMap[V any] struct {
	entries []*entry[V]
}

// NewSortedMap creates an empty sorted map.
func NewSortedMap[V any]() *SortedMap[V] {
	return &SortedMap[V]{}
}

func (m *SortedMap[V]) search(k Key) (int, bool) {
	return slices.BinarySearchFunc(m.entries, k, func(e *entry[V], target Key) int {
		return e.key.compare(target)
	})
}

// Get returns a pointer to the value stored under k.
func (m *SortedMap[V]) Get(k Key) (*V, bool) {
	idx, found := m.search(k)
	if !found {
		return nil, false
	}
	return &m.entries[idx].value, true
}

// GetOrInsert returns the value under k, inserting init() first when absent.
func (m *SortedMap[V]) GetOrInsert(k Key, init func() V) (*V, bool) {
	idx, found := m.search(k)
	if found {
		return &m.entries[idx].value, false
	}
	e := &entry[V]{key: k, value: init()}
	m.entries = slices.Insert(m.entries, idx, e)
	return &e.value, true
}

func (m *SortedMap[V]) Len() int { return len(m.entries) }

// Range calls fn for each entry in key order until fn returns false.
func (m *SortedMap[V]) Range(fn func(k Key, v *V) bool) {
	for _, e := range m.entries {
		if !fn(e.key, &e.value) {
			return
		}
	}
}

// Clear empties the map.
func (m *SortedMap[V]) Clear() {
	m.entries = nil
}
