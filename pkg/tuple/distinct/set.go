package distinct

import (
	"slices"

	"rowexec/pkg/primitives"
)

// Set is an unordered set of keys. Hash collisions are resolved by
// comparing the stored keys. Iteration follows insertion order.
type Set struct {
	buckets map[primitives.HashCode][]int
	keys    []Key
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{buckets: make(map[primitives.HashCode][]int)}
}

func (s *Set) find(k Key) int {
	for _, idx := range s.buckets[k.Hash()] {
		if s.keys[idx].Equal(k) {
			return idx
		}
	}
	return -1
}

// Insert adds k and reports whether it was not already present.
func (s *Set) Insert(k Key) bool {
	if s.find(k) >= 0 {
		return false
	}
	s.buckets[k.Hash()] = append(s.buckets[k.Hash()], len(s.keys))
	s.keys = append(s.keys, k)
	return true
}

// Contains reports whether k is present.
func (s *Set) Contains(k Key) bool { return s.find(k) >= 0 }

// Len returns the number of distinct keys.
func (s *Set) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order.
func (s *Set) Keys() []Key { return slices.Clone(s.keys) }

// Clear empties the set.
func (s *Set) Clear() {
	clear(s.buckets)
	s.keys = nil
}
