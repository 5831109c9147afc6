package distinct

import (
	"rowexec/pkg/primitives"
)

type counted struct {
	key   Key
	count int
}

// MultiSet is a bag of keys: it tracks how many times each key was
// inserted. Iteration follows first-insertion order.
type MultiSet struct {
	buckets map[primitives.HashCode][]int
	items   []*counted
	total   int
}

// NewMultiSet creates an empty bag.
func NewMultiSet() *MultiSet {
	return &MultiSet{buckets: make(map[primitives.HashCode][]int)}
}

func (ms *MultiSet) find(k Key) *counted {
	for _, idx := range ms.buckets[k.Hash()] {
		if ms.items[idx].key.Equal(k) {
			return ms.items[idx]
		}
	}
	return nil
}

// Insert adds one occurrence of k and returns the new count.
func (ms *MultiSet) Insert(k Key) int {
	ms.total++
	if c := ms.find(k); c != nil {
		c.count++
		return c.count
	}
	ms.buckets[k.Hash()] = append(ms.buckets[k.Hash()], len(ms.items))
	ms.items = append(ms.items, &counted{key: k, count: 1})
	return 1
}

// Count returns how many occurrences of k are held.
func (ms *MultiSet) Count(k Key) int {
	if c := ms.find(k); c != nil {
		return c.count
	}
	return 0
}

// EraseOne removes a single occurrence of k, reporting whether one existed.
func (ms *MultiSet) EraseOne(k Key) bool {
	c := ms.find(k)
	if c == nil || c.count == 0 {
		return false
	}
	c.count--
	ms.total--
	return true
}

// EraseAll removes every occurrence of k and returns how many there were.
func (ms *MultiSet) EraseAll(k Key) int {
	c := ms.find(k)
	if c == nil {
		return 0
	}
	n := c.count
	c.count = 0
	ms.total -= n
	return n
}

// Len returns the total number of occurrences.
func (ms *MultiSet) Len() int { return ms.total }

// Range calls fn once per remaining occurrence until fn returns false.
func (ms *MultiSet) Range(fn func(k Key) bool) {
	for _, c := range ms.items {
		for i := 0; i < c.count; i++ {
			if !fn(c.key) {
				return
			}
		}
	}
}

// Clear empties the bag.
func (ms *MultiSet) Clear() {
	clear(ms.buckets)
	ms.items = nil
	ms.total = 0
}
