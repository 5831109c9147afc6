package distinct

import (
	"container/heap"

	"rowexec/pkg/types"
)

type valueHeap struct {
	values []types.Value
	less   func(a, b types.Value) bool
}

func (h *valueHeap) Len() int           { return len(h.values) }
func (h *valueHeap) Less(i, j int) bool { return h.less(h.values[i], h.values[j]) }
func (h *valueHeap) Swap(i, j int)      { h.values[i], h.values[j] = h.values[j], h.values[i] }
func (h *valueHeap) Push(x any)         { h.values = append(h.values, x.(types.Value)) }
func (h *valueHeap) Pop() any {
	n := len(h.values)
	v := h.values[n-1]
	h.values = h.values[:n-1]
	return v
}

// ValueQueue is a priority queue of values. TopQueue pops the largest value
// first, BottomQueue the smallest.
type ValueQueue struct {
	h *valueHeap
}

// NewTopQueue returns a queue yielding values in descending order.
func NewTopQueue() *ValueQueue {
	return &ValueQueue{h: &valueHeap{less: func(a, b types.Value) bool {
		return types.SortCompare(a, b) == types.Greater
	}}}
}

// NewBottomQueue returns a queue yielding values in ascending order.
func NewBottomQueue() *ValueQueue {
	return &ValueQueue{h: &valueHeap{less: func(a, b types.Value) bool {
		return types.SortCompare(a, b) == types.Less
	}}}
}

func (q *ValueQueue) Push(v types.Value) { heap.Push(q.h, v) }

// Pop removes and returns the head of the queue.
func (q *ValueQueue) Pop() (types.Value, bool) {
	if q.h.Len() == 0 {
		return types.Value{}, false
	}
	return heap.Pop(q.h).(types.Value), true
}

func (q *ValueQueue) Len() int { return q.h.Len() }

// Drain returns up to n values in queue order without consuming the queue.
func (q *ValueQueue) Drain(n int) []types.Value {
	cp := &valueHeap{values: append([]types.Value(nil), q.h.values...), less: q.h.less}
	if n > cp.Len() {
		n = cp.Len()
	}
	out := make([]types.Value, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, heap.Pop(cp).(types.Value))
	}
	return out
}

// Clear empties the queue.
func (q *ValueQueue) Clear() { q.h.values = nil }
