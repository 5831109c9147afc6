package iterator

import (
	"fmt"

	"rowexec/pkg/tuple"
)

// SliceIterator walks a materialized slice. Sort, aggregation and window
// operators buffer their input and then stream it back out through one.
//
// Example usage:
//
//	iter := NewSliceIterator(rows)
//	for iter.HasNext() {
//	    row, _ := iter.Next()
//	    process(row)
//	}
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

// NewSliceIterator creates an iterator positioned before the first element.
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element and advances.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T
	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}
	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Peek returns the next element without advancing.
func (it *SliceIterator[T]) Peek() (T, error) {
	var zero T
	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}
	return it.data[it.currentIndex], nil
}

// Rewind moves back to the first element.
func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

func (it *SliceIterator[T]) Len() int { return len(it.data) }

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	return max(len(it.data)-it.currentIndex, 0)
}

// CurrentIndex is the index of the element the next Next call returns.
func (it *SliceIterator[T]) CurrentIndex() int { return it.currentIndex }

// SliceSource serves a fixed list of records. It satisfies both DataSource
// and PhysicalPlan, which makes it the leaf of choice for in-memory tables,
// VALUES lists and tests. Cursors are row indexes.
type SliceSource struct {
	schema *tuple.Schema
	iter   *SliceIterator[*tuple.Record]
	name   string
}

// NewSliceSource serves rows under schema.
func NewSliceSource(name string, schema *tuple.Schema, rows []*tuple.Record) *SliceSource {
	return &SliceSource{schema: schema, iter: NewSliceIterator(rows), name: name}
}

func (s *SliceSource) Next() (*tuple.Record, Cursor, bool, error) {
	if !s.iter.HasNext() {
		return nil, NoCursor, true, nil
	}
	pos := s.iter.CurrentIndex()
	rec, err := s.iter.Next()
	if err != nil {
		return nil, NoCursor, true, err
	}
	return rec, Cursor(pos), false, nil
}

func (s *SliceSource) ResetNext()               { s.iter.Rewind() }
func (s *SliceSource) GetSchema() *tuple.Schema { return s.schema }
func (s *SliceSource) Children() []PhysicalPlan { return nil }

// Len returns the number of rows served per pass.
func (s *SliceSource) Len() int { return s.iter.Len() }

func (s *SliceSource) String() string {
	return fmt.Sprintf("SliceSource(%s, rows=%d)", s.name, s.iter.Len())
}
