// Package common holds the materialisation helpers shared by the blocking
// operators: sort, window, nested-loop join and the set operations.
package common

import (
	"fmt"
	"sync/atomic"

	"rowexec/pkg/iterator"
	"rowexec/pkg/memory"
	"rowexec/pkg/tuple"
)

var operatorSeq atomic.Uint64

// AccountName returns a process-unique memory account name for one
// operator instance, e.g. "SortExec#3".
func AccountName(op string) string {
	return fmt.Sprintf("%s#%d", op, operatorSeq.Add(1))
}

// RowBuffer holds materialised rows and streams them back out. Every row
// added is charged to the buffer's memory account; Reset gives the bytes
// back.
//
// Internally wraps SliceIterator to reuse common iteration logic. The
// iterator is rebuilt lazily whenever the row slice changes.
type RowBuffer struct {
	rows []*tuple.Record
	iter *iterator.SliceIterator[*tuple.Record]
	acc  *memory.Account
}

// NewRowBuffer creates an empty buffer charging acc. A nil account disables
// accounting.
func NewRowBuffer(acc *memory.Account) *RowBuffer {
	return &RowBuffer{acc: acc}
}

// Add appends rec, failing with a memory-limit error when the connection
// budget cannot cover it.
func (b *RowBuffer) Add(rec *tuple.Record) error {
	if b.acc != nil {
		if err := b.acc.Grow(rec.Size()); err != nil {
			return err
		}
	}
	b.rows = append(b.rows, rec)
	b.iter = nil
	return nil
}

// Drain pulls every remaining row out of stream into the buffer.
//
// Returns:
//   - int: number of rows added by this call
//   - error: the first error from the stream or from memory accounting
func (b *RowBuffer) Drain(stream iterator.RowStream) (int, error) {
	n := 0
	err := iterator.ForEach(stream, func(rec *tuple.Record) error {
		n++
		return b.Add(rec)
	})
	return n, err
}

// Rows exposes the buffered rows. Callers may reorder the slice in place
// but must call Rewind before iterating again.
func (b *RowBuffer) Rows() []*tuple.Record { return b.rows }

// SetRows replaces the buffered rows with a permutation or subset of the
// current ones. Accounting is unchanged.
func (b *RowBuffer) SetRows(rows []*tuple.Record) {
	b.rows = rows
	b.iter = nil
}

func (b *RowBuffer) cursor() *iterator.SliceIterator[*tuple.Record] {
	if b.iter == nil {
		b.iter = iterator.NewSliceIterator(b.rows)
	}
	return b.iter
}

// HasNext returns true if there are more buffered rows to return.
func (b *RowBuffer) HasNext() bool {
	return b.cursor().HasNext()
}

// Next returns the next buffered row and advances, or nil when exhausted.
func (b *RowBuffer) Next() *tuple.Record {
	rec, err := b.cursor().Next()
	if err != nil {
		return nil
	}
	return rec
}

// Position is the index of the row the next Next call returns.
func (b *RowBuffer) Position() int { return b.cursor().CurrentIndex() }

// Rewind restarts iteration from the first row.
func (b *RowBuffer) Rewind() { b.cursor().Rewind() }

func (b *RowBuffer) Len() int { return len(b.rows) }

// Reset drops every row and releases the memory charged for them.
func (b *RowBuffer) Reset() {
	b.rows = nil
	b.iter = nil
	if b.acc != nil {
		b.acc.Clear()
	}
}

// Account returns the memory account backing the buffer.
func (b *RowBuffer) Account() *memory.Account { return b.acc }
