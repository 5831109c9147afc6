package iterator

import (
	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
)

// BinaryOperator provides the child bookkeeping shared by joins and set
// operations.
type BinaryOperator struct {
	left  PhysicalPlan
	right PhysicalPlan
}

// NewBinaryOperator wraps the two inputs. Nil children are internal errors.
func NewBinaryOperator(left, right PhysicalPlan) (BinaryOperator, error) {
	if left == nil {
		return BinaryOperator{}, dberr.New(dberr.KindFatal, "left child operator cannot be nil")
	}
	if right == nil {
		return BinaryOperator{}, dberr.New(dberr.KindFatal, "right child operator cannot be nil")
	}
	return BinaryOperator{left: left, right: right}, nil
}

// FetchLeft pulls one row from the left input, nil at end of stream.
func (b *BinaryOperator) FetchLeft() (*tuple.Record, Cursor, error) {
	return fetch(b.left)
}

// FetchRight pulls one row from the right input, nil at end of stream.
func (b *BinaryOperator) FetchRight() (*tuple.Record, Cursor, error) {
	return fetch(b.right)
}

func fetch(child PhysicalPlan) (*tuple.Record, Cursor, error) {
	rec, cur, eof, err := child.Next()
	if err != nil {
		return nil, NoCursor, err
	}
	if eof {
		return nil, NoCursor, nil
	}
	return rec, cur, nil
}

// ResetNext resets both inputs.
func (b *BinaryOperator) ResetNext() {
	b.left.ResetNext()
	b.right.ResetNext()
}

// GetSchema is the left schema followed by the right one, the shape of a
// joined row.
func (b *BinaryOperator) GetSchema() *tuple.Schema {
	return b.left.GetSchema().Concat(b.right.GetSchema())
}

func (b *BinaryOperator) Children() []PhysicalPlan {
	return []PhysicalPlan{b.left, b.right}
}

func (b *BinaryOperator) Left() PhysicalPlan  { return b.left }
func (b *BinaryOperator) Right() PhysicalPlan { return b.right }
