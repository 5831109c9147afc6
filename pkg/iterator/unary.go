package iterator

import (
	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
)

// UnaryOperator provides the child bookkeeping shared by operators with a
// single input: Filter, Projection, Limit, Sort, Distinct and the like.
// Embedders implement Next and String; they override GetSchema when they
// change the row shape.
type UnaryOperator struct {
	child PhysicalPlan
}

// NewUnaryOperator wraps child. A nil child is an internal error.
func NewUnaryOperator(child PhysicalPlan) (UnaryOperator, error) {
	if child == nil {
		return UnaryOperator{}, dberr.New(dberr.KindFatal, "child operator cannot be nil")
	}
	return UnaryOperator{child: child}, nil
}

// FetchNext pulls one row from the child. It returns nil at end of stream.
func (u *UnaryOperator) FetchNext() (*tuple.Record, Cursor, error) {
	rec, cur, eof, err := u.child.Next()
	if err != nil {
		return nil, NoCursor, err
	}
	if eof {
		return nil, NoCursor, nil
	}
	return rec, cur, nil
}

// ResetNext resets the child.
func (u *UnaryOperator) ResetNext() {
	u.child.ResetNext()
}

// GetSchema forwards the child's schema.
func (u *UnaryOperator) GetSchema() *tuple.Schema {
	return u.child.GetSchema()
}

func (u *UnaryOperator) Children() []PhysicalPlan {
	return []PhysicalPlan{u.child}
}

// Child returns the input operator.
func (u *UnaryOperator) Child() PhysicalPlan {
	return u.child
}
