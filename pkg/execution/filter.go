package execution

import (
	dberr "rowexec/pkg/error"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
)

// FilterExec passes through the child rows whose predicate is TRUE. A null
// or UNKNOWN result drops the row like FALSE does.
type FilterExec struct {
	iterator.UnaryOperator
	predicate expression.Expression
}

// NewFilterExec creates a filter over child.
func NewFilterExec(predicate expression.Expression, child iterator.PhysicalPlan) (*FilterExec, error) {
	if predicate == nil {
		return nil, dberr.New(dberr.KindFatal, "predicate cannot be nil")
	}
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	return &FilterExec{UnaryOperator: base, predicate: predicate}, nil
}

func (f *FilterExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	for {
		rec, cur, err := f.FetchNext()
		if err != nil {
			return nil, iterator.NoCursor, true, err
		}
		if rec == nil {
			return nil, iterator.NoCursor, true, nil
		}

		ok, err := expression.IsTrue(f.predicate, rec)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "FilterExec.Next")
		}
		if ok {
			return rec, cur, false, nil
		}
	}
}

// ResetNext rewinds the child and clears any memoised subquery state in the
// predicate.
func (f *FilterExec) ResetNext() {
	f.UnaryOperator.ResetNext()
	f.predicate.Reset()
}

// Predicate returns the filter condition.
func (f *FilterExec) Predicate() expression.Expression { return f.predicate }

func (f *FilterExec) String() string {
	return "Filter(" + f.predicate.String() + ")"
}
