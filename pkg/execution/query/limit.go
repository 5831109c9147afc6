package query

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/primitives"
	"rowexec/pkg/tuple"
)

// LimitExec implements SQL LIMIT and OFFSET.
//
// Example: SELECT * FROM users LIMIT 10 OFFSET 5
// Returns 10 rows starting from the 6th row.
//
// Both bounds are constant expressions evaluated once, on the first Next,
// against an empty record.
type LimitExec struct {
	iterator.UnaryOperator
	limitExpr  expression.Expression
	offsetExpr expression.Expression

	limit   primitives.RowID
	offset  primitives.RowID
	count   primitives.RowID
	skipped bool
	ready   bool
}

// NewLimitExec creates a limit over child.
//
// Parameters:
//   - child: input operator
//   - limit: row cap; nil means no cap
//   - offset: rows to skip first; nil means zero
//
// Returns:
//   - *LimitExec: the operator
//   - error: if child is nil
func NewLimitExec(child iterator.PhysicalPlan, limit, offset expression.Expression) (*LimitExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	return &LimitExec{UnaryOperator: base, limitExpr: limit, offsetExpr: offset}, nil
}

// evalBound reads a LIMIT/OFFSET bound, returning fallback when e is nil.
func evalBound(e expression.Expression, what string, fallback primitives.RowID) (primitives.RowID, error) {
	if e == nil {
		return fallback, nil
	}
	v, err := e.Evaluate(tuple.EmptyRecord())
	if err != nil {
		return 0, err
	}
	if v.IsNull() || !v.IsInteger() {
		return 0, dberr.Newf(dberr.KindExecutor, "%s must be an integer", what)
	}
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, dberr.Newf(dberr.KindOutOfRange, "%s must not be negative", what)
	}
	return primitives.RowID(n), nil
}

func (l *LimitExec) init() error {
	limit, err := evalBound(l.limitExpr, "Limit", primitives.UnlimitedRows)
	if err != nil {
		return err
	}
	l.limit = limit

	offset, err := evalBound(l.offsetExpr, "Offset", 0)
	if err != nil {
		return err
	}
	l.offset = offset
	l.ready = true
	return nil
}

func (l *LimitExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if !l.ready {
		if err := l.init(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "LimitExec.Next")
		}
	}

	if !l.skipped {
		for i := primitives.RowID(0); i < l.offset; i++ {
			rec, _, err := l.FetchNext()
			if err != nil {
				return nil, iterator.NoCursor, true, err
			}
			if rec == nil {
				break
			}
		}
		l.skipped = true
	}

	if l.limit != primitives.UnlimitedRows && l.count >= l.limit {
		return nil, iterator.NoCursor, true, nil
	}
	rec, cur, err := l.FetchNext()
	if err != nil {
		return nil, iterator.NoCursor, true, err
	}
	if rec == nil {
		return nil, iterator.NoCursor, true, nil
	}
	l.count++
	return rec, cur, false, nil
}

// ResetNext rewinds the child; the bounds are evaluated again on the next
// pass.
func (l *LimitExec) ResetNext() {
	l.UnaryOperator.ResetNext()
	l.count = 0
	l.skipped = false
	l.ready = false
}

func (l *LimitExec) String() string {
	limit, offset := "ALL", "0"
	if l.limitExpr != nil {
		limit = l.limitExpr.String()
	}
	if l.offsetExpr != nil {
		offset = l.offsetExpr.String()
	}
	return fmt.Sprintf("LimitExec(limit=%s, offset=%s)", limit, offset)
}
