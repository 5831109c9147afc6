package setops

import (
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/iterator"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
)

// UnionJoinExec emits every left row, then the right rows that match no
// left row. Duplicates within one input are kept.
type UnionJoinExec struct {
	setBase
	leftDone bool
	done     bool
}

// NewUnionJoinExec creates a union join. schema may be nil to unify the
// input column types.
func NewUnionJoinExec(ctx *registry.ExecContext, left, right iterator.PhysicalPlan, schema *tuple.Schema) (*UnionJoinExec, error) {
	base, err := newSetBase(left, right, schema, ctx.Account(common.AccountName("UnionJoinExec")))
	if err != nil {
		return nil, err
	}
	return &UnionJoinExec{setBase: base}, nil
}

func (u *UnionJoinExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if u.done {
		return nil, iterator.NoCursor, true, nil
	}
	for !u.leftDone {
		rec, cur, err := u.FetchLeft()
		if err != nil {
			return nil, iterator.NoCursor, true, err
		}
		if rec == nil {
			u.leftDone = true
			break
		}
		out, err := u.reproject(rec)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "UnionJoinExec.Next")
		}
		if _, err := u.remember(out); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "UnionJoinExec.Next")
		}
		return out, cur, false, nil
	}

	for {
		rec, cur, err := u.FetchRight()
		if err != nil {
			return nil, iterator.NoCursor, true, err
		}
		if rec == nil {
			u.clear()
			u.done = true
			return nil, iterator.NoCursor, true, nil
		}
		out, err := u.reproject(rec)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "UnionJoinExec.Next")
		}
		key, err := distinct.KeyOfRecord(out)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "UnionJoinExec.Next")
		}
		if u.keys.Count(key) == 0 {
			return out, cur, false, nil
		}
	}
}

func (u *UnionJoinExec) ResetNext() {
	u.BinaryOperator.ResetNext()
	u.clear()
	u.leftDone = false
	u.done = false
}

func (u *UnionJoinExec) String() string { return "UnionJoinExec" }
