package setops

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
)

// UnionExec evaluates UNION, INTERSECT and EXCEPT, with or without ALL.
// Every row is first cast to the output schema's column types.
//
//   - UNION streams the left input then the right one; without ALL a row
//     already emitted is skipped.
//   - INTERSECT loads the left input into a bag, then streams the right
//     input and emits each row that still has an occurrence in the bag,
//     consuming it. Without ALL the bag holds each left row once.
//   - EXCEPT loads the left input into a bag, removes one occurrence per
//     right row and emits what remains in first-seen order.
type UnionExec struct {
	setBase
	opType      SetOperationType
	preserveAll bool
	log         *logging.Logger

	leftDone bool
	ready    bool
	done     bool
	pending  []distinct.Key
}

// NewUnionExec creates a set operation.
//
// Parameters:
//   - ctx: execution context supplying the memory account
//   - opType: SetUnion, SetIntersect or SetExcept
//   - all: keep duplicates (the ALL variants)
//   - left, right: the inputs, with equal column counts
//   - schema: output schema; nil unifies the input column types
//
// Returns:
//   - *UnionExec: the operator
//   - error: PLANNER when the inputs differ in width, EXECUTOR for an
//     unknown operation
func NewUnionExec(ctx *registry.ExecContext, opType SetOperationType, all bool,
	left, right iterator.PhysicalPlan, schema *tuple.Schema) (*UnionExec, error) {
	switch opType {
	case SetUnion, SetIntersect, SetExcept:
	default:
		return nil, dberr.Newf(dberr.KindExecutor, "unknown set op type %d", int(opType))
	}
	base, err := newSetBase(left, right, schema, ctx.Account(common.AccountName("UnionExec")))
	if err != nil {
		return nil, err
	}
	return &UnionExec{
		setBase:     base,
		opType:      opType,
		preserveAll: all,
		log:         ctx.OperatorLogger("UnionExec"),
	}, nil
}

func (u *UnionExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if u.done {
		return nil, iterator.NoCursor, true, nil
	}
	var (
		rec *tuple.Record
		cur iterator.Cursor
		err error
	)
	switch u.opType {
	case SetUnion:
		rec, cur, err = u.unionNext()
	case SetIntersect:
		rec, cur, err = u.intersectNext()
	default:
		rec, err = u.exceptNext()
		cur = iterator.NoCursor
	}
	if err != nil {
		return nil, iterator.NoCursor, true, wrapErr(err, "UnionExec.Next")
	}
	if rec == nil {
		u.clear()
		u.pending = nil
		u.done = true
		return nil, iterator.NoCursor, true, nil
	}
	return rec, cur, false, nil
}

func (u *UnionExec) unionNext() (*tuple.Record, iterator.Cursor, error) {
	for {
		var (
			rec *tuple.Record
			cur iterator.Cursor
			err error
		)
		if !u.leftDone {
			if rec, cur, err = u.FetchLeft(); err != nil {
				return nil, iterator.NoCursor, err
			}
			if rec == nil {
				u.leftDone = true
				continue
			}
		} else {
			if rec, cur, err = u.FetchRight(); err != nil {
				return nil, iterator.NoCursor, err
			}
			if rec == nil {
				return nil, iterator.NoCursor, nil
			}
		}

		out, err := u.reproject(rec)
		if err != nil {
			return nil, iterator.NoCursor, err
		}
		if u.preserveAll {
			return out, cur, nil
		}
		key, err := distinct.KeyOfRecord(out)
		if err != nil {
			return nil, iterator.NoCursor, err
		}
		if u.keys.Count(key) > 0 {
			continue
		}
		if _, err := u.remember(out); err != nil {
			return nil, iterator.NoCursor, err
		}
		return out, cur, nil
	}
}

// loadLeft fills the bag from the left input.
func (u *UnionExec) loadLeft() error {
	rows := 0
	err := iterator.ForEach(u.Left(), func(rec *tuple.Record) error {
		out, err := u.reproject(rec)
		if err != nil {
			return err
		}
		if !u.preserveAll {
			key, err := distinct.KeyOfRecord(out)
			if err != nil {
				return err
			}
			if u.keys.Count(key) > 0 {
				return nil
			}
		}
		rows++
		_, err = u.remember(out)
		return err
	})
	if err != nil {
		return err
	}
	u.leftDone = true
	u.log.Debug("set operation input materialized", "op", u.opType.String(), "rows", rows, "bytes", u.acc.Used())
	return nil
}

func (u *UnionExec) intersectNext() (*tuple.Record, iterator.Cursor, error) {
	if !u.ready {
		if err := u.loadLeft(); err != nil {
			return nil, iterator.NoCursor, err
		}
		u.ready = true
	}
	for {
		rec, cur, err := u.FetchRight()
		if err != nil || rec == nil {
			return nil, iterator.NoCursor, err
		}
		out, err := u.reproject(rec)
		if err != nil {
			return nil, iterator.NoCursor, err
		}
		key, err := distinct.KeyOfRecord(out)
		if err != nil {
			return nil, iterator.NoCursor, err
		}
		if u.keys.EraseOne(key) {
			return out, cur, nil
		}
	}
}

func (u *UnionExec) exceptNext() (*tuple.Record, error) {
	if !u.ready {
		if err := u.loadLeft(); err != nil {
			return nil, err
		}
		err := iterator.ForEach(u.Right(), func(rec *tuple.Record) error {
			out, err := u.reproject(rec)
			if err != nil {
				return err
			}
			key, err := distinct.KeyOfRecord(out)
			if err != nil {
				return err
			}
			u.keys.EraseOne(key)
			return nil
		})
		if err != nil {
			return nil, err
		}
		u.pending = make([]distinct.Key, 0, u.keys.Len())
		u.keys.Range(func(k distinct.Key) bool {
			u.pending = append(u.pending, k)
			return true
		})
		u.ready = true
	}
	if len(u.pending) == 0 {
		return nil, nil
	}
	k := u.pending[0]
	u.pending = u.pending[1:]
	return k.ToRecord(), nil
}

func (u *UnionExec) ResetNext() {
	u.BinaryOperator.ResetNext()
	u.clear()
	u.pending = nil
	u.leftDone = false
	u.ready = false
	u.done = false
}

func (u *UnionExec) OpType() SetOperationType { return u.opType }

func (u *UnionExec) String() string {
	if u.preserveAll {
		return fmt.Sprintf("UnionExec(%s ALL)", u.opType)
	}
	return fmt.Sprintf("UnionExec(%s)", u.opType)
}
