package join

import (
	"fmt"

	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
)

// NestedLoopJoinExec joins under an arbitrary condition. The right input is
// materialised once; each left row is then tested against every buffered
// right row.
//
// CROSS and LEFT joins emit left ++ right rows; SEMI and ANTI joins emit
// left rows only.
type NestedLoopJoinExec struct {
	iterator.BinaryOperator
	joinType JoinType
	pred     expression.Expression
	inner    *common.RowBuffer
	log      *logging.Logger
	ready    bool
	done     bool

	outer   *tuple.Record
	matched bool
}

// NewNestedLoopJoinExec creates a nested-loop join. pred may be nil, which
// matches every pair.
func NewNestedLoopJoinExec(ctx *registry.ExecContext, joinType JoinType, left, right iterator.PhysicalPlan,
	pred expression.Expression) (*NestedLoopJoinExec, error) {
	base, err := iterator.NewBinaryOperator(left, right)
	if err != nil {
		return nil, err
	}
	switch joinType {
	case CrossJoin, LeftJoin, SemiJoin, AntiJoin:
	default:
		return nil, unsupported("NewNestedLoopJoinExec", joinType)
	}
	return &NestedLoopJoinExec{
		BinaryOperator: base,
		joinType:       joinType,
		pred:           pred,
		inner:          common.NewRowBuffer(ctx.Account(common.AccountName("NestedLoopJoinExec"))),
		log:            ctx.OperatorLogger("NestedLoopJoinExec"),
	}, nil
}

func (n *NestedLoopJoinExec) init() error {
	rows, err := n.inner.Drain(n.Right())
	if err != nil {
		return err
	}
	n.ready = true
	n.log.Debug("inner input materialized", "rows", rows, "bytes", n.inner.Account().Used())
	return nil
}

func (n *NestedLoopJoinExec) matches(joined *tuple.Record) (bool, error) {
	if n.pred == nil {
		return true, nil
	}
	return expression.IsTrue(n.pred, joined)
}

func (n *NestedLoopJoinExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if n.done {
		return nil, iterator.NoCursor, true, nil
	}
	if !n.ready {
		if err := n.init(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "NestedLoopJoinExec.Next")
		}
	}

	for {
		if n.outer == nil {
			rec, _, err := n.FetchLeft()
			if err != nil {
				return nil, iterator.NoCursor, true, err
			}
			if rec == nil {
				n.inner.Reset()
				n.done = true
				return nil, iterator.NoCursor, true, nil
			}
			n.outer = rec
			n.matched = false
			n.inner.Rewind()
		}

		for n.inner.HasNext() {
			joined := n.outer.Concat(n.inner.Next())
			ok, err := n.matches(joined)
			if err != nil {
				return nil, iterator.NoCursor, true, wrapErr(err, "NestedLoopJoinExec.Next")
			}
			if !ok {
				continue
			}
			n.matched = true
			if n.joinType == CrossJoin || n.joinType == LeftJoin {
				return joined, iterator.NoCursor, false, nil
			}
			// SEMI and ANTI are decided by the first match.
			break
		}

		outer := n.outer
		n.outer = nil
		switch {
		case n.joinType == LeftJoin && !n.matched:
			return outer.Concat(tuple.NullRecord(n.Right().GetSchema())), iterator.NoCursor, false, nil
		case n.joinType == SemiJoin && n.matched:
			return outer, iterator.NoCursor, false, nil
		case n.joinType == AntiJoin && !n.matched:
			return outer, iterator.NoCursor, false, nil
		}
	}
}

// GetSchema is the left schema for SEMI and ANTI joins and left ++ right
// otherwise.
func (n *NestedLoopJoinExec) GetSchema() *tuple.Schema {
	if n.joinType == SemiJoin || n.joinType == AntiJoin {
		return n.Left().GetSchema()
	}
	return n.BinaryOperator.GetSchema()
}

func (n *NestedLoopJoinExec) ResetNext() {
	n.BinaryOperator.ResetNext()
	n.inner.Reset()
	n.outer = nil
	n.matched = false
	n.ready = false
	n.done = false
	if n.pred != nil {
		n.pred.Reset()
	}
}

func (n *NestedLoopJoinExec) JoinType() JoinType { return n.joinType }

func (n *NestedLoopJoinExec) String() string {
	if n.pred == nil {
		return fmt.Sprintf("NestedLoopJoinExec(%s)", n.joinType)
	}
	return fmt.Sprintf("NestedLoopJoinExec(%s, pred=%s)", n.joinType, n.pred)
}
