// Package join implements the two-input join operators: HashJoinExec for
// equi-joins and NestedLoopJoinExec for arbitrary join conditions.
package join

import (
	"fmt"

	dberr "rowexec/pkg/error"
)

const component = "execution/join"

// JoinType selects which unmatched rows a join keeps.
type JoinType int

const (
	InvalidJoin JoinType = iota
	// CrossJoin keeps only matching pairs. With keys or a predicate it is
	// an inner join.
	CrossJoin
	LeftJoin
	RightJoin
	FullJoin
	// SemiJoin emits each left row that has at least one match, once.
	SemiJoin
	// AntiJoin emits each left row that has no match.
	AntiJoin
)

func (j JoinType) String() string {
	switch j {
	case CrossJoin:
		return "CROSS"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	case SemiJoin:
		return "SEMI"
	case AntiJoin:
		return "ANTI"
	default:
		return fmt.Sprintf("JoinType(%d)", int(j))
	}
}

func unsupported(op string, j JoinType) error {
	return dberr.Newf(dberr.KindFatal, "Unsupported join type %s", j).WithOperation(op, component)
}

func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
