package join

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/memory"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

// HashJoinExec implements an equi-join with an in-memory hash table.
//
// The algorithm works in two phases:
//  1. Build phase: every row of the build side is bucketed by its join key.
//     Rows whose key holds a null are skipped; they can never match.
//  2. Probe phase: each row of the probe side looks up its bucket and walks
//     it one row per Next call, applying the residual predicate.
//
// CROSS and LEFT joins build on the right input and probe with the left;
// RIGHT joins build on the left and probe with the right. Outer joins emit
// exactly one null-padded row for a probe row that matches nothing.
type HashJoinExec struct {
	iterator.BinaryOperator
	joinType  JoinType
	leftKeys  []int
	rightKeys []int
	keyTypes  []types.LogicalType
	pred      expression.Expression

	table *distinct.Map[[]*tuple.Record]
	acc   *memory.Account
	log   *logging.Logger
	ready bool
	done  bool

	// probe state, persisted across Next calls
	outer     *tuple.Record
	bucket    []*tuple.Record
	bucketIdx int
	matched   bool
}

// NewHashJoinExec creates a hash join.
//
// Parameters:
//   - ctx: execution context supplying the memory account
//   - joinType: CrossJoin, LeftJoin or RightJoin
//   - left, right: the inputs; output rows are left columns then right
//   - leftKeys, rightKeys: positions of the equi-join columns, pairwise
//   - pred: residual condition over the joined row, may be nil
//
// Returns:
//   - *HashJoinExec: the operator
//   - error: FATAL for other join types, PLANNER for bad key positions
func NewHashJoinExec(ctx *registry.ExecContext, joinType JoinType, left, right iterator.PhysicalPlan,
	leftKeys, rightKeys []int, pred expression.Expression) (*HashJoinExec, error) {
	base, err := iterator.NewBinaryOperator(left, right)
	if err != nil {
		return nil, err
	}
	switch joinType {
	case CrossJoin, LeftJoin, RightJoin:
	default:
		return nil, unsupported("NewHashJoinExec", joinType)
	}
	if len(leftKeys) != len(rightKeys) {
		return nil, dberr.Newf(dberr.KindPlanner, "hash join has %d left keys and %d right keys",
			len(leftKeys), len(rightKeys))
	}

	keyTypes := make([]types.LogicalType, len(leftKeys))
	for i := range leftKeys {
		lc, err := left.GetSchema().Column(leftKeys[i])
		if err != nil {
			return nil, err
		}
		rc, err := right.GetSchema().Column(rightKeys[i])
		if err != nil {
			return nil, err
		}
		kt, err := types.CompatibleType(lc.Type, rc.Type)
		if err != nil {
			return nil, err
		}
		keyTypes[i] = kt
	}

	return &HashJoinExec{
		BinaryOperator: base,
		joinType:       joinType,
		leftKeys:       leftKeys,
		rightKeys:      rightKeys,
		keyTypes:       keyTypes,
		pred:           pred,
		table:          distinct.NewMap[[]*tuple.Record](),
		acc:            ctx.Account(common.AccountName("HashJoinExec")),
		log:            ctx.OperatorLogger("HashJoinExec"),
	}, nil
}

// makeKey projects and casts the join columns of rec. hasNull is set when
// any key field is null.
func (h *HashJoinExec) makeKey(rec *tuple.Record, cols []int) (key distinct.Key, hasNull bool, err error) {
	values := make([]types.Value, len(cols))
	for i, c := range cols {
		v, err := rec.Field(c)
		if err != nil {
			return distinct.Key{}, false, err
		}
		if v.IsNull() {
			return distinct.Key{}, true, nil
		}
		if !v.Type().Equals(h.keyTypes[i]) {
			if v, err = types.CastValue(v, h.keyTypes[i]); err != nil {
				return distinct.Key{}, false, err
			}
		}
		values[i] = v
	}
	return distinct.NewKey(values), false, nil
}

func (h *HashJoinExec) buildSide() (iterator.PhysicalPlan, []int) {
	if h.joinType == RightJoin {
		return h.Left(), h.leftKeys
	}
	return h.Right(), h.rightKeys
}

func (h *HashJoinExec) probeSide() (iterator.PhysicalPlan, []int) {
	if h.joinType == RightJoin {
		return h.Right(), h.rightKeys
	}
	return h.Left(), h.leftKeys
}

func (h *HashJoinExec) build() error {
	side, cols := h.buildSide()
	rows, skipped := 0, 0
	err := iterator.ForEach(side, func(rec *tuple.Record) error {
		key, hasNull, err := h.makeKey(rec, cols)
		if err != nil {
			return err
		}
		if hasNull {
			skipped++
			return nil
		}
		if err := h.acc.Grow(rec.Size()); err != nil {
			return err
		}
		bucket, _ := h.table.GetOrInsert(key, func() []*tuple.Record { return nil })
		*bucket = append(*bucket, rec)
		rows++
		return nil
	})
	if err != nil {
		return err
	}
	h.ready = true
	h.log.Debug("hash table built", "rows", rows, "buckets", h.table.Len(),
		"null_keys", skipped, "bytes", h.acc.Used())
	return nil
}

// combine orders the pair as left columns then right columns.
func (h *HashJoinExec) combine(probe, build *tuple.Record) *tuple.Record {
	if h.joinType == RightJoin {
		return build.Concat(probe)
	}
	return probe.Concat(build)
}

func (h *HashJoinExec) pad(probe *tuple.Record) *tuple.Record {
	if h.joinType == RightJoin {
		return tuple.NullRecord(h.Left().GetSchema()).Concat(probe)
	}
	return probe.Concat(tuple.NullRecord(h.Right().GetSchema()))
}

func (h *HashJoinExec) outerJoin() bool {
	return h.joinType == LeftJoin || h.joinType == RightJoin
}

func (h *HashJoinExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if h.done {
		return nil, iterator.NoCursor, true, nil
	}
	if !h.ready {
		if err := h.build(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "HashJoinExec.Next")
		}
	}

	for {
		if h.bucket != nil && h.bucketIdx < len(h.bucket) {
			inner := h.bucket[h.bucketIdx]
			h.bucketIdx++
			joined := h.combine(h.outer, inner)

			ok := true
			if h.pred != nil {
				var err error
				if ok, err = expression.IsTrue(h.pred, joined); err != nil {
					return nil, iterator.NoCursor, true, wrapErr(err, "HashJoinExec.Next")
				}
			}
			if ok {
				h.matched = true
				return joined, iterator.NoCursor, false, nil
			}
			if h.bucketIdx == len(h.bucket) && !h.matched && h.outerJoin() {
				h.bucket = nil
				return h.pad(h.outer), iterator.NoCursor, false, nil
			}
			continue
		}
		h.bucket = nil

		side, cols := h.probeSide()
		rec, _, eof, err := side.Next()
		if err != nil {
			return nil, iterator.NoCursor, true, err
		}
		if eof {
			h.finish()
			return nil, iterator.NoCursor, true, nil
		}

		key, hasNull, err := h.makeKey(rec, cols)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "HashJoinExec.Next")
		}
		var bucket *[]*tuple.Record
		found := false
		if !hasNull {
			bucket, found = h.table.Get(key)
		}
		if !found {
			if h.outerJoin() {
				return h.pad(rec), iterator.NoCursor, false, nil
			}
			continue
		}
		h.outer = rec
		h.bucket = *bucket
		h.bucketIdx = 0
		h.matched = false
	}
}

// finish drops the hash table once the probe side is exhausted. The
// operator stays at end of stream until ResetNext.
func (h *HashJoinExec) finish() {
	h.table.Clear()
	h.acc.Clear()
	h.outer, h.bucket = nil, nil
	h.done = true
}

// ResetNext clears the hash table and the probe cursor and rewinds both
// inputs.
func (h *HashJoinExec) ResetNext() {
	h.BinaryOperator.ResetNext()
	h.table.Clear()
	h.acc.Clear()
	h.outer, h.bucket = nil, nil
	h.bucketIdx = 0
	h.matched = false
	h.ready = false
	h.done = false
	if h.pred != nil {
		h.pred.Reset()
	}
}

// JoinType returns the configured join type.
func (h *HashJoinExec) JoinType() JoinType { return h.joinType }

func (h *HashJoinExec) String() string {
	s := fmt.Sprintf("HashJoinExec(%s, left=%v, right=%v", h.joinType, h.leftKeys, h.rightKeys)
	if h.pred != nil {
		s += ", pred=" + h.pred.String()
	}
	return s + ")"
}
