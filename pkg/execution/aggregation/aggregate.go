// Package aggregation implements hash aggregation: the aggregate functions
// (COUNT, SUM, AVG, MAX, MIN, MODE, TOP, BOTTOM, VARIANCE) and the
// AggregateExec operator that groups child rows and finalizes them.
package aggregation

import (
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/function"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

const component = "execution/aggregation"

// Aggregate names understood by NewAggregate. Matching is case-insensitive.
const (
	CountStar = "count_star"
	Count     = "count"
	Sum       = "sum"
	Avg       = "avg"
	Max       = "max"
	Min       = "min"
	Mode      = "mode"
	Top       = "top"
	Bottom    = "bottom"
	Variance  = "variance"
)

// Aggregate folds the values of one group into a State and finalizes it.
//
// Implementations hold only immutable configuration (resolved functions,
// result type); everything that changes per group lives in the State.
type Aggregate interface {
	Name() string
	// ResultType is the type of the finalized value(s).
	ResultType() types.LogicalType
	// NewState returns an empty accumulator for a new group.
	NewState() *State
	// Accumulate folds one input value into st. Nulls are ignored by every
	// aggregate except COUNT(*).
	Accumulate(v types.Value, st *State) error
	// Final produces the group's result.
	Final(st *State) (Result, error)
	// Default is the value reported for an ungrouped aggregate over no rows.
	Default() types.Value
}

// Result is a finalized aggregate: a single value, or for TOP and BOTTOM a
// list with one value per output row.
type Result struct {
	Value  types.Value
	List   []types.Value
	IsList bool
}

func scalar(v types.Value) Result { return Result{Value: v} }

// State is the per-group accumulator context.
type State struct {
	acc   types.Value
	count int64
	// limit is the row count requested by TOP and BOTTOM.
	limit  int64
	seen   *distinct.Set
	counts *distinct.Map[int64]
	queue  *distinct.ValueQueue
	// running mean and sum of squared deltas for VARIANCE
	mean, m2 float64
	// retained is the number of bytes of values the state holds on to.
	retained int
}

// SetLimit records the TOP/BOTTOM row count for this group.
func (s *State) SetLimit(n int64) { s.limit = n }

// Retained reports the bytes held by DISTINCT sets, MODE counters and
// TOP/BOTTOM queues.
func (s *State) Retained() int { return s.retained }

// firstSight filters DISTINCT input: it reports false when v was already
// folded into st.
func firstSight(isDistinct bool, v types.Value, st *State) bool {
	if !isDistinct {
		return true
	}
	if st.seen == nil {
		st.seen = distinct.NewSet()
	}
	if !st.seen.Insert(distinct.NewKey([]types.Value{v})) {
		return false
	}
	st.retained += v.Size()
	return true
}

// NewAggregate resolves an aggregate by name for the given argument type.
//
// Parameters:
//   - reg: function registry supplying "+" and "<" for the argument type
//   - name: aggregate name, e.g. "sum" or "count_star"
//   - argType: type of the aggregated expression (ignored by count_star)
//   - isDistinct: fold each distinct non-null value only once
//
// Returns:
//   - Aggregate: the resolved aggregate
//   - error: NOT_IMPLEMENTED for an unknown name, MODE with DISTINCT, or an
//     argument type the aggregate cannot fold; MISMATCH_TYPE for a
//     non-numeric argument to SUM, AVG or VARIANCE
func NewAggregate(reg *function.Registry, name string, argType types.LogicalType, isDistinct bool) (Aggregate, error) {
	name = strings.ToLower(name)
	switch name {
	case CountStar:
		return &countAgg{star: true}, nil
	case Count:
		return &countAgg{distinct: isDistinct}, nil
	case Sum, Avg:
		if err := requireNumeric(name, argType); err != nil {
			return nil, err
		}
		acc := sumType(argType)
		plus, ok := reg.GetFunction("+", []types.LogicalType{acc, acc})
		if !ok {
			return nil, dberr.Newf(dberr.KindNotImplemented, "not supported aggregate %s with %s", name, argType)
		}
		if name == Sum {
			return &sumAgg{distinct: isDistinct, accType: acc, plus: plus}, nil
		}
		return &avgAgg{sumAgg{distinct: isDistinct, accType: acc, plus: plus}}, nil
	case Max, Min:
		agg := &extremumAgg{name: name, distinct: isDistinct, typ: argType}
		if argType.ID != types.NullType {
			less, ok, err := reg.GetCompareFunction("<", []types.LogicalType{argType, argType})
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, dberr.Newf(dberr.KindNotImplemented, "not supported aggregate %s with %s", name, argType)
			}
			agg.less = less
		}
		return agg, nil
	case Mode:
		if isDistinct {
			return nil, dberr.New(dberr.KindNotImplemented, "mode not support distinct")
		}
		return &modeAgg{typ: argType}, nil
	case Top, Bottom:
		return &rankAgg{top: name == Top, distinct: isDistinct, typ: argType}, nil
	case Variance:
		if err := requireNumeric(name, argType); err != nil {
			return nil, err
		}
		return &varianceAgg{distinct: isDistinct}, nil
	default:
		return nil, dberr.Newf(dberr.KindNotImplemented, "not supported aggregate func:%s", name)
	}
}

// TakesLimit reports whether the aggregate reads a second, row-count
// argument.
func TakesLimit(name string) bool {
	name = strings.ToLower(name)
	return name == Top || name == Bottom
}

func requireNumeric(name string, t types.LogicalType) error {
	if t.ID == types.NullType || t.ID.IsNumeric() {
		return nil
	}
	return dberr.Newf(dberr.KindMismatchType, "aggregate %s requires a numeric argument, got %s", name, t)
}

// sumType is the accumulator type SUM widens its input into.
func sumType(t types.LogicalType) types.LogicalType {
	switch {
	case t.ID.IsDecimal():
		return types.Decimal(types.MaxDecimalPrecision, t.Scale)
	case t.ID == types.RealType || t.ID == types.FloatType:
		return types.Real()
	case t.ID == types.HugeIntType:
		return types.HugeInt()
	case t.ID.IsUnsigned():
		return types.UInt64()
	default:
		return types.BigInt()
	}
}

func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
