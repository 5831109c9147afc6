package aggregation

import (
	"rowexec/pkg/function"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

// ============================================================================
// COUNT / COUNT(*)
// ============================================================================

type countAgg struct {
	star     bool
	distinct bool
}

func (a *countAgg) Name() string {
	if a.star {
		return CountStar
	}
	return Count
}

func (a *countAgg) ResultType() types.LogicalType { return types.BigInt() }
func (a *countAgg) NewState() *State              { return &State{} }
func (a *countAgg) Default() types.Value          { return types.NewBigInt(0) }

func (a *countAgg) Accumulate(v types.Value, st *State) error {
	if a.star {
		st.count++
		return nil
	}
	if v.IsNull() || !firstSight(a.distinct, v, st) {
		return nil
	}
	st.count++
	return nil
}

func (a *countAgg) Final(st *State) (Result, error) {
	return scalar(types.NewBigInt(st.count)), nil
}

// ============================================================================
// SUM / AVG
// ============================================================================

// sumAgg adds values with the registry's "+" overload for the widened
// accumulator type, so integer overflow surfaces as OUT_OF_RANGE.
type sumAgg struct {
	distinct bool
	accType  types.LogicalType
	plus     function.Function
}

func (a *sumAgg) Name() string                  { return Sum }
func (a *sumAgg) ResultType() types.LogicalType { return a.accType }
func (a *sumAgg) NewState() *State              { return &State{acc: types.NewNull(a.accType)} }
func (a *sumAgg) Default() types.Value          { return types.NewNull(a.accType) }

func (a *sumAgg) Accumulate(v types.Value, st *State) error {
	if v.IsNull() || !firstSight(a.distinct, v, st) {
		return nil
	}
	v, err := types.CastValue(v, a.accType)
	if err != nil {
		return err
	}
	st.count++
	if st.acc.IsNull() {
		st.acc = v
		return nil
	}
	sum, err := a.plus.Call([]types.Value{st.acc, v})
	if err != nil {
		return err
	}
	if !sum.Type().Equals(a.accType) {
		if sum, err = types.CastValue(sum, a.accType); err != nil {
			return err
		}
	}
	st.acc = sum
	return nil
}

func (a *sumAgg) Final(st *State) (Result, error) { return scalar(st.acc), nil }

type avgAgg struct {
	sumAgg
}

func (a *avgAgg) Name() string                  { return Avg }
func (a *avgAgg) ResultType() types.LogicalType { return types.Real() }
func (a *avgAgg) Default() types.Value          { return types.NewNull(types.Real()) }

func (a *avgAgg) Final(st *State) (Result, error) {
	if st.acc.IsNull() || st.count == 0 {
		return scalar(types.NewNull(types.Real())), nil
	}
	total, err := st.acc.AsFloat64()
	if err != nil {
		return Result{}, err
	}
	return scalar(types.NewReal(total / float64(st.count))), nil
}

// ============================================================================
// MAX / MIN
// ============================================================================

type extremumAgg struct {
	name     string
	distinct bool
	typ      types.LogicalType
	less     function.Function
}

func (a *extremumAgg) Name() string                  { return a.name }
func (a *extremumAgg) ResultType() types.LogicalType { return a.typ }
func (a *extremumAgg) NewState() *State              { return &State{acc: types.NewNull(a.typ)} }
func (a *extremumAgg) Default() types.Value          { return types.NewNull(a.typ) }

func (a *extremumAgg) Accumulate(v types.Value, st *State) error {
	if v.IsNull() || !firstSight(a.distinct, v, st) {
		return nil
	}
	if st.acc.IsNull() {
		st.acc = v
		return nil
	}
	res, err := a.less.Call([]types.Value{st.acc, v})
	if err != nil {
		return err
	}
	accLess, err := res.AsBool()
	if err != nil {
		return err
	}
	if (a.name == Max) == accLess {
		st.acc = v
	}
	return nil
}

func (a *extremumAgg) Final(st *State) (Result, error) { return scalar(st.acc), nil }

// ============================================================================
// MODE
// ============================================================================

type modeAgg struct {
	typ types.LogicalType
}

func (a *modeAgg) Name() string                  { return Mode }
func (a *modeAgg) ResultType() types.LogicalType { return a.typ }
func (a *modeAgg) NewState() *State              { return &State{counts: distinct.NewMap[int64]()} }
func (a *modeAgg) Default() types.Value          { return types.NewNull(a.typ) }

func (a *modeAgg) Accumulate(v types.Value, st *State) error {
	if v.IsNull() {
		return nil
	}
	n, created := st.counts.GetOrInsert(distinct.NewKey([]types.Value{v}), func() int64 { return 0 })
	if created {
		st.retained += v.Size()
	}
	*n++
	return nil
}

// Final picks the most frequent value; ties go to the value seen first.
func (a *modeAgg) Final(st *State) (Result, error) {
	best := types.NewNull(a.typ)
	var bestCount int64
	st.counts.Range(func(k distinct.Key, n *int64) bool {
		if *n > bestCount {
			bestCount = *n
			best = k.Values()[0]
		}
		return true
	})
	return scalar(best), nil
}

// ============================================================================
// TOP / BOTTOM
// ============================================================================

// rankAgg keeps every value in a priority queue and returns the first
// limit of them, largest first for TOP and smallest first for BOTTOM.
type rankAgg struct {
	top      bool
	distinct bool
	typ      types.LogicalType
}

func (a *rankAgg) Name() string {
	if a.top {
		return Top
	}
	return Bottom
}

func (a *rankAgg) ResultType() types.LogicalType { return a.typ }
func (a *rankAgg) Default() types.Value          { return types.NewNull(a.typ) }

func (a *rankAgg) NewState() *State {
	q := distinct.NewBottomQueue()
	if a.top {
		q = distinct.NewTopQueue()
	}
	return &State{queue: q, limit: 1}
}

func (a *rankAgg) Accumulate(v types.Value, st *State) error {
	if v.IsNull() || !firstSight(a.distinct, v, st) {
		return nil
	}
	st.queue.Push(v)
	st.retained += v.Size()
	return nil
}

func (a *rankAgg) Final(st *State) (Result, error) {
	if st.queue.Len() == 0 || st.limit == 0 {
		return scalar(types.NewNull(a.typ)), nil
	}
	return Result{List: st.queue.Drain(int(st.limit)), IsList: true}, nil
}

// ============================================================================
// VARIANCE
// ============================================================================

// varianceAgg computes the population variance with Welford's online
// update.
type varianceAgg struct {
	distinct bool
}

func (a *varianceAgg) Name() string                  { return Variance }
func (a *varianceAgg) ResultType() types.LogicalType { return types.Real() }
func (a *varianceAgg) NewState() *State              { return &State{} }
func (a *varianceAgg) Default() types.Value          { return types.NewNull(types.Real()) }

func (a *varianceAgg) Accumulate(v types.Value, st *State) error {
	if v.IsNull() || !firstSight(a.distinct, v, st) {
		return nil
	}
	x, err := v.AsFloat64()
	if err != nil {
		return err
	}
	st.count++
	delta := x - st.mean
	st.mean += delta / float64(st.count)
	st.m2 += delta * (x - st.mean)
	return nil
}

// Final is 0 for a group without non-null input.
func (a *varianceAgg) Final(st *State) (Result, error) {
	if st.count < 1 {
		return scalar(types.NewReal(0)), nil
	}
	return scalar(types.NewReal(st.m2 / float64(st.count))), nil
}
