// Package expression evaluates bound, typed scalar expressions against a
// record. Nodes form a tree; each node evaluates its children first and
// combines the results under SQL three-valued logic.
//
// Nodes that memoise work (subqueries) keep that state behind the Reset and
// ReEvaluate hooks: Reset forgets everything cached for the current
// execution, ReEvaluate recomputes while ignoring the cache.
package expression

import (
	"strings"

	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Expression is one node of a bound expression tree.
type Expression interface {
	// Evaluate computes the node's value for rec. Memoised state may be used.
	Evaluate(rec *tuple.Record) (types.Value, error)

	// ReEvaluate computes the value while bypassing memoised state. Nodes
	// without a cache behave exactly like Evaluate.
	ReEvaluate(rec *tuple.Record) (types.Value, error)

	// Reset clears per-execution state in this node and its children.
	Reset()

	LogicalType() types.LogicalType
	String() string
}

// evaluateAll evaluates each expression against rec in order.
func evaluateAll(exprs []Expression, rec *tuple.Record) ([]types.Value, error) {
	values := make([]types.Value, len(exprs))
	for i, e := range exprs {
		v, err := e.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func resetAll(exprs ...Expression) {
	for _, e := range exprs {
		if e != nil {
			e.Reset()
		}
	}
}

func joinStrings(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// truth reads v as a truth value; null counts as UNKNOWN.
func truth(v types.Value) (types.Trivalent, error) {
	if v.IsNull() {
		return types.Unknown, nil
	}
	return v.AsTrivalent()
}

// EvaluateRow evaluates exprs against rec and packs the results into a new
// record, the way projections and VALUES lists build their output.
func EvaluateRow(exprs []Expression, rec *tuple.Record) (*tuple.Record, error) {
	values, err := evaluateAll(exprs, rec)
	if err != nil {
		return nil, err
	}
	return tuple.NewRecord(values), nil
}

// Types lists the result types of exprs.
func Types(exprs []Expression) []types.LogicalType {
	out := make([]types.LogicalType, len(exprs))
	for i, e := range exprs {
		out[i] = e.LogicalType()
	}
	return out
}

// ResetAll resets every expression in exprs.
func ResetAll(exprs []Expression) { resetAll(exprs...) }

// IsTrue evaluates a predicate against rec. Only TRUE passes; null and
// UNKNOWN count as not passing.
func IsTrue(pred Expression, rec *tuple.Record) (bool, error) {
	v, err := pred.Evaluate(rec)
	if err != nil {
		return false, err
	}
	t, err := truth(v)
	if err != nil {
		return false, err
	}
	return t == types.True, nil
}
