// Package execution is the root of the row-oriented query execution engine.
//
// The engine uses the iterator (volcano) model: every operator implements
// iterator.PhysicalPlan with Next / ResetNext / GetSchema. Operators are
// composed into a tree; calling Next on the root pulls one row at a time
// through the entire pipeline. Blocking operators (sort, aggregation,
// window, hash join build sides, set operations) materialise their input
// and charge the bytes to the connection's memory account.
//
// This package holds the leaf and streaming operators plus the window
// operator and the sort ordering shared with the query package.
//
// # Sub-packages
//
//   - [rowexec/pkg/execution/query]       – Sort, limit and distinct.
//   - [rowexec/pkg/execution/join]        – Hash join and nested-loop join.
//   - [rowexec/pkg/execution/aggregation] – GROUP BY and the aggregate
//     functions (COUNT, SUM, AVG, MIN, MAX, MODE, TOP, BOTTOM, VARIANCE).
//   - [rowexec/pkg/execution/setops]      – UNION, INTERSECT, EXCEPT and the
//     union-join.
//
// # Execution flow
//
// The database package receives a built plan, calls Next on the root until
// it reports end of stream, and records the first error on the result
// iterator. ResetNext rewinds a whole subtree; correlated subqueries rely on
// it to re-run their plan once per outer row.
package execution

import dberr "rowexec/pkg/error"

const component = "execution"

// wrapErr tags err with the operation that surfaced it, keeping its kind.
func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
