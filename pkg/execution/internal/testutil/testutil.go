// Package testutil builds small in-memory tables and flattens operator
// output for assertions in the execution packages' tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rowexec/pkg/function"
	"rowexec/pkg/iterator"
	"rowexec/pkg/memory"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Context returns an execution context on a private, unlimited memory
// manager. Its accounts are cleared when the test ends.
func Context(t testing.TB) *registry.ExecContext {
	return LimitedContext(t, 0)
}

// LimitedContext is Context with a per-connection byte ceiling.
func LimitedContext(t testing.TB, limit uint64) *registry.ExecContext {
	ctx := registry.NewExecContext(function.NewRegistry(), memory.NewManager(limit, 0), "test-conn")
	t.Cleanup(ctx.Close)
	return ctx
}

// Col is shorthand for an unqualified column.
func Col(name string, typ types.LogicalType) tuple.Column {
	return tuple.Column{Name: name, Type: typ}
}

// Value converts a Go literal into a value of typ. nil is a typed null.
func Value(t testing.TB, typ types.LogicalType, v any) types.Value {
	t.Helper()
	var raw types.Value
	switch x := v.(type) {
	case nil:
		return types.NewNull(typ)
	case int:
		raw = types.NewBigInt(int64(x))
	case int64:
		raw = types.NewBigInt(x)
	case float64:
		raw = types.NewReal(x)
	case string:
		raw = types.NewVarchar(x)
	case bool:
		raw = types.NewBoolean(x)
	case types.Value:
		return x
	default:
		t.Fatalf("unsupported literal %T", v)
	}
	out, err := types.CastValue(raw, typ)
	require.NoError(t, err)
	return out
}

// Record builds one row shaped like schema.
func Record(t testing.TB, schema *tuple.Schema, values ...any) *tuple.Record {
	t.Helper()
	require.Len(t, values, schema.NumColumns())
	vals := make([]types.Value, len(values))
	for i, col := range schema.Columns() {
		vals[i] = Value(t, col.Type, values[i])
	}
	return tuple.NewRecord(vals)
}

// Source serves rows of Go literals under schema.
func Source(t testing.TB, name string, schema *tuple.Schema, rows ...[]any) *iterator.SliceSource {
	t.Helper()
	recs := make([]*tuple.Record, len(rows))
	for i, r := range rows {
		recs[i] = Record(t, schema, r...)
	}
	return iterator.NewSliceSource(name, schema, recs)
}

// Plain flattens a value for comparison: nil for null, int64 for integers,
// float64 for reals, string for strings, bool for booleans and the display
// form for everything else.
func Plain(v types.Value) any {
	if v.IsNull() {
		return nil
	}
	switch {
	case v.IsInteger():
		n, err := v.AsInt64()
		if err == nil {
			return n
		}
	case v.TypeID() == types.RealType || v.TypeID() == types.FloatType:
		f, err := v.AsFloat64()
		if err == nil {
			return f
		}
	case v.IsString():
		s, err := v.AsString()
		if err == nil {
			return s
		}
	case v.TypeID() == types.BooleanType:
		b, err := v.AsBool()
		if err == nil {
			return b
		}
	}
	return v.String()
}

// Rows flattens records with Plain.
func Rows(t testing.TB, recs []*tuple.Record) [][]any {
	t.Helper()
	out := make([][]any, len(recs))
	for i, rec := range recs {
		values, err := rec.Values()
		require.NoError(t, err)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = Plain(v)
		}
		out[i] = row
	}
	return out
}

// Drain runs plan to end of stream and flattens the output.
func Drain(t testing.TB, plan iterator.PhysicalPlan) [][]any {
	t.Helper()
	recs, err := iterator.Collect(plan)
	require.NoError(t, err)
	return Rows(t, recs)
}

// CountingPlan records how often its source is pulled and reset.
type CountingPlan struct {
	*iterator.SliceSource
	Nexts  int
	Resets int
}

// Counting wraps src.
func Counting(src *iterator.SliceSource) *CountingPlan {
	return &CountingPlan{SliceSource: src}
}

func (c *CountingPlan) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	c.Nexts++
	return c.SliceSource.Next()
}

func (c *CountingPlan) ResetNext() {
	c.Resets++
	c.SliceSource.ResetNext()
}

// FailingPlan returns err from the Nth call to Next, serving src before
// that.
type FailingPlan struct {
	*iterator.SliceSource
	After int
	Err   error
	calls int
}

func (f *FailingPlan) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	f.calls++
	if f.calls > f.After {
		return nil, iterator.NoCursor, true, f.Err
	}
	return f.SliceSource.Next()
}
