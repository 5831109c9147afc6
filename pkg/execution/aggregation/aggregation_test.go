package aggregation

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/execution/internal/testutil"
	"rowexec/pkg/expression"
	"rowexec/pkg/function"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// ============================================================================
// Helpers
// ============================================================================

func salesSchema() *tuple.Schema {
	return tuple.NewSchema(
		testutil.Col("k", types.Integer()),
		testutil.Col("x", types.Integer()),
		testutil.Col("s", types.Varchar(8)),
	)
}

func sales(t *testing.T, rows ...[]any) *iterator.SliceSource {
	return testutil.Source(t, "sales", salesSchema(), rows...)
}

func column(t *testing.T, slot int) expression.Expression {
	c, err := expression.NewColumnValue(salesSchema(), slot)
	require.NoError(t, err)
	return c
}

func call(name string, args ...expression.Expression) Call {
	return Call{Name: name, Args: args}
}

func distinctCall(name string, args ...expression.Expression) Call {
	return Call{Name: name, Args: args, Distinct: true}
}

func bigint(n int64) expression.Expression { return expression.NewConstant(types.NewBigInt(n)) }

func aggregate(t *testing.T, src iterator.PhysicalPlan, groupBy []expression.Expression, calls ...Call) [][]any {
	a, err := NewAggregateExec(testutil.Context(t), src, groupBy, calls, nil)
	require.NoError(t, err)
	return testutil.Drain(t, a)
}

// ============================================================================
// AggregateExec
// ============================================================================

func TestAggregateExec_GroupByCount(t *testing.T) {
	src := sales(t, []any{1, 10, "a"}, []any{2, 20, "b"}, []any{1, 30, "c"})

	got := aggregate(t, src, []expression.Expression{column(t, 0)}, Call{Name: CountStar})

	assert.Equal(t, [][]any{{int64(1), int64(2)}, {int64(2), int64(1)}}, got)
}

func TestAggregateExec_EmptyInputWithoutGroupBy(t *testing.T) {
	got := aggregate(t, sales(t), nil,
		Call{Name: CountStar},
		call(Count, column(t, 1)),
		call(Sum, column(t, 1)),
		call(Avg, column(t, 1)),
		call(Max, column(t, 1)),
		call(Min, column(t, 1)),
	)

	assert.Equal(t, [][]any{{int64(0), int64(0), nil, nil, nil, nil}}, got)
}

func TestAggregateExec_EmptyInputWithGroupBy(t *testing.T) {
	got := aggregate(t, sales(t), []expression.Expression{column(t, 0)}, Call{Name: CountStar})
	assert.Empty(t, got)
}

func TestAggregateExec_Ungrouped(t *testing.T) {
	src := sales(t,
		[]any{1, 3, "b"},
		[]any{1, nil, nil},
		[]any{1, 1, "a"},
		[]any{1, 3, "c"},
	)

	tests := []struct {
		name string
		call Call
		want any
	}{
		{"count star counts nulls", Call{Name: CountStar}, int64(4)},
		{"count skips nulls", call(Count, column(t, 1)), int64(3)},
		{"count distinct", distinctCall(Count, column(t, 1)), int64(2)},
		{"sum", call(Sum, column(t, 1)), int64(7)},
		{"sum distinct", distinctCall(Sum, column(t, 1)), int64(4)},
		{"avg", call(Avg, column(t, 1)), 7.0 / 3.0},
		{"avg distinct", distinctCall(Avg, column(t, 1)), 2.0},
		{"max", call(Max, column(t, 1)), int64(3)},
		{"min", call(Min, column(t, 1)), int64(1)},
		{"max string", call(Max, column(t, 2)), "c"},
		{"min string", call(Min, column(t, 2)), "a"},
		{"mode", call(Mode, column(t, 1)), int64(3)},
		{"variance", call(Variance, column(t, 1)), 8.0 / 9.0},
		{"variance distinct", distinctCall(Variance, column(t, 1)), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.ResetNext()
			got := aggregate(t, src, nil, tt.call)
			require.Len(t, got, 1)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, got[0][0], 1e-9)
				return
			}
			assert.Equal(t, tt.want, got[0][0])
		})
	}
}

func TestAggregateExec_ModeTiePrefersFirstSeen(t *testing.T) {
	got := aggregate(t, sales(t, []any{1, 5, "a"}, []any{1, 2, "a"}, []any{1, 2, "a"}, []any{1, 5, "a"}),
		nil, call(Mode, column(t, 1)))
	assert.Equal(t, [][]any{{int64(5)}}, got)
}

func TestAggregateExec_TopAndBottomExpandRows(t *testing.T) {
	src := sales(t,
		[]any{1, 5, "a"},
		[]any{1, 1, "b"},
		[]any{2, 9, "c"},
		[]any{1, 7, "d"},
		[]any{2, nil, "e"},
	)

	t.Run("top with scalar aggregate", func(t *testing.T) {
		src.ResetNext()
		got := aggregate(t, src, nil, call(Top, column(t, 1), bigint(2)), Call{Name: CountStar})
		assert.Equal(t, [][]any{{int64(9), int64(5)}, {int64(7), int64(5)}}, got)
	})

	t.Run("bottom per group", func(t *testing.T) {
		src.ResetNext()
		got := aggregate(t, src, []expression.Expression{column(t, 0)}, call(Bottom, column(t, 1), bigint(2)))
		assert.Equal(t, [][]any{
			{int64(1), int64(1)},
			{int64(1), int64(5)},
			{int64(2), int64(9)},
		}, got)
	})

	t.Run("default count is one", func(t *testing.T) {
		src.ResetNext()
		got := aggregate(t, src, nil, call(Top, column(t, 1)))
		assert.Equal(t, [][]any{{int64(9)}}, got)
	})

	t.Run("zero count yields null", func(t *testing.T) {
		src.ResetNext()
		got := aggregate(t, src, nil, call(Top, column(t, 1), bigint(0)))
		assert.Equal(t, [][]any{{nil}}, got)
	})
}

func TestAggregateExec_TopCountValidation(t *testing.T) {
	tests := []struct {
		name  string
		count expression.Expression
		kind  dberr.ErrorKind
	}{
		{"string count", expression.NewConstant(types.NewVarchar("2")), dberr.KindMismatchType},
		{"real count", expression.NewConstant(types.NewReal(2)), dberr.KindMismatchType},
		{"null count", expression.NewConstant(types.NewNull(types.BigInt())), dberr.KindMismatchType},
		{"negative count", bigint(-1), dberr.KindOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAggregateExec(testutil.Context(t), sales(t, []any{1, 1, "a"}), nil,
				[]Call{call(Top, column(t, 1), tt.count)}, nil)
			require.NoError(t, err)

			_, _, _, err = a.Next()
			require.Error(t, err)
			assert.Equal(t, tt.kind, dberr.KindOf(err))
		})
	}
}

func TestAggregateExec_SumOverflow(t *testing.T) {
	schema := tuple.NewSchema(testutil.Col("n", types.BigInt()))
	src := testutil.Source(t, "big", schema, []any{int64(math.MaxInt64)}, []any{1})
	n, err := expression.NewColumnValue(schema, 0)
	require.NoError(t, err)

	a, err := NewAggregateExec(testutil.Context(t), src, nil, []Call{call(Sum, n)}, nil)
	require.NoError(t, err)
	_, _, _, err = a.Next()
	require.Error(t, err)
	assert.Equal(t, dberr.KindOutOfRange, dberr.KindOf(err))
}

func TestAggregateExec_Validation(t *testing.T) {
	ctx := testutil.Context(t)
	tests := []struct {
		name   string
		calls  []Call
		schema *tuple.Schema
		kind   dberr.ErrorKind
	}{
		{"unknown aggregate", []Call{call("median", column(t, 1))}, nil, dberr.KindNotImplemented},
		{"mode distinct", []Call{distinctCall(Mode, column(t, 1))}, nil, dberr.KindNotImplemented},
		{"sum of strings", []Call{call(Sum, column(t, 2))}, nil, dberr.KindMismatchType},
		{"missing argument", []Call{{Name: Sum}}, nil, dberr.KindPlanner},
		{"extra argument", []Call{call(Max, column(t, 1), bigint(2))}, nil, dberr.KindPlanner},
		{
			"schema width",
			[]Call{{Name: CountStar}},
			tuple.NewSchema(testutil.Col("a", types.BigInt()), testutil.Col("b", types.BigInt())),
			dberr.KindPlanner,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregateExec(ctx, sales(t), nil, tt.calls, tt.schema)
			require.Error(t, err)
			assert.Equal(t, tt.kind, dberr.KindOf(err))
		})
	}
}

func TestAggregateExec_SchemaAndString(t *testing.T) {
	a, err := NewAggregateExec(testutil.Context(t), sales(t), []expression.Expression{column(t, 0)},
		[]Call{{Name: CountStar}, call(Avg, column(t, 1))}, nil)
	require.NoError(t, err)

	schema := a.GetSchema()
	require.Equal(t, 3, schema.NumColumns())
	assert.Equal(t, types.BigIntType, schema.Columns()[1].Type.ID)
	assert.Equal(t, types.RealType, schema.Columns()[2].Type.ID)
	assert.Contains(t, a.String(), "GROUP BY")
}

func TestAggregateExec_ResetNext(t *testing.T) {
	ctx := testutil.Context(t)
	child := testutil.Counting(sales(t, []any{1, 10, "a"}, []any{2, 20, "b"}, []any{1, 30, "c"}))
	a, err := NewAggregateExec(ctx, child, []expression.Expression{column(t, 0)},
		[]Call{call(Sum, column(t, 1))}, nil)
	require.NoError(t, err)

	_, _, eof, err := a.Next()
	require.NoError(t, err)
	require.False(t, eof)
	assert.NotZero(t, ctx.Memory().Used())

	a.ResetNext()
	a.ResetNext()
	assert.Zero(t, ctx.Memory().Used())
	assert.Equal(t, 2, child.Resets)

	want := [][]any{{int64(1), int64(40)}, {int64(2), int64(20)}}
	assert.Equal(t, want, testutil.Drain(t, a))
	assert.Zero(t, ctx.Memory().Used())

	a.ResetNext()
	assert.Equal(t, want, testutil.Drain(t, a))
}

// ============================================================================
// Aggregate functions
// ============================================================================

func TestNewAggregate_ResultTypes(t *testing.T) {
	reg := function.NewRegistry()
	tests := []struct {
		name string
		arg  types.LogicalType
		want types.TypeID
	}{
		{Count, types.Varchar(4), types.BigIntType},
		{Sum, types.SmallInt(), types.BigIntType},
		{Sum, types.UInt32(), types.UInt64Type},
		{Sum, types.Real(), types.RealType},
		{Sum, types.Decimal(10, 2), types.DecimalType},
		{Avg, types.Integer(), types.RealType},
		{Max, types.Date(), types.DateType},
		{Top, types.Varchar(4), types.VarcharType},
		{Variance, types.Integer(), types.RealType},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.arg.String(), func(t *testing.T) {
			agg, err := NewAggregate(reg, tt.name, tt.arg, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, agg.ResultType().ID)
		})
	}
}

func TestSumAggregate_Decimal(t *testing.T) {
	agg, err := NewAggregate(function.NewRegistry(), "SUM", types.Decimal(6, 2), false)
	require.NoError(t, err)

	st := agg.NewState()
	for _, s := range []string{"1.25", "2.50", "0.05"} {
		require.NoError(t, agg.Accumulate(types.MustDecimal(s, 6, 2), st))
	}
	res, err := agg.Final(st)
	require.NoError(t, err)
	assert.False(t, res.IsList)

	d, err := res.Value.AsDecimal()
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("3.80")), "got %s", d)
	assert.Equal(t, uint8(2), res.Value.Type().Scale)
}

func TestAggregate_DistinctRetainsMemory(t *testing.T) {
	agg, err := NewAggregate(function.NewRegistry(), Count, types.BigInt(), true)
	require.NoError(t, err)

	st := agg.NewState()
	require.NoError(t, agg.Accumulate(types.NewBigInt(1), st))
	first := st.Retained()
	require.NoError(t, agg.Accumulate(types.NewBigInt(1), st))

	assert.Positive(t, first)
	assert.Equal(t, first, st.Retained(), "duplicate values are not retained twice")
}
