package join

import (
	"errors"
	"testing"

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

func leftSchema() *tuple.Schema {
	return tuple.NewSchema(
		testutil.Col("id", types.Integer()),
		testutil.Col("name", types.Varchar(8)),
	)
}

func rightSchema() *tuple.Schema {
	return tuple.NewSchema(
		testutil.Col("rid", types.BigInt()),
		testutil.Col("val", types.Varchar(8)),
	)
}

func lefts(t *testing.T, rows ...[]any) *iterator.SliceSource {
	return testutil.Source(t, "l", leftSchema(), rows...)
}

func rights(t *testing.T, rows ...[]any) *iterator.SliceSource {
	return testutil.Source(t, "r", rightSchema(), rows...)
}

// joinedCol references a column of the concatenated left ++ right row.
func joinedCol(t *testing.T, slot int) expression.Expression {
	c, err := expression.NewColumnValue(leftSchema().Concat(rightSchema()), slot)
	require.NoError(t, err)
	return c
}

func valEquals(t *testing.T, s string) expression.Expression {
	c, err := expression.NewComparison(function.NewRegistry(), "=", joinedCol(t, 3),
		expression.NewConstant(types.NewVarchar(s)))
	require.NoError(t, err)
	return c
}

func idEqualsRid(t *testing.T) expression.Expression {
	c, err := expression.NewComparison(function.NewRegistry(), "=",
		expression.NewCast(types.BigInt(), joinedCol(t, 0)), joinedCol(t, 2))
	require.NoError(t, err)
	return c
}

// ============================================================================
// JoinType
// ============================================================================

func TestJoinType_String(t *testing.T) {
	assert.Equal(t, "LEFT", LeftJoin.String())
	assert.Equal(t, "ANTI", AntiJoin.String())
	assert.Equal(t, "JoinType(42)", JoinType(42).String())
}

// ============================================================================
// HashJoinExec
// ============================================================================

func TestHashJoinExec(t *testing.T) {
	tests := []struct {
		name     string
		joinType JoinType
		left     [][]any
		right    [][]any
		pred     func(t *testing.T) expression.Expression
		want     [][]any
	}{
		{
			name:     "left join pads unmatched rows",
			joinType: LeftJoin,
			left:     [][]any{{1, "a"}, {2, "b"}},
			right:    [][]any{{1, "x"}},
			want:     [][]any{{int64(1), "a", int64(1), "x"}, {int64(2), "b", nil, nil}},
		},
		{
			name:     "inner join drops unmatched rows",
			joinType: CrossJoin,
			left:     [][]any{{1, "a"}, {2, "b"}, {3, "c"}},
			right:    [][]any{{3, "z"}, {1, "x"}, {1, "y"}},
			want: [][]any{
				{int64(1), "a", int64(1), "x"},
				{int64(1), "a", int64(1), "y"},
				{int64(3), "c", int64(3), "z"},
			},
		},
		{
			name:     "null keys never match",
			joinType: LeftJoin,
			left:     [][]any{{nil, "n"}, {1, "a"}},
			right:    [][]any{{nil, "q"}, {1, "x"}},
			want:     [][]any{{nil, "n", nil, nil}, {int64(1), "a", int64(1), "x"}},
		},
		{
			name:     "null keys dropped from inner join",
			joinType: CrossJoin,
			left:     [][]any{{nil, "n"}},
			right:    [][]any{{nil, "q"}},
			want:     [][]any{},
		},
		{
			name:     "outer row pads exactly once when no bucket row passes",
			joinType: LeftJoin,
			left:     [][]any{{1, "a"}},
			right:    [][]any{{1, "x"}, {1, "y"}, {1, "w"}},
			pred:     func(t *testing.T) expression.Expression { return valEquals(t, "z") },
			want:     [][]any{{int64(1), "a", nil, nil}},
		},
		{
			name:     "residual predicate filters bucket rows",
			joinType: LeftJoin,
			left:     [][]any{{1, "a"}},
			right:    [][]any{{1, "x"}, {1, "y"}},
			pred:     func(t *testing.T) expression.Expression { return valEquals(t, "y") },
			want:     [][]any{{int64(1), "a", int64(1), "y"}},
		},
		{
			name:     "right join keeps every right row",
			joinType: RightJoin,
			left:     [][]any{{1, "a"}},
			right:    [][]any{{1, "x"}, {2, "y"}, {nil, "n"}},
			want: [][]any{
				{int64(1), "a", int64(1), "x"},
				{nil, nil, int64(2), "y"},
				{nil, nil, nil, "n"},
			},
		},
		{
			name:     "empty build side",
			joinType: LeftJoin,
			left:     [][]any{{1, "a"}},
			right:    nil,
			want:     [][]any{{int64(1), "a", nil, nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pred expression.Expression
			if tt.pred != nil {
				pred = tt.pred(t)
			}
			h, err := NewHashJoinExec(testutil.Context(t), tt.joinType,
				lefts(t, tt.left...), rights(t, tt.right...), []int{0}, []int{0}, pred)
			require.NoError(t, err)

			assert.Equal(t, tt.want, testutil.Drain(t, h))
			assert.Equal(t, 4, h.GetSchema().NumColumns())
		})
	}
}

func TestHashJoinExec_ResetNextIsIdempotent(t *testing.T) {
	ctx := testutil.Context(t)
	left := testutil.Counting(lefts(t, []any{1, "a"}, []any{2, "b"}))
	h, err := NewHashJoinExec(ctx, LeftJoin, left, rights(t, []any{1, "x"}, []any{2, "y"}),
		[]int{0}, []int{0}, nil)
	require.NoError(t, err)

	_, _, eof, err := h.Next()
	require.NoError(t, err)
	require.False(t, eof)
	assert.NotZero(t, ctx.Memory().Used())

	h.ResetNext()
	h.ResetNext()
	assert.Zero(t, ctx.Memory().Used())
	assert.Equal(t, 2, left.Resets)

	want := [][]any{{int64(1), "a", int64(1), "x"}, {int64(2), "b", int64(2), "y"}}
	assert.Equal(t, want, testutil.Drain(t, h))
	assert.Zero(t, ctx.Memory().Used(), "hash table released at end of stream")

	// exhausted until the next reset
	_, _, eof, err = h.Next()
	require.NoError(t, err)
	assert.True(t, eof)

	h.ResetNext()
	assert.Equal(t, want, testutil.Drain(t, h))
}

func TestHashJoinExec_Validation(t *testing.T) {
	ctx := testutil.Context(t)

	_, err := NewHashJoinExec(ctx, SemiJoin, lefts(t), rights(t), []int{0}, []int{0}, nil)
	require.Error(t, err)
	assert.Equal(t, dberr.KindFatal, dberr.KindOf(err))
	assert.Contains(t, err.Error(), "Unsupported join type")

	_, err = NewHashJoinExec(ctx, FullJoin, lefts(t), rights(t), []int{0}, []int{0}, nil)
	assert.True(t, dberr.IsKind(err, dberr.KindFatal))

	_, err = NewHashJoinExec(ctx, CrossJoin, lefts(t), rights(t), []int{0, 1}, []int{0}, nil)
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))

	_, err = NewHashJoinExec(ctx, CrossJoin, lefts(t), rights(t), []int{5}, []int{0}, nil)
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))

	_, err = NewHashJoinExec(ctx, CrossJoin, nil, rights(t), nil, nil, nil)
	assert.True(t, dberr.IsKind(err, dberr.KindFatal))
}

func TestHashJoinExec_MemoryLimit(t *testing.T) {
	h, err := NewHashJoinExec(testutil.LimitedContext(t, 8), CrossJoin,
		lefts(t, []any{1, "a"}), rights(t, []any{1, "xxxx"}, []any{2, "yyyy"}),
		[]int{0}, []int{0}, nil)
	require.NoError(t, err)

	_, _, _, err = h.Next()
	require.Error(t, err)
	assert.True(t, dberr.IsMemoryLimit(err))
}

func TestHashJoinExec_ProbeErrorPropagates(t *testing.T) {
	boom := errors.New("disk gone")
	left := &testutil.FailingPlan{SliceSource: lefts(t, []any{1, "a"}, []any{2, "b"}), After: 1, Err: boom}
	h, err := NewHashJoinExec(testutil.Context(t), LeftJoin, left, rights(t, []any{1, "x"}),
		[]int{0}, []int{0}, nil)
	require.NoError(t, err)

	_, _, eof, err := h.Next()
	require.NoError(t, err)
	require.False(t, eof)

	_, _, _, err = h.Next()
	assert.ErrorIs(t, err, boom)
}

// ============================================================================
// NestedLoopJoinExec
// ============================================================================

func TestNestedLoopJoinExec(t *testing.T) {
	leftRows := [][]any{{1, "a"}, {2, "b"}, {3, "c"}}
	rightRows := [][]any{{1, "x"}, {3, "y"}, {3, "z"}}

	tests := []struct {
		name     string
		joinType JoinType
		pred     bool
		want     [][]any
		width    int
	}{
		{
			name:     "inner on condition",
			joinType: CrossJoin,
			pred:     true,
			want: [][]any{
				{int64(1), "a", int64(1), "x"},
				{int64(3), "c", int64(3), "y"},
				{int64(3), "c", int64(3), "z"},
			},
			width: 4,
		},
		{
			name:     "left pads unmatched",
			joinType: LeftJoin,
			pred:     true,
			want: [][]any{
				{int64(1), "a", int64(1), "x"},
				{int64(2), "b", nil, nil},
				{int64(3), "c", int64(3), "y"},
				{int64(3), "c", int64(3), "z"},
			},
			width: 4,
		},
		{
			name:     "semi emits each matching left row once",
			joinType: SemiJoin,
			pred:     true,
			want:     [][]any{{int64(1), "a"}, {int64(3), "c"}},
			width:    2,
		},
		{
			name:     "anti emits left rows without a match",
			joinType: AntiJoin,
			pred:     true,
			want:     [][]any{{int64(2), "b"}},
			width:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pred expression.Expression
			if tt.pred {
				pred = idEqualsRid(t)
			}
			n, err := NewNestedLoopJoinExec(testutil.Context(t), tt.joinType,
				lefts(t, leftRows...), rights(t, rightRows...), pred)
			require.NoError(t, err)

			assert.Equal(t, tt.want, testutil.Drain(t, n))
			assert.Equal(t, tt.width, n.GetSchema().NumColumns())

			n.ResetNext()
			assert.Equal(t, tt.want, testutil.Drain(t, n))
		})
	}
}

func TestNestedLoopJoinExec_CartesianProduct(t *testing.T) {
	n, err := NewNestedLoopJoinExec(testutil.Context(t), CrossJoin,
		lefts(t, []any{1, "a"}, []any{2, "b"}), rights(t, []any{7, "x"}, []any{8, "y"}), nil)
	require.NoError(t, err)

	assert.Len(t, testutil.Drain(t, n), 4)
}

func TestNestedLoopJoinExec_UnknownPredicateIsNotAMatch(t *testing.T) {
	// id = rid is UNKNOWN for the null left key, so ANTI keeps it.
	n, err := NewNestedLoopJoinExec(testutil.Context(t), AntiJoin,
		lefts(t, []any{nil, "n"}, []any{1, "a"}), rights(t, []any{1, "x"}), idEqualsRid(t))
	require.NoError(t, err)

	assert.Equal(t, [][]any{{nil, "n"}}, testutil.Drain(t, n))
}

func TestNestedLoopJoinExec_Validation(t *testing.T) {
	_, err := NewNestedLoopJoinExec(testutil.Context(t), RightJoin, lefts(t), rights(t), nil)
	require.Error(t, err)
	assert.Equal(t, dberr.KindFatal, dberr.KindOf(err))
}
