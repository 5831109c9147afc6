package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/function"
	"rowexec/pkg/iterator"
	"rowexec/pkg/primitives"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// ============================================================================
// Helpers
// ============================================================================

func intConst(n int32) *Constant            { return NewConstant(types.NewInteger(n)) }
func strConst(s string) *Constant           { return NewConstant(types.NewVarchar(s)) }
func boolConst(t types.Trivalent) *Constant { return NewConstant(types.NewTrivalent(t)) }
func nullInt() *Constant                    { return NewConstant(types.NewNull(types.Integer())) }

func intRows(values ...any) []*tuple.Record {
	rows := make([]*tuple.Record, len(values))
	for i, v := range values {
		if v == nil {
			rows[i] = tuple.NewRecord([]types.Value{types.NewNull(types.Integer())})
			continue
		}
		rows[i] = tuple.NewRecord([]types.Value{types.NewInteger(int32(v.(int)))})
	}
	return rows
}

func intSource(values ...any) *countingPlan {
	schema := tuple.NewSchema(tuple.Column{Name: "v", Type: types.Integer()})
	return &countingPlan{SliceSource: iterator.NewSliceSource("sub", schema, intRows(values...))}
}

// countingPlan counts Next calls so memoisation can be observed.
type countingPlan struct {
	*iterator.SliceSource
	nexts int
}

func (c *countingPlan) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	c.nexts++
	return c.SliceSource.Next()
}

// filteredPlan keeps the child rows for which pred is TRUE.
type filteredPlan struct {
	*iterator.SliceSource
	pred Expression
}

func (f *filteredPlan) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	for {
		rec, cur, eof, err := f.SliceSource.Next()
		if eof || err != nil {
			return rec, cur, eof, err
		}
		v, err := f.pred.Evaluate(rec)
		if err != nil {
			return nil, iterator.NoCursor, false, err
		}
		if t, _ := truth(v); t == types.True {
			return rec, cur, false, nil
		}
	}
}

// countingExpr counts evaluations and returns a fixed value.
type countingExpr struct {
	Constant
	calls int
}

func (c *countingExpr) Evaluate(rec *tuple.Record) (types.Value, error) {
	c.calls++
	return c.Constant.Evaluate(rec)
}

func evalOK(t *testing.T, e Expression, rec *tuple.Record) types.Value {
	t.Helper()
	v, err := e.Evaluate(rec)
	require.NoError(t, err)
	return v
}

// ============================================================================
// Leaves and casts
// ============================================================================

func TestColumnValue(t *testing.T) {
	schema := tuple.NewSchema(
		tuple.Column{Name: "a", Table: "t", Type: types.Integer()},
		tuple.Column{Name: "b", Table: "t", Type: types.Varchar(10)},
	)
	rec := tuple.NewRecord([]types.Value{types.NewInteger(7), types.NewVarchar("x")})

	col, err := NewColumnValue(schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "x", evalOK(t, col, rec).String())
	assert.Equal(t, "t.b", col.String())
	assert.Equal(t, types.VarcharType, col.LogicalType().ID)

	_, err = NewColumnValue(schema, 5)
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))

	_, err = NewColumnRef("c", 9, types.Integer()).Evaluate(rec)
	assert.Error(t, err)
}

func TestColumnParam_Bind(t *testing.T) {
	p := NewColumnParam("k", 0, types.Integer())
	assert.False(t, p.Bound())
	assert.True(t, evalOK(t, p, nil).IsNull())

	require.NoError(t, p.Bind(tuple.NewRecord([]types.Value{types.NewInteger(3)})))
	assert.Equal(t, "3", evalOK(t, p, tuple.EmptyRecord()).String())

	require.NoError(t, p.BindValues([]types.Value{types.NewInteger(4)}))
	p.Reset()
	assert.Equal(t, "4", evalOK(t, p, nil).String(), "reset keeps the binding")

	assert.Error(t, p.BindValues(nil))
}

func TestCast(t *testing.T) {
	v := evalOK(t, NewCast(types.BigInt(), strConst("42")), nil)
	assert.Equal(t, types.BigIntType, v.TypeID())
	assert.Equal(t, "42", v.String())

	_, err := NewCast(types.Integer(), strConst("nope")).Evaluate(nil)
	assert.Error(t, err)

	v = evalOK(t, NewTryCast(types.Integer(), strConst("nope")), nil)
	assert.True(t, v.IsNull())
	assert.Equal(t, types.IntegerType, v.TypeID())

	_, err = NewCast(types.TinyInt(), intConst(1000)).Evaluate(nil)
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	assert.Equal(t, "TRY_CAST ( 'x' AS INTEGER )", NewTryCast(types.Integer(), strConst("x")).String())
}

// ============================================================================
// Comparison and arithmetic
// ============================================================================

func TestComparison(t *testing.T) {
	reg := function.NewRegistry()
	tests := []struct {
		op          string
		left, right Expression
		want        types.Trivalent
	}{
		{"=", intConst(1), intConst(1), types.True},
		{"<>", intConst(1), intConst(2), types.True},
		{"<", intConst(1), intConst(2), types.True},
		{"<=", intConst(2), intConst(2), types.True},
		{">", intConst(3), intConst(2), types.True},
		{">=", intConst(1), intConst(2), types.False},
		{"=", strConst("a"), strConst("b"), types.False},
		{"=", intConst(1), nullInt(), types.Unknown},
		{">", nullInt(), intConst(1), types.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			c, err := NewComparison(reg, tt.op, tt.left, tt.right)
			require.NoError(t, err)
			got, err := truth(evalOK(t, c, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparison_Errors(t *testing.T) {
	reg := function.NewRegistry()
	_, err := NewComparison(reg, "~", intConst(1), intConst(1))
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))

	// every kind widens to VARCHAR, so mixed operands still resolve
	c, err := NewComparison(reg, "=", NewConstant(types.NewDate(1)), NewConstant(types.NewReal(1)))
	require.NoError(t, err)
	assert.Equal(t, types.BooleanType, c.LogicalType().ID)
}

func TestMathBinary(t *testing.T) {
	reg := function.NewRegistry()
	m, err := NewMathBinary(reg, "+", intConst(2), intConst(3))
	require.NoError(t, err)
	assert.Equal(t, "5", evalOK(t, m, nil).String())
	assert.Equal(t, types.IntegerType, m.LogicalType().ID)

	m, err = NewMathBinary(reg, "*", intConst(2), nullInt())
	require.NoError(t, err)
	v := evalOK(t, m, nil)
	assert.True(t, v.IsNull())
	assert.Equal(t, types.IntegerType, v.TypeID(), "null keeps the result type")

	m, err = NewMathBinary(reg, "||", strConst("a"), strConst("b"))
	require.NoError(t, err)
	assert.Equal(t, "ab", evalOK(t, m, nil).String())

	_, err = NewMathBinary(reg, "+", NewConstant(types.NewDate(1)), NewConstant(types.NewDate(1)))
	assert.Error(t, err)
}

func TestMathUnary(t *testing.T) {
	reg := function.NewRegistry()
	assert.Equal(t, "-5", evalOK(t, NewMathUnary(reg, intConst(5)), nil).String())
	assert.True(t, evalOK(t, NewMathUnary(reg, nullInt()), nil).IsNull())

	p := NewColumnParam("p", 0, types.Param())
	require.NoError(t, p.BindValues([]types.Value{types.NewReal(1.5)}))
	assert.Equal(t, "-1.5", evalOK(t, NewMathUnary(reg, p), nil).String())

	_, err := NewMathUnary(reg, strConst("x")).Evaluate(nil)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))
}

func TestFunction(t *testing.T) {
	reg := function.NewRegistry()
	f, err := NewFunction(reg, "upper", []Expression{strConst("abc")})
	require.NoError(t, err)
	assert.Equal(t, "ABC", evalOK(t, f, nil).String())
	assert.Equal(t, "upper('abc')", f.String())

	f, err = NewFunction(reg, "concat", []Expression{strConst("a"), NewConstant(types.NewNull(types.Varchar(1))), strConst("b")})
	require.NoError(t, err)
	assert.Equal(t, "ab", evalOK(t, f, nil).String(), "null-aware bodies see nulls")

	f, err = NewFunction(reg, "abs", []Expression{nullInt()})
	require.NoError(t, err)
	assert.True(t, evalOK(t, f, nil).IsNull())

	_, err = NewFunction(reg, "no_such_fn", nil)
	assert.True(t, dberr.IsKind(err, dberr.KindNotImplemented))
}

// ============================================================================
// Three-valued logic
// ============================================================================

func TestLogicBinary_TruthTables(t *testing.T) {
	T, F, U := types.True, types.False, types.Unknown
	tests := []struct {
		op          LogicOp
		left, right types.Trivalent
		want        types.Trivalent
	}{
		{And, U, F, F},
		{And, U, T, U},
		{And, T, T, T},
		{And, F, U, F},
		{Or, U, T, T},
		{Or, U, F, U},
		{Or, F, F, F},
		{Or, T, U, T},
	}
	for _, tt := range tests {
		l, err := NewLogicBinary(tt.op, boolConst(tt.left), boolConst(tt.right))
		require.NoError(t, err)
		got, err := evalOK(t, l, nil).AsTrivalent()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.left, tt.op, tt.right)
	}

	_, err := NewLogicBinary(Not, boolConst(T), boolConst(T))
	assert.Error(t, err)
}

func TestLogicBinary_NullOperandIsUnknown(t *testing.T) {
	l, err := NewLogicBinary(And, nullInt(), boolConst(types.True))
	require.NoError(t, err)
	got, _ := evalOK(t, l, nil).AsTrivalent()
	assert.Equal(t, types.Unknown, got)

	l, err = NewLogicBinary(Or, nullInt(), boolConst(types.True))
	require.NoError(t, err)
	got, _ = evalOK(t, l, nil).AsTrivalent()
	assert.Equal(t, types.True, got)
}

func TestNot(t *testing.T) {
	for in, want := range map[types.Trivalent]types.Trivalent{
		types.True: types.False, types.False: types.True, types.Unknown: types.Unknown,
	} {
		got, _ := evalOK(t, NewNot(boolConst(in)), nil).AsTrivalent()
		assert.Equal(t, want, got)
	}
}

func TestConjunctive_StopsAtFalse(t *testing.T) {
	tail := &countingExpr{Constant: *boolConst(types.True)}
	c := NewConjunctive(boolConst(types.Unknown), boolConst(types.False), tail)
	got, _ := evalOK(t, c, nil).AsTrivalent()
	assert.Equal(t, types.False, got)
	assert.Equal(t, 0, tail.calls)

	c = NewConjunctive(boolConst(types.True), boolConst(types.Unknown), tail)
	got, _ = evalOK(t, c, nil).AsTrivalent()
	assert.Equal(t, types.Unknown, got)
	assert.Equal(t, 1, tail.calls)

	got, _ = evalOK(t, NewConjunctive(), nil).AsTrivalent()
	assert.Equal(t, types.True, got)
}

// ============================================================================
// CASE, IN, IS NULL
// ============================================================================

func TestCase(t *testing.T) {
	c := NewCase(types.Varchar(3), []WhenThen{
		{When: boolConst(types.Unknown), Then: strConst("unk")},
		{When: boolConst(types.False), Then: strConst("no")},
		{When: boolConst(types.True), Then: strConst("yes")},
	}, strConst("else"))
	assert.Equal(t, "yes", evalOK(t, c, nil).String())

	c = NewCase(types.Varchar(3), []WhenThen{{When: boolConst(types.False), Then: strConst("no")}}, nil)
	v := evalOK(t, c, nil)
	assert.True(t, v.IsNull())
	assert.Equal(t, types.VarcharType, v.TypeID())

	c = NewCase(types.Varchar(4), []WhenThen{{When: nullInt(), Then: strConst("no")}}, strConst("else"))
	assert.Equal(t, "else", evalOK(t, c, nil).String())
}

func TestIn(t *testing.T) {
	list := []Expression{intConst(1), intConst(2)}
	withNull := []Expression{intConst(1), nullInt()}
	tests := []struct {
		name string
		expr Expression
		want types.Trivalent
	}{
		{"hit", NewIn(intConst(2), list), types.True},
		{"miss", NewIn(intConst(3), list), types.False},
		{"miss with null", NewIn(intConst(3), withNull), types.Unknown},
		{"hit with null", NewIn(intConst(1), withNull), types.True},
		{"null probe", NewIn(nullInt(), list), types.Unknown},
		{"not in hit", NewNotIn(intConst(2), list), types.False},
		{"not in miss", NewNotIn(intConst(3), list), types.True},
		{"not in miss with null", NewNotIn(intConst(3), withNull), types.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := truth(evalOK(t, tt.expr, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNullTest(t *testing.T) {
	assert.Equal(t, "true", evalOK(t, NewIsNull(nullInt()), nil).String())
	assert.Equal(t, "false", evalOK(t, NewIsNull(intConst(1)), nil).String())
	assert.Equal(t, "true", evalOK(t, NewIsNotNull(intConst(1)), nil).String())
	assert.Equal(t, "false", evalOK(t, NewIsNotNull(nullInt()), nil).String())
	assert.Equal(t, "1 IS NOT NULL", NewIsNotNull(intConst(1)).String())
}

// ============================================================================
// LIKE / ILIKE / GLOB
// ============================================================================

func TestLike(t *testing.T) {
	tests := []struct {
		name    string
		kind    LikeKind
		target  string
		pattern string
		escape  string
		want    bool
	}{
		{"percent", Like, "hello", "h%o", "", true},
		{"underscore", Like, "hello", "h_llo", "", true},
		{"underscore one char", Like, "hllo", "h_llo", "", false},
		{"anchored", Like, "xhello", "h%", "", false},
		{"regex chars literal", Like, "a.c", "a.c", "", true},
		{"regex chars not wild", Like, "abc", "a.c", "", false},
		{"newline", Like, "a\nb", "a%b", "", true},
		{"escape percent", Like, "100%", `100\%`, `\`, true},
		{"escape percent miss", Like, "1000", `100\%`, `\`, false},
		{"custom escape", Like, "a_b", "a#_b", "#", true},
		{"case sensitive", Like, "Hello", "hello", "", false},
		{"not like", NotLike, "hello", "x%", "", true},
		{"ilike", ILike, "Hello", "hE%", "", true},
		{"not ilike", NotILike, "Hello", "hE%", "", false},
		{"glob star", Glob, "file.go", "*.go", "", true},
		{"glob question", Glob, "ab", "a?", "", true},
		{"glob class", Glob, "b1", "[abc][0-9]", "", true},
		{"glob negated class", Glob, "d1", "[!abc]1", "", true},
		{"glob case", Glob, "A.GO", "*.go", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var esc Expression
			if tt.escape != "" {
				esc = strConst(tt.escape)
			}
			l := NewLike(tt.kind, strConst(tt.target), strConst(tt.pattern), esc)
			got, err := evalOK(t, l, nil).AsBool()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLike_NullsAndErrors(t *testing.T) {
	v := evalOK(t, NewLike(Like, NewConstant(types.NewNull(types.Varchar(1))), strConst("%"), nil), nil)
	assert.True(t, v.IsNull())
	v = evalOK(t, NewLike(Like, strConst("a"), strConst("%"), NewConstant(types.NewNull(types.Varchar(1)))), nil)
	assert.True(t, v.IsNull())

	_, err := NewLike(Like, strConst("a"), strConst("a"), strConst("ab")).Evaluate(nil)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))

	_, err = NewLike(Like, strConst("a"), strConst(`a\`), strConst(`\`)).Evaluate(nil)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))
}

func TestParseLikeKind(t *testing.T) {
	for in, want := range map[string]LikeKind{
		"~~": Like, "!~~": NotLike, "~~*": ILike, "!~~*": NotILike, "~~~": Glob, "ilike": ILike,
	} {
		got, err := ParseLikeKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLikeKind("~")
	assert.Error(t, err)
}

// ============================================================================
// Subqueries
// ============================================================================

func TestExistsSubquery_Memoises(t *testing.T) {
	plan := intSource(1, 2)
	e := NewExistsSubquery(plan)
	assert.Equal(t, "true", evalOK(t, e, nil).String())
	assert.Equal(t, "true", evalOK(t, e, nil).String())
	assert.Equal(t, 1, plan.nexts)

	_, err := e.ReEvaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.nexts)

	e.Reset()
	evalOK(t, e, nil)
	assert.Equal(t, 3, plan.nexts)

	assert.Equal(t, "false", evalOK(t, NewExistsSubquery(intSource()), nil).String())
}

func TestScalarSubquery(t *testing.T) {
	plan := intSource(5, 6)
	s := NewScalarSubquery(plan)
	assert.Equal(t, "5", evalOK(t, s, nil).String(), "extra rows are accepted, first wins")
	calls := plan.nexts
	evalOK(t, s, nil)
	assert.Equal(t, calls, plan.nexts)
	assert.Equal(t, types.IntegerType, s.LogicalType().ID)

	v := evalOK(t, NewScalarSubquery(intSource()), nil)
	assert.True(t, v.IsNull())

	wide := iterator.NewSliceSource("wide", tuple.NewSchema(
		tuple.Column{Name: "a", Type: types.Integer()},
		tuple.Column{Name: "b", Type: types.Integer()},
	), nil)
	_, err := NewScalarSubquery(wide).Evaluate(nil)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))
}

func TestSubquery_SharedPlan(t *testing.T) {
	plan := intSource(1, 2, 3)

	scalar := NewScalarSubquery(plan)
	assert.Equal(t, "1", evalOK(t, scalar, nil).String())

	exists := NewExistsSubquery(plan)
	assert.Equal(t, "true", evalOK(t, exists, nil).String(), "scalar leaves the plan rewound")

	// Drain the plan from outside; every subquery still reads from the top.
	for {
		_, _, eof, err := plan.Next()
		require.NoError(t, err)
		if eof {
			break
		}
	}
	v, err := exists.ReEvaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, "true", v.String())

	v, err = scalar.ReEvaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	hit := NewAnySubquery(plan, intConst(3), primitives.Equals)
	got, err := truth(evalOK(t, hit, nil))
	require.NoError(t, err)
	assert.Equal(t, types.True, got)
}

func TestAnyAllSubquery(t *testing.T) {
	tests := []struct {
		name   string
		kind   SubqueryKind
		probe  Expression
		op     string
		values []any
		want   types.Trivalent
	}{
		{"any eq hit", Any, intConst(2), "=", []any{1, 2, 3}, types.True},
		{"any eq miss", Any, intConst(5), "=", []any{1, 2, 3}, types.False},
		{"any eq miss with null", Any, intConst(5), "=", []any{1, nil}, types.Unknown},
		{"any eq hit with null", Any, intConst(1), "=", []any{1, nil}, types.True},
		{"any gt", Any, intConst(2), ">", []any{1, 5}, types.True},
		{"any ne", Any, intConst(1), "<>", []any{1, 1}, types.False},
		{"any empty", Any, intConst(1), "=", nil, types.False},
		{"any null probe", Any, nullInt(), "=", []any{1}, types.Unknown},
		{"all gt", All, intConst(9), ">", []any{1, 5}, types.True},
		{"all gt miss", All, intConst(3), ">", []any{1, 5}, types.False},
		{"all gt with null", All, intConst(9), ">", []any{1, nil}, types.Unknown},
		{"all empty", All, intConst(1), "=", nil, types.True},
		{"all le", All, intConst(1), "<=", []any{1, 2}, types.True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewSubquery(tt.kind, intSource(tt.values...), tt.probe, tt.op)
			require.NoError(t, err)
			got, err := truth(evalOK(t, e, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewSubquery(Any, intSource(), intConst(1), "~")
	assert.Error(t, err)
}

func TestAnySubquery_MaterialisesOnce(t *testing.T) {
	plan := intSource(1, 2, 3)
	a := NewAnySubquery(plan, intConst(2), primitives.Equals)
	evalOK(t, a, nil)
	calls := plan.nexts
	evalOK(t, a, nil)
	assert.Equal(t, calls, plan.nexts)

	_, err := a.ReEvaluate(nil)
	require.NoError(t, err)
	assert.Greater(t, plan.nexts, calls)
}

func TestCorrelated_RebindsPerOuterRow(t *testing.T) {
	reg := function.NewRegistry()
	// inner: SELECT v FROM sub WHERE v > $outer
	outer := NewColumnParam("outer.k", 0, types.Integer())
	pred, err := NewComparison(reg, ">", NewColumnRef("v", 0, types.Integer()), outer)
	require.NoError(t, err)
	inner := &filteredPlan{SliceSource: intSource(1, 2, 3).SliceSource, pred: pred}

	e := NewCorrelated([]*ColumnParam{outer}, NewScalarSubquery(inner))
	row := func(k int32) *tuple.Record { return tuple.NewRecord([]types.Value{types.NewInteger(k)}) }

	assert.Equal(t, "2", evalOK(t, e, row(1)).String())
	assert.Equal(t, "3", evalOK(t, e, row(2)).String())
	assert.True(t, evalOK(t, e, row(3)).IsNull())

	exists := NewCorrelated([]*ColumnParam{outer}, NewExistsSubquery(inner))
	assert.Equal(t, "true", evalOK(t, exists, row(0)).String())
	assert.Equal(t, "false", evalOK(t, exists, row(3)).String())
}
