package types

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberr "rowexec/pkg/error"
)

// ============================================================================
// Null handling
// ============================================================================

func TestValue_NullKeepsType(t *testing.T) {
	v := NewNull(Decimal(10, 2))
	assert.True(t, v.IsNull())
	assert.True(t, v.Type().Equals(Decimal(10, 2)))
	assert.Equal(t, 0, v.Size())
	assert.Nil(t, v.RawBytes())
}

func TestValue_UnknownBooleanIsNull(t *testing.T) {
	assert.True(t, NewTrivalent(Unknown).IsNull())
	assert.False(t, NewTrivalent(False).IsNull())
}

func TestValue_CastAsNull(t *testing.T) {
	_, err := NewNull(Integer()).AsInt64()
	require.Error(t, err)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))
	assert.Contains(t, err.Error(), "null can't use CastAs")
}

// ============================================================================
// Comparison
// ============================================================================

func TestValue_CompareAgainstNullIsUnknown(t *testing.T) {
	values := []Value{
		NewInteger(1), NewBigInt(-7), NewUInt64(9), NewReal(1.5),
		NewVarchar("a"), NewDate(10), MustDecimal("1.25", 5, 2), NewBoolean(true),
	}
	for _, v := range values {
		null := NewNull(v.Type())
		eq, err := v.Equal(null)
		require.NoError(t, err)
		assert.Equal(t, Unknown, eq, v.String())

		lt, err := v.LessThan(null)
		require.NoError(t, err)
		assert.Equal(t, Unknown, lt, v.String())

		lt, err = null.LessThan(v)
		require.NoError(t, err)
		assert.Equal(t, Unknown, lt, v.String())

		le, err := v.LessThanOrEqual(null)
		require.NoError(t, err)
		assert.Equal(t, Unknown, le, v.String())
	}
}

func TestValue_Trichotomy(t *testing.T) {
	pairs := [][2]Value{
		{NewInteger(1), NewInteger(2)},
		{NewInteger(5), NewBigInt(5)},
		{NewBigInt(-1), NewUInt64(math.MaxUint64)},
		{NewUInt32(7), NewSmallInt(-7)},
		{NewReal(1.5), NewInteger(1)},
		{MustDecimal("3.14", 5, 2), NewReal(3.14)},
		{MustDecimal("10.00", 5, 2), NewInteger(10)},
		{NewVarchar("abc"), NewVarchar("abd")},
		{NewDate(1), NewTimestamp(TimestampMicros(microsPerDay))},
		{NewBoolean(true), NewBoolean(false)},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		eq, err := a.Equal(b)
		require.NoError(t, err)
		lt, err := a.LessThan(b)
		require.NoError(t, err)
		gt, err := b.LessThan(a)
		require.NoError(t, err)

		trues := 0
		for _, r := range []Trivalent{eq, lt, gt} {
			if r == True {
				trues++
			}
		}
		assert.Equal(t, 1, trues, "%s vs %s", a, b)
	}
}

func TestValue_CompareFloatSpecials(t *testing.T) {
	nan := NewReal(math.NaN())
	eq, err := nan.Equal(NewReal(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, True, eq)

	lt, err := NewReal(math.Inf(1)).LessThan(nan)
	require.NoError(t, err)
	assert.Equal(t, True, lt)

	lt, err = NewReal(math.Inf(-1)).LessThan(NewReal(-1e300))
	require.NoError(t, err)
	assert.Equal(t, True, lt)

	eq, err = NewReal(0.1 + 0.2).Equal(NewReal(0.3))
	require.NoError(t, err)
	assert.Equal(t, True, eq)
}

func TestSortCompare_FloatsAreExact(t *testing.T) {
	a := NewReal(1)
	b := NewReal(math.Nextafter(1, 2))

	r, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, Equal, r)

	assert.Equal(t, Less, SortCompare(a, b))
	assert.Equal(t, Greater, SortCompare(b, a))
	assert.Equal(t, Equal, SortCompare(NewReal(2), NewInteger(2)))
	assert.Equal(t, Less, SortCompare(NewReal(1.5), NewInteger(2)))
	assert.Equal(t, Equal, SortCompare(NewReal(math.NaN()), NewReal(math.NaN())))
}

func TestValue_CompareNumberWithBadString(t *testing.T) {
	lt, err := NewInteger(10).LessThan(NewVarchar("not a number"))
	require.NoError(t, err)
	assert.Equal(t, True, lt)

	eq, err := NewInteger(10).Equal(NewVarchar("10"))
	require.NoError(t, err)
	assert.Equal(t, True, eq)
}

func TestValue_CompareIncomparable(t *testing.T) {
	_, err := NewDate(1).Equal(NewReal(1))
	require.Error(t, err)
	assert.True(t, dberr.IsKind(err, dberr.KindExecutor))
}

// ============================================================================
// Accessors and casts
// ============================================================================

func TestValue_AsInt64Range(t *testing.T) {
	_, err := NewUInt64(math.MaxUint64).AsInt64()
	require.Error(t, err)
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	_, err = NewBigInt(math.MaxInt32 + 1).AsInt32()
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	_, err = NewInteger(-1).AsUint64()
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	n, err := NewVarchar(" 42 ").AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = NewDate(3).AsFloat64()
	assert.True(t, dberr.IsKind(err, dberr.KindMismatchType))
}

func TestCastValue(t *testing.T) {
	tests := []struct {
		name     string
		in       Value
		target   LogicalType
		expected string
		kind     dberr.ErrorKind
	}{
		{"int to bigint", NewInteger(7), BigInt(), "7", dberr.KindUnknown},
		{"bigint to tinyint overflow", NewBigInt(300), TinyInt(), "", dberr.KindOutOfRange},
		{"negative to uint32", NewInteger(-3), UInt32(), "", dberr.KindOutOfRange},
		{"string to integer", NewVarchar("12"), Integer(), "12", dberr.KindUnknown},
		{"bad string to integer", NewVarchar("x"), Integer(), "", dberr.KindMismatchType},
		{"real to decimal rounds", NewReal(1.005), Decimal(5, 2), "1.01", dberr.KindUnknown},
		{"decimal overflow", MustDecimal("12345.6", 8, 1), Decimal(4, 1), "", dberr.KindDecimal},
		{"bad string to decimal", NewVarchar("abc"), Decimal(4, 1), "", dberr.KindDecimal},
		{"decimal to varchar", MustDecimal("1.5", 4, 2), Varchar(10), "1.50", dberr.KindUnknown},
		{"string to date", NewVarchar("2024-02-29"), Date(), "2024-02-29", dberr.KindUnknown},
		{"date to timestamp", NewDate(0), Timestamp(), "1970-01-01 00:00:00", dberr.KindUnknown},
		{"boolean to integer", NewBoolean(true), Integer(), "1", dberr.KindUnknown},
		{"string to boolean", NewVarchar("no"), Boolean(), "false", dberr.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CastValue(tt.in, tt.target)
			if tt.kind != dberr.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.kind, dberr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target.ID, out.TypeID())
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestCastValue_UnconstrainedNumber(t *testing.T) {
	number := NewLogicalType(NumberType)
	tests := []struct {
		name     string
		in       Value
		expected string
		scale    uint8
	}{
		{"real keeps fraction", NewReal(1.25), "1.25", 2},
		{"integer", NewInteger(7), "7", 0},
		{"string", NewVarchar("-0.125"), "-0.125", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CastValue(tt.in, number)
			require.NoError(t, err)
			assert.Equal(t, NumberType, out.TypeID())
			assert.Equal(t, tt.expected, out.String())
			assert.Equal(t, tt.scale, out.Type().Scale)
		})
	}
}

func TestCastValue_NullBecomesTypedNull(t *testing.T) {
	out, err := CastValue(NewNull(Integer()), Varchar(5))
	require.NoError(t, err)
	assert.True(t, out.IsNull())
	assert.Equal(t, VarcharType, out.TypeID())
}

func TestTryCast(t *testing.T) {
	_, ok := TryCast(NewVarchar("oops"), BigInt())
	assert.False(t, ok)

	v, ok := TryCast(NewVarchar("9"), BigInt())
	assert.True(t, ok)
	assert.Equal(t, "9", v.String())
}

func TestNewDecimal(t *testing.T) {
	v, err := NewDecimal(decimal.RequireFromString("3.14159"), 6, 3)
	require.NoError(t, err)
	assert.Equal(t, "3.142", v.String())

	_, err = NewDecimal(decimal.RequireFromString("123.4"), 3, 1)
	require.Error(t, err)
	assert.True(t, dberr.IsKind(err, dberr.KindDecimal))
}

func TestNewHugeInt(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 127)
	_, err := NewHugeInt(limit)
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	v, err := NewHugeInt(new(big.Int).Neg(limit))
	require.NoError(t, err)
	assert.Equal(t, "-"+limit.String(), v.String())
}

func TestNegate(t *testing.T) {
	v, err := Negate(NewUInt32(5))
	require.NoError(t, err)
	assert.Equal(t, BigIntType, v.TypeID())
	assert.Equal(t, "-5", v.String())

	_, err = Negate(NewInteger(math.MinInt32))
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	_, err = Negate(NewBigInt(math.MinInt64))
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))
}

// ============================================================================
// Encoding
// ============================================================================

func TestValue_RawBytesRoundTrip(t *testing.T) {
	huge, err := NewHugeInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(3), 100)))
	require.NoError(t, err)

	values := []Value{
		NewBoolean(true), NewTinyInt(-5), NewSmallInt(300), NewInteger(-70000),
		NewBigInt(math.MinInt64), NewUTinyInt(200), NewUSmallInt(60000),
		NewUInt32(math.MaxUint32), NewUInt64(math.MaxUint64), huge,
		NewReal(-2.5), MustDecimal("-12.345", 10, 3), MustDecimal("0", 4, 2),
		NewDate(-365), NewTimestamp(1_700_000_000_123_456),
		NewVarchar("héllo"), NewVarchar(""), NewBlob([]byte{0, 1, 2}),
	}
	for _, v := range values {
		raw := v.RawBytes()
		assert.Len(t, raw, v.Size(), v.Type().String())

		back, err := DecodeValue(v.Type(), raw, false)
		require.NoError(t, err)
		assert.True(t, v.Identical(back), "%s: %s != %s", v.Type(), v, back)
	}
}

// ============================================================================
// Types
// ============================================================================

func TestLogicalType_Equals(t *testing.T) {
	assert.True(t, Integer().Equals(Integer()))
	assert.False(t, Varchar(10).Equals(Varchar(20)))
	assert.False(t, Decimal(10, 2).Equals(Decimal(10, 3)))
	assert.True(t, Decimal(10, 2).Equals(Decimal(10, 2)))
	assert.False(t, Integer().Equals(BigInt()))
}

func TestCompatibleType(t *testing.T) {
	tests := []struct {
		name        string
		left, right LogicalType
		expected    LogicalType
	}{
		{"int and bigint", Integer(), BigInt(), BigInt()},
		{"bigint and uint64 avoid hugeint", BigInt(), UInt64(), Real()},
		{"int and decimal", Integer(), Decimal(5, 2), Decimal(12, 2)},
		{"param takes other side", Param(), Date(), Date()},
		{"int and varchar widens", Integer(), Varchar(5), Varchar(1024)},
		{"two decimals", Decimal(5, 2), Decimal(6, 4), Decimal(7, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompatibleType(tt.left, tt.right)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equals(got), "got %s", got)
		})
	}
}

func TestParseLogicalType(t *testing.T) {
	lt, err := ParseLogicalType("decimal(10, 2)")
	require.NoError(t, err)
	assert.True(t, Decimal(10, 2).Equals(lt))

	lt, err = ParseLogicalType("varchar(20)")
	require.NoError(t, err)
	assert.True(t, Varchar(20).Equals(lt))

	lt, err = ParseLogicalType("int")
	require.NoError(t, err)
	assert.Equal(t, IntegerType, lt.ID)

	_, err = ParseLogicalType("geometry")
	assert.Error(t, err)

	_, err = ParseLogicalType("int(3)")
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(Integer(), "NULL")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = ParseValue(Decimal(6, 2), "12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.50", v.String())
}
