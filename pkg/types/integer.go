package types

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	bigMinInt64  = big.NewInt(math.MinInt64)
	bigMaxInt64  = big.NewInt(math.MaxInt64)
	bigMaxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

// AsInt64 reads the value as a signed 64-bit integer. Fractions round half
// away from zero; values outside int64 fail with OUT_OF_RANGE.
func (v Value) AsInt64() (int64, error) {
	if v.IsNull() {
		return 0, errNullCast()
	}
	id := v.typ.ID
	switch {
	case id == BooleanType, id == DateType, id == TimestampType:
		return v.i, nil
	case id.IsUnsigned():
		if v.u > math.MaxInt64 {
			return 0, errOutOfRange(v, "BIGINT")
		}
		return int64(v.u), nil
	case id.IsInteger() && id != HugeIntType:
		return v.i, nil
	case id == HugeIntType || id.IsDecimal():
		return decimalToInt64(v, v.d)
	case id == RealType || id == FloatType:
		return floatToInt64(v, v.f)
	case id.IsString():
		return parseInt64(v)
	}
	return 0, errMismatch(v, "BIGINT")
}

func decimalToInt64(v Value, d decimal.Decimal) (int64, error) {
	n := d.Round(0).BigInt()
	if n.Cmp(bigMinInt64) < 0 || n.Cmp(bigMaxInt64) > 0 {
		return 0, errOutOfRange(v, "BIGINT")
	}
	return n.Int64(), nil
}

func floatToInt64(v Value, f float64) (int64, error) {
	r := math.Round(f)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, errOutOfRange(v, "BIGINT")
	}
	return int64(r), nil
}

func parseInt64(v Value) (int64, error) {
	s := strings.TrimSpace(v.s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	} else if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, errOutOfRange(v, "BIGINT")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errMismatch(v, "BIGINT")
	}
	return decimalToInt64(v, d)
}

// AsInt32 is AsInt64 narrowed to int32.
func (v Value) AsInt32() (int32, error) {
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errOutOfRange(v, "INTEGER")
	}
	return int32(n), nil
}

// AsUint64 reads the value as an unsigned 64-bit integer. Negative values
// fail with OUT_OF_RANGE.
func (v Value) AsUint64() (uint64, error) {
	if v.IsNull() {
		return 0, errNullCast()
	}
	id := v.typ.ID
	if id.IsUnsigned() {
		return v.u, nil
	}
	n, err := v.AsHugeInt()
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || n.Cmp(bigMaxUint64) > 0 {
		return 0, errOutOfRange(v, "UINT64")
	}
	return n.Uint64(), nil
}

// AsHugeInt reads the value as an arbitrary-size integer, rounding fractions.
func (v Value) AsHugeInt() (*big.Int, error) {
	if v.IsNull() {
		return nil, errNullCast()
	}
	id := v.typ.ID
	switch {
	case id.IsUnsigned():
		return new(big.Int).SetUint64(v.u), nil
	case id == HugeIntType:
		return v.d.BigInt(), nil
	case id.IsInteger(), id == BooleanType:
		return big.NewInt(v.i), nil
	}
	d, err := v.AsDecimal()
	if err != nil {
		return nil, err
	}
	return d.Round(0).BigInt(), nil
}

// checkIntRange validates n against the range of the integer kind id.
func checkIntRange(v Value, n int64, id TypeID) error {
	var lo, hi int64
	switch id {
	case TinyIntType:
		lo, hi = math.MinInt8, math.MaxInt8
	case SmallIntType:
		lo, hi = math.MinInt16, math.MaxInt16
	case IntegerType:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		return nil
	}
	if n < lo || n > hi {
		return errOutOfRange(v, id.String())
	}
	return nil
}

func checkUintRange(v Value, n uint64, id TypeID) error {
	var hi uint64
	switch id {
	case UTinyIntType:
		hi = math.MaxUint8
	case USmallIntType:
		hi = math.MaxUint16
	case UInt32Type:
		hi = math.MaxUint32
	default:
		return nil
	}
	if n > hi {
		return errOutOfRange(v, id.String())
	}
	return nil
}
