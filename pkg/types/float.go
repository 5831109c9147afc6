package types

import (
	"math"
	"strconv"
	"strings"
)

// doubleEpsilon is the relative tolerance under which two finite doubles
// compare equal.
const doubleEpsilon = 1e-15

// AsFloat64 reads the value as a double.
func (v Value) AsFloat64() (float64, error) {
	if v.IsNull() {
		return 0, errNullCast()
	}
	id := v.typ.ID
	switch {
	case id == RealType || id == FloatType:
		return v.f, nil
	case id.IsUnsigned():
		return float64(v.u), nil
	case id == HugeIntType || id.IsDecimal():
		f, _ := v.d.Float64()
		return f, nil
	case id.IsInteger(), id == BooleanType:
		return float64(v.i), nil
	case id.IsString():
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, errMismatch(v, "REAL")
		}
		return f, nil
	}
	return 0, errMismatch(v, "REAL")
}

// compareFloat orders doubles with NaN equal to NaN and above everything,
// infinities by sign, and finite values equal within a relative epsilon.
// The tolerance makes equality non-transitive, so it is only used for SQL
// comparison predicates; sorting and distinct keys use compareFloatExact.
func compareFloat(x, y float64) Ordering { return orderFloats(x, y, doubleEpsilon) }

// compareFloatExact is compareFloat without tolerance: a total order in
// which only numerically identical values (and 0 with -0) are equal.
func compareFloatExact(x, y float64) Ordering { return orderFloats(x, y, 0) }

func orderFloats(x, y, tolerance float64) Ordering {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	if xNaN || yNaN {
		switch {
		case xNaN && yNaN:
			return Equal
		case xNaN:
			return Greater
		default:
			return Less
		}
	}
	xInf, yInf := math.IsInf(x, 0), math.IsInf(y, 0)
	if xInf || yInf {
		switch {
		case xInf && yInf:
			if math.Signbit(x) == math.Signbit(y) {
				return Equal
			}
			if math.Signbit(x) {
				return Less
			}
			return Greater
		case xInf:
			if math.Signbit(x) {
				return Less
			}
			return Greater
		default:
			if math.Signbit(y) {
				return Greater
			}
			return Less
		}
	}
	diff := x - y
	if math.Abs(diff) <= tolerance*math.Max(math.Abs(x), math.Abs(y)) {
		return Equal
	}
	if diff > 0 {
		return Greater
	}
	return Less
}
