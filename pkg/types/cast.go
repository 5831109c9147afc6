package types

import (
	"math/big"

	"github.com/shopspring/decimal"

	dberr "rowexec/pkg/error"
)

// CastValue converts v to target. A null becomes a null of target; decimal
// targets round to the target scale and fail with DECIMAL when the digits
// exceed its precision (a bare NUMBER keeps the value's own digits); integer
// targets are range-checked and never wrap.
func CastValue(v Value, target LogicalType) (Value, error) {
	if v.IsNull() {
		return NewNull(target), nil
	}
	id := target.ID
	if id == ParamType || id == NullType {
		return v, nil
	}
	if v.typ.ID == id && !id.IsDecimal() {
		return v.WithType(target), nil
	}

	switch {
	case id == BooleanType:
		t, err := v.AsTrivalent()
		if err != nil {
			return Value{}, err
		}
		return NewTrivalent(t), nil

	case id.IsUnsigned():
		n, err := v.AsUint64()
		if err != nil {
			return Value{}, err
		}
		if err := checkUintRange(v, n, id); err != nil {
			return Value{}, err
		}
		return Value{typ: target, u: n}, nil

	case id == HugeIntType:
		n, err := v.AsHugeInt()
		if err != nil {
			return Value{}, err
		}
		return NewHugeInt(n)

	case id.IsInteger():
		n, err := v.AsInt64()
		if err != nil {
			return Value{}, err
		}
		if err := checkIntRange(v, n, id); err != nil {
			return Value{}, err
		}
		return Value{typ: target, i: n}, nil

	case id == RealType || id == FloatType:
		f, err := v.AsFloat64()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: target, f: f}, nil

	case id.IsDecimal():
		return castDecimal(v, target)

	case id == DateType:
		d, err := v.AsDate()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: target, i: int64(d)}, nil

	case id == TimestampType:
		ts, err := v.AsTimestamp()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: target, i: int64(ts)}, nil

	case id.IsString():
		s, err := v.AsString()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: target, s: s}, nil
	}
	return Value{}, errMismatch(v, target.String())
}

func castDecimal(v Value, target LogicalType) (Value, error) {
	d, err := v.AsDecimal()
	if err != nil {
		if dberr.IsKind(err, dberr.KindMismatchType) && v.IsString() {
			return Value{}, dberr.Newf(dberr.KindDecimal, "cast fail : '%s' is not a decimal", v.s)
		}
		return Value{}, err
	}
	if target.Precision == 0 && target.Scale == 0 {
		return unconstrainedDecimal(d, target), nil
	}
	adjusted, err := adjustDecimal(d, target.Precision, target.Scale)
	if err != nil {
		return Value{}, err
	}
	return Value{typ: target, d: adjusted}, nil
}

// unconstrainedDecimal keeps d's own digits for a bare NUMBER or DECIMAL
// target, recording them as the value's precision and scale. Scale is
// capped at MaxDecimalPrecision.
func unconstrainedDecimal(d decimal.Decimal, target LogicalType) Value {
	scale := 0
	if exp := int(d.Exponent()); exp < 0 {
		scale = min(-exp, int(MaxDecimalPrecision))
	}
	d = d.Round(int32(scale))
	precision := min(max(digits(d), scale), int(MaxDecimalPrecision))
	typ := target
	typ.Precision, typ.Scale = uint8(precision), uint8(scale)
	return Value{typ: typ, d: d}
}

// TryCast is CastValue that reports failure instead of an error.
func TryCast(v Value, target LogicalType) (Value, bool) {
	out, err := CastValue(v, target)
	if err != nil {
		return Value{}, false
	}
	return out, true
}

// Negate flips the sign of a numeric value. Unsigned inputs widen to the
// signed kind that can hold their negation.
func Negate(v Value) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch id := v.typ.ID; {
	case id == RealType || id == FloatType:
		return Value{typ: v.typ, f: -v.f}, nil
	case id.IsDecimal():
		return Value{typ: v.typ, d: v.d.Neg()}, nil
	case id == HugeIntType:
		return NewHugeInt(new(big.Int).Neg(v.d.BigInt()))
	case id.IsUnsigned():
		wider := negativeType(id)
		if wider == RealType {
			return NewReal(-float64(v.u)), nil
		}
		return Value{typ: NewLogicalType(wider), i: -int64(v.u)}, nil
	case id.IsInteger():
		n := -v.i
		if v.i != 0 && n == v.i {
			return Value{}, errOutOfRange(v, id.String())
		}
		if err := checkIntRange(v, n, id); err != nil {
			return Value{}, err
		}
		return Value{typ: v.typ, i: n}, nil
	}
	return Value{}, dberr.Newf(dberr.KindExecutor, "can't negate %s", v.typ)
}

// negativeType maps an unsigned kind to the signed kind holding its negation.
func negativeType(id TypeID) TypeID {
	switch id {
	case UTinyIntType:
		return SmallIntType
	case USmallIntType:
		return IntegerType
	case UInt32Type:
		return BigIntType
	case UInt64Type:
		return RealType
	}
	return id
}

// DecimalFromValue is a helper for arithmetic: v as a decimal plus the
// decimal type describing it.
func DecimalFromValue(v Value) (decimal.Decimal, LogicalType, error) {
	d, err := v.AsDecimal()
	if err != nil {
		return decimal.Decimal{}, LogicalType{}, err
	}
	t, err := v.typ.ToDecimal()
	if err != nil {
		return decimal.Decimal{}, LogicalType{}, err
	}
	return d, t, nil
}
