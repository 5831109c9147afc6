package types

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	dberr "rowexec/pkg/error"
)

// decimalUpperPrecision is the widest precision arithmetic widens into
// before clamping at MaxDecimalPrecision.
const decimalUpperPrecision = 18

// digits counts the decimal digits of the coefficient (1 for zero).
func digits(d decimal.Decimal) int {
	coef := d.Coefficient()
	coef.Abs(coef)
	if coef.Sign() == 0 {
		return 1
	}
	return len(coef.String())
}

// adjustDecimal rounds d to scale and checks it fits precision. A zero
// precision skips the check.
func adjustDecimal(d decimal.Decimal, precision, scale uint8) (decimal.Decimal, error) {
	if precision != 0 && scale > precision {
		return decimal.Decimal{}, dberr.Newf(dberr.KindDecimal,
			"decimal scale %d exceeds precision %d", scale, precision)
	}
	rounded := d.Round(int32(scale))
	if precision != 0 && digits(rounded) > int(precision) {
		return decimal.Decimal{}, dberr.Newf(dberr.KindDecimal,
			"cast fail : %s out of range for DECIMAL(%d,%d)", d.String(), precision, scale)
	}
	return rounded, nil
}

// AddDecimalType is the result type of DECIMAL + or - DECIMAL.
func AddDecimalType(left, right LogicalType) LogicalType {
	maxPrecision := max(int(left.Precision), int(right.Precision))
	maxScale := max(int(left.Scale), int(right.Scale))
	overScale := max(int(left.Precision)-int(left.Scale), int(right.Precision)-int(right.Scale))
	target := max(maxPrecision, maxScale+overScale) + 1
	if target > decimalUpperPrecision && maxPrecision <= decimalUpperPrecision {
		target = decimalUpperPrecision
	}
	if target > int(MaxDecimalPrecision) {
		target = int(MaxDecimalPrecision)
	}
	return Decimal(uint8(target), uint8(maxScale))
}

// MulDecimalType is the result type of DECIMAL * DECIMAL.
func MulDecimalType(left, right LogicalType) (LogicalType, error) {
	precision := int(left.Precision) + int(right.Precision)
	maxPrecision := max(int(left.Precision), int(right.Precision))
	scale := int(left.Scale) + int(right.Scale)
	if scale > int(MaxDecimalPrecision) {
		return LogicalType{}, dberr.New(dberr.KindDecimal, "decimal scale overflow")
	}
	if precision > decimalUpperPrecision && maxPrecision <= decimalUpperPrecision && scale < decimalUpperPrecision {
		precision = decimalUpperPrecision
	}
	if precision > int(MaxDecimalPrecision) {
		precision = int(MaxDecimalPrecision)
	}
	return Decimal(uint8(precision), uint8(scale)), nil
}

// AsDecimal reads any numeric, boolean or numeric string as a decimal.
func (v Value) AsDecimal() (decimal.Decimal, error) {
	if v.IsNull() {
		return decimal.Decimal{}, errNullCast()
	}
	id := v.typ.ID
	switch {
	case id == HugeIntType || id.IsDecimal():
		return v.d, nil
	case id.IsUnsigned():
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v.u), 0), nil
	case id.IsInteger(), id == BooleanType:
		return decimal.NewFromInt(v.i), nil
	case id == RealType || id == FloatType:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return decimal.Decimal{}, dberr.Newf(dberr.KindDecimal, "can't convert %s to DECIMAL", v.String())
		}
		return decimal.NewFromFloat(v.f), nil
	case id.IsString():
		d, err := decimal.NewFromString(strings.TrimSpace(v.s))
		if err != nil {
			return decimal.Decimal{}, errMismatch(v, "DECIMAL")
		}
		return d, nil
	}
	return decimal.Decimal{}, errMismatch(v, "DECIMAL")
}
