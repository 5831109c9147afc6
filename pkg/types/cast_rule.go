package types

// NoCast marks a pair of types with no implicit conversion.
const NoCast = -1

// castCost is the price of converting anything into the destination type.
func castCost(to TypeID) int {
	switch to {
	case IntegerType:
		return 103
	case BigIntType:
		return 101
	case RealType, FloatType:
		return 102
	case HugeIntType, TimestampType:
		return 120
	case VarcharType:
		return 149
	case DecimalType, NumberType:
		return 104
	default:
		return 110
	}
}

// implicitTargets lists, per source type, the destinations it may be
// implicitly cast to. A target missing from the set is not castable.
var implicitTargets = map[TypeID][]TypeID{
	TinyIntType: {SmallIntType, IntegerType, BigIntType, HugeIntType, RealType, FloatType,
		DecimalType, NumberType, VarcharType, BlobType, ClobType, BinaryType, CharType},
	SmallIntType: {IntegerType, BigIntType, HugeIntType, RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	IntegerType: {BigIntType, HugeIntType, RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	BigIntType: {HugeIntType, RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	UTinyIntType: {USmallIntType, UInt32Type, UInt64Type, SmallIntType, IntegerType, BigIntType,
		HugeIntType, RealType, FloatType, DecimalType, VarcharType, BlobType, ClobType, BinaryType, CharType},
	USmallIntType: {UInt32Type, UInt64Type, IntegerType, BigIntType, HugeIntType, RealType, FloatType,
		DecimalType, VarcharType, BlobType, ClobType, BinaryType, CharType},
	UInt32Type: {UInt64Type, BigIntType, HugeIntType, RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	UInt64Type: {HugeIntType, RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	HugeIntType: {RealType, FloatType, DecimalType,
		VarcharType, BlobType, ClobType, BinaryType, CharType},
	DateType:      {TimestampType, VarcharType},
	TimestampType: {DateType, VarcharType},
	DecimalType:   {RealType, FloatType, VarcharType, BlobType, ClobType, BinaryType, CharType},
	NumberType:    {RealType, FloatType, VarcharType, BlobType, ClobType, BinaryType, CharType},
	BooleanType: {TinyIntType, SmallIntType, IntegerType, BigIntType, UTinyIntType, USmallIntType,
		UInt32Type, UInt64Type, HugeIntType, RealType, FloatType, DecimalType, NumberType, VarcharType},
}

// ImplicitCastCost returns the cost of implicitly casting from into to, or
// NoCast when the conversion is not allowed. It is a pure function of the
// two tags and drives overload resolution.
func ImplicitCastCost(from, to TypeID) int {
	switch {
	case from == NullType:
		return castCost(to)
	case from == ParamType:
		return 0
	case from == to:
		return 0
	}

	switch from {
	case RealType, FloatType:
		switch to {
		case RealType, FloatType:
			return 0
		case VarcharType, BlobType, ClobType, BinaryType, CharType:
			return castCost(to)
		}
		return NoCast
	case VarcharType, CharType, BlobType, ClobType, BinaryType:
		switch to {
		case VarcharType, CharType, BlobType, ClobType, BinaryType:
			return 0
		}
		return NoCast
	}

	for _, t := range implicitTargets[from] {
		if t == to {
			return castCost(to)
		}
	}
	return NoCast
}
