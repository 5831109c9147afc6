package types

import (
	"fmt"

	dberr "rowexec/pkg/error"
)

// TypeID is the SQL type tag carried by every LogicalType and Value.
type TypeID uint8

const (
	NullType TypeID = iota
	BooleanType
	TinyIntType
	SmallIntType
	IntegerType
	BigIntType
	UTinyIntType
	USmallIntType
	UInt32Type
	UInt64Type
	HugeIntType
	RealType
	FloatType
	DecimalType
	NumberType
	DateType
	TimestampType
	CharType
	VarcharType
	BlobType
	ClobType
	BinaryType
	ParamType
)

// String returns a string representation of the type
func (t TypeID) String() string {
	switch t {
	case NullType:
		return "NULL"
	case BooleanType:
		return "BOOLEAN"
	case TinyIntType:
		return "TINYINT"
	case SmallIntType:
		return "SMALLINT"
	case IntegerType:
		return "INTEGER"
	case BigIntType:
		return "BIGINT"
	case UTinyIntType:
		return "UTINYINT"
	case USmallIntType:
		return "USMALLINT"
	case UInt32Type:
		return "UINT32"
	case UInt64Type:
		return "UINT64"
	case HugeIntType:
		return "HUGEINT"
	case RealType:
		return "REAL"
	case FloatType:
		return "FLOAT"
	case DecimalType:
		return "DECIMAL"
	case NumberType:
		return "NUMBER"
	case DateType:
		return "DATE"
	case TimestampType:
		return "TIMESTAMP"
	case CharType:
		return "CHAR"
	case VarcharType:
		return "VARCHAR"
	case BlobType:
		return "BLOB"
	case ClobType:
		return "CLOB"
	case BinaryType:
		return "BINARY"
	case ParamType:
		return "PARAM"
	default:
		return "UNKNOWN_TYPE"
	}
}

// AllTypeIDs lists every type tag in declaration order.
func AllTypeIDs() []TypeID {
	ids := make([]TypeID, 0, int(ParamType)+1)
	for id := NullType; id <= ParamType; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Size returns the fixed encoded width of the type in bytes, or 0 for
// variable-width kinds (strings, blobs, decimals) and NULL.
func (t TypeID) Size() uint32 {
	switch t {
	case BooleanType, TinyIntType, SmallIntType, IntegerType,
		UTinyIntType, USmallIntType, UInt32Type, DateType:
		return 4
	case BigIntType, UInt64Type, RealType, FloatType, TimestampType:
		return 8
	case HugeIntType:
		return 16
	default:
		return 0
	}
}

func (t TypeID) IsNumeric() bool {
	switch t {
	case TinyIntType, SmallIntType, IntegerType, BigIntType,
		UTinyIntType, USmallIntType, UInt32Type, UInt64Type, HugeIntType,
		RealType, FloatType, DecimalType, NumberType:
		return true
	default:
		return false
	}
}

func (t TypeID) IsInteger() bool {
	switch t {
	case TinyIntType, SmallIntType, IntegerType, BigIntType,
		UTinyIntType, USmallIntType, UInt32Type, UInt64Type, HugeIntType:
		return true
	default:
		return false
	}
}

func (t TypeID) IsUnsigned() bool {
	switch t {
	case UTinyIntType, USmallIntType, UInt32Type, UInt64Type:
		return true
	default:
		return false
	}
}

func (t TypeID) IsDecimal() bool { return t == DecimalType || t == NumberType }

// IsFloat reports whether the type is a non-integer numeric (decimals included).
func (t TypeID) IsFloat() bool { return t.IsDecimal() || t == RealType || t == FloatType }

func (t TypeID) IsString() bool {
	switch t {
	case CharType, VarcharType, BlobType, ClobType, BinaryType:
		return true
	default:
		return false
	}
}

func (t TypeID) IsTemporal() bool { return t == DateType || t == TimestampType }

// Decimal bounds.
const (
	MaxDecimalPrecision  uint8 = 38
	DefaultVarcharLength       = 65535
	// compatibleVarcharLength is the minimum width a string column widens to
	// when it absorbs a non-string column.
	compatibleVarcharLength = 1024
)

// LogicalType is an immutable semantic type: a tag plus the width
// parameters that matter for that tag.
type LogicalType struct {
	ID        TypeID
	Length    uint32 // declared length for string kinds
	Precision uint8  // decimal kinds only
	Scale     uint8  // decimal kinds only
	Width     uint32
}

// NewLogicalType builds a type with no width parameters.
func NewLogicalType(id TypeID) LogicalType {
	return LogicalType{ID: id, Width: id.Size()}
}

func Null() LogicalType      { return NewLogicalType(NullType) }
func Param() LogicalType     { return NewLogicalType(ParamType) }
func Boolean() LogicalType   { return NewLogicalType(BooleanType) }
func TinyInt() LogicalType   { return NewLogicalType(TinyIntType) }
func SmallInt() LogicalType  { return NewLogicalType(SmallIntType) }
func Integer() LogicalType   { return NewLogicalType(IntegerType) }
func BigInt() LogicalType    { return NewLogicalType(BigIntType) }
func UTinyInt() LogicalType  { return NewLogicalType(UTinyIntType) }
func USmallInt() LogicalType { return NewLogicalType(USmallIntType) }
func UInt32() LogicalType    { return NewLogicalType(UInt32Type) }
func UInt64() LogicalType    { return NewLogicalType(UInt64Type) }
func HugeInt() LogicalType   { return NewLogicalType(HugeIntType) }
func Real() LogicalType      { return NewLogicalType(RealType) }
func Date() LogicalType      { return NewLogicalType(DateType) }
func Timestamp() LogicalType { return NewLogicalType(TimestampType) }
func Blob() LogicalType      { return NewLogicalType(BlobType) }

// Varchar returns a VARCHAR of the given length.
func Varchar(length uint32) LogicalType {
	return LogicalType{ID: VarcharType, Length: length, Width: length}
}

// Char returns a CHAR of the given length.
func Char(length uint32) LogicalType {
	return LogicalType{ID: CharType, Length: length, Width: length}
}

// Decimal returns DECIMAL(precision, scale).
func Decimal(precision, scale uint8) LogicalType {
	return LogicalType{ID: DecimalType, Precision: precision, Scale: scale, Width: 16}
}

// Equals compares structurally: string kinds also compare Length, decimal
// kinds also compare Precision and Scale.
func (t LogicalType) Equals(other LogicalType) bool {
	if t.ID != other.ID {
		return false
	}
	if t.ID.IsString() {
		return t.Length == other.Length
	}
	if t.ID.IsDecimal() {
		return t.Precision == other.Precision && t.Scale == other.Scale
	}
	return true
}

func (t LogicalType) String() string {
	switch {
	case t.ID.IsDecimal():
		return fmt.Sprintf("%s(%d,%d)", t.ID, t.Precision, t.Scale)
	case t.ID.IsString() && t.Length > 0:
		return fmt.Sprintf("%s(%d)", t.ID, t.Length)
	default:
		return t.ID.String()
	}
}

// decimalProperties maps integer kinds onto the DECIMAL(width, 0) that holds
// their whole range.
func (t LogicalType) decimalProperties() (width, scale uint8, ok bool) {
	switch t.ID {
	case NullType:
		return 0, 0, true
	case BooleanType:
		return 1, 0, true
	case TinyIntType, UTinyIntType:
		return 3, 0, true
	case SmallIntType, USmallIntType:
		return 5, 0, true
	case IntegerType, UInt32Type:
		return 10, 0, true
	case BigIntType:
		return 19, 0, true
	case UInt64Type:
		return 20, 0, true
	case HugeIntType:
		return 38, 0, true
	case DecimalType, NumberType:
		return t.Precision, t.Scale, true
	default:
		return 0, 0, false
	}
}

// ToDecimal returns the decimal type able to hold every value of t.
func (t LogicalType) ToDecimal() (LogicalType, error) {
	if t.ID.IsDecimal() {
		return t, nil
	}
	width, scale, ok := t.decimalProperties()
	if !ok {
		return LogicalType{}, dberr.Newf(dberr.KindExecutor, "cant convert %s to decimal type", t)
	}
	return Decimal(width, scale), nil
}

func priority(id TypeID) int {
	switch id {
	case NullType:
		return 0
	case ParamType:
		return 2
	case BooleanType:
		return 10
	case TinyIntType:
		return 11
	case SmallIntType:
		return 12
	case IntegerType:
		return 13
	case BigIntType:
		return 14
	case DateType:
		return 15
	case TimestampType:
		return 19
	case DecimalType, NumberType, UInt64Type:
		return 21
	case RealType, FloatType:
		return 23
	case CharType, VarcharType, ClobType, BinaryType:
		return 25
	case BlobType:
		return 26
	case UTinyIntType:
		return 28
	case USmallIntType:
		return 29
	case UInt32Type:
		return 30
	case HugeIntType:
		return 50
	default:
		return -1
	}
}

func decimalSizeCheck(left, right LogicalType) (LogicalType, error) {
	if left.ID == DecimalType {
		left, right = right, left
	}
	width, _, ok := left.decimalProperties()
	if !ok {
		return LogicalType{}, dberr.Newf(dberr.KindMismatchType, "%s is not a compatible numeric type", left)
	}
	effective := right.Precision - right.Scale
	if width > effective {
		precision := int(width) + int(right.Scale)
		if precision > int(MaxDecimalPrecision) {
			precision = int(MaxDecimalPrecision)
		}
		return Decimal(uint8(precision), right.Scale), nil
	}
	return right, nil
}

func combineNumeric(left, right LogicalType) (LogicalType, error) {
	if priority(left.ID) > priority(right.ID) {
		left, right = right, left
	}
	if ImplicitCastCost(left.ID, right.ID) >= 0 {
		if right.ID == DecimalType {
			return decimalSizeCheck(left, right)
		}
		return right, nil
	}
	if ImplicitCastCost(right.ID, left.ID) >= 0 {
		if left.ID == DecimalType {
			return decimalSizeCheck(right, left)
		}
		return left, nil
	}
	switch {
	case left.ID == BigIntType || right.ID == UInt64Type:
		return HugeInt(), nil
	case left.ID == IntegerType || right.ID == UInt32Type:
		return BigInt(), nil
	case left.ID == SmallIntType || right.ID == USmallIntType:
		return Integer(), nil
	case left.ID == TinyIntType || right.ID == UTinyIntType:
		return SmallInt(), nil
	}
	return LogicalType{}, dberr.Newf(dberr.KindMismatchType,
		"not supported compatible type %s and %s", left, right)
}

// CompatibleType returns the type both sides can be implicitly cast into.
// Used to type UNION outputs, CASE branches and IN lists.
func CompatibleType(left, right LogicalType) (LogicalType, error) {
	if left.ID != right.ID && left.ID.IsNumeric() && right.ID.IsNumeric() {
		t, err := combineNumeric(left, right)
		if err != nil {
			return LogicalType{}, err
		}
		if t.ID == HugeIntType {
			return Real(), nil
		}
		return t, nil
	}
	if left.ID == ParamType {
		return right, nil
	}
	if right.ID == ParamType {
		return left, nil
	}

	lp, rp := priority(left.ID), priority(right.ID)
	if lp < 0 || rp < 0 {
		return LogicalType{}, dberr.Newf(dberr.KindFatal, "unknown type %s or %s for priority", left, right)
	}
	widen := func(t LogicalType) LogicalType {
		if t.ID == VarcharType && t.Length < compatibleVarcharLength {
			return Varchar(compatibleVarcharLength)
		}
		return t
	}
	switch {
	case lp < rp:
		return widen(right), nil
	case rp < lp:
		return widen(left), nil
	}

	switch left.ID {
	case VarcharType:
		if left.Length > right.Length {
			return left, nil
		}
		return right, nil
	case DecimalType:
		extra := max(int(left.Precision)-int(left.Scale), int(right.Precision)-int(right.Scale))
		scale := max(int(left.Scale), int(right.Scale))
		precision := extra + scale
		if precision > int(MaxDecimalPrecision) {
			precision = int(MaxDecimalPrecision)
			scale = precision - extra
		}
		return Decimal(uint8(precision), uint8(scale)), nil
	}
	return left, nil
}
