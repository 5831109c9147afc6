package types

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	dberr "rowexec/pkg/error"
)

// Value holds one SQL value. The payload field in use is chosen by the
// type tag; a null Value keeps the type it would have had.
//
//   - signed integers, BOOLEAN (as Trivalent), DATE, TIMESTAMP: i
//   - unsigned integers: u
//   - REAL / FLOAT: f
//   - string and binary kinds: s
//   - DECIMAL / NUMBER / HUGEINT: d (HUGEINT with exponent 0)
//
// Values are plain structs and are copied, never shared.
type Value struct {
	typ  LogicalType
	null bool
	i    int64
	u    uint64
	f    float64
	s    string
	d    decimal.Decimal
}

var (
	maxHugeInt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minHugeInt = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	twoTo128   = new(big.Int).Lsh(big.NewInt(1), 128)
)

// NewNull returns a null of type t.
func NewNull(t LogicalType) Value {
	return Value{typ: t, null: true}
}

func NewBoolean(b bool) Value {
	return Value{typ: Boolean(), i: int64(FromBool(b))}
}

// NewTrivalent builds a BOOLEAN; UNKNOWN reads back as null.
func NewTrivalent(t Trivalent) Value {
	return Value{typ: Boolean(), i: int64(t)}
}

func NewTinyInt(v int8) Value   { return Value{typ: TinyInt(), i: int64(v)} }
func NewSmallInt(v int16) Value { return Value{typ: SmallInt(), i: int64(v)} }
func NewInteger(v int32) Value  { return Value{typ: Integer(), i: int64(v)} }
func NewBigInt(v int64) Value   { return Value{typ: BigInt(), i: v} }

func NewUTinyInt(v uint8) Value   { return Value{typ: UTinyInt(), u: uint64(v)} }
func NewUSmallInt(v uint16) Value { return Value{typ: USmallInt(), u: uint64(v)} }
func NewUInt32(v uint32) Value    { return Value{typ: UInt32(), u: uint64(v)} }
func NewUInt64(v uint64) Value    { return Value{typ: UInt64(), u: v} }

// NewReal builds a REAL (double precision) value.
func NewReal(v float64) Value { return Value{typ: Real(), f: v} }

func NewDate(d DateDays) Value              { return Value{typ: Date(), i: int64(d)} }
func NewTimestamp(ts TimestampMicros) Value { return Value{typ: Timestamp(), i: int64(ts)} }

// NewVarchar builds a VARCHAR sized to the string.
func NewVarchar(s string) Value {
	return Value{typ: Varchar(uint32(len(s))), s: s}
}

// NewString builds a value of any string kind t.
func NewString(t LogicalType, s string) Value {
	return Value{typ: t, s: s}
}

func NewBlob(b []byte) Value {
	return Value{typ: Blob(), s: string(b)}
}

// NewHugeInt builds a HUGEINT, failing when v does not fit in 128 bits.
func NewHugeInt(v *big.Int) (Value, error) {
	if v.Cmp(maxHugeInt) > 0 || v.Cmp(minHugeInt) < 0 {
		return Value{}, dberr.Newf(dberr.KindOutOfRange, "%s out of HUGEINT range", v)
	}
	return Value{typ: HugeInt(), d: decimal.NewFromBigInt(v, 0)}, nil
}

// NewDecimal builds DECIMAL(precision, scale) from d, rounding to scale and
// failing with a DECIMAL error when the digits exceed precision.
func NewDecimal(d decimal.Decimal, precision, scale uint8) (Value, error) {
	adjusted, err := adjustDecimal(d, precision, scale)
	if err != nil {
		return Value{}, err
	}
	return Value{typ: Decimal(precision, scale), d: adjusted}, nil
}

// MustDecimal parses s and panics on failure. Intended for literals in tests
// and fixtures.
func MustDecimal(s string, precision, scale uint8) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	v, err := NewDecimal(d, precision, scale)
	if err != nil {
		panic(err)
	}
	return v
}

// Type returns the value's logical type.
func (v Value) Type() LogicalType { return v.typ }

// TypeID is shorthand for Type().ID.
func (v Value) TypeID() TypeID { return v.typ.ID }

// IsNull reports a SQL null. A BOOLEAN holding UNKNOWN is null as well.
func (v Value) IsNull() bool {
	if v.null || v.typ.ID == NullType {
		return true
	}
	return v.typ.ID == BooleanType && Trivalent(v.i) == Unknown
}

func (v Value) IsNumeric() bool { return v.typ.ID.IsNumeric() }
func (v Value) IsInteger() bool { return v.typ.ID.IsInteger() }
func (v Value) IsString() bool  { return v.typ.ID.IsString() }
func (v Value) IsDecimal() bool { return v.typ.ID.IsDecimal() }

// WithType relabels the value without converting its payload. Only valid
// between types sharing a payload field, e.g. VARCHAR lengths.
func (v Value) WithType(t LogicalType) Value {
	v.typ = t
	return v
}

// Size is the encoded payload length; 0 for nulls.
func (v Value) Size() int {
	if v.IsNull() {
		return 0
	}
	switch {
	case v.typ.ID.IsString():
		return len(v.s)
	case v.typ.ID.IsDecimal():
		return len(encodeDecimal(v.d))
	default:
		return int(v.typ.ID.Size())
	}
}

// RawBytes encodes the payload for a row buffer; nil for nulls.
func (v Value) RawBytes() []byte {
	if v.IsNull() {
		return nil
	}
	id := v.typ.ID
	switch {
	case id.IsString():
		return []byte(v.s)
	case id.IsDecimal():
		return encodeDecimal(v.d)
	}

	buf := make([]byte, id.Size())
	switch id {
	case BooleanType, TinyIntType, SmallIntType, IntegerType, DateType:
		binary.LittleEndian.PutUint32(buf, uint32(int32(v.i)))
	case BigIntType, TimestampType:
		binary.LittleEndian.PutUint64(buf, uint64(v.i))
	case UTinyIntType, USmallIntType, UInt32Type:
		binary.LittleEndian.PutUint32(buf, uint32(v.u))
	case UInt64Type:
		binary.LittleEndian.PutUint64(buf, v.u)
	case RealType, FloatType:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.f))
	case HugeIntType:
		n := new(big.Int).Set(v.d.Coefficient())
		if n.Sign() < 0 {
			n.Add(n, twoTo128)
		}
		n.FillBytes(buf)
	default:
		return nil
	}
	return buf
}

// encodeDecimal writes the coefficient as a sign byte followed by its
// big-endian magnitude. The scale lives in the field metadata.
func encodeDecimal(d decimal.Decimal) []byte {
	coef := d.Coefficient()
	mag := coef.Bytes()
	out := make([]byte, 1+len(mag))
	if coef.Sign() < 0 {
		out[0] = 1
	}
	copy(out[1:], mag)
	return out
}

// DecodeValue rebuilds a Value from its encoded payload.
func DecodeValue(t LogicalType, raw []byte, isNull bool) (Value, error) {
	if isNull {
		return NewNull(t), nil
	}
	id := t.ID
	switch {
	case id.IsString():
		return Value{typ: t, s: string(raw)}, nil
	case id.IsDecimal():
		if len(raw) < 1 {
			return Value{}, dberr.Newf(dberr.KindFatal, "corrupt decimal payload of %d bytes", len(raw))
		}
		coef := new(big.Int).SetBytes(raw[1:])
		if raw[0] == 1 {
			coef.Neg(coef)
		}
		return Value{typ: t, d: decimal.NewFromBigInt(coef, -int32(t.Scale))}, nil
	}

	if want := int(id.Size()); want == 0 || len(raw) != want {
		return Value{}, dberr.Newf(dberr.KindFatal, "payload of %d bytes does not fit %s", len(raw), t)
	}
	v := Value{typ: t}
	switch id {
	case BooleanType, TinyIntType, SmallIntType, IntegerType, DateType:
		v.i = int64(int32(binary.LittleEndian.Uint32(raw)))
	case BigIntType, TimestampType:
		v.i = int64(binary.LittleEndian.Uint64(raw))
	case UTinyIntType, USmallIntType, UInt32Type:
		v.u = uint64(binary.LittleEndian.Uint32(raw))
	case UInt64Type:
		v.u = binary.LittleEndian.Uint64(raw)
	case RealType, FloatType:
		v.f = math.Float64frombits(binary.LittleEndian.Uint64(raw))
	case HugeIntType:
		n := new(big.Int).SetBytes(raw)
		if raw[0]&0x80 != 0 {
			n.Sub(n, twoTo128)
		}
		v.d = decimal.NewFromBigInt(n, 0)
	default:
		return Value{}, dberr.Newf(dberr.KindFatal, "can't decode %s", t)
	}
	return v, nil
}

// Identical reports bit-level equality: same type, same null flag and the
// same payload (decimal scale included). Unlike Equal it never yields
// UNKNOWN and treats two nulls of one type as identical.
func (v Value) Identical(o Value) bool {
	if !v.typ.Equals(o.typ) || v.IsNull() != o.IsNull() {
		return false
	}
	if v.IsNull() {
		return true
	}
	switch id := v.typ.ID; {
	case id.IsString():
		return v.s == o.s
	case id.IsDecimal(), id == HugeIntType:
		return v.d.Equal(o.d) && v.d.Exponent() == o.d.Exponent()
	case id == RealType || id == FloatType:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case id.IsUnsigned():
		return v.u == o.u
	default:
		return v.i == o.i
	}
}

// String renders the value for display; nulls print as "null".
func (v Value) String() string {
	if v.IsNull() {
		return "null"
	}
	s, err := v.AsString()
	if err != nil {
		return "<" + v.typ.String() + ">"
	}
	return s
}

// SQLString renders the value as a SQL literal.
func (v Value) SQLString() string {
	if v.IsNull() {
		return "null"
	}
	if v.IsNumeric() || v.typ.ID == BooleanType {
		return v.String()
	}
	return "'" + v.String() + "'"
}
