package types

import (
	"strconv"
	"strings"
)

// AsString formats the value. String kinds return their payload unchanged.
func (v Value) AsString() (string, error) {
	if v.IsNull() {
		return "", errNullCast()
	}
	id := v.typ.ID
	switch {
	case id.IsString():
		return v.s, nil
	case id == BooleanType:
		return Trivalent(v.i).String(), nil
	case id.IsUnsigned():
		return strconv.FormatUint(v.u, 10), nil
	case id == HugeIntType:
		return v.d.String(), nil
	case id.IsDecimal():
		return v.d.StringFixed(int32(v.typ.Scale)), nil
	case id == RealType || id == FloatType:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	case id == DateType:
		return DateDays(v.i).String(), nil
	case id == TimestampType:
		return TimestampMicros(v.i).String(), nil
	case id.IsInteger():
		return strconv.FormatInt(v.i, 10), nil
	}
	return "", errMismatch(v, "VARCHAR")
}

// AsBytes returns the raw bytes of a string or binary value, or the
// formatted text of anything else.
func (v Value) AsBytes() ([]byte, error) {
	s, err := v.AsString()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// AsTrivalent reads the value as a truth value. Numbers are TRUE when
// non-zero; strings accept the usual spellings.
func (v Value) AsTrivalent() (Trivalent, error) {
	if v.IsNull() {
		return Unknown, nil
	}
	id := v.typ.ID
	switch {
	case id == BooleanType:
		return Trivalent(v.i), nil
	case id.IsString():
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true", "t", "yes", "y", "on", "1":
			return True, nil
		case "false", "f", "no", "n", "off", "0":
			return False, nil
		}
		return Unknown, errMismatch(v, "BOOLEAN")
	case id == RealType || id == FloatType:
		return FromBool(v.f != 0), nil
	case id == HugeIntType || id.IsDecimal():
		return FromBool(!v.d.IsZero()), nil
	case id.IsUnsigned():
		return FromBool(v.u != 0), nil
	case id.IsInteger():
		return FromBool(v.i != 0), nil
	}
	return Unknown, errMismatch(v, "BOOLEAN")
}

// AsBool is AsTrivalent collapsed to two values; a null fails.
func (v Value) AsBool() (bool, error) {
	if v.IsNull() {
		return false, errNullCast()
	}
	t, err := v.AsTrivalent()
	if err != nil {
		return false, err
	}
	return t == True, nil
}
