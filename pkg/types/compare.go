package types

import (
	"strings"

	dberr "rowexec/pkg/error"
)

type compareClass uint8

const (
	classOther compareClass = iota
	classSigned
	classUnsigned
	classExact // HUGEINT, DECIMAL, NUMBER
	classFloat
	classTemporal
	classString
)

func classOf(id TypeID) compareClass {
	switch {
	case id == BooleanType:
		return classSigned
	case id.IsUnsigned():
		return classUnsigned
	case id == HugeIntType || id.IsDecimal():
		return classExact
	case id.IsInteger():
		return classSigned
	case id == RealType || id == FloatType:
		return classFloat
	case id.IsTemporal():
		return classTemporal
	case id.IsString():
		return classString
	}
	return classOther
}

func isNumericClass(c compareClass) bool {
	return c == classSigned || c == classUnsigned || c == classExact || c == classFloat
}

// Compare orders two non-null values. Numeric kinds compare across widths
// and signedness; a numeric compared with an unparsable string orders the
// number first. Incomparable kinds fail with EXECUTOR.
func Compare(a, b Value) (Ordering, error) {
	if a.IsNull() || b.IsNull() {
		return Equal, dberr.New(dberr.KindExecutor, "can't compare null values")
	}
	ca, cb := classOf(a.typ.ID), classOf(b.typ.ID)

	switch {
	case ca == classString && cb == classString:
		return Ordering(strings.Compare(a.s, b.s)), nil
	case isNumericClass(ca) && isNumericClass(cb):
		return compareNumeric(a, b, ca, cb)
	case isNumericClass(ca) && cb == classString:
		return compareNumericString(a, b)
	case ca == classString && isNumericClass(cb):
		o, err := compareNumericString(b, a)
		return o.invert(), err
	case ca == classTemporal && (cb == classTemporal || cb == classString):
		return compareTemporal(a, b)
	case cb == classTemporal && ca == classString:
		o, err := compareTemporal(b, a)
		return o.invert(), err
	case ca == classTemporal && (cb == classSigned || cb == classUnsigned):
		return compareTemporalInt(a, b)
	case cb == classTemporal && (ca == classSigned || ca == classUnsigned):
		o, err := compareTemporalInt(b, a)
		return o.invert(), err
	}
	return Equal, dberr.Newf(dberr.KindExecutor, "can't not compare %s with %s", a.typ, b.typ)
}

func compareNumeric(a, b Value, ca, cb compareClass) (Ordering, error) {
	switch {
	case ca == classFloat || cb == classFloat:
		x, err := a.AsFloat64()
		if err != nil {
			return Equal, err
		}
		y, err := b.AsFloat64()
		if err != nil {
			return Equal, err
		}
		return compareFloat(x, y), nil
	case ca == classSigned && cb == classSigned:
		return compareOrdered(a.i, b.i), nil
	case ca == classUnsigned && cb == classUnsigned:
		return compareOrdered(a.u, b.u), nil
	}
	x, err := a.AsDecimal()
	if err != nil {
		return Equal, err
	}
	y, err := b.AsDecimal()
	if err != nil {
		return Equal, err
	}
	return Ordering(x.Cmp(y)), nil
}

// compareNumericString parses s into the numeric domain of n. When s does
// not parse the number orders first.
func compareNumericString(n, s Value) (Ordering, error) {
	if classOf(n.typ.ID) == classFloat {
		y, err := s.AsFloat64()
		if err != nil {
			return Less, nil
		}
		return compareFloat(n.f, y), nil
	}
	if n.typ.ID == BooleanType {
		t, err := s.AsTrivalent()
		if err != nil {
			return Less, nil
		}
		return compareOrdered(n.i, int64(t)), nil
	}
	y, err := s.AsDecimal()
	if err != nil {
		return Less, nil
	}
	x, err := n.AsDecimal()
	if err != nil {
		return Equal, err
	}
	return Ordering(x.Cmp(y)), nil
}

func compareTemporal(a, b Value) (Ordering, error) {
	x, err := a.AsTimestamp()
	if err != nil {
		return Equal, err
	}
	y, err := b.AsTimestamp()
	if err != nil {
		return Equal, err
	}
	return compareOrdered(x, y), nil
}

func compareTemporalInt(t, n Value) (Ordering, error) {
	x, err := t.AsTimestamp()
	if err != nil {
		return Equal, err
	}
	y, err := n.AsInt64()
	if err != nil {
		return Equal, err
	}
	return compareOrdered(int64(x), y), nil
}

// Equal is UNKNOWN when either side is null.
func (v Value) Equal(o Value) (Trivalent, error) {
	if v.IsNull() || o.IsNull() {
		return Unknown, nil
	}
	r, err := Compare(v, o)
	if err != nil {
		return Unknown, err
	}
	return FromBool(r == Equal), nil
}

// LessThan is UNKNOWN when either side is null.
func (v Value) LessThan(o Value) (Trivalent, error) {
	if v.IsNull() || o.IsNull() {
		return Unknown, nil
	}
	r, err := Compare(v, o)
	if err != nil {
		return Unknown, err
	}
	return FromBool(r == Less), nil
}

// LessThanOrEqual is UNKNOWN when either side is null.
func (v Value) LessThanOrEqual(o Value) (Trivalent, error) {
	if v.IsNull() || o.IsNull() {
		return Unknown, nil
	}
	r, err := Compare(v, o)
	if err != nil {
		return Unknown, err
	}
	return FromBool(r != Greater), nil
}

// SortCompare is a total order for sorting: nulls first, then Compare.
// Floating-point operands compare exactly so the order stays transitive.
// Incomparable pairs fall back to ordering by type tag.
func SortCompare(a, b Value) Ordering {
	an, bn := a.IsNull(), b.IsNull()
	switch {
	case an && bn:
		return Equal
	case an:
		return Less
	case bn:
		return Greater
	}
	if ca, cb := classOf(a.typ.ID), classOf(b.typ.ID); (ca == classFloat || cb == classFloat) &&
		isNumericClass(ca) && isNumericClass(cb) {
		x, errX := a.AsFloat64()
		y, errY := b.AsFloat64()
		if errX == nil && errY == nil {
			return compareFloatExact(x, y)
		}
	}
	r, err := Compare(a, b)
	if err != nil {
		return compareOrdered(a.typ.ID, b.typ.ID)
	}
	return r
}
