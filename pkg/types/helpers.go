package types

import (
	"cmp"

	dberr "rowexec/pkg/error"
)

// Ordering is the outcome of a total-order comparison.
type Ordering int8

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "LESS"
	case Greater:
		return "GREATER"
	default:
		return "EQUAL"
	}
}

func (o Ordering) invert() Ordering { return -o }

// compareOrdered orders two values of any ordered Go type.
func compareOrdered[T cmp.Ordered](a, b T) Ordering {
	return Ordering(cmp.Compare(a, b))
}

func errNullCast() error {
	return dberr.New(dberr.KindExecutor, "null can't use CastAs")
}

func errMismatch(v Value, target string) error {
	return dberr.Newf(dberr.KindMismatchType, "can't cast %s to %s", v.typ, target)
}

func errOutOfRange(v Value, target string) error {
	return dberr.Newf(dberr.KindOutOfRange, "value %s out of range for %s", v.String(), target)
}
