// Package distinct provides the composite key used for grouping,
// deduplication, hash joins and set operations, and the hashed and ordered
// containers built on it.
package distinct

import (
	"bytes"

	"rowexec/pkg/primitives"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Key is a hashable, orderable composite of values. It owns the encoded
// RowContainer; the decoded values are cached for comparisons.
type Key struct {
	row    *tuple.RowContainer
	values []types.Value
	hash   primitives.HashCode
}

// NewKey encodes values into a key. The slice is copied.
func NewKey(values []types.Value) Key {
	vals := make([]types.Value, len(values))
	copy(vals, values)
	row := tuple.NewRowContainer(vals)
	return Key{row: row, values: vals, hash: row.Hash()}
}

// KeyOf projects the given columns of rec into a key.
func KeyOf(rec *tuple.Record, columns []int) (Key, error) {
	values := make([]types.Value, len(columns))
	for i, c := range columns {
		v, err := rec.Field(c)
		if err != nil {
			return Key{}, err
		}
		values[i] = v
	}
	return NewKey(values), nil
}

// KeyOfRecord uses every column of rec.
func KeyOfRecord(rec *tuple.Record) (Key, error) {
	values, err := rec.Values()
	if err != nil {
		return Key{}, err
	}
	return Key{row: rec.Container(), values: values, hash: rec.Hash()}, nil
}

// Hash is the container hash: payload bytes plus null flags and type tags.
func (k Key) Hash() primitives.HashCode { return k.hash }

// Len returns the number of fields.
func (k Key) Len() int { return len(k.values) }

// Values returns the key fields. Callers must not modify the slice.
func (k Key) Values() []types.Value { return k.values }

// HasNull reports whether any field is null.
func (k Key) HasNull() bool {
	for _, v := range k.values {
		if v.IsNull() {
			return true
		}
	}
	return false
}

// Equal compares field-wise. Two nulls are equal; a null never equals a
// non-null; non-null fields must share a type tag and compare TRUE.
// Floating-point fields must be bit-identical, matching the byte hash.
func (k Key) Equal(o Key) bool {
	if len(k.values) != len(o.values) {
		return false
	}
	for i := range k.values {
		left, right := k.values[i], o.values[i]
		if left.IsNull() || right.IsNull() {
			if left.IsNull() != right.IsNull() {
				return false
			}
			continue
		}
		if left.TypeID() != right.TypeID() {
			return false
		}
		if isFloat(left) {
			if !bytes.Equal(left.RawBytes(), right.RawBytes()) {
				return false
			}
			continue
		}
		if res, err := left.Equal(right); err != nil || res != types.True {
			return false
		}
	}
	return true
}

func isFloat(v types.Value) bool {
	return v.TypeID() == types.RealType || v.TypeID() == types.FloatType
}

// Less orders keys. Shorter keys come first. Within a field a null on the
// left is never less and a null on the right always is. When the left
// field's type tag is lower than the right's the pair is not less, whatever
// the values; this mirrors the ordering existing stored keys rely on.
func (k Key) Less(o Key) bool {
	if len(k.values) != len(o.values) {
		return len(k.values) < len(o.values)
	}
	for i := range k.values {
		left, right := k.values[i], o.values[i]
		if left.IsNull() || right.IsNull() {
			if left.IsNull() && !right.IsNull() {
				return false
			}
			if !left.IsNull() && right.IsNull() {
				return true
			}
			continue
		}
		if left.TypeID() < right.TypeID() {
			return false
		}
		if isFloat(left) && isFloat(right) {
			switch types.SortCompare(left, right) {
			case types.Less:
				return true
			case types.Greater:
				return false
			}
			// 0 and -0: order by encoding so Less agrees with Equal.
			if c := bytes.Compare(left.RawBytes(), right.RawBytes()); c != 0 {
				return c < 0
			}
			continue
		}
		lt, err := left.LessThan(right)
		if err == nil && lt == types.True {
			return true
		}
		if eq, err := left.Equal(right); err == nil && eq == types.True {
			continue
		}
		return false
	}
	return false
}

// compare adapts Less to a three-way result for binary search.
func (k Key) compare(o Key) int {
	switch {
	case k.Less(o):
		return -1
	case o.Less(k):
		return 1
	default:
		return 0
	}
}

// ToRecord converts the key back into a Record sharing its container.
func (k Key) ToRecord() *tuple.Record {
	if k.row == nil {
		return tuple.EmptyRecord()
	}
	return tuple.RecordFromContainer(k.row)
}

func (k Key) String() string {
	if k.row == nil {
		return "()"
	}
	return k.row.String()
}
