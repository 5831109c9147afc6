package tuple

import (
	"rowexec/pkg/primitives"
	"rowexec/pkg/types"
)

// Record is one immutable row flowing between operators. It owns exactly
// one RowContainer; every change builds a new Record.
type Record struct {
	row *RowContainer
}

// NewRecord encodes values into a new Record.
func NewRecord(values []types.Value) *Record {
	return &Record{row: NewRowContainer(values)}
}

// RecordFromContainer wraps an existing container.
func RecordFromContainer(rc *RowContainer) *Record {
	return &Record{row: rc}
}

// EmptyRecord is a Record with no fields, used to evaluate constant
// expressions.
func EmptyRecord() *Record {
	return NewRecord(nil)
}

// Field returns the value at slot.
func (r *Record) Field(slot int) (types.Value, error) { return r.row.Field(slot) }

// MustField returns the value at slot and panics if the slot is invalid.
func (r *Record) MustField(slot int) types.Value {
	v, err := r.row.Field(slot)
	if err != nil {
		panic(err)
	}
	return v
}

// Values decodes every field in order.
func (r *Record) Values() ([]types.Value, error) { return r.row.Values() }

func (r *Record) ColumnCount() int { return r.row.ColumnCount() }

// Concat returns a new Record with r's fields followed by other's.
func (r *Record) Concat(other *Record) *Record {
	return &Record{row: r.row.Concat(other.row)}
}

func (r *Record) Hash() primitives.HashCode { return r.row.Hash() }

// Size is the number of bytes the record occupies for memory accounting.
func (r *Record) Size() int { return r.row.ByteSize() }

// Container exposes the underlying RowContainer.
func (r *Record) Container() *RowContainer { return r.row }

func (r *Record) String() string { return r.row.String() }

// NullRecord builds a Record of typed nulls, one per schema column. Outer
// joins use it to pad the unmatched side.
func NullRecord(schema *Schema) *Record {
	values := make([]types.Value, schema.NumColumns())
	for i, col := range schema.Columns() {
		values[i] = types.NewNull(col.Type)
	}
	return NewRecord(values)
}
