package tuple

import (
	"fmt"
	"time"

	"rowexec/pkg/types"
)

// Builder provides a fluent interface for constructing records against a
// schema. Each added value is cast to the type of the column it fills.
type Builder struct {
	schema       *Schema
	values       []types.Value
	currentIndex int
	err          error
}

// NewBuilder creates a new record builder with the given schema
func NewBuilder(schema *Schema) *Builder {
	return &Builder{
		schema: schema,
		values: make([]types.Value, 0, schema.NumColumns()),
	}
}

// AddValue casts value to the current column's type and appends it.
func (b *Builder) AddValue(value types.Value) *Builder {
	if b.err != nil {
		return b
	}
	col, err := b.schema.Column(b.currentIndex)
	if err != nil {
		b.err = fmt.Errorf("field %d: %w", b.currentIndex, err)
		return b
	}
	cast, err := types.CastValue(value, col.Type)
	if err != nil {
		b.err = fmt.Errorf("field %d (%s): %w", b.currentIndex, col.Name, err)
		return b
	}
	b.values = append(b.values, cast)
	b.currentIndex++
	return b
}

// AddInt adds an integer field at the current index
func (b *Builder) AddInt(value int64) *Builder {
	return b.AddValue(types.NewBigInt(value))
}

// AddString adds a string field at the current index
func (b *Builder) AddString(value string) *Builder {
	return b.AddValue(types.NewVarchar(value))
}

// AddFloat adds a float field at the current index
func (b *Builder) AddFloat(value float64) *Builder {
	return b.AddValue(types.NewReal(value))
}

// AddBool adds a boolean field at the current index
func (b *Builder) AddBool(value bool) *Builder {
	return b.AddValue(types.NewBoolean(value))
}

// AddTimestamp adds a timestamp field at the current index
func (b *Builder) AddTimestamp(value time.Time) *Builder {
	return b.AddValue(types.NewTimestamp(types.TimestampFromTime(value)))
}

// AddNull adds a typed null at the current index
func (b *Builder) AddNull() *Builder {
	return b.AddValue(types.NewNull(types.Null()))
}

// Build returns the record or the first error encountered.
func (b *Builder) Build() (*Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.currentIndex != b.schema.NumColumns() {
		return nil, fmt.Errorf("incomplete record: expected %d fields, got %d",
			b.schema.NumColumns(), b.currentIndex)
	}
	return NewRecord(b.values), nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
