package tuple

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/types"
)

func TestRecord_Basics(t *testing.T) {
	r := NewRecord([]types.Value{types.NewInteger(1), types.NewVarchar("x")})

	assert.Equal(t, 2, r.ColumnCount())
	assert.Equal(t, "x", r.MustField(1).String())
	assert.Equal(t, "(1, x)", r.String())
	assert.Greater(t, r.Size(), 0)
	assert.Panics(t, func() { r.MustField(2) })
}

func TestRecord_ConcatBuildsNewRecord(t *testing.T) {
	a := NewRecord([]types.Value{types.NewInteger(1)})
	b := NewRecord([]types.Value{types.NewVarchar("b")})

	ab := a.Concat(b)
	assert.Equal(t, 2, ab.ColumnCount())
	assert.Equal(t, 1, a.ColumnCount())
	assert.Equal(t, "(1, b)", ab.String())
}

func TestEmptyRecord(t *testing.T) {
	r := EmptyRecord()
	assert.Equal(t, 0, r.ColumnCount())
	_, err := r.Field(0)
	assert.Error(t, err)
}

func TestNullRecord(t *testing.T) {
	schema := NewSchema(
		Column{Name: "k", Type: types.Integer()},
		Column{Name: "v", Type: types.Varchar(8)},
	)
	r := NullRecord(schema)
	values, err := r.Values()
	require.NoError(t, err)
	require.Len(t, values, 2)
	for i, v := range values {
		assert.True(t, v.IsNull())
		assert.True(t, schema.Columns()[i].Type.Equals(v.Type()))
	}
}

// ============================================================================
// Schema
// ============================================================================

func TestSchema_Lookup(t *testing.T) {
	schema := NewSchema(
		Column{Name: "id", Table: "t1", Type: types.Integer()},
		Column{Name: "id", Table: "t2", Type: types.Integer()},
		Column{Name: "name", Table: "t2", Type: types.Varchar(20)},
	)

	idx, err := schema.IndexOf("t2.id")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = schema.IndexOf("NAME")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = schema.IndexOf("id")
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))

	_, err = schema.IndexOf("missing")
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))

	_, err = schema.Column(3)
	assert.True(t, dberr.IsKind(err, dberr.KindPlanner))
}

func TestSchema_ConcatAndProject(t *testing.T) {
	left := NewSchema(Column{Name: "a", Type: types.Integer()})
	right := NewSchema(Column{Name: "b", Type: types.Varchar(4)}, Column{Name: "c", Type: types.Real()})

	joined := left.Concat(right)
	assert.Equal(t, []string{"a", "b", "c"}, joined.Header())
	assert.Equal(t, 2, joined.Columns()[2].Slot)

	projected, err := joined.Project([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, projected.Header())
	assert.Equal(t, 0, projected.Columns()[0].Slot)

	_, err = joined.Project([]int{5})
	assert.Error(t, err)
}

func TestSchemaOf_LengthMismatch(t *testing.T) {
	_, err := SchemaOf([]string{"a"}, nil)
	assert.Error(t, err)
}

// ============================================================================
// Builder
// ============================================================================

func TestBuilder_CastsToColumnTypes(t *testing.T) {
	schema := NewSchema(
		Column{Name: "id", Type: types.Integer()},
		Column{Name: "price", Type: types.Decimal(6, 2)},
		Column{Name: "ok", Type: types.Boolean()},
		Column{Name: "at", Type: types.Timestamp()},
		Column{Name: "note", Type: types.Varchar(10)},
	)
	r, err := NewBuilder(schema).
		AddInt(7).
		AddFloat(1.5).
		AddBool(true).
		AddTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)).
		AddNull().
		Build()
	require.NoError(t, err)

	assert.Equal(t, types.IntegerType, r.MustField(0).TypeID())
	assert.Equal(t, "1.50", r.MustField(1).String())
	assert.Equal(t, "true", r.MustField(2).String())
	assert.Equal(t, "2024-01-02 03:04:05", r.MustField(3).String())
	assert.True(t, r.MustField(4).IsNull())
}

func TestBuilder_Errors(t *testing.T) {
	schema := NewSchema(Column{Name: "small", Type: types.TinyInt()})

	_, err := NewBuilder(schema).AddInt(1000).Build()
	assert.True(t, dberr.IsKind(err, dberr.KindOutOfRange))

	_, err = NewBuilder(schema).Build()
	assert.Error(t, err)

	_, err = NewBuilder(schema).AddInt(1).AddInt(2).Build()
	assert.Error(t, err)

	assert.Panics(t, func() { NewBuilder(schema).MustBuild() })
}
