package tuple

import (
	"fmt"
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/types"
)

// Column describes one output column of an operator.
type Column struct {
	Name  string
	Table string // qualifying table or alias, may be empty
	Type  types.LogicalType
	Slot  int // position within the schema
}

// QualifiedName returns "table.name", or just the name when unqualified.
func (c Column) QualifiedName() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Schema describes the shape of the Records an operator produces.
// It contains the names and types of the columns, providing metadata
// about the structure of every row flowing out of a plan node.
type Schema struct {
	columns []Column
}

// NewSchema creates a Schema from the given columns, renumbering slots to
// match their positions.
//
// Parameters:
//   - columns: column definitions in output order (may be empty)
//
// Returns:
//   - *Schema: newly created schema owning a copy of the columns
func NewSchema(columns ...Column) *Schema {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	for i := range cols {
		cols[i].Slot = i
	}
	return &Schema{columns: cols}
}

// SchemaOf builds an unqualified schema from parallel names and types.
//
// Parameters:
//   - names: column names
//   - colTypes: column types, one per name
//
// Returns:
//   - *Schema: the new schema
//   - error: if the two slices differ in length
func SchemaOf(names []string, colTypes []types.LogicalType) (*Schema, error) {
	if len(names) != len(colTypes) {
		return nil, fmt.Errorf("column names length (%d) must match column types length (%d)",
			len(names), len(colTypes))
	}
	cols := make([]Column, len(names))
	for i := range names {
		cols[i] = Column{Name: names[i], Type: colTypes[i]}
	}
	return NewSchema(cols...), nil
}

// NumColumns returns the number of columns in this schema.
func (s *Schema) NumColumns() int {
	return len(s.columns)
}

// Column returns the column at index i.
//
// Parameters:
//   - i: zero-based column index
//
// Returns:
//   - Column: the column definition
//   - error: a PLANNER error if i is out of bounds
func (s *Schema) Column(i int) (Column, error) {
	if i < 0 || i >= len(s.columns) {
		return Column{}, dberr.Newf(dberr.KindPlanner, "unknown column index %d, schema has %d columns", i, len(s.columns))
	}
	return s.columns[i], nil
}

// Columns returns the column list. Callers must not modify it.
func (s *Schema) Columns() []Column {
	return s.columns
}

// Types returns the column types in order.
func (s *Schema) Types() []types.LogicalType {
	out := make([]types.LogicalType, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Type
	}
	return out
}

// Header returns display names for the columns.
func (s *Schema) Header() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// IndexOf finds a column by name, optionally qualified as "table.name".
// Matching is case-insensitive.
//
// Returns:
//   - int: the column index
//   - error: a PLANNER error if no column or more than one column matches
func (s *Schema) IndexOf(name string) (int, error) {
	table, col := "", name
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		table, col = name[:dot], name[dot+1:]
	}
	found := -1
	for i, c := range s.columns {
		if !strings.EqualFold(c.Name, col) {
			continue
		}
		if table != "" && !strings.EqualFold(c.Table, table) {
			continue
		}
		if found >= 0 {
			return -1, dberr.Newf(dberr.KindPlanner, "column %s is ambiguous", name)
		}
		found = i
	}
	if found < 0 {
		return -1, dberr.Newf(dberr.KindPlanner, "unknown column %s", name)
	}
	return found, nil
}

// Concat returns a schema with s's columns followed by other's.
func (s *Schema) Concat(other *Schema) *Schema {
	cols := make([]Column, 0, len(s.columns)+len(other.columns))
	cols = append(cols, s.columns...)
	cols = append(cols, other.columns...)
	return NewSchema(cols...)
}

// Project returns a schema holding the listed columns in the given order.
func (s *Schema) Project(indices []int) (*Schema, error) {
	cols := make([]Column, len(indices))
	for i, idx := range indices {
		c, err := s.Column(idx)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return NewSchema(cols...), nil
}

// Equals compares column types positionally.
func (s *Schema) Equals(other *Schema) bool {
	if s.NumColumns() != other.NumColumns() {
		return false
	}
	for i := range s.columns {
		if !s.columns[i].Type.Equals(other.columns[i].Type) {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = fmt.Sprintf("%s(%s)", c.QualifiedName(), c.Type)
	}
	return strings.Join(parts, ", ")
}
