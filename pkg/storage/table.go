package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/memory"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Table is an in-memory heap of rows sharing one schema.
type Table struct {
	mu     sync.RWMutex
	name   string
	schema *tuple.Schema
	rows   []*tuple.Record
	bytes  int
}

func newTable(name string, schema *tuple.Schema) *Table {
	return &Table{name: name, schema: schema}
}

func (t *Table) Name() string          { return t.name }
func (t *Table) Schema() *tuple.Schema { return t.schema }

// Len returns the number of stored rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Row returns the row at position i, or nil when out of range.
func (t *Table) Row(i int) *tuple.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// conform casts values to the column types of the table.
func (t *Table) conform(values []types.Value) (*tuple.Record, error) {
	if len(values) != t.schema.NumColumns() {
		return nil, dberr.Newf(dberr.KindPlanner, "table %s has %d columns but %d values were supplied",
			t.name, t.schema.NumColumns(), len(values))
	}
	out := make([]types.Value, len(values))
	for i, col := range t.schema.Columns() {
		v, err := types.CastValue(values[i], col.Type)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return tuple.NewRecord(out), nil
}

// Store is the set of tables of one database. It is safe for concurrent use:
// connections scan tables while others add rows or run catalog actions.
type Store struct {
	mu       sync.RWMutex
	tables   map[string]*Table
	acc      *memory.Account
	defaults types.TypeDefaults
}

// NewStore creates an empty store. Stored rows are charged to acc; a nil
// account disables accounting.
func NewStore(acc *memory.Account) *Store {
	return &Store{tables: make(map[string]*Table), acc: acc, defaults: types.DefaultTypeDefaults()}
}

// SetTypeDefaults changes the widths fixture columns get when their type
// name has no arguments.
func (s *Store) SetTypeDefaults(d types.TypeDefaults) {
	s.mu.Lock()
	s.defaults = d
	s.mu.Unlock()
}

func (s *Store) typeDefaults() types.TypeDefaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

func tableKey(name string) string { return strings.ToLower(name) }

// CreateTable registers an empty table.
//
// Returns:
//   - *Table: the new table
//   - error: EXECUTOR if a table with that name already exists
func (s *Store) CreateTable(name string, schema *tuple.Schema) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableKey(name)]; ok {
		return nil, dberr.Newf(dberr.KindExecutor, "table %s already exists", name)
	}
	t := newTable(name, schema)
	s.tables[tableKey(name)] = t
	return t, nil
}

// Table looks a table up by case-insensitive name.
func (s *Store) Table(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableKey(name)]
	return t, ok
}

// TableNames lists the tables in name order.
func (s *Store) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for _, t := range s.tables {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// Insert appends one row to the named table, casting each value to its
// column type.
func (s *Store) Insert(table string, values ...types.Value) error {
	t, ok := s.Table(table)
	if !ok {
		return dberr.Newf(dberr.KindPlanner, "table %s does not exist", table)
	}
	rec, err := t.conform(values)
	if err != nil {
		return wrapErr(err, "Store.Insert")
	}
	if s.acc != nil {
		if err := s.acc.Grow(rec.Size()); err != nil {
			return err
		}
	}
	t.mu.Lock()
	t.rows = append(t.rows, rec)
	t.bytes += rec.Size()
	t.mu.Unlock()
	return nil
}

// DropTable removes a table and returns its row count.
func (s *Store) DropTable(name string) (int, error) {
	s.mu.Lock()
	t, ok := s.tables[tableKey(name)]
	if ok {
		delete(s.tables, tableKey(name))
	}
	s.mu.Unlock()
	if !ok {
		return 0, dberr.Newf(dberr.KindExecutor, "table %s does not exist", name)
	}
	return s.truncate(t), nil
}

// truncate empties t and refunds its bytes.
func (s *Store) truncate(t *Table) int {
	t.mu.Lock()
	n, freed := len(t.rows), t.bytes
	t.rows, t.bytes = nil, 0
	t.mu.Unlock()
	if s.acc != nil {
		s.acc.Shrink(freed)
	}
	return n
}

// Scan opens a sequential scan over the named table.
func (s *Store) Scan(name string) (*TableSource, error) {
	t, ok := s.Table(name)
	if !ok {
		return nil, dberr.Newf(dberr.KindPlanner, "table %s does not exist", name)
	}
	return NewTableSource(t), nil
}

// TableSource is a DataSource reading a Table front to back. Rows appended
// during the scan are visible once the scan reaches them.
type TableSource struct {
	table *Table
	pos   int
}

func NewTableSource(t *Table) *TableSource { return &TableSource{table: t} }

func (ts *TableSource) GetSchema() *tuple.Schema { return ts.table.schema }

func (ts *TableSource) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	rec := ts.table.Row(ts.pos)
	if rec == nil {
		return nil, iterator.NoCursor, true, nil
	}
	cur := iterator.Cursor(ts.pos)
	ts.pos++
	return rec, cur, false, nil
}

func (ts *TableSource) ResetNext() { ts.pos = 0 }

func (ts *TableSource) String() string {
	return fmt.Sprintf("TableSource(%s)", ts.table.name)
}
