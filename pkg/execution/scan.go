package execution

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// ScanExec is the leaf that turns a DataSource into an operator. Pushed-down
// predicates are checked against the full source row before the optional
// column projection is applied.
type ScanExec struct {
	source     iterator.DataSource
	table      string
	schema     *tuple.Schema
	projection []int
	predicates []expression.Expression
}

// NewScanExec creates a scan over source. Output columns are qualified with
// table.
//
// Parameters:
//   - table: name or alias used to qualify the output columns
//   - source: storage collaborator delivering raw rows (cannot be nil)
//
// Returns:
//   - *ScanExec: the scan operator
//   - error: FATAL when source is nil
func NewScanExec(table string, source iterator.DataSource) (*ScanExec, error) {
	if source == nil {
		return nil, dberr.New(dberr.KindFatal, "data source cannot be nil")
	}
	return &ScanExec{
		source: source,
		table:  table,
		schema: qualify(source.GetSchema(), table),
	}, nil
}

func qualify(schema *tuple.Schema, table string) *tuple.Schema {
	if table == "" {
		return schema
	}
	cols := make([]tuple.Column, schema.NumColumns())
	for i, c := range schema.Columns() {
		c.Table = table
		cols[i] = c
	}
	return tuple.NewSchema(cols...)
}

// WithPredicates adds filters evaluated on every source row.
func (s *ScanExec) WithPredicates(preds ...expression.Expression) *ScanExec {
	s.predicates = append(s.predicates, preds...)
	return s
}

// WithProjection keeps only the listed source columns, in order.
//
// Returns:
//   - error: PLANNER when an index is outside the source schema
func (s *ScanExec) WithProjection(columns []int) error {
	full := qualify(s.source.GetSchema(), s.table)
	projected, err := full.Project(columns)
	if err != nil {
		return err
	}
	s.projection = columns
	s.schema = projected
	return nil
}

func (s *ScanExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	for {
		rec, cur, eof, err := s.source.Next()
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "ScanExec.Next")
		}
		if eof {
			return nil, iterator.NoCursor, true, nil
		}
		if rec == nil {
			rec = tuple.EmptyRecord()
		}

		keep := true
		for _, p := range s.predicates {
			ok, err := expression.IsTrue(p, rec)
			if err != nil {
				return nil, iterator.NoCursor, true, wrapErr(err, "ScanExec.Next")
			}
			if !ok {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		if s.projection == nil {
			return rec, cur, false, nil
		}
		out, err := s.project(rec)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "ScanExec.Next")
		}
		return out, cur, false, nil
	}
}

func (s *ScanExec) project(rec *tuple.Record) (*tuple.Record, error) {
	values := make([]types.Value, len(s.projection))
	for i, c := range s.projection {
		v, err := rec.Field(c)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return tuple.NewRecord(values), nil
}

func (s *ScanExec) ResetNext() {
	s.source.ResetNext()
	expression.ResetAll(s.predicates)
}

func (s *ScanExec) GetSchema() *tuple.Schema          { return s.schema }
func (s *ScanExec) Children() []iterator.PhysicalPlan { return nil }

// Table returns the qualifying name.
func (s *ScanExec) Table() string { return s.table }

func (s *ScanExec) String() string {
	if s.projection == nil {
		return fmt.Sprintf("SeqScan: table=%s projection=None", s.table)
	}
	return fmt.Sprintf("SeqScan: table=%s projection=%v", s.table, s.projection)
}
