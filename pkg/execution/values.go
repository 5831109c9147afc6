package execution

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
)

// ValuesExec serves a literal VALUES list. Every row is evaluated against
// an empty record each time it is produced; nothing is cached.
type ValuesExec struct {
	schema *tuple.Schema
	rows   [][]expression.Expression
	idx    int
}

// NewValuesExec creates a VALUES source. Each row must have one expression
// per schema column.
func NewValuesExec(schema *tuple.Schema, rows [][]expression.Expression) (*ValuesExec, error) {
	for i, row := range rows {
		if len(row) != schema.NumColumns() {
			return nil, dberr.Newf(dberr.KindPlanner,
				"VALUES row %d has %d expressions, expected %d", i, len(row), schema.NumColumns())
		}
	}
	return &ValuesExec{schema: schema, rows: rows}, nil
}

func (v *ValuesExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if v.idx >= len(v.rows) {
		return nil, iterator.NoCursor, true, nil
	}
	row := v.rows[v.idx]
	v.idx++
	rec, err := expression.EvaluateRow(row, tuple.EmptyRecord())
	if err != nil {
		return nil, iterator.NoCursor, true, wrapErr(err, "ValuesExec.Next")
	}
	return rec, iterator.NoCursor, false, nil
}

// Execute evaluates the whole list at once without moving the Next
// position.
func (v *ValuesExec) Execute() ([]*tuple.Record, error) {
	out := make([]*tuple.Record, 0, len(v.rows))
	for _, row := range v.rows {
		rec, err := expression.EvaluateRow(row, tuple.EmptyRecord())
		if err != nil {
			return nil, wrapErr(err, "ValuesExec.Execute")
		}
		out = append(out, rec)
	}
	return out, nil
}

func (v *ValuesExec) ResetNext() {
	v.idx = 0
	for _, row := range v.rows {
		expression.ResetAll(row)
	}
}

func (v *ValuesExec) GetSchema() *tuple.Schema          { return v.schema }
func (v *ValuesExec) Children() []iterator.PhysicalPlan { return nil }
func (v *ValuesExec) String() string                    { return fmt.Sprintf("ValuesExec(rows=%d)", len(v.rows)) }
