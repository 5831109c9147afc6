package database

import (
	"fmt"

	"rowexec/pkg/tuple"
)

// QueryResult is a fully materialised statement result, ready for display.
type QueryResult struct {
	Columns      []string
	Types        []string
	Rows         [][]string
	RowsAffected int64
	Message      string
}

// Materialize drains it into a QueryResult. Null fields render as NULL.
//
// Returns:
//   - QueryResult: header, column types and rendered rows
//   - error: the error that ended the statement, if any
func Materialize(it *RecordIterator) (QueryResult, error) {
	schema := it.GetSchema()
	res := QueryResult{
		Columns: it.GetHeader(),
		Types:   make([]string, schema.NumColumns()),
		Rows:    [][]string{},
	}
	for i, t := range schema.Types() {
		res.Types[i] = t.String()
	}

	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		res.Rows = append(res.Rows, FormatRecord(rec))
	}
	if err := it.Err(); err != nil {
		return res, err
	}

	res.RowsAffected = it.GetEffectRow()
	if schema.NumColumns() == 0 {
		res.Message = fmt.Sprintf("%d row(s) affected", res.RowsAffected)
	} else {
		res.Message = fmt.Sprintf("%d row(s) returned", len(res.Rows))
	}
	return res, nil
}

// FormatRecord renders every field of rec as text.
func FormatRecord(rec *tuple.Record) []string {
	row := make([]string, rec.ColumnCount())
	for i := range row {
		v, err := rec.Field(i)
		if err != nil || v.IsNull() {
			row[i] = "NULL"
			continue
		}
		row[i] = v.String()
	}
	return row
}
