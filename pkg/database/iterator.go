package database

import (
	"fmt"

	"github.com/cockroachdb/errors"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
)

// RetSuccess is the return code of a statement that completed.
const RetSuccess = 0

// effectReporter is implemented by plans whose effect is not the number of
// rows they return, such as catalog actions.
type effectReporter interface {
	EffectRows() int64
}

// RecordIterator pulls rows out of a plan and records how the statement
// ended. After Next returns false, GetRetCode, GetRetMsg and
// GetRetLocation describe the outcome and GetEffectRow the rows affected.
type RecordIterator struct {
	conn   *Connection
	plan   iterator.PhysicalPlan
	schema *tuple.Schema

	rows     int64
	effect   int64
	retCode  int
	retMsg   string
	location int
	err      error
	done     bool
}

func newRecordIterator(conn *Connection, plan iterator.PhysicalPlan) *RecordIterator {
	it := &RecordIterator{conn: conn, plan: plan, location: -1}
	if plan != nil {
		it.schema = plan.GetSchema()
	} else {
		it.schema = tuple.NewSchema()
	}
	return it
}

// Next returns the next row, or false once the statement has finished or
// failed.
func (it *RecordIterator) Next() (*tuple.Record, bool) {
	if it.done {
		return nil, false
	}
	rec, _, eof, err := it.plan.Next()
	if err != nil {
		it.fail(err)
		return nil, false
	}
	if eof {
		it.finish()
		return nil, false
	}
	it.rows++
	return rec, true
}

func (it *RecordIterator) finish() {
	it.done = true
	it.effect = it.rows
	if r, ok := it.plan.(effectReporter); ok {
		it.effect = r.EffectRows()
	}
	it.conn.db.stats.RowsReturned.Add(it.rows)
}

func (it *RecordIterator) fail(err error) {
	it.done = true
	it.err = err
	kind := dberr.KindOf(err)
	if kind == dberr.KindUnknown {
		kind = dberr.KindExecutor
	}
	it.retCode = int(kind)
	it.retMsg = err.Error()

	var dbErr *dberr.DBError
	if errors.As(err, &dbErr) {
		it.retMsg = dbErr.Message
		it.location = dbErr.Location
	}
	it.conn.db.stats.ErrorCount.Add(1)
	it.conn.log.Warn("statement failed",
		"code", kind.String(),
		"error", err,
		"rows", it.rows,
		"plan", it.planName())
}

func (it *RecordIterator) planName() string {
	if it.plan == nil {
		return "<none>"
	}
	return it.plan.String()
}

// Close abandons the statement, letting the plan release what it holds.
func (it *RecordIterator) Close() {
	if it.plan != nil && !it.done {
		it.plan.ResetNext()
	}
	it.done = true
}

func (it *RecordIterator) GetSchema() *tuple.Schema { return it.schema }

// GetRetCode is RetSuccess unless the statement failed, in which case it is
// the numeric error kind.
func (it *RecordIterator) GetRetCode() int { return it.retCode }

func (it *RecordIterator) GetRetMsg() string { return it.retMsg }

// GetRetLocation is the statement position of the failure, -1 when unknown.
func (it *RecordIterator) GetRetLocation() int { return it.location }

// GetEffectRow is the number of rows returned, or the rows touched by a
// catalog action.
func (it *RecordIterator) GetEffectRow() int64 { return it.effect }

// GetHeader names the output columns. Unnamed columns are reported as
// col_<index>.
func (it *RecordIterator) GetHeader() []string {
	header := it.schema.Header()
	for i, name := range header {
		if name == "" {
			header[i] = fmt.Sprintf("col_%d", i)
		}
	}
	return header
}

func (it *RecordIterator) ColumnCount() int { return it.schema.NumColumns() }

// Err is the error that ended the statement, if any.
func (it *RecordIterator) Err() error { return it.err }
