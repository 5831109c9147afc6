package iterator

import "rowexec/pkg/tuple"

// Cursor is an opaque handle to the storage position a row came from. Rows
// produced by computation rather than read from storage carry NoCursor.
type Cursor int64

// NoCursor marks a row with no storage position.
const NoCursor Cursor = -1

// PhysicalPlan is the contract every operator node implements. Execution
// is pull-based: the root's Next drives the whole tree.
type PhysicalPlan interface {
	// Next produces the next row. eof is true once the stream is exhausted;
	// the record is nil in that case. A non-nil error fails the statement.
	Next() (rec *tuple.Record, cur Cursor, eof bool, err error)

	// ResetNext returns the node and all its descendants to the state they
	// had before the first Next call. Hash tables and materialized buffers
	// are cleared. Calling it repeatedly is harmless.
	ResetNext()

	// GetSchema describes the rows Next produces. It has no side effects.
	GetSchema() *tuple.Schema

	// Children lists the direct inputs, leftmost first.
	Children() []PhysicalPlan

	String() string
}

// DataSource is the narrow contract through which leaf operators read rows
// from storage.
type DataSource interface {
	GetSchema() *tuple.Schema
	Next() (rec *tuple.Record, cur Cursor, eof bool, err error)
	ResetNext()
}

// CatalogAction describes one DDL or administrative request.
type CatalogAction struct {
	// Kind names the action, e.g. "CREATE_TABLE" or "DROP_TABLE".
	Kind     string
	Object   string
	Schema   *tuple.Schema
	IfExists bool
}

// CatalogStatus is the black-box result of a catalog call. Code 0 means
// success; anything else carries Message.
type CatalogStatus struct {
	Code       int
	Message    string
	EffectRows int64
}

// Catalog executes administrative actions on behalf of CatalogExec.
type Catalog interface {
	Execute(action CatalogAction) CatalogStatus
}
