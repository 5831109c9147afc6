// Package storage provides the row sources the execution engine reads from.
//
// Tables live in memory inside a Store, which also answers catalog actions
// (CREATE_TABLE, DROP_TABLE, TRUNCATE) for CatalogExec. Rows held by a
// Store are charged to a memory account.
//
// # Sources
//
//   - [TableSource]   – sequential scan over a Store table; the cursor is
//     the row's position in the table.
//   - [ParquetSource] – sequential scan over a flat parquet file, decoded
//     in batches.
//
// Tables can be seeded from YAML fixture files with [LoadFixtures].
package storage

import dberr "rowexec/pkg/error"

const component = "storage"

func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
