package execution

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
)

// CatalogExec runs one administrative action against the catalog on its
// first Next call. It produces no rows; the number of rows the action
// touched is available from EffectRows afterwards.
type CatalogExec struct {
	catalog  iterator.Catalog
	action   iterator.CatalogAction
	status   iterator.CatalogStatus
	executed bool
}

// NewCatalogExec binds action to catalog.
func NewCatalogExec(catalog iterator.Catalog, action iterator.CatalogAction) (*CatalogExec, error) {
	if catalog == nil {
		return nil, dberr.New(dberr.KindFatal, "catalog cannot be nil")
	}
	return &CatalogExec{catalog: catalog, action: action}, nil
}

func (c *CatalogExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if c.executed {
		return nil, iterator.NoCursor, true, nil
	}
	c.executed = true
	c.status = c.catalog.Execute(c.action)
	if c.status.Code != 0 {
		err := dberr.New(dberr.KindExecutor, c.status.Message)
		err.Detail = fmt.Sprintf("catalog %s %s returned code %d", c.action.Kind, c.action.Object, c.status.Code)
		return nil, iterator.NoCursor, true, err.WithOperation("CatalogExec.Next", component)
	}
	return nil, iterator.NoCursor, true, nil
}

// ResetNext allows the action to run again.
func (c *CatalogExec) ResetNext() {
	c.executed = false
	c.status = iterator.CatalogStatus{}
}

// Status is the catalog's answer to the last execution.
func (c *CatalogExec) Status() iterator.CatalogStatus { return c.status }

// EffectRows reports how many rows the action touched.
func (c *CatalogExec) EffectRows() int64 { return c.status.EffectRows }

func (c *CatalogExec) GetSchema() *tuple.Schema          { return tuple.NewSchema() }
func (c *CatalogExec) Children() []iterator.PhysicalPlan { return nil }

func (c *CatalogExec) String() string {
	return fmt.Sprintf("CatalogExec(%s %s)", c.action.Kind, c.action.Object)
}
