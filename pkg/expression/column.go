package expression

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// ColumnValue reads one slot of the input record.
type ColumnValue struct {
	name string
	slot int
	typ  types.LogicalType
}

// NewColumnValue binds slot of schema. A slot outside the schema is a
// PLANNER error.
func NewColumnValue(schema *tuple.Schema, slot int) (*ColumnValue, error) {
	col, err := schema.Column(slot)
	if err != nil {
		return nil, err
	}
	return &ColumnValue{name: col.QualifiedName(), slot: slot, typ: col.Type}, nil
}

// NewColumnRef builds a column reference without a schema lookup.
func NewColumnRef(name string, slot int, typ types.LogicalType) *ColumnValue {
	return &ColumnValue{name: name, slot: slot, typ: typ}
}

func (c *ColumnValue) Evaluate(rec *tuple.Record) (types.Value, error) {
	return rec.Field(c.slot)
}

func (c *ColumnValue) ReEvaluate(rec *tuple.Record) (types.Value, error) { return c.Evaluate(rec) }
func (c *ColumnValue) Reset()                                            {}
func (c *ColumnValue) LogicalType() types.LogicalType                    { return c.typ }
func (c *ColumnValue) Slot() int                                         { return c.slot }

func (c *ColumnValue) String() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("#%d", c.slot)
}

// ColumnParam is a placeholder for an outer-query column inside a correlated
// subquery. It evaluates to whatever value was last bound into it; the
// record passed to Evaluate is ignored.
type ColumnParam struct {
	name  string
	slot  int
	typ   types.LogicalType
	value types.Value
	bound bool
}

// NewColumnParam creates a placeholder for slot of the outer record.
func NewColumnParam(name string, slot int, typ types.LogicalType) *ColumnParam {
	return &ColumnParam{name: name, slot: slot, typ: typ, value: types.NewNull(typ)}
}

// Bind captures the outer column from rec.
func (p *ColumnParam) Bind(rec *tuple.Record) error {
	v, err := rec.Field(p.slot)
	if err != nil {
		return err
	}
	p.value, p.bound = v, true
	return nil
}

// BindValues captures the outer column from an already decoded row.
func (p *ColumnParam) BindValues(values []types.Value) error {
	if p.slot < 0 || p.slot >= len(values) {
		return dberr.Newf(dberr.KindPlanner, "unfound slot=%d", p.slot)
	}
	p.value, p.bound = values[p.slot], true
	return nil
}

func (p *ColumnParam) Evaluate(*tuple.Record) (types.Value, error) { return p.value, nil }

func (p *ColumnParam) ReEvaluate(rec *tuple.Record) (types.Value, error) { return p.Evaluate(rec) }

// Reset keeps the bound value; only a new Bind replaces it.
func (p *ColumnParam) Reset() {}

func (p *ColumnParam) LogicalType() types.LogicalType { return p.typ }
func (p *ColumnParam) Slot() int                      { return p.slot }
func (p *ColumnParam) Bound() bool                    { return p.bound }

func (p *ColumnParam) String() string {
	if p.bound {
		return p.value.SQLString()
	}
	return "$" + p.name
}
