package expression

import (
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Constant is a literal value.
type Constant struct {
	value types.Value
}

func NewConstant(v types.Value) *Constant { return &Constant{value: v} }

func (c *Constant) Evaluate(*tuple.Record) (types.Value, error)       { return c.value, nil }
func (c *Constant) ReEvaluate(rec *tuple.Record) (types.Value, error) { return c.Evaluate(rec) }
func (c *Constant) Reset()                                            {}
func (c *Constant) LogicalType() types.LogicalType                    { return c.value.Type() }
func (c *Constant) String() string                                    { return c.value.SQLString() }

// Value returns the literal.
func (c *Constant) Value() types.Value { return c.value }
