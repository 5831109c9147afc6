package expression

import (
	"fmt"

	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// Cast converts its child to a target type. A TRY_CAST yields a null of the
// target type where CAST would fail.
type Cast struct {
	target  types.LogicalType
	child   Expression
	tryCast bool
}

func NewCast(target types.LogicalType, child Expression) *Cast {
	return &Cast{target: target, child: child}
}

func NewTryCast(target types.LogicalType, child Expression) *Cast {
	return &Cast{target: target, child: child, tryCast: true}
}

func (c *Cast) Evaluate(rec *tuple.Record) (types.Value, error) {
	v, err := c.child.Evaluate(rec)
	if err != nil {
		return types.Value{}, err
	}
	return c.convert(v)
}

func (c *Cast) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	v, err := c.child.ReEvaluate(rec)
	if err != nil {
		return types.Value{}, err
	}
	return c.convert(v)
}

func (c *Cast) convert(v types.Value) (types.Value, error) {
	if c.tryCast {
		out, ok := types.TryCast(v, c.target)
		if !ok {
			return types.NewNull(c.target), nil
		}
		return out, nil
	}
	return types.CastValue(v, c.target)
}

func (c *Cast) Reset()                         { c.child.Reset() }
func (c *Cast) LogicalType() types.LogicalType { return c.target }

func (c *Cast) String() string {
	if c.tryCast {
		return fmt.Sprintf("TRY_CAST ( %s AS %s )", c.child, c.target)
	}
	return fmt.Sprintf("CAST ( %s AS %s )", c.child, c.target)
}
