package expression

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// LogicOp is a boolean connective.
type LogicOp int

const (
	And LogicOp = iota
	Or
	Not
)

func (op LogicOp) String() string {
	switch op {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	default:
		return fmt.Sprintf("LogicOp(%d)", int(op))
	}
}

// LogicBinary is AND or OR. Both operands are always evaluated; a null
// operand counts as UNKNOWN.
type LogicBinary struct {
	op          LogicOp
	left, right Expression
}

func NewLogicBinary(op LogicOp, left, right Expression) (*LogicBinary, error) {
	if op != And && op != Or {
		return nil, dberr.Newf(dberr.KindExecutor, "unknown binary logic op %s", op)
	}
	return &LogicBinary{op: op, left: left, right: right}, nil
}

func (l *LogicBinary) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	lv, err := eval(l.left, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	rv, err := eval(l.right, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	lt, err := truth(lv)
	if err != nil {
		return types.Value{}, err
	}
	rt, err := truth(rv)
	if err != nil {
		return types.Value{}, err
	}
	if l.op == And {
		return types.NewTrivalent(lt.And(rt)), nil
	}
	return types.NewTrivalent(lt.Or(rt)), nil
}

func (l *LogicBinary) Evaluate(rec *tuple.Record) (types.Value, error) { return l.evaluate(rec, false) }
func (l *LogicBinary) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	return l.evaluate(rec, true)
}
func (l *LogicBinary) Reset()                         { resetAll(l.left, l.right) }
func (l *LogicBinary) LogicalType() types.LogicalType { return types.Boolean() }

func (l *LogicBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", l.left, l.op, l.right)
}

// LogicUnary is NOT. NOT UNKNOWN is UNKNOWN.
type LogicUnary struct {
	child Expression
}

func NewNot(child Expression) *LogicUnary { return &LogicUnary{child: child} }

func (l *LogicUnary) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	v, err := eval(l.child, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	t, err := truth(v)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewTrivalent(t.Not()), nil
}

func (l *LogicUnary) Evaluate(rec *tuple.Record) (types.Value, error)   { return l.evaluate(rec, false) }
func (l *LogicUnary) ReEvaluate(rec *tuple.Record) (types.Value, error) { return l.evaluate(rec, true) }
func (l *LogicUnary) Reset()                                            { l.child.Reset() }
func (l *LogicUnary) LogicalType() types.LogicalType                    { return types.Boolean() }
func (l *LogicUnary) String() string                                    { return "NOT " + l.child.String() }

// Conjunctive is an n-ary AND that stops at the first FALSE term.
type Conjunctive struct {
	items []Expression
}

func NewConjunctive(items ...Expression) *Conjunctive { return &Conjunctive{items: items} }

func (c *Conjunctive) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	result := types.True
	for _, item := range c.items {
		v, err := eval(item, rec, fresh)
		if err != nil {
			return types.Value{}, err
		}
		t, err := truth(v)
		if err != nil {
			return types.Value{}, err
		}
		result = result.And(t)
		if result == types.False {
			break
		}
	}
	return types.NewTrivalent(result), nil
}

func (c *Conjunctive) Evaluate(rec *tuple.Record) (types.Value, error) { return c.evaluate(rec, false) }
func (c *Conjunctive) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	return c.evaluate(rec, true)
}
func (c *Conjunctive) Reset()                         { resetAll(c.items...) }
func (c *Conjunctive) LogicalType() types.LogicalType { return types.Boolean() }
func (c *Conjunctive) String() string                 { return joinStrings(c.items, " AND ") }
