package expression

import (
	"fmt"

	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// WhenThen is one branch of a CASE.
type WhenThen struct {
	When Expression
	Then Expression
}

// Case returns the THEN of the first branch whose WHEN is TRUE, else the
// ELSE value, else a null of the result type.
type Case struct {
	branches []WhenThen
	orElse   Expression
	typ      types.LogicalType
}

// NewCase builds a CASE whose result type is typ. orElse may be nil.
func NewCase(typ types.LogicalType, branches []WhenThen, orElse Expression) *Case {
	return &Case{branches: branches, orElse: orElse, typ: typ}
}

func (c *Case) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	for _, b := range c.branches {
		w, err := eval(b.When, rec, fresh)
		if err != nil {
			return types.Value{}, err
		}
		t, err := truth(w)
		if err != nil {
			return types.Value{}, err
		}
		if t == types.True {
			return eval(b.Then, rec, fresh)
		}
	}
	if c.orElse != nil {
		return eval(c.orElse, rec, fresh)
	}
	return types.NewNull(c.typ), nil
}

func (c *Case) Evaluate(rec *tuple.Record) (types.Value, error)   { return c.evaluate(rec, false) }
func (c *Case) ReEvaluate(rec *tuple.Record) (types.Value, error) { return c.evaluate(rec, true) }
func (c *Case) LogicalType() types.LogicalType                    { return c.typ }

func (c *Case) Reset() {
	for _, b := range c.branches {
		resetAll(b.When, b.Then)
	}
	resetAll(c.orElse)
}

func (c *Case) String() string {
	s := "CASE"
	for _, b := range c.branches {
		s += fmt.Sprintf(" WHEN %s THEN %s", b.When, b.Then)
	}
	if c.orElse != nil {
		s += " ELSE " + c.orElse.String()
	}
	return s + " END"
}

// In tests membership of a value in a list. A null probe, or no match
// with a null somewhere in the list, yields a null BOOLEAN.
type In struct {
	probe Expression
	list  []Expression
	not   bool
}

func NewIn(probe Expression, list []Expression) *In { return &In{probe: probe, list: list} }

func NewNotIn(probe Expression, list []Expression) *In {
	return &In{probe: probe, list: list, not: true}
}

func (in *In) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	p, err := eval(in.probe, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	if p.IsNull() {
		return types.NewNull(types.Boolean()), nil
	}
	hasNull := false
	for _, e := range in.list {
		v, err := eval(e, rec, fresh)
		if err != nil {
			return types.Value{}, err
		}
		if v.IsNull() {
			hasNull = true
			continue
		}
		eq, err := p.Equal(v)
		if err != nil {
			return types.Value{}, err
		}
		if eq == types.True {
			return types.NewBoolean(!in.not), nil
		}
	}
	if hasNull {
		return types.NewNull(types.Boolean()), nil
	}
	return types.NewBoolean(in.not), nil
}

func (in *In) Evaluate(rec *tuple.Record) (types.Value, error)   { return in.evaluate(rec, false) }
func (in *In) ReEvaluate(rec *tuple.Record) (types.Value, error) { return in.evaluate(rec, true) }
func (in *In) LogicalType() types.LogicalType                    { return types.Boolean() }

func (in *In) Reset() {
	in.probe.Reset()
	resetAll(in.list...)
}

func (in *In) String() string {
	op := "IN"
	if in.not {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", in.probe, op, joinStrings(in.list, ", "))
}

// NullTest is IS NULL or IS NOT NULL. It never yields a null.
type NullTest struct {
	child Expression
	not   bool
}

func NewIsNull(child Expression) *NullTest    { return &NullTest{child: child} }
func NewIsNotNull(child Expression) *NullTest { return &NullTest{child: child, not: true} }

func (n *NullTest) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	v, err := eval(n.child, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewBoolean(v.IsNull() != n.not), nil
}

func (n *NullTest) Evaluate(rec *tuple.Record) (types.Value, error)   { return n.evaluate(rec, false) }
func (n *NullTest) ReEvaluate(rec *tuple.Record) (types.Value, error) { return n.evaluate(rec, true) }
func (n *NullTest) Reset()                                            { n.child.Reset() }
func (n *NullTest) LogicalType() types.LogicalType                    { return types.Boolean() }

func (n *NullTest) String() string {
	if n.not {
		return n.child.String() + " IS NOT NULL"
	}
	return n.child.String() + " IS NULL"
}
