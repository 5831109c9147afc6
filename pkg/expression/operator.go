package expression

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/function"
	"rowexec/pkg/primitives"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// eval picks Evaluate or ReEvaluate so composite nodes can pass a
// re-evaluation down to their children.
func eval(e Expression, rec *tuple.Record, fresh bool) (types.Value, error) {
	if fresh {
		return e.ReEvaluate(rec)
	}
	return e.Evaluate(rec)
}

// Comparison applies one of the six comparison operators through the
// function registry. A null operand yields a null BOOLEAN without calling
// the function.
type Comparison struct {
	op          primitives.ComparisonType
	left, right Expression
	fn          function.Function
}

// NewComparison resolves op for the operand types in reg.
func NewComparison(reg *function.Registry, op string, left, right Expression) (*Comparison, error) {
	cmp, err := primitives.ParseComparison(op)
	if err != nil {
		return nil, dberr.Newf(dberr.KindExecutor, "%s is unsupported compare function", op)
	}
	fn, ok, err := reg.GetCompareFunction(op, []types.LogicalType{left.LogicalType(), right.LogicalType()})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberr.Newf(dberr.KindExecutor, "unsupported compare %s with (%s, %s)",
			op, left.LogicalType(), right.LogicalType())
	}
	return &Comparison{op: cmp, left: left, right: right, fn: fn}, nil
}

func (c *Comparison) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	l, err := eval(c.left, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	r, err := eval(c.right, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	if l.IsNull() || r.IsNull() {
		return types.NewNull(types.Boolean()), nil
	}
	return c.fn.Call([]types.Value{l, r})
}

func (c *Comparison) Evaluate(rec *tuple.Record) (types.Value, error)   { return c.evaluate(rec, false) }
func (c *Comparison) ReEvaluate(rec *tuple.Record) (types.Value, error) { return c.evaluate(rec, true) }
func (c *Comparison) Reset()                                            { resetAll(c.left, c.right) }
func (c *Comparison) LogicalType() types.LogicalType                    { return types.Boolean() }
func (c *Comparison) Op() primitives.ComparisonType                     { return c.op }

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.left, c.op, c.right)
}

// MathBinary applies an arithmetic or string operator resolved from the
// registry. A null operand yields a null of the result type.
type MathBinary struct {
	op          string
	left, right Expression
	fn          function.Function
}

// NewMathBinary resolves op ("+", "-", "*", "/", "%", "||") for the operand types.
func NewMathBinary(reg *function.Registry, op string, left, right Expression) (*MathBinary, error) {
	fn, ok := reg.GetFunction(op, []types.LogicalType{left.LogicalType(), right.LogicalType()})
	if !ok {
		return nil, dberr.Newf(dberr.KindExecutor, "unsupported %s with (%s, %s)",
			op, left.LogicalType(), right.LogicalType())
	}
	return &MathBinary{op: op, left: left, right: right, fn: fn}, nil
}

func (m *MathBinary) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	l, err := eval(m.left, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	r, err := eval(m.right, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	if l.IsNull() || r.IsNull() {
		return types.NewNull(m.fn.ReturnType()), nil
	}
	return m.fn.Call([]types.Value{l, r})
}

func (m *MathBinary) Evaluate(rec *tuple.Record) (types.Value, error)   { return m.evaluate(rec, false) }
func (m *MathBinary) ReEvaluate(rec *tuple.Record) (types.Value, error) { return m.evaluate(rec, true) }
func (m *MathBinary) Reset()                                            { resetAll(m.left, m.right) }
func (m *MathBinary) LogicalType() types.LogicalType                    { return m.fn.ReturnType() }

func (m *MathBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", m.left, m.op, m.right)
}

// MathUnary is unary minus. The overload is chosen from the runtime type of
// the operand, so parameter placeholders resolve once they are bound.
type MathUnary struct {
	reg   *function.Registry
	child Expression
	typ   types.LogicalType
}

func NewMathUnary(reg *function.Registry, child Expression) *MathUnary {
	typ := child.LogicalType()
	if fn, ok := reg.GetFunction("-", []types.LogicalType{typ}); ok {
		typ = fn.ReturnType()
	}
	return &MathUnary{reg: reg, child: child, typ: typ}
}

func (m *MathUnary) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	v, err := eval(m.child, rec, fresh)
	if err != nil || v.IsNull() {
		return v, err
	}
	fn, ok := m.reg.GetFunction("-", []types.LogicalType{v.Type()})
	if !ok {
		return types.Value{}, dberr.Newf(dberr.KindExecutor, "unsupported - with %s", v.Type())
	}
	return fn.Call([]types.Value{v})
}

func (m *MathUnary) Evaluate(rec *tuple.Record) (types.Value, error)   { return m.evaluate(rec, false) }
func (m *MathUnary) ReEvaluate(rec *tuple.Record) (types.Value, error) { return m.evaluate(rec, true) }
func (m *MathUnary) Reset()                                            { m.child.Reset() }
func (m *MathUnary) LogicalType() types.LogicalType                    { return m.typ }
func (m *MathUnary) String() string                                    { return "-" + m.child.String() }

// Function calls a named scalar function.
type Function struct {
	fn   function.Function
	args []Expression
}

// NewFunction resolves name against the argument types. An unknown name or
// an unmatched signature is NOT_IMPLEMENTED.
func NewFunction(reg *function.Registry, name string, args []Expression) (*Function, error) {
	fn, ok := reg.GetFunction(name, Types(args))
	if !ok {
		return nil, dberr.Newf(dberr.KindNotImplemented, "function %s(%s) is not implemented",
			name, joinTypes(args))
	}
	return &Function{fn: fn, args: args}, nil
}

// NewResolvedFunction wraps an overload the caller already picked.
func NewResolvedFunction(fn function.Function, args []Expression) *Function {
	return &Function{fn: fn, args: args}
}

func (f *Function) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	values := make([]types.Value, len(f.args))
	for i, a := range f.args {
		v, err := eval(a, rec, fresh)
		if err != nil {
			return types.Value{}, err
		}
		if v.IsNull() && !f.fn.Sig.NullAware {
			return types.NewNull(f.fn.ReturnType()), nil
		}
		values[i] = v
	}
	return f.fn.Call(values)
}

func (f *Function) Evaluate(rec *tuple.Record) (types.Value, error)   { return f.evaluate(rec, false) }
func (f *Function) ReEvaluate(rec *tuple.Record) (types.Value, error) { return f.evaluate(rec, true) }
func (f *Function) Reset()                                            { resetAll(f.args...) }
func (f *Function) LogicalType() types.LogicalType                    { return f.fn.ReturnType() }

func (f *Function) String() string {
	return fmt.Sprintf("%s(%s)", f.fn.Name, joinStrings(f.args, ", "))
}

func joinTypes(args []Expression) string {
	out := ""
	for i, t := range Types(args) {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}
