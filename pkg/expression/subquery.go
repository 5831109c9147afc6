package expression

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/primitives"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

// SubqueryKind is the shape of a subquery predicate.
type SubqueryKind int

const (
	Exists SubqueryKind = iota
	Scalar
	Any
	All
)

func (k SubqueryKind) String() string {
	switch k {
	case Exists:
		return "EXISTS"
	case Scalar:
		return "SCALAR"
	case Any:
		return "ANY"
	case All:
		return "ALL"
	default:
		return fmt.Sprintf("SubqueryKind(%d)", int(k))
	}
}

// NewSubquery builds the node for kind over plan. probe and op are only used
// by ANY and ALL. ALL is NOT ANY with the reverted operator.
func NewSubquery(kind SubqueryKind, plan iterator.PhysicalPlan, probe Expression, op string) (Expression, error) {
	switch kind {
	case Exists:
		return NewExistsSubquery(plan), nil
	case Scalar:
		return NewScalarSubquery(plan), nil
	case Any, All:
		cmp, err := primitives.ParseComparison(op)
		if err != nil {
			return nil, dberr.Newf(dberr.KindExecutor, "%s is unsupported compare function", op)
		}
		if kind == Any {
			return NewAnySubquery(plan, probe, cmp), nil
		}
		return NewNot(NewAnySubquery(plan, probe, cmp.Revert())), nil
	default:
		return nil, dberr.Newf(dberr.KindPlanner, "not supported subquery type %s", kind)
	}
}

// ExistsSubquery reports whether the sub-plan produces at least one row.
// The answer is memoised until Reset or ReEvaluate.
type ExistsSubquery struct {
	plan      iterator.PhysicalPlan
	exists    bool
	evaluated bool
}

func NewExistsSubquery(plan iterator.PhysicalPlan) *ExistsSubquery {
	return &ExistsSubquery{plan: plan}
}

// materialize rewinds the plan before and after the probe so a sub-plan
// shared with another subquery, or drained by an earlier outer row, is
// always read from its first row.
func (e *ExistsSubquery) materialize() error {
	e.plan.ResetNext()
	defer e.plan.ResetNext()
	_, _, eof, err := e.plan.Next()
	if err != nil {
		return err
	}
	e.exists = !eof
	e.evaluated = true
	return nil
}

func (e *ExistsSubquery) Evaluate(*tuple.Record) (types.Value, error) {
	if !e.evaluated {
		if err := e.materialize(); err != nil {
			return types.Value{}, err
		}
	}
	return types.NewBoolean(e.exists), nil
}

func (e *ExistsSubquery) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	e.evaluated = false
	return e.Evaluate(rec)
}

func (e *ExistsSubquery) Reset()                         { e.evaluated = false }
func (e *ExistsSubquery) LogicalType() types.LogicalType { return types.Boolean() }
func (e *ExistsSubquery) String() string                 { return "EXISTS (" + e.plan.String() + ")" }

// ScalarSubquery returns the first value of a single-column sub-plan, or a
// null when it is empty. Extra rows are accepted and ignored.
type ScalarSubquery struct {
	plan      iterator.PhysicalPlan
	values    []types.Value
	evaluated bool
}

func NewScalarSubquery(plan iterator.PhysicalPlan) *ScalarSubquery {
	return &ScalarSubquery{plan: plan}
}

func (s *ScalarSubquery) materialize() error {
	if n := s.plan.GetSchema().NumColumns(); n != 1 {
		return dberr.Newf(dberr.KindExecutor, "scalar subquery must return one column, got %d", n)
	}
	s.values = s.values[:0]
	s.plan.ResetNext()
	defer s.plan.ResetNext()
	for {
		rec, _, eof, err := s.plan.Next()
		if err != nil {
			return err
		}
		if eof {
			break
		}
		v, err := rec.Field(0)
		if err != nil {
			return err
		}
		s.values = append(s.values, v)
	}
	s.evaluated = true
	logging.Debug("scalar subquery materialized", "rows", len(s.values))
	return nil
}

func (s *ScalarSubquery) Evaluate(*tuple.Record) (types.Value, error) {
	if !s.evaluated {
		if err := s.materialize(); err != nil {
			return types.Value{}, err
		}
	}
	if len(s.values) == 0 {
		return types.NewNull(s.LogicalType()), nil
	}
	return s.values[0], nil
}

func (s *ScalarSubquery) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	s.evaluated = false
	return s.Evaluate(rec)
}

func (s *ScalarSubquery) Reset() { s.evaluated = false }

func (s *ScalarSubquery) LogicalType() types.LogicalType {
	schema := s.plan.GetSchema()
	if schema.NumColumns() == 0 {
		return types.Null()
	}
	return schema.Types()[0]
}

func (s *ScalarSubquery) String() string { return "(" + s.plan.String() + ")" }

// AnySubquery compares a probe against every value of a single-column
// sub-plan. The result is TRUE if any comparison is TRUE, else UNKNOWN if
// any is UNKNOWN, else FALSE. The value set is memoised until Reset or
// ReEvaluate.
type AnySubquery struct {
	plan      iterator.PhysicalPlan
	probe     Expression
	op        primitives.ComparisonType
	values    *distinct.Set
	evaluated bool
}

func NewAnySubquery(plan iterator.PhysicalPlan, probe Expression, op primitives.ComparisonType) *AnySubquery {
	return &AnySubquery{plan: plan, probe: probe, op: op, values: distinct.NewSet()}
}

func (a *AnySubquery) materialize() error {
	a.values.Clear()
	a.plan.ResetNext()
	defer a.plan.ResetNext()
	for {
		rec, _, eof, err := a.plan.Next()
		if err != nil {
			return err
		}
		if eof {
			break
		}
		if rec.ColumnCount() != 1 {
			return dberr.New(dberr.KindExecutor, "subquery have more than one column")
		}
		v, err := rec.Field(0)
		if err != nil {
			return err
		}
		a.values.Insert(distinct.NewKey([]types.Value{v}))
	}
	a.evaluated = true
	logging.Debug("any subquery materialized", "values", a.values.Len(), "op", a.op.String())
	return nil
}

// compare applies op with the probe on the left. > and >= are flipped so
// only the less-than family is needed.
func (a *AnySubquery) compare(probe, v types.Value) (types.Trivalent, error) {
	op, left, right := a.op, probe, v
	if op == primitives.GreaterThan || op == primitives.GreaterThanOrEqual {
		op, left, right = op.Flip(), v, probe
	}
	switch op {
	case primitives.Equals:
		return left.Equal(right)
	case primitives.NotEqual:
		t, err := left.Equal(right)
		return t.Not(), err
	case primitives.LessThan:
		return left.LessThan(right)
	case primitives.LessThanOrEqual:
		return left.LessThanOrEqual(right)
	}
	return types.Unknown, dberr.Newf(dberr.KindExecutor, "not supported op name %s", a.op)
}

func (a *AnySubquery) evaluate(rec *tuple.Record, fresh bool) (types.Value, error) {
	if fresh {
		a.evaluated = false
	}
	if !a.evaluated {
		if err := a.materialize(); err != nil {
			return types.Value{}, err
		}
	}
	probe, err := eval(a.probe, rec, fresh)
	if err != nil {
		return types.Value{}, err
	}
	sawUnknown := false
	for _, k := range a.values.Keys() {
		t, err := a.compare(probe, k.Values()[0])
		if err != nil {
			return types.Value{}, err
		}
		switch t {
		case types.True:
			return types.NewBoolean(true), nil
		case types.Unknown:
			sawUnknown = true
		}
	}
	if sawUnknown {
		return types.NewTrivalent(types.Unknown), nil
	}
	return types.NewBoolean(false), nil
}

func (a *AnySubquery) Evaluate(rec *tuple.Record) (types.Value, error) { return a.evaluate(rec, false) }
func (a *AnySubquery) ReEvaluate(rec *tuple.Record) (types.Value, error) {
	return a.evaluate(rec, true)
}

func (a *AnySubquery) Reset() {
	a.evaluated = false
	a.probe.Reset()
}

func (a *AnySubquery) LogicalType() types.LogicalType { return types.Boolean() }

func (a *AnySubquery) String() string {
	return fmt.Sprintf("%s %s ANY (%s)", a.probe, a.op, a.plan)
}

// Correlated evaluates a subquery that references outer columns. Each call
// binds the outer record into the placeholders and then re-evaluates the
// subquery so memoised results from a previous outer row are not reused.
type Correlated struct {
	params []*ColumnParam
	inner  Expression
}

func NewCorrelated(params []*ColumnParam, inner Expression) *Correlated {
	return &Correlated{params: params, inner: inner}
}

func (c *Correlated) Evaluate(rec *tuple.Record) (types.Value, error) {
	for _, p := range c.params {
		if err := p.Bind(rec); err != nil {
			return types.Value{}, err
		}
	}
	return c.inner.ReEvaluate(rec)
}

func (c *Correlated) ReEvaluate(rec *tuple.Record) (types.Value, error) { return c.Evaluate(rec) }
func (c *Correlated) Reset()                                            { c.inner.Reset() }
func (c *Correlated) LogicalType() types.LogicalType                    { return c.inner.LogicalType() }
func (c *Correlated) String() string                                    { return c.inner.String() }
