package aggregation

import (
	"fmt"
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/memory"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

// Call describes one aggregate in the SELECT list, e.g. SUM(DISTINCT x) or
// TOP(x, 3).
type Call struct {
	Name     string
	Args     []expression.Expression
	Distinct bool
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	prefix := ""
	if c.Distinct {
		prefix = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", strings.ToLower(c.Name), prefix, strings.Join(args, ", "))
}

// boundCall is a Call with its aggregate resolved.
type boundCall struct {
	Call
	agg Aggregate
}

// group holds the accumulators of one GROUP BY key, one per aggregate.
type group struct {
	states []*State
}

// AggregateExec groups its child's rows and computes aggregates per group.
//
// Build phase: every child row is evaluated against the GROUP BY
// expressions; the resulting key selects (or creates) the group whose
// accumulators the aggregate arguments are folded into. Without GROUP BY all
// rows share one synthetic key.
//
// Output phase: groups are finalized in key order. Output rows are the group
// values followed by the aggregate results. A TOP or BOTTOM result expands
// its group into one row per returned value; scalar aggregates repeat on
// each of those rows.
type AggregateExec struct {
	iterator.UnaryOperator
	schema  *tuple.Schema
	groupBy []expression.Expression
	calls   []boundCall

	groups *distinct.SortedMap[*group]
	output *common.RowBuffer
	acc    *memory.Account
	log    *logging.Logger
	ready  bool
	done   bool
}

// NewAggregateExec creates a hash aggregation.
//
// Parameters:
//   - ctx: execution context supplying the function registry and memory
//   - child: the input operator
//   - groupBy: GROUP BY expressions, empty for a single global group
//   - calls: the aggregates to compute
//   - schema: output schema; nil derives one from groupBy and calls
//
// Returns:
//   - *AggregateExec: the operator
//   - error: NOT_IMPLEMENTED for unknown aggregates, PLANNER when the schema
//     does not match the group and aggregate count or an argument is missing
func NewAggregateExec(ctx *registry.ExecContext, child iterator.PhysicalPlan, groupBy []expression.Expression,
	calls []Call, schema *tuple.Schema) (*AggregateExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}

	bound := make([]boundCall, len(calls))
	for i, c := range calls {
		argType := types.Null()
		name := strings.ToLower(c.Name)
		switch {
		case name == CountStar:
		case len(c.Args) == 0:
			return nil, dberr.Newf(dberr.KindPlanner, "aggregate %s requires an argument", c.Name).
				WithOperation("NewAggregateExec", component)
		case len(c.Args) > 2 || (len(c.Args) == 2 && !TakesLimit(name)):
			return nil, dberr.Newf(dberr.KindPlanner, "aggregate %s takes too many arguments", c.Name).
				WithOperation("NewAggregateExec", component)
		default:
			argType = c.Args[0].LogicalType()
		}
		agg, err := NewAggregate(ctx.Functions(), name, argType, c.Distinct)
		if err != nil {
			return nil, err
		}
		bound[i] = boundCall{Call: c, agg: agg}
	}

	if schema == nil {
		cols := make([]tuple.Column, 0, len(groupBy)+len(bound))
		for _, g := range groupBy {
			cols = append(cols, tuple.Column{Name: g.String(), Type: g.LogicalType()})
		}
		for _, b := range bound {
			cols = append(cols, tuple.Column{Name: b.String(), Type: b.agg.ResultType()})
		}
		schema = tuple.NewSchema(cols...)
	}
	if schema.NumColumns() != len(groupBy)+len(bound) {
		return nil, dberr.Newf(dberr.KindPlanner,
			"aggregate schema has %d columns but %d group keys and %d aggregates",
			schema.NumColumns(), len(groupBy), len(bound)).WithOperation("NewAggregateExec", component)
	}

	acc := ctx.Account(common.AccountName("AggregateExec"))
	return &AggregateExec{
		UnaryOperator: base,
		schema:        schema,
		groupBy:       groupBy,
		calls:         bound,
		groups:        distinct.NewSortedMap[*group](),
		output:        common.NewRowBuffer(acc),
		acc:           acc,
		log:           ctx.OperatorLogger("AggregateExec"),
	}, nil
}

var globalKey = distinct.NewKey([]types.Value{types.NewInteger(1)})

func (a *AggregateExec) groupKey(rec *tuple.Record) (distinct.Key, error) {
	if len(a.groupBy) == 0 {
		return globalKey, nil
	}
	values := make([]types.Value, len(a.groupBy))
	for i, g := range a.groupBy {
		v, err := g.Evaluate(rec)
		if err != nil {
			return distinct.Key{}, err
		}
		values[i] = v
	}
	return distinct.NewKey(values), nil
}

func (a *AggregateExec) newGroup() *group {
	g := &group{states: make([]*State, len(a.calls))}
	for i, c := range a.calls {
		g.states[i] = c.agg.NewState()
	}
	return g
}

// readLimit evaluates the row-count argument of TOP/BOTTOM.
func readLimit(e expression.Expression, rec *tuple.Record) (int64, error) {
	v, err := e.Evaluate(rec)
	if err != nil {
		return 0, err
	}
	if v.IsNull() || !v.IsInteger() {
		return 0, dberr.New(dberr.KindMismatchType, "arg 2 must be integer")
	}
	n, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, dberr.New(dberr.KindOutOfRange, "arg 2 must be greater than 0")
	}
	return n, nil
}

func (a *AggregateExec) accumulate(g *group, rec *tuple.Record) error {
	for i, c := range a.calls {
		st := g.states[i]
		var v types.Value
		if len(c.Args) > 0 {
			var err error
			if v, err = c.Args[0].Evaluate(rec); err != nil {
				return err
			}
		}
		if len(c.Args) == 2 {
			n, err := readLimit(c.Args[1], rec)
			if err != nil {
				return err
			}
			st.SetLimit(n)
		}
		before := st.Retained()
		if err := c.agg.Accumulate(v, st); err != nil {
			return err
		}
		if grown := st.Retained() - before; grown > 0 {
			if err := a.acc.Grow(grown); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *AggregateExec) build() error {
	err := iterator.ForEach(a.Child(), func(rec *tuple.Record) error {
		key, err := a.groupKey(rec)
		if err != nil {
			return err
		}
		g, created := a.groups.GetOrInsert(key, a.newGroup)
		if created {
			if err := a.acc.Grow(key.ToRecord().Size()); err != nil {
				return err
			}
		}
		return a.accumulate(*g, rec)
	})
	if err != nil {
		return err
	}

	var finalErr error
	a.groups.Range(func(k distinct.Key, g **group) bool {
		finalErr = a.emit(k, *g)
		return finalErr == nil
	})
	if finalErr != nil {
		return finalErr
	}

	if a.groups.Len() == 0 && len(a.groupBy) == 0 {
		values := make([]types.Value, len(a.calls))
		for i, c := range a.calls {
			values[i] = c.agg.Default()
		}
		if err := a.output.Add(tuple.NewRecord(values)); err != nil {
			return err
		}
	}

	a.log.Debug("aggregation built", "groups", a.groups.Len(), "rows", a.output.Len(), "bytes", a.acc.Used())
	a.groups.Clear()
	a.ready = true
	return nil
}

// emit finalizes one group into output rows.
func (a *AggregateExec) emit(k distinct.Key, g *group) error {
	results := make([]Result, len(a.calls))
	rows := 1
	hasList := false
	for i, c := range a.calls {
		r, err := c.agg.Final(g.states[i])
		if err != nil {
			return err
		}
		results[i] = r
		if r.IsList {
			if !hasList || len(r.List) > rows {
				rows = len(r.List)
			}
			hasList = true
		}
	}

	prefix := 0
	if len(a.groupBy) > 0 {
		prefix = k.Len()
	}
	for row := 0; row < rows; row++ {
		values := make([]types.Value, 0, prefix+len(results))
		values = append(values, k.Values()[:prefix]...)
		for i, r := range results {
			switch {
			case !r.IsList:
				values = append(values, r.Value)
			case row < len(r.List):
				values = append(values, r.List[row])
			default:
				values = append(values, types.NewNull(a.calls[i].agg.ResultType()))
			}
		}
		if err := a.output.Add(tuple.NewRecord(values)); err != nil {
			return err
		}
	}
	return nil
}

func (a *AggregateExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if a.done {
		return nil, iterator.NoCursor, true, nil
	}
	if !a.ready {
		if err := a.build(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "AggregateExec.Next")
		}
	}
	if rec := a.output.Next(); rec != nil {
		return rec, iterator.NoCursor, false, nil
	}
	a.output.Reset()
	a.done = true
	return nil, iterator.NoCursor, true, nil
}

func (a *AggregateExec) ResetNext() {
	a.UnaryOperator.ResetNext()
	a.groups.Clear()
	a.output.Reset()
	a.ready = false
	a.done = false
	for _, g := range a.groupBy {
		g.Reset()
	}
	for _, c := range a.calls {
		for _, arg := range c.Args {
			arg.Reset()
		}
	}
}

func (a *AggregateExec) GetSchema() *tuple.Schema { return a.schema }

func (a *AggregateExec) String() string {
	calls := make([]string, len(a.calls))
	for i, c := range a.calls {
		calls[i] = c.String()
	}
	if len(a.groupBy) == 0 {
		return fmt.Sprintf("AggregateExec(%s)", strings.Join(calls, ", "))
	}
	keys := make([]string, len(a.groupBy))
	for i, g := range a.groupBy {
		keys[i] = g.String()
	}
	return fmt.Sprintf("AggregateExec(%s GROUP BY %s)", strings.Join(calls, ", "), strings.Join(keys, ", "))
}
