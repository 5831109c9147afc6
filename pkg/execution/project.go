package execution

import (
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/tuple"
)

// ProjectionExec computes a new row from each child row, one expression per
// output column.
//
// Conceptually: SELECT a + 1, upper(b) FROM t
type ProjectionExec struct {
	iterator.UnaryOperator
	schema *tuple.Schema
	exprs  []expression.Expression
}

// NewProjectionExec creates a projection producing rows shaped like schema.
//
// Parameters:
//   - schema: output schema; nil derives one from the expressions
//   - exprs: one expression per output column
//   - child: the input operator (cannot be nil)
//
// Returns:
//   - *ProjectionExec: the configured operator
//   - error: PLANNER when the schema and expression counts differ
func NewProjectionExec(schema *tuple.Schema, exprs []expression.Expression, child iterator.PhysicalPlan) (*ProjectionExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		schema = schemaFromExprs(exprs)
	}
	if schema.NumColumns() != len(exprs) {
		return nil, dberr.Newf(dberr.KindPlanner,
			"projection schema has %d columns but %d expressions", schema.NumColumns(), len(exprs)).
			WithOperation("NewProjectionExec", component)
	}
	return &ProjectionExec{UnaryOperator: base, schema: schema, exprs: exprs}, nil
}

func schemaFromExprs(exprs []expression.Expression) *tuple.Schema {
	cols := make([]tuple.Column, len(exprs))
	for i, e := range exprs {
		cols[i] = tuple.Column{Name: e.String(), Type: e.LogicalType()}
	}
	return tuple.NewSchema(cols...)
}

func (p *ProjectionExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	rec, cur, err := p.FetchNext()
	if err != nil {
		return nil, iterator.NoCursor, true, err
	}
	if rec == nil {
		return nil, iterator.NoCursor, true, nil
	}
	out, err := expression.EvaluateRow(p.exprs, rec)
	if err != nil {
		return nil, iterator.NoCursor, true, wrapErr(err, "ProjectionExec.Next")
	}
	return out, cur, false, nil
}

func (p *ProjectionExec) ResetNext() {
	p.UnaryOperator.ResetNext()
	expression.ResetAll(p.exprs)
}

func (p *ProjectionExec) GetSchema() *tuple.Schema { return p.schema }

func (p *ProjectionExec) String() string {
	parts := make([]string, len(p.exprs))
	for i, e := range p.exprs {
		parts[i] = e.String()
	}
	return "Projection(" + strings.Join(parts, ", ") + ")"
}
