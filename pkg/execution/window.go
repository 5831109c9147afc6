package execution

import (
	"fmt"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

// WindowFrame is the framing mode of a window. Only row frames exist.
type WindowFrame int

const (
	RowsFrame WindowFrame = iota
	RangeFrame
	GroupsFrame
)

// WindowSortItem orders rows inside a partition by one input column.
type WindowSortItem struct {
	Column     int
	Desc       bool
	NullsFirst bool
}

// WindowSpec is PARTITION BY plus ORDER BY over input column positions.
type WindowSpec struct {
	Frame       WindowFrame
	PartitionBy []int
	OrderBy     []WindowSortItem
}

// WindowExec computes ROW_NUMBER over partitions. It materialises the
// child, stably sorts by partition columns then order-by columns, and
// streams the rows back with a per-partition counter written into column
// funcIdx (or appended when funcIdx equals the child column count).
type WindowExec struct {
	iterator.UnaryOperator
	spec      WindowSpec
	funcIdx   int
	schema    *tuple.Schema
	keys      []SortKey
	buf       *common.RowBuffer
	log       *logging.Logger
	ready     bool
	rowNumber int64
	prevKey   distinct.Key
	started   bool
}

// NewWindowExec creates a ROW_NUMBER window over child.
//
// Parameters:
//   - ctx: execution context supplying the memory account
//   - child: input operator
//   - funcIdx: output slot of the row number
//   - spec: partitioning and ordering
//
// Returns:
//   - *WindowExec: the operator
//   - error: PLANNER for out-of-range column positions, NOT_IMPLEMENTED for
//     non-row frames
func NewWindowExec(ctx *registry.ExecContext, child iterator.PhysicalPlan, funcIdx int, spec WindowSpec) (*WindowExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	if spec.Frame != RowsFrame {
		return nil, dberr.New(dberr.KindNotImplemented, "only ROWS window frames are supported")
	}

	in := child.GetSchema()
	n := in.NumColumns()
	if funcIdx < 0 || funcIdx > n {
		return nil, dberr.Newf(dberr.KindPlanner, "window function slot %d out of range for %d columns", funcIdx, n)
	}

	keys := make([]SortKey, 0, len(spec.PartitionBy)+len(spec.OrderBy))
	for _, idx := range spec.PartitionBy {
		ref, err := expression.NewColumnValue(in, idx)
		if err != nil {
			return nil, err
		}
		keys = append(keys, SortKey{Expr: ref, NullsFirst: true})
	}
	for _, item := range spec.OrderBy {
		ref, err := expression.NewColumnValue(in, item.Column)
		if err != nil {
			return nil, err
		}
		keys = append(keys, SortKey{Expr: ref, Desc: item.Desc, NullsFirst: item.NullsFirst})
	}

	cols := append([]tuple.Column(nil), in.Columns()...)
	if funcIdx == n {
		cols = append(cols, tuple.Column{Name: "row_number", Type: types.BigInt()})
	} else {
		cols[funcIdx].Type = types.BigInt()
		cols[funcIdx].Table = ""
	}

	return &WindowExec{
		UnaryOperator: base,
		spec:          spec,
		funcIdx:       funcIdx,
		schema:        tuple.NewSchema(cols...),
		keys:          keys,
		buf:           common.NewRowBuffer(ctx.Account(common.AccountName("WindowExec"))),
		log:           ctx.OperatorLogger("WindowExec"),
	}, nil
}

func (w *WindowExec) init() error {
	n, err := w.buf.Drain(w.Child())
	if err != nil {
		return err
	}
	if err := SortRecords(w.buf.Rows(), w.keys); err != nil {
		return err
	}
	w.buf.Rewind()
	w.ready = true
	w.log.Debug("window input materialized", "rows", n, "bytes", w.buf.Account().Used())
	return nil
}

func (w *WindowExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if !w.ready {
		if err := w.init(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "WindowExec.Next")
		}
	}
	rec := w.buf.Next()
	if rec == nil {
		w.buf.Reset()
		return nil, iterator.NoCursor, true, nil
	}

	key, err := distinct.KeyOf(rec, w.spec.PartitionBy)
	if err != nil {
		return nil, iterator.NoCursor, true, wrapErr(err, "WindowExec.Next")
	}
	if !w.started || !key.Equal(w.prevKey) {
		w.rowNumber = 0
	}
	w.started = true
	w.prevKey = key
	w.rowNumber++

	values, err := rec.Values()
	if err != nil {
		return nil, iterator.NoCursor, true, wrapErr(err, "WindowExec.Next")
	}
	rn := types.NewBigInt(w.rowNumber)
	if w.funcIdx == len(values) {
		values = append(values, rn)
	} else {
		values[w.funcIdx] = rn
	}
	return tuple.NewRecord(values), iterator.NoCursor, false, nil
}

// ResetNext drops the materialised rows and rewinds the child.
func (w *WindowExec) ResetNext() {
	w.UnaryOperator.ResetNext()
	w.buf.Reset()
	w.ready = false
	w.started = false
	w.rowNumber = 0
	ResetSortKeys(w.keys)
}

func (w *WindowExec) GetSchema() *tuple.Schema { return w.schema }

func (w *WindowExec) String() string {
	return fmt.Sprintf("WindowExec(row_number@%d, partition=%v, order=[%s])",
		w.funcIdx, w.spec.PartitionBy, sortKeysString(w.keys[len(w.spec.PartitionBy):]))
}
