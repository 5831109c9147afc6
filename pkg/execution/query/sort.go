package query

import (
	"rowexec/pkg/execution"
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
)

// SortExec orders its input by a list of keys.
//
// Implementation:
//   - Materializes all rows from input on the first Next (blocking operator)
//   - Stable sort: rows equal on every key keep their input order
//   - Each key has its own direction and null placement
//   - Memory usage: O(n), charged to the connection's memory account
type SortExec struct {
	iterator.UnaryOperator
	keys  []execution.SortKey
	buf   *common.RowBuffer
	log   *logging.Logger
	ready bool
}

// NewSortExec creates a sort over child.
//
// Parameters:
//   - ctx: execution context supplying the memory account
//   - child: input operator
//   - keys: ORDER BY items, most significant first
//
// Returns:
//   - *SortExec: the operator
//   - error: if child is nil
func NewSortExec(ctx *registry.ExecContext, child iterator.PhysicalPlan, keys []execution.SortKey) (*SortExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	return &SortExec{
		UnaryOperator: base,
		keys:          keys,
		buf:           common.NewRowBuffer(ctx.Account(common.AccountName("SortExec"))),
		log:           ctx.OperatorLogger("SortExec"),
	}, nil
}

func (s *SortExec) init() error {
	s.buf.Reset()
	n, err := s.buf.Drain(s.Child())
	if err != nil {
		return err
	}
	if err := execution.SortRecords(s.buf.Rows(), s.keys); err != nil {
		return err
	}
	s.buf.Rewind()
	s.ready = true
	s.log.Debug("sort input materialized", "rows", n, "bytes", s.buf.Account().Used())
	return nil
}

func (s *SortExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	if !s.ready {
		if err := s.init(); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "SortExec.Next")
		}
	}
	if rec := s.buf.Next(); rec != nil {
		return rec, iterator.NoCursor, false, nil
	}
	s.buf.Reset()
	return nil, iterator.NoCursor, true, nil
}

// ResetNext drops the sorted rows, rewinds the child and resets the key
// expressions.
func (s *SortExec) ResetNext() {
	s.UnaryOperator.ResetNext()
	s.buf.Reset()
	s.ready = false
	execution.ResetSortKeys(s.keys)
}

// Keys returns the ORDER BY items.
func (s *SortExec) Keys() []execution.SortKey { return s.keys }

func (s *SortExec) String() string {
	parts := ""
	for i, k := range s.keys {
		if i > 0 {
			parts += ", "
		}
		parts += k.String()
	}
	return "SortExec(" + parts + ")"
}
