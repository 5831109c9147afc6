package query

import (
	"rowexec/pkg/execution/internal/common"
	"rowexec/pkg/expression"
	"rowexec/pkg/iterator"
	"rowexec/pkg/memory"
	"rowexec/pkg/registry"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
)

// DistinctExec drops rows whose distinct key has already been emitted. The
// key is the DISTINCT ON list when one is given and the whole row
// otherwise. It streams: each row is emitted as soon as it is seen first.
// Every kept key is charged to the connection's memory account until end of
// stream or ResetNext.
type DistinctExec struct {
	iterator.UnaryOperator
	on   []expression.Expression
	seen *distinct.Set
	acc  *memory.Account
}

// NewDistinctExec creates a distinct over child. on may be empty.
func NewDistinctExec(ctx *registry.ExecContext, child iterator.PhysicalPlan, on []expression.Expression) (*DistinctExec, error) {
	base, err := iterator.NewUnaryOperator(child)
	if err != nil {
		return nil, err
	}
	return &DistinctExec{
		UnaryOperator: base,
		on:            on,
		seen:          distinct.NewSet(),
		acc:           ctx.Account(common.AccountName("DistinctExec")),
	}, nil
}

func (d *DistinctExec) clear() {
	d.seen.Clear()
	d.acc.Clear()
}

func (d *DistinctExec) key(rec *tuple.Record) (distinct.Key, error) {
	if len(d.on) == 0 {
		return distinct.KeyOfRecord(rec)
	}
	keyRec, err := expression.EvaluateRow(d.on, rec)
	if err != nil {
		return distinct.Key{}, err
	}
	return distinct.KeyOfRecord(keyRec)
}

func (d *DistinctExec) Next() (*tuple.Record, iterator.Cursor, bool, error) {
	for {
		rec, cur, err := d.FetchNext()
		if err != nil {
			return nil, iterator.NoCursor, true, err
		}
		if rec == nil {
			d.clear()
			return nil, iterator.NoCursor, true, nil
		}
		k, err := d.key(rec)
		if err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "DistinctExec.Next")
		}
		if d.seen.Contains(k) {
			continue
		}
		if err := d.acc.Grow(k.ToRecord().Size()); err != nil {
			return nil, iterator.NoCursor, true, wrapErr(err, "DistinctExec.Next")
		}
		d.seen.Insert(k)
		return rec, cur, false, nil
	}
}

func (d *DistinctExec) ResetNext() {
	d.UnaryOperator.ResetNext()
	d.clear()
	expression.ResetAll(d.on)
}

func (d *DistinctExec) String() string {
	if len(d.on) == 0 {
		return "DistinctExec"
	}
	parts := ""
	for i, e := range d.on {
		if i > 0 {
			parts += ", "
		}
		parts += e.String()
	}
	return "DistinctExec(on " + parts + ")"
}
