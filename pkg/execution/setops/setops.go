// Package setops implements the set operations UNION [ALL], INTERSECT
// [ALL], EXCEPT [ALL] and the union join.
package setops

import (
	dberr "rowexec/pkg/error"
	"rowexec/pkg/iterator"
	"rowexec/pkg/memory"
	"rowexec/pkg/tuple"
	"rowexec/pkg/tuple/distinct"
	"rowexec/pkg/types"
)

const component = "execution/setops"

// SetOperationType defines the type of set operation
type SetOperationType int

const (
	SetUnion SetOperationType = iota
	SetIntersect
	SetExcept
)

func (s SetOperationType) String() string {
	switch s {
	case SetUnion:
		return "UNION"
	case SetIntersect:
		return "INTERSECT"
	case SetExcept:
		return "EXCEPT"
	default:
		return "UNKNOWN"
	}
}

// setBase holds what the set operators share: the two inputs, the output
// schema every row is re-projected into, and the bag of row keys.
type setBase struct {
	iterator.BinaryOperator
	schema *tuple.Schema
	keys   *distinct.MultiSet
	acc    *memory.Account
}

func newSetBase(left, right iterator.PhysicalPlan, schema *tuple.Schema, acc *memory.Account) (setBase, error) {
	base, err := iterator.NewBinaryOperator(left, right)
	if err != nil {
		return setBase{}, err
	}
	ls, rs := left.GetSchema(), right.GetSchema()
	if ls.NumColumns() != rs.NumColumns() {
		return setBase{}, dberr.Newf(dberr.KindPlanner,
			"schema mismatch: left has %d columns, right has %d columns", ls.NumColumns(), rs.NumColumns())
	}
	if schema == nil {
		if schema, err = unifySchemas(ls, rs); err != nil {
			return setBase{}, err
		}
	}
	if schema.NumColumns() != ls.NumColumns() {
		return setBase{}, dberr.Newf(dberr.KindPlanner,
			"output schema has %d columns, inputs have %d", schema.NumColumns(), ls.NumColumns())
	}
	return setBase{BinaryOperator: base, schema: schema, keys: distinct.NewMultiSet(), acc: acc}, nil
}

// unifySchemas keeps the left column names and widens each column to the
// type both inputs can be cast to.
func unifySchemas(left, right *tuple.Schema) (*tuple.Schema, error) {
	lc, rc := left.Columns(), right.Columns()
	cols := make([]tuple.Column, len(lc))
	for i := range lc {
		t, err := types.CompatibleType(lc[i].Type, rc[i].Type)
		if err != nil {
			return nil, err
		}
		cols[i] = tuple.Column{Name: lc[i].Name, Table: lc[i].Table, Type: t}
	}
	return tuple.NewSchema(cols...), nil
}

// reproject casts every field of rec to the output column type, so rows
// from both inputs compare and hash alike.
func (s *setBase) reproject(rec *tuple.Record) (*tuple.Record, error) {
	values, err := rec.Values()
	if err != nil {
		return nil, err
	}
	cols := s.schema.Columns()
	for i, v := range values {
		if v.Type().Equals(cols[i].Type) {
			continue
		}
		if values[i], err = types.CastValue(v, cols[i].Type); err != nil {
			return nil, err
		}
	}
	return tuple.NewRecord(values), nil
}

// remember adds one occurrence of rec's key, charging new keys to the
// account.
func (s *setBase) remember(rec *tuple.Record) (distinct.Key, error) {
	key, err := distinct.KeyOfRecord(rec)
	if err != nil {
		return distinct.Key{}, err
	}
	if s.keys.Insert(key) == 1 {
		if err := s.acc.Grow(rec.Size()); err != nil {
			return distinct.Key{}, err
		}
	}
	return key, nil
}

func (s *setBase) clear() {
	s.keys.Clear()
	s.acc.Clear()
}

func (s *setBase) GetSchema() *tuple.Schema { return s.schema }

func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return dberr.Wrap(err, dberr.KindExecutor.String(), op, component)
}
