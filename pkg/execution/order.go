package execution

import (
	"fmt"
	"slices"
	"strings"

	"rowexec/pkg/expression"
	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

// SortKey is one ORDER BY item. NullsFirst places nulls ahead of every
// value whatever the direction.
type SortKey struct {
	Expr       expression.Expression
	Desc       bool
	NullsFirst bool
}

func (k SortKey) String() string {
	dir := "ASC"
	if k.Desc {
		dir = "DESC"
	}
	nulls := "NULLS LAST"
	if k.NullsFirst {
		nulls = "NULLS FIRST"
	}
	return fmt.Sprintf("%s %s %s", k.Expr, dir, nulls)
}

func sortKeysString(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// CompareKeyValues orders two rows' evaluated sort keys. Ties on every key
// compare equal, so a stable sort keeps input order.
func CompareKeyValues(a, b []types.Value, keys []SortKey) int {
	for i, k := range keys {
		left, right := a[i], b[i]
		ln, rn := left.IsNull(), right.IsNull()
		switch {
		case ln && rn:
			continue
		case ln:
			if k.NullsFirst {
				return -1
			}
			return 1
		case rn:
			if k.NullsFirst {
				return 1
			}
			return -1
		}

		o := types.SortCompare(left, right)
		if o == types.Equal {
			continue
		}
		if k.Desc {
			o = -o
		}
		return int(o)
	}
	return 0
}

type keyedRecord struct {
	rec  *tuple.Record
	keys []types.Value
}

// SortRecords stably reorders rows in place by keys. Key expressions are
// evaluated once per row before sorting.
func SortRecords(rows []*tuple.Record, keys []SortKey) error {
	if len(keys) == 0 || len(rows) < 2 {
		return nil
	}
	items := make([]keyedRecord, len(rows))
	for i, rec := range rows {
		vals := make([]types.Value, len(keys))
		for j, k := range keys {
			v, err := k.Expr.Evaluate(rec)
			if err != nil {
				return err
			}
			vals[j] = v
		}
		items[i] = keyedRecord{rec: rec, keys: vals}
	}

	slices.SortStableFunc(items, func(a, b keyedRecord) int {
		return CompareKeyValues(a.keys, b.keys, keys)
	})

	for i := range items {
		rows[i] = items[i].rec
	}
	return nil
}

// ResetSortKeys resets every key expression.
func ResetSortKeys(keys []SortKey) {
	for _, k := range keys {
		k.Expr.Reset()
	}
}
