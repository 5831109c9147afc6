package distinct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rowexec/pkg/tuple"
	"rowexec/pkg/types"
)

func key(values ...types.Value) Key { return NewKey(values) }

var nullInt = types.NewNull(types.Integer())

// ============================================================================
// Key equality and ordering
// ============================================================================

func TestKey_Equal(t *testing.T) {
	tests := []struct {
		name  string
		left  Key
		right Key
		want  bool
	}{
		{"same values", key(types.NewInteger(1), types.NewVarchar("a")), key(types.NewInteger(1), types.NewVarchar("a")), true},
		{"different value", key(types.NewInteger(1)), key(types.NewInteger(2)), false},
		{"both null", key(nullInt), key(nullInt), true},
		{"null vs value", key(nullInt), key(types.NewInteger(0)), false},
		{"different type tags", key(types.NewInteger(1)), key(types.NewBigInt(1)), false},
		{"different lengths", key(types.NewInteger(1)), key(types.NewInteger(1), types.NewInteger(1)), false},
		{"empty keys", key(), key(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.left.Equal(tt.right))
		})
	}
}

func TestKey_Less(t *testing.T) {
	tests := []struct {
		name  string
		left  Key
		right Key
		want  bool
	}{
		{"smaller value", key(types.NewInteger(1)), key(types.NewInteger(2)), true},
		{"larger value", key(types.NewInteger(3)), key(types.NewInteger(2)), false},
		{"equal", key(types.NewInteger(2)), key(types.NewInteger(2)), false},
		{"shorter key first", key(types.NewInteger(9)), key(types.NewInteger(1), types.NewInteger(1)), true},
		{"null on left is never less", key(nullInt), key(types.NewInteger(1)), false},
		{"null on right is always less", key(types.NewInteger(1)), key(nullInt), true},
		{"both null falls through", key(nullInt, types.NewInteger(1)), key(nullInt, types.NewInteger(2)), true},
		{"equal prefix decides on next field", key(types.NewInteger(1), types.NewVarchar("a")), key(types.NewInteger(1), types.NewVarchar("b")), true},
		{"lower type tag on left is not less", key(types.NewInteger(1)), key(types.NewBigInt(5)), false},
		{"higher type tag on left compares values", key(types.NewBigInt(1)), key(types.NewInteger(5)), true},
		{"empty keys", key(), key(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.left.Less(tt.right))
		})
	}
}

func TestKey_HashFollowsEquality(t *testing.T) {
	a := key(types.NewInteger(7), types.NewVarchar("x"))
	b := key(types.NewInteger(7), types.NewVarchar("x"))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, key(nullInt).Hash(), key(types.NewInteger(0)).Hash())
}

func TestKey_FloatsCompareExactly(t *testing.T) {
	one := types.NewReal(1)
	next := types.NewReal(math.Nextafter(1, 2))
	after := types.NewReal(math.Nextafter(math.Nextafter(1, 2), 2))

	eq, err := one.Equal(next)
	require.NoError(t, err)
	assert.Equal(t, types.True, eq, "predicates keep the relative tolerance")

	assert.False(t, key(one).Equal(key(next)))
	assert.True(t, key(one).Less(key(next)))
	assert.False(t, key(next).Less(key(one)))
	assert.True(t, key(next).Equal(key(types.NewReal(math.Nextafter(1, 2)))))

	// Grouping does not depend on arrival order.
	for _, order := range [][]types.Value{{one, next, after}, {after, one, next}, {next, after, one}} {
		s := NewSet()
		for _, v := range order {
			s.Insert(key(v))
		}
		assert.Equal(t, 3, s.Len())
	}

	zero, negZero := key(types.NewReal(0)), key(types.NewReal(math.Copysign(0, -1)))
	assert.Equal(t, zero.Equal(negZero), !zero.Less(negZero) && !negZero.Less(zero))
}

func TestKeyOf(t *testing.T) {
	rec := tuple.NewRecord([]types.Value{types.NewInteger(1), types.NewVarchar("a"), types.NewReal(2.5)})

	k, err := KeyOf(rec, []int{2, 0})
	require.NoError(t, err)
	assert.True(t, k.Equal(key(types.NewReal(2.5), types.NewInteger(1))))

	_, err = KeyOf(rec, []int{5})
	assert.Error(t, err)

	full, err := KeyOfRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, 3, full.Len())
	assert.Equal(t, rec.String(), full.ToRecord().String())
	assert.False(t, full.HasNull())
	assert.True(t, key(types.NewInteger(1), nullInt).HasNull())
}

// ============================================================================
// Containers
// ============================================================================

func TestSet(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Insert(key(types.NewInteger(1))))
	assert.True(t, s.Insert(key(nullInt)))
	assert.False(t, s.Insert(key(types.NewInteger(1))))
	assert.False(t, s.Insert(key(nullInt)))
	assert.True(t, s.Insert(key(types.NewBigInt(1))))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(key(nullInt)))
	assert.False(t, s.Contains(key(types.NewInteger(2))))

	keys := s.Keys()
	require.Len(t, keys, 3)
	assert.True(t, keys[0].Equal(key(types.NewInteger(1))))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestMap_InsertionOrderAndUpdate(t *testing.T) {
	m := NewMap[int]()
	for _, v := range []int32{3, 1, 3, 2, 1, 3} {
		cnt, _ := m.GetOrInsert(key(types.NewInteger(v)), func() int { return 0 })
		*cnt++
	}
	assert.Equal(t, 3, m.Len())

	var order []string
	var counts []int
	m.Range(func(k Key, v *int) bool {
		order = append(order, k.String())
		counts = append(counts, *v)
		return true
	})
	assert.Equal(t, []string{"(3)", "(1)", "(2)"}, order)
	assert.Equal(t, []int{3, 2, 1}, counts)

	v, ok := m.Get(key(types.NewInteger(1)))
	require.True(t, ok)
	assert.Equal(t, 2, *v)
	_, ok = m.Get(key(types.NewInteger(9)))
	assert.False(t, ok)
}

func TestSortedMap_Order(t *testing.T) {
	m := NewSortedMap[string]()
	for _, v := range []int32{5, 1, 3} {
		_, created := m.GetOrInsert(key(types.NewInteger(v)), func() string { return "x" })
		assert.True(t, created)
	}
	_, created := m.GetOrInsert(key(nullInt), func() string { return "null" })
	assert.True(t, created)
	_, created = m.GetOrInsert(key(types.NewInteger(3)), func() string { return "dup" })
	assert.False(t, created)

	var order []string
	m.Range(func(k Key, _ *string) bool {
		order = append(order, k.String())
		return true
	})
	// A null on the right is always less, so null-bearing keys sort last.
	assert.Equal(t, []string{"(1)", "(3)", "(5)", "(null)"}, order)

	v, ok := m.Get(key(nullInt))
	require.True(t, ok)
	assert.Equal(t, "null", *v)
}

func TestMultiSet(t *testing.T) {
	ms := NewMultiSet()
	a, b := key(types.NewVarchar("a")), key(types.NewVarchar("b"))
	assert.Equal(t, 1, ms.Insert(a))
	assert.Equal(t, 2, ms.Insert(a))
	assert.Equal(t, 1, ms.Insert(b))
	assert.Equal(t, 3, ms.Len())

	assert.True(t, ms.EraseOne(a))
	assert.Equal(t, 1, ms.Count(a))
	assert.Equal(t, 1, ms.EraseAll(a))
	assert.False(t, ms.EraseOne(a))
	assert.Equal(t, 0, ms.Count(key(types.NewVarchar("z"))))

	var seen []string
	ms.Range(func(k Key) bool {
		seen = append(seen, k.String())
		return true
	})
	assert.Equal(t, []string{"(b)"}, seen)
}

func TestValueQueues(t *testing.T) {
	values := []types.Value{types.NewInteger(4), types.NewInteger(9), types.NewInteger(1), types.NewInteger(7)}

	top := NewTopQueue()
	bottom := NewBottomQueue()
	for _, v := range values {
		top.Push(v)
		bottom.Push(v)
	}

	assert.Equal(t, "[9 7]", format(top.Drain(2)))
	assert.Equal(t, "[1 4 7 9]", format(bottom.Drain(10)))
	assert.Equal(t, 4, top.Len(), "drain must not consume")

	head, ok := top.Pop()
	require.True(t, ok)
	assert.Equal(t, "9", head.String())

	top.Clear()
	_, ok = top.Pop()
	assert.False(t, ok)
}

func format(values []types.Value) string {
	s := "["
	for i, v := range values {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s + "]"
}
