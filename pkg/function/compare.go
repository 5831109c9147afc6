package function

import (
	"rowexec/pkg/types"
)

// comparePairs lists the operand kinds "=", "<" and "<=" are registered for,
// in registration order. VARCHAR/VARCHAR precedes the cross-type pairs so a
// PARAM compared with a string literal binds as a string comparison.
var comparePairs = [][2]types.TypeID{
	{types.TinyIntType, types.TinyIntType},
	{types.SmallIntType, types.SmallIntType},
	{types.IntegerType, types.IntegerType},
	{types.BigIntType, types.BigIntType},
	{types.UTinyIntType, types.UTinyIntType},
	{types.USmallIntType, types.USmallIntType},
	{types.UInt32Type, types.UInt32Type},
	{types.UInt64Type, types.UInt64Type},
	{types.HugeIntType, types.HugeIntType},
	{types.VarcharType, types.VarcharType},
	{types.BigIntType, types.VarcharType},
	{types.VarcharType, types.BigIntType},
	{types.UInt64Type, types.VarcharType},
	{types.VarcharType, types.UInt64Type},
	{types.BooleanType, types.BooleanType},
	{types.BooleanType, types.BigIntType},
	{types.BigIntType, types.BooleanType},
	{types.RealType, types.RealType},
	{types.RealType, types.VarcharType},
	{types.VarcharType, types.RealType},
	{types.DecimalType, types.DecimalType},
	{types.DateType, types.DateType},
	{types.DateType, types.VarcharType},
	{types.VarcharType, types.DateType},
	{types.TimestampType, types.TimestampType},
	{types.TimestampType, types.VarcharType},
	{types.VarcharType, types.TimestampType},
	{types.TimestampType, types.BigIntType},
	{types.BigIntType, types.TimestampType},
	{types.ClobType, types.ClobType},
	{types.ClobType, types.VarcharType},
	{types.VarcharType, types.ClobType},
	{types.BlobType, types.BlobType},
	{types.BooleanType, types.VarcharType},
	{types.VarcharType, types.BooleanType},
}

func registerCompare(r *Registry) {
	sets := []struct {
		name string
		pred func(types.Ordering) bool
	}{
		{"=", func(o types.Ordering) bool { return o == types.Equal }},
		{"<", func(o types.Ordering) bool { return o == types.Less }},
		{"<=", func(o types.Ordering) bool { return o != types.Greater }},
	}
	for _, set := range sets {
		body := compareBody(set.pred)
		for _, pair := range comparePairs {
			r.RegisterFunction(set.name, Signature{
				Args:   []types.TypeID{pair[0], pair[1]},
				Return: types.Boolean(),
			}, body)
		}
	}
}

// compareBody evaluates a comparison through types.Compare. A numeric
// compared with a string that does not parse as a number orders the numeric
// side first, so "=" is false and "<" holds only when the number is on the
// left.
func compareBody(pred func(types.Ordering) bool) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		if args[0].IsNull() || args[1].IsNull() {
			return types.NewTrivalent(types.Unknown), nil
		}
		ord, err := types.Compare(args[0], args[1])
		if err != nil {
			return types.Value{}, err
		}
		return types.NewBoolean(pred(ord)), nil
	}
}
