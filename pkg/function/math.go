package function

import (
	"math"

	"rowexec/pkg/types"
)

func sameAsFirst(args []types.LogicalType) types.LogicalType { return args[0] }

func registerMath(r *Registry) {
	// abs
	r.RegisterFunction("abs", Signature{Args: []types.TypeID{types.BigIntType}, Return: types.BigInt()},
		func(args []types.Value) (types.Value, error) {
			n, err := args[0].AsInt64()
			if err != nil {
				return types.Value{}, err
			}
			if n < 0 {
				return types.Negate(types.NewBigInt(n))
			}
			return types.NewBigInt(n), nil
		})
	r.RegisterFunction("abs", Signature{Args: []types.TypeID{types.UInt64Type}, Return: types.UInt64()},
		func(args []types.Value) (types.Value, error) {
			return types.CastValue(args[0], types.UInt64())
		})
	r.RegisterFunction("abs", Signature{Args: []types.TypeID{types.RealType}, Return: types.Real()},
		floatUnary(math.Abs))
	r.RegisterFunction("abs", Signature{
		Args: []types.TypeID{types.DecimalType}, Return: types.NewLogicalType(types.DecimalType), ReturnFunc: sameAsFirst,
	}, decimalUnary(func(v types.Value) (types.Value, error) {
		d, t, err := types.DecimalFromValue(v)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewDecimal(d.Abs(), t.Precision, t.Scale)
	}))

	for _, fn := range []struct {
		name string
		f    func(float64) float64
	}{
		{"ceil", math.Ceil},
		{"floor", math.Floor},
		{"round", math.Round},
	} {
		r.RegisterFunction(fn.name, Signature{Args: []types.TypeID{types.BigIntType}, Return: types.BigInt()},
			func(args []types.Value) (types.Value, error) {
				return types.CastValue(args[0], types.BigInt())
			})
		r.RegisterFunction(fn.name, Signature{Args: []types.TypeID{types.RealType}, Return: types.Real()},
			floatUnary(fn.f))
	}
	r.RegisterFunction("ceil", Signature{
		Args: []types.TypeID{types.DecimalType}, Return: types.NewLogicalType(types.DecimalType), ReturnFunc: sameAsFirst,
	}, decimalUnary(func(v types.Value) (types.Value, error) { return roundDecimal(v, 0, "ceil") }))
	r.RegisterFunction("floor", Signature{
		Args: []types.TypeID{types.DecimalType}, Return: types.NewLogicalType(types.DecimalType), ReturnFunc: sameAsFirst,
	}, decimalUnary(func(v types.Value) (types.Value, error) { return roundDecimal(v, 0, "floor") }))
	r.RegisterFunction("round", Signature{
		Args: []types.TypeID{types.DecimalType}, Return: types.NewLogicalType(types.DecimalType), ReturnFunc: sameAsFirst,
	}, decimalUnary(func(v types.Value) (types.Value, error) { return roundDecimal(v, 0, "round") }))

	// round(x, places)
	r.RegisterFunction("round", Signature{
		Args: []types.TypeID{types.RealType, types.BigIntType}, Return: types.Real(),
	}, func(args []types.Value) (types.Value, error) {
		f, err := args[0].AsFloat64()
		if err != nil {
			return types.Value{}, err
		}
		places, err := args[1].AsInt64()
		if err != nil {
			return types.Value{}, err
		}
		scale := math.Pow10(int(places))
		return types.NewReal(math.Round(f*scale) / scale), nil
	})
	r.RegisterFunction("round", Signature{
		Args: []types.TypeID{types.DecimalType, types.BigIntType}, Return: types.NewLogicalType(types.DecimalType), ReturnFunc: sameAsFirst,
	}, func(args []types.Value) (types.Value, error) {
		places, err := args[1].AsInt64()
		if err != nil {
			return types.Value{}, err
		}
		return roundDecimal(args[0], int32(places), "round")
	})
}

func floatUnary(fn func(float64) float64) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		f, err := args[0].AsFloat64()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewReal(fn(f)), nil
	}
}

func decimalUnary(fn func(types.Value) (types.Value, error)) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		return fn(args[0])
	}
}

// roundDecimal rounds to places digits and keeps the operand's decimal type.
func roundDecimal(v types.Value, places int32, mode string) (types.Value, error) {
	d, t, err := types.DecimalFromValue(v)
	if err != nil {
		return types.Value{}, err
	}
	switch mode {
	case "ceil":
		d = d.Ceil()
	case "floor":
		d = d.Floor()
	default:
		d = d.Round(places)
	}
	return types.NewDecimal(d, t.Precision, t.Scale)
}
