package function

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/types"
)

var (
	signedKinds   = []types.TypeID{types.TinyIntType, types.SmallIntType, types.IntegerType, types.BigIntType}
	unsignedKinds = []types.TypeID{types.UTinyIntType, types.USmallIntType, types.UInt32Type, types.UInt64Type}
)

// divScaleIncrement is how many fractional digits DECIMAL division adds to
// the wider operand scale.
const divScaleIncrement = 4

// machineEpsilon is the float64 epsilon; smaller divisors count as zero.
const machineEpsilon = 0x1p-52

type (
	intOp     func(a, b int64) (int64, bool)
	uintOp    func(a, b uint64) (uint64, bool)
	hugeOp    func(a, b *big.Int) (*big.Int, bool)
	floatOp   func(a, b float64) (float64, bool)
	decimalOp func(a, b decimal.Decimal, scale int32) (decimal.Decimal, bool)
)

type arithmetic struct {
	name  string
	ints  intOp
	uints uintOp
	huge  hugeOp
	float floatOp
	dec   decimalOp
	// decType derives the DECIMAL result type from the operand types.
	decType func(left, right types.LogicalType) (types.LogicalType, error)
}

func registerArithmetic(r *Registry) {
	ops := []arithmetic{
		{
			name: "+",
			ints: func(a, b int64) (int64, bool) {
				s := a + b
				return s, !((a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0))
			},
			uints: func(a, b uint64) (uint64, bool) {
				s, carry := bits.Add64(a, b, 0)
				return s, carry == 0
			},
			huge:    func(a, b *big.Int) (*big.Int, bool) { return new(big.Int).Add(a, b), true },
			float:   func(a, b float64) (float64, bool) { return a + b, true },
			dec:     func(a, b decimal.Decimal, _ int32) (decimal.Decimal, bool) { return a.Add(b), true },
			decType: addDecimalType,
		},
		{
			name: "-",
			ints: func(a, b int64) (int64, bool) {
				d := a - b
				return d, !((a >= 0 && b < 0 && d < 0) || (a < 0 && b > 0 && d >= 0))
			},
			uints: func(a, b uint64) (uint64, bool) {
				d, borrow := bits.Sub64(a, b, 0)
				return d, borrow == 0
			},
			huge:    func(a, b *big.Int) (*big.Int, bool) { return new(big.Int).Sub(a, b), true },
			float:   func(a, b float64) (float64, bool) { return a - b, true },
			dec:     func(a, b decimal.Decimal, _ int32) (decimal.Decimal, bool) { return a.Sub(b), true },
			decType: addDecimalType,
		},
		{
			name: "*",
			ints: func(a, b int64) (int64, bool) {
				if a == 0 || b == 0 {
					return 0, true
				}
				p := a * b
				if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
					return 0, false
				}
				return p, true
			},
			uints: func(a, b uint64) (uint64, bool) {
				hi, lo := bits.Mul64(a, b)
				return lo, hi == 0
			},
			huge:    func(a, b *big.Int) (*big.Int, bool) { return new(big.Int).Mul(a, b), true },
			float:   func(a, b float64) (float64, bool) { return a * b, true },
			dec:     func(a, b decimal.Decimal, _ int32) (decimal.Decimal, bool) { return a.Mul(b), true },
			decType: types.MulDecimalType,
		},
		{
			name: "/",
			float: func(a, b float64) (float64, bool) {
				if math.Abs(b) < machineEpsilon {
					return 0, false
				}
				return a / b, true
			},
			dec: func(a, b decimal.Decimal, scale int32) (decimal.Decimal, bool) {
				if b.IsZero() {
					return decimal.Decimal{}, false
				}
				return a.DivRound(b, scale), true
			},
			decType: divDecimalType,
		},
		{
			name: "%",
			ints: func(a, b int64) (int64, bool) {
				if b == 0 {
					return 0, false
				}
				return a % b, true
			},
			uints: func(a, b uint64) (uint64, bool) {
				if b == 0 {
					return 0, false
				}
				return a % b, true
			},
			huge: func(a, b *big.Int) (*big.Int, bool) {
				if b.Sign() == 0 {
					return nil, false
				}
				return new(big.Int).Rem(a, b), true
			},
			float: func(a, b float64) (float64, bool) {
				if math.Abs(b) < machineEpsilon {
					return 0, false
				}
				return math.Mod(a, b), true
			},
			dec: func(a, b decimal.Decimal, _ int32) (decimal.Decimal, bool) {
				if b.IsZero() {
					return decimal.Decimal{}, false
				}
				return a.Mod(b), true
			},
			decType: addDecimalType,
		},
	}

	for _, op := range ops {
		// "%" yields null on a zero divisor, the others fail on overflow.
		nullOnFailure := op.name == "%"
		if op.ints != nil {
			for _, id := range signedKinds {
				r.RegisterFunction(op.name, Signature{Args: []types.TypeID{id, id}, Return: types.NewLogicalType(id)},
					signedBody(op.name, id, op.ints, nullOnFailure))
			}
		}
		if op.uints != nil {
			for _, id := range unsignedKinds {
				r.RegisterFunction(op.name, Signature{Args: []types.TypeID{id, id}, Return: types.NewLogicalType(id)},
					unsignedBody(op.name, id, op.uints, nullOnFailure))
			}
		}
		if op.huge != nil {
			r.RegisterFunction(op.name, Signature{Args: []types.TypeID{types.HugeIntType, types.HugeIntType}, Return: types.HugeInt()},
				hugeBody(op.name, op.huge, nullOnFailure))
		}
		r.RegisterFunction(op.name, Signature{Args: []types.TypeID{types.RealType, types.RealType}, Return: types.Real()},
			realBody(op.float))
		decType := op.decType
		r.RegisterFunction(op.name, Signature{
			Args:   []types.TypeID{types.DecimalType, types.DecimalType},
			Return: types.NewLogicalType(types.DecimalType),
			ReturnFunc: func(args []types.LogicalType) types.LogicalType {
				if args[0].ID == types.ParamType || args[1].ID == types.ParamType {
					if args[0].ID == types.ParamType {
						return args[1]
					}
					return args[0]
				}
				t, err := decType(decimalArgType(args[0]), decimalArgType(args[1]))
				if err != nil {
					return types.Decimal(types.MaxDecimalPrecision, 0)
				}
				return t
			},
		}, decimalBody(op.name, op.dec, decType))
	}

	registerNegation(r)
}

func overflow(op string, t types.LogicalType) error {
	return dberr.Newf(dberr.KindOutOfRange, "%s overflow: result out of range for %s", op, t)
}

func signedBody(name string, id types.TypeID, op intOp, nullOnFailure bool) BodyFunc {
	target := types.NewLogicalType(id)
	return func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsInt64()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsInt64()
		if err != nil {
			return types.Value{}, err
		}
		res, ok := op(a, b)
		if !ok {
			if nullOnFailure {
				return types.NewNull(target), nil
			}
			return types.Value{}, overflow(name, target)
		}
		return types.CastValue(types.NewBigInt(res), target)
	}
}

func unsignedBody(name string, id types.TypeID, op uintOp, nullOnFailure bool) BodyFunc {
	target := types.NewLogicalType(id)
	return func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsUint64()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsUint64()
		if err != nil {
			return types.Value{}, err
		}
		res, ok := op(a, b)
		if !ok {
			if nullOnFailure {
				return types.NewNull(target), nil
			}
			return types.Value{}, overflow(name, target)
		}
		return types.CastValue(types.NewUInt64(res), target)
	}
}

func hugeBody(name string, op hugeOp, nullOnFailure bool) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsHugeInt()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsHugeInt()
		if err != nil {
			return types.Value{}, err
		}
		res, ok := op(a, b)
		if !ok {
			if nullOnFailure {
				return types.NewNull(types.HugeInt()), nil
			}
			return types.Value{}, overflow(name, types.HugeInt())
		}
		return types.NewHugeInt(res)
	}
}

// realBody divides or takes the modulus of a zero divisor as a null REAL.
func realBody(op floatOp) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsFloat64()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsFloat64()
		if err != nil {
			return types.Value{}, err
		}
		res, ok := op(a, b)
		if !ok {
			return types.NewNull(types.Real()), nil
		}
		return types.NewReal(res), nil
	}
}

func decimalBody(name string, op decimalOp, decType func(l, r types.LogicalType) (types.LogicalType, error)) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		a, lt, err := types.DecimalFromValue(args[0])
		if err != nil {
			return types.Value{}, err
		}
		b, rt, err := types.DecimalFromValue(args[1])
		if err != nil {
			return types.Value{}, err
		}
		target, err := decType(lt, rt)
		if err != nil {
			return types.Value{}, err
		}
		res, ok := op(a, b, int32(target.Scale))
		if !ok {
			return types.NewNull(target), nil
		}
		out, err := types.NewDecimal(res, target.Precision, target.Scale)
		if err != nil {
			return types.Value{}, dberr.Wrap(err, "DECIMAL_OVERFLOW", name, "function")
		}
		return out, nil
	}
}

func addDecimalType(left, right types.LogicalType) (types.LogicalType, error) {
	return types.AddDecimalType(left, right), nil
}

// divDecimalType keeps the full precision and widens the scale so that
// quotients like 1/3 keep some fractional digits.
func divDecimalType(left, right types.LogicalType) (types.LogicalType, error) {
	scale := min(int(max(left.Scale, right.Scale))+divScaleIncrement, int(types.MaxDecimalPrecision)/2)
	return types.Decimal(types.MaxDecimalPrecision, uint8(scale)), nil
}

// decimalArgType maps an argument type onto the decimal it converts into.
// Kinds with no exact decimal image fall back to the default DECIMAL(18,3).
func decimalArgType(t types.LogicalType) types.LogicalType {
	if d, err := t.ToDecimal(); err == nil {
		return d
	}
	return types.Decimal(18, 3)
}

// negationResult is the result kind of unary minus for each numeric kind.
var negationResult = map[types.TypeID]types.TypeID{
	types.TinyIntType:   types.TinyIntType,
	types.SmallIntType:  types.SmallIntType,
	types.IntegerType:   types.IntegerType,
	types.BigIntType:    types.BigIntType,
	types.UTinyIntType:  types.SmallIntType,
	types.USmallIntType: types.IntegerType,
	types.UInt32Type:    types.BigIntType,
	types.UInt64Type:    types.RealType,
	types.HugeIntType:   types.HugeIntType,
	types.RealType:      types.RealType,
}

func registerNegation(r *Registry) {
	kinds := append(append(append([]types.TypeID{}, signedKinds...), unsignedKinds...), types.HugeIntType, types.RealType)
	for _, id := range kinds {
		r.RegisterFunction("-", Signature{
			Args:   []types.TypeID{id},
			Return: types.NewLogicalType(negationResult[id]),
		}, negate)
	}
	r.RegisterFunction("-", Signature{
		Args:       []types.TypeID{types.DecimalType},
		Return:     types.NewLogicalType(types.DecimalType),
		ReturnFunc: func(args []types.LogicalType) types.LogicalType { return args[0] },
	}, negate)
}

func negate(args []types.Value) (types.Value, error) {
	return types.Negate(args[0])
}
