package function

import (
	"strings"
	"unicode/utf8"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/types"
)

func maxVarchar() types.LogicalType { return types.Varchar(types.DefaultVarcharLength) }

func registerConcat(r *Registry) {
	concatTwo := func(args []types.Value) (types.Value, error) {
		a, err := args[0].AsString()
		if err != nil {
			return types.Value{}, err
		}
		b, err := args[1].AsString()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewVarchar(a + b), nil
	}
	r.RegisterFunction("||", Signature{
		Args:   []types.TypeID{types.VarcharType, types.VarcharType},
		Return: maxVarchar(),
		ReturnFunc: func(args []types.LogicalType) types.LogicalType {
			if args[0].ID == types.VarcharType && args[1].ID == types.VarcharType {
				total := uint64(args[0].Length) + uint64(args[1].Length)
				if total > types.DefaultVarcharLength {
					return maxVarchar()
				}
				return types.Varchar(uint32(total))
			}
			return maxVarchar()
		},
	}, concatTwo)
	r.RegisterFunction("||", Signature{
		Args:   []types.TypeID{types.BooleanType, types.VarcharType},
		Return: maxVarchar(),
	}, concatTwo)
	r.RegisterFunction("||", Signature{
		Args:   []types.TypeID{types.VarcharType, types.BooleanType},
		Return: maxVarchar(),
	}, concatTwo)
}

// named registers a null-aware function that takes any arguments and checks
// them itself.
func named(r *Registry, name string, ret types.LogicalType, body BodyFunc) {
	r.RegisterFunction(name, Signature{Return: ret, VarArgs: true, NullAware: true}, body)
}

func registerStrings(r *Registry) {
	named(r, "substr", maxVarchar(), sqlSubstr)
	named(r, "lower", maxVarchar(), mapString("lower", strings.ToLower))
	named(r, "tolower", maxVarchar(), mapString("tolower", strings.ToLower))
	named(r, "upper", maxVarchar(), mapString("upper", strings.ToUpper))
	named(r, "toupper", maxVarchar(), mapString("toupper", strings.ToUpper))
	named(r, "reverse", maxVarchar(), mapString("reverse", reverseRunes))
	named(r, "concat", maxVarchar(), sqlConcat)
	named(r, "concat_ws", maxVarchar(), sqlConcatWS)
	named(r, "length", types.BigInt(), sqlLength)
	named(r, "repeat", maxVarchar(), sqlRepeat)
	named(r, "trim", maxVarchar(), trimFunc("trim", true, true))
	named(r, "ltrim", maxVarchar(), trimFunc("ltrim", true, false))
	named(r, "rtrim", maxVarchar(), trimFunc("rtrim", false, true))
	named(r, "contains", types.Boolean(), stringPredicate("contains", strings.Contains))
	named(r, "starts_with", types.Boolean(), stringPredicate("starts_with", strings.HasPrefix))
	named(r, "ends_with", types.Boolean(), stringPredicate("ends_with", strings.HasSuffix))
	named(r, "replace", maxVarchar(), sqlReplace)
	named(r, "instr", types.BigInt(), sqlInstr)
	named(r, "typeof", maxVarchar(), sqlTypeOf)
}

func anyNull(args []types.Value) bool {
	for _, a := range args {
		if a.IsNull() {
			return true
		}
	}
	return false
}

func stringArgs(args []types.Value) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := a.AsString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func mapString(name string, fn func(string) string) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, argCountError(name, len(args))
		}
		if args[0].IsNull() {
			return types.NewNull(maxVarchar()), nil
		}
		s, err := args[0].AsString()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewVarchar(fn(s)), nil
	}
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func stringPredicate(name string, fn func(s, sub string) bool) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, argCountError(name, len(args))
		}
		if anyNull(args) {
			return types.NewNull(types.Boolean()), nil
		}
		s, err := stringArgs(args)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewBoolean(fn(s[0], s[1])), nil
	}
}

// sqlSubstr is substr(str, pos [, len]) over characters. pos is 1-based;
// a negative pos counts back from the end; a negative len takes the
// characters before pos.
func sqlSubstr(args []types.Value) (types.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return types.Value{}, argCountError("substr", len(args))
	}
	if anyNull(args) {
		return types.NewNull(maxVarchar()), nil
	}
	if !args[0].IsString() {
		return types.Value{}, argTypeError("substr")
	}
	for _, a := range args[1:] {
		if !a.IsInteger() {
			return types.Value{}, argTypeError("substr")
		}
	}
	s, _ := args[0].AsString()
	pos, err := args[1].AsInt64()
	if err != nil {
		return types.Value{}, err
	}
	runes := []rune(s)
	n := int64(len(runes))
	length := n
	if len(args) == 3 {
		if length, err = args[2].AsInt64(); err != nil {
			return types.Value{}, err
		}
	}

	offset := pos - 1
	if pos < 0 {
		offset = n + pos
	}
	start, end := offset, offset+length
	if length < 0 {
		start, end = offset+length, offset
	}
	start = max(start, 0)
	end = min(end, n)
	if length == 0 || start >= n || end <= start {
		return types.NewVarchar(""), nil
	}
	return types.NewVarchar(string(runes[start:end])), nil
}

// sqlConcat skips null arguments.
func sqlConcat(args []types.Value) (types.Value, error) {
	if len(args) == 0 {
		return types.Value{}, argCountError("concat", 0)
	}
	var sb strings.Builder
	for _, a := range args {
		if a.IsNull() {
			continue
		}
		s, err := a.AsString()
		if err != nil {
			return types.Value{}, err
		}
		sb.WriteString(s)
	}
	return types.NewVarchar(sb.String()), nil
}

// sqlConcatWS joins the non-null arguments after the first with the first
// as separator. A null separator yields null.
func sqlConcatWS(args []types.Value) (types.Value, error) {
	if len(args) < 2 {
		return types.Value{}, argCountError("concat_ws", len(args))
	}
	if args[0].IsNull() {
		return types.NewNull(maxVarchar()), nil
	}
	sep, err := args[0].AsString()
	if err != nil {
		return types.Value{}, err
	}
	parts := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		if a.IsNull() {
			continue
		}
		s, err := a.AsString()
		if err != nil {
			return types.Value{}, err
		}
		parts = append(parts, s)
	}
	return types.NewVarchar(strings.Join(parts, sep)), nil
}

func sqlLength(args []types.Value) (types.Value, error) {
	if len(args) != 1 {
		return types.Value{}, argCountError("length", len(args))
	}
	if args[0].IsNull() {
		return types.NewNull(types.BigInt()), nil
	}
	s, err := args[0].AsString()
	if err != nil {
		return types.Value{}, err
	}
	return types.NewBigInt(int64(utf8.RuneCountInString(s))), nil
}

func sqlRepeat(args []types.Value) (types.Value, error) {
	if len(args) != 2 {
		return types.Value{}, argCountError("repeat", len(args))
	}
	if anyNull(args) {
		return types.NewNull(maxVarchar()), nil
	}
	if !args[1].IsInteger() {
		return types.Value{}, argTypeError("repeat")
	}
	s, err := args[0].AsString()
	if err != nil {
		return types.Value{}, err
	}
	count, err := args[1].AsInt64()
	if err != nil {
		return types.Value{}, err
	}
	if count <= 0 {
		return types.NewVarchar(""), nil
	}
	if int64(len(s))*count > types.DefaultVarcharLength {
		return types.Value{}, dberr.Newf(dberr.KindOutOfRange, "repeat result exceeds %d bytes", types.DefaultVarcharLength)
	}
	return types.NewVarchar(strings.Repeat(s, int(count))), nil
}

// trimFunc strips the characters of the optional second argument, a single
// space by default.
func trimFunc(name string, left, right bool) BodyFunc {
	return func(args []types.Value) (types.Value, error) {
		if len(args) != 1 && len(args) != 2 {
			return types.Value{}, argCountError(name, len(args))
		}
		if anyNull(args) {
			return types.NewNull(maxVarchar()), nil
		}
		s, err := stringArgs(args)
		if err != nil {
			return types.Value{}, err
		}
		cutset := " "
		if len(s) == 2 {
			cutset = s[1]
		}
		if !utf8.ValidString(s[0]) || !utf8.ValidString(cutset) {
			return types.Value{}, dberr.New(dberr.KindExecutor, "not supported non-utf-8 string")
		}
		out := s[0]
		if left {
			out = strings.TrimLeft(out, cutset)
		}
		if right {
			out = strings.TrimRight(out, cutset)
		}
		return types.NewVarchar(out), nil
	}
}

func sqlReplace(args []types.Value) (types.Value, error) {
	if len(args) != 3 {
		return types.Value{}, argCountError("replace", len(args))
	}
	if anyNull(args) {
		return types.NewNull(maxVarchar()), nil
	}
	s, err := stringArgs(args)
	if err != nil {
		return types.Value{}, err
	}
	if s[1] == "" {
		return types.NewVarchar(s[0]), nil
	}
	return types.NewVarchar(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

// sqlInstr returns the 1-based character position of the first occurrence of
// the second argument, 0 when absent.
func sqlInstr(args []types.Value) (types.Value, error) {
	if len(args) != 2 {
		return types.Value{}, argCountError("instr", len(args))
	}
	if anyNull(args) {
		return types.NewNull(types.BigInt()), nil
	}
	s, err := stringArgs(args)
	if err != nil {
		return types.Value{}, err
	}
	idx := strings.Index(s[0], s[1])
	if idx < 0 {
		return types.NewBigInt(0), nil
	}
	return types.NewBigInt(int64(utf8.RuneCountInString(s[0][:idx])) + 1), nil
}

func sqlTypeOf(args []types.Value) (types.Value, error) {
	if len(args) != 1 {
		return types.Value{}, argCountError("typeof", len(args))
	}
	return types.NewVarchar(args[0].Type().String()), nil
}
