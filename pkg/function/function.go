// Package function holds the scalar function registry: overload groups keyed
// by name, resolved against argument types by summing implicit-cast costs.
package function

import (
	"fmt"
	"sort"
	"strings"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/primitives"
	"rowexec/pkg/types"
)

// BodyFunc computes a function result from already-evaluated arguments.
type BodyFunc func(args []types.Value) (types.Value, error)

// ReturnTypeFunc derives the result type from the argument types at bind time.
type ReturnTypeFunc func(args []types.LogicalType) types.LogicalType

// Signature describes the arguments an overload accepts and what it returns.
type Signature struct {
	Args       []types.TypeID
	Return     types.LogicalType
	ReturnFunc ReturnTypeFunc

	// VarArgs accepts any number of extra arguments of any type after Args.
	VarArgs bool
	// NullAware bodies see null arguments. Other bodies are skipped and the
	// caller yields a null of the return type instead.
	NullAware bool
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	for _, a := range s.Args {
		parts = append(parts, a.String())
	}
	if s.VarArgs {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + s.Return.String()
}

// Function is one resolved overload.
type Function struct {
	Name string
	Sig  Signature
	Body BodyFunc
}

// Call runs the body.
func (f Function) Call(args []types.Value) (types.Value, error) {
	return f.Body(args)
}

// ReturnType is the return type computed during resolution.
func (f Function) ReturnType() types.LogicalType { return f.Sig.Return }

func (f Function) String() string { return f.Name + f.Sig.String() }

// FunctionGroup is the ordered overload list registered under one name.
type FunctionGroup struct {
	name      string
	functions []Function
}

func (g *FunctionGroup) add(fn Function) {
	g.functions = append(g.functions, fn)
}

// argCost prices converting arg into the overload's parameter i.
func (s Signature) argCost(i int, arg types.TypeID) int {
	if i >= len(s.Args) {
		if s.VarArgs {
			return 0
		}
		return types.NoCast
	}
	return types.ImplicitCastCost(arg, s.Args[i])
}

// Resolve picks the cheapest overload for args.
//
// An overload qualifies when it declares no more parameters than there are
// arguments and every non-PARAM argument can be implicitly cast to its
// parameter. The lowest total cost wins; on a tie the earliest registered
// overload is kept, and a zero-cost match ends the search.
func (g *FunctionGroup) Resolve(args []types.LogicalType) (Function, bool) {
	best := -1
	lowest := int64(-1)
	for idx, fn := range g.functions {
		if len(fn.Sig.Args) > len(args) {
			continue
		}
		found := true
		var cost int64
		for i, arg := range args {
			if arg.ID == types.ParamType {
				continue
			}
			c := fn.Sig.argCost(i, arg.ID)
			if c < 0 {
				found = false
				break
			}
			cost += int64(c)
		}
		if found && (best < 0 || cost < lowest) {
			best, lowest = idx, cost
			if cost == 0 {
				break
			}
		}
	}
	if best < 0 {
		return Function{}, false
	}
	fn := g.functions[best]
	if fn.Sig.ReturnFunc != nil {
		fn.Sig.Return = fn.Sig.ReturnFunc(args)
	}
	return fn, true
}

// Overloads returns the registered overloads in registration order.
func (g *FunctionGroup) Overloads() []Function {
	out := make([]Function, len(g.functions))
	copy(out, g.functions)
	return out
}

// Registry maps names to overload groups. The zero value is an empty
// registry; NewRegistry returns one holding every builtin. A registry is
// read-only once built and safe to share between plans.
type Registry struct {
	groups      map[string]*FunctionGroup
	initialized bool
}

// NewRegistry returns a registry with all builtin function sets loaded.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Init()
	return r
}

// Init registers the builtin sets. Calling it again is a no-op.
func (r *Registry) Init() {
	if r.initialized {
		return
	}
	r.initialized = true
	registerArithmetic(r)
	registerCompare(r)
	registerConcat(r)
	registerStrings(r)
	registerMath(r)
	registerDates(r)
}

func normalize(name string) string { return strings.ToLower(name) }

// RegisterFunction appends an overload to the group named name.
func (r *Registry) RegisterFunction(name string, sig Signature, body BodyFunc) {
	if r.groups == nil {
		r.groups = make(map[string]*FunctionGroup)
	}
	key := normalize(name)
	g, ok := r.groups[key]
	if !ok {
		g = &FunctionGroup{name: key}
		r.groups[key] = g
	}
	g.add(Function{Name: key, Sig: sig, Body: body})
}

// GetFunction resolves name against the argument types.
func (r *Registry) GetFunction(name string, args []types.LogicalType) (Function, bool) {
	g, ok := r.groups[normalize(name)]
	if !ok {
		return Function{}, false
	}
	return g.Resolve(args)
}

// GetCompareFunction resolves a comparison operator. Only "=", "<" and "<="
// are registered; "<>", ">" and ">=" negate the result of "=", "<=" and "<".
func (r *Registry) GetCompareFunction(op string, args []types.LogicalType) (Function, bool, error) {
	cmp, err := primitives.ParseComparison(op)
	if err != nil {
		return Function{}, false, dberr.Newf(dberr.KindExecutor, "%s is unsupported compare function", op)
	}
	var (
		fn Function
		ok bool
	)
	switch cmp {
	case primitives.Equals:
		fn, ok = r.GetFunction("=", args)
	case primitives.NotEqual:
		fn, ok = r.GetFunction("=", args)
		fn = negated(fn, op)
	case primitives.LessThan:
		fn, ok = r.GetFunction("<", args)
	case primitives.LessThanOrEqual:
		fn, ok = r.GetFunction("<=", args)
	case primitives.GreaterThan:
		fn, ok = r.GetFunction("<=", args)
		fn = negated(fn, op)
	case primitives.GreaterThanOrEqual:
		fn, ok = r.GetFunction("<", args)
		fn = negated(fn, op)
	default:
		return Function{}, false, dberr.Newf(dberr.KindExecutor, "%s is unsupported compare function", op)
	}
	return fn, ok, nil
}

// negated flips a boolean result. UNKNOWN stays UNKNOWN.
func negated(fn Function, name string) Function {
	if fn.Body == nil {
		return fn
	}
	inner := fn.Body
	fn.Name = name
	fn.Body = func(args []types.Value) (types.Value, error) {
		v, err := inner(args)
		if err != nil || v.IsNull() {
			return v, err
		}
		b, err := v.AsBool()
		if err != nil {
			return types.Value{}, err
		}
		return types.NewBoolean(!b), nil
	}
	return fn
}

// Names lists every registered name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overloads lists the overloads registered under name.
func (r *Registry) Overloads(name string) []Function {
	g, ok := r.groups[normalize(name)]
	if !ok {
		return nil
	}
	return g.Overloads()
}

func argCountError(name string, got int) error {
	return dberr.Newf(dberr.KindExecutor, "%s function parameter number error: got %d", name, got)
}

func argTypeError(name string) error {
	return dberr.New(dberr.KindExecutor, fmt.Sprintf("%s function parameter type error", name))
}
