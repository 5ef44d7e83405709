package analyzer

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/typesystem"
)

type builtinCheck func(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type

// Builtin describes a built-in function. Capability-constrained
// parameters appear in Type as type variables; check does the real work.
type Builtin struct {
	Name  string
	Arity int
	Type  typesystem.Type
	check builtinCheck
}

var builtins map[string]*Builtin

// Type variables of the map_err signature. The '$' keeps them apart from
// alias parameters.
var (
	mapErrT = typesystem.TVar{Name: "$T"}
	mapErrE = typesystem.TVar{Name: "$E"}
	mapErrF = typesystem.TVar{Name: "$F"}
)

func init() {
	t := typesystem.TVar{Name: "T"}
	fn := func(result typesystem.Type, params ...typesystem.Type) typesystem.TFunc {
		return typesystem.TFunc{Params: params, ReturnType: result}
	}
	list := []*Builtin{
		{config.DebugFuncName, 1, fn(typesystem.String, t), unaryCapability(typesystem.Debug, typesystem.String)},
		{config.HashFuncName, 1, fn(typesystem.I64, t), unaryCapability(typesystem.Hash, typesystem.I64)},
		{config.CloneFuncName, 1, fn(t, t), unaryCapability(typesystem.Clone, nil)},
		{config.CopyFuncName, 1, fn(t, t), unaryCapability(typesystem.Copy, nil)},
		{config.EqFuncName, 2, fn(typesystem.Bool, t, t), binaryCapability(typesystem.PartialEq, typesystem.Bool)},
		{config.CmpFuncName, 2, fn(typesystem.I32, t, t), binaryCapability(typesystem.PartialOrd, typesystem.I32)},
		{config.RangeFuncName, 2, fn(typesystem.Range, typesystem.I32, typesystem.I32), monomorphic},
		{config.CharsFuncName, 1, fn(typesystem.Chars, typesystem.String), monomorphic},
		{config.ReadyFuncName, 1, fn(typesystem.Ready, typesystem.I32), monomorphic},
		{config.DelayFuncName, 2, fn(typesystem.Delay, typesystem.I32, typesystem.I32), monomorphic},
		{config.BlockOnFuncName, 1, fn(typesystem.TVar{Name: "Output"}, t), checkBlockOn},
		{config.MapErrFuncName, 2, nil, checkMapErr},
	}
	builtins = make(map[string]*Builtin, len(list))
	for _, b := range list {
		builtins[b.Name] = b
	}
	builtins[config.MapErrFuncName].Type = fn(
		typesystem.Sums.MustSum(mapErrT, mapErrF),
		typesystem.Sums.MustSum(mapErrT, mapErrE),
		fn(mapErrF, mapErrE),
	)
}

// RegisterBuiltins defines the built-in functions in table.
func RegisterBuiltins(table *symbols.SymbolTable) {
	for name, b := range builtins {
		table.DefineBuiltin(name, b.Type)
	}
}

// LookupBuiltin returns the built-in function called name.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

func (w *walker) inferBuiltinCall(b *Builtin, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	if len(call.Arguments) != b.Arity {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, call.Token,
			"%s expects %d argument(s), got %d", b.Name, b.Arity, len(call.Arguments)))
		for _, arg := range call.Arguments {
			w.infer(arg, nil)
		}
		return unknownType
	}
	return b.check(w, call, expected)
}

// unaryCapability checks f(x) where x must implement c. A nil result
// means the call returns the argument type.
func unaryCapability(c typesystem.Capability, result typesystem.Type) builtinCheck {
	return func(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
		var argExpected typesystem.Type
		if result == nil {
			argExpected = expected
		}
		arg := call.Arguments[0]
		t := w.infer(arg, argExpected)
		if !isUnknown(t) {
			w.requireCapability(t, c, arg.GetToken(), callName(call))
		}
		if result == nil {
			return t
		}
		return result
	}
}

// binaryCapability checks f(a, b) where a and b have the same type
// implementing c. A constructor argument takes its type from the other
// argument.
func binaryCapability(c typesystem.Capability, result typesystem.Type) builtinCheck {
	return func(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
		first, second := call.Arguments[0], call.Arguments[1]
		if isConstructor(first) && !isConstructor(second) {
			first, second = second, first
		}
		a := w.infer(first, nil)
		b := w.infer(second, a)
		if isUnknown(a) || isUnknown(b) {
			return result
		}
		if !typesystem.Identical(a, b) {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, second.GetToken(),
				"%s arguments must have the same type, got %s and %s", callName(call), a, b))
			return result
		}
		w.requireCapability(a, c, call.Arguments[0].GetToken(), callName(call))
		return result
	}
}

func monomorphic(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	b := builtins[callName(call)]
	sig := b.Type.(typesystem.TFunc)
	for i, arg := range call.Arguments {
		w.expect(arg, sig.Params[i])
	}
	return sig.ReturnType
}

func checkBlockOn(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	arg := call.Arguments[0]
	t := w.infer(arg, nil)
	if isUnknown(t) {
		return unknownType
	}
	der, ok := w.requireCapability(t, typesystem.Future, arg.GetToken(), callName(call))
	if !ok {
		return unknownType
	}
	return der.Assoc
}

// checkMapErr types map_err(r, f) with r: T | E and f: fn(E) -> F,
// giving T | F. F comes from f, or from the expected result when f is a
// first-class constructor that needs it.
func checkMapErr(w *walker, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	rArg, fArg := call.Arguments[0], call.Arguments[1]
	rt := w.infer(rArg, nil)
	if isUnknown(rt) {
		w.infer(fArg, nil)
		return unknownType
	}
	subst, err := typesystem.Unify(w.interner.MustSum(mapErrT, mapErrE), rt)
	if err != nil {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, rArg.GetToken(),
			"map_err expects a two-slot anonymous sum, got %s", describeType(rt)))
		w.infer(fArg, nil)
		return unknownType
	}

	result := w.interner.MustSum(mapErrT, mapErrF).Apply(subst)
	if expected != nil && !isUnknown(expected) {
		if s, err := typesystem.Unify(result, expected); err == nil {
			subst = subst.Compose(s)
		}
	}

	want := typesystem.TFunc{Params: []typesystem.Type{mapErrE}, ReturnType: mapErrF}.Apply(subst)
	var ft typesystem.Type
	if len(want.FreeTypeVariables()) == 0 {
		ft = w.infer(fArg, want)
	} else {
		ft = w.infer(fArg, nil)
	}
	if isUnknown(ft) {
		return unknownType
	}
	s, err := typesystem.Unify(want, ft)
	if err != nil {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, fArg.GetToken(),
			"map_err expects a function from %s, got %s", want.(typesystem.TFunc).Params[0], ft))
		return unknownType
	}
	subst = subst.Compose(s)

	out := w.interner.MustSum(mapErrT, mapErrF).Apply(subst)
	if len(out.FreeTypeVariables()) > 0 {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, call.Token,
			"cannot infer the result type of map_err; annotate the binding"))
		return unknownType
	}
	return out
}

func callName(call *ast.CallExpression) string {
	if id, ok := call.Function.(*ast.Identifier); ok {
		return id.Value
	}
	return call.Function.String()
}

func isConstructor(e ast.Expression) bool {
	_, ok := e.(*ast.SlotConstructor)
	return ok
}
