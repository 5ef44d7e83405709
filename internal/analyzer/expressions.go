package analyzer

import (
	"math"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// infer computes the type of e. expected, when non-nil, is the type the
// context requires; constructors and unsuffixed literals take their type
// from it. The result is recorded in TypeMap.
func (w *walker) infer(e ast.Expression, expected typesystem.Type) typesystem.Type {
	if e == nil {
		return unknownType
	}
	t := w.inferExpr(e, expected)
	if t == nil {
		t = unknownType
	}
	w.TypeMap[e] = t
	return t
}

// expect infers e against want and reports a mismatch.
func (w *walker) expect(e ast.Expression, want typesystem.Type) typesystem.Type {
	got := w.infer(e, want)
	if isUnknown(got) || isUnknown(want) {
		return got
	}
	if !typesystem.Identical(got, want) {
		d := diagnostics.NewError(diagnostics.ErrA003, e.GetToken(), "expected %s, got %s", want, got)
		if sum, ok := want.(*typesystem.TSum); ok {
			for i, slot := range sum.Slots {
				if typesystem.Identical(slot, got) {
					d.Note("values are not converted into sums implicitly; write ::%d(%s)", i, e)
					break
				}
			}
		}
		w.addError(d)
	}
	return got
}

func (w *walker) inferExpr(e ast.Expression, expected typesystem.Type) typesystem.Type {
	switch n := e.(type) {
	case *ast.Identifier:
		return w.inferIdentifier(n)

	case *ast.IntegerLiteral:
		return w.inferInteger(n, expected)

	case *ast.FloatLiteral:
		if lexer.Suffix(n.Token.Lexeme) == "" && typesystem.Identical(expected, typesystem.F32) {
			return typesystem.F32
		}
		return n.Type

	case *ast.StringLiteral:
		return typesystem.String
	case *ast.CharLiteral:
		return typesystem.Char
	case *ast.BooleanLiteral:
		return typesystem.Bool

	case *ast.TupleLiteral:
		want, _ := expected.(typesystem.TTuple)
		elems := make([]typesystem.Type, len(n.Elements))
		for i, el := range n.Elements {
			var elExpected typesystem.Type
			if len(want.Elements) == len(n.Elements) {
				elExpected = want.Elements[i]
			}
			elems[i] = w.infer(el, elExpected)
		}
		return typesystem.TTuple{Elements: elems}

	case *ast.SlotConstructor:
		return w.inferSlotConstructor(n, expected)

	case *ast.CallExpression:
		return w.inferCall(n, expected)

	case *ast.MethodCallExpression:
		return w.inferMethodCall(n)

	case *ast.MatchExpression:
		return w.inferMatch(n, expected)
	}
	w.addError(diagnostics.NewError(diagnostics.ErrA003, e.GetToken(), "unsupported expression %s", e))
	return unknownType
}

func (w *walker) inferIdentifier(n *ast.Identifier) typesystem.Type {
	sym, ok := w.symbolTable.Find(n.Value)
	if !ok {
		d := diagnostics.NewError(diagnostics.ErrA001, n.Token, "undeclared name '%s'", n.Value)
		if s := findSimilarNames(n.Value, w.symbolTable.GetAllNames(), 2); len(s) > 0 {
			d.Note("did you mean: %s?", s[0])
		}
		w.addError(d)
		return unknownType
	}
	if sym.Kind == symbols.BuiltinSymbol {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, n.Token,
			"built-in function '%s' can only be called", n.Value))
		return unknownType
	}
	return sym.Type
}

// inferInteger gives an unsuffixed literal the integral type the context
// expects.
func (w *walker) inferInteger(n *ast.IntegerLiteral, expected typesystem.Type) typesystem.Type {
	if lexer.Suffix(n.Token.Lexeme) != "" {
		return n.Type
	}
	want, ok := expected.(typesystem.TCon)
	if !ok {
		return n.Type
	}
	switch {
	case typesystem.Identical(want, typesystem.I64):
		return typesystem.I64
	case typesystem.Identical(want, typesystem.U8):
		if n.Value < 0 || n.Value > math.MaxUint8 {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, n.Token,
				"integer literal %s overflows u8", n.Token.Lexeme))
			return unknownType
		}
		return typesystem.U8
	}
	return n.Type
}

func (w *walker) inferCall(call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	if id, ok := call.Function.(*ast.Identifier); ok {
		if sym, found := w.symbolTable.Find(id.Value); found && sym.Kind == symbols.BuiltinSymbol {
			if b, ok := LookupBuiltin(id.Value); ok {
				return w.inferBuiltinCall(b, call, expected)
			}
		}
	}

	ft := w.infer(call.Function, nil)
	if isUnknown(ft) {
		for _, arg := range call.Arguments {
			w.infer(arg, nil)
		}
		return unknownType
	}

	switch fn := ft.(type) {
	case typesystem.TFunc:
		if len(call.Arguments) != len(fn.Params) {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, call.Token,
				"%s expects %d argument(s), got %d", call.Function, len(fn.Params), len(call.Arguments)))
			return fn.ReturnType
		}
		for i, arg := range call.Arguments {
			w.expect(arg, fn.Params[i])
		}
		return fn.ReturnType

	case *typesystem.TSum:
		w.addError(diagnostics.NewError(diagnostics.ErrS008, call.Token,
			"cannot call %s through anonymous sum %s", call.Function, fn).
			Note("match on the value and call the slot's function"))
		return unknownType
	}

	w.addError(diagnostics.NewError(diagnostics.ErrA003, call.Token,
		"%s is not a function, it has type %s", call.Function, ft))
	return unknownType
}

func (w *walker) inferMethodCall(mc *ast.MethodCallExpression) typesystem.Type {
	recv := w.infer(mc.Receiver, nil)
	argTypes := make([]typesystem.Type, len(mc.Arguments))
	if isUnknown(recv) {
		for i, arg := range mc.Arguments {
			argTypes[i] = w.infer(arg, nil)
		}
		return unknownType
	}

	if sum, ok := recv.(*typesystem.TSum); ok {
		d := diagnostics.NewError(diagnostics.ErrS008, mc.Method.Token,
			"method '%s' called on anonymous sum %s", mc.Method.Value, sum)
		var holders []int
		for i, slot := range sum.Slots {
			if _, ok := lookupMethod(slot, mc.Method.Value); ok {
				holders = append(holders, i)
			}
		}
		if len(holders) > 0 {
			d.Note("slots %v have '%s'; match on the value and call it on the slot", holders, mc.Method.Value)
		} else {
			d.Note("match on the value first")
		}
		w.addError(d)
		for _, arg := range mc.Arguments {
			w.infer(arg, nil)
		}
		return unknownType
	}

	m, ok := lookupMethod(recv, mc.Method.Value)
	if !ok {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, mc.Method.Token,
			"type %s has no method '%s'", recv, mc.Method.Value))
		for _, arg := range mc.Arguments {
			w.infer(arg, nil)
		}
		return unknownType
	}
	if len(mc.Arguments) != len(m.Params) {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, mc.Method.Token,
			"method '%s' expects %d argument(s), got %d", mc.Method.Value, len(m.Params), len(mc.Arguments)))
		return m.Result
	}
	for i, arg := range mc.Arguments {
		w.expect(arg, m.Params[i])
	}
	return m.Result
}
