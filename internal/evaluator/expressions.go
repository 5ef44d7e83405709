package evaluator

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/typesystem"
)

func (e *Evaluator) evalExpression(expr ast.Expression, env *Environment) Object {
	switch n := expr.(type) {
	case *ast.Identifier:
		if val, ok := env.Get(n.Value); ok {
			return val
		}
		return newErrorWithLocation(n.Token.Line, n.Token.Column, "identifier not found: %s", n.Value)

	case *ast.IntegerLiteral:
		kind := n.Type
		if t, ok := e.typeOf(n).(typesystem.TCon); ok && isIntegerType(t) {
			kind = t
		}
		return newInt(n.Value, kind)

	case *ast.FloatLiteral:
		kind := n.Type
		if t, ok := e.typeOf(n).(typesystem.TCon); ok && isFloatType(t) {
			kind = t
		}
		return &Float{Value: n.Value, Kind: kind}

	case *ast.StringLiteral:
		return &String{Value: n.Value}
	case *ast.CharLiteral:
		return &Char{Value: n.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(n.Value)

	case *ast.TupleLiteral:
		if len(n.Elements) == 0 {
			return UNIT
		}
		elems := make([]Object, len(n.Elements))
		for i, el := range n.Elements {
			v := e.evalExpression(el, env)
			if isError(v) {
				return v
			}
			elems[i] = v
		}
		return &Tuple{Elements: elems}

	case *ast.SlotConstructor:
		return e.evalSlotConstructor(n, env)

	case *ast.CallExpression:
		return e.evalCall(n, env)

	case *ast.MethodCallExpression:
		return e.evalMethodCall(n, env)

	case *ast.MatchExpression:
		return e.evalMatch(n, env)
	}
	tok := expr.GetToken()
	return newErrorWithLocation(tok.Line, tok.Column, "unsupported expression %s", expr)
}

// evalSlotConstructor builds ::i(payload), or the first-class ::i, using
// the descriptor the analyzer resolved for the node.
func (e *Evaluator) evalSlotConstructor(sc *ast.SlotConstructor, env *Environment) Object {
	t := e.typeOf(sc)
	if sc.IsFirstClass() {
		fn, ok := t.(typesystem.TFunc)
		if !ok {
			return newErrorWithLocation(sc.Token.Line, sc.Token.Column, "constructor %s has no resolved type", sc)
		}
		sum, ok := fn.ReturnType.(*typesystem.TSum)
		if !ok {
			return newErrorWithLocation(sc.Token.Line, sc.Token.Column, "constructor %s does not build a sum", sc)
		}
		return &CtorFunc{Sum: sum, Index: sc.Index}
	}

	sum, ok := t.(*typesystem.TSum)
	if !ok {
		return newErrorWithLocation(sc.Token.Line, sc.Token.Column, "constructor %s has no resolved sum type", sc)
	}
	payload := e.evalExpression(sc.Payload, env)
	if isError(payload) {
		return payload
	}
	v, err := NewSumValue(sum, sc.Index, payload)
	if err != nil {
		return newErrorWithLocation(sc.Token.Line, sc.Token.Column, "%s", err.Error())
	}
	return v
}

func (e *Evaluator) evalCall(call *ast.CallExpression, env *Environment) Object {
	fn := e.evalExpression(call.Function, env)
	if isError(fn) {
		return fn
	}
	args := make([]Object, len(call.Arguments))
	for i, a := range call.Arguments {
		v := e.evalExpression(a, env)
		if isError(v) {
			return v
		}
		args[i] = v
	}

	res := e.applyFunction(fn, call, args)
	if err, ok := res.(*Error); ok && err.Line == 0 {
		err.Line, err.Column = call.Token.Line, call.Token.Column
	}
	return res
}

func (e *Evaluator) applyFunction(fn Object, call *ast.CallExpression, args []Object) Object {
	switch f := fn.(type) {
	case *Builtin:
		prev := e.CurrentCallNode
		e.CurrentCallNode = call
		defer func() { e.CurrentCallNode = prev }()
		return f.Fn(e, args...)
	case *CtorFunc:
		if len(args) != 1 {
			return newError("constructor %s takes 1 argument, got %d", f.Inspect(), len(args))
		}
		return f.Apply(args[0])
	case *SumValue:
		return newError("cannot call a value of anonymous sum %s; match on it first", f.Sum)
	}
	return newError("not a function: %s", fn.Inspect())
}

func (e *Evaluator) evalMethodCall(mc *ast.MethodCallExpression, env *Environment) Object {
	recv := e.evalExpression(mc.Receiver, env)
	if isError(recv) {
		return recv
	}
	args := make([]Object, len(mc.Arguments))
	for i, a := range mc.Arguments {
		v := e.evalExpression(a, env)
		if isError(v) {
			return v
		}
		args[i] = v
	}
	res := callMethod(recv, mc.Method.Value, args)
	if err, ok := res.(*Error); ok && err.Line == 0 {
		err.Line, err.Column = mc.Method.Token.Line, mc.Method.Token.Column
	}
	return res
}
