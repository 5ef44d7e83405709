package evaluator

import (
	"github.com/funvibe/anonsum/internal/ast"
)

// evalMatch runs the first arm whose pattern matches the scrutinee.
func (e *Evaluator) evalMatch(me *ast.MatchExpression, env *Environment) Object {
	val := e.evalExpression(me.Expression, env)
	if isError(val) {
		return val
	}
	for _, arm := range me.Arms {
		armEnv := NewEnclosedEnvironment(env)
		if e.matchPattern(arm.Pattern, val, armEnv) {
			return e.evalExpression(arm.Expression, armEnv)
		}
	}
	return newErrorWithLocation(me.Token.Line, me.Token.Column, "no match arm matched %s", val.Inspect())
}

// matchPattern reports whether val matches pat, binding names in env.
// Bindings from a failed attempt may be left behind; callers use a fresh
// env per arm.
func (e *Evaluator) matchPattern(pat ast.Pattern, val Object, env *Environment) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true

	case *ast.IdentifierPattern:
		env.Set(p.Value, val)
		return true

	case *ast.LiteralPattern:
		return literalMatches(p, val)

	case *ast.TuplePattern:
		elems := tupleElements(val)
		if len(elems) != len(p.Elements) {
			return false
		}
		for i, el := range p.Elements {
			if !e.matchPattern(el, elems[i], env) {
				return false
			}
		}
		return true

	case *ast.SlotPattern:
		sv, ok := val.(*SumValue)
		if !ok || sv.Tag != p.Index {
			return false
		}
		return e.matchPattern(p.Sub, sv.Payload, env)

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			altEnv := NewEnclosedEnvironment(env)
			if e.matchPattern(alt, val, altEnv) {
				for _, name := range altEnv.Names() {
					v, _ := altEnv.Get(name)
					env.Set(name, v)
				}
				return true
			}
		}
	}
	return false
}

func literalMatches(p *ast.LiteralPattern, val Object) bool {
	switch v := p.Value.(type) {
	case int64:
		i, ok := val.(*Integer)
		return ok && i.Value == v
	case float64:
		f, ok := val.(*Float)
		return ok && f.Value == v
	case string:
		s, ok := val.(*String)
		return ok && s.Value == v
	case rune:
		c, ok := val.(*Char)
		return ok && c.Value == v
	case bool:
		b, ok := val.(*Boolean)
		return ok && b.Value == v
	}
	return false
}
