package evaluator

import (
	"fmt"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/typesystem"
)

func (e *Evaluator) evalStatement(stmt ast.Statement, env *Environment) Object {
	switch n := stmt.(type) {
	case *ast.LetStatement:
		val := e.evalExpression(n.Value, env)
		if isError(val) {
			return val
		}
		env.Set(n.Name.Value, val)
		return UNIT

	case *ast.PrintStatement:
		return e.evalPrint(n, env)

	case *ast.ForStatement:
		return e.evalFor(n, env)

	case *ast.BlockStatement:
		return e.evalBlock(n.Statements, NewEnclosedEnvironment(env))

	case *ast.ExpressionStatement:
		return e.evalExpression(n.Expression, env)

	case *ast.DeriveStatement:
		// Build the tables up front so later dispatch finds them cached.
		if sum, ok := e.typeOf(n).(*typesystem.TSum); ok {
			e.Dispatch.Table(sum)
		}
		return UNIT

	case *ast.TypeDeclaration, *ast.StructDeclaration:
		return UNIT
	}
	tok := stmt.GetToken()
	return newErrorWithLocation(tok.Line, tok.Column, "unsupported statement %s", stmt)
}

func (e *Evaluator) evalBlock(stmts []ast.Statement, env *Environment) Object {
	var result Object = UNIT
	for _, s := range stmts {
		result = e.evalStatement(s, env)
		if isError(result) {
			return result
		}
	}
	return result
}

// evalPrint writes the Debug rendering of the value. A top-level string
// is written as is.
func (e *Evaluator) evalPrint(ps *ast.PrintStatement, env *Environment) Object {
	val := e.evalExpression(ps.Value, env)
	if isError(val) {
		return val
	}
	var text string
	if s, ok := val.(*String); ok {
		text = s.Value
	} else {
		impl := e.implOf(val)
		if impl.Debug == nil {
			return newErrorWithLocation(ps.Token.Line, ps.Token.Column,
				"%s does not implement Debug", val.RuntimeType())
		}
		text = impl.Debug(val)
	}
	if _, err := fmt.Fprintln(e.Out, text); err != nil {
		return newErrorWithLocation(ps.Token.Line, ps.Token.Column, "print: %v", err)
	}
	return UNIT
}

func (e *Evaluator) evalFor(fs *ast.ForStatement, env *Environment) Object {
	iterable := e.evalExpression(fs.Iterable, env)
	if isError(iterable) {
		return iterable
	}
	impl := e.implOf(iterable)
	if impl.Iter == nil {
		return newErrorWithLocation(fs.Token.Line, fs.Token.Column,
			"%s does not implement Iterator", iterable.RuntimeType())
	}
	it := impl.Iter(iterable)
	for {
		if err := e.Context.Err(); err != nil {
			return newErrorWithLocation(fs.Token.Line, fs.Token.Column, "evaluation cancelled: %v", err)
		}
		item, ok := it.Next()
		if !ok {
			return UNIT
		}
		loopEnv := NewEnclosedEnvironment(env)
		loopEnv.Set(fs.Variable.Value, item)
		if res := e.evalBlock(fs.Body.Statements, loopEnv); isError(res) {
			return res
		}
	}
}
