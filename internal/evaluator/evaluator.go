package evaluator

import (
	"context"
	"io"
	"os"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// DefaultMaxPolls bounds how often block_on polls one future.
const DefaultMaxPolls = 1 << 20

type Evaluator struct {
	// Context for cancellation
	Context context.Context

	Out io.Writer
	// TypeMap from analyzer - maps AST nodes to their inferred types.
	// Constructors and literals take their descriptor or kind from it.
	TypeMap map[ast.Node]typesystem.Type
	// Dispatch holds the per-descriptor method tables.
	Dispatch *Dispatch
	// CurrentCallNode is the call being evaluated, for builtins whose
	// result type depends on the call site (map_err).
	CurrentCallNode *ast.CallExpression
	// MaxPolls bounds block_on.
	MaxPolls int
}

func New() *Evaluator {
	return &Evaluator{
		Context:  context.Background(),
		Out:      os.Stdout,
		TypeMap:  make(map[ast.Node]typesystem.Type),
		Dispatch: NewDispatch(),
		MaxPolls: DefaultMaxPolls,
	}
}

// Eval evaluates node in env. Runtime failures come back as *Error.
func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch n := node.(type) {
	case *ast.Program:
		return e.evalProgram(n, env)
	case ast.Statement:
		return e.evalStatement(n, env)
	case ast.Expression:
		return e.evalExpression(n, env)
	}
	return newError("cannot evaluate %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = UNIT
	for _, stmt := range program.Statements {
		if err := e.Context.Err(); err != nil {
			tok := stmt.GetToken()
			return newErrorWithLocation(tok.Line, tok.Column, "evaluation cancelled: %v", err)
		}
		result = e.evalStatement(stmt, env)
		if isError(result) {
			return result
		}
	}
	return result
}

// typeOf returns the analyzer's type for node.
func (e *Evaluator) typeOf(node ast.Node) typesystem.Type {
	if e.TypeMap == nil {
		return nil
	}
	return e.TypeMap[node]
}

// implOf returns the capability implementation for obj's type.
func (e *Evaluator) implOf(obj Object) *Impl {
	return e.Dispatch.ImplFor(obj.RuntimeType())
}
