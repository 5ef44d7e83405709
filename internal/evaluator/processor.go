package evaluator

import (
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/token"
)

// EvaluatorProcessor runs a program that checked without errors.
// Warnings do not block evaluation.
type EvaluatorProcessor struct {
	// Dispatch, when set, is shared with other runs.
	Dispatch *Dispatch
}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}

	eval := New()
	if ctx.Context != nil {
		eval.Context = ctx.Context
	}
	if ctx.Output != nil {
		eval.Out = ctx.Output
	}
	if ep.Dispatch != nil {
		eval.Dispatch = ep.Dispatch
	}
	eval.TypeMap = ctx.TypeMap

	env := NewEnvironment()
	RegisterBuiltins(env)

	result := eval.Eval(ctx.AstRoot, env)
	if err, ok := result.(*Error); ok {
		tok := token.Token{Line: err.Line, Column: err.Column}
		ctx.AddError(diagnostics.NewError(diagnostics.ErrR001, tok, "%s", err.Message))
	}
	return ctx
}
