package pipeline

import (
	"context"
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
	"io"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is the lexer output consumed by the parser.
type TokenStream interface {
	NextToken() token.Token
}

// PipelineContext carries the state of one source file through the stages.
type PipelineContext struct {
	Context    context.Context
	SourceCode string
	FilePath   string

	Settings *config.Settings
	// Interner and Deriver may be shared between files checked together.
	Interner *typesystem.Interner
	Deriver  *typesystem.Deriver

	TokenStream TokenStream
	AstRoot     ast.Node

	// TypeMap records the type the analyzer assigned to each expression.
	TypeMap map[ast.Node]typesystem.Type
	// Derivations lists every capability derivation the analyzer performed.
	Derivations []typesystem.Derivation

	// Output receives print statements when the evaluator runs.
	Output io.Writer

	Errors []*diagnostics.DiagnosticError
}

// NewPipelineContext creates a context for one source file with default
// settings and the process-wide interner.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		Context:    context.Background(),
		SourceCode: source,
		Settings:   config.DefaultSettings(),
		TypeMap:    make(map[ast.Node]typesystem.Type),
	}
}

// Failed reports whether any error-severity diagnostic was recorded.
func (ctx *PipelineContext) Failed() bool {
	return diagnostics.HasErrors(ctx.Errors)
}

// AddError records a diagnostic, filling in the file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}
