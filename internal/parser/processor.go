package parser

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// This case should ideally not be hit if lexer runs first, but as a safeguard:
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	prog := parser.ParseProgram()
	prog.File = ctx.FilePath
	ctx.AstRoot = prog

	// Ensure all errors have file path set
	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}

// ParseString is a convenience for callers that only need the syntax tree.
func ParseString(input string) (*ast.Program, []*diagnostics.DiagnosticError) {
	ctx := pipeline.NewPipelineContext(input)
	ctx.TokenStream = lexer.New(input)
	prog := New(ctx.TokenStream, ctx).ParseProgram()
	return prog, ctx.Errors
}
