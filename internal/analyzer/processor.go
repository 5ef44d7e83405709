package analyzer

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/typesystem"
)

type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	// Statements that failed to parse are missing from the tree; checking
	// the rest would report their names as undeclared.
	if ctx.Failed() {
		return ctx
	}
	if ctx.Settings == nil {
		ctx.Settings = config.DefaultSettings()
	}
	if ctx.Interner == nil {
		ctx.Interner = InternerFor(ctx.Settings)
	}
	if ctx.Deriver == nil {
		ctx.Deriver = typesystem.NewDeriver(typesystem.NewImplTable(), ctx.Settings.Policy.Ordering)
	}
	if program, ok := ctx.AstRoot.(*ast.Program); ok && program.File == "" {
		program.File = ctx.FilePath
	}

	table := symbols.NewSymbolTable()
	analyzer := New(table, ctx.Interner, ctx.Deriver, ctx.Settings)
	analyzer.RegisterBuiltins()
	errors := analyzer.Analyze(ctx.AstRoot)

	if ctx.TypeMap == nil {
		ctx.TypeMap = analyzer.TypeMap
	} else {
		for node, t := range analyzer.TypeMap {
			ctx.TypeMap[node] = t
		}
	}
	ctx.Derivations = append(ctx.Derivations, analyzer.Derivations...)

	for _, err := range errors {
		ctx.AddError(err)
	}
	return ctx
}

// InternerFor returns the process-wide interner when the settings use the
// default slot limit, and a private interner otherwise.
func InternerFor(settings *config.Settings) *typesystem.Interner {
	if settings.Limits.MaxSlots == typesystem.Sums.MaxSlots() {
		return typesystem.Sums
	}
	return typesystem.NewInterner(settings.Limits.MaxSlots)
}
