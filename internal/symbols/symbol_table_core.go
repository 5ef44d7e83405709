package symbols

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/typesystem"
)

type SymbolKind int

type ScopeType int

const (
	ScopePrelude ScopeType = iota // Built-in types and functions
	ScopeGlobal                   // User code top-level
	ScopeBlock                    // for-loop bodies and match arms
)

const (
	VariableSymbol SymbolKind = iota
	TypeSymbol
	BuiltinSymbol
)

type Symbol struct {
	Name string
	// Type is the value type for variables and the aliased type for type
	// symbols. For a generic alias it mentions TypeParams as type variables.
	Type       typesystem.Type
	Kind       SymbolKind
	TypeParams []string
	// Nominal is set for struct declarations.
	Nominal        bool
	DefinitionNode ast.Node // The AST node where this symbol was defined
}

// IsGenericAlias reports whether the symbol is a type alias with parameters.
func (s Symbol) IsGenericAlias() bool {
	return s.Kind == TypeSymbol && len(s.TypeParams) > 0
}

// Instantiate substitutes args for the alias parameters. Sums in the
// alias body are re-interned, so the result of `Either<i32, String>` is
// the same descriptor as `i32 | String`.
func (s Symbol) Instantiate(args []typesystem.Type) typesystem.Type {
	subst := make(typesystem.Subst, len(args))
	for i, p := range s.TypeParams {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	return s.Type.Apply(subst)
}
