package symbols

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/typesystem"
	"sort"
)

// SymbolTable is one lexical scope. Values and types live in separate
// namespaces.
type SymbolTable struct {
	store     map[string]Symbol
	types     map[string]Symbol
	outer     *SymbolTable
	scopeType ScopeType
}

func NewEmptySymbolTable() *SymbolTable {
	return &SymbolTable{
		store:     make(map[string]Symbol),
		types:     make(map[string]Symbol),
		scopeType: ScopeGlobal,
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	st := NewEmptySymbolTable()
	st.outer = outer
	st.scopeType = scopeType
	return st
}

// NewSymbolTable returns a global scope enclosed by the prelude of
// built-in types.
func NewSymbolTable() *SymbolTable {
	prelude := NewEmptySymbolTable()
	prelude.scopeType = ScopePrelude
	for name, t := range typesystem.Primitives {
		prelude.types[name] = Symbol{Name: name, Type: t, Kind: TypeSymbol, Nominal: true}
	}
	return NewEnclosedSymbolTable(prelude, ScopeGlobal)
}

// Outer returns the outer scope symbol table
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

// IsGlobalScope returns true if this symbol table is the user top-level scope.
func (s *SymbolTable) IsGlobalScope() bool {
	return s.scopeType == ScopeGlobal
}

func (s *SymbolTable) Define(name string, t typesystem.Type, node ast.Node) {
	s.store[name] = Symbol{Name: name, Type: t, Kind: VariableSymbol, DefinitionNode: node}
}

func (s *SymbolTable) DefineBuiltin(name string, t typesystem.Type) {
	s.store[name] = Symbol{Name: name, Type: t, Kind: BuiltinSymbol}
}

// DefineType registers a transparent alias.
func (s *SymbolTable) DefineType(name string, t typesystem.Type, params []string, node ast.Node) {
	s.types[name] = Symbol{Name: name, Type: t, Kind: TypeSymbol, TypeParams: params, DefinitionNode: node}
}

// DefineNominal registers a struct type.
func (s *SymbolTable) DefineNominal(name string, t typesystem.TCon, node ast.Node) {
	s.types[name] = Symbol{Name: name, Type: t, Kind: TypeSymbol, Nominal: true, DefinitionNode: node}
}

// FindWithScope returns the symbol and the scope where it was defined
func (s *SymbolTable) FindWithScope(name string) (Symbol, *SymbolTable, bool) {
	sym, ok := s.store[name]
	if ok {
		return sym, s, true
	}
	if s.outer != nil {
		return s.outer.FindWithScope(name)
	}
	return Symbol{}, nil, false
}

func (s *SymbolTable) Find(name string) (Symbol, bool) {
	sym, _, ok := s.FindWithScope(name)
	return sym, ok
}

// FindType looks up a type name.
func (s *SymbolTable) FindType(name string) (Symbol, bool) {
	sym, ok := s.types[name]
	if ok {
		return sym, true
	}
	if s.outer != nil {
		return s.outer.FindType(name)
	}
	return Symbol{}, false
}

// Lookup returns the value type of name, or a *typesystem.SymbolNotFoundError.
func (s *SymbolTable) Lookup(name string) (typesystem.Type, error) {
	sym, ok := s.Find(name)
	if !ok {
		return nil, typesystem.NewSymbolNotFoundError(name)
	}
	return sym.Type, nil
}

func (s *SymbolTable) IsDefined(name string) bool {
	_, ok := s.store[name]
	if !ok && s.outer != nil {
		return s.outer.IsDefined(name)
	}
	return ok
}

// IsTypeDefinedLocally checks if a type is defined in the current scope (shallow check)
func (s *SymbolTable) IsTypeDefinedLocally(name string) bool {
	_, ok := s.types[name]
	return ok
}

// GetAllNames returns all value names in scope (for error suggestions)
func (s *SymbolTable) GetAllNames() []string {
	return s.collectNames(func(t *SymbolTable) map[string]Symbol { return t.store })
}

// GetAllTypeNames returns all type names in scope (for error suggestions)
func (s *SymbolTable) GetAllTypeNames() []string {
	return s.collectNames(func(t *SymbolTable) map[string]Symbol { return t.types })
}

func (s *SymbolTable) collectNames(ns func(*SymbolTable) map[string]Symbol) []string {
	seen := make(map[string]bool)
	var names []string
	for scope := s; scope != nil; scope = scope.outer {
		for name := range ns(scope) {
			if !seen[name] {
				names = append(names, name)
				seen[name] = true
			}
		}
	}
	sort.Strings(names)
	return names
}
