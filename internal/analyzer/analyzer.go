package analyzer

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/typesystem"
	"sort"
)

// Analyzer performs semantic analysis on the AST.
type Analyzer struct {
	symbolTable *symbols.SymbolTable
	interner    *typesystem.Interner
	deriver     *typesystem.Deriver
	settings    *config.Settings

	TypeMap     map[ast.Node]typesystem.Type // Stores inferred types
	Derivations []typesystem.Derivation
}

// New creates a new Analyzer with a given symbol table. Nil interner,
// deriver or settings select the process-wide interner, a fresh deriver
// and the default settings.
func New(symbolTable *symbols.SymbolTable, interner *typesystem.Interner, deriver *typesystem.Deriver, settings *config.Settings) *Analyzer {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if interner == nil {
		interner = typesystem.Sums
	}
	if deriver == nil {
		deriver = typesystem.NewDeriver(typesystem.NewImplTable(), settings.Policy.Ordering)
	}
	return &Analyzer{
		symbolTable: symbolTable,
		interner:    interner,
		deriver:     deriver,
		settings:    settings,
		TypeMap:     make(map[ast.Node]typesystem.Type),
	}
}

func (a *Analyzer) RegisterBuiltins() {
	RegisterBuiltins(a.symbolTable)
}

// Analyze checks the program and returns its diagnostics sorted by position.
func (a *Analyzer) Analyze(node ast.Node) []*diagnostics.DiagnosticError {
	w := &walker{
		symbolTable: a.symbolTable,
		errorSet:    make(map[string]*diagnostics.DiagnosticError),
		TypeMap:     a.TypeMap,
		interner:    a.interner,
		deriver:     a.deriver,
		settings:    a.settings,
		derived:     make(map[string]bool),
	}
	program, ok := node.(*ast.Program)
	if !ok {
		return nil
	}
	w.currentFile = program.File
	for _, stmt := range program.Statements {
		w.statement(stmt)
	}
	a.Derivations = append(a.Derivations, w.derivations...)
	return w.getErrors()
}

type walker struct {
	symbolTable *symbols.SymbolTable
	errorSet    map[string]*diagnostics.DiagnosticError // Key: "line:col:code" for deduplication
	TypeMap     map[ast.Node]typesystem.Type
	interner    *typesystem.Interner
	deriver     *typesystem.Deriver
	settings    *config.Settings
	currentFile string

	derivations []typesystem.Derivation
	derived     map[string]bool
}

// addError adds an error to the walker, deduplicating by position and code
func (w *walker) addError(err *diagnostics.DiagnosticError) {
	if err.File == "" && w.currentFile != "" {
		err.File = w.currentFile
	}
	key := fmt.Sprintf("%d:%d:%s", err.Token.Line, err.Token.Column, err.Code)
	if _, exists := w.errorSet[key]; exists {
		return
	}
	w.errorSet[key] = err
}

// addErrors adds multiple errors to the walker
func (w *walker) addErrors(errs []*diagnostics.DiagnosticError) {
	for _, err := range errs {
		w.addError(err)
	}
}

// errorCount is used to tell whether a sub-check reported anything.
func (w *walker) errorCount() int {
	n := 0
	for _, e := range w.errorSet {
		if !e.IsWarning() {
			n++
		}
	}
	return n
}

// getErrors returns all unique errors as a slice, sorted by position
func (w *walker) getErrors() []*diagnostics.DiagnosticError {
	result := make([]*diagnostics.DiagnosticError, 0, len(w.errorSet))
	for _, err := range w.errorSet {
		result = append(result, err)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Token.Line != result[j].Token.Line {
			return result[i].Token.Line < result[j].Token.Line
		}
		if result[i].Token.Column != result[j].Token.Column {
			return result[i].Token.Column < result[j].Token.Column
		}
		return result[i].Code < result[j].Code
	})

	return result
}

// record keeps every sum derivation once, for export to the catalog.
func (w *walker) record(der typesystem.Derivation) {
	sum, ok := der.Type.(*typesystem.TSum)
	if !ok {
		return
	}
	key := sum.Key() + "\x00" + string(der.Capability)
	if w.derived[key] {
		return
	}
	w.derived[key] = true
	w.derivations = append(w.derivations, der)
}

func (w *walker) withScope(scopeType symbols.ScopeType, fn func()) {
	outer := w.symbolTable
	w.symbolTable = symbols.NewEnclosedSymbolTable(outer, scopeType)
	defer func() { w.symbolTable = outer }()
	fn()
}

func (w *walker) allowDegenerate() bool {
	return w.settings.Policy.DegenerateSums == config.DegenerateAllow
}
