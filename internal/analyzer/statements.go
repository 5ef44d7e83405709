package analyzer

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/typesystem"
)

func (w *walker) statement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.TypeDeclaration:
		w.typeDeclaration(n)
	case *ast.StructDeclaration:
		w.structDeclaration(n)
	case *ast.LetStatement:
		w.letStatement(n)
	case *ast.DeriveStatement:
		w.checkDerive(n)
	case *ast.PrintStatement:
		t := w.infer(n.Value, nil)
		if !isUnknown(t) {
			w.requireCapability(t, typesystem.Debug, n.Value.GetToken(), "print")
		}
	case *ast.ForStatement:
		w.forStatement(n)
	case *ast.BlockStatement:
		w.withScope(symbols.ScopeBlock, func() {
			for _, s := range n.Statements {
				w.statement(s)
			}
		})
	case *ast.ExpressionStatement:
		w.infer(n.Expression, nil)
	default:
		w.addError(diagnostics.NewError(diagnostics.ErrA003, stmt.GetToken(), "unsupported statement %s", stmt))
	}
}

func (w *walker) declareTypeName(name *ast.Identifier) bool {
	if !w.checkTypeName(name) {
		return false
	}
	if _, exists := w.symbolTable.FindType(name.Value); exists {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, name.Token,
			"type '%s' is already declared", name.Value))
		return false
	}
	return true
}

// typeDeclaration registers a transparent alias. Alias parameters are
// type variables inside the body.
func (w *walker) typeDeclaration(td *ast.TypeDeclaration) {
	if !w.declareTypeName(td.Name) {
		return
	}
	params := make([]string, len(td.TypeParams))
	seen := make(map[string]bool)
	for i, p := range td.TypeParams {
		if seen[p.Value] {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, p.Token,
				"duplicate type parameter '%s'", p.Value))
		}
		seen[p.Value] = true
		params[i] = p.Value
	}

	var body typesystem.Type
	w.withScope(symbols.ScopeBlock, func() {
		for _, p := range params {
			w.symbolTable.DefineType(p, typesystem.TVar{Name: p}, nil, td)
		}
		body = w.buildType(td.Type)
	})
	if isUnknown(body) {
		// Keep the name declared so later uses do not cascade into A002.
		w.symbolTable.DefineType(td.Name.Value, unknownType, params, td)
		return
	}
	w.TypeMap[td] = body
	w.symbolTable.DefineType(td.Name.Value, body, params, td)
}

// structDeclaration registers an opaque nominal type and its declared
// capabilities.
func (w *walker) structDeclaration(sd *ast.StructDeclaration) {
	if !w.declareTypeName(sd.Name) {
		return
	}
	// Structs of different files are different types even when they
	// share a name; the interner is shared across files.
	con := typesystem.TCon{Name: sd.Name.Value, Module: w.currentFile}
	w.symbolTable.DefineNominal(sd.Name.Value, con, sd)
	w.TypeMap[sd] = con

	impls := w.deriver.Impls()
	for _, ref := range sd.Derives {
		c, ok := w.capability(ref)
		if !ok {
			continue
		}
		if !c.HasAssoc() {
			impls.Declare(con, c)
			continue
		}
		if ref.Arg == nil {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, ref.Token,
				"%s needs its associated type, e.g. %s<i32>", c, c))
			continue
		}
		assoc := w.buildType(ref.Arg)
		if !isUnknown(assoc) {
			impls.DeclareAssoc(con, c, assoc)
		}
	}
}

func (w *walker) letStatement(ls *ast.LetStatement) {
	var annotated typesystem.Type
	if ls.TypeAnnotation != nil {
		annotated = w.buildType(ls.TypeAnnotation)
	}

	var t typesystem.Type
	if annotated != nil {
		t = w.expect(ls.Value, annotated)
		if !isUnknown(annotated) {
			t = annotated
		}
	} else {
		t = w.infer(ls.Value, nil)
	}

	w.checkValueName(ls.Name)
	w.symbolTable.Define(ls.Name.Value, t, ls)
	w.TypeMap[ls.Name] = t
}

// forStatement binds the loop variable to the iterable's item type.
func (w *walker) forStatement(fs *ast.ForStatement) {
	t := w.infer(fs.Iterable, nil)
	item := typesystem.Type(unknownType)
	if !isUnknown(t) {
		if der, ok := w.requireCapability(t, typesystem.Iterator, fs.Iterable.GetToken(), "for loop"); ok {
			item = der.Assoc
		}
	}
	w.TypeMap[fs.Variable] = item
	w.withScope(symbols.ScopeBlock, func() {
		w.symbolTable.Define(fs.Variable.Value, item, fs)
		for _, s := range fs.Body.Statements {
			w.statement(s)
		}
	})
}
