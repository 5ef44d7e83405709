package analyzer

import (
	"errors"
	"fmt"
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// unknownType stands in for a type that could not be determined. An
// error has already been reported wherever it appears, so checks that
// meet it stay silent.
var unknownType = typesystem.TCon{Name: "Unknown"}

func isUnknown(t typesystem.Type) bool {
	switch typ := t.(type) {
	case nil:
		return true
	case typesystem.TCon:
		return typ.Name == unknownType.Name && typ.Module == ""
	case typesystem.TTuple:
		for _, e := range typ.Elements {
			if isUnknown(e) {
				return true
			}
		}
	case typesystem.TFunc:
		for _, p := range typ.Params {
			if isUnknown(p) {
				return true
			}
		}
		return isUnknown(typ.ReturnType)
	case *typesystem.TSum:
		for _, s := range typ.Slots {
			if isUnknown(s) {
				return true
			}
		}
	}
	return false
}

// BuildType converts an AST Type node into a typesystem.Type. Sums are
// formed through in. Zero- and one-slot sums written in source are
// reported unless allowDegenerate is set.
func BuildType(t ast.Type, table *symbols.SymbolTable, in *typesystem.Interner, allowDegenerate bool, errs *[]*diagnostics.DiagnosticError) typesystem.Type {
	b := &typeBuilder{table: table, in: in, allowDegenerate: allowDegenerate, errs: errs}
	return b.build(t)
}

type typeBuilder struct {
	table           *symbols.SymbolTable
	in              *typesystem.Interner
	allowDegenerate bool
	errs            *[]*diagnostics.DiagnosticError
}

func (b *typeBuilder) fail(d *diagnostics.DiagnosticError) typesystem.Type {
	if b.errs != nil {
		*b.errs = append(*b.errs, d)
	}
	return unknownType
}

func (b *typeBuilder) build(t ast.Type) typesystem.Type {
	if t == nil {
		return unknownType
	}
	switch t := t.(type) {
	case *ast.NamedType:
		return b.buildNamed(t)

	case *ast.ParenType:
		return b.build(t.Inner)

	case *ast.TupleType:
		elems := make([]typesystem.Type, len(t.Types))
		for i, e := range t.Types {
			elems[i] = b.build(e)
		}
		return typesystem.TTuple{Elements: elems}

	case *ast.FunctionType:
		params := make([]typesystem.Type, len(t.Parameters))
		for i, p := range t.Parameters {
			params[i] = b.build(p)
		}
		return typesystem.TFunc{Params: params, ReturnType: b.build(t.ReturnType)}

	case *ast.SumType:
		slots := make([]typesystem.Type, len(t.Slots))
		for i, s := range t.Slots {
			slots[i] = b.build(s)
		}
		if len(slots) < 2 && !b.allowDegenerate {
			return b.fail(diagnostics.NewError(diagnostics.ErrS006, t.GetToken(),
				"%d-slot anonymous sum %s is not allowed (policy.degenerate_sums: %s)",
				len(slots), t.String(), config.DegenerateReject).
				Note("set policy.degenerate_sums: %s in %s to accept it", config.DegenerateAllow, config.SettingsFileName))
		}
		sum, err := b.in.Sum(slots...)
		if err != nil {
			var oversized *typesystem.OversizedSumError
			if errors.As(err, &oversized) {
				return b.fail(diagnostics.NewError(diagnostics.ErrS001, t.GetToken(), "%s", err.Error()).
					Note("raise limits.max_slots in %s or nest the sum", config.SettingsFileName))
			}
			return b.fail(diagnostics.NewError(diagnostics.ErrA003, t.GetToken(), "invalid sum type: %s", err.Error()))
		}
		return sum
	}
	return b.fail(diagnostics.NewError(diagnostics.ErrA003, t.GetToken(), "unsupported type syntax %s", t.String()))
}

func (b *typeBuilder) buildNamed(t *ast.NamedType) typesystem.Type {
	name := t.Name.Value
	sym, ok := b.table.FindType(name)
	if !ok {
		d := diagnostics.NewError(diagnostics.ErrA002, t.GetToken(), "undeclared type '%s'", name)
		if s := findSimilarNames(name, b.table.GetAllTypeNames(), 2); len(s) > 0 {
			d.Note("did you mean: %s?", s[0])
		}
		return b.fail(d)
	}

	args := make([]typesystem.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = b.build(a)
	}

	if !sym.IsGenericAlias() {
		if len(args) > 0 {
			return b.fail(diagnostics.NewError(diagnostics.ErrA003, t.GetToken(),
				"type '%s' takes no type arguments, got %d", name, len(args)))
		}
		return sym.Type
	}

	if len(args) == 0 {
		// Unapplied: the kind check reports it wherever a proper type is needed.
		kinds := make([]typesystem.Kind, len(sym.TypeParams)+1)
		for i := range kinds {
			kinds[i] = typesystem.Star
		}
		return typesystem.TCon{Name: name, KindVal: typesystem.MakeArrow(kinds...)}
	}
	if len(args) != len(sym.TypeParams) {
		return b.fail(diagnostics.NewError(diagnostics.ErrA003, t.GetToken(),
			"type '%s' expects %d type arguments, got %d", name, len(sym.TypeParams), len(args)))
	}
	for _, a := range args {
		if isUnknown(a) {
			return unknownType
		}
	}
	return sym.Instantiate(args)
}

// buildType builds, kind-checks and returns an annotation type.
func (w *walker) buildType(t ast.Type) typesystem.Type {
	var errs []*diagnostics.DiagnosticError
	built := BuildType(t, w.symbolTable, w.interner, w.allowDegenerate(), &errs)
	w.addErrors(errs)
	if isUnknown(built) {
		return unknownType
	}
	if !w.checkKind(built, t.GetToken()) {
		return unknownType
	}
	return built
}

// checkKind requires t to be a proper type with proper components.
func (w *walker) checkKind(t typesystem.Type, tok token.Token) bool {
	k, err := typesystem.KindCheck(t)
	if err != nil {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, tok, "%s", err.Error()))
		return false
	}
	if !k.Equal(typesystem.Star) {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, tok,
			"type %s is missing type arguments (kind %s)", t, k))
		return false
	}
	return true
}

func describeType(t typesystem.Type) string {
	if sum, ok := t.(*typesystem.TSum); ok {
		return fmt.Sprintf("anonymous sum %s", sum)
	}
	return t.String()
}
