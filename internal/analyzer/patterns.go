package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/symbols"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// binding is a name introduced by a pattern. slots is the sequence of
// slot indices the pattern passes through to reach it.
type binding struct {
	name  string
	typ   typesystem.Type
	slots []int
	tok   token.Token
}

func (w *walker) inferMatch(me *ast.MatchExpression, expected typesystem.Type) typesystem.Type {
	scrut := w.infer(me.Expression, nil)
	result := expected
	patternsOK := true

	for _, arm := range me.Arms {
		w.withScope(symbols.ScopeBlock, func() {
			binds, ok := w.checkPattern(arm.Pattern, scrut)
			if !ok {
				patternsOK = false
			}
			for _, b := range binds {
				w.symbolTable.Define(b.name, b.typ, arm.Pattern)
			}
			if result == nil {
				result = w.infer(arm.Expression, nil)
				return
			}
			got := w.infer(arm.Expression, result)
			if !isUnknown(got) && !isUnknown(result) && !typesystem.Identical(got, result) {
				w.addError(diagnostics.NewError(diagnostics.ErrA003, arm.Expression.GetToken(),
					"match arm has type %s, expected %s", got, result))
			}
		})
	}

	if patternsOK && !isUnknown(scrut) {
		w.checkCoverage(me, scrut)
	}
	if result == nil {
		return unknownType
	}
	return result
}

// checkPattern validates pat against the scrutinee type t and returns
// the names it binds.
func (w *walker) checkPattern(pat ast.Pattern, t typesystem.Type) ([]binding, bool) {
	before := w.errorCount()
	var binds []binding
	w.patternInto(pat, t, nil, &binds)

	seen := make(map[string]bool)
	for _, b := range binds {
		if seen[b.name] {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, b.tok,
				"'%s' is bound more than once in the same pattern", b.name))
		}
		seen[b.name] = true
	}
	return binds, w.errorCount() == before
}

func (w *walker) patternInto(pat ast.Pattern, t typesystem.Type, slots []int, out *[]binding) {
	w.TypeMap[pat] = t
	switch p := pat.(type) {
	case *ast.WildcardPattern:

	case *ast.IdentifierPattern:
		path := append([]int(nil), slots...)
		*out = append(*out, binding{name: p.Value, typ: t, slots: path, tok: p.Token})

	case *ast.LiteralPattern:
		if isUnknown(t) {
			return
		}
		if sum, ok := t.(*typesystem.TSum); ok {
			w.addError(aliasingError(p, sum))
			return
		}
		if !literalMatches(p, t) {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, p.Token,
				"literal pattern %s does not match type %s", p, t))
		}

	case *ast.TuplePattern:
		if sum, ok := t.(*typesystem.TSum); ok {
			w.addError(aliasingError(p, sum))
			w.bindAll(p.Elements, slots, out)
			return
		}
		tuple, ok := t.(typesystem.TTuple)
		if isUnknown(t) || !ok || len(tuple.Elements) != len(p.Elements) {
			if !isUnknown(t) {
				w.addError(diagnostics.NewError(diagnostics.ErrA003, p.Token,
					"tuple pattern %s does not match type %s", p, t))
			}
			w.bindAll(p.Elements, slots, out)
			return
		}
		for i, el := range p.Elements {
			w.patternInto(el, tuple.Elements[i], slots, out)
		}

	case *ast.SlotPattern:
		if isUnknown(t) {
			w.patternInto(p.Sub, unknownType, slots, out)
			return
		}
		sum, ok := t.(*typesystem.TSum)
		if !ok {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, p.Token,
				"slot pattern %s used on %s, which is not an anonymous sum", p, t))
			w.patternInto(p.Sub, unknownType, slots, out)
			return
		}
		slot, ok := w.resolveSlot(sum, p.Index, p)
		if !ok {
			w.patternInto(p.Sub, unknownType, slots, out)
			return
		}
		w.patternInto(p.Sub, slot, append(slots, p.Index), out)

	case *ast.OrPattern:
		var first []binding
		for i, alt := range p.Alternatives {
			var altBinds []binding
			w.patternInto(alt, t, slots, &altBinds)
			if i == 0 {
				first = altBinds
				continue
			}
			w.compareAlternatives(first, altBinds, alt)
		}
		*out = append(*out, first...)
	}
}

func (w *walker) bindAll(pats []ast.Pattern, slots []int, out *[]binding) {
	for _, el := range pats {
		w.patternInto(el, unknownType, slots, out)
	}
}

// compareAlternatives requires an or-pattern alternative to bind the same
// names, with the same types, through the same slots as the first one.
func (w *walker) compareAlternatives(first, other []binding, alt ast.Pattern) {
	byName := make(map[string]binding, len(first))
	for _, b := range first {
		byName[b.name] = b
	}
	otherNames := make(map[string]bool, len(other))
	for _, b := range other {
		otherNames[b.name] = true
		a, ok := byName[b.name]
		if !ok {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, b.tok,
				"variable '%s' is not bound in every alternative", b.name))
			continue
		}
		if isUnknown(a.typ) || isUnknown(b.typ) {
			continue
		}
		if !typesystem.Identical(a.typ, b.typ) {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, b.tok,
				"variable '%s' has type %s in one alternative and %s in another", b.name, a.typ, b.typ))
			continue
		}
		if !sameSlots(a.slots, b.slots) {
			w.addError(diagnostics.NewError(diagnostics.ErrS006, b.tok,
				"variable '%s' is bound under %s in one alternative and %s in another",
				b.name, slotPath(a.slots), slotPath(b.slots)).
				Note("binding one name across different slots is not supported; use separate arms"))
		}
	}
	for _, a := range first {
		if !otherNames[a.name] {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, alt.GetToken(),
				"variable '%s' is not bound in every alternative", a.name))
		}
	}
}

// aliasingError rejects a pattern that would match a sum by the shape of
// its payload without naming a slot.
func aliasingError(p ast.Pattern, sum *typesystem.TSum) *diagnostics.DiagnosticError {
	d := diagnostics.NewError(diagnostics.ErrS006, p.GetToken(),
		"pattern %s cannot match anonymous sum %s without a slot index", p, sum)
	var candidates []string
	for i := range sum.Slots {
		candidates = append(candidates, fmt.Sprintf("::%d(%s)", i, p))
	}
	return d.Note("write one of %s", strings.Join(candidates, ", "))
}

var suffixTypes = map[string]typesystem.TCon{
	"i32": typesystem.I32,
	"i64": typesystem.I64,
	"u8":  typesystem.U8,
	"f32": typesystem.F32,
	"f64": typesystem.F64,
}

func literalMatches(p *ast.LiteralPattern, t typesystem.Type) bool {
	if suffix := lexer.Suffix(p.Token.Lexeme); suffix != "" {
		if _, isString := p.Value.(string); !isString {
			return typesystem.Identical(t, suffixTypes[suffix])
		}
	}
	switch v := p.Value.(type) {
	case int64:
		switch {
		case typesystem.Identical(t, typesystem.I32):
			return v >= -1<<31 && v <= 1<<31-1
		case typesystem.Identical(t, typesystem.U8):
			return v >= 0 && v <= 255
		}
		return typesystem.Identical(t, typesystem.I64)
	case float64:
		return typesystem.Identical(t, typesystem.F64) || typesystem.Identical(t, typesystem.F32)
	case string:
		return typesystem.Identical(t, typesystem.String)
	case rune:
		return typesystem.Identical(t, typesystem.Char)
	case bool:
		return typesystem.Identical(t, typesystem.Bool)
	}
	return false
}

func sameSlots(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func slotPath(slots []int) string {
	if len(slots) == 0 {
		return "no slot"
	}
	var sb strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&sb, "::%d", s)
	}
	return sb.String()
}
