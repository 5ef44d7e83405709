package analyzer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// Coverage follows Maranget, "Warnings for pattern matching" (2007):
// a pattern vector is useful with respect to a matrix when some value
// matches it and no row of the matrix. Exhaustiveness asks whether the
// all-wildcard vector is useful; reachability asks it of each arm.

type patKind int

const (
	patAny patKind = iota
	patCtor
	patLit
	patOr
)

// ctorForm says how a constructor pattern is written.
type ctorForm int

const (
	formSlot ctorForm = iota
	formTuple
	formBool
)

type pat struct {
	kind patKind
	form ctorForm
	tag  int
	lit  interface{}
	text string // literal source, for witnesses
	args []*pat
	alts []*pat
}

var wildcard = &pat{kind: patAny}

// maxWitnesses bounds the example patterns listed for one match.
const maxWitnesses = 8

func (p *pat) String() string {
	switch p.kind {
	case patCtor:
		switch p.form {
		case formSlot:
			return fmt.Sprintf("::%d(%s)", p.tag, p.args[0])
		case formBool:
			return strconv.FormatBool(p.tag == 1)
		}
		parts := make([]string, len(p.args))
		for i, a := range p.args {
			parts[i] = a.String()
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case patLit:
		return p.text
	case patOr:
		parts := make([]string, len(p.alts))
		for i, a := range p.alts {
			parts[i] = a.String()
		}
		return strings.Join(parts, " | ")
	}
	return "_"
}

// ctorCount is the number of constructors of t, or -1 when t has
// unboundedly many values that only literals distinguish.
func ctorCount(t typesystem.Type) int {
	switch typ := t.(type) {
	case *typesystem.TSum:
		return typ.Arity()
	case typesystem.TTuple:
		return 1
	case typesystem.TCon:
		if typesystem.Identical(typ, typesystem.Bool) {
			return 2
		}
	}
	return -1
}

func ctorArgs(t typesystem.Type, tag int) []typesystem.Type {
	switch typ := t.(type) {
	case *typesystem.TSum:
		return []typesystem.Type{typ.Slots[tag]}
	case typesystem.TTuple:
		return typ.Elements
	}
	return nil
}

func ctorPat(t typesystem.Type, tag int, args []*pat) *pat {
	p := &pat{kind: patCtor, tag: tag, args: args}
	switch t.(type) {
	case *typesystem.TSum:
		p.form = formSlot
	case typesystem.TTuple:
		p.form = formTuple
	default:
		p.form = formBool
	}
	return p
}

func wildcards(n int) []*pat {
	ps := make([]*pat, n)
	for i := range ps {
		ps[i] = wildcard
	}
	return ps
}

func concat(a, b []*pat) []*pat {
	out := make([]*pat, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func concatTypes(a, b []typesystem.Type) []typesystem.Type {
	out := make([]typesystem.Type, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// lower converts a checked pattern of type t.
func lower(p ast.Pattern, t typesystem.Type) *pat {
	switch n := p.(type) {
	case *ast.LiteralPattern:
		if b, ok := n.Value.(bool); ok {
			tag := 0
			if b {
				tag = 1
			}
			return ctorPat(typesystem.Bool, tag, nil)
		}
		return &pat{kind: patLit, lit: n.Value, text: n.String()}
	case *ast.TuplePattern:
		tuple, ok := t.(typesystem.TTuple)
		if !ok || len(tuple.Elements) != len(n.Elements) {
			return wildcard
		}
		args := make([]*pat, len(n.Elements))
		for i, el := range n.Elements {
			args[i] = lower(el, tuple.Elements[i])
		}
		return ctorPat(t, 0, args)
	case *ast.SlotPattern:
		sum, ok := t.(*typesystem.TSum)
		if !ok || n.Index < 0 || n.Index >= sum.Arity() {
			return wildcard
		}
		return ctorPat(t, n.Index, []*pat{lower(n.Sub, sum.Slots[n.Index])})
	case *ast.OrPattern:
		alts := make([]*pat, len(n.Alternatives))
		for i, a := range n.Alternatives {
			alts[i] = lower(a, t)
		}
		return &pat{kind: patOr, alts: alts}
	}
	return wildcard
}

func specialize(rows [][]*pat, tag, arity int) [][]*pat {
	var out [][]*pat
	for _, row := range rows {
		out = append(out, specializeRow(row, tag, arity)...)
	}
	return out
}

func specializeRow(row []*pat, tag, arity int) [][]*pat {
	head, rest := row[0], row[1:]
	switch head.kind {
	case patAny:
		return [][]*pat{concat(wildcards(arity), rest)}
	case patCtor:
		if head.tag == tag {
			return [][]*pat{concat(head.args, rest)}
		}
	case patOr:
		var out [][]*pat
		for _, alt := range head.alts {
			out = append(out, specializeRow(concat([]*pat{alt}, rest), tag, arity)...)
		}
		return out
	}
	return nil
}

func specializeLit(rows [][]*pat, lit interface{}) [][]*pat {
	var out [][]*pat
	for _, row := range rows {
		out = append(out, specializeLitRow(row, lit)...)
	}
	return out
}

func specializeLitRow(row []*pat, lit interface{}) [][]*pat {
	head, rest := row[0], row[1:]
	switch head.kind {
	case patAny:
		return [][]*pat{rest}
	case patLit:
		if head.lit == lit {
			return [][]*pat{rest}
		}
	case patOr:
		var out [][]*pat
		for _, alt := range head.alts {
			out = append(out, specializeLitRow(concat([]*pat{alt}, rest), lit)...)
		}
		return out
	}
	return nil
}

// defaultRows keeps the rows whose head matches any constructor.
func defaultRows(rows [][]*pat) [][]*pat {
	var out [][]*pat
	for _, row := range rows {
		out = append(out, defaultRow(row)...)
	}
	return out
}

func defaultRow(row []*pat) [][]*pat {
	head, rest := row[0], row[1:]
	switch head.kind {
	case patAny:
		return [][]*pat{rest}
	case patOr:
		var out [][]*pat
		for _, alt := range head.alts {
			out = append(out, defaultRow(concat([]*pat{alt}, rest))...)
		}
		return out
	}
	return nil
}

func headTags(rows [][]*pat) map[int]bool {
	tags := make(map[int]bool)
	var visit func(p *pat)
	visit = func(p *pat) {
		switch p.kind {
		case patCtor:
			tags[p.tag] = true
		case patOr:
			for _, a := range p.alts {
				visit(a)
			}
		}
	}
	for _, row := range rows {
		visit(row[0])
	}
	return tags
}

// useful reports whether some value matches q and no row of rows.
func useful(rows [][]*pat, q []*pat, types []typesystem.Type) bool {
	if len(q) == 0 {
		return len(rows) == 0
	}
	head := q[0]
	switch head.kind {
	case patOr:
		for _, alt := range head.alts {
			if useful(rows, concat([]*pat{alt}, q[1:]), types) {
				return true
			}
		}
		return false

	case patCtor:
		args := ctorArgs(types[0], head.tag)
		return useful(specialize(rows, head.tag, len(head.args)),
			concat(head.args, q[1:]), concatTypes(args, types[1:]))

	case patLit:
		return useful(specializeLit(rows, head.lit), q[1:], types[1:])
	}

	n := ctorCount(types[0])
	if n >= 0 && len(headTags(rows)) == n {
		for tag := 0; tag < n; tag++ {
			args := ctorArgs(types[0], tag)
			if useful(specialize(rows, tag, len(args)),
				concat(wildcards(len(args)), q[1:]), concatTypes(args, types[1:])) {
				return true
			}
		}
		return false
	}
	return useful(defaultRows(rows), q[1:], types[1:])
}

// witnesses returns example value patterns matched by no row.
func witnesses(rows [][]*pat, types []typesystem.Type) [][]*pat {
	if len(types) == 0 {
		if len(rows) == 0 {
			return [][]*pat{{}}
		}
		return nil
	}
	t := types[0]
	n := ctorCount(t)
	present := headTags(rows)

	if n >= 0 && len(present) == n {
		var out [][]*pat
		for tag := 0; tag < n && len(out) < maxWitnesses; tag++ {
			args := ctorArgs(t, tag)
			sub := witnesses(specialize(rows, tag, len(args)), concatTypes(args, types[1:]))
			for _, wv := range sub {
				head := ctorPat(t, tag, wv[:len(args)])
				out = append(out, concat([]*pat{head}, wv[len(args):]))
				if len(out) >= maxWitnesses {
					break
				}
			}
		}
		return out
	}

	sub := witnesses(defaultRows(rows), types[1:])
	if len(sub) == 0 {
		return nil
	}
	var heads []*pat
	if n > 0 {
		for tag := 0; tag < n; tag++ {
			if !present[tag] {
				heads = append(heads, ctorPat(t, tag, wildcards(len(ctorArgs(t, tag)))))
			}
		}
	} else {
		heads = []*pat{wildcard}
	}
	var out [][]*pat
	for _, h := range heads {
		for _, wv := range sub {
			out = append(out, concat([]*pat{h}, wv))
			if len(out) >= maxWitnesses {
				return out
			}
		}
	}
	return out
}

// checkCoverage reports unreachable arms and alternatives, and a match
// that leaves values of the scrutinee type uncovered.
func (w *walker) checkCoverage(me *ast.MatchExpression, scrut typesystem.Type) {
	types := []typesystem.Type{scrut}
	var rows [][]*pat

	for _, arm := range me.Arms {
		p := lower(arm.Pattern, scrut)
		if !useful(rows, []*pat{p}, types) {
			w.addError(diagnostics.NewWarning(diagnostics.ErrS005, arm.Pattern.GetToken(),
				"unreachable pattern %s: earlier arms cover every value it matches", arm.Pattern))
		} else if p.kind == patOr {
			or := arm.Pattern.(*ast.OrPattern)
			seen := append([][]*pat(nil), rows...)
			for i, alt := range p.alts {
				if !useful(seen, []*pat{alt}, types) {
					w.addError(diagnostics.NewWarning(diagnostics.ErrS005, or.Alternatives[i].GetToken(),
						"unreachable alternative %s", or.Alternatives[i]))
				}
				seen = append(seen, []*pat{alt})
			}
		}
		rows = append(rows, []*pat{p})
	}

	examples := witnesses(rows, types)
	if len(examples) == 0 {
		return
	}

	var d *diagnostics.DiagnosticError
	if sum, ok := scrut.(*typesystem.TSum); ok {
		missing := missingSlots(rows, sum)
		d = diagnostics.NewError(diagnostics.ErrS004, me.Token,
			"non-exhaustive match on %s: %s not covered", sum, describeSlots(missing))
		d.Missing = missing
	} else {
		d = diagnostics.NewError(diagnostics.ErrS004, me.Token, "non-exhaustive match on %s", scrut)
	}
	for _, ex := range examples {
		d.Note("missing: %s", ex[0])
	}
	w.addError(d)
}

// missingSlots lists the slots with at least one value no arm matches.
func missingSlots(rows [][]*pat, sum *typesystem.TSum) []int {
	var missing []int
	types := []typesystem.Type{sum}
	for i := range sum.Slots {
		if useful(rows, []*pat{ctorPat(sum, i, []*pat{wildcard})}, types) {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)
	return missing
}

func describeSlots(slots []int) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = strconv.Itoa(s)
	}
	if len(slots) == 1 {
		return "slot " + parts[0]
	}
	return "slots " + strings.Join(parts, ", ")
}
