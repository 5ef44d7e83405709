package typesystem

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/config"
	"strconv"
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
	Kind() Kind
}

// TVar represents a type variable, e.g. the L in `type Either<L, R> = L | R`.
type TVar struct {
	Name    string
	KindVal Kind
}

func (t TVar) String() string {
	// Normalize generated variables (t1, t2, ...) so test output is deterministic.
	if config.IsTestMode && strings.HasPrefix(t.Name, "$t") {
		if _, err := strconv.Atoi(t.Name[2:]); err == nil {
			return "t?"
		}
	}
	return t.Name
}

func (t TVar) Kind() Kind {
	if t.KindVal == nil {
		return Star
	}
	return t.KindVal
}

func (t TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		if visited[typ.Name] {
			return typ
		}
		if replacement, ok := s[typ.Name]; ok {
			if tv, ok := replacement.(TVar); ok && tv.Name == typ.Name {
				return typ
			}
			newVisited := copyVisited(visited)
			newVisited[typ.Name] = true
			return ApplyWithCycleCheck(replacement, s, newVisited)
		}
		return typ

	case TCon:
		return typ

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ApplyWithCycleCheck(p, s, visited)
		}
		return TFunc{
			Params:     newParams,
			ReturnType: ApplyWithCycleCheck(typ.ReturnType, s, visited),
		}

	case TTuple:
		newElems := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			newElems[i] = ApplyWithCycleCheck(e, s, visited)
		}
		return TTuple{Elements: newElems}

	case *TSum:
		// Substituting into a sum yields the interned descriptor of the
		// substituted slot sequence, so `Either<i32, String>` and
		// `i32 | String` end up as the same pointer.
		newSlots := make([]Type, len(typ.Slots))
		changed := false
		for i, slot := range typ.Slots {
			newSlots[i] = ApplyWithCycleCheck(slot, s, visited)
			if !Identical(newSlots[i], slot) {
				changed = true
			}
		}
		if !changed {
			return typ
		}
		return typ.interner().mustSum(newSlots)

	default:
		return t.Apply(s)
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	newMap := make(map[string]bool, len(m))
	for k, v := range m {
		newMap[k] = v
	}
	return newMap
}

// TCon represents a named type: a primitive (i32, String) or a nominal
// struct declared in source.
type TCon struct {
	Name string
	// Module is the source file that declared a struct. It is part of the
	// type's identity but not of its display name.
	Module  string
	KindVal Kind // nil means *
}

func (t TCon) Kind() Kind {
	if t.KindVal != nil {
		return t.KindVal
	}
	return Star
}

func (t TCon) String() string {
	return t.Name
}

func (t TCon) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TCon) FreeTypeVariables() []TVar {
	return []TVar{}
}

// TTuple represents a tuple type (e.g. (i32, f64)). The empty tuple is unit.
type TTuple struct {
	Elements []Type
}

// Unit is the empty tuple type ().
var Unit = TTuple{}

func (t TTuple) Kind() Kind { return Star }

func (t TTuple) String() string {
	args := []string{}
	for _, el := range t.Elements {
		args = append(args, el.String())
	}
	if len(args) == 1 {
		return fmt.Sprintf("(%s,)", args[0])
	}
	return fmt.Sprintf("(%s)", strings.Join(args, ", "))
}

func (t TTuple) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TTuple) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, el := range t.Elements {
		vars = append(vars, el.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc represents a function type (e.g. fn(i32) -> i32 | String).
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) Kind() Kind { return Star }

func (t TFunc) String() string {
	params := []string{}
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), t.ReturnType.String())
}

func (t TFunc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// Subst is a mapping from Type Variables to Types.
type Subst map[string]Type

// Compose combines two substitutions.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := Subst{}
	for k, v := range s2 {
		subst[k] = v
	}
	for k, v := range s1 {
		subst[k] = v.Apply(s2)
	}
	return subst
}

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}

// Built-in primitive types.
var (
	I32    = TCon{Name: config.I32TypeName}
	I64    = TCon{Name: config.I64TypeName}
	U8     = TCon{Name: config.U8TypeName}
	F32    = TCon{Name: config.F32TypeName}
	F64    = TCon{Name: config.F64TypeName}
	Bool   = TCon{Name: config.BoolTypeName}
	Char   = TCon{Name: config.CharTypeName}
	String = TCon{Name: config.StringTypeName}
	Range  = TCon{Name: config.RangeTypeName}
	Chars  = TCon{Name: config.CharsTypeName}
	Ready  = TCon{Name: config.ReadyTypeName}
	Delay  = TCon{Name: config.DelayTypeName}
)

// Primitives lists the built-in named types by name.
var Primitives = map[string]TCon{
	I32.Name:    I32,
	I64.Name:    I64,
	U8.Name:     U8,
	F32.Name:    F32,
	F64.Name:    F64,
	Bool.Name:   Bool,
	Char.Name:   Char,
	String.Name: String,
	Range.Name:  Range,
	Chars.Name:  Chars,
	Ready.Name:  Ready,
	Delay.Name:  Delay,
}
