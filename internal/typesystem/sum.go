package typesystem

import (
	"strings"
)

// TSum is an anonymous sum type descriptor: an ordered sequence of slot
// types, positionally tagged. Duplicates are permitted and a slot that is
// itself a sum stays one opaque slot.
//
// Descriptors are only created by an Interner and never mutated, so two
// descriptors with the same slot sequence are the same pointer.
// Slots must be treated as read-only.
type TSum struct {
	Slots []Type

	key   string
	owner *Interner
}

// Arity returns the number of slots.
func (t *TSum) Arity() int { return len(t.Slots) }

// Degenerate reports whether the sum has fewer than two slots.
// Whether such sums are legal is a policy decision made by the caller.
func (t *TSum) Degenerate() bool { return len(t.Slots) < 2 }

// Key returns the canonical structural key the descriptor is interned under.
func (t *TSum) Key() string { return t.key }

// Slot returns the type of slot i.
func (t *TSum) Slot(i int) (Type, error) {
	if i < 0 || i >= len(t.Slots) {
		return nil, &IndexError{Index: i, Arity: len(t.Slots), Sum: t}
	}
	return t.Slots[i], nil
}

// Interner returns the table that owns the descriptor.
func (t *TSum) Interner() *Interner { return t.interner() }

func (t *TSum) interner() *Interner {
	if t.owner == nil {
		return Sums
	}
	return t.owner
}

func (t *TSum) Kind() Kind { return Star }

func (t *TSum) String() string {
	switch len(t.Slots) {
	case 0:
		return "(|)"
	case 1:
		return "(| " + slotString(t.Slots[0]) + ")"
	}
	parts := make([]string, len(t.Slots))
	for i, s := range t.Slots {
		parts[i] = slotString(s)
	}
	return strings.Join(parts, " | ")
}

// slotString parenthesizes slots that would otherwise read as part of the
// enclosing chain: nested sums and function types, whose return type
// extends greedily over `|`.
func slotString(t Type) string {
	switch t.(type) {
	case *TSum, TFunc:
		return "(" + t.String() + ")"
	}
	return t.String()
}

func (t *TSum) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t *TSum) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, s := range t.Slots {
		vars = append(vars, s.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}
