package typesystem

import (
	"fmt"
)

// Unify attempts to find a substitution that makes t1 and t2 equal.
// It enforces strict equality (invariant): no slot of a sum is ever
// matched against the sum itself, so `T | E` unifies only with another
// two-slot sum, position by position.
func Unify(t1, t2 Type) (Subst, error) {
	if Identical(t1, t2) {
		return Subst{}, nil
	}

	if tv, ok := t1.(TVar); ok {
		return Bind(tv, t2)
	}
	if tv, ok := t2.(TVar); ok {
		return Bind(tv, t1)
	}

	switch a := t1.(type) {
	case TCon:
		return nil, errUnify(t1, t2)

	case TTuple:
		b, ok := t2.(TTuple)
		if !ok {
			return nil, errUnify(t1, t2)
		}
		if len(a.Elements) != len(b.Elements) {
			return nil, errUnifyMsg(t1, t2, "tuple length mismatch")
		}
		s, err := unifyMany(a.Elements, b.Elements)
		if err != nil {
			return nil, errUnifyContext("tuple", err)
		}
		return s, nil

	case TFunc:
		b, ok := t2.(TFunc)
		if !ok {
			return nil, errUnify(t1, t2)
		}
		if len(a.Params) != len(b.Params) {
			return nil, errUnifyMsg(t1, t2, "function arity mismatch")
		}
		s, err := unifyMany(append(append([]Type{}, a.Params...), a.ReturnType),
			append(append([]Type{}, b.Params...), b.ReturnType))
		if err != nil {
			return nil, errUnifyContext("function", err)
		}
		return s, nil

	case *TSum:
		b, ok := t2.(*TSum)
		if !ok {
			return nil, errUnify(t1, t2)
		}
		if a.Arity() != b.Arity() {
			return nil, errUnifyMsg(t1, t2, "slot count mismatch")
		}
		s, err := unifyMany(a.Slots, b.Slots)
		if err != nil {
			return nil, errUnifyContext("sum", err)
		}
		return s, nil

	default:
		return nil, errMismatch(fmt.Sprintf("unknown type kind: %T", t1))
	}
}

func unifyMany(as, bs []Type) (Subst, error) {
	subst := Subst{}
	for i := range as {
		s, err := Unify(as[i].Apply(subst), bs[i].Apply(subst))
		if err != nil {
			return nil, err
		}
		subst = s.Compose(subst)
	}
	return subst, nil
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	// If t is the same variable, return empty substitution
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}

	if !tv.Kind().Equal(t.Kind()) {
		return nil, errMismatch(fmt.Sprintf("kind mismatch: variable %s has kind %s, but type %s has kind %s",
			tv.Name, tv.Kind(), t, t.Kind()))
	}

	if OccursCheck(tv, t) {
		return nil, errMismatch(fmt.Sprintf("infinite type detected: %s in %s", tv, t))
	}

	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

func errUnify(t1, t2 Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}

func errUnifyContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
