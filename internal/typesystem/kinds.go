package typesystem

import (
	"fmt"
)

// Kind represents the "type of a type".
// * (Star) is the kind of proper types (i32, String, i32 | String).
// * -> * is the kind of an unapplied generic alias such as `Option` in
// `type Option<T> = T | ()`.
type Kind interface {
	String() string
	Equal(Kind) bool
}

// KStar represents the kind of a value type (*).
type KStar struct{}

func (k KStar) String() string { return "*" }
func (k KStar) Equal(other Kind) bool {
	_, ok := other.(KStar)
	return ok
}

// KArrow represents a higher-kinded type (k1 -> k2).
type KArrow struct {
	Left  Kind
	Right Kind
}

func (k KArrow) String() string {
	return fmt.Sprintf("(%s -> %s)", k.Left.String(), k.Right.String())
}

func (k KArrow) Equal(other Kind) bool {
	o, ok := other.(KArrow)
	if !ok {
		return false
	}
	return k.Left.Equal(o.Left) && k.Right.Equal(o.Right)
}

var Star Kind = KStar{}

// MakeArrow creates an N-ary arrow: MakeArrow(*, *, *) is * -> * -> *.
func MakeArrow(args ...Kind) Kind {
	if len(args) == 0 {
		return Star
	}
	if len(args) == 1 {
		return args[0]
	}
	return KArrow{Left: args[0], Right: MakeArrow(args[1:]...)}
}

// KindCheck validates that every component of t is a proper type and
// returns the kind of t.
func KindCheck(t Type) (Kind, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot check kind of nil type")
	}

	switch typ := t.(type) {
	case TCon:
		return typ.Kind(), nil
	case TVar:
		return typ.Kind(), nil
	case TTuple:
		for _, elem := range typ.Elements {
			if err := expectStar(elem, "tuple element"); err != nil {
				return nil, err
			}
		}
		return Star, nil
	case TFunc:
		for _, p := range typ.Params {
			if err := expectStar(p, "function parameter"); err != nil {
				return nil, err
			}
		}
		if err := expectStar(typ.ReturnType, "function result"); err != nil {
			return nil, err
		}
		return Star, nil
	case *TSum:
		for i, slot := range typ.Slots {
			if err := expectStar(slot, fmt.Sprintf("slot %d", i)); err != nil {
				return nil, err
			}
		}
		return Star, nil
	default:
		return nil, fmt.Errorf("unknown type %T", t)
	}
}

func expectStar(t Type, what string) error {
	k, err := KindCheck(t)
	if err != nil {
		return err
	}
	if !k.Equal(Star) {
		return fmt.Errorf("%s %s must be a type (kind *), got kind %s", what, t, k)
	}
	return nil
}
