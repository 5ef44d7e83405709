package typesystem

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/config"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Derivation records whether a type has a capability and, if not, why.
type Derivation struct {
	Type       Type
	Capability Capability
	Holds      bool
	// Assoc is the associated type when Capability.HasAssoc().
	Assoc Type
	// Missing lists the slot (or tuple element) indices lacking the
	// capability or disagreeing on the associated type.
	Missing []int
	Reason  string
}

// Deriver decides capability membership. Results for sums are memoized
// per (descriptor, capability); concurrent requests for the same pair
// compute once.
type Deriver struct {
	impls    *ImplTable
	ordering string

	group singleflight.Group
	mu    sync.RWMutex
	memo  map[string]Derivation
}

// NewDeriver creates a deriver over impls using the given ordering
// policy (config.OrderingNone or config.OrderingTagThenPayload).
func NewDeriver(impls *ImplTable, ordering string) *Deriver {
	if impls == nil {
		impls = NewImplTable()
	}
	if ordering == "" {
		ordering = config.OrderingNone
	}
	return &Deriver{
		impls:    impls,
		ordering: ordering,
		memo:     make(map[string]Derivation),
	}
}

// Impls returns the implementation table the deriver consults.
func (d *Deriver) Impls() *ImplTable { return d.impls }

// Ordering returns the ordering policy.
func (d *Deriver) Ordering() string { return d.ordering }

// Has decides whether t has capability c. Sum types whose derivation is
// refused outright (excluded capability or disabled ordering) report
// Holds == false with the refusal as Reason.
func (d *Deriver) Has(t Type, c Capability) Derivation {
	switch typ := t.(type) {
	case TCon:
		impl, ok := d.impls.Lookup(typ, c)
		if !ok {
			return Derivation{Type: t, Capability: c, Reason: fmt.Sprintf("%s does not implement %s", t, c)}
		}
		return Derivation{Type: t, Capability: c, Holds: true, Assoc: impl.Assoc}

	case TVar:
		return Derivation{Type: t, Capability: c, Reason: fmt.Sprintf("type variable %s has no known capabilities", t)}

	case TFunc:
		if c == Clone || c == Copy {
			return Derivation{Type: t, Capability: c, Holds: true}
		}
		return Derivation{Type: t, Capability: c, Reason: fmt.Sprintf("function types do not implement %s", c)}

	case TTuple:
		if c.HasAssoc() || !c.Derivable() {
			return Derivation{Type: t, Capability: c, Reason: fmt.Sprintf("tuples do not implement %s", c)}
		}
		return d.conjunction(t, c, typ.Elements, "element")

	case *TSum:
		der, err := d.Derive(typ, c)
		if err != nil {
			der.Reason = err.Error()
		}
		return der
	}
	return Derivation{Type: t, Capability: c, Reason: fmt.Sprintf("unknown type %s", t)}
}

// Derive decides whether the anonymous sum gains capability c from its
// slots. A non-nil error means the derivation is refused regardless of
// the slots: it wraps ErrNotDerivable for excluded capabilities and
// ErrUnsupportedPolicy when ordering is disabled.
func (d *Deriver) Derive(sum *TSum, c Capability) (Derivation, error) {
	if !c.Derivable() {
		return Derivation{Type: sum, Capability: c},
			fmt.Errorf("%s cannot be derived for anonymous sums: %w", c, ErrNotDerivable)
	}
	if c.IsOrdering() && d.ordering == config.OrderingNone {
		return Derivation{Type: sum, Capability: c},
			fmt.Errorf("%s for anonymous sums requires policy.ordering: %s: %w",
				c, config.OrderingTagThenPayload, ErrUnsupportedPolicy)
	}

	key := sum.Key() + "\x00" + string(c)
	d.mu.RLock()
	der, ok := d.memo[key]
	d.mu.RUnlock()
	if ok {
		return der, nil
	}

	v, _, _ := d.group.Do(key, func() (interface{}, error) {
		der := d.conjunction(sum, c, sum.Slots, "slot")
		d.mu.Lock()
		d.memo[key] = der
		d.mu.Unlock()
		return der, nil
	})
	return v.(Derivation), nil
}

// conjunction requires every part to have c and, for capabilities with
// an associated type, every part to agree on it.
func (d *Deriver) conjunction(t Type, c Capability, parts []Type, what string) Derivation {
	der := Derivation{Type: t, Capability: c, Holds: true}
	var reasons []string
	for i, p := range parts {
		sub := d.Has(p, c)
		if !sub.Holds {
			der.Missing = append(der.Missing, i)
			reasons = append(reasons, fmt.Sprintf("%s %d (%s) does not implement %s", what, i, p, c))
			continue
		}
		if !c.HasAssoc() {
			continue
		}
		if der.Assoc == nil {
			der.Assoc = sub.Assoc
		} else if !Identical(der.Assoc, sub.Assoc) {
			der.Missing = append(der.Missing, i)
			reasons = append(reasons, fmt.Sprintf("%s %d yields %s, expected %s", what, i, sub.Assoc, der.Assoc))
		}
	}
	if c.HasAssoc() && len(parts) == 0 {
		der.Holds = false
		der.Reason = fmt.Sprintf("no %ss to fix the associated type of %s", what, c)
		return der
	}
	if len(der.Missing) > 0 {
		der.Holds = false
		der.Assoc = nil
		der.Reason = strings.Join(reasons, "; ")
	}
	return der
}
