package typesystem

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/config"
	"sync"
)

// Interner is an append-only hash-consing table of sum descriptors.
// It is safe for concurrent use.
type Interner struct {
	mu       sync.RWMutex
	byKey    map[string]*TSum
	order    []*TSum
	maxSlots int
}

// Sums is the process-wide interner.
var Sums = NewInterner(config.DefaultMaxSlots)

// NewInterner creates an interner that rejects sums wider than maxSlots.
// A non-positive maxSlots selects the default limit.
func NewInterner(maxSlots int) *Interner {
	if maxSlots <= 0 {
		maxSlots = config.DefaultMaxSlots
	}
	return &Interner{
		byKey:    make(map[string]*TSum),
		maxSlots: maxSlots,
	}
}

// MaxSlots returns the slot limit.
func (in *Interner) MaxSlots() int { return in.maxSlots }

// Sum returns the descriptor for exactly this slot sequence.
// Zero- and one-slot sequences are accepted; see TSum.Degenerate.
func (in *Interner) Sum(slots ...Type) (*TSum, error) {
	if len(slots) > in.maxSlots {
		return nil, &OversizedSumError{Slots: len(slots), Max: in.maxSlots}
	}
	owned := make([]Type, len(slots))
	for i, s := range slots {
		if s == nil {
			return nil, fmt.Errorf("slot %d: nil type", i)
		}
		adopted, err := in.adopt(s)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		owned[i] = adopted
	}
	key := sumKey(owned)

	in.mu.RLock()
	existing, ok := in.byKey[key]
	in.mu.RUnlock()
	if ok {
		return existing, nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if existing, ok := in.byKey[key]; ok {
		return existing, nil
	}
	sum := &TSum{Slots: owned, key: key, owner: in}
	in.byKey[key] = sum
	in.order = append(in.order, sum)
	return sum, nil
}

// MustSum is like Sum but panics on error. Intended for tests and
// built-in signatures.
func (in *Interner) MustSum(slots ...Type) *TSum {
	s, err := in.Sum(slots...)
	if err != nil {
		panic(err)
	}
	return s
}

func (in *Interner) mustSum(slots []Type) *TSum {
	return in.MustSum(slots...)
}

// Len returns the number of distinct descriptors formed so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.order)
}

// All returns the descriptors in formation order.
func (in *Interner) All() []*TSum {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]*TSum, len(in.order))
	copy(out, in.order)
	return out
}

// adopt re-interns sums owned by another interner so that every
// descriptor reachable from this table's descriptors is its own.
func (in *Interner) adopt(t Type) (Type, error) {
	switch typ := t.(type) {
	case *TSum:
		if typ.owner == in {
			return typ, nil
		}
		return in.Sum(typ.Slots...)
	case TTuple:
		elems := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			a, err := in.adopt(e)
			if err != nil {
				return nil, err
			}
			elems[i] = a
		}
		return TTuple{Elements: elems}, nil
	case TFunc:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			a, err := in.adopt(p)
			if err != nil {
				return nil, err
			}
			params[i] = a
		}
		ret, err := in.adopt(typ.ReturnType)
		if err != nil {
			return nil, err
		}
		return TFunc{Params: params, ReturnType: ret}, nil
	default:
		return t, nil
	}
}
