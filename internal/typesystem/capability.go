package typesystem

import (
	"github.com/funvibe/anonsum/internal/config"
	"sort"
	"sync"
)

// Capability names a trait-like property a type may implement.
type Capability string

const (
	PartialEq  Capability = config.PartialEqCapName
	Eq         Capability = config.EqCapName
	PartialOrd Capability = config.PartialOrdCapName
	Ord        Capability = config.OrdCapName
	Clone      Capability = config.CloneCapName
	Copy       Capability = config.CopyCapName
	Debug      Capability = config.DebugCapName
	Hash       Capability = config.HashCapName
	Iterator   Capability = config.IteratorCapName
	Future     Capability = config.FutureCapName

	Default Capability = config.DefaultCapName
	From    Capability = config.FromCapName
	Into    Capability = config.IntoCapName
)

// DerivableCapabilities lists, in display order, the capabilities an
// anonymous sum can acquire from its slots.
var DerivableCapabilities = []Capability{
	PartialEq, Eq, PartialOrd, Ord, Clone, Copy, Debug, Hash, Iterator, Future,
}

var excludedCapabilities = map[Capability]bool{
	Default: true,
	From:    true,
	Into:    true,
}

// Derivable reports whether c can ever be derived for an anonymous sum.
func (c Capability) Derivable() bool {
	for _, d := range DerivableCapabilities {
		if d == c {
			return true
		}
	}
	return false
}

// HasAssoc reports whether c carries an associated type (Item, Output).
func (c Capability) HasAssoc() bool {
	return c == Iterator || c == Future
}

// IsOrdering reports whether c is one of the ordering capabilities.
func (c Capability) IsOrdering() bool {
	return c == PartialOrd || c == Ord
}

// ParseCapability resolves a capability name. Known-but-excluded names
// (Default, From, Into) are returned with ok == true; callers decide.
func ParseCapability(name string) (Capability, bool) {
	c := Capability(name)
	if c.Derivable() || excludedCapabilities[c] {
		return c, true
	}
	return "", false
}

// Impl is one capability implementation of a concrete type.
type Impl struct {
	Capability Capability
	// Assoc is the associated type for Iterator (Item) and Future (Output).
	Assoc Type
}

// ImplTable records which named types implement which capabilities.
// Structural types (tuples, functions, sums) are not stored; their
// capabilities follow from their components.
type ImplTable struct {
	mu    sync.RWMutex
	impls map[string]map[Capability]Impl
}

// NewImplTable creates a table preloaded with the built-in types.
func NewImplTable() *ImplTable {
	t := &ImplTable{impls: make(map[string]map[Capability]Impl)}

	integral := []Capability{PartialEq, Eq, PartialOrd, Ord, Clone, Copy, Debug, Hash}
	for _, typ := range []TCon{I32, I64, U8, Char, Bool} {
		t.Declare(typ, integral...)
	}
	for _, typ := range []TCon{F32, F64} {
		t.Declare(typ, PartialEq, PartialOrd, Clone, Copy, Debug)
	}
	t.Declare(String, PartialEq, Eq, PartialOrd, Ord, Clone, Debug, Hash)

	t.Declare(Range, PartialEq, Eq, Clone, Debug)
	t.DeclareAssoc(Range, Iterator, I32)
	t.Declare(Chars, Clone, Debug)
	t.DeclareAssoc(Chars, Iterator, Char)
	t.Declare(Ready, Debug)
	t.DeclareAssoc(Ready, Future, I32)
	t.Declare(Delay, Debug)
	t.DeclareAssoc(Delay, Future, I32)
	return t
}

// Declare records that typ implements caps (which must not carry
// associated types).
func (t *ImplTable) Declare(typ TCon, caps ...Capability) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.entry(typ)
	for _, c := range caps {
		m[c] = Impl{Capability: c}
	}
}

// DeclareAssoc records that typ implements c with associated type assoc.
func (t *ImplTable) DeclareAssoc(typ TCon, c Capability, assoc Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(typ)[c] = Impl{Capability: c, Assoc: assoc}
}

func (t *ImplTable) entry(typ TCon) map[Capability]Impl {
	k := TypeKey(typ)
	m, ok := t.impls[k]
	if !ok {
		m = make(map[Capability]Impl)
		t.impls[k] = m
	}
	return m
}

// Lookup returns the implementation of c for the named type typ.
func (t *ImplTable) Lookup(typ TCon, c Capability) (Impl, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	impl, ok := t.impls[TypeKey(typ)][c]
	return impl, ok
}

// Capabilities returns the capabilities recorded for typ, sorted by name.
func (t *ImplTable) Capabilities(typ TCon) []Capability {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var caps []Capability
	for c := range t.impls[TypeKey(typ)] {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
