package evaluator

import (
	"strings"
	"sync"

	"github.com/funvibe/anonsum/internal/typesystem"
)

// Impl holds the runtime implementation of each capability a type has.
// A nil field is a capability the type lacks.
type Impl struct {
	Debug func(Object) string
	Eq    func(a, b Object) bool
	Cmp   func(a, b Object) int
	Hash  func(Object) uint64
	Clone func(Object) Object
	Iter  func(Object) Iterator
	Poll  func(Object) Poller
}

// SumTable is the method table synthesized for one descriptor. Slots
// holds each slot type's implementation; Impl switches on the tag and
// delegates to it. A capability is present in Impl only when every slot
// has it.
type SumTable struct {
	Sum   *typesystem.TSum
	Slots []*Impl
	Impl  *Impl
}

// Dispatch builds and caches SumTables, one per descriptor.
type Dispatch struct {
	mu     sync.RWMutex
	tables map[*typesystem.TSum]*SumTable
}

func NewDispatch() *Dispatch {
	return &Dispatch{tables: make(map[*typesystem.TSum]*SumTable)}
}

// Table returns the method table of sum, building it on first use.
func (d *Dispatch) Table(sum *typesystem.TSum) *SumTable {
	d.mu.RLock()
	t, ok := d.tables[sum]
	d.mu.RUnlock()
	if ok {
		return t
	}

	// Built outside the lock: slot tables of nested sums recurse into Table.
	built := d.build(sum)

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tables[sum]; ok {
		return t
	}
	d.tables[sum] = built
	return built
}

// Len reports how many descriptors have a table.
func (d *Dispatch) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tables)
}

func (d *Dispatch) build(sum *typesystem.TSum) *SumTable {
	slots := make([]*Impl, len(sum.Slots))
	for i, s := range sum.Slots {
		slots[i] = d.ImplFor(s)
	}
	table := &SumTable{Sum: sum, Slots: slots, Impl: &Impl{}}
	slot := func(o Object) (*SumValue, *Impl) {
		v := o.(*SumValue)
		return v, slots[v.Tag]
	}

	impl := table.Impl
	if all(slots, func(i *Impl) bool { return i.Debug != nil }) {
		impl.Debug = func(o Object) string {
			v, s := slot(o)
			return s.Debug(v.Payload)
		}
	}
	if all(slots, func(i *Impl) bool { return i.Eq != nil }) {
		impl.Eq = func(a, b Object) bool {
			va, s := slot(a)
			vb := b.(*SumValue)
			return va.Tag == vb.Tag && s.Eq(va.Payload, vb.Payload)
		}
	}
	if all(slots, func(i *Impl) bool { return i.Cmp != nil }) {
		impl.Cmp = func(a, b Object) int {
			va, s := slot(a)
			vb := b.(*SumValue)
			if va.Tag != vb.Tag {
				return compareInts(int64(va.Tag), int64(vb.Tag))
			}
			return s.Cmp(va.Payload, vb.Payload)
		}
	}
	if all(slots, func(i *Impl) bool { return i.Hash != nil }) {
		impl.Hash = func(o Object) uint64 {
			v, s := slot(o)
			return mixHash(uint64(v.Tag), s.Hash(v.Payload))
		}
	}
	if all(slots, func(i *Impl) bool { return i.Clone != nil }) {
		impl.Clone = func(o Object) Object {
			v, s := slot(o)
			return &SumValue{Sum: v.Sum, Tag: v.Tag, Payload: s.Clone(v.Payload)}
		}
	}
	if all(slots, func(i *Impl) bool { return i.Iter != nil }) {
		impl.Iter = func(o Object) Iterator {
			v, s := slot(o)
			return s.Iter(v.Payload)
		}
	}
	if all(slots, func(i *Impl) bool { return i.Poll != nil }) {
		impl.Poll = func(o Object) Poller {
			v, s := slot(o)
			return s.Poll(v.Payload)
		}
	}
	return table
}

func all(impls []*Impl, has func(*Impl) bool) bool {
	for _, i := range impls {
		if !has(i) {
			return false
		}
	}
	return true
}

// ImplFor returns the runtime implementation for values of type t.
func (d *Dispatch) ImplFor(t typesystem.Type) *Impl {
	switch typ := t.(type) {
	case *typesystem.TSum:
		return d.Table(typ).Impl
	case typesystem.TTuple:
		return d.tupleImpl(typ)
	case typesystem.TCon:
		return primitiveImpl(typ)
	case typesystem.TFunc:
		return &Impl{Clone: identity}
	}
	return &Impl{}
}

func (d *Dispatch) tupleImpl(t typesystem.TTuple) *Impl {
	elems := make([]*Impl, len(t.Elements))
	for i, el := range t.Elements {
		elems[i] = d.ImplFor(el)
	}
	impl := &Impl{}
	if all(elems, func(i *Impl) bool { return i.Debug != nil }) {
		impl.Debug = func(o Object) string {
			xs := tupleElements(o)
			if len(xs) == 0 {
				return "()"
			}
			parts := make([]string, len(xs))
			for i, x := range xs {
				parts[i] = elems[i].Debug(x)
			}
			if len(parts) == 1 {
				return "(" + parts[0] + ",)"
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
	}
	if all(elems, func(i *Impl) bool { return i.Eq != nil }) {
		impl.Eq = func(a, b Object) bool {
			xs, ys := tupleElements(a), tupleElements(b)
			for i := range xs {
				if !elems[i].Eq(xs[i], ys[i]) {
					return false
				}
			}
			return true
		}
	}
	if all(elems, func(i *Impl) bool { return i.Cmp != nil }) {
		impl.Cmp = func(a, b Object) int {
			xs, ys := tupleElements(a), tupleElements(b)
			for i := range xs {
				if c := elems[i].Cmp(xs[i], ys[i]); c != 0 {
					return c
				}
			}
			return 0
		}
	}
	if all(elems, func(i *Impl) bool { return i.Hash != nil }) {
		impl.Hash = func(o Object) uint64 {
			xs := tupleElements(o)
			parts := make([]uint64, len(xs))
			for i, x := range xs {
				parts[i] = elems[i].Hash(x)
			}
			return mixHash(uint64(len(xs)), parts...)
		}
	}
	if all(elems, func(i *Impl) bool { return i.Clone != nil }) {
		impl.Clone = func(o Object) Object {
			xs := tupleElements(o)
			if len(xs) == 0 {
				return o
			}
			out := make([]Object, len(xs))
			for i, x := range xs {
				out[i] = elems[i].Clone(x)
			}
			return &Tuple{Elements: out}
		}
	}
	return impl
}

func tupleElements(o Object) []Object {
	if t, ok := o.(*Tuple); ok {
		return t.Elements
	}
	return nil
}

func identity(o Object) Object { return o }

func debugInspect(o Object) string { return o.Inspect() }
func hashObject(o Object) uint64   { return o.Hash() }

// primitiveImpl mirrors the capabilities the built-in types declare.
func primitiveImpl(t typesystem.TCon) *Impl {
	switch {
	case isIntegerType(t):
		return &Impl{
			Debug: debugInspect,
			Eq:    func(a, b Object) bool { return a.(*Integer).Value == b.(*Integer).Value },
			Cmp:   func(a, b Object) int { return compareInts(a.(*Integer).Value, b.(*Integer).Value) },
			Hash:  hashObject,
			Clone: func(o Object) Object { i := o.(*Integer); return newInt(i.Value, i.Kind) },
		}
	case isFloatType(t):
		return &Impl{
			Debug: debugInspect,
			Eq:    func(a, b Object) bool { return a.(*Float).Value == b.(*Float).Value },
			Cmp:   func(a, b Object) int { return compareFloats(a.(*Float).Value, b.(*Float).Value) },
			Clone: func(o Object) Object { f := o.(*Float); return &Float{Value: f.Value, Kind: f.Kind} },
		}
	case typesystem.Identical(t, typesystem.Bool):
		return &Impl{
			Debug: debugInspect,
			Eq:    func(a, b Object) bool { return a.(*Boolean).Value == b.(*Boolean).Value },
			Cmp: func(a, b Object) int {
				return compareInts(int64(a.(*Boolean).Hash()), int64(b.(*Boolean).Hash()))
			},
			Hash:  hashObject,
			Clone: identity,
		}
	case typesystem.Identical(t, typesystem.Char):
		return &Impl{
			Debug: debugInspect,
			Eq:    func(a, b Object) bool { return a.(*Char).Value == b.(*Char).Value },
			Cmp:   func(a, b Object) int { return compareInts(int64(a.(*Char).Value), int64(b.(*Char).Value)) },
			Hash:  hashObject,
			Clone: func(o Object) Object { return &Char{Value: o.(*Char).Value} },
		}
	case typesystem.Identical(t, typesystem.String):
		return &Impl{
			Debug: debugInspect,
			Eq:    func(a, b Object) bool { return a.(*String).Value == b.(*String).Value },
			Cmp:   func(a, b Object) int { return strings.Compare(a.(*String).Value, b.(*String).Value) },
			Hash:  hashObject,
			Clone: func(o Object) Object { return &String{Value: o.(*String).Value} },
		}
	case typesystem.Identical(t, typesystem.Range):
		return &Impl{
			Debug: debugInspect,
			Eq: func(a, b Object) bool {
				ra, rb := a.(*Range), b.(*Range)
				return ra.Start == rb.Start && ra.End == rb.End
			},
			Clone: func(o Object) Object { r := o.(*Range); return &Range{Start: r.Start, End: r.End} },
			Iter: func(o Object) Iterator {
				r := o.(*Range)
				return &rangeIterator{next: r.Start, end: r.End}
			},
		}
	case typesystem.Identical(t, typesystem.Chars):
		return &Impl{
			Debug: debugInspect,
			Clone: func(o Object) Object { return &Chars{Value: o.(*Chars).Value} },
			Iter:  func(o Object) Iterator { return &charsIterator{runes: []rune(o.(*Chars).Value)} },
		}
	case typesystem.Identical(t, typesystem.Ready):
		return &Impl{
			Debug: debugInspect,
			Poll:  func(o Object) Poller { return &readyPoller{value: o.(*Ready).Value} },
		}
	case typesystem.Identical(t, typesystem.Delay):
		return &Impl{
			Debug: debugInspect,
			Poll: func(o Object) Poller {
				d := o.(*Delay)
				return &delayPoller{value: d.Value, pending: d.Polls}
			},
		}
	}
	// Struct types have no runtime values.
	return &Impl{}
}

func isIntegerType(t typesystem.Type) bool {
	return typesystem.Identical(t, typesystem.I32) ||
		typesystem.Identical(t, typesystem.I64) ||
		typesystem.Identical(t, typesystem.U8)
}

func isFloatType(t typesystem.Type) bool {
	return typesystem.Identical(t, typesystem.F32) || typesystem.Identical(t, typesystem.F64)
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFloats is a partial order; NaN compares equal to everything.
func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
