package evaluator

import (
	"fmt"

	"github.com/funvibe/anonsum/internal/typesystem"
)

// Range iterates the i32 values in [Start, End).
type Range struct {
	Start int64
	End   int64
}

func (r *Range) Type() ObjectType             { return RANGE_OBJ }
func (r *Range) Inspect() string              { return fmt.Sprintf("%d..%d", r.Start, r.End) }
func (r *Range) RuntimeType() typesystem.Type { return typesystem.Range }
func (r *Range) Hash() uint64                 { return mixHash(uint64(r.Start), uint64(r.End)) }

// Chars iterates the characters of a string.
type Chars struct {
	Value string
}

func (c *Chars) Type() ObjectType             { return CHARS_OBJ }
func (c *Chars) Inspect() string              { return fmt.Sprintf("chars(%q)", c.Value) }
func (c *Chars) RuntimeType() typesystem.Type { return typesystem.Chars }
func (c *Chars) Hash() uint64                 { return hashString(c.Value) }

// Ready is a future that completes on its first poll.
type Ready struct {
	Value Object
}

func (r *Ready) Type() ObjectType             { return READY_OBJ }
func (r *Ready) Inspect() string              { return fmt.Sprintf("ready(%s)", r.Value.Inspect()) }
func (r *Ready) RuntimeType() typesystem.Type { return typesystem.Ready }
func (r *Ready) Hash() uint64                 { return r.Value.Hash() }

// Delay is a future that is pending for Polls polls before completing.
type Delay struct {
	Value Object
	Polls int64
}

func (d *Delay) Type() ObjectType { return DELAY_OBJ }
func (d *Delay) Inspect() string {
	return fmt.Sprintf("delay(%s, %d)", d.Value.Inspect(), d.Polls)
}
func (d *Delay) RuntimeType() typesystem.Type { return typesystem.Delay }
func (d *Delay) Hash() uint64                 { return mixHash(d.Value.Hash(), uint64(d.Polls)) }

// Iterator yields items until exhausted. Each for loop gets a fresh one.
type Iterator interface {
	Next() (Object, bool)
}

type rangeIterator struct {
	next, end int64
}

func (it *rangeIterator) Next() (Object, bool) {
	if it.next >= it.end {
		return nil, false
	}
	v := it.next
	it.next++
	return newInt(v, typesystem.I32), true
}

type charsIterator struct {
	runes []rune
	pos   int
}

func (it *charsIterator) Next() (Object, bool) {
	if it.pos >= len(it.runes) {
		return nil, false
	}
	c := it.runes[it.pos]
	it.pos++
	return &Char{Value: c}, true
}

// Poller drives a future. Poll returns the output once ready.
type Poller interface {
	Poll() (Object, bool)
}

type readyPoller struct{ value Object }

func (p *readyPoller) Poll() (Object, bool) { return p.value, true }

type delayPoller struct {
	value   Object
	pending int64
}

func (p *delayPoller) Poll() (Object, bool) {
	if p.pending > 0 {
		p.pending--
		return nil, false
	}
	return p.value, true
}
