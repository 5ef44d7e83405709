package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/anonsum/internal/typesystem"
)

// Integer is a value of one of the integer types; Kind says which.
type Integer struct {
	Value int64
	Kind  typesystem.TCon
}

func (i *Integer) Type() ObjectType             { return INTEGER_OBJ }
func (i *Integer) Inspect() string              { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() typesystem.Type { return i.Kind }
func (i *Integer) Hash() uint64                 { return uint64(i.Value) }

// Float is an f32 or f64 value.
type Float struct {
	Value float64
	Kind  typesystem.TCon
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	bits := 64
	if typesystem.Identical(f.Kind, typesystem.F32) {
		bits = 32
	}
	s := strconv.FormatFloat(f.Value, 'g', -1, bits)
	if f.Value == math.Trunc(f.Value) && !math.IsInf(f.Value, 0) && !strings.ContainsAny(s, "e.") {
		s += ".0"
	}
	return s
}
func (f *Float) RuntimeType() typesystem.Type { return f.Kind }
func (f *Float) Hash() uint64                 { return math.Float64bits(f.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType             { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string              { return strconv.FormatBool(b.Value) }
func (b *Boolean) RuntimeType() typesystem.Type { return typesystem.Bool }
func (b *Boolean) Hash() uint64 {
	if b.Value {
		return 1
	}
	return 0
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Char represents a character.
type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType             { return CHAR_OBJ }
func (c *Char) Inspect() string              { return strconv.QuoteRune(c.Value) }
func (c *Char) RuntimeType() typesystem.Type { return typesystem.Char }
func (c *Char) Hash() uint64                 { return uint64(c.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType             { return STRING_OBJ }
func (s *String) Inspect() string              { return strconv.Quote(s.Value) }
func (s *String) RuntimeType() typesystem.Type { return typesystem.String }
func (s *String) Hash() uint64                 { return hashString(s.Value) }

// Unit is the value ().
type Unit struct{}

func (u *Unit) Type() ObjectType             { return UNIT_OBJ }
func (u *Unit) Inspect() string              { return "()" }
func (u *Unit) RuntimeType() typesystem.Type { return typesystem.Unit }
func (u *Unit) Hash() uint64                 { return 0 }

var UNIT = &Unit{}

func newInt(v int64, kind typesystem.TCon) *Integer {
	return &Integer{Value: v, Kind: kind}
}
