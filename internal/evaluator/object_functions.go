package evaluator

import (
	"fmt"

	"github.com/funvibe/anonsum/internal/typesystem"
)

type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Name     string
	Fn       BuiltinFunction
	TypeInfo typesystem.Type
}

func (b *Builtin) Type() ObjectType             { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string              { return "builtin function " + b.Name }
func (b *Builtin) RuntimeType() typesystem.Type { return b.TypeInfo }
func (b *Builtin) Hash() uint64                 { return hashString(b.Name) }

// CtorFunc is a first-class slot constructor ::Index of Sum.
type CtorFunc struct {
	Sum   *typesystem.TSum
	Index int
}

func (c *CtorFunc) Type() ObjectType { return CTOR_OBJ }
func (c *CtorFunc) Inspect() string  { return fmt.Sprintf("::%d", c.Index) }
func (c *CtorFunc) RuntimeType() typesystem.Type {
	return typesystem.TFunc{Params: []typesystem.Type{c.Sum.Slots[c.Index]}, ReturnType: c.Sum}
}
func (c *CtorFunc) Hash() uint64 { return mixHash(uint64(c.Index), hashString(c.Sum.Key())) }

// Apply constructs ::Index(arg).
func (c *CtorFunc) Apply(arg Object) Object {
	return &SumValue{Sum: c.Sum, Tag: c.Index, Payload: arg}
}
