package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/anonsum/internal/typesystem"
)

type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	if len(t.Elements) == 0 {
		return "()"
	}
	parts := make([]string, len(t.Elements))
	for i, el := range t.Elements {
		parts[i] = el.Inspect()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) RuntimeType() typesystem.Type {
	elems := make([]typesystem.Type, len(t.Elements))
	for i, el := range t.Elements {
		elems[i] = el.RuntimeType()
	}
	return typesystem.TTuple{Elements: elems}
}
func (t *Tuple) Hash() uint64 {
	parts := make([]uint64, len(t.Elements))
	for i, el := range t.Elements {
		parts[i] = el.Hash()
	}
	return mixHash(uint64(len(parts)), parts...)
}

// SumValue is a value of an anonymous sum: the slot index it was built
// with and the payload. Two slots of the same type stay distinct through
// Tag.
type SumValue struct {
	Sum     *typesystem.TSum
	Tag     int
	Payload Object
}

func (s *SumValue) Type() ObjectType { return SUM_OBJ }
func (s *SumValue) Inspect() string {
	return fmt.Sprintf("::%d(%s)", s.Tag, s.Payload.Inspect())
}
func (s *SumValue) RuntimeType() typesystem.Type { return s.Sum }
func (s *SumValue) Hash() uint64                 { return mixHash(uint64(s.Tag), s.Payload.Hash()) }

// NewSumValue builds ::tag(payload) of sum after checking the tag.
func NewSumValue(sum *typesystem.TSum, tag int, payload Object) (*SumValue, error) {
	if _, err := sum.Slot(tag); err != nil {
		return nil, err
	}
	return &SumValue{Sum: sum, Tag: tag, Payload: payload}, nil
}
