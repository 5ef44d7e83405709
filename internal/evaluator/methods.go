package evaluator

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/anonsum/internal/typesystem"
)

type method func(recv Object, args []Object) Object

// methods holds the built-in methods by receiver object type.
var methods = map[ObjectType]map[string]method{
	STRING_OBJ: {
		"len": func(recv Object, _ []Object) Object {
			return newInt(int64(utf8.RuneCountInString(recv.(*String).Value)), typesystem.I32)
		},
		"is_empty": func(recv Object, _ []Object) Object {
			return nativeBoolToBooleanObject(recv.(*String).Value == "")
		},
		"to_upper": func(recv Object, _ []Object) Object {
			return &String{Value: strings.ToUpper(recv.(*String).Value)}
		},
		"to_lower": func(recv Object, _ []Object) Object {
			return &String{Value: strings.ToLower(recv.(*String).Value)}
		},
		"contains": func(recv Object, args []Object) Object {
			return nativeBoolToBooleanObject(strings.Contains(recv.(*String).Value, args[0].(*String).Value))
		},
	},
	INTEGER_OBJ: {
		"abs": func(recv Object, _ []Object) Object {
			i := recv.(*Integer)
			if i.Value >= 0 {
				return i
			}
			if minOf(i.Kind) == i.Value {
				return newError("%s.abs() overflows %s", i.Inspect(), i.Kind)
			}
			return newInt(-i.Value, i.Kind)
		},
		"max": func(recv Object, args []Object) Object {
			a, b := recv.(*Integer), args[0].(*Integer)
			if b.Value > a.Value {
				return b
			}
			return a
		},
		"min": func(recv Object, args []Object) Object {
			a, b := recv.(*Integer), args[0].(*Integer)
			if b.Value < a.Value {
				return b
			}
			return a
		},
	},
	FLOAT_OBJ: {
		"abs": func(recv Object, _ []Object) Object {
			f := recv.(*Float)
			return &Float{Value: math.Abs(f.Value), Kind: f.Kind}
		},
		"floor": func(recv Object, _ []Object) Object {
			f := recv.(*Float)
			return &Float{Value: math.Floor(f.Value), Kind: f.Kind}
		},
	},
	CHAR_OBJ: {
		"is_digit": func(recv Object, _ []Object) Object {
			return nativeBoolToBooleanObject(unicode.IsDigit(recv.(*Char).Value))
		},
		"to_upper": func(recv Object, _ []Object) Object {
			return &Char{Value: unicode.ToUpper(recv.(*Char).Value)}
		},
	},
}

func minOf(kind typesystem.TCon) int64 {
	switch {
	case typesystem.Identical(kind, typesystem.I32):
		return math.MinInt32
	case typesystem.Identical(kind, typesystem.I64):
		return math.MinInt64
	}
	return 0
}

// callMethod invokes a built-in method. Sum values have none: the
// payload must be matched out first.
func callMethod(recv Object, name string, args []Object) Object {
	if sv, ok := recv.(*SumValue); ok {
		return newError("method '%s' called on anonymous sum %s; match on it first", name, sv.Sum)
	}
	m, ok := methods[recv.Type()][name]
	if !ok {
		return newError("%s has no method '%s'", recv.RuntimeType(), name)
	}
	return m(recv, args)
}
