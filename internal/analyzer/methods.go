package analyzer

import (
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// MethodSig is the signature of a built-in method, excluding the receiver.
type MethodSig struct {
	Params []typesystem.Type
	Result typesystem.Type
}

var methods = map[string]map[string]MethodSig{
	config.StringTypeName: {
		"len":      {Result: typesystem.I32},
		"is_empty": {Result: typesystem.Bool},
		"to_upper": {Result: typesystem.String},
		"to_lower": {Result: typesystem.String},
		"contains": {Params: []typesystem.Type{typesystem.String}, Result: typesystem.Bool},
	},
	config.I32TypeName: {
		"abs": {Result: typesystem.I32},
		"max": {Params: []typesystem.Type{typesystem.I32}, Result: typesystem.I32},
		"min": {Params: []typesystem.Type{typesystem.I32}, Result: typesystem.I32},
	},
	config.I64TypeName: {
		"abs": {Result: typesystem.I64},
	},
	config.F64TypeName: {
		"abs":   {Result: typesystem.F64},
		"floor": {Result: typesystem.F64},
	},
	config.CharTypeName: {
		"is_digit": {Result: typesystem.Bool},
		"to_upper": {Result: typesystem.Char},
	},
}

// LookupMethod finds a built-in method of a primitive type. Sums,
// tuples and functions have none.
func LookupMethod(t typesystem.Type, name string) (MethodSig, bool) {
	return lookupMethod(t, name)
}

func lookupMethod(t typesystem.Type, name string) (MethodSig, bool) {
	con, ok := t.(typesystem.TCon)
	if !ok || con.Module != "" {
		return MethodSig{}, false
	}
	m, ok := methods[con.Name][name]
	return m, ok
}
