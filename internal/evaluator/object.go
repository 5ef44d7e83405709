package evaluator

import (
	"hash/fnv"

	"github.com/funvibe/anonsum/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	BOOLEAN_OBJ  = "BOOLEAN"
	CHAR_OBJ     = "CHAR"
	STRING_OBJ   = "STRING"
	UNIT_OBJ     = "UNIT"
	TUPLE_OBJ    = "TUPLE"
	SUM_OBJ      = "SUM"
	CTOR_OBJ     = "CONSTRUCTOR"
	BUILTIN_OBJ  = "BUILTIN"
	RANGE_OBJ    = "RANGE"
	CHARS_OBJ    = "CHARS"
	READY_OBJ    = "READY"
	DELAY_OBJ    = "DELAY"
	ERROR_OBJ    = "ERROR"
)

// Object is a runtime value. Objects are immutable once built.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() typesystem.Type
	Hash() uint64
}

// Helper for hashing strings
func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// mixHash combines hashes in order.
func mixHash(seed uint64, parts ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range append([]uint64{seed}, parts...) {
		for i := range buf {
			buf[i] = byte(p >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}
