package typesystem

import (
	"strconv"
	"strings"
)

// Identical reports whether a and b denote the same type. Sums are
// compared by their slot sequences, so descriptors from different
// interners still compare equal when their structure does.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case TCon:
		y, ok := b.(TCon)
		return ok && x.Name == y.Name && x.Module == y.Module
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Name == y.Name
	case TTuple:
		y, ok := b.(TTuple)
		return ok && identicalAll(x.Elements, y.Elements)
	case TFunc:
		y, ok := b.(TFunc)
		return ok && identicalAll(x.Params, y.Params) && Identical(x.ReturnType, y.ReturnType)
	case *TSum:
		y, ok := b.(*TSum)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		return x.key == y.key
	}
	return false
}

func identicalAll(as, bs []Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Identical(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// TypeKey returns the canonical structural key of t. Identical types have
// equal keys and vice versa.
func TypeKey(t Type) string {
	var sb strings.Builder
	writeKey(&sb, t)
	return sb.String()
}

func sumKey(slots []Type) string {
	var sb strings.Builder
	writeList(&sb, 'S', slots)
	return sb.String()
}

func writeKey(sb *strings.Builder, t Type) {
	switch typ := t.(type) {
	case TCon:
		sb.WriteByte('C')
		sb.WriteString(strconv.Quote(typ.Module))
		sb.WriteString(strconv.Quote(typ.Name))
	case TVar:
		sb.WriteByte('V')
		sb.WriteString(strconv.Quote(typ.Name))
	case TTuple:
		writeList(sb, 'T', typ.Elements)
	case TFunc:
		writeList(sb, 'F', typ.Params)
		writeKey(sb, typ.ReturnType)
	case *TSum:
		if typ.key != "" {
			sb.WriteString(typ.key)
			return
		}
		writeList(sb, 'S', typ.Slots)
	default:
		sb.WriteString("?")
	}
}

func writeList(sb *strings.Builder, tag byte, ts []Type) {
	sb.WriteByte(tag)
	sb.WriteByte('(')
	for i, t := range ts {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeKey(sb, t)
	}
	sb.WriteByte(')')
}
