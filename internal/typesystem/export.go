package typesystem

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout of an encoded type:
//
//	1: kind (varint)
//	2: name (bytes, TCon and TVar)
//	3: module (bytes, TCon)
//	4: child (bytes, repeated; tuple elements, sum slots, function params then result)
const (
	fieldKind   protowire.Number = 1
	fieldName   protowire.Number = 2
	fieldModule protowire.Number = 3
	fieldChild  protowire.Number = 4
)

const (
	kindCon uint64 = iota + 1
	kindVar
	kindTuple
	kindFunc
	kindSum
)

var errMalformed = errors.New("malformed type encoding")

// Encode serializes t in protobuf wire format.
func Encode(t Type) []byte {
	var b []byte
	switch typ := t.(type) {
	case TCon:
		b = appendKind(b, kindCon)
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, typ.Name)
		if typ.Module != "" {
			b = protowire.AppendTag(b, fieldModule, protowire.BytesType)
			b = protowire.AppendString(b, typ.Module)
		}
	case TVar:
		b = appendKind(b, kindVar)
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, typ.Name)
	case TTuple:
		b = appendKind(b, kindTuple)
		b = appendChildren(b, typ.Elements)
	case TFunc:
		b = appendKind(b, kindFunc)
		b = appendChildren(b, typ.Params)
		b = appendChildren(b, []Type{typ.ReturnType})
	case *TSum:
		b = appendKind(b, kindSum)
		b = appendChildren(b, typ.Slots)
	}
	return b
}

func appendKind(b []byte, k uint64) []byte {
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	return protowire.AppendVarint(b, k)
}

func appendChildren(b []byte, ts []Type) []byte {
	for _, t := range ts {
		b = protowire.AppendTag(b, fieldChild, protowire.BytesType)
		b = protowire.AppendBytes(b, Encode(t))
	}
	return b
}

// Decode parses an encoding produced by Encode. Sums are interned in in
// (Sums when nil), so decoding an encoded descriptor yields the same pointer.
func Decode(b []byte, in *Interner) (Type, error) {
	if in == nil {
		in = Sums
	}
	var (
		kind     uint64
		name     string
		module   string
		children []Type
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			kind = v
			b = b[n:]
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			name = v
			b = b[n:]
		case num == fieldModule && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			module = v
			b = b[n:]
		case num == fieldChild && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			child, err := Decode(v, in)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	switch kind {
	case kindCon:
		return TCon{Name: name, Module: module}, nil
	case kindVar:
		return TVar{Name: name}, nil
	case kindTuple:
		return TTuple{Elements: children}, nil
	case kindFunc:
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: function without result type", errMalformed)
		}
		last := len(children) - 1
		return TFunc{Params: children[:last], ReturnType: children[last]}, nil
	case kindSum:
		return in.Sum(children...)
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", errMalformed, kind)
	}
}
