package ast

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/token"
	"strconv"
	"strings"
)

// --- Type System Nodes ---

// Type represents a type node in the AST.
// E.g., i32, Either<i32, String>, (i32, bool), fn(i32) -> bool, A | B
type Type interface {
	Node
	typeNode()
	GetToken() token.Token
}

// NamedType represents a named type like 'i32', 'Point', or 'Either<A, B>'.
type NamedType struct {
	Token token.Token
	Name  *Identifier
	Args  []Type
}

func (nt *NamedType) typeNode()             {}
func (nt *NamedType) TokenLiteral() string  { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token { return nt.Token }
func (nt *NamedType) String() string {
	if len(nt.Args) == 0 {
		return nt.Name.Value
	}
	return nt.Name.Value + "<" + joinTypes(nt.Args, ", ") + ">"
}

// TupleType represents a tuple type, e.g. (i32, bool). No elements is unit.
type TupleType struct {
	Token token.Token // The '(' token
	Types []Type
}

func (tt *TupleType) typeNode()             {}
func (tt *TupleType) TokenLiteral() string  { return tt.Token.Lexeme }
func (tt *TupleType) GetToken() token.Token { return tt.Token }
func (tt *TupleType) String() string {
	if len(tt.Types) == 1 {
		return "(" + tt.Types[0].String() + ",)"
	}
	return "(" + joinTypes(tt.Types, ", ") + ")"
}

// ParenType is a parenthesized type. Around a sum it makes the sum one
// opaque slot of the enclosing chain: A | (B | C) has two slots.
type ParenType struct {
	Token token.Token // The '(' token
	Inner Type
}

func (pt *ParenType) typeNode()             {}
func (pt *ParenType) TokenLiteral() string  { return pt.Token.Lexeme }
func (pt *ParenType) GetToken() token.Token { return pt.Token }
func (pt *ParenType) String() string        { return "(" + pt.Inner.String() + ")" }

// FunctionType represents fn(T, ...) -> R.
type FunctionType struct {
	Token      token.Token // The 'fn' token
	Parameters []Type
	ReturnType Type
}

func (ft *FunctionType) typeNode()             {}
func (ft *FunctionType) TokenLiteral() string  { return ft.Token.Lexeme }
func (ft *FunctionType) GetToken() token.Token { return ft.Token }
func (ft *FunctionType) String() string {
	return "fn(" + joinTypes(ft.Parameters, ", ") + ") -> " + ft.ReturnType.String()
}

// SumType represents an anonymous sum, e.g. i32 | String | bool.
// All slots of one `|` chain belong to one SumType.
type SumType struct {
	Token token.Token // The first '|' token
	Slots []Type
}

func (st *SumType) typeNode()             {}
func (st *SumType) TokenLiteral() string  { return st.Token.Lexeme }
func (st *SumType) GetToken() token.Token { return st.Token }
func (st *SumType) String() string {
	switch len(st.Slots) {
	case 0:
		return "(|)"
	case 1:
		return "(| " + st.Slots[0].String() + ")"
	}
	return joinTypes(st.Slots, " | ")
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

// --- Patterns ---

// Pattern represents a pattern in a match arm.
type Pattern interface {
	Node
	patternNode()
	GetToken() token.Token
}

// WildcardPattern is '_'.
type WildcardPattern struct {
	Token token.Token
}

func (p *WildcardPattern) patternNode()          {}
func (p *WildcardPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *WildcardPattern) GetToken() token.Token { return p.Token }
func (p *WildcardPattern) String() string        { return "_" }

// LiteralPattern matches one literal value: int64, float64, string, rune or bool.
type LiteralPattern struct {
	Token token.Token
	Value interface{}
}

func (p *LiteralPattern) patternNode()          {}
func (p *LiteralPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *LiteralPattern) GetToken() token.Token { return p.Token }
func (p *LiteralPattern) String() string {
	switch v := p.Value.(type) {
	case string:
		return strconv.Quote(v)
	case rune:
		return strconv.QuoteRune(v)
	}
	return p.Token.Lexeme
}

// IdentifierPattern binds the matched value to a name.
type IdentifierPattern struct {
	Token token.Token
	Value string
}

func (p *IdentifierPattern) patternNode()          {}
func (p *IdentifierPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *IdentifierPattern) GetToken() token.Token { return p.Token }
func (p *IdentifierPattern) String() string        { return p.Value }

// TuplePattern matches a tuple element-wise. No elements matches unit.
type TuplePattern struct {
	Token    token.Token // '('
	Elements []Pattern
}

func (p *TuplePattern) patternNode()          {}
func (p *TuplePattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *TuplePattern) GetToken() token.Token { return p.Token }
func (p *TuplePattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		parts[i] = e.String()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// SlotPattern matches a sum value whose tag is Index and whose payload
// matches Sub: ::1(s).
type SlotPattern struct {
	Token token.Token // '::'
	Index int
	Sub   Pattern
}

func (p *SlotPattern) patternNode()          {}
func (p *SlotPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *SlotPattern) GetToken() token.Token { return p.Token }
func (p *SlotPattern) String() string        { return fmt.Sprintf("::%d(%s)", p.Index, p.Sub) }

// OrPattern matches if any alternative matches: ::0(_) | ::2(_).
type OrPattern struct {
	Token        token.Token // The first '|'
	Alternatives []Pattern
}

func (p *OrPattern) patternNode()          {}
func (p *OrPattern) TokenLiteral() string  { return p.Token.Lexeme }
func (p *OrPattern) GetToken() token.Token { return p.Token }
func (p *OrPattern) String() string {
	parts := make([]string, len(p.Alternatives))
	for i, a := range p.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}
