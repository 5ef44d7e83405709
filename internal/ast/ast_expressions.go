package ast

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
	"strconv"
	"strings"
)

// Identifier represents a name in value position.
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

// IntegerLiteral is an integer with its suffix-determined type.
type IntegerLiteral struct {
	Token token.Token
	Value int64
	Type  typesystem.TCon // i32 unless suffixed with i64 or u8
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return il.Token.Lexeme }

// FloatLiteral is a float with its suffix-determined type.
type FloatLiteral struct {
	Token token.Token
	Value float64
	Type  typesystem.TCon // f64 unless suffixed with f32
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return fl.Token.Lexeme }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }
func (cl *CharLiteral) String() string        { return strconv.QuoteRune(cl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) String() string        { return strconv.FormatBool(b.Value) }

// TupleLiteral is (a, b, ...). The empty tuple is the unit value.
type TupleLiteral struct {
	Token    token.Token // The '(' token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()       {}
func (tl *TupleLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token { return tl.Token }
func (tl *TupleLiteral) String() string {
	if len(tl.Elements) == 1 {
		return "(" + tl.Elements[0].String() + ",)"
	}
	return "(" + joinExprs(tl.Elements) + ")"
}

// SlotConstructor is ::i(payload), or the first-class constructor ::i
// when Payload is nil.
type SlotConstructor struct {
	Token   token.Token // The '::' token
	Index   int
	Payload Expression
}

func (sc *SlotConstructor) expressionNode()       {}
func (sc *SlotConstructor) TokenLiteral() string  { return sc.Token.Lexeme }
func (sc *SlotConstructor) GetToken() token.Token { return sc.Token }
func (sc *SlotConstructor) String() string {
	if sc.Payload == nil {
		return fmt.Sprintf("::%d", sc.Index)
	}
	return fmt.Sprintf("::%d(%s)", sc.Index, sc.Payload)
}

// IsFirstClass reports whether the constructor is used as a function value.
func (sc *SlotConstructor) IsFirstClass() bool { return sc.Payload == nil }

// CallExpression is f(args).
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// MethodCallExpression is receiver.method(args).
type MethodCallExpression struct {
	Token     token.Token // The '.' token
	Receiver  Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()       {}
func (mc *MethodCallExpression) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token { return mc.Token }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Method.Value + "(" + joinExprs(mc.Arguments) + ")"
}

// MatchArm is one `pattern => expr` arm.
type MatchArm struct {
	Pattern    Pattern
	Expression Expression
}

// MatchExpression selects the first arm whose pattern matches.
type MatchExpression struct {
	Token      token.Token // The 'match' token
	Expression Expression
	Arms       []*MatchArm
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }
func (me *MatchExpression) String() string {
	arms := make([]string, len(me.Arms))
	for i, a := range me.Arms {
		arms[i] = a.Pattern.String() + " => " + a.Expression.String()
	}
	return "match " + me.Expression.String() + " { " + strings.Join(arms, ", ") + " }"
}

func joinExprs(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
