package ast

import (
	"github.com/funvibe/anonsum/internal/token"
	"strings"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// TypeDeclaration introduces a transparent structural alias.
// type Either<L, R> = L | R
type TypeDeclaration struct {
	Token      token.Token // The 'type' token
	Name       *Identifier
	TypeParams []*Identifier
	Type       Type
}

func (td *TypeDeclaration) statementNode()       {}
func (td *TypeDeclaration) TokenLiteral() string { return td.Token.Lexeme }
func (td *TypeDeclaration) GetToken() token.Token {
	if td == nil {
		return token.Token{}
	}
	return td.Token
}
func (td *TypeDeclaration) String() string {
	var sb strings.Builder
	sb.WriteString("type ")
	sb.WriteString(td.Name.Value)
	if len(td.TypeParams) > 0 {
		sb.WriteString("<")
		sb.WriteString(joinIdents(td.TypeParams))
		sb.WriteString(">")
	}
	sb.WriteString(" = ")
	sb.WriteString(td.Type.String())
	return sb.String()
}

// CapabilityRef names a capability, with an optional associated type
// argument: Debug, Iterator<i32>.
type CapabilityRef struct {
	Token token.Token
	Name  string
	Arg   Type
}

func (c *CapabilityRef) GetToken() token.Token { return c.Token }
func (c *CapabilityRef) String() string {
	if c.Arg != nil {
		return c.Name + "<" + c.Arg.String() + ">"
	}
	return c.Name
}

// StructDeclaration introduces an opaque nominal type with declared
// capabilities.
// struct Point derives Debug, Clone
type StructDeclaration struct {
	Token   token.Token // The 'struct' token
	Name    *Identifier
	Derives []*CapabilityRef
}

func (sd *StructDeclaration) statementNode()        {}
func (sd *StructDeclaration) TokenLiteral() string  { return sd.Token.Lexeme }
func (sd *StructDeclaration) GetToken() token.Token { return sd.Token }
func (sd *StructDeclaration) String() string {
	s := "struct " + sd.Name.Value
	if len(sd.Derives) > 0 {
		s += " derives " + joinCaps(sd.Derives)
	}
	return s
}

// LetStatement binds a name.
// let x: i32 | String = ::0(1)
type LetStatement struct {
	Token          token.Token // The 'let' token
	Name           *Identifier
	TypeAnnotation Type // Optional
	Value          Expression
}

func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	s := "let " + ls.Name.Value
	if ls.TypeAnnotation != nil {
		s += ": " + ls.TypeAnnotation.String()
	}
	return s + " = " + ls.Value.String()
}

// DeriveStatement requests capabilities for a type and reports each one
// that does not hold.
// derive Debug, Hash for i32 | String
type DeriveStatement struct {
	Token        token.Token // The 'derive' token
	Capabilities []*CapabilityRef
	Target       Type
}

func (ds *DeriveStatement) statementNode()        {}
func (ds *DeriveStatement) TokenLiteral() string  { return ds.Token.Lexeme }
func (ds *DeriveStatement) GetToken() token.Token { return ds.Token }
func (ds *DeriveStatement) String() string {
	return "derive " + joinCaps(ds.Capabilities) + " for " + ds.Target.String()
}

// PrintStatement writes the Debug rendering of a value.
type PrintStatement struct {
	Token token.Token // The 'print' token
	Value Expression
}

func (ps *PrintStatement) statementNode()        {}
func (ps *PrintStatement) TokenLiteral() string  { return ps.Token.Lexeme }
func (ps *PrintStatement) GetToken() token.Token { return ps.Token }
func (ps *PrintStatement) String() string        { return "print " + ps.Value.String() }

// ForStatement iterates a value implementing Iterator.
// for c in chars("abc") { print c }
type ForStatement struct {
	Token    token.Token // The 'for' token
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }
func (fs *ForStatement) String() string {
	return "for " + fs.Variable.Value + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Token      token.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	parts := make([]string, len(bs.Statements))
	for i, s := range bs.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// ExpressionStatement wraps an expression evaluated for its effect.
type ExpressionStatement struct {
	Token      token.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

func joinIdents(ids []*Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.Value
	}
	return strings.Join(parts, ", ")
}

func joinCaps(caps []*CapabilityRef) string {
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
