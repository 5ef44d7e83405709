package parser

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/token"
)

// MaxRecursionDepth bounds nesting of expressions, types and patterns.
const MaxRecursionDepth = 500

type (
	prefixParseFn func() ast.Expression
)

// Parser is a recursive-descent parser. Every parse function starts with
// curToken on the first token of its construct and leaves curToken on
// the last one.
type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn

	depth int
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:      p.parseIdentifier,
		token.INT:        p.parseIntegerLiteral,
		token.FLOAT:      p.parseFloatLiteral,
		token.STRING:     p.parseStringLiteral,
		token.CHAR:       p.parseCharLiteral,
		token.TRUE:       p.parseBoolean,
		token.FALSE:      p.parseBoolean,
		token.LPAREN:     p.parseGroupedExpression,
		token.COLONCOLON: p.parseSlotConstructor,
		token.MATCH:      p.parseMatchExpression,
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token has type t and reports an error otherwise.
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// skipPeekNewlines advances over newlines, leaving peekToken on the next
// significant token. Used inside brackets where line breaks are free.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorAt(p.peekToken, "expected %s, got %s", describe(t), describeToken(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorAt(tok, "unexpected %s", describeToken(tok))
}

func (p *Parser) errorAt(tok token.Token, format string, args ...interface{}) {
	if tok.Type == token.ILLEGAL {
		if msg, ok := tok.Literal.(string); ok && msg != tok.Lexeme {
			p.ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, "%s", msg))
			return
		}
	}
	p.ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, format, args...))
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > MaxRecursionDepth {
		p.errorAt(p.curToken, "nesting too deep: recursion depth limit exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

// skipToStatementBoundary drops tokens up to the end of the current line
// so that one syntax error does not cascade.
func (p *Parser) skipToStatementBoundary() {
	for !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.CHAR, token.EOF, token.NEWLINE:
		return string(t)
	}
	return fmt.Sprintf("'%s'", keywordOrSymbol(t))
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

func keywordOrSymbol(t token.TokenType) string {
	for _, kw := range []string{"type", "struct", "derives", "derive", "for", "in", "let", "match", "print", "fn", "true", "false"} {
		if token.LookupIdent(kw) == t {
			return kw
		}
	}
	return string(t)
}
