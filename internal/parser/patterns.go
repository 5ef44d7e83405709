package parser

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/token"
)

// parsePattern parses `simple {'|' simple}`.
func (p *Parser) parsePattern() ast.Pattern {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	first := p.parseSimplePattern()
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(token.PIPE) {
		return first
	}

	or := &ast.OrPattern{Token: p.peekToken, Alternatives: []ast.Pattern{first}}
	for p.peekTokenIs(token.PIPE) {
		p.nextToken() // '|'
		p.nextToken()
		alt := p.parseSimplePattern()
		if alt == nil {
			return nil
		}
		or.Alternatives = append(or.Alternatives, alt)
	}
	return or
}

func (p *Parser) parseSimplePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}
	case token.IDENT:
		return &ast.IdentifierPattern{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.INT, token.FLOAT, token.STRING, token.CHAR:
		return &ast.LiteralPattern{Token: p.curToken, Value: p.curToken.Literal}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
	case token.LPAREN:
		return p.parseTuplePattern()
	case token.COLONCOLON:
		return p.parseSlotPattern()
	default:
		p.errorAt(p.curToken, "expected pattern, got %s", describeToken(p.curToken))
		return nil
	}
}

// '(' ')' | '(' pattern ')' | '(' pattern ',' ... ')'
func (p *Parser) parseTuplePattern() ast.Pattern {
	tok := p.curToken
	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.TuplePattern{Token: tok}
	}

	p.nextToken()
	first := p.parsePattern()
	if first == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return first
	}

	tuple := &ast.TuplePattern{Token: tok, Elements: []ast.Pattern{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
		p.nextToken()
		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, elem)
		p.skipPeekNewlines()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return tuple
}

// '::' INT '(' pattern ')'
func (p *Parser) parseSlotPattern() ast.Pattern {
	sp := &ast.SlotPattern{Token: p.curToken}
	index, ok := p.parseSlotIndex()
	if !ok {
		return nil
	}
	sp.Index = index
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.skipPeekNewlines()
	p.nextToken()
	sp.Sub = p.parsePattern()
	if sp.Sub == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return sp
}
