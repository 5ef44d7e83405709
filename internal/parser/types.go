package parser

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/token"
)

// parseType parses `atom {'|' atom}`. Every `|` at this nesting level
// contributes a slot to the same sum.
func (p *Parser) parseType() ast.Type {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	t := p.parseTypeAtom()
	if t == nil {
		return nil
	}

	// Check for Sum Type '|'
	if p.peekTokenIs(token.PIPE) {
		sum := &ast.SumType{Token: p.peekToken, Slots: []ast.Type{t}}
		for p.peekTokenIs(token.PIPE) {
			p.nextToken() // consume '|'
			p.nextToken() // move to next type
			next := p.parseTypeAtom()
			if next == nil {
				return nil
			}
			sum.Slots = append(sum.Slots, next)
		}
		return sum
	}

	return t
}

func (p *Parser) parseTypeAtom() ast.Type {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseNamedType()
	case token.LPAREN:
		return p.parseParenType()
	case token.FN:
		return p.parseFunctionType()
	default:
		p.errorAt(p.curToken, "expected type, got %s", describeToken(p.curToken))
		return nil
	}
}

// IDENT ['<' type {',' type} '>']
func (p *Parser) parseNamedType() ast.Type {
	nt := &ast.NamedType{Token: p.curToken, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}}
	if !p.peekTokenIs(token.LT) {
		return nt
	}
	p.nextToken() // '<'
	for {
		p.nextToken()
		arg := p.parseType()
		if arg == nil {
			return nil
		}
		nt.Args = append(nt.Args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.GT) {
		return nil
	}
	return nt
}

// '(' ')' | '(' type ')' | '(' type ',' [type {',' type}] ')' | '(' '|' [type] ')'
func (p *Parser) parseParenType() ast.Type {
	tok := p.curToken
	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.TupleType{Token: tok}
	}
	if p.peekTokenIs(token.PIPE) {
		return p.parseLeadingPipeSum()
	}

	p.nextToken()
	first := p.parseType()
	if first == nil {
		return nil
	}
	p.skipPeekNewlines()

	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.ParenType{Token: tok, Inner: first}
	}

	tuple := &ast.TupleType{Token: tok, Types: []ast.Type{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // ','
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break // trailing comma
		}
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		tuple.Types = append(tuple.Types, elem)
		p.skipPeekNewlines()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return tuple
}

// 'fn' '(' [type {',' type}] ')' '->' type
// The result type extends as far as possible: fn(i32) -> i32 | bool
// returns the sum.
func (p *Parser) parseFunctionType() ast.Type {
	ft := &ast.FunctionType{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.skipPeekNewlines()
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		param := p.parseType()
		if param == nil {
			return nil
		}
		ft.Parameters = append(ft.Parameters, param)
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipPeekNewlines()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	ft.ReturnType = p.parseType()
	if ft.ReturnType == nil {
		return nil
	}
	return ft
}

// parseLeadingPipeSum parses the explicit sum forms `(|)`, `(| A)` and
// `(| A | B)`. They are the only way to write zero- and one-slot sums.
func (p *Parser) parseLeadingPipeSum() ast.Type {
	p.nextToken() // '|'
	sum := &ast.SumType{Token: p.curToken}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return sum
	}
	p.nextToken()
	inner := p.parseType()
	if inner == nil {
		return nil
	}
	if s, ok := inner.(*ast.SumType); ok {
		sum.Slots = s.Slots
	} else {
		sum.Slots = []ast.Type{inner}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return sum
}
