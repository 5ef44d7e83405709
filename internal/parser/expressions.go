package parser

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/token"
	"github.com/funvibe/anonsum/internal/typesystem"
	"math"
	"strconv"
)

// parseExpression parses a prefix expression followed by any number of
// calls and method calls on the same line.
func (p *Parser) parseExpression() ast.Expression {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()

	for left != nil {
		switch {
		case p.peekTokenIs(token.LPAREN):
			p.nextToken()
			left = p.parseCallExpression(left)
		case p.peekTokenIs(token.DOT):
			p.nextToken()
			left = p.parseMethodCallExpression(left)
		default:
			return left
		}
	}
	return nil
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken, Value: p.curToken.Literal.(int64), Type: typesystem.I32}
	lo, hi := int64(math.MinInt32), int64(math.MaxInt32)
	switch lexer.Suffix(p.curToken.Lexeme) {
	case "i64":
		lit.Type = typesystem.I64
		lo, hi = math.MinInt64, math.MaxInt64
	case "u8":
		lit.Type = typesystem.U8
		lo, hi = 0, math.MaxUint8
	}
	if lit.Value < lo || lit.Value > hi {
		p.errorAt(p.curToken, "integer literal %s overflows %s", p.curToken.Lexeme, lit.Type)
		return nil
	}
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken, Value: p.curToken.Literal.(float64), Type: typesystem.F64}
	if lexer.Suffix(p.curToken.Lexeme) == "f32" {
		lit.Type = typesystem.F32
	}
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	return &ast.CharLiteral{Token: p.curToken, Value: p.curToken.Literal.(rune)}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

// '(' ')' | '(' expr ')' | '(' expr ',' [expr {',' expr}] ')'
func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken
	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.TupleLiteral{Token: tok}
	}

	p.nextToken()
	first := p.parseExpression()
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

	tuple := &ast.TupleLiteral{Token: tok, Elements: []ast.Expression{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
		p.nextToken()
		elem := p.parseExpression()
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

// '::' INT ['(' expr ')']
func (p *Parser) parseSlotConstructor() ast.Expression {
	sc := &ast.SlotConstructor{Token: p.curToken}
	index, ok := p.parseSlotIndex()
	if !ok {
		return nil
	}
	sc.Index = index

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.skipPeekNewlines()
		p.nextToken()
		sc.Payload = p.parseExpression()
		if sc.Payload == nil {
			return nil
		}
		p.skipPeekNewlines()
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	return sc
}

// parseSlotIndex reads the INT after '::'. Suffixes and signs are not
// slot indices.
func (p *Parser) parseSlotIndex() (int, bool) {
	if !p.expectPeek(token.INT) {
		return 0, false
	}
	lexeme := p.curToken.Lexeme
	index, err := strconv.Atoi(lexeme)
	if err != nil || lexeme[0] == '-' || lexeme[0] == '+' {
		p.errorAt(p.curToken, "invalid slot index %s", p.curToken.Lexeme)
		return 0, false
	}
	return index, true
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseCallArguments parses `(a, b, ...)` starting on '(' and ending on ')'.
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, true
	}
	for {
		p.nextToken()
		arg := p.parseExpression()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break // trailing comma
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return args, true
}

// receiver '.' IDENT '(' args ')'
func (p *Parser) parseMethodCallExpression(receiver ast.Expression) ast.Expression {
	mc := &ast.MethodCallExpression{Token: p.curToken, Receiver: receiver}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	mc.Method = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	mc.Arguments = args
	return mc
}

// 'match' expr '{' {pattern '=>' expr [',']} '}'
func (p *Parser) parseMatchExpression() ast.Expression {
	me := &ast.MatchExpression{Token: p.curToken}

	p.nextToken() // consume 'match'
	me.Expression = p.parseExpression()
	if me.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
			break
		}

		// We are at start of an arm (pattern)
		p.nextToken()
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		me.Arms = append(me.Arms, arm)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.RBRACE) {
			p.errorAt(p.peekToken, "expected ',' or end of line after match arm, got %s", describeToken(p.peekToken))
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	if len(me.Arms) == 0 {
		p.errorAt(me.Token, "match expression has no arms")
		return nil
	}
	return me
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	pat := p.parsePattern()
	if pat == nil {
		return nil
	}
	if !p.expectPeek(token.FAT_ARROW) {
		return nil
	}
	p.skipPeekNewlines()
	p.nextToken()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.MatchArm{Pattern: pat, Expression: expr}
}
