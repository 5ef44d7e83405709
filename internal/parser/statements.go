package parser

import (
	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/token"
)

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}
	program.Statements = p.parseStatements(token.EOF)
	return program
}

// parseStatements parses newline-separated statements up to (not
// consuming) end. curToken is left on the token before end.
func (p *Parser) parseStatements(end token.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for {
		for p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if p.curTokenIs(end) || p.curTokenIs(token.EOF) {
			return stmts
		}

		errsBefore := len(p.ctx.Errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.ctx.Errors) == errsBefore {
			stmts = append(stmts, stmt)
		}

		switch {
		case p.peekTokenIs(token.NEWLINE), p.peekTokenIs(token.EOF), p.peekTokenIs(end):
		default:
			if len(p.ctx.Errors) == errsBefore {
				p.errorAt(p.peekToken, "expected end of statement, got %s", describeToken(p.peekToken))
			}
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.TYPE:
		return p.parseTypeDeclaration()
	case token.STRUCT:
		return p.parseStructDeclaration()
	case token.LET:
		return p.parseLetStatement()
	case token.DERIVE:
		return p.parseDeriveStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.FOR:
		return p.parseForStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// type NAME [<P, ...>] = type
func (p *Parser) parseTypeDeclaration() ast.Statement {
	stmt := &ast.TypeDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.TypeParams = append(stmt.TypeParams, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Type = p.parseType()
	if stmt.Type == nil {
		return nil
	}
	return stmt
}

// struct NAME [derives cap, ...]
func (p *Parser) parseStructDeclaration() ast.Statement {
	stmt := &ast.StructDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.DERIVES) {
		p.nextToken()
		p.nextToken()
		stmt.Derives = p.parseCapabilityList()
		if stmt.Derives == nil {
			return nil
		}
	}
	return stmt
}

// let NAME [: type] = expr
func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.TypeAnnotation = p.parseType()
		if stmt.TypeAnnotation == nil {
			return nil
		}
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression()
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// derive cap, ... for type
func (p *Parser) parseDeriveStatement() ast.Statement {
	stmt := &ast.DeriveStatement{Token: p.curToken}
	p.nextToken()
	stmt.Capabilities = p.parseCapabilityList()
	if stmt.Capabilities == nil {
		return nil
	}
	if !p.expectPeek(token.FOR) {
		return nil
	}
	p.nextToken()
	stmt.Target = p.parseType()
	if stmt.Target == nil {
		return nil
	}
	return stmt
}

// parseCapabilityList parses `Cap [<type>] {, Cap [<type>]}` starting on
// the first capability name.
func (p *Parser) parseCapabilityList() []*ast.CapabilityRef {
	var caps []*ast.CapabilityRef
	for {
		if !p.curTokenIs(token.IDENT) {
			p.errorAt(p.curToken, "expected capability name, got %s", describeToken(p.curToken))
			return nil
		}
		c := &ast.CapabilityRef{Token: p.curToken, Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			p.nextToken()
			c.Arg = p.parseType()
			if c.Arg == nil || !p.expectPeek(token.GT) {
				return nil
			}
		}
		caps = append(caps, c)
		if !p.peekTokenIs(token.COMMA) {
			return caps
		}
		p.nextToken()
		p.nextToken()
	}
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression()
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// for NAME in expr { stmts }
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression()
	if stmt.Iterable == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseBlockStatement parses `{ stmts }` starting on '{' and ending on '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	block.Statements = p.parseStatements(token.RBRACE)
	if !p.curTokenIs(token.RBRACE) {
		p.errorAt(p.curToken, "expected '}', got %s", describeToken(p.curToken))
		return nil
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression()
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}
