package parser

import (
	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/token"
)

func (p *parser) parseBlock() *ast.Block {
	pos := p.expect(token.LBRACE)
	block := &ast.Block{Pos_: pos}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if stmt := p.parseStmtRecover(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	p.expect(token.RBRACE)
	return block
}

// parseStmtRecover parses a single statement, recovering to the next
// statement boundary (a ';' or the enclosing '}') on a parse error.
func (p *parser) parseStmtRecover() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			for p.tok != token.SEMI && p.tok != token.RBRACE && p.tok != token.EOF {
				p.advance()
			}
			if p.tok == token.SEMI {
				p.advance()
			}
			stmt = nil
		}
	}()
	return p.parseStmt()
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.LET:
		return p.parseLetStmt()
	case token.CONST:
		return p.parseConstStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.LBRACE:
		pos := p.val.Pos
		b := p.parseBlock()
		return &ast.BlockStmt{Block: b, Pos_: pos}
	default:
		pos := p.val.Pos
		x := p.parseExpr()
		p.expect(token.SEMI)
		return &ast.ExprStmt{X: x, Pos_: pos}
	}
}

func (p *parser) parseLetStmt() *ast.LetStmt {
	pos := p.expect(token.LET)
	name := p.val.Raw
	p.expect(token.IDENT)
	p.expect(token.COLON)
	ty := p.tok
	if !ty.IsTypeName() {
		p.errorExpected(p.val.Pos, "a type name")
		panic(errPanicMode)
	}
	p.advance()
	p.expect(token.ASSIGN)
	init := p.parseExpr()
	p.expect(token.SEMI)
	return &ast.LetStmt{Name: name, Type: ty, Init: init, Pos_: pos}
}

func (p *parser) parseConstStmt() *ast.ConstStmt {
	pos := p.expect(token.CONST)
	name := p.val.Raw
	p.expect(token.IDENT)
	p.expect(token.COLON)
	ty := p.tok
	if !ty.IsTypeName() {
		p.errorExpected(p.val.Pos, "a type name")
		panic(errPanicMode)
	}
	p.advance()
	p.expect(token.ASSIGN)
	init := p.parseExpr()
	p.expect(token.SEMI)
	return &ast.ConstStmt{Name: name, Type: ty, Init: init, Pos_: pos}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	pos := p.expect(token.IF)
	p.expect(token.LPAREN)
	test := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseBlock()
	var alt *ast.Block
	if p.tok == token.ELSE {
		p.advance()
		alt = p.parseBlock()
	}
	return &ast.IfStmt{Test: test, Then: then, Alt: alt, Pos_: pos}
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	test := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStmt{Test: test, Body: body, Pos_: pos}
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.expect(token.RETURN)
	var result ast.Expr
	if p.tok != token.SEMI {
		result = p.parseExpr()
	}
	p.expect(token.SEMI)
	return &ast.ReturnStmt{Result: result, Pos_: pos}
}
