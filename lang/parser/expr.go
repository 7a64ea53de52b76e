package parser

import (
	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/token"
)

// parseExpr parses the full expression grammar, precedence
// low to high: assignment, logical or, logical and, compare (<,>), equality
// (==,!=), additive, multiplicative, unary, access (::), literals.
func (p *parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseOr()
	if p.tok == token.ASSIGN {
		pos := p.expect(token.ASSIGN)
		right := p.parseAssign()
		return &ast.AssignExpr{Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.tok == token.OR {
		pos := p.val.Pos
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: token.OR, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseCompare()
	for p.tok == token.AND {
		pos := p.val.Pos
		p.advance()
		right := p.parseCompare()
		left = &ast.BinaryExpr{Op: token.AND, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseCompare() ast.Expr {
	left := p.parseEquality()
	for p.tok == token.LT || p.tok == token.GT {
		op, pos := p.tok, p.val.Pos
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseAdditive()
	for p.tok == token.EQL || p.tok == token.NEQ {
		op, pos := p.tok, p.val.Pos
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, pos := p.tok, p.val.Pos
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH {
		op, pos := p.tok, p.val.Pos
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.MINUS {
		pos := p.val.Pos
		p.advance()
		right := p.parseUnary()
		return &ast.UnaryExpr{Op: token.MINUS, Right: right, Pos_: pos}
	}
	return p.parseAccess()
}

func (p *parser) parseAccess() ast.Expr {
	left := p.parsePrimary()
	for p.tok == token.DCOLON {
		pos := p.val.Pos
		p.advance()
		right := p.parsePrimary()
		left = &ast.AccessExpr{Left: left, Right: right, Pos_: pos}
	}
	return left
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.val.Pos
	switch p.tok {
	case token.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x

	case token.TRUE:
		lit := p.val.Raw
		p.advance()
		return &ast.BoolLit{Lit: lit, Pos_: pos}

	case token.FALSE:
		lit := p.val.Raw
		p.advance()
		return &ast.BoolLit{Lit: lit, Pos_: pos}

	case token.INT:
		lit := p.val.Raw
		p.advance()
		return &ast.IntLit{Lit: lit, Pos_: pos}

	case token.FLOAT:
		lit := p.val.Raw
		p.advance()
		return &ast.FloatLit{Lit: lit, Pos_: pos}

	case token.STRING:
		lit := p.val.Raw
		p.advance()
		return &ast.StringLit{Lit: lit, Pos_: pos}

	case token.IDENT:
		name := p.val.Raw
		p.advance()
		if p.tok == token.LPAREN {
			return p.parseCallArgs(&ast.NameExpr{Name: name, Pos_: pos})
		}
		return &ast.NameExpr{Name: name, Pos_: pos}

	default:
		p.errorExpected(pos, "an expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseCallArgs(callee *ast.NameExpr) *ast.CallExpr {
	pos := p.expect(token.LPAREN)
	var args []ast.Expr
	for p.tok != token.RPAREN {
		if len(args) > 0 {
			p.expect(token.COMMA)
		}
		args = append(args, p.parseExpr())
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{Callee: callee, Args: args, Pos_: pos}
}
