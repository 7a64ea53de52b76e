// Package parser implements the recursive-descent parser that transforms
// Xplice source code into an abstract syntax tree.
package parser

import (
	"errors"
	"strings"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/scanner"
	"github.com/DrkWithT/ExpliceLang/lang/token"
)

// ParseChunk parses a single Xplice source file and returns its AST. The
// error, if non-nil, is guaranteed to be a scanner.ErrorList. A syntax error
// outside any statement (in an import, use func or function header) stops
// parsing, and the returned Chunk is then nil.
func ParseChunk(src []byte) (ch *ast.Chunk, err error) {
	var p parser
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			ch, err = nil, p.errors.Err()
		}
	}()
	p.init(src)
	ch = p.parseChunk()
	return ch, p.errors.Err()
}

var errPanicMode = errors.New("panic")

// parser holds the state of one parse of a single file.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList

	tok token.Token
	val token.Value
}

func (p *parser) init(src []byte) {
	p.scanner.Init(src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

// expect consumes the current token if it is one of toks, otherwise it
// records an error and panics with errPanicMode, which is recovered at the
// statement level, or by ParseChunk outside any statement.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}

	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}
	lbl := buf.String()
	if len(toks) > 1 {
		lbl = "one of " + lbl
	}
	p.errorExpected(pos, lbl)
	panic(errPanicMode)
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(pos, msg)
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.val.Pos {
		if p.val.Raw != "" {
			msg += ", found " + p.val.Raw
		} else {
			msg += ", found " + p.tok.GoString()
		}
	}
	p.error(pos, msg)
}

func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{}
	for p.tok == token.IMPORT {
		ch.Imports = append(ch.Imports, p.parseImport())
	}
	for p.tok == token.USE {
		ch.Natives = append(ch.Natives, p.parseUseFunc())
	}
	for p.tok == token.FUNC {
		ch.Funcs = append(ch.Funcs, p.parseFuncDecl())
	}
	if p.tok != token.EOF {
		p.error(p.val.Pos, "expected 'import', 'use', 'func', or end of file, found "+p.tok.GoString())
	}
	return ch
}

func (p *parser) parseImport() *ast.Import {
	pos := p.expect(token.IMPORT)
	name := p.val.Raw
	p.expect(token.IDENT)
	p.expect(token.SEMI)
	return &ast.Import{Name: name, Pos_: pos}
}

func (p *parser) parseParams() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for p.tok != token.RPAREN {
		if len(params) > 0 {
			p.expect(token.COMMA)
		}
		namePos := p.val.Pos
		name := p.val.Raw
		p.expect(token.IDENT)
		p.expect(token.COLON)
		tyPos := p.val.Pos
		ty := p.tok
		if !ty.IsTypeName() {
			p.errorExpected(tyPos, "a type name")
			panic(errPanicMode)
		}
		p.advance()
		params = append(params, ast.Param{Name: name, Type: ty, Pos_: namePos})
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) parseRetType() token.Token {
	p.expect(token.COLON)
	ty := p.tok
	if !ty.IsTypeName() {
		p.errorExpected(p.val.Pos, "a type name")
		panic(errPanicMode)
	}
	p.advance()
	return ty
}

func (p *parser) parseUseFunc() *ast.UseFunc {
	pos := p.expect(token.USE)
	p.expect(token.FUNC)
	name := p.val.Raw
	p.expect(token.IDENT)
	params := p.parseParams()
	ret := p.parseRetType()
	p.expect(token.SEMI)
	return &ast.UseFunc{Name: name, Params: params, RetType: ret, Pos_: pos}
}

func (p *parser) parseFuncDecl() (fn *ast.FuncDecl) {
	pos := p.expect(token.FUNC)
	name := p.val.Raw
	p.expect(token.IDENT)
	params := p.parseParams()
	ret := p.parseRetType()
	body := p.parseBlock()
	return &ast.FuncDecl{Name: name, Params: params, RetType: ret, Body: body, Pos_: pos}
}
