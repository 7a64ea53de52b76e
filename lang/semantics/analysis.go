// Package semantics implements the semantic/type-checking pass that sits
// between lang/parser and lang/compiler. It rejects unresolved names and
// type-incompatible operators before lang/compiler's GraphPass ever runs;
// a missing name reaching the compiler is an internal error, because this
// pass is expected to have already caught it.
package semantics

import (
	"fmt"
	"strings"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/token"
)

// Error is a single semantic diagnostic.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList accumulates Errors found while analyzing a chunk, so the front
// end can report them in a single batch.
type ErrorList []*Error

func (el *ErrorList) add(pos token.Pos, format string, args ...interface{}) {
	*el = append(*el, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func (el ErrorList) Error() string {
	var b strings.Builder
	for i, e := range el {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Analyze type-checks ch and resolves every name reference, returning the
// NativeHints table lang/compiler's GraphPass needs to resolve native calls.
// An AST that fails analysis must never be passed to lang/compiler: its
// behavior there is undefined.
func Analyze(ch *ast.Chunk) (NativeHints, error) {
	var a analyzer
	a.scopes.push() // global frame: holds native and routine names
	defer a.scopes.pop()

	hints := make(NativeHints, len(ch.Natives))
	for i, nf := range ch.Natives {
		sig := Signature{Ret: nf.RetType}
		for _, p := range nf.Params {
			sig.Params = append(sig.Params, p.Type)
		}
		if !a.scopes.declare(nf.Name, symbol{category: CategoryNative, sig: sig}) {
			a.errs.add(nf.Pos_, "native function %q redeclared", nf.Name)
			continue
		}
		hints[nf.Name] = NativeHint{Name: nf.Name, Sig: sig, ID: i}
	}

	var haveMain bool
	for _, fn := range ch.Funcs {
		sig := Signature{Ret: fn.RetType}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, p.Type)
		}
		if !a.scopes.declare(fn.Name, symbol{category: CategoryFunc, sig: sig}) {
			a.errs.add(fn.Pos_, "function %q redeclared", fn.Name)
			continue
		}
		if fn.Name == "main" {
			haveMain = true
			if len(fn.Params) != 0 {
				a.errs.add(fn.Pos_, "main must not declare parameters")
			}
		}
	}
	if !haveMain {
		a.errs.add(token.NoPos, "missing required function %q", "main")
	}

	for _, fn := range ch.Funcs {
		a.checkFunc(fn)
	}

	return hints, a.errs.Err()
}

type analyzer struct {
	scopes  scopeStack
	errs    ErrorList
	retType token.Token
}

func (a *analyzer) checkFunc(fn *ast.FuncDecl) {
	a.scopes.push()
	defer a.scopes.pop()

	for _, p := range fn.Params {
		if !a.scopes.declare(p.Name, symbol{typ: p.Type, category: CategoryParam}) {
			a.errs.add(p.Pos_, "parameter %q redeclared", p.Name)
		}
	}

	prevRet := a.retType
	a.retType = fn.RetType
	a.checkBlock(fn.Body)
	a.retType = prevRet
}

func (a *analyzer) checkBlock(b *ast.Block) {
	a.scopes.push()
	defer a.scopes.pop()
	for _, stmt := range b.Stmts {
		a.checkStmt(stmt)
	}
}

func (a *analyzer) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		got := a.checkExpr(s.Init)
		if got != token.ILLEGAL && got != s.Type {
			a.errs.add(s.Pos_, "cannot initialize %q of type %s with value of type %s", s.Name, s.Type, got)
		}
		if !a.scopes.declare(s.Name, symbol{typ: s.Type, category: CategoryLocal}) {
			a.errs.add(s.Pos_, "name %q redeclared", s.Name)
		}

	case *ast.ConstStmt:
		got := a.checkExpr(s.Init)
		if got != token.ILLEGAL && got != s.Type {
			a.errs.add(s.Pos_, "cannot initialize %q of type %s with value of type %s", s.Name, s.Type, got)
		}
		if !a.scopes.declare(s.Name, symbol{typ: s.Type, category: CategoryConst}) {
			a.errs.add(s.Pos_, "name %q redeclared", s.Name)
		}

	case *ast.IfStmt:
		if got := a.checkExpr(s.Test); got != token.ILLEGAL && got != token.BOOL_TY {
			a.errs.add(s.Pos_, "if condition must be bool, got %s", got)
		}
		a.checkBlock(s.Then)
		if s.Alt != nil {
			a.checkBlock(s.Alt)
		}

	case *ast.WhileStmt:
		if got := a.checkExpr(s.Test); got != token.ILLEGAL && got != token.BOOL_TY {
			a.errs.add(s.Pos_, "while condition must be bool, got %s", got)
		}
		a.checkBlock(s.Body)

	case *ast.ReturnStmt:
		if s.Result == nil {
			a.errs.add(s.Pos_, "missing return value")
			return
		}
		got := a.checkExpr(s.Result)
		if got != token.ILLEGAL && got != a.retType {
			a.errs.add(s.Pos_, "return type mismatch: function returns %s, got %s", a.retType, got)
		}

	case *ast.BlockStmt:
		a.checkBlock(s.Block)

	case *ast.ExprStmt:
		a.checkExpr(s.X)

	default:
		a.errs.add(stmt.Pos(), "internal error: unhandled statement kind %T", stmt)
	}
}

// checkExpr type-checks x and returns its static type, or token.ILLEGAL if
// the expression is unresolvable (an error was already recorded, so callers
// should not cascade further errors from an ILLEGAL result).
func (a *analyzer) checkExpr(x ast.Expr) token.Token {
	switch e := x.(type) {
	case *ast.BoolLit:
		return token.BOOL_TY
	case *ast.IntLit:
		return token.INT_TY
	case *ast.FloatLit:
		return token.FLOAT_TY
	case *ast.StringLit:
		return token.STRING_TY

	case *ast.NameExpr:
		sym, ok := a.scopes.lookup(e.Name)
		if !ok {
			a.errs.add(e.Pos_, "undefined name %q", e.Name)
			return token.ILLEGAL
		}
		if sym.category == CategoryFunc || sym.category == CategoryNative {
			a.errs.add(e.Pos_, "%q is a function, not a value", e.Name)
			return token.ILLEGAL
		}
		return sym.typ

	case *ast.UnaryExpr:
		got := a.checkExpr(e.Right)
		if got == token.ILLEGAL {
			return token.ILLEGAL
		}
		if got != token.INT_TY && got != token.FLOAT_TY {
			a.errs.add(e.Pos_, "negate requires a numeric operand, got %s", got)
			return token.ILLEGAL
		}
		return got

	case *ast.BinaryExpr:
		return a.checkBinary(e)

	case *ast.AssignExpr:
		return a.checkAssign(e)

	case *ast.CallExpr:
		return a.checkCall(e)

	case *ast.AccessExpr:
		// Array/tuple field access is reserved: operands
		// still need their names resolved, but there is no static field type to
		// check against.
		a.checkExpr(e.Left)
		a.checkExpr(e.Right)
		return token.ILLEGAL

	default:
		a.errs.add(x.Pos(), "internal error: unhandled expression kind %T", x)
		return token.ILLEGAL
	}
}

func (a *analyzer) checkBinary(e *ast.BinaryExpr) token.Token {
	lt := a.checkExpr(e.Left)
	rt := a.checkExpr(e.Right)
	if lt == token.ILLEGAL || rt == token.ILLEGAL {
		return token.ILLEGAL
	}

	switch e.Op {
	case token.AND, token.OR:
		if lt != token.BOOL_TY || rt != token.BOOL_TY {
			a.errs.add(e.Pos_, "%s requires bool operands, got %s and %s", e.Op.GoString(), lt, rt)
			return token.ILLEGAL
		}
		return token.BOOL_TY

	case token.EQL, token.NEQ, token.LT, token.GT:
		if lt != rt {
			a.errs.add(e.Pos_, "cannot compare %s with %s", lt, rt)
			return token.ILLEGAL
		}
		return token.BOOL_TY

	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		if (lt != token.INT_TY && lt != token.FLOAT_TY) || lt != rt {
			a.errs.add(e.Pos_, "%s requires matching numeric operands, got %s and %s", e.Op.GoString(), lt, rt)
			return token.ILLEGAL
		}
		return lt

	default:
		a.errs.add(e.Pos_, "internal error: unhandled binary operator %s", e.Op)
		return token.ILLEGAL
	}
}

func (a *analyzer) checkAssign(e *ast.AssignExpr) token.Token {
	name, ok := e.Left.(*ast.NameExpr)
	if !ok {
		a.errs.add(e.Pos_, "left-hand side of assignment must be a name")
		a.checkExpr(e.Right)
		return token.ILLEGAL
	}
	sym, ok := a.scopes.lookup(name.Name)
	if !ok {
		a.errs.add(name.Pos_, "undefined name %q", name.Name)
		a.checkExpr(e.Right)
		return token.ILLEGAL
	}
	if sym.category == CategoryConst {
		a.errs.add(e.Pos_, "cannot assign to constant %q", name.Name)
	}
	rt := a.checkExpr(e.Right)
	if rt != token.ILLEGAL && rt != sym.typ {
		a.errs.add(e.Pos_, "cannot assign value of type %s to %q of type %s", rt, name.Name, sym.typ)
		return token.ILLEGAL
	}
	return sym.typ
}

func (a *analyzer) checkCall(e *ast.CallExpr) token.Token {
	sym, ok := a.scopes.lookup(e.Callee.Name)
	if !ok {
		a.errs.add(e.Pos_, "undefined function %q", e.Callee.Name)
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return token.ILLEGAL
	}
	if sym.category != CategoryFunc && sym.category != CategoryNative {
		a.errs.add(e.Pos_, "%q is not callable", e.Callee.Name)
		for _, arg := range e.Args {
			a.checkExpr(arg)
		}
		return token.ILLEGAL
	}

	if len(e.Args) != len(sym.sig.Params) {
		a.errs.add(e.Pos_, "%q expects %d argument(s), got %d", e.Callee.Name, len(sym.sig.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		got := a.checkExpr(arg)
		if i < len(sym.sig.Params) && got != token.ILLEGAL && got != sym.sig.Params[i] {
			a.errs.add(arg.Pos(), "argument %d to %q: expected %s, got %s", i+1, e.Callee.Name, sym.sig.Params[i], got)
		}
	}
	return sym.sig.Ret
}
