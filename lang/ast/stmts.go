package ast

import "github.com/DrkWithT/ExpliceLang/lang/token"

// Stmt is implemented by every statement node. Nestable statements are
// `let`/`const` declarations, `if`/`else`, `while`, `return`, block, and
// expression statements.
type Stmt interface {
	Node
	stmtNode()
}

// LetStmt is a mutable local variable declaration: `let x: int = 1 + 2;`.
type LetStmt struct {
	Name string
	Type token.Token
	Init Expr
	Pos_ token.Pos
}

func (n *LetStmt) Pos() token.Pos { return n.Pos_ }
func (*LetStmt) stmtNode()        {}

// ConstStmt is an immutable local variable declaration: `const x: int = 1;`.
// lang/semantics tracks the mutability distinction; the compiler lowers
// let and const the same way.
type ConstStmt struct {
	Name string
	Type token.Token
	Init Expr
	Pos_ token.Pos
}

func (n *ConstStmt) Pos() token.Pos { return n.Pos_ }
func (*ConstStmt) stmtNode()        {}

// IfStmt is `if (test) { then } [else { alt }]`.
type IfStmt struct {
	Test Expr
	Then *Block
	Alt  *Block // nil if there is no else clause
	Pos_ token.Pos
}

func (n *IfStmt) Pos() token.Pos { return n.Pos_ }
func (*IfStmt) stmtNode()        {}

// WhileStmt is `while (test) { body }`.
type WhileStmt struct {
	Test Expr
	Body *Block
	Pos_ token.Pos
}

func (n *WhileStmt) Pos() token.Pos { return n.Pos_ }
func (*WhileStmt) stmtNode()        {}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Result Expr // nil if bare `return;`
	Pos_   token.Pos
}

func (n *ReturnStmt) Pos() token.Pos { return n.Pos_ }
func (*ReturnStmt) stmtNode()        {}

// BlockStmt wraps a nested Block that appears as a statement of its own.
// The then/else arms of an IfStmt and the bodies of WhileStmt/FuncDecl are
// held as a *Block directly, not as a BlockStmt.
type BlockStmt struct {
	Block *Block
	Pos_  token.Pos
}

func (n *BlockStmt) Pos() token.Pos { return n.Pos_ }
func (*BlockStmt) stmtNode()        {}

// ExprStmt is an expression evaluated for its side effect. Lowering an
// ExprStmt intentionally emits no pop of its result; a native call used as
// a statement leaves its result on the operand stack.
type ExprStmt struct {
	X    Expr
	Pos_ token.Pos
}

func (n *ExprStmt) Pos() token.Pos { return n.Pos_ }
func (*ExprStmt) stmtNode()        {}
