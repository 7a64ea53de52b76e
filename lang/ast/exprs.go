package ast

import "github.com/DrkWithT/ExpliceLang/lang/token"

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// BinaryExpr is `left op right` for arithmetic, comparison, and logical
// operators. The operand evaluation order is determined by the operator
// class, not by this node.
type BinaryExpr struct {
	Op    token.Token
	Left  Expr
	Right Expr
	Pos_  token.Pos
}

func (n *BinaryExpr) Pos() token.Pos { return n.Pos_ }
func (*BinaryExpr) exprNode()        {}

// UnaryExpr is a prefix unary operator, currently only `-x` (negate).
type UnaryExpr struct {
	Op    token.Token
	Right Expr
	Pos_  token.Pos
}

func (n *UnaryExpr) Pos() token.Pos { return n.Pos_ }
func (*UnaryExpr) exprNode()        {}

// AssignExpr is `lhs = rhs`, where lhs must resolve to a name or an access
// expression.
type AssignExpr struct {
	Left  Expr
	Right Expr
	Pos_  token.Pos
}

func (n *AssignExpr) Pos() token.Pos { return n.Pos_ }
func (*AssignExpr) exprNode()        {}

// CallExpr is `callee(args...)`. The callee must be a bare name resolving
// to either a native or a user routine.
type CallExpr struct {
	Callee *NameExpr
	Args   []Expr
	Pos_   token.Pos
}

func (n *CallExpr) Pos() token.Pos { return n.Pos_ }
func (*CallExpr) exprNode()        {}

// AccessExpr is `left::right`, a field/index access. The opcode it lowers
// to is reserved.
type AccessExpr struct {
	Left  Expr
	Right Expr
	Pos_  token.Pos
}

func (n *AccessExpr) Pos() token.Pos { return n.Pos_ }
func (*AccessExpr) exprNode()        {}

// NameExpr is a bare identifier reference: a local, a parameter, a routine,
// or a native function name, disambiguated by lang/semantics and resolved
// to a Locator by lang/compiler.
type NameExpr struct {
	Name string
	Pos_ token.Pos
}

func (n *NameExpr) Pos() token.Pos { return n.Pos_ }
func (*NameExpr) exprNode()        {}

// BoolLit, IntLit, FloatLit, and StringLit are primitive literals. Each
// carries its raw source lexeme: the compiler interns constants by lexeme,
// not by decoded value.
type (
	BoolLit struct {
		Lit  string
		Pos_ token.Pos
	}
	IntLit struct {
		Lit  string
		Pos_ token.Pos
	}
	FloatLit struct {
		Lit  string
		Pos_ token.Pos
	}
	StringLit struct {
		Lit  string
		Pos_ token.Pos
	}
)

func (n *BoolLit) Pos() token.Pos   { return n.Pos_ }
func (*BoolLit) exprNode()          {}
func (n *IntLit) Pos() token.Pos    { return n.Pos_ }
func (*IntLit) exprNode()           {}
func (n *FloatLit) Pos() token.Pos  { return n.Pos_ }
func (*FloatLit) exprNode()         {}
func (n *StringLit) Pos() token.Pos { return n.Pos_ }
func (*StringLit) exprNode()        {}
