// Package ast defines the abstract syntax tree produced by lang/parser and
// consumed, read-only, by lang/semantics and lang/compiler. Node kinds are
// plain structs dispatched by type switch; there is no visitor interface.
package ast

import "github.com/DrkWithT/ExpliceLang/lang/token"

// Node is implemented by every AST node so diagnostics can report a source
// position.
type Node interface {
	Pos() token.Pos
}

// Param is a single declared function parameter: a name and its primitive
// type token (BOOL_TY, INT_TY, FLOAT_TY, STRING_TY).
type Param struct {
	Name string
	Type token.Token
	Pos_ token.Pos
}

func (p Param) Pos() token.Pos { return p.Pos_ }

// Chunk is the root of a parsed Xplice source file: zero or more imports,
// zero or more native-function declarations, then one or more function
// declarations.
type Chunk struct {
	Imports []*Import
	Natives []*UseFunc
	Funcs   []*FuncDecl
}

func (c *Chunk) Pos() token.Pos {
	if len(c.Funcs) > 0 {
		return c.Funcs[0].Pos_
	}
	return token.NoPos
}

// Import is a top-level `import <name>;` declaration. Module linking
// across translation units is stubbed: the declaration parses but is not
// checked by lang/semantics and has no further effect.
type Import struct {
	Name string
	Pos_ token.Pos
}

func (n *Import) Pos() token.Pos { return n.Pos_ }

// UseFunc is a top-level `use func <name>(params): <type>;` declaration that
// binds a host-provided native function for the compiler to resolve calls
// against.
type UseFunc struct {
	Name    string
	Params  []Param
	RetType token.Token
	Pos_    token.Pos
}

func (n *UseFunc) Pos() token.Pos { return n.Pos_ }

// FuncDecl is a top-level `func <name>(params): <type> { ... }` routine.
type FuncDecl struct {
	Name    string
	Params  []Param
	RetType token.Token
	Body    *Block
	Pos_    token.Pos
}

func (n *FuncDecl) Pos() token.Pos { return n.Pos_ }

// Block is a brace-delimited sequence of statements.
type Block struct {
	Stmts []Stmt
	Pos_  token.Pos
}

func (n *Block) Pos() token.Pos { return n.Pos_ }
