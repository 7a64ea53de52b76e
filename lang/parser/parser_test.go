package parser

import (
	"testing"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/stretchr/testify/require"
)

func TestParseChunkMinimal(t *testing.T) {
	ch, err := ParseChunk([]byte(`func main(): int { return 0; }`))
	require.NoError(t, err)
	require.Len(t, ch.Funcs, 1)
	require.Equal(t, "main", ch.Funcs[0].Name)
	require.Len(t, ch.Funcs[0].Body.Stmts, 1)

	ret, ok := ch.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Result.(*ast.IntLit)
	require.True(t, ok)
	require.Equal(t, "0", lit.Lit)
}

func TestParseChunkWithUseFuncAndCall(t *testing.T) {
	src := `use func print_int(x: int): int; func main(): int { print_int(7); return 0; }`
	ch, err := ParseChunk([]byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Natives, 1)
	require.Equal(t, "print_int", ch.Natives[0].Name)

	exprStmt, ok := ch.Funcs[0].Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Equal(t, "print_int", call.Callee.Name)
	require.Len(t, call.Args, 1)
}

func TestParseIfElse(t *testing.T) {
	src := `func main(): int { if (1 < 2) { return 0; } else { return 1; } }`
	ch, err := ParseChunk([]byte(src))
	require.NoError(t, err)

	ifStmt, ok := ch.Funcs[0].Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Alt)

	bin, ok := ifStmt.Test.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "<", bin.Op.String())
}

func TestParseAssignAndWhile(t *testing.T) {
	src := `func main(): int { let x: int = 0; while (x < 3) { x = x + 1; } return x; }`
	ch, err := ParseChunk([]byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Funcs[0].Body.Stmts, 3)

	while, ok := ch.Funcs[0].Body.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Stmts, 1)

	exprStmt := while.Body.Stmts[0].(*ast.ExprStmt)
	assign, ok := exprStmt.X.(*ast.AssignExpr)
	require.True(t, ok)
	_, ok = assign.Left.(*ast.NameExpr)
	require.True(t, ok)
}

func TestParseStringLiteral(t *testing.T) {
	src := `use func print_string(s: string): int; func main(): int { print_string("hi"); return 0; }`
	ch, err := ParseChunk([]byte(src))
	require.NoError(t, err)

	exprStmt := ch.Funcs[0].Body.Stmts[0].(*ast.ExprStmt)
	call := exprStmt.X.(*ast.CallExpr)
	lit, ok := call.Args[0].(*ast.StringLit)
	require.True(t, ok)
	require.Equal(t, "hi", lit.Lit)
}

func TestParseChunkReportsError(t *testing.T) {
	_, err := ParseChunk([]byte(`func main(: int { return 0; }`))
	require.Error(t, err)
}
