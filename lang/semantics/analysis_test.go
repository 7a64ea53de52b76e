package semantics

import (
	"testing"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	ch, err := parser.ParseChunk([]byte(src))
	require.NoError(t, err)
	return ch
}

func TestAnalyzeAcceptsValidProgram(t *testing.T) {
	src := `
use func print_int(x: int): int;
func add(a: int, b: int): int {
	return a + b;
}
func main(): int {
	let x: int = add(1, 2);
	print_int(x);
	return 0;
}`
	ch := mustParse(t, src)
	hints, err := Analyze(ch)
	require.NoError(t, err)
	require.Contains(t, hints, "print_int")
	require.Equal(t, 0, hints["print_int"].ID)
}

func TestAnalyzeRejectsUndefinedName(t *testing.T) {
	ch := mustParse(t, `func main(): int { return y; }`)
	_, err := Analyze(ch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined name")
}

func TestAnalyzeRejectsTypeMismatch(t *testing.T) {
	ch := mustParse(t, `func main(): int { let x: int = true; return 0; }`)
	_, err := Analyze(ch)
	require.Error(t, err)
}

func TestAnalyzeRejectsMissingMain(t *testing.T) {
	ch := mustParse(t, `func other(): int { return 0; }`)
	_, err := Analyze(ch)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"main"`)
}

func TestAnalyzeRejectsConstReassignment(t *testing.T) {
	ch := mustParse(t, `func main(): int { const x: int = 1; x = 2; return x; }`)
	_, err := Analyze(ch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "constant")
}

func TestAnalyzeRejectsArityMismatch(t *testing.T) {
	ch := mustParse(t, `
use func print_int(x: int): int;
func main(): int { print_int(1, 2); return 0; }`)
	_, err := Analyze(ch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "argument")
}
