package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrkWithT/ExpliceLang/lang/compiler"
)

func runSource(t *testing.T, src string) (*VM, compiler.Errcode, *bytes.Buffer, error) {
	t.Helper()
	prog, err := compiler.CompileSource([]byte(src))
	require.NoError(t, err)

	var out bytes.Buffer
	vm := New(prog, DefaultNatives())
	vm.Stdout = &out
	vm.Stderr = &out

	status, err := vm.Run()
	return vm, status, &out, err
}

func TestRunMainReturnsZero(t *testing.T) {
	_, status, out, err := runSource(t, `func main(): int { return 0; }`)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
	assert.Empty(t, out.String())
}

func TestRunPrintInt(t *testing.T) {
	src := `use func print_int(x: int): int; func main(): int { print_int(7); return 0; }`
	_, status, out, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
	assert.Contains(t, out.String(), "7 ")
}

func TestRunIfElse(t *testing.T) {
	src := `func main(): int { if (1 < 2) { return 0; } else { return 1; } }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunIfElseFalsySide(t *testing.T) {
	src := `func main(): int { if (2 < 1) { return 1; } else { return 0; } }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunLetAndEquality(t *testing.T) {
	src := `func main(): int { let x: int = 3 + 4; if (x == 7) { return 0; } return 1; }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunCallSubtraction(t *testing.T) {
	src := `func f(a: int, b: int): int { return a - b; } func main(): int { return f(10, 3) - 7; }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunDivideByZero(t *testing.T) {
	_, status, _, err := runSource(t, `func main(): int { return 1 / 0; }`)
	require.Error(t, err)
	assert.Equal(t, compiler.ErrArithmetic, status)
	assert.Contains(t, err.Error(), "Cannot divide by zero")
}

func TestRunWhileLoop(t *testing.T) {
	src := `func main(): int { let x: int = 0; while (x < 3) { x = x + 1; } return x - 3; }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunLeanRightOperators(t *testing.T) {
	// sub, div, < and > evaluate right-then-left in the emitted code; the
	// dispatch pop order must agree so source order is preserved.
	src := `func main(): int {
	if (10 - 3 == 7) {
		if (10 / 2 == 5) {
			if (3 > 2) {
				if (2 < 3) {
					return 0;
				}
			}
		}
	}
	return 1;
}`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunLogicalOperators(t *testing.T) {
	src := `func main(): int {
	if (true && false || true) {
		return 0;
	}
	return 1;
}`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestRunNegate(t *testing.T) {
	src := `func main(): int { let x: int = -3; return x + 3; }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestTerminationNonZeroReturn(t *testing.T) {
	_, status, _, err := runSource(t, `func main(): int { return 3; }`)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrGeneral, status)
}

func TestFrameIntegrityAfterCalls(t *testing.T) {
	src := `
func g(n: int): int { return n * 2; }
func f(a: int, b: int): int { return g(a) + g(b); }
func main(): int { return f(1, 2) - 6; }`
	vm, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)

	// every call/ret pair balanced: only the entry routine's return value
	// remains on the stack, and no frame survives.
	assert.Len(t, vm.values, 1)
	assert.Empty(t, vm.frames)
	n, ok := vm.values[0].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(0), n)
}

func TestRunRecursion(t *testing.T) {
	src := `
func fact(n: int): int {
	if (n < 2) { return 1; }
	return fact(n - 1) * n;
}
func main(): int { return fact(5) - 120; }`
	_, status, _, err := runSource(t, src)
	require.NoError(t, err)
	assert.Equal(t, compiler.ErrNormal, status)
}

func TestReservedOpcodeFails(t *testing.T) {
	// hand-assemble a chunk whose only instruction is the reserved
	// make_array, which must raise at dispatch.
	code := []byte{byte(compiler.OpMakeArray), byte(compiler.RegionNone), 0, 0, 0, 0}
	prog := &compiler.XpliceProgram{
		FuncChunks:  map[int]compiler.Chunk{0: {Bytecode: code}},
		EntryFuncID: 0,
	}
	vm := New(prog, DefaultNatives())
	status, err := vm.Run()
	require.Error(t, err)
	assert.Equal(t, compiler.ErrAccess, status)
}

func TestDecodeI32(t *testing.T) {
	assert.Equal(t, int32(0x01020304), decodeI32(0x04, 0x03, 0x02, 0x01))
	assert.Equal(t, int32(-1), decodeI32(0xff, 0xff, 0xff, 0xff))
	assert.Equal(t, int32(0), decodeI32(0, 0, 0, 0))
}
