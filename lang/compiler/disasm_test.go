package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrkWithT/ExpliceLang/lang/parser"
	"github.com/DrkWithT/ExpliceLang/lang/semantics"
)

func compileSrc(t *testing.T, src string) *XpliceProgram {
	t.Helper()
	ch, err := parser.ParseChunk([]byte(src))
	require.NoError(t, err)
	hints, err := semantics.Analyze(ch)
	require.NoError(t, err)
	prog, err := CompileChunk(ch, hints)
	require.NoError(t, err)
	return prog
}

func TestDasmMinimalProgram(t *testing.T) {
	prog := compileSrc(t, `func main(): int { return 0; }`)

	b, err := Dasm(prog)
	require.NoError(t, err)
	s := string(b)

	assert.Contains(t, s, "program: entry #0")
	assert.Contains(t, s, "routine: #0")
	assert.Contains(t, s, "constants:")
	assert.Contains(t, s, "int 0")
	assert.Contains(t, s, "load_const consts:0")
	assert.Contains(t, s, "ret temp_stack:0")
}

func TestDasmRoutinesInOrder(t *testing.T) {
	prog := compileSrc(t, `
func f(): int { return 1; }
func main(): int { return f(); }`)

	b, err := Dasm(prog)
	require.NoError(t, err)
	s := string(b)

	assert.Less(t, strings.Index(s, "routine: #0"), strings.Index(s, "routine: #1"))
	assert.Contains(t, s, "call routines:0")
}

func TestDecodeStepErrors(t *testing.T) {
	_, _, err := DecodeStep(nil, 0)
	require.Error(t, err)

	_, _, err = DecodeStep([]byte{byte(maxOpcode)}, 0)
	require.Error(t, err)

	// push has a 6-byte layout; a 3-byte stream is truncated
	_, _, err = DecodeStep([]byte{byte(OpPush), 0, 0}, 0)
	require.Error(t, err)
}
