package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepFor builds a well-formed Step for op with distinguishable locator
// arguments.
func stepFor(op Opcode) Step {
	locs := []Locator{
		{Region: RegionTempStack, ID: 11},
		{Region: RegionConsts, ID: 222},
		{Region: RegionFrameSlot, ID: 3},
	}
	var s Step
	s.Op = op
	for i := 0; i < Arity(op); i++ {
		s.Args[i] = locs[i]
	}
	return s
}

func TestEncodingRoundTripEveryOpcode(t *testing.T) {
	for op := OpHalt; op < maxOpcode; op++ {
		// jumps overwrite their id field with a node-resolved byte offset,
		// exercised separately in the branch tests below.
		if op == OpJump || op == OpJumpNotIf {
			continue
		}
		t.Run(op.String(), func(t *testing.T) {
			in := stepFor(op)
			g := &FlowGraph{}
			g.AddUnit(in)
			chunk, err := EmitCode(g, nil)
			require.NoError(t, err)

			require.Len(t, chunk.Bytecode, 1+5*Arity(op))
			out, next, err := DecodeStep(chunk.Bytecode, 0)
			require.NoError(t, err)
			assert.Equal(t, in, out)
			assert.Equal(t, len(chunk.Bytecode), next)
		})
	}
}

func TestEncodingLittleEndianIDs(t *testing.T) {
	g := &FlowGraph{}
	g.AddUnit(Unary(OpPush, Locator{Region: RegionTempStack, ID: 0x01020304}))
	chunk, err := EmitCode(g, nil)
	require.NoError(t, err)

	require.Len(t, chunk.Bytecode, 6)
	assert.Equal(t, byte(OpPush), chunk.Bytecode[0])
	assert.Equal(t, byte(RegionTempStack), chunk.Bytecode[1])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, chunk.Bytecode[2:6])
}

func TestIllFormedStepDowngradesToNoop(t *testing.T) {
	bad := Step{Op: OpAdd, Args: [3]Locator{{Region: RegionConsts, ID: 1}}}
	require.False(t, bad.Valid())

	g := &FlowGraph{}
	g.AddUnit(bad)
	chunk, err := EmitCode(g, nil)
	require.NoError(t, err)

	require.Len(t, chunk.Bytecode, 1)
	assert.Equal(t, byte(OpNoop), chunk.Bytecode[0])
}

// decodeAll walks the whole byte stream and returns every decoded step
// along with the byte offset it starts at.
func decodeAll(t *testing.T, code []byte) (steps []Step, offsets []int) {
	t.Helper()
	pos := 0
	for pos < len(code) {
		s, next, err := DecodeStep(code, pos)
		require.NoError(t, err)
		steps = append(steps, s)
		offsets = append(offsets, pos)
		pos = next
	}
	return steps, offsets
}

func TestBranchTargetsResolveForward(t *testing.T) {
	// node 0: jump_not_if -> node 3 (the falsy side); node 1 is the
	// juncture; truthy node 2 ends with jump -> node 4 (past the branch),
	// mirroring GraphPass's if shape.
	g := &FlowGraph{}
	n0 := g.AddUnit(Unary(OpJumpNotIf, Locator{Region: RegionNone, ID: 3}))
	j := g.AddJuncture()
	n1 := g.AddUnit(Unary(OpJump, Locator{Region: RegionNone, ID: 4}))
	n2 := g.AddUnit(Nonary(OpNoop))
	n3 := g.AddUnit(Unary(OpRet, NoLocator))
	g.ConnectUnit(n0, j)
	g.ConnectJuncture(j, n1, n2)
	g.ConnectUnit(n1, n2)
	g.ConnectUnit(n2, n3)

	chunk, err := EmitCode(g, nil)
	require.NoError(t, err)

	steps, offsets := decodeAll(t, chunk.Bytecode)
	require.Len(t, steps, 4)
	assert.Equal(t, OpJumpNotIf, steps[0].Op)
	assert.Equal(t, OpJump, steps[1].Op)
	assert.Equal(t, OpNoop, steps[2].Op)
	assert.Equal(t, OpRet, steps[3].Op)

	// jump_not_if lands on the falsy entry (the noop), jump lands past it.
	assert.Equal(t, int32(offsets[2]), steps[0].Args[0].ID)
	assert.Equal(t, int32(offsets[3]), steps[1].Args[0].ID)

	for _, s := range steps[:2] {
		assert.GreaterOrEqual(t, s.Args[0].ID, int32(0))
		assert.Less(t, int(s.Args[0].ID), len(chunk.Bytecode))
	}
}

func TestBranchTargetBackEdge(t *testing.T) {
	// node 1 is a loop header; node 3's jump targets it after it has
	// already been emitted, so the patch resolves immediately.
	g := &FlowGraph{}
	n0 := g.AddUnit(Nonary(OpNoop))
	n1 := g.AddUnit(Unary(OpJumpNotIf, Locator{Region: RegionNone, ID: 4}))
	j := g.AddJuncture()
	n3 := g.AddUnit(Unary(OpJump, Locator{Region: RegionNone, ID: 1}))
	n4 := g.AddUnit(Unary(OpRet, NoLocator))
	g.ConnectUnit(n0, n1)
	g.ConnectUnit(n1, j)
	g.ConnectJuncture(j, n3, n4)
	g.ConnectUnit(n3, n1) // back-edge: a genuine cycle
	_ = n4

	chunk, err := EmitCode(g, nil)
	require.NoError(t, err)

	steps, offsets := decodeAll(t, chunk.Bytecode)
	require.Len(t, steps, 4)

	var jmp Step
	var jmpAt int
	for i, s := range steps {
		if s.Op == OpJump {
			jmp, jmpAt = s, offsets[i]
		}
	}
	require.Equal(t, OpJump, jmp.Op)
	assert.Equal(t, int32(offsets[1]), jmp.Args[0].ID, "back-edge must land on the loop header")
	assert.Less(t, int(jmp.Args[0].ID), jmpAt, "back-edge target precedes the jump itself")
}

func TestEmitCycleTerminates(t *testing.T) {
	// two units pointing at each other: without the visited set this would
	// never terminate.
	g := &FlowGraph{}
	n0 := g.AddUnit(Nonary(OpNoop))
	n1 := g.AddUnit(Nonary(OpNoop))
	g.ConnectUnit(n0, n1)
	g.ConnectUnit(n1, n0)

	chunk, err := EmitCode(g, nil)
	require.NoError(t, err)
	assert.Len(t, chunk.Bytecode, 2)
}

func TestEmitUnreachableBranchTargetFails(t *testing.T) {
	g := &FlowGraph{}
	g.AddUnit(Unary(OpJump, Locator{Region: RegionNone, ID: 7}))
	_, err := EmitCode(g, nil)
	require.Error(t, err)
}
