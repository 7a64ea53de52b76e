// Package compiler lowers a type-checked AST into a per-routine control-flow
// graph (GraphPass) and then linearizes each graph into a bytecode Chunk
// (EmitCodePass). It also owns the runtime Value model (values.go), since
// Chunk's constant pool is typed by Value and lang/machine imports this
// package rather than the reverse.
package compiler

import "fmt"

// Opcode is a closed enumeration of the bytecode operations a Chunk may
// contain. Each opcode has a fixed arity in {0,1,2,3}; see Arity and the
// wire encoding in emitpass.go.
type Opcode uint8

//nolint:revive
const (
	OpHalt Opcode = iota
	OpNoop
	OpReplace
	OpPush
	OpPop
	OpPeek
	OpLoadConst
	OpMakeArray
	OpMakeTuple
	OpAccessField
	OpNegate
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpGt
	OpLogAnd
	OpLogOr
	OpJump
	OpJumpNotIf
	OpRet
	OpCall
	OpCallNative

	maxOpcode
)

var opcodeNames = [...]string{
	OpHalt:        "halt",
	OpNoop:        "noop",
	OpReplace:     "replace",
	OpPush:        "push",
	OpPop:         "pop",
	OpPeek:        "peek",
	OpLoadConst:   "load_const",
	OpMakeArray:   "make_array",
	OpMakeTuple:   "make_tuple",
	OpAccessField: "access_field",
	OpNegate:      "negate",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpCmpEq:       "cmp_eq",
	OpCmpNe:       "cmp_ne",
	OpCmpLt:       "cmp_lt",
	OpCmpGt:       "cmp_gt",
	OpLogAnd:      "log_and",
	OpLogOr:       "log_or",
	OpJump:        "jump",
	OpJumpNotIf:   "jump_not_if",
	OpRet:         "ret",
	OpCall:        "call",
	OpCallNative:  "call_native",
}

func (op Opcode) String() string {
	if op < maxOpcode {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// IsReservedUnsupported reports whether op is emittable but always raises
// an error when the VM dispatches it: the object-heap operations are
// reserved for future work.
func (op Opcode) IsReservedUnsupported() bool {
	return op == OpMakeArray || op == OpMakeTuple || op == OpAccessField
}

// arity is the fixed number of Locator arguments the opcode's encoded
// instruction carries. This drives both Step validation and the wire size
// table in emitpass.go (1 + 5*arity bytes).
var opcodeArity = [...]int{
	OpHalt:        0,
	OpNoop:        0,
	OpReplace:     1,
	OpPush:        1,
	OpPop:         1,
	OpPeek:        1,
	OpLoadConst:   1,
	OpMakeArray:   1,
	OpMakeTuple:   1,
	OpAccessField: 2,
	OpNegate:      0,
	OpAdd:         0,
	OpSub:         0,
	OpMul:         0,
	OpDiv:         0,
	OpCmpEq:       0,
	OpCmpNe:       0,
	OpCmpLt:       0,
	OpCmpGt:       0,
	OpLogAnd:      0,
	OpLogOr:       0,
	OpJump:        1,
	OpJumpNotIf:   1,
	OpRet:         1,
	OpCall:        2,
	OpCallNative:  3,
}

// Arity returns the fixed operand count of op, or -1 if op is out of range.
func Arity(op Opcode) int {
	if op >= maxOpcode {
		return -1
	}
	return opcodeArity[op]
}

// RegionTag designates where a Locator's id points.
type RegionTag uint8

const (
	RegionConsts RegionTag = iota
	RegionTempStack
	RegionObjHeap
	RegionRoutines
	RegionNatives
	RegionFrameSlot
	RegionNone
)

var regionNames = [...]string{
	RegionConsts:    "consts",
	RegionTempStack: "temp_stack",
	RegionObjHeap:   "obj_heap",
	RegionRoutines:  "routines",
	RegionNatives:   "natives",
	RegionFrameSlot: "frame_slot",
	RegionNone:      "none",
}

func (r RegionTag) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("illegal region (%d)", r)
}

// Locator names a slot, constant, routine, native, parameter, or heap
// descriptor: (region, id). It is used both inside Steps and inside Value
// for callable references.
type Locator struct {
	Region RegionTag
	ID     int32
}

// NoLocator is the "take stack top" / "no target" sentinel used by ret and
// by a handful of reserved fields.
var NoLocator = Locator{Region: RegionNone, ID: -1}
