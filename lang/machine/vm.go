// Package machine implements the stack-based interpreter that executes a
// compiler.XpliceProgram: fetch/decode/dispatch over a routine's Chunk,
// call frames, a unified value stack, native-function dispatch, and
// structured termination. There are no coroutines and no contexts: one VM
// runs one program to completion on the calling goroutine.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/DrkWithT/ExpliceLang/lang/compiler"
)

// VM is the interpreter state: the compiled program, the native registry,
// the frame stack, the shared value stack, the current instruction
// pointer, and the final exit status. It is single-threaded and
// non-preemptive: embedders wanting to run programs concurrently must
// instantiate independent VMs.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer

	program *compiler.XpliceProgram
	natives *NativeRegistry

	frames []CallFrame
	values []compiler.Value
	iptr   int

	exitStatus compiler.Errcode
}

// New constructs a VM ready to Run prog. natives must already contain every
// native id the program's call_native instructions target.
func New(prog *compiler.XpliceProgram, natives *NativeRegistry) *VM {
	return &VM{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		program: prog,
		natives: natives,
	}
}

// PeekStackTop is the host-facing façade native implementations use to
// read the top of the operand stack without consuming it.
func (vm *VM) PeekStackTop() compiler.Value {
	return vm.values[len(vm.values)-1]
}

// PushFromNative is the host-facing entry point a native uses to push its
// single result Value; every native must call this exactly once before
// returning.
func (vm *VM) PushFromNative(v compiler.Value) {
	vm.values = append(vm.values, v)
}

func (vm *VM) push(v compiler.Value) { vm.values = append(vm.values, v) }

func (vm *VM) pop() compiler.Value {
	n := len(vm.values) - 1
	v := vm.values[n]
	vm.values = vm.values[:n]
	return v
}

func (vm *VM) curFrame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) fail(code compiler.Errcode, format string, args ...interface{}) error {
	err := &compiler.RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...)}
	vm.exitStatus = code
	return err
}

// Run executes the VM's program to completion, starting at EntryFuncID, and
// returns the final Errcode or a RuntimeError describing why dispatch
// aborted.
func (vm *VM) Run() (compiler.Errcode, error) {
	entry := vm.program.EntryFuncID
	// The entry sentinel sits at index 0, so the bottom frame's temp_stack
	// region begins right past it, same as dispatchCall captures it.
	vm.values = []compiler.Value{compiler.FromLocator(compiler.Locator{Region: compiler.RegionRoutines, ID: int32(entry)})}
	vm.frames = []CallFrame{{CalleeID: entry, CalleePos: 0, CalleeFrameBase: len(vm.values)}}
	vm.iptr = 0

	for len(vm.frames) > 0 {
		if err := vm.step(); err != nil {
			return vm.exitStatus, err
		}
	}

	return vm.exitStatus, nil
}

func (vm *VM) curChunk() compiler.Chunk {
	return vm.program.FuncChunks[vm.curFrame().CalleeID]
}

// step decodes and dispatches exactly one instruction.
func (vm *VM) step() error {
	chunk := vm.curChunk()
	code := chunk.Bytecode
	if vm.iptr < 0 || vm.iptr >= len(code) {
		return vm.fail(compiler.ErrGeneral, "instruction pointer %d out of range for routine #%d", vm.iptr, vm.curFrame().CalleeID)
	}

	op := compiler.Opcode(code[vm.iptr])
	arity := compiler.Arity(op)
	if arity < 0 {
		return vm.fail(compiler.ErrGeneral, "illegal opcode byte %d at offset %d", code[vm.iptr], vm.iptr)
	}

	pos := vm.iptr + 1
	var args [3]compiler.Locator
	for i := 0; i < arity; i++ {
		args[i], pos = decodeLocator(code, pos)
	}
	size := 1 + 5*arity

	if op.IsReservedUnsupported() {
		return vm.fail(compiler.ErrAccess, "opcode %s is reserved and not implemented", op)
	}

	switch op {
	case compiler.OpHalt:
		vm.frames = vm.frames[:0]
		return nil

	case compiler.OpNoop:
		vm.iptr += size

	case compiler.OpReplace:
		vm.dispatchReplace(args[0])
		vm.iptr += size

	case compiler.OpPush, compiler.OpPeek:
		if err := vm.dispatchPush(args[0], chunk); err != nil {
			return err
		}
		vm.iptr += size

	case compiler.OpLoadConst:
		v, ok := chunk.Constants[int(args[0].ID)]
		if !ok {
			return vm.fail(compiler.ErrGeneral, "undefined constant id %d", args[0].ID)
		}
		vm.push(v)
		vm.iptr += size

	case compiler.OpPop:
		n := int(args[0].ID)
		if n < 0 || n > len(vm.values) {
			return vm.fail(compiler.ErrTempStack, "pop(%d) underflows the operand stack", n)
		}
		vm.values = vm.values[:len(vm.values)-n]
		vm.iptr += size

	case compiler.OpNegate:
		v, err := compiler.Negate(vm.pop())
		if err != nil {
			return vm.failFrom(err)
		}
		vm.push(v)
		vm.iptr += size

	case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv:
		if err := vm.dispatchArith(op); err != nil {
			return err
		}
		vm.iptr += size

	case compiler.OpCmpEq, compiler.OpCmpNe, compiler.OpCmpLt, compiler.OpCmpGt:
		if err := vm.dispatchCompare(op); err != nil {
			return err
		}
		vm.iptr += size

	case compiler.OpLogAnd, compiler.OpLogOr:
		if err := vm.dispatchLogical(op); err != nil {
			return err
		}
		vm.iptr += size

	case compiler.OpJump:
		vm.iptr = int(args[0].ID)

	case compiler.OpJumpNotIf:
		cond := vm.pop()
		b, ok := cond.AsBool()
		if !ok {
			return vm.fail(compiler.ErrGeneral, "jump_not_if requires a bool operand, got %s", cond.Kind())
		}
		if !b {
			vm.iptr = int(args[0].ID)
		} else {
			vm.iptr += size
		}

	case compiler.OpRet:
		if err := vm.dispatchRet(args[0], chunk); err != nil {
			return err
		}

	case compiler.OpCall:
		if err := vm.dispatchCall(args[0], args[1], size); err != nil {
			return err
		}

	case compiler.OpCallNative:
		if err := vm.dispatchCallNative(args[1], args[2]); err != nil {
			return err
		}
		vm.iptr += size

	default:
		return vm.fail(compiler.ErrGeneral, "unimplemented opcode %s", op)
	}

	return nil
}

func (vm *VM) failFrom(err error) error {
	if rerr, ok := err.(*compiler.RuntimeError); ok {
		vm.exitStatus = rerr.Code
	} else {
		vm.exitStatus = compiler.ErrGeneral
	}
	return err
}

// dispatchReplace pops the top value into the assigned variable's slot: a
// temp_stack slot relative to the frame base, or for a parameter the
// frame_slot argument itself.
func (vm *VM) dispatchReplace(loc compiler.Locator) {
	fr := vm.curFrame()
	if loc.Region == compiler.RegionFrameSlot {
		fr.Args[loc.ID] = vm.pop()
		return
	}
	vm.values[fr.CalleeFrameBase+int(loc.ID)] = vm.pop()
}

// dispatchPush implements push(loc)/peek(loc): both read a value by region
// and push it; peek is non-destructive the same way push already is,
// nothing is popped from the source in either case.
func (vm *VM) dispatchPush(loc compiler.Locator, chunk compiler.Chunk) error {
	fr := vm.curFrame()
	switch loc.Region {
	case compiler.RegionConsts:
		v, ok := chunk.Constants[int(loc.ID)]
		if !ok {
			return vm.fail(compiler.ErrGeneral, "undefined constant id %d", loc.ID)
		}
		vm.push(v)
	case compiler.RegionTempStack:
		vm.push(vm.values[fr.CalleeFrameBase+int(loc.ID)])
	case compiler.RegionRoutines:
		vm.push(compiler.FromLocator(loc))
	case compiler.RegionFrameSlot:
		if int(loc.ID) >= len(fr.Args) {
			return vm.fail(compiler.ErrCallStack, "argument slot %d out of range (%d args)", loc.ID, len(fr.Args))
		}
		vm.push(fr.Args[loc.ID])
	case compiler.RegionObjHeap:
		return vm.fail(compiler.ErrTempStack, "obj_heap locators are reserved and not implemented")
	default:
		return vm.fail(compiler.ErrTempStack, "cannot push from region %s", loc.Region)
	}
	return nil
}

// dispatchArith pops both operands and applies op. GraphPass evaluates
// sub/div operands right-then-left ("lean right"), leaving the
// source-order lhs on top, so for those the first pop is the lhs; add/mul
// evaluate left-then-right and the first pop is the rhs.
func (vm *VM) dispatchArith(op compiler.Opcode) error {
	var x, y compiler.Value
	switch op {
	case compiler.OpSub, compiler.OpDiv:
		x = vm.pop()
		y = vm.pop()
	default:
		y = vm.pop()
		x = vm.pop()
	}
	var v compiler.Value
	var err error
	switch op {
	case compiler.OpAdd:
		v, err = compiler.Add(x, y)
	case compiler.OpSub:
		v, err = compiler.Sub(x, y)
	case compiler.OpMul:
		v, err = compiler.Mul(x, y)
	case compiler.OpDiv:
		v, err = compiler.Div(x, y)
	}
	if err != nil {
		return vm.failFrom(err)
	}
	vm.push(v)
	return nil
}

// dispatchCompare mirrors dispatchArith's pop-order rule: cmp_lt/cmp_gt
// operands were evaluated right-then-left, so their first pop is the lhs.
func (vm *VM) dispatchCompare(op compiler.Opcode) error {
	var x, y compiler.Value
	switch op {
	case compiler.OpCmpLt, compiler.OpCmpGt:
		x = vm.pop()
		y = vm.pop()
	default:
		y = vm.pop()
		x = vm.pop()
	}
	var v compiler.Value
	var err error
	switch op {
	case compiler.OpCmpEq:
		v, err = compiler.CompareEq(x, y)
	case compiler.OpCmpNe:
		v, err = compiler.CompareNe(x, y)
	case compiler.OpCmpLt:
		v, err = compiler.CompareLt(x, y)
	case compiler.OpCmpGt:
		v, err = compiler.CompareGt(x, y)
	}
	if err != nil {
		return vm.failFrom(err)
	}
	vm.push(v)
	return nil
}

func (vm *VM) dispatchLogical(op compiler.Opcode) error {
	y := vm.pop()
	x := vm.pop()
	var v compiler.Value
	var err error
	if op == compiler.OpLogAnd {
		v, err = compiler.LogicalAnd(x, y)
	} else {
		v, err = compiler.LogicalOr(x, y)
	}
	if err != nil {
		return vm.failFrom(err)
	}
	vm.push(v)
	return nil
}

// dispatchRet computes the return value, pops values down through and
// including the callable-reference sentinel for the current frame, pushes
// the return value, pops the call frame, and resumes the caller (or sets
// iptr=0 and lets the empty frame stack end the loop).
func (vm *VM) dispatchRet(loc compiler.Locator, chunk compiler.Chunk) error {
	fr := *vm.curFrame()

	result, err := vm.resolveRetValue(loc, fr, chunk)
	if err != nil {
		return err
	}

	// Unwind down to (and including) this frame's sentinel at frameBase-1.
	vm.values = vm.values[:fr.CalleeFrameBase-1]
	vm.push(result)

	vm.frames = vm.frames[:len(vm.frames)-1]

	if len(vm.frames) == 0 {
		vm.iptr = 0
		if n, ok := result.AsInt(); ok && n == 0 {
			vm.exitStatus = compiler.ErrNormal
		} else if vm.exitStatus == compiler.ErrNormal {
			vm.exitStatus = compiler.ErrGeneral
		}
		return nil
	}

	vm.iptr = vm.curFrame().CalleePos
	return nil
}

func (vm *VM) resolveRetValue(loc compiler.Locator, fr CallFrame, chunk compiler.Chunk) (compiler.Value, error) {
	switch loc.Region {
	case compiler.RegionNone:
		return vm.pop(), nil
	case compiler.RegionTempStack:
		return vm.values[fr.CalleeFrameBase+int(loc.ID)], nil
	case compiler.RegionConsts:
		v, ok := chunk.Constants[int(loc.ID)]
		if !ok {
			return compiler.Value{}, vm.fail(compiler.ErrGeneral, "undefined constant id %d", loc.ID)
		}
		return v, nil
	case compiler.RegionFrameSlot:
		if int(loc.ID) >= len(fr.Args) {
			return compiler.Value{}, vm.fail(compiler.ErrCallStack, "argument slot %d out of range (%d args)", loc.ID, len(fr.Args))
		}
		return fr.Args[loc.ID], nil
	case compiler.RegionRoutines:
		return compiler.FromLocator(loc), nil
	default:
		return compiler.Value{}, vm.fail(compiler.ErrGeneral, "cannot resolve return value from region %s", loc.Region)
	}
}

// dispatchCall saves the return ip (past this 11-byte instruction) in the
// *current* frame, pops argc args, pushes a new callable-reference
// sentinel, captures the new frame base *after* pushing it, and pushes the
// new frame.
func (vm *VM) dispatchCall(callee, argcLoc compiler.Locator, instrSize int) error {
	argc := int(argcLoc.ID)
	if argc < 0 || argc > len(vm.values) {
		return vm.fail(compiler.ErrCallStack, "call with invalid argument count %d", argc)
	}

	vm.curFrame().CalleePos = vm.iptr + instrSize

	args := make([]compiler.Value, argc)
	for i := 0; i < argc; i++ {
		args[i] = vm.pop()
	}

	vm.push(compiler.FromLocator(compiler.Locator{Region: compiler.RegionRoutines, ID: callee.ID}))
	base := len(vm.values)

	if _, ok := vm.program.FuncChunks[int(callee.ID)]; !ok {
		return vm.fail(compiler.ErrCallStack, "call to undefined routine #%d", callee.ID)
	}

	vm.frames = append(vm.frames, CallFrame{
		Args:            args,
		CalleeID:        int(callee.ID),
		CalleePos:       0,
		CalleeFrameBase: base,
	})
	vm.iptr = 0
	return nil
}

// dispatchCallNative pops argc args and invokes the native; step then
// advances past this 16-byte instruction. The native's own Errcode becomes
// the VM's exit_status for that call.
func (vm *VM) dispatchCallNative(nativeID, argcLoc compiler.Locator) error {
	argc := int(argcLoc.ID)
	if argc < 0 || argc > len(vm.values) {
		return vm.fail(compiler.ErrCallStack, "call_native with invalid argument count %d", argc)
	}

	fn, ok := vm.natives.lookup(int(nativeID.ID))
	if !ok {
		return vm.fail(compiler.ErrCallStack, "call to undefined native #%d", nativeID.ID)
	}

	args := make([]compiler.Value, argc)
	for i := 0; i < argc; i++ {
		args[i] = vm.pop()
	}

	// The native's Errcode return becomes the VM's exit_status for this
	// call, but execution continues: the native has already
	// pushed its one result Value (by convention a sentinel Int(1) on
	// error), so the bytecode stream is not disrupted by a native-level
	// type error the way an arithmetic or stack-integrity error is.
	vm.exitStatus = fn(vm, args)
	return nil
}

// ExitStatus returns the last Errcode the VM settled on, valid once Run
// returns.
func (vm *VM) ExitStatus() compiler.Errcode { return vm.exitStatus }
