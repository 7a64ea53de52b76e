package machine

import (
	"fmt"

	"github.com/DrkWithT/ExpliceLang/lang/compiler"
)

// NativeFunc is the host-side shape of a native routine. It pushes exactly
// one result Value via VM.PushFromNative and returns the Errcode that
// becomes the VM's exit_status for that call.
type NativeFunc func(vm *VM, args []compiler.Value) compiler.Errcode

// NativeRegistry is an id-indexed dispatch table of host routines. Ids are
// dense from 0, matching the order lang/semantics assigned to `use func`
// declarations, so call_native targets resolve without any name lookup at
// call time.
type NativeRegistry struct {
	byID map[int]NativeFunc
}

func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{byID: make(map[int]NativeFunc)}
}

// AddNative records fn under id. Ids must be assigned densely from 0 by the
// caller (mirroring semantics.NativeHints' assignment order); AddNative
// itself does not enforce density since it has no visibility into the
// whole table being built.
func (r *NativeRegistry) AddNative(id int, fn NativeFunc) {
	r.byID[id] = fn
}

func (r *NativeRegistry) lookup(id int) (NativeFunc, bool) {
	fn, ok := r.byID[id]
	return fn, ok
}

// DefaultNatives builds the registry of built-in natives: id 0 print_int,
// id 1 print_string. Embedders that add their own `use func` natives start
// from this and AddNative past id 1.
func DefaultNatives() *NativeRegistry {
	r := NewNativeRegistry()
	r.AddNative(0, PrintInt)
	r.AddNative(1, PrintString)
	return r
}

// PrintInt is native id 0: print_int(int) -> int. Writes the integer
// followed by a space to stdout and pushes Int(0) on success, Int(1) if
// the argument is not an Int.
func PrintInt(vm *VM, args []compiler.Value) compiler.Errcode {
	if len(args) != 1 {
		vm.PushFromNative(compiler.Int(1))
		return compiler.ErrGeneral
	}
	n, ok := args[0].AsInt()
	if !ok {
		vm.PushFromNative(compiler.Int(1))
		return compiler.ErrNormal
	}
	fmt.Fprintf(vm.Stdout, "%d ", n)
	vm.PushFromNative(compiler.Int(0))
	return compiler.ErrNormal
}

// PrintString is native id 1: print_string(string) -> int. Xplice has no
// runtime string Value yet, so this accepts any Value and prints its
// textual form followed by a space, pushing Int(0). There is no type-error
// path: Int(1) is pushed only for a wrong argument count.
func PrintString(vm *VM, args []compiler.Value) compiler.Errcode {
	if len(args) != 1 {
		vm.PushFromNative(compiler.Int(1))
		return compiler.ErrGeneral
	}
	fmt.Fprintf(vm.Stdout, "%s ", args[0].String())
	vm.PushFromNative(compiler.Int(0))
	return compiler.ErrNormal
}
