package machine

import "github.com/DrkWithT/ExpliceLang/lang/compiler"

// CallFrame records one active routine invocation: its arguments, which
// routine it is executing, where to resume the caller once it returns, and
// where its temp_stack region begins on the shared value stack. Keeping
// the base in the frame record means ret never has to scan the value
// stack for the sentinel.
type CallFrame struct {
	Args            []compiler.Value
	CalleeID        int
	CalleePos       int // byte offset to resume the caller at, once this frame returns
	CalleeFrameBase int // index into VM.values where this routine's temp_stack region starts
}
