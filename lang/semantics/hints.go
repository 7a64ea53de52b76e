package semantics

import "github.com/DrkWithT/ExpliceLang/lang/token"

// Signature describes a callable's parameter and return types, shared by
// native and user-routine entries so the type checker can validate a call
// against either kind the same way.
type Signature struct {
	Params []token.Token
	Ret    token.Token
}

// NativeHint is one `use func` declaration, resolved to the dense id the
// compiler will encode as a native-call target.
type NativeHint struct {
	Name string
	Sig  Signature
	ID   int
}

// NativeHints maps a native function's source name to its hint. Ids are
// dense from 0, assigned in declaration order.
type NativeHints map[string]NativeHint
