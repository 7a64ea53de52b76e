package semantics

import (
	"github.com/dolthub/swiss"

	"github.com/DrkWithT/ExpliceLang/lang/token"
)

// Category classifies how a name was bound.
type Category uint8

const (
	CategoryLocal Category = iota
	CategoryConst
	CategoryParam
	CategoryFunc
	CategoryNative
)

type symbol struct {
	typ      token.Token
	category Category
	sig      Signature // only meaningful for CategoryFunc/CategoryNative
}

// scopeStack is a stack of name->symbol maps; lookups walk outward from
// the innermost scope. Xplice has no closures, so a symbol never outlives
// its frame.
type scopeStack struct {
	frames []*swiss.Map[string, symbol]
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, swiss.NewMap[string, symbol](8))
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) declare(name string, sym symbol) bool {
	top := s.frames[len(s.frames)-1]
	if top.Has(name) {
		return false
	}
	top.Put(name, sym)
	return true
}

func (s *scopeStack) lookup(name string) (symbol, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if sym, ok := s.frames[i].Get(name); ok {
			return sym, true
		}
	}
	return symbol{}, false
}
