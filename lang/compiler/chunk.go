package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/DrkWithT/ExpliceLang/lang/heap"
)

// ConstInfo is a constant-primitive's decoded data paired with its dense,
// per-routine id.
type ConstInfo struct {
	Value Value
	ID    int
}

// ConstantMap interns constant-primitive literals by source lexeme within a
// single routine. Ids are dense from 0, assigned in first-seen order, reset
// at each routine boundary (GraphPass creates a fresh ConstantMap per
// routine rather than reusing one).
type ConstantMap struct {
	byLexeme *swiss.Map[string, ConstInfo]
	order    []string
}

func NewConstantMap() *ConstantMap {
	return &ConstantMap{byLexeme: swiss.NewMap[string, ConstInfo](8)}
}

// Intern returns the existing ConstInfo for lexeme if already interned,
// otherwise mints a fresh dense id for it holding value and records it.
func (m *ConstantMap) Intern(lexeme string, value Value) ConstInfo {
	if info, ok := m.byLexeme.Get(lexeme); ok {
		return info
	}
	info := ConstInfo{Value: value, ID: len(m.order)}
	m.byLexeme.Put(lexeme, info)
	m.order = append(m.order, lexeme)
	return info
}

// Values returns the interned constants as a dense map[id]Value, the shape
// a Chunk stores.
func (m *ConstantMap) Values() map[int]Value {
	out := make(map[int]Value, len(m.order))
	for _, lexeme := range m.order {
		info, _ := m.byLexeme.Get(lexeme)
		out[info.ID] = info.Value
	}
	return out
}

// Chunk is the compiled form of one routine: its interned constants and its
// linear bytecode.
type Chunk struct {
	Constants map[int]Value
	Bytecode  []byte
}

// XpliceProgram is the fully compiled program: every routine's Chunk plus
// the id of the entry routine.
type XpliceProgram struct {
	FuncChunks  map[int]Chunk
	EntryFuncID int
}

// IRStore holds GraphPass's output before EmitCodePass linearizes it: each
// routine's constant pool and FlowGraph, plus which routine is `main`.
// Descriptors is the pool of array/tuple type descriptors obj_heap
// locators in the IR would point into; the opcodes that consume them are
// reserved, so the pool stays empty until those land, but it travels with
// the IR so descriptor ids stay stable across the whole compilation.
type IRStore struct {
	ConstChunks []*ConstantMap
	FuncCFGs    map[int]*FlowGraph
	Descriptors *heap.Allocator
	MainFuncID  int
}
