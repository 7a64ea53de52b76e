package compiler

import (
	"fmt"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/parser"
	"github.com/DrkWithT/ExpliceLang/lang/semantics"
)

// CompileSource runs the full front-end-to-bytecode pipeline over src:
// parse, analyze, GraphPass, EmitCodePass. An AST that fails an earlier
// stage never reaches a later one, and the final XpliceProgram is ready to
// hand straight to the VM.
func CompileSource(src []byte) (*XpliceProgram, error) {
	ch, err := parser.ParseChunk(src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	hints, err := semantics.Analyze(ch)
	if err != nil {
		return nil, fmt.Errorf("semantics: %w", err)
	}

	return CompileChunk(ch, hints)
}

// CompileChunk runs GraphPass then EmitCodePass over an already-analyzed
// Chunk, producing the final XpliceProgram.
func CompileChunk(ch *ast.Chunk, hints semantics.NativeHints) (*XpliceProgram, error) {
	store, err := Run(ch, hints)
	if err != nil {
		return nil, err
	}

	prog := &XpliceProgram{
		FuncChunks:  make(map[int]Chunk, len(store.FuncCFGs)),
		EntryFuncID: store.MainFuncID,
	}

	for id, graph := range store.FuncCFGs {
		constants := store.ConstChunks[id].Values()
		chunk, err := EmitCode(graph, constants)
		if err != nil {
			return nil, fmt.Errorf("compiler: routine #%d: %w", id, err)
		}
		prog.FuncChunks[id] = chunk
	}

	return prog, nil
}
