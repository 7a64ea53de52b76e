package compiler

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// This file implements the textual disassembler over compiled Chunks. It is
// mostly to support testing of the emitter and the VM without eyeballing raw
// byte slices, and backs the `disasm` CLI subcommand.
//
// The format looks like this:
//
// 	program: entry #0
//
// 	routine: #0
// 		constants:
// 			0	int 7
// 		code:
// 			0000	load_const consts:0
// 			0006	ret temp_stack:0

// DecodeStep decodes the instruction starting at pos in code and returns it
// along with the position just past it. The wire layout is the fixed-size
// encoding of emitpass.go: 1 opcode byte plus 5 bytes (region tag +
// little-endian 4-byte id) per argument.
func DecodeStep(code []byte, pos int) (Step, int, error) {
	if pos < 0 || pos >= len(code) {
		return Step{}, pos, fmt.Errorf("compiler: decode position %d out of range", pos)
	}

	op := Opcode(code[pos])
	arity := Arity(op)
	if arity < 0 {
		return Step{}, pos, fmt.Errorf("compiler: illegal opcode byte %d at offset %d", code[pos], pos)
	}
	if pos+instrSize(op) > len(code) {
		return Step{}, pos, fmt.Errorf("compiler: truncated %s instruction at offset %d", op, pos)
	}

	var s Step
	s.Op = op
	p := pos + 1
	for i := 0; i < arity; i++ {
		region := RegionTag(code[p])
		id := int32(uint32(code[p+1]) | uint32(code[p+2])<<8 | uint32(code[p+3])<<16 | uint32(code[p+4])<<24)
		s.Args[i] = Locator{Region: region, ID: id}
		p += 5
	}
	return s, p, nil
}

// Dasm writes a compiled program to its textual disassembly, routines in
// ascending id order.
func Dasm(p *XpliceProgram) ([]byte, error) {
	d := dasm{buf: new(bytes.Buffer)}
	d.writef("program: entry #%d\n", p.EntryFuncID)

	ids := maps.Keys(p.FuncChunks)
	slices.Sort(ids)
	for _, id := range ids {
		d.write("\n")
		d.chunk(id, p.FuncChunks[id])
	}
	return d.buf.Bytes(), d.err
}

// DasmChunk disassembles a single routine's Chunk.
func DasmChunk(id int, c Chunk) ([]byte, error) {
	d := dasm{buf: new(bytes.Buffer)}
	d.chunk(id, c)
	return d.buf.Bytes(), d.err
}

type dasm struct {
	buf *bytes.Buffer
	err error
}

func (d *dasm) chunk(id int, c Chunk) {
	if d.err != nil {
		return
	}

	d.writef("routine: #%d\n", id)

	if len(c.Constants) > 0 {
		d.write("\tconstants:\n")
		cids := maps.Keys(c.Constants)
		slices.Sort(cids)
		for _, cid := range cids {
			v := c.Constants[cid]
			d.writef("\t\t%d\t%s %s\n", cid, v.Kind(), v)
		}
	}

	d.write("\tcode:\n")
	var pos int
	for pos < len(c.Bytecode) {
		step, next, err := DecodeStep(c.Bytecode, pos)
		if err != nil {
			d.err = err
			return
		}
		d.writef("\t\t%04d\t%s\n", pos, step)
		pos = next
	}
}

func (d *dasm) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}

func (d *dasm) writef(format string, args ...interface{}) {
	d.write(fmt.Sprintf(format, args...))
}
