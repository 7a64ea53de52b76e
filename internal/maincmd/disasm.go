package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/DrkWithT/ExpliceLang/lang/compiler"
)

// Disasm compiles the file at args[0] and prints the textual disassembly of
// every routine to stdout instead of running the program.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog, err := compileFile(stdio, args[0])
	if err != nil {
		return err
	}

	b, err := compiler.Dasm(prog)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintf(stdio.Stdout, "%s", b)
	return nil
}
