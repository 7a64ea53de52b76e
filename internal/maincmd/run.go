package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/DrkWithT/ExpliceLang/lang/compiler"
	"github.com/DrkWithT/ExpliceLang/lang/machine"
)

// Run compiles and executes the file at args[0]. Compile and runtime
// diagnostics go to stderr; the executed program's own output goes to
// stdout. The returned error is non-nil whenever the process should exit
// nonzero, including when the program's main routine returns a nonzero
// value without raising any error.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog, err := compileFile(stdio, args[0])
	if err != nil {
		return err
	}

	vm := machine.New(prog, machine.DefaultNatives())
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr

	status, err := vm.Run()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "RuntimeError:\n%s\n", err)
		return err
	}
	if status != compiler.ErrNormal {
		return fmt.Errorf("program exited with status %s", status)
	}
	return nil
}

func compileFile(stdio mainer.Stdio, path string) (*compiler.XpliceProgram, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, printError(stdio, err)
	}

	prog, err := compiler.CompileSource(src)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Compile Error:\n%s\n", err)
		return nil, err
	}
	return prog, nil
}
