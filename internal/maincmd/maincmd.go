// Package maincmd implements the xplice command-line tool: it parses the
// arguments, dispatches to the requested command and reports diagnostics on
// standard error, leaving standard output to the executed program.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "xplice"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>
       %[1]s disasm <path>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and runtime for the Xplice programming language. With a
single <path>, compiles and runs the file: the process exits 0 when
the program's main routine returns 0, 1 otherwise.

The optional <command> can be one of:
       run                       Compile and run the file (the default
                                 when only a <path> is given).
       disasm                    Compile the file and print the textual
                                 disassembly of every routine instead
                                 of running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

type Cmd struct {
	BuildVersion string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no file specified")
	}

	commands := buildCmds(c)
	if fn := commands[c.args[0]]; fn != nil {
		c.cmdFn = fn
		c.args = c.args[1:]
	} else {
		// a bare path means run
		c.cmdFn = commands["run"]
	}

	if len(c.args) != 1 {
		return errors.New("exactly one file must be provided")
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "Xplice (runtime) v%s\n", c.BuildVersion)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds returns the command dispatch table. The surface is small enough
// that an explicit table beats discovering methods by reflection.
func buildCmds(c *Cmd) map[string]func(context.Context, mainer.Stdio, []string) error {
	return map[string]func(context.Context, mainer.Stdio, []string) error{
		"run":    c.Run,
		"disasm": c.Disasm,
	}
}
