// Package maincmd implements the ember command-line tool: running scripts,
// a line-at-a-time REPL for bare invocation, and a tokenize debug command
// that exposes the scanner's output for testing and troubleshooting.
package maincmd

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "ember"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<command>] [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>
       %[1]s [<option>...] <command> [<path>...]
       %[1]s
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

With no command, <path> is compiled and executed; a compile error exits
with status 65, a runtime error with status 70. With no arguments at
all, a line-at-a-time REPL reads from standard input: each line is
compiled and executed against a VM shared across the session, and a
compile or runtime error is printed without ending the session.

The <command> can be one of:
       tokenize                  Run only the scanner phase and print the
                                 resulting tokens.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information on the %[1]s repository:
       https://github.com/mna/ember
`, binName)
)

// Cmd is the ember CLI entry point, built around the same reflection-based
// subcommand dispatch as the bare-script-execution fast path: an argument
// that doesn't name a registered command is treated as a script to run.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		c.cmdFn = c.Repl
		return nil
	}

	commands := buildCmds(c)
	if fn, ok := commands[c.args[0]]; ok {
		c.cmdFn = fn
		if len(c.args[1:]) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", c.args[0])
		}
		c.args = c.args[1:]
		return nil
	}

	// Not a known command: treat every arg as a script path to run in turn.
	c.cmdFn = c.Run
	return nil
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
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		if ee, ok := err.(exitError); ok {
			return ee.code
		}
		return mainer.Failure
	}
	return mainer.Success
}

// exitError lets a command propagate a specific process exit code (the 65
// compile-error / 70 runtime-error convention) through the uniform
// error-returning cmdFn signature.
type exitError struct {
	code mainer.ExitCode
}

func (e exitError) Error() string { return "" }

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input, and return an error as output; Run and Repl are excluded so
// that bare scripts don't collide with their dispatch names, which are
// reserved for the no-command and no-argument fast paths respectively.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		name := strings.ToLower(m.Name)
		if name == "run" || name == "repl" {
			continue
		}
		cmds[name] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
