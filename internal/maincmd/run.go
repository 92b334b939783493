package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/machine"
)

// Run compiles and executes each path in turn on a fresh VM, mirroring the
// embedding API's DoFile contract: a compile error exits 65, a runtime
// error exits 70, matching the process conventions of the host language
// this tool's VM was modeled after.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return exitError{code: mainer.Failure}
		}

		vm := machine.NewVM()
		vm.Stdout, vm.Stderr, vm.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin
		vm.Compile = compiler.Compile

		switch vm.DoFile(ctx, path, src) {
		case machine.ResultCompileError:
			return exitError{code: 65}
		case machine.ResultRuntimeError:
			return exitError{code: 70}
		}
	}
	return nil
}
