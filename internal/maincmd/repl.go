package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/machine"
)

// Repl implements the bare `<bin>` invocation: read a line from stdin,
// compile it, execute it, print, loop. A compile or runtime error is
// reported to stdio.Stderr but does not end the session; only EOF on
// stdin (or ctx cancellation) does. State persists across lines by
// running every line through the same VM, so a global declared on one
// line is visible to the next.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, _ []string) error {
	vm := machine.NewVM()
	vm.Stdout, vm.Stderr, vm.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin
	vm.Compile = compiler.Compile
	defer vm.Close()

	in := stdio.Stdin
	if in == nil {
		return nil
	}
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		vm.DoFile(ctx, "<stdin>", []byte(line))
	}
}
