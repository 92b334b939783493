package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
)

// Tokenize runs only the scanner phase over each file in turn and prints the
// resulting tokens, one per line, for debugging and golden-file testing.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	for _, file := range files {
		if err := TokenizeFile(stdio, file); err != nil {
			failed = true
		}
	}
	if failed {
		return exitError{code: mainer.Failure}
	}
	return nil
}

// TokenizeFile scans file and writes its tokens to stdio.Stdout, returning
// any scan errors after printing them to stdio.Stderr.
func TokenizeFile(stdio mainer.Stdio, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
		return err
	}

	var errs scanner.ErrorList
	sc := scanner.New(file, src, &errs)
	for _, tok := range sc.ScanAll() {
		fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", file, tok.Line, tok.Column, tok.Kind)
		switch tok.Kind {
		case token.STRING:
			fmt.Fprintf(stdio.Stdout, " %q", tok.String)
		case token.NUMBER, token.IDENT:
			fmt.Fprintf(stdio.Stdout, " %s", tok.Lexeme)
		}
		fmt.Fprintln(stdio.Stdout)
	}

	if err := errs.Err(); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	return nil
}
