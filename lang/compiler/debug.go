package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/mna/ember/lang/machine"
)

// Disassemble renders chunk's bytecode as human-readable text, one
// instruction per line, followed by a recursive listing of any nested
// function constants. It exists for the tokenize-style debug tooling and
// for writing bytecode-shaped expectations in tests without hardcoding raw
// byte offsets.
func Disassemble(chunk *machine.Chunk, name string) string {
	var b strings.Builder
	disassembleChunk(&b, chunk, name)
	return b.String()
}

func disassembleChunk(b *strings.Builder, chunk *machine.Chunk, name string) {
	fmt.Fprintf(b, "== %s ==\n", name)

	var nested []*machine.Object
	lastLine := -1
	for offset := 0; offset < len(chunk.Code); {
		op := machine.Opcode(chunk.Code[offset])
		line, _ := chunk.LineCol(offset)
		if line == lastLine {
			fmt.Fprintf(b, "%04d    | %s", offset, op)
		} else {
			fmt.Fprintf(b, "%04d %4d %s", offset, line, op)
			lastLine = line
		}

		width := machine.OperandWidth(op)
		switch width {
		case 0:
			fmt.Fprintln(b)
		case 1:
			operand := int(chunk.Code[offset+1])
			disassembleOperand(b, chunk, op, operand)
			if fn, ok := constantFunction(chunk, op, operand); ok {
				nested = append(nested, fn)
			}
		case 2:
			operand := int(chunk.ReadU16(offset + 1))
			disassembleOperand(b, chunk, op, operand)
			if fn, ok := constantFunction(chunk, op, operand); ok {
				nested = append(nested, fn)
			}
		}
		offset += 1 + width
	}

	slices.SortFunc(nested, func(a, b *machine.Object) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		default:
			return 0
		}
	})
	for _, fn := range nested {
		b.WriteString("\n")
		disassembleChunk(b, fn.Chunk(), fn.Name())
	}
}

func constantFunction(chunk *machine.Chunk, op machine.Opcode, operand int) (*machine.Object, bool) {
	if op != machine.CONST && op != machine.CONST_LONG {
		return nil, false
	}
	v := chunk.Constants[operand]
	if !v.IsFunction() {
		return nil, false
	}
	return v.AsObject(), true
}

func disassembleOperand(b *strings.Builder, chunk *machine.Chunk, op machine.Opcode, operand int) {
	switch op {
	case machine.CONST, machine.CONST_LONG, machine.DEF, machine.DEF_LONG,
		machine.GLD, machine.GLD_LONG, machine.GST, machine.GST_LONG,
		machine.GET, machine.SET:
		fmt.Fprintf(b, " %-4d ; %s\n", operand, machine.Print(chunk.Constants[operand]))
	case machine.JMP, machine.JMPF:
		fmt.Fprintf(b, " %d\n", int(int16(uint16(operand))))
	default:
		fmt.Fprintf(b, " %d\n", operand)
	}
}
