package machine

import "fmt"

// Opcode identifies one bytecode instruction. Most opcodes are followed by a
// fixed-width inline operand, as documented per constant below; a handful
// take no operand at all.
type Opcode uint8

//nolint:revive
const (
	NIL   Opcode = iota // -            NIL            value
	TRUE                // -            TRUE           value
	FALSE               // -            FALSE          value

	CONST      // 1-byte idx   CONST<idx>      value
	CONST_LONG // 2-byte idx   CONST_LONG<idx> value

	POP // value        POP            -

	PRINT // v1..vN       PRINT<n>       -      (1-byte N)

	DEF      // value        DEF<name>      -      (1-byte name-const idx)
	DEF_LONG // value        DEF_LONG<name> -      (2-byte name-const idx)

	GLD      // -            GLD<name>      value  (1-byte name-const idx)
	GLD_LONG // -            GLD_LONG<name> value  (2-byte name-const idx)

	GST      // value        GST<name>      value  (1-byte name-const idx, no pop)
	GST_LONG // value        GST_LONG<name> value  (2-byte name-const idx, no pop)

	LD // -            LD<slot>       value  (1-byte stack slot)
	ST // value        ST<slot>       value  (1-byte stack slot, no pop)

	JMP  // -            JMP<off>       -      (2-byte signed offset)
	JMPF // cond         JMPF<off>      -      (2-byte forward offset)

	CALL // fn a1..aN    CALL<argc>     value  (1-byte argc)
	RET  // value        RET            -

	NOT // value        NOT            value
	NEG // value        NEG            value

	EQ // a b          EQ             bool
	LT // a b          LT             bool
	LE // a b          LE             bool

	ADD // a b          ADD            value
	SUB // a b          SUB            value
	MUL // a b          MUL            value
	DIV // a b          DIV            value

	MAP // v1..vN       MAP<n>         value  (1-byte N)

	GET // map          GET<name>      value  (1-byte name-const idx)
	SET // map value     SET<name>      value  (1-byte name-const idx)

	GETI // map key      GETI           value
	SETI // map key val  SETI           value

	maxOpcode
)

var opcodeNames = [...]string{
	NIL:        "nil",
	TRUE:       "true",
	FALSE:      "false",
	CONST:      "const",
	CONST_LONG: "const_long",
	POP:        "pop",
	PRINT:      "print",
	DEF:        "def",
	DEF_LONG:   "def_long",
	GLD:        "gld",
	GLD_LONG:   "gld_long",
	GST:        "gst",
	GST_LONG:   "gst_long",
	LD:         "ld",
	ST:         "st",
	JMP:        "jmp",
	JMPF:       "jmpf",
	CALL:       "call",
	RET:        "ret",
	NOT:        "not",
	NEG:        "neg",
	EQ:         "eq",
	LT:         "lt",
	LE:         "le",
	ADD:        "add",
	SUB:        "sub",
	MUL:        "mul",
	DIV:        "div",
	MAP:        "map",
	GET:        "get",
	SET:        "set",
	GETI:       "geti",
	SETI:       "seti",
}

func (op Opcode) String() string {
	if op < maxOpcode {
		if s := opcodeNames[op]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// OperandWidth is the number of bytes occupied by op's inline operand, or 0
// if op takes no operand.
func OperandWidth(op Opcode) int {
	switch op {
	case CONST_LONG, DEF_LONG, GLD_LONG, GST_LONG, JMP, JMPF:
		return 2
	case CONST, PRINT, DEF, GLD, GST, LD, ST, CALL, MAP, GET, SET:
		return 1
	default:
		return 0
	}
}

// LongForm returns the _LONG variant of a short-form opcode that supports
// constant-operand width promotion (§4.5: CONST, DEF, GLD, GST).
func LongForm(op Opcode) Opcode {
	switch op {
	case CONST:
		return CONST_LONG
	case DEF:
		return DEF_LONG
	case GLD:
		return GLD_LONG
	case GST:
		return GST_LONG
	default:
		panic(fmt.Sprintf("opcode %s has no long form", op))
	}
}
