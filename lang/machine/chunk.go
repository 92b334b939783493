package machine

import "github.com/dolthub/swiss"

// Chunk is a compiled function body: a flat byte-code stream, its constant
// pool, and a parallel line/column table (§3). The compiler package builds
// Chunks through this type's append-only API; the VM only ever reads them.
type Chunk struct {
	Source    string
	Code      []byte
	Constants []Value
	// Lines holds one packed (line<<16|column) entry per byte in Code,
	// matching the spec's per-instruction position tracking (§3) at the cost
	// of one uint32 per opcode byte rather than per instruction.
	Lines []uint32

	// dedup accelerates AddConstant for the common case of re-emitting the
	// same literal (a name, a small integer) many times in one function; it
	// is compile-time only bookkeeping and is never consulted by the VM.
	dedup *swiss.Map[constKey, int]
}

// constKey is the hashable projection of a Value used to dedupe entries in
// a Chunk's constant pool. Maps are not interned as constants (identifier
// names and literals only), so this covers Nil/Bool/Number/*Object.
type constKey struct {
	kind kind
	bits uint64
	obj  *Object
}

func keyOf(v Value) constKey {
	switch v.k {
	case kindObject:
		return constKey{kind: v.k, obj: v.obj}
	default:
		return constKey{kind: v.k, bits: rawBits(v)}
	}
}

// NewChunk returns an empty chunk ready for emission.
func NewChunk() *Chunk {
	return &Chunk{dedup: swiss.NewMap[constKey, int](uint32(8))}
}

const colBits = 16

func packPos(line, col int) uint32 {
	return uint32(line)<<colBits | uint32(col)&((1<<colBits)-1)
}

// unpackPos splits a packed line/column entry back into its parts.
func unpackPos(p uint32) (line, col int) {
	return int(p >> colBits), int(p & ((1 << colBits) - 1))
}

// Write appends one raw byte to the chunk, tagged with the source position
// it was emitted for.
func (c *Chunk) Write(b byte, line, col int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, packPos(line, col))
}

// AddConstant interns v into the constant pool, returning its index. An
// identical constant already present is reused rather than duplicated.
func (c *Chunk) AddConstant(v Value) int {
	key := keyOf(v)
	if idx, ok := c.dedup.Get(key); ok {
		return idx
	}
	idx := len(c.Constants)
	c.Constants = append(c.Constants, v)
	c.dedup.Put(key, idx)
	return idx
}

// ReadByte returns the byte at ip.
func (c *Chunk) ReadByte(ip int) byte { return c.Code[ip] }

// ReadU16 returns the big-endian 16-bit operand starting at ip.
func (c *Chunk) ReadU16(ip int) uint16 {
	return uint16(c.Code[ip])<<8 | uint16(c.Code[ip+1])
}

// LineCol returns the source position the instruction at ip was emitted
// from.
func (c *Chunk) LineCol(ip int) (line, col int) {
	if ip < 0 || ip >= len(c.Lines) {
		return 0, 0
	}
	return unpackPos(c.Lines[ip])
}
