package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackPos(t *testing.T) {
	cases := []struct{ line, col int }{
		{1, 1}, {1, 80}, {65535, 0}, {42, 65535},
	}
	for _, c := range cases {
		line, col := unpackPos(packPos(c.line, c.col))
		assert.Equal(t, c.line, line)
		assert.Equal(t, c.col, col)
	}
}

func TestChunkWriteAndReadByte(t *testing.T) {
	c := NewChunk()
	c.Write(byte(CONST), 3, 5)
	c.Write(0x2a, 3, 6)

	assert.Equal(t, byte(CONST), c.ReadByte(0))
	assert.Equal(t, byte(0x2a), c.ReadByte(1))

	line, col := c.LineCol(0)
	assert.Equal(t, 3, line)
	assert.Equal(t, 5, col)
}

func TestChunkReadU16(t *testing.T) {
	c := NewChunk()
	c.Write(0x01, 1, 1)
	c.Write(0x02, 1, 1)
	assert.Equal(t, uint16(0x0102), c.ReadU16(0))
}

func TestChunkAddConstantDedups(t *testing.T) {
	c := NewChunk()
	heap := NewHeap()

	i1 := c.AddConstant(Number(1))
	i2 := c.AddConstant(Number(1))
	assert.Equal(t, i1, i2, "identical numeric constants share one slot")

	i3 := c.AddConstant(Number(2))
	assert.NotEqual(t, i1, i3)

	name := heap.Intern("x")
	i4 := c.AddConstant(FromObject(name))
	i5 := c.AddConstant(FromObject(name))
	assert.Equal(t, i4, i5, "identical object constants share one slot")

	require.Len(t, c.Constants, 3)
}
