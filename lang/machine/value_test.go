package machine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueIsFalsey(t *testing.T) {
	assert.True(t, Nil.IsFalsey())
	assert.True(t, Bool(false).IsFalsey())
	assert.False(t, Bool(true).IsFalsey())
	assert.True(t, Number(0).IsFalsey())
	negZero := math.Copysign(0, -1)
	assert.False(t, Number(negZero).IsFalsey(), "negative zero carries a sign bit and is not falsey")
	assert.False(t, Number(1).IsFalsey())
}

func TestValueEqual(t *testing.T) {
	heap := NewHeap()
	a := FromObject(heap.Intern("x"))
	b := FromObject(heap.Intern("x"))
	c := FromObject(heap.Intern("y"))

	assert.True(t, Equal(Nil, Nil))
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), Number(2)))
	assert.False(t, Equal(Number(0), Bool(false)), "different tags never compare equal")
	assert.True(t, Equal(a, b), "interned strings with equal contents share one object")
	assert.False(t, Equal(a, c))
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{3, "3"},
		{-3, "-3"},
		{3.5, "3.5"},
		{1.0 / 3.0, "0.3333333333333333"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatNumber(c.n))
	}
}

func TestPrint(t *testing.T) {
	heap := NewHeap()
	assert.Equal(t, "nil", Print(Nil))
	assert.Equal(t, "true", Print(Bool(true)))
	assert.Equal(t, "false", Print(Bool(false)))
	assert.Equal(t, "3", Print(Number(3)))
	assert.Equal(t, "foo", Print(FromObject(heap.Intern("foo"))))
}

func TestTypeName(t *testing.T) {
	heap := NewHeap()
	assert.Equal(t, "nil", TypeName(Nil))
	assert.Equal(t, "bool", TypeName(Bool(true)))
	assert.Equal(t, "number", TypeName(Number(1)))
	assert.Equal(t, "string", TypeName(FromObject(heap.Intern("s"))))
	assert.Equal(t, "map", TypeName(FromObject(newObjMap())))
}
