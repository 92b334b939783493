package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeapInternDeduplicates(t *testing.T) {
	heap := NewHeap()

	a := heap.Intern("hello")
	b := heap.Intern("hello")
	c := heap.Intern("world")

	assert.Same(t, a, b, "interning the same text twice returns the same object")
	assert.NotSame(t, a, c)
	assert.Equal(t, "hello", a.chars)
}

func TestFnv1aDeterministic(t *testing.T) {
	assert.Equal(t, fnv1a("hello"), fnv1a("hello"))
	assert.NotEqual(t, fnv1a("hello"), fnv1a("world"))
}
