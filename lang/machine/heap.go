package machine

import (
	"math"
	"reflect"
)

// fnv1aOffset and fnv1aPrime are the 64-bit FNV-1a constants used to hash
// string contents for interning (§4.3).
const (
	fnv1aOffset = uint64(14695981039346656037)
	fnv1aPrime  = uint64(1099511628211)
)

func fnv1a(s string) uint64 {
	h := fnv1aOffset
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnv1aPrime
	}
	return h
}

func float64bits(f float64) uint64 { return math.Float64bits(f) }

// objectAddr returns a stable integer derived from o's address, used as the
// raw hash key for object-valued Map keys (§4.4). Map never dereferences
// this value as a pointer; it exists purely to seed the probe sequence.
func objectAddr(o *Object) uint64 {
	return uint64(reflect.ValueOf(o).Pointer())
}

// Heap owns the VM-wide string intern set: every ember string value is
// looked up here first so that two occurrences of the same text share one
// Object and can be compared by pointer (§4.3).
type Heap struct {
	strings *stringTable
}

// NewHeap creates an empty intern set.
func NewHeap() *Heap {
	return &Heap{strings: newStringTable()}
}

// Intern returns the canonical *Object for s, allocating and registering a
// new one on first occurrence.
func (h *Heap) Intern(s string) *Object {
	hash := fnv1a(s)
	if o := h.find(s, hash); o != nil {
		return o
	}
	o := newObjString(s, hash)
	h.strings.Set(o, Bool(true))
	return o
}

func (h *Heap) find(s string, hash uint64) *Object {
	if len(h.strings.entries) == 0 {
		return nil
	}
	probe := newObjString(s, hash)
	e := h.strings.find(probe)
	if e.key == nil || e.key == tombstoneKey {
		return nil
	}
	return e.key
}
