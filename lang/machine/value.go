// Package machine implements the value model, object heap, hash tables and
// the bytecode virtual machine that executes chunks produced by
// lang/compiler.
package machine

import (
	"fmt"
	"math"
	"strconv"
)

// kind discriminates the variants of Value.
type kind uint8

const (
	kindNil kind = iota
	kindBool
	kindNumber
	kindObject
)

// Value is the tagged sum type manipulated by the compiler's constant pool
// and the VM's operand stack: Nil, Bool, Number or a reference to a heap
// Object (§3). Values are small and copied by value; an Object value carries
// only a pointer, never the object's payload.
type Value struct {
	k   kind
	b   bool
	n   float64
	obj *Object
}

// Nil is the singleton nil value.
var Nil = Value{k: kindNil}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{k: kindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{k: kindNumber, n: n} }

// FromObject returns a Value wrapping a heap Object.
func FromObject(o *Object) Value { return Value{k: kindObject, obj: o} }

// IsNil, IsBool, IsNumber and IsObject report the variant held by v.
func (v Value) IsNil() bool    { return v.k == kindNil }
func (v Value) IsBool() bool   { return v.k == kindBool }
func (v Value) IsNumber() bool { return v.k == kindNumber }
func (v Value) IsObject() bool { return v.k == kindObject }

// AsBool, AsNumber and AsObject unwrap v without checking its variant: the
// caller must have checked it first (via Is*). On a mismatch they return the
// zero value of the requested type (false, 0 or nil).
func (v Value) AsBool() bool       { return v.b }
func (v Value) AsNumber() float64  { return v.n }
func (v Value) AsObject() *Object { return v.obj }

// IsString, IsFunction, IsNative and IsMap report whether v is an Object of
// the given kind.
func (v Value) IsString() bool   { return v.k == kindObject && v.obj.kind == objString }
func (v Value) IsFunction() bool { return v.k == kindObject && v.obj.kind == objFunction }
func (v Value) IsNative() bool   { return v.k == kindObject && v.obj.kind == objNative }
func (v Value) IsMap() bool      { return v.k == kindObject && v.obj.kind == objMap }

// IsFalsey reports whether v belongs to the falsey set {Nil, Bool(false),
// Number(+0.0)} (§4.2). Number(-0.0) is NOT falsey: its sign bit is set, so
// it differs from the "raw == 0" aliasing rule the reference implementation
// uses, matching the explicit semantics spec §4.2 and §9 call for when that
// bit-layout trick isn't available.
func (v Value) IsFalsey() bool {
	switch v.k {
	case kindNil:
		return true
	case kindBool:
		return !v.b
	case kindNumber:
		return math.Float64bits(v.n) == 0
	default:
		return false
	}
}

// Equal implements value equality (§4.2): different tags are unequal; bools
// compare by value and numbers with IEEE == (so NaN is unequal to itself and
// 0 equals -0); objects compare by reference, which suffices for strings
// because of interning.
func Equal(a, b Value) bool {
	if a.k != b.k {
		return false
	}
	switch a.k {
	case kindNil:
		return true
	case kindBool:
		return a.b == b.b
	case kindNumber:
		return a.n == b.n
	case kindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// Print renders v the way the PRINT opcode and the REPL do.
func Print(v Value) string {
	switch v.k {
	case kindNil:
		return "nil"
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	case kindNumber:
		return formatNumber(v.n)
	case kindObject:
		return printObject(v.obj)
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// TypeName returns a short string describing v's runtime type, used in
// error messages.
func TypeName(v Value) string {
	switch v.k {
	case kindNil:
		return "nil"
	case kindBool:
		return "bool"
	case kindNumber:
		return "number"
	case kindObject:
		return objKindNames[v.obj.kind]
	default:
		return "invalid"
	}
}

func (v Value) String() string { return fmt.Sprintf("Value(%s)", Print(v)) }
