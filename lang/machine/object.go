package machine

import "fmt"

// objKind discriminates the variants of Object (§3).
type objKind uint8

const (
	objString objKind = iota
	objFunction
	objNative
	objMap
)

var objKindNames = [...]string{
	objString:   "string",
	objFunction: "function",
	objNative:   "native",
	objMap:      "map",
}

// NativeFn is the signature of a built-in function exposed to ember code
// (§6: clock). argc is the number of arguments actually passed; args is a
// slice into the VM's value stack and must not be retained past the call.
type NativeFn func(argc int, args []Value) (Value, error)

// Object is the heap-allocated half of the value model: strings, functions,
// native functions and maps all share this representation so that a Value
// can reference any of them through a single pointer field.
type Object struct {
	kind objKind

	// objString
	chars string
	hash  uint64

	// objFunction
	arity    int
	chunk    *Chunk
	name     *Object // nil for the top-level script function
	upvalues int

	// objNative
	native NativeFn

	// objMap
	m *mapObj
}

// Chunk returns o's bytecode chunk. o must be a function object.
func (o *Object) Chunk() *Chunk { return o.chunk }

// Arity returns o's declared parameter count. o must be a function object.
func (o *Object) Arity() int { return o.arity }

// Name returns o's declared name, or "script" for the implicit top-level
// function. o must be a function object.
func (o *Object) Name() string {
	if o.name == nil {
		return "script"
	}
	return o.name.chars
}

// Native returns o's Go implementation. o must be a native function object.
func (o *Object) Native() NativeFn { return o.native }

// String returns the Go string held by a string object. o must be a string
// object.
func (o *Object) String() string { return o.chars }

// Map returns the map implementation behind o. o must be a map object.
func (o *Object) Map() *mapObj { return o.m }

func newObjString(s string, hash uint64) *Object {
	return &Object{kind: objString, chars: s, hash: hash}
}

func newObjFunction(name *Object, arity int, chunk *Chunk) *Object {
	return &Object{kind: objFunction, name: name, arity: arity, chunk: chunk}
}

// NewFunction builds a function object around chunk, for use by a
// CompileFunc. An empty name produces the implicit top-level script
// function.
func NewFunction(heap *Heap, name string, arity int, chunk *Chunk) *Object {
	var nameObj *Object
	if name != "" {
		nameObj = heap.Intern(name)
	}
	return newObjFunction(nameObj, arity, chunk)
}

func newObjNative(fn NativeFn) *Object {
	return &Object{kind: objNative, native: fn}
}

func printObject(o *Object) string {
	switch o.kind {
	case objString:
		return o.chars
	case objFunction:
		if o.name == nil {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", o.name.chars)
	case objNative:
		return "<native fn>"
	case objMap:
		return printMap(o.m)
	default:
		return "<invalid object>"
	}
}
