package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/machine"
)

func compile(t *testing.T, src string) *machine.Object {
	t.Helper()
	vm := machine.NewVM()
	fn, err := compiler.Compile(vm, "<test>", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func TestCompileArithmeticEmitsExpectedOpcodes(t *testing.T) {
	fn := compile(t, `print 1 + 2;`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "const")
	assert.Contains(t, dis, "add")
	assert.Contains(t, dis, "print")
}

func TestCompileGlobalVarUsesDefAndGld(t *testing.T) {
	fn := compile(t, `var a = 1; print a;`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "def")
	assert.Contains(t, dis, "gld")
}

func TestCompileLocalVarUsesLdSt(t *testing.T) {
	fn := compile(t, `{ var a = 1; a = 2; print a; }`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "st")
	assert.Contains(t, dis, "ld")
}

func TestCompileIfEmitsConditionalJumps(t *testing.T) {
	fn := compile(t, `if (true) { print 1; } else { print 2; }`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "jmpf")
	assert.Contains(t, dis, "jmp")
}

func TestCompileWhileEmitsBackwardJump(t *testing.T) {
	fn := compile(t, `while (true) { print 1; }`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "jmpf")
	assert.Contains(t, dis, "jmp -")
}

func TestCompileFunctionIsNestedInDisassembly(t *testing.T) {
	fn := compile(t, `
fun add(a, b) {
  return a + b;
}
print add(1, 2);
`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "== add ==")
	assert.Contains(t, dis, "call")
	assert.Contains(t, dis, "ret")
}

func TestCompileMapLiteralEmitsMap(t *testing.T) {
	fn := compile(t, `print [1, 2, 3];`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "map")
}

func TestCompileIndexEmitsGetiAndSeti(t *testing.T) {
	fn := compile(t, `var m = []; m[0] = 1; print m[0];`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "seti")
	assert.Contains(t, dis, "geti")
}

func TestCompileFieldEmitsGetAndSet(t *testing.T) {
	fn := compile(t, `var m = []; m.name = "x"; print m.name;`)
	dis := compiler.Disassemble(fn.Chunk(), "script")
	assert.Contains(t, dis, "set")
	assert.Contains(t, dis, "get")
}

func TestCompileErrorOnSelfReferentialInitializer(t *testing.T) {
	vm := machine.NewVM()
	_, err := compiler.Compile(vm, "<test>", []byte(`{ var x = x; }`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot read local variable in its own initializer.")
}

func TestCompileErrorOnUnexpectedToken(t *testing.T) {
	vm := machine.NewVM()
	_, err := compiler.Compile(vm, "<test>", []byte(`var = 1;`))
	assert.Error(t, err)
}

func TestCompileConstantPoolDedupes(t *testing.T) {
	fn := compile(t, `print 1; print 1; print 1;`)
	count := 0
	for _, v := range fn.Chunk().Constants {
		if v.IsNumber() && v.AsNumber() == 1 {
			count++
		}
	}
	assert.Equal(t, 1, count, "repeated identical literals share one constant-pool slot")
}
