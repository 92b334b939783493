// Package compiler implements the single-pass Pratt parser and bytecode
// emitter that targets the instruction set defined by lang/machine: it
// walks the token stream exactly once, emitting opcodes directly as it
// recognizes expressions and statements, with no intermediate syntax tree.
package compiler

import (
	"fmt"
	gotoken "go/token"

	"github.com/mna/ember/lang/machine"
	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
)

// precedence levels, ascending (§4.5).
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:        {prefix: parseGrouping, infix: parseCall, precedence: precCall},
		token.LBRACKET:      {prefix: parseMapLiteral, infix: parseIndex, precedence: precCall},
		token.DOT:           {infix: parseField, precedence: precCall},
		token.MINUS:         {prefix: parseUnary, infix: parseBinary, precedence: precTerm},
		token.PLUS:          {infix: parseBinary, precedence: precTerm},
		token.SLASH:         {infix: parseBinary, precedence: precFactor},
		token.STAR:          {infix: parseBinary, precedence: precFactor},
		token.BANG:          {prefix: parseUnary},
		token.BANG_EQUAL:    {infix: parseBinary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: parseBinary, precedence: precEquality},
		token.GREATER:       {infix: parseBinary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: parseBinary, precedence: precComparison},
		token.LESS:          {infix: parseBinary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: parseBinary, precedence: precComparison},
		token.IDENT:         {prefix: parseVariableRef},
		token.STRING:        {prefix: parseString},
		token.NUMBER:        {prefix: parseNumber},
		token.AND:           {infix: parseAnd, precedence: precAnd},
		token.OR:            {infix: parseOr, precedence: precOr},
		token.FALSE:         {prefix: parseLiteral},
		token.TRUE:          {prefix: parseLiteral},
		token.NIL:           {prefix: parseLiteral},
	}
}

func ruleFor(k token.Kind) parseRule { return rules[k] }

// local is one entry in a Compiler's lexical-scope stack (§4.5).
type local struct {
	name  string
	depth int // -1 means "declared but not yet initialized"
}

// functionType distinguishes the implicit top-level script function from a
// user-declared one.
type functionType int

const (
	typeScript functionType = iota
	typeFunction
)

// Compiler assembles one function's Chunk. Nested function declarations
// spawn a child Compiler that shares the parent's scanner and error list,
// so parsing position and panic-mode state flow back once the nested
// function's body has been consumed.
type Compiler struct {
	heap  *machine.Heap
	chunk *machine.Chunk

	fnType functionType
	name   string
	arity  int

	locals     []local
	scopeDepth int

	sc       *scanner.Scanner
	errs     *scanner.ErrorList
	filename string

	previous  scanner.Token
	current   scanner.Token
	hadError  bool
	panicMode bool
}

// Compile compiles src into a callable top-level function object, suitable
// for installing as machine.VM.Compile. A non-nil error means the returned
// *machine.Object is nil and the caller must not execute anything (§7: "No
// chunk is executed if the compile failed").
func Compile(vm *machine.VM, filename string, src []byte) (*machine.Object, error) {
	var errs scanner.ErrorList
	sc := scanner.New(filename, src, &errs)

	c := &Compiler{
		heap:     vm.Heap(),
		chunk:    machine.NewChunk(),
		fnType:   typeScript,
		sc:       sc,
		errs:     &errs,
		filename: filename,
	}
	c.chunk.Source = filename
	// slot 0 is reserved for the function value itself, matching the VM's
	// CALL convention (slot_base points at the callee).
	c.locals = append(c.locals, local{name: "", depth: 0})

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitReturn()

	if errs.Err() != nil || c.hadError {
		return nil, errs.Err()
	}
	return machine.NewFunction(c.heap, "", 0, c.chunk), nil
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.sc.Scan()
		if c.current.Kind != token.ILLEGAL {
			break
		}
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok scanner.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = "at end"
	}
	pos := gotoken.Position{Filename: c.filename, Line: tok.Line, Column: tok.Column}
	c.errs.Add(pos, fmt.Sprintf("Error %s: %s", where, msg))
}

// synchronize discards tokens until a likely statement boundary, so one
// syntax error does not cascade into a flood of spurious ones (§4.5).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- emission helpers ---

func (c *Compiler) emitByte(b byte) { c.chunk.Write(b, c.previous.Line, c.previous.Column) }

func (c *Compiler) emitOp(op machine.Opcode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op machine.Opcode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

func (c *Compiler) emitOpU16(op machine.Opcode, operand uint16) {
	c.emitOp(op)
	c.emitByte(byte(operand >> 8))
	c.emitByte(byte(operand))
}

// emitConstantOp implements constant-operand width promotion (§4.5): short
// opcodes take a 1-byte index; an index that doesn't fit is promoted to the
// opcode's _LONG form with a 2-byte big-endian operand.
func (c *Compiler) emitConstantOp(short machine.Opcode, idx int) {
	if idx > 0xFFFF {
		c.error("Too many constants in one chunk.")
		return
	}
	if idx <= 0xFF {
		c.emitOpByte(short, byte(idx))
		return
	}
	c.emitOpU16(machine.LongForm(short), uint16(idx))
}

func (c *Compiler) emitConstant(v machine.Value) {
	c.emitConstantOp(machine.CONST, c.chunk.AddConstant(v))
}

// emitNameOp emits GET/SET, whose name-const operand has no _LONG form
// (unlike CONST/DEF/GLD/GST): a field name whose constant-pool index is above
// 255 (the pool also holds the chunk's literals and global names) is rejected
// at compile time rather than promoted.
func (c *Compiler) emitNameOp(op machine.Opcode, idx int) {
	if idx > 0xFF {
		c.error("Too many constants in one chunk.")
		return
	}
	c.emitOpByte(op, byte(idx))
}

func (c *Compiler) emitReturn() {
	c.emitOp(machine.NIL)
	c.emitOp(machine.RET)
}

// emitJump writes a jump opcode with a placeholder 2-byte offset, returning
// the offset of the first operand byte so patchJump can backfill it once
// the jump target is known.
func (c *Compiler) emitJump(op machine.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > 0x7FFF {
		c.error("Too much code to jump over.")
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
}

// emitLoop emits a backward JMP to loopStart. JMP's operand is read back by
// the VM as a signed 16-bit offset added to ip, so the negative displacement
// here is the two's-complement encoding of the backward distance rather than
// an unsigned wraparound trick.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(machine.JMP)
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > 0x7FFF {
		c.error("Loop body too large.")
	}
	neg := uint16(int16(-offset))
	c.emitByte(byte(neg >> 8))
	c.emitByte(byte(neg))
}

// --- scopes and locals ---

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(machine.POP)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= 256 {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of name, or -1 if it is not a local
// (it must then be a global). A hit whose depth is still -1 means name is
// being read from within its own initializer (§8 scenario 6).
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.error("Cannot read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// parseVariable consumes an identifier and, at global scope, interns it as
// a constant; at local scope it declares the local and returns 0, since
// locals carry no constant-pool entry (§4.5).
func (c *Compiler) parseVariable(errMsg string) int {
	c.consume(token.IDENT, errMsg)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.chunk.AddConstant(c.identifierConstant(c.previous.Lexeme))
}

func (c *Compiler) identifierConstant(name string) machine.Value {
	return machine.FromObject(c.heap.Intern(name))
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitConstantOp(machine.DEF, global)
}

// --- declarations and statements ---

func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(machine.NIL)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles a nested function's parameter list and body into its
// own Chunk via a child Compiler, then emits the resulting function object
// as a constant in the enclosing chunk (ember has no closures, so the
// function value carries no captured environment; see DESIGN.md).
func (c *Compiler) function(ft functionType) {
	sub := &Compiler{
		heap:     c.heap,
		chunk:    machine.NewChunk(),
		fnType:   ft,
		name:     c.previous.Lexeme,
		sc:       c.sc,
		errs:     c.errs,
		filename: c.filename,
		previous: c.previous,
		current:  c.current,
	}
	sub.chunk.Source = c.filename
	sub.locals = append(sub.locals, local{name: "", depth: 0})
	sub.beginScope()

	sub.consume(token.LPAREN, "Expect '(' after function name.")
	if !sub.check(token.RPAREN) {
		for {
			sub.arity++
			if sub.arity > 255 {
				sub.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := sub.parseVariable("Expect parameter name.")
			sub.defineVariable(paramConst)
			if !sub.match(token.COMMA) {
				break
			}
		}
	}
	sub.consume(token.RPAREN, "Expect ')' after parameters.")
	sub.consume(token.LBRACE, "Expect '{' before function body.")
	sub.block()
	sub.emitReturn()

	c.previous = sub.previous
	c.current = sub.current
	c.hadError = c.hadError || sub.hadError
	c.panicMode = sub.panicMode

	fn := machine.NewFunction(c.heap, sub.name, sub.arity, sub.chunk)
	c.emitConstant(machine.FromObject(fn))
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOpByte(machine.PRINT, 1)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(machine.POP)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(machine.JMPF)
	c.emitOp(machine.POP)
	c.statement()

	elseJump := c.emitJump(machine.JMP)
	c.patchJump(thenJump)
	c.emitOp(machine.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(machine.JMPF)
	c.emitOp(machine.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(machine.POP)
}

// forStatement desugars to a while loop at emission time: there is no AST
// node to rewrite, so the initializer, condition and increment are
// compiled directly into the equivalent jump sequence.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(machine.JMPF)
		c.emitOp(machine.POP)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(machine.JMP)
		incrementStart := len(c.chunk.Code)
		c.expression()
		c.emitOp(machine.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(machine.POP)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fnType == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(machine.RET)
}

// --- expressions (Pratt parser) ---

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := ruleFor(c.previous.Kind)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= ruleFor(c.current.Kind).precedence {
		c.advance()
		infix := ruleFor(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func parseNumber(c *Compiler, canAssign bool) {
	c.emitConstant(machine.Number(c.previous.Number))
}

func parseString(c *Compiler, canAssign bool) {
	v := machine.FromObject(c.heap.Intern(c.previous.String))
	c.emitConstant(v)
}

func parseLiteral(c *Compiler, canAssign bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(machine.FALSE)
	case token.TRUE:
		c.emitOp(machine.TRUE)
	case token.NIL:
		c.emitOp(machine.NIL)
	}
}

func parseGrouping(c *Compiler, canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func parseUnary(c *Compiler, canAssign bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(machine.NEG)
	case token.BANG:
		c.emitOp(machine.NOT)
	}
}

// parseBinary emits the right operand at precedence+1 so `+` and friends
// are left-associative (§4.5), then synthesizes the >, >= and != forms that
// have no dedicated opcode.
func parseBinary(c *Compiler, canAssign bool) {
	opKind := c.previous.Kind
	rule := ruleFor(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.PLUS:
		c.emitOp(machine.ADD)
	case token.MINUS:
		c.emitOp(machine.SUB)
	case token.STAR:
		c.emitOp(machine.MUL)
	case token.SLASH:
		c.emitOp(machine.DIV)
	case token.EQUAL_EQUAL:
		c.emitOp(machine.EQ)
	case token.BANG_EQUAL:
		c.emitOp(machine.EQ)
		c.emitOp(machine.NOT)
	case token.LESS:
		c.emitOp(machine.LT)
	case token.LESS_EQUAL:
		c.emitOp(machine.LE)
	case token.GREATER:
		c.emitOp(machine.LE)
		c.emitOp(machine.NOT)
	case token.GREATER_EQUAL:
		c.emitOp(machine.LT)
		c.emitOp(machine.NOT)
	}
}

func parseAnd(c *Compiler, canAssign bool) {
	endJump := c.emitJump(machine.JMPF)
	c.emitOp(machine.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func parseOr(c *Compiler, canAssign bool) {
	elseJump := c.emitJump(machine.JMPF)
	endJump := c.emitJump(machine.JMP)
	c.patchJump(elseJump)
	c.emitOp(machine.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func parseVariableRef(c *Compiler, canAssign bool) {
	name := c.previous.Lexeme
	slot := c.resolveLocal(name)

	var getOp, setOp machine.Opcode
	var idx int
	if slot != -1 {
		getOp, setOp = machine.LD, machine.ST
		idx = slot
	} else {
		getOp, setOp = machine.GLD, machine.GST
		idx = c.chunk.AddConstant(c.identifierConstant(name))
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitConstantOp(setOp, idx)
		return
	}
	c.emitConstantOp(getOp, idx)
}

// parseCall compiles a `callee(args...)` expression once the callee value
// is already on the stack from the prefix/earlier infix step.
func parseCall(c *Compiler, canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(machine.CALL, byte(argc))
}

// parseMapLiteral compiles `[v1, v2, ...]` into a MAP<n> instruction: the
// elements are pushed in order and the VM assigns them integer keys 0..n-1
// (§4.6 MAP), matching an array-literal reading of map construction.
func parseMapLiteral(c *Compiler, canAssign bool) {
	n := 0
	if !c.check(token.RBRACKET) {
		for {
			c.expression()
			if n == 255 {
				c.error("Too many elements in map literal.")
			}
			n++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACKET, "Expect ']' after map literal.")
	c.emitOpByte(machine.MAP, byte(n))
}

// parseIndex compiles the infix `container[key]` form, dispatching to GETI
// or, when followed by `=`, SETI (§4.6).
func parseIndex(c *Compiler, canAssign bool) {
	c.expression()
	c.consume(token.RBRACKET, "Expect ']' after index.")

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOp(machine.SETI)
		return
	}
	c.emitOp(machine.GETI)
}

// parseField compiles the infix `container.name` form, dispatching to GET
// or, when followed by `=`, SET (§4.6).
func parseField(c *Compiler, canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.chunk.AddConstant(c.identifierConstant(c.previous.Lexeme))

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitNameOp(machine.SET, name)
		return
	}
	c.emitNameOp(machine.GET, name)
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argc
}
