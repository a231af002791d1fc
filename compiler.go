package amex

// functionType distinguishes a real function body from the implicit
// top-level script body, mirroring FunctionType in the C draft.
type functionType int

const (
	ftFunction functionType = iota
	ftScript
)

// localVar is a compile-time-only local variable slot. depth == -1
// means declared but not yet initialized (its own initializer
// expression is still compiling).
type localVar struct {
	name       *String
	depth      int
	isCaptured bool
}

type compUpval struct {
	index   uint8
	isLocal bool
}

// Compiler holds everything needed to finish compiling one function
// body: its enclosing compiler (for upvalue resolution across nested
// fn forms), its in-progress Function, and its locals/upvalues.
// Grounded on original_source/src/include/amex.h's struct Compiler;
// unlike the C draft's single mutable global `current`, the chain is
// threaded explicitly and lives on the VM only so the collector can
// find it as a root (see markCompilerRoots), per spec.md's "Global
// compiler singleton" design note.
type Compiler struct {
	vm         *VM
	enclosing  *Compiler
	function   *Function
	ftype      functionType
	locals     []localVar
	upvals     []compUpval
	scopeDepth int
}

func newCompiler(vm *VM, enclosing *Compiler, ftype functionType, fname *String) *Compiler {
	c := &Compiler{vm: vm, enclosing: enclosing, ftype: ftype}
	c.function = newFunction(vm)
	if ftype != ftScript && fname != nil {
		c.function.name = fname
	}
	// slot 0 always holds the function/closure being called.
	c.locals = append(c.locals, localVar{name: fname, depth: 0})
	return c
}

func (c *Compiler) chunk() *Chunk { return &c.function.chunk }

func (c *Compiler) emitByte(b byte) { c.chunk().writeByte(b) }
func (c *Compiler) emitOp(op OpCode) { c.chunk().writeOp(op) }
func (c *Compiler) emitShort(n uint16) { c.chunk().writeShort(n) }
func (c *Compiler) emitOpByte(op OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) addConstant(v Value) (int, error) {
	maxConstants := c.vm.config.GetInt("compiler.max_constants")
	idx := c.chunk().addConstant(c.vm, v)
	if idx >= maxConstants {
		return 0, CompileError{Message: "too many constants in function"}
	}
	return idx, nil
}

func (c *Compiler) emitConstant(v Value) error {
	idx, err := c.addConstant(v)
	if err != nil {
		return err
	}
	c.emitOp(OpConstant)
	c.emitShort(uint16(idx))
	return nil
}

func (c *Compiler) defineGlobal(name *String, flags byte) error {
	idx, err := c.addConstant(StringVal(name))
	if err != nil {
		return err
	}
	c.emitOp(OpDefineGlobal)
	c.emitShort(uint16(idx))
	c.emitByte(flags)
	return nil
}

func (c *Compiler) emitGlobal(v Value, get bool) error {
	idx, err := c.addConstant(v)
	if err != nil {
		return err
	}
	if get {
		c.emitOp(OpGetGlobal)
	} else {
		c.emitOp(OpSetGlobal)
	}
	c.emitShort(uint16(idx))
	return nil
}

func (c *Compiler) endCompiler() *Function {
	c.emitOp(OpReturn)
	return c.function
}

func (c *Compiler) resolveLocal(name *String) (int, error) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := &c.locals[i]
		if l.name == name {
			if l.depth == -1 {
				return -1, CompileError{Message: "can't read local variable in its own initializer"}
			}
			return i, nil
		}
	}
	return -1, nil
}

func (c *Compiler) addLocal(name *String) error {
	maxLocals := c.vm.config.GetInt("compiler.max_locals")
	if len(c.locals) >= maxLocals {
		return CompileError{Message: "too many local variables in function"}
	}
	c.locals = append(c.locals, localVar{name: name, depth: -1})
	return nil
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) (int, error) {
	for i, uv := range c.upvals {
		if uv.index == index && uv.isLocal == isLocal {
			return i, nil
		}
	}
	maxUpvalues := c.vm.config.GetInt("compiler.max_upvalues")
	if len(c.upvals) >= maxUpvalues {
		return 0, CompileError{Message: "too many closure variables in function"}
	}
	c.upvals = append(c.upvals, compUpval{index: index, isLocal: isLocal})
	c.function.upvalCount = len(c.upvals)
	return len(c.upvals) - 1, nil
}

// resolveUpvalue recursively searches enclosing compilers for name,
// capturing it by reference at every level between its declaration
// and this function.
func (c *Compiler) resolveUpvalue(name *String) (int, error) {
	if c.enclosing == nil {
		return -1, nil
	}
	local, err := c.enclosing.resolveLocal(name)
	if err != nil {
		return -1, err
	}
	if local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(uint8(local), true)
	}
	upvalue, err := c.enclosing.resolveUpvalue(name)
	if err != nil {
		return -1, err
	}
	if upvalue != -1 {
		return c.addUpvalue(uint8(upvalue), false)
	}
	return -1, nil
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := len(c.locals) - 1
		if c.locals[last].isCaptured {
			c.emitOpByte(OpCloseUpvalue, byte(last))
		} else {
			c.emitOp(OpPop)
		}
		c.locals = c.locals[:last]
	}
}

func (c *Compiler) declareVariable(name *String) error {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := &c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			return CompileError{Message: "already a variable with the same name in this scope"}
		}
	}
	return c.addLocal(name)
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) declareArg(name *String) error {
	if err := c.declareVariable(name); err != nil {
		return err
	}
	c.markInitialized()
	return nil
}

// compileSymbol emits the right variable-access opcode, trying
// locals, then upvalues, then falling back to a global lookup.
func (c *Compiler) compileSymbol(name *String, get bool) error {
	if arg, err := c.resolveLocal(name); err != nil {
		return err
	} else if arg != -1 {
		if get {
			c.emitOpByte(OpGetLocal, byte(arg))
		} else {
			c.emitOpByte(OpSetLocal, byte(arg))
		}
		return nil
	}
	arg, err := c.resolveUpvalue(name)
	if err != nil {
		return err
	}
	if arg != -1 {
		if get {
			c.emitOpByte(OpGetUpvalue, byte(arg))
		} else {
			c.emitOpByte(OpSetUpvalue, byte(arg))
		}
		return nil
	}
	return c.emitGlobal(StringVal(name), get)
}

// markCompilerRoots marks every in-progress Function along the active
// compiler chain as a GC root, per spec.md §4.4 step 1.
func (vm *VM) markCompilerRoots() {
	for c := vm.compiler; c != nil; c = c.enclosing {
		vm.markObject(c.function)
	}
}
