package amex

// specialForms maps a reserved head symbol to its compile-time
// handler. Grounded on compiler.c's special_fns table, generalized:
// the C draft's table lists quote/quasiquote/unquote/splice but only
// def/do/fn/if/set are wired into get_special_fn's actual dispatch,
// and while never appears at all. Here every listed form is live, and
// while is authored fresh per spec.md's component design (absent from
// the C draft entirely).
var specialForms map[string]func(*Compiler, []Value) error

func init() {
	specialForms = map[string]func(*Compiler, []Value) error{
		"quote":      spQuote,
		"quasiquote": spQuasiquote,
		"unquote":    spUnquote,
		"splice":     spSplice,
		"def":        spDef,
		"set":        spSet,
		"do":         spDo,
		"if":         spIf,
		"while":      spWhile,
		"fn":         spFn,
	}
}

// compileBody compiles a sequence of forms as an implicit do: every
// form but the last is popped for its side effect, the last form's
// value is left on the stack as the result. An empty body evaluates
// to Nil.
func (c *Compiler) compileBody(body []Value) error {
	if len(body) == 0 {
		c.emitOp(OpNil)
		return nil
	}
	for i, form := range body {
		if err := c.compileForm(form); err != nil {
			return err
		}
		if i < len(body)-1 {
			c.emitOp(OpPop)
		}
	}
	return nil
}

func spQuote(c *Compiler, args []Value) error {
	if len(args) != 1 {
		return CompileError{Message: "quote expects exactly one argument"}
	}
	return c.emitConstant(args[0])
}

// spUnquote only fires when a bare (unquote x) form is compiled
// outside any enclosing quasiquote: compileQuasi handles unquote
// itself by pattern-matching the head symbol directly, so this
// handler is only ever reached from ordinary compileForm dispatch.
func spUnquote(c *Compiler, args []Value) error {
	return CompileError{Message: "unquote used outside quasiquote"}
}

func spQuasiquote(c *Compiler, args []Value) error {
	if len(args) != 1 {
		return CompileError{Message: "quasiquote expects exactly one argument"}
	}
	return c.compileQuasi(args[0], 1, 1)
}

// isSpliceForm reports whether v is itself a (splice ...) tuple, used
// to reject multi-level splice per spec.md's "Open Question 5" ruling.
func isSpliceForm(v Value) bool {
	if !v.IsTuple() {
		return false
	}
	arr := v.AsArray()
	return arr.Count() > 0 && arr.Get(0).IsSymbol() && arr.Get(0).AsString().String() == "splice"
}

// spSplice handles a splice form reached outside quasiquote, e.g. at
// a call or literal-array argument position: ((fn [& xs] xs) ;[1 2 3] 4).
func spSplice(c *Compiler, args []Value) error {
	if len(args) != 1 {
		return CompileError{Message: "splice expects exactly one argument"}
	}
	if isSpliceForm(args[0]) {
		return CompileError{Message: "multi-level splice is not supported"}
	}
	if err := c.compileForm(args[0]); err != nil {
		return err
	}
	c.emitOp(OpSplice)
	return nil
}

// compileQuasi recursively reconstructs form at runtime, honoring the
// unquote/quasiquote level-tracking and recursion-depth bound spec.md
// calls for. Containers rebuild via their own TUPLE/ARRAY opcode
// carrying a count, rather than one opcode covering the whole tree, so
// that SPLICE's runtime accumulator can adjust any nesting level.
func (c *Compiler) compileQuasi(form Value, level, depth int) error {
	maxDepth := c.vm.config.GetInt("compiler.quasiquote_depth_max")
	if depth > maxDepth {
		return CompileError{Message: "quasiquote nested too deeply"}
	}
	if form.IsTuple() {
		arr := form.AsArray()
		if arr.Count() > 0 && arr.Get(0).IsSymbol() {
			switch arr.Get(0).AsString().String() {
			case "unquote":
				return c.compileQuasiSpecial(arr, "unquote", level, level-1, depth)
			case "quasiquote":
				return c.compileQuasiSpecial(arr, "quasiquote", level, level+1, depth)
			case "splice":
				if arr.Count() != 2 {
					return CompileError{Message: "splice expects exactly one argument"}
				}
				if isSpliceForm(arr.Get(1)) {
					return CompileError{Message: "multi-level splice is not supported"}
				}
				if level == 1 {
					if err := c.compileForm(arr.Get(1)); err != nil {
						return err
					}
					c.emitOp(OpSplice)
					return nil
				}
				return c.compileQuasiSpecial(arr, "splice", level, level-1, depth)
			}
		}
		return c.compileQuasiContainer(arr, OpTuple, level, depth)
	}
	if form.IsArray() {
		return c.compileQuasiContainer(form.AsArray(), OpArray, level, depth)
	}
	return c.emitConstant(form)
}

// compileQuasiSpecial handles unquote/quasiquote/splice forms
// encountered while still below the active unquoting level: at level
// 1, unquote's argument compiles normally, evaluated as ordinary code
// (a level-1 splice never reaches here; compileQuasi compiles it
// directly); otherwise the (head x) tuple is rebuilt as data,
// recursing into x at the adjusted level.
func (c *Compiler) compileQuasiSpecial(arr *Array, name string, level, nextLevel int, depth int) error {
	if arr.Count() != 2 {
		return CompileError{Message: name + " expects exactly one argument"}
	}
	if name == "unquote" && level == 1 {
		return c.compileForm(arr.Get(1))
	}
	if err := c.emitConstant(arr.Get(0)); err != nil {
		return err
	}
	if err := c.compileQuasi(arr.Get(1), nextLevel, depth+1); err != nil {
		return err
	}
	c.emitOpByte(OpTuple, 2)
	return nil
}

func (c *Compiler) compileQuasiContainer(arr *Array, op OpCode, level, depth int) error {
	n := arr.Count()
	if n > 255 {
		return CompileError{Message: "quasiquoted literal too large"}
	}
	for i := 0; i < n; i++ {
		if err := c.compileQuasi(arr.Get(i), level, depth+1); err != nil {
			return err
		}
	}
	c.emitOpByte(op, byte(n))
	return nil
}

// spDef binds name to value. At top level (scope depth 0) this emits
// DEFINE_GLOBAL; inside a function body it declares a local instead.
// Per spec.md's Open Question 2 ruling, the optional :macro flag must
// precede the value and no other keyword is recognized: (def name
// value) or (def name :macro value). :macro only makes sense on a
// global binding.
func spDef(c *Compiler, args []Value) error {
	if len(args) != 2 && len(args) != 3 {
		return CompileError{Message: "def expects a name and a value, with an optional :macro flag"}
	}
	if !args[0].IsSymbol() {
		return CompileError{Message: "def requires a symbol name"}
	}
	name := args[0].AsString()
	var flags byte
	valueForm := args[1]
	if len(args) == 3 {
		if !args[1].IsKeyword() || args[1].AsString().String() != "macro" {
			return CompileError{Message: "def's only recognized flag is :macro, and it must precede the value"}
		}
		flags = 1
		valueForm = args[2]
	}

	if c.scopeDepth > 0 {
		if flags != 0 {
			return CompileError{Message: ":macro is only meaningful on a top-level def"}
		}
		if err := c.declareVariable(name); err != nil {
			return err
		}
		// The compiled initializer's pushed value becomes the local's
		// permanent stack slot; a GET_LOCAL duplicate stands in as this
		// def form's own expression value, so callers that discard
		// non-final body forms (compileBody) pop the duplicate, not the
		// slot that now backs the local.
		if err := c.compileForm(valueForm); err != nil {
			return err
		}
		c.markInitialized()
		slot := len(c.locals) - 1
		c.emitOpByte(OpGetLocal, byte(slot))
		return nil
	}

	if err := c.compileForm(valueForm); err != nil {
		return err
	}
	return c.defineGlobal(name, flags)
}

func spSet(c *Compiler, args []Value) error {
	if len(args) != 2 {
		return CompileError{Message: "set expects a name and a value"}
	}
	if !args[0].IsSymbol() {
		return CompileError{Message: "set requires a symbol name"}
	}
	if err := c.compileForm(args[1]); err != nil {
		return err
	}
	return c.compileSymbol(args[0].AsString(), false)
}

// spDo opens a new scope, compiles its body, then closes the scope —
// saving the body's result across that cleanup in vm.temp (SAVE_TOP)
// since POP/CLOSE_UPVALUE for the scope's own locals would otherwise
// destroy it, and restoring it (RESTORE_TOP) once the scope is gone.
func spDo(c *Compiler, args []Value) error {
	c.beginScope()
	if err := c.compileBody(args); err != nil {
		return err
	}
	c.emitOp(OpSaveTop)
	c.endScope()
	c.emitOp(OpRestoreTop)
	return nil
}

func spIf(c *Compiler, args []Value) error {
	if len(args) != 2 && len(args) != 3 {
		return CompileError{Message: "if expects a condition and one or two branches"}
	}
	if err := c.compileForm(args[0]); err != nil {
		return err
	}
	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	if err := c.compileForm(args[1]); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJump)
	if err := c.patchJump(thenJump); err != nil {
		return err
	}
	c.emitOp(OpPop)
	if len(args) == 3 {
		if err := c.compileForm(args[2]); err != nil {
			return err
		}
	} else {
		c.emitOp(OpNil)
	}
	return c.patchJump(elseJump)
}

// spWhile is authored fresh: the C draft's special_fns table never
// defines it. Always evaluates to Nil, matching `if`'s and `do`'s
// expression-oriented style.
func spWhile(c *Compiler, args []Value) error {
	if len(args) < 1 {
		return CompileError{Message: "while expects a condition"}
	}
	loopStart := len(c.chunk().code)
	if err := c.compileForm(args[0]); err != nil {
		return err
	}
	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	for _, form := range args[1:] {
		if err := c.compileForm(form); err != nil {
			return err
		}
		c.emitOp(OpPop)
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emitOp(OpPop)
	c.emitOp(OpNil)
	return nil
}

func (c *Compiler) emitJump(op OpCode) int {
	c.emitOp(op)
	c.emitShort(0xffff)
	return len(c.chunk().code) - 2
}

func (c *Compiler) patchJump(offset int) error {
	jump := len(c.chunk().code) - offset - 2
	if jump > 0xffff {
		return CompileError{Message: "too much code to jump over"}
	}
	code := c.chunk().code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
	return nil
}

func (c *Compiler) emitLoop(loopStart int) error {
	c.emitOp(OpLoop)
	offset := len(c.chunk().code) - loopStart + 2
	if offset > 0xffff {
		return CompileError{Message: "loop body too large"}
	}
	c.emitShort(uint16(offset))
	return nil
}

// spFn compiles a fn special form in a fresh child Compiler, mirroring
// spe_fn's three shapes: (fn [params] body...), (fn name [params]
// body...) for self-recursive reference via the function's own slot
// 0, and a bare (fn [params]) with an empty body.
func spFn(c *Compiler, args []Value) error {
	if len(args) == 0 {
		return CompileError{Message: "fn expects a parameter array"}
	}
	var name *String
	idx := 0
	if args[0].IsSymbol() {
		name = args[0].AsString()
		idx = 1
	}
	if idx >= len(args) || !args[idx].IsArray() {
		return CompileError{Message: "fn expects a parameter array"}
	}
	params := args[idx].AsArray()
	body := args[idx+1:]

	sub := newCompiler(c.vm, c, ftFunction, name)
	prev := c.vm.compiler
	c.vm.compiler = sub
	restore := func() { c.vm.compiler = prev }

	sub.beginScope()
	maxParams := c.vm.config.GetInt("compiler.max_params")
	variadic := false
	minArity := 0
	for i := 0; i < params.Count(); i++ {
		p := params.Get(i)
		if !p.IsSymbol() {
			restore()
			return CompileError{Message: "fn parameters must be symbols"}
		}
		pname := p.AsString()
		if pname.String() == "&" {
			if variadic {
				restore()
				return CompileError{Message: "fn parameter list has more than one &"}
			}
			if i != params.Count()-2 {
				restore()
				return CompileError{Message: "& must be followed by exactly one rest parameter"}
			}
			variadic = true
			continue
		}
		if !variadic {
			minArity++
			if minArity > maxParams {
				restore()
				return CompileError{Message: "too many parameters"}
			}
		}
		if err := sub.declareArg(pname); err != nil {
			restore()
			return err
		}
	}

	if err := sub.compileBody(body); err != nil {
		restore()
		return err
	}
	fn := sub.endCompiler()
	fn.minArity = minArity
	fn.arity = minArity
	fn.variadic = variadic
	restore()

	fnIdx, err := c.addConstant(FunctionVal(fn))
	if err != nil {
		return err
	}
	c.emitOp(OpClosure)
	c.emitShort(uint16(fnIdx))
	for _, uv := range sub.upvals {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.index)
	}
	return nil
}

// lookupMacro reports whether name is bound to a global whose :macro
// flag bit is set, returning the closure to invoke at compile time.
func (vm *VM) lookupMacro(name *String) (*Closure, bool) {
	pair, ok := vm.globals.Get(StringVal(name))
	if !ok {
		return nil, false
	}
	entry := pair.AsArray()
	flags := byte(entry.Get(0).AsNumber())
	if flags&1 == 0 {
		return nil, false
	}
	val := entry.Get(1)
	if !val.IsClosure() {
		return nil, false
	}
	return val.AsClosure(), true
}

// expandMacro calls closure at compile time with rawArgs passed
// unevaluated, by assembling a throwaway script that pushes the
// closure and each raw argument as constants and calls it, then
// re-entering the VM synchronously. Mirrors the C draft's approach of
// running the macro through the same interpreter loop used for
// ordinary calls, rather than a separate compile-time evaluator.
func (c *Compiler) expandMacro(closure *Closure, rawArgs []Value) (Value, error) {
	mini := newFunction(c.vm)
	closureIdx := mini.chunk.addConstant(c.vm, ClosureVal(closure))
	mini.chunk.writeOp(OpConstant)
	mini.chunk.writeShort(uint16(closureIdx))
	for _, a := range rawArgs {
		idx := mini.chunk.addConstant(c.vm, a)
		mini.chunk.writeOp(OpConstant)
		mini.chunk.writeShort(uint16(idx))
	}
	mini.chunk.writeOp(OpCall)
	mini.chunk.writeByte(byte(len(rawArgs)))
	mini.chunk.writeOp(OpReturn)

	result, err := c.vm.Interpret(mini)
	if err != nil {
		return Nil, CompileError{Message: "macro expansion failed: " + err.Error()}
	}
	return result, nil
}

// macroCallShape reports whether form is a call to a bound macro, and
// if so returns the closure and raw argument forms. Special forms
// always take precedence: a head symbol matching one is never treated
// as a macro invocation, even if also globally bound with :macro.
func (c *Compiler) macroCallShape(form Value) (*Closure, []Value, bool) {
	if !form.IsTuple() {
		return nil, nil, false
	}
	arr := form.AsArray()
	if arr.Count() == 0 || !arr.Get(0).IsSymbol() {
		return nil, nil, false
	}
	name := arr.Get(0).AsString()
	if _, isSpecial := specialForms[name.String()]; isSpecial {
		return nil, nil, false
	}
	closure, ok := c.vm.lookupMacro(name)
	if !ok {
		return nil, nil, false
	}
	return closure, arr.Values()[1:], true
}

// compileMacroCall expands closure applied to rawArgs, then keeps
// expanding as long as the result is itself a macro call, bounded at
// compiler.macro_rounds_max cascading rounds total (spec.md's fixed
// capacity list), before compiling whatever AST it settles on.
func (c *Compiler) compileMacroCall(closure *Closure, rawArgs []Value) error {
	maxRounds := c.vm.config.GetInt("compiler.macro_rounds_max")
	expanded, err := c.expandMacro(closure, rawArgs)
	if err != nil {
		return err
	}
	for round := 1; ; round++ {
		nextClosure, nextArgs, isMacroCall := c.macroCallShape(expanded)
		if !isMacroCall {
			return c.compileForm(expanded)
		}
		if round >= maxRounds {
			return CompileError{Message: "macro expansion exceeded maximum rounds"}
		}
		expanded, err = c.expandMacro(nextClosure, nextArgs)
		if err != nil {
			return err
		}
	}
}

func (c *Compiler) compileTuple(form Value) error {
	arr := form.AsArray()
	if arr.Count() == 0 {
		return c.emitConstant(form)
	}
	head := arr.Get(0)
	if head.IsSymbol() {
		name := head.AsString()
		if handler, ok := specialForms[name.String()]; ok {
			return handler(c, arr.Values()[1:])
		}
		if closure, ok := c.vm.lookupMacro(name); ok {
			return c.compileMacroCall(closure, arr.Values()[1:])
		}
	}
	return c.compileCall(arr)
}

func (c *Compiler) compileCall(arr *Array) error {
	if err := c.compileForm(arr.Get(0)); err != nil {
		return err
	}
	n := arr.Count() - 1
	if n > 255 {
		return CompileError{Message: "too many arguments in call"}
	}
	for i := 1; i < arr.Count(); i++ {
		if err := c.compileForm(arr.Get(i)); err != nil {
			return err
		}
	}
	c.emitOpByte(OpCall, byte(n))
	return nil
}

func (c *Compiler) compileArrayLiteral(form Value) error {
	arr := form.AsArray()
	n := arr.Count()
	if n > 255 {
		return CompileError{Message: "array literal too large"}
	}
	for i := 0; i < n; i++ {
		if err := c.compileForm(arr.Get(i)); err != nil {
			return err
		}
	}
	c.emitOpByte(OpArray, byte(n))
	return nil
}

// compileForm compiles any AST node produced by the parser. Self-
// evaluating literals (including table literals, which amex treats as
// data rather than an evaluated constructor) emit a CONSTANT; symbols
// resolve through the usual local/upvalue/global chain; arrays compile
// their elements and rebuild at runtime; tuples dispatch through
// special forms, macros, or an ordinary call, in that priority order.
func (c *Compiler) compileForm(form Value) error {
	switch form.Type() {
	case TypeNil, TypeBool, TypeNumber, TypeString, TypeKeyword, TypeTable:
		return c.emitConstant(form)
	case TypeSymbol:
		return c.compileSymbol(form.AsString(), true)
	case TypeArray:
		return c.compileArrayLiteral(form)
	case TypeTuple:
		return c.compileTuple(form)
	default:
		return CompileError{Message: "cannot compile value of type " + form.Type().String(), Form: form}
	}
}

// Compile compiles a sequence of top-level forms (as returned by
// Parse) into one top-level Function, as if wrapped in an implicit
// do: every form but the last is evaluated for effect, the last form's
// value becomes the whole program's result.
func Compile(vm *VM, forms []Value) (*Function, error) {
	compiler := newCompiler(vm, nil, ftScript, nil)
	prev := vm.compiler
	vm.compiler = compiler
	defer func() { vm.compiler = prev }()

	if err := compiler.compileBody(forms); err != nil {
		return nil, err
	}
	return compiler.endCompiler(), nil
}
