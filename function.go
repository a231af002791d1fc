package amex

// Function is the compiled, closure-independent body of a fn form: its
// bytecode chunk plus the arity bookkeeping the VM needs at call time.
// Grounded on amex.h's struct Function.
// arityAny marks a Function (used only for corelib builtins like +)
// that accepts any number of arguments without rest-array packing: the
// raw argument values stay on the stack for the body's own opcode
// (e.g. SUMN) to consume via op_temp.
const arityAny = -1

type Function struct {
	gcHeader
	minArity   int
	arity      int
	variadic   bool
	upvalCount int
	chunk      Chunk
	name       *String
}

func newFunction(vm *VM) *Function {
	f := &Function{}
	vm.registerObject(f, objFunction)
	return f
}

// upvalDesc records, per captured variable, whether a Closure should
// pull it from the enclosing frame's locals (isLocal) or from the
// enclosing closure's own upvalue array, and at which index.
type upvalDesc struct {
	index   uint8
	isLocal bool
}

// Closure pairs a compiled Function with the live upvalues it closes
// over. Two closures created from the same Function at different call
// sites have independent upvalue arrays even though they share code.
type Closure struct {
	gcHeader
	function *Function
	upvalues []*Upvalue
}

func newClosure(vm *VM, function *Function) *Closure {
	c := &Closure{
		function: function,
		upvalues: make([]*Upvalue, function.upvalCount),
	}
	vm.registerObject(c, objClosure)
	return c
}

// Upvalue indirects a closed-over variable. While open, location
// points directly into the owning frame's stack slot so every closure
// sharing the capture observes mutations; close() copies the value
// into closed and repoints location at it once the frame that owns
// the slot returns.
type Upvalue struct {
	gcHeader
	location *Value
	closed   Value
	next     *Upvalue
}

func newUpvalue(vm *VM, location *Value) *Upvalue {
	u := &Upvalue{location: location}
	vm.registerObject(u, objUpvalue)
	return u
}

func (u *Upvalue) close() {
	u.closed = *u.location
	u.location = &u.closed
}

// NativeFn is the signature every builtin (corelib) function implements.
type NativeFn func(vm *VM, args []Value) (Value, error)

// Native wraps a Go-implemented builtin so it can flow through Value
// like any other callable.
type Native struct {
	gcHeader
	name string
	fn   NativeFn
}

func newNative(vm *VM, name string, fn NativeFn) *Native {
	n := &Native{name: name, fn: fn}
	vm.registerObject(n, objNative)
	return n
}
