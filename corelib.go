package amex

// newBuiltinClosure wraps a tiny hand-assembled Chunk (rather than one
// produced by the compiler) in a Function/Closure pair, the way
// CoreEnv's bindings are built: each one is a single opcode doing all
// the work, followed by RETURN.
func newBuiltinClosure(vm *VM, name string, arity int, variadic bool, code []byte) *Closure {
	fn := newFunction(vm)
	fn.name = vm.internString(name)
	fn.arity = arity
	fn.variadic = variadic
	fn.chunk.code = code
	return newClosure(vm, fn)
}

// variadicOpBuiltin builds a corelib function that accepts any number
// of arguments without rest-array packing: its one instruction reads
// the argument count straight out of vm.temp (the register the
// preceding CALL set), exactly the arityAny convention described on
// Function.
func variadicOpBuiltin(vm *VM, name string, op OpCode) *Closure {
	return newBuiltinClosure(vm, name, arityAny, false, []byte{byte(op), byte(OpReturn)})
}

// unaryOpBuiltin builds a fixed one-argument corelib function: print
// isn't arityAny (extra arguments would be left uncollected on the
// stack since PRINT only ever pops one value), so it gets an ordinary
// arity-1 Function whose body fetches its single local parameter.
func unaryOpBuiltin(vm *VM, name string, op OpCode) *Closure {
	return newBuiltinClosure(vm, name, 1, false, []byte{
		byte(OpGetLocal), 1,
		byte(op),
		byte(OpReturn),
	})
}

func defineBuiltin(table *Table, vm *VM, name string, closure *Closure) {
	pair := newArray(vm, 2)
	pair.write(NumberVal(0))
	pair.write(ClosureVal(closure))
	table.Set(StringVal(vm.internString(name)), ArrayVal(pair))
}

// CoreEnv populates table (or a fresh one, if table is nil) with the
// arithmetic, comparison, boolean, and print bindings every amex
// program can assume are present, each as a genuine first-class
// Closure value rather than a special-cased builtin-by-name. Grounded
// on spec.md §6's core_env and vm.c's op_temp-driven N-ary opcodes.
func CoreEnv(vm *VM, table *Table) *Table {
	if table == nil {
		table = newTable(vm, 0)
	}
	defineBuiltin(table, vm, "+", variadicOpBuiltin(vm, "+", OpSumN))
	defineBuiltin(table, vm, "-", variadicOpBuiltin(vm, "-", OpSubtractN))
	defineBuiltin(table, vm, "*", variadicOpBuiltin(vm, "*", OpMultiplyN))
	defineBuiltin(table, vm, "/", variadicOpBuiltin(vm, "/", OpDivideN))
	defineBuiltin(table, vm, ">", variadicOpBuiltin(vm, ">", OpGreater))
	defineBuiltin(table, vm, "<", variadicOpBuiltin(vm, "<", OpLess))
	defineBuiltin(table, vm, ">=", variadicOpBuiltin(vm, ">=", OpGreaterEqual))
	defineBuiltin(table, vm, "<=", variadicOpBuiltin(vm, "<=", OpLessEqual))
	defineBuiltin(table, vm, "=", variadicOpBuiltin(vm, "=", OpEqual))
	defineBuiltin(table, vm, "not=", variadicOpBuiltin(vm, "not=", OpNotEqual))
	defineBuiltin(table, vm, "or", variadicOpBuiltin(vm, "or", OpOr))
	defineBuiltin(table, vm, "and", variadicOpBuiltin(vm, "and", OpAnd))
	defineBuiltin(table, vm, "print", unaryOpBuiltin(vm, "print", OpPrint))
	return table
}
