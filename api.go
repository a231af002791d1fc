package amex

// NewVMWithCoreEnv is the usual way to get a ready-to-use interpreter:
// a VM whose globals table already carries the arithmetic/comparison/
// boolean/print bindings from CoreEnv.
func NewVMWithCoreEnv() *VM {
	vm := NewVM()
	vm.SetGlobals(CoreEnv(vm, nil))
	return vm
}

// Run parses, compiles, and interprets source against vm in one call,
// the thin wrapper a host embedding amex most often wants. Each
// top-level form is compiled and run before the next one is compiled,
// so a macro defined by one form is expanded in the forms after it;
// the last form's value is the result. Each error kind (ParseError,
// CompileError, RuntimeError) is returned as-is so the caller can map
// it to the right exit code.
func Run(vm *VM, source string) (Value, error) {
	forms, err := Parse(vm, source)
	if err != nil {
		return Nil, err
	}
	result := Nil
	for _, form := range forms {
		function, err := Compile(vm, []Value{form})
		if err != nil {
			return Nil, err
		}
		if result, err = vm.Interpret(function); err != nil {
			return Nil, err
		}
	}
	return result, nil
}
