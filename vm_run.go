package amex

// run executes bytecode until the top-level frame returns. Grounded on
// run() in original_source/src/vm.c, generalized from its 1-byte
// uint8 return codes to idiomatic Go (Value, error) returns, and
// carrying the OR/AND/TUPLE/ARRAY/SPLICE opcodes the C draft's run()
// never implemented (see SPEC_FULL.md §4.3).
func (vm *VM) run() (Value, error) {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.function.chunk.code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() uint16 {
		hi := frame.closure.function.chunk.code[frame.ip]
		lo := frame.closure.function.chunk.code[frame.ip+1]
		frame.ip += 2
		return uint16(hi)<<8 | uint16(lo)
	}
	readConstant := func() Value {
		return frame.closure.function.chunk.constants.Get(int(readShort()))
	}

	for {
		op := OpCode(readByte())
		switch op {
		case OpConstant:
			vm.push(readConstant())

		case OpNil:
			vm.push(Nil)
		case OpTrue:
			vm.push(BoolVal(true))
		case OpFalse:
			vm.push(BoolVal(false))

		case OpPop:
			vm.pop()
		case OpPopN:
			vm.popN(int(readByte()))

		case OpSaveTop:
			vm.temp = vm.pop()
		case OpRestoreTop:
			vm.push(vm.temp)

		case OpTuple:
			n := int(readByte()) + vm.spliceExtra
			vm.spliceExtra = 0
			arr := newArray(vm, n)
			for i := 0; i < n; i++ {
				arr.write(Nil)
			}
			for i := n - 1; i >= 0; i-- {
				arr.Set(i, vm.pop())
			}
			vm.push(TupleVal(arr))

		case OpArray:
			n := int(readByte()) + vm.spliceExtra
			vm.spliceExtra = 0
			arr := newArray(vm, n)
			for i := 0; i < n; i++ {
				arr.write(Nil)
			}
			for i := n - 1; i >= 0; i-- {
				arr.Set(i, vm.pop())
			}
			vm.push(ArrayVal(arr))

		case OpSplice:
			v := vm.pop()
			if !v.IsTuple() && !v.IsArray() {
				return vm.errResult("splice expects a tuple or array.")
			}
			elems := v.AsArray()
			for _, e := range elems.Values() {
				vm.push(e)
			}
			vm.spliceExtra += elems.Count() - 1

		case OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.slots+slot])
		case OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.slots+slot] = vm.peek(0)

		case OpGetUpvalue:
			slot := int(readByte())
			vm.push(*frame.closure.upvalues[slot].location)
		case OpSetUpvalue:
			slot := int(readByte())
			*frame.closure.upvalues[slot].location = vm.peek(0)

		case OpCloseUpvalue:
			slot := int(readByte())
			vm.closeUpvalues(&vm.stack[frame.slots+slot])
			vm.pop()

		case OpGetGlobal:
			k := readConstant()
			pair, ok := vm.globals.Get(k)
			if !ok {
				return vm.errResult("undefined variable '%s'.", k.AsString().String())
			}
			vm.push(pair.AsArray().Get(1))
		case OpDefineGlobal:
			k := readConstant()
			flags := readByte()
			pair := newArray(vm, 2)
			pair.write(NumberVal(float64(flags)))
			pair.write(vm.peek(0))
			vm.globals.Set(k, ArrayVal(pair))
		case OpSetGlobal:
			k := readConstant()
			pair, ok := vm.globals.Get(k)
			if !ok {
				return vm.errResult("undefined variable '%s'.", k.AsString().String())
			}
			pair.AsArray().Set(1, vm.peek(0))

		case OpJump:
			frame.ip += int(readShort())
		case OpJumpIfFalse:
			offset := int(readShort())
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case OpLoop:
			frame.ip -= int(readShort())

		case OpSum0, OpSum1, OpSum2, OpSumN:
			n := arityFor(op, vm.temp)
			if err := vm.arith(n, 0, func(a, b float64) float64 { return a + b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpSubtract0, OpSubtract1, OpSubtract2, OpSubtractN:
			n := arityFor(op, vm.temp)
			if err := vm.arith(n, 0, func(a, b float64) float64 { return a - b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpMultiply0, OpMultiply1, OpMultiply2, OpMultiplyN:
			n := arityFor(op, vm.temp)
			if err := vm.arith(n, 1, func(a, b float64) float64 { return a * b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpDivide0, OpDivide1, OpDivide2, OpDivideN:
			n := arityFor(op, vm.temp)
			if err := vm.arith(n, 1, func(a, b float64) float64 { return a / b }); err != nil {
				return vm.errResult("%s", err.Error())
			}

		case OpGreater:
			if err := vm.compare(int(vm.temp.AsNumber()), func(a, b float64) bool { return a > b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpLess:
			if err := vm.compare(int(vm.temp.AsNumber()), func(a, b float64) bool { return a < b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpGreaterEqual:
			if err := vm.compare(int(vm.temp.AsNumber()), func(a, b float64) bool { return a >= b }); err != nil {
				return vm.errResult("%s", err.Error())
			}
		case OpLessEqual:
			if err := vm.compare(int(vm.temp.AsNumber()), func(a, b float64) bool { return a <= b }); err != nil {
				return vm.errResult("%s", err.Error())
			}

		case OpEqual:
			vm.eqChain(int(vm.temp.AsNumber()), true)
		case OpNotEqual:
			vm.eqChain(int(vm.temp.AsNumber()), false)

		case OpOr:
			vm.orChain(int(vm.temp.AsNumber()))
		case OpAnd:
			vm.andChain(int(vm.temp.AsNumber()))

		case OpPrint:
			v := vm.pop()
			vm.logger().Info("print", "value", printValue(v))
			vm.push(Nil)

		case OpClosure:
			fnVal := readConstant()
			fn := fnVal.AsFunction()
			closure := newClosure(vm, fn)
			vm.push(ClosureVal(closure))
			for i := 0; i < fn.upvalCount; i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					closure.upvalues[i] = vm.captureUpvalue(&vm.stack[frame.slots+index])
				} else {
					closure.upvalues[i] = frame.closure.upvalues[index]
				}
			}

		case OpCall:
			argn := int(readByte()) + vm.spliceExtra
			vm.spliceExtra = 0
			vm.temp = NumberVal(float64(argn))
			if err := vm.callValue(vm.peek(argn), argn); err != nil {
				return Nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpReturn:
			retVal := vm.pop()
			vm.closeUpvalues(&vm.stack[frame.slots+1])
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return retVal, nil
			}
			vm.stackTop = frame.slots
			vm.push(retVal)
			frame = &vm.frames[vm.frameCount-1]

		default:
			return vm.errResult("unimplemented instruction: %s", op)
		}
	}
}

func (vm *VM) errResult(format string, args ...any) (Value, error) {
	return Nil, vm.runtimeError(format, args...)
}

// arityFor resolves the effective operand count for an arithmetic
// opcode: the 0/1/2 variants are fixed, the N variant reads the
// runtime op_temp register (set by the preceding CALL, whose count
// already includes whatever SPLICE accumulated).
func arityFor(op OpCode, temp Value) int {
	switch op {
	case OpSum0, OpSubtract0, OpMultiply0, OpDivide0:
		return 0
	case OpSum1, OpSubtract1, OpMultiply1, OpDivide1:
		return 1
	case OpSum2, OpSubtract2, OpMultiply2, OpDivide2:
		return 2
	default:
		return int(temp.AsNumber())
	}
}

// arith implements ARITH_OP: 0 args -> identity, 1 arg -> op(identity,
// arg), n args -> left fold over the n values below the stack top.
func (vm *VM) arith(n int, identity float64, op func(a, b float64) float64) error {
	if n == 0 {
		vm.push(NumberVal(identity))
		return nil
	}
	if n == 1 {
		v := vm.peek(0)
		if !v.IsNumber() {
			return RuntimeError{Message: "expected number val."}
		}
		vm.popN(1)
		vm.push(NumberVal(op(identity, v.AsNumber())))
		return nil
	}
	v1 := vm.peek(n - 1)
	v2 := vm.peek(n - 2)
	if !v1.IsNumber() || !v2.IsNumber() {
		return RuntimeError{Message: "expected number val."}
	}
	res := op(v1.AsNumber(), v2.AsNumber())
	for i := n - 3; i >= 0; i-- {
		v := vm.peek(i)
		if !v.IsNumber() {
			return RuntimeError{Message: "expected number val."}
		}
		res = op(res, v.AsNumber())
	}
	vm.popN(n)
	vm.push(NumberVal(res))
	return nil
}

// compare implements COMPARE_OP's chained semantics: (< a b c) is true
// iff a<b and b<c; fewer than 2 args is trivially true. Each adjacent
// pair must satisfy op, short-circuiting false on the first pair that
// doesn't.
func (vm *VM) compare(n int, op func(a, b float64) bool) error {
	if n < 2 {
		vm.popN(n)
		vm.push(BoolVal(true))
		return nil
	}
	v1 := vm.peek(n - 1)
	if !v1.IsNumber() {
		return RuntimeError{Message: "expected number val."}
	}
	ok := true
	for i := n - 2; i >= 0; i-- {
		v2 := vm.peek(i)
		if !v2.IsNumber() {
			return RuntimeError{Message: "expected number val."}
		}
		if !op(v1.AsNumber(), v2.AsNumber()) {
			ok = false
			break
		}
		v1 = v2
	}
	vm.popN(n)
	vm.push(BoolVal(ok))
	return nil
}

// eqChain implements EQUAL/NOT_EQUAL's chained semantics: every
// adjacent pair must have valueEq(a,b) == identity (true for EQUAL,
// false for NOT_EQUAL), short-circuiting false on the first pair that
// doesn't; fewer than 2 args is trivially true.
func (vm *VM) eqChain(n int, identity bool) {
	if n < 2 {
		vm.popN(n)
		vm.push(BoolVal(true))
		return
	}
	v1 := vm.peek(n - 1)
	ok := true
	for i := n - 2; i >= 0; i-- {
		v2 := vm.peek(i)
		if valueEq(v1, v2) != identity {
			ok = false
			break
		}
		v1 = v2
	}
	vm.popN(n)
	vm.push(BoolVal(ok))
}

// orChain: leftmost truthy value wins and short-circuits; otherwise
// the last value is the result.
func (vm *VM) orChain(n int) {
	if n == 0 {
		vm.push(Nil)
		return
	}
	values := make([]Value, n)
	for i := 0; i < n; i++ {
		values[i] = vm.peek(n - 1 - i)
	}
	vm.popN(n)
	for _, v := range values {
		if !v.IsFalsey() {
			vm.push(v)
			return
		}
	}
	vm.push(values[n-1])
}

// andChain: leftmost falsey value wins and short-circuits; otherwise
// the last value is the result.
func (vm *VM) andChain(n int) {
	if n == 0 {
		vm.push(BoolVal(true))
		return
	}
	values := make([]Value, n)
	for i := 0; i < n; i++ {
		values[i] = vm.peek(n - 1 - i)
	}
	vm.popN(n)
	for _, v := range values {
		if v.IsFalsey() {
			vm.push(v)
			return
		}
	}
	vm.push(values[n-1])
}
