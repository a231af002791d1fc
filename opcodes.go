package amex

// OpCode is a single bytecode instruction tag. Order and membership
// mirror original_source/src/include/amex.h's OpCode enum; the
// arithmetic family gets 0/1/2/N arity-specialized variants (N reads
// the operand count from the runtime argument-count register CALL
// sets, mirroring the C draft's ARITH_OP macros and vm.c's op_temp
// bookkeeping). CoreEnv binds only the N variants, so the 0/1/2
// variants are never emitted.
type OpCode uint8

const (
	OpNil OpCode = iota
	OpTuple
	OpArray
	OpTrue
	OpFalse
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpDefineGlobal
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue
	OpGetGlobal
	OpSetGlobal
	OpConstant
	OpPop
	OpPopN
	OpSaveTop
	OpRestoreTop
	OpSum0
	OpSum1
	OpSum2
	OpSumN
	OpSubtract0
	OpSubtract1
	OpSubtract2
	OpSubtractN
	OpMultiply0
	OpMultiply1
	OpMultiply2
	OpMultiplyN
	OpDivide0
	OpDivide1
	OpDivide2
	OpDivideN
	OpOr
	OpAnd
	OpJump
	OpJumpIfFalse
	OpLoop
	OpClosure
	OpCall
	OpPrint
	OpReturn
	OpSplice
)

var opcodeNames = [...]string{
	OpNil:          "NIL",
	OpTuple:        "TUPLE",
	OpArray:        "ARRAY",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpEqual:        "EQUAL",
	OpNotEqual:     "NOT_EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpGreaterEqual: "GREATER_EQUAL",
	OpLessEqual:    "LESS_EQUAL",
	OpDefineGlobal: "DEFINE_GLOBAL",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpConstant:     "CONSTANT",
	OpPop:          "POP",
	OpPopN:         "POPN",
	OpSaveTop:      "SAVE_TOP",
	OpRestoreTop:   "RESTORE_TOP",
	OpSum0:         "SUM0",
	OpSum1:         "SUM1",
	OpSum2:         "SUM2",
	OpSumN:         "SUMN",
	OpSubtract0:    "SUBTRACT0",
	OpSubtract1:    "SUBTRACT1",
	OpSubtract2:    "SUBTRACT2",
	OpSubtractN:    "SUBTRACTN",
	OpMultiply0:    "MULTIPLY0",
	OpMultiply1:    "MULTIPLY1",
	OpMultiply2:    "MULTIPLY2",
	OpMultiplyN:    "MULTIPLYN",
	OpDivide0:      "DIVIDE0",
	OpDivide1:      "DIVIDE1",
	OpDivide2:      "DIVIDE2",
	OpDivideN:      "DIVIDEN",
	OpOr:           "OR",
	OpAnd:          "AND",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpLoop:         "LOOP",
	OpClosure:      "CLOSURE",
	OpCall:         "CALL",
	OpPrint:        "PRINT",
	OpReturn:       "RETURN",
	OpSplice:       "SPLICE",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}
