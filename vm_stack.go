package amex

// CallFrame represents one in-progress function call. slots is the
// index into vm.stack of the frame's first usable slot: slot 0 of any
// frame holds the closure itself, parameters and locals follow.
// Grounded on original_source/src/include/amex.h's CallFrame.
type CallFrame struct {
	closure *Closure
	ip      int
	slots   int
}

const (
	stackMax  = 4096
	framesMax = 1024
)
