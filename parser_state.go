package amex

// ptype tags what kind of container a parser stack frame is
// accumulating. Grounded on original_source/src/parser.c's
// ParserType/ParseState.
type ptype int

const (
	ptypeRoot ptype = iota
	ptypeToken
	ptypeTuple
	ptypeArray
	ptypeString
	ptypeTable
	ptypeSpecialForm
	ptypeComment
)

type stringSubstate int

const (
	stringStateBase stringSubstate = iota
	stringStateEscape
)

// parseState is one frame of the parser's explicit stack, letting
// parsing restart mid-form across chunked input instead of recursing
// through the call stack.
type parseState struct {
	typ ptype

	buf      *Buffer        // ptypeToken / ptypeString accumulator
	strState stringSubstate // ptypeString escape tracking

	arr *Array // ptypeTuple / ptypeArray elements

	table         *Table // ptypeTable
	tableKey      Value
	tableKeyFound bool

	speForm *String // ptypeSpecialForm: quote/quasiquote/unquote/splice
}
