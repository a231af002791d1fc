package amex

import (
	"strconv"
	"strings"
)

// printValue renders v the way PRINT and the REPL-adjacent tooling
// do: nil/true/false bare, numbers via Go's shortest round-trip
// formatting, strings quoted, symbols bare, keywords colon-prefixed,
// tuples parenthesized, arrays bracketed. Grounded on
// original_source/src/value.c's print_value.
func printValue(v Value) string {
	switch v.Type() {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case TypeString:
		return "\"" + v.AsString().String() + "\""
	case TypeKeyword:
		return ":" + v.AsString().String()
	case TypeSymbol:
		return v.AsString().String()
	case TypeTuple, TypeArray:
		arr := v.AsArray()
		open, close := "[", "]"
		if v.Type() == TypeTuple {
			open, close = "(", ")"
		}
		if arr.Count() == 0 {
			return open + close
		}
		parts := make([]string, arr.Count())
		for i, e := range arr.Values() {
			parts[i] = printValue(e)
		}
		return open + strings.Join(parts, " ") + close
	case TypeFunction:
		f := v.AsFunction()
		if f.name != nil {
			return "<function " + f.name.String() + ">"
		}
		return "<function anonymous>"
	case TypeClosure:
		return printValue(FunctionVal(v.AsClosure().function))
	case TypeNative:
		return "<native " + v.AsNative().name + ">"
	case TypeTable:
		return "<table>"
	default:
		return "<?>"
	}
}
