package amex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, source string) Value {
	t.Helper()
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, source)
	require.NoError(t, err)
	return result
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected func(t *testing.T, v Value)
	}{
		{
			name:   "arithmetic",
			source: "(+ 1 2 3)",
			expected: func(t *testing.T, v Value) {
				assert.Equal(t, 6.0, v.AsNumber())
			},
		},
		{
			name:   "closure over an argument",
			source: "(def make-adder (fn [n] (fn [x] (+ x n)))) ((make-adder 10) 5)",
			expected: func(t *testing.T, v Value) {
				assert.Equal(t, 15.0, v.AsNumber())
			},
		},
		{
			name:   "named self-recursive fn",
			source: "(def fact (fn fact [n] (if (<= n 1) 1 (* n (fact (- n 1)))))) (fact 6)",
			expected: func(t *testing.T, v Value) {
				assert.Equal(t, 720.0, v.AsNumber())
			},
		},
		{
			name:   "while loop with mutation",
			source: "(def x 0) (while (< x 3) (set x (+ x 1))) x",
			expected: func(t *testing.T, v Value) {
				assert.Equal(t, 3.0, v.AsNumber())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expected(t, runSource(t, tt.source))
		})
	}
}

// TestMacroFlagPrecedingValue exercises spec.md's macro scenario
// (`(def m (fn [a b] ~(+ ,a ,b)) :macro)`) with :macro moved before the
// value, per Open Question 2's ruling that implementations should
// require the flag to precede the value rather than trail it — see
// DESIGN.md.
func TestMacroFlagPrecedingValue(t *testing.T) {
	v := runSource(t, "(def m :macro (fn [a b] ~(+ ,a ,b))) (m 2 3)")
	require.True(t, v.IsNumber())
	assert.Equal(t, 5.0, v.AsNumber())
}

func TestVariadicAndSpliceAtCallSite(t *testing.T) {
	v := runSource(t, "((fn [& xs] xs) ;[1 2 3] 4)")
	require.True(t, v.IsArray())
	arr := v.AsArray()
	require.Equal(t, 4, arr.Count())
	assert.Equal(t, []float64{1, 2, 3, 4}, []float64{
		arr.Get(0).AsNumber(), arr.Get(1).AsNumber(), arr.Get(2).AsNumber(), arr.Get(3).AsNumber(),
	})
}

func TestClosureSharesCapturedBinding(t *testing.T) {
	// `def` inside a function body declares a local (not a global), so
	// n here is captured by the inner fn as a genuine upvalue: mutating
	// it through one call must be visible on the next.
	vm := NewVMWithCoreEnv()
	forms, err := Parse(vm, `
		(def make-counter (fn []
			(def n 0)
			(fn [] (set n (+ n 1)) n)))
		(def counter (make-counter))
		(counter)
		(counter)
	`)
	require.NoError(t, err)
	function, err := Compile(vm, forms)
	require.NoError(t, err)
	result, err := vm.Interpret(function)
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.AsNumber())
}

func TestQuasiquoteLevelTracking(t *testing.T) {
	v := runSource(t, "~(a ,(+ 1 2) b)")
	require.True(t, v.IsTuple())
	arr := v.AsArray()
	require.Equal(t, 3, arr.Count())
	assert.True(t, arr.Get(0).IsSymbol())
	assert.Equal(t, "a", arr.Get(0).AsString().String())
	assert.Equal(t, 3.0, arr.Get(1).AsNumber())
	assert.Equal(t, "b", arr.Get(2).AsString().String())
}

func TestArithmeticIdentities(t *testing.T) {
	tests := []struct {
		source   string
		expected float64
	}{
		{"(+)", 0},
		{"(*)", 1},
		{"(- 5)", -5},
		{"(/ 4)", 0.25},
		{"(+ 1 2 3)", 6},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, runSource(t, tt.source).AsNumber())
		})
	}
}

func TestComparisonChains(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"(= 1 1 1)", true},
		{"(< 1 2 3)", true},
		{"(< 1 2 2)", false},
		{`(= "x" "x")`, true},
		{"(< 5)", true},
		{"(> 5)", true},
		{"(<= 5)", true},
		{"(>= 5)", true},
		{"(=)", true},
		{"(not= 1 1)", false},
		{"(not= 1 2)", true},
		{"(not= 1)", true},
		{"(not=)", true},
		{"(not= 1 2 1)", true},
		{"(not= 1 2 2)", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, runSource(t, tt.source).AsBool())
		})
	}
}

func TestMacroCannotShadowSpecialForm(t *testing.T) {
	vm := NewVMWithCoreEnv()
	// Defines a global named "if" flagged as a macro; a subsequent
	// (if ...) call must still compile as the special form, not expand
	// the macro, since special forms take precedence unconditionally.
	_, err := Run(vm, `(def if :macro (fn [a b c] b)) (if true 1 2)`)
	require.NoError(t, err)
}

func TestUnquoteOutsideQuasiquoteIsCompileError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "(unquote 1)")
	require.Error(t, err)
	var compileErr CompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestMultiLevelSpliceIsHardError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "((fn [& xs] xs) ;;[1 2])")
	require.Error(t, err)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "undefined-name")
	require.Error(t, err)
	var runtimeErr RuntimeError
	assert.ErrorAs(t, err, &runtimeErr)
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "(def f (fn [a b] a)) (f 1)")
	require.Error(t, err)
}
