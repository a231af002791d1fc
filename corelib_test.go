package amex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreEnvBuiltinsAreFirstClassClosures(t *testing.T) {
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, "(def plus +) (plus 1 2)")
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.AsNumber())
}

func TestCoreEnvBuiltinsCanBePassedAsArguments(t *testing.T) {
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, "(def apply-op (fn [op a b] (op a b))) (apply-op * 3 4)")
	require.NoError(t, err)
	assert.Equal(t, 12.0, result.AsNumber())
}

func TestCoreEnvArithmeticAcceptsAnyArity(t *testing.T) {
	vm := NewVMWithCoreEnv()
	tests := []struct {
		source   string
		expected float64
	}{
		{"(+)", 0},
		{"(+ 1)", 1},
		{"(+ 1 2 3 4 5)", 15},
		{"(* 1 2 3 4)", 24},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result, err := Run(vm, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.AsNumber())
		})
	}
}

func TestCoreEnvPrintIsFixedArity(t *testing.T) {
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, `(print "hi")`)
	require.NoError(t, err)
	assert.True(t, result.IsNil())
}

func TestCoreEnvPrintRejectsWrongArity(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, `(print "a" "b")`)
	require.Error(t, err)
}

func TestCoreEnvPreservesExistingTableEntries(t *testing.T) {
	vm := NewVM()
	table := newTable(vm, 0)
	table.Set(StringVal(vm.internString("custom")), NumberVal(7))

	env := CoreEnv(vm, table)
	assert.Same(t, table, env)

	v, ok := table.Get(StringVal(vm.internString("custom")))
	require.True(t, ok)
	assert.Equal(t, 7.0, v.AsNumber())
}
