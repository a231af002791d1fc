package amex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParsesCompilesAndInterprets(t *testing.T) {
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, "(+ 1 2 3)")
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.AsNumber())
}

func TestRunPropagatesParseError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, ")")
	require.Error(t, err)
	var parseErr ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRunPropagatesCompileError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "(unquote 1)")
	require.Error(t, err)
	var compileErr CompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestRunPropagatesRuntimeError(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "(undefined-name)")
	require.Error(t, err)
	var runtimeErr RuntimeError
	assert.ErrorAs(t, err, &runtimeErr)
}

func TestNewVMWithCoreEnvHasArithmeticBound(t *testing.T) {
	vm := NewVMWithCoreEnv()
	result, err := Run(vm, "(* 2 3 4)")
	require.NoError(t, err)
	assert.Equal(t, 24.0, result.AsNumber())
}

func TestRunSharesStateAcrossSequentialCalls(t *testing.T) {
	vm := NewVMWithCoreEnv()
	_, err := Run(vm, "(def counter 0)")
	require.NoError(t, err)

	result, err := Run(vm, "(set counter (+ counter 1)) counter")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.AsNumber())

	result, err = Run(vm, "(set counter (+ counter 1)) counter")
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.AsNumber())
}
