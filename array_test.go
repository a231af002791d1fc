package amex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowCapacityPolicy(t *testing.T) {
	tests := []struct {
		in, out int
	}{
		{0, 8},
		{4, 8},
		{7, 8},
		{8, 16},
		{16, 32},
		{100, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, growCapacity(tt.in))
	}
}

func TestArrayWriteGrowsAndReads(t *testing.T) {
	vm := NewVM()
	a := newArray(vm, 0)

	for i := 0; i < 20; i++ {
		a.write(NumberVal(float64(i)))
	}

	assert.Equal(t, 20, a.Count())
	for i := 0; i < 20; i++ {
		assert.Equal(t, float64(i), a.Get(i).AsNumber())
	}
}

func TestArraySet(t *testing.T) {
	vm := NewVM()
	a := newArray(vm, 0)
	a.write(NumberVal(1))
	a.write(NumberVal(2))

	a.Set(1, NumberVal(99))
	assert.Equal(t, 99.0, a.Get(1).AsNumber())
	assert.Equal(t, 2, a.Count())
}

func TestArrayValuesReflectsWrites(t *testing.T) {
	vm := NewVM()
	a := newArray(vm, 0)
	a.write(NumberVal(1))
	a.write(NumberVal(2))
	a.write(NumberVal(3))

	values := a.Values()
	assert.Equal(t, 3, len(values))
	assert.Equal(t, 1.0, values[0].AsNumber())
	assert.Equal(t, 3.0, values[2].AsNumber())
}

func TestNewArrayWithInitialCapacity(t *testing.T) {
	vm := NewVM()
	a := newArray(vm, 8)
	assert.Equal(t, 0, a.Count())
	a.write(NumberVal(1))
	assert.Equal(t, 1, a.Count())
}
