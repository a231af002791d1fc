package amex

import (
	"fmt"
	"unsafe"
)

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// uintptrOf gives a comparable address for a *Value, the Go analogue
// of the C source's raw pointer arithmetic over the value stack when
// ordering/locating open upvalues.
func uintptrOf(v *Value) uintptr {
	return uintptr(unsafe.Pointer(v))
}
