package amex

// String is an interned, immutable byte sequence. Symbols and
// Keywords reuse this same representation; the owning Value's tag is
// what distinguishes them. Grounded on amex.h's String struct and
// object.c's allocate_string/copy_string.
type String struct {
	gcHeader
	chars string
	hash  uint32
}

func (s *String) String() string { return s.chars }

// hashFNV1a computes the 32-bit FNV-1a hash used for string/symbol/
// keyword interning and table keys, per util.c's hash_cstring.
func hashFNV1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// internString returns the unique *String instance for chars,
// allocating and registering a new one only if the intern table
// doesn't already hold it. Mirrors copy_string/table_find_string: the
// same Table abstraction used everywhere else in amex backs the
// string-intern table, so lookups hash and probe exactly like any
// other table.
func (vm *VM) internString(chars string) *String {
	hash := hashFNV1a(chars)
	if existing := vm.strings.findString(chars, hash); existing != nil {
		return existing
	}
	s := &String{chars: chars, hash: hash}
	vm.registerObject(s, objString)
	// GC GUARD: push before the table_set allocation can trigger a
	// collection that would otherwise not see this fresh string.
	vm.push(StringVal(s))
	vm.strings.Set(StringVal(s), Nil)
	vm.pop()
	return s
}
