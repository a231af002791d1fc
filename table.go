package amex

// tableMaxLoad is the load-factor ceiling that triggers a rehash.
const tableMaxLoad = 0.75

type tableEntry struct {
	key   Value
	value Value
}

// Table is an open-addressed hash map with tombstone deletion,
// ported from original_source/src/table.c. Keys are Number, String,
// Symbol, or Keyword; Number hashes via hashNumber (bit pattern, not a
// lossy integer cast — see spec.md Open Question 4), strings/symbols/
// keywords via their precomputed FNV-1a hash.
//
// Empty entry: Nil key, Nil value.
// Tombstone:   Nil key, non-Nil value (keeps probe chains intact).
type Table struct {
	gcHeader
	count   int
	entries []tableEntry
}

func newTable(vm *VM, capacity int) *Table {
	t := &Table{}
	if capacity > 0 {
		t.entries = make([]tableEntry, capacity)
	}
	vm.registerObject(t, objTable)
	return t
}

func (t *Table) Count() int { return t.count }

// findEntry locates the entry for key, or the first tombstone/empty
// slot along its probe chain if key isn't present.
func findEntry(entries []tableEntry, key Value) *tableEntry {
	capacity := len(entries)
	index := int(keyHash(key)) % capacity
	var tombstone *tableEntry
	for {
		entry := &entries[index]
		if entry.key.IsNil() {
			if entry.value.IsNil() {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			if tombstone == nil {
				tombstone = entry
			}
		} else if valueEq(entry.key, key) {
			return entry
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]tableEntry, capacity)
	for i := range entries {
		entries[i] = tableEntry{key: Nil, value: Nil}
	}
	t.count = 0
	for _, entry := range t.entries {
		if entry.key.IsNil() {
			continue
		}
		dest := findEntry(entries, entry.key)
		dest.key = entry.key
		dest.value = entry.value
		t.count++
	}
	t.entries = entries
}

// Get looks up key, returning (value, true) if present.
func (t *Table) Get(key Value) (Value, bool) {
	if t.count == 0 {
		return Nil, false
	}
	entry := findEntry(t.entries, key)
	if entry.key.IsNil() {
		return Nil, false
	}
	return entry.value, true
}

// Set inserts or overwrites key -> value, rehashing first if the load
// factor ceiling would otherwise be exceeded. Returns true if key was
// not previously present. Mirrors table_set.
func (t *Table) Set(key, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	entry := findEntry(t.entries, key)
	isNewKey := entry.key.IsNil()
	if isNewKey && entry.value.IsNil() {
		t.count++
	}
	entry.key = key
	entry.value = value
	return isNewKey
}

// Delete removes key, leaving a tombstone so later probe chains
// remain intact. Returns false if key wasn't present.
func (t *Table) Delete(key Value) bool {
	if t.count == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.key.IsNil() {
		return false
	}
	entry.key = Nil
	entry.value = BoolVal(true)
	return true
}

// findString looks up an interned string by content without
// requiring a pre-built Value key, used only by the string-intern
// table. Mirrors table_find_string.
func (t *Table) findString(chars string, hash uint32) *String {
	if t.count == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := int(hash) % capacity
	for {
		entry := &t.entries[index]
		if entry.key.IsNil() {
			if entry.value.IsNil() {
				return nil
			}
		} else if entry.key.typ == TypeString {
			s := entry.key.obj.(*String)
			if s.hash == hash && s.chars == chars {
				return s
			}
		}
		index = (index + 1) % capacity
	}
}

// removeWhite deletes every entry whose key is an unmarked (white)
// heap object, severing the intern table's weak references to dead
// strings after a trace. Mirrors table_remove_white.
func (t *Table) removeWhite() {
	for i := range t.entries {
		key := t.entries[i].key
		if key.IsObject() && !key.heapObj().header().marked {
			t.Delete(key)
		}
	}
}
