package amex

import "log/slog"

// gcHeapGrowFactor is the default for the gc.heap_grow_factor setting,
// which scales next_GC relative to the live-object byte count surviving
// the most recent collection. Mirrors GC_HEAP_GROW_FACTOR.
const gcHeapGrowFactor = 2

// registerObject links a freshly allocated heap object into the VM's
// object list and accounts its approximate size toward bytesAllocated,
// triggering a collection first if doing so crosses the configured
// stress-test threshold or the next_GC watermark. Mirrors reallocate's
// "only collect when growing" rule applied to object allocation
// instead of realloc.
func (vm *VM) registerObject(o heapObject, kind objKind) {
	h := o.header()
	h.kind = kind
	size := approxSize(o)
	vm.bytesAllocated += size

	if vm.config.GetBool("gc.stress") || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}

	h.next = vm.objects
	vm.objects = o
}

// markObject grays obj: marks it reachable and pushes it onto the
// worklist so traceReferences later blackens it by tracing its own
// references. Already-marked objects are skipped to break cycles.
func (vm *VM) markObject(obj heapObject) {
	if obj == nil {
		return
	}
	h := obj.header()
	if h.marked {
		return
	}
	h.marked = true
	vm.grayStack = append(vm.grayStack, obj)
}

func (vm *VM) markValue(v Value) {
	if v.IsObject() {
		vm.markObject(v.heapObj())
	}
}

func (vm *VM) markArray(a *Array) {
	for _, v := range a.values {
		vm.markValue(v)
	}
}

func (vm *VM) markTable(t *Table) {
	for _, entry := range t.entries {
		vm.markValue(entry.key)
		vm.markValue(entry.value)
	}
}

// markRoots marks every GC root: the value stack, the closures live in
// each call frame, the open-upvalue chain, the globals table, and (via
// markCompilerRoots) whatever function is mid-compilation.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.next {
		vm.markObject(uv)
	}
	if vm.globals != nil {
		vm.markObject(vm.globals)
		vm.markTable(vm.globals)
	}
	vm.markCompilerRoots()
}

// blackenObject traces obj's own references, marking each one gray in
// turn. Strings, buffers, and natives hold no Value references and
// need no case.
func (vm *VM) blackenObject(obj heapObject) {
	switch o := obj.(type) {
	case *Array:
		vm.markArray(o)
	case *Table:
		vm.markTable(o)
	case *Upvalue:
		vm.markValue(o.closed)
	case *Function:
		if o.name != nil {
			vm.markObject(o.name)
		}
		if o.chunk.constants != nil {
			vm.markArray(o.chunk.constants)
		}
	case *Closure:
		vm.markObject(o.function)
		for _, uv := range o.upvalues {
			if uv != nil {
				vm.markObject(uv)
			}
		}
	}
}

func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		obj := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		vm.blackenObject(obj)
	}
}

// sweep unlinks every still-white (unmarked) object from vm.objects
// and clears the mark bit on survivors. Unlike free_object in the C
// draft, we never reclaim memory by hand here: once an object is
// unlinked from vm.objects and has no other Go-side reference, the Go
// runtime's own collector reclaims it in its own time. bytesAllocated
// is corrected to reflect only what survives.
func (vm *VM) sweep() {
	var head heapObject
	var tail heapObject
	survivors := 0
	for obj := vm.objects; obj != nil; {
		h := obj.header()
		next := h.next
		if h.marked {
			h.marked = false
			h.next = nil
			if head == nil {
				head = obj
			} else {
				tail.header().next = obj
			}
			tail = obj
			survivors += approxSize(obj)
		}
		obj = next
	}
	vm.objects = head
	vm.bytesAllocated = survivors
}

// collectGarbage runs one full mark-sweep cycle: mark every root gray,
// trace until the worklist is empty (turning gray objects black),
// drop the string-intern table's now-dangling weak entries, sweep
// everything still white, then grow next_GC proportional to what
// survived. Mirrors collect_garbage in gc.c.
func (vm *VM) collectGarbage() {
	before := vm.bytesAllocated
	vm.markRoots()
	vm.traceReferences()
	if vm.strings != nil {
		vm.strings.removeWhite()
	}
	vm.sweep()
	vm.nextGC = vm.bytesAllocated * vm.config.GetInt("gc.heap_grow_factor")
	vm.logger().Debug("gc cycle",
		slog.Int("before", before),
		slog.Int("after", vm.bytesAllocated),
		slog.Int("next_gc", vm.nextGC))
}
