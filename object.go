package amex

// objKind tags every heap-allocated object amex's collector traces.
// Mirrors ObjType in the original amex.h.
type objKind uint8

const (
	objString objKind = iota
	objBuffer
	objUpvalue
	objArray
	objTable
	objFunction
	objClosure
	objNative
)

func (k objKind) String() string {
	switch k {
	case objString:
		return "string"
	case objBuffer:
		return "buffer"
	case objUpvalue:
		return "upvalue"
	case objArray:
		return "array"
	case objTable:
		return "table"
	case objFunction:
		return "function"
	case objClosure:
		return "closure"
	case objNative:
		return "native"
	default:
		return "unknown"
	}
}

// gcHeader is embedded in every heap object. It forms the singly-linked
// allocation list the collector sweeps and carries the tri-color mark bit.
//
// Go can't call free() on an object the sweeper decides is unreachable;
// unlinking it from this list is enough to let the host runtime's own GC
// reclaim it once nothing else still references it. See DESIGN.md.
type gcHeader struct {
	next   heapObject
	kind   objKind
	marked bool
}

func (h *gcHeader) header() *gcHeader { return h }

// heapObject is the interface every traced object satisfies; it stands
// in for the C source's `GCObject *` type-punning.
type heapObject interface {
	header() *gcHeader
}

// approxSize estimates the bytes an object occupies, used only to drive
// the allocation accounting that triggers collection (reallocate's
// role in the original source). It is not exact; Go's real allocator
// sizes are opaque, and the spec never requires byte-exact accounting.
func approxSize(o heapObject) int {
	switch v := o.(type) {
	case *String:
		return 24 + len(v.chars)
	case *Buffer:
		return 24 + cap(v.data)
	case *Array:
		return 24 + cap(v.values)*16
	case *Table:
		return 24 + cap(v.entries)*32
	case *Function:
		size := 64 + cap(v.chunk.code)
		if v.chunk.constants != nil {
			size += cap(v.chunk.constants.values) * 16
		}
		return size
	case *Closure:
		return 24 + cap(v.upvalues)*8
	case *Upvalue:
		return 32
	case *Native:
		return 32
	default:
		return 16
	}
}
