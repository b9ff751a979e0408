package builtin

import (
	"fmt"
	"sync"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// arena is the manually-managed raw-memory backing for `ptr` Values
// (§3.1: "raw address, opaque"). hemlock has no hardware address
// space of its own, so alloc/free simulate one: each allocation is a
// Go byte slice keyed by a monotonically increasing fake address, and
// every ptr_* accessor resolves an address back to (slice, offset)
// before reading or writing through it. Double-free and use-after-free
// are caught the same way a real allocator's debug build would catch
// them: by looking the address up and finding it gone.
type arena struct {
	mu      sync.Mutex
	regions map[uint64][]byte
	next    uint64
}

func newArena() *arena {
	return &arena{regions: make(map[uint64][]byte), next: 1}
}

func (a *arena) alloc(size int, zero bool) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr := a.next
	a.next += uint64(size) + 1
	buf := make([]byte, size)
	_ = zero // make() already zero-fills; kept for talloc's documented intent
	a.regions[addr] = buf
	return addr
}

func (a *arena) free(addr uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.regions[addr]; !ok {
		return fmt.Errorf("free: address 0x%x is not a live allocation", addr)
	}
	delete(a.regions, addr)
	return nil
}

func (a *arena) resolve(addr uint64) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for base, region := range a.regions {
		if addr >= base && addr < base+uint64(len(region)) {
			return region, nil
		}
		if addr == base && len(region) == 0 {
			return region, nil
		}
	}
	return nil, fmt.Errorf("ptr: address 0x%x is not within any live allocation", addr)
}

func (a *arena) baseOf(addr uint64) (base uint64, region []byte, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for b, region := range a.regions {
		if addr >= b && addr < b+uint64(len(region)) {
			return b, region, nil
		}
	}
	return 0, nil, fmt.Errorf("ptr: address 0x%x is not within any live allocation", addr)
}

func (a *arena) realloc(addr uint64, newSize int) (uint64, error) {
	a.mu.Lock()
	region, ok := a.regions[addr]
	a.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("realloc: address 0x%x is not a live allocation", addr)
	}
	newAddr := a.alloc(newSize, false)
	a.mu.Lock()
	newRegion := a.regions[newAddr]
	copy(newRegion, region)
	a.mu.Unlock()
	if err := a.free(addr); err != nil {
		return 0, err
	}
	return newAddr, nil
}

func argUint(v value.Value) (uint64, error) {
	if !v.Kind.IsInteger() {
		return 0, fmt.Errorf("expected an integer address/size, got %s", v.Kind)
	}
	if v.Kind.IsUnsigned() {
		return v.AsUint64(), nil
	}
	return uint64(v.AsInt64()), nil
}

func sizeofKind(name string) (int, error) {
	switch name {
	case "i8", "u8", "bool":
		return 1, nil
	case "i16", "u16":
		return 2, nil
	case "i32", "u32", "f32", "rune":
		return 4, nil
	case "i64", "u64", "f64", "ptr":
		return 8, nil
	default:
		return 0, fmt.Errorf("sizeof: unknown primitive kind %q", name)
	}
}

// numericWidthKinds lists the fixed-width numeric kinds ptr_read_*/
// ptr_write_* accessors are generated for.
var numericWidthKinds = []value.Kind{
	value.KindI8, value.KindI16, value.KindI32, value.KindI64,
	value.KindU8, value.KindU16, value.KindU32, value.KindU64,
	value.KindF32, value.KindF64,
}

func (a *arena) builtins() map[string]func(args []value.Value) (value.Value, error) {
	m := map[string]func(args []value.Value) (value.Value, error){
		"alloc":         a.builtinAlloc,
		"free":          a.builtinFree,
		"realloc":       a.builtinRealloc,
		"memset":        a.builtinMemset,
		"memcpy":        a.builtinMemcpy,
		"sizeof":        a.builtinSizeof,
		"talloc":        a.builtinTalloc,
		"buffer_to_ptr": a.builtinBufferToPtr,
	}
	for _, k := range numericWidthKinds {
		k := k
		m["ptr_read_"+k.String()] = func(args []value.Value) (value.Value, error) { return a.ptrRead(args, k) }
		m["ptr_write_"+k.String()] = func(args []value.Value) (value.Value, error) { return a.ptrWrite(args, k) }
	}
	return m
}

func (a *arena) builtinAlloc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("alloc(size) requires one argument")
	}
	size, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Ptr(a.alloc(int(size), false)), nil
}

func (a *arena) builtinTalloc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("talloc(size) requires one argument")
	}
	size, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Ptr(a.alloc(int(size), true)), nil
}

func (a *arena) builtinFree(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("free(ptr) requires one argument")
	}
	addr, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	if err := a.free(addr); err != nil {
		return value.Value{}, err
	}
	return value.Null, nil
}

func (a *arena) builtinRealloc(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fmt.Errorf("realloc(ptr, size) requires two arguments")
	}
	addr, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	size, err := argUint(args[1])
	if err != nil {
		return value.Value{}, err
	}
	newAddr, err := a.realloc(addr, int(size))
	if err != nil {
		return value.Value{}, err
	}
	return value.Ptr(newAddr), nil
}

func (a *arena) builtinMemset(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("memset(ptr, byte, len) requires three arguments")
	}
	addr, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	b, err := argUint(args[1])
	if err != nil {
		return value.Value{}, err
	}
	n, err := argUint(args[2])
	if err != nil {
		return value.Value{}, err
	}
	base, region, err := a.baseOf(addr)
	if err != nil {
		return value.Value{}, err
	}
	off := int(addr - base)
	if off+int(n) > len(region) {
		return value.Value{}, fmt.Errorf("memset: range [%d,%d) exceeds allocation of length %d", off, off+int(n), len(region))
	}
	for i := 0; i < int(n); i++ {
		region[off+i] = byte(b)
	}
	return value.Null, nil
}

func (a *arena) builtinMemcpy(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, fmt.Errorf("memcpy(dst, src, len) requires three arguments")
	}
	dst, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	src, err := argUint(args[1])
	if err != nil {
		return value.Value{}, err
	}
	n, err := argUint(args[2])
	if err != nil {
		return value.Value{}, err
	}
	dstBase, dstRegion, err := a.baseOf(dst)
	if err != nil {
		return value.Value{}, err
	}
	srcBase, srcRegion, err := a.baseOf(src)
	if err != nil {
		return value.Value{}, err
	}
	dstOff, srcOff := int(dst-dstBase), int(src-srcBase)
	if dstOff+int(n) > len(dstRegion) || srcOff+int(n) > len(srcRegion) {
		return value.Value{}, fmt.Errorf("memcpy: range of length %d exceeds an allocation", n)
	}
	copy(dstRegion[dstOff:dstOff+int(n)], srcRegion[srcOff:srcOff+int(n)])
	return value.Null, nil
}

func (a *arena) builtinSizeof(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindString {
		return value.Value{}, fmt.Errorf("sizeof(kind) requires one string argument")
	}
	s := args[0].Object().(*heap.String)
	n, err := sizeofKind(s.String())
	if err != nil {
		return value.Value{}, err
	}
	return value.I64(int64(n)), nil
}

func (a *arena) builtinBufferToPtr(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindBuffer {
		return value.Value{}, fmt.Errorf("buffer_to_ptr(buf) requires one buffer argument")
	}
	buf := args[0].Object().(*heap.Buffer)
	addr := a.alloc(buf.Len(), false)
	region, _ := a.resolve(addr)
	copy(region, buf.Bytes())
	return value.Ptr(addr), nil
}

func builtinBuffer(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("buffer(size) requires one argument")
	}
	n, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Heap(value.KindBuffer, heap.NewBuffer(int(n))), nil
}

func (a *arena) ptrRead(args []value.Value, k value.Kind) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("ptr_read_%s(ptr) requires one argument", k)
	}
	addr, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	base, region, err := a.baseOf(addr)
	if err != nil {
		return value.Value{}, err
	}
	off := int(addr - base)
	return readNumeric(region, off, k)
}

func (a *arena) ptrWrite(args []value.Value, k value.Kind) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, fmt.Errorf("ptr_write_%s(ptr, value) requires two arguments", k)
	}
	addr, err := argUint(args[0])
	if err != nil {
		return value.Value{}, err
	}
	base, region, err := a.baseOf(addr)
	if err != nil {
		return value.Value{}, err
	}
	off := int(addr - base)
	return value.Null, writeNumeric(region, off, k, args[1])
}
