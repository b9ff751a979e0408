package builtin

import (
	"testing"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func TestArenaAllocWriteReadMemcpy(t *testing.T) {
	a := newArena()

	src, err := a.builtinAlloc([]value.Value{value.I64(4)})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.ptrWrite([]value.Value{src, value.I32(0x11223344)}, value.KindI32); err != nil {
		t.Fatalf("ptr_write_i32: %v", err)
	}
	read, err := a.ptrRead([]value.Value{src}, value.KindI32)
	if err != nil {
		t.Fatalf("ptr_read_i32: %v", err)
	}
	if read.AsInt64() != 0x11223344 {
		t.Fatalf("read back %#x, want %#x", read.AsInt64(), 0x11223344)
	}

	dst, err := a.builtinAlloc([]value.Value{value.I64(4)})
	if err != nil {
		t.Fatalf("alloc(dst): %v", err)
	}
	if _, err := a.builtinMemcpy([]value.Value{dst, src, value.I64(4)}); err != nil {
		t.Fatalf("memcpy: %v", err)
	}
	copied, err := a.ptrRead([]value.Value{dst}, value.KindI32)
	if err != nil {
		t.Fatalf("ptr_read_i32(dst): %v", err)
	}
	if copied.AsInt64() != 0x11223344 {
		t.Fatalf("copied = %#x, want %#x", copied.AsInt64(), 0x11223344)
	}
}

func TestArenaFreeThenUseAfterFreeFails(t *testing.T) {
	a := newArena()
	p, err := a.builtinAlloc([]value.Value{value.I64(8)})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.builtinFree([]value.Value{p}); err != nil {
		t.Fatalf("free: %v", err)
	}
	if _, err := a.builtinFree([]value.Value{p}); err == nil {
		t.Fatal("double free should fail")
	}
	if _, err := a.ptrRead([]value.Value{p}, value.KindI8); err == nil {
		t.Fatal("reading a freed address should fail")
	}
}

func TestArenaReallocPreservesContentAndFreesOld(t *testing.T) {
	a := newArena()
	p, err := a.builtinAlloc([]value.Value{value.I64(4)})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.ptrWrite([]value.Value{p, value.I32(7)}, value.KindI32); err != nil {
		t.Fatalf("ptr_write_i32: %v", err)
	}
	grown, err := a.builtinRealloc([]value.Value{p, value.I64(8)})
	if err != nil {
		t.Fatalf("realloc: %v", err)
	}
	v, err := a.ptrRead([]value.Value{grown}, value.KindI32)
	if err != nil {
		t.Fatalf("ptr_read_i32(grown): %v", err)
	}
	if v.AsInt64() != 7 {
		t.Fatalf("realloc'd content = %v, want 7", v.AsInt64())
	}
	if _, err := a.ptrRead([]value.Value{p}, value.KindI32); err == nil {
		t.Fatal("the old address should no longer be live after realloc")
	}
}

func TestArenaMemsetFillsRange(t *testing.T) {
	a := newArena()
	p, err := a.builtinAlloc([]value.Value{value.I64(4)})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.builtinMemset([]value.Value{p, value.I32(0xAB), value.I64(4)}); err != nil {
		t.Fatalf("memset: %v", err)
	}
	for i := 0; i < 4; i++ {
		v, err := a.ptrRead([]value.Value{addPtr(p, i)}, value.KindU8)
		if err != nil {
			t.Fatalf("ptr_read_u8[%d]: %v", i, err)
		}
		if v.AsUint64() != 0xAB {
			t.Fatalf("byte %d = %#x, want 0xab", i, v.AsUint64())
		}
	}
}

func addPtr(p value.Value, delta int) value.Value {
	return value.Ptr(p.AsUint64() + uint64(delta))
}

func TestSizeofKnownAndUnknownKinds(t *testing.T) {
	cases := map[string]int64{"i8": 1, "i32": 4, "i64": 8, "f64": 8}
	a := newArena()
	for name, want := range cases {
		v, err := a.builtinSizeof([]value.Value{value.Heap(value.KindString, heap.NewString(name))})
		if err != nil {
			t.Fatalf("sizeof(%s): %v", name, err)
		}
		if v.AsInt64() != want {
			t.Errorf("sizeof(%s) = %d, want %d", name, v.AsInt64(), want)
		}
	}
	if _, err := a.builtinSizeof([]value.Value{value.Heap(value.KindString, heap.NewString("bogus"))}); err == nil {
		t.Fatal("sizeof of an unknown kind name should fail")
	}
}

func TestBufferToPtrCopiesBytes(t *testing.T) {
	a := newArena()
	buf := heap.NewBufferFromBytes([]byte{1, 2, 3})
	p, err := a.builtinBufferToPtr([]value.Value{value.Heap(value.KindBuffer, buf)})
	if err != nil {
		t.Fatalf("buffer_to_ptr: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		v, err := a.ptrRead([]value.Value{addPtr(p, i)}, value.KindU8)
		if err != nil {
			t.Fatalf("ptr_read_u8[%d]: %v", i, err)
		}
		if v.AsInt64() != want {
			t.Errorf("byte %d = %v, want %v", i, v.AsInt64(), want)
		}
	}
}

func TestBuiltinBufferAllocatesZeroedBuffer(t *testing.T) {
	v, err := builtinBuffer([]value.Value{value.I64(5)})
	if err != nil {
		t.Fatalf("buffer(5): %v", err)
	}
	b := v.Object().(*heap.Buffer)
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
}
