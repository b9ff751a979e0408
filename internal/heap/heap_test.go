package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbeerbower/hemlock/internal/value"
)

func TestStringRefcount(t *testing.T) {
	s := NewString("hello")
	require.Equal(t, int64(1), s.RefCount(), "new string refcount")
	s.Retain()
	require.Equal(t, int64(2), s.RefCount(), "after retain")
	require.False(t, s.Release(), "release should not have freed yet")
	require.True(t, s.Release(), "release should have freed on the second call")
}

func TestStringRuneLen(t *testing.T) {
	s := NewString("héllo")
	if got := s.ByteLen(); got != 6 {
		t.Errorf("ByteLen() = %d, want 6", got)
	}
	if got := s.RuneLen(); got != 5 {
		t.Errorf("RuneLen() = %d, want 5", got)
	}
	s.Append([]byte("!"))
	if got := s.RuneLen(); got != 6 {
		t.Errorf("RuneLen() after append = %d, want 6", got)
	}
}

func TestStringEqual(t *testing.T) {
	a := NewString("abc")
	b := NewString("abc")
	c := NewString("abd")
	if !Equal(a, b) {
		t.Error("equal-content strings should compare equal")
	}
	if Equal(a, c) {
		t.Error("different-content strings should not compare equal")
	}
}

func TestArrayOwnsElements(t *testing.T) {
	s := NewString("x")
	elem := value.Heap(value.KindString, s)
	arr := NewArray([]value.Value{elem})
	// NewArray retains each element; the caller's own reference plus
	// the array's is 2.
	require.Equal(t, int64(2), s.RefCount(), "after NewArray")
	value.Release(elem) // drop the caller's reference
	require.Equal(t, int64(1), s.RefCount(), "after caller release")
	require.True(t, arr.Release(), "releasing the last array reference should free it")
	require.Equal(t, int64(0), s.RefCount(), "array release should cascade to owned elements")
}

func TestArrayPushPop(t *testing.T) {
	arr := NewArray(nil)
	arr.Push(value.I32(1))
	arr.Push(value.I32(2))
	if arr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", arr.Len())
	}
	v, ok := arr.Pop()
	if !ok || v.AsInt64() != 2 {
		t.Fatalf("Pop() = %v, %v, want 2, true", v, ok)
	}
	if arr.Len() != 1 {
		t.Fatalf("Len() after pop = %d, want 1", arr.Len())
	}
}

func TestArrayClone(t *testing.T) {
	arr := NewArray([]value.Value{value.I32(1), value.I32(2)})
	clone := arr.Clone(func(v value.Value) value.Value { return v })
	if clone == arr {
		t.Fatal("Clone should return a distinct Array")
	}
	if clone.Len() != arr.Len() {
		t.Fatalf("clone length = %d, want %d", clone.Len(), arr.Len())
	}
}
