package value

import "testing"

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal i32", I32(5), I32(5), true},
		{"unequal i32", I32(5), I32(6), false},
		{"cross kind never equal", I32(5), I64(5), false},
		{"null equal", Null, Null, true},
		{"bool equal", Bool(true), Bool(true), true},
		{"bool unequal", Bool(true), Bool(false), false},
		{"float equal", F64(1.5), F64(1.5), true},
		{"unsigned equal", U64(1 << 63), U64(1 << 63), true},
		{"ptr equal", Ptr(0x1000), Ptr(0x1000), true},
		{"ptr unequal", Ptr(0x1000), Ptr(0x2000), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestToString(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null, "null"},
		{"bool true", Bool(true), "true"},
		{"i32", I32(-7), "-7"},
		{"u8", U8(200), "200"},
		{"f64", F64(3.25), "3.25"},
		{"rune", Rune('x'), "x"},
		{"ptr", Ptr(0xff), "0xff"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ToString(c.v); got != c.want {
				t.Errorf("ToString(%v) = %q, want %q", c.v, got, c.want)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindI32.IsNumeric() || !KindI32.IsInteger() || !KindI32.IsSigned() {
		t.Error("i32 should be numeric/integer/signed")
	}
	if !KindU16.IsUnsigned() {
		t.Error("u16 should be unsigned")
	}
	if !KindF32.IsFloat() {
		t.Error("f32 should be float")
	}
	if KindBool.IsNumeric() {
		t.Error("bool should not be numeric")
	}
	if !KindArray.IsHeap() || KindI32.IsHeap() {
		t.Error("array should be heap, i32 should not")
	}
	if KindI64.Width() != 64 || KindU8.Width() != 8 {
		t.Error("unexpected numeric width")
	}
}

func TestRetainReleaseNoopOnPrimitive(t *testing.T) {
	// Retain/Release on a non-heap Value must not panic; there is no
	// Payload to dispatch to.
	v := I32(1)
	Retain(v)
	Release(v)
}

type fakePayload struct{ n int }

func (f *fakePayload) Retain()        { f.n++ }
func (f *fakePayload) Release() bool  { f.n--; return f.n == 0 }

func TestRetainReleaseHeapValue(t *testing.T) {
	p := &fakePayload{n: 1}
	v := Heap(KindString, p)
	Retain(v)
	if p.n != 2 {
		t.Fatalf("retain: n = %d, want 2", p.n)
	}
	Release(v)
	Release(v)
	if p.n != 0 {
		t.Fatalf("release: n = %d, want 0", p.n)
	}
}
