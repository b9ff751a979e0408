package value

import (
	"fmt"
	"math"
)

// Payload is implemented by every refcounted heap object (§3.1/§3.2):
// String, Array, Object, Buffer, Function, Channel, Task. Concrete
// types live in package heap, which imports this package for Value —
// the interface lives here to avoid an import cycle.
type Payload interface {
	// Retain increments the atomic reference count.
	Retain()
	// Release decrements the atomic reference count. When it drops to
	// zero the payload must release every Value it owns and free
	// itself. Release reports whether this call freed the payload.
	Release() bool
}

// Value is the tagged union every hemlock expression evaluates to.
// Primitives are carried inline; heap-carrying variants hold a Payload
// reference (one retain per owning slot, per §3.1); file/socket wrap a
// bare handle with its own idempotent-close bookkeeping; ptr is an
// unmanaged raw address.
type Value struct {
	Kind Kind

	i int64   // signed integers, bool (0/1), rune (code point, widened)
	u uint64  // unsigned integers, raw ptr address
	f float64 // f32 (narrowed via float32 on every write) and f64

	obj any // Payload for heap kinds; *File/*Socket/*BuiltinFn/*FFIFn otherwise
}

// Null is the singleton null value.
var Null = Value{Kind: KindNull}

func I8(v int8) Value   { return Value{Kind: KindI8, i: int64(v)} }
func I16(v int16) Value { return Value{Kind: KindI16, i: int64(v)} }
func I32(v int32) Value { return Value{Kind: KindI32, i: int64(v)} }
func I64(v int64) Value { return Value{Kind: KindI64, i: v} }
func U8(v uint8) Value   { return Value{Kind: KindU8, u: uint64(v)} }
func U16(v uint16) Value { return Value{Kind: KindU16, u: uint64(v)} }
func U32(v uint32) Value { return Value{Kind: KindU32, u: uint64(v)} }
func U64(v uint64) Value { return Value{Kind: KindU64, u: v} }
func F32(v float32) Value { return Value{Kind: KindF32, f: float64(v)} }
func F64(v float64) Value { return Value{Kind: KindF64, f: v} }
func Bool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{Kind: KindBool, i: i}
}
func Rune(v rune) Value { return Value{Kind: KindRune, i: int64(v)} }
func Ptr(addr uint64) Value { return Value{Kind: KindPtr, u: addr} }

// Heap wraps a refcounted payload in a Value of the given kind. The
// caller transfers ownership of one retain to the returned Value.
func Heap(k Kind, p Payload) Value { return Value{Kind: k, obj: p} }

// Obj wraps a non-refcounted object (file/socket/builtin-fn/ffi-fn).
func Obj(k Kind, o any) Value { return Value{Kind: k, obj: o} }

// AsInt64 returns the signed-integer/bool/rune payload.
func (v Value) AsInt64() int64 { return v.i }

// AsUint64 returns the unsigned-integer/ptr payload.
func (v Value) AsUint64() uint64 { return v.u }

// AsFloat64 returns the float payload (f32 is pre-narrowed at write time).
func (v Value) AsFloat64() float64 { return v.f }

// AsFloat32 narrows the float payload to 32 bits.
func (v Value) AsFloat32() float32 { return float32(v.f) }

// AsBool reports the boolean payload.
func (v Value) AsBool() bool { return v.i != 0 }

// AsRune reports the rune payload.
func (v Value) AsRune() rune { return rune(v.i) }

// Payload returns the heap payload and true if v carries one.
func (v Value) Payload() (Payload, bool) {
	p, ok := v.obj.(Payload)
	return p, ok
}

// Object returns the raw obj field, used by non-refcounted kinds
// (file, socket, builtin-fn, ffi-fn) to recover their concrete type.
func (v Value) Object() any { return v.obj }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsNumeric returns the value widened to float64, valid for any
// numeric kind. Used by promotion and by diagnostics, never for
// value-preserving arithmetic on unsigned 64-bit values near the
// float64 mantissa limit (callers needing exactness use the typed
// accessors directly).
func (v Value) AsNumeric() float64 {
	switch v.Kind {
	case KindF32, KindF64:
		return v.f
	case KindU8, KindU16, KindU32, KindU64:
		return float64(v.u)
	default:
		return float64(v.i)
	}
}

// Retain increments the refcount for heap-carrying values; no-op otherwise.
func Retain(v Value) {
	if p, ok := v.Payload(); ok && p != nil {
		p.Retain()
	}
}

// Release decrements the refcount for heap-carrying values; no-op otherwise.
func Release(v Value) {
	if p, ok := v.Payload(); ok && p != nil {
		p.Release()
	}
}

// Equal implements by-value equality for primitives and runes/strings
// (code-point-sequence equality, delegated to the Payload's own
// Equal-ish comparison via identity for heap kinds other than string),
// and reference equality for objects/arrays/functions/channels/tasks.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		// numeric cross-kind equality is allowed after promotion by callers;
		// Equal itself only compares like kinds, per §4.1.
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.i == b.i
	case KindRune:
		return a.i == b.i
	case KindF32, KindF64:
		return a.f == b.f
	case KindString:
		return stringEqual(a, b)
	case KindPtr:
		return a.u == b.u
	default:
		if a.Kind.IsInteger() {
			if a.Kind.IsUnsigned() {
				return a.u == b.u
			}
			return a.i == b.i
		}
		// object/array/function/channel/task/file/socket/builtin-fn/ffi-fn:
		// reference equality.
		return a.obj == b.obj
	}
}

// stringEqual is overridden by package heap via RegisterStringEqual,
// since Value cannot import heap (cycle) but needs to compare byte
// contents for string equality.
var stringEqualHook func(a, b Value) bool

// RegisterStringEqual installs the byte-sequence comparison used by
// Equal for KindString values. Called once from heap's init.
func RegisterStringEqual(f func(a, b Value) bool) { stringEqualHook = f }

func stringEqual(a, b Value) bool {
	if stringEqualHook == nil {
		return a.obj == b.obj
	}
	return stringEqualHook(a, b)
}

// ToString renders v for diagnostics and for string-concatenation of
// primitives (§4.1). It must not mutate v. Heap kinds delegate to
// stringerHook (installed by package heap) for their textual form.
var stringerHook func(v Value) (string, bool)

// RegisterStringer installs the heap-aware stringifier used by ToString.
func RegisterStringer(f func(v Value) (string, bool)) { stringerHook = f }

func ToString(v Value) string {
	if stringerHook != nil {
		if s, ok := stringerHook(v); ok {
			return s
		}
	}
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindRune:
		return string(v.AsRune())
	case KindF32:
		return formatFloat(float64(v.AsFloat32()), 32)
	case KindF64:
		return formatFloat(v.f, 64)
	case KindPtr:
		return fmt.Sprintf("0x%x", v.u)
	default:
		if v.Kind.IsInteger() {
			if v.Kind.IsUnsigned() {
				return fmt.Sprintf("%d", v.u)
			}
			return fmt.Sprintf("%d", v.i)
		}
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return fmt.Sprintf("%g", f)
}
