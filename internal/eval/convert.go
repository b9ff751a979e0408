package eval

import (
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// kindByName maps the type-annotation spelling the parser emits to a
// Kind, for every annotation that names a primitive shape rather than
// a nominal `define`d type (§4.3).
var kindByName = map[string]value.Kind{
	"i8": value.KindI8, "i16": value.KindI16, "i32": value.KindI32, "i64": value.KindI64,
	"u8": value.KindU8, "u16": value.KindU16, "u32": value.KindU32, "u64": value.KindU64,
	"f32": value.KindF32, "f64": value.KindF64,
	"bool": value.KindBool, "rune": value.KindRune, "string": value.KindString,
	"array": value.KindArray, "object": value.KindObject, "buffer": value.KindBuffer,
	"ptr": value.KindPtr, "file": value.KindFile, "socket": value.KindSocket,
	"function": value.KindFunction, "channel": value.KindChannel, "task": value.KindTask,
}

// convertAnnotated applies a let/param/field type annotation to v,
// coercing numeric kinds and validating everything else (§4.4: "a
// conversion step that may coerce or fail"). An empty annotation or
// "any" passes v through unchanged.
func (ev *Evaluator) convertAnnotated(v value.Value, typeName string, c *ctx.Context) value.Value {
	if typeName == "" || typeName == "any" {
		return v
	}
	if k, ok := kindByName[typeName]; ok {
		if k.IsNumeric() {
			if !v.Kind.IsNumeric() {
				value.Release(v)
				return raise(c, TypeError("cannot convert %s to %s", v.Kind, typeName))
			}
			return value.ConvertNumeric(v, k)
		}
		if v.Kind != k {
			value.Release(v)
			return raise(c, TypeError("expected %s, got %s", typeName, v.Kind))
		}
		return v
	}
	if v.Kind == value.KindObject {
		if o, ok := v.Object().(*heap.Object); ok && o.TypeName() == typeName {
			return v
		}
	}
	got := v.Kind.String()
	if v.Kind == value.KindObject {
		if o, ok := v.Object().(*heap.Object); ok && o.TypeName() != "" {
			got = o.TypeName()
		}
	}
	value.Release(v)
	return raise(c, TypeError("expected %s, got %s", typeName, got))
}
