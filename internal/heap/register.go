package heap

import (
	"fmt"
	"strings"

	"github.com/nbeerbower/hemlock/internal/value"
)

func init() {
	value.RegisterStringEqual(func(a, b value.Value) bool {
		sa, oka := a.Object().(*String)
		sb, okb := b.Object().(*String)
		if !oka || !okb {
			return a.Object() == b.Object()
		}
		return Equal(sa, sb)
	})
	value.RegisterStringer(func(v value.Value) (string, bool) {
		return stringify(v, nil)
	})
}

// stringify renders v for diagnostics without mutating it (§4.1). seen
// tracks object/array identities to render `<cycle>` instead of
// recursing forever; it is nil for the top-level call and allocated
// lazily only once a composite value is encountered.
func stringify(v value.Value, seen map[any]bool) (string, bool) {
	switch v.Kind {
	case value.KindString:
		s, ok := v.Object().(*String)
		if !ok {
			return "", false
		}
		return s.String(), true
	case value.KindArray:
		a, ok := v.Object().(*Array)
		if !ok {
			return "", false
		}
		if seen == nil {
			seen = map[any]bool{}
		}
		if seen[a] {
			return "[...]", true
		}
		seen[a] = true
		parts := make([]string, a.Len())
		for i, e := range a.elems {
			parts[i], _ = stringify(e, seen)
			if e.Kind == value.KindString {
				parts[i] = fmt.Sprintf("%q", parts[i])
			}
		}
		return "[" + strings.Join(parts, ", ") + "]", true
	case value.KindObject:
		o, ok := v.Object().(*Object)
		if !ok {
			return "", false
		}
		if seen == nil {
			seen = map[any]bool{}
		}
		if seen[o] {
			return "{...}", true
		}
		seen[o] = true
		parts := make([]string, len(o.names))
		for i, n := range o.names {
			fv, _ := stringify(o.vals[i], seen)
			if o.vals[i].Kind == value.KindString {
				fv = fmt.Sprintf("%q", fv)
			}
			parts[i] = n + ": " + fv
		}
		prefix := o.typeName
		if prefix != "" {
			prefix += " "
		}
		return prefix + "{" + strings.Join(parts, ", ") + "}", true
	case value.KindBuffer:
		b, ok := v.Object().(*Buffer)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("<buffer len=%d cap=%d>", b.Len(), b.Cap()), true
	case value.KindFunction:
		f, ok := v.Object().(*Function)
		if !ok {
			return "", false
		}
		name := f.Name
		if name == "" {
			name = "<anonymous>"
		}
		return fmt.Sprintf("<function %s>", name), true
	case value.KindChannel:
		c, ok := v.Object().(*Channel)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("<channel cap=%d>", c.Cap()), true
	case value.KindTask:
		t, ok := v.Object().(*Task)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("<task %s>", t.ID), true
	case value.KindFile:
		f, ok := v.Object().(*File)
		if !ok {
			return "", false
		}
		return f.String(), true
	case value.KindSocket:
		s, ok := v.Object().(*Socket)
		if !ok {
			return "", false
		}
		return s.String(), true
	case value.KindBuiltinFn:
		if b, ok := v.Object().(*BuiltinFn); ok {
			return b.String(), true
		}
		return "<builtin>", true
	case value.KindFFIFn:
		if f, ok := v.Object().(*FFIFn); ok {
			return f.String(), true
		}
		return "<ffi-fn>", true
	default:
		return "", false
	}
}

// ToString is the exported diagnostic stringifier (§4.1: "must not
// mutate"). It is used by print()/string-interpolation/string
// concatenation of a non-string operand.
func ToString(v value.Value) string { return value.ToString(v) }

// DeepClone recursively copies a Value for task-spawn argument
// isolation (§4.5, §8 invariant 5): arrays/objects/buffers/strings are
// cloned element-by-element; channels/tasks/functions/files/sockets
// retain a shared reference instead (they are the concurrency
// primitives themselves, not data to isolate); raw ptr is rejected
// since copying an unmanaged address would silently alias memory
// across threads without the isolation the spec requires.
func DeepClone(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.KindString:
		s, ok := v.Object().(*String)
		if !ok {
			return v, nil
		}
		return value.Heap(value.KindString, NewString(s.String())), nil
	case value.KindArray:
		a, ok := v.Object().(*Array)
		if !ok {
			return v, nil
		}
		cloned := a.Clone(func(e value.Value) value.Value {
			cv, err := DeepClone(e)
			if err != nil {
				return e
			}
			return cv
		})
		return value.Heap(value.KindArray, cloned), nil
	case value.KindObject:
		o, ok := v.Object().(*Object)
		if !ok {
			return v, nil
		}
		cloned := o.Clone(func(e value.Value) value.Value {
			cv, err := DeepClone(e)
			if err != nil {
				return e
			}
			return cv
		})
		return value.Heap(value.KindObject, cloned), nil
	case value.KindBuffer:
		b, ok := v.Object().(*Buffer)
		if !ok {
			return v, nil
		}
		return value.Heap(value.KindBuffer, b.Clone()), nil
	case value.KindChannel, value.KindTask, value.KindFunction:
		value.Retain(v)
		return v, nil
	case value.KindFile, value.KindSocket, value.KindBuiltinFn, value.KindFFIFn:
		return v, nil
	case value.KindPtr:
		return value.Value{}, fmt.Errorf("raw pointers cannot be passed to spawn: isolation is undefined for unmanaged memory")
	default:
		return v, nil
	}
}
