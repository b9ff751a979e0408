package eval

import (
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// getProperty reads recv.name for every kind that exposes named
// properties (§4.4): string/array/buffer length accessors, object
// field lookup, and the file/socket/channel/task/function diagnostic
// fields. Built-in methods (push, substr, ...) are dispatched
// separately by dispatchMethod when the property access is itself the
// callee of a Call node.
func (ev *Evaluator) getProperty(recv value.Value, name string, c *ctx.Context) value.Value {
	switch recv.Kind {
	case value.KindString:
		s := recv.Object().(*heap.String)
		switch name {
		case "length":
			return value.I64(int64(s.RuneLen()))
		case "byte_length":
			return value.I64(int64(s.ByteLen()))
		}
	case value.KindArray:
		a := recv.Object().(*heap.Array)
		if name == "length" {
			return value.I64(int64(a.Len()))
		}
	case value.KindBuffer:
		b := recv.Object().(*heap.Buffer)
		switch name {
		case "length":
			return value.I64(int64(b.Len()))
		case "capacity":
			return value.I64(int64(b.Cap()))
		}
	case value.KindObject:
		o := recv.Object().(*heap.Object)
		if v, ok := o.Get(name); ok {
			value.Retain(v)
			return v
		}
		return raise(c, NameError("no field %q on %s", name, typeLabel(o)))
	case value.KindChannel:
		ch := recv.Object().(*heap.Channel)
		switch name {
		case "capacity":
			return value.I64(int64(ch.Cap()))
		case "closed":
			return value.Bool(ch.Closed())
		}
	case value.KindTask:
		t := recv.Object().(*heap.Task)
		switch name {
		case "id":
			return stringValue(t.ID)
		case "done":
			return value.Bool(t.Done())
		}
	case value.KindFile:
		f := recv.Object().(*heap.File)
		switch name {
		case "path":
			return stringValue(f.Path)
		case "mode":
			return stringValue(f.Mode)
		case "closed":
			return value.Bool(f.Closed())
		}
	case value.KindSocket:
		sk := recv.Object().(*heap.Socket)
		switch name {
		case "address":
			return stringValue(sk.Address)
		case "port":
			return value.I64(int64(sk.Port))
		case "closed":
			return value.Bool(sk.Closed())
		}
	case value.KindFunction:
		fn := recv.Object().(*heap.Function)
		if name == "name" {
			return stringValue(fn.Name)
		}
	}
	return raise(c, TypeError("%s has no property %q", recv.Kind, name))
}

func typeLabel(o *heap.Object) string {
	if o.TypeName() != "" {
		return o.TypeName()
	}
	return "object"
}

// getIndex implements `recv[idx]` (§4.4): array element, string code
// point, or buffer byte.
func (ev *Evaluator) getIndex(recv, idx value.Value, c *ctx.Context) value.Value {
	switch recv.Kind {
	case value.KindArray:
		a := recv.Object().(*heap.Array)
		i, ok := indexInt(idx, a.Len(), c)
		if !ok {
			return value.Null
		}
		v := a.At(i)
		value.Retain(v)
		return v
	case value.KindString:
		s := recv.Object().(*heap.String)
		i, ok := indexInt(idx, s.RuneLen(), c)
		if !ok {
			return value.Null
		}
		r, ok := s.RuneAt(i)
		if !ok {
			return raise(c, BoundsError("string index %d out of range", i))
		}
		return value.Rune(r)
	case value.KindBuffer:
		b := recv.Object().(*heap.Buffer)
		i, ok := indexInt(idx, b.Len(), c)
		if !ok {
			return value.Null
		}
		byt, err := b.At(i)
		if err != nil {
			return raise(c, BoundsError("%s", err.Error()))
		}
		return value.U8(byt)
	case value.KindObject:
		o := recv.Object().(*heap.Object)
		if idx.Kind != value.KindString {
			return raise(c, TypeError("object index must be a string"))
		}
		key := value.ToString(idx)
		v, ok := o.Get(key)
		if !ok {
			return raise(c, NameError("no field %q on %s", key, typeLabel(o)))
		}
		value.Retain(v)
		return v
	default:
		return raise(c, TypeError("%s is not indexable", recv.Kind))
	}
}

func indexInt(idx value.Value, length int, c *ctx.Context) (int, bool) {
	if !idx.Kind.IsInteger() {
		raise(c, TypeError("index must be an integer, got %s", idx.Kind))
		return 0, false
	}
	i := int(idx.AsInt64())
	if idx.Kind.IsUnsigned() {
		i = int(idx.AsUint64())
	}
	if i < 0 || i >= length {
		raise(c, BoundsError("index %d out of range [0,%d)", i, length))
		return 0, false
	}
	return i, true
}

// setIndex implements the index-assignment target of `recv[idx] = v`.
func (ev *Evaluator) setIndex(recv, idx, v value.Value, c *ctx.Context) {
	switch recv.Kind {
	case value.KindArray:
		a := recv.Object().(*heap.Array)
		i, ok := indexInt(idx, a.Len(), c)
		if !ok {
			return
		}
		a.Set(i, v)
	case value.KindBuffer:
		b := recv.Object().(*heap.Buffer)
		i, ok := indexInt(idx, b.Len(), c)
		if !ok {
			return
		}
		if !v.Kind.IsInteger() {
			raise(c, TypeError("buffer element must be an integer"))
			return
		}
		byt := byte(v.AsInt64())
		if v.Kind.IsUnsigned() {
			byt = byte(v.AsUint64())
		}
		if err := b.SetAt(i, byt); err != nil {
			raise(c, BoundsError("%s", err.Error()))
		}
	case value.KindObject:
		o := recv.Object().(*heap.Object)
		if idx.Kind != value.KindString {
			raise(c, TypeError("object index must be a string"))
			return
		}
		o.Set(value.ToString(idx), v)
	default:
		raise(c, TypeError("%s does not support index assignment", recv.Kind))
	}
}

// setProperty implements the property-assignment target of
// `recv.Name = v` (§4.4): only objects accept dynamically assigned
// fields; every other kind's properties are computed and read-only.
func (ev *Evaluator) setProperty(recv value.Value, name string, v value.Value, c *ctx.Context) {
	if recv.Kind != value.KindObject {
		raise(c, TypeError("%s has no assignable property %q", recv.Kind, name))
		return
	}
	o := recv.Object().(*heap.Object)
	o.Set(name, v)
}
