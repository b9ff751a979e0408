package eval

import (
	"strings"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

var arrayMethods = map[string]methodFn{
	"push":     arrPush,
	"pop":      arrPop,
	"shift":    arrShift,
	"unshift":  arrUnshift,
	"insert":   arrInsert,
	"remove":   arrRemove,
	"slice":    arrSlice,
	"concat":   arrConcat,
	"join":     arrJoin,
	"reverse":  arrReverse,
	"index_of": arrIndexOf,
	"contains": arrContains,
	"map":      arrMap,
	"filter":   arrFilter,
	"reduce":   arrReduce,
	"each":     arrEach,
	"find":     arrFind,
}

func arrReceiver(recv value.Value) *heap.Array { return recv.Object().(*heap.Array) }

func arrPush(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	a := arrReceiver(recv)
	for _, v := range args {
		a.Push(v)
	}
	releaseAll(args)
	return value.I64(int64(a.Len()))
}

func arrPop(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	v, ok := arrReceiver(recv).Pop()
	if !ok {
		return value.Null
	}
	return v
}

func arrShift(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	v, ok := arrReceiver(recv).Shift()
	if !ok {
		return value.Null
	}
	return v
}

func arrUnshift(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	a := arrReceiver(recv)
	for i := len(args) - 1; i >= 0; i-- {
		a.Unshift(args[i])
	}
	releaseAll(args)
	return value.I64(int64(a.Len()))
}

func arrInsert(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	a := arrReceiver(recv)
	if len(args) != 2 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("insert(index, value) requires an integer index"))
	}
	i := int(args[0].AsInt64())
	if i < 0 || i > a.Len() {
		return raise(c, BoundsError("insert index %d out of range [0,%d]", i, a.Len()))
	}
	a.Insert(i, args[1])
	return value.Null
}

func arrRemove(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	a := arrReceiver(recv)
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("remove(index) requires an integer argument"))
	}
	i := int(args[0].AsInt64())
	if i < 0 || i >= a.Len() {
		return raise(c, BoundsError("remove index %d out of range [0,%d)", i, a.Len()))
	}
	return a.Remove(i)
}

func arrSlice(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	a := arrReceiver(recv)
	if len(args) != 2 || !args[0].Kind.IsInteger() || !args[1].Kind.IsInteger() {
		return raise(c, ArityError("slice(start, end) requires 2 integer arguments"))
	}
	start, end := int(args[0].AsInt64()), int(args[1].AsInt64())
	if start < 0 || end > a.Len() || start > end {
		return raise(c, BoundsError("slice [%d,%d) out of range [0,%d]", start, end, a.Len()))
	}
	elems := make([]value.Value, end-start)
	for i := start; i < end; i++ {
		elems[i-start] = a.At(i)
	}
	return value.Heap(value.KindArray, heap.NewArray(elems))
}

func arrConcat(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	a := arrReceiver(recv)
	elems := append([]value.Value(nil), a.Elems()...)
	for _, arg := range args {
		if arg.Kind != value.KindArray {
			return raise(c, TypeError("concat requires array arguments, got %s", arg.Kind))
		}
		elems = append(elems, arrReceiver(arg).Elems()...)
	}
	return value.Heap(value.KindArray, heap.NewArray(elems))
}

func arrJoin(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	sep := ""
	if len(args) == 1 {
		sep = value.ToString(args[0])
	} else if len(args) > 1 {
		return raise(c, ArityError("join([sep]) takes at most one argument"))
	}
	a := arrReceiver(recv)
	parts := make([]string, a.Len())
	for i := 0; i < a.Len(); i++ {
		parts[i] = value.ToString(a.At(i))
	}
	return stringValue(strings.Join(parts, sep))
}

func arrReverse(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	a := arrReceiver(recv)
	elems := a.Elems()
	out := make([]value.Value, len(elems))
	for i, v := range elems {
		out[len(elems)-1-i] = v
	}
	return value.Heap(value.KindArray, heap.NewArray(out))
}

func arrIndexOf(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 {
		return raise(c, ArityError("index_of(value) requires one argument"))
	}
	a := arrReceiver(recv)
	for i := 0; i < a.Len(); i++ {
		if elemEqual(a.At(i), args[0]) {
			return value.I64(int64(i))
		}
	}
	return value.I64(-1)
}

func arrContains(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 {
		return raise(c, ArityError("contains(value) requires one argument"))
	}
	a := arrReceiver(recv)
	for i := 0; i < a.Len(); i++ {
		if elemEqual(a.At(i), args[0]) {
			return value.Bool(true)
		}
	}
	return value.Bool(false)
}

func elemEqual(a, b value.Value) bool {
	if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
		r, err := value.Arith(value.OpEq, a, b)
		return err == nil && r.AsBool()
	}
	return value.Equal(a, b)
}

func arrMap(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || args[0].Kind != value.KindFunction && args[0].Kind != value.KindBuiltinFn {
		return raise(c, ArityError("map(fn) requires one function argument"))
	}
	a := arrReceiver(recv)
	out := make([]value.Value, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		el := a.At(i)
		value.Retain(el)
		r := ev.callValue(args[0], []value.Value{el}, nil, c, 0)
		if c.IsUnwinding() {
			releaseAll(out)
			return value.Null
		}
		out = append(out, r)
	}
	return value.Heap(value.KindArray, heap.NewArray(out))
}

func arrFilter(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 {
		return raise(c, ArityError("filter(fn) requires one function argument"))
	}
	a := arrReceiver(recv)
	out := make([]value.Value, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		el := a.At(i)
		value.Retain(el)
		r := ev.callValue(args[0], []value.Value{el}, nil, c, 0)
		if c.IsUnwinding() {
			releaseAll(out)
			return value.Null
		}
		keep := truthy(r)
		value.Release(r)
		if keep {
			value.Retain(el)
			out = append(out, el)
		}
	}
	return value.Heap(value.KindArray, heap.NewArray(out))
}

func arrReduce(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 2 {
		return raise(c, ArityError("reduce(fn, initial) requires two arguments"))
	}
	a := arrReceiver(recv)
	acc := args[1]
	value.Retain(acc)
	for i := 0; i < a.Len(); i++ {
		el := a.At(i)
		value.Retain(el)
		r := ev.callValue(args[0], []value.Value{acc, el}, nil, c, 0)
		if c.IsUnwinding() {
			return value.Null
		}
		acc = r
	}
	return acc
}

func arrEach(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 {
		return raise(c, ArityError("each(fn) requires one function argument"))
	}
	a := arrReceiver(recv)
	for i := 0; i < a.Len(); i++ {
		el := a.At(i)
		value.Retain(el)
		r := ev.callValue(args[0], []value.Value{el}, nil, c, 0)
		value.Release(r)
		if c.IsUnwinding() {
			return value.Null
		}
	}
	return value.Null
}

func arrFind(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 {
		return raise(c, ArityError("find(fn) requires one function argument"))
	}
	a := arrReceiver(recv)
	for i := 0; i < a.Len(); i++ {
		el := a.At(i)
		value.Retain(el)
		r := ev.callValue(args[0], []value.Value{el}, nil, c, 0)
		if c.IsUnwinding() {
			return value.Null
		}
		match := truthy(r)
		value.Release(r)
		if match {
			value.Retain(el)
			return el
		}
	}
	return value.Null
}
