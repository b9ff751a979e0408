package eval

import (
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

var bufferMethods = map[string]methodFn{
	"at":     bufAt,
	"set_at": bufSetAt,
	"slice":  bufSlice,
	"fill":   bufFill,
}

func bufReceiver(recv value.Value) *heap.Buffer { return recv.Object().(*heap.Buffer) }

func bufAt(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("at(index) requires one integer argument"))
	}
	b, err := bufReceiver(recv).At(int(args[0].AsInt64()))
	if err != nil {
		return raise(c, BoundsError("%s", err.Error()))
	}
	return value.U8(b)
}

func bufSetAt(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 2 || !args[0].Kind.IsInteger() || !args[1].Kind.IsInteger() {
		return raise(c, ArityError("set_at(index, byte) requires two integer arguments"))
	}
	var b byte
	if args[1].Kind.IsUnsigned() {
		b = byte(args[1].AsUint64())
	} else {
		b = byte(args[1].AsInt64())
	}
	if err := bufReceiver(recv).SetAt(int(args[0].AsInt64()), b); err != nil {
		return raise(c, BoundsError("%s", err.Error()))
	}
	return value.Null
}

func bufSlice(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	buf := bufReceiver(recv)
	if len(args) != 2 || !args[0].Kind.IsInteger() || !args[1].Kind.IsInteger() {
		return raise(c, ArityError("slice(start, end) requires two integer arguments"))
	}
	start, end := int(args[0].AsInt64()), int(args[1].AsInt64())
	if start < 0 || end > buf.Len() || start > end {
		return raise(c, BoundsError("slice [%d,%d) out of range [0,%d]", start, end, buf.Len()))
	}
	cp := make([]byte, end-start)
	copy(cp, buf.Bytes()[start:end])
	return value.Heap(value.KindBuffer, heap.NewBufferFromBytes(cp))
}

func bufFill(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("fill(byte) requires one integer argument"))
	}
	b := byte(args[0].AsInt64())
	buf := bufReceiver(recv)
	for i := 0; i < buf.Len(); i++ {
		buf.SetAt(i, b)
	}
	return value.Null
}
