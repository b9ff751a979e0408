package eval

import (
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// channelMethods implements the bounded-channel method surface of
// §4.5: send/recv block the calling OS thread directly on the
// payload's mutex/cond pair, matching a real channel's blocking
// semantics rather than simulating it with goroutine scheduling
// tricks.
var channelMethods = map[string]methodFn{
	"send":  chanSend,
	"recv":  chanRecv,
	"close": chanClose,
}

func chanReceiver(recv value.Value) *heap.Channel { return recv.Object().(*heap.Channel) }

func chanSend(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	if len(args) != 1 {
		releaseAll(args)
		return raise(c, ArityError("send(value) requires one argument"))
	}
	ch := chanReceiver(recv)
	if err := ch.Send(args[0]); err != nil {
		value.Release(args[0])
		return raise(c, StateError("%s", err.Error()))
	}
	value.Release(args[0]) // Send retained its own copy; release ours
	return value.Null
}

func chanRecv(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	ch := chanReceiver(recv)
	v, ok := ch.Recv()
	if !ok {
		return value.Null
	}
	return v
}

func chanClose(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	chanReceiver(recv).Close()
	return value.Null
}
