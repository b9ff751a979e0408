package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func (ev *Evaluator) evalCall(n *ast.Call, en *env.Environment, c *ctx.Context) value.Value {
	if prop, ok := n.Callee.(*ast.Property); ok {
		recv := ev.evalExpr(prop.Receiver, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		args := ev.evalArgs(n.Args, en, c)
		if c.IsUnwinding() {
			value.Release(recv)
			return value.Null
		}
		result := ev.dispatchMethod(recv, prop.Name, args, c, n.Line())
		value.Release(recv)
		return result
	}

	callee := ev.evalExpr(n.Callee, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	args := ev.evalArgs(n.Args, en, c)
	if c.IsUnwinding() {
		value.Release(callee)
		return value.Null
	}
	result := ev.callValue(callee, args, nil, c, n.Line())
	value.Release(callee)
	return result
}

// CallValue invokes a user-function or host-function Value with args,
// without a bound `self` receiver. Exported for package task (spawn's
// goroutine body) and package builtin (signal handlers) to reuse the
// same call mechanics.
func (ev *Evaluator) CallValue(callee value.Value, args []value.Value, c *ctx.Context) value.Value {
	return ev.callValue(callee, args, nil, c, 0)
}

func (ev *Evaluator) callValue(callee value.Value, args []value.Value, self *value.Value, c *ctx.Context, line int) value.Value {
	switch callee.Kind {
	case value.KindFunction:
		fn := callee.Object().(*heap.Function)
		return ev.callFunction(fn, args, self, c, line)
	case value.KindBuiltinFn:
		bf := callee.Object().(*heap.BuiltinFn)
		result, err := bf.Fn(args)
		releaseAll(args)
		if err != nil {
			if th, ok := err.(Thrown); ok {
				return raise(c, th)
			}
			return raise(c, TypeError("%s", err.Error()))
		}
		return result
	case value.KindFFIFn:
		ff := callee.Object().(*heap.FFIFn)
		if ff.Call == nil {
			releaseAll(args)
			return raise(c, StateError("extern function %q is not bound to a symbol", ff.Name))
		}
		result, err := ff.Call(args)
		releaseAll(args)
		if err != nil {
			return raise(c, TypeError("%s", err.Error()))
		}
		return result
	default:
		releaseAll(args)
		return raise(c, TypeError("%s is not callable", callee.Kind))
	}
}

func (ev *Evaluator) callFunction(fn *heap.Function, args []value.Value, self *value.Value, c *ctx.Context, line int) value.Value {
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	if err := c.PushCall(name, line); err != nil {
		releaseAll(args)
		return raise(c, StackError("%s", err.Error()))
	}
	defer c.PopCall()

	callEnv := env.NewChild(fn.Closure)
	defer callEnv.Release()
	if self != nil {
		callEnv.BindSelf(*self)
	}
	ev.bindParams(fn, args, callEnv, c)
	if c.IsUnwinding() {
		return value.Null
	}

	mark := c.DeferMark()
	ev.evalBlock(fn.Body, callEnv, c)
	ev.runDefers(c.PopDefersSince(mark), c)

	if c.Flag == ctx.FlagReturn {
		rv := c.ReturnVal
		c.Clear()
		return rv
	}
	if c.Flag == ctx.FlagThrow {
		return value.Null
	}
	c.Clear() // a break/continue that escaped its loop does not propagate past a function boundary
	return value.Null
}

// bindParams binds args positionally into callEnv, applying each
// param's type-annotation conversion and evaluating unfilled trailing
// defaults in the function's closure environment (§3.2: "defaults are
// evaluated in the closure env at call time, not the call env").
func (ev *Evaluator) bindParams(fn *heap.Function, args []value.Value, callEnv *env.Environment, c *ctx.Context) {
	required := 0
	for _, p := range fn.Params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(fn.Params) {
		releaseAll(args)
		raise(c, ArityError("%s expects %d to %d arguments, got %d", fnLabel(fn), required, len(fn.Params), len(args)))
		return
	}
	for i, p := range fn.Params {
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = ev.evalExpr(p.Default, fn.Closure, c)
			if c.IsUnwinding() {
				return
			}
		}
		v = ev.convertAnnotated(v, p.Type, c)
		if c.IsUnwinding() {
			return
		}
		callEnv.Define(p.Name, v, false)
		value.Release(v)
	}
}

func fnLabel(fn *heap.Function) string {
	if fn.Name == "" {
		return "<anonymous>"
	}
	return fn.Name
}

func (ev *Evaluator) runDefers(defers []ctx.DeferEntry, c *ctx.Context) {
	for _, d := range defers {
		snap := c.Save()
		c.Clear()
		result := ev.evalCall(d.Call, d.Env, c)
		value.Release(result)
		if c.Flag == ctx.FlagThrow {
			// a throw inside a defer replaces whatever was unwinding (§4.4/§7).
			continue
		}
		c.Restore(snap)
	}
}

// dispatchMethod routes `recv.name(args...)` to a built-in method
// table by receiver kind, or — for objects — to a field holding a
// Function value, called with self bound to recv (duck-typed methods,
// §4.4).
func (ev *Evaluator) dispatchMethod(recv value.Value, name string, args []value.Value, c *ctx.Context, line int) value.Value {
	switch recv.Kind {
	case value.KindString:
		if m, ok := stringMethods[name]; ok {
			return m(ev, recv, args, c)
		}
	case value.KindArray:
		if m, ok := arrayMethods[name]; ok {
			return m(ev, recv, args, c)
		}
	case value.KindBuffer:
		if m, ok := bufferMethods[name]; ok {
			return m(ev, recv, args, c)
		}
	case value.KindChannel:
		if m, ok := channelMethods[name]; ok {
			return m(ev, recv, args, c)
		}
	case value.KindFile:
		if name == "close" {
			releaseAll(args)
			f := recv.Object().(*heap.File)
			if err := f.Close(); err != nil {
				return raise(c, StateError("%s", err.Error()))
			}
			return value.Null
		}
	case value.KindSocket:
		if name == "close" {
			releaseAll(args)
			sk := recv.Object().(*heap.Socket)
			if err := sk.Close(); err != nil {
				return raise(c, StateError("%s", err.Error()))
			}
			return value.Null
		}
	case value.KindObject:
		o := recv.Object().(*heap.Object)
		fv, ok := o.Get(name)
		if !ok {
			releaseAll(args)
			return raise(c, NameError("no method %q on %s", name, typeLabel(o)))
		}
		if fv.Kind != value.KindFunction {
			releaseAll(args)
			return raise(c, TypeError("field %q is not callable", name))
		}
		fn := fv.Object().(*heap.Function)
		return ev.callFunction(fn, args, &recv, c, line)
	}
	releaseAll(args)
	return raise(c, NameError("%s has no method %q", recv.Kind, name))
}

// joinTask implements `await t` (the `join` builtin goes through
// task.Join, which applies the same rules): block until the task
// completes, enforcing join-once (§3.5
// invariant), and surface a completed exception as a throw in the
// joiner's own ExecutionContext rather than a Go error.
func (ev *Evaluator) joinTask(t value.Value, c *ctx.Context) value.Value {
	if t.Kind != value.KindTask {
		return raise(c, TypeError("await/join requires a task, got %s", t.Kind))
	}
	task := t.Object().(*heap.Task)
	if err := task.MarkJoined(); err != nil {
		return raise(c, StateError("%s", err.Error()))
	}
	result, exc, hasExc := task.Wait()
	if hasExc {
		c.SetThrow(exc)
		return value.Null
	}
	return result
}
