// Package task implements hemlock's 1:1-threaded concurrency runtime
// (§4.5): spawn starts a dedicated OS thread running a function to
// completion, join blocks until that thread publishes its outcome, and
// detach releases the spawner's obligation to join. Go's goroutines
// are the idiomatic stand-in for "dedicated OS thread" the teacher's
// own EvalWithContext cancellation goroutine already relies on; Spawn
// additionally locks the goroutine to its OS thread for the duration
// of the call so a spawned hemlock task really does run in 1:1
// correspondence with an OS thread, the way §3.5's invariant names it.
package task

import (
	"runtime"

	"github.com/google/uuid"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Spawn starts fn(args...) on a fresh goroutine with its own
// ExecutionContext, deep-copying args for isolation (§4.5, §8
// invariant 5) before the goroutine begins, and returns a Task Value
// the spawner can join or detach. Spawn takes ownership of one
// reference to fn and to each arg (the builtin `spawn` wrapper retains
// each of them once before the call, since the evaluator releases a
// builtin's arguments afterwards): fn's reference moves into the
// goroutine closure, and args are released once cloned.
func Spawn(ev *eval.Evaluator, fn value.Value, args []value.Value) (value.Value, error) {
	cloned := make([]value.Value, len(args))
	for i, a := range args {
		cv, err := heap.DeepClone(a)
		if err != nil {
			releaseAll(cloned[:i])
			releaseAll(args[i:])
			value.Release(fn)
			return value.Value{}, err
		}
		cloned[i] = cv
	}
	releaseAll(args)

	t := heap.NewTask(uuid.NewString())

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		taskCtx := ctx.New()
		result := ev.CallValue(fn, cloned, taskCtx)
		value.Release(fn)

		if taskCtx.Flag == ctx.FlagThrow {
			t.Complete(value.Value{}, taskCtx.ExcVal, true)
		} else {
			t.Complete(result, value.Value{}, false)
		}
	}()

	return value.Heap(value.KindTask, t), nil
}

// Join blocks until t completes, enforcing join-once (§3.5 invariant).
// A completed exception is not returned as an error: it is set as a
// throw on the caller's own ExecutionContext c, and Join returns a nil
// error. Join only reports a double join or a non-task argument as an
// error.
func Join(t value.Value, c *ctx.Context) (value.Value, error) {
	if t.Kind != value.KindTask {
		return value.Value{}, eval.TypeError("join requires a task, got %s", t.Kind)
	}
	tk := t.Object().(*heap.Task)
	if err := tk.MarkJoined(); err != nil {
		return value.Value{}, eval.StateError("%s", err.Error())
	}
	result, exc, hasExc := tk.Wait()
	if hasExc {
		c.SetThrow(exc)
		return value.Value{}, nil
	}
	return result, nil
}

// Detach marks t so a later join is never required: its eventual
// result/exception is still released the ordinary way, when the last
// binding referencing the Task Value is released (§4.5).
func Detach(t value.Value) error {
	if t.Kind != value.KindTask {
		return eval.TypeError("detach requires a task, got %s", t.Kind)
	}
	t.Object().(*heap.Task).MarkDetached()
	return nil
}

func releaseAll(vs []value.Value) {
	for _, v := range vs {
		value.Release(v)
	}
}
