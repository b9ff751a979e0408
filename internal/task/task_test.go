package task

import (
	"testing"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func builtinFn(fn func([]value.Value) (value.Value, error)) value.Value {
	return value.Obj(value.KindBuiltinFn, &heap.BuiltinFn{Name: "test", Fn: fn})
}

func TestSpawnJoinResult(t *testing.T) {
	ev := eval.New(nil)
	fn := builtinFn(func(args []value.Value) (value.Value, error) {
		return value.I32(args[0].AsInt64() + 1), nil
	})

	tk, err := Spawn(ev, fn, []value.Value{value.I32(41)})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	c := ctx.New()
	result, err := Join(tk, c)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if c.Flag == ctx.FlagThrow {
		t.Fatalf("unexpected throw: %v", c.ExcVal)
	}
	if result.AsInt64() != 42 {
		t.Fatalf("result = %v, want 42", result.AsInt64())
	}
}

func TestSpawnJoinException(t *testing.T) {
	ev := eval.New(nil)
	fn := builtinFn(func(args []value.Value) (value.Value, error) {
		return value.Value{}, eval.TypeError("boom")
	})

	tk, err := Spawn(ev, fn, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	c := ctx.New()
	_, err = Join(tk, c)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if c.Flag != ctx.FlagThrow {
		t.Fatalf("Flag = %v, want FlagThrow", c.Flag)
	}
}

func TestJoinTwiceFails(t *testing.T) {
	ev := eval.New(nil)
	fn := builtinFn(func(args []value.Value) (value.Value, error) {
		return value.I32(1), nil
	})
	tk, err := Spawn(ev, fn, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	c := ctx.New()
	if _, err := Join(tk, c); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	if _, err := Join(tk, ctx.New()); err == nil {
		t.Fatal("joining a task twice should fail")
	}
}

func TestJoinNonTaskIsTypeError(t *testing.T) {
	c := ctx.New()
	_, err := Join(value.I32(1), c)
	if err == nil {
		t.Fatal("joining a non-task value should fail")
	}
}

func TestDetachMarksTask(t *testing.T) {
	ev := eval.New(nil)
	fn := builtinFn(func(args []value.Value) (value.Value, error) {
		return value.I32(1), nil
	})
	tk, err := Spawn(ev, fn, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := Detach(tk); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if !tk.Object().(*heap.Task).Detached() {
		t.Fatal("Detach should mark the task detached")
	}
}

func TestDetachNonTaskIsError(t *testing.T) {
	if err := Detach(value.I32(1)); err == nil {
		t.Fatal("detaching a non-task value should fail")
	}
}

func TestSpawnClonesArgsForIsolation(t *testing.T) {
	ev := eval.New(nil)
	s := heap.NewString("hello")
	arg := value.Heap(value.KindString, s)

	seen := make(chan *heap.String, 1)
	fn := builtinFn(func(args []value.Value) (value.Value, error) {
		seen <- args[0].Object().(*heap.String)
		return value.Null, nil
	})

	tk, err := Spawn(ev, fn, []value.Value{arg})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	c := ctx.New()
	if _, err := Join(tk, c); err != nil {
		t.Fatalf("Join: %v", err)
	}

	got := <-seen
	if got == s {
		t.Fatal("Spawn should deep-clone args, not hand the same payload to the goroutine")
	}
	if got.String() != "hello" {
		t.Fatalf("cloned arg content = %q, want hello", got.String())
	}
}
