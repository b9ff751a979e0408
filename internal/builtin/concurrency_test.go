package builtin

import (
	"path/filepath"
	"testing"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/parser"
	"github.com/nbeerbower/hemlock/internal/value"
)

// parsedFunction evaluates a one-function program and returns the
// resulting hemlock closure Value, for builtins (like spawn) that
// require a real value.KindFunction rather than a bare Go callback.
func parsedFunction(t *testing.T, ev *eval.Evaluator, src, name string) value.Value {
	t.Helper()
	prog, err := parser.Parse([]byte(src), "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	en := env.New()
	c := ctx.New()
	ev.EvalProgram(prog, en, c, nil)
	if c.Flag == ctx.FlagThrow {
		t.Fatalf("unexpected throw: %v", value.ToString(c.ExcVal))
	}
	v, err := en.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return v
}

func TestBuiltinChannelDefaultAndExplicitCapacity(t *testing.T) {
	v, err := builtinChannel(nil)
	if err != nil {
		t.Fatalf("channel(): %v", err)
	}
	if v.Kind != value.KindChannel {
		t.Fatalf("channel() kind = %v, want KindChannel", v.Kind)
	}

	v2, err := builtinChannel([]value.Value{value.I32(4)})
	if err != nil {
		t.Fatalf("channel(4): %v", err)
	}
	ch := v2.Object().(*heap.Channel)
	if ch.Cap() != 4 {
		t.Fatalf("Cap() = %d, want 4", ch.Cap())
	}
}

func TestBuiltinChannelTooManyArgs(t *testing.T) {
	if _, err := builtinChannel([]value.Value{value.I32(1), value.I32(2)}); err == nil {
		t.Fatal("channel(cap1, cap2) should fail")
	}
}

func TestRegistrySpawnJoinRoundTrip(t *testing.T) {
	ev := eval.New(nil)
	reg := New(ev, nil)

	fn := parsedFunction(t, ev, `fn add1(n) { return n + 1; }`, "add1")
	value.Retain(fn)

	tk, err := reg.builtinSpawn([]value.Value{fn, value.I32(41)})
	if err != nil {
		t.Fatalf("builtinSpawn: %v", err)
	}
	result, err := reg.builtinJoin([]value.Value{tk})
	if err != nil {
		t.Fatalf("builtinJoin: %v", err)
	}
	if result.AsInt64() != 42 {
		t.Fatalf("result = %v, want 42", result.AsInt64())
	}
}

func TestRegistryDetachRejectsNonTask(t *testing.T) {
	reg := New(eval.New(nil), nil)
	if _, err := reg.builtinDetach([]value.Value{value.I32(1)}); err == nil {
		t.Fatal("detach(non-task) should fail")
	}
}

func TestRegistryOpenReadLineRoundTrip(t *testing.T) {
	reg := New(eval.New(nil), nil)
	path := filepath.Join(t.TempDir(), "f.txt")

	wf, err := reg.builtinOpen([]value.Value{
		value.Heap(value.KindString, heap.NewString(path)),
		value.Heap(value.KindString, heap.NewString("w")),
	})
	if err != nil {
		t.Fatalf("open(w): %v", err)
	}
	f := wf.Object().(*heap.File)
	if _, err := f.Handle().WriteString("hello\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	rf, err := reg.builtinOpen([]value.Value{
		value.Heap(value.KindString, heap.NewString(path)),
		value.Heap(value.KindString, heap.NewString("r")),
	})
	if err != nil {
		t.Fatalf("open(r): %v", err)
	}
	line, err := reg.builtinReadLine([]value.Value{rf})
	if err != nil {
		t.Fatalf("read_line: %v", err)
	}
	if value.ToString(line) != "hello" {
		t.Fatalf("read_line = %q, want %q", value.ToString(line), "hello")
	}
}

func TestRegistryExecCapturesOutput(t *testing.T) {
	reg := New(eval.New(nil), nil)
	result, err := reg.builtinExec([]value.Value{
		value.Heap(value.KindString, heap.NewString("echo")),
		value.Heap(value.KindString, heap.NewString("hi")),
	})
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	o := result.Object().(*heap.Object)
	stdout, ok := o.Get("stdout")
	if !ok || value.ToString(stdout) != "hi\n" {
		t.Fatalf("stdout = %+v, want %q", stdout, "hi\n")
	}
}

func TestRegistryCallbackLifecycleThroughBuiltins(t *testing.T) {
	reg := New(eval.New(nil), nil)
	fn := value.Heap(value.KindFunction, &heap.Function{})
	token, err := reg.builtinCallback([]value.Value{fn, value.Heap(value.KindString, heap.NewString("void"))})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if _, err := reg.builtinCallbackFree([]value.Value{token}); err != nil {
		t.Fatalf("callback_free: %v", err)
	}
	if _, err := reg.builtinCallbackFree([]value.Value{token}); err == nil {
		t.Fatal("freeing an already-freed token should fail")
	}
}
