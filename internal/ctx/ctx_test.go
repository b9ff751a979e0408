package ctx

import (
	"testing"

	"github.com/nbeerbower/hemlock/internal/value"
)

func TestFlagTransitions(t *testing.T) {
	c := New()
	if c.IsUnwinding() {
		t.Fatal("a fresh Context should not be unwinding")
	}

	c.SetReturn(value.I32(1))
	if c.Flag != FlagReturn || !c.IsUnwinding() {
		t.Fatalf("after SetReturn: Flag = %v", c.Flag)
	}

	c.SetThrow(value.I32(2))
	if c.Flag != FlagThrow {
		t.Fatalf("SetThrow should replace the prior flag, got %v", c.Flag)
	}

	c.SetBreak()
	if c.Flag != FlagBreak {
		t.Fatalf("Flag = %v, want FlagBreak", c.Flag)
	}

	c.SetContinue()
	if c.Flag != FlagContinue {
		t.Fatalf("Flag = %v, want FlagContinue", c.Flag)
	}

	c.Clear()
	if c.IsUnwinding() {
		t.Fatal("Clear should reset to idle")
	}
}

func TestSaveRestore(t *testing.T) {
	c := New()
	c.SetThrow(value.I32(7))
	snap := c.Save()

	c.Clear()
	c.SetReturn(value.I32(9))

	c.Restore(snap)
	if c.Flag != FlagThrow || c.ExcVal.AsInt64() != 7 {
		t.Fatalf("Restore did not bring back the throw state, Flag=%v ExcVal=%v", c.Flag, c.ExcVal)
	}
}

func TestDeferStackMarkAndPop(t *testing.T) {
	c := New()
	if mark := c.DeferMark(); mark != 0 {
		t.Fatalf("DeferMark on a fresh context = %d, want 0", mark)
	}

	c.PushDefer(nil, nil)
	mark := c.DeferMark()
	c.PushDefer(nil, nil)
	c.PushDefer(nil, nil)

	pending := c.PopDefersSince(mark)
	if len(pending) != 2 {
		t.Fatalf("PopDefersSince returned %d entries, want 2", len(pending))
	}
	if c.DeferMark() != mark {
		t.Fatalf("DeferMark after pop = %d, want %d", c.DeferMark(), mark)
	}
}

func TestPushCallEnforcesMaxDepth(t *testing.T) {
	c := New()
	for i := 0; i < MaxCallDepth; i++ {
		if err := c.PushCall("f", i); err != nil {
			t.Fatalf("PushCall unexpectedly failed at depth %d: %v", i, err)
		}
	}
	if err := c.PushCall("f", MaxCallDepth); err == nil {
		t.Fatal("PushCall should fail once MaxCallDepth is exceeded")
	}
	if _, ok := interface{}(ErrStackOverflow{}).(error); !ok {
		t.Fatal("ErrStackOverflow should implement error")
	}
}

func TestPushPopCallStack(t *testing.T) {
	c := New()
	c.PushCall("outer", 1)
	c.PushCall("inner", 2)
	stack := c.CallStack()
	if len(stack) != 2 || stack[0].Name != "outer" || stack[1].Name != "inner" {
		t.Fatalf("CallStack() = %+v", stack)
	}
	c.PopCall()
	if len(c.CallStack()) != 1 {
		t.Fatalf("CallStack() after PopCall = %+v, want 1 entry", c.CallStack())
	}
}

func TestPopCallOnEmptyStackIsNoop(t *testing.T) {
	c := New()
	c.PopCall()
	if len(c.CallStack()) != 0 {
		t.Fatal("PopCall on an empty stack should not panic or underflow")
	}
}

func TestFormatStackInnermostFirst(t *testing.T) {
	frames := []CallFrame{{Name: "main", Line: 1}, {Name: "helper", Line: 5}}
	s := FormatStack(frames)
	wantHelperFirst := "\tat helper (line 5)\n\tat main (line 1)\n"
	if s != wantHelperFirst {
		t.Fatalf("FormatStack = %q, want %q", s, wantHelperFirst)
	}
}
