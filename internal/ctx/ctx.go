// Package ctx implements ExecutionContext (§3.4): the per-thread
// control-flow state the evaluator mutates as it walks the AST —
// return/throw/break/continue intent, the defer stack, and the call
// frame trace used for diagnostics. One Context exists per running
// thread of evaluation: the module loader's top-level run gets one,
// and each spawned task (§4.5) gets its own, since tasks are backed by
// independent OS threads with independent control-flow state.
package ctx

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Flag tags which control-flow intent is active. The flags are
// mutually exclusive in effect (§3.5): only one may be set at a time.
type Flag uint8

const (
	FlagNone Flag = iota
	FlagReturn
	FlagThrow
	FlagBreak
	FlagContinue
)

// MaxCallDepth bounds recursion (§4.4: "≈1000 frames"); exceeding it
// raises a Stack error.
const MaxCallDepth = 1000

// ErrStackOverflow is raised when MaxCallDepth is exceeded.
type ErrStackOverflow struct{}

func (ErrStackOverflow) Error() string { return "stack overflow: call depth exceeded" }

// DeferEntry pairs a deferred call expression with the environment it
// should be evaluated in (§4.4 Defer).
type DeferEntry struct {
	Call *ast.Call
	Env  *env.Environment
}

// CallFrame is one entry in the call-stack trace (§3.4/§4.4).
type CallFrame struct {
	Name string
	Line int
}

// Context is the ExecutionContext of §3.4.
type Context struct {
	Flag      Flag
	ReturnVal value.Value
	ExcVal    value.Value

	// Exports collects a module's name->value export table as its
	// top-level ExportStmt/re-export ImportStmt nodes execute (§4.6).
	// EvalProgram sets it; it stays set for function calls made on the
	// same Context, and is nil on a fresh Context such as a spawned
	// task's own.
	Exports map[string]value.Value

	deferStack []DeferEntry
	callStack  []CallFrame
}

// New returns a fresh, idle Context.
func New() *Context { return &Context{} }

// IsUnwinding reports whether any control-flow flag is set, i.e.
// whether evaluation of the current statement/expression sequence
// should stop and propagate outward (§4.4).
func (c *Context) IsUnwinding() bool { return c.Flag != FlagNone }

// SetReturn sets the return intent. It overwrites ReturnVal without
// releasing the previous value; ownership of that value passed to
// whoever consumed it.
func (c *Context) SetReturn(v value.Value) {
	c.Flag = FlagReturn
	c.ReturnVal = v
}

// SetThrow sets the exception intent. A throw inside a defer replaces
// the in-flight exception (§4.4/§7): callers call SetThrow again
// without needing to check the previous flag.
func (c *Context) SetThrow(v value.Value) {
	c.Flag = FlagThrow
	c.ExcVal = v
}

// SetBreak / SetContinue set the corresponding loop-control intent.
func (c *Context) SetBreak()    { c.Flag = FlagBreak }
func (c *Context) SetContinue() { c.Flag = FlagContinue }

// Clear resets the context to idle, e.g. after a loop consumes a
// break, or a try/catch handler clears a caught throw (§4.4).
func (c *Context) Clear() { c.Flag = FlagNone }

// Snapshot captures the current control-flow state so it can be
// restored later (used by try/finally, §4.4: "prior control-flow
// flags saved and restored around [finally]").
type Snapshot struct {
	Flag   Flag
	Return value.Value
	Exc    value.Value
}

func (c *Context) Save() Snapshot {
	return Snapshot{c.Flag, c.ReturnVal, c.ExcVal}
}

func (c *Context) Restore(s Snapshot) {
	c.Flag, c.ReturnVal, c.ExcVal = s.Flag, s.Return, s.Exc
}

// PushDefer records a deferred call on function entry's defer stack
// (§4.4).
func (c *Context) PushDefer(call *ast.Call, e *env.Environment) {
	c.deferStack = append(c.deferStack, DeferEntry{call, e})
}

// DeferMark returns the current defer-stack depth; a function records
// this on entry so it knows exactly which defers it pushed (§4.4).
func (c *Context) DeferMark() int { return len(c.deferStack) }

// PopDefersSince pops and returns, in LIFO order, every defer pushed
// since mark (i.e. by the exiting function), per §8 invariant 6.
func (c *Context) PopDefersSince(mark int) []DeferEntry {
	pending := c.deferStack[mark:]
	out := make([]DeferEntry, len(pending))
	for i, d := range pending {
		out[len(pending)-1-i] = d
	}
	c.deferStack = c.deferStack[:mark]
	return out
}

// PushCall records a user-function call-stack frame on entry,
// enforcing the recursion depth bound (§4.4).
func (c *Context) PushCall(name string, line int) error {
	if len(c.callStack) >= MaxCallDepth {
		return ErrStackOverflow{}
	}
	c.callStack = append(c.callStack, CallFrame{name, line})
	return nil
}

// PopCall removes the innermost call frame on function exit.
func (c *Context) PopCall() {
	if len(c.callStack) > 0 {
		c.callStack = c.callStack[:len(c.callStack)-1]
	}
}

// CallStack returns a snapshot of the trace, innermost-last. A
// function's frame is popped on every exit, including an exit by
// exception, so the trace does not keep the frames an in-flight
// exception has already unwound through.
func (c *Context) CallStack() []CallFrame {
	out := make([]CallFrame, len(c.callStack))
	copy(out, c.callStack)
	return out
}

// FormatStack renders the trace innermost-first, the order §7 mandates
// for an escaping exception's printed trace.
func FormatStack(frames []CallFrame) string {
	s := ""
	for i := len(frames) - 1; i >= 0; i-- {
		s += fmt.Sprintf("\tat %s (line %d)\n", frames[i].Name, frames[i].Line)
	}
	return s
}
