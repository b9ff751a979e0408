// Package builtin implements the process-wide host-function registry
// of spec.md §4.7 (teacher: `initUniverse` plus the `bltnAppend`-style
// constant table and `Use`/`Symbols` wiring in interp.go): every name
// listed there — print, typeof, assert, panic, len, the raw-memory
// family, buffer/ptr conversions, open/read_line/eprint, exec,
// signal/raise, spawn/join/detach, channel, serialize/deserialize,
// callback/callback_free, and args — bound as *heap.BuiltinFn Values
// into a single root env.Environment every module's top-level scope
// chains from.
package builtin

import (
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/extern"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Registry holds every external collaborator the builtin table
// delegates to, plus the Evaluator needed to invoke hemlock function
// Values from a host function (higher-order builtins, signal
// handlers, FFI callbacks).
type Registry struct {
	ev     *eval.Evaluator
	fs     extern.FileSystem
	dialer extern.SocketDialer
	sig    extern.Signal
	exec   extern.Exec
	ffi    extern.FFI
	ser    extern.Serializer
	arena  *arena
	args   []string
}

// New builds a Registry wired to concrete extern collaborators. A
// callback that invokes a function Value through ev is threaded into
// the signal collaborator so a registered `signal` handler can be
// called back into hemlock code.
func New(ev *eval.Evaluator, args []string) *Registry {
	r := &Registry{
		ev:     ev,
		fs:     extern.NewOSFileSystem(),
		dialer: extern.NewNetDialer(),
		exec:   extern.NewOSExec(),
		ffi:    extern.NewRegistryFFI(),
		ser:    extern.NewTextSerializer(),
		arena:  newArena(),
		args:   args,
	}
	r.sig = extern.NewOSSignal(func(fn value.Value) {
		value.Retain(fn)
		c := ctx.New()
		result := ev.CallValue(fn, nil, c)
		value.Release(fn)
		value.Release(result)
	})
	ev.FFIResolver = r.resolveFFI
	return r
}

// Root builds the global environment every module's top-level scope
// is chained from (§4.6: "the host's builtin registry as its global
// parent").
func (r *Registry) Root() *env.Environment {
	root := env.New()
	for name, fn := range r.table() {
		bindFn(root, name, fn)
	}
	for name, n := range extern.SignalNumbers {
		root.Define(name, value.I32(int32(n)), true)
	}
	argVals := make([]value.Value, len(r.args))
	for i, a := range r.args {
		argVals[i] = value.Heap(value.KindString, heap.NewString(a))
	}
	argsArr := heap.NewArray(argVals)
	releaseAll(argVals)
	root.Define("args", value.Heap(value.KindArray, argsArr), true)
	return root
}

func bindFn(e *env.Environment, name string, fn func(args []value.Value) (value.Value, error)) {
	bf := &heap.BuiltinFn{Name: name, Fn: fn}
	e.Define(name, value.Obj(value.KindBuiltinFn, bf), true)
}

func (r *Registry) table() map[string]func(args []value.Value) (value.Value, error) {
	m := map[string]func(args []value.Value) (value.Value, error){
		"print":         builtinPrint,
		"typeof":        builtinTypeof,
		"assert":        builtinAssert,
		"panic":         builtinPanic,
		"len":           builtinLen,
		"buffer":        builtinBuffer,
		"eprint":        r.builtinEprint,
		"open":          r.builtinOpen,
		"read_line":     r.builtinReadLine,
		"exec":          r.builtinExec,
		"raise":         r.builtinRaise,
		"signal":        r.builtinSignal,
		"spawn":         r.builtinSpawn,
		"join":          r.builtinJoin,
		"detach":        r.builtinDetach,
		"channel":       builtinChannel,
		"serialize":     r.builtinSerialize,
		"deserialize":   r.builtinDeserialize,
		"callback":      r.builtinCallback,
		"callback_free": r.builtinCallbackFree,
	}
	for name, fn := range r.arena.builtins() {
		m[name] = fn
	}
	return m
}

func releaseAll(vs []value.Value) {
	for _, v := range vs {
		value.Release(v)
	}
}
