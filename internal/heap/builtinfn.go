package heap

import "github.com/nbeerbower/hemlock/internal/value"

// BuiltinFn wraps a host function reachable as a KindBuiltinFn Value
// (§4.7): print, typeof, len, spawn, and the rest of the process-wide
// registry. Like File/Socket it is not refcounted — host functions are
// immutable, process-lifetime singletons, never allocated per call.
type BuiltinFn struct {
	Name string
	Fn   func(args []value.Value) (value.Value, error)
}

func (b *BuiltinFn) String() string { return "<builtin " + b.Name + ">" }

// FFIFn wraps the signature declared by an `extern fn` statement
// (§4.8): a foreign symbol the FFI collaborator can invoke once bound.
// Call is nil until the host resolves Library/Symbol to an actual
// entry point; calling an unresolved FFIFn is a state error.
type FFIFn struct {
	Name       string
	Library    string
	Symbol     string
	ParamTypes []string
	ReturnType string
	Call       func(args []value.Value) (value.Value, error)
}

func (f *FFIFn) String() string { return "<ffi-fn " + f.Name + ">" }
