package extern

import (
	"fmt"
	"sync"

	"github.com/nbeerbower/hemlock/internal/value"
)

// NativeFunc is a Go function registered under a (library, symbol)
// pair, the shape RegistryFFI actually invokes.
type NativeFunc func(args []value.Value) (value.Value, error)

// RegistryFFI is the default FFI collaborator: rather than dlopen-ing
// a shared object (which needs cgo, unavailable to a pure-Go build),
// a host embedding hemlock pre-registers Go functions under a
// (library, symbol) key, the same way the teacher's own
// `i.Use(stdlib.Value)` wires pre-compiled Go values into the
// interpreter's symbol table by name instead of loading them from a
// `.so` at runtime. `extern fn` declarations bind against whatever the
// host registered; calling a library/symbol pair no host registered
// returns an error (raised in hemlock as a type error), not a crash.
type RegistryFFI struct {
	mu        sync.RWMutex
	functions map[string]NativeFunc
	callbacks map[uint64]value.Value
	nextToken uint64
}

func NewRegistryFFI() *RegistryFFI {
	return &RegistryFFI{
		functions: make(map[string]NativeFunc),
		callbacks: make(map[uint64]value.Value),
	}
}

// Register installs fn under library/symbol, for the embedding host
// to call during startup before any hemlock script runs.
func (r *RegistryFFI) Register(library, symbol string, fn NativeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[key(library, symbol)] = fn
}

func (r *RegistryFFI) Call(library, symbol string, paramTypes []string, returnType string, args []value.Value) (value.Value, error) {
	r.mu.RLock()
	fn, ok := r.functions[key(library, symbol)]
	r.mu.RUnlock()
	if !ok {
		return value.Value{}, fmt.Errorf("extern function %s:%s is not registered by the host", library, symbol)
	}
	return fn(args)
}

func (r *RegistryFFI) Callback(fn value.Value, paramTypes []string, returnType string) (uint64, error) {
	if fn.Kind != value.KindFunction {
		return 0, fmt.Errorf("callback requires a function value, got %s", fn.Kind)
	}
	value.Retain(fn)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextToken++
	token := r.nextToken
	r.callbacks[token] = fn
	return token, nil
}

func (r *RegistryFFI) FreeCallback(token uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.callbacks[token]
	if !ok {
		return fmt.Errorf("callback token %d is not registered", token)
	}
	delete(r.callbacks, token)
	value.Release(fn)
	return nil
}

func key(library, symbol string) string { return library + ":" + symbol }
