// Package env implements hemlock's lexical environment (§3.3/§4.2): a
// chain of refcounted scope frames mapping name to (value, const-flag),
// retained beyond the lexical lifetime of their defining call by any
// closure that captured them.
package env

import (
	"fmt"
	"sync/atomic"

	"github.com/nbeerbower/hemlock/internal/value"
)

// binding is one name's slot in a frame.
type binding struct {
	value    value.Value
	isConst  bool
	imported bool // imported bindings are immutable regardless of const/let (§4.2/§4.6)
}

// Environment is one scope frame. Frames are reference-counted because
// closures retain them beyond the lexical lifetime of the enclosing
// call (§3.3).
type Environment struct {
	parent *Environment
	names  map[string]*binding
	count  int64
}

// New creates a root environment with no parent (e.g. the builtin
// registry's global scope, or a module's top-level env).
func New() *Environment {
	return &Environment{names: make(map[string]*binding), count: 1}
}

// NewChild creates a child frame, retaining the parent once: the
// child's lifetime keeps the parent reachable for as long as the
// child (or anything that captured the child) is alive.
func NewChild(parent *Environment) *Environment {
	if parent != nil {
		parent.Retain()
	}
	return &Environment{parent: parent, names: make(map[string]*binding), count: 1}
}

// Retain increments the frame's reference count (Environment itself is
// not a Value payload, but closures and callers share it the same way).
func (e *Environment) Retain() { atomic.AddInt64(&e.count, 1) }

// Release decrements the frame's reference count. When it reaches
// zero, every binding's Value is released and the parent frame is
// released in turn (propagating the chain).
func (e *Environment) Release() {
	if e == nil {
		return
	}
	if atomic.AddInt64(&e.count, -1) != 0 {
		return
	}
	for _, b := range e.names {
		value.Release(b.value)
	}
	e.names = nil
	e.parent.Release()
}

// Parent returns the enclosing frame, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Define binds name in the current frame (always, per §3.3: "let/const
// always define in the current frame"). Redefining an existing name in
// the same frame overwrites it, releasing the previous value.
func (e *Environment) Define(name string, v value.Value, isConst bool) {
	value.Retain(v)
	if old, ok := e.names[name]; ok {
		value.Release(old.value)
	}
	e.names[name] = &binding{value: v, isConst: isConst}
}

// DefineImported binds an immutable, import-sourced name in the
// current frame (§4.2/§4.6): reassignment always fails regardless of
// the exporting module's own const/let declaration.
func (e *Environment) DefineImported(name string, v value.Value) {
	value.Retain(v)
	if old, ok := e.names[name]; ok {
		value.Release(old.value)
	}
	e.names[name] = &binding{value: v, imported: true}
}

// ErrUndefined is returned by Lookup/Assign when name is not bound in
// any reachable frame.
type ErrUndefined struct{ Name string }

func (e ErrUndefined) Error() string { return fmt.Sprintf("undefined variable: %s", e.Name) }

// ErrImmutable is returned by Assign when name is bound const or
// imported.
type ErrImmutable struct {
	Name     string
	Imported bool
}

func (e ErrImmutable) Error() string {
	if e.Imported {
		return fmt.Sprintf("cannot assign to imported binding: %s", e.Name)
	}
	return fmt.Sprintf("cannot assign to const binding: %s", e.Name)
}

// Lookup walks parent links to find name, retaining the returned value
// (the caller owns the returned retain, per §4.2).
func (e *Environment) Lookup(name string) (value.Value, error) {
	for f := e; f != nil; f = f.parent {
		if b, ok := f.names[name]; ok {
			value.Retain(b.value)
			return b.value, nil
		}
	}
	return value.Value{}, ErrUndefined{name}
}

// Has reports whether name is bound in this frame or an ancestor,
// without retaining it.
func (e *Environment) Has(name string) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.names[name]; ok {
			return true
		}
	}
	return false
}

// Assign mutates the innermost frame in which name is already bound
// (§3.3). It fails if name is undefined anywhere in the chain, or
// bound const, or imported.
func (e *Environment) Assign(name string, v value.Value) error {
	for f := e; f != nil; f = f.parent {
		if b, ok := f.names[name]; ok {
			if b.isConst {
				return ErrImmutable{name, false}
			}
			if b.imported {
				return ErrImmutable{name, true}
			}
			value.Retain(v)
			value.Release(b.value)
			b.value = v
			return nil
		}
	}
	return ErrUndefined{name}
}

// BindSelf injects a read-only `self` binding into a method-call
// environment (§4.2).
func (e *Environment) BindSelf(recv value.Value) {
	e.Define("self", recv, true)
}
