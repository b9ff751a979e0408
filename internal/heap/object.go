package heap

import "github.com/nbeerbower/hemlock/internal/value"

// Object is the payload behind KindObject: parallel, insertion-ordered
// field-name/value vectors plus an optional nominal type-name tag
// (§3.2). The object holds one retain per field value.
type Object struct {
	Header
	names    []string
	vals     []value.Value
	typeName string
}

// NewObject allocates an Object payload, retaining each initial field value.
func NewObject(typeName string, names []string, vals []value.Value) *Object {
	for _, v := range vals {
		value.Retain(v)
	}
	n := make([]string, len(names))
	v := make([]value.Value, len(vals))
	copy(n, names)
	copy(v, vals)
	return &Object{Header: NewHeader(), typeName: typeName, names: n, vals: v}
}

// Release decrements the refcount; on reaching zero it releases every
// owned field value.
func (o *Object) Release() bool {
	if !o.release() {
		return false
	}
	for _, v := range o.vals {
		value.Release(v)
	}
	o.names, o.vals = nil, nil
	return true
}

// TypeName returns the nominal type tag, or "" if the object is untyped.
func (o *Object) TypeName() string { return o.typeName }

// Names returns the insertion-ordered field names.
func (o *Object) Names() []string { return o.names }

// Get looks up a field by name, returning ok=false if absent.
func (o *Object) Get(name string) (value.Value, bool) {
	for i, n := range o.names {
		if n == name {
			return o.vals[i], true
		}
	}
	return value.Value{}, false
}

// Set assigns a field, appending it (in insertion order) if name is
// not already present, matching §3.2's "added dynamically on
// assignment to an unknown name".
func (o *Object) Set(name string, v value.Value) {
	value.Retain(v)
	for i, n := range o.names {
		if n == name {
			value.Release(o.vals[i])
			o.vals[i] = v
			return
		}
	}
	o.names = append(o.names, name)
	o.vals = append(o.vals, v)
}

// Clone deep-copies the object for task-spawn argument isolation.
func (o *Object) Clone(cloneValue func(value.Value) value.Value) *Object {
	vals := make([]value.Value, len(o.vals))
	for i, v := range o.vals {
		vals[i] = cloneValue(v)
	}
	return NewObject(o.typeName, o.names, vals)
}
