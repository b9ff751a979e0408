package heap

import "github.com/nbeerbower/hemlock/internal/value"

// Array is the payload behind KindArray: a dense, geometrically-growing
// vector of Values. The array holds one retain per element (§3.2).
type Array struct {
	Header
	elems []value.Value
}

// NewArray allocates an Array payload, retaining each initial element.
func NewArray(elems []value.Value) *Array {
	for _, e := range elems {
		value.Retain(e)
	}
	cp := make([]value.Value, len(elems))
	copy(cp, elems)
	return &Array{Header: NewHeader(), elems: cp}
}

// Release decrements the refcount; on reaching zero it releases every
// owned element.
func (a *Array) Release() bool {
	if !a.release() {
		return false
	}
	for _, e := range a.elems {
		value.Release(e)
	}
	a.elems = nil
	return true
}

// Len returns the element count.
func (a *Array) Len() int { return len(a.elems) }

// Elems returns the live backing slice; callers must not retain it
// past a subsequent mutation.
func (a *Array) Elems() []value.Value { return a.elems }

// At returns the element at index i (bounds-checked by the caller).
func (a *Array) At(i int) value.Value { return a.elems[i] }

// Set replaces the element at index i, releasing the old value and
// retaining the new one.
func (a *Array) Set(i int, v value.Value) {
	value.Retain(v)
	value.Release(a.elems[i])
	a.elems[i] = v
}

// Push appends v, retaining it.
func (a *Array) Push(v value.Value) {
	value.Retain(v)
	a.elems = append(a.elems, v)
}

// Pop removes and returns the last element; the caller takes ownership
// of the returned retain. ok is false on an empty array.
func (a *Array) Pop() (value.Value, bool) {
	if len(a.elems) == 0 {
		return value.Value{}, false
	}
	last := a.elems[len(a.elems)-1]
	a.elems = a.elems[:len(a.elems)-1]
	return last, true
}

// Shift removes and returns the first element.
func (a *Array) Shift() (value.Value, bool) {
	if len(a.elems) == 0 {
		return value.Value{}, false
	}
	first := a.elems[0]
	a.elems = a.elems[1:]
	return first, true
}

// Unshift prepends v, retaining it.
func (a *Array) Unshift(v value.Value) {
	value.Retain(v)
	a.elems = append([]value.Value{v}, a.elems...)
}

// Insert places v at index i, retaining it.
func (a *Array) Insert(i int, v value.Value) {
	value.Retain(v)
	a.elems = append(a.elems, value.Value{})
	copy(a.elems[i+1:], a.elems[i:])
	a.elems[i] = v
}

// Remove deletes and returns the element at index i; the caller takes
// ownership of the returned retain.
func (a *Array) Remove(i int) value.Value {
	v := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)
	return v
}

// Clone deep-copies the array for task-spawn argument isolation (§4.5,
// §8 invariant 5): every element is itself deep-copied via the
// supplied cloneValue function, which knows how to recurse into
// nested heap kinds.
func (a *Array) Clone(cloneValue func(value.Value) value.Value) *Array {
	out := make([]value.Value, len(a.elems))
	for i, e := range a.elems {
		out[i] = cloneValue(e)
	}
	return NewArray(out)
}
