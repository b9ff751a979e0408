package env

import (
	"errors"
	"testing"

	"github.com/nbeerbower/hemlock/internal/value"
)

func TestDefineAndLookup(t *testing.T) {
	e := New()
	e.Define("x", value.I32(1), false)
	v, err := e.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.AsInt64() != 1 {
		t.Fatalf("x = %v, want 1", v)
	}
}

func TestLookupUndefined(t *testing.T) {
	e := New()
	_, err := e.Lookup("missing")
	var ue ErrUndefined
	if !errors.As(err, &ue) || ue.Name != "missing" {
		t.Fatalf("err = %v, want ErrUndefined{missing}", err)
	}
}

func TestLookupWalksParentChain(t *testing.T) {
	root := New()
	root.Define("x", value.I32(42), false)
	child := NewChild(root)
	v, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.AsInt64() != 42 {
		t.Fatalf("x = %v, want 42", v)
	}
}

func TestDefineShadowsParent(t *testing.T) {
	root := New()
	root.Define("x", value.I32(1), false)
	child := NewChild(root)
	child.Define("x", value.I32(2), false)

	v, _ := child.Lookup("x")
	if v.AsInt64() != 2 {
		t.Fatalf("child x = %v, want 2", v)
	}
	v, _ = root.Lookup("x")
	if v.AsInt64() != 1 {
		t.Fatalf("root x = %v, want 1 (unaffected by shadowing)", v)
	}
}

func TestAssignMutatesOwningFrame(t *testing.T) {
	root := New()
	root.Define("x", value.I32(1), false)
	child := NewChild(root)

	if err := child.Assign("x", value.I32(9)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	// x lives in root, not child: the assignment must walk up and
	// mutate it there, not shadow it in child's own frame.
	v, _ := root.Lookup("x")
	if v.AsInt64() != 9 {
		t.Fatalf("root x = %v, want 9", v)
	}
	if _, ok := child.names["x"]; ok {
		t.Fatal("Assign must not create a new binding in child")
	}
}

func TestAssignUndefined(t *testing.T) {
	e := New()
	err := e.Assign("missing", value.I32(1))
	var ue ErrUndefined
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want ErrUndefined", err)
	}
}

func TestAssignConst(t *testing.T) {
	e := New()
	e.Define("x", value.I32(1), true)
	err := e.Assign("x", value.I32(2))
	var ie ErrImmutable
	if !errors.As(err, &ie) || ie.Imported {
		t.Fatalf("err = %v, want ErrImmutable{Imported:false}", err)
	}
}

func TestAssignImported(t *testing.T) {
	e := New()
	e.DefineImported("x", value.I32(1))
	err := e.Assign("x", value.I32(2))
	var ie ErrImmutable
	if !errors.As(err, &ie) || !ie.Imported {
		t.Fatalf("err = %v, want ErrImmutable{Imported:true}", err)
	}
}

func TestHas(t *testing.T) {
	root := New()
	root.Define("x", value.I32(1), false)
	child := NewChild(root)
	if !child.Has("x") {
		t.Fatal("Has should find x through the parent chain")
	}
	if child.Has("nope") {
		t.Fatal("Has should not find an undefined name")
	}
}

func TestBindSelf(t *testing.T) {
	e := New()
	e.BindSelf(value.I32(7))
	v, err := e.Lookup("self")
	if err != nil {
		t.Fatalf("Lookup(self): %v", err)
	}
	if v.AsInt64() != 7 {
		t.Fatalf("self = %v, want 7", v)
	}
	if err := e.Assign("self", value.I32(8)); err == nil {
		t.Fatal("self should be const; Assign should fail")
	}
}

func TestParent(t *testing.T) {
	root := New()
	child := NewChild(root)
	if child.Parent() != root {
		t.Fatal("Parent() should return the frame passed to NewChild")
	}
	if root.Parent() != nil {
		t.Fatal("a root environment should have a nil Parent()")
	}
}

func TestReleaseRefcountsValuesAndParent(t *testing.T) {
	root := New()
	child := NewChild(root) // retains root once

	p := &fakePayload{n: 1}
	child.Define("s", value.Heap(value.KindString, p), false)
	if p.n != 2 {
		t.Fatalf("Define should retain the value, n = %d, want 2", p.n)
	}

	child.Release() // drops child's own ref and releases its hold on root
	if p.n != 1 {
		t.Fatalf("releasing the last reference to child should release its bindings, n = %d, want 1", p.n)
	}

	// root.count was 2 (New()'s initial 1 + NewChild's retain); child's
	// Release only gave up the second one, so root must still be alive.
	if root.names == nil {
		t.Fatal("root should still be alive: New()'s own reference was never released")
	}

	root.Release()
	if root.names != nil {
		t.Fatal("releasing New()'s own reference should free root")
	}
}

type fakePayload struct{ n int }

func (f *fakePayload) Retain()       { f.n++ }
func (f *fakePayload) Release() bool { f.n--; return f.n == 0 }
