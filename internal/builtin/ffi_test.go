package builtin

import (
	"testing"

	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/value"
)

func TestResolveFFIRejectsUnregisteredSymbol(t *testing.T) {
	reg := New(eval.New(nil), nil)
	call, err := reg.resolveFFI("libm", "sqrt", []string{"f64"}, "f64")
	if err != nil {
		t.Fatalf("resolveFFI: %v", err)
	}
	if _, err := call([]value.Value{value.F64(4)}); err == nil {
		t.Fatal("calling an extern fn the host never registered should fail")
	}
}

func TestBuiltinCallbackRequiresFunctionValue(t *testing.T) {
	reg := New(eval.New(nil), nil)
	if _, err := reg.builtinCallback([]value.Value{value.I32(1)}); err == nil {
		t.Fatal("callback(non-function) should fail")
	}
}

func TestBuiltinCallbackFreeRequiresIntegerToken(t *testing.T) {
	reg := New(eval.New(nil), nil)
	if _, err := reg.builtinCallbackFree([]value.Value{value.Heap(value.KindString, nil)}); err == nil {
		t.Fatal("callback_free(non-integer) should fail")
	}
}
