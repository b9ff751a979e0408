package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func TestRegistrySerializeDeserializeRoundTrip(t *testing.T) {
	reg := New(eval.New(nil), nil)
	v := value.Heap(value.KindString, heap.NewString("hello"))

	text, err := reg.builtinSerialize([]value.Value{v})
	require.NoError(t, err)
	require.Equal(t, value.KindString, text.Kind)

	back, err := reg.builtinDeserialize([]value.Value{text})
	require.NoError(t, err)
	require.Equal(t, value.KindString, back.Kind)
	require.Equal(t, "hello", value.ToString(back))
}

func TestRegistryDeserializeRejectsNonString(t *testing.T) {
	reg := New(eval.New(nil), nil)
	if _, err := reg.builtinDeserialize([]value.Value{value.I32(1)}); err == nil {
		t.Fatal("deserialize(non-string) should fail")
	}
}
