package builtin

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// builtinSerialize/builtinDeserialize implement `serialize`/
// `deserialize` (§4.8) over whatever extern.Serializer the registry
// was built with (TextSerializer by default).
func (r *Registry) builtinSerialize(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("serialize(v) requires one argument")
	}
	s, err := r.ser.Serialize(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Heap(value.KindString, heap.NewString(s)), nil
}

func (r *Registry) builtinDeserialize(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindString {
		return value.Value{}, fmt.Errorf("deserialize(s) requires one string argument")
	}
	s := args[0].Object().(*heap.String).String()
	v, err := r.ser.Deserialize(s)
	if err != nil {
		return value.Value{}, err
	}
	return v, nil
}
