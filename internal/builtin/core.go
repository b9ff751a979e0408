package builtin

import (
	"fmt"
	"os"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func builtinPrint(args []value.Value) (value.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(value.ToString(a))
	}
	fmt.Println()
	return value.Null, nil
}

func builtinTypeof(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("typeof(v) requires one argument")
	}
	name := args[0].Kind.String()
	if args[0].Kind == value.KindObject {
		if o, ok := args[0].Object().(*heap.Object); ok && o.TypeName() != "" {
			name = o.TypeName()
		}
	}
	return value.Heap(value.KindString, heap.NewString(name)), nil
}

func builtinAssert(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("assert(cond[, message]) requires at least one argument")
	}
	if truthy(args[0]) {
		return value.Null, nil
	}
	msg := "assertion failed"
	if len(args) > 1 {
		msg = value.ToString(args[1])
	}
	return value.Value{}, fmt.Errorf("%s", msg)
}

func builtinPanic(args []value.Value) (value.Value, error) {
	msg := "panic"
	if len(args) > 0 {
		msg = value.ToString(args[0])
	}
	fmt.Fprintln(os.Stderr, "panic:", msg)
	os.Exit(1)
	return value.Null, nil
}

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("len(v) requires one argument")
	}
	switch args[0].Kind {
	case value.KindString:
		return value.I64(int64(args[0].Object().(*heap.String).RuneLen())), nil
	case value.KindArray:
		return value.I64(int64(args[0].Object().(*heap.Array).Len())), nil
	case value.KindBuffer:
		return value.I64(int64(args[0].Object().(*heap.Buffer).Len())), nil
	case value.KindObject:
		return value.I64(int64(len(args[0].Object().(*heap.Object).Names()))), nil
	default:
		return value.Value{}, fmt.Errorf("len: %s has no length", args[0].Kind)
	}
}

// truthy mirrors eval's unexported boolean-coercion rule (bool by
// value, null is false, everything else truthy); duplicated here since
// eval does not export it.
func truthy(v value.Value) bool {
	switch v.Kind {
	case value.KindBool:
		return v.AsBool()
	case value.KindNull:
		return false
	default:
		return true
	}
}
