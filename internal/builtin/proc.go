package builtin

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func (r *Registry) builtinExec(args []value.Value) (value.Value, error) {
	if len(args) < 1 || args[0].Kind != value.KindString {
		return value.Value{}, fmt.Errorf("exec(command[, args...]) requires a string command")
	}
	name := args[0].Object().(*heap.String).String()
	cmdArgs := make([]string, len(args)-1)
	for i, a := range args[1:] {
		if a.Kind != value.KindString {
			return value.Value{}, fmt.Errorf("exec: argument %d must be a string, got %s", i+1, a.Kind)
		}
		cmdArgs[i] = a.Object().(*heap.String).String()
	}
	stdout, stderr, code, err := r.exec.Run(name, cmdArgs)
	if err != nil {
		return value.Value{}, err
	}
	result := heap.NewObject("ExecResult",
		[]string{"stdout", "stderr", "exit_code"},
		[]value.Value{
			value.Heap(value.KindString, heap.NewString(stdout)),
			value.Heap(value.KindString, heap.NewString(stderr)),
			value.I32(int32(code)),
		},
	)
	return value.Heap(value.KindObject, result), nil
}

func (r *Registry) builtinRaise(args []value.Value) (value.Value, error) {
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return value.Value{}, fmt.Errorf("raise(signal) requires one integer argument")
	}
	if err := r.sig.Raise(int(args[0].AsInt64())); err != nil {
		return value.Value{}, err
	}
	return value.Null, nil
}

func (r *Registry) builtinSignal(args []value.Value) (value.Value, error) {
	if len(args) != 2 || !args[0].Kind.IsInteger() || args[1].Kind != value.KindFunction {
		return value.Value{}, fmt.Errorf("signal(num, handler) requires an integer and a function")
	}
	value.Retain(args[1])
	if err := r.sig.Notify(int(args[0].AsInt64()), args[1]); err != nil {
		value.Release(args[1])
		return value.Value{}, err
	}
	return value.Null, nil
}
