package builtin

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/task"
	"github.com/nbeerbower/hemlock/internal/value"
)

// builtinSpawn implements `spawn(fn, args...)` (§4.5/§4.7). args here
// are the builtin call's own owned arguments, one ref apiece, which
// call.go releases once regardless of what this function does with
// them (per the call mechanics in eval/call.go): task.Spawn consumes
// its own retained copies instead of the originals, so the two
// release paths stay balanced.
func (r *Registry) builtinSpawn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || args[0].Kind != value.KindFunction {
		return value.Value{}, fmt.Errorf("spawn(fn, args...) requires a function as its first argument")
	}
	fn := args[0]
	value.Retain(fn)
	spawnArgs := make([]value.Value, len(args)-1)
	for i, a := range args[1:] {
		value.Retain(a)
		spawnArgs[i] = a
	}
	return task.Spawn(r.ev, fn, spawnArgs)
}

func (r *Registry) builtinJoin(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindTask {
		return value.Value{}, fmt.Errorf("join(task) requires one task argument")
	}
	c := ctx.New()
	result, err := task.Join(args[0], c)
	if err != nil {
		return value.Value{}, err
	}
	if c.Flag == ctx.FlagThrow {
		return value.Value{}, eval.Thrown{Value: c.ExcVal}
	}
	return result, nil
}

func (r *Registry) builtinDetach(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindTask {
		return value.Value{}, fmt.Errorf("detach(task) requires one task argument")
	}
	if err := task.Detach(args[0]); err != nil {
		return value.Value{}, err
	}
	return value.Null, nil
}

func builtinChannel(args []value.Value) (value.Value, error) {
	cap := 1
	if len(args) == 1 {
		if !args[0].Kind.IsInteger() {
			return value.Value{}, fmt.Errorf("channel(cap) requires an integer argument")
		}
		cap = int(args[0].AsInt64())
	} else if len(args) > 1 {
		return value.Value{}, fmt.Errorf("channel([cap]) takes at most one argument")
	}
	return value.Heap(value.KindChannel, heap.NewChannel(cap)), nil
}
