package builtin

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func (r *Registry) builtinOpen(args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return value.Value{}, fmt.Errorf("open(path, mode) requires two string arguments")
	}
	path := args[0].Object().(*heap.String).String()
	mode := args[1].Object().(*heap.String).String()
	f, err := r.fs.Open(path, mode)
	if err != nil {
		return value.Value{}, err
	}
	return value.Obj(value.KindFile, f), nil
}

func (r *Registry) builtinReadLine(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindFile {
		return value.Value{}, fmt.Errorf("read_line(file) requires one file argument")
	}
	f := args[0].Object().(*heap.File)
	line, ok, err := r.fs.ReadLine(f)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Null, nil
	}
	return value.Heap(value.KindString, heap.NewString(line)), nil
}

func (r *Registry) builtinEprint(args []value.Value) (value.Value, error) {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += value.ToString(a)
	}
	if err := r.fs.Eprint(s + "\n"); err != nil {
		return value.Value{}, err
	}
	return value.Null, nil
}
