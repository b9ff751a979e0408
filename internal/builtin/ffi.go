package builtin

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/value"
)

// builtinCallback/builtinCallbackFree implement `callback`/
// `callback_free` (§4.8): registering a hemlock function as a token a
// foreign call's argument list can carry, and releasing that
// registration again. The registered function is retained for the
// lifetime of the token; extern.RegistryFFI.FreeCallback releases it.
func (r *Registry) builtinCallback(args []value.Value) (value.Value, error) {
	if len(args) < 1 || args[0].Kind != value.KindFunction {
		return value.Value{}, fmt.Errorf("callback(fn, paramTypes..., returnType) requires a function first")
	}
	paramTypes := make([]string, 0, len(args)-2)
	returnType := "void"
	for i, a := range args[1:] {
		if a.Kind != value.KindString {
			return value.Value{}, fmt.Errorf("callback: argument %d must be a string type name", i+1)
		}
		s := value.ToString(a)
		if i == len(args)-2 {
			returnType = s
		} else {
			paramTypes = append(paramTypes, s)
		}
	}
	token, err := r.ffi.Callback(args[0], paramTypes, returnType)
	if err != nil {
		return value.Value{}, err
	}
	return value.U64(token), nil
}

func (r *Registry) builtinCallbackFree(args []value.Value) (value.Value, error) {
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return value.Value{}, fmt.Errorf("callback_free(token) requires one integer argument")
	}
	if err := r.ffi.FreeCallback(args[0].AsUint64()); err != nil {
		return value.Value{}, err
	}
	return value.Null, nil
}

// resolveFFI adapts extern.FFI.Call into the evaluator's FFIResolver
// hook (eval.Evaluator.FFIResolver), binding an `extern fn`'s declared
// library/symbol to a callable entry point the first time it is
// declared (§4.8).
func (r *Registry) resolveFFI(library, symbol string, paramTypes []string, returnType string) (func([]value.Value) (value.Value, error), error) {
	return func(args []value.Value) (value.Value, error) {
		return r.ffi.Call(library, symbol, paramTypes, returnType, args)
	}, nil
}
