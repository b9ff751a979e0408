package heap

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/env"
)

// Function is the payload behind KindFunction: the is_async flag,
// parameter list (with unevaluated default expressions), return type,
// body, and a retained reference to the closure environment (§3.2).
type Function struct {
	Header
	IsAsync    bool
	Name       string
	Params     []ast.Param
	ReturnType string
	Body       *ast.Block
	Closure    *env.Environment
}

// NewFunction allocates a Function payload, retaining its closure
// environment once (the function owns exactly one retain on the
// defining scope, per §9 Design Notes).
func NewFunction(name string, isAsync bool, params []ast.Param, returnType string, body *ast.Block, closure *env.Environment) *Function {
	closure.Retain()
	return &Function{
		Header:     NewHeader(),
		IsAsync:    isAsync,
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Closure:    closure,
	}
}

// Release decrements the refcount; on reaching zero it releases the
// closure environment.
func (f *Function) Release() bool {
	if !f.release() {
		return false
	}
	f.Closure.Release()
	return true
}
