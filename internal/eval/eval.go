// Package eval implements the tree-walking evaluator (§4.4): the
// single largest component of the runtime, dispatching every
// expression and statement form over the value/env/heap/ctx
// primitives the rest of the runtime provides. It follows the
// "unwinding" control-flow model documented on ctx.Context: no Go
// panic/recover is used for hemlock-level control flow (return,
// throw, break, continue) — every evaluation function checks
// ctx.Context.IsUnwinding() after each sub-evaluation and propagates
// by simply returning, the way the teacher's own single-goroutine
// interpreter loop threads a `done chan struct{}` through recursive
// calls instead of using recover().
package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Exports is the name->value table a module publishes (§4.6).
type Exports map[string]value.Value

// Importer resolves an import path to the exporting module's table.
// The module loader implements this; Evaluator depends only on the
// interface to avoid an eval<->module import cycle (module already
// depends on eval to execute a module's statements).
type Importer interface {
	Import(path string) (Exports, error)
}

// Evaluator is the (mostly stateless) tree-walker. The only state it
// owns — nominal object-type declarations — is process-wide by design
// (§4.3's `define` is a declaration, not a per-call binding), guarded by a mutex since multiple tasks (§4.5) evaluate
// concurrently against the same Evaluator.
type Evaluator struct {
	Importer Importer

	// FFIResolver binds an `extern fn`'s declared library/symbol to a
	// callable host entry point (§4.8). Left nil, every ExternFnStmt
	// produces an FFIFn whose Call stays nil and which throws a state
	// error the first time it is invoked.
	FFIResolver func(library, symbol string, paramTypes []string, returnType string) (func([]value.Value) (value.Value, error), error)

	types *typeRegistry
}

// New returns an Evaluator wired to the given module importer.
func New(importer Importer) *Evaluator {
	return &Evaluator{Importer: importer, types: newTypeRegistry()}
}

// EvalProgram runs every top-level statement of prog in en under c,
// the module loader's entry point for executing a freshly parsed
// module (§4.6). An in-flight throw that escapes the top level is left
// on c for the caller (the loader) to report.
func (ev *Evaluator) EvalProgram(prog *ast.Program, en *env.Environment, c *ctx.Context, exports Exports) {
	c.Exports = exports
	for _, s := range prog.Stmts {
		ev.evalStmt(s, en, c)
		if c.IsUnwinding() {
			return
		}
	}
}

// releaseAll releases a slice of owned Values, e.g. evaluated call
// arguments once the callee has consumed or ignored each of them.
func releaseAll(vs []value.Value) {
	for _, v := range vs {
		value.Release(v)
	}
}

// truthy implements hemlock's boolean-coercion rule for if/while/&&/||
// conditions (§4.4): bool by value, null is false, every other kind is
// truthy (matching the teacher's permissive dynamic-language truth
// table rather than a strict bool-only gate).
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

func stringValue(s string) value.Value {
	return value.Heap(value.KindString, heap.NewString(s))
}
