package eval

import (
	"sync"

	"github.com/nbeerbower/hemlock/internal/ast"
)

// typeRegistry holds `define` object-type declarations (§4.3; an
// `enum` is bound as an ordinary object in its declaring scope instead,
// see evalEnum), process-wide
// for the Evaluator's lifetime: a type name, once declared, is visible
// to every module and task that shares this Evaluator, matching the
// module cache's own process-wide singleton semantics (§4.6).
type typeRegistry struct {
	mu      sync.RWMutex
	objects map[string]*ast.DefineObjectStmt
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{objects: make(map[string]*ast.DefineObjectStmt)}
}

func (r *typeRegistry) define(d *ast.DefineObjectStmt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[d.Name] = d
}

func (r *typeRegistry) lookup(name string) (*ast.DefineObjectStmt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.objects[name]
	return d, ok
}
