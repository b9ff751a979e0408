package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// evalImport resolves n.Path through ev.Importer and binds the
// requested names into en, per the three import forms of §4.6. Every
// binding import introduces is immutable regardless of the exporting
// module's own const/let declaration (env.DefineImported).
func (ev *Evaluator) evalImport(n *ast.ImportStmt, en *env.Environment, c *ctx.Context) {
	if ev.Importer == nil {
		raise(c, StateError("no module importer configured"))
		return
	}
	exports, err := ev.Importer.Import(n.Path)
	if err != nil {
		raise(c, NameError("cannot import %q: %s", n.Path, err.Error()))
		return
	}

	switch n.Kind {
	case ast.ImportNamed:
		for _, spec := range n.Specs {
			v, ok := exports[spec.Name]
			if !ok {
				raise(c, NameError("module %q has no export %q", n.Path, spec.Name))
				return
			}
			local := spec.Alias
			if local == "" {
				local = spec.Name
			}
			en.DefineImported(local, v)
		}
	case ast.ImportNamespace:
		names := make([]string, 0, len(exports))
		vals := make([]value.Value, 0, len(exports))
		for name, v := range exports {
			names = append(names, name)
			vals = append(vals, v)
		}
		ns := heap.NewObject(n.Path, names, vals)
		en.DefineImported(n.NSAlias, value.Heap(value.KindObject, ns))
	case ast.ImportReExport:
		for _, spec := range n.Specs {
			v, ok := exports[spec.Name]
			if !ok {
				raise(c, NameError("module %q has no export %q", n.Path, spec.Name))
				return
			}
			local := spec.Alias
			if local == "" {
				local = spec.Name
			}
			en.DefineImported(local, v)
			if c.Exports != nil {
				c.Exports[local] = v
			}
		}
	}
}
