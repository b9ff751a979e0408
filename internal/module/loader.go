package module

import (
	"fmt"
	"os"

	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Load implements §4.6's `load(path, ctx)`: if already executed,
// return it; if currently parsing, report a cycle; otherwise read,
// parse, mark parsing, recursively load every imported dependency in
// source order, then mark parsed. Concurrent loads of the same path
// (two tasks racing to import it) collapse into one parse via
// singleflight, the goroutine-safe generalization of the teacher's
// single `rdir` map.
func (l *Loader) Load(path string, c *ctx.Context) (*Module, error) {
	// The cycle check must happen here, before singleflight.Do, not
	// inside it: a cyclic A->B->A import walks back into Load("A")
	// from the same goroutine that is still inside group.Do("A", ...),
	// and singleflight has no reentrancy protection of its own — a
	// second Do call for an in-flight key from the same call stack
	// would block forever waiting on itself.
	l.mu.Lock()
	if m, ok := l.modules[path]; ok && m.State >= Parsed {
		l.mu.Unlock()
		return m, nil
	}
	if l.parsing.Contains(path) {
		l.mu.Unlock()
		return nil, &LoadError{Path: path, Err: &CycleError{Path: path}}
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(path, func() (any, error) {
		return l.load(path, c)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Module), nil
}

func (l *Loader) load(path string, c *ctx.Context) (*Module, error) {
	l.mu.Lock()
	if m, ok := l.modules[path]; ok && m.State >= Parsed {
		l.mu.Unlock()
		return m, nil
	}
	l.parsing.Add(path)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.parsing.Remove(path)
		l.mu.Unlock()
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	prog, err := l.parser.Parse(src, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m := &Module{Path: path, AST: prog, State: Parsing}
	l.mu.Lock()
	l.modules[path] = m
	l.mu.Unlock()

	for _, dep := range importPaths(prog) {
		depPath, err := l.Resolve(dep)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		if _, err := l.Load(depPath, c); err != nil {
			return nil, err
		}
		m.Deps = append(m.Deps, depPath)
	}

	m.State = Parsed
	return m, nil
}

// Execute implements §4.6's `execute(module)`: ensure every dependency
// is executed first (depth-first order over Deps guarantees
// topological order), create the module's environment chained from
// the builtin registry root, run its top-level statements, and record
// the export table.
func (l *Loader) Execute(m *Module, c *ctx.Context) error {
	l.mu.Lock()
	if m.State == Executed {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	for _, dep := range m.Deps {
		l.mu.Lock()
		dm, ok := l.modules[dep]
		l.mu.Unlock()
		if !ok {
			return &LoadError{Path: m.Path, Err: &CycleError{Path: dep}}
		}
		if err := l.Execute(dm, ctx.New()); err != nil {
			return err
		}
	}

	m.Env = env.NewChild(l.rootEnv)
	exports := make(eval.Exports)
	l.ev.EvalProgram(m.AST, m.Env, c, exports)
	if c.IsUnwinding() && c.Flag == ctx.FlagThrow {
		return &LoadError{Path: m.Path, Err: fmt.Errorf("uncaught exception: %s", value.ToString(c.ExcVal))}
	}
	m.Exports = exports
	m.State = Executed
	return nil
}

// importPaths collects, in source order, every distinct import path a
// module's top-level ImportStmt nodes reference (§4.6 "parse-time
// dependency discovery").
func importPaths(prog *ast.Program) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, s := range prog.Stmts {
		is, ok := s.(*ast.ImportStmt)
		if !ok {
			continue
		}
		if !seen[is.Path] {
			seen[is.Path] = true
			paths = append(paths, is.Path)
		}
	}
	return paths
}
