// Package module implements the loader of §4.6 (teacher: Interpreter's
// rdir cycle-detection map, srcPkg/scopes caches, and importSrc):
// canonical path resolution, parse-time dependency discovery, cycle
// detection, topological execution, and the three import binding
// forms, exposed to internal/eval as an eval.Importer.
//
// Lexing/parsing source text into an *ast.Program is a declared
// Non-goal of the runtime spec, so the loader depends only on a
// Parser collaborator — the same narrow-interface stand-in pattern
// internal/extern uses for FFI/file/socket/signal/exec.
package module

import (
	"fmt"
	"path/filepath"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"golang.org/x/sync/singleflight"

	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
)

// Parser turns hemlock source text into a parsed program. cmd/hemlock
// wires in the real lexer/parser; it is out of this runtime's scope.
type Parser interface {
	Parse(source []byte, path string) (*ast.Program, error)
}

// State is a Module's position in the load/execute lifecycle (§4.6).
type State uint8

const (
	Unparsed State = iota
	Parsing
	Parsed
	Executed
)

func (s State) String() string {
	switch s {
	case Unparsed:
		return "unparsed"
	case Parsing:
		return "parsing"
	case Parsed:
		return "parsed"
	case Executed:
		return "executed"
	default:
		return "unknown"
	}
}

// Module is one cached entry of the loader's process-wide module
// table (§4.6): `{ ast, export-table, execution-state, fresh-env }`.
type Module struct {
	Path    string
	AST     *ast.Program
	Exports eval.Exports
	State   State
	Env     *env.Environment
	Deps    []string // import paths, in source order, collected while parsing
}

// Loader is the process-wide module cache and dependency graph
// (teacher: `rdir map[string]bool` + `srcPkg imports`). One Loader is
// shared by every task's Evaluator, since §8 invariant 7 requires two
// imports of the same canonical path to observe the same module
// state.
type Loader struct {
	ev       *eval.Evaluator
	parser   Parser
	rootEnv  *env.Environment
	stdlib   *stdlibResolver
	baseDir  string

	mu       sync.Mutex
	modules  map[string]*Module
	parsing  mapset.Set // of canonical path, cycle detection (teacher: rdir)
	group    singleflight.Group
}

// New returns a Loader rooted at baseDir (the entry script's
// directory, used to resolve relative import paths) whose modules run
// against root as their global parent environment.
func New(ev *eval.Evaluator, parser Parser, root *env.Environment, baseDir string, stdlibRoot string) *Loader {
	l := &Loader{
		ev:      ev,
		parser:  parser,
		rootEnv: root,
		baseDir: baseDir,
		stdlib:  newStdlibResolver(stdlibRoot),
		modules: make(map[string]*Module),
		parsing: mapset.NewSet(),
	}
	ev.Importer = l
	return l
}

// Resolve canonicalizes an import path (§4.6: "canonical absolute
// path ... an implicit .hml-style extension is added if missing; a
// path prefix may map to a bundled standard-library root").
func (l *Loader) Resolve(path string) (string, error) {
	if mapped, ok := l.stdlib.resolve(path); ok {
		return mapped, nil
	}
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.baseDir, p)
	}
	if filepath.Ext(p) == "" {
		p += ".hml"
	}
	return filepath.Clean(p), nil
}

// Import implements eval.Importer: resolve, load (parsing every
// transitive dependency depth-first), execute the whole chain in
// topological order, and hand back the requested module's export
// table.
func (l *Loader) Import(path string) (eval.Exports, error) {
	canon, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	c := ctx.New()
	m, err := l.Load(canon, c)
	if err != nil {
		return nil, err
	}
	if err := l.Execute(m, c); err != nil {
		return nil, err
	}
	return m.Exports, nil
}

// LoadError wraps every path/parse/cycle failure of the loader so
// callers (cmd/hemlock, the REPL) can tell a load failure from a
// runtime exception that escaped to the top via errors.As.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("module %q: %s", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// CycleError reports an import cycle (§4.6/§3.5, §8 testable property 9).
type CycleError struct{ Path string }

func (e *CycleError) Error() string { return fmt.Sprintf("circular import of %q", e.Path) }

