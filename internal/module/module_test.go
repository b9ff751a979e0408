package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/parser"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newLoader(t *testing.T, baseDir string) (*Loader, *env.Environment) {
	t.Helper()
	ev := eval.New(nil)
	root := env.New()
	l := New(ev, parser.Adapter{}, root, baseDir, "")
	return l, root
}

func TestResolveAddsExtensionAndJoinsBaseDir(t *testing.T) {
	l, _ := newLoader(t, "/base")
	got, err := l.Resolve("foo/bar")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Clean("/base/foo/bar.hml"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveKeepsExplicitExtension(t *testing.T) {
	l, _ := newLoader(t, "/base")
	got, err := l.Resolve("foo/bar.hml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Clean("/base/foo/bar.hml"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveStdlibPrefix(t *testing.T) {
	ev := eval.New(nil)
	root := env.New()
	l := New(ev, parser.Adapter{}, root, "/base", "/stdlib")
	got, err := l.Resolve("std:collections")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := "/stdlib/collections.hml"; got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestLoadParsesAndMarksParsed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.hml", "let x = 1;")
	l, _ := newLoader(t, dir)

	m, err := l.Load(path, ctx.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.State != Parsed {
		t.Fatalf("State = %v, want Parsed", m.State)
	}
	if len(m.AST.Stmts) != 1 {
		t.Fatalf("AST has %d statements, want 1", len(m.AST.Stmts))
	}
}

func TestLoadCachesSecondCall(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.hml", "let x = 1;")
	l, _ := newLoader(t, dir)

	m1, err := l.Load(path, ctx.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m2, err := l.Load(path, ctx.New())
	if err != nil {
		t.Fatalf("Load (again): %v", err)
	}
	if m1 != m2 {
		t.Fatal("a second Load of the same path should return the cached Module")
	}
}

func TestLoadMissingFile(t *testing.T) {
	l, _ := newLoader(t, t.TempDir())
	if _, err := l.Load(filepath.Join(t.TempDir(), "nope.hml"), ctx.New()); err == nil {
		t.Fatal("loading a missing file should fail")
	}
}

func TestImportNamedBindsExportedValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.hml", `let value = 42; export value;`)
	mainPath := writeFile(t, dir, "main.hml", `import { value } from "./lib"; let doubled = value * 2;`)

	ev := eval.New(nil)
	root := env.New()
	New(ev, parser.Adapter{}, root, dir, "")

	prog, err := parser.Parse(mustReadFile(t, mainPath), mainPath)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	moduleEnv := env.NewChild(root)
	c := ctx.New()
	exports := make(eval.Exports)
	ev.EvalProgram(prog, moduleEnv, c, exports)
	if c.Flag == ctx.FlagThrow {
		t.Fatalf("unexpected throw: evaluating main.hml")
	}

	v, err := moduleEnv.Lookup("doubled")
	if err != nil {
		t.Fatalf("Lookup(doubled): %v", err)
	}
	if v.AsInt64() != 84 {
		t.Fatalf("doubled = %v, want 84", v.AsInt64())
	}
}

func TestImportCycleDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hml", `import { x } from "./b";`)
	bPath := writeFile(t, dir, "b.hml", `import { x } from "./a";`)

	l, _ := newLoader(t, dir)
	_, err := l.Load(bPath, ctx.New())
	if err == nil {
		t.Fatal("a circular import chain should fail to load")
	}
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
