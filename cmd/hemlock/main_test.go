package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExecutesScriptSuccessfully(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "ok.hml", `
		let x = 1 + 1;
		print(x);
	`)
	if code := run([]string{script}); code != 0 {
		t.Fatalf("run(%q) = %d, want 0", script, code)
	}
}

func TestRunReportsUncaughtExceptionAsExitOne(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "throws.hml", `throw "boom";`)
	if code := run([]string{script}); code != 1 {
		t.Fatalf("run(%q) = %d, want 1", script, code)
	}
}

func TestRunReportsParseErrorAsExitOne(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "bad.hml", `let x = ;`)
	if code := run([]string{script}); code != 1 {
		t.Fatalf("run(%q) = %d, want 1 for a syntax error", script, code)
	}
}

func TestRunMissingScriptFileExitsOne(t *testing.T) {
	if code := run([]string{filepath.Join(t.TempDir(), "nope.hml")}); code != 1 {
		t.Fatalf("run(missing file) = %d, want 1", code)
	}
}

func TestBundlePackageAndInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "prog.hml", `let x = 1 + 2;`)
	bundlePath := filepath.Join(dir, "prog.hmlc")

	if code := run([]string{"--bundle", script, "-o", bundlePath}); code != 0 {
		t.Fatalf("--bundle run = %d, want 0", code)
	}
	if _, err := os.Stat(bundlePath); err != nil {
		t.Fatalf("bundle file was not written: %v", err)
	}

	if code := run([]string{"--info", bundlePath}); code != 0 {
		t.Fatalf("--info run = %d, want 0", code)
	}
}

func TestLoadScriptAcceptsBundleFormatTransparently(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "prog.hml", `
		let x = 21;
		print(x * 2);
	`)
	bundlePath := filepath.Join(dir, "prog.hmlc")
	if code := run([]string{"--bundle", script, "-o", bundlePath}); code != 0 {
		t.Fatalf("--bundle run = %d, want 0", code)
	}

	// running the .hmlc file directly should transparently decode the
	// HMLC bundle rather than trying to parse it as hemlock source.
	if code := run([]string{bundlePath}); code != 0 {
		t.Fatalf("run(%q) = %d, want 0", bundlePath, code)
	}
}
