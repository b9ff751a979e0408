package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("cfg = %+v, want the zero-value Default()", cfg)
	}
}

func TestLoadParsesPresentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".hemlockrc.toml")
	contents := `
stdlib_root = "/opt/hemlock/stdlib"
include_paths = ["/a", "/b"]
verbose = true
compress = false
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StdlibRoot != "/opt/hemlock/stdlib" {
		t.Errorf("StdlibRoot = %q", cfg.StdlibRoot)
	}
	if len(cfg.IncludePaths) != 2 || cfg.IncludePaths[0] != "/a" || cfg.IncludePaths[1] != "/b" {
		t.Errorf("IncludePaths = %v", cfg.IncludePaths)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be true")
	}
	if cfg.Compress {
		t.Error("Compress should be false")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".hemlockrc.toml")
	if err := os.WriteFile(path, []byte("not = [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed TOML")
	}
}

func TestUserPathIncludesHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	want := filepath.Join(home, ".hemlockrc.toml")
	if got := UserPath(); got != want {
		t.Fatalf("UserPath() = %q, want %q", got, want)
	}
}
