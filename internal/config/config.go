// Package config loads the optional ~/.hemlockrc.toml (§5 Ambient
// Stack: "stdlib root override, include paths, default verbosity"),
// using naoina/toml the way ProbeChain-go-probe uses it for its own
// node configuration file — the teacher (a REPL-only tool) has no
// config file of its own to ground this on.
package config

import (
	"os"
	"path/filepath"

	"github.com/naoina/toml"
)

// Config is the shape of ~/.hemlockrc.toml.
type Config struct {
	StdlibRoot   string   `toml:"stdlib_root"`
	IncludePaths []string `toml:"include_paths"`
	Verbose      bool     `toml:"verbose"`
	Compress     bool     `toml:"compress"`
}

// Default returns the zero-value configuration a CLI flag can
// override field by field.
func Default() *Config {
	return &Config{}
}

// Load reads path if it exists, leaving Default() untouched otherwise
// — a missing rc file is not an error (§6: the CLI runs fine with no
// config present).
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserPath returns the conventional ~/.hemlockrc.toml location.
func UserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hemlockrc.toml"
	}
	return filepath.Join(home, ".hemlockrc.toml")
}
