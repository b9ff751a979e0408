package module

import "strings"

// stdlibResolver maps an import path prefix onto a bundled
// standard-library root directory (§4.6: "a path prefix may map to a
// bundled standard-library root"), the way internal/config's
// IncludePaths are populated from ~/.hemlockrc.toml.
type stdlibResolver struct {
	root string
}

func newStdlibResolver(root string) *stdlibResolver {
	return &stdlibResolver{root: root}
}

// resolve rewrites a "std:" prefixed import path to its file under
// root. A bare path (no prefix) is left to the caller's normal
// relative-path resolution.
func (s *stdlibResolver) resolve(path string) (string, bool) {
	if s.root == "" {
		return "", false
	}
	const prefix = "std:"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	if !strings.HasSuffix(rest, ".hml") {
		rest += ".hml"
	}
	return s.root + "/" + rest, true
}
