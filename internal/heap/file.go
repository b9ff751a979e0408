package heap

import (
	"fmt"
	"os"
	"sync"
)

// File wraps an OS file handle with an explicit, idempotent-close flag
// (§3.1, §8 invariant 9). Unlike the refcounted heap variants, File is
// not reference-counted: a Value of KindFile holds a direct pointer,
// matching the spec's distinction between heap-carrying variants and
// file/socket handle wrappers.
type File struct {
	mu     sync.Mutex
	handle *os.File
	Path   string
	Mode   string
	closed bool
}

// NewFile wraps an already-opened *os.File.
func NewFile(f *os.File, path, mode string) *File {
	return &File{handle: f, Path: path, Mode: mode}
}

// Handle returns the underlying *os.File, or nil if Close has run.
func (f *File) Handle() *os.File {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	return f.handle
}

// Closed reports whether Close has already run.
func (f *File) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close idempotently closes the handle (§8 invariant 9): only the
// first call has any effect or returns a non-nil error.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.handle.Close()
}

func (f *File) String() string {
	return fmt.Sprintf("<file %s mode=%s closed=%t>", f.Path, f.Mode, f.Closed())
}
