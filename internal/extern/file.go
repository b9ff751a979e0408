package extern

import (
	"bufio"
	"fmt"
	"os"

	"github.com/nbeerbower/hemlock/internal/heap"
)

// OSFileSystem is the default FileSystem, backed directly by the OS.
// ReadLine keeps one *bufio.Reader per handle so repeated calls
// continue from where the last one left off.
type OSFileSystem struct {
	readers map[*heap.File]*bufio.Reader
}

// NewOSFileSystem returns a ready-to-use OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{readers: make(map[*heap.File]*bufio.Reader)}
}

func (fs *OSFileSystem) Open(path, mode string) (*heap.File, error) {
	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case "r+", "rw":
		flag = os.O_RDWR
	default:
		return nil, fmt.Errorf("open: unknown mode %q", mode)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return heap.NewFile(f, path, mode), nil
}

func (fs *OSFileSystem) ReadLine(f *heap.File) (string, bool, error) {
	h := f.Handle()
	if h == nil {
		return "", false, fmt.Errorf("read_line: file %s is closed", f.Path)
	}
	r, ok := fs.readers[f]
	if !ok {
		r = bufio.NewReader(h)
		fs.readers[f] = r
	}
	line, err := r.ReadString('\n')
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if err != nil {
		delete(fs.readers, f)
		if len(line) == 0 {
			return "", false, nil
		}
	}
	return line, true, nil
}

func (fs *OSFileSystem) Eprint(s string) error {
	_, err := fmt.Fprint(os.Stderr, s)
	return err
}
