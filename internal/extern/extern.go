// Package extern defines the narrow collaborator interfaces spec.md
// §4.8 calls out as out-of-core-scope: FFI, file, socket, signal,
// exec, and the serializer. Each interface is small enough that
// an embedding host can swap in its own implementation; this package
// also ships the concrete default every one of hemlock's builtins (see
// internal/builtin) is wired against, the way the teacher wires
// pre-compiled stdlib packages into the interpreter with
// `i.Use(stdlib.Value)` rather than hard-coding them into interp.go
// itself.
package extern

import (
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// FFI invokes a native symbol given a library/symbol pair, a
// parameter-type list drawn from the primitive set, and a return
// type, marshalling Values in and the result out (§4.8). Callback
// registers a hemlock function Value as a native-callable entry point
// and returns an opaque integer token (the `callback` builtin hands it
// to scripts as a u64); FreeCallback releases it.
type FFI interface {
	Call(library, symbol string, paramTypes []string, returnType string, args []value.Value) (value.Value, error)
	Callback(fn value.Value, paramTypes []string, returnType string) (uint64, error)
	FreeCallback(token uint64) error
}

// FileSystem opens files and serves line-oriented reads (§4.8,
// `open`/`read_line`/`eprint`).
type FileSystem interface {
	Open(path, mode string) (*heap.File, error)
	ReadLine(f *heap.File) (line string, ok bool, err error)
	Eprint(s string) error
}

// SocketDialer establishes or accepts connections (§4.8 `socket`
// surface implied by the `socket` Kind). Address schemes are
// implementation-defined; the default below understands `tcp://`,
// `unix://`, and `ws://`.
type SocketDialer interface {
	Dial(address string) (*heap.Socket, error)
	Listen(address string) (*heap.Socket, error)
	Accept(l *heap.Socket) (*heap.Socket, error)
}

// Signal delivers or raises process signals (§4.8 `signal`/`raise`).
type Signal interface {
	Raise(num int) error
	Notify(num int, fn value.Value) error
}

// Exec runs an external command to completion and collects its
// output (§4.8 `exec`).
type Exec interface {
	Run(name string, args []string) (stdout, stderr string, exitCode int, err error)
}

// Serializer renders a Value to a textual form and back (§4.8
// `serialize`/`deserialize`). Implementations must detect reference
// cycles rather than recursing forever, since hemlock has no GC to
// fall back on (§9 Non-goals: "cycles may leak; serializer still
// detects them").
type Serializer interface {
	Serialize(v value.Value) (string, error)
	Deserialize(s string) (value.Value, error)
}
