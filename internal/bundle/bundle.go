// Package bundle implements the `--bundle`/`--package`/--info` bundle
// format (§6): a parsed program serialized once so it can be shipped
// and re-run without a second parse, or appended to the interpreter's
// own binary as a self-contained executable.
//
// Wire shape: `HMLC` magic + a version byte + a compression flag byte
// + a uint32 payload length + the payload (gob-encoded *ast.Program,
// optionally gzip-compressed). A packaged executable is the running
// `hemlock` binary's own bytes, followed by the whole HMLC bundle, a
// uint32 length word, and an `HMLP` trailer magic a loader can detect by
// reading the last 8 bytes of its own executable.
package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/nbeerbower/hemlock/internal/ast"
)

const (
	magicBundle  = "HMLC"
	magicPackage = "HMLP"
	version      = byte(1)
)

// Info describes a bundle's header and statement count, the fields
// `--info` renders via tablewriter.
type Info struct {
	Version     byte
	Compressed  bool
	StmtCount   int
	PayloadSize int
}

// gob needs every concrete node type registered up front since
// Program.Stmts/every expression field is stored through the Stmt/Expr
// interfaces (§4.3's AST contract).
func init() {
	for _, n := range []ast.Expr{
		&ast.Literal{}, &ast.Ident{}, &ast.Binary{}, &ast.Unary{},
		&ast.Ternary{}, &ast.NullCoalesce{}, &ast.OptionalChain{},
		&ast.Assign{}, &ast.CompoundAssign{}, &ast.IncDec{}, &ast.Call{},
		&ast.Property{}, &ast.Index{}, &ast.ObjectLit{}, &ast.ArrayLit{},
		&ast.FuncLit{}, &ast.StringInterp{}, &ast.Await{},
	} {
		gob.Register(n)
	}
	for _, n := range []ast.Stmt{
		&ast.Block{}, &ast.LetStmt{}, &ast.ExprStmt{}, &ast.IfStmt{},
		&ast.WhileStmt{}, &ast.ForStmt{}, &ast.ForInStmt{},
		&ast.BreakStmt{}, &ast.ContinueStmt{}, &ast.ReturnStmt{},
		&ast.DefineObjectStmt{}, &ast.EnumStmt{}, &ast.TryStmt{},
		&ast.ThrowStmt{}, &ast.SwitchStmt{}, &ast.DeferStmt{},
		&ast.ImportStmt{}, &ast.ExternFnStmt{}, &ast.ExportStmt{},
	} {
		gob.Register(n)
	}
	// ast.Literal.Value holds a plain Go scalar behind an `any`; gob
	// needs each concrete dynamic type registered the same way.
	for _, v := range []any{"", int64(0), float64(0), false, rune(0), uint64(0)} {
		gob.Register(v)
	}
}

// Encode serializes prog into the HMLC wire format, gzip-compressing
// the payload when compress is true (`--compress`, the default;
// `--no-compress` disables it for faster, larger bundles).
func Encode(prog *ast.Program, compress bool) ([]byte, error) {
	var payload bytes.Buffer
	enc := gob.NewEncoder(&payload)
	if err := enc.Encode(prog); err != nil {
		return nil, fmt.Errorf("bundle: encode: %w", err)
	}

	body := payload.Bytes()
	if compress {
		var gz bytes.Buffer
		w := gzip.NewWriter(&gz)
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("bundle: compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("bundle: compress: %w", err)
		}
		body = gz.Bytes()
	}

	var out bytes.Buffer
	out.WriteString(magicBundle)
	out.WriteByte(version)
	if compress {
		out.WriteByte(1)
	} else {
		out.WriteByte(0)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	out.Write(lenBuf[:])
	out.Write(body)
	return out.Bytes(), nil
}

// Decode parses an HMLC-format byte slice back into a Program.
func Decode(b []byte) (*ast.Program, error) {
	if len(b) < 10 || string(b[:4]) != magicBundle {
		return nil, fmt.Errorf("bundle: missing %q magic", magicBundle)
	}
	compressed := b[5] == 1
	n := binary.BigEndian.Uint32(b[6:10])
	if len(b) < 10+int(n) {
		return nil, fmt.Errorf("bundle: truncated payload")
	}
	body := b[10 : 10+int(n)]

	if compressed {
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("bundle: decompress: %w", err)
		}
		defer r.Close()
		decompressed, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("bundle: decompress: %w", err)
		}
		body = decompressed
	}

	var prog ast.Program
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&prog); err != nil {
		return nil, fmt.Errorf("bundle: decode: %w", err)
	}
	return &prog, nil
}

// ReadInfo reads an HMLC bundle's header (`--info`, §6). It decodes the
// full AST payload to count the top-level statements.
func ReadInfo(b []byte) (*Info, error) {
	prog, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return &Info{
		Version:     b[4],
		Compressed:  b[5] == 1,
		StmtCount:   len(prog.Stmts),
		PayloadSize: int(binary.BigEndian.Uint32(b[6:10])),
	}, nil
}

// Package appends bundle to the currently running executable's own
// bytes, followed by a uint32 length word and the HMLP trailer magic
// (`--package`, §7 "mirror image of the startup trailer-probe"), and
// writes the result to outPath.
func Package(bundleBytes []byte, outPath string) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("bundle: locate running executable: %w", err)
	}
	selfBytes, err := os.ReadFile(self)
	if err != nil {
		return fmt.Errorf("bundle: read running executable: %w", err)
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(selfBytes); err != nil {
		return err
	}
	if _, err := out.Write(bundleBytes); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(bundleBytes)))
	if _, err := out.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := out.WriteString(magicPackage); err != nil {
		return err
	}
	return nil
}

// Embedded mmaps the currently running executable and, if it carries
// an HMLP trailer, returns the embedded bundle's bytes (a packaged
// executable's own startup path, §6). ok is false for an ordinary,
// unpackaged hemlock binary.
func Embedded() (b []byte, ok bool, err error) {
	self, err := os.Executable()
	if err != nil {
		return nil, false, err
	}
	f, err := os.Open(self)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false, err
	}
	defer m.Unmap()

	if len(m) < 8 || string(m[len(m)-4:]) != magicPackage {
		return nil, false, nil
	}
	n := binary.BigEndian.Uint32(m[len(m)-8 : len(m)-4])
	if uint32(len(m)) < 8+n {
		return nil, false, fmt.Errorf("bundle: truncated HMLP trailer")
	}
	bundleStart := len(m) - 8 - int(n)
	out := make([]byte, n)
	copy(out, m[bundleStart:bundleStart+int(n)])
	return out, true, nil
}
