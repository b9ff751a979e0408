package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nbeerbower/hemlock/internal/ast"
)

func sampleProgram() *ast.Program {
	return &ast.Program{
		Stmts: []ast.Stmt{
			&ast.LetStmt{
				Name:  "x",
				Value: &ast.Literal{Kind: ast.LitInt, Value: int64(42)},
			},
			&ast.ExprStmt{X: &ast.Ident{Name: "x"}},
		},
	}
}

func TestEncodeDecodeRoundTripUncompressed(t *testing.T) {
	prog := sampleProgram()
	b, err := Encode(prog, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(b[:4]) != magicBundle {
		t.Fatalf("missing bundle magic, got %q", b[:4])
	}
	if b[5] != 0 {
		t.Fatalf("compressed flag = %d, want 0", b[5])
	}

	back, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Stmts) != len(prog.Stmts) {
		t.Fatalf("round-tripped %d statements, want %d", len(back.Stmts), len(prog.Stmts))
	}
}

func TestEncodeDecodeRoundTripCompressed(t *testing.T) {
	prog := sampleProgram()
	b, err := Encode(prog, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if b[5] != 1 {
		t.Fatalf("compressed flag = %d, want 1", b[5])
	}

	back, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Stmts) != len(prog.Stmts) {
		t.Fatalf("round-tripped %d statements, want %d", len(back.Stmts), len(prog.Stmts))
	}
}

func TestDecodeMissingMagic(t *testing.T) {
	if _, err := Decode([]byte("not a bundle at all")); err == nil {
		t.Fatal("Decode should reject a buffer without the HMLC magic")
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	b, err := Encode(sampleProgram(), false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(b[:len(b)-1]); err == nil {
		t.Fatal("Decode should reject a truncated payload")
	}
}

func TestReadInfo(t *testing.T) {
	prog := sampleProgram()
	b, err := Encode(prog, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info, err := ReadInfo(b)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if info.Version != version {
		t.Errorf("Version = %d, want %d", info.Version, version)
	}
	if !info.Compressed {
		t.Error("Compressed should be true")
	}
	if info.StmtCount != len(prog.Stmts) {
		t.Errorf("StmtCount = %d, want %d", info.StmtCount, len(prog.Stmts))
	}
	if info.PayloadSize <= 0 {
		t.Errorf("PayloadSize = %d, want > 0", info.PayloadSize)
	}
}

func TestPackageAppendsTrailer(t *testing.T) {
	selfPath, err := os.Executable()
	if err != nil {
		t.Skipf("os.Executable unavailable: %v", err)
	}
	selfInfo, err := os.Stat(selfPath)
	if err != nil || !selfInfo.Mode().IsRegular() {
		t.Skip("running executable is not a readable regular file in this environment")
	}

	b, err := Encode(sampleProgram(), false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "packaged")
	if err := Package(b, outPath); err != nil {
		t.Fatalf("Package: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile(packaged): %v", err)
	}
	if string(out[len(out)-4:]) != magicPackage {
		t.Fatalf("packaged file trailer = %q, want %q", out[len(out)-4:], magicPackage)
	}

	selfBytes, err := os.ReadFile(selfPath)
	if err != nil {
		t.Fatalf("ReadFile(self): %v", err)
	}
	wantLen := len(selfBytes) + len(b) + 4 + len(magicPackage)
	if len(out) != wantLen {
		t.Fatalf("packaged file length = %d, want %d", len(out), wantLen)
	}
}

func TestEmbeddedNoTrailerOnOrdinaryBinary(t *testing.T) {
	// The running `go test` binary was never packaged, so Embedded
	// must report ok=false rather than misreading its tail bytes.
	_, ok, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	if ok {
		t.Fatal("Embedded should report ok=false for an unpackaged binary")
	}
}
