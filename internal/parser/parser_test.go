package parser

import (
	"testing"

	"github.com/nbeerbower/hemlock/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse([]byte(src), "<test>")
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return prog
}

func TestParseLetAndArithmetic(t *testing.T) {
	prog := mustParse(t, `let x = 1 + 2 * 3;`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Stmts))
	}
	let, ok := prog.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("want *ast.LetStmt, got %T", prog.Stmts[0])
	}
	if let.Name != "x" {
		t.Fatalf("name = %q, want x", let.Name)
	}
	bin, ok := let.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("value = %T, want *ast.Binary", let.Value)
	}
	// `+` must bind looser than `*`: 1 + (2 * 3).
	if bin.Op != ast.OpAdd {
		t.Fatalf("top operator = %v, want +", bin.Op)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("right operand = %T, want nested *ast.Binary (2 * 3)", bin.Right)
	}
}

func TestParseFuncDecl(t *testing.T) {
	prog := mustParse(t, `fn add(a, b) { return a + b; }`)
	let, ok := prog.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("func decl should desugar to *ast.LetStmt, got %T", prog.Stmts[0])
	}
	fn, ok := let.Value.(*ast.FuncLit)
	if !ok {
		t.Fatalf("let value = %T, want *ast.FuncLit", let.Value)
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v, want name add with 2 params", fn)
	}
}

func TestParseIfElseWhileFor(t *testing.T) {
	src := `
		if (x > 0) {
			print(x);
		} else {
			print(0);
		}
		while (x < 10) { x = x + 1; }
		for (let i = 0; i < 10; i = i + 1) { print(i); }
		for (v in arr) { print(v); }
		for (i, v in arr) { print(i); }
	`
	prog := mustParse(t, src)
	if len(prog.Stmts) != 5 {
		t.Fatalf("want 5 statements, got %d", len(prog.Stmts))
	}
	if _, ok := prog.Stmts[0].(*ast.IfStmt); !ok {
		t.Fatalf("stmt 0 = %T, want *ast.IfStmt", prog.Stmts[0])
	}
	if _, ok := prog.Stmts[1].(*ast.WhileStmt); !ok {
		t.Fatalf("stmt 1 = %T, want *ast.WhileStmt", prog.Stmts[1])
	}
	if _, ok := prog.Stmts[2].(*ast.ForStmt); !ok {
		t.Fatalf("stmt 2 = %T, want *ast.ForStmt", prog.Stmts[2])
	}
	forIn, ok := prog.Stmts[3].(*ast.ForInStmt)
	if !ok {
		t.Fatalf("stmt 3 = %T, want *ast.ForInStmt", prog.Stmts[3])
	}
	if forIn.ValueName != "v" || forIn.IndexName != "" {
		t.Fatalf("for-in = %+v, want ValueName=v IndexName=\"\"", forIn)
	}
	forIn2 := prog.Stmts[4].(*ast.ForInStmt)
	if forIn2.IndexName != "i" || forIn2.ValueName != "v" {
		t.Fatalf("indexed for-in = %+v, want IndexName=i ValueName=v", forIn2)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := mustParse(t, `try { risky(); } catch (e) { print(e); } finally { cleanup(); }`)
	tr, ok := prog.Stmts[0].(*ast.TryStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.TryStmt", prog.Stmts[0])
	}
	if !tr.HasCatch || !tr.HasFinally || tr.CatchParam != "e" {
		t.Fatalf("try = %+v, want HasCatch=true HasFinally=true CatchParam=e", tr)
	}
}

func TestParseSwitch(t *testing.T) {
	prog := mustParse(t, `
		switch (x) {
		case 1:
			print("one");
		case 2, 3:
			print("two or three");
		default:
			print("other");
		}
	`)
	sw, ok := prog.Stmts[0].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.SwitchStmt", prog.Stmts[0])
	}
	if len(sw.Cases) != 3 {
		t.Fatalf("want 3 cases, got %d", len(sw.Cases))
	}
	if len(sw.Cases[1].Values) != 2 {
		t.Fatalf("second case should have 2 values, got %d", len(sw.Cases[1].Values))
	}
	if sw.Cases[2].Values != nil {
		t.Fatalf("default case should have nil Values, got %v", sw.Cases[2].Values)
	}
}

func TestParseDefineObjectAndEnum(t *testing.T) {
	prog := mustParse(t, `
		define Point {
			x: int,
			y: int = 0,
		}
		enum Color { Red, Green, Blue = 10 }
	`)
	def, ok := prog.Stmts[0].(*ast.DefineObjectStmt)
	if !ok {
		t.Fatalf("stmt 0 = %T, want *ast.DefineObjectStmt", prog.Stmts[0])
	}
	if def.Name != "Point" || len(def.Fields) != 2 || def.Fields[1].Default == nil {
		t.Fatalf("define = %+v", def)
	}
	en, ok := prog.Stmts[1].(*ast.EnumStmt)
	if !ok {
		t.Fatalf("stmt 1 = %T, want *ast.EnumStmt", prog.Stmts[1])
	}
	if len(en.Variants) != 3 || en.Variants[2].Value == nil {
		t.Fatalf("enum = %+v", en)
	}
}

func TestParseObjectAndArrayLit(t *testing.T) {
	prog := mustParse(t, `let p = Point { x: 1, y: 2 }; let a = [1, 2, 3];`)
	let0 := prog.Stmts[0].(*ast.LetStmt)
	obj, ok := let0.Value.(*ast.ObjectLit)
	if !ok || obj.TypeName != "Point" || len(obj.Fields) != 2 {
		t.Fatalf("object literal = %+v", let0.Value)
	}
	let1 := prog.Stmts[1].(*ast.LetStmt)
	arr, ok := let1.Value.(*ast.ArrayLit)
	if !ok || len(arr.Elems) != 3 {
		t.Fatalf("array literal = %+v", let1.Value)
	}
}

func TestParseCallPropertyIndexChain(t *testing.T) {
	prog := mustParse(t, `a.b[0].c(1, 2)?.d?.[1]?.();`)
	es := prog.Stmts[0].(*ast.ExprStmt)
	if _, ok := es.X.(*ast.OptionalChain); !ok {
		t.Fatalf("top expr = %T, want *ast.OptionalChain", es.X)
	}
}

func TestParseAssignmentForms(t *testing.T) {
	prog := mustParse(t, `x = 1; x += 2; x++; ++x;`)
	if _, ok := prog.Stmts[0].(*ast.ExprStmt).X.(*ast.Assign); !ok {
		t.Fatalf("stmt 0 should be *ast.Assign")
	}
	if _, ok := prog.Stmts[1].(*ast.ExprStmt).X.(*ast.CompoundAssign); !ok {
		t.Fatalf("stmt 1 should be *ast.CompoundAssign")
	}
	inc, ok := prog.Stmts[2].(*ast.ExprStmt).X.(*ast.IncDec)
	if !ok || !inc.Postfix {
		t.Fatalf("stmt 2 should be postfix IncDec, got %+v", prog.Stmts[2])
	}
	inc2, ok := prog.Stmts[3].(*ast.ExprStmt).X.(*ast.IncDec)
	if !ok || inc2.Postfix {
		t.Fatalf("stmt 3 should be prefix IncDec, got %+v", prog.Stmts[3])
	}
}

func TestParseStringInterpolation(t *testing.T) {
	prog := mustParse(t, `let s = "hello ${name}!";`)
	let := prog.Stmts[0].(*ast.LetStmt)
	interp, ok := let.Value.(*ast.StringInterp)
	if !ok {
		t.Fatalf("value = %T, want *ast.StringInterp", let.Value)
	}
	if len(interp.Parts) != 3 {
		t.Fatalf("want 3 parts (literal, expr, literal), got %d", len(interp.Parts))
	}
	if interp.Parts[0].Literal != "hello " || interp.Parts[1].Expr == nil || interp.Parts[2].Literal != "!" {
		t.Fatalf("parts = %+v", interp.Parts)
	}
}

func TestParsePlainStringNoInterpolation(t *testing.T) {
	prog := mustParse(t, `let s = "plain text";`)
	let := prog.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString || lit.Value != "plain text" {
		t.Fatalf("value = %+v, want plain Literal", let.Value)
	}
}

func TestParseNumericWidthSuffix(t *testing.T) {
	prog := mustParse(t, `let a = 5u8; let b = 1.5f32;`)
	a := prog.Stmts[0].(*ast.LetStmt).Value.(*ast.Literal)
	if a.NumWidth != "u8" || a.Value.(int64) != 5 {
		t.Fatalf("a = %+v", a)
	}
	b := prog.Stmts[1].(*ast.LetStmt).Value.(*ast.Literal)
	if b.NumWidth != "f32" || b.Value.(float64) != 1.5 {
		t.Fatalf("b = %+v", b)
	}
}

func TestParseImportExportExternFn(t *testing.T) {
	prog := mustParse(t, `
		import { a, b as c } from "./mod";
		import * as ns from "./mod2";
		export { a } from "./mod";
		export foo;
		extern fn pow(f64, f64): f64 from "libm" "pow";
	`)
	imp0 := prog.Stmts[0].(*ast.ImportStmt)
	if imp0.Kind != ast.ImportNamed || len(imp0.Specs) != 2 || imp0.Specs[1].Alias != "c" {
		t.Fatalf("named import = %+v", imp0)
	}
	imp1 := prog.Stmts[1].(*ast.ImportStmt)
	if imp1.Kind != ast.ImportNamespace || imp1.NSAlias != "ns" {
		t.Fatalf("namespace import = %+v", imp1)
	}
	imp2 := prog.Stmts[2].(*ast.ImportStmt)
	if imp2.Kind != ast.ImportReExport {
		t.Fatalf("re-export = %+v", imp2)
	}
	exp := prog.Stmts[3].(*ast.ExportStmt)
	if exp.Name != "foo" {
		t.Fatalf("export = %+v", exp)
	}
	ext := prog.Stmts[4].(*ast.ExternFnStmt)
	if ext.Library != "libm" || ext.Symbol != "pow" || len(ext.Params) != 2 || ext.ReturnType != "f64" {
		t.Fatalf("extern fn = %+v", ext)
	}
}

func TestParseDeferThrowSwitchBreakContinue(t *testing.T) {
	prog := mustParse(t, `
		defer close(f);
		throw "boom";
		while (true) { break; continue; }
	`)
	if _, ok := prog.Stmts[0].(*ast.DeferStmt); !ok {
		t.Fatalf("stmt 0 = %T, want *ast.DeferStmt", prog.Stmts[0])
	}
	if _, ok := prog.Stmts[1].(*ast.ThrowStmt); !ok {
		t.Fatalf("stmt 1 = %T, want *ast.ThrowStmt", prog.Stmts[1])
	}
}

func TestParseAwaitAndAsyncFn(t *testing.T) {
	prog := mustParse(t, `
		async fn task() { return 1; }
		let r = await spawn(task);
	`)
	let := prog.Stmts[0].(*ast.LetStmt)
	fn := let.Value.(*ast.FuncLit)
	if !fn.IsAsync || fn.Name != "task" {
		t.Fatalf("async fn decl = %+v", fn)
	}
	let2 := prog.Stmts[1].(*ast.LetStmt)
	if _, ok := let2.Value.(*ast.Await); !ok {
		t.Fatalf("value = %T, want *ast.Await", let2.Value)
	}
}

func TestParseSyntaxErrorReportsLine(t *testing.T) {
	_, err := Parse([]byte("let x = ;\n"), "bad.hml")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("err = %T, want *SyntaxError", err)
	}
	if se.Path != "bad.hml" {
		t.Fatalf("path = %q, want bad.hml", se.Path)
	}
}

func TestParseUnterminatedBlockComment(t *testing.T) {
	_, err := Parse([]byte("let x = 1; /* oops"), "c.hml")
	if err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

func TestAdapterSatisfiesModuleParser(t *testing.T) {
	var _ interface {
		Parse(source []byte, path string) (*ast.Program, error)
	} = Adapter{}
}
