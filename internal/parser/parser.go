package parser

import (
	"fmt"
	"strconv"

	"github.com/nbeerbower/hemlock/internal/ast"
)

// Parse turns src into a Program, implementing internal/module.Parser.
// Internally the parser panics with *SyntaxError on a malformed
// program and recovers here, the same fail-fast-then-recover shape
// go/parser's own recursive descent uses internally instead of
// threading an error return through every production.
func Parse(src []byte, path string) (prog *ast.Program, err error) {
	p := &parser{path: path}
	if lerr := p.tokenize(string(src)); lerr != nil {
		if se, ok := lerr.(*SyntaxError); ok {
			se.Path = path
			return nil, se
		}
		return nil, lerr
	}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			se.Path = path
			err = se
		}
	}()
	return p.parseProgram(), nil
}

// Adapter satisfies internal/module.Parser by delegating to Parse, so
// a Loader can be constructed with parser.Adapter{} as its front end.
type Adapter struct{}

func (Adapter) Parse(source []byte, path string) (*ast.Program, error) {
	return Parse(source, path)
}

type parser struct {
	path string
	toks []token
	pos  int
}

func (p *parser) tokenize(src string) error {
	l := newLexer(src)
	for {
		t, err := l.next()
		if err != nil {
			return err
		}
		p.toks = append(p.toks, t)
		if t.kind == tEOF {
			return nil
		}
	}
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(off int) token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) fail(format string, args ...any) {
	panic(&SyntaxError{Line: p.cur().line, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) atPunct(s string) bool   { c := p.cur(); return c.kind == tPunct && c.lit == s }
func (p *parser) atKeyword(s string) bool { c := p.cur(); return c.kind == tKeyword && c.lit == s }
func (p *parser) atEOF() bool             { return p.cur().kind == tEOF }

func (p *parser) expectPunct(s string) token {
	if !p.atPunct(s) {
		p.fail("expected %q, got %q", s, p.cur().lit)
	}
	return p.advance()
}

func (p *parser) expectKeyword(s string) token {
	if !p.atKeyword(s) {
		p.fail("expected keyword %q, got %q", s, p.cur().lit)
	}
	return p.advance()
}

func (p *parser) expectIdent() string {
	if p.cur().kind != tIdent {
		p.fail("expected identifier, got %q", p.cur().lit)
	}
	return p.advance().lit
}

// skipSemi consumes an optional trailing `;` (the grammar's
// statement terminator; tolerated as optional the way a forgiving
// scripting-language front end typically treats ASI).
func (p *parser) skipSemi() {
	if p.atPunct(";") {
		p.advance()
	}
}

// ---- top level ----

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		prog.Stmts = append(prog.Stmts, p.parseStmt())
	}
	return prog
}

func (p *parser) parseStmt() ast.Stmt {
	line := p.cur().line
	switch {
	case p.atKeyword("let") || p.atKeyword("const"):
		s := p.parseLetStmt()
		p.skipSemi()
		return s
	case p.isFuncDecl():
		fn := p.parseFuncLit(true)
		return ast.NewFuncStmt(line, fn)
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("break"):
		p.advance()
		p.skipSemi()
		return &ast.BreakStmt{Base: ast.Base{LineNo: line}}
	case p.atKeyword("continue"):
		p.advance()
		p.skipSemi()
		return &ast.ContinueStmt{Base: ast.Base{LineNo: line}}
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atPunct("{"):
		return p.parseBlock()
	case p.atKeyword("define"):
		return p.parseDefineObject()
	case p.atKeyword("enum"):
		return p.parseEnum()
	case p.atKeyword("try"):
		return p.parseTry()
	case p.atKeyword("throw"):
		return p.parseThrow()
	case p.atKeyword("switch"):
		return p.parseSwitch()
	case p.atKeyword("defer"):
		return p.parseDefer()
	case p.atKeyword("import"):
		return p.parseImport()
	case p.atKeyword("export"):
		return p.parseExport()
	case p.atKeyword("extern"):
		return p.parseExternFn()
	default:
		x := p.parseExpr()
		p.skipSemi()
		return &ast.ExprStmt{Base: ast.Base{LineNo: line}, X: x}
	}
}

func (p *parser) parseLetStmt() *ast.LetStmt {
	line := p.cur().line
	isConst := p.atKeyword("const")
	p.advance() // let/const
	name := p.expectIdent()
	typ := ""
	if p.atPunct(":") {
		p.advance()
		typ = p.parseTypeName()
	}
	var value ast.Expr
	if p.atPunct("=") {
		p.advance()
		value = p.parseExpr()
	}
	return &ast.LetStmt{Base: ast.Base{LineNo: line}, Name: name, Type: typ, Value: value, IsConst: isConst}
}

// parseTypeName reads a simple or generic-looking type annotation
// (`int`, `array<string>`) as an opaque string; the evaluator only
// consults LetStmt.Type for annotation-driven conversion (§4.4), not
// for static checking, so a shallow textual read is sufficient.
func (p *parser) parseTypeName() string {
	name := p.expectIdent()
	if p.atPunct("<") {
		p.advance()
		name += "<" + p.expectIdent() + ">"
		p.expectPunct(">")
	}
	return name
}

func (p *parser) parseBlock() *ast.Block {
	line := p.expectPunct("{").line
	b := &ast.Block{Base: ast.Base{LineNo: line}}
	for !p.atPunct("}") {
		if p.atEOF() {
			p.fail("unterminated block")
		}
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.advance()
	return b
}

func (p *parser) parseIf() ast.Stmt {
	line := p.advance().line
	p.expectPunct("(")
	cond := p.parseExpr()
	p.expectPunct(")")
	then := p.parseStmt()
	var els ast.Stmt
	if p.atKeyword("else") {
		p.advance()
		els = p.parseStmt()
	}
	return &ast.IfStmt{Base: ast.Base{LineNo: line}, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() ast.Stmt {
	line := p.advance().line
	p.expectPunct("(")
	cond := p.parseExpr()
	p.expectPunct(")")
	body := p.parseStmt()
	return &ast.WhileStmt{Base: ast.Base{LineNo: line}, Cond: cond, Body: body}
}

// parseFor distinguishes `for (v in iter)` / `for (i, v in iter)` from
// the classic `for (init; cond; post)` by lookahead over the header.
func (p *parser) parseFor() ast.Stmt {
	line := p.advance().line
	p.expectPunct("(")

	if p.isForIn() {
		indexName := ""
		valueName := p.expectIdent()
		if p.atPunct(",") {
			p.advance()
			indexName = valueName
			valueName = p.expectIdent()
		}
		p.expectKeyword("in")
		iterable := p.parseExpr()
		p.expectPunct(")")
		body := p.parseStmt()
		return &ast.ForInStmt{Base: ast.Base{LineNo: line}, ValueName: valueName, IndexName: indexName, Iterable: iterable, Body: body}
	}

	var init ast.Stmt
	if !p.atPunct(";") {
		if p.atKeyword("let") || p.atKeyword("const") {
			init = p.parseLetStmt()
		} else {
			init = &ast.ExprStmt{Base: ast.Base{LineNo: p.cur().line}, X: p.parseExpr()}
		}
	}
	p.expectPunct(";")
	var cond ast.Expr
	if !p.atPunct(";") {
		cond = p.parseExpr()
	}
	p.expectPunct(";")
	var post ast.Stmt
	if !p.atPunct(")") {
		post = &ast.ExprStmt{Base: ast.Base{LineNo: p.cur().line}, X: p.parseExpr()}
	}
	p.expectPunct(")")
	body := p.parseStmt()
	return &ast.ForStmt{Base: ast.Base{LineNo: line}, Init: init, Cond: cond, Post: post, Body: body}
}

// isFuncDecl recognizes a named function declaration header (`fn name(`
// or `async fn name(`) so parseStmt can desugar it via NewFuncStmt;
// an unnamed `fn`/`async fn` falls through to expression-statement
// parsing, where parsePrimary handles it as an anonymous FuncLit.
func (p *parser) isFuncDecl() bool {
	if p.atKeyword("fn") && p.at(1).kind == tIdent {
		return true
	}
	if p.atKeyword("async") && p.at(1).kind == tKeyword && p.at(1).lit == "fn" && p.at(2).kind == tIdent {
		return true
	}
	return false
}

func (p *parser) isForIn() bool {
	if p.cur().kind != tIdent {
		return false
	}
	if p.at(1).kind == tKeyword && p.at(1).lit == "in" {
		return true
	}
	if p.at(1).kind == tPunct && p.at(1).lit == "," && p.at(2).kind == tIdent &&
		p.at(3).kind == tKeyword && p.at(3).lit == "in" {
		return true
	}
	return false
}

func (p *parser) parseReturn() ast.Stmt {
	line := p.advance().line
	var v ast.Expr
	if !p.atPunct(";") && !p.atPunct("}") && !p.atEOF() {
		v = p.parseExpr()
	}
	p.skipSemi()
	return &ast.ReturnStmt{Base: ast.Base{LineNo: line}, Value: v}
}

func (p *parser) parseDefineObject() ast.Stmt {
	line := p.advance().line
	name := p.expectIdent()
	p.expectPunct("{")
	var fields []ast.ObjectFieldDecl
	for !p.atPunct("}") {
		fname := p.expectIdent()
		optional := false
		if p.atPunct("?") {
			p.advance()
			optional = true
		}
		p.expectPunct(":")
		ftype := p.parseTypeName()
		var def ast.Expr
		if p.atPunct("=") {
			p.advance()
			def = p.parseExpr()
		}
		fields = append(fields, ast.ObjectFieldDecl{Name: fname, Type: ftype, Default: def, Optional: optional})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return &ast.DefineObjectStmt{Base: ast.Base{LineNo: line}, Name: name, Fields: fields}
}

func (p *parser) parseEnum() ast.Stmt {
	line := p.advance().line
	name := p.expectIdent()
	p.expectPunct("{")
	var variants []ast.EnumVariant
	for !p.atPunct("}") {
		vname := p.expectIdent()
		var val ast.Expr
		if p.atPunct("=") {
			p.advance()
			val = p.parseExpr()
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Value: val})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return &ast.EnumStmt{Base: ast.Base{LineNo: line}, Name: name, Variants: variants}
}

func (p *parser) parseTry() ast.Stmt {
	line := p.advance().line
	tryBlock := p.parseBlock()
	t := &ast.TryStmt{Base: ast.Base{LineNo: line}, Try: tryBlock}
	if p.atKeyword("catch") {
		p.advance()
		t.HasCatch = true
		if p.atPunct("(") {
			p.advance()
			t.CatchParam = p.expectIdent()
			p.expectPunct(")")
		}
		t.Catch = p.parseBlock()
	}
	if p.atKeyword("finally") {
		p.advance()
		t.HasFinally = true
		t.Finally = p.parseBlock()
	}
	if !t.HasCatch && !t.HasFinally {
		p.fail("try requires a catch, a finally, or both")
	}
	return t
}

func (p *parser) parseThrow() ast.Stmt {
	line := p.advance().line
	v := p.parseExpr()
	p.skipSemi()
	return &ast.ThrowStmt{Base: ast.Base{LineNo: line}, Value: v}
}

func (p *parser) parseSwitch() ast.Stmt {
	line := p.advance().line
	p.expectPunct("(")
	disc := p.parseExpr()
	p.expectPunct(")")
	p.expectPunct("{")
	var cases []ast.SwitchCase
	for !p.atPunct("}") {
		var c ast.SwitchCase
		if p.atKeyword("default") {
			p.advance()
		} else {
			p.expectKeyword("case")
			c.Values = append(c.Values, p.parseExpr())
			for p.atPunct(",") {
				p.advance()
				c.Values = append(c.Values, p.parseExpr())
			}
		}
		p.expectPunct(":")
		for !p.atKeyword("case") && !p.atKeyword("default") && !p.atPunct("}") {
			c.Body = append(c.Body, p.parseStmt())
		}
		cases = append(cases, c)
	}
	p.advance()
	return &ast.SwitchStmt{Base: ast.Base{LineNo: line}, Discriminant: disc, Cases: cases}
}

func (p *parser) parseDefer() ast.Stmt {
	line := p.advance().line
	x := p.parseExpr()
	call, ok := x.(*ast.Call)
	if !ok {
		p.fail("defer requires a call expression")
	}
	p.skipSemi()
	return &ast.DeferStmt{Base: ast.Base{LineNo: line}, Call: call}
}

func (p *parser) parseImport() ast.Stmt {
	line := p.advance().line
	if p.atPunct("*") {
		p.advance()
		p.expectKeyword("as")
		alias := p.expectIdent()
		p.expectKeyword("from")
		path := p.parseStringLit()
		p.skipSemi()
		return &ast.ImportStmt{Base: ast.Base{LineNo: line}, Kind: ast.ImportNamespace, NSAlias: alias, Path: path}
	}
	specs := p.parseImportSpecs()
	p.expectKeyword("from")
	path := p.parseStringLit()
	p.skipSemi()
	return &ast.ImportStmt{Base: ast.Base{LineNo: line}, Kind: ast.ImportNamed, Specs: specs, Path: path}
}

func (p *parser) parseExport() ast.Stmt {
	line := p.advance().line
	if p.atPunct("{") {
		specs := p.parseImportSpecs()
		p.expectKeyword("from")
		path := p.parseStringLit()
		p.skipSemi()
		return &ast.ImportStmt{Base: ast.Base{LineNo: line}, Kind: ast.ImportReExport, Specs: specs, Path: path}
	}
	name := p.expectIdent()
	p.skipSemi()
	return &ast.ExportStmt{Base: ast.Base{LineNo: line}, Name: name}
}

func (p *parser) parseImportSpecs() []ast.ImportSpec {
	p.expectPunct("{")
	var specs []ast.ImportSpec
	for !p.atPunct("}") {
		name := p.expectIdent()
		alias := ""
		if p.atKeyword("as") {
			p.advance()
			alias = p.expectIdent()
		}
		specs = append(specs, ast.ImportSpec{Name: name, Alias: alias})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return specs
}

func (p *parser) parseExternFn() ast.Stmt {
	line := p.advance().line
	p.expectKeyword("fn")
	name := p.expectIdent()
	p.expectPunct("(")
	var params []ast.ExternFnParam
	for !p.atPunct(")") {
		params = append(params, ast.ExternFnParam{Type: p.parseTypeName()})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	retType := "void"
	if p.atPunct(":") {
		p.advance()
		retType = p.parseTypeName()
	}
	p.expectKeyword("from")
	lib := p.parseStringLit()
	sym := p.parseStringLit()
	p.skipSemi()
	return &ast.ExternFnStmt{Base: ast.Base{LineNo: line}, Name: name, Library: lib, Symbol: sym, Params: params, ReturnType: retType}
}

func (p *parser) parseStringLit() string {
	if p.cur().kind != tString {
		p.fail("expected string literal, got %q", p.cur().lit)
	}
	return p.advance().lit
}

// ---- expressions (precedence climbing) ----

func (p *parser) parseExpr() ast.Expr { return p.parseAssign() }

var assignOps = map[string]ast.BinOp{
	"+=": ast.OpAdd, "-=": ast.OpSub, "*=": ast.OpMul, "/=": ast.OpDiv, "%=": ast.OpMod,
	"&=": ast.OpBitAnd, "|=": ast.OpBitOr, "^=": ast.OpBitXor, "<<=": ast.OpShl, ">>=": ast.OpShr,
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseTernary()
	if p.cur().kind == tPunct {
		if p.atPunct("=") {
			line := p.advance().line
			target := p.toAssignTarget(left)
			value := p.parseAssign()
			return &ast.Assign{Base: ast.Base{LineNo: line}, Target: target, Value: value}
		}
		if op, ok := assignOps[p.cur().lit]; ok {
			line := p.advance().line
			target := p.toAssignTarget(left)
			value := p.parseAssign()
			return &ast.CompoundAssign{Base: ast.Base{LineNo: line}, Target: target, Op: op, Value: value}
		}
	}
	return left
}

func (p *parser) toAssignTarget(e ast.Expr) ast.AssignTarget {
	switch v := e.(type) {
	case *ast.Ident:
		return ast.AssignTarget{Kind: ast.TargetIdent, Name: v.Name}
	case *ast.Index:
		return ast.AssignTarget{Kind: ast.TargetIndex, Receiver: v.Receiver, Index: v.IndexExpr}
	case *ast.Property:
		return ast.AssignTarget{Kind: ast.TargetProperty, Receiver: v.Receiver, Name: v.Name}
	default:
		p.fail("invalid assignment target")
		return ast.AssignTarget{}
	}
}

func (p *parser) parseTernary() ast.Expr {
	cond := p.parseNullCoalesce()
	if p.atPunct("?") {
		line := p.advance().line
		then := p.parseAssign()
		p.expectPunct(":")
		els := p.parseAssign()
		return &ast.Ternary{Base: ast.Base{LineNo: line}, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *parser) parseNullCoalesce() ast.Expr {
	left := p.parseOr()
	for p.atPunct("??") {
		line := p.advance().line
		right := p.parseOr()
		left = &ast.NullCoalesce{Base: ast.Base{LineNo: line}, Left: left, Right: right}
	}
	return left
}

// binLevel defines one precedence tier as the set of operator
// lexemes recognized there and the next-tighter parse function.
type binLevel struct {
	ops  map[string]ast.BinOp
	next func(*parser) ast.Expr
}

func mkLevel(next func(*parser) ast.Expr, ops ...ast.BinOp) binLevel {
	m := make(map[string]ast.BinOp, len(ops))
	for _, o := range ops {
		m[string(o)] = o
	}
	return binLevel{ops: m, next: next}
}

func (p *parser) parseBinaryLevel(lvl binLevel) ast.Expr {
	left := lvl.next(p)
	for p.cur().kind == tPunct {
		op, ok := lvl.ops[p.cur().lit]
		if !ok {
			break
		}
		line := p.advance().line
		right := lvl.next(p)
		left = &ast.Binary{Base: ast.Base{LineNo: line}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseOr() ast.Expr  { return p.parseBinaryLevel(mkLevel((*parser).parseAnd, ast.OpOr)) }
func (p *parser) parseAnd() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseBitOr, ast.OpAnd))
}
func (p *parser) parseBitOr() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseBitXor, ast.OpBitOr))
}
func (p *parser) parseBitXor() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseBitAnd, ast.OpBitXor))
}
func (p *parser) parseBitAnd() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseEquality, ast.OpBitAnd))
}
func (p *parser) parseEquality() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseRelational, ast.OpEq, ast.OpNe))
}
func (p *parser) parseRelational() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseShift, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe))
}
func (p *parser) parseShift() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseAdditive, ast.OpShl, ast.OpShr))
}
func (p *parser) parseAdditive() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseMultiplicative, ast.OpAdd, ast.OpSub))
}
func (p *parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryLevel(mkLevel((*parser).parseUnary, ast.OpMul, ast.OpDiv, ast.OpMod))
}

func (p *parser) parseUnary() ast.Expr {
	line := p.cur().line
	switch {
	case p.atPunct("!"):
		p.advance()
		return &ast.Unary{Base: ast.Base{LineNo: line}, Op: ast.UnaryNot, Operand: p.parseUnary()}
	case p.atPunct("-"):
		p.advance()
		return &ast.Unary{Base: ast.Base{LineNo: line}, Op: ast.UnaryNeg, Operand: p.parseUnary()}
	case p.atPunct("~"):
		p.advance()
		return &ast.Unary{Base: ast.Base{LineNo: line}, Op: ast.UnaryBitNot, Operand: p.parseUnary()}
	case p.atPunct("++") || p.atPunct("--"):
		inc := p.atPunct("++")
		p.advance()
		target := p.toAssignTarget(p.parseUnary())
		return &ast.IncDec{Base: ast.Base{LineNo: line}, Target: target, Inc: inc, Postfix: false}
	case p.atKeyword("await"):
		p.advance()
		return &ast.Await{Base: ast.Base{LineNo: line}, Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		line := p.cur().line
		switch {
		case p.atPunct("."):
			p.advance()
			name := p.expectIdent()
			x = &ast.Property{Base: ast.Base{LineNo: line}, Receiver: x, Name: name}
		case p.atPunct("?."):
			p.advance()
			switch {
			case p.atPunct("["):
				p.advance()
				idx := p.parseExpr()
				p.expectPunct("]")
				x = &ast.OptionalChain{Base: ast.Base{LineNo: line}, Receiver: x, Kind: ast.ChainIndex, Index: idx}
			case p.atPunct("("):
				args := p.parseArgs()
				x = &ast.OptionalChain{Base: ast.Base{LineNo: line}, Receiver: x, Kind: ast.ChainCall, Args: args}
			default:
				name := p.expectIdent()
				x = &ast.OptionalChain{Base: ast.Base{LineNo: line}, Receiver: x, Kind: ast.ChainProperty, Name: name}
			}
		case p.atPunct("["):
			p.advance()
			idx := p.parseExpr()
			p.expectPunct("]")
			x = &ast.Index{Base: ast.Base{LineNo: line}, Receiver: x, IndexExpr: idx}
		case p.atPunct("("):
			args := p.parseArgs()
			x = &ast.Call{Base: ast.Base{LineNo: line}, Callee: x, Args: args}
		case p.atPunct("++") || p.atPunct("--"):
			inc := p.atPunct("++")
			p.advance()
			x = &ast.IncDec{Base: ast.Base{LineNo: line}, Target: p.toAssignTarget(x), Inc: inc, Postfix: true}
		default:
			return x
		}
	}
}

func (p *parser) parseArgs() []ast.Expr {
	p.expectPunct("(")
	var args []ast.Expr
	for !p.atPunct(")") {
		args = append(args, p.parseAssign())
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return args
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.cur()
	line := t.line
	switch {
	case t.kind == tInt:
		return p.parseIntLit()
	case t.kind == tFloat:
		return p.parseFloatLit()
	case t.kind == tString:
		p.advance()
		return p.buildStringLit(line, t.lit)
	case t.kind == tRune:
		p.advance()
		return &ast.Literal{Base: ast.Base{LineNo: line}, Kind: ast.LitRune, Value: rune(t.lit[0])}
	case t.kind == tIdent:
		p.advance()
		if p.atPunct("{") && identLooksLikeType(t.lit) {
			return p.parseObjectLit(line, t.lit)
		}
		return &ast.Ident{Base: ast.Base{LineNo: line}, Name: t.lit}
	case p.atKeyword("true"):
		p.advance()
		return &ast.Literal{Base: ast.Base{LineNo: line}, Kind: ast.LitBool, Value: true}
	case p.atKeyword("false"):
		p.advance()
		return &ast.Literal{Base: ast.Base{LineNo: line}, Kind: ast.LitBool, Value: false}
	case p.atKeyword("null"):
		p.advance()
		return &ast.Literal{Base: ast.Base{LineNo: line}, Kind: ast.LitNull}
	case p.atKeyword("fn") || p.atKeyword("async"):
		return p.parseFuncLit(false)
	case p.atPunct("("):
		p.advance()
		x := p.parseExpr()
		p.expectPunct(")")
		return x
	case p.atPunct("["):
		return p.parseArrayLit()
	case p.atPunct("{"):
		return p.parseObjectLit(line, "")
	default:
		p.fail("unexpected token %q", t.lit)
		return nil
	}
}

// identLooksLikeType treats a capitalized identifier immediately
// followed by `{` as a nominal object literal's type tag (`Point { x:
// 1, y: 2 }`), distinguishing it from a bare identifier followed by a
// block in statement position (which parsePrimary never reaches,
// since blocks are only parsed at the statement level).
func identLooksLikeType(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *parser) parseIntLit() ast.Expr {
	t := p.advance()
	lit, width := splitWidthSuffix(t.lit)
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		p.fail("invalid integer literal %q", lit)
	}
	return &ast.Literal{Base: ast.Base{LineNo: t.line}, Kind: ast.LitInt, Value: n, NumWidth: width}
}

func (p *parser) parseFloatLit() ast.Expr {
	t := p.advance()
	lit, width := splitWidthSuffix(t.lit)
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.fail("invalid float literal %q", lit)
	}
	return &ast.Literal{Base: ast.Base{LineNo: t.line}, Kind: ast.LitFloat, Value: n, NumWidth: width}
}

func splitWidthSuffix(lit string) (string, string) {
	for i := 0; i < len(lit); i++ {
		if lit[i] == 0 {
			return lit[:i], lit[i+1:]
		}
	}
	return lit, ""
}

func (p *parser) parseArrayLit() ast.Expr {
	line := p.expectPunct("[").line
	var elems []ast.Expr
	for !p.atPunct("]") {
		elems = append(elems, p.parseAssign())
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return &ast.ArrayLit{Base: ast.Base{LineNo: line}, Elems: elems}
}

func (p *parser) parseObjectLit(line int, typeName string) ast.Expr {
	p.expectPunct("{")
	var fields []ast.ObjectField
	for !p.atPunct("}") {
		name := p.expectIdent()
		p.expectPunct(":")
		val := p.parseAssign()
		fields = append(fields, ast.ObjectField{Name: name, Value: val})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	return &ast.ObjectLit{Base: ast.Base{LineNo: line}, TypeName: typeName, Fields: fields}
}

func (p *parser) parseFuncLit(named bool) *ast.FuncLit {
	line := p.cur().line
	isAsync := p.atKeyword("async")
	if isAsync {
		p.advance()
	}
	p.expectKeyword("fn")
	name := ""
	if named || p.cur().kind == tIdent {
		name = p.expectIdent()
	}
	p.expectPunct("(")
	var params []ast.Param
	for !p.atPunct(")") {
		pname := p.expectIdent()
		ptype := ""
		if p.atPunct(":") {
			p.advance()
			ptype = p.parseTypeName()
		}
		var def ast.Expr
		if p.atPunct("=") {
			p.advance()
			def = p.parseAssign()
		}
		params = append(params, ast.Param{Name: pname, Type: ptype, Default: def})
		if p.atPunct(",") {
			p.advance()
		}
	}
	p.advance()
	retType := ""
	if p.atPunct(":") {
		p.advance()
		retType = p.parseTypeName()
	}
	body := p.parseBlock()
	return &ast.FuncLit{Base: ast.Base{LineNo: line}, Name: name, IsAsync: isAsync, Params: params, ReturnType: retType, Body: body}
}

// buildStringLit splits a lexed string literal's raw text on `${...}`
// markers into a StringInterp, or a plain Literal if none are
// present. Each embedded expression is parsed with its own
// lexer/parser instance over just that substring.
func (p *parser) buildStringLit(line int, raw string) ast.Expr {
	parts, hasInterp := splitInterp(raw)
	if !hasInterp {
		return &ast.Literal{Base: ast.Base{LineNo: line}, Kind: ast.LitString, Value: raw}
	}
	interp := &ast.StringInterp{Base: ast.Base{LineNo: line}}
	for _, part := range parts {
		if part.isExpr {
			sub := &parser{path: p.path}
			if err := sub.tokenize(part.text); err != nil {
				p.fail("invalid interpolation expression: %s", err)
			}
			interp.Parts = append(interp.Parts, ast.InterpPart{Expr: sub.parseExpr()})
		} else {
			interp.Parts = append(interp.Parts, ast.InterpPart{Literal: part.text})
		}
	}
	return interp
}

type interpPiece struct {
	text   string
	isExpr bool
}

func splitInterp(s string) ([]interpPiece, bool) {
	var parts []interpPiece
	found := false
	i := 0
	for i < len(s) {
		j := index(s, "${", i)
		if j < 0 {
			parts = append(parts, interpPiece{text: s[i:]})
			break
		}
		found = true
		if j > i {
			parts = append(parts, interpPiece{text: s[i:j]})
		}
		depth := 1
		k := j + 2
		for k < len(s) && depth > 0 {
			switch s[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				k++
			}
		}
		parts = append(parts, interpPiece{text: s[j+2 : k], isExpr: true})
		i = k + 1
	}
	return parts, found
}

func index(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
