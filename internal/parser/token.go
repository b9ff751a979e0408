// Package parser turns hemlock source text into the ast.Program shape
// internal/ast declares (§4.3). Lexing/parsing is a declared Non-goal
// of the interpreter spec itself (spec.md §1's out-of-scope list), but
// cmd/hemlock needs a real front end to be a runnable CLI end to end,
// so this package supplies one: a hand-written lexer and a
// precedence-climbing (Pratt) recursive-descent parser, the
// conventional idiomatic-Go shape for a small scripting language
// front end (the teacher's own CFG-threading parser is out of scope
// for a tree-walker, per SPEC_FULL.md §4).
package parser

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tIdent
	tInt
	tFloat
	tString
	tRune
	tKeyword
	tPunct
)

type token struct {
	kind tokenKind
	lit  string
	line int
}

var keywords = map[string]bool{
	"let": true, "const": true, "fn": true, "if": true, "else": true,
	"while": true, "for": true, "break": true, "continue": true,
	"return": true, "true": true, "false": true, "null": true,
	"define": true, "enum": true, "try": true, "catch": true,
	"finally": true, "throw": true, "switch": true, "case": true,
	"default": true, "defer": true, "import": true, "export": true,
	"from": true, "as": true, "extern": true, "await": true, "async": true,
	"in": true,
}
