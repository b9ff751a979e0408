// Command hemlock is the interpreter's CLI (§6): `hemlock [FLAGS]
// [script [args...]]`. With no script it starts an interactive
// read-eval-print loop, the way the teacher's own Interpreter.REPL
// works over a line-buffered input stream; everything else — bundling,
// packaging, bundle inspection — is new surface a library-shaped
// teacher never needed but a runnable CLI does.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/builtin"
	"github.com/nbeerbower/hemlock/internal/bundle"
	"github.com/nbeerbower/hemlock/internal/config"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/eval"
	"github.com/nbeerbower/hemlock/internal/module"
	"github.com/nbeerbower/hemlock/internal/parser"
	"github.com/nbeerbower/hemlock/internal/value"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("hemlock", flag.ContinueOnError)
	bundlePath := fs.String("bundle", "", "parse `script` and write a serialized-AST bundle")
	packagePath := fs.String("package", "", "parse `script` and write a self-contained executable")
	infoPath := fs.String("info", "", "inspect a bundle's header and print it as a table")
	compress := fs.Bool("compress", true, "gzip-compress a bundle's payload")
	noCompress := fs.Bool("no-compress", false, "disable bundle compression (overrides --compress)")
	outPath := fs.String("o", "", "output path for --bundle/--package")
	verbose := fs.Bool("verbose", false, "trace module loads, task spawns, and panics")
	if err := fs.Parse(argv); err != nil {
		return 1
	}
	useCompress := *compress && !*noCompress

	cfg, err := config.Load(config.UserPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	if *verbose {
		cfg.Verbose = true
	}

	switch {
	case *infoPath != "":
		return cmdInfo(*infoPath)
	case *bundlePath != "":
		return cmdBundle(*bundlePath, *outPath, useCompress)
	case *packagePath != "":
		return cmdPackage(*packagePath, *outPath, useCompress)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		if prog, args, ok, err := tryEmbedded(); err != nil {
			fmt.Fprintln(os.Stderr, "hemlock:", err)
			return 1
		} else if ok {
			return runProgram(prog, args, cfg, ".")
		}
		return repl(cfg)
	}

	scriptPath := rest[0]
	scriptArgs := rest // args[0] is the script path itself
	prog, err := loadScript(scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	return runProgram(prog, scriptArgs, cfg, filepath.Dir(scriptPath))
}

// loadScript reads path and parses it, transparently accepting either
// hemlock source text or a previously-produced HMLC bundle (detected
// by its magic prefix) so `hemlock foo.hmlc` runs exactly like
// `hemlock foo.hml`.
func loadScript(path string) (*ast.Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) >= 4 && string(b[:4]) == "HMLC" {
		return bundle.Decode(b)
	}
	return parser.Parse(b, path)
}

func tryEmbedded() (*ast.Program, []string, bool, error) {
	b, ok, err := bundle.Embedded()
	if err != nil || !ok {
		return nil, nil, ok, err
	}
	prog, err := bundle.Decode(b)
	if err != nil {
		return nil, nil, false, err
	}
	return prog, os.Args[1:], true, nil
}

func cmdInfo(path string) int {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	info, err := bundle.ReadInfo(b)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.Append([]string{"version", fmt.Sprint(info.Version)})
	table.Append([]string{"compressed", fmt.Sprint(info.Compressed)})
	table.Append([]string{"statements", fmt.Sprint(info.StmtCount)})
	table.Append([]string{"payload bytes", fmt.Sprint(info.PayloadSize)})
	table.Render()
	return 0
}

func cmdBundle(scriptPath, outPath string, compress bool) int {
	prog, err := parser.Parse(mustRead(scriptPath), scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	b, err := bundle.Encode(prog, compress)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + ".hmlc"
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	return 0
}

func cmdPackage(scriptPath, outPath string, compress bool) int {
	prog, err := parser.Parse(mustRead(scriptPath), scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	b, err := bundle.Encode(prog, compress)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath))
	}
	if err := bundle.Package(b, outPath); err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		return 1
	}
	return 0
}

func mustRead(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hemlock:", err)
		os.Exit(1)
	}
	return b
}

// runProgram wires a fresh Evaluator/Registry/Loader and executes prog
// to completion, reporting an uncaught exception or module-load error
// the way §6 specifies (exit 1), a clean run as exit 0.
func runProgram(prog *ast.Program, scriptArgs []string, cfg *config.Config, baseDir string) (exitCode int) {
	ev := eval.New(nil)
	reg := builtin.New(ev, scriptArgs)
	root := reg.Root()
	module.New(ev, parser.Adapter{}, root, baseDir, cfg.StdlibRoot)

	defer func() {
		if r := recover(); r != nil {
			reportPanic(r, cfg.Verbose)
			exitCode = 1
		}
	}()

	moduleEnv := env.NewChild(root)
	c := ctx.New()
	exports := make(eval.Exports)
	ev.EvalProgram(prog, moduleEnv, c, exports)
	if c.Flag == ctx.FlagThrow {
		fmt.Fprintln(os.Stderr, "uncaught exception:", value.ToString(c.ExcVal))
		return 1
	}
	return 0
}

// reportPanic handles a Go-level panic escaping the evaluator — an
// internal invariant violation (double free, ref-count underflow)
// rather than a hemlock-level exception, which never reaches here
// since it unwinds through ctx.Context instead. Mirrors the teacher's
// own split between Panic (interpreted) and a host-level stack trace.
func reportPanic(r any, verbose bool) {
	red := color.New(color.FgRed)
	red.Fprintln(os.Stderr, "hemlock: internal error:", r)
	if verbose {
		fmt.Fprintln(os.Stderr, spew.Sdump(r))
		fmt.Fprintln(os.Stderr, stack.Trace().TrimRuntime())
	}
}

// repl runs an interactive read-eval-print loop over stdin, using
// liner for line editing/history (teacher: a raw bufio.Scanner) and
// coloring the prompt only when stdout is a real terminal (teacher:
// getPrompt's manual Stat() check, reworked onto isatty/colorable).
func repl(cfg *config.Config) int {
	ev := eval.New(nil)
	reg := builtin.New(ev, nil)
	root := reg.Root()
	module.New(ev, parser.Adapter{}, root, ".", cfg.StdlibRoot)
	replEnv := env.NewChild(root)
	c := ctx.New()

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	out := colorable.NewColorableStdout()
	prompt := color.New(color.FgGreen).SprintFunc()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := replHistoryPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		p := ""
		if tty {
			p = prompt("hemlock> ")
		}
		text, err := line.Prompt(p)
		if err != nil { // io.EOF or liner.ErrPromptAborted
			fmt.Fprintln(out)
			return 0
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		line.AppendHistory(text)
		evalREPLLine(ev, replEnv, c, text)
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hemlock_history"
	}
	return filepath.Join(home, ".hemlock_history")
}

// evalREPLLine parses text as one complete program and runs it against
// the persistent REPL environment. A line's output is whatever it
// prints itself (via the `print` builtin); EvalProgram has no
// expression-result channel of its own to echo, so unlike some REPLs
// this one does not auto-print a trailing expression's value.
func evalREPLLine(ev *eval.Evaluator, en *env.Environment, c *ctx.Context, text string) {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r, false)
		}
	}()
	prog, err := parser.Parse([]byte(text), "<repl>")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	exports := make(eval.Exports)
	ev.EvalProgram(prog, en, c, exports)
	if c.Flag == ctx.FlagThrow {
		fmt.Fprintln(os.Stderr, "uncaught exception:", value.ToString(c.ExcVal))
	}
	c.Clear()
}
