package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

func (ev *Evaluator) evalStmt(s ast.Stmt, en *env.Environment, c *ctx.Context) {
	switch n := s.(type) {
	case *ast.Block:
		ev.evalBlock(n, en, c)
	case *ast.LetStmt:
		ev.evalLet(n, en, c)
	case *ast.ExprStmt:
		v := ev.evalExpr(n.X, en, c)
		value.Release(v)
	case *ast.IfStmt:
		ev.evalIf(n, en, c)
	case *ast.WhileStmt:
		ev.evalWhile(n, en, c)
	case *ast.ForStmt:
		ev.evalFor(n, en, c)
	case *ast.ForInStmt:
		ev.evalForIn(n, en, c)
	case *ast.BreakStmt:
		c.SetBreak()
	case *ast.ContinueStmt:
		c.SetContinue()
	case *ast.ReturnStmt:
		if n.Value == nil {
			c.SetReturn(value.Null)
			return
		}
		v := ev.evalExpr(n.Value, en, c)
		if c.IsUnwinding() {
			return
		}
		c.SetReturn(v)
	case *ast.DefineObjectStmt:
		ev.types.define(n)
	case *ast.EnumStmt:
		ev.evalEnum(n, en, c)
	case *ast.TryStmt:
		ev.evalTry(n, en, c)
	case *ast.ThrowStmt:
		v := ev.evalExpr(n.Value, en, c)
		if c.IsUnwinding() {
			return
		}
		c.SetThrow(v)
	case *ast.SwitchStmt:
		ev.evalSwitch(n, en, c)
	case *ast.DeferStmt:
		c.PushDefer(n.Call, en)
	case *ast.ImportStmt:
		ev.evalImport(n, en, c)
	case *ast.ExternFnStmt:
		paramTypes := externParamTypes(n.Params)
		ff := &heap.FFIFn{
			Name: n.Name, Library: n.Library, Symbol: n.Symbol,
			ParamTypes: paramTypes, ReturnType: n.ReturnType,
		}
		if ev.FFIResolver != nil {
			if call, err := ev.FFIResolver(n.Library, n.Symbol, paramTypes, n.ReturnType); err == nil {
				ff.Call = call
			}
		}
		en.Define(n.Name, value.Obj(value.KindFFIFn, ff), true)
	case *ast.ExportStmt:
		if c.Exports != nil {
			if v, err := en.Lookup(n.Name); err == nil {
				c.Exports[n.Name] = v
			}
		}
	default:
		raise(c, TypeError("unsupported statement node"))
	}
}

func externParamTypes(params []ast.ExternFnParam) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func (ev *Evaluator) evalBlock(b *ast.Block, en *env.Environment, c *ctx.Context) {
	child := env.NewChild(en)
	defer child.Release()
	for _, s := range b.Stmts {
		ev.evalStmt(s, child, c)
		if c.IsUnwinding() {
			return
		}
	}
}

func (ev *Evaluator) evalLet(n *ast.LetStmt, en *env.Environment, c *ctx.Context) {
	var v value.Value
	if n.Value != nil {
		v = ev.evalExpr(n.Value, en, c)
		if c.IsUnwinding() {
			return
		}
	} else {
		v = value.Null
	}
	v = ev.convertAnnotated(v, n.Type, c)
	if c.IsUnwinding() {
		return
	}
	en.Define(n.Name, v, n.IsConst)
	value.Release(v)
}

func (ev *Evaluator) evalIf(n *ast.IfStmt, en *env.Environment, c *ctx.Context) {
	cond := ev.evalExpr(n.Cond, en, c)
	if c.IsUnwinding() {
		return
	}
	t := truthy(cond)
	value.Release(cond)
	if t {
		ev.evalStmt(n.Then, en, c)
	} else if n.Else != nil {
		ev.evalStmt(n.Else, en, c)
	}
}

func (ev *Evaluator) evalWhile(n *ast.WhileStmt, en *env.Environment, c *ctx.Context) {
	for {
		cond := ev.evalExpr(n.Cond, en, c)
		if c.IsUnwinding() {
			return
		}
		t := truthy(cond)
		value.Release(cond)
		if !t {
			return
		}
		ev.evalStmt(n.Body, en, c)
		if c.Flag == ctx.FlagBreak {
			c.Clear()
			return
		}
		if c.Flag == ctx.FlagContinue {
			c.Clear()
			continue
		}
		if c.IsUnwinding() {
			return
		}
	}
}

func (ev *Evaluator) evalFor(n *ast.ForStmt, en *env.Environment, c *ctx.Context) {
	loopEnv := env.NewChild(en)
	defer loopEnv.Release()
	if n.Init != nil {
		ev.evalStmt(n.Init, loopEnv, c)
		if c.IsUnwinding() {
			return
		}
	}
	for {
		if n.Cond != nil {
			cond := ev.evalExpr(n.Cond, loopEnv, c)
			if c.IsUnwinding() {
				return
			}
			t := truthy(cond)
			value.Release(cond)
			if !t {
				return
			}
		}
		ev.evalStmt(n.Body, loopEnv, c)
		if c.Flag == ctx.FlagBreak {
			c.Clear()
			return
		}
		if c.Flag == ctx.FlagContinue {
			c.Clear()
		} else if c.IsUnwinding() {
			return
		}
		if n.Post != nil {
			ev.evalStmt(n.Post, loopEnv, c)
			if c.IsUnwinding() {
				return
			}
		}
	}
}

func (ev *Evaluator) evalForIn(n *ast.ForInStmt, en *env.Environment, c *ctx.Context) {
	iterable := ev.evalExpr(n.Iterable, en, c)
	if c.IsUnwinding() {
		return
	}
	defer value.Release(iterable)

	step := func(idx value.Value, val value.Value) bool {
		loopEnv := env.NewChild(en)
		loopEnv.Define(n.ValueName, val, false)
		if n.IndexName != "" {
			loopEnv.Define(n.IndexName, idx, false)
		}
		ev.evalStmt(n.Body, loopEnv, c)
		loopEnv.Release()
		if c.Flag == ctx.FlagBreak {
			c.Clear()
			return false
		}
		if c.Flag == ctx.FlagContinue {
			c.Clear()
			return true
		}
		return !c.IsUnwinding()
	}

	switch iterable.Kind {
	case value.KindArray:
		a := iterable.Object().(*heap.Array)
		for i := 0; i < a.Len(); i++ {
			v := a.At(i)
			value.Retain(v)
			if !step(value.I64(int64(i)), v) {
				return
			}
		}
	case value.KindObject:
		o := iterable.Object().(*heap.Object)
		for _, name := range append([]string(nil), o.Names()...) {
			v, ok := o.Get(name)
			if !ok {
				continue
			}
			value.Retain(v)
			if !step(stringValue(name), v) {
				return
			}
		}
	case value.KindString:
		s := iterable.Object().(*heap.String)
		for i := 0; i < s.RuneLen(); i++ {
			r, ok := s.RuneAt(i)
			if !ok {
				break
			}
			if !step(value.I64(int64(i)), value.Rune(r)) {
				return
			}
		}
	default:
		raise(c, TypeError("for-in requires an array, object, or string, got %s", iterable.Kind))
	}
}

func (ev *Evaluator) evalEnum(n *ast.EnumStmt, en *env.Environment, c *ctx.Context) {
	names := make([]string, 0, len(n.Variants))
	vals := make([]value.Value, 0, len(n.Variants))
	var next int64
	for _, variant := range n.Variants {
		v := next
		if variant.Value != nil {
			ve := ev.evalExpr(variant.Value, en, c)
			if c.IsUnwinding() {
				releaseAll(vals)
				return
			}
			v = ve.AsInt64()
			value.Release(ve)
		}
		names = append(names, variant.Name)
		vals = append(vals, value.I64(v))
		next = v + 1
	}
	en.Define(n.Name, value.Heap(value.KindObject, heap.NewObject(n.Name, names, vals)), true)
}

func (ev *Evaluator) evalTry(n *ast.TryStmt, en *env.Environment, c *ctx.Context) {
	ev.evalBlock(n.Try, en, c)

	if n.HasCatch && c.Flag == ctx.FlagThrow {
		exc := c.ExcVal
		c.Clear()
		catchEnv := env.NewChild(en)
		catchEnv.Define(n.CatchParam, exc, false)
		value.Release(exc)
		ev.evalBlock(n.Catch, catchEnv, c)
		catchEnv.Release()
	}

	if n.HasFinally {
		snap := c.Save()
		c.Clear()
		ev.evalBlock(n.Finally, en, c)
		if !c.IsUnwinding() {
			c.Restore(snap)
		}
		// if finally itself set a new control-flow intent, it wins
		// outright (§4.4: finally can override try/catch's outcome).
	}
}

func (ev *Evaluator) evalSwitch(n *ast.SwitchStmt, en *env.Environment, c *ctx.Context) {
	disc := ev.evalExpr(n.Discriminant, en, c)
	if c.IsUnwinding() {
		return
	}

	start, defaultIdx := -1, -1
caseScan:
	for i, cs := range n.Cases {
		if cs.Values == nil {
			defaultIdx = i
			continue
		}
		for _, ve := range cs.Values {
			v := ev.evalExpr(ve, en, c)
			if c.IsUnwinding() {
				value.Release(disc)
				return
			}
			matched := ev.valuesEqual(disc, v, c)
			value.Release(v)
			if c.IsUnwinding() {
				value.Release(disc)
				return
			}
			if matched {
				start = i
				break caseScan
			}
		}
	}
	value.Release(disc)
	if start == -1 {
		start = defaultIdx
	}
	if start == -1 {
		return
	}

	switchEnv := env.NewChild(en)
	defer switchEnv.Release()
	for i := start; i < len(n.Cases); i++ {
		for _, s := range n.Cases[i].Body {
			ev.evalStmt(s, switchEnv, c)
			if c.IsUnwinding() {
				break
			}
		}
		if c.IsUnwinding() {
			break
		}
	}
	if c.Flag == ctx.FlagBreak {
		c.Clear()
	}
}

func (ev *Evaluator) valuesEqual(a, b value.Value, c *ctx.Context) bool {
	if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
		result, err := value.Arith(value.OpEq, a, b)
		if err != nil {
			raise(c, TypeError("%s", err.Error()))
			return false
		}
		return result.AsBool()
	}
	return value.Equal(a, b)
}
