package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// evalExpr evaluates x in en under c, returning an owned (one-retain)
// Value. If c.IsUnwinding() becomes true partway through (a nested
// throw/return/break/continue), it returns value.Null immediately;
// callers must check c.IsUnwinding() before using the result.
func (ev *Evaluator) evalExpr(x ast.Expr, en *env.Environment, c *ctx.Context) value.Value {
	switch n := x.(type) {
	case *ast.Literal:
		return evalLiteral(n)
	case *ast.Ident:
		v, err := en.Lookup(n.Name)
		if err != nil {
			return raise(c, NameError("undefined variable: %s", n.Name))
		}
		return v
	case *ast.Binary:
		return ev.evalBinary(n, en, c)
	case *ast.Unary:
		return ev.evalUnary(n, en, c)
	case *ast.Ternary:
		cond := ev.evalExpr(n.Cond, en, c)
		if c.IsUnwinding() {
			value.Release(cond)
			return value.Null
		}
		t := truthy(cond)
		value.Release(cond)
		if t {
			return ev.evalExpr(n.Then, en, c)
		}
		return ev.evalExpr(n.Else, en, c)
	case *ast.NullCoalesce:
		left := ev.evalExpr(n.Left, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		if !left.IsNull() {
			return left
		}
		value.Release(left)
		return ev.evalExpr(n.Right, en, c)
	case *ast.OptionalChain:
		return ev.evalOptionalChain(n, en, c)
	case *ast.Assign:
		return ev.evalAssign(n, en, c)
	case *ast.CompoundAssign:
		return ev.evalCompoundAssign(n, en, c)
	case *ast.IncDec:
		return ev.evalIncDec(n, en, c)
	case *ast.Call:
		return ev.evalCall(n, en, c)
	case *ast.Property:
		recv := ev.evalExpr(n.Receiver, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		defer value.Release(recv)
		return ev.getProperty(recv, n.Name, c)
	case *ast.Index:
		recv := ev.evalExpr(n.Receiver, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		idx := ev.evalExpr(n.IndexExpr, en, c)
		if c.IsUnwinding() {
			value.Release(recv)
			return value.Null
		}
		defer value.Release(recv)
		defer value.Release(idx)
		return ev.getIndex(recv, idx, c)
	case *ast.ObjectLit:
		return ev.evalObjectLit(n, en, c)
	case *ast.ArrayLit:
		elems := make([]value.Value, 0, len(n.Elems))
		defer releaseAll(elems)
		for _, e := range n.Elems {
			v := ev.evalExpr(e, en, c)
			if c.IsUnwinding() {
				return value.Null
			}
			elems = append(elems, v)
		}
		return value.Heap(value.KindArray, heap.NewArray(elems))
	case *ast.FuncLit:
		return value.Heap(value.KindFunction, heap.NewFunction(n.Name, n.IsAsync, n.Params, n.ReturnType, n.Body, en))
	case *ast.StringInterp:
		return ev.evalStringInterp(n, en, c)
	case *ast.Await:
		return ev.evalAwait(n, en, c)
	default:
		return raise(c, TypeError("unsupported expression node"))
	}
}

func evalLiteral(n *ast.Literal) value.Value {
	switch n.Kind {
	case ast.LitBool:
		return value.Bool(n.Value.(bool))
	case ast.LitNull:
		return value.Null
	case ast.LitInt:
		return intLiteral(n.Value.(int64), n.NumWidth)
	case ast.LitFloat:
		f := n.Value.(float64)
		if n.NumWidth == "f32" {
			return value.F32(float32(f))
		}
		return value.F64(f)
	case ast.LitString:
		return stringValue(n.Value.(string))
	case ast.LitRune:
		return value.Rune(n.Value.(rune))
	default:
		return value.Null
	}
}

// intLiteral applies the literal-widening rule (§9 Open Questions):
// an unsuffixed int literal defaults to i32; a suffix ("5u8", "5i64")
// pins the exact width, narrowing the parsed int64 down if needed.
func intLiteral(v int64, width string) value.Value {
	switch width {
	case "i8":
		return value.I8(int8(v))
	case "i16":
		return value.I16(int16(v))
	case "i32", "":
		return value.I32(int32(v))
	case "i64":
		return value.I64(v)
	case "u8":
		return value.U8(uint8(v))
	case "u16":
		return value.U16(uint16(v))
	case "u32":
		return value.U32(uint32(v))
	case "u64":
		return value.U64(uint64(v))
	default:
		return value.I32(int32(v))
	}
}

func (ev *Evaluator) evalBinary(n *ast.Binary, en *env.Environment, c *ctx.Context) value.Value {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		left := ev.evalExpr(n.Left, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		lt := truthy(left)
		if n.Op == ast.OpAnd && !lt {
			return left
		}
		if n.Op == ast.OpOr && lt {
			return left
		}
		value.Release(left)
		return ev.evalExpr(n.Right, en, c)
	}

	left := ev.evalExpr(n.Left, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	right := ev.evalExpr(n.Right, en, c)
	if c.IsUnwinding() {
		value.Release(left)
		return value.Null
	}
	defer value.Release(left)
	defer value.Release(right)

	if n.Op == ast.OpEq || n.Op == ast.OpNe {
		if left.Kind.IsNumeric() && right.Kind.IsNumeric() {
			return arithResult(c, n.Op, left, right)
		}
		eq := value.Equal(left, right)
		if n.Op == ast.OpNe {
			eq = !eq
		}
		return value.Bool(eq)
	}

	if n.Op == ast.OpAdd && (left.Kind == value.KindString || right.Kind == value.KindString) {
		return stringValue(value.ToString(left) + value.ToString(right))
	}

	if !left.Kind.IsNumeric() || !right.Kind.IsNumeric() {
		return raise(c, TypeError("operator %s requires numeric operands, got %s and %s", n.Op, left.Kind, right.Kind))
	}
	return arithResult(c, n.Op, left, right)
}

func arithResult(c *ctx.Context, op ast.BinOp, left, right value.Value) value.Value {
	bop, ok := binOpMap[op]
	if !ok {
		return raise(c, TypeError("unsupported operator %s", op))
	}
	result, err := value.Arith(bop, left, right)
	if err != nil {
		switch err {
		case value.ErrDivByZero:
			return raise(c, ArithError("division by zero"))
		case value.ErrBitwiseFloat:
			return raise(c, TypeError("bitwise operators do not accept float operands"))
		default:
			return raise(c, TypeError("%s", err.Error()))
		}
	}
	return result
}

var binOpMap = map[ast.BinOp]value.BinOp{
	ast.OpAdd: value.OpAdd, ast.OpSub: value.OpSub, ast.OpMul: value.OpMul,
	ast.OpDiv: value.OpDiv, ast.OpMod: value.OpMod,
	ast.OpEq: value.OpEq, ast.OpNe: value.OpNe,
	ast.OpLt: value.OpLt, ast.OpLe: value.OpLe, ast.OpGt: value.OpGt, ast.OpGe: value.OpGe,
	ast.OpBitAnd: value.OpBitAnd, ast.OpBitOr: value.OpBitOr, ast.OpBitXor: value.OpBitXor,
	ast.OpShl: value.OpShl, ast.OpShr: value.OpShr,
}

func (ev *Evaluator) evalUnary(n *ast.Unary, en *env.Environment, c *ctx.Context) value.Value {
	v := ev.evalExpr(n.Operand, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	defer value.Release(v)
	switch n.Op {
	case ast.UnaryNot:
		return value.Bool(!truthy(v))
	case ast.UnaryNeg:
		r, err := value.Negate(v)
		if err != nil {
			if err == value.ErrNegateOverflow {
				return raise(c, ArithError("value does not fit in a signed 64-bit integer"))
			}
			return raise(c, TypeError("%s", err.Error()))
		}
		return r
	case ast.UnaryBitNot:
		r, err := value.BitNot(v)
		if err != nil {
			return raise(c, TypeError("%s", err.Error()))
		}
		return r
	default:
		return raise(c, TypeError("unsupported unary operator %s", n.Op))
	}
}

func (ev *Evaluator) evalOptionalChain(n *ast.OptionalChain, en *env.Environment, c *ctx.Context) value.Value {
	recv := ev.evalExpr(n.Receiver, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	if recv.IsNull() {
		return value.Null
	}
	defer value.Release(recv)
	switch n.Kind {
	case ast.ChainProperty:
		return ev.getProperty(recv, n.Name, c)
	case ast.ChainIndex:
		idx := ev.evalExpr(n.Index, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		defer value.Release(idx)
		return ev.getIndex(recv, idx, c)
	case ast.ChainCall:
		args := ev.evalArgs(n.Args, en, c)
		defer releaseAll(args)
		if c.IsUnwinding() {
			return value.Null
		}
		return ev.callValue(recv, args, nil, c, n.Line())
	default:
		return raise(c, TypeError("unsupported optional chain kind"))
	}
}

func (ev *Evaluator) evalStringInterp(n *ast.StringInterp, en *env.Environment, c *ctx.Context) value.Value {
	out := make([]byte, 0, 32)
	for _, part := range n.Parts {
		if part.Expr == nil {
			out = append(out, part.Literal...)
			continue
		}
		v := ev.evalExpr(part.Expr, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		out = append(out, value.ToString(v)...)
		value.Release(v)
	}
	return stringValue(string(out))
}

func (ev *Evaluator) evalAwait(n *ast.Await, en *env.Environment, c *ctx.Context) value.Value {
	t := ev.evalExpr(n.Operand, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	defer value.Release(t)
	return ev.joinTask(t, c)
}

// evalArgs evaluates a call's argument expressions left-to-right,
// stopping (and releasing what it already evaluated) the moment c
// starts unwinding.
func (ev *Evaluator) evalArgs(argExprs []ast.Expr, en *env.Environment, c *ctx.Context) []value.Value {
	args := make([]value.Value, 0, len(argExprs))
	for _, a := range argExprs {
		v := ev.evalExpr(a, en, c)
		if c.IsUnwinding() {
			releaseAll(args)
			return nil
		}
		args = append(args, v)
	}
	return args
}

func (ev *Evaluator) evalObjectLit(n *ast.ObjectLit, en *env.Environment, c *ctx.Context) value.Value {
	names := make([]string, 0, len(n.Fields))
	vals := make([]value.Value, 0, len(n.Fields))
	defer releaseAll(vals)
	seen := map[string]bool{}
	for _, f := range n.Fields {
		v := ev.evalExpr(f.Value, en, c)
		if c.IsUnwinding() {
			return value.Null
		}
		names = append(names, f.Name)
		vals = append(vals, v)
		seen[f.Name] = true
	}
	if n.TypeName != "" {
		if decl, ok := ev.types.lookup(n.TypeName); ok {
			for _, fd := range decl.Fields {
				if seen[fd.Name] {
					continue
				}
				if fd.Default != nil {
					dv := ev.evalExpr(fd.Default, en, c)
					if c.IsUnwinding() {
						return value.Null
					}
					names = append(names, fd.Name)
					vals = append(vals, dv)
					continue
				}
				if !fd.Optional {
					return raise(c, TypeError("missing required field %q for type %s", fd.Name, n.TypeName))
				}
			}
		}
	}
	return value.Heap(value.KindObject, heap.NewObject(n.TypeName, names, vals))
}
