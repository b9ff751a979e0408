package eval

import (
	"github.com/nbeerbower/hemlock/internal/ast"
	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/env"
	"github.com/nbeerbower/hemlock/internal/value"
)

// targetRecv evaluates the receiver (and index, for TargetIndex) of an
// assignment target exactly once, per §4.3's CompoundAssign contract —
// applied uniformly to plain Assign too, since re-evaluating a
// side-effecting receiver on a write the language treats as a single
// operation would be surprising either way.
type targetRecv struct {
	recv value.Value
	idx  value.Value
	has  bool // false for TargetIdent
}

func (ev *Evaluator) resolveTarget(t ast.AssignTarget, en *env.Environment, c *ctx.Context) targetRecv {
	switch t.Kind {
	case ast.TargetIndex:
		recv := ev.evalExpr(t.Receiver, en, c)
		if c.IsUnwinding() {
			return targetRecv{}
		}
		idx := ev.evalExpr(t.Index, en, c)
		if c.IsUnwinding() {
			value.Release(recv)
			return targetRecv{}
		}
		return targetRecv{recv: recv, idx: idx, has: true}
	case ast.TargetProperty:
		recv := ev.evalExpr(t.Receiver, en, c)
		if c.IsUnwinding() {
			return targetRecv{}
		}
		return targetRecv{recv: recv, has: true}
	default:
		return targetRecv{}
	}
}

func (tr targetRecv) release() {
	if tr.has {
		value.Release(tr.recv)
		value.Release(tr.idx)
	}
}

func (ev *Evaluator) readTarget(t ast.AssignTarget, tr targetRecv, en *env.Environment, c *ctx.Context) value.Value {
	switch t.Kind {
	case ast.TargetIdent:
		v, err := en.Lookup(t.Name)
		if err != nil {
			return raise(c, NameError("undefined variable: %s", t.Name))
		}
		return v
	case ast.TargetIndex:
		return ev.getIndex(tr.recv, tr.idx, c)
	case ast.TargetProperty:
		return ev.getProperty(tr.recv, t.Name, c)
	default:
		return raise(c, TypeError("unsupported assignment target"))
	}
}

// writeTarget stores v (transferring the caller's ownership of it into
// the target) and returns v itself as the assignment expression's result.
func (ev *Evaluator) writeTarget(t ast.AssignTarget, tr targetRecv, v value.Value, en *env.Environment, c *ctx.Context) value.Value {
	switch t.Kind {
	case ast.TargetIdent:
		if err := en.Assign(t.Name, v); err != nil {
			value.Release(v)
			if ie, ok := err.(env.ErrImmutable); ok {
				return raise(c, StateError("%s", ie.Error()))
			}
			return raise(c, NameError("undefined variable: %s", t.Name))
		}
		return v
	case ast.TargetIndex:
		ev.setIndex(tr.recv, tr.idx, v, c)
		return v
	case ast.TargetProperty:
		ev.setProperty(tr.recv, t.Name, v, c)
		return v
	default:
		value.Release(v)
		return raise(c, TypeError("unsupported assignment target"))
	}
}

func (ev *Evaluator) evalAssign(n *ast.Assign, en *env.Environment, c *ctx.Context) value.Value {
	tr := ev.resolveTarget(n.Target, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	v := ev.evalExpr(n.Value, en, c)
	if c.IsUnwinding() {
		tr.release()
		return value.Null
	}
	result := ev.writeTarget(n.Target, tr, v, en, c)
	tr.release()
	return result
}

func (ev *Evaluator) evalCompoundAssign(n *ast.CompoundAssign, en *env.Environment, c *ctx.Context) value.Value {
	tr := ev.resolveTarget(n.Target, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	current := ev.readTarget(n.Target, tr, en, c)
	if c.IsUnwinding() {
		tr.release()
		return value.Null
	}
	rhs := ev.evalExpr(n.Value, en, c)
	if c.IsUnwinding() {
		value.Release(current)
		tr.release()
		return value.Null
	}

	var result value.Value
	if n.Op == ast.OpAdd && (current.Kind == value.KindString || rhs.Kind == value.KindString) {
		result = stringValue(value.ToString(current) + value.ToString(rhs))
	} else if !current.Kind.IsNumeric() || !rhs.Kind.IsNumeric() {
		result = raise(c, TypeError("operator %s= requires numeric operands, got %s and %s", n.Op, current.Kind, rhs.Kind))
	} else {
		result = arithResult(c, n.Op, current, rhs)
	}
	value.Release(current)
	value.Release(rhs)
	if c.IsUnwinding() {
		tr.release()
		return value.Null
	}

	out := ev.writeTarget(n.Target, tr, result, en, c)
	tr.release()
	return out
}

func (ev *Evaluator) evalIncDec(n *ast.IncDec, en *env.Environment, c *ctx.Context) value.Value {
	tr := ev.resolveTarget(n.Target, en, c)
	if c.IsUnwinding() {
		return value.Null
	}
	current := ev.readTarget(n.Target, tr, en, c)
	if c.IsUnwinding() {
		tr.release()
		return value.Null
	}
	if !current.Kind.IsNumeric() {
		value.Release(current)
		tr.release()
		return raise(c, TypeError("%s operator requires a numeric operand, got %s", incDecLabel(n), current.Kind))
	}
	op := value.OpAdd
	if !n.Inc {
		op = value.OpSub
	}
	updated, err := value.Arith(op, current, oneLike(current.Kind))
	if err != nil {
		value.Release(current)
		tr.release()
		return raise(c, TypeError("%s", err.Error()))
	}

	value.Retain(current) // keep a copy alive to return if Postfix, independent of writeTarget consuming `updated`
	ev.writeTarget(n.Target, tr, updated, en, c)
	tr.release()
	if c.IsUnwinding() {
		value.Release(current)
		return value.Null
	}
	if n.Postfix {
		return current
	}
	value.Release(current)
	value.Retain(updated)
	return updated
}

func incDecLabel(n *ast.IncDec) string {
	if n.Inc {
		return "++"
	}
	return "--"
}

func oneLike(k value.Kind) value.Value {
	switch k {
	case value.KindI8:
		return value.I8(1)
	case value.KindI16:
		return value.I16(1)
	case value.KindI32:
		return value.I32(1)
	case value.KindI64:
		return value.I64(1)
	case value.KindU8:
		return value.U8(1)
	case value.KindU16:
		return value.U16(1)
	case value.KindU32:
		return value.U32(1)
	case value.KindU64:
		return value.U64(1)
	case value.KindF32:
		return value.F32(1)
	default:
		return value.F64(1)
	}
}
