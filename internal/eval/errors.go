package eval

import (
	"fmt"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/value"
)

// Thrown wraps a Value raised via `throw` or an internal runtime
// fault, carrying it through Go's error-return plumbing until the
// evaluator installs it onto the ExecutionContext's exception slot
// (§4.4/§7). Every recoverable runtime fault — arithmetic, bounds,
// type, name, arity, state — is represented as a Thrown string value;
// `throw` lets user code raise any Value, including an object of
// conventional shape {code, message}.
type Thrown struct {
	Value value.Value
}

func (t Thrown) Error() string { return value.ToString(t.Value) }

// ThrowString builds a Thrown wrapping a plain diagnostic string, the
// shape used for every built-in runtime fault.
func ThrowString(format string, args ...any) Thrown {
	return Thrown{Value: stringValue(fmt.Sprintf(format, args...))}
}

// TypeError reports a type-kind failure (§7): non-numeric operand,
// wrong kind for property/call, failed annotation conversion.
func TypeError(format string, args ...any) Thrown {
	return ThrowString("type error: "+format, args...)
}

// NameError reports undefined variable / missing field / missing method (§7).
func NameError(format string, args ...any) Thrown {
	return ThrowString("name error: "+format, args...)
}

// ArityError reports a bad call arity (§7).
func ArityError(format string, args ...any) Thrown {
	return ThrowString("arity error: "+format, args...)
}

// BoundsError reports a string/array/buffer index out of range (§7).
func BoundsError(format string, args ...any) Thrown {
	return ThrowString("bounds error: "+format, args...)
}

// StateError reports a closed-resource or double-join violation (§7).
func StateError(format string, args ...any) Thrown {
	return ThrowString("state error: "+format, args...)
}

// ArithError reports a divide-by-zero or negate-overflow fault (§7).
func ArithError(format string, args ...any) Thrown {
	return ThrowString("arithmetic error: "+format, args...)
}

// StackError reports recursion past ctx.MaxCallDepth (§7).
func StackError(format string, args ...any) Thrown {
	return ThrowString("stack error: "+format, args...)
}

// raise installs t onto c's exception slot and returns null, the value
// every evaluation function returns at the point it starts unwinding
// (§4.4's unwinding model: control-flow propagates through
// ctx.Context.IsUnwinding(), not Go panics or error returns).
func raise(c *ctx.Context, t Thrown) value.Value {
	c.SetThrow(t.Value)
	return value.Null
}
