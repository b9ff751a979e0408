package eval

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/nbeerbower/hemlock/internal/ctx"
	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

type methodFn func(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value

// stringMethods implements the string method surface of §4.4. find
// and replace are backed by regexp2 rather than the standard
// library's RE2 engine, since hemlock string patterns are documented
// as accepting backreferences and lookaround the way the teacher's own
// plugin interpreter leans on regexp2 for anything beyond RE2's reach.
var stringMethods = map[string]methodFn{
	"substr":       strSubstr,
	"slice":        strSlice,
	"split":        strSplit,
	"trim":         strSimple(strings.TrimSpace),
	"trim_start":   strSimple(func(s string) string { return strings.TrimLeft(s, " \t\r\n") }),
	"trim_end":     strSimple(func(s string) string { return strings.TrimRight(s, " \t\r\n") }),
	"to_upper":     strSimple(strings.ToUpper),
	"to_lower":     strSimple(strings.ToLower),
	"starts_with":  strPredicate(strings.HasPrefix),
	"ends_with":    strPredicate(strings.HasSuffix),
	"contains":     strPredicate(strings.Contains),
	"index_of":     strIndexOf,
	"repeat":       strRepeat,
	"bytes":        strBytes,
	"chars":        strChars,
	"find":         strFind,
	"replace":      strReplace,
}

func strReceiver(recv value.Value) *heap.String { return recv.Object().(*heap.String) }

func strSimple(f func(string) string) methodFn {
	return func(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
		releaseAll(args)
		return stringValue(f(strReceiver(recv).String()))
	}
}

func strPredicate(f func(s, sub string) bool) methodFn {
	return func(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
		defer releaseAll(args)
		if len(args) != 1 || args[0].Kind != value.KindString {
			return raise(c, ArityError("expects one string argument"))
		}
		return value.Bool(f(strReceiver(recv).String(), value.ToString(args[0])))
	}
}

func strSubstr(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	s := []rune(strReceiver(recv).String())
	if len(args) < 1 || len(args) > 2 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("substr(start[, length]) requires 1 or 2 integer arguments"))
	}
	start := int(args[0].AsInt64())
	if start < 0 || start > len(s) {
		return raise(c, BoundsError("substr start %d out of range [0,%d]", start, len(s)))
	}
	length := len(s) - start
	if len(args) == 2 {
		if !args[1].Kind.IsInteger() {
			return raise(c, TypeError("substr length must be an integer"))
		}
		length = int(args[1].AsInt64())
	}
	if length < 0 || start+length > len(s) {
		return raise(c, BoundsError("substr length %d out of range at start %d", length, start))
	}
	return stringValue(string(s[start : start+length]))
}

func strSlice(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	s := []rune(strReceiver(recv).String())
	if len(args) != 2 || !args[0].Kind.IsInteger() || !args[1].Kind.IsInteger() {
		return raise(c, ArityError("slice(start, end) requires 2 integer arguments"))
	}
	start, end := int(args[0].AsInt64()), int(args[1].AsInt64())
	if start < 0 || end > len(s) || start > end {
		return raise(c, BoundsError("slice [%d,%d) out of range [0,%d]", start, end, len(s)))
	}
	return stringValue(string(s[start:end]))
}

func strSplit(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || args[0].Kind != value.KindString {
		return raise(c, ArityError("split(sep) requires one string argument"))
	}
	parts := strings.Split(strReceiver(recv).String(), value.ToString(args[0]))
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = stringValue(p)
	}
	out := heap.NewArray(elems)
	releaseAll(elems)
	return value.Heap(value.KindArray, out)
}

func strIndexOf(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || args[0].Kind != value.KindString {
		return raise(c, ArityError("index_of(sub) requires one string argument"))
	}
	i := strings.Index(strReceiver(recv).String(), value.ToString(args[0]))
	return value.I64(int64(i))
}

func strRepeat(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || !args[0].Kind.IsInteger() {
		return raise(c, ArityError("repeat(n) requires one integer argument"))
	}
	n := args[0].AsInt64()
	if n < 0 {
		return raise(c, BoundsError("repeat count must be non-negative, got %d", n))
	}
	return stringValue(strings.Repeat(strReceiver(recv).String(), int(n)))
}

func strBytes(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	b := strReceiver(recv).Bytes()
	cp := make([]byte, len(b))
	copy(cp, b)
	return value.Heap(value.KindBuffer, heap.NewBufferFromBytes(cp))
}

func strChars(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	releaseAll(args)
	runes := []rune(strReceiver(recv).String())
	elems := make([]value.Value, len(runes))
	for i, r := range runes {
		elems[i] = value.Rune(r)
	}
	return value.Heap(value.KindArray, heap.NewArray(elems))
}

func strFind(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 1 || args[0].Kind != value.KindString {
		return raise(c, ArityError("find(pattern) requires one string argument"))
	}
	re, err := regexp2.Compile(value.ToString(args[0]), regexp2.None)
	if err != nil {
		return raise(c, TypeError("invalid pattern: %s", err.Error()))
	}
	m, err := re.FindStringMatch(strReceiver(recv).String())
	if err != nil {
		return raise(c, TypeError("pattern match failed: %s", err.Error()))
	}
	if m == nil {
		return value.Null
	}
	return stringValue(m.String())
}

func strReplace(ev *Evaluator, recv value.Value, args []value.Value, c *ctx.Context) value.Value {
	defer releaseAll(args)
	if len(args) != 2 || args[0].Kind != value.KindString || args[1].Kind != value.KindString {
		return raise(c, ArityError("replace(pattern, replacement) requires two string arguments"))
	}
	re, err := regexp2.Compile(value.ToString(args[0]), regexp2.None)
	if err != nil {
		return raise(c, TypeError("invalid pattern: %s", err.Error()))
	}
	out, err := re.Replace(strReceiver(recv).String(), value.ToString(args[1]), -1, -1)
	if err != nil {
		return raise(c, TypeError("replace failed: %s", err.Error()))
	}
	return stringValue(out)
}
