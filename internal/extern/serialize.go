package extern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nbeerbower/hemlock/internal/heap"
	"github.com/nbeerbower/hemlock/internal/value"
)

// TextSerializer is the default Serializer (§4.8 `serialize`/
// `deserialize`): a small self-describing text format (numbers carry
// their kind suffix, e.g. `3i32`/`2.5f64`, so a round trip preserves
// the exact numeric kind) rather than JSON, since JSON has no syntax
// for hemlock's ten distinct numeric kinds. Buffers, raw pointers and
// functions are rejected with an error. Serialize
// walks object/array identities with a seen-set and fails fast on a
// cycle instead of recursing forever (§9 Non-goals: "no GC... cycles
// may leak; serializer still detects them").
type TextSerializer struct{}

func NewTextSerializer() *TextSerializer { return &TextSerializer{} }

func (s *TextSerializer) Serialize(v value.Value) (string, error) {
	var b strings.Builder
	if err := writeValue(&b, v, map[any]bool{}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, v value.Value, seen map[any]bool) error {
	switch v.Kind {
	case value.KindNull:
		b.WriteString("null")
	case value.KindBool:
		fmt.Fprintf(b, "%t", v.AsBool())
	case value.KindRune:
		fmt.Fprintf(b, "%drune", v.AsRune())
	case value.KindString:
		fmt.Fprintf(b, "%q", value.ToString(v))
	case value.KindI8, value.KindI16, value.KindI32, value.KindI64:
		fmt.Fprintf(b, "%d%s", v.AsInt64(), v.Kind)
	case value.KindU8, value.KindU16, value.KindU32, value.KindU64:
		fmt.Fprintf(b, "%d%s", v.AsUint64(), v.Kind)
	case value.KindF32:
		fmt.Fprintf(b, "%gf32", v.AsFloat32())
	case value.KindF64:
		fmt.Fprintf(b, "%gf64", v.AsFloat64())
	case value.KindArray:
		a := v.Object().(*heap.Array)
		if seen[a] {
			return fmt.Errorf("serialize: cyclic array detected")
		}
		seen[a] = true
		b.WriteByte('[')
		for i := 0; i < a.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, a.At(i), seen); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		delete(seen, a)
	case value.KindObject:
		o := v.Object().(*heap.Object)
		if seen[o] {
			return fmt.Errorf("serialize: cyclic object detected")
		}
		seen[o] = true
		b.WriteByte('{')
		fmt.Fprintf(b, "%q:", o.TypeName())
		for i, name := range o.Names() {
			if i > 0 {
				b.WriteByte(',')
			}
			fv, _ := o.Get(name)
			fmt.Fprintf(b, "%q:", name)
			if err := writeValue(b, fv, seen); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		delete(seen, o)
	default:
		return fmt.Errorf("serialize: %s is not serializable", v.Kind)
	}
	return nil
}

// deserializer is a minimal recursive-descent reader for the format
// writeValue produces.
type deserializer struct {
	s   string
	pos int
}

func (s *TextSerializer) Deserialize(text string) (value.Value, error) {
	d := &deserializer{s: text}
	v, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	d.skipSpace()
	if d.pos != len(d.s) {
		return value.Value{}, fmt.Errorf("deserialize: trailing input at offset %d", d.pos)
	}
	return v, nil
}

func (d *deserializer) skipSpace() {
	for d.pos < len(d.s) && (d.s[d.pos] == ' ' || d.s[d.pos] == '\n' || d.s[d.pos] == '\t') {
		d.pos++
	}
}

func (d *deserializer) value() (value.Value, error) {
	d.skipSpace()
	if d.pos >= len(d.s) {
		return value.Value{}, fmt.Errorf("deserialize: unexpected end of input")
	}
	switch c := d.s[d.pos]; {
	case c == 'n' && strings.HasPrefix(d.s[d.pos:], "null"):
		d.pos += 4
		return value.Null, nil
	case c == 't' && strings.HasPrefix(d.s[d.pos:], "true"):
		d.pos += 4
		return value.Bool(true), nil
	case c == 'f' && strings.HasPrefix(d.s[d.pos:], "false"):
		d.pos += 5
		return value.Bool(false), nil
	case c == '"':
		s, err := d.quotedString()
		if err != nil {
			return value.Value{}, err
		}
		return value.Heap(value.KindString, heap.NewString(s)), nil
	case c == '[':
		return d.array()
	case c == '{':
		return d.object()
	default:
		return d.number()
	}
}

func (d *deserializer) quotedString() (string, error) {
	start := d.pos
	if d.s[d.pos] != '"' {
		return "", fmt.Errorf("deserialize: expected string at offset %d", d.pos)
	}
	d.pos++
	for d.pos < len(d.s) {
		if d.s[d.pos] == '\\' {
			d.pos += 2
			continue
		}
		if d.s[d.pos] == '"' {
			d.pos++
			unquoted, err := strconv.Unquote(d.s[start:d.pos])
			if err != nil {
				return "", fmt.Errorf("deserialize: invalid string: %w", err)
			}
			return unquoted, nil
		}
		d.pos++
	}
	return "", fmt.Errorf("deserialize: unterminated string at offset %d", start)
}

func (d *deserializer) array() (value.Value, error) {
	d.pos++ // '['
	var elems []value.Value
	d.skipSpace()
	if d.pos < len(d.s) && d.s[d.pos] == ']' {
		d.pos++
		return value.Heap(value.KindArray, heap.NewArray(elems)), nil
	}
	for {
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
		d.skipSpace()
		if d.pos >= len(d.s) {
			return value.Value{}, fmt.Errorf("deserialize: unterminated array")
		}
		if d.s[d.pos] == ',' {
			d.pos++
			continue
		}
		if d.s[d.pos] == ']' {
			d.pos++
			break
		}
		return value.Value{}, fmt.Errorf("deserialize: expected ',' or ']' at offset %d", d.pos)
	}
	return value.Heap(value.KindArray, heap.NewArray(elems)), nil
}

func (d *deserializer) object() (value.Value, error) {
	d.pos++ // '{'
	d.skipSpace()
	typeName, err := d.quotedString()
	if err != nil {
		return value.Value{}, err
	}
	d.skipSpace()
	if d.pos >= len(d.s) || d.s[d.pos] != ':' {
		return value.Value{}, fmt.Errorf("deserialize: expected ':' after type name at offset %d", d.pos)
	}
	d.pos++
	var names []string
	var vals []value.Value
	d.skipSpace()
	if d.pos < len(d.s) && d.s[d.pos] == '}' {
		d.pos++
		return value.Heap(value.KindObject, heap.NewObject(typeName, names, vals)), nil
	}
	for {
		d.skipSpace()
		name, err := d.quotedString()
		if err != nil {
			return value.Value{}, err
		}
		d.skipSpace()
		if d.pos >= len(d.s) || d.s[d.pos] != ':' {
			return value.Value{}, fmt.Errorf("deserialize: expected ':' at offset %d", d.pos)
		}
		d.pos++
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		names = append(names, name)
		vals = append(vals, v)
		d.skipSpace()
		if d.pos >= len(d.s) {
			return value.Value{}, fmt.Errorf("deserialize: unterminated object")
		}
		if d.s[d.pos] == ',' {
			d.pos++
			continue
		}
		if d.s[d.pos] == '}' {
			d.pos++
			break
		}
		return value.Value{}, fmt.Errorf("deserialize: expected ',' or '}' at offset %d", d.pos)
	}
	return value.Heap(value.KindObject, heap.NewObject(typeName, names, vals)), nil
}

func (d *deserializer) number() (value.Value, error) {
	start := d.pos
	for d.pos < len(d.s) && (isDigit(d.s[d.pos]) || d.s[d.pos] == '-' || d.s[d.pos] == '.' || d.s[d.pos] == '+' || d.s[d.pos] == 'e' || d.s[d.pos] == 'E') {
		d.pos++
	}
	numText := d.s[start:d.pos]
	suffixStart := d.pos
	for d.pos < len(d.s) && isAlphaNum(d.s[d.pos]) {
		d.pos++
	}
	suffix := d.s[suffixStart:d.pos]
	switch suffix {
	case "i8":
		n, err := strconv.ParseInt(numText, 10, 8)
		return value.I8(int8(n)), wrapErr(err, numText)
	case "i16":
		n, err := strconv.ParseInt(numText, 10, 16)
		return value.I16(int16(n)), wrapErr(err, numText)
	case "i32":
		n, err := strconv.ParseInt(numText, 10, 32)
		return value.I32(int32(n)), wrapErr(err, numText)
	case "i64":
		n, err := strconv.ParseInt(numText, 10, 64)
		return value.I64(n), wrapErr(err, numText)
	case "u8":
		n, err := strconv.ParseUint(numText, 10, 8)
		return value.U8(uint8(n)), wrapErr(err, numText)
	case "u16":
		n, err := strconv.ParseUint(numText, 10, 16)
		return value.U16(uint16(n)), wrapErr(err, numText)
	case "u32":
		n, err := strconv.ParseUint(numText, 10, 32)
		return value.U32(uint32(n)), wrapErr(err, numText)
	case "u64":
		n, err := strconv.ParseUint(numText, 10, 64)
		return value.U64(n), wrapErr(err, numText)
	case "f32":
		n, err := strconv.ParseFloat(numText, 32)
		return value.F32(float32(n)), wrapErr(err, numText)
	case "f64":
		n, err := strconv.ParseFloat(numText, 64)
		return value.F64(n), wrapErr(err, numText)
	case "rune":
		n, err := strconv.ParseInt(numText, 10, 32)
		return value.Rune(rune(n)), wrapErr(err, numText)
	default:
		return value.Value{}, fmt.Errorf("deserialize: unknown numeric suffix %q", suffix)
	}
}

func wrapErr(err error, text string) error {
	if err != nil {
		return fmt.Errorf("deserialize: invalid number %q: %w", text, err)
	}
	return nil
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isAlphaNum(c byte) bool  { return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' }
