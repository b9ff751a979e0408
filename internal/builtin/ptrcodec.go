package builtin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nbeerbower/hemlock/internal/value"
)

// readNumeric/writeNumeric implement the ptr_read_*/ptr_write_*
// accessor family (§4.7) over a resolved allocation region, using
// little-endian encoding uniformly across widths the way a real
// architecture-independent host-language FFI layer would.
func readNumeric(region []byte, off int, k value.Kind) (value.Value, error) {
	w := k.Width() / 8
	if off < 0 || off+w > len(region) {
		return value.Value{}, fmt.Errorf("ptr_read_%s: offset %d exceeds allocation of length %d", k, off, len(region))
	}
	b := region[off : off+w]
	switch k {
	case value.KindI8:
		return value.I8(int8(b[0])), nil
	case value.KindU8:
		return value.U8(b[0]), nil
	case value.KindI16:
		return value.I16(int16(binary.LittleEndian.Uint16(b))), nil
	case value.KindU16:
		return value.U16(binary.LittleEndian.Uint16(b)), nil
	case value.KindI32:
		return value.I32(int32(binary.LittleEndian.Uint32(b))), nil
	case value.KindU32:
		return value.U32(binary.LittleEndian.Uint32(b)), nil
	case value.KindI64:
		return value.I64(int64(binary.LittleEndian.Uint64(b))), nil
	case value.KindU64:
		return value.U64(binary.LittleEndian.Uint64(b)), nil
	case value.KindF32:
		return value.F32(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case value.KindF64:
		return value.F64(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	default:
		return value.Value{}, fmt.Errorf("ptr_read: unsupported kind %s", k)
	}
}

func writeNumeric(region []byte, off int, k value.Kind, v value.Value) error {
	w := k.Width() / 8
	if off < 0 || off+w > len(region) {
		return fmt.Errorf("ptr_write_%s: offset %d exceeds allocation of length %d", k, off, len(region))
	}
	if !v.Kind.IsNumeric() {
		return fmt.Errorf("ptr_write_%s: value must be numeric, got %s", k, v.Kind)
	}
	b := region[off : off+w]
	switch k {
	case value.KindI8:
		b[0] = byte(v.AsInt64())
	case value.KindU8:
		b[0] = byte(v.AsUint64())
	case value.KindI16:
		binary.LittleEndian.PutUint16(b, uint16(v.AsInt64()))
	case value.KindU16:
		binary.LittleEndian.PutUint16(b, uint16(v.AsUint64()))
	case value.KindI32:
		binary.LittleEndian.PutUint32(b, uint32(v.AsInt64()))
	case value.KindU32:
		binary.LittleEndian.PutUint32(b, uint32(v.AsUint64()))
	case value.KindI64:
		binary.LittleEndian.PutUint64(b, uint64(v.AsInt64()))
	case value.KindU64:
		binary.LittleEndian.PutUint64(b, v.AsUint64())
	case value.KindF32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v.AsFloat32()))
	case value.KindF64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.AsFloat64()))
	default:
		return fmt.Errorf("ptr_write: unsupported kind %s", k)
	}
	return nil
}
