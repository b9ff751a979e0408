package heap

import "unicode/utf8"

// String is the payload behind KindString: a mutable UTF-8 byte
// buffer with a lazily computed code-point length (§3.2, §8 invariant 3).
type String struct {
	Header
	bytes  []byte
	length int // cached code-point count, -1 if not computed
}

// NewString allocates a String payload from raw UTF-8 bytes. The
// returned payload owns one retain (count starts at 1, per §3.1).
func NewString(s string) *String {
	return &String{Header: NewHeader(), bytes: []byte(s), length: -1}
}

// Release decrements the refcount; Strings own no child Values, so
// there is nothing further to release when it reaches zero.
func (s *String) Release() bool { return s.release() }

// Bytes returns the live byte slice. Callers must not retain it past
// a subsequent mutation.
func (s *String) Bytes() []byte { return s.bytes }

// String returns the UTF-8 text.
func (s *String) String() string { return string(s.bytes) }

// ByteLen returns the byte length (§8 invariant 3).
func (s *String) ByteLen() int { return len(s.bytes) }

// RuneLen returns the cached code-point length, computing and caching
// it on first use.
func (s *String) RuneLen() int {
	if s.length < 0 {
		s.length = utf8.RuneCount(s.bytes)
	}
	return s.length
}

// Append grows the buffer, invalidating the cached rune length.
func (s *String) Append(b []byte) {
	s.bytes = append(s.bytes, b...)
	s.length = -1
}

// SetByte writes a single byte at a byte index (bounds-checked by
// the caller), invalidating the cached rune length since a byte write
// can split or join a multi-byte code point.
func (s *String) SetByte(i int, b byte) {
	s.bytes[i] = b
	s.length = -1
}

// RuneAt decodes the i-th code point (0-indexed), walking byte offsets
// the way §8 invariant 3 requires.
func (s *String) RuneAt(i int) (rune, bool) {
	b := s.bytes
	for idx := 0; idx < i; idx++ {
		_, size := utf8.DecodeRune(b)
		if size == 0 {
			return 0, false
		}
		b = b[size:]
	}
	if len(b) == 0 {
		return 0, false
	}
	r, _ := utf8.DecodeRune(b)
	return r, true
}

// Equal compares two strings by byte content (code-point-sequence
// equality, per §4.1).
func Equal(a, b *String) bool {
	if a == b {
		return true
	}
	if len(a.bytes) != len(b.bytes) {
		return false
	}
	for i := range a.bytes {
		if a.bytes[i] != b.bytes[i] {
			return false
		}
	}
	return true
}
