package heap

import "fmt"

// Buffer is the payload behind KindBuffer: a raw, bounds-checked byte
// region (§3.2). Buffers own no Value children.
type Buffer struct {
	Header
	bytes []byte
}

// NewBuffer allocates a zero-filled Buffer of the given length.
func NewBuffer(length int) *Buffer {
	return &Buffer{Header: NewHeader(), bytes: make([]byte, length)}
}

// NewBufferFromBytes wraps an existing byte slice as a Buffer payload.
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{Header: NewHeader(), bytes: b}
}

// Release decrements the refcount; Buffers own no Values, so there is
// nothing further to release.
func (b *Buffer) Release() bool { return b.release() }

// Len returns the buffer's length.
func (b *Buffer) Len() int { return len(b.bytes) }

// Cap returns the buffer's capacity.
func (b *Buffer) Cap() int { return cap(b.bytes) }

// Bytes returns the live backing slice.
func (b *Buffer) Bytes() []byte { return b.bytes }

// At returns the byte at index i, bounds-checked.
func (b *Buffer) At(i int) (byte, error) {
	if i < 0 || i >= len(b.bytes) {
		return 0, fmt.Errorf("buffer index %d out of range [0,%d)", i, len(b.bytes))
	}
	return b.bytes[i], nil
}

// SetAt writes a byte at index i, bounds-checked.
func (b *Buffer) SetAt(i int, v byte) error {
	if i < 0 || i >= len(b.bytes) {
		return fmt.Errorf("buffer index %d out of range [0,%d)", i, len(b.bytes))
	}
	b.bytes[i] = v
	return nil
}

// Clone deep-copies the buffer for task-spawn argument isolation.
func (b *Buffer) Clone() *Buffer {
	cp := make([]byte, len(b.bytes))
	copy(cp, b.bytes)
	return NewBufferFromBytes(cp)
}
