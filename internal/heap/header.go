// Package heap implements the refcounted heap payloads behind
// hemlock's heap-carrying Value variants (§3.2): String, Array,
// Object, Buffer, Function, Channel, Task, plus the non-refcounted
// File/Socket handle wrappers. Every payload embeds Header, which
// carries the atomic reference count mandated by §3.1/§3.5: a payload
// is freed exactly when its count returns to zero, and freeing
// recursively releases every Value the payload owns.
package heap

import (
	"sync/atomic"

	"github.com/nbeerbower/hemlock/internal/value"
)

// Header is embedded by every refcounted payload. The count starts at
// 1: the slot that creates the payload owns the first retain.
type Header struct {
	count int64
}

// NewHeader returns a Header with its reference count initialized to 1.
func NewHeader() Header { return Header{count: 1} }

// Retain atomically increments the reference count.
func (h *Header) Retain() { atomic.AddInt64(&h.count, 1) }

// release atomically decrements the count and reports whether it hit
// zero. Payload.Release implementations call this, then free their
// owned children only when it returns true.
func (h *Header) release() bool {
	return atomic.AddInt64(&h.count, -1) == 0
}

// RefCount returns the current reference count, for diagnostics and tests.
func (h *Header) RefCount() int64 { return atomic.LoadInt64(&h.count) }

var _ value.Payload = (*String)(nil)
