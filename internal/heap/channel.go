package heap

import (
	"errors"
	"sync"

	"github.com/nbeerbower/hemlock/internal/value"
)

// ErrChannelClosed is raised by Send on a closed channel (§4.5/§7 State errors).
var ErrChannelClosed = errors.New("send on closed channel")

// Channel is the payload behind KindChannel: a fixed-capacity circular
// buffer of Values guarded by a mutex, with separate not-empty/not-full
// condition variables (§3.2/§4.5). FIFO ordering is guaranteed per
// channel regardless of sender count (§3.5 invariant, §8 invariant 4).
type Channel struct {
	Header

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf    []value.Value
	head   int
	size   int
	closed bool
}

// NewChannel allocates a bounded Channel payload with the given capacity.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	c := &Channel{Header: NewHeader(), buf: make([]value.Value, capacity)}
	c.notEmpty = sync.NewCond(&c.mu)
	c.notFull = sync.NewCond(&c.mu)
	return c
}

// Release decrements the refcount; on reaching zero it releases every
// Value still buffered in the channel.
func (c *Channel) Release() bool {
	if !c.release() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < c.size; i++ {
		value.Release(c.buf[(c.head+i)%len(c.buf)])
	}
	c.buf = nil
	return true
}

// Send blocks while the channel is full and open, then enqueues v,
// retaining it (the channel now owns one retain on v). It returns
// ErrChannelClosed if the channel is already closed (§4.5).
func (c *Channel) Send(v value.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.size == len(c.buf) && !c.closed {
		c.notFull.Wait()
	}
	if c.closed {
		return ErrChannelClosed
	}
	value.Retain(v)
	tail := (c.head + c.size) % len(c.buf)
	c.buf[tail] = v
	c.size++
	c.notEmpty.Signal()
	return nil
}

// Recv blocks while the channel is empty and open, then dequeues the
// oldest Value. If the channel is empty and closed, it returns the
// null Value with ok=false (§4.5).
func (c *Channel) Recv() (value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.size == 0 && !c.closed {
		c.notEmpty.Wait()
	}
	if c.size == 0 {
		return value.Null, false
	}
	v := c.buf[c.head]
	c.buf[c.head] = value.Value{}
	c.head = (c.head + 1) % len(c.buf)
	c.size--
	c.notFull.Signal()
	return v, true
}

// Close marks the channel closed and wakes every blocked sender and
// receiver. Idempotent: a second Close is a no-op (§8 invariant 9).
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notEmpty.Broadcast()
	c.notFull.Broadcast()
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Cap returns the channel's fixed capacity.
func (c *Channel) Cap() int { return len(c.buf) }
