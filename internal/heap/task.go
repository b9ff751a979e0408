package heap

import (
	"errors"
	"sync"

	"github.com/nbeerbower/hemlock/internal/value"
)

// ErrAlreadyJoined is returned by MarkJoined when a task has already
// been joined once (§3.5 invariant, §7 State errors).
var ErrAlreadyJoined = errors.New("task already joined")

// Task is the payload behind KindTask: completion state shared between
// the spawning goroutine and whichever goroutine eventually calls
// join (§3.2). Exactly one of Result/Exception is meaningful once Done
// is true (§3.5 invariant).
type Task struct {
	Header

	ID string // opaque diagnostic identifier (uuid), set by the task runtime

	mu   sync.Mutex
	cond *sync.Cond

	done      bool
	result    value.Value
	exception value.Value
	hasExc    bool

	joined   bool
	detached bool
}

// NewTask allocates an unfinished Task payload.
func NewTask(id string) *Task {
	t := &Task{Header: NewHeader(), ID: id}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Release decrements the refcount; on reaching zero it releases
// whichever of Result/Exception was delivered.
func (t *Task) Release() bool {
	if !t.release() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasExc {
		value.Release(t.exception)
	} else {
		value.Release(t.result)
	}
	return true
}

// Complete publishes the task's outcome and wakes any blocked joiner.
// Exactly one of result/exc is meaningful, selected by hasExc.
func (t *Task) Complete(result value.Value, exc value.Value, hasExc bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.result, t.exception, t.hasExc = result, exc, hasExc
	t.done = true
	t.cond.Broadcast()
}

// Wait blocks until Complete has run, then returns the outcome. The
// caller takes ownership of the returned retain on whichever Value is
// returned meaningfully.
func (t *Task) Wait() (result value.Value, exc value.Value, hasExc bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.done {
		t.cond.Wait()
	}
	if t.hasExc {
		value.Retain(t.exception)
		return value.Value{}, t.exception, true
	}
	value.Retain(t.result)
	return t.result, value.Value{}, false
}

// MarkJoined records that join() has consumed this task's outcome; a
// second call fails (§3.5 invariant: "a task may be joined at most once").
func (t *Task) MarkJoined() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.joined {
		return ErrAlreadyJoined
	}
	t.joined = true
	return nil
}

// MarkDetached records that the spawner will never join this task.
// Only the flag is set: the completing thread does not free the
// payload, which is released the ordinary way when its last reference
// goes.
func (t *Task) MarkDetached() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detached = true
}

// Detached reports whether MarkDetached has been called.
func (t *Task) Detached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detached
}

// Done reports whether Complete has run yet, without blocking.
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
