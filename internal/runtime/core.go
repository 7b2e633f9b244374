// Package runtime holds the engine core that the public binding wraps: the
// arena for indirect value payloads, the raised-condition slot, and the
// cross-thread cancellation flag. The evaluator itself lives above this
// package; the core only provides the state it needs at the seam.
package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handle identifies one payload slot in a core's arena. Zero is never a
// valid handle. Handles are indices, not pointers: the arena may recycle
// slot storage whenever the claim count drops to zero.
type Handle uint32

// ErrPayload is the arena-resident payload behind an error cell. It is
// immutable once allocated.
type ErrPayload struct {
	Message string
	Fields  map[string]string
}

type slot struct {
	payload ErrPayload
	claims  int
}

// Core is one interpreter instance's runtime state. All arena operations
// take the mutex; the cancellation flag is lock-free so a requester never
// blocks on the evaluating thread.
type Core struct {
	mu    sync.Mutex
	slots map[Handle]*slot
	next  Handle

	raised    Handle // non-zero while a raised condition is pending
	exitCode  int
	alive     atomic.Bool
	cancelled atomic.Bool
}

// NewCore creates a running core. capacity hints the initial arena size.
func NewCore(capacity int) *Core {
	if capacity < 0 {
		capacity = 0
	}
	c := &Core{
		slots: make(map[Handle]*slot, capacity),
		next:  1,
	}
	c.alive.Store(true)
	return c
}

// Alive reports whether the core has not been shut down.
func (c *Core) Alive() bool { return c.alive.Load() }

// Close shuts the core down and reclaims the arena. Outstanding handles
// become invalid; further typed use of them is a caller precondition
// violation.
func (c *Core) Close() {
	if !c.alive.CompareAndSwap(true, false) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = nil
	c.raised = 0
}

// MustBeAlive panics when the core has been shut down. The binding calls
// this before every operation that touches runtime-owned storage.
func (c *Core) MustBeAlive() {
	if !c.alive.Load() {
		panic("runtime: engine has been shut down; outstanding values are invalid")
	}
}

// AllocError places an error payload in the arena with one claim and
// returns its handle.
func (c *Core) AllocError(message string, fields map[string]string) Handle {
	c.MustBeAlive()
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.next
	c.next++
	c.slots[h] = &slot{payload: ErrPayload{Message: message, Fields: fields}, claims: 1}
	return h
}

// Retain adds a claim to the payload behind h. Used by value copy, which
// duplicates the cell but shares the arena payload.
func (c *Core) Retain(h Handle) {
	c.MustBeAlive()
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[h]
	if !ok {
		panic(fmt.Sprintf("runtime: retain of unknown payload handle %d", h))
	}
	s.claims++
}

// Release drops one claim; the slot is reclaimed when no claims remain.
// Releasing after shutdown is a no-op since the arena is already gone.
func (c *Core) Release(h Handle) {
	if !c.alive.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[h]
	if !ok {
		return
	}
	s.claims--
	if s.claims <= 0 {
		delete(c.slots, h)
	}
}

// Payload returns the payload behind h.
func (c *Core) Payload(h Handle) ErrPayload {
	c.MustBeAlive()
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[h]
	if !ok {
		panic(fmt.Sprintf("runtime: read of unknown payload handle %d", h))
	}
	return s.payload
}

// Live reports whether h currently resolves to an arena slot.
func (c *Core) Live(h Handle) bool {
	if !c.alive.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.slots[h]
	return ok
}

// SetRaised marks the core as being in raised-condition state carrying the
// payload behind h. The raised slot takes its own claim. A second raise
// while one is pending replaces it.
func (c *Core) SetRaised(h Handle) {
	c.MustBeAlive()
	c.mu.Lock()
	s, ok := c.slots[h]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("runtime: raise of unknown payload handle %d", h))
	}
	s.claims++
	prev := c.raised
	c.raised = h
	c.mu.Unlock()
	if prev != 0 && prev != h {
		c.Release(prev)
	}
}

// Raised returns the pending raised payload handle, if any, without
// clearing it.
func (c *Core) Raised() (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raised, c.raised != 0
}

// TakeRaised clears the raised-condition state and transfers its claim to
// the caller, who must Release it.
func (c *Core) TakeRaised() (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.raised
	c.raised = 0
	return h, h != 0
}

// ClearRaised drops a pending raised condition and its claim.
func (c *Core) ClearRaised() {
	c.mu.Lock()
	h := c.raised
	c.raised = 0
	c.mu.Unlock()
	if h != 0 {
		c.Release(h)
	}
}

// RequestCancel posts an asynchronous interruption request. Safe to call
// from any goroutine and never blocks on evaluator progress; the request
// is observed at the next interruption-checked point.
func (c *Core) RequestCancel() {
	c.cancelled.Store(true)
}

// CancelPending reports a pending request without consuming it.
func (c *Core) CancelPending() bool { return c.cancelled.Load() }

// Checkpoint is the interruption-checked point: it consumes a pending
// cancellation request, reporting true exactly once per request.
func (c *Core) Checkpoint() bool {
	return c.cancelled.CompareAndSwap(true, false)
}

// ArenaLen reports the number of live payload slots. Test hook.
func (c *Core) ArenaLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}
