package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocRetainRelease(t *testing.T) {
	c := NewCore(4)
	defer c.Close()

	h := c.AllocError("boom", nil)
	require.NotZero(t, h)
	assert.Equal(t, "boom", c.Payload(h).Message)
	assert.Equal(t, 1, c.ArenaLen())

	c.Retain(h)
	c.Release(h)
	assert.True(t, c.Live(h), "one claim should remain")

	c.Release(h)
	assert.False(t, c.Live(h))
	assert.Equal(t, 0, c.ArenaLen())
}

func TestHandlesAreNotRecycledAcrossAllocations(t *testing.T) {
	c := NewCore(4)
	defer c.Close()

	h1 := c.AllocError("first", nil)
	c.Release(h1)
	h2 := c.AllocError("second", nil)
	assert.NotEqual(t, h1, h2)
	assert.False(t, c.Live(h1))
}

func TestRaisedStateTransfersClaim(t *testing.T) {
	c := NewCore(4)
	defer c.Close()

	h := c.AllocError("raised", map[string]string{"near": "here"})
	c.SetRaised(h)
	c.Release(h) // constructor's claim; raised slot keeps its own

	got, ok := c.TakeRaised()
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.Equal(t, "raised", c.Payload(got).Message)
	assert.Equal(t, "here", c.Payload(got).Fields["near"])

	_, ok = c.Raised()
	assert.False(t, ok, "take must clear the pending condition")

	c.Release(got)
	assert.False(t, c.Live(h))
}

func TestSecondRaiseReplacesFirst(t *testing.T) {
	c := NewCore(4)
	defer c.Close()

	h1 := c.AllocError("first", nil)
	h2 := c.AllocError("second", nil)
	c.SetRaised(h1)
	c.SetRaised(h2)
	c.Release(h1)
	c.Release(h2)

	got, ok := c.TakeRaised()
	require.True(t, ok)
	assert.Equal(t, h2, got)
	assert.False(t, c.Live(h1), "replaced condition must drop its claim")
}

func TestCheckpointConsumesCancelOnce(t *testing.T) {
	c := NewCore(0)
	defer c.Close()

	assert.False(t, c.Checkpoint())
	c.RequestCancel()
	assert.True(t, c.CancelPending())
	assert.True(t, c.Checkpoint())
	assert.False(t, c.Checkpoint(), "a request is observed exactly once")
}

func TestRequestCancelFromManyGoroutines(t *testing.T) {
	c := NewCore(0)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RequestCancel()
		}()
	}
	wg.Wait()
	assert.True(t, c.Checkpoint())
}

func TestCloseInvalidatesArena(t *testing.T) {
	c := NewCore(4)
	h := c.AllocError("gone", nil)
	c.Close()

	assert.False(t, c.Alive())
	assert.False(t, c.Live(h))
	assert.Panics(t, func() { c.Payload(h) })
	assert.Panics(t, func() { c.AllocError("after close", nil) })
	assert.NotPanics(t, func() { c.Release(h) }, "release after teardown is a no-op")
	assert.NotPanics(t, func() { c.Close() }, "close is idempotent")
}
