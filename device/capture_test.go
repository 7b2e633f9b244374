package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureBufferWithinLimit(t *testing.T) {
	b := NewCaptureBuffer(64)
	n, err := b.Write([]byte("short output"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "short output", b.String())
	assert.False(t, b.Truncated)
}

func TestCaptureBufferTruncates(t *testing.T) {
	b := NewCaptureBuffer(10)
	n, err := b.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 16, n, "writer contract: report everything as written")
	assert.Equal(t, "0123456789", b.String())
	assert.True(t, b.Truncated)

	// Follow-up writes are dropped entirely.
	n, err = b.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 10, b.Len())
}

func TestCaptureBufferAsDeviceOutput(t *testing.T) {
	b := NewCaptureBuffer(8)
	d := NewStdIO(nil, b)

	req := Request{Command: CmdWrite, Data: []byte(strings.Repeat("x", 20)), Length: 20}
	require.NoError(t, d.Dispatch(&req), "truncation must not surface as a device error")
	assert.Equal(t, 20, req.Actual)
	assert.Equal(t, 8, b.Len())
	assert.True(t, b.Truncated)
}

func TestCaptureBufferReset(t *testing.T) {
	b := NewCaptureBuffer(4)
	_, _ = b.Write([]byte("overflow"))
	require.True(t, b.Truncated)

	b.Reset()
	assert.Zero(t, b.Len())
	assert.False(t, b.Truncated)
}

func TestCaptureBufferDefaultLimit(t *testing.T) {
	b := NewCaptureBuffer(0)
	_, err := b.Write([]byte("x"))
	require.NoError(t, err)
	assert.False(t, b.Truncated)
}
