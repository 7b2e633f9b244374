package device

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCloseLifecycle(t *testing.T) {
	d := NewStdIO(strings.NewReader(""), &bytes.Buffer{})
	assert.False(t, d.Opened())

	require.NoError(t, d.Dispatch(&Request{Command: CmdOpen}))
	assert.True(t, d.Opened())

	// A second open must not disturb the device.
	require.NoError(t, d.Dispatch(&Request{Command: CmdOpen}))
	assert.True(t, d.Opened())

	require.NoError(t, d.Dispatch(&Request{Command: CmdClose}))
	assert.False(t, d.Opened())
}

func TestWriteForwardsToHostStream(t *testing.T) {
	var out bytes.Buffer
	d := NewStdIO(nil, &out)

	req := Request{Command: CmdWrite, Data: []byte("hello, runtime\n"), Length: 15}
	require.NoError(t, d.Dispatch(&req))
	assert.Equal(t, 15, req.Actual)
	assert.Equal(t, "hello, runtime\n", out.String())
}

func TestReadForwardsFromHostStream(t *testing.T) {
	d := NewStdIO(strings.NewReader("input line"), nil)

	buf := make([]byte, 5)
	req := Request{Command: CmdRead, Data: buf, Length: 5}
	require.NoError(t, d.Dispatch(&req))
	assert.Equal(t, 5, req.Actual)
	assert.Equal(t, "input", string(buf[:req.Actual]))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("pipe burst")
}

func TestWriteFailureMapsToGenericCode(t *testing.T) {
	d := NewStdIO(nil, failingWriter{})

	req := Request{Command: CmdWrite, Data: []byte("x"), Length: 1}
	err := d.Dispatch(&req)
	require.Error(t, err)
	assert.Equal(t, CodeStreamError, req.ErrCode)

	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, CodeStreamError, devErr.Code)
	assert.Equal(t, CmdWrite, devErr.Command)
}

func TestNullDeviceSwallowsWritesAndReportsEmptyReads(t *testing.T) {
	d := NewNull()
	assert.True(t, d.Null())

	wreq := Request{Command: CmdWrite, Data: []byte("discarded"), Length: 9}
	require.NoError(t, d.Dispatch(&wreq))
	assert.Equal(t, 9, wreq.Actual, "null device reports the full length as written")

	rreq := Request{Command: CmdRead, Data: make([]byte, 8), Length: 8}
	require.NoError(t, d.Dispatch(&rreq))
	assert.Equal(t, 0, rreq.Actual)

	n, err := d.Read(make([]byte, 8))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNullModeIsStickyAcrossOpens(t *testing.T) {
	d := NewStdIO(strings.NewReader("data"), &bytes.Buffer{})
	require.NoError(t, d.Dispatch(&Request{Command: CmdOpen, Null: true}))
	assert.True(t, d.Null())

	req := Request{Command: CmdRead, Data: make([]byte, 4), Length: 4}
	require.NoError(t, d.Dispatch(&req))
	assert.Equal(t, 0, req.Actual)
}

func TestOpenEchoFailsLoudly(t *testing.T) {
	d := NewStdIO(nil, &bytes.Buffer{})
	err := d.Dispatch(&Request{Command: CmdOpenEcho})
	require.ErrorIs(t, err, ErrEchoUnsupported)
}

func TestReadAtEOF(t *testing.T) {
	d := NewStdIO(strings.NewReader(""), nil)
	req := Request{Command: CmdRead, Data: make([]byte, 4), Length: 4}
	require.NoError(t, d.Dispatch(&req), "EOF is not a device error")
	assert.Equal(t, 0, req.Actual)
}
