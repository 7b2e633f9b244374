// Package device implements the standard I/O device shim: the adapter
// between the runtime's device-request protocol and the host's native
// byte streams. It forwards raw bytes only; line editing, echo files, and
// stream aggregation are the embedder's business.
package device

import (
	"errors"
	"fmt"
	"io"
)

// Command is a device-request command code.
type Command uint8

const (
	CmdOpen Command = iota
	CmdClose
	CmdRead
	CmdWrite
	// CmdOpenEcho asks the device to copy console traffic to a file. The
	// shim does not support it; see ErrEchoUnsupported.
	CmdOpenEcho
)

func (c Command) String() string {
	switch c {
	case CmdOpen:
		return "open"
	case CmdClose:
		return "close"
	case CmdRead:
		return "read"
	case CmdWrite:
		return "write"
	case CmdOpenEcho:
		return "open-echo"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

// CodeStreamError is the single generic error code reported for any
// failure of the underlying host stream. The runtime does not distinguish
// stream failure causes.
const CodeStreamError = 1020

// ErrEchoUnsupported is returned for CmdOpenEcho. Failing loudly here is
// deliberate: callers need to know to build an external stream-aggregation
// layer instead of assuming the device echoes for them.
var ErrEchoUnsupported = errors.New(
	"device: echo to file is not supported by the shim; aggregate the host streams externally")

// DeviceError reports a failed device command with the generic stream
// error code.
type DeviceError struct {
	Err     error
	Command Command
	Code    int
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s failed (code %d): %v", e.Command, e.Code, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Request is one device-request record. The runtime fills Command, Null,
// Data and Length; the shim fills Actual and, on failure, ErrCode.
type Request struct {
	Data    []byte
	Length  int
	Actual  int
	ErrCode int
	Command Command
	Null    bool
}

// StdIO adapts host byte streams to the device protocol. One instance
// serves one engine; the evaluator is single-threaded, so the shim does
// not lock.
type StdIO struct {
	in     io.Reader
	out    io.Writer
	opened bool
	null   bool
}

// NewStdIO creates a shim over the given host streams.
func NewStdIO(in io.Reader, out io.Writer) *StdIO {
	return &StdIO{in: in, out: out}
}

// NewNull creates a sink-mode shim: writes are accepted as no-ops and
// reads report an EOF-like empty result.
func NewNull() *StdIO {
	return &StdIO{null: true}
}

// Opened reports whether the device has been opened.
func (d *StdIO) Opened() bool { return d.opened }

// Null reports whether the device is in sink mode.
func (d *StdIO) Null() bool { return d.null }

// Dispatch executes one device request. Stream failures set the generic
// error code on the request and return a DeviceError.
func (d *StdIO) Dispatch(req *Request) error {
	switch req.Command {
	case CmdOpen:
		// Opening twice is fine; null mode is sticky once requested.
		if req.Null {
			d.null = true
		}
		d.opened = true
		return nil

	case CmdClose:
		d.opened = false
		return nil

	case CmdWrite:
		return d.write(req)

	case CmdRead:
		return d.read(req)

	case CmdOpenEcho:
		return ErrEchoUnsupported

	default:
		return &DeviceError{
			Command: req.Command,
			Code:    CodeStreamError,
			Err:     fmt.Errorf("unknown command %d", req.Command),
		}
	}
}

func (d *StdIO) write(req *Request) error {
	if d.null {
		req.Actual = req.Length
		return nil
	}
	if d.out == nil {
		req.ErrCode = CodeStreamError
		return &DeviceError{Command: CmdWrite, Code: CodeStreamError, Err: errors.New("no output stream")}
	}
	n, err := d.out.Write(req.Data[:req.Length])
	req.Actual = n
	if err != nil {
		req.ErrCode = CodeStreamError
		return &DeviceError{Command: CmdWrite, Code: CodeStreamError, Err: err}
	}
	return nil
}

func (d *StdIO) read(req *Request) error {
	req.Actual = 0
	if d.null {
		return nil
	}
	if d.in == nil {
		req.ErrCode = CodeStreamError
		return &DeviceError{Command: CmdRead, Code: CodeStreamError, Err: errors.New("no input stream")}
	}
	n, err := d.in.Read(req.Data[:req.Length])
	req.Actual = n
	if err != nil && err != io.EOF {
		req.ErrCode = CodeStreamError
		return &DeviceError{Command: CmdRead, Code: CodeStreamError, Err: err}
	}
	return nil
}

// Write is an io.Writer convenience over CmdWrite.
func (d *StdIO) Write(p []byte) (int, error) {
	req := Request{Command: CmdWrite, Data: p, Length: len(p)}
	if err := d.Dispatch(&req); err != nil {
		return req.Actual, err
	}
	return req.Actual, nil
}

// Read is an io.Reader convenience over CmdRead. Sink mode reports
// io.EOF, matching an exhausted stream.
func (d *StdIO) Read(p []byte) (int, error) {
	req := Request{Command: CmdRead, Data: p, Length: len(p)}
	if err := d.Dispatch(&req); err != nil {
		return req.Actual, err
	}
	if req.Actual == 0 {
		return 0, io.EOF
	}
	return req.Actual, nil
}
