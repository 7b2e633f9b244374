package ren

import (
	"errors"
	"fmt"

	"github.com/renlang/ren-go/internal/cell"
	"github.com/renlang/ren-go/internal/runtime"
)

// The runtime has its own raised-condition mechanism, distinct from Go
// error returns: its try/catch equivalent cannot observe a Go error that
// bypasses it. Three runtime signals (raised error, cancellation, exit)
// plus one host-local fault (no value) cross the seam as four distinct Go
// failure kinds; exactly one kind is active per propagation event.

// ErrCancelled reports that an asynchronous cancellation request was
// observed at an interruption-checked point. It carries no payload and has
// no runtime-visible representation; runtime-level recovery cannot catch
// it.
var ErrCancelled = errors.New("evaluation cancelled")

// ErrNoValue reports a host-local use of an uninitialized value. The
// runtime was never invoked, so this is deliberately not a raised-error
// wrapper and is never auto-converted to one; a layer with enough context
// may convert it explicitly.
var ErrNoValue = errors.New("value has no value")

// Error is a Value refinement whose payload denotes a raised condition. It
// is a first-class runtime value, distinct from Go's error mechanism.
type Error struct{ Value }

// NewError constructs an error value with the given message.
func NewError(msg string, opts ...Option) Error {
	return newErrorWith(msg, nil, opts)
}

// NewErrorWithFields constructs an error value carrying structured fields
// alongside the message.
func NewErrorWithFields(msg string, fields map[string]string, opts ...Option) Error {
	return newErrorWith(msg, fields, opts)
}

func newErrorWith(msg string, fields map[string]string, opts []Option) Error {
	// The payload must land in a specific engine's arena, so the engine is
	// resolved before the cell can be tagged; the cell then carries only
	// the arena handle.
	var s valueSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.eng == nil {
		s.eng = Default()
	}
	h := s.eng.core.AllocError(msg, fields)
	return Error{Value{cell: cell.MakeError(uint32(h)), eng: s.eng}}
}

// IsValid reports whether the underlying cell still denotes a raised-error
// payload.
func (e Error) IsValid() bool { return e.IsError() }

// Message returns the error payload's message.
func (e Error) Message() string {
	return e.payload().Message
}

// Fields returns the error payload's structured fields, if any.
func (e Error) Fields() map[string]string {
	return e.payload().Fields
}

func (e Error) payload() runtime.ErrPayload {
	return e.eng.core.Payload(e.handle())
}

func (e Error) handle() runtime.Handle {
	return runtime.Handle(e.cell.ErrorHandle())
}

// render formats the payload into the human-readable description carried
// across the seam. Done once at crossing time, never recomputed.
func (e Error) render() string {
	return e.payload().Message
}

// Apply raises this error inside the runtime: the engine enters its
// raised-condition state carrying the payload, and the matching
// RaisedError is returned for the caller to propagate. From code embedded
// inside a runtime-invoked callback this is the sanctioned way to signal
// failure upward, since the runtime's own recovery (Try) cannot observe a
// plain Go error that bypasses its raised-condition state.
func (e Error) Apply() error {
	e.eng.core.SetRaised(e.handle())
	return newRaised(e.Copy().mustError())
}

func (v Value) mustError() Error {
	ev, err := v.AsError()
	if err != nil {
		panic(err)
	}
	return ev
}

// RaisedError is the host-native form of a runtime-raised condition. It
// owns a copy of the originating error value and a description rendered
// once when the condition crossed the seam.
type RaisedError struct {
	value    Error
	rendered string
}

func newRaised(owned Error) *RaisedError {
	return &RaisedError{value: owned, rendered: owned.render()}
}

// Error returns the precomputed description.
func (e *RaisedError) Error() string { return e.rendered }

// ErrorValue returns the originating error value.
func (e *RaisedError) ErrorValue() Error { return e.value }

// Raise constructs an error value and returns its host-native failure form
// without committing the runtime's raised state. This is the form for
// dual-context code — code that may run either inside or outside a
// runtime-invoked callback: ordinary Go error handling observes it
// directly, and the evaluator seam knows to unwrap it into runtime raised
// state when it propagates through runtime-managed frames. Apply is only
// for code known to be strictly inside a callback.
func Raise(msg string, opts ...Option) error {
	return newRaised(NewError(msg, opts...))
}

// ExitError is the host-native form of an explicit program-termination
// directive issued by evaluated code. Runtime-level recovery (CatchQuit)
// can intercept it; once it escapes to the host, the embedder is expected
// to terminate with the carried code.
type ExitError struct {
	Code     int
	rendered string
}

// Exit returns an exit directive carrying the requested code.
func Exit(code int) error {
	return &ExitError{Code: code, rendered: fmt.Sprintf("exit requested with code %d", code)}
}

func (e *ExitError) Error() string { return e.rendered }

// TypeMismatchError reports a failed narrowing conversion. Local and
// recoverable; never a runtime-raised condition.
type TypeMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// EncodingError reports a checked narrowing of a character to a
// single-byte representation that cannot hold its codepoint. Local and
// recoverable; never a runtime-raised condition.
type EncodingError struct {
	Codepoint rune
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("codepoint U+%04X does not fit a single-byte encoding", e.Codepoint)
}
