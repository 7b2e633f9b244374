package ren

import (
	"errors"

	"github.com/renlang/ren-go/internal/cell"
)

// Step is one host callback invoked by the evaluator. The boundary between
// steps is an interruption-checked point; a step that runs long should
// poll Engine.Checkpoint itself to keep interruption latency bounded.
type Step func(e *Engine) (Value, error)

// Eval runs the steps under this engine and surfaces any abnormal
// condition as the matching host-native failure kind. The returned error
// is exactly one of: a *RaisedError (runtime raised condition, with its
// description rendered at this crossing), an *ExitError, ErrCancelled, or
// whatever plain error a step returned for faults the runtime never saw.
//
// Eval is the seam: a raised condition pending inside the runtime when a
// step returns is never silently swallowed, and a RaisedError propagating
// out of the last frame consumes the runtime's raised state.
func (e *Engine) Eval(steps ...Step) (Value, error) {
	e.core.MustBeAlive()
	var last Value
	for _, step := range steps {
		if err := e.Checkpoint(); err != nil {
			return Value{}, err
		}
		v, err := step(e)
		if err != nil {
			return Value{}, e.surface(err)
		}
		if h, ok := e.core.TakeRaised(); ok {
			// The step entered raised-condition state without
			// propagating it; surface it rather than losing it. The
			// raised slot's claim moves to the wrapper.
			ev := Error{Value{cell: cell.MakeError(uint32(h)), eng: e}}
			return Value{}, newRaised(ev)
		}
		last = v
	}
	if err := e.Checkpoint(); err != nil {
		return Value{}, err
	}
	return last, nil
}

// surface classifies a step failure at the seam. Raised errors commit and
// then consume the runtime's raised state as they cross outward; other
// kinds pass through unchanged — the bridge never re-raises a condition as
// a different kind.
func (e *Engine) surface(err error) error {
	var re *RaisedError
	if errors.As(err, &re) {
		if _, pending := e.core.Raised(); !pending {
			// Dual-context form (Raise): the runtime state was not
			// committed yet. Enter and immediately consume it so the
			// condition is observable by interception layers between
			// here and the host.
			e.core.SetRaised(re.value.handle())
		}
		if h, ok := e.core.TakeRaised(); ok {
			e.core.Release(h)
		}
		e.log.Debug("raised condition crossed to host", "description", re.rendered)
		return re
	}
	var xe *ExitError
	if errors.As(err, &xe) {
		e.log.Debug("exit directive crossed to host", "code", xe.Code)
		return xe
	}
	if errors.Is(err, ErrCancelled) {
		return ErrCancelled
	}
	return err
}

// Try is the runtime-level recovery construct for raised conditions. A
// raised error inside the steps is intercepted and returned as an ordinary
// error value — the result of Try, type-testable with IsError. Exit
// directives, cancellation, and local faults pass through untouched.
func (e *Engine) Try(steps ...Step) (Value, error) {
	v, err := e.Eval(steps...)
	if err == nil {
		return v, nil
	}
	var re *RaisedError
	if errors.As(err, &re) {
		return re.ErrorValue().Value, nil
	}
	return Value{}, err
}

// CatchQuit intercepts exit directives issued by the steps, reifying the
// requested code as an integer value. Raised errors, cancellation, and
// local faults pass through untouched.
func (e *Engine) CatchQuit(steps ...Step) (Value, error) {
	v, err := e.Eval(steps...)
	if err == nil {
		return v, nil
	}
	var xe *ExitError
	if errors.As(err, &xe) {
		return NewInteger(int64(xe.Code), InEngine(e)).Value, nil
	}
	return Value{}, err
}
