package ren

import (
	"fmt"
	"strconv"
	"time"

	"github.com/renlang/ren-go/internal/cell"
	"github.com/renlang/ren-go/internal/runtime"
)

// Kind re-exports the cell discriminant.
type Kind = cell.Kind

const (
	KindUninit  = cell.KindUninit
	KindUnset   = cell.KindUnset
	KindNone    = cell.KindNone
	KindLogic   = cell.KindLogic
	KindChar    = cell.KindChar
	KindInteger = cell.KindInteger
	KindFloat   = cell.KindFloat
	KindDate    = cell.KindDate
	KindError   = cell.KindError
)

// Value is the host-side proxy over one runtime-owned cell. It owns the
// cell by value and borrows a non-owning reference to the engine whose
// arena backs any indirect payload.
//
// The zero Value is uninitialized: no kind, no engine. Kind tests are
// total on it; anything that needs a payload or an engine is not.
type Value struct {
	cell cell.Cell
	eng  *Engine
}

// Option configures value construction.
type Option func(*valueSettings)

type valueSettings struct {
	eng *Engine
}

// InEngine constructs the value under an explicit engine instead of the
// registered default.
func InEngine(e *Engine) Option {
	return func(s *valueSettings) { s.eng = e }
}

// newValue finishes two-phase construction: the cell is already tagged,
// and binding to a resolved engine commits the value. The half-built
// state never escapes this function.
func newValue(c cell.Cell, opts []Option) Value {
	var s valueSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.eng == nil {
		s.eng = Default()
	}
	s.eng.core.MustBeAlive()
	return Value{cell: c, eng: s.eng}
}

// Engine returns the engine this value was constructed under. Nil for an
// uninitialized value.
func (v Value) Engine() *Engine { return v.eng }

// Kind returns the cell discriminant. Pure and total.
func (v Value) Kind() Kind { return v.cell.Kind() }

// Kind tests. Each reads only the discriminant; they never fail.

func (v Value) IsUninit() bool  { return v.cell.Kind() == KindUninit }
func (v Value) IsUnset() bool   { return v.cell.Kind() == KindUnset }
func (v Value) IsNone() bool    { return v.cell.Kind() == KindNone }
func (v Value) IsLogic() bool   { return v.cell.Kind() == KindLogic }
func (v Value) IsChar() bool    { return v.cell.Kind() == KindChar }
func (v Value) IsInteger() bool { return v.cell.Kind() == KindInteger }
func (v Value) IsFloat() bool   { return v.cell.Kind() == KindFloat }
func (v Value) IsDate() bool    { return v.cell.Kind() == KindDate }
func (v Value) IsError() bool   { return v.cell.Kind() == KindError }

// IsTrue reports a logic value holding true.
func (v Value) IsTrue() bool { return v.IsLogic() && v.cell.Logic() }

// IsFalse reports a logic value holding false.
func (v Value) IsFalse() bool { return v.IsLogic() && !v.cell.Logic() }

// IsTruthy applies the runtime's conditional semantics: none and logic
// false are falsey, every other initialized value is truthy. Testing an
// uninitialized value is a host-local fault and reports ErrNoValue — it is
// never expressed as a runtime-raised condition, because the runtime was
// never invoked to produce it.
func (v Value) IsTruthy() (bool, error) {
	switch v.cell.Kind() {
	case KindUninit, KindUnset:
		return false, ErrNoValue
	case KindNone:
		return false, nil
	case KindLogic:
		return v.cell.Logic(), nil
	default:
		return true, nil
	}
}

// Copy duplicates the value. The cell is copied outright; an indirect
// payload gains a runtime-assisted claim so both values own it
// independently.
func (v Value) Copy() Value {
	if v.cell.Indirect() {
		v.eng.core.Retain(runtime.Handle(v.cell.ErrorHandle()))
	}
	return v
}

// Release drops the value's claim on any indirect payload. Scalar values
// hold no runtime-side claim and releasing them is a no-op. Using the
// value after Release is a precondition violation.
func (v Value) Release() {
	if v.cell.Indirect() && v.eng != nil {
		v.eng.core.Release(runtime.Handle(v.cell.ErrorHandle()))
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.cell.Kind() {
	case KindUninit:
		return "#[uninitialized]"
	case KindUnset:
		return "#[unset]"
	case KindNone:
		return "none"
	case KindLogic:
		if v.cell.Logic() {
			return "true"
		}
		return "false"
	case KindChar:
		return "#" + strconv.QuoteRune(v.cell.Char())
	case KindInteger:
		return strconv.FormatInt(v.cell.Integer(), 10)
	case KindFloat:
		return strconv.FormatFloat(v.cell.Float(), 'g', -1, 64)
	case KindDate:
		return time.Unix(0, v.cell.DateNanos()).UTC().Format(time.RFC3339Nano)
	case KindError:
		return v.eng.core.Payload(runtime.Handle(v.cell.ErrorHandle())).Message
	default:
		return fmt.Sprintf("#[%s]", v.cell.Kind())
	}
}
