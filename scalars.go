package ren

import (
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/renlang/ren-go/internal/cell"
)

// Constructors. Each tags a fresh cell through a runtime construction
// entry point, then binds it to the resolved engine. With no InEngine
// option the registered default engine is used.

// Unset constructs the unset value, the runtime's "no useful result".
func Unset(opts ...Option) Value {
	return newValue(cell.MakeUnset(), opts)
}

// None constructs the none value.
func None(opts ...Option) Value {
	return newValue(cell.MakeNone(), opts)
}

// NewLogic constructs a logic value.
func NewLogic(b bool, opts ...Option) Logic {
	return Logic{newValue(cell.MakeLogic(b), opts)}
}

// NewChar constructs a character value from a codepoint.
func NewChar(r rune, opts ...Option) Char {
	return Char{newValue(cell.MakeChar(r), opts)}
}

// NewInteger constructs an integer value.
func NewInteger(i int64, opts ...Option) Integer {
	return Integer{newValue(cell.MakeInteger(i), opts)}
}

// NewFloat constructs a float value.
func NewFloat(f float64, opts ...Option) Float {
	return Float{newValue(cell.MakeFloat(f), opts)}
}

// NewDate constructs a date value. The instant is kept at nanosecond
// precision; the location is not preserved.
func NewDate(t time.Time, opts ...Option) Date {
	return Date{newValue(cell.MakeDate(t.UnixNano()), opts)}
}

// Refined views. Each narrows Value to one capability; the underlying
// cell layout is shared, only the accessor set changes. A view obtained
// through an As* conversion is always valid.

// Logic is a Value known to hold a logic cell.
type Logic struct{ Value }

// IsValid reports whether the underlying cell still matches this view.
func (l Logic) IsValid() bool { return l.IsLogic() }

// Bool extracts the native boolean. Total on a valid view.
func (l Logic) Bool() bool { return l.cell.Logic() }

// Char is a Value known to hold a character cell.
type Char struct{ Value }

func (c Char) IsValid() bool { return c.IsChar() }

// Rune extracts the codepoint. Total on a valid view.
func (c Char) Rune() rune { return c.cell.Char() }

// Codepoint returns the codepoint as an integer.
func (c Char) Codepoint() int64 { return int64(c.cell.Char()) }

// Byte extracts the character into a single-byte representation. The
// narrowing is checked against the Latin-1 repertoire: a codepoint outside
// it fails with an EncodingError instead of being silently truncated.
func (c Char) Byte() (byte, error) {
	r := c.cell.Char()
	b, ok := charmap.ISO8859_1.EncodeRune(r)
	if !ok {
		return 0, &EncodingError{Codepoint: r}
	}
	return b, nil
}

// Integer is a Value known to hold an integer cell.
type Integer struct{ Value }

func (i Integer) IsValid() bool { return i.IsInteger() }

// Int64 extracts the native integer. Total on a valid view.
func (i Integer) Int64() int64 { return i.cell.Integer() }

// Float is a Value known to hold a float cell.
type Float struct{ Value }

func (f Float) IsValid() bool { return f.IsFloat() }

// Float64 extracts the native float. Total on a valid view.
func (f Float) Float64() float64 { return f.cell.Float() }

// Date is a Value known to hold a date cell.
type Date struct{ Value }

func (d Date) IsValid() bool { return d.IsDate() }

// Time extracts the instant in UTC. Total on a valid view.
func (d Date) Time() time.Time { return time.Unix(0, d.cell.DateNanos()).UTC() }

// Narrowing conversions. Each checks the discriminant and fails with a
// TypeMismatchError when it does not match; payload bits are never
// reinterpreted.

func (v Value) AsLogic() (Logic, error) {
	if !v.IsLogic() {
		return Logic{}, &TypeMismatchError{Want: KindLogic, Got: v.Kind()}
	}
	return Logic{v}, nil
}

func (v Value) AsChar() (Char, error) {
	if !v.IsChar() {
		return Char{}, &TypeMismatchError{Want: KindChar, Got: v.Kind()}
	}
	return Char{v}, nil
}

func (v Value) AsInteger() (Integer, error) {
	if !v.IsInteger() {
		return Integer{}, &TypeMismatchError{Want: KindInteger, Got: v.Kind()}
	}
	return Integer{v}, nil
}

func (v Value) AsFloat() (Float, error) {
	if !v.IsFloat() {
		return Float{}, &TypeMismatchError{Want: KindFloat, Got: v.Kind()}
	}
	return Float{v}, nil
}

func (v Value) AsDate() (Date, error) {
	if !v.IsDate() {
		return Date{}, &TypeMismatchError{Want: KindDate, Got: v.Kind()}
	}
	return Date{v}, nil
}

func (v Value) AsError() (Error, error) {
	if !v.IsError() {
		return Error{}, &TypeMismatchError{Want: KindError, Got: v.Kind()}
	}
	return Error{v}, nil
}
