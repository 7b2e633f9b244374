// Package cell defines the fixed-layout tagged cell that backs every
// host-side value. A cell is one discriminant byte plus a 64-bit payload
// word: scalars are stored inline in the word, compound kinds (error)
// store a handle index into engine-managed storage instead of a Go
// pointer, so the runtime is free to relocate or reclaim the backing
// allocation without invalidating cells.
package cell

import (
	"fmt"
	"math"
)

// Kind is the cell discriminant. The zero value is KindUninit, which marks
// a cell that has been allocated but not yet tagged.
type Kind uint8

const (
	KindUninit Kind = iota
	KindUnset
	KindNone
	KindLogic
	KindChar
	KindInteger
	KindFloat
	KindDate
	KindError
)

// String returns the lowercase kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUninit:
		return "uninitialized"
	case KindUnset:
		return "unset"
	case KindNone:
		return "none"
	case KindLogic:
		return "logic"
	case KindChar:
		return "char"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is the raw tagged value representation. Cells are only built through
// the Make* entry points below; the zero Cell is the uninitialized marker.
type Cell struct {
	bits uint64
	kind Kind
}

// Kind returns the discriminant. Total; valid on any cell including the
// zero cell.
func (c Cell) Kind() Kind { return c.kind }

// IsUninit reports whether the cell has never been tagged.
func (c Cell) IsUninit() bool { return c.kind == KindUninit }

func MakeUnset() Cell { return Cell{kind: KindUnset} }

func MakeNone() Cell { return Cell{kind: KindNone} }

func MakeLogic(b bool) Cell {
	var bits uint64
	if b {
		bits = 1
	}
	return Cell{kind: KindLogic, bits: bits}
}

func MakeChar(r rune) Cell {
	return Cell{kind: KindChar, bits: uint64(uint32(r))}
}

func MakeInteger(i int64) Cell {
	return Cell{kind: KindInteger, bits: uint64(i)}
}

func MakeFloat(f float64) Cell {
	return Cell{kind: KindFloat, bits: math.Float64bits(f)}
}

// MakeDate stores the instant as UTC nanoseconds since the Unix epoch.
func MakeDate(unixNanos int64) Cell {
	return Cell{kind: KindDate, bits: uint64(unixNanos)}
}

// MakeError stores a handle index into the owning engine's payload arena.
// The handle must have been issued by that arena; zero is never a valid
// handle.
func MakeError(handle uint32) Cell {
	if handle == 0 {
		panic("cell: error cell requires a non-zero payload handle")
	}
	return Cell{kind: KindError, bits: uint64(handle)}
}

// The typed readers below require a matching discriminant. Callers narrow
// through the value layer first; a mismatch here is a binding bug, not a
// user error, so it panics rather than returning garbage bits.

func (c Cell) mustBe(k Kind) {
	if c.kind != k {
		panic(fmt.Sprintf("cell: %s read on %s cell", k, c.kind))
	}
}

func (c Cell) Logic() bool {
	c.mustBe(KindLogic)
	return c.bits != 0
}

func (c Cell) Char() rune {
	c.mustBe(KindChar)
	return rune(uint32(c.bits))
}

func (c Cell) Integer() int64 {
	c.mustBe(KindInteger)
	return int64(c.bits)
}

func (c Cell) Float() float64 {
	c.mustBe(KindFloat)
	return math.Float64frombits(c.bits)
}

func (c Cell) DateNanos() int64 {
	c.mustBe(KindDate)
	return int64(c.bits)
}

func (c Cell) ErrorHandle() uint32 {
	c.mustBe(KindError)
	return uint32(c.bits)
}

// Indirect reports whether the cell's payload is a handle into
// runtime-managed storage rather than inline scalar bits.
func (c Cell) Indirect() bool { return c.kind == KindError }
