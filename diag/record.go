// Package diag converts the binding's failure kinds into structured,
// machine-readable condition records, and maintains a schema registry so
// embedders can publish the record shapes they emit.
package diag

import (
	"errors"

	ren "github.com/renlang/ren-go"
	"github.com/renlang/ren-go/device"
)

// Record kinds. Exactly one applies per record, mirroring the one
// condition kind active per propagation event.
const (
	KindRaised       = "raised"
	KindCancelled    = "cancelled"
	KindExit         = "exit"
	KindNoValue      = "no-value"
	KindTypeMismatch = "type-mismatch"
	KindEncoding     = "encoding"
	KindDevice       = "device"
	KindInternal     = "internal"
)

// Record is one rendered condition. The message is the description
// computed when the condition crossed the seam; it is carried, not
// recomputed.
type Record struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Code    int               `json:"code,omitempty"`
}

// Error implements the error interface so records can travel where errors
// go.
func (r *Record) Error() string { return r.Message }

// RecordedError is implemented by failure types that know their own
// record shape. FromError recognizes it before falling back to kind
// switching, so embedder-defined failures can join the taxonomy without
// changes here.
type RecordedError interface {
	error
	ToRecord() *Record
}

// FromError renders any binding failure into a Record. Unknown errors
// become internal records; nil maps to nil.
func FromError(err error) *Record {
	if err == nil {
		return nil
	}

	var recorded RecordedError
	if errors.As(err, &recorded) {
		return recorded.ToRecord()
	}

	var raised *ren.RaisedError
	if errors.As(err, &raised) {
		return &Record{
			Kind:    KindRaised,
			Message: raised.Error(),
			Fields:  raised.ErrorValue().Fields(),
		}
	}

	var exit *ren.ExitError
	if errors.As(err, &exit) {
		return &Record{Kind: KindExit, Message: exit.Error(), Code: exit.Code}
	}

	if errors.Is(err, ren.ErrCancelled) {
		return &Record{Kind: KindCancelled, Message: err.Error()}
	}

	if errors.Is(err, ren.ErrNoValue) {
		return &Record{Kind: KindNoValue, Message: err.Error()}
	}

	var mismatch *ren.TypeMismatchError
	if errors.As(err, &mismatch) {
		return &Record{
			Kind:    KindTypeMismatch,
			Message: mismatch.Error(),
			Fields: map[string]string{
				"want": mismatch.Want.String(),
				"got":  mismatch.Got.String(),
			},
		}
	}

	var encoding *ren.EncodingError
	if errors.As(err, &encoding) {
		return &Record{Kind: KindEncoding, Message: encoding.Error()}
	}

	var dev *device.DeviceError
	if errors.As(err, &dev) {
		return &Record{Kind: KindDevice, Message: dev.Error(), Code: dev.Code}
	}

	return &Record{Kind: KindInternal, Message: err.Error()}
}
