package device

import "bytes"

// DefaultCaptureLimit caps output harvested from an evaluation (1MB).
// Evaluated code can print without bound; the cap keeps a runaway loop
// from exhausting host memory before a cancellation request lands.
const DefaultCaptureLimit = 1 * 1024 * 1024

// CaptureBuffer collects device output up to a limit, then discards the
// rest while still satisfying the io.Writer contract. Pair it with
// NewStdIO as the output stream to harvest what evaluated code printed.
type CaptureBuffer struct {
	buf       bytes.Buffer
	limit     int
	Truncated bool
}

// NewCaptureBuffer creates a capture buffer with the given byte limit.
// A non-positive limit falls back to DefaultCaptureLimit.
func NewCaptureBuffer(limit int) *CaptureBuffer {
	if limit <= 0 {
		limit = DefaultCaptureLimit
	}
	return &CaptureBuffer{limit: limit}
}

// Write implements io.Writer. Bytes past the limit are dropped and
// Truncated is set; the reported count stays len(p) so the device shim
// never sees a short write for data it was told to discard.
func (b *CaptureBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.Truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.Truncated = true
		if _, err := b.buf.Write(p[:room]); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

// String returns the captured output.
func (b *CaptureBuffer) String() string { return b.buf.String() }

// Bytes returns the captured output.
func (b *CaptureBuffer) Bytes() []byte { return b.buf.Bytes() }

// Len returns the captured byte count.
func (b *CaptureBuffer) Len() int { return b.buf.Len() }

// Reset clears the buffer and the truncation flag.
func (b *CaptureBuffer) Reset() {
	b.buf.Reset()
	b.Truncated = false
}
