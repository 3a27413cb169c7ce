package udf

import "fmt"

// SizeBound is the most bytes any row of a bound Instance will write.
type SizeBound int

// OutputBuffer is a fixed-capacity result area the host lends to one call
// at a time. It may be reused across rows.
type OutputBuffer struct {
	buf []byte
	n   int
}

// NewOutputBuffer returns a buffer of the given capacity.
func NewOutputBuffer(capacity SizeBound) *OutputBuffer {
	return &OutputBuffer{buf: make([]byte, capacity)}
}

// Cap returns the buffer capacity.
func (b *OutputBuffer) Cap() int {
	return len(b.buf)
}

// Len returns the number of bytes written by the last call.
func (b *OutputBuffer) Len() int {
	return b.n
}

// Bytes returns the bytes written by the last call. The slice aliases the
// buffer and is overwritten by the next call.
func (b *OutputBuffer) Bytes() []byte {
	return b.buf[:b.n]
}

// Ensure grows the buffer to at least capacity bytes, discarding its
// contents.
func (b *OutputBuffer) Ensure(capacity SizeBound) {
	if int(capacity) > len(b.buf) {
		b.buf = make([]byte, capacity)
	}
	b.n = 0
}

func (b *OutputBuffer) set(n int) {
	if n < 0 || n > len(b.buf) {
		panic(fmt.Sprintf("udf: transform wrote %d bytes into a %d byte buffer", n, len(b.buf)))
	}
	b.n = n
}

// Result is the outcome of one row: NULL, or the written bytes of the
// declared type.
type Result struct {
	Null  bool
	Type  Type
	Bytes []byte
}

// NullResult is the NULL row result.
var NullResult = Result{Null: true, Type: TypeNull}

// String renders the result for diagnostics.
func (r Result) String() string {
	if r.Null {
		return "NULL"
	}
	if r.Type == TypeBlob {
		return fmt.Sprintf("x'%X'", r.Bytes)
	}
	return string(r.Bytes)
}
