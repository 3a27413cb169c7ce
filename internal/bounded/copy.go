// Package bounded provides the truncating copy used to size and fill
// fixed-capacity result buffers.
//
// Copy never relies on a terminator in the source: the source length is
// always explicit, so binary data with embedded zero bytes is copied
// verbatim. The destination, when it has any room at all, always ends up
// holding a zero byte right after the copied prefix.
package bounded

// Copy copies as much of src into dst as fits while keeping one byte of
// dst for a terminating zero.
//
// needed is always len(src); written is the number of source bytes that
// were copied. A result with needed >= len(dst) means src was truncated and
// a buffer of needed+1 bytes would have held all of it.
//
// When dst is empty nothing is written.
func Copy(dst, src []byte) (needed, written int) {
	needed = len(src)
	if len(dst) == 0 {
		return needed, 0
	}

	written = copy(dst[:len(dst)-1], src)
	dst[written] = 0
	return needed, written
}

// Truncated reports whether a Copy into a destination of capacity bytes
// dropped part of a source that needed the given number of bytes.
func Truncated(needed, capacity int) bool {
	return needed >= capacity
}

// Writer appends successive pieces into a fixed buffer with Copy, keeping
// the buffer zero-terminated after every piece. It tracks the total number
// of bytes the pieces need, so a caller can size a second buffer after a
// truncated first attempt.
type Writer struct {
	buf     []byte
	pos     int
	needed  int
	overrun bool
}

// NewWriter returns a Writer filling buf from the start.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Write appends p. Once a piece has been truncated later pieces are only
// counted.
func (w *Writer) Write(p []byte) {
	w.needed += len(p)
	if w.overrun {
		return
	}

	n, written := Copy(w.buf[w.pos:], p)
	w.pos += written
	if written < n {
		w.overrun = true
	}
}

// WriteString appends s.
func (w *Writer) WriteString(s string) {
	w.Write([]byte(s))
}

// Len returns the number of bytes written so far, excluding the terminator.
func (w *Writer) Len() int {
	return w.pos
}

// Needed returns the number of bytes all pieces required, excluding the
// terminator.
func (w *Writer) Needed() int {
	return w.needed
}

// Truncated reports whether any piece did not fit.
func (w *Writer) Truncated() bool {
	return w.overrun
}
