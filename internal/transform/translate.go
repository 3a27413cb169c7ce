package transform

import (
	"errors"
	"fmt"
)

// ErrTableLength is returned by NewTable when the from and to sets differ
// in length.
var ErrTableLength = errors.New("translate: from and to must have the same length")

// Table maps each byte value to its replacement.
type Table struct {
	to [256]byte
}

// NewTable builds the byte mapping from[k] -> to[k]. When a byte occurs
// more than once in from, its first occurrence decides the mapping.
func NewTable(from, to []byte) (*Table, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w (%d != %d)", ErrTableLength, len(from), len(to))
	}

	t := &Table{}
	for i := range t.to {
		t.to[i] = byte(i)
	}

	var seen [256]bool
	for k, c := range from {
		if seen[c] {
			continue
		}
		seen[c] = true
		t.to[c] = to[k]
	}
	return t, nil
}

// Map returns the replacement for c.
func (t *Table) Map(c byte) byte {
	return t.to[c]
}

// Apply writes src translated through the table into dst and returns the
// number of bytes written, min(len(dst), len(src)).
func (t *Table) Apply(dst, src []byte) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = t.to[src[i]]
	}
	return n
}

// Translate is NewTable followed by Apply.
func Translate(dst, src, from, to []byte) (int, error) {
	t, err := NewTable(from, to)
	if err != nil {
		return 0, err
	}
	return t.Apply(dst, src), nil
}
