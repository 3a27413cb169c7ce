package transform

import (
	"bytes"

	"golang.org/x/text/transform"
)

// NewRot13Transformer returns a stateless transform.Transformer applying
// Rot13.
func NewRot13Transformer() transform.Transformer {
	return rot13Transformer{}
}

type rot13Transformer struct{ transform.NopResetter }

func (rot13Transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := Rot13(dst, src)
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, n, err
}

// Transformer returns a stateless transform.Transformer applying t.
func (t *Table) Transformer() transform.Transformer {
	return tableTransformer{table: t}
}

type tableTransformer struct {
	transform.NopResetter
	table *Table
}

func (tt tableTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := tt.table.Apply(dst, src)
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, n, err
}

// NewUcFirstTransformer returns a transform.Transformer applying UcFirst to
// the whole stream. Reset makes the next byte the first one again.
func NewUcFirstTransformer() transform.Transformer {
	return &ucFirstTransformer{}
}

type ucFirstTransformer struct {
	done bool
}

func (t *ucFirstTransformer) Reset() {
	t.done = false
}

func (t *ucFirstTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := copy(dst, src)
	if n > 0 && !t.done {
		dst[0] = upper(dst[0])
		t.done = true
	}
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, n, err
}

// NewUcWordsTransformer returns a transform.Transformer applying UcWords to
// the whole stream; words may span Transform calls.
func NewUcWordsTransformer() transform.Transformer {
	return &ucWordsTransformer{atWordStart: true}
}

type ucWordsTransformer struct {
	atWordStart bool
}

func (t *ucWordsTransformer) Reset() {
	t.atWordStart = true
}

func (t *ucWordsTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		c := src[i]
		switch {
		case isSpace(c):
			t.atWordStart = true
		case t.atWordStart:
			c = upper(c)
			t.atWordStart = false
		}
		dst[i] = c
	}
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, n, err
}

// NewXorTransformer returns a transform.Transformer XOR-ing the stream
// with key, repeating key from its start as needed. Unlike Xor, the key is
// cycled rather than padded, and the stream always sets the output length.
// An empty key passes the stream through.
func NewXorTransformer(key []byte) transform.Transformer {
	return &xorTransformer{key: bytes.Clone(key)}
}

type xorTransformer struct {
	key []byte
	pos int
}

func (t *xorTransformer) Reset() {
	t.pos = 0
}

func (t *xorTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := min(len(dst), len(src))
	if len(t.key) == 0 {
		copy(dst[:n], src)
	} else {
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ t.key[t.pos]
			t.pos = (t.pos + 1) % len(t.key)
		}
	}
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, n, err
}
