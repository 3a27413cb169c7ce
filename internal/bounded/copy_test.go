package bounded

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(n int) []byte {
	return bytes.Repeat([]byte{'a'}, n)
}

func TestCopy_ZeroCapacity(t *testing.T) {
	buf := filled(10)

	needed, written := Copy(buf[:0], []byte("test"))

	assert.Equal(t, 4, needed)
	assert.Equal(t, 0, written)
	assert.Equal(t, byte('a'), buf[0], "nothing may be written")
}

func TestCopy_EmptySource(t *testing.T) {
	for _, capacity := range []int{1, 10} {
		buf := filled(10)

		needed, written := Copy(buf[:capacity], nil)

		assert.Equal(t, 0, needed)
		assert.Equal(t, 0, written)
		assert.Equal(t, byte(0), buf[0])
		assert.Equal(t, byte('a'), buf[1])
	}
}

func TestCopy_Truncation(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     string // bytes of buf[:capacity+1] after the copy
		written  int
	}{
		{"only room for terminator", 1, "\x00a", 0},
		{"one byte", 2, "t\x00a", 1},
		{"three bytes", 4, "tes\x00a", 3},
		{"exact fit", 5, "test\x00a", 4},
		{"larger buffer", 10, "test\x00a", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := filled(11)

			needed, written := Copy(buf[:tt.capacity], []byte("test"))

			assert.Equal(t, 4, needed, "needed is the full source length")
			assert.Equal(t, tt.written, written)
			assert.Equal(t, tt.want, string(buf[:len(tt.want)]))
			assert.Equal(t, tt.capacity <= 4, Truncated(needed, tt.capacity))
		})
	}
}

func TestCopy_EmbeddedZero(t *testing.T) {
	buf := filled(8)
	src := []byte{'a', 0, 'b'}

	needed, written := Copy(buf, src)

	assert.Equal(t, 3, needed)
	assert.Equal(t, 3, written)
	assert.Equal(t, []byte{'a', 0, 'b', 0}, buf[:4])
}

func TestWriter_Pieces(t *testing.T) {
	buf := filled(32)
	w := NewWriter(buf)

	w.WriteString("one")
	w.WriteString(" ")
	w.WriteString("hundred")

	assert.Equal(t, "one hundred", string(buf[:w.Len()]))
	assert.Equal(t, byte(0), buf[w.Len()])
	assert.Equal(t, 11, w.Needed())
	assert.False(t, w.Truncated())
}

func TestWriter_TruncatedKeepsCounting(t *testing.T) {
	buf := filled(6)
	w := NewWriter(buf)

	w.WriteString("one")
	w.WriteString(" hundred")
	w.WriteString(" thousand")

	assert.True(t, w.Truncated())
	assert.Equal(t, 5, w.Len())
	assert.Equal(t, "one h\x00", string(buf))
	assert.Equal(t, 20, w.Needed())
}
