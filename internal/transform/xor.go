package transform

// XorLen returns the length of the Xor of inputs of lengths a and b.
func XorLen(a, b int) int {
	return max(a, b)
}

// Xor writes the XOR of a and b into dst. The longer input sets the output
// length. The shorter input is aligned with the start of the longer one;
// past its end the longer input's bytes pass through, as if the shorter
// one were padded with zero bytes. An empty input therefore yields the
// other input unchanged, and Xor(a, b) equals Xor(b, a).
//
// The shorter input is not repeated: Xor of 0E33 and E0 must be EE33 in
// either order, which leaves the 0x33 untouched.
//
// It returns the number of bytes written, min(len(dst), XorLen(len(a), len(b))).
func Xor(dst, a, b []byte) int {
	long, short := a, b
	if len(b) > len(a) {
		long, short = b, a
	}

	n := copy(dst, long)
	for i := 0; i < min(n, len(short)); i++ {
		dst[i] ^= short[i]
	}
	return n
}
