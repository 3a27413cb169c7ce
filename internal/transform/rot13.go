package transform

// Rot13 writes src with every ASCII letter rotated 13 places within its
// case into dst. It returns the number of bytes written,
// min(len(dst), len(src)). Applying it twice restores the input.
func Rot13(dst, src []byte) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = rot13Byte(src[i])
	}
	return n
}

func rot13Byte(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return 'a' + (c-'a'+13)%26
	case c >= 'A' && c <= 'Z':
		return 'A' + (c-'A'+13)%26
	default:
		return c
	}
}
