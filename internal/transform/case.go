package transform

// UcFirst writes src into dst with its first byte upper-cased when it is a
// lowercase ASCII letter. It returns min(len(dst), len(src)).
func UcFirst(dst, src []byte) int {
	n := copy(dst, src)
	if n > 0 {
		dst[0] = upper(dst[0])
	}
	return n
}

// UcWords writes src into dst with the first byte of every word
// upper-cased. Words are maximal runs of bytes that are not ASCII
// whitespace. It returns min(len(dst), len(src)).
func UcWords(dst, src []byte) int {
	n := min(len(dst), len(src))
	atWordStart := true
	for i := 0; i < n; i++ {
		c := src[i]
		if isSpace(c) {
			atWordStart = true
			dst[i] = c
			continue
		}
		if atWordStart {
			c = upper(c)
			atWordStart = false
		}
		dst[i] = c
	}
	return n
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// isSpace matches the C locale's isspace.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
