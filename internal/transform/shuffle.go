package transform

import "github.com/aitch25/lib-mysqludf-str/internal/random"

// Shuffle writes a random permutation of src into dst using a Fisher-Yates
// shuffle driven by rng. The output holds exactly the bytes of src,
// reordered. It returns min(len(dst), len(src)); when dst is shorter than
// src only the copied prefix is permuted.
func Shuffle(dst, src []byte, rng *random.State) int {
	n := copy(dst, src)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		dst[i], dst[j] = dst[j], dst[i]
	}
	return n
}

// RandomBytes fills the first n bytes of dst from rng and returns the
// number of bytes written, min(len(dst), n).
func RandomBytes(dst []byte, n int, rng *random.State) int {
	n = max(0, min(len(dst), n))
	_, _ = rng.Read(dst[:n])
	return n
}
