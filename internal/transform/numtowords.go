package transform

import (
	"math"

	"github.com/aitch25/lib-mysqludf-str/internal/bounded"
)

var (
	smallWords = [20]string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}

	tensWords = [10]string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
	}

	// scaleWords[i] names the group 10^(3i). An int64 spans seven groups.
	scaleWords = [7]string{
		"", "thousand", "million", "billion", "trillion", "quadrillion", "quintillion",
	}
)

const negativeWord = "negative "

// MaxNumToWordsLen is an upper bound on the length of NumToWords output for
// any int64, excluding the terminating zero byte.
var MaxNumToWordsLen = maxNumToWordsLen()

func maxNumToWordsLen() int {
	longest := 0
	for v := 1; v < 1000; v++ {
		w := bounded.NewWriter(nil)
		writeGroup(w, v)
		longest = max(longest, w.Needed())
	}

	n := len(negativeWord)
	for i, scale := range scaleWords {
		if i > 0 {
			n++ // separating space
		}
		n += longest
		if scale != "" {
			n += 1 + len(scale)
		}
	}
	return n
}

// NumToWords renders n in US-English words into dst, e.g. -67423 becomes
// "negative sixty-seven thousand four hundred twenty-three".
//
// dst receives a terminating zero byte after the words when it has room, so
// a destination of MaxNumToWordsLen+1 bytes always holds the full rendering.
// needed is the length of the full rendering; written is how much of it
// fit.
func NumToWords(dst []byte, n int64) (needed, written int) {
	w := bounded.NewWriter(dst)
	writeNumber(w, n)
	return w.Needed(), w.Len()
}

// NumToWordsString is NumToWords returning a string.
func NumToWordsString(n int64) string {
	buf := make([]byte, MaxNumToWordsLen+1)
	_, written := NumToWords(buf, n)
	return string(buf[:written])
}

func writeNumber(w *bounded.Writer, n int64) {
	if n == 0 {
		w.WriteString(smallWords[0])
		return
	}

	var mag uint64
	switch {
	case n == math.MinInt64:
		mag = uint64(math.MaxInt64) + 1
		w.WriteString(negativeWord)
	case n < 0:
		mag = uint64(-n)
		w.WriteString(negativeWord)
	default:
		mag = uint64(n)
	}

	var groups [len(scaleWords)]int
	top := 0
	for i := 0; mag > 0; i++ {
		groups[i] = int(mag % 1000)
		mag /= 1000
		top = i
	}

	first := true
	for i := top; i >= 0; i-- {
		if groups[i] == 0 {
			continue
		}
		if !first {
			w.WriteString(" ")
		}
		first = false

		writeGroup(w, groups[i])
		if scaleWords[i] != "" {
			w.WriteString(" ")
			w.WriteString(scaleWords[i])
		}
	}
}

// writeGroup renders 1 <= v <= 999.
func writeGroup(w *bounded.Writer, v int) {
	hundreds, rest := v/100, v%100

	if hundreds > 0 {
		w.WriteString(smallWords[hundreds])
		w.WriteString(" hundred")
		if rest == 0 {
			return
		}
		w.WriteString(" ")
	}

	switch {
	case rest < 20:
		w.WriteString(smallWords[rest])
	case rest%10 == 0:
		w.WriteString(tensWords[rest/10])
	default:
		w.WriteString(tensWords[rest/10])
		w.WriteString("-")
		w.WriteString(smallWords[rest%10])
	}
}
