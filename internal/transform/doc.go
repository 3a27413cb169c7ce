// Package transform implements the byte transformations behind the str_*
// SQL functions.
//
// Every transform writes into a caller-supplied destination and never past
// its end. The length-preserving transforms (Rot13, Translate, UcFirst,
// UcWords, Shuffle) and Xor return the number of bytes written, which is
// the length of the source truncated to the destination. NumToWords reports
// both the bytes it needed and the bytes it wrote, the way bounded.Copy
// does.
//
// Only ASCII is special-cased: letters outside A-Z and a-z, and all bytes
// >= 0x80, pass through unchanged. Inputs are treated as raw bytes and may
// contain zero bytes.
//
// Rot13, Translate, UcWords and Xor are also available as
// golang.org/x/text/transform.Transformer values for streaming input of
// any length.
package transform
