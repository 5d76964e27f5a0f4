package jitter

import "unicode/utf16"

// HashString returns the absolute value of the 32-bit rolling hash of s.
//
// The hash walks the UTF-16 code units of s, computing h = h*31 + unit with
// two's-complement wraparound at 32 bits, which yields the same value as the
// classic Java/JavaScript string hash for the same text. The absolute value is
// returned as int64 so that the magnitude of math.MinInt32 is representable.
//
// Invalid UTF-8 sequences are hashed as U+FFFD.
func HashString(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
