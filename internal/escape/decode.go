// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles the escape sequences of JSON strings.
package escape

import "unicode/utf16"

// Single reports the byte denoted by the single-character escape "\c".
// It reports false if c does not name a single-character escape; "u" is
// not a single-character escape.
func Single(c byte) (byte, bool) {
	switch c {
	case '"', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// Hex4 decodes exactly four hexadecimal digits from the front of data into a
// UTF-16 code unit. It reports false if data has fewer than four bytes or any
// of the first four is not a hex digit.
func Hex4(data []byte) (rune, bool) {
	if len(data) < 4 {
		return 0, false
	}
	var v rune
	for _, b := range data[:4] {
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, false
		}
	}
	return v, true
}

// IsHighSurrogate reports whether r is the first half of a UTF-16 surrogate
// pair.
func IsHighSurrogate(r rune) bool { return 0xd800 <= r && r < 0xdc00 }

// IsLowSurrogate reports whether r is the second half of a UTF-16 surrogate
// pair.
func IsLowSurrogate(r rune) bool { return 0xdc00 <= r && r < 0xe000 }

// Pair combines a high and low surrogate into a single code point.
// Either half that does not fit yields the Unicode replacement rune.
func Pair(hi, lo rune) rune { return utf16.DecodeRune(hi, lo) }
