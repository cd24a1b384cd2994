// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     hexbridge
// Description: Codec between raw bytes and ASCII-safe hex-escaped text
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

// Package hexbridge converts between raw buffers and the text form used to
// carry binary payloads through text-only transports.
//
// Decode reads uppercase hex pairs as bytes and copies every other visible
// character through as UTF-8. Encode escapes DEL and C0 control bytes
// (except TAB and LF) as two uppercase hex digits. The two are inverses only
// for the control-byte direction.
package hexbridge

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/msto63/hivemind/internal/hivemind/failure"
)

const hexDigits = "0123456789ABCDEF"

// Decode converts hex-bridge text into bytes.
// A hex digit that is not followed by a second one is a lex error.
func Decode(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	err := scan(text, func(b []byte) { out = append(out, b...) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of bytes Decode would produce for text
func Count(text string) (int, error) {
	n := 0
	if err := scan(text, func(b []byte) { n += len(b) }); err != nil {
		return 0, err
	}
	return n, nil
}

func scan(text string, emit func([]byte)) error {
	var pair [1]byte
	for pos := 0; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])

		if hi, ok := hexValue(r); ok {
			if pos+1 >= len(text) {
				return failure.Lex(fmt.Sprintf("lone hex digit %q at end of data", r), pos, 0, 0)
			}
			lo, ok := hexValue(rune(text[pos+1]))
			if !ok {
				return failure.Lex(fmt.Sprintf("hex digit %q not followed by a second hex digit", r), pos, 0, 0)
			}
			pair[0] = hi<<4 | lo
			emit(pair[:])
			pos += 2
			continue
		}

		if !unicode.IsSpace(r) {
			emit([]byte(text[pos : pos+size]))
		}
		pos += size
	}
	return nil
}

func hexValue(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	default:
		return 0, false
	}
}

// Encode escapes DEL and C0 control bytes other than TAB and LF as two
// uppercase hex digits and copies every other byte unchanged.
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if NeedsEscape(b) {
			out = append(out, hexDigits[b>>4], hexDigits[b&0x0F])
			continue
		}
		out = append(out, b)
	}
	return out
}

// NeedsEscape reports whether Encode writes b as a hex pair
func NeedsEscape(b byte) bool {
	if b == '\t' || b == '\n' {
		return false
	}
	return b < 0x20 || b == 0x7F
}
