// Package ustream provides Unicode-aware console I/O and conversions
// between the three in-memory string representations: UTF-8 bytes
// (string), UTF-16 code units ([]uint16) and UTF-32 code points
// ([]rune).
//
// Conversions come in two policies. The substituting policy never fails:
// malformed input becomes U+FFFD and processing continues. The strict
// policy stops at the first malformed unit and reports its position.
// The Reader and Writer use the substituting policy throughout.
package ustream

import (
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	replacementChar = '�'
	maxRune         = '\U0010FFFF'

	// UTF-16 surrogate ranges and the first code point needing a pair.
	surr1    = 0xd800
	surr2    = 0xdc00
	surr3    = 0xe000
	surrSelf = 0x10000

	// UTF-8 lead and continuation byte templates.
	tx    = 0b10000000
	t2    = 0b11000000
	t3    = 0b11100000
	t4    = 0b11110000
	maskx = 0b00111111

	// Largest code point representable in 1, 2 and 3 bytes. Anything at
	// or below these limits arriving in a longer form is overlong.
	rune1Max = 1<<7 - 1
	rune2Max = 1<<11 - 1
	rune3Max = 1<<16 - 1
)

// Text is the closed set of supported string representations.
type Text interface {
	string | []uint16 | []rune
}

// Convert re-encodes v into the To representation under the substituting
// policy. Converting to the source representation returns v unchanged;
// slices are not cloned.
func Convert[To, From Text](v From) To {
	if out, ok := any(v).(To); ok {
		return out
	}
	var out To
	switch dst := any(&out).(type) {
	case *string:
		switch src := any(v).(type) {
		case []uint16:
			*dst = UTF16ToUTF8(src)
		case []rune:
			*dst = EncodeUTF8(src)
		}
	case *[]uint16:
		switch src := any(v).(type) {
		case string:
			*dst = UTF8ToUTF16(src)
		case []rune:
			*dst = EncodeUTF16(src)
		}
	case *[]rune:
		switch src := any(v).(type) {
		case string:
			*dst = DecodeUTF8(src)
		case []uint16:
			*dst = DecodeUTF16(src)
		}
	}
	return out
}

// substitutions counts U+FFFD replacements made by substituting
// conversions. Striped so that concurrent conversions don't contend.
var substitutions = xsync.NewCounter()

func substitute() rune {
	substitutions.Inc()
	return replacementChar
}

// Substitutions returns the total number of replacement code points
// emitted by substituting conversions since process start or the last
// ResetSubstitutions call.
func Substitutions() int64 { return substitutions.Value() }

// ResetSubstitutions zeroes the substitution counter.
func ResetSubstitutions() { substitutions.Reset() }

// decodeRune returns the code point starting at s[i], the number of bytes
// it occupies, and an empty reason. For a malformed sequence it returns
// (U+FFFD, 1, reason), so decoding resynchronizes at the next byte.
func decodeRune[S string | []byte](s S, i int) (rune, int, string) {
	b0 := s[i]
	switch {
	case b0 < tx: // 0xxxxxxx
		return rune(b0), 1, ""

	case b0 < t2: // 10xxxxxx
		return replacementChar, 1, "stray continuation byte"

	case b0 < t3: // 110xxxxx 10xxxxxx
		if i+1 >= len(s) {
			return replacementChar, 1, "truncated sequence"
		}
		b1 := s[i+1]
		if b1&0xC0 != tx {
			return replacementChar, 1, "bad continuation byte"
		}
		r := rune(b0&0x1F)<<6 | rune(b1&maskx)
		if r <= rune1Max {
			return replacementChar, 1, "overlong encoding"
		}
		return r, 2, ""

	case b0 < t4: // 1110xxxx 10xxxxxx 10xxxxxx
		if i+2 >= len(s) {
			return replacementChar, 1, "truncated sequence"
		}
		b1, b2 := s[i+1], s[i+2]
		if b1&0xC0 != tx || b2&0xC0 != tx {
			return replacementChar, 1, "bad continuation byte"
		}
		r := rune(b0&0x0F)<<12 | rune(b1&maskx)<<6 | rune(b2&maskx)
		if r <= rune2Max {
			return replacementChar, 1, "overlong encoding"
		}
		if surr1 <= r && r < surr3 {
			return replacementChar, 1, "surrogate code point"
		}
		return r, 3, ""

	case b0 < 0xF8: // 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx
		if i+3 >= len(s) {
			return replacementChar, 1, "truncated sequence"
		}
		b1, b2, b3 := s[i+1], s[i+2], s[i+3]
		if b1&0xC0 != tx || b2&0xC0 != tx || b3&0xC0 != tx {
			return replacementChar, 1, "bad continuation byte"
		}
		r := rune(b0&0x07)<<18 | rune(b1&maskx)<<12 | rune(b2&maskx)<<6 | rune(b3&maskx)
		if r <= rune3Max {
			return replacementChar, 1, "overlong encoding"
		}
		if r > maxRune {
			return replacementChar, 1, "code point out of range"
		}
		return r, 4, ""

	default:
		return replacementChar, 1, "invalid lead byte"
	}
}

// decodePair returns the code point starting at us[i] and the number of
// units it occupies. Unpaired surrogates report (U+FFFD, 1, reason).
func decodePair(us []uint16, i int) (rune, int, string) {
	u := us[i]
	switch {
	case u < surr1 || surr3 <= u:
		return rune(u), 1, ""
	case u < surr2:
		if i+1 < len(us) {
			if u2 := us[i+1]; surr2 <= u2 && u2 < surr3 {
				return surrSelf + (rune(u)-surr1)<<10 + (rune(u2) - surr2), 2, ""
			}
		}
		return replacementChar, 1, "unpaired high surrogate"
	default:
		return replacementChar, 1, "unpaired low surrogate"
	}
}

// appendUTF8 appends the UTF-8 form of r. Surrogate-range and
// out-of-range values encode as U+FFFD.
func appendUTF8(dst []byte, r rune) []byte {
	switch {
	case uint32(r) <= rune1Max:
		return append(dst, byte(r))
	case uint32(r) <= rune2Max:
		return append(dst, t2|byte(r>>6), tx|byte(r)&maskx)
	case uint32(r) <= rune3Max:
		if surr1 <= r && r < surr3 {
			r = substitute()
		}
		return append(dst, t3|byte(r>>12), tx|byte(r>>6)&maskx, tx|byte(r)&maskx)
	case uint32(r) <= maxRune:
		return append(dst, t4|byte(r>>18), tx|byte(r>>12)&maskx, tx|byte(r>>6)&maskx, tx|byte(r)&maskx)
	default:
		r = substitute()
		return append(dst, t3|byte(r>>12), tx|byte(r>>6)&maskx, tx|byte(r)&maskx)
	}
}

// appendUTF16 appends the UTF-16 form of r, one unit for the BMP and a
// surrogate pair above it. Surrogate-range and out-of-range values
// encode as U+FFFD.
func appendUTF16(dst []uint16, r rune) []uint16 {
	switch {
	case 0 <= r && r < surr1, surr3 <= r && r < surrSelf:
		return append(dst, uint16(r))
	case surrSelf <= r && r <= maxRune:
		r -= surrSelf
		return append(dst, uint16(surr1+r>>10), uint16(surr2+r&0x3FF))
	default:
		return append(dst, uint16(substitute()))
	}
}

// DecodeUTF8 converts UTF-8 bytes to code points under the substituting
// policy. The result is identical to Go's built-in []rune conversion.
func DecodeUTF8(s string) []rune {
	rs := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size, reason := decodeRune(s, i)
		if reason != "" {
			substitutions.Inc()
		}
		rs = append(rs, r)
		i += size
	}
	return rs
}

// DecodeUTF8Strict converts UTF-8 bytes to code points, stopping at the
// first malformed sequence with an EncodingError carrying its byte offset.
func DecodeUTF8Strict(s string) ([]rune, error) {
	rs := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size, reason := decodeRune(s, i)
		if reason != "" {
			return nil, &EncodingError{Encoding: "UTF-8", Offset: i, Reason: reason}
		}
		rs = append(rs, r)
		i += size
	}
	return rs, nil
}

// EncodeUTF8 converts code points to UTF-8 bytes.
func EncodeUTF8(rs []rune) string {
	dst := make([]byte, 0, len(rs)*3)
	for _, r := range rs {
		dst = appendUTF8(dst, r)
	}
	return string(dst)
}

// DecodeUTF16 converts UTF-16 code units to code points under the
// substituting policy.
func DecodeUTF16(us []uint16) []rune {
	rs := make([]rune, 0, len(us))
	for i := 0; i < len(us); {
		r, size, reason := decodePair(us, i)
		if reason != "" {
			substitutions.Inc()
		}
		rs = append(rs, r)
		i += size
	}
	return rs
}

// DecodeUTF16Strict converts UTF-16 code units to code points, stopping
// at the first unpaired surrogate with an EncodingError carrying its
// unit index.
func DecodeUTF16Strict(us []uint16) ([]rune, error) {
	rs := make([]rune, 0, len(us))
	for i := 0; i < len(us); {
		r, size, reason := decodePair(us, i)
		if reason != "" {
			return nil, &EncodingError{Encoding: "UTF-16", Offset: i, Reason: reason}
		}
		rs = append(rs, r)
		i += size
	}
	return rs, nil
}

// EncodeUTF16 converts code points to UTF-16 code units.
func EncodeUTF16(rs []rune) []uint16 {
	dst := make([]uint16, 0, len(rs))
	for _, r := range rs {
		dst = appendUTF16(dst, r)
	}
	return dst
}

// UTF8ToUTF16 re-encodes UTF-8 bytes as UTF-16 code units directly,
// without an intermediate []rune, under the substituting policy.
func UTF8ToUTF16(s string) []uint16 {
	dst := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		r, size, reason := decodeRune(s, i)
		if reason != "" {
			substitutions.Inc()
		}
		dst = appendUTF16(dst, r)
		i += size
	}
	return dst
}

// UTF8ToUTF16Strict re-encodes UTF-8 bytes as UTF-16 code units,
// stopping at the first malformed sequence.
func UTF8ToUTF16Strict(s string) ([]uint16, error) {
	dst := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		r, size, reason := decodeRune(s, i)
		if reason != "" {
			return nil, &EncodingError{Encoding: "UTF-8", Offset: i, Reason: reason}
		}
		dst = appendUTF16(dst, r)
		i += size
	}
	return dst, nil
}

// UTF16ToUTF8 re-encodes UTF-16 code units as UTF-8 bytes directly,
// without an intermediate []rune, under the substituting policy.
func UTF16ToUTF8(us []uint16) string {
	dst := make([]byte, 0, len(us)*3)
	for i := 0; i < len(us); {
		r, size, reason := decodePair(us, i)
		if reason != "" {
			substitutions.Inc()
		}
		dst = appendUTF8(dst, r)
		i += size
	}
	return string(dst)
}

// UTF16ToUTF8Strict re-encodes UTF-16 code units as UTF-8 bytes,
// stopping at the first unpaired surrogate.
func UTF16ToUTF8Strict(us []uint16) (string, error) {
	dst := make([]byte, 0, len(us)*3)
	for i := 0; i < len(us); {
		r, size, reason := decodePair(us, i)
		if reason != "" {
			return "", &EncodingError{Encoding: "UTF-16", Offset: i, Reason: reason}
		}
		dst = appendUTF8(dst, r)
		i += size
	}
	return string(dst), nil
}
