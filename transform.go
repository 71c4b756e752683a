package ustream

import (
	"encoding/binary"

	"golang.org/x/text/transform"
)

// NewWideDecoder returns a transform.Transformer converting
// byte-serialized UTF-16 to UTF-8 under the substituting policy. A
// leading byte order mark selects the unit order and is not emitted;
// without one the stream is read in the package default Order. Unpaired
// surrogates and a dangling odd byte at the end of input become U+FFFD.
func NewWideDecoder() transform.Transformer { return &wideDecoder{} }

// NewWideEncoder returns a transform.Transformer converting UTF-8 to
// byte-serialized UTF-16 in the given unit order (the package default
// Order when nil), optionally preceded by a byte order mark. Malformed
// UTF-8 input becomes U+FFFD.
func NewWideEncoder(order binary.ByteOrder, bom bool) transform.Transformer {
	if order == nil {
		order = Order
	}
	return &wideEncoder{order: order, bom: bom}
}

var (
	_ transform.Transformer = (*wideDecoder)(nil)
	_ transform.Transformer = (*wideEncoder)(nil)
)

type wideDecoder struct {
	order   binary.ByteOrder
	started bool // unit order settled, BOM consumed if present
}

func (d *wideDecoder) Reset() {
	d.order = nil
	d.started = false
}

func (d *wideDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !d.started {
		if len(src) < 2 && !atEOF {
			return 0, 0, transform.ErrShortSrc
		}
		if len(src) >= 2 {
			switch {
			case src[0] == 0xFE && src[1] == 0xFF:
				d.order = BE
				nSrc = 2
			case src[0] == 0xFF && src[1] == 0xFE:
				d.order = LE
				nSrc = 2
			}
		}
		if d.order == nil {
			d.order = Order
		}
		d.started = true
	}

	for nSrc < len(src) {
		r, size, reason := decodeWide(d.order, src[nSrc:], atEOF)
		if size == 0 {
			return nDst, nSrc, transform.ErrShortSrc
		}
		var scratch [4]byte
		b := appendUTF8(scratch[:0], r)
		if nDst+len(b) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], b)
		nSrc += size
		if reason != "" {
			substitutions.Inc()
		}
	}
	return nDst, nSrc, nil
}

// decodeWide decodes one code point from byte-serialized UTF-16. Size 0
// means p ends in a partial unit or pair and more input may arrive.
func decodeWide(order binary.ByteOrder, p []byte, atEOF bool) (rune, int, string) {
	if len(p) < 2 {
		if !atEOF {
			return 0, 0, ""
		}
		return replacementChar, len(p), "dangling byte"
	}
	u := order.Uint16(p)
	switch {
	case u < surr1 || surr3 <= u:
		return rune(u), 2, ""
	case u < surr2:
		if len(p) < 4 {
			if !atEOF {
				return 0, 0, ""
			}
			return replacementChar, 2, "unpaired high surrogate"
		}
		if u2 := order.Uint16(p[2:]); surr2 <= u2 && u2 < surr3 {
			return surrSelf + (rune(u)-surr1)<<10 + (rune(u2) - surr2), 4, ""
		}
		return replacementChar, 2, "unpaired high surrogate"
	default:
		return replacementChar, 2, "unpaired low surrogate"
	}
}

type wideEncoder struct {
	order binary.ByteOrder
	bom   bool
	wrote bool // BOM already emitted
}

func (e *wideEncoder) Reset() { e.wrote = false }

func (e *wideEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !e.wrote {
		if e.bom {
			if len(dst) < 2 {
				return 0, 0, transform.ErrShortDst
			}
			e.order.PutUint16(dst, 0xFEFF)
			nDst = 2
		}
		e.wrote = true
	}

	for nSrc < len(src) {
		r, size, reason := decodeRune(src, nSrc)
		if reason == "truncated sequence" && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		var units [2]uint16
		us := appendUTF16(units[:0], r)
		if nDst+2*len(us) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		for _, u := range us {
			e.order.PutUint16(dst[nDst:], u)
			nDst += 2
		}
		nSrc += size
		if reason != "" {
			substitutions.Inc()
		}
	}
	return nDst, nSrc, nil
}
