package ustream

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the byte order assumed for BOM-less wide streams.
	Order = LE
)

// whitespace marks the bytes ReadWord treats as token separators: space,
// horizontal tab, line feed, vertical tab, form feed and carriage return.
var whitespace = [256]bool{
	' ':  true,
	'\t': true,
	'\n': true,
	'\v': true,
	'\f': true,
	'\r': true,
}

func isSpace(b byte) bool { return whitespace[b] }

// parseSigned parses a base-10 integer token into any signed type.
// strconv is locale-independent, so the result does not depend on the
// process environment.
func parseSigned[T constraints.Signed](tok string, bits int) (T, error) {
	n, err := strconv.ParseInt(tok, 10, bits)
	return T(n), err
}

// parseUnsigned parses a base-10 integer token into any unsigned type.
func parseUnsigned[T constraints.Unsigned](tok string, bits int) (T, error) {
	n, err := strconv.ParseUint(tok, 10, bits)
	return T(n), err
}

// parseFloat parses a decimal floating-point token.
func parseFloat[T constraints.Float](tok string, bits int) (T, error) {
	f, err := strconv.ParseFloat(tok, bits)
	return T(f), err
}
