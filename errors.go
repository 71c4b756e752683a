package ustream

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil interface.
	ErrNilIO = errors.New("ustream: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrInvalidEncoding indicates that a strict conversion met a malformed
	// code unit sequence. The wrapping EncodingError carries the offset.
	ErrInvalidEncoding = errors.New("ustream: invalid encoding")

	// ErrIndexOutOfRange indicates a checked buffer access outside the
	// logical length. Out-of-range access never clamps.
	ErrIndexOutOfRange = errors.New("ustream: index out of range")

	// ErrTooLarge is the panic value raised when a buffer cannot grow
	// to the required capacity.
	ErrTooLarge = errors.New("ustream: buffer too large")

	// ErrParse indicates that a scanned token could not be converted to
	// the destination type. The wrapping ParseError carries the token.
	ErrParse = errors.New("ustream: parse error")
)

// EncodingError reports the position of the first malformed unit seen by a
// strict conversion. Offset counts bytes for UTF-8 input and code units for
// UTF-16 input.
type EncodingError struct {
	Encoding string // "UTF-8" or "UTF-16"
	Offset   int
	Reason   string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ustream: invalid %s at %s %d: %s", e.Encoding, e.offsetUnit(), e.Offset, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrInvalidEncoding }

func (e *EncodingError) offsetUnit() string {
	if e.Encoding == "UTF-16" {
		return "unit"
	}
	return "byte"
}

// ParseError reports a token that could not be converted by Scan. It is
// written to the Reader's error output and never returned to the caller;
// the scan destination keeps its previous value.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ustream: cannot parse %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
