package ustream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// NoStopByte disables the stop-byte condition of ReadLines.
const NoStopByte = -1

// Reader provides buffered, token-oriented input over a byte stream,
// os.Stdin for a real console. Consumed-but-unreturned bytes stay in an
// internal buffer behind a cursor, so a token can be pushed back even
// across fill boundaries. A Reader is single-goroutine.
type Reader struct {
	src   io.ByteReader
	buf   Buffer
	pos   int   // cursor into buf
	count int64 // total bytes pulled from src
	err   error // first non-EOF source error
	errw  io.Writer
}

// NewReader creates a Reader over r. If r implements io.ByteReader
// (bytes.Reader, strings.Reader, bufio.Reader) it is used directly;
// anything else is wrapped in a bufio.Reader to make byte reads cheap.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	src, ok := r.(io.ByteReader)
	if !ok {
		src = bufio.NewReaderSize(r, chunkSize)
	}
	return &Reader{src: src, errw: os.Stderr}, nil
}

// WithErrorOutput sets the sink Scan reports parse errors to and returns
// the configured Reader for chaining. The default is os.Stderr.
func (r *Reader) WithErrorOutput(w io.Writer) *Reader {
	r.errw = w
	return r
}

// Count returns the total number of bytes pulled from the source.
func (r *Reader) Count() int64 { return r.count }

// Err returns the first non-EOF source error. End of input is a normal
// condition and never recorded here.
func (r *Reader) Err() error { return r.err }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Clear resets the session: the cursor returns to zero and the buffered
// bytes are released.
func (r *Reader) Clear() {
	r.pos = 0
	r.buf.Release()
}

// fill pulls bytes from the source into the buffer, stopping at the
// chunk boundary or right after a newline so that one fill never spans
// much past one line of interactive input. It reports whether at least
// one byte arrived.
func (r *Reader) fill() bool {
	if r.err != nil {
		return false
	}
	chunk := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(chunk)
	p := *chunk
	n := 0
	for n < chunkSize {
		b, err := r.src.ReadByte()
		if err != nil {
			if err != io.EOF {
				r.setError(err)
			}
			break
		}
		p[n] = b
		n++
		if b == '\n' {
			break
		}
	}
	if n == 0 {
		return false
	}
	r.buf.Append(p[:n])
	r.count += int64(n)
	return true
}

// get returns the byte at the cursor, filling the buffer when it is
// exhausted. End of input is the ok=false result, not an error.
func (r *Reader) get() (byte, bool) {
	if r.pos >= r.buf.Len() {
		if !r.fill() {
			return 0, false
		}
	}
	b := r.buf.data[r.pos]
	r.pos++
	return b, true
}

// unget steps the cursor back one byte.
func (r *Reader) unget() {
	if r.pos > 0 {
		r.pos--
	}
}

// ReadWord skips leading whitespace, then returns the next run of
// non-whitespace bytes. The single whitespace byte terminating the word
// is consumed, except a newline, which is pushed back so a following
// line read sees the line boundary. At end of input the partial
// (possibly empty) word is returned.
func (r *Reader) ReadWord() string {
	for {
		b, ok := r.get()
		if !ok {
			return ""
		}
		if !isSpace(b) {
			r.unget()
			break
		}
	}
	start := r.pos
	for {
		b, ok := r.get()
		if !ok {
			return string(r.buf.data[start:r.pos])
		}
		if isSpace(b) {
			word := string(r.buf.data[start : r.pos-1])
			if b == '\n' {
				r.unget()
			}
			return word
		}
	}
}

// ReadLine returns the bytes up to the next newline. The newline is
// consumed but not included, and carriage returns are dropped. At end
// of input the partial line is returned.
func (r *Reader) ReadLine() string {
	var line []byte
	for {
		b, ok := r.get()
		if !ok || b == '\n' {
			return string(line)
		}
		if b != '\r' {
			line = append(line, b)
		}
	}
}

// ReadLines extracts lines until a stop condition holds. A line ends at
// a newline or at stopByte (NoStopByte for none); carriage returns are
// dropped. With stopOnEmpty, an empty completed line stops extraction
// and is not included. A line completed by stopByte is included, then
// extraction stops. End of input always stops; a non-empty partial tail
// line is included.
func (r *Reader) ReadLines(stopOnEmpty bool, stopByte int) []string {
	var lines []string
	var line []byte
	for {
		b, ok := r.get()
		if !ok {
			if len(line) > 0 {
				lines = append(lines, string(line))
			}
			return lines
		}
		if b == '\r' {
			continue
		}
		if b == '\n' || int(b) == stopByte {
			if stopOnEmpty && len(line) == 0 {
				return lines
			}
			lines = append(lines, string(line))
			if int(b) == stopByte {
				return lines
			}
			line = line[:0]
			continue
		}
		line = append(line, b)
	}
}

// Scan reads one word and stores it through dst, converting to the
// destination type. Supported destinations: *string, *[]uint16, *[]rune
// (the whole word), *byte, *uint16, *rune (its first byte, UTF-16 unit
// or code point), and *int, *int64, *uint, *uint64, *float32, *float64
// (base-10, locale-independent). An empty word (end of input) leaves dst
// untouched. A token that does not parse leaves dst untouched, writes a
// ParseError to the error output and returns normally. Scan returns the
// Reader for chaining; any other destination type panics.
func (r *Reader) Scan(dst any) *Reader {
	tok := r.ReadWord()
	if tok == "" {
		return r
	}
	if err := scanToken(dst, tok); err != nil {
		fmt.Fprintln(r.errw, &ParseError{Token: tok, Err: err})
	}
	return r
}

// scanToken converts tok into dst, leaving dst unchanged on failure.
func scanToken(dst any, tok string) error {
	switch d := dst.(type) {
	case *string:
		*d = tok
	case *[]uint16:
		*d = UTF8ToUTF16(tok)
	case *[]rune:
		*d = DecodeUTF8(tok)
	case *byte:
		*d = tok[0]
	case *uint16:
		*d = UTF8ToUTF16(tok)[0]
	case *rune:
		c, _, reason := decodeRune(tok, 0)
		if reason != "" {
			substitutions.Inc()
		}
		*d = c
	case *int:
		n, err := parseSigned[int](tok, strconv.IntSize)
		if err != nil {
			return err
		}
		*d = n
	case *int64:
		n, err := parseSigned[int64](tok, 64)
		if err != nil {
			return err
		}
		*d = n
	case *uint:
		n, err := parseUnsigned[uint](tok, strconv.IntSize)
		if err != nil {
			return err
		}
		*d = n
	case *uint64:
		n, err := parseUnsigned[uint64](tok, 64)
		if err != nil {
			return err
		}
		*d = n
	case *float32:
		f, err := parseFloat[float32](tok, 32)
		if err != nil {
			return err
		}
		*d = f
	case *float64:
		f, err := parseFloat[float64](tok, 64)
		if err != nil {
			return err
		}
		*d = f
	default:
		panic(fmt.Sprintf("ustream: Scan called with unsupported destination type %T", dst))
	}
	return nil
}

// Word reads the next word and converts it to T.
func Word[T Text](r *Reader) T { return Convert[T](r.ReadWord()) }

// Line reads the next line and converts it to T.
func Line[T Text](r *Reader) T { return Convert[T](r.ReadLine()) }

// Lines extracts lines as ReadLines does and converts each to T.
func Lines[T Text](r *Reader, stopOnEmpty bool, stopByte int) []T {
	lines := r.ReadLines(stopOnEmpty, stopByte)
	out := make([]T, len(lines))
	for i, line := range lines {
		out[i] = Convert[T](line)
	}
	return out
}
