package ustream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
)

const writerSize = 4096

// flushWriter is the destination surface the Writer needs: byte, string
// and slice writes plus an explicit flush.
type flushWriter interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
	Flush() error
}

// In-memory destinations need no buffering, so they get a no-op Flush.
type (
	bytesBufferAdapter struct{ *bytes.Buffer }
	bufferAdapter      struct{ *Buffer }
)

func (bytesBufferAdapter) Flush() error { return nil }
func (bufferAdapter) Flush() error      { return nil }

// Writer provides re-encoding text output over a byte stream, os.Stdout
// for a real console. Values of any supported string representation are
// written as UTF-8 under the substituting policy. The first write error
// is tracked and all subsequent operations become no-ops.
type Writer struct {
	w         flushWriter
	count     int64 // total bytes written
	err       error // first error encountered
	autoFlush bool
}

var (
	_ io.Writer       = (*Writer)(nil)
	_ io.StringWriter = (*Writer)(nil)
	_ io.ByteWriter   = (*Writer)(nil)
)

// NewWriter creates a Writer over w. An existing bufio.Writer is used as
// is and in-memory buffers are written directly; anything else is
// wrapped in a bufio.Writer so Flush has its usual meaning.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	switch dst := w.(type) {
	case *bufio.Writer:
		return &Writer{w: dst}, nil
	case *bytes.Buffer:
		return &Writer{w: bytesBufferAdapter{dst}}, nil
	case *Buffer:
		return &Writer{w: bufferAdapter{dst}}, nil
	}
	return &Writer{w: bufio.NewWriterSize(w, writerSize)}, nil
}

// SetAutoFlush switches automatic flushing after every Put, Printf and
// Endl, and returns the Writer for chaining.
func (w *Writer) SetAutoFlush(on bool) *Writer {
	w.autoFlush = on
	return w
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(s string) (int, error) {
	if s == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(s)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteByte implements the io.ByteWriter interface.
func (w *Writer) WriteByte(c byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(c)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush writes any buffered data to the underlying stream.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// Result flushes and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Endl writes a newline and flushes, regardless of the auto-flush mode.
func (w *Writer) Endl() *Writer {
	_ = w.WriteByte('\n')
	w.Flush()
	return w
}

// Printf formats with fmt and writes the result. Counting, error
// tracking and auto-flush behave as for any other write.
func (w *Writer) Printf(format string, args ...any) *Writer {
	if w.err != nil {
		return w
	}
	n, err := fmt.Fprintf(w.w, format, args...)
	w.count += int64(n)
	w.setError(err)
	if w.autoFlush {
		w.Flush()
	}
	return w
}

// Printfln is Printf with a trailing newline.
func (w *Writer) Printfln(format string, args ...any) *Writer {
	return w.Printf(format+"\n", args...)
}

// Put writes each value in its textual form and returns the Writer for
// chaining. It accepts the three string representations (re-encoded to
// UTF-8 when needed), []byte as raw bytes, single byte, uint16 and rune
// values as one character, bool, the integer and float scalars in
// locale-independent decimal form, pointers in hexadecimal address form,
// and []string, [][]uint16, [][]rune with exactly one newline between
// elements: none before the first, none after the last. Any other type
// panics.
func (w *Writer) Put(vs ...any) *Writer {
	for _, v := range vs {
		w.put(v)
	}
	return w
}

func (w *Writer) put(v any) {
	if w.err != nil {
		return
	}
	switch x := v.(type) {
	case string:
		_, _ = w.WriteString(x)
	case []byte:
		_, _ = w.Write(x)
	case []uint16:
		_, _ = w.WriteString(UTF16ToUTF8(x))
	case []rune:
		_, _ = w.WriteString(EncodeUTF8(x))
	case rune:
		w.putRune(x)
	case byte:
		_ = w.WriteByte(x)
	case uint16:
		unit := [1]uint16{x}
		c, _, reason := decodePair(unit[:], 0)
		if reason != "" {
			substitutions.Inc()
		}
		w.putRune(c)
	case bool:
		_, _ = w.WriteString(strconv.FormatBool(x))
	case int:
		_, _ = w.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		_, _ = w.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		_, _ = w.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		_, _ = w.WriteString(strconv.FormatInt(x, 10))
	case uint:
		_, _ = w.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		_, _ = w.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		_, _ = w.WriteString(strconv.FormatUint(x, 10))
	case float32:
		_, _ = w.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		_, _ = w.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case []string:
		putSeq(w, x)
	case [][]uint16:
		putSeq(w, x)
	case [][]rune:
		putSeq(w, x)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Pointer, reflect.UnsafePointer:
			_, _ = w.WriteString(fmt.Sprintf("%p", v))
		default:
			panic(fmt.Sprintf("ustream: Put called with unsupported type %T", v))
		}
	}
	if w.autoFlush {
		w.Flush()
	}
}

// putRune writes a single code point in UTF-8 form.
func (w *Writer) putRune(r rune) {
	var scratch [4]byte
	_, _ = w.Write(appendUTF8(scratch[:0], r))
}

// putSeq writes a string sequence with one newline between elements.
func putSeq[T Text](w *Writer, seq []T) {
	for i, v := range seq {
		if i > 0 {
			_ = w.WriteByte('\n')
		}
		_, _ = w.WriteString(Convert[string](v))
	}
}
