package ustream

import "fmt"

// minBufferCap is the smallest capacity a Buffer allocates.
const minBufferCap = 64

// Buffer is a growable byte buffer with amortized-constant append. The
// zero Buffer is empty and ready to use. A Buffer owns its storage
// exclusively and must not be used from more than one goroutine.
type Buffer struct {
	data []byte // len(data) is the logical length
}

// grow ensures room for n more bytes. A reallocation picks the largest
// of minBufferCap, 1.5x the current capacity, and the exact requirement,
// so appending N bytes one at a time reallocates O(log N) times.
func (b *Buffer) grow(n int) {
	need := len(b.data) + n
	if need < 0 {
		panic(ErrTooLarge)
	}
	if need <= cap(b.data) {
		return
	}
	buf := make([]byte, len(b.data), max(minBufferCap, cap(b.data)+cap(b.data)/2, need))
	copy(buf, b.data)
	b.data = buf
}

// Append appends p to the buffer.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.data = append(b.data, p...)
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	b.data = append(b.data, c)
}

// AppendString appends the bytes of s.
func (b *Buffer) AppendString(s string) {
	b.grow(len(s))
	b.data = append(b.data, s...)
}

// Write implements the io.Writer interface. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface. It never fails.
func (b *Buffer) WriteString(s string) (int, error) {
	b.AppendString(s)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface. It never fails.
func (b *Buffer) WriteByte(c byte) error {
	b.AppendByte(c)
	return nil
}

// Reserve grows the capacity to at least n bytes. It never shrinks and
// does not change the logical length.
func (b *Buffer) Reserve(n int) {
	if n <= cap(b.data) {
		return
	}
	buf := make([]byte, len(b.data), n)
	copy(buf, b.data)
	b.data = buf
}

// Clear resets the logical length to zero, keeping the capacity for
// reuse.
func (b *Buffer) Clear() { b.data = b.data[:0] }

// Release drops the backing storage entirely.
func (b *Buffer) Release() { b.data = nil }

// Take transfers ownership of the buffered bytes to the caller and
// leaves the buffer empty.
func (b *Buffer) Take() []byte {
	out := b.data
	b.data = nil
	return out
}

// Len returns the logical length.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// Bytes returns a view of the buffered bytes. The view is valid until
// the next mutating call.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns the buffered bytes as a string.
func (b *Buffer) String() string { return string(b.data) }

// Byte returns the byte at index i. An index outside [0, Len()) yields
// an error wrapping ErrIndexOutOfRange; it is never clamped.
func (b *Buffer) Byte(i int) (byte, error) {
	if i < 0 || i >= len(b.data) {
		return 0, fmt.Errorf("%w: index %d with length %d", ErrIndexOutOfRange, i, len(b.data))
	}
	return b.data[i], nil
}
