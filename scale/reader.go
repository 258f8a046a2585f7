// Package scale implements the low-level pieces of the SCALE wire format:
// a byte cursor, little-endian fixed-width integers and compact integers.
package scale

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrNegativeCompact = errors.New("compact value cannot be negative")
	ErrCompactTooLarge = errors.New("compact value exceeds 536 bits")
	ErrOverflow        = errors.New("value overflows bit length")
)

// Reader is a cursor over an encoded byte slice.
type Reader struct {
	data   []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadByte returns the next byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

// Read returns a copy of the next n bytes.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %d bytes: %w", n, ErrUnexpectedEOF)
	}
	if r.Remaining() < n {
		return nil, fmt.Errorf("read %d bytes at offset %d, %d left: %w", n, r.offset, r.Remaining(), ErrUnexpectedEOF)
	}
	out := make([]byte, n)
	copy(out, r.data[r.offset:r.offset+n])
	r.offset += n
	return out, nil
}

// Peek returns the next byte without advancing.
func (r *Reader) Peek() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	return r.data[r.offset], nil
}

func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) Offset() int {
	return r.offset
}
