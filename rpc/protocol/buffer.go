package protocol

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrShortResponse is returned when a response ends before a declared field is complete
	ErrShortResponse = errors.New("response too short")
	// ErrMalformed is returned when a response declares an impossible field
	ErrMalformed = errors.New("malformed response")
)

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

// Writer appends big endian integers and raw bytes to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with room for sizeHint bytes
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// PutUint8 appends a single byte
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutUint32 appends a 32-bit integer
func (w *Writer) PutUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// PutUint64 appends a 64-bit integer as two 32-bit words, high word first
func (w *Writer) PutUint64(v uint64) {
	w.PutUint32(uint32(v >> 32))
	w.PutUint32(uint32(v))
}

// PutBytes appends raw bytes
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutString appends the bytes of s
func (w *Writer) PutString(s string) {
	w.buf = append(w.buf, s...)
}

// Len returns the number of bytes written so far
func (w *Writer) Len() int {
	return len(w.buf)
}

// Frame returns the written bytes. The writer must not be used afterwards.
func (w *Writer) Frame() Frame {
	return w.buf
}

// --------------------------------------------------------------------------
// Reader
// --------------------------------------------------------------------------

// Reader reads big endian integers and raw bytes from a stream, keeping track
// of the read position. Every read consumes exactly the requested number of
// bytes; a stream that ends early yields ErrShortResponse.
type Reader struct {
	r       io.Reader
	pos     int
	maxSize int
	scratch [8]byte
}

// NewReader creates a reader on r. maxSize limits every length prefixed field
// and element count (zero means no limit).
func NewReader(r io.Reader, maxSize int) *Reader {
	return &Reader{r: r, maxSize: maxSize}
}

// Pos returns the number of bytes consumed so far
func (r *Reader) Pos() int {
	return r.pos
}

// fill reads exactly len(p) bytes
func (r *Reader) fill(p []byte, field string) error {
	n, err := io.ReadFull(r.r, p)
	r.pos += n
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrShortResponse, "reading %s at offset %d", field, r.pos)
	}
	return err
}

// Uint8 reads a single byte
func (r *Reader) Uint8(field string) (uint8, error) {
	if err := r.fill(r.scratch[:1], field); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// Uint32 reads a 32-bit integer
func (r *Reader) Uint32(field string) (uint32, error) {
	if err := r.fill(r.scratch[:4], field); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.scratch[:4]), nil
}

// Int32 reads a signed 32-bit integer
func (r *Reader) Int32(field string) (int32, error) {
	v, err := r.Uint32(field)
	return int32(v), err
}

// Uint64 reads two 32-bit words and combines them as (high << 32) + low
func (r *Reader) Uint64(field string) (uint64, error) {
	high, err := r.Uint32(field)
	if err != nil {
		return 0, err
	}
	low, err := r.Uint32(field)
	if err != nil {
		return 0, err
	}
	return uint64(high)<<32 + uint64(low), nil
}

// Int64 reads a signed 64-bit integer
func (r *Reader) Int64(field string) (int64, error) {
	v, err := r.Uint64(field)
	return int64(v), err
}

// Size reads a 32-bit length or count and validates it against the limit
func (r *Reader) Size(field string) (int, error) {
	v, err := r.Int32(field)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Wrapf(ErrMalformed, "negative %s %d at offset %d", field, v, r.pos-4)
	}
	if r.maxSize > 0 && int(v) > r.maxSize {
		return 0, errors.Wrapf(ErrMalformed, "%s %d exceeds limit %d", field, v, r.maxSize)
	}
	return int(v), nil
}

// Bytes reads exactly n bytes into a new slice
func (r *Reader) Bytes(n int, field string) ([]byte, error) {
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if err := r.fill(b, field); err != nil {
		return nil, err
	}
	return b, nil
}

// SizedBytes reads a 32-bit length followed by that many bytes
func (r *Reader) SizedBytes(field string) ([]byte, error) {
	n, err := r.Size(field + " size")
	if err != nil {
		return nil, err
	}
	return r.Bytes(n, field)
}
