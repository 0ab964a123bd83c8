package lnwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ErrMsgTooShort is returned by a ReadCursor when a caller requests more
// bytes than remain unread in the underlying buffer.
var ErrMsgTooShort = fmt.Errorf("message too short")

// ReadCursor is a bounded, position-tracking reader over an immutable byte
// slice. It never copies the backing array; reads simply return sub-slices of
// it and advance the internal position.
type ReadCursor struct {
	pos   int
	bytes []byte
}

// NewReadCursor creates a ReadCursor over the given bytes, starting at
// position zero.
func NewReadCursor(b []byte) *ReadCursor {
	return &ReadCursor{bytes: b}
}

// ReadSlice borrows the next n bytes and advances the cursor past them. It
// fails with ErrMsgTooShort if fewer than n bytes remain.
func (c *ReadCursor) ReadSlice(n int) ([]byte, error) {
	if c.pos+n > len(c.bytes) {
		return nil, ErrMsgTooShort
	}
	ret := c.bytes[c.pos : c.pos+n]
	c.pos += n
	return ret, nil
}

// ReadUint16 reads two bytes, big-endian, and advances the cursor.
func (c *ReadCursor) ReadUint16() (uint16, error) {
	b, err := c.ReadSlice(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadToEnd borrows every remaining byte and advances the cursor to the end
// of the buffer. It never fails.
func (c *ReadCursor) ReadToEnd() []byte {
	ret := c.bytes[c.pos:]
	c.pos = len(c.bytes)
	return ret
}

// Len returns the number of bytes still unread.
func (c *ReadCursor) Len() int {
	return len(c.bytes) - c.pos
}

// WriteCursor is a growable, append-only byte buffer used to build up the
// wire encoding of a message.
type WriteCursor struct {
	buf bytes.Buffer
}

// NewWriteCursor returns an empty WriteCursor.
func NewWriteCursor() *WriteCursor {
	return &WriteCursor{}
}

// WriteSlice appends the given bytes.
func (c *WriteCursor) WriteSlice(b []byte) {
	c.buf.Write(b)
}

// WriteUint16 appends v as two big-endian bytes.
func (c *WriteCursor) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	c.buf.Write(b[:])
}

// Bytes freezes and returns the accumulated buffer.
func (c *WriteCursor) Bytes() []byte {
	return c.buf.Bytes()
}
