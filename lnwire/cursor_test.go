package lnwire

import (
	"bytes"
	"testing"
)

func TestReadCursorBounds(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		n    int
		ok   bool
	}{
		{"exact fit", []byte{1, 2, 3}, 3, true},
		{"short read", []byte{1, 2, 3}, 2, true},
		{"too long", []byte{1, 2, 3}, 4, false},
		{"empty buffer", nil, 1, false},
		{"zero length always ok", nil, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewReadCursor(tc.buf)
			_, err := c.ReadSlice(tc.n)
			if tc.ok && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.ok && err != ErrMsgTooShort {
				t.Fatalf("expected ErrMsgTooShort, got %v", err)
			}
		})
	}
}

func TestReadCursorAdvances(t *testing.T) {
	c := NewReadCursor([]byte{0xAA, 0xBB, 0xCC, 0xDD})

	first, err := c.ReadSlice(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, []byte{0xAA, 0xBB}) {
		t.Fatalf("unexpected slice: %x", first)
	}

	rest := c.ReadToEnd()
	if !bytes.Equal(rest, []byte{0xCC, 0xDD}) {
		t.Fatalf("unexpected remainder: %x", rest)
	}
	if c.Len() != 0 {
		t.Fatalf("expected cursor exhausted, has %d bytes left", c.Len())
	}

	if _, err := c.ReadSlice(1); err != ErrMsgTooShort {
		t.Fatalf("expected ErrMsgTooShort on exhausted cursor, got %v", err)
	}
}

func TestReadCursorUint16(t *testing.T) {
	c := NewReadCursor([]byte{0x01, 0x02})
	v, err := c.ReadUint16()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x0102 {
		t.Fatalf("expected 0x0102, got 0x%04x", v)
	}
}

func TestWriteCursorDeterministic(t *testing.T) {
	c := NewWriteCursor()
	c.WriteUint16(0x0102)
	c.WriteSlice([]byte{0xAA, 0xBB})

	want := []byte{0x01, 0x02, 0xAA, 0xBB}
	if !bytes.Equal(c.Bytes(), want) {
		t.Fatalf("expected %x, got %x", want, c.Bytes())
	}
}
