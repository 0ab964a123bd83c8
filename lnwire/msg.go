package lnwire

import "fmt"

// MsgType is the two-byte type tag that precedes every Lightning wire
// message. Per BOLT-01's "it's OK to be odd" rule, a recipient that doesn't
// recognize an odd-valued tag may silently skip it; an unrecognized
// even-valued tag must close the connection.
type MsgType uint16

const (
	// MsgTypeInit is the type tag of the init message, the first message
	// exchanged on every newly-established connection.
	MsgTypeInit MsgType = 16
)

// ErrUnknownMsgType is returned when a message's type tag does not match any
// MsgType known to this implementation.
type ErrUnknownMsgType struct {
	// Tag is the unrecognized type tag.
	Tag uint16
}

func (e *ErrUnknownMsgType) Error() string {
	return fmt.Sprintf("unknown message type (%d)", e.Tag)
}

// CanIgnore reports whether a message with this unknown type tag may be
// silently skipped instead of closing the connection, per the odd/even rule.
func (e *ErrUnknownMsgType) CanIgnore() bool {
	return e.Tag%2 == 1
}

// msgTypeFromTag resolves a wire type tag to a known MsgType.
func msgTypeFromTag(tag uint16) (MsgType, error) {
	switch MsgType(tag) {
	case MsgTypeInit:
		return MsgTypeInit, nil
	default:
		return 0, &ErrUnknownMsgType{Tag: tag}
	}
}

// Msg is a tagged union over every message kind known to this
// implementation. Exactly one of its fields is non-nil.
type Msg struct {
	// Init holds the payload when this message is an init message.
	Init *InitMsg
}

// Type returns the wire type tag for whichever variant m carries.
func (m *Msg) Type() MsgType {
	switch {
	case m.Init != nil:
		return MsgTypeInit
	default:
		panic("lnwire: Msg has no populated variant")
	}
}

// ToBytes frames m as type_tag || payload.
func (m *Msg) ToBytes() []byte {
	cursor := NewWriteCursor()
	cursor.WriteUint16(uint16(m.Type()))

	switch {
	case m.Init != nil:
		m.Init.Encode(cursor)
	}

	return cursor.Bytes()
}

// FromBytes decodes a framed message: a 2-byte type tag followed by a
// type-specific payload occupying the remainder of b.
func FromBytes(b []byte) (*Msg, error) {
	cursor := NewReadCursor(b)

	tag, err := cursor.ReadUint16()
	if err != nil {
		return nil, err
	}

	msgType, err := msgTypeFromTag(tag)
	if err != nil {
		return nil, err
	}

	payload := cursor.ReadToEnd()

	switch msgType {
	case MsgTypeInit:
		initMsg, err := DecodeInitPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to parse init msg: %w", err)
		}
		return &Msg{Init: initMsg}, nil
	default:
		// Unreachable: msgTypeFromTag only returns known types.
		return nil, &ErrUnknownMsgType{Tag: tag}
	}
}
