package lnwire

import "fmt"

// InitMsg is the first message exchanged once a transport-level connection
// (and any cryptographic handshake) has been established. It carries both of
// the peer's feature bitfields in their unfiltered (as-parsed) form; applying
// feature policy is left to the caller, per BOLT-01/BOLT-09.
type InitMsg struct {
	// GlobalFeatures is the peer's global (network-wide) feature bitfield.
	GlobalFeatures *UnfilteredGlobalFeatures

	// LocalFeatures is the peer's connection-local feature bitfield.
	LocalFeatures *UnfilteredLocalFeatures
}

// NewInitMsg builds an InitMsg from an unfiltered global and local feature
// bitfield pair.
func NewInitMsg(global *UnfilteredGlobalFeatures, local *UnfilteredLocalFeatures) *InitMsg {
	return &InitMsg{GlobalFeatures: global, LocalFeatures: local}
}

// ErrInitPayloadTooShort wraps the cursor underflow that occurs while
// decoding an init payload.
type ErrInitPayloadTooShort struct {
	Cause error
}

func (e *ErrInitPayloadTooShort) Error() string {
	return fmt.Sprintf("init payload too short: %v", e.Cause)
}

func (e *ErrInitPayloadTooShort) Unwrap() error { return e.Cause }

// DecodeInitPayload parses an init message payload of the form:
//
//	gflen:u16 | global_features[gflen] | lflen:u16 | local_features[lflen]
//
// Each bitfield is parsed into its unfiltered form; filtering is the
// caller's responsibility.
func DecodeInitPayload(payload []byte) (*InitMsg, error) {
	cursor := NewReadCursor(payload)

	gflen, err := cursor.ReadUint16()
	if err != nil {
		return nil, &ErrInitPayloadTooShort{Cause: err}
	}
	gfBytes, err := cursor.ReadSlice(int(gflen))
	if err != nil {
		return nil, &ErrInitPayloadTooShort{Cause: err}
	}
	global, err := ParseUnfilteredGlobalFeatures(gfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse global features: %w", err)
	}

	lflen, err := cursor.ReadUint16()
	if err != nil {
		return nil, &ErrInitPayloadTooShort{Cause: err}
	}
	lfBytes, err := cursor.ReadSlice(int(lflen))
	if err != nil {
		return nil, &ErrInitPayloadTooShort{Cause: err}
	}
	local, err := ParseUnfilteredLocalFeatures(lfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local features: %w", err)
	}

	return &InitMsg{GlobalFeatures: global, LocalFeatures: local}, nil
}

// Encode writes the init payload (without the message type tag) to cursor.
func (m *InitMsg) Encode(cursor *WriteCursor) {
	gf := m.GlobalFeatures.Serialize()
	cursor.WriteUint16(uint16(len(gf)))
	cursor.WriteSlice(gf)

	lf := m.LocalFeatures.Serialize()
	cursor.WriteUint16(uint16(len(lf)))
	cursor.WriteSlice(lf)
}
