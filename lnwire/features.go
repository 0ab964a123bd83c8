package lnwire

import "fmt"

// FeatureFlag is the tri-state value of a single Lightning feature bit pair,
// as defined by BOLT-09. Every known feature occupies two adjacent bits in a
// feature bitfield; the low bit of the pair signals Required, the high bit
// signals Optional, and both clear signals No.
type FeatureFlag uint8

const (
	// FeatureNo indicates the feature is not set at all.
	FeatureNo FeatureFlag = iota

	// FeatureRequired indicates the peer requires the other side to
	// understand this feature; an unknown required feature must cause the
	// connection to be rejected.
	FeatureRequired

	// FeatureOptional indicates the peer supports the feature but does
	// not require the other side to understand it.
	FeatureOptional
)

// OptionalFeatureFlag is the two-state restriction of FeatureFlag used for
// feature slots the protocol forbids from ever being Required (currently
// only initial_routing_sync).
type OptionalFeatureFlag uint8

const (
	// OptionalFeatureNo is the unset state of an OptionalFeatureFlag.
	OptionalFeatureNo OptionalFeatureFlag = iota

	// OptionalFeatureSet is the set state of an OptionalFeatureFlag.
	OptionalFeatureSet
)

// ErrMalformedFeatureFlag is returned when a feature's two-bit pair is 0b11,
// a pattern the protocol never assigns meaning to.
type ErrMalformedFeatureFlag struct {
	// Index is the bit index at which the malformed pair was found.
	Index uint16
}

func (e *ErrMalformedFeatureFlag) Error() string {
	return fmt.Sprintf("malformed feature flag at bit index %d", e.Index)
}

// ErrUnknownRequiredFeature is returned when a feature bitfield sets Required
// on a bit index this implementation does not know the meaning of.
type ErrUnknownRequiredFeature struct {
	// Index is the bit index of the unknown required feature.
	Index uint16
}

func (e *ErrUnknownRequiredFeature) Error() string {
	return fmt.Sprintf("unknown required feature (bit index %d)", e.Index)
}

// ErrFeatureMustNotBeRequired is returned when a feature that the protocol
// forbids from being Required (currently only initial_routing_sync) is set
// to Required.
type ErrFeatureMustNotBeRequired struct {
	// Index is the bit index of the offending feature.
	Index uint16
}

func (e *ErrFeatureMustNotBeRequired) Error() string {
	return fmt.Sprintf("feature must not be required (bit index %d)", e.Index)
}

// featureFromIndex decodes the feature flag pair occupying bit index and
// index+1 of bits, which is stored big-endian-per-byte in network order: bit
// index i lives in byte len(bits)-1-i/8 at bit position i%8.
func featureFromIndex(bits []byte, index uint16) (FeatureFlag, error) {
	bitsLen := len(bits)
	if int(index) >= bitsLen*8 {
		return FeatureNo, nil
	}

	byteIdx := bitsLen - 1 - int(index)/8
	pair := (bits[byteIdx] >> (index % 8)) & 0x03

	switch pair {
	case 0x00:
		return FeatureNo, nil
	case 0x01:
		return FeatureRequired, nil
	case 0x02:
		return FeatureOptional, nil
	default:
		return 0, &ErrMalformedFeatureFlag{Index: index}
	}
}

// writeAtIndex sets the two-bit pair for f at bit index into bits, which must
// already be sized to hold it.
func (f FeatureFlag) writeAtIndex(bits []byte, index uint16) {
	var pair byte
	switch f {
	case FeatureNo:
		pair = 0x00
	case FeatureRequired:
		pair = 0x01
	case FeatureOptional:
		pair = 0x02
	}
	byteIdx := len(bits) - 1 - int(index)/8
	bits[byteIdx] |= pair << (index % 8)
}

// writeAtIndex sets the two-bit pair for f at bit index into bits.
func (f OptionalFeatureFlag) writeAtIndex(bits []byte, index uint16) {
	var pair byte
	switch f {
	case OptionalFeatureNo:
		pair = 0x00
	case OptionalFeatureSet:
		pair = 0x02
	}
	byteIdx := len(bits) - 1 - int(index)/8
	bits[byteIdx] |= pair << (index % 8)
}

// toOptional coerces f down to an OptionalFeatureFlag, failing if f is
// Required.
func (f FeatureFlag) toOptional(index uint16) (OptionalFeatureFlag, error) {
	switch f {
	case FeatureNo:
		return OptionalFeatureNo, nil
	case FeatureOptional:
		return OptionalFeatureSet, nil
	default:
		return 0, &ErrFeatureMustNotBeRequired{Index: index}
	}
}

// UnfilteredFeatures is the bitfield as parsed, one FeatureFlag per even bit
// index, without any policy applied to unknown bits.
type UnfilteredFeatures struct {
	flags []FeatureFlag
}

// ParseUnfilteredFeatures reads a feature flag at every even bit index
// across the whole of buf (0, 2, 4, ..., 8*len(buf)-2), returning
// ErrMalformedFeatureFlag if any pair is 0b11.
func ParseUnfilteredFeatures(buf []byte) (*UnfilteredFeatures, error) {
	numBits := len(buf) * 8
	flags := make([]FeatureFlag, 0, numBits/2)
	for index := 0; index < numBits; index += 2 {
		flag, err := featureFromIndex(buf, uint16(index))
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	return &UnfilteredFeatures{flags: flags}, nil
}

// Serialize renders the feature vector using the fewest bytes that can hold
// every parsed feature slot (ceil(numFeatures/4) bytes).
func (u *UnfilteredFeatures) Serialize() []byte {
	numBytes := (len(u.flags) + 3) / 4
	out := make([]byte, numBytes)
	for halfIdx, flag := range u.flags {
		flag.writeAtIndex(out, uint16(halfIdx)*2)
	}
	return out
}

// getIndex returns the feature flag at the given even bit index, or
// FeatureNo if the vector is too short to carry it.
func (u *UnfilteredFeatures) getIndex(index uint16) FeatureFlag {
	halfIdx := int(index / 2)
	if halfIdx >= len(u.flags) {
		return FeatureNo
	}
	return u.flags[halfIdx]
}

func (u *UnfilteredFeatures) getIndexOptional(index uint16) (OptionalFeatureFlag, error) {
	return u.getIndex(index).toOptional(index)
}

// unknownRequired scans every slot at or after half-index startHalfIdx (bit
// index 2*startHalfIdx) and reports the first Required bit found, if any.
func (u *UnfilteredFeatures) unknownRequired(startHalfIdx int) error {
	for halfIdx := startHalfIdx; halfIdx < len(u.flags); halfIdx++ {
		if u.flags[halfIdx] == FeatureRequired {
			return &ErrUnknownRequiredFeature{Index: uint16(halfIdx) * 2}
		}
	}
	return nil
}

// UnfilteredGlobalFeatures is the global feature bitfield as parsed, before
// the (currently trivial) global feature policy has been applied.
type UnfilteredGlobalFeatures struct {
	features *UnfilteredFeatures
}

// ParseUnfilteredGlobalFeatures parses a global feature bitfield.
func ParseUnfilteredGlobalFeatures(buf []byte) (*UnfilteredGlobalFeatures, error) {
	features, err := ParseUnfilteredFeatures(buf)
	if err != nil {
		return nil, err
	}
	return &UnfilteredGlobalFeatures{features: features}, nil
}

// EmptyUnfilteredGlobalFeatures returns a global feature bitfield with every
// bit unset, suitable for nodes that advertise no global features.
func EmptyUnfilteredGlobalFeatures() *UnfilteredGlobalFeatures {
	return &UnfilteredGlobalFeatures{features: &UnfilteredFeatures{}}
}

// Serialize renders the underlying bitfield.
func (g *UnfilteredGlobalFeatures) Serialize() []byte {
	return g.features.Serialize()
}

// GlobalFeatures is the validated result of filtering a global feature
// bitfield: a marker that no unknown bit was Required. The protocol
// currently defines zero known global features, so any Required bit at all
// is rejected.
type GlobalFeatures struct{}

// Filter validates g, rejecting any Required bit since no global feature is
// currently known.
func (g *UnfilteredGlobalFeatures) Filter() (*GlobalFeatures, error) {
	if err := g.features.unknownRequired(0); err != nil {
		return nil, err
	}
	return &GlobalFeatures{}, nil
}

// UnfilteredLocalFeatures is the local feature bitfield as parsed, before
// the per-slot local feature policy has been applied.
type UnfilteredLocalFeatures struct {
	features *UnfilteredFeatures
}

// ParseUnfilteredLocalFeatures parses a local feature bitfield.
func ParseUnfilteredLocalFeatures(buf []byte) (*UnfilteredLocalFeatures, error) {
	features, err := ParseUnfilteredFeatures(buf)
	if err != nil {
		return nil, err
	}
	return &UnfilteredLocalFeatures{features: features}, nil
}

// Serialize renders the underlying bitfield.
func (l *UnfilteredLocalFeatures) Serialize() []byte {
	return l.features.Serialize()
}

// NewUnfilteredLocalFeatures builds the local feature bitfield for the four
// known slots, leaving every other slot at FeatureNo. This is the
// constructor used to build the outbound init message's local features.
func NewUnfilteredLocalFeatures(
	optionDataLossProtect FeatureFlag,
	initialRoutingSync OptionalFeatureFlag,
	optionUpfrontShutdownScript FeatureFlag,
	gossipQueries FeatureFlag,
) *UnfilteredLocalFeatures {

	flags := make([]FeatureFlag, 4)
	flags[0] = optionDataLossProtect
	if initialRoutingSync == OptionalFeatureSet {
		flags[1] = FeatureOptional
	} else {
		flags[1] = FeatureNo
	}
	flags[2] = optionUpfrontShutdownScript
	flags[3] = gossipQueries

	return &UnfilteredLocalFeatures{features: &UnfilteredFeatures{flags: flags}}
}

// LocalFeatures is the validated result of filtering a local feature
// bitfield: the four known connection-local feature slots, with every
// unknown required bit at index >= 8 rejected.
type LocalFeatures struct {
	// OptionDataLossProtect is the feature at bit index 0.
	OptionDataLossProtect FeatureFlag

	// InitialRoutingSync is the feature at bit index 2. The protocol
	// forbids this slot from ever being Required.
	InitialRoutingSync OptionalFeatureFlag

	// OptionUpfrontShutdownScript is the feature at bit index 4.
	OptionUpfrontShutdownScript FeatureFlag

	// GossipQueries is the feature at bit index 6.
	GossipQueries FeatureFlag
}

// Filter validates l: the initial_routing_sync slot must not be Required,
// and no bit at index >= 8 may be Required either.
func (l *UnfilteredLocalFeatures) Filter() (*LocalFeatures, error) {
	optionDataLossProtect := l.features.getIndex(0)

	initialRoutingSync, err := l.features.getIndexOptional(2)
	if err != nil {
		return nil, err
	}

	optionUpfrontShutdownScript := l.features.getIndex(4)
	gossipQueries := l.features.getIndex(6)

	// Bit indices 0, 2, 4, 6 are known slots (half-indices 0-3); anything
	// from half-index 4 onward (bit index >= 8) is unknown.
	if err := l.features.unknownRequired(4); err != nil {
		return nil, err
	}

	return &LocalFeatures{
		OptionDataLossProtect:       optionDataLossProtect,
		InitialRoutingSync:          initialRoutingSync,
		OptionUpfrontShutdownScript: optionUpfrontShutdownScript,
		GossipQueries:               gossipQueries,
	}, nil
}
