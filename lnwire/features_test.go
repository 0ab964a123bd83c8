package lnwire

import (
	"errors"
	"testing"
)

// TestFeatureRoundTrip exercises invariant 2: parse then serialize a
// well-formed bitfield yields a bitfield of length ceil(features/4) bytes
// with the same per-feature values.
func TestFeatureRoundTrip(t *testing.T) {
	tests := [][]byte{
		{0x82},
		{0x00},
		{0x01, 0x02, 0x04},
		{},
	}

	for _, buf := range tests {
		parsed, err := ParseUnfilteredFeatures(buf)
		if err != nil {
			t.Fatalf("unexpected parse error for %x: %v", buf, err)
		}

		out := parsed.Serialize()
		wantLen := (len(parsed.flags) + 3) / 4
		if len(out) != wantLen {
			t.Fatalf("expected serialized length %d, got %d", wantLen, len(out))
		}

		reparsed, err := ParseUnfilteredFeatures(out)
		if err != nil {
			t.Fatalf("unexpected reparse error: %v", err)
		}
		for i := 0; i < len(parsed.flags)*2; i += 2 {
			if parsed.getIndex(uint16(i)) != reparsed.getIndex(uint16(i)) {
				t.Fatalf("mismatch at bit index %d: %v != %v",
					i, parsed.getIndex(uint16(i)), reparsed.getIndex(uint16(i)))
			}
		}
	}
}

// TestMalformedFeatureFlag exercises invariant 3 and scenario S2.
func TestMalformedFeatureFlag(t *testing.T) {
	// Bits 7-6 = 0b11 sit at even bit index 6.
	_, err := ParseUnfilteredFeatures([]byte{0xC0})

	var malformed *ErrMalformedFeatureFlag
	if !errors.As(err, &malformed) {
		t.Fatalf("expected ErrMalformedFeatureFlag, got %v", err)
	}
	if malformed.Index != 6 {
		t.Fatalf("expected index 6, got %d", malformed.Index)
	}
}

// TestGlobalFeaturesRequiredRejection exercises invariant 4 and scenario S3.
func TestGlobalFeaturesRequiredRejection(t *testing.T) {
	global, err := ParseUnfilteredGlobalFeatures([]byte{0x01})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = global.Filter()
	var unknown *ErrUnknownRequiredFeature
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownRequiredFeature, got %v", err)
	}
	if unknown.Index != 0 {
		t.Fatalf("expected index 0, got %d", unknown.Index)
	}
}

func TestGlobalFeaturesFilterEmptyOK(t *testing.T) {
	global, err := ParseUnfilteredGlobalFeatures(nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := global.Filter(); err != nil {
		t.Fatalf("expected empty global features to filter cleanly, got %v", err)
	}
}

// TestInitialRoutingSyncRequiredRejection exercises invariant 5 and scenario
// S4.
func TestInitialRoutingSyncRequiredRejection(t *testing.T) {
	local, err := ParseUnfilteredLocalFeatures([]byte{0x04})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = local.Filter()
	var mustNotBeRequired *ErrFeatureMustNotBeRequired
	if !errors.As(err, &mustNotBeRequired) {
		t.Fatalf("expected ErrFeatureMustNotBeRequired, got %v", err)
	}
	if mustNotBeRequired.Index != 2 {
		t.Fatalf("expected index 2, got %d", mustNotBeRequired.Index)
	}
}

func TestLocalFeaturesFilterKnownSlots(t *testing.T) {
	// index0=Optional(10->0x02), index2=No, index4=No, index6=Optional(0x80).
	local, err := ParseUnfilteredLocalFeatures([]byte{0x82})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	filtered, err := local.Filter()
	if err != nil {
		t.Fatalf("unexpected filter error: %v", err)
	}
	if filtered.OptionDataLossProtect != FeatureOptional {
		t.Fatalf("expected optional data-loss-protect, got %v", filtered.OptionDataLossProtect)
	}
	if filtered.InitialRoutingSync != OptionalFeatureNo {
		t.Fatalf("expected no initial_routing_sync, got %v", filtered.InitialRoutingSync)
	}
	if filtered.OptionUpfrontShutdownScript != FeatureNo {
		t.Fatalf("expected no upfront-shutdown-script, got %v", filtered.OptionUpfrontShutdownScript)
	}
	if filtered.GossipQueries != FeatureOptional {
		t.Fatalf("expected optional gossip-queries, got %v", filtered.GossipQueries)
	}
}

func TestLocalFeaturesUnknownRequiredRejected(t *testing.T) {
	// Bit index 8 set to Required: byte 1 bit 0 = 0b01.
	local, err := ParseUnfilteredLocalFeatures([]byte{0x01, 0x00})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = local.Filter()
	var unknown *ErrUnknownRequiredFeature
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownRequiredFeature, got %v", err)
	}
	if unknown.Index != 8 {
		t.Fatalf("expected index 8, got %d", unknown.Index)
	}
}

func TestNewUnfilteredLocalFeaturesRoundTrips(t *testing.T) {
	built := NewUnfilteredLocalFeatures(
		FeatureOptional, OptionalFeatureNo, FeatureNo, FeatureOptional,
	)
	if !bytesEqual(built.Serialize(), []byte{0x82}) {
		t.Fatalf("expected 0x82, got %x", built.Serialize())
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
