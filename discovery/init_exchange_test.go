package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/breez/lnseed/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

// fakePeer is a test double satisfying lnpeer.Peer, scripted to return a
// single queued inbound message and record whether Close was called.
type fakePeer struct {
	inbound []*lnwire.Msg
	sent    []*lnwire.Msg
	closed  bool
	sendErr error
	readErr error
}

func (p *fakePeer) SendMessage(_ bool, msgs ...*lnwire.Msg) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, msgs...)
	return nil
}

func (p *fakePeer) ReadMessage() (*lnwire.Msg, error) {
	if p.readErr != nil {
		return nil, p.readErr
	}
	if len(p.inbound) == 0 {
		return nil, errors.New("no more inbound messages")
	}
	msg := p.inbound[0]
	p.inbound = p.inbound[1:]
	return msg, nil
}

func (p *fakePeer) PubKey() [33]byte                { return [33]byte{} }
func (p *fakePeer) IdentityKey() *btcec.PublicKey    { return nil }
func (p *fakePeer) Address() net.Addr                { return nil }
func (p *fakePeer) QuitSignal() <-chan struct{}      { return nil }
func (p *fakePeer) Close() error                     { p.closed = true; return nil }

func localInit(t *testing.T) *lnwire.InitMsg {
	t.Helper()
	global, err := lnwire.ParseUnfilteredGlobalFeatures(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local := lnwire.NewUnfilteredLocalFeatures(
		lnwire.FeatureOptional, lnwire.OptionalFeatureNo,
		lnwire.FeatureNo, lnwire.FeatureOptional,
	)
	return lnwire.NewInitMsg(global, local)
}

func TestExchangeInitSuccess(t *testing.T) {
	remoteGlobal, _ := lnwire.ParseUnfilteredGlobalFeatures(nil)
	remoteLocal := lnwire.NewUnfilteredLocalFeatures(
		lnwire.FeatureOptional, lnwire.OptionalFeatureNo,
		lnwire.FeatureNo, lnwire.FeatureNo,
	)

	peer := &fakePeer{
		inbound: []*lnwire.Msg{{Init: lnwire.NewInitMsg(remoteGlobal, remoteLocal)}},
	}

	global, local, err := ExchangeInit(peer, localInit(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if global == nil || local == nil {
		t.Fatalf("expected filtered feature sets, got nil")
	}
	if len(peer.sent) != 1 {
		t.Fatalf("expected local init to be sent, got %d messages sent", len(peer.sent))
	}
	if peer.closed {
		t.Fatalf("peer should not be closed on a successful exchange")
	}
}

func TestExchangeInitClosesOnFilterFailure(t *testing.T) {
	// bit index 0 set to Required, which global features rejects.
	remoteGlobal, err := lnwire.ParseUnfilteredGlobalFeatures([]byte{0x01})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	remoteLocal := lnwire.NewUnfilteredLocalFeatures(
		lnwire.FeatureNo, lnwire.OptionalFeatureNo, lnwire.FeatureNo, lnwire.FeatureNo,
	)

	peer := &fakePeer{
		inbound: []*lnwire.Msg{{Init: lnwire.NewInitMsg(remoteGlobal, remoteLocal)}},
	}

	_, _, err = ExchangeInit(peer, localInit(t))
	if err == nil {
		t.Fatalf("expected an error from a rejected global feature set")
	}
	if !peer.closed {
		t.Fatalf("expected peer to be closed after a filter failure")
	}
}
