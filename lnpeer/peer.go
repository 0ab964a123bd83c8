package lnpeer

import (
	"net"

	"github.com/breez/lnseed/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

// Peer is an interface which represents a remote Lightning node this process
// has completed a transport-level handshake with. It intentionally covers
// only what's needed to exchange the init message and hand the session off
// to a caller; channel-management operations belong to a higher layer
// outside this core's scope.
type Peer interface {
	// SendMessage sends a variadic number of messages to the remote
	// peer. The first argument denotes if the method should block until
	// the messages have been sent to the remote peer.
	SendMessage(sync bool, msgs ...*lnwire.Msg) error

	// ReadMessage blocks until the next message has been read off the
	// wire and decoded.
	ReadMessage() (*lnwire.Msg, error)

	// PubKey returns the serialized public key of the remote peer.
	PubKey() [33]byte

	// IdentityKey returns the public key of the remote peer.
	IdentityKey() *btcec.PublicKey

	// Address returns the network address of the remote peer.
	Address() net.Addr

	// QuitSignal is a method that should return a channel which will be
	// sent upon or closed once the backing peer exits. This allows
	// callers using the interface to cancel any processing in the event
	// the backing implementation exits.
	QuitSignal() <-chan struct{}

	// Close tears down the underlying connection.
	Close() error
}
