package lnwire

import (
	"fmt"
	"net"

	"github.com/btcsuite/btcd/btcec"
)

// Endpoint is a remote node's compressed public key paired with a socket
// address sufficient to initiate a handshake with it. It is produced by the
// DNS bootstrap pipeline and consumed by the peer bootstrapper.
type Endpoint struct {
	// PubKey is the remote node's identity, a point on secp256k1.
	PubKey *btcec.PublicKey

	// Addr is the TCP address the node is expected to be listening on.
	Addr *net.TCPAddr
}

// String renders the endpoint as pubkey@host:port, matching the convention
// used throughout the Lightning Network for node URIs.
func (e *Endpoint) String() string {
	return fmt.Sprintf("%x@%s", e.PubKey.SerializeCompressed(), e.Addr)
}
