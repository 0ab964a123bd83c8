package discovery

import (
	"fmt"

	"github.com/breez/lnseed/lnpeer"
	"github.com/breez/lnseed/lnwire"
)

// ExchangeInit performs the init message exchange that must happen
// immediately after a handshake completes: it sends local's init message,
// reads the remote one, and filters both of the remote's feature bitfields.
// A filtering failure closes the peer.
func ExchangeInit(peer lnpeer.Peer, local *lnwire.InitMsg) (*lnwire.GlobalFeatures, *lnwire.LocalFeatures, error) {
	if err := peer.SendMessage(true, &lnwire.Msg{Init: local}); err != nil {
		return nil, nil, fmt.Errorf("failed to send init message: %w", err)
	}

	msg, err := peer.ReadMessage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read init message: %w", err)
	}
	if msg.Init == nil {
		peer.Close()
		return nil, nil, fmt.Errorf("expected init message, got type %v", msg.Type())
	}

	global, err := msg.Init.GlobalFeatures.Filter()
	if err != nil {
		peer.Close()
		return nil, nil, fmt.Errorf("remote global features rejected: %w", err)
	}

	local2, err := msg.Init.LocalFeatures.Filter()
	if err != nil {
		peer.Close()
		return nil, nil, fmt.Errorf("remote local features rejected: %w", err)
	}

	return global, local2, nil
}
