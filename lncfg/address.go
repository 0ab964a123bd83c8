package lncfg

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/breez/lnseed/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

var loopBackAddrs = []string{"localhost", "127.0.0.1", "[::1]"}

type tcpResolver = func(network, addr string) (*net.TCPAddr, error)

// NormalizeAddresses returns a new slice with all the passed addresses
// normalized with the given default port and all duplicates removed.
func NormalizeAddresses(addrs []string, defaultPort string,
	tcpResolver tcpResolver) ([]net.Addr, error) {

	result := make([]net.Addr, 0, len(addrs))
	seen := map[string]struct{}{}

	for _, addr := range addrs {
		parsedAddr, err := ParseAddressString(addr, defaultPort, tcpResolver)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[parsedAddr.String()]; !ok {
			result = append(result, parsedAddr)
			seen[parsedAddr.String()] = struct{}{}
		}
	}

	return result, nil
}

// IsLoopback returns true if an address describes a loopback interface.
func IsLoopback(addr string) bool {
	for _, loopback := range loopBackAddrs {
		if strings.Contains(addr, loopback) {
			return true
		}
	}

	return false
}

// ParseAddressString converts an address in string format to a net.Addr.
// UDP is not supported because the bootstrapper needs reliable connections.
// A custom tcpResolver lets callers control exactly how TCP resolution is
// performed.
func ParseAddressString(strAddress string, defaultPort string,
	tcpResolver tcpResolver) (net.Addr, error) {

	var parsedNetwork, parsedAddr string

	// Addresses can either be in network://address:port format,
	// network:address:port, address:port, or just port.
	if strings.Contains(strAddress, "://") {
		parts := strings.Split(strAddress, "://")
		parsedNetwork, parsedAddr = parts[0], parts[1]
	} else if strings.Contains(strAddress, ":") {
		parts := strings.Split(strAddress, ":")
		parsedNetwork = parts[0]
		parsedAddr = strings.Join(parts[1:], ":")
	}

	switch parsedNetwork {
	case "unix", "unixpacket":
		return net.ResolveUnixAddr(parsedNetwork, parsedAddr)

	case "tcp", "tcp4", "tcp6":
		return tcpResolver(parsedNetwork, verifyPort(parsedAddr, defaultPort))

	case "ip", "ip4", "ip6", "udp", "udp4", "udp6", "unixgram":
		return nil, fmt.Errorf("only TCP or unix socket "+
			"addresses are supported: %s", parsedAddr)

	default:
		addrWithPort := verifyPort(strAddress, defaultPort)
		rawHost, _, _ := net.SplitHostPort(addrWithPort)

		if rawHost == "" || IsLoopback(rawHost) {
			return net.ResolveTCPAddr("tcp", addrWithPort)
		}

		return tcpResolver("tcp", addrWithPort)
	}
}

// ParseEndpointString converts a string of the form <pubkey>@<addr> into an
// lnwire.Endpoint. The <pubkey> must be presented in hex, and must resolve
// to a 33-byte compressed public key on the secp256k1 curve. The <addr> may
// be any address accepted by ParseAddressString, and must resolve to a TCP
// address. Used by cmd/lnseedd's --connect flag to bypass DNS bootstrap and
// dial a single known peer directly.
func ParseEndpointString(strAddress string, defaultPort string,
	tcpResolver tcpResolver) (*lnwire.Endpoint, error) {

	parts := strings.Split(strAddress, "@")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid peer endpoint %s: must be of "+
			"the form <pubkey-hex>@<addr>", strAddress)
	}

	parsedPubKey, parsedAddr := parts[0], parts[1]

	pubKeyBytes, err := hex.DecodeString(parsedPubKey)
	if err != nil {
		return nil, fmt.Errorf("invalid peer endpoint pubkey: %v", err)
	}
	if len(pubKeyBytes) != 33 {
		return nil, fmt.Errorf("invalid peer endpoint pubkey: length "+
			"must be 33 bytes, found %d", len(pubKeyBytes))
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("invalid peer endpoint pubkey: %v", err)
	}

	addr, err := ParseAddressString(parsedAddr, defaultPort, tcpResolver)
	if err != nil {
		return nil, fmt.Errorf("invalid peer endpoint address: %v", err)
	}
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("invalid peer endpoint address: %s is "+
			"not a TCP address", parsedAddr)
	}

	return &lnwire.Endpoint{PubKey: pubKey, Addr: tcpAddr}, nil
}

// verifyPort makes sure that an address string has both a host and a port.
// If there is no port found, the default port is appended. If the address
// is just a port, a localhost:port address is assumed.
func verifyPort(address string, defaultPort string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		if _, err := strconv.Atoi(address); err == nil {
			return net.JoinHostPort("localhost", address)
		}

		if strings.HasPrefix(address, "[") {
			return address + ":" + defaultPort
		}
		return net.JoinHostPort(address, defaultPort)
	}

	if host == "" && port == "" {
		return ":" + defaultPort
	}

	return address
}
