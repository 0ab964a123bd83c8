package discovery

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// SRVRecord is the subset of an SRV resource record relevant to seed
// rotation and RFC 2782 weighted selection.
type SRVRecord struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

// Resolver abstracts DNS SRV and address lookups so the bootstrap pipeline
// can be driven against either the system resolver or an injected test
// double.
type Resolver interface {
	// LookupSRV resolves the SRV record set for the given seed hostname,
	// following the "_nodes._tcp.<seed>" convention.
	LookupSRV(ctx context.Context, seed string) ([]*SRVRecord, error)

	// LookupIP resolves every A/AAAA address for the given hostname.
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// srvServiceLabel is the Lightning Network DNS-seed service label prefix
// SRV queries are issued under, per BOLT-10.
const srvServiceLabel = "_nodes._tcp."

// systemResolver is the default Resolver, backed directly by a miekg/dns
// client pointed at the system's configured nameservers.
type systemResolver struct {
	client  *dns.Client
	servers []string
}

// NewSystemResolver builds a Resolver that queries the nameservers listed in
// /etc/resolv.conf. It fails with ErrInitiateResolver if that file cannot be
// read or carries no usable nameserver.
func NewSystemResolver() (Resolver, error) {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return nil, &ErrInitiateResolver{Cause: err}
	}
	if len(conf.Servers) == 0 {
		return nil, &ErrInitiateResolver{
			Cause: fmt.Errorf("no nameservers configured"),
		}
	}

	servers := make([]string, len(conf.Servers))
	for i, server := range conf.Servers {
		servers[i] = net.JoinHostPort(server, conf.Port)
	}

	return &systemResolver{
		client:  new(dns.Client),
		servers: servers,
	}, nil
}

// LookupSRV issues an SRV query for _nodes._tcp.<seed> against the first
// configured nameserver.
func (r *systemResolver) LookupSRV(ctx context.Context, seed string) ([]*SRVRecord, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(srvServiceLabel+seed), dns.TypeSRV)

	in, _, err := r.client.ExchangeContext(ctx, m, r.servers[0])
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("SRV lookup for %s failed with rcode %d",
			seed, in.Rcode)
	}

	var records []*SRVRecord
	for _, ans := range in.Answer {
		srv, ok := ans.(*dns.SRV)
		if !ok {
			continue
		}
		records = append(records, &SRVRecord{
			Priority: srv.Priority,
			Weight:   srv.Weight,
			Port:     srv.Port,
			Target:   srv.Target,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no SRV records found for seed %s", seed)
	}
	return records, nil
}

// LookupIP resolves both A and AAAA records for host.
func (r *systemResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	var ips []net.IP
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(host), qtype)

		in, _, err := r.client.ExchangeContext(ctx, m, r.servers[0])
		if err != nil {
			continue
		}
		for _, ans := range in.Answer {
			switch rr := ans.(type) {
			case *dns.A:
				ips = append(ips, rr.A)
			case *dns.AAAA:
				ips = append(ips, rr.AAAA)
			}
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses found for %s", host)
	}
	return ips, nil
}

// ErrInitiateResolver is returned when the DNS resolver itself could not be
// constructed. It is terminal for the bootstrap stream; retrying resolver
// construction is not attempted.
type ErrInitiateResolver struct {
	Cause error
}

func (e *ErrInitiateResolver) Error() string {
	return fmt.Sprintf("unable to initiate DNS resolver: %v", e.Cause)
}

func (e *ErrInitiateResolver) Unwrap() error { return e.Cause }
