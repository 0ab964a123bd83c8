package discovery

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"sort"
	"sync"
	"time"

	"context"

	"github.com/breez/lnseed/lnpeer"
	"github.com/breez/lnseed/lnwire"
	"github.com/breez/lnseed/queue"
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/bech32"
)

// DefaultSeeds is the default set of DNS seed hostnames consulted when a
// SeedConfig specifies none of its own.
var DefaultSeeds = []string{
	"lseed.bitcoinstats.com",
	"nodes.lightning.directory",
}

// SeedConfig configures a bootstrap run: which seed hostnames to query and
// which Resolver to query them with. A nil Resolver causes BootstrapLookup
// to construct a system resolver on first use.
type SeedConfig struct {
	// Seeds is the list of DNS seed hostnames to round-robin over. If
	// empty, DefaultSeeds is used.
	Seeds []string

	// Resolver performs the actual SRV/address lookups. If nil, a
	// system-default resolver is constructed.
	Resolver Resolver

	// DialTimeout bounds a single handshake attempt against a candidate
	// endpoint. Zero means no per-attempt deadline is imposed.
	DialTimeout time.Duration
}

func (c *SeedConfig) seeds() []string {
	if len(c.Seeds) == 0 {
		return DefaultSeeds
	}
	return c.Seeds
}

// ErrAllSeedLookupsFailed is returned when every configured seed has failed
// an SRV lookup at least once since the last successful lookup. It is
// terminal for the bootstrap stream.
type ErrAllSeedLookupsFailed struct {
	// Causes maps each seed hostname to the error its most recent SRV
	// lookup failed with.
	Causes map[string]error
}

func (e *ErrAllSeedLookupsFailed) Error() string {
	msg := "all DNS seed lookups failed:"
	for seed, err := range e.Causes {
		msg += fmt.Sprintf(" %s: %v;", seed, err)
	}
	return msg
}

// srvTarget is an (SRV target name, port) pair selected off one seed's
// weighted-random priority ordering.
type srvTarget struct {
	name string
	port uint16
}

// Handshaker performs the out-of-scope cryptographic handshake that turns an
// Endpoint into an authenticated Peer. Implementations typically wrap a
// Noise-style (brontide) transport handshake; this core treats it as an
// opaque collaborator.
type Handshaker interface {
	Connect(ctx context.Context, endpoint *lnwire.Endpoint, localKey *btcec.PrivateKey) (lnpeer.Peer, error)
}

// newRand returns a math/rand source seeded from crypto/rand, suitable for
// the weighted SRV selection's non-cryptographic randomness needs.
func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		// crypto/rand failing is exceptional; fall back to a
		// time-independent constant rather than leave the source
		// unseeded.
		return rand.New(rand.NewSource(1))
	}
	seed := int64(binary.BigEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

var (
	rngMu  sync.Mutex
	rngSrc = newRand()
)

// randInclusive draws a uniform integer in [0, max], matching RFC 2782
// weighted selection with an inclusive upper bound.
func randInclusive(max uint64) uint64 {
	if max == 0 {
		return 0
	}
	rngMu.Lock()
	defer rngMu.Unlock()
	return uint64(rngSrc.Int63n(int64(max) + 1))
}

// weightedOrder groups records by priority (ascending) and, within each
// group, repeatedly draws a weighted-random record per RFC 2782: sort by
// weight ascending, draw r in [0, W], walk the running sum, remove the first
// record whose running sum is >= r.
func weightedOrder(records []*SRVRecord) []*srvTarget {
	groups := make(map[uint16][]*SRVRecord)
	var priorities []uint16
	for _, r := range records {
		if _, ok := groups[r.Priority]; !ok {
			priorities = append(priorities, r.Priority)
		}
		groups[r.Priority] = append(groups[r.Priority], r)
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i] < priorities[j] })

	ordered := make([]*srvTarget, 0, len(records))
	for _, p := range priorities {
		group := append([]*SRVRecord(nil), groups[p]...)
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Weight < group[j].Weight
		})

		for len(group) > 0 {
			var total uint64
			for _, r := range group {
				total += uint64(r.Weight)
			}
			target := randInclusive(total)

			var sum uint64
			chosen := 0
			for i, r := range group {
				sum += uint64(r.Weight)
				if target <= sum {
					chosen = i
					break
				}
			}

			rec := group[chosen]
			group = append(group[:chosen], group[chosen+1:]...)
			ordered = append(ordered, &srvTarget{name: rec.Target, port: rec.Port})
		}
	}
	return ordered
}

// seedRotation runs the infinite round-robin SRV lookup loop. It pushes each
// weighted-ordered SRV target to out and, should every seed fail since the
// last success, sends a single terminal ErrAllSeedLookupsFailed to errOut
// and returns.
func seedRotation(ctx context.Context, seeds []string, resolver Resolver,
	out chan<- *srvTarget, errOut chan<- error) {

	defer close(out)
	defer close(errOut)

	seedErrors := make(map[string]error)
	idx := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		seed := seeds[idx%len(seeds)]
		idx++

		records, err := resolver.LookupSRV(ctx, seed)
		if err != nil {
			log.Debugf("SRV lookup failed for seed %s: %v", seed, err)
			seedErrors[seed] = err

			if len(seedErrors) == len(seeds) {
				errOut <- &ErrAllSeedLookupsFailed{Causes: seedErrors}
				return
			}
			continue
		}

		// A successful lookup resets our exhaustion tracking: we only
		// give up once every seed has failed since the last success.
		seedErrors = make(map[string]error)

		for _, target := range weightedOrder(records) {
			select {
			case out <- target:
			case <-ctx.Done():
				return
			}
		}
	}
}

// decodeTargetKey extracts the compressed secp256k1 public key embedded as
// Bech32 in the first label of an SRV target name. Any failure returns a
// non-nil error; callers must silently drop the candidate rather than
// surface it.
func decodeTargetKey(target string) (*btcec.PublicKey, error) {
	label := target
	if i := indexByte(target, '.'); i >= 0 {
		label = target[:i]
	}

	_, data, err := bech32.Decode(label)
	if err != nil {
		return nil, fmt.Errorf("bech32 decode failed: %w", err)
	}

	keyBytes, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("bit conversion failed: %w", err)
	}

	key, err := btcec.ParsePubKey(keyBytes, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	return key, nil
}

// indexByte is a tiny local helper kept to avoid importing strings for a
// single call site.
func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// resolveTarget turns a single SRV target into zero or more Endpoints,
// pushing each onto the endpoint queue. Label-decode and IP-lookup failures
// silently drop the candidate.
func resolveTarget(ctx context.Context, resolver Resolver, target *srvTarget,
	q *queue.ConcurrentQueue) {

	key, err := decodeTargetKey(target.name)
	if err != nil {
		log.Tracef("dropping SRV target %s: %v", target.name, err)
		return
	}

	ips, err := resolver.LookupIP(ctx, target.name)
	if err != nil {
		log.Tracef("dropping SRV target %s: IP lookup failed: %v",
			target.name, err)
		return
	}

	for _, ip := range ips {
		endpoint := &lnwire.Endpoint{
			PubKey: key,
			Addr: &net.TCPAddr{
				IP:   ip,
				Port: int(target.port),
			},
		}
		select {
		case q.ChanIn() <- endpoint:
		case <-ctx.Done():
			return
		}
	}
}

// BootstrapLookup runs the DNS bootstrap pipeline and returns a lazily-pulled
// stream of Endpoints alongside an error channel that carries at most one
// terminal error (ErrAllSeedLookupsFailed or ErrInitiateResolver). Both
// channels are closed once the pipeline has nothing further to deliver.
// Cancelling ctx stops all in-flight lookups and closes both channels.
func BootstrapLookup(ctx context.Context, cfg *SeedConfig) (<-chan *lnwire.Endpoint, <-chan error) {
	if cfg == nil {
		cfg = &SeedConfig{}
	}

	resolver := cfg.Resolver
	if resolver == nil {
		r, err := NewSystemResolver()
		if err != nil {
			endpoints := make(chan *lnwire.Endpoint)
			errs := make(chan error, 1)
			errs <- err
			close(endpoints)
			close(errs)
			return endpoints, errs
		}
		resolver = r
	}

	targets := make(chan *srvTarget)
	errs := make(chan error, 1)
	go seedRotation(ctx, cfg.seeds(), resolver, targets, errs)

	endpointQueue := queue.NewConcurrentQueue(64)
	endpointQueue.Start()

	go func() {
		var wg sync.WaitGroup
		for target := range targets {
			wg.Add(1)
			go func(t *srvTarget) {
				defer wg.Done()
				resolveTarget(ctx, resolver, t, endpointQueue)
			}(target)
		}
		wg.Wait()
		endpointQueue.Stop()
	}()

	out := make(chan *lnwire.Endpoint)
	go func() {
		defer close(out)
		for v := range endpointQueue.ChanOut() {
			endpoint := v.(*lnwire.Endpoint)
			select {
			case out <- endpoint:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

// Bootstrap drives a Handshaker against every Endpoint BootstrapLookup
// produces, emitting a lazily-pulled stream of authenticated Peers. Failed
// handshakes are dropped silently; the stream continues until ctx is
// cancelled or the underlying endpoint stream is exhausted (which, absent an
// AllSeedLookupsFailed error, never happens on its own since the seed
// rotation is infinite).
func Bootstrap(ctx context.Context, localKey *btcec.PrivateKey, hs Handshaker,
	cfg *SeedConfig) <-chan lnpeer.Peer {

	endpoints, errs := BootstrapLookup(ctx, cfg)

	go func() {
		for err := range errs {
			log.Errorf("DNS bootstrap lookup failed: %v", err)
		}
	}()

	peers := make(chan lnpeer.Peer)
	go func() {
		defer close(peers)
		for endpoint := range endpoints {
			attemptCtx := ctx
			cancel := func() {}
			if cfg != nil && cfg.DialTimeout > 0 {
				attemptCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			}

			peer, err := hs.Connect(attemptCtx, endpoint, localKey)
			cancel()
			if err != nil {
				log.Debugf("handshake with %v failed: %v", endpoint, err)
				continue
			}
			select {
			case peers <- peer:
			case <-ctx.Done():
				return
			}
		}
	}()

	return peers
}
