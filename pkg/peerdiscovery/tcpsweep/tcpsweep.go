package tcpsweep

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/netip"
	"slices"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/probe"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/subnet"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
)

var (
	// ErrNoPeersFound is returned when a pass completed and nothing answered.
	ErrNoPeersFound = errors.New("no peers found")
	// ErrScanTooLarge is returned before probing when the ranges hold more
	// candidates than Options.MaxCandidates.
	ErrScanTooLarge = errors.New("scan too large")
)

const (
	DefaultConcurrency   = 256
	DefaultMaxCandidates = 65534 // one /16
)

// Options configures a Coordinator.
type Options struct {
	// Timeout per connection attempt, used when Prober is nil.
	Timeout time.Duration
	// Concurrency bounds the number of probes in flight.
	Concurrency int
	// Deadline bounds a whole pass. Zero means no deadline.
	Deadline time.Duration
	// MaxCandidates caps the number of addresses of a single pass.
	MaxCandidates uint64
	// Prioritize dispatches likely hosts (gateways, early DHCP) first.
	Prioritize bool
	// SampleRatio in (0,1) probes only that share of each subnet, most
	// likely hosts first.
	SampleRatio float64
	// ExcludeSelf skips the interface addresses themselves.
	ExcludeSelf bool
	// Hints are addresses known to be alive, such as ARP cache entries.
	// Hints inside a range are probed before the rest of it, and also when
	// sampling left them out.
	Hints []netip.Addr
	// Prober replaces the TCP prober, mostly for tests.
	Prober probe.Prober
	// Logger defaults to gologger.DefaultLogger.
	Logger *gologger.Logger
	// OnPeer is called for every peer as soon as it answers. It must be
	// safe for concurrent use.
	OnPeer func(address.IPv4)
}

// Coordinator runs discovery passes. It holds no state between passes and
// is safe for concurrent use.
type Coordinator struct {
	options Options
	prober  probe.Prober
	logger  *gologger.Logger
}

// New creates a Coordinator, filling unset options with defaults.
func New(options Options) *Coordinator {
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	if options.MaxCandidates == 0 {
		options.MaxCandidates = DefaultMaxCandidates
	}
	if options.Timeout <= 0 {
		options.Timeout = probe.DefaultTimeout
	}
	c := &Coordinator{options: options, prober: options.Prober, logger: options.Logger}
	if c.prober == nil {
		c.prober = probe.NewTCPProber(options.Timeout)
	}
	if c.logger == nil {
		c.logger = gologger.DefaultLogger
	}
	return c
}

// Options returns the effective options.
func (c *Coordinator) Options() Options { return c.options }

// Autodiscover lists the local interfaces through provider, keeps the ones
// accepted by filter and scans their subnets. A nil provider reads the
// system interfaces; a nil filter keeps every address.
func (c *Coordinator) Autodiscover(ctx context.Context, provider common.InterfaceProvider, filter common.Predicate, port int) (PeerSet, error) {
	if provider == nil {
		provider = common.SystemInterfaces{}
	}
	addrs, err := provider.ListInterfaceAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get local networks: %w", err)
	}
	addrs, err = common.Filter(addrs, filter)
	if err != nil {
		return nil, err
	}
	return c.FindPeers(ctx, addrs, port)
}

// FindPeers probes every usable host of the subnets of interfaces on port
// and returns the ones that accepted a connection. An empty result is
// reported as ErrNoPeersFound. When Options.Deadline expires the peers found
// so far are returned; when ctx itself is cancelled the pass fails with
// ctx's error.
func (c *Coordinator) FindPeers(ctx context.Context, interfaces []address.IPv4, port int) (PeerSet, error) {
	if err := probe.ValidatePort(port); err != nil {
		return nil, err
	}

	ranges := subnet.DeriveUsableRanges(interfaces)
	total := subnet.Total(ranges)
	if total > c.options.MaxCandidates {
		return nil, fmt.Errorf("%w: %d candidates exceed the limit of %d", ErrScanTooLarge, total, c.options.MaxCandidates)
	}

	parent := ctx
	if c.options.Deadline > 0 {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithTimeout(ctx, c.options.Deadline)
		defer cancelDeadline()
	}
	// cancelled on the first prober error so dispatch stops
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	self := make(map[uint32]struct{}, len(interfaces))
	if c.options.ExcludeSelf {
		for _, a := range interfaces {
			self[a.Uint32()] = struct{}{}
		}
	}

	awg, err := syncutil.New(syncutil.WithSize(c.options.Concurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	peers := mapsutil.NewSyncLockMap[address.IPv4, struct{}]()
	var (
		probeErr   error
		probeOnce  sync.Once
		dispatched uint64
	)

	c.logger.Verbose().Msgf("probing %d candidates in %d ranges on port %d", total, len(ranges), port)

scan:
	for _, r := range ranges {
		c.logger.Verbose().Msgf("scanning %s", r)

		for candidate := range c.candidates(r) {
			select {
			case <-ctx.Done():
				break scan
			default:
			}

			if _, ok := self[candidate.Uint32()]; ok {
				continue
			}

			dispatched++
			awg.Add()
			go func(target address.IPv4) {
				defer awg.Done()

				ok, err := c.prober.Attempt(ctx, target, port)
				if err != nil {
					probeOnce.Do(func() {
						probeErr = fmt.Errorf("probe %s: %w", target, err)
						cancel()
					})
					return
				}
				if !ok {
					return
				}
				c.logger.Debug().Msgf("%s answered on port %d", target, port)
				_ = peers.Set(target, struct{}{})
				if c.options.OnPeer != nil {
					c.options.OnPeer(target)
				}
			}(candidate)
		}
	}

	awg.Wait()

	if probeErr != nil {
		return nil, probeErr
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled after %d of %d candidates: %w", dispatched, total, err)
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warning().Msgf("scan stopped early (%v) after %d of %d candidates", err, dispatched, total)
	}

	// Convert map to set
	result := make(PeerSet)
	_ = peers.Iterate(func(a address.IPv4, _ struct{}) error {
		result.Add(a)
		return nil
	})

	if result.Len() == 0 {
		return nil, ErrNoPeersFound
	}
	c.logger.Verbose().Msgf("found %d peers", result.Len())
	return result, nil
}

// candidates streams the addresses of r in dispatch order: hints first,
// then the range itself.
func (c *Coordinator) candidates(r subnet.Range) iter.Seq[address.IPv4] {
	base := c.rangeOrder(r)
	hinted := c.hintsIn(r)
	if len(hinted) == 0 {
		return base
	}
	return func(yield func(address.IPv4) bool) {
		seen := make(map[uint32]struct{}, len(hinted))
		for _, h := range hinted {
			seen[h.Uint32()] = struct{}{}
			if !yield(h) {
				return
			}
		}
		for a := range base {
			if _, ok := seen[a.Uint32()]; ok {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// hintsIn returns the hints inside r, with the prefix length of r.
func (c *Coordinator) hintsIn(r subnet.Range) []address.IPv4 {
	if r.Empty() {
		return nil
	}
	var hinted []address.IPv4
	for _, h := range c.options.Hints {
		a, err := address.FromAddr(h, r.First.Bits())
		if err != nil {
			continue
		}
		if a.Compare(r.First) >= 0 && a.Compare(r.Last) <= 0 {
			hinted = append(hinted, a)
		}
	}
	return hinted
}

func (c *Coordinator) rangeOrder(r subnet.Range) iter.Seq[address.IPv4] {
	if ratio := c.options.SampleRatio; ratio > 0 && ratio < 1 {
		selected, err := prescan.SelectAddresses(r.First, ratio)
		if err == nil {
			return slices.Values(selected)
		}
		c.logger.Warning().Msgf("could not sample %s, probing all: %v", r, err)
	}
	if c.options.Prioritize {
		all := slices.Collect(r.Addresses())
		prescan.Order(all)
		return slices.Values(all)
	}
	return r.Addresses()
}
