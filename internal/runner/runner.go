package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/beacon"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/tcpsweep"
	"github.com/projectdiscovery/peerscan/pkg/scanlog"
	"github.com/projectdiscovery/peerscan/pkg/types"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Runner is an instance of the peer discovery client
type Runner struct {
	options  *Options
	logger   *gologger.Logger
	provider common.InterfaceProvider
	filter   common.Predicate
	stdout   io.Writer

	output *os.File
	stream *scanlog.Stream
	beacon *beacon.Beacon

	// results of the last completed pass, compared against the next one
	previous []types.PeerResult
}

// NewRunner creates a new runner instance from the parsed options
func NewRunner(options *Options) (*Runner, error) {
	r := &Runner{
		options: options,
		logger:  gologger.DefaultLogger,
		stdout:  os.Stdout,
	}

	provider, err := options.interfaceProvider()
	if err != nil {
		return nil, err
	}
	r.provider = provider

	filter, err := options.interfaceFilter()
	if err != nil {
		return nil, err
	}
	r.filter = filter

	previous, err := scanlog.ParseReportFile(options.Previous)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not read previous report %s", options.Previous)
	}
	r.previous = previous

	if options.Output != "" {
		f, err := os.Create(options.Output)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not create output file %s", options.Output)
		}
		r.output = f
		r.stream = scanlog.NewStream(f, r.logger)
	}
	return r, nil
}

// Run starts the listener if requested and runs one scan pass, or one pass
// per interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.options.Listen {
		listenPort := r.options.ListenPort
		if listenPort == 0 {
			listenPort = r.options.Port
		}
		b, err := beacon.Listen(ctx, beacon.Options{
			Host:      r.options.ListenHost,
			Port:      listenPort,
			MaxConns:  r.options.MaxConns,
			ReusePort: r.options.ReusePort,
			Logger:    r.logger,
		})
		if err != nil {
			return errorutil.NewWithErr(err).Msgf("could not start listener")
		}
		r.beacon = b
		r.logger.Info().Msgf("Listening for peers on %s", b.Addr())
	}

	if err := r.runPass(ctx); err != nil {
		return err
	}

	if r.options.Interval > 0 {
		ticker := time.NewTicker(r.options.Interval)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				if err := r.runPass(ctx); err != nil {
					return err
				}
			}
		}
	}

	if r.beacon != nil && r.options.Stay && r.options.Interval == 0 {
		r.logger.Info().Msgf("Scan done, listener stays up on %s until interrupted", r.beacon.Addr())
		<-ctx.Done()
	}
	if r.beacon != nil {
		for _, a := range r.beacon.Announcers() {
			r.logger.Verbose().Msgf("probed by %s at %s", a.IP, a.LastSeen.Format(time.RFC3339))
		}
	}
	return nil
}

func (r *Runner) runPass(ctx context.Context) error {
	scanContext := scanlog.NewScanContext(r.options.NodeID, r.options.Port)
	if r.options.NodeID == "" {
		// keep one node id across passes
		r.options.NodeID = scanContext.NodeID
	}
	report := scanlog.NewReport(scanContext)

	var hints []netip.Addr
	if r.options.ARPHints {
		var err error
		if hints, err = arp.Hints(ctx); err != nil {
			r.logger.Warning().Msgf("could not read arp cache, scanning without hints: %s", err)
		} else {
			r.logger.Verbose().Msgf("using %d arp cache entries as hints", len(hints))
		}
	}

	coordinator := tcpsweep.New(r.sweepOptions(hints, func(peer address.IPv4) {
		result, err := report.Add(peer)
		if err != nil {
			r.logger.Warning().Msgf("could not record peer %s: %s", peer, err)
			return
		}
		if r.stream != nil {
			r.stream.Append(result)
		}
	}))

	r.logger.Verbose().Msgf("starting scan %s on port %d", scanContext.ScanID, r.options.Port)
	peers, err := coordinator.Autodiscover(ctx, r.provider, r.filter, r.options.Port)
	switch {
	case errors.Is(err, tcpsweep.ErrNoPeersFound):
		r.logger.Info().Msgf("No peers found on port %d", r.options.Port)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		r.logger.Info().Msgf("Scan %s interrupted", scanContext.ScanID)
		return nil
	case err != nil:
		return errorutil.NewWithErr(err).Msgf("scan %s failed", scanContext.ScanID)
	default:
		r.logger.Info().Msgf("Found %s peers in %s", au.Bold(peers.Len()), time.Since(scanContext.StartTime).Round(time.Millisecond))
	}

	if err := r.writeResults(report); err != nil {
		return err
	}
	r.compare(report.Results())
	return nil
}

func (r *Runner) sweepOptions(hints []netip.Addr, onPeer func(address.IPv4)) tcpsweep.Options {
	return tcpsweep.Options{
		Timeout:       r.options.Timeout,
		Concurrency:   r.options.Concurrency,
		Deadline:      r.options.Deadline,
		MaxCandidates: uint64(r.options.MaxCandidates),
		Prioritize:    r.options.Prioritize,
		SampleRatio:   float64(r.options.SamplePercent) / 100,
		ExcludeSelf:   !r.options.IncludeSelf,
		Hints:         hints,
		Logger:        r.logger,
		OnPeer:        onPeer,
	}
}

func (r *Runner) writeResults(report *scanlog.Report) error {
	if r.options.JSON {
		if _, err := report.WriteTo(r.stdout); err != nil {
			return errorutil.NewWithErr(err).Msgf("could not write results")
		}
		return nil
	}
	for _, result := range report.Results() {
		if _, err := fmt.Fprintln(r.stdout, result.IP); err != nil {
			return errorutil.NewWithErr(err).Msgf("could not write results")
		}
	}
	return nil
}

func (r *Runner) compare(current []types.PeerResult) {
	if r.previous != nil {
		added, removed := scanlog.Diff(r.previous, current)
		for _, ip := range added {
			r.logger.Info().Msgf("%s %s", au.Green("[new]"), ip)
		}
		for _, ip := range removed {
			r.logger.Info().Msgf("%s %s", au.Red("[gone]"), ip)
		}
	}
	if current == nil {
		current = []types.PeerResult{}
	}
	r.previous = current
}

// Close stops the listener and flushes the output file
func (r *Runner) Close() {
	if r.beacon != nil {
		_ = r.beacon.Close()
	}
	if r.stream != nil {
		if err := r.stream.Close(); err != nil {
			r.logger.Error().Msgf("could not write output file: %s", err)
		}
	}
	if r.output != nil {
		_ = r.output.Close()
	}
}

func (options *Options) interfaceProvider() (common.InterfaceProvider, error) {
	if len(options.Networks) == 0 {
		return common.SystemInterfaces{IncludeLoopback: options.IncludeLoopback}, nil
	}
	addrs := make([]address.IPv4, 0, len(options.Networks))
	for _, network := range options.Networks {
		a, err := address.ParseCIDR(network)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", network, err)
		}
		addrs = append(addrs, a)
	}
	return common.InterfaceProviderFunc(func(context.Context) ([]address.IPv4, error) {
		return addrs, nil
	}), nil
}

func (options *Options) interfaceFilter() (common.Predicate, error) {
	var preds []common.Predicate
	if options.PrivateOnly {
		preds = append(preds, common.IsPrivate)
	}
	if len(options.Include) > 0 {
		prefixes, err := common.ParsePrefixes(options.Include)
		if err != nil {
			return nil, err
		}
		pred, err := common.InPrefixes(prefixes...)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	if len(options.Exclude) > 0 {
		prefixes, err := common.ParsePrefixes(options.Exclude)
		if err != nil {
			return nil, err
		}
		pred, err := common.InPrefixes(prefixes...)
		if err != nil {
			return nil, err
		}
		preds = append(preds, common.Not(pred))
	}
	if len(preds) == 0 {
		return nil, nil
	}
	return common.All(preds...), nil
}
