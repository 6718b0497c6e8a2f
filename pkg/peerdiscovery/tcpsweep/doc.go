// Package tcpsweep discovers peers listening on a port across the subnets
// of the local interfaces using TCP connect probes.
//
// The package provides two main entry points:
//   - FindPeers: Scans the subnets of a given list of interface addresses
//   - Autodiscover: Lists the local interfaces, filters them and scans their subnets
//
// Discovery is performed by:
// - Deriving the usable host range of every distinct subnet
// - Streaming the candidates of each range (optionally likely-first, see prescan)
// - Probing known neighbors from Options.Hints (see arp) before the rest
// - Probing each candidate in parallel using an adaptive waitgroup
// - Collecting the addresses that accepted a connection into a PeerSet
//
// Example usage:
//
//	c := tcpsweep.New(tcpsweep.Options{Timeout: time.Second, Concurrency: 128})
//	peers, err := c.FindPeers(ctx, interfaces, 7946)
//	if errors.Is(err, tcpsweep.ErrNoPeersFound) {
//		// isolated node
//	}
//
//	// Automatic discovery of local networks
//	peers, err := c.Autodiscover(ctx, nil, common.IsPrivate, 7946)
//
// Limitations:
// - Peers must accept TCP connections on the port (see the beacon package)
// - Firewalled hosts look the same as absent hosts
// - A pass is bounded by MaxCandidates and Deadline, large subnets need both
package tcpsweep
