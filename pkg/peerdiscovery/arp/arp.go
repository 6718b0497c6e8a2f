package arp

import (
	"context"
	"net"
	"net/netip"
	"slices"
)

// Neighbor is a complete entry of the ARP cache
type Neighbor struct {
	Addr netip.Addr
	MAC  net.HardwareAddr
}

// Table reads the local ARP cache, skipping incomplete entries
func Table(ctx context.Context) ([]Neighbor, error) {
	return readLocalARPTable(ctx)
}

// Hints returns the distinct neighbor addresses of the ARP cache in
// ascending order.
func Hints(ctx context.Context) ([]netip.Addr, error) {
	neighbors, err := Table(ctx)
	if err != nil {
		return nil, err
	}
	return addrs(neighbors), nil
}

func addrs(neighbors []Neighbor) []netip.Addr {
	out := make([]netip.Addr, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, n.Addr)
	}
	slices.SortFunc(out, netip.Addr.Compare)
	return slices.Compact(out)
}
