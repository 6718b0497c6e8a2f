package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	sliceutil "github.com/projectdiscovery/utils/slice"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoActiveInterfaces is returned when the host has no usable IPv4
// interface address.
var ErrNoActiveInterfaces = errors.New("no active interfaces")

// InterfaceProvider lists the IPv4 address assignments of the host.
type InterfaceProvider interface {
	ListInterfaceAddresses(ctx context.Context) ([]address.IPv4, error)
}

// InterfaceProviderFunc adapts a function to InterfaceProvider.
type InterfaceProviderFunc func(ctx context.Context) ([]address.IPv4, error)

func (f InterfaceProviderFunc) ListInterfaceAddresses(ctx context.Context) ([]address.IPv4, error) {
	return f(ctx)
}

// SystemInterfaces reads interface assignments from the operating system.
type SystemInterfaces struct {
	// IncludeLoopback keeps loopback interfaces, useful for local testing.
	IncludeLoopback bool
}

// ListInterfaceAddresses returns the IPv4 assignments of every interface
// that is up, skipping loopback interfaces
func ListInterfaceAddresses(ctx context.Context) ([]address.IPv4, error) {
	return SystemInterfaces{}.ListInterfaceAddresses(ctx)
}

func (s SystemInterfaces) ListInterfaceAddresses(ctx context.Context) ([]address.IPv4, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	addrs := addressesFromStats(stats, s.IncludeLoopback)
	if len(addrs) == 0 {
		return nil, ErrNoActiveInterfaces
	}
	return addrs, nil
}

func addressesFromStats(stats psnet.InterfaceStatList, includeLoopback bool) []address.IPv4 {
	var addrs []address.IPv4

	for _, iface := range stats {
		// Skip loopback and down interfaces
		if !slices.Contains(iface.Flags, "up") {
			continue
		}
		if !includeLoopback && slices.Contains(iface.Flags, "loopback") {
			continue
		}

		for _, assigned := range iface.Addrs {
			ip, network, err := net.ParseCIDR(assigned.Addr)
			if err != nil {
				continue
			}

			// Only process IPv4 addresses
			if ip.To4() == nil {
				continue
			}
			if !includeLoopback && ip.IsLoopback() {
				continue
			}

			a, err := address.FromIPNet(ip, network)
			if err != nil {
				continue
			}
			addrs = append(addrs, a)
		}
	}

	// Avoid duplicates
	return sliceutil.Dedupe(addrs)
}
