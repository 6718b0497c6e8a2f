package prescan

import (
	"fmt"
	"math"

	"github.com/projectdiscovery/mapcidr"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
)

// SelectAddresses returns the top share of usable addresses in subnet's
// network, sorted by priority. ratio is 0.0-1.0 (e.g., 0.25 = 25%).
func SelectAddresses(subnet address.IPv4, ratio float64) ([]address.IPv4, error) {
	// Clamp ratio to valid range
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	prioritized, err := expand(subnet)
	if err != nil {
		return nil, err
	}
	if len(prioritized) == 0 {
		return []address.IPv4{}, nil
	}

	targetCount := int(math.Ceil(float64(len(prioritized)) * ratio))
	// If ratio > 0 but math gives us 0, at least return 1 address
	if ratio > 0 && targetCount == 0 {
		targetCount = 1
	}
	return top(prioritized, targetCount), nil
}

// SelectAddressesWithCount returns exactly count highest-priority addresses
// of subnet's network, or all of them if there are fewer.
func SelectAddressesWithCount(subnet address.IPv4, count int) ([]address.IPv4, error) {
	if count <= 0 {
		return []address.IPv4{}, nil
	}

	prioritized, err := expand(subnet)
	if err != nil {
		return nil, err
	}
	return top(prioritized, count), nil
}

// expand lists the usable addresses of subnet's network in priority order
func expand(subnet address.IPv4) ([]PrioritizedAddress, error) {
	cidr := subnet.Network().String()
	ips, err := mapcidr.IPAddresses(cidr)
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", cidr, err)
	}

	addrs := make([]address.IPv4, 0, len(ips))
	for _, ip := range ips {
		a, err := address.Parse(ip, subnet.Bits())
		if err != nil {
			continue
		}
		addrs = append(addrs, a)
	}
	return prioritize(addrs), nil
}

func top(prioritized []PrioritizedAddress, count int) []address.IPv4 {
	if count > len(prioritized) {
		count = len(prioritized)
	}
	result := make([]address.IPv4, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, prioritized[i].Address)
	}
	return result
}
