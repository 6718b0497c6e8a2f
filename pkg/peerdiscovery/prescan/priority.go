package prescan

import (
	"sort"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
)

// PrioritizedAddress holds an address and its priority score (0-100)
type PrioritizedAddress struct {
	Address  address.IPv4
	Priority int
}

// CalculatePriority returns priority score (0-100) for an address within its
// own subnet. Higher scores mean more likely to be online.
func CalculatePriority(a address.IPv4) int {
	return calculateIPv4Priority(a)
}

// Order sorts candidates in place, highest priority first and ascending
// address within a tier, so the result is deterministic.
func Order(candidates []address.IPv4) {
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := CalculatePriority(candidates[i]), CalculatePriority(candidates[j])
		if pi != pj {
			return pi > pj
		}
		return candidates[i].Less(candidates[j])
	})
}

// prioritize scores and sorts addresses, dropping excluded ones
func prioritize(addrs []address.IPv4) []PrioritizedAddress {
	prioritized := make([]PrioritizedAddress, 0, len(addrs))
	for _, a := range addrs {
		p := CalculatePriority(a)
		if p == PriorityTier7 {
			continue
		}
		prioritized = append(prioritized, PrioritizedAddress{Address: a, Priority: p})
	}

	// Sort by priority (high to low), then by address for stable ordering
	sort.Slice(prioritized, func(i, j int) bool {
		if prioritized[i].Priority != prioritized[j].Priority {
			return prioritized[i].Priority > prioritized[j].Priority
		}
		return prioritized[i].Address.Less(prioritized[j].Address)
	})
	return prioritized
}
