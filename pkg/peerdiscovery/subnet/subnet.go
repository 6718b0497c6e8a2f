// Package subnet derives the usable host ranges of the subnets a node is
// configured on.
package subnet

import (
	"iter"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// Range is the usable host range of one subnet: every address between the
// network and broadcast addresses, both excluded.
type Range struct {
	First address.IPv4
	Last  address.IPv4
}

// UsableRange returns (network+1, broadcast-1) for a's subnet. Prefixes of
// 31 and 32 have no usable hosts and yield an empty range.
func UsableRange(a address.IPv4) Range {
	network, broadcast := address.Bounds(a)
	if a.Bits() >= 31 {
		return Range{First: broadcast, Last: network}
	}
	return Range{First: network.Add(1), Last: broadcast.Sub(1)}
}

// Empty reports whether the range has nothing to scan.
func (r Range) Empty() bool {
	return r.First.Compare(r.Last) > 0 || r.First.Bits() >= 31
}

// Len returns the number of addresses in the range.
func (r Range) Len() uint64 {
	if r.Empty() {
		return 0
	}
	return uint64(r.First.Distance(r.Last)) + 1
}

// Addresses streams the range in ascending order without materializing it.
func (r Range) Addresses() iter.Seq[address.IPv4] {
	if r.Empty() {
		return func(func(address.IPv4) bool) {}
	}
	return r.First.Iter(r.Last)
}

func (r Range) String() string {
	return "(" + r.First.String() + ", " + r.Last.String() + ")"
}

// DeriveUsableRanges maps every interface address to the usable range of its
// subnet. Exact duplicate ranges collapse into one, keeping first-seen
// order; empty ranges are dropped.
func DeriveUsableRanges(addrs []address.IPv4) []Range {
	ranges := make([]Range, 0, len(addrs))
	for _, a := range addrs {
		r := UsableRange(a)
		if r.Empty() {
			continue
		}
		ranges = append(ranges, r)
	}
	return sliceutil.Dedupe(ranges)
}

// Total returns the number of candidate addresses across ranges.
func Total(ranges []Range) uint64 {
	var total uint64
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}
