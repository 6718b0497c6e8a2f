package tcpsweep

import (
	"slices"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
)

// PeerSet is the set of addresses that answered a probe.
type PeerSet map[address.IPv4]struct{}

// Add inserts a peer.
func (s PeerSet) Add(a address.IPv4) { s[a] = struct{}{} }

// Contains reports whether a answered.
func (s PeerSet) Contains(a address.IPv4) bool {
	_, ok := s[a]
	return ok
}

func (s PeerSet) Len() int { return len(s) }

// Sorted returns the peers in ascending address order.
func (s PeerSet) Sorted() []address.IPv4 {
	out := make([]address.IPv4, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b address.IPv4) int {
		if c := a.Compare(b); c != 0 {
			return c
		}
		return a.Bits() - b.Bits()
	})
	return out
}
