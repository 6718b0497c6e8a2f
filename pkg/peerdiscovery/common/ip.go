package common

import "github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"

// IsNetworkOrBroadcast checks if an address is the network or broadcast
// address of its own subnet. Every address of a /31 or /32 counts as one.
func IsNetworkOrBroadcast(a address.IPv4) bool {
	network, broadcast := address.Bounds(a)
	return a == network || a == broadcast
}
