// Package prescan orders the candidate addresses of a subnet so the ones most
// likely to be online are probed first, and can cut a subnet down to its most
// likely share. Uses Pareto principle - most active hosts are in the top 20%
// of addresses (routers, gateways, early DHCP allocations).
//
// Priority tiers (0-100), by last octet:
//   - 100: .1, .254 (routers/gateways - always check these first)
//   - 90:  .2-.5, .250-.253 (reserved infrastructure)
//   - 80:  .6-.10 (early DHCP - devices that connect first)
//   - 70:  .50, .100, .150 (DHCP peaks - common allocation points)
//   - 50:  .51-.99, .101-.149, .151-.200 (main DHCP pool)
//   - 20:  .11-.49, .201-.249 (long-tail, lower probability)
//   - 0:   network/broadcast (excluded)
//
// Example:
//
//	subnet := address.MustParse("192.168.1.20", 24)
//
//	// Get top 25% most likely addresses
//	addrs, err := prescan.SelectAddresses(subnet, 0.25)
//
//	// Or get exactly 50 addresses
//	addrs, err := prescan.SelectAddressesWithCount(subnet, 50)
//
// O(n log n) complexity. For huge networks, use SelectAddressesWithCount.
package prescan
