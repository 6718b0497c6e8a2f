// Package arp reads the neighbor entries of the local ARP cache.
//
// Hosts this node has talked to recently show up in the cache with a
// resolved hardware address. Their addresses make good hints for a sweep:
// they are known to be alive and can be probed before the rest of a subnet.
// The cache is read from /proc/net/arp on linux, from `arp -an` on macOS and
// the BSDs and from `arp -a` on windows.
package arp
