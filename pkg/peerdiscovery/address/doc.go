// Package address provides the address value types used by peer discovery.
//
// Each address family is a separate value type implementing the Address
// capability set (ordering, arithmetic, range generation and
// network/broadcast derivation). Only IPv4 is implemented.
//
// An IPv4 carries its 32-bit value together with the prefix length of the
// subnet it was configured on:
//
//	a, err := address.Parse("192.168.1.9", 24)
//	// a.String() == "192.168.1.9/24"
//	// a.Network().String() == "192.168.1.0/24"
//	// a.Broadcast().String() == "192.168.1.255/24"
//
// Ordering only looks at the 32-bit value. Equality also requires the
// prefix lengths to match, so IPv4 values can be compared with == and used
// as map keys.
package address
