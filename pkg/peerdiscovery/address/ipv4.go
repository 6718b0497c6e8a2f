package address

import (
	"fmt"
	"iter"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// IPv4 is an immutable IPv4 host address plus the prefix length of its
// subnet. The zero value is 0.0.0.0/0.
type IPv4 struct {
	value uint32
	bits  uint8
}

// Parse parses a dotted-quad address and pairs it with the given prefix
// length. The text must be exactly four period-separated decimal octets of
// 1-3 digits each, every octet in [0,255].
func Parse(text string, bits int) (IPv4, error) {
	if bits < 0 || bits > 32 {
		return IPv4{}, fmt.Errorf("%w: prefix length %d out of range", ErrMalformedAddress, bits)
	}
	parts := strings.Split(text, ".")
	if len(parts) != 4 {
		return IPv4{}, fmt.Errorf("%w: %q does not have four octets", ErrMalformedAddress, text)
	}
	var value uint32
	for _, part := range parts {
		octet, err := parseOctet(part)
		if err != nil {
			return IPv4{}, fmt.Errorf("%w: %q: %v", ErrMalformedAddress, text, err)
		}
		value = value<<8 | uint32(octet)
	}
	return IPv4{value: value, bits: uint8(bits)}, nil
}

// ParseCIDR parses "a.b.c.d/n" notation.
func ParseCIDR(text string) (IPv4, error) {
	ip, prefix, ok := strings.Cut(text, "/")
	if !ok {
		return IPv4{}, fmt.Errorf("%w: %q has no prefix length", ErrMalformedAddress, text)
	}
	if prefix == "" || len(prefix) > 2 || !isDigits(prefix) {
		return IPv4{}, fmt.Errorf("%w: %q has an invalid prefix length", ErrMalformedAddress, text)
	}
	bits, _ := strconv.Atoi(prefix)
	return Parse(ip, bits)
}

// MustParse is like Parse but panics on error.
func MustParse(text string, bits int) IPv4 {
	a, err := Parse(text, bits)
	if err != nil {
		panic(err)
	}
	return a
}

// FromIP converts a net.IP holding an IPv4 address.
func FromIP(ip net.IP, bits int) (IPv4, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return IPv4{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrMalformedAddress, ip)
	}
	if bits < 0 || bits > 32 {
		return IPv4{}, fmt.Errorf("%w: prefix length %d out of range", ErrMalformedAddress, bits)
	}
	value := uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
	return IPv4{value: value, bits: uint8(bits)}, nil
}

// FromAddr converts a netip.Addr holding an IPv4 or IPv4-mapped address.
func FromAddr(addr netip.Addr, bits int) (IPv4, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return IPv4{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrMalformedAddress, addr)
	}
	return FromIP(addr.AsSlice(), bits)
}

// FromIPNet converts an interface assignment such as the ones returned by
// net.ParseCIDR, keeping the host part of ip.
func FromIPNet(ip net.IP, network *net.IPNet) (IPv4, error) {
	if network == nil {
		return IPv4{}, fmt.Errorf("%w: missing network", ErrMalformedAddress)
	}
	ones, size := network.Mask.Size()
	if size != 32 {
		return IPv4{}, fmt.Errorf("%w: %s is not an IPv4 network", ErrMalformedAddress, network)
	}
	return FromIP(ip, ones)
}

func parseOctet(s string) (uint8, error) {
	if len(s) == 0 || len(s) > 3 {
		return 0, fmt.Errorf("octet %q must have 1 to 3 digits", s)
	}
	if !isDigits(s) {
		return 0, fmt.Errorf("octet %q is not numeric", s)
	}
	v, _ := strconv.Atoi(s)
	if v > 255 {
		return 0, fmt.Errorf("octet %d out of range", v)
	}
	return uint8(v), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (a IPv4) Family() Family { return FamilyIPv4 }

// Bits returns the prefix length.
func (a IPv4) Bits() int { return int(a.bits) }

// Uint32 returns the raw 32-bit value.
func (a IPv4) Uint32() uint32 { return a.value }

// Octets returns the address most-significant octet first.
func (a IPv4) Octets() [4]byte {
	return [4]byte{byte(a.value >> 24), byte(a.value >> 16), byte(a.value >> 8), byte(a.value)}
}

// IP returns the address as a net.IP.
func (a IPv4) IP() net.IP {
	o := a.Octets()
	return net.IPv4(o[0], o[1], o[2], o[3]).To4()
}

// Addr returns the address as a netip.Addr.
func (a IPv4) Addr() netip.Addr {
	return netip.AddrFrom4(a.Octets())
}

// Prefix returns the subnet this address belongs to, masked.
func (a IPv4) Prefix() netip.Prefix {
	return netip.PrefixFrom(a.Network().Addr(), a.Bits())
}

// HostPort joins the dotted-quad address with a port for dialing.
func (a IPv4) HostPort(port int) string {
	return net.JoinHostPort(a.dotted(), strconv.Itoa(port))
}

func (a IPv4) dotted() string {
	o := a.Octets()
	return fmt.Sprintf("%d.%d.%d.%d", o[0], o[1], o[2], o[3])
}

// String returns "<dotted-octets>/<prefix>", e.g. "192.168.1.9/24".
func (a IPv4) String() string {
	return a.dotted() + "/" + strconv.Itoa(int(a.bits))
}

// Compare orders by the 32-bit value only. It returns -1, 0 or +1.
// A zero result does not imply Equal when prefix lengths differ.
func (a IPv4) Compare(other IPv4) int {
	switch {
	case a.value < other.value:
		return -1
	case a.value > other.value:
		return 1
	default:
		return 0
	}
}

// CompareTo is Compare for values of unknown type. It fails with
// ErrIncomparableType unless other is an IPv4 or *IPv4.
func (a IPv4) CompareTo(other any) (int, error) {
	switch o := other.(type) {
	case IPv4:
		return a.Compare(o), nil
	case *IPv4:
		if o != nil {
			return a.Compare(*o), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot compare %s with %T", ErrIncomparableType, a, other)
}

// Equal reports whether both the value and the prefix length match.
func (a IPv4) Equal(other IPv4) bool { return a == other }

// Less reports whether a orders strictly before other.
func (a IPv4) Less(other IPv4) bool { return a.value < other.value }

// Add returns the address n hosts above a, keeping the prefix length.
// The value wraps modulo 2^32.
func (a IPv4) Add(n uint32) IPv4 { return IPv4{value: a.value + n, bits: a.bits} }

// Sub returns the address n hosts below a, keeping the prefix length.
// The value wraps modulo 2^32.
func (a IPv4) Sub(n uint32) IPv4 { return IPv4{value: a.value - n, bits: a.bits} }

// Distance returns the number of steps between a and other.
func (a IPv4) Distance(other IPv4) uint32 {
	if a.value > other.value {
		return a.value - other.value
	}
	return other.value - a.value
}

// Iter walks from a to other inclusive, one host at a time, upwards when
// a < other and downwards otherwise. Every yielded value keeps a's prefix
// length.
func (a IPv4) Iter(other IPv4) iter.Seq[IPv4] {
	return func(yield func(IPv4) bool) {
		cur := a
		for {
			if !yield(cur) {
				return
			}
			if cur.value == other.value {
				return
			}
			if cur.value < other.value {
				cur = cur.Add(1)
			} else {
				cur = cur.Sub(1)
			}
		}
	}
}

// RangeTo materializes Iter. Callers must bound the distance between the
// endpoints since the whole sequence is allocated up front.
func (a IPv4) RangeTo(other IPv4) []IPv4 {
	out := make([]IPv4, 0, uint64(a.Distance(other))+1)
	for v := range a.Iter(other) {
		out = append(out, v)
	}
	return out
}

// Mask returns the network mask for the prefix length.
func (a IPv4) Mask() uint32 {
	return ^uint32(0) << (32 - uint32(a.bits))
}

// Network returns the address with all host bits cleared.
func (a IPv4) Network() IPv4 {
	return IPv4{value: a.value & a.Mask(), bits: a.bits}
}

// Broadcast returns the address with all host bits set.
func (a IPv4) Broadcast() IPv4 {
	return IPv4{value: a.Network().value | ^a.Mask(), bits: a.bits}
}

// Contains reports whether other lies in a's subnet.
func (a IPv4) Contains(other IPv4) bool {
	return other.value&a.Mask() == a.Network().value
}

// Bounds returns the network and broadcast addresses of a's subnet.
func Bounds(a IPv4) (network, broadcast IPv4) {
	return a.Network(), a.Broadcast()
}
