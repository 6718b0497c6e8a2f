package address

import (
	"errors"
	"iter"
)

var (
	// ErrMalformedAddress is returned when a textual address does not
	// decompose into valid octets or the prefix length is out of range.
	ErrMalformedAddress = errors.New("malformed address")
	// ErrIncomparableType is returned when an address is compared against a
	// value of another type.
	ErrIncomparableType = errors.New("incomparable type")
)

// Family identifies an address family variant.
type Family int

const (
	// FamilyIPv4 is the 32-bit IPv4 family.
	FamilyIPv4 Family = 4
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	default:
		return "unknown"
	}
}

// Address is the capability set shared by every address family variant.
// T is the concrete variant, so arithmetic and ranges stay within a family.
type Address[T any] interface {
	Family() Family
	Bits() int
	String() string

	Compare(other T) int
	CompareTo(other any) (int, error)
	Equal(other T) bool

	Add(n uint32) T
	Sub(n uint32) T
	RangeTo(other T) []T
	Iter(other T) iter.Seq[T]

	Network() T
	Broadcast() T
}

var _ Address[IPv4] = IPv4{}
